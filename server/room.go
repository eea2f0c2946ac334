package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"starchase/game"
)

var (
	// ErrRoomStopped 房间已停止，命令不会再被处理
	ErrRoomStopped = errors.New("room stopped")
	// ErrInboxFull 收件箱拥塞，move 消息被丢弃
	ErrInboxFull = errors.New("room inbox full")
)

// Conn 房间视角的连接：只负责排队发送与关闭
// Enqueue 与 Close 只会在房间协程里调用
type Conn interface {
	ID() string
	Codec() Codec
	Enqueue(frame []byte) bool
	Close()
}

// 房间收件箱中的命令，全部在 Run 协程里串行执行
type (
	joinCmd    struct{ conn Conn }
	messageCmd struct {
		conn Conn
		msg  Inbound
	}
	leaveCmd     struct{ conn Conn }
	configureCmd struct {
		patch ConfigPatch
		reply chan<- configureResult
	}
	statusCmd      struct{ reply chan<- RoomStatus }
	closeIfIdleCmd struct{ reply chan<- bool }
)

type configureResult struct {
	cfg Config
	err error
}

// Room 房间世界：权威状态只由 Run 协程持有，外部一律通过收件箱投递命令
type Room struct {
	ID string

	inbox   chan any
	cfg     Config
	world   *game.World
	metrics *RoomMetrics
	log     *zap.SugaredLogger

	sessions  map[Conn]*session
	observers []Conn // FIFO，等待最久的先转正

	ticker      *time.Ticker
	tickC       <-chan time.Time // 没有玩家时为 nil，select 永远不会选中
	tickSeq     int64
	resetTicker *time.Ticker
	nextReset   time.Time
	started     time.Time

	// 最后一个连接离开时在房间协程里调用，不能阻塞
	onIdle func(*Room)

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// RoomOption 定制房间（主要用于测试注入随机源）
type RoomOption func(*Room)

// WithRand 使用固定的随机源，出生点、颜色和星星位置可复现
func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) { r.world = game.NewWorld(rng) }
}

// NewRoom 创建房间，初始化数据结构；调用方负责 go r.Run()
func NewRoom(id string, cfg Config, opts ...RoomOption) *Room {
	r := &Room{
		ID:       id,
		inbox:    make(chan any, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		cfg:      cfg,
		metrics:  &RoomMetrics{},
		log:      Log.With("room", id),
		sessions: make(map[Conn]*session),
		started:  time.Now(),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.world == nil {
		r.world = game.NewWorld(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	r.nextReset = r.started.Add(cfg.ResetPeriod)
	return r
}

// Run 房间主循环：命令、Tick、清零定时器都在这里串行处理
func (r *Room) Run() {
	defer close(r.done)

	r.resetTicker = time.NewTicker(r.cfg.ResetPeriod)
	r.nextReset = time.Now().Add(r.cfg.ResetPeriod)
	defer r.resetTicker.Stop()

	for {
		select {
		case <-r.quit:
			r.shutdown()
			return
		case cmd := <-r.inbox:
			r.handleCommand(cmd)
		case <-r.tickC:
			r.tick()
		case <-r.resetTicker.C:
			r.resetScores()
		}
	}
}

// Stop 通知 Run 退出；可重复调用
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done Run 退出后关闭
func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Join 新连接入场（房间协程里决定是玩家还是观察者）
func (r *Room) Join(c Conn) error {
	return r.post(joinCmd{conn: c})
}

// Leave 连接关闭；对未知连接是空操作
func (r *Room) Leave(c Conn) {
	_ = r.post(leaveCmd{conn: c})
}

// Deliver 投递一条已解析的入站消息。move 在收件箱拥塞时直接丢弃以保证 Tick 准时，
// setName 需要回复，阻塞等待
func (r *Room) Deliver(c Conn, msg Inbound) error {
	cmd := messageCmd{conn: c, msg: msg}
	if _, ok := msg.(MoveMessage); ok {
		select {
		case <-r.quit:
			return ErrRoomStopped
		default:
		}
		select {
		case r.inbox <- cmd:
			return nil
		default:
			return ErrInboxFull
		}
	}
	return r.post(cmd)
}

// Configure 运行时修改房间参数，返回生效后的配置
func (r *Room) Configure(ctx context.Context, patch ConfigPatch) (Config, error) {
	reply := make(chan configureResult, 1)
	if err := r.postContext(ctx, configureCmd{patch: patch, reply: reply}); err != nil {
		return Config{}, err
	}
	select {
	case res := <-reply:
		return res.cfg, res.err
	case <-ctx.Done():
		return Config{}, ctx.Err()
	case <-r.quit:
		return Config{}, ErrRoomStopped
	}
}

// Status 在房间协程里取一份状态快照
func (r *Room) Status(ctx context.Context) (RoomStatus, error) {
	reply := make(chan RoomStatus, 1)
	if err := r.postContext(ctx, statusCmd{reply: reply}); err != nil {
		return RoomStatus{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return RoomStatus{}, ctx.Err()
	case <-r.quit:
		return RoomStatus{}, ErrRoomStopped
	}
}

// closeIfIdle 没有任何连接时停止房间；已停止也视为空闲
func (r *Room) closeIfIdle() bool {
	reply := make(chan bool, 1)
	if err := r.post(closeIfIdleCmd{reply: reply}); err != nil {
		return true
	}
	select {
	case idle := <-reply:
		return idle
	case <-r.done:
		return true
	}
}

func (r *Room) post(cmd any) error {
	return r.postContext(context.Background(), cmd)
}

func (r *Room) postContext(ctx context.Context, cmd any) error {
	// 收件箱有余量时 select 会随机选择，先单独检查是否已停止
	select {
	case <-r.quit:
		return ErrRoomStopped
	default:
	}
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.quit:
		return ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		r.handleJoin(c.conn)
	case messageCmd:
		r.handleMessage(c.conn, c.msg)
	case leaveCmd:
		r.handleLeave(c.conn)
	case configureCmd:
		cfg, err := r.applyPatch(c.patch)
		c.reply <- configureResult{cfg: cfg, err: err}
	case statusCmd:
		c.reply <- r.status()
	case closeIfIdleCmd:
		idle := len(r.sessions) == 0
		if idle {
			r.Stop()
		}
		c.reply <- idle
	default:
		r.log.Warnw("unknown room command", "cmd", cmd)
	}
}

// shutdown 关闭所有连接，停止 Tick
func (r *Room) shutdown() {
	r.stopTicking()
	for c := range r.sessions {
		c.Close()
	}
	r.sessions = make(map[Conn]*session)
	r.observers = nil
	r.updateGauges()
	r.log.Info("room stopped")
}
