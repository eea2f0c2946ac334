package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
// 房间协程写，/metrics 读，全部走原子操作
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
	MessagesAccepted  int64 // 进入房间的合法消息
	MalformedDropped  int64 // 无法解析或类型未知的消息
	RateLimited       int64 // 超过入站限速被丢弃的消息
	InboxDropped      int64 // 房间收件箱拥塞时丢弃的 move
	StrayIgnored      int64 // 未绑定玩家的连接发来的消息
	SendDropped       int64 // 发送队列满被丢弃的帧
	Pickups           int64
	NamesRejected     int64
	ObserverPromotion int64

	Players     int64 // 当前在线玩家数
	Observers   int64 // 当前排队观察者数
	ColorsInUse int64 // 已分配的调色板颜色
}

func (m *RoomMetrics) IncAccepted()       { atomic.AddInt64(&m.MessagesAccepted, 1) }
func (m *RoomMetrics) IncMalformed()      { atomic.AddInt64(&m.MalformedDropped, 1) }
func (m *RoomMetrics) IncRateLimited()    { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncInboxDropped()   { atomic.AddInt64(&m.InboxDropped, 1) }
func (m *RoomMetrics) IncStray()          { atomic.AddInt64(&m.StrayIgnored, 1) }
func (m *RoomMetrics) IncSendDropped()    { atomic.AddInt64(&m.SendDropped, 1) }
func (m *RoomMetrics) AddPickups(n int)   { atomic.AddInt64(&m.Pickups, int64(n)) }
func (m *RoomMetrics) IncNameRejected()   { atomic.AddInt64(&m.NamesRejected, 1) }
func (m *RoomMetrics) IncPromotion()      { atomic.AddInt64(&m.ObserverPromotion, 1) }
func (m *RoomMetrics) SetPlayers(n int)   { atomic.StoreInt64(&m.Players, int64(n)) }
func (m *RoomMetrics) SetObservers(n int) { atomic.StoreInt64(&m.Observers, int64(n)) }
func (m *RoomMetrics) SetColors(n int)    { atomic.StoreInt64(&m.ColorsInUse, int64(n)) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":         tick,
		"avg_tick_ms":        avgMs,
		"players":            atomic.LoadInt64(&m.Players),
		"observers":          atomic.LoadInt64(&m.Observers),
		"colors_in_use":      atomic.LoadInt64(&m.ColorsInUse),
		"messages_accepted":  atomic.LoadInt64(&m.MessagesAccepted),
		"malformed_dropped":  atomic.LoadInt64(&m.MalformedDropped),
		"rate_limited":       atomic.LoadInt64(&m.RateLimited),
		"inbox_dropped":      atomic.LoadInt64(&m.InboxDropped),
		"stray_ignored":      atomic.LoadInt64(&m.StrayIgnored),
		"send_dropped":       atomic.LoadInt64(&m.SendDropped),
		"pickups":            atomic.LoadInt64(&m.Pickups),
		"names_rejected":     atomic.LoadInt64(&m.NamesRejected),
		"observer_promotion": atomic.LoadInt64(&m.ObserverPromotion),
	}
}
