package server

import (
	"starchase/game"
)

// connState 单个连接的状态：Connecting → {Active, Observing} → Closed
// Connecting 与 Closed 不落在 sessions 表里
type connState int

const (
	stateActive connState = iota + 1
	stateObserving
)

func (s connState) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateObserving:
		return "observing"
	}
	return "unknown"
}

type session struct {
	state    connState
	playerID string
}

// handleJoin 有空位则创建玩家，否则排入观察队列
func (r *Room) handleJoin(c Conn) {
	if _, dup := r.sessions[c]; dup {
		return
	}
	r.startTicking()

	if r.world.Players.Len() < r.cfg.MaxPlayers {
		r.activate(c)
	} else {
		r.sessions[c] = &session{state: stateObserving}
		r.observers = append(r.observers, c)
		r.send(c, ServerFullMsg{
			Type:    MsgServerFull,
			Message: serverFullText,
			Players: snapshotPlayers(r.world),
			Star:    starState(r.world.Star),
		})
		r.log.Infow("observer queued", "conn", c.ID(), "position", len(r.observers))
	}
	r.updateGauges()
}

// activate 为连接创建玩家、发送入场快照并广播排行榜
func (r *Room) activate(c Conn) bool {
	p, err := r.world.Spawn()
	if err != nil {
		// 容量校验保证调色板足够，走到这里说明不变量被破坏
		r.log.DPanicw("spawn failed", "conn", c.ID(), "err", err)
		delete(r.sessions, c)
		c.Close()
		return false
	}
	r.sessions[c] = &session{state: stateActive, playerID: p.ID}
	r.send(c, ConnectionMsg{
		Type:    MsgConnection,
		Players: snapshotPlayers(r.world),
		Star:    starState(r.world.Star),
	})
	r.publishLeaderboard()
	r.log.Infow("player joined", "conn", c.ID(), "player", p.ID, "color", p.Color)
	return true
}

// handleMessage 每条消息都按当前 sessions 表查路由，观察者的消息不参与游戏
func (r *Room) handleMessage(c Conn, msg Inbound) {
	s, ok := r.sessions[c]
	if !ok || s.state != stateActive {
		r.metrics.IncStray()
		return
	}
	p, ok := r.world.Players.Get(s.playerID)
	if !ok {
		r.metrics.IncStray()
		return
	}
	r.metrics.IncAccepted()

	switch m := msg.(type) {
	case MoveMessage:
		p.ApplyMove(m.Direction)
	case SetNameMessage:
		r.setName(c, p, m.Name)
	default:
		r.log.Warnw("unhandled inbound message", "conn", c.ID(), "msg", msg)
	}
}

// setName 名字全局唯一（包括与自己当前的名字相同也视为占用）
func (r *Room) setName(c Conn, p *game.Player, name string) {
	if name == "" {
		return
	}
	if r.world.Players.FindByName(name) != nil {
		r.metrics.IncNameRejected()
		r.send(c, NameTakenMsg{Type: MsgNameTaken, Message: nameTakenText})
		return
	}
	p.Name = name
	r.send(c, NameSetMsg{Type: MsgNameSet, Name: name})
	r.publishLeaderboard()
	r.log.Infow("name set", "player", p.ID, "name", name)
}

// handleLeave 移除玩家或观察者；空出的位置交给排队最久的观察者
func (r *Room) handleLeave(c Conn) {
	s, ok := r.sessions[c]
	if !ok {
		return
	}
	delete(r.sessions, c)
	c.Close()
	r.log.Infow("connection left", "conn", c.ID(), "state", s.state, "player", s.playerID)

	switch s.state {
	case stateObserving:
		r.removeObserver(c)
	case stateActive:
		r.world.Players.Remove(s.playerID)
		if r.promoteObservers() == 0 && r.world.Players.Len() > 0 {
			r.publishLeaderboard()
		}
	}

	if r.world.Players.Len() == 0 {
		r.stopTicking()
	}
	r.updateGauges()
	if len(r.sessions) == 0 && r.onIdle != nil {
		r.onIdle(r)
	}
}

// promoteObservers 按 FIFO 把观察者转为玩家，直到队列为空或房间满员
func (r *Room) promoteObservers() int {
	promoted := 0
	for len(r.observers) > 0 && r.world.Players.Len() < r.cfg.MaxPlayers {
		c := r.observers[0]
		r.observers = r.observers[1:]
		if !r.activate(c) {
			continue
		}
		promoted++
		r.metrics.IncPromotion()
		r.log.Infow("observer promoted", "conn", c.ID(),
			"from", stateObserving, "to", r.sessions[c].state, "waiting", len(r.observers))
	}
	return promoted
}

func (r *Room) removeObserver(c Conn) {
	for i, o := range r.observers {
		if o == c {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Room) updateGauges() {
	r.metrics.SetPlayers(r.world.Players.Len())
	r.metrics.SetObservers(len(r.observers))
	r.metrics.SetColors(r.world.Players.Colors().Len())
}
