package server

import "time"

// publishLeaderboard 计算排行并推给所有连接（玩家与观察者）
func (r *Room) publishLeaderboard() {
	r.broadcast(LeaderboardMsg{
		Type:        MsgLeaderboard,
		Leaderboard: toLeaderboard(r.world.Leaderboard()),
	})
}

// resetScores 周期清零，与玩家数无关
func (r *Room) resetScores() {
	r.world.ResetScores()
	r.nextReset = time.Now().Add(r.cfg.ResetPeriod)
	r.publishLeaderboard()
	r.log.Infow("scores reset", "players", r.world.Players.Len())
}

// broadcast 每种编码只序列化一次
func (r *Room) broadcast(msg any) {
	frames := make(map[string][]byte, 2)
	for c := range r.sessions {
		codec := c.Codec()
		frame, ok := frames[codec.Name()]
		if !ok {
			b, err := codec.Marshal(msg)
			if err != nil {
				r.log.Errorw("marshal broadcast", "codec", codec.Name(), "err", err)
				continue
			}
			frame = b
			frames[codec.Name()] = frame
		}
		r.enqueue(c, frame)
	}
}

func (r *Room) send(c Conn, msg any) {
	b, err := c.Codec().Marshal(msg)
	if err != nil {
		r.log.Errorw("marshal message", "conn", c.ID(), "err", err)
		return
	}
	r.enqueue(c, b)
}

// enqueue 非阻塞；慢连接的帧直接丢弃
func (r *Room) enqueue(c Conn, frame []byte) {
	if !c.Enqueue(frame) {
		r.metrics.IncSendDropped()
	}
}
