package server

import (
	"time"

	"starchase/game"
)

// startTicking 第一个连接到来时懒启动 Tick 循环
func (r *Room) startTicking() {
	if r.ticker != nil {
		return
	}
	r.ticker = time.NewTicker(r.cfg.TickInterval())
	r.tickC = r.ticker.C
	r.log.Debugw("tick loop started", "interval", r.cfg.TickInterval())
}

// stopTicking 玩家数归零时停止；下一个连接再启动
func (r *Room) stopTicking() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	r.ticker = nil
	r.tickC = nil
	r.log.Debugw("tick loop stopped", "ticks", r.tickSeq)
}

func (r *Room) ticking() bool { return r.ticker != nil }

// tick 核心循环：物理 → 碰撞 → 拾取 → 广播全量状态
func (r *Room) tick() {
	start := time.Now()
	r.tickSeq++

	scored := r.world.Step()
	if len(scored) > 0 {
		r.metrics.AddPickups(len(scored))
		for _, p := range scored {
			r.log.Debugw("star collected", "player", p.ID, "score", p.Score)
		}
		r.publishLeaderboard()
	}

	r.broadcast(StateMsg{
		Players: snapshotPlayers(r.world),
		Star:    starState(r.world.Star),
	})
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

func starState(s game.Star) StarState {
	return StarState{X: s.X, Y: s.Y}
}
