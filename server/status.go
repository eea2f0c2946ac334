package server

import "time"

// RoomStatus 房间运行状态快照（在房间协程内生成）
type RoomStatus struct {
	ID          string
	Players     int
	Observers   int
	Connections int
	Tick        int64
	Ticking     bool
	MaxPlayers  int
	TickRate    int
	ResetPeriod time.Duration
	NextReset   time.Time
	Started     time.Time
}

// ConfigPatch 运行时可调整的字段，nil 表示不修改
type ConfigPatch struct {
	MaxPlayers  *int
	TickRate    *int
	ResetPeriod *time.Duration
}

func (r *Room) status() RoomStatus {
	return RoomStatus{
		ID:          r.ID,
		Players:     r.world.Players.Len(),
		Observers:   len(r.observers),
		Connections: len(r.sessions),
		Tick:        r.tickSeq,
		Ticking:     r.ticking(),
		MaxPlayers:  r.cfg.MaxPlayers,
		TickRate:    r.cfg.TickRate,
		ResetPeriod: r.cfg.ResetPeriod,
		NextReset:   r.nextReset,
		Started:     r.started,
	}
}

// applyPatch 校验通过后整体生效；扩容时立即让观察者补位
func (r *Room) applyPatch(p ConfigPatch) (Config, error) {
	next := r.cfg
	if p.MaxPlayers != nil {
		next.MaxPlayers = *p.MaxPlayers
	}
	if p.TickRate != nil {
		next.TickRate = *p.TickRate
	}
	if p.ResetPeriod != nil {
		next.ResetPeriod = *p.ResetPeriod
	}
	if err := next.Validate(); err != nil {
		return r.cfg, err
	}

	prev := r.cfg
	r.cfg = next
	if next.TickRate != prev.TickRate && r.ticker != nil {
		r.ticker.Reset(next.TickInterval())
	}
	if next.ResetPeriod != prev.ResetPeriod {
		if r.resetTicker != nil {
			r.resetTicker.Reset(next.ResetPeriod)
		}
		r.nextReset = time.Now().Add(next.ResetPeriod)
	}
	if next.MaxPlayers > prev.MaxPlayers {
		r.promoteObservers()
		r.updateGauges()
	}
	r.log.Infow("config updated",
		"maxPlayers", next.MaxPlayers, "tickRate", next.TickRate, "resetPeriod", next.ResetPeriod)
	return next, nil
}
