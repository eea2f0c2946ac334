package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

const adminTimeout = 2 * time.Second

type adminConfig struct {
	MaxPlayers  *int    `json:"maxPlayers,omitempty"`
	TickRate    *int    `json:"tickRate,omitempty"`
	ResetPeriod *string `json:"resetPeriod,omitempty"`
}

func toAdminConfig(cfg Config) adminConfig {
	period := cfg.ResetPeriod.String()
	return adminConfig{
		MaxPlayers:  &cfg.MaxPlayers,
		TickRate:    &cfg.TickRate,
		ResetPeriod: &period,
	}
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=arena  返回当前配置
// POST /admin/config?room=arena 以 JSON 载荷更新部分字段
func (m *Manager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, ok := m.lookupRoom(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		st, err := room.Status(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, toAdminConfig(Config{
			MaxPlayers:  st.MaxPlayers,
			TickRate:    st.TickRate,
			ResetPeriod: st.ResetPeriod,
		}))
	case http.MethodPost:
		var body adminConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		patch := ConfigPatch{MaxPlayers: body.MaxPlayers, TickRate: body.TickRate}
		if body.ResetPeriod != nil {
			d, err := time.ParseDuration(*body.ResetPeriod)
			if err != nil {
				http.Error(w, "invalid resetPeriod", http.StatusBadRequest)
				return
			}
			patch.ResetPeriod = &d
		}
		cfg, err := room.Configure(ctx, patch)
		switch {
		case errors.Is(err, ErrInvalidConfig):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, toAdminConfig(cfg))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=arena
func (m *Manager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := m.lookupRoom(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), adminTimeout)
	defer cancel()
	st, err := room.Status(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	untilReset := time.Until(st.NextReset).Round(time.Second)
	if untilReset < 0 {
		untilReset = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":        st.ID,
		"tick":        st.Tick,
		"ticking":     st.Ticking,
		"connections": st.Connections,
		"started":     humanize.Time(st.Started),
		"next_reset":  durafmt.Parse(untilReset).LimitFirstN(2).String(),
		"metrics":     room.Metrics().Snapshot(),
	})
}

// HandleRooms 列出所有房间
func (m *Manager) HandleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": m.RoomIDs()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
