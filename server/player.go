package server

import "starchase/game"

// PlayerState 为广播给客户端的玩家状态
type PlayerState struct {
	ID            string  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	SpeedX        float64 `json:"speedX"`
	SpeedY        float64 `json:"speedY"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Score         int     `json:"score"`
	Direction     string  `json:"direction"`
	AccelerationX float64 `json:"accelerationX"`
	AccelerationY float64 `json:"accelerationY"`
}

// StarState 星星坐标
type StarState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LeaderboardEntry 排行榜一行
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func toPlayerState(p *game.Player) PlayerState {
	return PlayerState{
		ID:            p.ID,
		X:             p.X,
		Y:             p.Y,
		SpeedX:        p.SpeedX,
		SpeedY:        p.SpeedY,
		Name:          p.Name,
		Color:         p.Color,
		Score:         p.Score,
		Direction:     string(p.Direction),
		AccelerationX: p.AccelerationX,
		AccelerationY: p.AccelerationY,
	}
}

// snapshotPlayers 以 id 为键的全量玩家表
func snapshotPlayers(w *game.World) map[string]PlayerState {
	out := make(map[string]PlayerState, w.Players.Len())
	for _, p := range w.Players.All() {
		out[p.ID] = toPlayerState(p)
	}
	return out
}

func toLeaderboard(entries []game.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardEntry{Name: e.Name, Score: e.Score})
	}
	return out
}
