package game

import "math/rand"

// World 一个房间的全部模拟状态，只由房间的调度协程持有和修改
type World struct {
	Players *Registry
	Star    Star
	rng     *rand.Rand
}

func NewWorld(rng *rand.Rand) *World {
	return &World{
		Players: NewRegistry(),
		Star:    NewStar(rng),
		rng:     rng,
	}
}

// Spawn 创建一名玩家
func (w *World) Spawn() (*Player, error) {
	return w.Players.Create(w.rng)
}

// Step 一个 Tick：物理 → 碰撞 → 拾取。返回本 Tick 得分的玩家
func (w *World) Step() []*Player {
	players := w.Players.All()
	for _, p := range players {
		Integrate(p)
	}
	ResolveCollisions(players)
	return CollectStar(players, &w.Star, w.rng)
}

// Leaderboard 当前在线玩家的排行
func (w *World) Leaderboard() []LeaderboardEntry {
	return Leaderboard(w.Players.All())
}

// ResetScores 所有在线玩家分数清零
func (w *World) ResetScores() {
	ResetScores(w.Players.All())
}
