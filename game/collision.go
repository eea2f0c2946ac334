package game

import "math"

// ResolveCollisions 两两检查玩家重叠：交换速度向量，再沿中心连线各推开 overlap/2
// O(n²)，n 不超过房间容量
func ResolveCollisions(players []*Player) {
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			resolvePair(players[i], players[j])
		}
	}
}

func resolvePair(a, b *Player) {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dist := math.Hypot(dx, dy)
	if dist >= CollisionDistance {
		return
	}

	a.SpeedX, b.SpeedX = b.SpeedX, a.SpeedX
	a.SpeedY, b.SpeedY = b.SpeedY, a.SpeedY

	// 完全重合时没有中心连线，固定沿 x 轴分开
	nx, ny := 1.0, 0.0
	if dist > 0 {
		nx, ny = dx/dist, dy/dist
	}
	half := (CollisionDistance - dist) / 2

	a.X = clamp(a.X+nx*half, 0, MaxX)
	a.Y = clamp(a.Y+ny*half, 0, MaxY)
	b.X = clamp(b.X-nx*half, 0, MaxX)
	b.Y = clamp(b.Y-ny*half, 0, MaxY)
}
