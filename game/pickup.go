package game

import (
	"math"
	"math/rand"
)

// Star 全局唯一的收集物
type Star struct {
	X float64
	Y float64
}

// NewStar 进程启动时的初始位置，范围 [0, 800) × [0, 600)
func NewStar(rng *rand.Rand) Star {
	return Star{X: rng.Float64() * StarInitRangeX, Y: rng.Float64() * StarInitRangeY}
}

// Relocate 拾取后换到新的随机位置
func (s *Star) Relocate(rng *rand.Rand) {
	s.X, s.Y = RandomPosition(rng)
}

// Touches 轴对齐方盒判定（不是圆形半径）
func (s Star) Touches(p *Player) bool {
	return math.Abs(p.X-s.X) < PickupHalfExtent && math.Abs(p.Y-s.Y) < PickupHalfExtent
}

// CollectStar 按玩家顺序逐个判定拾取；同一 Tick 多人拾取时每人得 1 分，
// 星星每次都会重定位，最终位置以最后一次为准。返回本 Tick 得分的玩家
func CollectStar(players []*Player, star *Star, rng *rand.Rand) []*Player {
	var scored []*Player
	for _, p := range players {
		if !star.Touches(p) {
			continue
		}
		p.Score++
		star.Relocate(rng)
		scored = append(scored, p)
	}
	return scored
}

// RandomPosition 出生点与星星共用的整数随机坐标
func RandomPosition(rng *rand.Rand) (float64, float64) {
	return float64(rng.Intn(SpawnRangeX)), float64(rng.Intn(SpawnRangeY))
}
