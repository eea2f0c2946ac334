package game

import (
	"errors"
	"math/rand"
)

// Palette 固定的 10 种颜色，房间容量不能超过它
var Palette = []string{"red", "blue", "green", "yellow", "purple", "orange", "pink", "lapis", "white", "black"}

// ErrPaletteExhausted 没有空闲颜色（容量配置正确时不可能发生）
var ErrPaletteExhausted = errors.New("game: color palette exhausted")

// ColorPool 记录已分配的颜色，保证在线玩家之间颜色互不相同
type ColorPool struct {
	used map[string]bool
}

func NewColorPool() *ColorPool {
	return &ColorPool{used: make(map[string]bool, len(Palette))}
}

// Acquire 从空闲颜色中均匀随机取一个
func (c *ColorPool) Acquire(rng *rand.Rand) (string, error) {
	free := make([]string, 0, len(Palette))
	for _, color := range Palette {
		if !c.used[color] {
			free = append(free, color)
		}
	}
	if len(free) == 0 {
		return "", ErrPaletteExhausted
	}
	color := free[rng.Intn(len(free))]
	c.used[color] = true
	return color, nil
}

// Release 归还颜色；未分配的颜色直接忽略
func (c *ColorPool) Release(color string) {
	delete(c.used, color)
}

// Len 已分配的颜色数
func (c *ColorPool) Len() int { return len(c.used) }
