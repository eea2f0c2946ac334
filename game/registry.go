package game

import (
	"fmt"
	"math/rand"
)

// Registry 连接身份 → 玩家状态。按加入顺序迭代，保证 Tick 内处理顺序稳定
type Registry struct {
	players map[string]*Player
	order   []string
	colors  *ColorPool
	// 进程内单调递增，删除后也不复用 id
	counter uint64
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*Player),
		colors:  NewColorPool(),
	}
}

// Create 分配新 id、随机出生点和空闲颜色
func (r *Registry) Create(rng *rand.Rand) (*Player, error) {
	color, err := r.colors.Acquire(rng)
	if err != nil {
		return nil, err
	}
	r.counter++
	x, y := RandomPosition(rng)
	p := &Player{
		ID:        fmt.Sprintf("player-%d", r.counter),
		X:         x,
		Y:         y,
		Color:     color,
		Direction: FacingUp,
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

// Remove 删除玩家并归还颜色；不存在时什么也不做
func (r *Registry) Remove(id string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.colors.Release(p.Color)
	return p, true
}

func (r *Registry) Get(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// FindByName 线性扫描，规模不超过房间容量
func (r *Registry) FindByName(name string) *Player {
	for _, id := range r.order {
		if p := r.players[id]; p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Registry) Len() int { return len(r.players) }

// All 按加入顺序返回全部玩家
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// Colors 只读访问颜色池；房间据此上报 colors_in_use
func (r *Registry) Colors() *ColorPool { return r.colors }
