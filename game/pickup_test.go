package game

import (
	"math/rand"
	"testing"
)

func TestCollectStarAwardsPointAndRelocates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	star := Star{X: 400, Y: 300}
	p := &Player{X: 410, Y: 290}

	scored := CollectStar([]*Player{p}, &star, rng)

	if len(scored) != 1 || scored[0] != p {
		t.Fatalf("expected player to score, got %v", scored)
	}
	if p.Score != 1 {
		t.Errorf("expected score 1, got %d", p.Score)
	}
	if star.X < 0 || star.X >= StarInitRangeX || star.Y < 0 || star.Y >= StarInitRangeY {
		t.Errorf("relocated star out of range: (%f, %f)", star.X, star.Y)
	}
}

func TestCollectStarUsesBoxNotRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	star := Star{X: 400, Y: 300}

	// 对角 (19, 19) 距离约 26.9，圆形判定不会命中，方盒会
	corner := &Player{X: 419, Y: 319}
	if got := CollectStar([]*Player{corner}, &star, rng); len(got) != 1 {
		t.Error("diagonal point inside the box should pick up")
	}

	star = Star{X: 400, Y: 300}
	edge := &Player{X: 420, Y: 300}
	if got := CollectStar([]*Player{edge}, &star, rng); len(got) != 0 {
		t.Error("exactly 20 away must not pick up")
	}
	if star.X != 400 || star.Y != 300 {
		t.Error("star must stay put without a pickup")
	}
}

func TestCollectStarSameTickChain(t *testing.T) {
	// 预先算出第一次重定位的位置，让第二名玩家正好站在那里
	peek := rand.New(rand.NewSource(7))
	nx, ny := RandomPosition(peek)
	lastX, lastY := RandomPosition(peek)

	rng := rand.New(rand.NewSource(7))
	star := Star{X: 100, Y: 100}
	first := &Player{X: 100, Y: 100}
	second := &Player{X: nx, Y: ny}

	scored := CollectStar([]*Player{first, second}, &star, rng)

	if len(scored) != 2 || first.Score != 1 || second.Score != 1 {
		t.Fatalf("expected both players to score once, got %d scorers", len(scored))
	}
	if star.X != lastX || star.Y != lastY {
		t.Errorf("last relocation should win, got (%f, %f) want (%f, %f)", star.X, star.Y, lastX, lastY)
	}
}

func TestRandomPositionRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		x, y := RandomPosition(rng)
		if x < 0 || x >= SpawnRangeX || y < 0 || y >= SpawnRangeY {
			t.Fatalf("position out of range: (%f, %f)", x, y)
		}
		if x != float64(int(x)) || y != float64(int(y)) {
			t.Fatalf("expected integer coordinates, got (%f, %f)", x, y)
		}
	}
}
