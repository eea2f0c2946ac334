package game

import "math"

// Integrate 推进单个玩家一个 Tick：加速度 → 速度 → 位置，然后处理边界反弹
func Integrate(p *Player) {
	p.SpeedX += p.AccelerationX
	p.SpeedY += p.AccelerationY

	p.SpeedX *= 1 - Friction
	p.SpeedY *= 1 - Friction

	p.SpeedX = clamp(p.SpeedX, -MaxSpeed, MaxSpeed)
	p.SpeedY = clamp(p.SpeedY, -MaxSpeed, MaxSpeed)

	p.X += p.SpeedX
	p.Y += p.SpeedY

	p.AccelerationX = 0
	p.AccelerationY = 0

	if p.X < 0 || p.X > MaxX {
		p.SpeedX *= BounceDamping
		p.X = clamp(p.X, 0, MaxX)
	}
	if p.Y < 0 || p.Y > MaxY {
		p.SpeedY *= BounceDamping
		p.Y = clamp(p.Y, 0, MaxY)
	}

	p.Direction = facingOf(p.SpeedX, p.SpeedY, p.Direction)
}

// facingOf 按 atan2 角度划分 8 个 45° 扇区；近乎静止时沿用旧朝向
func facingOf(vx, vy float64, prev Facing) Facing {
	if math.Abs(vx) < RestSpeed && math.Abs(vy) < RestSpeed {
		return prev
	}
	// 屏幕坐标系 y 轴向下，正角度对应 "down"
	angle := math.Atan2(vy, vx) * 180 / math.Pi
	switch {
	case angle >= -22.5 && angle < 22.5:
		return FacingRight
	case angle >= 22.5 && angle < 67.5:
		return FacingDownRight
	case angle >= 67.5 && angle < 112.5:
		return FacingDown
	case angle >= 112.5 && angle < 157.5:
		return FacingDownLeft
	case angle >= 157.5 || angle < -157.5:
		return FacingLeft
	case angle >= -157.5 && angle < -112.5:
		return FacingUpLeft
	case angle >= -112.5 && angle < -67.5:
		return FacingUp
	default:
		return FacingUpRight
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
