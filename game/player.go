package game

// Facing 八方向朝向，由速度方向推导
type Facing string

const (
	FacingUp        Facing = "up"
	FacingUpRight   Facing = "up-right"
	FacingRight     Facing = "right"
	FacingDownRight Facing = "down-right"
	FacingDown      Facing = "down"
	FacingDownLeft  Facing = "down-left"
	FacingLeft      Facing = "left"
	FacingUpLeft    Facing = "up-left"
)

// Move 客户端的移动意图
type Move string

const (
	MoveUp    Move = "up"
	MoveDown  Move = "down"
	MoveLeft  Move = "left"
	MoveRight Move = "right"
)

// Valid 是否为四个合法方向之一
func (m Move) Valid() bool {
	switch m {
	case MoveUp, MoveDown, MoveLeft, MoveRight:
		return true
	}
	return false
}

// Player 服务端权威的玩家状态
type Player struct {
	ID     string
	X, Y   float64
	SpeedX float64
	SpeedY float64
	// 加速度只在一个 Tick 内有效，物理步结束时清零
	AccelerationX float64
	AccelerationY float64
	Name          string
	Color         string
	Score         int
	Direction     Facing
}

// ApplyMove 记录移动意图：只改对应轴的加速度，下一个 Tick 生效
func (p *Player) ApplyMove(m Move) bool {
	switch m {
	case MoveUp:
		p.AccelerationY = -Acceleration
	case MoveDown:
		p.AccelerationY = Acceleration
	case MoveLeft:
		p.AccelerationX = -Acceleration
	case MoveRight:
		p.AccelerationX = Acceleration
	default:
		return false
	}
	return true
}
