package game

// 世界与手感参数（单位：像素 / Tick）
const (
	MaxX = 780.0 // 玩家坐标上界（画布宽 800 减去精灵尺寸）
	MaxY = 580.0

	SpawnRangeX = 750 // 出生点与星星重定位：[0, 750) × [0, 550) 的整数坐标
	SpawnRangeY = 550

	StarInitRangeX = 800.0 // 进程启动时星星的初始范围
	StarInitRangeY = 600.0

	Acceleration  = 0.5  // 每条 move 消息施加的单 Tick 加速度
	Friction      = 0.05 // 每 Tick 速度衰减比例
	MaxSpeed      = 7.0
	BounceDamping = -0.5 // 撞墙时速度反向并减半

	RestSpeed = 0.1 // 两轴速度都低于该值时保持原朝向

	CollisionDistance = 40.0 // 两名玩家中心距小于该值视为碰撞
	PickupHalfExtent  = 20.0 // 拾取判定为轴对齐方盒，半边长 20
)
