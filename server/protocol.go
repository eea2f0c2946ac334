package server

// 服务端 → 客户端消息类型（type 字段）
const (
	MsgConnection  = "connection"
	MsgServerFull  = "serverFull"
	MsgNameSet     = "nameSet"
	MsgNameTaken   = "nameTaken"
	MsgLeaderboard = "leaderboard"
)

const (
	serverFullText = "Server is full"
	nameTakenText  = "This name is already taken. Please choose another one."
)

// ConnectionMsg 新玩家入场时的全量快照
type ConnectionMsg struct {
	Type    string                 `json:"type"`
	Players map[string]PlayerState `json:"players"`
	Star    StarState              `json:"star"`
}

// ServerFullMsg 超出容量、进入观察队列
type ServerFullMsg struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Players map[string]PlayerState `json:"players"`
	Star    StarState              `json:"star"`
}

type NameSetMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type NameTakenMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type LeaderboardMsg struct {
	Type        string             `json:"type"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// StateMsg 每 Tick 的全量状态；没有 type 字段，客户端据此区分
type StateMsg struct {
	Players map[string]PlayerState `json:"players"`
	Star    StarState              `json:"star"`
}
