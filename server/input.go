package server

import (
	"errors"
	"fmt"
	"strings"

	"starchase/game"
)

// 客户端 → 服务端消息类型
const (
	MsgMove    = "move"
	MsgSetName = "setName"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Inbound 入站消息的封闭集合：MoveMessage | SetNameMessage
type Inbound interface {
	inbound()
}

// MoveMessage 对应轴施加一次加速度
type MoveMessage struct {
	Direction game.Move
}

// SetNameMessage 改名请求，Name 已去除首尾空白
type SetNameMessage struct {
	Name string
}

func (MoveMessage) inbound()    {}
func (SetNameMessage) inbound() {}

// 入站的原始结构（WebSocket 帧）
// 示例：{"type":"move","direction":"up"}、{"type":"setName","name":"Alice"}
type inputMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
	Name      string `json:"name,omitempty"`
}

// DecodeInbound 在连接的读协程里解析，只有合法的消息才会进入房间
func DecodeInbound(codec Codec, payload []byte) (Inbound, error) {
	var im inputMessage
	if err := codec.Unmarshal(payload, &im); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch im.Type {
	case MsgMove:
		m := game.Move(im.Direction)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: direction %q", ErrMalformed, im.Direction)
		}
		return MoveMessage{Direction: m}, nil
	case MsgSetName:
		return SetNameMessage{Name: strings.TrimSpace(im.Name)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, im.Type)
	}
}
