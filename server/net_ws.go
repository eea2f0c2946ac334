package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	maxRoomIDLen   = 32
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	id     string
	ws     *websocket.Conn
	codec  Codec
	send   chan []byte
	closed bool // 只在房间协程里读写
}

func NewClientConn(ws *websocket.Conn, codec Codec, queue int) *ClientConn {
	return &ClientConn{
		id:    uuid.NewString(),
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, queue),
	}
}

func (c *ClientConn) ID() string   { return c.id }
func (c *ClientConn) Codec() Codec { return c.codec }

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		return false
	}
}

// Close 关闭发送队列；写协程发出 close 帧后关闭底层连接
func (c *ClientConn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	frameType := c.codec.FrameType()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(frameType, msg); err != nil {
				// 写失败即关闭连接，读协程随之退出并通知房间移除
				Log.Debugw("write failed", "conn", c.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，解析后投递给房间
func (c *ClientConn) readPump(room *Room, limiter *rate.Limiter) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在房间协程中移除该连接
	defer room.Leave(c)
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("read failed", "conn", c.id, "err", err)
			}
			return
		}
		if !limiter.Allow() {
			room.metrics.IncRateLimited()
			continue
		}
		msg, err := DecodeInbound(c.codec, payload)
		if err != nil {
			room.metrics.IncMalformed()
			Log.Debugw("drop inbound frame", "conn", c.id, "err", err)
			continue
		}
		if err := room.Deliver(c, msg); err != nil {
			if errors.Is(err, ErrRoomStopped) {
				return
			}
			room.metrics.IncInboxDropped()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 局域网游戏：允许所有来源
		return true
	},
}

// HandleWS WebSocket 接入：?room=arena&codec=json|msgpack
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := m.roomParam(r)
	if len(roomID) > maxRoomIDLen {
		http.Error(w, "room id too long", http.StatusBadRequest)
		return
	}
	codec, ok := CodecByName(r.URL.Query().Get("codec"))
	if !ok {
		http.Error(w, "unknown codec", http.StatusBadRequest)
		return
	}
	if !m.admits(roomID) {
		http.Error(w, ErrTooManyRooms.Error(), http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := NewClientConn(ws, codec, m.cfg.SendQueue)
	room, err := m.Join(roomID, client)
	if err != nil {
		// 预检之后房间数仍可能被并发的请求占满
		Log.Warnw("join rejected", "room", roomID, "err", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	Log.Infow("connection accepted", "room", roomID, "conn", client.ID(), "remote", r.RemoteAddr, "codec", codec.Name())

	limiter := rate.NewLimiter(rate.Limit(m.cfg.MaxMessagesPerSec), m.cfg.MaxMessagesPerSec)
	go client.writePump()
	go client.readPump(room, limiter)
}
