package server

import (
	"errors"
	"net/http"
	"sort"
	"sync"
)

// ErrTooManyRooms 房间数已达 MaxRooms 上限
var ErrTooManyRooms = errors.New("too many rooms")

// Manager 管理多个房间的生命周期；每个房间是一个独立的世界
// 除默认房间外，最后一个连接离开后房间即被回收
type Manager struct {
	cfg Config

	mu     sync.RWMutex
	rooms  map[string]*Room
	opts   []RoomOption
	closed bool
}

// NewManager 创建房间管理器；opts 会应用到之后创建的每个房间
func NewManager(cfg Config, opts ...RoomOption) *Manager {
	return &Manager{
		cfg:   cfg,
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// GetOrCreateRoom 获取或创建房间，并启动房间协程
func (m *Manager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(id)
}

// Join 在持锁状态下把连接投递进房间，回收判断因此不会漏掉刚进来的连接
func (m *Manager) Join(id string, c Conn) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.getOrCreateLocked(id)
	if err != nil {
		return nil, err
	}
	if err := r.Join(c); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Manager) getOrCreateLocked(id string) (*Room, error) {
	if m.closed {
		return nil, ErrRoomStopped
	}
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	if id != m.cfg.DefaultRoom && len(m.rooms) >= m.cfg.MaxRooms {
		return nil, ErrTooManyRooms
	}
	r := NewRoom(id, m.cfg, m.opts...)
	r.onIdle = m.reapLater
	m.rooms[id] = r
	go r.Run()
	Log.Infow("room created", "room", id, "rooms", len(m.rooms))
	return r, nil
}

// admits 升级 WebSocket 之前的预检；最终以 Join 的结果为准
func (m *Manager) admits(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}
	_, ok := m.rooms[id]
	return ok || id == m.cfg.DefaultRoom || len(m.rooms) < m.cfg.MaxRooms
}

func (m *Manager) reapLater(r *Room) { go m.reap(r) }

// reap 回收没有任何连接的房间；默认房间常驻
func (m *Manager) reap(r *Room) {
	if r.ID == m.cfg.DefaultRoom {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[r.ID] != r {
		return
	}
	if !r.closeIfIdle() {
		return
	}
	<-r.Done()
	delete(m.rooms, r.ID)
	Log.Infow("room removed", "room", r.ID, "rooms", len(m.rooms))
}

// Room 查找已存在的房间
func (m *Manager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 按字典序返回所有房间 id
func (m *Manager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有房间并等待其协程退出；之后不再创建房间
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
	for _, r := range rooms {
		<-r.Done()
	}
}

func (m *Manager) roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return m.cfg.DefaultRoom
}

// lookupRoom 管理接口只查询已存在的房间，不会顺带创建
func (m *Manager) lookupRoom(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	id := m.roomParam(r)
	room, ok := m.Room(id)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	return room, true
}
