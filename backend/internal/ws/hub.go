package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"canvasServer/backend/internal/cache"
	"canvasServer/backend/internal/draw"
)

const presenceTTL = 600 * time.Second

// User 一个在线连接的身份，由 Admit 创建、Remove 销毁
type User struct {
	ID     string
	Color  string
	RoomID string
}

// Hub 房间注册表：在线用户、颜色分配和房间级广播。
// rooms 存连接集合而不是 userId 集合——广播要逐连接投递。
// presence 是外部在线镜像，写失败只记日志，内存状态才是权威
type Hub struct {
	presence cache.PresenceCache

	// 保护 rooms / users / usedColors 的并发访问
	mu         sync.RWMutex
	rooms      map[string]map[*Conn]struct{}
	users      map[*Conn]*User
	usedColors map[string]map[string]bool // roomID -> 占用中的颜色
}

func NewHub(p cache.PresenceCache) *Hub {
	return &Hub{
		presence:   p,
		rooms:      make(map[string]map[*Conn]struct{}),
		users:      make(map[*Conn]*User),
		usedColors: make(map[string]map[string]bool),
	}
}

// Admit 接纳新连接：分配连接 id 和颜色并登记进房间。永不失败。
// 随机兜底色也会登记进占用表，跟调色板颜色一视同仁
func (h *Hub) Admit(ctx context.Context, c *Conn, roomID string) *User {
	h.mu.Lock()
	if h.usedColors[roomID] == nil {
		h.usedColors[roomID] = make(map[string]bool)
	}
	color := draw.NextColor(h.usedColors[roomID])
	h.usedColors[roomID][color] = true

	u := &User{ID: uuid.NewString(), Color: color, RoomID: roomID}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Conn]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	h.users[c] = u
	h.mu.Unlock()

	if err := h.presence.AddMember(ctx, roomID, u.ID, u.Color, presenceTTL); err != nil {
		log.Printf("presence add member failed (user=%s room=%s): %v", u.ID, roomID, err)
	}
	return u
}

// Remove 注销连接并把颜色归还给可用池，之后新接纳的用户可以拿到同一个颜色。
// 未登记的连接是无操作，返回 nil
func (h *Hub) Remove(ctx context.Context, c *Conn) *User {
	h.mu.Lock()
	u := h.users[c]
	if u == nil {
		h.mu.Unlock()
		return nil
	}
	delete(h.users, c)
	delete(h.usedColors[u.RoomID], u.Color)
	if conns := h.rooms[u.RoomID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, u.RoomID)
			delete(h.usedColors, u.RoomID)
		}
	}
	h.mu.Unlock()

	if err := h.presence.RemoveMember(ctx, u.RoomID, u.ID); err != nil {
		log.Printf("presence remove member failed (user=%s room=%s): %v", u.ID, u.RoomID, err)
	}
	return u
}

// UserOf 返回连接对应的身份；没接纳过（或已注销）的连接返回 nil
func (h *Hub) UserOf(c *Conn) *User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.users[c]
}

// ListUsers 当前房间成员快照，用于加入握手
func (h *Hub) ListUsers(roomID string) []UserInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]UserInfo, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if u := h.users[c]; u != nil {
			out = append(out, UserInfo{ID: u.ID, Color: u.Color, RoomID: u.RoomID})
		}
	}
	return out
}

// Broadcast 向房间内除 exclude 外的所有连接投递消息。
// 锁内只取连接快照，投递在锁外做，绝不持锁写网络
func (h *Hub) Broadcast(roomID string, msg OutboundMessage, exclude *Conn) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != exclude {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.enqueue(msg)
	}
}
