package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"canvasServer/backend/internal/draw"
)

// 客户端可能托管在别的域名（静态站 + 独立实时服务的部署形态），放开 Origin 校验
var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
	return true
}}

type Manager struct {
	hub    *Hub
	store  *draw.Store
	roomID string
	events *draw.Dispatcher
}

func NewManager(hub *Hub, store *draw.Store, roomID string, events *draw.Dispatcher) *Manager {
	return &Manager{hub: hub, store: store, roomID: roomID, events: events}
}

// WebSocketConnect 连接的完整生命周期：升级 → 接纳 → 下发 joined 快照 →
// 广播 user_joined → 读循环 → 断开时注销并广播 user_left
func (m *Manager) WebSocketConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v (origin=%s)", err, c.Request.Header.Get("Origin"))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	board := m.store.GetOrCreate(m.roomID)
	wsConn := NewConn(conn, m.hub, board, m.events)

	user := m.hub.Admit(ctx, wsConn, m.roomID)

	// 先启动写循环，保证握手消息和后续广播都有人消费
	go wsConn.writeLoop()

	// 私发 joined：自己的身份、当前成员列表、全量笔画快照
	wsConn.enqueue(JoinedMessage{
		Type:   "joined",
		UserID: user.ID,
		Color:  user.Color,
		Users:  m.hub.ListUsers(m.roomID),
		State:  BoardState{Strokes: board.Snapshot()},
	})
	m.hub.Broadcast(m.roomID, UserJoinedMessage{
		Type:   "user_joined",
		ID:     user.ID,
		Color:  user.Color,
		RoomID: user.RoomID,
	}, wsConn)

	// 阻塞至连接断开
	wsConn.readLoop(ctx)

	// 断开是正常状态迁移不是错误：注销身份、归还颜色、通知房间剩下的人
	if left := m.hub.Remove(ctx, wsConn); left != nil {
		m.hub.Broadcast(left.RoomID, UserLeftMessage{Type: "user_left", UserID: left.ID}, nil)
	}
	wsConn.closeSend()
}
