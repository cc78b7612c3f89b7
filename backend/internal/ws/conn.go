package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"canvasServer/backend/internal/draw"
)

const cursorTTL = 60 * time.Second

// Conn 单个客户端连接的会话协调器。
// 入站事件在 readLoop 里逐条处理，同一连接天然串行；
// 跨连接的并发由 StrokeLog 和 Hub 各自的锁保证
type Conn struct {
	ws    *websocket.Conn
	hub   *Hub
	board *draw.StrokeLog
	// 笔画事件旁路，可为 nil（未配置 Kafka）
	events *draw.Dispatcher

	send chan OutboundMessage

	closeMu sync.Mutex
	closed  bool
}

func NewConn(ws *websocket.Conn, hub *Hub, board *draw.StrokeLog, events *draw.Dispatcher) *Conn {
	return &Conn{ws: ws, hub: hub, board: board, events: events, send: make(chan OutboundMessage, 64)}
}

// enqueue 入队一条出站消息；队列满直接丢弃，慢消费者不能拖住广播方
func (c *Conn) enqueue(msg OutboundMessage) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// closeSend 停止写循环。之后的入队一律丢弃，不会写已关闭的通道
func (c *Conn) closeSend() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Conn) writeLoop() {
	// 持续消费通道里的出站消息，通道关闭即退出
	for msg := range c.send {
		_ = c.ws.WriteJSON(msg)
	}
}

func (c *Conn) readLoop(ctx context.Context) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			// 读错误统一当作断开处理，由调用方做注销和 user_left 广播
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("drop unreadable message: %v", err)
			continue
		}

		user := c.hub.UserOf(c)
		if user == nil {
			// 没接纳过的连接发来的事件：防御性忽略，不动状态也不广播
			continue
		}

		switch msg.Type {
		case "stroke_start":
			c.handleStrokeStart(msg, user)
		case "stroke_segment":
			c.handleStrokeSegment(msg, user)
		case "drawing_step":
			c.handleDrawingStep(data, user)
		case "stroke_end":
			c.handleStrokeEnd(ctx, msg, user)
		case "undo":
			c.handleUndo(ctx, user)
		case "redo":
			c.handleRedo(ctx, user)
		case "cursor":
			c.handleCursor(ctx, data, user)
		default:
			// 未知事件类型忽略，这个协议没有错误回包
		}
	}
}

func (c *Conn) handleStrokeStart(msg ClientMessage, user *User) {
	p := draw.StrokeParams{Color: msg.Color, Width: msg.Width, Tool: msg.Tool}.WithDefaults(user.Color)
	c.hub.Broadcast(user.RoomID, StrokeStartMessage{
		Type:     "stroke_start",
		StrokeID: msg.StrokeID,
		UserID:   user.ID,
		Color:    p.Color,
		Width:    p.Width,
		Tool:     p.Tool,
	}, c)
}

// 进行中的线段只转发不落史
func (c *Conn) handleStrokeSegment(msg ClientMessage, user *User) {
	c.hub.Broadcast(user.RoomID, StrokeSegmentMessage{
		Type:     "stroke_segment",
		StrokeID: msg.StrokeID,
		Start:    msg.Start,
		End:      msg.End,
	}, c)
}

// drawing_step 旧版实时转发路径：负载整体原样转发，只盖身份戳。
// 兼容 style 嵌套写法（style.color / style.width）
func (c *Conn) handleDrawingStep(data []byte, user *User) {
	step := RelayMessage{}
	if err := json.Unmarshal(data, &step); err != nil {
		return
	}
	var p draw.StrokeParams
	if style, ok := step["style"].(map[string]any); ok {
		p.Color, _ = style["color"].(string)
		p.Width, _ = style["width"].(float64)
	}
	p.Tool, _ = step["tool"].(string)
	p = p.WithDefaults(user.Color)

	step["userId"] = user.ID
	step["color"] = p.Color
	step["width"] = p.Width
	step["tool"] = p.Tool
	c.hub.Broadcast(user.RoomID, step, c)
}

// stroke_end 是唯一落史的事件：整笔入史后再转发给房间其他人
func (c *Conn) handleStrokeEnd(ctx context.Context, msg ClientMessage, user *User) {
	p := draw.StrokeParams{Color: msg.Color, Width: msg.Width, Tool: msg.Tool}.WithDefaults(user.Color)
	stored := c.board.AddStroke(draw.NewStroke(msg.StrokeID, user.ID, p, msg.Segments))

	c.hub.Broadcast(user.RoomID, StrokeEndMessage{
		Type:     "stroke_end",
		StrokeID: stored.ID,
		UserID:   user.ID,
		Segments: stored.Segments,
	}, c)
	c.publish(ctx, draw.EventStrokeAdded, stored, user)
}

func (c *Conn) handleUndo(ctx context.Context, user *User) {
	removed, ok := c.board.UndoLastByUser(user.ID)
	if !ok {
		// 没有可撤销的笔画：无操作，不广播
		return
	}
	// undo/redo 不排除发起者，发起者的本地状态也要跟服务端历史对齐
	c.hub.Broadcast(user.RoomID, UndoMessage{
		Type:     "undo",
		StrokeID: removed.ID,
		UserID:   user.ID,
	}, nil)
	c.publish(ctx, draw.EventStrokeUndone, removed, user)
}

func (c *Conn) handleRedo(ctx context.Context, user *User) {
	restored, ok := c.board.RedoLastByUser(user.ID)
	if !ok {
		return
	}
	c.hub.Broadcast(user.RoomID, RedoMessage{
		Type:     "redo",
		StrokeID: restored.ID,
		UserID:   user.ID,
		Color:    restored.Color,
		Width:    restored.Width,
		Tool:     restored.Tool,
		Segments: restored.Segments,
	}, nil)
	c.publish(ctx, draw.EventStrokeRedone, restored, user)
}

func (c *Conn) handleCursor(ctx context.Context, data []byte, user *User) {
	pos := RelayMessage{}
	if err := json.Unmarshal(data, &pos); err != nil {
		return
	}
	pos["userId"] = user.ID
	pos["color"] = user.Color
	c.hub.Broadcast(user.RoomID, pos, c)

	// 光标镜像走旁路，失败只记日志
	if raw, err := json.Marshal(pos); err == nil {
		if err := c.hub.presence.SetCursor(ctx, user.RoomID, user.ID, raw, cursorTTL); err != nil {
			log.Printf("presence set cursor failed (user=%s): %v", user.ID, err)
		}
	}
}

// publish 把已提交的变更发到事件旁路；入队超时就放弃，不拖累画板主链路
func (c *Conn) publish(ctx context.Context, eventType string, s draw.Stroke, user *User) {
	if c.events == nil {
		return
	}
	enqCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	evt := draw.StrokeEvent{
		EventType:    eventType,
		RoomID:       user.RoomID,
		StrokeID:     s.ID,
		UserID:       user.ID,
		Tool:         s.Tool,
		SegmentCount: len(s.Segments),
		AppliedAt:    time.Now(),
	}
	if err := c.events.Enqueue(enqCtx, evt); err != nil {
		log.Printf("stroke event enqueue failed (room=%s stroke=%s): %v", user.RoomID, s.ID, err)
	}
}
