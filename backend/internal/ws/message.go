package ws

import (
	"encoding/json"

	"canvasServer/backend/internal/draw"
)

// ClientMessage 入站事件信封。可选字段缺省时按文档化默认值补齐，
// 不做 schema 校验（宽松转发策略）。start/end 保持原始 JSON 原样转发
type ClientMessage struct {
	Type     string          `json:"type"`
	StrokeID string          `json:"strokeId"`
	Color    string          `json:"color"`
	Width    float64         `json:"width"`
	Tool     string          `json:"tool"`
	Start    json.RawMessage `json:"start"`
	End      json.RawMessage `json:"end"`
	Segments []draw.Segment  `json:"segments"`
}

// 出站消息接口
type OutboundMessage interface {
	MessageType() string
}

type UserInfo struct {
	ID     string `json:"id"`
	Color  string `json:"color"`
	RoomID string `json:"roomId"`
}

type BoardState struct {
	Strokes []draw.Stroke `json:"strokes"`
}

// JoinedMessage 加入握手的私发消息：自己的身份 + 成员列表 + 全量笔画快照
type JoinedMessage struct {
	Type   string     `json:"type"`
	UserID string     `json:"userId"`
	Color  string     `json:"color"`
	Users  []UserInfo `json:"users"`
	State  BoardState `json:"state"`
}

type UserJoinedMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Color  string `json:"color"`
	RoomID string `json:"roomId"`
}

type UserLeftMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type StrokeStartMessage struct {
	Type     string  `json:"type"`
	StrokeID string  `json:"strokeId"`
	UserID   string  `json:"userId"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Tool     string  `json:"tool"`
}

type StrokeSegmentMessage struct {
	Type     string          `json:"type"`
	StrokeID string          `json:"strokeId"`
	Start    json.RawMessage `json:"start,omitempty"`
	End      json.RawMessage `json:"end,omitempty"`
}

type StrokeEndMessage struct {
	Type     string         `json:"type"`
	StrokeID string         `json:"strokeId"`
	UserID   string         `json:"userId"`
	Segments []draw.Segment `json:"segments"`
}

// UndoMessage 连发起者也要收到，本地画面要和服务端历史对齐
type UndoMessage struct {
	Type     string `json:"type"`
	StrokeID string `json:"strokeId"`
	UserID   string `json:"userId"`
}

// RedoMessage 带上完整笔画：没见过这笔的成员（撤销发生在其加入前）也能重建
type RedoMessage struct {
	Type     string         `json:"type"`
	StrokeID string         `json:"strokeId"`
	UserID   string         `json:"userId"`
	Color    string         `json:"color"`
	Width    float64        `json:"width"`
	Tool     string         `json:"tool"`
	Segments []draw.Segment `json:"segments"`
}

// RelayMessage 原样转发的动态负载（drawing_step / cursor）。
// 字段不认识也照发，服务端只负责盖身份戳
type RelayMessage map[string]any

// 隐式实现 OutboundMessage 接口
func (m JoinedMessage) MessageType() string        { return m.Type }
func (m UserJoinedMessage) MessageType() string    { return m.Type }
func (m UserLeftMessage) MessageType() string      { return m.Type }
func (m StrokeStartMessage) MessageType() string   { return m.Type }
func (m StrokeSegmentMessage) MessageType() string { return m.Type }
func (m StrokeEndMessage) MessageType() string     { return m.Type }
func (m UndoMessage) MessageType() string          { return m.Type }
func (m RedoMessage) MessageType() string          { return m.Type }

func (m RelayMessage) MessageType() string {
	t, _ := m["type"].(string)
	return t
}
