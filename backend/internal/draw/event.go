package draw

import "time"

// 笔画事件类型
const (
	EventStrokeAdded  = "STROKE_ADDED"
	EventStrokeUndone = "STROKE_UNDONE"
	EventStrokeRedone = "STROKE_REDONE"
)

// StrokeEvent 已提交变更的对外事件，走 Kafka 旁路发布给下游（回放、统计等）。
// 尽力送达，不承诺不丢：画板状态的权威始终在进程内存里
type StrokeEvent struct {
	EventType    string    `json:"eventType"`
	RoomID       string    `json:"roomId"`
	StrokeID     string    `json:"strokeId"`
	UserID       string    `json:"userId"`
	Tool         string    `json:"tool,omitempty"`
	SegmentCount int       `json:"segmentCount,omitempty"`
	AppliedAt    time.Time `json:"appliedAt"`
}
