package draw

// 画笔工具
const (
	ToolBrush  = "brush"
	ToolEraser = "eraser"
)

// 缺省画笔参数。客户端未携带时在协议边界统一补齐，而不是在各使用点各补各的
const (
	DefaultWidth = 5.0
	DefaultTool  = ToolBrush
)

// Point 坐标为客户端归一化后的 [0,1] 数值。
// 归一化/反归一化是客户端的事，服务端原样存储与转发，不做换算
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment 笔画中的一条线段，创建后不可变
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Stroke 一笔完整的笔画。只有收到 stroke_end 时才整体入史，
// 进行中的线段只做实时转发，服务端不落任何半成品
type Stroke struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Color    string    `json:"color"`
	Width    float64   `json:"width"`
	Tool     string    `json:"tool"`
	Segments []Segment `json:"segments"`
}

func (s Stroke) clone() Stroke {
	out := s
	out.Segments = make([]Segment, len(s.Segments))
	copy(out.Segments, s.Segments)
	return out
}

// StrokeParams stroke_start / stroke_end / drawing_step 携带的可选画笔参数
type StrokeParams struct {
	Color string
	Width float64
	Tool  string
}

// WithDefaults 补齐缺省值：颜色取作者自己的配色，宽度 5，工具 brush
func (p StrokeParams) WithDefaults(authorColor string) StrokeParams {
	if p.Color == "" {
		p.Color = authorColor
	}
	if p.Width == 0 {
		p.Width = DefaultWidth
	}
	if p.Tool == "" {
		p.Tool = DefaultTool
	}
	return p
}

// NewStroke 由 stroke_end 的负载组装一笔完整笔画。
// id 由客户端生成、服务端信任；空线段列表是合法笔画（画不出东西而已）
func NewStroke(id, userID string, p StrokeParams, segments []Segment) Stroke {
	if segments == nil {
		segments = []Segment{}
	}
	return Stroke{
		ID:       id,
		UserID:   userID,
		Color:    p.Color,
		Width:    p.Width,
		Tool:     p.Tool,
		Segments: segments,
	}
}
