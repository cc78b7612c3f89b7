package draw

import "sync"

// StrokeLog 单个房间的笔画历史与重做栈。
// 不变量：同一笔画 id 任一时刻至多出现在 strokes 与 redoStack 之一。
// 三个修改操作共用同一把锁彼此线性化；锁只覆盖内存修改，绝不跨网络发送持有
type StrokeLog struct {
	mu        sync.Mutex
	strokes   []Stroke
	redoStack []Stroke
}

func NewStrokeLog() *StrokeLog {
	return &StrokeLog{}
}

// AddStroke 追加一笔并清空整个重做栈：新笔画使所有待重做的笔画失效。
// 笔画 id 不做查重，重复 id 属于客户端问题，服务端照单全收
func (l *StrokeLog) AddStroke(s Stroke) Stroke {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strokes = append(l.strokes, s)
	l.redoStack = l.redoStack[:0]
	return s
}

// UndoLastByUser 从最新往回找该用户自己的最近一笔，移入重做栈并返回。
// 撤销按作者隔离：只动请求者自己的笔画，与其他用户之后画了多少无关。
// 该用户在历史中没有笔画时不做任何修改，返回 false
func (l *StrokeLog) UndoLastByUser(userID string) (Stroke, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.strokes) - 1; i >= 0; i-- {
		if l.strokes[i].UserID == userID {
			removed := l.strokes[i]
			l.strokes = append(l.strokes[:i], l.strokes[i+1:]...)
			l.redoStack = append(l.redoStack, removed)
			return removed, true
		}
	}
	return Stroke{}, false
}

// RedoLastByUser 从重做栈顶往下找该用户最近撤销的一笔，追加回历史末尾。
// 恢复的笔画不还原与他人笔画原本的穿插顺序，统一排在最后
func (l *StrokeLog) RedoLastByUser(userID string) (Stroke, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.redoStack) - 1; i >= 0; i-- {
		if l.redoStack[i].UserID == userID {
			restored := l.redoStack[i]
			l.redoStack = append(l.redoStack[:i], l.redoStack[i+1:]...)
			l.strokes = append(l.strokes, restored)
			return restored, true
		}
	}
	return Stroke{}, false
}

// Snapshot 当前历史的深拷贝，用于新连接的加入握手。
// 调用方随意改动返回值都不会影响服务端状态
func (l *StrokeLog) Snapshot() []Stroke {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Stroke, len(l.strokes))
	for i, s := range l.strokes {
		out[i] = s.clone()
	}
	return out
}

// Store 持有所有房间的笔画日志
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*StrokeLog
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*StrokeLog)}
}

// GetOrCreate 获取或创建指定房间的笔画日志。
// 房间人走光后日志保留，进程存活期间重进还能看到之前的画面
func (s *Store) GetOrCreate(roomID string) *StrokeLog {
	s.mu.RLock()
	l := s.rooms[roomID]
	s.mu.RUnlock()
	if l != nil {
		return l
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l = s.rooms[roomID]; l == nil {
		l = NewStrokeLog()
		s.rooms[roomID] = l
	}
	return l
}
