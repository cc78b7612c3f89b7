package draw

import (
	"reflect"
	"testing"
)

func testStroke(id, userID string, segs ...Segment) Stroke {
	if segs == nil {
		segs = []Segment{}
	}
	return Stroke{ID: id, UserID: userID, Color: "#e74c3c", Width: 5, Tool: ToolBrush, Segments: segs}
}

func historyIDs(l *StrokeLog) []string {
	snap := l.Snapshot()
	ids := make([]string, len(snap))
	for i, s := range snap {
		ids[i] = s.ID
	}
	return ids
}

func TestAddStroke_SnapshotKeepsCallOrder(t *testing.T) {
	l := NewStrokeLog()
	// 多个用户交错落笔，快照必须严格按提交顺序返回
	l.AddStroke(testStroke("s1", "u1"))
	l.AddStroke(testStroke("s2", "u2"))
	l.AddStroke(testStroke("s3", "u1"))

	got := historyIDs(l)
	want := []string{"s1", "s2", "s3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Snapshot ids = %v, want %v", got, want)
	}
}

func TestUndo_IsPerAuthor(t *testing.T) {
	l := NewStrokeLog()
	l.AddStroke(testStroke("s1", "u1"))
	l.AddStroke(testStroke("s2", "u1"))
	l.AddStroke(testStroke("s3", "u2"))

	// u1 撤销的是自己最近的 s2，不是全局最新的 s3
	removed, ok := l.UndoLastByUser("u1")
	if !ok || removed.ID != "s2" {
		t.Fatalf("first undo = (%v, %v), want s2", removed.ID, ok)
	}
	if got := historyIDs(l); !reflect.DeepEqual(got, []string{"s1", "s3"}) {
		t.Fatalf("history after undo = %v, want [s1 s3]", got)
	}

	removed, ok = l.UndoLastByUser("u1")
	if !ok || removed.ID != "s1" {
		t.Fatalf("second undo = (%v, %v), want s1", removed.ID, ok)
	}

	// 第三次撤销没有可撤的笔画，必须是无操作
	if _, ok = l.UndoLastByUser("u1"); ok {
		t.Fatalf("third undo should be a no-op")
	}
	if got := historyIDs(l); !reflect.DeepEqual(got, []string{"s3"}) {
		t.Fatalf("history = %v, want [s3]", got)
	}
}

func TestRedo_RestoresExactStrokeAtEnd(t *testing.T) {
	l := NewStrokeLog()
	orig := testStroke("s1", "u1", Segment{Start: Point{X: 0.1, Y: 0.2}, End: Point{X: 0.3, Y: 0.4}})
	l.AddStroke(orig)
	l.AddStroke(testStroke("s2", "u2"))

	if _, ok := l.UndoLastByUser("u1"); !ok {
		t.Fatalf("undo failed")
	}

	restored, ok := l.RedoLastByUser("u1")
	if !ok {
		t.Fatalf("redo failed")
	}
	if !reflect.DeepEqual(restored, orig) {
		t.Fatalf("restored = %+v, want %+v", restored, orig)
	}
	// 恢复的笔画追加在末尾，不回到原来的位置
	if got := historyIDs(l); !reflect.DeepEqual(got, []string{"s2", "s1"}) {
		t.Fatalf("history after redo = %v, want [s2 s1]", got)
	}
}

func TestRedo_IsPerAuthor(t *testing.T) {
	l := NewStrokeLog()
	l.AddStroke(testStroke("s1", "u1"))
	l.AddStroke(testStroke("s2", "u2"))
	l.UndoLastByUser("u1")
	l.UndoLastByUser("u2")

	restored, ok := l.RedoLastByUser("u1")
	if !ok || restored.ID != "s1" {
		t.Fatalf("redo(u1) = (%v, %v), want s1", restored.ID, ok)
	}
}

func TestAddStroke_ClearsRedoStack(t *testing.T) {
	l := NewStrokeLog()
	l.AddStroke(testStroke("s1", "u1"))
	l.UndoLastByUser("u1")

	// 新落笔使所有待重做的笔画失效，哪怕作者是别人
	l.AddStroke(testStroke("s2", "u2"))

	if _, ok := l.RedoLastByUser("u1"); ok {
		t.Fatalf("redo after AddStroke should be a no-op")
	}
}

func TestAddStroke_EmptySegmentListIsValid(t *testing.T) {
	l := NewStrokeLog()
	s := NewStroke("s1", "u1", StrokeParams{Color: "#111111", Width: 3, Tool: ToolEraser}, nil)
	l.AddStroke(s)

	snap := l.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len(snapshot) = %d, want 1", len(snap))
	}
	if snap[0].Segments == nil || len(snap[0].Segments) != 0 {
		t.Fatalf("empty stroke segments = %v, want empty non-nil slice", snap[0].Segments)
	}
}

func TestSnapshot_IsDefensiveCopy(t *testing.T) {
	l := NewStrokeLog()
	l.AddStroke(testStroke("s1", "u1", Segment{Start: Point{X: 0.1, Y: 0.1}, End: Point{X: 0.2, Y: 0.2}}))

	snap := l.Snapshot()
	snap[0].ID = "hacked"
	snap[0].Segments[0] = Segment{Start: Point{X: 9, Y: 9}, End: Point{X: 9, Y: 9}}

	again := l.Snapshot()
	if again[0].ID != "s1" {
		t.Fatalf("stroke id mutated through snapshot: %q", again[0].ID)
	}
	if again[0].Segments[0].Start.X != 0.1 {
		t.Fatalf("segments mutated through snapshot: %+v", again[0].Segments[0])
	}
}

func TestStore_GetOrCreate(t *testing.T) {
	s := NewStore()
	a := s.GetOrCreate("default")
	b := s.GetOrCreate("default")
	if a != b {
		t.Fatalf("same room should return the same log")
	}
	if c := s.GetOrCreate("other"); c == a {
		t.Fatalf("different rooms should not share a log")
	}
}

func TestStrokeParams_WithDefaults(t *testing.T) {
	p := StrokeParams{}.WithDefaults("#3498db")
	if p.Color != "#3498db" || p.Width != 5 || p.Tool != ToolBrush {
		t.Fatalf("defaults = %+v", p)
	}

	p = StrokeParams{Color: "#000000", Width: 12, Tool: ToolEraser}.WithDefaults("#3498db")
	if p.Color != "#000000" || p.Width != 12 || p.Tool != ToolEraser {
		t.Fatalf("explicit params overwritten: %+v", p)
	}
}
