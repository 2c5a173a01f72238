package gridsheet

import "testing"

func TestScopes(t *testing.T) {
	t.Run("NestToCap", func(t *testing.T) {
		e := New(Options{})
		var scopes []Scope
		for i := 1; i <= maxNestedDepth; i++ {
			s, ok := e.TryEnterScope()
			if !ok {
				t.Fatalf("entry %d refused below the cap", i)
			}
			if e.Depth() != i {
				t.Fatalf("depth = %d, want %d", e.Depth(), i)
			}
			scopes = append(scopes, s)
		}
		if _, ok := e.TryEnterScope(); ok {
			t.Error("entry beyond the cap should be refused")
		}
		if e.Depth() != maxNestedDepth {
			t.Errorf("refused entry shifted depth to %d", e.Depth())
		}
		for i := len(scopes) - 1; i >= 0; i-- {
			scopes[i].Close()
		}
		if e.Depth() != 0 {
			t.Errorf("depth = %d after closing all scopes", e.Depth())
		}
	})

	t.Run("CloseOutOfOrderPanics", func(t *testing.T) {
		e := New(Options{})
		s1, _ := e.TryEnterScope()
		if _, ok := e.TryEnterScope(); !ok {
			t.Fatal("second entry refused")
		}
		defer func() {
			if recover() == nil {
				t.Error("closing the outer scope before the inner should panic")
			}
		}()
		s1.Close()
	})

	t.Run("ZeroScopeCloseIsNoop", func(t *testing.T) {
		var s Scope
		s.Close()
	})

	t.Run("EnterResetsChildFrame", func(t *testing.T) {
		e := New(Options{})
		e.frames[1].scrollY = 7
		e.frames[1].sel.setCell(2, 2)
		s, _ := e.TryEnterScope()
		f := e.fr()
		if f.scrollY != 0 || f.sel.hasCell() {
			t.Error("entering a scope should reset the child frame")
		}
		s.Close()
	})

	t.Run("ParentFrameUntouched", func(t *testing.T) {
		e, src := newGrid()
		runFrames(e, src, 40, 12, clickFrames(6, 2)...)

		s, _ := e.TryEnterScope()
		e.fr().sel.setCell(4, 0)
		e.fr().scrollY = 3
		s.Close()

		if r, c, ok := e.ActiveCell(); !ok || r != 1 || c != 0 {
			t.Errorf("root selection = (%d, %d, %v), want (1, 0)", r, c, ok)
		}
		if !e.frames[0].ed.open {
			t.Error("child scope disturbed the root editor")
		}
		if e.frames[0].scrollY != 0 {
			t.Error("child scope scrolled the root")
		}
	})
}

func TestPreviewBudget(t *testing.T) {
	e := New(Options{PreviewBudget: 2})
	e.BeginFrame(keyIn())
	if !e.takePreviewBudget() || !e.takePreviewBudget() {
		t.Fatal("budget should cover the configured count")
	}
	if e.takePreviewBudget() {
		t.Error("take past the budget should be refused")
	}
	e.BeginFrame(keyIn())
	if !e.takePreviewBudget() {
		t.Error("BeginFrame should replenish the budget")
	}
}

func TestDrawEmbedded(t *testing.T) {
	t.Run("RefusedAtCap", func(t *testing.T) {
		e := New(Options{})
		src := newFakeSource(3, textCol("a", "A", 10))
		buf := NewBuffer(20, 8)
		e.BeginFrame(keyIn())
		var scopes []Scope
		for i := 0; i < maxNestedDepth; i++ {
			s, _ := e.TryEnterScope()
			scopes = append(scopes, s)
		}
		if e.DrawEmbedded(buf, src, Rect{W: 20, H: 8}, true, "k") {
			t.Error("draw beyond the cap should report false")
		}
		if e.Depth() != maxNestedDepth {
			t.Errorf("refused draw shifted depth to %d", e.Depth())
		}
		for i := len(scopes) - 1; i >= 0; i-- {
			scopes[i].Close()
		}
	})

	t.Run("StatePersistsAcrossFrames", func(t *testing.T) {
		e := New(Options{})
		src := newFakeSource(30, textCol("a", "A", 10))
		vp := Rect{W: 20, H: 8}
		buf := NewBuffer(20, 8)

		e.BeginFrame(Input{MouseX: 5, MouseY: 3, WheelDY: 1})
		if !e.DrawEmbedded(buf, src, vp, true, "k") {
			t.Fatal("embedded draw refused")
		}
		if got := e.states["k"].scrollY; got != 3 {
			t.Fatalf("saved scrollY = %d, want 3", got)
		}
		if e.Depth() != 0 {
			t.Fatalf("depth = %d after the draw", e.Depth())
		}

		e.BeginFrame(keyIn())
		e.DrawEmbedded(buf, src, vp, true, "k")
		if got := e.states["k"].scrollY; got != 3 {
			t.Errorf("scrollY = %d after reload, want 3", got)
		}
		if e.frames[0].scrollY != 0 {
			t.Error("embedded scroll leaked into the root frame")
		}
	})

	t.Run("EditorHeldInState", func(t *testing.T) {
		e := New(Options{})
		src := newFakeSource(5, textCol("a", "A", 10))
		vp := Rect{W: 20, H: 8}
		buf := NewBuffer(20, 8)

		e.BeginFrame(mouseAt(3, 2, MouseLeft))
		e.DrawEmbedded(buf, src, vp, true, "k")
		e.BeginFrame(mouseAt(3, 2, MouseNone))
		e.DrawEmbedded(buf, src, vp, true, "k")

		st := e.states["k"]
		if st.sel.activeRow != 1 || st.sel.activeCol != 0 {
			t.Errorf("embedded selection = (%d, %d), want (1, 0)", st.sel.activeRow, st.sel.activeCol)
		}
		if !st.ed.open {
			t.Error("embedded editor should persist in the state")
		}
		if !e.IsAnyOverlayOpen() {
			t.Error("open embedded editor should count as an overlay")
		}
		if !e.ShouldKeepEmbeddedInteractive("k") {
			t.Error("mid-edit grid should keep input")
		}
		if e.ShouldKeepEmbeddedInteractive("other") {
			t.Error("unknown key reported interactive")
		}
	})

	t.Run("IndependentKeys", func(t *testing.T) {
		e := New(Options{})
		left := newFakeSource(30, textCol("a", "A", 10))
		right := newFakeSource(30, textCol("a", "A", 10))
		right.id = "tbl-2"
		buf := NewBuffer(40, 8)

		e.BeginFrame(Input{MouseX: 5, MouseY: 3, WheelDY: 1})
		e.DrawEmbedded(buf, left, Rect{W: 20, H: 8}, true, "left")
		e.DrawEmbedded(buf, right, Rect{X: 20, W: 20, H: 8}, true, "right")

		if got := e.states["left"].scrollY; got != 3 {
			t.Errorf("left scrollY = %d, want 3", got)
		}
		if got := e.states["right"].scrollY; got != 0 {
			t.Errorf("right scrollY = %d, want the wheel ignored", got)
		}
	})
}
