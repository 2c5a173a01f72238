package gridsheet

import "testing"

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.BaseRowHeight != 1 || o.MinColWidth != 4 || o.TabWidth != 4 ||
		o.PreviewBudget != 8 || o.WheelStep != 3 || o.ScrubStep != 1 {
		t.Errorf("defaults = %+v", o)
	}
	if _, ok := o.Clipboard.(*MemClipboard); !ok {
		t.Errorf("clipboard = %T, want the in-process default", o.Clipboard)
	}
	if o.Theme != &ThemeDark {
		t.Error("theme should default to ThemeDark")
	}

	o = Options{WheelStep: 5, PreviewBudget: 1}.withDefaults()
	if o.WheelStep != 5 || o.PreviewBudget != 1 {
		t.Errorf("explicit values overridden: %+v", o)
	}
}

func TestButtonEdges(t *testing.T) {
	e := New(Options{})
	e.BeginFrame(Input{Buttons: MouseLeft})
	if !e.in.PressedLeft() || e.in.ReleasedLeft() || !e.in.HeldLeft() {
		t.Error("press frame edges wrong")
	}
	e.BeginFrame(Input{Buttons: MouseLeft})
	if e.in.PressedLeft() || !e.in.HeldLeft() {
		t.Error("hold frame should not re-press")
	}
	e.BeginFrame(Input{})
	if e.in.PressedLeft() || !e.in.ReleasedLeft() || e.in.HeldLeft() {
		t.Error("release frame edges wrong")
	}
}

func TestSourceSwitch(t *testing.T) {
	t.Run("TableSwitchResets", func(t *testing.T) {
		e, src := newGrid()
		runFrames(e, src, 40, 12, clickFrames(6, 2)...)

		other := newFakeSource(5, textCol("a", "A", 10))
		other.id = "tbl-2"
		runFrame(e, other, 40, 12, keyIn())

		if _, _, ok := e.ActiveCell(); ok {
			t.Error("selection should reset on a table switch")
		}
		if e.frames[0].ed.open {
			t.Error("editor should close on a table switch")
		}
	})

	t.Run("ViewSwitchResets", func(t *testing.T) {
		e, src := newGrid()
		runFrames(e, src, 40, 12, clickFrames(6, 2)...)
		src.view = "v2"
		runFrame(e, src, 40, 12, keyIn())
		if _, _, ok := e.ActiveCell(); ok {
			t.Error("selection should reset on a view switch")
		}
	})

	t.Run("ScrollResets", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(30, textCol("a", "A", 10))
		runFrame(e, src, 40, 12, Input{MouseX: 10, MouseY: 5, WheelDY: 1})
		if e.frames[0].scrollY == 0 {
			t.Fatal("wheel did not scroll")
		}
		other := newFakeSource(30, textCol("a", "A", 10))
		other.id = "tbl-2"
		runFrame(e, other, 40, 12, keyIn())
		if got := e.frames[0].scrollY; got != 0 {
			t.Errorf("scrollY = %d after switch, want 0", got)
		}
	})

	t.Run("SameSourceKeeps", func(t *testing.T) {
		e, src := newGrid()
		runFrames(e, src, 40, 12, clickFrames(6, 2)...)
		runFrame(e, src, 40, 12, keyIn())
		if _, _, ok := e.ActiveCell(); !ok {
			t.Error("selection lost without a switch")
		}
	})
}

func TestInteractiveLossBlurs(t *testing.T) {
	e, src := newGrid()
	runFrames(e, src, 40, 12, clickFrames(6, 2)...)

	buf := NewBuffer(40, 12)
	e.BeginFrame(keyIn())
	e.Draw(buf, src, Rect{W: 40, H: 12}, false)
	e.EndFrame()

	if _, _, ok := e.ActiveCell(); ok {
		t.Error("losing interactivity should clear the selection")
	}
	if e.frames[0].ed.open {
		t.Error("losing interactivity should close the editor")
	}
}

func TestDegenerateViewport(t *testing.T) {
	e, src := newGrid()
	runFrames(e, src, 40, 12, clickFrames(6, 2)...)

	buf := NewBuffer(40, 12)
	e.BeginFrame(keyIn())
	e.Draw(buf, src, Rect{W: 0, H: 12}, true)
	e.Draw(buf, src, Rect{W: 40, H: 0}, true)
	e.Draw(buf, nil, Rect{W: 40, H: 12}, true)
	e.EndFrame()

	if buf.String() != NewBuffer(40, 12).String() {
		t.Error("degenerate draw wrote to the buffer")
	}
	if r, c, ok := e.ActiveCell(); !ok || r != 1 || c != 0 {
		t.Errorf("selection = (%d, %d, %v) after degenerate draws, want (1, 0)", r, c, ok)
	}
	if !e.frames[0].ed.open {
		t.Error("degenerate draw closed the editor")
	}
}

func TestBlur(t *testing.T) {
	e, src := newGrid()
	runFrames(e, src, 40, 12, clickFrames(6, 2)...)
	runFrame(e, src, 40, 12, keyIn(runeKey('h')))
	e.Blur()

	if got := src.data["a"][1].Text; got != "h" {
		t.Errorf("cell = %q, want the pending edit committed", got)
	}
	if _, _, ok := e.ActiveCell(); ok {
		t.Error("blur should clear the selection")
	}
	if e.frames[0].ed.open {
		t.Error("blur should close the editor")
	}
}

func TestSetActiveCell(t *testing.T) {
	e := New(Options{RowGutter: true})
	src := newFakeSource(30, textCol("a", "A", 10))
	runFrame(e, src, 40, 12, keyIn())

	e.SetActiveCell(29, 5)
	if r, c, ok := e.ActiveCell(); !ok || r != 29 || c != 0 {
		t.Errorf("active = (%d, %d, %v), want clamped (29, 0)", r, c, ok)
	}
	if got := e.frames[0].scrollY; got != 19 {
		t.Errorf("scrollY = %d, want 19", got)
	}

	e.SetActiveCell(-5, -5)
	if r, c, _ := e.ActiveCell(); r != 0 || c != 0 {
		t.Errorf("active = (%d, %d), want clamped (0, 0)", r, c)
	}
	if got := e.frames[0].scrollY; got != 0 {
		t.Errorf("scrollY = %d, want scrolled back to 0", got)
	}

	// Without a bound source both calls are no-ops.
	e2 := New(Options{})
	e2.SetActiveCell(1, 1)
	e2.BeginTitleEdit("x")
	if _, _, ok := e2.ActiveCell(); ok {
		t.Error("unbound engine selected a cell")
	}
	if e2.frames[0].ed.open {
		t.Error("unbound engine opened an editor")
	}
}

func TestHoverQuery(t *testing.T) {
	e, src := newGrid()
	tests := []struct {
		name     string
		x, y     int
		row, col int
		ok       bool
	}{
		{"Cell", 6, 2, 1, 0, true},
		{"Header", 15, 0, -1, 1, true},
		{"Gutter", 2, 3, 2, -1, true},
		{"Corner", 2, 0, 0, 0, false},
		{"Outside", 50, 3, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runFrame(e, src, 40, 12, mouseAt(tt.x, tt.y, MouseNone))
			r, c, ok := e.Hover()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (r != tt.row || c != tt.col) {
				t.Errorf("hover = (%d, %d), want (%d, %d)", r, c, tt.row, tt.col)
			}
		})
	}
}

func TestMeasureEmbedded(t *testing.T) {
	t.Run("Height", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5, textCol("a", "A", 10))
		if got := e.MeasureEmbeddedHeight(src, 40); got != 6 {
			t.Errorf("flat height = %d, want header+5", got)
		}
		src.set(0, "a", "x\ny\nz")
		src.rev++
		if got := e.MeasureEmbeddedHeight(src, 40); got != 8 {
			t.Errorf("wrapped height = %d, want 8", got)
		}
		if e.Depth() != 0 {
			t.Errorf("depth = %d after measuring", e.Depth())
		}
	})

	t.Run("HeightBeyondCapEstimates", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5, textCol("a", "A", 10))
		src.set(0, "a", "x\ny\nz")
		var scopes []Scope
		for i := 0; i < maxNestedDepth; i++ {
			s, _ := e.TryEnterScope()
			scopes = append(scopes, s)
		}
		if got := e.MeasureEmbeddedHeight(src, 40); got != 6 {
			t.Errorf("estimate = %d, want base-height 6", got)
		}
		for i := len(scopes) - 1; i >= 0; i-- {
			scopes[i].Close()
		}
	})

	t.Run("Width", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5, textCol("a", "A", 10), textCol("b", "B", 2))
		if got := e.MeasureEmbeddedWidth(src); got != 18 {
			t.Errorf("width = %d, want gutter+10+minimum", got)
		}
		src.addCols = true
		if got := e.MeasureEmbeddedWidth(src); got != 21 {
			t.Errorf("width = %d, want the add slot included", got)
		}
	})
}

func TestExtensionCells(t *testing.T) {
	newExt := func(h CellKindHandler) (*Engine, *fakeSource) {
		e := New(Options{RowGutter: true})
		if h != nil {
			e.RegisterCellKind("gauge", h)
		}
		src := newFakeSource(5,
			textCol("a", "A", 10),
			Column{ID: "g", Title: "G", Kind: KindExtension, KindID: "gauge", Width: 10},
		)
		return e, src
	}

	t.Run("ConsumingHandler", func(t *testing.T) {
		h := &stubKind{height: 1, consume: true}
		e, src := newExt(h)
		runFrames(e, src, 40, 12, clickFrames(16, 2)...)
		if h.activated != 1 {
			t.Errorf("activations = %d, want 1", h.activated)
		}
		if e.frames[0].ed.open {
			t.Error("consuming handler should suppress the editor")
		}
		runFrame(e, src, 40, 12, keyIn(key(KeyEnter)))
		if h.activated != 2 {
			t.Errorf("enter should activate again, got %d", h.activated)
		}
	})

	t.Run("NonConsumingHandler", func(t *testing.T) {
		h := &stubKind{height: 1}
		e, src := newExt(h)
		runFrames(e, src, 40, 12, clickFrames(16, 2)...)
		if h.activated != 1 {
			t.Errorf("activations = %d, want 1", h.activated)
		}
		if !e.frames[0].ed.open {
			t.Error("non-consuming handler should fall back to the editor")
		}
	})

	t.Run("UnregisteredKind", func(t *testing.T) {
		e, src := newExt(nil)
		runFrames(e, src, 40, 12, clickFrames(16, 2)...)
		if !e.frames[0].ed.open {
			t.Error("unregistered kind should open the plain editor")
		}
	})
}

func TestDragLock(t *testing.T) {
	var l DragLock
	if !l.Acquire(5) {
		t.Fatal("free lock refused")
	}
	if l.Acquire(7) {
		t.Error("second owner acquired a held lock")
	}
	if !l.Acquire(5) {
		t.Error("holder could not re-acquire")
	}
	l.Release(7)
	if l.Held() != 5 {
		t.Error("foreign release freed the lock")
	}
	l.Release(5)
	if l.Held() != 0 {
		t.Error("release by the holder left it held")
	}
	if !l.Acquire(7) {
		t.Error("freed lock refused a new owner")
	}

	e := New(Options{})
	if e.DragLockHandle() != &e.lock {
		t.Error("handle is not the engine's lock")
	}
}
