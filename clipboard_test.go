package gridsheet

import "testing"

func TestCopy(t *testing.T) {
	t.Run("RectAsTSV", func(t *testing.T) {
		e, src := newGrid()
		src.set(0, "a", "1")
		src.set(0, "b", "2")
		src.set(1, "a", "3")
		src.set(1, "b", "4")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), shiftKey(KeyDown), shiftKey(KeyRight), ctrlKey('c')))

		got, ok := e.clip.Text()
		if !ok || got != "1\t2\n3\t4" {
			t.Errorf("clipboard = %q ok=%v, want 1\\t2\\n3\\t4", got, ok)
		}
	})

	t.Run("RowModeSpansAllColumns", func(t *testing.T) {
		e, src := newGrid()
		for c, id := range []string{"a", "b", "c"} {
			src.set(0, id, string(rune('1'+c)))
			src.set(1, id, string(rune('4'+c)))
		}
		runFrames(e, src, 40, 12, clickFrames(2, 1)...)
		runFrames(e, src, 40, 12,
			Input{MouseX: 2, MouseY: 2, Buttons: MouseLeft, Mods: ModShift},
			Input{MouseX: 2, MouseY: 2, Mods: ModShift},
		)
		runFrame(e, src, 40, 12, keyIn(ctrlKey('c')))

		got, _ := e.clip.Text()
		if got != "1\t2\t3\n4\t5\t6" {
			t.Errorf("clipboard = %q", got)
		}
	})

	t.Run("CutClearsAfterCopy", func(t *testing.T) {
		e, src := newGrid()
		src.set(0, "a", "1")
		src.set(0, "b", "2")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), shiftKey(KeyRight), ctrlKey('x')))

		if got, _ := e.clip.Text(); got != "1\t2" {
			t.Errorf("clipboard = %q, want 1\\t2", got)
		}
		cmds := src.commands()
		if len(cmds) != 1 {
			t.Fatalf("expected one batch, got %v", cmds)
		}
		if cc := cmds[0].(ClearCells); len(cc.Cells) != 2 {
			t.Errorf("refs = %v, want both cells cleared", cc.Cells)
		}
		if src.data["a"][0].Text != "" || src.data["b"][0].Text != "" {
			t.Error("cut left the cells populated")
		}
	})

	t.Run("NoSelectionNoCopy", func(t *testing.T) {
		e, src := newGrid()
		runFrame(e, src, 40, 12, keyIn(ctrlKey('c')))
		if _, ok := e.clip.Text(); ok {
			t.Error("copy without a selection touched the clipboard")
		}
	})
}

func TestPaste(t *testing.T) {
	t.Run("AnchorsAtSelection", func(t *testing.T) {
		e, src := newGrid()
		e.clip.SetText("x\ty\nz\tw")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), key(KeyDown), key(KeyRight), ctrlKey('v')))

		if len(src.applied) != 1 {
			t.Fatalf("expected one batch, got %d", len(src.applied))
		}
		if len(src.commands()) != 4 {
			t.Fatalf("expected four writes, got %v", src.commands())
		}
		for _, tt := range []struct {
			row  int
			col  string
			want string
		}{
			{1, "b", "x"}, {1, "c", "y"}, {2, "b", "z"}, {2, "c", "w"},
		} {
			if got := src.data[tt.col][tt.row].Text; got != tt.want {
				t.Errorf("cell (%d, %s) = %q, want %q", tt.row, tt.col, got, tt.want)
			}
		}
		r0, c0, r1, c1, _ := e.Selection()
		if r0 != 1 || c0 != 1 || r1 != 2 || c1 != 2 {
			t.Errorf("selection = (%d,%d)-(%d,%d), want the pasted block", r0, c0, r1, c1)
		}
	})

	t.Run("TruncatesAtTableEdge", func(t *testing.T) {
		e, src := newGrid()
		e.clip.SetText("1\t2\t3\n4\t5\t6\n7\t8\t9")
		runFrame(e, src, 40, 12, keyIn(
			key(KeyDown), key(KeyDown), key(KeyDown), key(KeyDown), key(KeyRight), ctrlKey('v'),
		))

		if got := len(src.commands()); got != 4 {
			t.Fatalf("expected four in-range writes, got %v", src.commands())
		}
		if got := src.data["c"][4].Text; got != "5" {
			t.Errorf("bottom corner = %q, want 5", got)
		}
		r0, c0, r1, c1, _ := e.Selection()
		if r0 != 3 || c0 != 1 || r1 != 4 || c1 != 2 {
			t.Errorf("selection = (%d,%d)-(%d,%d), want clipped block", r0, c0, r1, c1)
		}
	})

	t.Run("ParsesPerColumnKind", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5,
			textCol("a", "A", 10),
			numCol("n", "N", 8),
			Column{ID: "d", Title: "D", Kind: KindBool, Width: 6},
		)
		e.clip.SetText("hi\t4.5\tyes")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), ctrlKey('v')))

		if got := src.data["a"][0].Text; got != "hi" {
			t.Errorf("text cell = %q", got)
		}
		if got := src.data["n"][0]; got.Number != 4.5 || got.Text != "4.5" {
			t.Errorf("number cell = %+v, want 4.5", got.CellValue)
		}
		if !src.data["d"][0].Bool {
			t.Error("bool cell should parse yes as true")
		}
	})

	t.Run("SkipsUnparsableAndProtected", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5,
			Column{ID: "a", Title: "A", Kind: KindText, Width: 10, ReadOnly: true},
			numCol("n", "N", 8),
			Column{ID: "d", Title: "D", Kind: KindBool, Width: 6},
		)
		e.clip.SetText("q\tnope\tmaybe")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), ctrlKey('v')))

		if len(src.applied) != 0 {
			t.Errorf("unparsable paste applied: %v", src.commands())
		}
	})

	t.Run("BoolTokens", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5, Column{ID: "d", Title: "D", Kind: KindBool, Width: 6})
		e.clip.SetText("yes\nno\n1\n\nx")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), ctrlKey('v')))

		// The falsy rows match the zero value and are skipped.
		if got := len(src.commands()); got != 3 {
			t.Fatalf("expected three writes, got %v", src.commands())
		}
		for row, want := range []bool{true, false, true, false, true} {
			if got := src.data["d"][row].Bool; got != want {
				t.Errorf("row %d = %v, want %v", row, got, want)
			}
		}
	})

	t.Run("SelectCanonicalizesCase", func(t *testing.T) {
		e := New(Options{RowGutter: true})
		src := newFakeSource(5, Column{ID: "s", Title: "S", Kind: KindSelect, Width: 10, Options: []string{"Red", "Green"}})
		e.clip.SetText("red\npurple\n green ")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), ctrlKey('v')))

		if got := src.data["s"][0].Text; got != "Red" {
			t.Errorf("row 0 = %q, want canonical Red", got)
		}
		if got := src.data["s"][1].Text; got != "" {
			t.Errorf("row 1 = %q, want the non-option skipped", got)
		}
		if got := src.data["s"][2].Text; got != "Green" {
			t.Errorf("row 2 = %q, want trimmed canonical Green", got)
		}
	})

	t.Run("FormulaSourcePassesThrough", func(t *testing.T) {
		e, src := newGrid()
		e.clip.SetText("=SUM(a)")
		runFrame(e, src, 40, 12, keyIn(key(KeyDown), ctrlKey('v')))

		if got := src.data["a"][0].Text; got != "=SUM(a)" {
			t.Errorf("cell = %q, want the formula source untouched", got)
		}
	})

	t.Run("NoSelectionNoPaste", func(t *testing.T) {
		e, src := newGrid()
		e.clip.SetText("x")
		runFrame(e, src, 40, 12, keyIn(ctrlKey('v')))
		if len(src.applied) != 0 {
			t.Errorf("paste without selection applied: %v", src.commands())
		}
	})
}

func TestParseTSV(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{"Empty", "", nil},
		{"Single", "x", [][]string{{"x"}}},
		{"Grid", "a\tb\nc\td", [][]string{{"a", "b"}, {"c", "d"}}},
		{"TrailingNewline", "x\n", [][]string{{"x"}}},
		{"CRLF", "a\tb\r\nc", [][]string{{"a", "b"}, {"c"}}},
		{"BlankInteriorRow", "a\n\nb", [][]string{{"a"}, {""}, {"b"}}},
		{"Ragged", "a\nb\tc", [][]string{{"a"}, {"b", "c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTSV(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %d, want %d: %q", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("row %d = %q, want %q", i, got[i], tt.want[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("cell (%d, %d) = %q, want %q", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestParseCellValue(t *testing.T) {
	src := newFakeSource(1, textCol("a", "A", 10))
	tests := []struct {
		name string
		col  Column
		text string
		want CellValue
		ok   bool
	}{
		{"Text", Column{Kind: KindText}, "hi", CellValue{Kind: KindText, Text: "hi"}, true},
		{"NumberTrims", Column{Kind: KindNumber}, " 4.5 ", CellValue{Kind: KindNumber, Text: "4.5", Number: 4.5}, true},
		{"NumberRejects", Column{Kind: KindNumber}, "nope", CellValue{}, false},
		{"BoolTruthy", Column{Kind: KindBool}, "Yes", CellValue{Kind: KindBool, Text: "true", Bool: true}, true},
		{"BoolFalsy", Column{Kind: KindBool}, "off", CellValue{Kind: KindBool, Text: "false"}, true},
		{"BoolRejects", Column{Kind: KindBool}, "maybe", CellValue{}, false},
		{"SelectMatches", Column{Kind: KindSelect, Options: []string{"Red"}}, "red", CellValue{Kind: KindSelect, Text: "Red"}, true},
		{"SelectRejects", Column{Kind: KindSelect, Options: []string{"Red"}}, "blue", CellValue{}, false},
		{"SelectFreeform", Column{Kind: KindSelect}, "anything", CellValue{Kind: KindSelect, Text: "anything"}, true},
		{"SubtableNever", Column{Kind: KindSubtable}, "x", CellValue{}, false},
		{"FormulaPassthrough", Column{Kind: KindNumber}, " =A1*2 ", CellValue{Kind: KindNumber, Text: "=A1*2"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCellValue(src, tt.col, tt.text)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %+v ok=%v, want %+v ok=%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
