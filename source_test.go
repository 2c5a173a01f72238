package gridsheet

import (
	"fmt"
	"strconv"
)

// fakeSource is a scriptable DataSource for exercising the engine. Writes
// through Apply mutate the backing cells so commit paths can be observed
// end to end, and every batch is recorded for assertions.
type fakeSource struct {
	id     string
	view   string
	rev    uint64
	parent string
	cols   []Column
	data   map[string][]CellData // colID -> cells indexed by source row
	rowN   int
	rowMap []int
	rowVer uint64

	addRows bool
	addCols bool

	subs map[string]DataSource // "row/col" -> child

	applied   [][]Command
	undone    int
	redone    int
	cellCalls int
}

func newFakeSource(rows int, cols ...Column) *fakeSource {
	s := &fakeSource{
		id:   "tbl-1",
		rowN: rows,
		cols: cols,
		data: make(map[string][]CellData),
	}
	for _, c := range cols {
		cells := make([]CellData, rows)
		for r := range cells {
			cells[r].Kind = c.Kind
		}
		s.data[c.ID] = cells
	}
	return s
}

func (s *fakeSource) TableID() string                    { return s.id }
func (s *fakeSource) ViewID() string                     { return s.view }
func (s *fakeSource) Revision() uint64                   { return s.rev }
func (s *fakeSource) ParentRowKey() string               { return s.parent }
func (s *fakeSource) RowCount() int                      { return s.rowN }
func (s *fakeSource) Columns() []Column                  { return s.cols }
func (s *fakeSource) ViewRows() ([]int, uint64)          { return s.rowMap, s.rowVer }
func (s *fakeSource) CanAppendRows() bool                { return s.addRows }
func (s *fakeSource) CanAppendColumns() bool             { return s.addCols }
func (s *fakeSource) NormalizeNumber(_ string, v float64) float64 { return v }

func (s *fakeSource) Cell(srcRow int, colID string) CellData {
	s.cellCalls++
	cells := s.data[colID]
	if srcRow < 0 || srcRow >= len(cells) {
		return CellData{}
	}
	return cells[srcRow]
}

func (s *fakeSource) Subtable(srcRow int, colID string) DataSource {
	return s.subs[fmt.Sprintf("%d/%s", srcRow, colID)]
}

func (s *fakeSource) Apply(batch []Command) {
	s.applied = append(s.applied, batch)
	s.rev++
	for _, cmd := range batch {
		switch c := cmd.(type) {
		case SetCell:
			if cells, ok := s.data[c.Col]; ok && c.Row >= 0 && c.Row < len(cells) {
				cells[c.Row] = CellData{CellValue: c.Value}
			}
		case ClearCells:
			for _, ref := range c.Cells {
				if cells, ok := s.data[ref.Col]; ok && ref.Row >= 0 && ref.Row < len(cells) {
					cells[ref.Row] = CellData{CellValue: CellValue{Kind: cells[ref.Row].Kind}}
				}
			}
		case SetColumnWidth:
			for i := range s.cols {
				if s.cols[i].ID == c.Col {
					s.cols[i].Width = c.Width
				}
			}
		}
	}
}

func (s *fakeSource) Undo() bool { s.undone++; return true }
func (s *fakeSource) Redo() bool { s.redone++; return true }

// set writes a text cell directly, outside the command path.
func (s *fakeSource) set(row int, colID, text string) {
	s.data[colID][row] = CellData{CellValue: CellValue{Kind: KindText, Text: text}}
}

func (s *fakeSource) setNum(row int, colID string, v float64) {
	s.data[colID][row] = CellData{CellValue: CellValue{
		Kind:   KindNumber,
		Text:   strconv.FormatFloat(v, 'f', -1, 64),
		Number: v,
	}}
}

// commands flattens every applied batch into one command slice.
func (s *fakeSource) commands() []Command {
	var out []Command
	for _, b := range s.applied {
		out = append(out, b...)
	}
	return out
}

func textCol(id, title string, width int) Column {
	return Column{ID: id, Title: title, Kind: KindText, Width: width}
}

func numCol(id, title string, width int) Column {
	return Column{ID: id, Title: title, Kind: KindNumber, Width: width}
}

// keyIn builds a keyboard-only input frame. The mouse parks offscreen so
// hover state stays inert.
func keyIn(keys ...KeyEvent) Input {
	return Input{MouseX: -1, MouseY: -1, Keys: keys}
}

func key(code KeyCode) KeyEvent      { return KeyEvent{Code: code} }
func shiftKey(code KeyCode) KeyEvent { return KeyEvent{Code: code, Mods: ModShift} }
func runeKey(r rune) KeyEvent        { return KeyEvent{Code: KeyRune, Rune: r} }
func ctrlKey(r rune) KeyEvent        { return KeyEvent{Code: KeyRune, Rune: r, Mods: ModCtrl} }

func mouseAt(x, y int, b MouseButton) Input { return Input{MouseX: x, MouseY: y, Buttons: b} }

// runFrame drives a single interactive frame and returns the buffer.
func runFrame(e *Engine, src DataSource, w, h int, in Input) *Buffer {
	buf := NewBuffer(w, h)
	e.BeginFrame(in)
	e.Draw(buf, src, Rect{W: w, H: h}, true)
	e.EndFrame()
	return buf
}

// runFrames drives several frames in order, reusing one buffer.
func runFrames(e *Engine, src DataSource, w, h int, ins ...Input) *Buffer {
	buf := NewBuffer(w, h)
	for _, in := range ins {
		buf.Clear()
		e.BeginFrame(in)
		e.Draw(buf, src, Rect{W: w, H: h}, true)
		e.EndFrame()
	}
	return buf
}

// clickFrames returns the press+release input pair for a left click.
func clickFrames(x, y int) []Input {
	return []Input{
		mouseAt(x, y, MouseLeft),
		mouseAt(x, y, MouseNone),
	}
}

// stubKind is a scriptable extension cell handler.
type stubKind struct {
	height    int
	consume   bool
	activated int
}

func (k *stubKind) MinRowHeight(CellData, int) int { return k.height }

func (k *stubKind) DrawCell(*CellContext, CellData) bool { return false }

func (k *stubKind) DrawEditor(*CellContext, *Editor) bool { return false }

func (k *stubKind) OnActivate(*CellContext, CellData) bool {
	k.activated++
	return k.consume
}
