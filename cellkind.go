package gridsheet

import "fmt"

// CellKindHandler renders and edits an extension cell kind. Handlers are
// registered on the engine under a string id and dispatch through the
// column's KindID.
type CellKindHandler interface {
	// MinRowHeight contributes the kind's minimum row height at the
	// column's content width.
	MinRowHeight(cell CellData, width int) int
	// DrawCell renders the cell content. Returning false falls back to
	// plain text rendering of the cell's display text.
	DrawCell(ctx *CellContext, cell CellData) bool
	// DrawEditor renders the in-place editor. Returning false falls back
	// to the default text editor overlay.
	DrawEditor(ctx *CellContext, ed *Editor) bool
	// OnActivate runs when the user activates the cell. Returning true
	// consumes the activation and suppresses the default text editor.
	OnActivate(ctx *CellContext, cell CellData) bool
}

// CellContext is the context handed to cell kind handlers. Buf is nil
// during activation callbacks; during drawing, Rect is the cell's
// clipped on-screen rect and Style the resolved base style. Handlers may
// call back into Engine (DrawEmbedded and the measurement entry points)
// to nest content.
type CellContext struct {
	Engine   *Engine
	Src      DataSource
	Buf      *Buffer
	Rect     Rect
	Row, Col int // display indices
	SrcRow   int
	Theme    *Theme
	Style    Style
	Selected bool
	Active   bool
}

// Editor is the handler-facing view of the open in-place editor.
type Editor struct {
	ed *editor
}

// Text returns the editor's current content.
func (e *Editor) Text() string { return e.ed.String() }

// Cursor returns the rune index of the cursor.
func (e *Editor) Cursor() int { return e.ed.cursor }

// SetText replaces the editor content, moving the cursor to the end.
func (e *Editor) SetText(s string) { e.ed.setText(s) }

func (e *Engine) cellContext(f *gridFrame, row, col int) *CellContext {
	return &CellContext{
		Engine:   e,
		Src:      f.src,
		Rect:     f.cellRect(row, col),
		Row:      row,
		Col:      col,
		SrcRow:   f.sourceRow(row),
		Theme:    e.theme,
		Style:    e.theme.Body,
		Selected: f.sel.contains(row, col),
		Active:   f.sel.hasCell() && f.sel.activeRow == row && f.sel.activeCol == col,
	}
}

// drawCellContent renders one cell's value into its rect. The rect is
// already clipped to the owning sub-viewport.
func (e *Engine) drawCellContent(dst *Buffer, f *gridFrame, col *Column, colIdx, row int, r Rect, st Style) {
	src := f.sourceRow(row)
	cell := f.src.Cell(src, col.ID)
	if cell.Flags.Has(CellError) {
		st = e.theme.ErrorCell
	} else if cell.Flags.Has(CellReadOnly) || col.ReadOnly {
		st = e.theme.BodyReadOnly
	}
	content := Rect{X: r.X + cellPadX, Y: r.Y, W: r.W - 2*cellPadX, H: r.H}
	if content.W <= 0 || content.H <= 0 {
		return
	}

	switch col.Kind {
	case KindNumber:
		w := e.measure.Width(cell.Text)
		x := content.X
		if w < content.W {
			x = content.X + content.W - w
		}
		dst.WriteClipped(x, content.Y, cell.Text, st, content.Right()-x)

	case KindBool:
		glyph := "[ ]"
		if cell.Bool {
			glyph = "[x]"
		}
		dst.WriteClipped(content.X, content.Y, glyph, st, content.W)

	case KindSubtable:
		e.drawSubtableCell(dst, f, col, src, r, st)

	case KindAsset:
		dst.WriteClipped(content.X, content.Y, "◆ "+cell.Text, st, content.W)

	case KindExtension:
		if h := e.kinds[col.KindID]; h != nil {
			ctx := e.cellContext(f, row, colIdx)
			ctx.Buf = dst
			ctx.Rect = r
			ctx.Style = st
			if h.DrawCell(ctx, cell) {
				return
			}
		}
		dst.WriteClipped(content.X, content.Y, cell.Text, st, content.W)

	case KindText:
		e.spans = wrapSpans(e.measure, cell.Text, content.W, e.spans[:0])
		for i, sp := range e.spans {
			if i >= content.H {
				break
			}
			dst.WriteClipped(content.X, content.Y+i, cell.Text[sp.start:sp.end], st, content.W)
		}

	default:
		dst.WriteClipped(content.X, content.Y, cell.Text, st, content.W)
	}
}

// drawSubtableCell draws an embedded table preview: a bordered recursive
// draw at full quality while the frame's preview budget lasts, a static
// text rendition otherwise, and a bare count label when the cell is too
// small or previews are off.
func (e *Engine) drawSubtableCell(dst *Buffer, f *gridFrame, col *Column, srcRow int, r Rect, st Style) {
	child := f.src.Subtable(srcRow, col.ID)
	if child == nil {
		dst.WriteClipped(r.X+cellPadX, r.Y, "-", e.theme.BodyReadOnly, r.W-2*cellPadX)
		return
	}
	if e.opts.Preview == PreviewOff || col.Preview <= 0 || r.H < subtableBorder*2+headerRows || r.W <= 2*subtableBorder {
		e.drawSubtableLabel(dst, child, r)
		return
	}

	dst.DrawBorder(r, e.theme.GridLine)
	inner := Rect{
		X: r.X + subtableBorder,
		Y: r.Y + subtableBorder,
		W: r.W - 2*subtableBorder,
		H: r.H - 2*subtableBorder,
	}
	if inner.W <= 0 || inner.H <= 0 {
		return
	}

	if e.opts.Preview == PreviewFull && e.depth < maxNestedDepth && e.takePreviewBudget() {
		e.tryEnterScope()
		fc := e.fr()
		e.beginGrid(fc, child, inner, false)
		e.layoutPass(fc)
		e.drawPass(dst, fc)
		e.exitScope()
		return
	}
	e.drawSubtableRows(dst, child, inner)
}

// drawSubtableRows is the static preview: header titles and the first
// rows as plain text, no recursion and no per-row layout.
func (e *Engine) drawSubtableRows(dst *Buffer, child DataSource, r Rect) {
	cols := child.Columns()
	y := r.Y
	x := r.X
	for i := range cols {
		if x >= r.Right() {
			break
		}
		if i > 0 {
			x += dst.WriteClipped(x, y, "  ", e.theme.Header, r.Right()-x)
		}
		x += dst.WriteClipped(x, y, cols[i].Title, e.theme.Header, r.Right()-x)
	}
	y++

	rows, _ := child.ViewRows()
	n := child.RowCount()
	if rows != nil {
		n = len(rows)
	}
	for d := 0; d < n && y < r.Bottom(); d++ {
		srcRow := d
		if rows != nil {
			srcRow = rows[d]
		}
		x = r.X
		for i := range cols {
			if x >= r.Right() {
				break
			}
			if i > 0 {
				x += dst.WriteClipped(x, y, "  ", e.theme.Body, r.Right()-x)
			}
			x += dst.WriteClipped(x, y, child.Cell(srcRow, cols[i].ID).Text, e.theme.Body, r.Right()-x)
		}
		y++
	}
}

// drawSubtableLabel is the cheapest degradation: a row count.
func (e *Engine) drawSubtableLabel(dst *Buffer, child DataSource, r Rect) {
	label := fmt.Sprintf("%d rows", child.RowCount())
	dst.WriteClipped(r.X+cellPadX, r.Y, label, e.theme.BodyReadOnly, r.W-2*cellPadX)
}
