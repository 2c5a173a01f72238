package gridsheet

import "strconv"

// Chrome glyphs. The tear and row handles share one glyph; scrollbars use
// the shade pair so thumbs read against the track at any theme.
const (
	tearGlyph        = '≡'
	addGlyph         = '+'
	fillHandleGlyph  = '■'
	scrollTrackGlyph = '░'
	scrollThumbGlyph = '█'
)

// popupMaxRows caps the Select dropdown height.
const popupMaxRows = 8

// drawPass renders one laid-out frame into dst. It only reads frame state,
// except for the editor's horizontal scroll and the popup rect, which are
// byproducts of rendering and are consumed by next frame's hit test.
// Paint order: body cells, selection, fill preview, header and gutter
// chrome, drag ghosts, scrollbars, then the editor overlay on top.
func (e *Engine) drawPass(dst *Buffer, f *gridFrame) {
	if f.viewport.Empty() {
		return
	}
	dst.PushClip(f.viewport)
	defer dst.PopClip()

	dst.FillRect(f.viewport, NewCell(' ', e.theme.Body))

	e.drawBody(dst, f)
	e.drawSelection(dst, f)
	e.drawFillPreview(dst, f)
	e.drawHeaderStrip(dst, f)
	e.drawGutter(dst, f)
	e.drawDragGhost(dst, f)
	e.drawScrollbars(dst, f)
	e.drawEditor(dst, f)
}

func (e *Engine) drawBody(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	cols := f.src.Columns()
	if len(cols) == 0 || lay.body.Empty() {
		return
	}
	first, last := f.met.visibleRange(f.scrollY, lay.body.H)
	for i := range lay.cols {
		clip := f.columnRect(i)
		if clip.Empty() {
			continue
		}
		dst.PushClip(clip)
		x, w := lay.cols[i].x, lay.cols[i].w
		for d := first; d <= last; d++ {
			r := Rect{X: x, Y: f.rowScreenY(d), W: w, H: f.met.heights[d]}
			e.drawCellContent(dst, f, &cols[i], i, d, r, e.theme.Body)
		}
		dst.VLine(x+w-1, clip.Y, clip.H, boxVertical, e.theme.GridLine)
		dst.PopClip()
	}
}

// drawSelection restyles the selected region over the already drawn body,
// so cell glyphs and separators keep their shapes under the highlight.
func (e *Engine) drawSelection(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	first, last := f.met.visibleRange(f.scrollY, lay.body.H)
	if last < first {
		return
	}

	if len(f.sel.rows) > 0 {
		for d := first; d <= last; d++ {
			if !f.sel.hasRow(f.sourceRow(d)) {
				continue
			}
			seg := Rect{X: lay.body.X, Y: f.rowScreenY(d), W: lay.body.W, H: f.met.heights[d]}
			dst.StyleRect(seg.Intersect(lay.pinnedRect), e.theme.Selection)
			dst.StyleRect(seg.Intersect(lay.scrollRect), e.theme.Selection)
		}
		return
	}

	if !f.sel.hasCell() {
		return
	}
	r0, c0, r1, c1 := f.sel.rect()
	for d := max(r0, first); d <= min(r1, last); d++ {
		for c := c0; c <= c1 && c < len(lay.cols); c++ {
			dst.StyleRect(f.cellRect(d, c), e.theme.Selection)
		}
	}
	dst.StyleRect(f.cellRect(f.sel.activeRow, f.sel.activeCol), e.theme.Active)

	if f.interactive && !f.ed.open {
		if hr := f.fillHandleRect(); !hr.Empty() {
			dst.Set(hr.X, hr.Y, NewCell(fillHandleGlyph, e.theme.Handle))
		}
	}
}

// drawFillPreview styles the cells a fill drag would write, leaving the
// source block under its selection highlight.
func (e *Engine) drawFillPreview(dst *Buffer, f *gridFrame) {
	if f.drag.kind != dragFill || !f.sel.hasCell() {
		return
	}
	r0, c0, r1, c1 := f.sel.rect()
	first, last := f.met.visibleRange(f.scrollY, f.lay.body.H)
	if last < first {
		return
	}
	for d := max(r0, first); d <= min(f.drag.tRow, last); d++ {
		for c := c0; c <= f.drag.tCol && c < len(f.lay.cols); c++ {
			if d <= r1 && c <= c1 {
				continue
			}
			dst.StyleRect(f.cellRect(d, c), e.theme.FillPreview)
		}
	}
}

func (e *Engine) drawHeaderStrip(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	if lay.header.Empty() {
		return
	}
	if lay.gutterW > 0 {
		corner := Rect{X: f.viewport.X, Y: lay.header.Y, W: lay.gutterW, H: headerRows}
		dst.FillRect(corner, NewCell(' ', e.theme.Gutter))
	}

	dst.PushClip(lay.header)
	dst.FillRect(lay.header, NewCell(' ', e.theme.Header))
	cols := f.src.Columns()
	for i := range lay.cols {
		r := f.headerColumnRect(i)
		if r.Empty() {
			continue
		}
		selected := f.sel.headerCol == i
		hovered := f.hover.col == i &&
			(f.hover.zone == hitHeader || f.hover.zone == hitTear || f.hover.zone == hitHeaderResize)
		st := e.theme.Header
		if selected {
			st = e.theme.HeaderSelected
		}
		dst.FillRect(r, NewCell(' ', st))

		x, w := lay.cols[i].x, lay.cols[i].w
		if tw := w - cellPadX - 1; tw > 0 {
			dst.PushClip(r)
			dst.WriteTruncated(x+cellPadX, r.Y, cols[i].Title, st, tw)
			dst.PopClip()
		}
		if (selected || hovered) && r.Contains(x, r.Y) {
			dst.Set(x, r.Y, NewCell(tearGlyph, e.theme.Handle))
		}
		if sepX := x + w - 1; r.Contains(sepX, r.Y) {
			sepSt := e.theme.GridLine
			if (f.hover.zone == hitHeaderResize && f.hover.col == i) ||
				(f.drag.kind == dragResize && f.drag.col == i) {
				sepSt = e.theme.Handle
			}
			dst.Set(sepX, r.Y, NewCell(boxVertical, sepSt))
		}
	}

	if lay.addSlotX >= 0 {
		slot := Rect{X: lay.addSlotX, Y: lay.header.Y, W: addSlotWidth, H: headerRows}
		scrollStrip := Rect{X: lay.scrollRect.X, Y: lay.header.Y, W: lay.header.Right() - lay.scrollRect.X, H: headerRows}
		if slot = slot.Intersect(scrollStrip); !slot.Empty() {
			st := e.theme.Header
			if f.hover.zone == hitAddColumn {
				st = e.theme.Handle
			}
			dst.WriteClipped(slot.X, slot.Y, " + ", st, slot.W)
		}
	}
	dst.PopClip()
}

func (e *Engine) drawGutter(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	if lay.gutterRect.Empty() {
		return
	}
	dst.PushClip(lay.gutterRect)
	dst.FillRect(lay.gutterRect, NewCell(' ', e.theme.Gutter))
	first, last := f.met.visibleRange(f.scrollY, lay.body.H)
	for d := first; d <= last; d++ {
		y := f.rowScreenY(d)
		st := e.theme.Gutter
		if f.sel.hasRow(f.sourceRow(d)) {
			st = e.theme.GutterSelected
			dst.FillRect(Rect{X: lay.gutterRect.X, Y: y, W: lay.gutterW, H: f.met.heights[d]}, NewCell(' ', st))
		}
		num := strconv.Itoa(d + 1)
		dst.WriteClipped(lay.gutterRect.Right()-1-len(num), y, num, st, len(num))

		hovered := f.hover.row == d &&
			(f.hover.zone == hitGutter || f.hover.zone == hitGutterHandle || f.hover.zone == hitRowAdd)
		dragging := (f.drag.kind == dragRowPress || f.drag.kind == dragRowMove) && f.drag.row == d
		if f.interactive && (hovered || dragging) {
			dst.Set(lay.gutterRect.X, y, NewCell(tearGlyph, e.theme.Handle))
			dst.Set(lay.gutterRect.Right()-1, y, NewCell(addGlyph, e.theme.Handle))
		}
	}
	dst.PopClip()
}

// drawDragGhost marks reorder drags: the source column or row dims and a
// line shows where release would insert it.
func (e *Engine) drawDragGhost(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	switch f.drag.kind {
	case dragColMove:
		if hr := f.headerColumnRect(f.drag.col); !hr.Empty() {
			dst.StyleRect(hr, e.theme.DragGhost)
		}
		ins := f.drag.insert
		if ins < 0 || len(lay.cols) == 0 {
			return
		}
		var x int
		if ins < len(lay.cols) {
			x = lay.cols[ins].x
		} else {
			lc := lay.cols[len(lay.cols)-1]
			x = lc.x + lc.w
		}
		strip := Rect{X: lay.body.X, Y: lay.header.Y, W: lay.body.W, H: headerRows + lay.body.H}
		dst.PushClip(strip)
		dst.VLine(x, strip.Y, strip.H, boxVertical, e.theme.Handle)
		dst.PopClip()

	case dragRowMove:
		if f.drag.row >= 0 && f.drag.row < len(f.met.heights) {
			seg := Rect{X: lay.gutterRect.X, Y: f.rowScreenY(f.drag.row), W: lay.gutterW, H: f.met.heights[f.drag.row]}
			dst.StyleRect(seg.Intersect(lay.gutterRect), e.theme.DragGhost)
		}
		ins := f.drag.insert
		if ins < 0 || ins > len(f.met.heights) {
			return
		}
		y := f.rowScreenY(ins)
		strip := Rect{X: f.viewport.X, Y: lay.body.Y, W: lay.gutterW + lay.body.W, H: lay.body.H}
		dst.PushClip(strip)
		dst.HLine(strip.X, y, strip.W, boxHorizontal, e.theme.Handle)
		dst.PopClip()
	}
}

func (e *Engine) drawScrollbars(dst *Buffer, f *gridFrame) {
	lay := &f.lay
	if !lay.vBar.Empty() {
		dst.FillRect(lay.vBar, NewCell(scrollTrackGlyph, e.theme.ScrollTrack))
		if th := f.vThumbRect(); !th.Empty() {
			dst.FillRect(th, NewCell(scrollThumbGlyph, e.theme.ScrollThumb))
		}
	}
	if !lay.hBar.Empty() {
		dst.FillRect(lay.hBar, NewCell(scrollTrackGlyph, e.theme.ScrollTrack))
		if th := f.hThumbRect(); !th.Empty() {
			dst.FillRect(th, NewCell(scrollThumbGlyph, e.theme.ScrollThumb))
		}
	}
}

// drawEditor renders the in-place editor and, for Select cells, its
// option popup. Extension kinds get first refusal on the editor rect.
func (e *Engine) drawEditor(dst *Buffer, f *gridFrame) {
	ed := &f.ed
	if !ed.open {
		return
	}
	r := e.editorRect(f)
	if r.Empty() {
		ed.popupRect = Rect{}
		return
	}

	if ed.kind == editCell {
		cols := f.src.Columns()
		if ed.col >= 0 && ed.col < len(cols) && cols[ed.col].Kind == KindExtension {
			if h := e.kinds[cols[ed.col].KindID]; h != nil {
				ctx := e.cellContext(f, ed.row, ed.col)
				ctx.Buf = dst
				ctx.Rect = r
				ctx.Style = e.theme.Editor
				if h.DrawEditor(ctx, &Editor{ed: ed}) {
					return
				}
			}
		}
	}

	st := e.theme.Editor
	dst.FillRect(r, NewCell(' ', st))
	inner := Rect{X: r.X + cellPadX, Y: r.Y, W: r.W - 2*cellPadX, H: 1}
	if inner.W > 0 {
		e.scrollEditorToCursor(f, inner.W)
		e.drawEditorText(dst, f, inner, st)
	}

	if ed.kind == editCell && ed.popup {
		e.drawEditorPopup(dst, f, r)
	} else {
		ed.popupRect = Rect{}
	}
}

// scrollEditorToCursor keeps the cursor cell inside the visible window,
// nudging the editor's horizontal scroll by the minimum needed.
func (e *Engine) scrollEditorToCursor(f *gridFrame, avail int) {
	ed := &f.ed
	cur := 0
	for i, rn := range ed.text {
		if i >= ed.cursor {
			break
		}
		cur += e.measure.runeWidth(rn)
	}
	if cur < ed.scroll {
		ed.scroll = cur
	}
	if cur >= ed.scroll+avail {
		ed.scroll = cur - avail + 1
	}
	if ed.scroll < 0 {
		ed.scroll = 0
	}
}

func (e *Engine) drawEditorText(dst *Buffer, f *gridFrame, r Rect, st Style) {
	ed := &f.ed
	textSt := st
	if ed.selectAll && len(ed.text) > 0 {
		textSt = st.Reverse()
	}
	x := r.X - ed.scroll
	cursorX := -1
	for i, rn := range ed.text {
		if i == ed.cursor {
			cursorX = x
		}
		w := e.measure.runeWidth(rn)
		if x >= r.X && x+w <= r.Right() {
			dst.WriteClipped(x, r.Y, string(rn), textSt, w)
		}
		x += w
	}
	if ed.cursor >= len(ed.text) {
		cursorX = x
	}
	if !ed.selectAll && cursorX >= r.X && cursorX < r.Right() {
		dst.StyleRect(Rect{X: cursorX, Y: r.Y, W: 1, H: 1}, st.Reverse())
	}
}

// drawEditorPopup lays the Select dropdown under the editor, flipping
// above when the viewport bottom would cut it off. The rect it stores is
// what hitTest and popupPick resolve clicks against next frame.
func (e *Engine) drawEditorPopup(dst *Buffer, f *gridFrame, anchor Rect) {
	ed := &f.ed
	opts := e.popupOptions(f)
	if len(opts) == 0 {
		ed.popupRect = Rect{}
		return
	}
	if ed.popupIndex >= len(opts) {
		ed.popupIndex = len(opts) - 1
	}
	if ed.popupIndex < 0 {
		ed.popupIndex = 0
	}

	h := min(len(opts), popupMaxRows)
	w := anchor.W
	for _, o := range opts {
		if ow := e.measure.Width(o) + 2*cellPadX; ow > w {
			w = ow
		}
	}
	pr := Rect{X: anchor.X, Y: anchor.Bottom(), W: w, H: h}
	if pr.Bottom() > f.viewport.Bottom() && anchor.Y-h >= f.viewport.Y {
		pr.Y = anchor.Y - h
	}
	if pr.Right() > f.viewport.Right() {
		pr.X = f.viewport.Right() - pr.W
	}
	pr = pr.Intersect(f.viewport)
	ed.popupRect = pr
	if pr.Empty() {
		return
	}

	top := popupTop(ed.popupIndex, pr.H)
	for i := 0; i < pr.H && top+i < len(opts); i++ {
		st := e.theme.Popup
		if top+i == ed.popupIndex {
			st = e.theme.PopupSel
		}
		dst.FillRect(Rect{X: pr.X, Y: pr.Y + i, W: pr.W, H: 1}, NewCell(' ', st))
		dst.WriteTruncated(pr.X+cellPadX, pr.Y+i, opts[top+i], st, pr.W-2*cellPadX)
	}
}

// popupTop gives the first visible option index for a dropdown window of
// the given height, scrolled just enough to keep the highlight inside.
// popupPick derives the same value to map a clicked row back to an option.
func popupTop(index, height int) int {
	if height <= 0 || index < height {
		return 0
	}
	return index - height + 1
}
