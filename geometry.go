package gridsheet

// Fixed chrome sizes in cells.
const (
	headerRows   = 1
	addSlotWidth = 3 // trailing "+" strip for appending columns
	scrollbarW   = 1
)

// columnGeom is the per-frame geometry of one visible column.
type columnGeom struct {
	x      int
	w      int
	pinned bool
}

// layout is the geometry output for one grid frame: column positions,
// the viewport partition, and scrollbar placement. Recomputed every
// layout pass; nothing here is persisted.
type layout struct {
	cols []columnGeom // parallel to DataSource.Columns()

	header     Rect // header strip, right of the gutter corner
	gutterRect Rect // row-number strip under the corner
	body       Rect // cell area below the header, right of the gutter
	pinnedRect Rect // pinned-column sub-viewport of body
	scrollRect Rect // scrolling-column sub-viewport of body

	gutterW        int
	pinnedWidth    int
	scrollContentW int // scrolling columns plus the add slot
	addSlotX       int // screen x of the add-column slot, -1 when absent

	vScroll, hScroll bool
	vBar, hBar       Rect

	maxScrollX, maxScrollY int
}

// gutterWidth sizes the row-number strip for the largest row number.
func gutterWidth(rowCount int) int {
	w := 2 + numDigits(rowCount)
	if w < 4 {
		w = 4
	}
	return w
}

func numDigits(n int) int {
	if n < 10 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

// layoutPass computes geometry and row metrics for the frame. The
// vertical and horizontal scrollbar decisions feed each other (each one
// narrows the space the other measures against), so the pass iterates to
// a fixed point, capped at three rounds, and keeps the last answer if the
// flags still oscillate. Scroll offsets are clamped after every layout
// and stale selection indices are clamped against the current bounds.
func (e *Engine) layoutPass(f *gridFrame) {
	cols := f.src.Columns()
	rowCount := f.displayRowCount()
	lay := &f.lay

	lay.gutterW = 0
	if e.opts.RowGutter {
		lay.gutterW = gutterWidth(rowCount)
	}

	vs, hs := false, false
	var bodyW, bodyH int
	for pass := 0; pass < 3; pass++ {
		bodyW = f.viewport.W - lay.gutterW
		if vs {
			bodyW -= scrollbarW
		}
		bodyH = f.viewport.H - headerRows
		if hs {
			bodyH -= scrollbarW
		}
		e.layoutColumns(f, cols, bodyW)
		e.computeRowMetrics(f, cols, rowCount)
		needV := f.met.total > bodyH
		needH := lay.scrollContentW > bodyW-lay.pinnedWidth
		if needV == vs && needH == hs {
			break
		}
		vs, hs = needV, needH
	}
	lay.vScroll, lay.hScroll = vs, hs

	x := f.viewport.X
	y := f.viewport.Y
	lay.header = Rect{X: x + lay.gutterW, Y: y, W: bodyW, H: headerRows}
	lay.gutterRect = Rect{X: x, Y: y + headerRows, W: lay.gutterW, H: bodyH}
	lay.body = Rect{X: x + lay.gutterW, Y: y + headerRows, W: bodyW, H: bodyH}

	pw := min(lay.pinnedWidth, bodyW)
	lay.pinnedRect = Rect{X: lay.body.X, Y: lay.body.Y, W: pw, H: bodyH}
	lay.scrollRect = Rect{X: lay.body.X + pw, Y: lay.body.Y, W: bodyW - pw, H: bodyH}

	lay.maxScrollX = max(0, lay.scrollContentW-(bodyW-lay.pinnedWidth))
	lay.maxScrollY = max(0, f.met.total-bodyH)
	f.scrollX = clamp(f.scrollX, 0, lay.maxScrollX)
	f.scrollY = clamp(f.scrollY, 0, lay.maxScrollY)

	e.positionColumns(f, cols)

	lay.vBar = Rect{}
	lay.hBar = Rect{}
	if vs {
		lay.vBar = Rect{X: f.viewport.Right() - scrollbarW, Y: lay.body.Y, W: scrollbarW, H: bodyH}
	}
	if hs {
		lay.hBar = Rect{X: lay.body.X, Y: f.viewport.Bottom() - scrollbarW, W: bodyW, H: scrollbarW}
	}

	f.sel.clampTo(rowCount, len(cols))
	if f.hover.row >= rowCount || f.hover.col >= len(cols) {
		f.hover.clear()
	}
}

// layoutColumns resolves widths: explicit widths clamp to the column
// minimum, auto columns split the leftover equally (leftmost columns take
// the remainder cells), and a live resize overrides its column's width
// for the duration of the drag.
func (e *Engine) layoutColumns(f *gridFrame, cols []Column, bodyW int) {
	lay := &f.lay
	if cap(lay.cols) < len(cols) {
		lay.cols = make([]columnGeom, len(cols))
	}
	lay.cols = lay.cols[:len(cols)]

	addW := 0
	if f.src.CanAppendColumns() {
		addW = addSlotWidth
	}

	explicit := 0
	autoCount := 0
	for i, c := range cols {
		minW := e.columnMinWidth(c)
		w := c.Width
		if f.drag.kind == dragResize && f.drag.col == i {
			w = f.drag.liveW
		}
		if w > 0 {
			w = max(w, minW)
			lay.cols[i] = columnGeom{w: w, pinned: c.Pinned}
			explicit += w
		} else {
			lay.cols[i] = columnGeom{w: -1, pinned: c.Pinned}
			autoCount++
		}
	}

	if autoCount > 0 {
		leftover := bodyW - explicit - addW
		share := 0
		rem := 0
		if leftover > 0 {
			share = leftover / autoCount
			rem = leftover % autoCount
		}
		for i, c := range cols {
			if lay.cols[i].w >= 0 {
				continue
			}
			w := share
			if rem > 0 {
				w++
				rem--
			}
			lay.cols[i].w = max(w, e.columnMinWidth(c))
		}
	}

	lay.pinnedWidth = 0
	scrolling := 0
	for i := range lay.cols {
		if lay.cols[i].pinned {
			lay.pinnedWidth += lay.cols[i].w
		} else {
			scrolling += lay.cols[i].w
		}
	}
	lay.scrollContentW = scrolling + addW
}

// positionColumns assigns screen X positions: pinned columns pack from
// the body's left edge, scrolling columns pack after the pinned block
// offset by -scrollX, and the add slot trails the last scrolling column.
func (e *Engine) positionColumns(f *gridFrame, cols []Column) {
	lay := &f.lay
	px := lay.body.X
	sx := lay.body.X + lay.pinnedWidth - f.scrollX
	for i := range lay.cols {
		if lay.cols[i].pinned {
			lay.cols[i].x = px
			px += lay.cols[i].w
		} else {
			lay.cols[i].x = sx
			sx += lay.cols[i].w
		}
	}
	lay.addSlotX = -1
	if f.src.CanAppendColumns() {
		lay.addSlotX = sx
	}
}

// columnRect returns the clipped on-screen rect of a column's body area,
// intersected against the sub-viewport it belongs to. An empty rect means
// the column is scrolled or squeezed out of view.
func (f *gridFrame) columnRect(i int) Rect {
	cg := f.lay.cols[i]
	r := Rect{X: cg.x, Y: f.lay.body.Y, W: cg.w, H: f.lay.body.H}
	if cg.pinned {
		return r.Intersect(f.lay.pinnedRect)
	}
	return r.Intersect(f.lay.scrollRect)
}

// headerColumnRect is columnRect for the header strip.
func (f *gridFrame) headerColumnRect(i int) Rect {
	cg := f.lay.cols[i]
	r := Rect{X: cg.x, Y: f.lay.header.Y, W: cg.w, H: headerRows}
	if cg.pinned {
		clip := Rect{X: f.lay.pinnedRect.X, Y: f.lay.header.Y, W: f.lay.pinnedRect.W, H: headerRows}
		return r.Intersect(clip)
	}
	clip := Rect{X: f.lay.scrollRect.X, Y: f.lay.header.Y, W: f.lay.scrollRect.W, H: headerRows}
	return r.Intersect(clip)
}

// chromeHeight is the vertical space the grid spends outside cell rows.
func (f *gridFrame) chromeHeight() int {
	h := headerRows
	if f.lay.hScroll {
		h += scrollbarW
	}
	return h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
