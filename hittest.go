package gridsheet

// tearZoneW is the width in cells of the column drag-initiation zone at the
// left edge of a hovered or selected header cell.
const tearZoneW = 2

// hitZone enumerates what the pointer resolves to, in priority order.
type hitZone uint8

const (
	hitNone hitZone = iota
	hitOutside
	hitPopup        // open editor dropdown; row carries the option index
	hitEditor       // open editor's text area
	hitHeaderResize // resize band on a column's right edge, header row only
	hitTear         // drag-initiation zone on the hovered/selected header
	hitHeader
	hitAddColumn
	hitVThumb
	hitVTrack
	hitHThumb
	hitHTrack
	hitGutterHandle // row drag handle, left edge of the gutter
	hitRowAdd       // add-below button, right edge of the gutter
	hitGutter
	hitFill
	hitCell
	hitBody // inside the body but past the last row or column
)

// hitResult is a resolved pointer position. row and col are display
// indices and only meaningful for the zones that set them.
type hitResult struct {
	zone hitZone
	row  int
	col  int
}

// hoverState is the per-frame hover snapshot kept for cursor hints and
// header affordances.
type hoverState struct {
	zone hitZone
	row  int
	col  int
}

func (h *hoverState) clear() {
	h.zone = hitNone
	h.row, h.col = -1, -1
}

// hitTest resolves a pointer position against the current layout. The
// open editor and its popup take priority over everything; the resize
// band wins over the header cell so edge-dragging never starts a rename
// or column drag; pinned columns occlude scrolling ones. Column checks
// intersect each column with the sub-viewport that owns it, so a column
// squeezed out of view yields no hit.
func (e *Engine) hitTest(f *gridFrame, x, y int) hitResult {
	if !f.viewport.Contains(x, y) {
		return hitResult{zone: hitOutside, row: -1, col: -1}
	}

	if f.ed.open {
		if f.ed.popup && f.ed.popupRect.Contains(x, y) {
			return hitResult{zone: hitPopup, row: y - f.ed.popupRect.Y, col: f.ed.col}
		}
		if r := e.editorRect(f); r.Contains(x, y) {
			return hitResult{zone: hitEditor, row: f.ed.row, col: f.ed.col}
		}
	}

	lay := &f.lay
	if !lay.vBar.Empty() && lay.vBar.Contains(x, y) {
		if f.vThumbRect().Contains(x, y) {
			return hitResult{zone: hitVThumb, row: -1, col: -1}
		}
		return hitResult{zone: hitVTrack, row: -1, col: -1}
	}
	if !lay.hBar.Empty() && lay.hBar.Contains(x, y) {
		if f.hThumbRect().Contains(x, y) {
			return hitResult{zone: hitHThumb, row: -1, col: -1}
		}
		return hitResult{zone: hitHTrack, row: -1, col: -1}
	}

	if y >= lay.header.Y && y < lay.header.Y+headerRows && x >= lay.header.X {
		// Resize bands first, scanning pinned columns last so their edge
		// wins where they occlude scrolled columns.
		if col, ok := f.resizeBandAt(x, y); ok {
			return hitResult{zone: hitHeaderResize, row: -1, col: col}
		}
		for i := range lay.cols {
			r := f.headerColumnRect(i)
			if r.Empty() || !r.Contains(x, y) {
				continue
			}
			if i == f.pinnedOccluder(x) {
				if x-lay.cols[i].x < tearZoneW && (f.hover.col == i || f.sel.headerCol == i) {
					return hitResult{zone: hitTear, row: -1, col: i}
				}
				return hitResult{zone: hitHeader, row: -1, col: i}
			}
		}
		if lay.addSlotX >= 0 && x >= lay.addSlotX && x < lay.addSlotX+addSlotWidth &&
			x >= lay.scrollRect.X {
			return hitResult{zone: hitAddColumn, row: -1, col: -1}
		}
		return hitResult{zone: hitBody, row: -1, col: -1}
	}

	if !lay.gutterRect.Empty() && lay.gutterRect.Contains(x, y) {
		row := f.rowAtScreenY(y)
		if row < 0 {
			return hitResult{zone: hitBody, row: -1, col: -1}
		}
		switch x {
		case lay.gutterRect.X:
			return hitResult{zone: hitGutterHandle, row: row, col: -1}
		case lay.gutterRect.Right() - 1:
			return hitResult{zone: hitRowAdd, row: row, col: -1}
		default:
			return hitResult{zone: hitGutter, row: row, col: -1}
		}
	}

	if lay.body.Contains(x, y) {
		if f.fillHandleRect().Contains(x, y) {
			return hitResult{zone: hitFill, row: -1, col: -1}
		}
		row := f.rowAtScreenY(y)
		if row < 0 {
			return hitResult{zone: hitBody, row: -1, col: -1}
		}
		if col, ok := f.columnAt(x); ok {
			return hitResult{zone: hitCell, row: row, col: col}
		}
		return hitResult{zone: hitBody, row: row, col: -1}
	}

	return hitResult{zone: hitNone, row: -1, col: -1}
}

// resizeBandAt finds a column whose header resize band covers x. The band
// is the column's last header cell, which doubles as the separator glyph.
func (f *gridFrame) resizeBandAt(x, y int) (int, bool) {
	if y < f.lay.header.Y || y >= f.lay.header.Y+headerRows {
		return -1, false
	}
	// Pinned columns first: they draw over scrolled columns.
	for i := range f.lay.cols {
		if !f.lay.cols[i].pinned {
			continue
		}
		r := f.headerColumnRect(i)
		if !r.Empty() && x == f.lay.cols[i].x+f.lay.cols[i].w-1 && r.Contains(x, y) {
			return i, true
		}
	}
	for i := range f.lay.cols {
		if f.lay.cols[i].pinned {
			continue
		}
		r := f.headerColumnRect(i)
		if !r.Empty() && x == f.lay.cols[i].x+f.lay.cols[i].w-1 && r.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}

// pinnedOccluder returns the column that owns screen x: a pinned column
// when x lies in the pinned strip, otherwise the scrolling column there.
func (f *gridFrame) pinnedOccluder(x int) int {
	inPinned := x < f.lay.pinnedRect.Right() && f.lay.pinnedWidth > 0
	for i := range f.lay.cols {
		cg := &f.lay.cols[i]
		if cg.pinned != inPinned {
			continue
		}
		if x >= cg.x && x < cg.x+cg.w {
			return i
		}
	}
	return -1
}

// columnAt maps screen x to a column position inside the body.
func (f *gridFrame) columnAt(x int) (int, bool) {
	i := f.pinnedOccluder(x)
	if i < 0 {
		return -1, false
	}
	r := f.columnRect(i)
	if r.Empty() || x < r.X || x >= r.Right() {
		return -1, false
	}
	return i, true
}

// fillHandleRect is the one-cell square at the bottom-right corner of the
// selection, clipped to the owning sub-viewport; empty when scrolled out
// or when no cell selection exists.
func (f *gridFrame) fillHandleRect() Rect {
	if !f.sel.hasCell() || len(f.met.heights) == 0 {
		return Rect{}
	}
	_, _, r1, c1 := f.sel.rect()
	if r1 >= len(f.met.heights) || c1 >= len(f.lay.cols) {
		return Rect{}
	}
	cg := f.lay.cols[c1]
	x := cg.x + cg.w - 1
	y := f.rowScreenY(r1) + f.met.heights[r1] - 1
	cell := Rect{X: x, Y: y, W: 1, H: 1}
	if cg.pinned {
		return cell.Intersect(f.lay.pinnedRect)
	}
	return cell.Intersect(f.lay.scrollRect)
}

// editorRect is the on-screen rect of the open editor: the active cell's
// rect for cell edits, the header cell for renames.
func (e *Engine) editorRect(f *gridFrame) Rect {
	if !f.ed.open {
		return Rect{}
	}
	switch f.ed.kind {
	case editRename:
		if f.ed.col < 0 || f.ed.col >= len(f.lay.cols) {
			return Rect{}
		}
		return f.headerColumnRect(f.ed.col)
	case editTitle:
		return f.lay.header
	default:
		return f.cellRect(f.ed.row, f.ed.col)
	}
}

// cellRect is the clipped on-screen rect of one body cell.
func (f *gridFrame) cellRect(row, col int) Rect {
	if row < 0 || row >= len(f.met.heights) || col < 0 || col >= len(f.lay.cols) {
		return Rect{}
	}
	cg := f.lay.cols[col]
	r := Rect{X: cg.x, Y: f.rowScreenY(row), W: cg.w, H: f.met.heights[row]}
	if cg.pinned {
		return r.Intersect(f.lay.pinnedRect)
	}
	return r.Intersect(f.lay.scrollRect)
}
