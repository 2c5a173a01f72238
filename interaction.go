package gridsheet

import (
	"sort"
	"strconv"
	"strings"
)

// dragThreshold is how far the pointer must travel, in cells, before a
// press on a tear or gutter handle promotes to a real drag.
const dragThreshold = 1

// dragKind names the active pointer gesture.
type dragKind uint8

const (
	dragNone dragKind = iota
	dragResize
	dragColPress // tear handle held, below the start threshold
	dragColMove
	dragRowPress // gutter handle held, below the start threshold
	dragRowMove
	dragRange  // extending the cell selection
	dragGutter // sweeping a contiguous row range from the gutter
	dragFill
	dragScrubPress // pressed in an active Number cell, below the threshold
	dragScrub
	dragVThumb
	dragHThumb
)

// dragState is the one active gesture. Gestures are exclusive with each
// other but independent of the selection sub-state.
type dragState struct {
	kind   dragKind
	col    int // column being resized, reordered, or scrubbed
	row    int // display row a row gesture started on
	startX int
	startY int
	startW int // resize: width at press
	liveW  int // resize: live width while the button is held
	insert int // reorder: live insertion index
	tRow   int // fill: live target corner, display
	tCol   int
	val0   float64 // scrub: value at press
	grab   int     // thumb drag: pointer offset into the thumb
}

func (d *dragState) clear() {
	*d = dragState{col: -1, row: -1, insert: -1, tRow: -1, tCol: -1}
}

// interactPass feeds one frame of input through the state machine:
// keyboard, wheel, hover, then the press/drag/release edges. Geometry is
// recomputed afterwards so the draw pass sees the gesture's effect.
func (e *Engine) interactPass(f *gridFrame) {
	e.handleKeys(f)
	e.handleWheel(f)
	e.layoutPass(f)

	hit := e.hitTest(f, e.in.MouseX, e.in.MouseY)
	f.hover.zone, f.hover.row, f.hover.col = hit.zone, hit.row, hit.col

	switch {
	case e.in.PressedLeft():
		e.pressLeft(f, hit)
	case e.in.ReleasedLeft():
		if f.drag.kind != dragNone {
			e.releaseLeft(f)
		}
	case e.in.HeldLeft():
		if f.drag.kind != dragNone {
			e.dragMove(f, hit)
		}
	default:
		if f.drag.kind != dragNone {
			// Release edge was lost; treat it as a normal release.
			e.releaseLeft(f)
		}
	}
	if e.in.PressedRight() {
		e.pressRight(f, hit)
	}

	e.hintCursor(f, hit)
	e.layoutPass(f)
}

func (e *Engine) handleWheel(f *gridFrame) {
	dx, dy := e.in.WheelDX, e.in.WheelDY
	if dx == 0 && dy == 0 {
		return
	}
	if !f.viewport.Contains(e.in.MouseX, e.in.MouseY) {
		return
	}
	if dy != 0 && dx == 0 && e.in.Mods.Has(ModShift) {
		dx, dy = dy, 0
	}
	f.scrollY = clamp(f.scrollY+dy*e.opts.WheelStep, 0, f.lay.maxScrollY)
	f.scrollX = clamp(f.scrollX+dx*e.opts.WheelStep, 0, f.lay.maxScrollX)
}

func (e *Engine) pressLeft(f *gridFrame, hit hitResult) {
	switch hit.zone {
	case hitPopup:
		e.popupPick(f, hit.row)
		return
	case hitEditor:
		e.editorClick(f, e.in.MouseX)
		return
	case hitOutside:
		e.commitEdit(f)
		f.sel.clear()
		f.drag.clear()
		f.menuRow, f.menuCol = -1, -1
		return
	}

	// Any press outside the editor commits a pending edit before the new
	// gesture starts.
	e.commitEdit(f)
	f.menuRow, f.menuCol = -1, -1

	cols := f.src.Columns()
	d := &f.drag
	x, y := e.in.MouseX, e.in.MouseY

	switch hit.zone {
	case hitHeaderResize:
		d.clear()
		d.kind = dragResize
		d.col = hit.col
		d.startX = x
		d.startW = f.lay.cols[hit.col].w
		d.liveW = d.startW

	case hitTear:
		if cols[hit.col].Locked {
			f.sel.selectHeader(hit.col)
			return
		}
		d.clear()
		d.kind = dragColPress
		d.col = hit.col
		d.startX = x
		d.insert = -1

	case hitHeader:
		if f.sel.headerCol == hit.col && !cols[hit.col].Locked {
			f.ed.openRename(hit.col, cols[hit.col].Title)
			return
		}
		f.sel.selectHeader(hit.col)

	case hitAddColumn:
		if f.src.CanAppendColumns() {
			e.apply(f, AddColumn{})
		}

	case hitVThumb:
		d.clear()
		d.kind = dragVThumb
		d.grab = y - f.vThumbRect().Y

	case hitVTrack:
		if y < f.vThumbRect().Y {
			f.scrollY = clamp(f.scrollY-f.lay.body.H, 0, f.lay.maxScrollY)
		} else {
			f.scrollY = clamp(f.scrollY+f.lay.body.H, 0, f.lay.maxScrollY)
		}

	case hitHThumb:
		d.clear()
		d.kind = dragHThumb
		d.grab = x - f.hThumbRect().X

	case hitHTrack:
		view := f.lay.body.W - f.lay.pinnedWidth
		if x < f.hThumbRect().X {
			f.scrollX = clamp(f.scrollX-view, 0, f.lay.maxScrollX)
		} else {
			f.scrollX = clamp(f.scrollX+view, 0, f.lay.maxScrollX)
		}

	case hitGutterHandle:
		d.clear()
		d.kind = dragRowPress
		d.row = hit.row
		d.startY = y
		d.insert = -1

	case hitRowAdd:
		if f.src.CanAppendRows() {
			e.apply(f, AddRow{After: f.sourceRow(hit.row)})
		}

	case hitGutter:
		e.gutterSelect(f, hit.row)
		d.clear()
		d.kind = dragGutter
		d.row = hit.row

	case hitFill:
		d.clear()
		d.kind = dragFill
		_, _, r1, c1 := f.sel.rect()
		d.tRow, d.tCol = r1, c1

	case hitCell:
		e.pressCell(f, hit)

	case hitBody:
		f.sel.clear()
	}
}

// pressCell starts a fresh selection on a body cell and, for editable
// kinds, immediately begins editing. Number cells arm the scrub gesture
// instead of range extension.
func (e *Engine) pressCell(f *gridFrame, hit hitResult) {
	cols := f.src.Columns()
	c := cols[hit.col]

	if e.in.Mods.Has(ModShift) && f.sel.hasCell() {
		f.sel.extendTo(hit.row, hit.col)
		return
	}

	wasActive := f.sel.hasCell() && f.sel.activeRow == hit.row && f.sel.activeCol == hit.col
	f.sel.setCell(hit.row, hit.col)
	d := &f.drag
	d.clear()

	switch c.Kind {
	case KindBool:
		if wasActive {
			e.toggleBool(f, hit.row, hit.col)
		}
		return
	case KindNumber:
		if e.openCellEditor(f, hit.row, hit.col, "", false) {
			src := f.sourceRow(hit.row)
			d.kind = dragScrubPress
			d.col = hit.col
			d.startX = e.in.MouseX
			d.val0 = f.src.Cell(src, c.ID).Number
		}
		return
	}

	e.openCellEditor(f, hit.row, hit.col, "", false)
	d.kind = dragRange
	d.row, d.col = hit.row, hit.col
}

func (e *Engine) dragMove(f *gridFrame, hit hitResult) {
	d := &f.drag
	x, y := e.in.MouseX, e.in.MouseY

	switch d.kind {
	case dragResize:
		c := f.src.Columns()[d.col]
		d.liveW = max(e.columnMinWidth(c), d.startW+(x-d.startX))

	case dragColPress:
		if abs(x-d.startX) >= dragThreshold {
			d.kind = dragColMove
			d.insert = f.colInsertIndex(x)
		}

	case dragColMove:
		d.insert = f.colInsertIndex(x)

	case dragRowPress:
		if abs(y-d.startY) >= dragThreshold {
			d.kind = dragRowMove
			d.insert = f.rowInsertIndex(y)
		}

	case dragRowMove:
		d.insert = f.rowInsertIndex(y)

	case dragRange:
		if hit.zone == hitCell && (hit.row != d.row || hit.col != d.col) {
			e.cancelEdit(f)
			if d.kind == dragNone {
				// cancelEdit cleared a scrub gesture; selection drag is over
				return
			}
			f.sel.extendTo(hit.row, hit.col)
		}

	case dragGutter:
		if hit.row >= 0 && (hit.zone == hitGutter || hit.zone == hitGutterHandle || hit.zone == hitRowAdd) {
			f.selectRowRange(d.row, hit.row)
		}

	case dragFill:
		d.tRow, d.tCol = f.fillTarget(x, y)

	case dragScrubPress:
		if abs(x-d.startX) >= dragThreshold && e.lock.Acquire(lockOwnerScrub+e.depth) {
			d.kind = dragScrub
			e.scrubUpdate(f, x)
		}

	case dragScrub:
		e.scrubUpdate(f, x)

	case dragVThumb:
		bar := f.lay.vBar
		th := f.vThumbRect()
		pos := y - bar.Y - d.grab
		f.scrollY = thumbToOffset(bar.H, f.met.total, f.lay.body.H, pos, th.H)

	case dragHThumb:
		bar := f.lay.hBar
		th := f.hThumbRect()
		view := f.lay.body.W - f.lay.pinnedWidth
		pos := x - bar.X - f.lay.pinnedWidth - d.grab
		f.scrollX = thumbToOffset(bar.W-f.lay.pinnedWidth, f.lay.scrollContentW, view, pos, th.W)
	}
}

func (e *Engine) releaseLeft(f *gridFrame) {
	d := &f.drag
	cols := f.src.Columns()

	switch d.kind {
	case dragResize:
		if d.liveW != d.startW && d.col < len(cols) {
			e.apply(f, SetColumnWidth{Col: cols[d.col].ID, OldWidth: d.startW, Width: d.liveW})
		}

	case dragColPress:
		// Click on the tear handle without movement selects the column.
		f.sel.selectHeader(d.col)

	case dragColMove:
		from, to := d.col, d.insert
		if to >= 0 && to != from && to != from+1 {
			e.apply(f, MoveColumn{From: from, To: to})
			f.sel.remapColumns(from, to)
			if f.hover.col >= 0 {
				f.hover.col = remapIndexAfterMove(f.hover.col, from, to)
			}
			if f.menuCol >= 0 {
				f.menuCol = remapIndexAfterMove(f.menuCol, from, to)
			}
		}

	case dragRowPress:
		e.gutterSelect(f, d.row)

	case dragRowMove:
		from, to := d.row, d.insert
		if to >= 0 && to != from && to != from+1 {
			before := -1
			if to < f.displayRowCount() {
				before = f.sourceRow(to)
			}
			e.apply(f, MoveRow{Row: f.sourceRow(from), Before: before})
		}

	case dragFill:
		e.commitFill(f)

	case dragScrub:
		e.lock.Release(lockOwnerScrub + e.depth)
		e.commitEdit(f)

	case dragScrubPress:
		// Plain click inside the number editor; leave the edit open.
		e.editorCursorTo(f, e.in.MouseX)
	}
	d.clear()
}

func (e *Engine) pressRight(f *gridFrame, hit hitResult) {
	e.commitEdit(f)
	switch hit.zone {
	case hitCell:
		if !f.sel.contains(hit.row, hit.col) {
			f.sel.setCell(hit.row, hit.col)
		}
		f.menuRow, f.menuCol = hit.row, hit.col
	case hitHeader, hitTear, hitHeaderResize:
		f.sel.selectHeader(hit.col)
		f.menuRow, f.menuCol = -1, hit.col
	case hitGutter, hitGutterHandle, hitRowAdd:
		if hit.row >= 0 {
			src := f.sourceRow(hit.row)
			if !f.sel.hasRow(src) {
				f.sel.setRow(src, hit.row)
			}
			f.menuRow, f.menuCol = hit.row, -1
		}
	case hitOutside:
		f.menuRow, f.menuCol = -1, -1
	}
}

func menuOpen(f *gridFrame) bool {
	return f.menuRow >= 0 || f.menuCol >= 0
}

// colInsertIndex derives the live insertion index for a column drag from
// the column midpoints at their current screen positions.
func (f *gridFrame) colInsertIndex(x int) int {
	idx := 0
	for i := range f.lay.cols {
		if x > f.lay.cols[i].x+f.lay.cols[i].w/2 {
			idx = i + 1
		}
	}
	return idx
}

// rowInsertIndex is the row-axis analogue, keyed off row midpoints.
func (f *gridFrame) rowInsertIndex(y int) int {
	n := f.displayRowCount()
	row := f.rowAtScreenY(y)
	if row < 0 {
		if y < f.lay.body.Y {
			return 0
		}
		return n
	}
	if y > f.rowScreenY(row)+f.met.heights[row]/2 {
		return row + 1
	}
	return row
}

// fillTarget clamps the live fill target so the fill only grows the
// selection downward and rightward.
func (f *gridFrame) fillTarget(x, y int) (row, col int) {
	_, _, r1, c1 := f.sel.rect()
	row, col = r1, c1
	if r := f.rowAtScreenY(y); r >= 0 {
		row = r
	} else if y >= f.lay.body.Y {
		row = f.displayRowCount() - 1
	}
	if c, ok := f.columnAt(x); ok {
		col = c
	} else if x >= f.lay.body.Right() && len(f.lay.cols) > 0 {
		col = len(f.lay.cols) - 1
	}
	return max(r1, row), max(c1, col)
}

func (e *Engine) gutterSelect(f *gridFrame, row int) {
	src := f.sourceRow(row)
	switch {
	case e.in.Mods.Has(ModShift) && f.sel.lastGutterRow >= 0:
		f.selectRowRange(f.sel.lastGutterRow, row)
	case e.in.Mods.Has(ModCtrl) || e.in.Mods.Has(ModMeta):
		f.sel.toggleRow(src, row)
	default:
		f.sel.setRow(src, row)
	}
}

// selectRowRange selects the contiguous display range [d0, d1] as source
// rows, keeping the existing gutter anchor.
func (f *gridFrame) selectRowRange(d0, d1 int) {
	if d0 > d1 {
		d0, d1 = d1, d0
	}
	s := &f.sel
	s.anchorRow, s.anchorCol = -1, -1
	s.extentRow, s.extentCol = -1, -1
	s.activeRow, s.activeCol = -1, -1
	s.headerCol = -1
	s.rows = s.rows[:0]
	for d := d0; d <= d1; d++ {
		s.rows = append(s.rows, f.sourceRow(d))
	}
	sort.Ints(s.rows)
}

// scrubUpdate turns accumulated horizontal travel into a live value,
// scaled by the column step and the Shift/Alt sensitivity modifiers, and
// mirrors it into the edit buffer.
func (e *Engine) scrubUpdate(f *gridFrame, x int) {
	cols := f.src.Columns()
	if f.drag.col < 0 || f.drag.col >= len(cols) {
		return
	}
	c := cols[f.drag.col]
	step := c.Step
	if step == 0 {
		step = e.opts.ScrubStep
	}
	if e.in.Mods.Has(ModShift) {
		step *= 10
	}
	if e.in.Mods.Has(ModAlt) {
		step *= 0.1
	}
	v := f.drag.val0 + float64(x-f.drag.startX)*step
	v = f.src.NormalizeNumber(c.ID, v)
	f.ed.scrubVal = v
	f.ed.scrubLive = true
	f.ed.setText(formatNumber(v))
}

// editorClick handles a press inside the open editor: in a Number cell it
// arms the scrub gesture, everywhere else it moves the cursor.
func (e *Engine) editorClick(f *gridFrame, x int) {
	ed := &f.ed
	cols := f.src.Columns()
	if ed.kind == editCell && ed.col >= 0 && ed.col < len(cols) && cols[ed.col].Kind == KindNumber {
		v := ed.scrubVal
		if !ed.scrubLive {
			if p, err := strconv.ParseFloat(strings.TrimSpace(ed.String()), 64); err == nil {
				v = p
			} else {
				v = f.src.Cell(f.sourceRow(ed.row), cols[ed.col].ID).Number
			}
		}
		d := &f.drag
		d.clear()
		d.kind = dragScrubPress
		d.col = ed.col
		d.startX = x
		d.val0 = v
		return
	}
	e.editorCursorTo(f, x)
}

// editorCursorTo places the cursor at the clicked cell offset.
func (e *Engine) editorCursorTo(f *gridFrame, x int) {
	ed := &f.ed
	want := x - e.editorRect(f).X - cellPadX + ed.scroll
	pos, w := 0, 0
	for _, r := range ed.text {
		rw := e.measure.runeWidth(r)
		if w+rw > want {
			break
		}
		w += rw
		pos++
	}
	ed.selectAll = false
	ed.cursor = pos
}

// openCellEditor opens the in-place editor on a cell if its kind and
// flags allow text editing. seed overrides the cell content when set.
func (e *Engine) openCellEditor(f *gridFrame, row, col int, seed string, selectAll bool) bool {
	cols := f.src.Columns()
	if col < 0 || col >= len(cols) {
		return false
	}
	c := cols[col]
	src := f.sourceRow(row)
	cell := f.src.Cell(src, c.ID)
	if c.ReadOnly || c.Locked || cell.Flags.Has(CellReadOnly) {
		return false
	}
	switch c.Kind {
	case KindBool, KindSubtable:
		return false
	case KindExtension:
		if h := e.kinds[c.KindID]; h != nil {
			if h.OnActivate(e.cellContext(f, row, col), cell) {
				return false
			}
		}
	}
	text := cell.EditText()
	if seed != "" {
		text = seed
	}
	f.ed.openCell(row, col, text, selectAll)
	// Change detection runs against the cell, not the seed, so a typed
	// first character commits.
	f.ed.orig = cell.EditText()
	if c.Kind == KindSelect {
		f.ed.popup = true
		f.ed.popupIndex = 0
	}
	return true
}

func (e *Engine) toggleBool(f *gridFrame, row, col int) {
	cols := f.src.Columns()
	c := cols[col]
	src := f.sourceRow(row)
	cell := f.src.Cell(src, c.ID)
	if c.ReadOnly || c.Locked || cell.Flags.Has(CellReadOnly) || cell.Flags.Has(CellFormula) {
		return
	}
	v := !cell.Bool
	text := "false"
	if v {
		text = "true"
	}
	e.apply(f, SetCell{Row: src, Col: c.ID, Value: CellValue{Kind: KindBool, Text: text, Bool: v}})
}

// commitEdit commits the open editor if its content changed, then closes
// it. Unchanged content commits nothing.
func (e *Engine) commitEdit(f *gridFrame) {
	ed := &f.ed
	if !ed.open {
		return
	}
	switch ed.kind {
	case editCell:
		e.commitCellEdit(f)
	case editRename:
		cols := f.src.Columns()
		if ed.changed() && ed.col >= 0 && ed.col < len(cols) && !cols[ed.col].Locked {
			c := cols[ed.col]
			e.apply(f, RenameColumn{Col: c.ID, OldTitle: c.Title, Title: ed.String()})
		}
	case editTitle:
		if ed.changed() {
			e.apply(f, RenameTable{OldTitle: ed.orig, Title: ed.String()})
		}
	}
	ed.close()
}

func (e *Engine) commitCellEdit(f *gridFrame) {
	ed := &f.ed
	cols := f.src.Columns()
	if ed.col < 0 || ed.col >= len(cols) {
		return
	}
	c := cols[ed.col]
	src := f.sourceRow(ed.row)
	cell := f.src.Cell(src, c.ID)
	if c.ReadOnly || c.Locked || cell.Flags.Has(CellReadOnly) {
		return
	}
	if ed.scrubLive {
		v := f.src.NormalizeNumber(c.ID, ed.scrubVal)
		if v != cell.Number {
			e.apply(f, SetCell{Row: src, Col: c.ID, Value: CellValue{Kind: KindNumber, Text: formatNumber(v), Number: v}})
		}
		return
	}
	if !ed.changed() {
		return
	}
	v, ok := parseCellValue(f.src, c, ed.String())
	if !ok {
		return
	}
	e.apply(f, SetCell{Row: src, Col: c.ID, Value: v})
}

// cancelEdit closes the editor without committing and unwinds a scrub
// gesture if one drove it.
func (e *Engine) cancelEdit(f *gridFrame) {
	if f.drag.kind == dragScrub || f.drag.kind == dragScrubPress {
		e.lock.Release(lockOwnerScrub + e.depth)
		f.drag.clear()
	}
	f.ed.close()
}

func (e *Engine) cancelDrag(f *gridFrame) {
	if f.drag.kind == dragScrub || f.drag.kind == dragScrubPress {
		e.lock.Release(lockOwnerScrub + e.depth)
		f.ed.close()
	}
	f.drag.clear()
}

// apply forwards a command batch to the data layer.
func (e *Engine) apply(f *gridFrame, cmds ...Command) {
	if len(cmds) == 0 {
		return
	}
	f.src.Apply(cmds)
}

func (e *Engine) handleKeys(f *gridFrame) {
	for _, k := range e.in.Keys {
		if f.ed.open && e.editorKey(f, k) {
			continue
		}
		e.gridKey(f, k)
	}
}

// editorKey feeds one key to the open editor. It reports false for keys
// the editor does not own, which then fall through to the grid.
func (e *Engine) editorKey(f *gridFrame, k KeyEvent) bool {
	ed := &f.ed
	switch k.Code {
	case KeyEscape:
		if ed.popup && ed.kind == editCell {
			ed.popup = false
			return true
		}
		e.cancelEdit(f)
		return true

	case KeyEnter:
		wasCell := ed.kind == editCell
		if ed.popup {
			opts := e.popupOptions(f)
			if ed.popupIndex >= 0 && ed.popupIndex < len(opts) {
				ed.setText(opts[ed.popupIndex])
			}
		}
		e.commitEdit(f)
		if wasCell {
			if k.Mods.Has(ModShift) {
				e.moveActive(f, -1, 0, false)
			} else {
				e.moveActive(f, 1, 0, false)
			}
		}
		return true

	case KeyTab, KeyBacktab:
		wasCell := ed.kind == editCell
		e.commitEdit(f)
		if wasCell {
			if k.Code == KeyBacktab || k.Mods.Has(ModShift) {
				e.moveActive(f, 0, -1, false)
			} else {
				e.moveActive(f, 0, 1, false)
			}
		}
		return true

	case KeyUp:
		if ed.popup {
			ed.popupIndex = max(0, ed.popupIndex-1)
			return true
		}
		if ed.kind != editCell {
			return true
		}
		e.commitEdit(f)
		e.moveActive(f, -1, 0, false)
		return true

	case KeyDown:
		if ed.popup {
			n := len(e.popupOptions(f))
			if n > 0 {
				ed.popupIndex = min(n-1, ed.popupIndex+1)
			}
			return true
		}
		if ed.kind != editCell {
			return true
		}
		e.commitEdit(f)
		e.moveActive(f, 1, 0, false)
		return true

	case KeyLeft:
		ed.moveCursor(-1)
		return true
	case KeyRight:
		ed.moveCursor(1)
		return true
	case KeyHome:
		ed.home()
		return true
	case KeyEnd:
		ed.end()
		return true
	case KeyBackspace:
		ed.backspace()
		if ed.popup {
			ed.popupIndex = 0
		}
		return true
	case KeyDelete:
		ed.deleteForward()
		return true

	case KeyRune:
		if k.Mods.Has(ModCtrl) {
			return false
		}
		ed.insertRune(k.Rune)
		if ed.popup {
			ed.popupIndex = 0
		}
		return true
	}
	return false
}

func (e *Engine) gridKey(f *gridFrame, k KeyEvent) {
	s := &f.sel
	switch k.Code {
	case KeyEscape:
		if menuOpen(f) {
			f.menuRow, f.menuCol = -1, -1
			return
		}
		if f.drag.kind != dragNone {
			e.cancelDrag(f)
			return
		}
		s.clear()

	case KeyUp:
		e.moveActive(f, -1, 0, k.Mods.Has(ModShift))
	case KeyDown:
		e.moveActive(f, 1, 0, k.Mods.Has(ModShift))
	case KeyLeft:
		e.moveActive(f, 0, -1, k.Mods.Has(ModShift))
	case KeyRight:
		e.moveActive(f, 0, 1, k.Mods.Has(ModShift))

	case KeyPgUp:
		e.moveActive(f, -f.pageRows(), 0, k.Mods.Has(ModShift))
	case KeyPgDn:
		e.moveActive(f, f.pageRows(), 0, k.Mods.Has(ModShift))

	case KeyHome:
		if s.hasCell() {
			s.setCell(s.activeRow, 0)
			e.scrollToCell(f, s.activeRow, 0)
		}
	case KeyEnd:
		if n := len(f.src.Columns()); s.hasCell() && n > 0 {
			s.setCell(s.activeRow, n-1)
			e.scrollToCell(f, s.activeRow, n-1)
		}

	case KeyTab:
		e.moveActive(f, 0, 1, false)
	case KeyBacktab:
		e.moveActive(f, 0, -1, false)

	case KeyF2:
		if s.hasCell() {
			e.openCellEditor(f, s.activeRow, s.activeCol, "", false)
		}

	case KeyEnter:
		if !s.hasCell() {
			return
		}
		cols := f.src.Columns()
		if cols[s.activeCol].Kind == KindBool {
			e.toggleBool(f, s.activeRow, s.activeCol)
			return
		}
		e.openCellEditor(f, s.activeRow, s.activeCol, "", true)

	case KeyDelete, KeyBackspace:
		e.clearSelectedCells(f)

	case KeyRune:
		if k.Mods.Has(ModCtrl) {
			switch k.Rune {
			case 'c':
				e.copySelection(f)
			case 'x':
				e.copySelection(f)
				e.clearSelectedCells(f)
			case 'v':
				e.pasteClipboard(f)
			case 'z':
				if u, ok := f.src.(Undoer); ok {
					u.Undo()
				}
			case 'y':
				if u, ok := f.src.(Undoer); ok {
					u.Redo()
				}
			case 'a':
				n, cn := f.displayRowCount(), len(f.src.Columns())
				if n > 0 && cn > 0 {
					s.setCell(0, 0)
					s.extendTo(n-1, cn-1)
				}
			}
			return
		}
		if !s.hasCell() {
			return
		}
		c := f.src.Columns()[s.activeCol]
		switch c.Kind {
		case KindBool:
			if k.Rune == ' ' {
				e.toggleBool(f, s.activeRow, s.activeCol)
			}
		case KindSubtable:
			// no text editing on subtable cells
		default:
			e.openCellEditor(f, s.activeRow, s.activeCol, string(k.Rune), false)
		}
	}
}

// pageRows is the PgUp/PgDn stride: the number of currently visible rows.
func (f *gridFrame) pageRows() int {
	first, last := f.met.visibleRange(f.scrollY, f.lay.body.H)
	if last < first {
		return 1
	}
	return max(1, last-first)
}

// moveActive moves or extends the selection by a row/column delta and
// keeps the target cell scrolled into view.
func (e *Engine) moveActive(f *gridFrame, dr, dc int, extend bool) {
	n := f.displayRowCount()
	cn := len(f.src.Columns())
	if n == 0 || cn == 0 {
		return
	}
	s := &f.sel
	if !s.hasCell() {
		s.setCell(0, 0)
		e.scrollToCell(f, 0, 0)
		return
	}
	if extend {
		r := clamp(s.extentRow+dr, 0, n-1)
		c := clamp(s.extentCol+dc, 0, cn-1)
		s.extendTo(r, c)
		e.scrollToCell(f, r, c)
		return
	}
	r := clamp(s.activeRow+dr, 0, n-1)
	c := clamp(s.activeCol+dc, 0, cn-1)
	s.setCell(r, c)
	e.scrollToCell(f, r, c)
}

// scrollToCell adjusts scroll offsets the minimal amount that brings the
// cell fully into view. Pinned columns never need horizontal adjustment.
func (e *Engine) scrollToCell(f *gridFrame, row, col int) {
	if row >= 0 && row < len(f.met.heights) {
		top := f.met.offsets[row]
		bot := top + f.met.heights[row]
		if top < f.scrollY {
			f.scrollY = top
		} else if bot > f.scrollY+f.lay.body.H {
			f.scrollY = bot - f.lay.body.H
		}
	}
	if col >= 0 && col < len(f.lay.cols) && !f.lay.cols[col].pinned {
		left := f.lay.cols[col].x - f.lay.scrollRect.X + f.scrollX
		right := left + f.lay.cols[col].w
		view := f.lay.scrollRect.W
		if left < f.scrollX {
			f.scrollX = left
		} else if view > 0 && right > f.scrollX+view {
			f.scrollX = right - view
		}
	}
	f.scrollX = clamp(f.scrollX, 0, f.lay.maxScrollX)
	f.scrollY = clamp(f.scrollY, 0, f.lay.maxScrollY)
}

// clearSelectedCells resets every selected cell to its column default,
// skipping read-only and formula cells.
func (e *Engine) clearSelectedCells(f *gridFrame) {
	cols := f.src.Columns()
	e.refs = e.refs[:0]
	add := func(srcRow int, c *Column) {
		cell := f.src.Cell(srcRow, c.ID)
		if c.ReadOnly || c.Locked || cell.Flags.Has(CellReadOnly) || cell.Flags.Has(CellFormula) {
			return
		}
		e.refs = append(e.refs, CellRef{Row: srcRow, Col: c.ID})
	}
	switch {
	case f.sel.hasCell():
		r0, c0, r1, c1 := f.sel.rect()
		for r := r0; r <= r1; r++ {
			src := f.sourceRow(r)
			for ci := c0; ci <= c1 && ci < len(cols); ci++ {
				add(src, &cols[ci])
			}
		}
	case len(f.sel.rows) > 0:
		for _, src := range f.sel.rows {
			for ci := range cols {
				add(src, &cols[ci])
			}
		}
	}
	if len(e.refs) == 0 {
		return
	}
	refs := make([]CellRef, len(e.refs))
	copy(refs, e.refs)
	e.apply(f, ClearCells{Cells: refs})
}

// popupOptions returns the Select options filtered by the typed text.
// Freshly opened editors show the full list.
func (e *Engine) popupOptions(f *gridFrame) []string {
	cols := f.src.Columns()
	if f.ed.col < 0 || f.ed.col >= len(cols) {
		return nil
	}
	e.optScratch = e.optScratch[:0]
	typed := strings.ToLower(strings.TrimSpace(f.ed.String()))
	filter := f.ed.changed() && typed != ""
	for _, o := range cols[f.ed.col].Options {
		if !filter || strings.Contains(strings.ToLower(o), typed) {
			e.optScratch = append(e.optScratch, o)
		}
	}
	return e.optScratch
}

// popupPick commits the clicked popup option.
func (e *Engine) popupPick(f *gridFrame, row int) {
	opts := e.popupOptions(f)
	index := popupTop(f.ed.popupIndex, f.ed.popupRect.H) + row
	if index < 0 || index >= len(opts) {
		return
	}
	f.ed.setText(opts[index])
	e.commitEdit(f)
}

func (e *Engine) hintCursor(f *gridFrame, hit hitResult) {
	var h CursorHint
	switch f.drag.kind {
	case dragResize, dragScrub:
		h = CursorResizeCol
	case dragColMove, dragRowMove:
		h = CursorHand
	case dragFill:
		h = CursorCross
	default:
		switch hit.zone {
		case hitHeaderResize:
			h = CursorResizeCol
		case hitTear, hitGutterHandle, hitRowAdd, hitAddColumn:
			h = CursorHand
		case hitFill:
			h = CursorCross
		case hitEditor:
			h = CursorText
		}
	}
	if h != CursorDefault {
		e.cursorHint = h
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
