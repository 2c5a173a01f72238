// Package gridsheet implements a virtualized, interactive grid widget
// engine for terminal UIs: per-frame geometry over non-uniform row
// heights, binary-search hit-testing, a pointer/keyboard interaction
// state machine, and bounded-depth recursive embedding of grids inside
// their own cells. Drawing targets a plain cell Buffer that any terminal
// backend can flush; the tabular data lives behind the DataSource
// boundary.
package gridsheet

// maxNestedDepth is the hard cap on grid-in-grid recursion. Depth 0 is the
// root grid; three embedded levels may stack above it. Entry beyond the cap
// is refused and callers fall back to a static preview.
const maxNestedDepth = 3

// PreviewQuality selects how subtable cells render.
type PreviewQuality uint8

const (
	PreviewStatic PreviewQuality = iota // rows as plain text, no interaction
	PreviewOff                          // count label only
	PreviewFull                         // real embedded grid via recursion
)

// CursorHint tells the runner what pointer shape fits the hovered zone.
type CursorHint uint8

const (
	CursorDefault CursorHint = iota
	CursorText
	CursorHand
	CursorResizeCol
	CursorResizeRow
	CursorCross
)

// Options configures an Engine. Zero values select the defaults noted on
// each field.
type Options struct {
	BaseRowHeight int            // minimum row height in cells (1)
	MinColWidth   int            // minimum column width (4)
	RowGutter     bool           // row-number gutter with drag/add handles
	EastAsian     bool           // treat ambiguous-width runes as wide
	TabWidth      int            // cells per tab (4)
	Preview       PreviewQuality // subtable preview quality (PreviewStatic)
	PreviewBudget int            // full previews per frame (8)
	WheelStep     int            // rows scrolled per wheel tick (3)
	ScrubStep     float64        // value change per cell of scrub drag (1)
	Clipboard     Clipboard      // nil selects an in-process clipboard
	Theme         *Theme         // nil selects ThemeDark
}

func (o Options) withDefaults() Options {
	if o.BaseRowHeight <= 0 {
		o.BaseRowHeight = 1
	}
	if o.MinColWidth <= 0 {
		o.MinColWidth = 4
	}
	if o.TabWidth <= 0 {
		o.TabWidth = 4
	}
	if o.PreviewBudget <= 0 {
		o.PreviewBudget = 8
	}
	if o.WheelStep <= 0 {
		o.WheelStep = 3
	}
	if o.ScrubStep == 0 {
		o.ScrubStep = 1
	}
	if o.Clipboard == nil {
		o.Clipboard = &MemClipboard{}
	}
	if o.Theme == nil {
		o.Theme = &ThemeDark
	}
	return o
}

// gridFrame is the complete working state for one grid at one recursion
// depth. The engine owns maxNestedDepth+1 of these; entering a nested
// scope moves to the next frame and leaves the parent's untouched. Only
// the metrics arrays grow across frames; everything else is cheap scalar
// state reset on entry.
type gridFrame struct {
	src         DataSource
	viewport    Rect
	interactive bool
	stateKey    string

	lay layout
	met rowMetrics

	viewRows   []int  // display -> source; nil is identity
	viewRowVer uint64

	scrollX, scrollY int
	sel              selection
	hover            hoverState
	drag             dragState
	ed               editor
	menuRow, menuCol int // context-menu target; -1 when closed

	tableID, viewID string // last drawn, for switch detection
}

// sourceRow maps a display row to its source row.
func (f *gridFrame) sourceRow(display int) int {
	if f.viewRows == nil {
		return display
	}
	if display < 0 || display >= len(f.viewRows) {
		return display
	}
	return f.viewRows[display]
}

// displayRowCount is the number of rows the view presents.
func (f *gridFrame) displayRowCount() int {
	if f.viewRows != nil {
		return len(f.viewRows)
	}
	if f.src == nil {
		return 0
	}
	return f.src.RowCount()
}

// reset returns the frame to the fresh-grid defaults: nothing selected,
// top of scroll, caches invalid. The metrics arrays are kept for reuse.
func (f *gridFrame) reset() {
	f.src = nil
	f.viewport = Rect{}
	f.interactive = false
	f.stateKey = ""
	f.viewRows = nil
	f.viewRowVer = 0
	f.scrollX = 0
	f.scrollY = 0
	f.sel.clear()
	f.hover.clear()
	f.drag.clear()
	f.ed.close()
	f.menuRow, f.menuCol = -1, -1
	f.met.invalidate()
	f.tableID = ""
	f.viewID = ""
}

// Engine is a grid engine instance. It carries no global state: recursion
// uses an explicit per-depth frame stack inside the instance, and embedded
// grids persist their view state in an instance-owned keyed map. All
// methods must be called from a single goroutine, one frame at a time.
type Engine struct {
	opts    Options
	theme   *Theme
	measure *measurer
	clip    Clipboard
	kinds   map[string]CellKindHandler

	frames [maxNestedDepth + 1]gridFrame
	depth  int

	states map[string]*viewState

	in          frameInput
	prevButtons MouseButton
	frameID     uint64
	inFrame     bool

	budget     int
	cursorHint CursorHint
	lock       DragLock

	cmds       []Command  // per-gesture command batch, reused
	spans      []lineSpan // wrap scratch, reused
	refs       []CellRef  // clear-cells scratch, reused
	optScratch []string   // popup option filter scratch, reused
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:    opts,
		theme:   opts.Theme,
		measure: newMeasurer(opts.EastAsian, opts.TabWidth),
		clip:    opts.Clipboard,
		kinds:   make(map[string]CellKindHandler),
		states:  make(map[string]*viewState),
	}
	for i := range e.frames {
		e.frames[i].reset()
	}
	return e
}

// RegisterCellKind installs a handler for an extension cell kind. Columns
// with Kind == KindExtension dispatch to the handler registered under
// their KindID.
func (e *Engine) RegisterCellKind(id string, h CellKindHandler) {
	e.kinds[id] = h
}

// Theme returns the active theme.
func (e *Engine) Theme() *Theme { return e.theme }

// SetTheme swaps the active theme.
func (e *Engine) SetTheme(t *Theme) {
	if t != nil {
		e.theme = t
	}
}

// fr returns the frame for the current recursion depth.
func (e *Engine) fr() *gridFrame {
	return &e.frames[e.depth]
}

// BeginFrame starts a new frame: it snapshots input, resolves button
// edges against the previous frame, and resets the per-frame preview
// budget. One frame spans everything drawn until the next BeginFrame.
func (e *Engine) BeginFrame(in Input) {
	e.frameID++
	e.in.update(in, e.prevButtons)
	e.prevButtons = in.Buttons
	e.budget = e.opts.PreviewBudget
	e.cursorHint = CursorDefault
	e.depth = 0
	e.inFrame = true
}

// EndFrame closes the frame. Optional; BeginFrame implies it.
func (e *Engine) EndFrame() {
	e.inFrame = false
}

// Draw runs the full pipeline for the root grid: layout, interaction (when
// interactive), then drawing into dst. A degenerate viewport aborts with
// no state mutation.
func (e *Engine) Draw(dst *Buffer, src DataSource, viewport Rect, interactive bool) {
	if viewport.W <= 0 || viewport.H <= 0 || src == nil {
		return
	}
	f := e.fr()
	e.beginGrid(f, src, viewport, interactive)
	e.layoutPass(f)
	if interactive && e.inFrame {
		e.interactPass(f)
	}
	e.drawPass(dst, f)
}

// DrawEmbedded draws an independently addressable embedded grid. Its view
// state persists across frames under stateKey; the currently running
// grid's state is untouched because the embedded draw runs in its own
// nested scope. When the recursion cap is hit the cell degrades to a
// static preview drawn by the caller, and this reports false.
func (e *Engine) DrawEmbedded(dst *Buffer, src DataSource, viewport Rect, interactive bool, stateKey string) bool {
	if viewport.W <= 0 || viewport.H <= 0 || src == nil {
		return false
	}
	if !e.tryEnterScope() {
		return false
	}
	f := e.fr()
	e.loadState(f, stateKey)
	e.beginGrid(f, src, viewport, interactive)
	e.layoutPass(f)
	if interactive && e.inFrame {
		e.interactPass(f)
	}
	e.drawPass(dst, f)
	e.saveState(f, stateKey)
	e.exitScope()
	return true
}

// MeasureEmbeddedHeight runs a layout-only pass and reports the height in
// cells the grid wants at the given width. No input is handled and no
// cross-frame state is touched. Beyond the recursion cap it falls back to
// a base-height estimate.
func (e *Engine) MeasureEmbeddedHeight(src DataSource, width int) int {
	if src == nil || width <= 0 {
		return 0
	}
	if !e.tryEnterScope() {
		return e.estimateHeight(src)
	}
	f := e.fr()
	e.beginGrid(f, src, Rect{W: width, H: 1 << 20}, false)
	e.layoutPass(f)
	h := f.chromeHeight() + f.met.total
	e.exitScope()
	return h
}

// MeasureEmbeddedWidth reports the natural content width of the grid: the
// gutter plus every column at its explicit or minimum width.
func (e *Engine) MeasureEmbeddedWidth(src DataSource) int {
	if src == nil {
		return 0
	}
	w := 0
	if e.opts.RowGutter {
		w += gutterWidth(src.RowCount())
	}
	for _, c := range src.Columns() {
		w += e.columnMinWidth(c)
		if c.Width > e.columnMinWidth(c) {
			w += c.Width - e.columnMinWidth(c)
		}
	}
	if src.CanAppendColumns() {
		w += addSlotWidth
	}
	return w
}

// estimateHeight is the degraded measurement used beyond the recursion
// cap: chrome plus base-height rows.
func (e *Engine) estimateHeight(src DataSource) int {
	return headerRows + src.RowCount()*e.opts.BaseRowHeight
}

// columnMinWidth resolves a column's minimum width.
func (e *Engine) columnMinWidth(c Column) int {
	if c.MinWidth > 0 {
		return c.MinWidth
	}
	return e.opts.MinColWidth
}

// beginGrid binds a frame to a data source for this draw and handles
// table/view switches by resetting interaction state.
func (e *Engine) beginGrid(f *gridFrame, src DataSource, viewport Rect, interactive bool) {
	tid, vid := src.TableID(), src.ViewID()
	if f.tableID != tid || f.viewID != vid {
		f.sel.clear()
		f.drag.clear()
		f.ed.close()
		f.menuRow, f.menuCol = -1, -1
		f.scrollX, f.scrollY = 0, 0
		f.tableID, f.viewID = tid, vid
	}
	if !interactive && f.interactive {
		// Losing interactivity blurs the grid.
		f.sel.clear()
		f.drag.clear()
		f.ed.close()
	}
	f.src = src
	f.viewport = viewport
	f.interactive = interactive
	f.viewRows, f.viewRowVer = src.ViewRows()
}

// Blur commits any pending edit and clears selection, drag, and menu state
// on the root grid, as a click outside the grid would.
func (e *Engine) Blur() {
	f := &e.frames[0]
	if f.src != nil {
		e.commitEdit(f)
	}
	f.sel.clear()
	f.drag.clear()
	f.menuRow, f.menuCol = -1, -1
}

// CursorHint reports the pointer shape for the zone hovered this frame.
func (e *Engine) CursorHint() CursorHint { return e.cursorHint }

// IsAnyOverlayOpen reports whether any grid drawn by this engine, root or
// embedded, has an editor popup or in-place rename open. Embedders use it
// to suppress their own shortcuts while the user is mid-edit.
func (e *Engine) IsAnyOverlayOpen() bool {
	if e.frames[0].ed.open {
		return true
	}
	for _, st := range e.states {
		if st.ed.open {
			return true
		}
	}
	return false
}

// ShouldKeepEmbeddedInteractive reports whether the embedded grid under
// stateKey is in the middle of something (edit, drag, open popup) that
// its embedder should not steal input from.
func (e *Engine) ShouldKeepEmbeddedInteractive(stateKey string) bool {
	st, ok := e.states[stateKey]
	if !ok {
		return false
	}
	return st.ed.open || st.drag.kind != dragNone
}

// CanConsumeWheelEvent reports whether the embedded grid under stateKey
// would absorb a wheel event at the given position, letting embedders
// route wheel input between nested scrollable regions. A grid consumes
// the event while it can still scroll in the wheel direction; at the edge
// the event belongs to the parent.
func (e *Engine) CanConsumeWheelEvent(stateKey string, x, y, deltaY int) bool {
	st, ok := e.states[stateKey]
	if !ok || !st.viewport.Contains(x, y) {
		return false
	}
	if deltaY > 0 {
		return st.scrollY < st.maxScrollY
	}
	if deltaY < 0 {
		return st.scrollY > 0
	}
	return false
}

// BeginTitleEdit opens the in-place editor over the root grid's header
// strip, seeded with the current table title. The host calls this from its
// own rename affordance; the commit path emits RenameTable.
func (e *Engine) BeginTitleEdit(title string) {
	f := &e.frames[0]
	if f.src == nil {
		return
	}
	e.commitEdit(f)
	f.ed.openTitle(title)
}

// Hover reports the zone under the pointer as of the last interactive
// draw, expressed as a cell target: ok=false outside the body, row or col
// -1 for header and gutter zones respectively.
func (e *Engine) Hover() (row, col int, ok bool) {
	h := &e.frames[0].hover
	if h.zone == hitNone || h.zone == hitOutside {
		return 0, 0, false
	}
	return h.row, h.col, true
}

// SetActiveCell moves the root grid's focus to a display cell, committing
// any pending edit first, and scrolls the cell into view. Out-of-range
// positions clamp to the table.
func (e *Engine) SetActiveCell(row, col int) {
	f := &e.frames[0]
	if f.src == nil {
		return
	}
	n, cn := f.displayRowCount(), len(f.src.Columns())
	if n == 0 || cn == 0 {
		return
	}
	e.commitEdit(f)
	f.sel.setCell(clamp(row, 0, n-1), clamp(col, 0, cn-1))
	e.scrollToCell(f, f.sel.activeRow, f.sel.activeCol)
}

// ActiveCell returns the focused cell in display coordinates, or ok=false
// when nothing is active.
func (e *Engine) ActiveCell() (row, col int, ok bool) {
	s := &e.frames[0].sel
	if !s.hasCell() {
		return 0, 0, false
	}
	return s.activeRow, s.activeCol, true
}

// Selection returns the root grid's selection rectangle in display
// coordinates, normalized, with ok=false when no cell selection exists.
func (e *Engine) Selection() (minRow, minCol, maxRow, maxCol int, ok bool) {
	s := &e.frames[0].sel
	if !s.hasCell() {
		return 0, 0, 0, 0, false
	}
	r0, c0, r1, c1 := s.rect()
	return r0, c0, r1, c1, true
}

// SelectedRows returns the row-gutter multi-selection as source row
// indices. The returned slice is engine-owned; copy to retain.
func (e *Engine) SelectedRows() []int {
	return e.frames[0].sel.rows
}

// MenuTarget reports the context-menu target set by a right click, with
// ok=false when none is open. Row -1 with a valid column means a header
// target; col -1 with a valid row means a whole-row target.
func (e *Engine) MenuTarget() (row, col int, ok bool) {
	f := &e.frames[0]
	if !menuOpen(f) {
		return 0, 0, false
	}
	return f.menuRow, f.menuCol, true
}

// CloseMenu clears the context-menu target.
func (e *Engine) CloseMenu() {
	f := &e.frames[0]
	f.menuRow, f.menuCol = -1, -1
}

// DragLockHandle exposes the engine's exclusive pointer-delta lock so the
// surrounding application can coordinate its own drag gestures (camera
// orbit, pane resize) with cell scrubbing.
func (e *Engine) DragLockHandle() *DragLock { return &e.lock }

// DragLock is an exclusive owner id for raw pointer-delta tracking. At
// most one subsystem reads deltas at a time; a second acquirer is refused
// until the first releases.
type DragLock struct {
	owner int
}

// Acquire claims the lock for owner (non-zero). It reports false when a
// different owner holds it.
func (l *DragLock) Acquire(owner int) bool {
	if l.owner != 0 && l.owner != owner {
		return false
	}
	l.owner = owner
	return true
}

// Release frees the lock if owner holds it.
func (l *DragLock) Release(owner int) {
	if l.owner == owner {
		l.owner = 0
	}
}

// Held reports the current owner, zero when free.
func (l *DragLock) Held() int { return l.owner }

// scrub gestures lock with this owner base plus the recursion depth, so a
// scrub in an embedded grid cannot fight one in the parent.
const lockOwnerScrub = 0x5C00
