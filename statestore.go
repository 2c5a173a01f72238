package gridsheet

// viewState is the persisted snapshot of one embedded grid's interaction
// state, keyed by the embedder-chosen state key. It holds only state the
// user would notice losing between frames; derived geometry is cheap and
// recomputed on the next draw.
type viewState struct {
	scrollX, scrollY int
	sel              selection
	drag             dragState
	ed               editor
	menuRow, menuCol int

	// Source identity at save time. Restoring it lets beginGrid tell a
	// carried-over grid from a key that was rebound to a different table.
	tableID string
	viewID  string

	// Wheel-routing inputs recorded at the end of the last draw.
	viewport   Rect
	maxScrollX int
	maxScrollY int
	lastFrame  uint64
}

// loadState copies the persisted state for key into the frame. A key that
// has never been saved leaves the frame at its fresh-grid defaults.
func (e *Engine) loadState(f *gridFrame, key string) {
	f.stateKey = key
	st, ok := e.states[key]
	if !ok {
		return
	}
	f.scrollX = st.scrollX
	f.scrollY = st.scrollY
	f.sel.copyFrom(&st.sel)
	f.drag = st.drag
	f.ed.copyFrom(&st.ed)
	f.menuRow, f.menuCol = st.menuRow, st.menuCol
	f.tableID, f.viewID = st.tableID, st.viewID
}

// saveState copies every interaction-relevant field of the frame into the
// keyed map, allocating the entry on first use.
func (e *Engine) saveState(f *gridFrame, key string) {
	st, ok := e.states[key]
	if !ok {
		st = &viewState{}
		e.states[key] = st
	}
	st.scrollX = f.scrollX
	st.scrollY = f.scrollY
	st.sel.copyFrom(&f.sel)
	st.drag = f.drag
	st.ed.copyFrom(&f.ed)
	st.menuRow, st.menuCol = f.menuRow, f.menuCol
	st.tableID, st.viewID = f.tableID, f.viewID
	st.viewport = f.viewport
	st.maxScrollX = f.lay.maxScrollX
	st.maxScrollY = f.lay.maxScrollY
	st.lastFrame = e.frameID
}

// DropState forgets the persisted view state for key, e.g. when the
// embedding document block is deleted.
func (e *Engine) DropState(key string) {
	delete(e.states, key)
}
