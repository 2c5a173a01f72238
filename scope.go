package gridsheet

// tryEnterScope pushes one recursion depth and resets that depth's frame
// to fresh-grid defaults. The parent frame is a distinct pre-allocated
// struct and is never touched, so it needs no snapshot and is valid for
// resumption the moment the child scope exits. Reports false at the cap.
func (e *Engine) tryEnterScope() bool {
	if e.depth >= maxNestedDepth {
		return false
	}
	e.depth++
	e.frames[e.depth].reset()
	return true
}

// exitScope pops one recursion depth. The popped frame keeps its metrics
// arrays for reuse; its data-source reference is dropped.
func (e *Engine) exitScope() {
	if e.depth == 0 {
		panic("gridsheet: exitScope at root depth")
	}
	e.frames[e.depth].src = nil
	e.depth--
}

// Scope is a handle over one entered nesting level, for embedders that
// draw several things inside a single nested scope instead of going
// through DrawEmbedded. It is a value type; entering allocates nothing.
type Scope struct {
	e     *Engine
	depth int
}

// TryEnterScope enters a nested scope explicitly. ok is false at the
// recursion cap, in which case the engine state is unchanged and the
// caller must fall back to a non-interactive rendering path.
func (e *Engine) TryEnterScope() (Scope, bool) {
	if !e.tryEnterScope() {
		return Scope{}, false
	}
	return Scope{e: e, depth: e.depth}, true
}

// Close restores the parent scope. Closing out of order is a programming
// error and panics.
func (s Scope) Close() {
	if s.e == nil {
		return
	}
	if s.e.depth != s.depth {
		panic("gridsheet: scope closed out of order")
	}
	s.e.exitScope()
}

// Depth reports the engine's current recursion depth.
func (e *Engine) Depth() int { return e.depth }

// takePreviewBudget consumes one full-quality preview slot. Once the
// frame's budget is spent, remaining subtable cells degrade to the count
// label until the next BeginFrame.
func (e *Engine) takePreviewBudget() bool {
	if e.budget <= 0 {
		return false
	}
	e.budget--
	return true
}
