package gridsheet

// editKind says what the editor overlay is editing.
type editKind uint8

const (
	editCell   editKind = iota
	editRename          // column header label
	editTitle           // table title, host-invoked
)

// editor is the in-place text editor drawn over the active cell or a
// header being renamed. One editor exists per grid frame; opening it for
// a new target closes the previous one through the commit path first.
type editor struct {
	open      bool
	kind      editKind
	row, col  int // display cell for editCell; column for editRename
	text      []rune
	cursor    int
	scroll    int    // horizontal scroll in cells
	orig      string // original text, for change detection and cancel
	selectAll bool   // next typed rune replaces the whole content

	popup      bool // Select-kind dropdown open
	popupRect  Rect
	popupIndex int

	scrubVal  float64 // live value mirror while scrub-editing
	scrubLive bool
}

func (ed *editor) openCell(row, col int, seed string, selectAll bool) {
	ed.open = true
	ed.kind = editCell
	ed.row, ed.col = row, col
	ed.text = append(ed.text[:0], []rune(seed)...)
	ed.cursor = len(ed.text)
	ed.scroll = 0
	ed.orig = seed
	ed.selectAll = selectAll
	ed.popup = false
	ed.popupIndex = -1
	ed.scrubLive = false
}

func (ed *editor) openRename(col int, title string) {
	ed.open = true
	ed.kind = editRename
	ed.row, ed.col = -1, col
	ed.text = append(ed.text[:0], []rune(title)...)
	ed.cursor = len(ed.text)
	ed.scroll = 0
	ed.orig = title
	ed.selectAll = true
	ed.popup = false
	ed.scrubLive = false
}

func (ed *editor) openTitle(title string) {
	ed.openRename(-1, title)
	ed.kind = editTitle
}

func (ed *editor) close() {
	ed.open = false
	ed.popup = false
	ed.text = ed.text[:0]
	ed.cursor = 0
	ed.scroll = 0
	ed.orig = ""
	ed.selectAll = false
	ed.scrubLive = false
}

// copyFrom deep-copies another editor, reusing the text backing array.
func (ed *editor) copyFrom(o *editor) {
	text := append(ed.text[:0], o.text...)
	*ed = *o
	ed.text = text
}

// String returns the current text. Allocates; used at commit boundaries.
func (ed *editor) String() string {
	return string(ed.text)
}

// changed reports whether the text differs from what editing started with.
func (ed *editor) changed() bool {
	i := 0
	for _, r := range ed.orig {
		if i >= len(ed.text) || ed.text[i] != r {
			return true
		}
		i++
	}
	return i != len(ed.text)
}

func (ed *editor) insertRune(r rune) {
	if ed.selectAll {
		ed.text = ed.text[:0]
		ed.cursor = 0
		ed.selectAll = false
	}
	ed.text = append(ed.text, 0)
	copy(ed.text[ed.cursor+1:], ed.text[ed.cursor:])
	ed.text[ed.cursor] = r
	ed.cursor++
}

func (ed *editor) backspace() {
	if ed.selectAll {
		ed.text = ed.text[:0]
		ed.cursor = 0
		ed.selectAll = false
		return
	}
	if ed.cursor == 0 {
		return
	}
	ed.text = append(ed.text[:ed.cursor-1], ed.text[ed.cursor:]...)
	ed.cursor--
}

func (ed *editor) deleteForward() {
	ed.selectAll = false
	if ed.cursor >= len(ed.text) {
		return
	}
	ed.text = append(ed.text[:ed.cursor], ed.text[ed.cursor+1:]...)
}

func (ed *editor) moveCursor(delta int) {
	ed.selectAll = false
	ed.cursor += delta
	if ed.cursor < 0 {
		ed.cursor = 0
	}
	if ed.cursor > len(ed.text) {
		ed.cursor = len(ed.text)
	}
}

func (ed *editor) home() {
	ed.selectAll = false
	ed.cursor = 0
}

func (ed *editor) end() {
	ed.selectAll = false
	ed.cursor = len(ed.text)
}

// setText replaces the content, as scrubbing and popup picks do.
func (ed *editor) setText(s string) {
	ed.text = append(ed.text[:0], []rune(s)...)
	ed.cursor = len(ed.text)
	ed.selectAll = false
}
