package gridsheet

import "github.com/mattn/go-runewidth"

// Rect is a rectangle in surface coordinates (cells).
type Rect struct {
	X, Y, W, H int
}

// Contains returns true if the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersect returns the overlap of two rectangles. An empty overlap has
// W == 0 or H == 0.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Empty returns true if the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Buffer is a 2D grid of cells representing a drawable surface. Writes are
// filtered through an optional clip-rect stack so nested regions cannot
// paint outside themselves.
type Buffer struct {
	cells  []Cell
	width  int
	height int
	clips  []Rect
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{
		cells:  make([]Cell, width*height),
		width:  width,
		height: height,
	}
	b.Clear()
	return b
}

// Width returns the buffer width.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height.
func (b *Buffer) Height() int { return b.height }

// Size returns the buffer dimensions.
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// InBounds returns true if the coordinates are within the buffer.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Buffer) index(x, y int) int {
	return y*b.width + x
}

// PushClip intersects a new clip rectangle with the current one and pushes
// it. Every write until the matching PopClip is confined to it.
func (b *Buffer) PushClip(r Rect) {
	if n := len(b.clips); n > 0 {
		r = r.Intersect(b.clips[n-1])
	} else {
		r = r.Intersect(Rect{W: b.width, H: b.height})
	}
	b.clips = append(b.clips, r)
}

// PopClip removes the innermost clip rectangle. Unbalanced PopClip calls
// indicate a draw-pass bug and panic.
func (b *Buffer) PopClip() {
	if len(b.clips) == 0 {
		panic("gridsheet: PopClip without PushClip")
	}
	b.clips = b.clips[:len(b.clips)-1]
}

// Clip returns the active clip rectangle.
func (b *Buffer) Clip() Rect {
	if n := len(b.clips); n > 0 {
		return b.clips[n-1]
	}
	return Rect{W: b.width, H: b.height}
}

func (b *Buffer) writable(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	if n := len(b.clips); n > 0 {
		return b.clips[n-1].Contains(x, y)
	}
	return true
}

// Get returns the cell at the given coordinates, or an empty cell when out
// of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if !b.InBounds(x, y) {
		return EmptyCell()
	}
	return b.cells[b.index(x, y)]
}

// Set writes a cell, honoring bounds and the clip stack.
func (b *Buffer) Set(x, y int, c Cell) {
	if !b.writable(x, y) {
		return
	}
	b.cells[b.index(x, y)] = c
}

// SetStyle replaces only the style at the given coordinates.
func (b *Buffer) SetStyle(x, y int, s Style) {
	if !b.writable(x, y) {
		return
	}
	b.cells[b.index(x, y)].Style = s
}

// Clear resets the buffer to empty cells with the default style.
func (b *Buffer) Clear() {
	empty := EmptyCell()
	for i := range b.cells {
		b.cells[i] = empty
	}
}

// FillRect fills a rectangular region with the given cell.
func (b *Buffer) FillRect(r Rect, c Cell) {
	r = r.Intersect(b.Clip())
	for y := r.Y; y < r.Bottom(); y++ {
		row := y * b.width
		for x := r.X; x < r.Right(); x++ {
			b.cells[row+x] = c
		}
	}
}

// StyleRect restyles a rectangular region, leaving runes in place. Used for
// selection and hover overlays.
func (b *Buffer) StyleRect(r Rect, s Style) {
	r = r.Intersect(b.Clip())
	for y := r.Y; y < r.Bottom(); y++ {
		row := y * b.width
		for x := r.X; x < r.Right(); x++ {
			b.cells[row+x].Style = s
		}
	}
}

// WriteClipped writes a string, advancing by display width and stopping at
// maxWidth cells. Wide runes that would straddle the limit are dropped.
// Returns the number of cells consumed.
func (b *Buffer) WriteClipped(x, y int, s string, style Style, maxWidth int) int {
	w := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if w+rw > maxWidth {
			break
		}
		b.Set(x+w, y, NewCell(r, style))
		if rw == 2 {
			b.Set(x+w+1, y, Cell{Rune: 0, Style: style})
		}
		w += rw
	}
	return w
}

// WriteTruncated behaves like WriteClipped but marks truncation with an
// ellipsis in the final cell.
func (b *Buffer) WriteTruncated(x, y int, s string, style Style, maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return b.WriteClipped(x, y, s, style, maxWidth)
	}
	w := b.WriteClipped(x, y, s, style, maxWidth-1)
	b.Set(x+w, y, NewCell('…', style))
	return w + 1
}

// HLine draws a horizontal run of the given rune.
func (b *Buffer) HLine(x, y, length int, r rune, style Style) {
	for i := 0; i < length; i++ {
		b.Set(x+i, y, NewCell(r, style))
	}
}

// VLine draws a vertical run of the given rune.
func (b *Buffer) VLine(x, y, length int, r rune, style Style) {
	for i := 0; i < length; i++ {
		b.Set(x, y+i, NewCell(r, style))
	}
}

// Box drawing characters.
const (
	boxHorizontal  = '─'
	boxVertical    = '│'
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
)

// DrawBorder draws a single-line border just inside the rectangle.
func (b *Buffer) DrawBorder(r Rect, style Style) {
	if r.W < 2 || r.H < 2 {
		return
	}
	b.Set(r.X, r.Y, NewCell(boxTopLeft, style))
	b.Set(r.Right()-1, r.Y, NewCell(boxTopRight, style))
	b.Set(r.X, r.Bottom()-1, NewCell(boxBottomLeft, style))
	b.Set(r.Right()-1, r.Bottom()-1, NewCell(boxBottomRight, style))
	b.HLine(r.X+1, r.Y, r.W-2, boxHorizontal, style)
	b.HLine(r.X+1, r.Bottom()-1, r.W-2, boxHorizontal, style)
	b.VLine(r.X, r.Y+1, r.H-2, boxVertical, style)
	b.VLine(r.Right()-1, r.Y+1, r.H-2, boxVertical, style)
}

// Resize resizes the buffer, preserving content where it fits and dropping
// any active clips.
func (b *Buffer) Resize(width, height int) {
	if width == b.width && height == b.height {
		return
	}
	cells := make([]Cell, width*height)
	empty := EmptyCell()
	for i := range cells {
		cells[i] = empty
	}
	for y := 0; y < min(height, b.height); y++ {
		for x := 0; x < min(width, b.width); x++ {
			cells[y*width+x] = b.cells[y*b.width+x]
		}
	}
	b.cells = cells
	b.width = width
	b.height = height
	b.clips = b.clips[:0]
}

// String returns the buffer contents as text, one line per row. Continuation
// cells of wide runes are skipped. Intended for tests and debugging.
func (b *Buffer) String() string {
	var out []byte
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[b.index(x, y)]
			if c.Rune == 0 {
				continue
			}
			out = append(out, string(c.Rune)...)
		}
		if y < b.height-1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}

// Line returns the content of a single row with trailing spaces removed.
func (b *Buffer) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var line []byte
	lastNonSpace := 0
	for x := 0; x < b.width; x++ {
		c := b.cells[b.index(x, y)]
		if c.Rune == 0 {
			continue
		}
		line = append(line, string(c.Rune)...)
		if c.Rune != ' ' {
			lastNonSpace = len(line)
		}
	}
	return string(line[:lastNonSpace])
}
