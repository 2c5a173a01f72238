package gridsheet

import (
	"unicode"
	"unicode/utf8"
)

// lineSpan is one wrapped display line as a byte range into the source
// string, so wrapping allocates nothing beyond the caller's span slice.
type lineSpan struct {
	start, end int
}

// wrapSpans wraps s to the given width using greedy word packing: lines
// break at the last whitespace that fits, fall back to a hard mid-word
// break only when a single word exceeds the width, and '\n' always forces
// a break. Whitespace never triggers a break itself, so trailing spaces
// ride along on the finished line and are clipped by drawing. A width of
// one cell or less disables wrapping and yields a single line. Spans are
// appended to out and the grown slice is returned.
func wrapSpans(m *measurer, s string, width int, out []lineSpan) []lineSpan {
	if width <= 1 || s == "" {
		return append(out, lineSpan{0, len(s)})
	}

	lineStart := 0  // byte offset of the current line
	lineWidth := 0  // display cells on the current line
	breakAt := -1   // byte offset just past the last whitespace
	breakWidth := 0 // line width through breakAt

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\n' {
			out = append(out, lineSpan{lineStart, i})
			i += size
			lineStart = i
			lineWidth = 0
			breakAt = -1
			continue
		}

		rw := m.runeWidth(r)
		if lineWidth > 0 && lineWidth+rw > width && !unicode.IsSpace(r) {
			if breakAt > lineStart {
				out = append(out, lineSpan{lineStart, breakAt})
				lineStart = breakAt
				lineWidth -= breakWidth
				for lineStart < i {
					lr, ls := utf8.DecodeRuneInString(s[lineStart:])
					if !unicode.IsSpace(lr) {
						break
					}
					lineStart += ls
					lineWidth -= m.runeWidth(lr)
				}
			} else {
				out = append(out, lineSpan{lineStart, i})
				lineStart = i
				lineWidth = 0
			}
			breakAt = -1
		}

		lineWidth += rw
		i += size
		if unicode.IsSpace(r) {
			breakAt = i
			breakWidth = lineWidth
		}
	}
	return append(out, lineSpan{lineStart, len(s)})
}

// wrapCount counts wrapped lines without recording spans. Mirrors
// wrapSpans exactly; measurer.LineCount memoizes it.
func wrapCount(m *measurer, s string, width int) int {
	if width <= 1 || s == "" {
		return 1
	}

	lines := 1
	lineStart := 0
	lineWidth := 0
	breakAt := -1
	breakWidth := 0

	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\n' {
			lines++
			i += size
			lineStart = i
			lineWidth = 0
			breakAt = -1
			continue
		}

		rw := m.runeWidth(r)
		if lineWidth > 0 && lineWidth+rw > width && !unicode.IsSpace(r) {
			lines++
			if breakAt > lineStart {
				lineStart = breakAt
				lineWidth -= breakWidth
				for lineStart < i {
					lr, ls := utf8.DecodeRuneInString(s[lineStart:])
					if !unicode.IsSpace(lr) {
						break
					}
					lineStart += ls
					lineWidth -= m.runeWidth(lr)
				}
			} else {
				lineStart = i
				lineWidth = 0
			}
			breakAt = -1
		}

		lineWidth += rw
		i += size
		if unicode.IsSpace(r) {
			breakAt = i
			breakWidth = lineWidth
		}
	}
	return lines
}
