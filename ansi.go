package gridsheet

import (
	"strconv"
	"strings"
)

// RenderANSI serializes the buffer to a styled string for hosts that
// consume whole frames, like bubbletea views or piped output. Rows join
// with newlines; SGR sequences are emitted only where the style changes,
// with a reset at each row end so styles never bleed across lines.
func RenderANSI(b *Buffer) string {
	w, h := b.Size()
	var sb strings.Builder
	sb.Grow(w*h + h*16)
	for y := 0; y < h; y++ {
		last := DefaultStyle()
		for x := 0; x < w; x++ {
			c := b.Get(x, y)
			if c.Rune == 0 {
				// continuation cell of a wide rune
				continue
			}
			if c.Style != last {
				writeStyleSGR(&sb, c.Style)
				last = c.Style
			}
			sb.WriteRune(c.Rune)
		}
		sb.WriteString("\x1b[0m")
		if y < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// writeStyleSGR emits one combined SGR sequence: reset, attributes, then
// both colors, so no state leaks from the previous run.
func writeStyleSGR(sb *strings.Builder, s Style) {
	sb.WriteString("\x1b[0")
	if s.Attr.Has(AttrBold) {
		sb.WriteString(";1")
	}
	if s.Attr.Has(AttrDim) {
		sb.WriteString(";2")
	}
	if s.Attr.Has(AttrItalic) {
		sb.WriteString(";3")
	}
	if s.Attr.Has(AttrUnderline) {
		sb.WriteString(";4")
	}
	if s.Attr.Has(AttrReverse) {
		sb.WriteString(";7")
	}
	if s.Attr.Has(AttrStrike) {
		sb.WriteString(";9")
	}
	writeColorSGR(sb, s.FG, true)
	writeColorSGR(sb, s.BG, false)
	sb.WriteByte('m')
}

func writeColorSGR(sb *strings.Builder, c Color, fg bool) {
	switch c.Mode {
	case ColorDefault:
		if fg {
			sb.WriteString(";39")
		} else {
			sb.WriteString(";49")
		}
	case Color16:
		base := 30
		if !fg {
			base = 40
		}
		idx := int(c.Index)
		if idx >= 8 {
			base += 60
			idx -= 8
		}
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(base + idx))
	case Color256:
		if fg {
			sb.WriteString(";38;5;")
		} else {
			sb.WriteString(";48;5;")
		}
		sb.WriteString(strconv.Itoa(int(c.Index)))
	case ColorRGB:
		if fg {
			sb.WriteString(";38;2;")
		} else {
			sb.WriteString(";48;2;")
		}
		sb.WriteString(strconv.Itoa(int(c.R)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(c.G)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(c.B)))
	}
}
