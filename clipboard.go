package gridsheet

import (
	"strconv"
	"strings"
)

// copySelection serializes the selected rectangle, or the selected rows
// across all columns, as tab/newline-delimited text into the clipboard.
func (e *Engine) copySelection(f *gridFrame) {
	cols := f.src.Columns()
	var sb strings.Builder

	switch {
	case f.sel.hasCell():
		r0, c0, r1, c1 := f.sel.rect()
		for r := r0; r <= r1; r++ {
			if r > r0 {
				sb.WriteByte('\n')
			}
			src := f.sourceRow(r)
			for c := c0; c <= c1 && c < len(cols); c++ {
				if c > c0 {
					sb.WriteByte('\t')
				}
				sb.WriteString(f.src.Cell(src, cols[c].ID).Text)
			}
		}
	case len(f.sel.rows) > 0:
		for i, src := range f.sel.rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for c := range cols {
				if c > 0 {
					sb.WriteByte('\t')
				}
				sb.WriteString(f.src.Cell(src, cols[c].ID).Text)
			}
		}
	default:
		return
	}
	e.clip.SetText(sb.String())
}

// pasteClipboard parses the clipboard as a TSV block anchored at the
// selection's top-left corner. Cells that are read-only, formula-bearing,
// fail their kind's parse, or would not change are skipped one by one;
// the rest apply as a single batch and the selection grows to the pasted
// block.
func (e *Engine) pasteClipboard(f *gridFrame) {
	text, ok := e.clip.Text()
	if !ok || !f.sel.hasCell() {
		return
	}
	grid := parseTSV(text)
	if len(grid) == 0 {
		return
	}
	r0, c0, _, _ := f.sel.rect()
	cols := f.src.Columns()
	n := f.displayRowCount()

	e.cmds = e.cmds[:0]
	width := 0
	for dr, line := range grid {
		r := r0 + dr
		if r >= n {
			break
		}
		if len(line) > width {
			width = len(line)
		}
		src := f.sourceRow(r)
		for dc, cellText := range line {
			c := c0 + dc
			if c >= len(cols) {
				break
			}
			col := cols[c]
			cur := f.src.Cell(src, col.ID)
			if col.ReadOnly || col.Locked || cur.Flags.Has(CellReadOnly) || cur.Flags.Has(CellFormula) {
				continue
			}
			v, okv := parseCellValue(f.src, col, cellText)
			if !okv || valueUnchanged(col, v, cur) {
				continue
			}
			e.cmds = append(e.cmds, SetCell{Row: src, Col: col.ID, Value: v})
		}
	}
	if len(e.cmds) > 0 {
		batch := make([]Command, len(e.cmds))
		copy(batch, e.cmds)
		f.src.Apply(batch)
	}
	f.sel.setCell(r0, c0)
	f.sel.extendTo(min(n-1, r0+len(grid)-1), min(len(cols)-1, c0+max(width, 1)-1))
}

// parseTSV splits clipboard text into a rectangular-ish grid of strings.
// A trailing newline does not produce an empty row; CRLF is tolerated.
func parseTSV(text string) [][]string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	out := make([][]string, len(lines))
	for i, ln := range lines {
		out[i] = strings.Split(strings.TrimSuffix(ln, "\r"), "\t")
	}
	return out
}

// parseCellValue parses typed or pasted text per the column kind. Numbers
// go through the column's normalization; booleans accept a small
// case-insensitive token set; Select columns with options require a
// matching option; Subtable cells never parse; everything else is raw
// text.
func parseCellValue(src DataSource, c Column, text string) (CellValue, bool) {
	if t := strings.TrimSpace(text); c.Kind != KindSubtable && strings.HasPrefix(t, "=") {
		// formula source passes through untouched; the data layer
		// evaluates it and reports the display text
		return CellValue{Kind: c.Kind, Text: t}, true
	}
	switch c.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return CellValue{}, false
		}
		v = src.NormalizeNumber(c.ID, v)
		return CellValue{Kind: KindNumber, Text: formatNumber(v), Number: v}, true

	case KindBool:
		v, ok := parseBool(text)
		if !ok {
			return CellValue{}, false
		}
		t := "false"
		if v {
			t = "true"
		}
		return CellValue{Kind: KindBool, Text: t, Bool: v}, true

	case KindSelect:
		if len(c.Options) > 0 {
			want := strings.TrimSpace(text)
			for _, o := range c.Options {
				if strings.EqualFold(o, want) {
					return CellValue{Kind: KindSelect, Text: o}, true
				}
			}
			return CellValue{}, false
		}
		return CellValue{Kind: KindSelect, Text: text}, true

	case KindSubtable:
		return CellValue{}, false

	default:
		return CellValue{Kind: c.Kind, Text: text}, true
	}
}

// parseBool maps the accepted truthy/falsy tokens. Empty text is falsy so
// clearing a pasted column unchecks it.
func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on", "x":
		return true, true
	case "false", "no", "n", "0", "off", "":
		return false, true
	}
	return false, false
}

// valueUnchanged compares the kind's meaningful field so redundant writes
// never reach the undo history.
func valueUnchanged(c Column, v CellValue, cur CellData) bool {
	switch c.Kind {
	case KindNumber:
		return v.Number == cur.Number
	case KindBool:
		return v.Bool == cur.Bool
	default:
		return v.Text == cur.Text
	}
}
