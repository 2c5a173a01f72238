package gridsheet

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Horizontal padding inside a cell, in cells per side.
const cellPadX = 1

// metricsKey is the composite signature guarding the row-metrics cache.
// Any field changing forces a full rebuild; comparing keys is a handful
// of scalar and string compares, cheap enough to run every frame.
type metricsKey struct {
	revision   uint64
	tableID    string
	viewID     string
	parentRow  string
	colSig     uint64
	rowMapVer  uint64
	rowCount   int
	colCount   int
	quality    PreviewQuality
	measureSig uint16
}

// rowMetrics holds per-display-row heights and cumulative offsets.
// offsets has rowCount+1 entries with the total content height last, so
// offsets[i+1] == offsets[i] + heights[i] always holds. The arrays grow
// across frames and are reused between rebuilds.
type rowMetrics struct {
	key     metricsKey
	valid   bool
	heights []int
	offsets []int
	total   int
}

func (m *rowMetrics) invalidate() {
	m.valid = false
}

// colSignature hashes everything about the visible columns that affects
// row heights: identity, kind, extension id, settings, subtable preview
// rows, pinning, and the resolved layout width.
func colSignature(cols []Column, geoms []columnGeom) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for i := range cols {
		c := &cols[i]
		h.WriteString(c.ID)
		h.WriteString("\x00")
		h.WriteString(c.KindID)
		h.WriteString("\x00")
		h.WriteString(c.Settings)
		h.WriteString("\x00")
		binary.LittleEndian.PutUint64(buf[:], uint64(geoms[i].w))
		h.Write(buf[:])
		meta := uint64(c.Kind) | uint64(c.Preview)<<8
		if c.Pinned {
			meta |= 1 << 32
		}
		binary.LittleEndian.PutUint64(buf[:], meta)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// computeRowMetrics rebuilds heights and offsets when the signature moved,
// and is a no-op otherwise.
func (e *Engine) computeRowMetrics(f *gridFrame, cols []Column, rowCount int) {
	key := metricsKey{
		revision:   f.src.Revision(),
		tableID:    f.src.TableID(),
		viewID:     f.src.ViewID(),
		parentRow:  f.src.ParentRowKey(),
		colSig:     colSignature(cols, f.lay.cols),
		rowMapVer:  f.viewRowVer,
		rowCount:   rowCount,
		colCount:   len(cols),
		quality:    e.opts.Preview,
		measureSig: e.measure.sig,
	}
	m := &f.met
	if m.valid && m.key == key {
		return
	}

	if cap(m.heights) < rowCount {
		m.heights = make([]int, rowCount)
		m.offsets = make([]int, rowCount+1)
	}
	m.heights = m.heights[:rowCount]
	m.offsets = m.offsets[:rowCount+1]

	off := 0
	for d := 0; d < rowCount; d++ {
		src := f.sourceRow(d)
		h := e.opts.BaseRowHeight
		for i := range cols {
			if ch := e.cellMinHeight(f, &cols[i], f.lay.cols[i].w, src); ch > h {
				h = ch
			}
		}
		m.heights[d] = h
		m.offsets[d] = off
		off += h
	}
	m.offsets[rowCount] = off
	m.total = off
	m.key = key
	m.valid = true
}

// cellMinHeight is the per-cell-kind minimum height contribution.
func (e *Engine) cellMinHeight(f *gridFrame, c *Column, colWidth, srcRow int) int {
	contentW := max(1, colWidth-2*cellPadX)
	switch c.Kind {
	case KindText:
		cell := f.src.Cell(srcRow, c.ID)
		if cell.Text == "" {
			return 1
		}
		return e.measure.LineCount(cell.Text, contentW)
	case KindSubtable:
		if e.opts.Preview == PreviewOff || c.Preview <= 0 {
			return 1
		}
		child := f.src.Subtable(srcRow, c.ID)
		if child == nil {
			return 1
		}
		rows := min(child.RowCount(), c.Preview)
		return subtableBorder*2 + headerRows + rows*e.opts.BaseRowHeight
	case KindExtension:
		if h, ok := e.kinds[c.KindID]; ok {
			cell := f.src.Cell(srcRow, c.ID)
			return max(1, h.MinRowHeight(cell, contentW))
		}
		return 1
	default:
		return 1
	}
}

// subtableBorder is the frame drawn around an embedded preview.
const subtableBorder = 1
