package gridsheet

// findRowAtOffset maps a vertical content offset to the display row whose
// half-open [offset, offset+height) interval contains it, by binary
// search over the monotonic offsets array. Offsets past either end clamp
// to the first or last row; an empty grid reports -1.
func (m *rowMetrics) findRowAtOffset(offset int) int {
	n := len(m.heights)
	if n == 0 {
		return -1
	}
	if offset < 0 {
		return 0
	}
	if offset >= m.total {
		return n - 1
	}
	lo, hi := 0, n-1
	for lo < hi {
		mid := int(uint(lo+hi+1) >> 1)
		if m.offsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// visibleRange returns the inclusive display-row range intersecting a
// viewport window in content space. last < first means nothing to draw.
func (m *rowMetrics) visibleRange(top, height int) (first, last int) {
	if len(m.heights) == 0 || height <= 0 {
		return 0, -1
	}
	first = m.findRowAtOffset(top)
	last = m.findRowAtOffset(top + height - 1)
	return first, last
}

// rowScreenY converts a display row to its on-screen top edge.
func (f *gridFrame) rowScreenY(d int) int {
	return f.lay.body.Y + f.met.offsets[d] - f.scrollY
}

// rowAtScreenY converts a screen Y inside the body to a display row, or
// -1 when it lands past the last row.
func (f *gridFrame) rowAtScreenY(y int) int {
	off := y - f.lay.body.Y + f.scrollY
	if off >= f.met.total {
		return -1
	}
	return f.met.findRowAtOffset(off)
}
