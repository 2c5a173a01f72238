package gridsheet

import "sort"

// selection is the grid's selection model: a rectangular cell range
// anchored where the gesture started, an active (focused, editable) cell,
// a selected header column, and a set of fully selected rows. The cell
// range and the row set are mutually exclusive; setting one clears the
// other. All row/column values are display indices except rows, which
// holds source indices so the set survives re-sorting.
type selection struct {
	anchorRow, anchorCol int
	extentRow, extentCol int
	activeRow, activeCol int
	headerCol            int
	rows                 []int
	lastGutterRow        int // display row of the last gutter click, for Shift ranges
}

func (s *selection) clear() {
	s.anchorRow, s.anchorCol = -1, -1
	s.extentRow, s.extentCol = -1, -1
	s.activeRow, s.activeCol = -1, -1
	s.headerCol = -1
	s.rows = s.rows[:0]
	s.lastGutterRow = -1
}

// hasCell reports whether a cell range exists.
func (s *selection) hasCell() bool {
	return s.anchorRow >= 0
}

// rect returns the normalized cell range.
func (s *selection) rect() (minRow, minCol, maxRow, maxCol int) {
	minRow, maxRow = s.anchorRow, s.extentRow
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	minCol, maxCol = s.anchorCol, s.extentCol
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	return minRow, minCol, maxRow, maxCol
}

// contains reports whether the display cell lies inside the range.
func (s *selection) contains(row, col int) bool {
	if !s.hasCell() {
		return false
	}
	r0, c0, r1, c1 := s.rect()
	return row >= r0 && row <= r1 && col >= c0 && col <= c1
}

// setCell starts a fresh 1x1 selection, clearing the row set and header.
func (s *selection) setCell(row, col int) {
	s.anchorRow, s.anchorCol = row, col
	s.extentRow, s.extentCol = row, col
	s.activeRow, s.activeCol = row, col
	s.headerCol = -1
	s.rows = s.rows[:0]
	s.lastGutterRow = -1
}

// extendTo grows the range from the anchor to the given cell. The anchor
// and active cell stay put, which keeps the active cell inside the range.
func (s *selection) extendTo(row, col int) {
	if !s.hasCell() {
		s.setCell(row, col)
		return
	}
	s.extentRow, s.extentCol = row, col
	s.rows = s.rows[:0]
	s.headerCol = -1
}

// selectHeader selects a column for column-level context, clearing cell
// and row selections.
func (s *selection) selectHeader(col int) {
	s.clear()
	s.headerCol = col
}

// setRow selects exactly one source row, clearing the cell range.
func (s *selection) setRow(srcRow, displayRow int) {
	s.anchorRow, s.anchorCol = -1, -1
	s.extentRow, s.extentCol = -1, -1
	s.activeRow, s.activeCol = -1, -1
	s.headerCol = -1
	s.rows = append(s.rows[:0], srcRow)
	s.lastGutterRow = displayRow
}

// toggleRow flips one source row's membership without touching others.
func (s *selection) toggleRow(srcRow, displayRow int) {
	s.anchorRow, s.anchorCol = -1, -1
	s.extentRow, s.extentCol = -1, -1
	s.activeRow, s.activeCol = -1, -1
	s.headerCol = -1
	s.lastGutterRow = displayRow
	for i, r := range s.rows {
		if r == srcRow {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return
		}
	}
	s.rows = append(s.rows, srcRow)
	sort.Ints(s.rows)
}

// addRow inserts one source row into the set if absent.
func (s *selection) addRow(srcRow int) {
	for _, r := range s.rows {
		if r == srcRow {
			return
		}
	}
	s.rows = append(s.rows, srcRow)
	sort.Ints(s.rows)
}

// hasRow reports membership of a source row.
func (s *selection) hasRow(srcRow int) bool {
	for _, r := range s.rows {
		if r == srcRow {
			return true
		}
	}
	return false
}

// copyFrom deep-copies another selection, reusing the rows backing array.
func (s *selection) copyFrom(o *selection) {
	rows := append(s.rows[:0], o.rows...)
	*s = *o
	s.rows = rows
}

// clampTo drops selection parts that fell outside the current bounds
// after the data changed underneath. Stale indices clamp rather than
// index out of range.
func (s *selection) clampTo(rowCount, colCount int) {
	if rowCount <= 0 || colCount <= 0 {
		s.clear()
		return
	}
	if s.hasCell() {
		s.anchorRow = min(s.anchorRow, rowCount-1)
		s.extentRow = min(s.extentRow, rowCount-1)
		s.activeRow = min(s.activeRow, rowCount-1)
		s.anchorCol = min(s.anchorCol, colCount-1)
		s.extentCol = min(s.extentCol, colCount-1)
		s.activeCol = min(s.activeCol, colCount-1)
	}
	if s.headerCol >= colCount {
		s.headerCol = colCount - 1
	}
	keep := s.rows[:0]
	for _, r := range s.rows {
		if r < rowCount {
			keep = append(keep, r)
		}
	}
	s.rows = keep
}

// remapIndexAfterMove translates an index through a move of the element
// at from to insertion point to (both in pre-move positions). It handles
// forward and backward moves, including when the moved index itself is
// the one referenced.
func remapIndexAfterMove(i, from, to int) int {
	if i == from {
		if to > from {
			return to - 1
		}
		return to
	}
	if from < i && i < to {
		return i - 1
	}
	if to <= i && i < from {
		return i + 1
	}
	return i
}

// remapColumns runs every column-indexed piece of selection state through
// remapIndexAfterMove after a column reorder.
func (s *selection) remapColumns(from, to int) {
	if s.hasCell() {
		s.anchorCol = remapIndexAfterMove(s.anchorCol, from, to)
		s.extentCol = remapIndexAfterMove(s.extentCol, from, to)
		s.activeCol = remapIndexAfterMove(s.activeCol, from, to)
	}
	if s.headerCol >= 0 {
		s.headerCol = remapIndexAfterMove(s.headerCol, from, to)
	}
}
