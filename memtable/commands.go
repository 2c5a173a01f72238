package memtable

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gridsheet"
)

// Apply implements gridsheet.DataSource. The batch lands as one history
// entry, so a multi-cell paste or fill undoes atomically. Commands that
// resolve to nothing (stale indices, unknown ids, refused appends) are
// dropped; an all-dropped batch leaves the history and revision alone.
//
// Closures in the history resolve rows and columns by id when they run,
// so earlier undos shifting positions cannot misdirect later ones.
func (t *Table) Apply(batch []gridsheet.Command) {
	var h history
	for _, cmd := range batch {
		undo, redo := t.applyCommand(cmd)
		if redo == nil {
			continue
		}
		redo()
		h.redo = append(h.redo, redo)
		h.undo = append(h.undo, undo)
	}
	if len(h.redo) == 0 {
		return
	}
	s := t.store
	s.undo = append(s.undo, h)
	s.redo = s.redo[:0]
	s.touch()
}

func (t *Table) applyCommand(cmd gridsheet.Command) (undo, redo func()) {
	switch c := cmd.(type) {
	case gridsheet.SetCell:
		return t.cmdSetCell(c)
	case gridsheet.SetColumnWidth:
		return t.cmdSetColumnWidth(c)
	case gridsheet.MoveColumn:
		return t.cmdMoveColumn(c)
	case gridsheet.MoveRow:
		return t.cmdMoveRow(c)
	case gridsheet.RenameColumn:
		return t.cmdRenameColumn(c)
	case gridsheet.RenameTable:
		return t.cmdRenameTable(c)
	case gridsheet.AddRow:
		return t.cmdAddRow(c)
	case gridsheet.AddColumn:
		return t.cmdAddColumn()
	case gridsheet.ClearCells:
		return t.cmdClearCells(c)
	}
	return nil, nil
}

func (t *Table) cmdSetCell(c gridsheet.SetCell) (func(), func()) {
	col := t.columnByID(c.Col)
	if col == nil || c.Row < 0 || c.Row >= len(t.rows) {
		return nil, nil
	}
	if col.ReadOnly || col.Locked || col.Kind == gridsheet.KindSubtable {
		return nil, nil
	}
	row := t.rows[c.Row]
	if cl := row.cells[c.Col]; cl != nil && cl.readOnly {
		return nil, nil
	}

	rowID := row.id
	var prevVal gridsheet.CellValue
	var prevFormula string
	if cl := row.cells[c.Col]; cl != nil {
		prevVal, prevFormula = cl.val, cl.formula
	} else {
		prevVal = gridsheet.CellValue{Kind: col.Kind}
	}

	redo := func() {
		r := t.rowByID(rowID)
		if r == nil {
			return
		}
		cl := r.ensure(c.Col)
		if src := strings.TrimSpace(c.Value.Text); formulaKind(col.Kind) && strings.HasPrefix(src, "=") {
			cl.formula = src
			cl.val = gridsheet.CellValue{Kind: col.Kind}
			return
		}
		cl.formula = ""
		cl.val = t.coerce(col, c.Value)
	}
	undo := func() {
		r := t.rowByID(rowID)
		if r == nil {
			return
		}
		cl := r.ensure(c.Col)
		cl.val, cl.formula = prevVal, prevFormula
	}
	return undo, redo
}

// coerce settles an incoming value against the column's kind, so the
// stored cell is always internally consistent whatever the host sent.
func (t *Table) coerce(col *Column, v gridsheet.CellValue) gridsheet.CellValue {
	v.Kind = col.Kind
	switch col.Kind {
	case gridsheet.KindNumber:
		v.Number = t.normalize(col, v.Number)
		v.Text = formatNumber(v.Number, col.Number)
	case gridsheet.KindBool:
		if v.Bool {
			v.Text = "true"
		} else {
			v.Text = "false"
		}
	}
	return v
}

func formulaKind(k gridsheet.CellKind) bool {
	return k == gridsheet.KindNumber || k == gridsheet.KindText
}

func (t *Table) cmdSetColumnWidth(c gridsheet.SetColumnWidth) (func(), func()) {
	col := t.columnByID(c.Col)
	if col == nil {
		return nil, nil
	}
	old := col.Width
	return func() { col.Width = old },
		func() { col.Width = c.Width }
}

func (t *Table) cmdMoveColumn(c gridsheet.MoveColumn) (func(), func()) {
	n := len(t.cols)
	if c.From < 0 || c.From >= n || c.To < 0 || c.To > n {
		return nil, nil
	}
	if c.To == c.From || c.To == c.From+1 {
		return nil, nil
	}
	if t.cols[c.From].Locked {
		return nil, nil
	}
	id := t.cols[c.From].id
	from := c.From
	dst := c.To
	if dst > from {
		dst--
	}
	return func() { t.moveColumnTo(id, from) },
		func() { t.moveColumnTo(id, dst) }
}

func (t *Table) moveColumnTo(id string, idx int) {
	cur := t.columnIndex(id)
	if cur < 0 {
		return
	}
	col := t.cols[cur]
	t.cols = append(t.cols[:cur], t.cols[cur+1:]...)
	if idx > len(t.cols) {
		idx = len(t.cols)
	}
	t.cols = append(t.cols[:idx], append([]*Column{col}, t.cols[idx:]...)...)
}

func (t *Table) cmdMoveRow(c gridsheet.MoveRow) (func(), func()) {
	if c.Row < 0 || c.Row >= len(t.rows) {
		return nil, nil
	}
	id := t.rows[c.Row].id
	from := c.Row
	var beforeID string
	if c.Before >= 0 && c.Before < len(t.rows) {
		beforeID = t.rows[c.Before].id
	}
	if beforeID == id {
		return nil, nil
	}
	return func() { t.moveRowTo(id, from) },
		func() { t.moveRowBefore(id, beforeID) }
}

func (t *Table) moveRowBefore(id, beforeID string) {
	cur := t.rowIndex(id)
	if cur < 0 {
		return
	}
	row := t.rows[cur]
	t.rows = append(t.rows[:cur], t.rows[cur+1:]...)
	idx := len(t.rows)
	if beforeID != "" {
		if i := t.rowIndex(beforeID); i >= 0 {
			idx = i
		}
	}
	t.rows = append(t.rows[:idx], append([]*Row{row}, t.rows[idx:]...)...)
}

func (t *Table) moveRowTo(id string, idx int) {
	cur := t.rowIndex(id)
	if cur < 0 {
		return
	}
	row := t.rows[cur]
	t.rows = append(t.rows[:cur], t.rows[cur+1:]...)
	if idx > len(t.rows) {
		idx = len(t.rows)
	}
	t.rows = append(t.rows[:idx], append([]*Row{row}, t.rows[idx:]...)...)
}

func (t *Table) cmdRenameColumn(c gridsheet.RenameColumn) (func(), func()) {
	col := t.columnByID(c.Col)
	if col == nil || col.Locked {
		return nil, nil
	}
	old := col.Title
	return func() { col.Title = old },
		func() { col.Title = c.Title }
}

func (t *Table) cmdRenameTable(c gridsheet.RenameTable) (func(), func()) {
	old := t.title
	return func() { t.title = old },
		func() { t.title = c.Title }
}

func (t *Table) cmdAddRow(c gridsheet.AddRow) (func(), func()) {
	if !t.appendRows {
		return nil, nil
	}
	idx := len(t.rows)
	if c.After >= 0 && c.After < len(t.rows) {
		idx = c.After + 1
	}
	row := &Row{id: uuid.NewString(), cells: make(map[string]*cell)}
	return func() { t.removeRowByID(row.id) },
		func() { t.insertRowAt(row, idx) }
}

func (t *Table) insertRowAt(row *Row, idx int) {
	if idx > len(t.rows) {
		idx = len(t.rows)
	}
	t.rows = append(t.rows[:idx], append([]*Row{row}, t.rows[idx:]...)...)
}

func (t *Table) removeRowByID(id string) {
	if i := t.rowIndex(id); i >= 0 {
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
	}
}

func (t *Table) cmdAddColumn() (func(), func()) {
	if !t.appendCols {
		return nil, nil
	}
	col := &Column{
		id:    uuid.NewString(),
		Title: fmt.Sprintf("Column %d", len(t.cols)+1),
		Kind:  gridsheet.KindText,
	}
	return func() { t.removeColumnByID(col.id) },
		func() { t.cols = append(t.cols, col) }
}

func (t *Table) removeColumnByID(id string) {
	if i := t.columnIndex(id); i >= 0 {
		t.cols = append(t.cols[:i], t.cols[i+1:]...)
	}
}

func (t *Table) cmdClearCells(c gridsheet.ClearCells) (func(), func()) {
	type snap struct {
		rowID, colID string
		val          gridsheet.CellValue
		formula      string
	}
	var snaps []snap
	for _, ref := range c.Cells {
		if ref.Row < 0 || ref.Row >= len(t.rows) {
			continue
		}
		col := t.columnByID(ref.Col)
		if col == nil || col.ReadOnly || col.Locked || col.Kind == gridsheet.KindSubtable {
			continue
		}
		row := t.rows[ref.Row]
		cl := row.cells[ref.Col]
		if cl == nil || cl.readOnly {
			continue
		}
		snaps = append(snaps, snap{rowID: row.id, colID: ref.Col, val: cl.val, formula: cl.formula})
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	redo := func() {
		for _, s := range snaps {
			r := t.rowByID(s.rowID)
			col := t.columnByID(s.colID)
			if r == nil || col == nil {
				continue
			}
			if cl := r.cells[s.colID]; cl != nil {
				cl.val = gridsheet.CellValue{Kind: col.Kind}
				cl.formula = ""
			}
		}
	}
	undo := func() {
		for _, s := range snaps {
			r := t.rowByID(s.rowID)
			if r == nil {
				continue
			}
			cl := r.ensure(s.colID)
			cl.val, cl.formula = s.val, s.formula
		}
	}
	return undo, redo
}
