// Package memtable is an in-memory reference implementation of the
// gridsheet data layer: tables of typed columns and rows with stable
// uuid ids, command application with undo and redo, per-row subtables,
// sorted and filtered views, a display-only formula demo, and CSV
// import/export. Demos and integration tests wire it to the engine;
// real applications bring their own store.
//
// A Store and every table in it must be used from a single goroutine,
// the same one driving the engine.
package memtable

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"gridsheet"
)

// ErrNoTable is returned by Store.Table for an unknown id.
var ErrNoTable = errors.New("memtable: no such table")

// Store owns a family of tables that share one revision counter and one
// undo history. Edits anywhere in the family, including inside embedded
// subtables, bump the shared revision so every cache keyed on it drops.
type Store struct {
	rev    uint64
	tables map[string]*Table
	undo   []history
	redo   []history
}

// history is one applied batch: redo replays it, undo reverses it by
// running the inverse closures back to front.
type history struct {
	undo []func()
	redo []func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rev: 1, tables: make(map[string]*Table)}
}

// Revision returns the shared revision counter.
func (s *Store) Revision() uint64 { return s.rev }

// Table looks up a table by id.
func (s *Store) Table(id string) (*Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, id)
	}
	return t, nil
}

// CanUndo reports whether Undo would do anything.
func (s *Store) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// Undo reverses the most recent applied batch.
func (s *Store) Undo() bool {
	n := len(s.undo)
	if n == 0 {
		return false
	}
	h := s.undo[n-1]
	s.undo = s.undo[:n-1]
	for i := len(h.undo) - 1; i >= 0; i-- {
		h.undo[i]()
	}
	s.redo = append(s.redo, h)
	s.touch()
	return true
}

// Redo replays the most recently undone batch.
func (s *Store) Redo() bool {
	n := len(s.redo)
	if n == 0 {
		return false
	}
	h := s.redo[n-1]
	s.redo = s.redo[:n-1]
	for _, f := range h.redo {
		f()
	}
	s.undo = append(s.undo, h)
	s.touch()
	return true
}

func (s *Store) touch() { s.rev++ }

// NumberSpec configures a Number column: optional clamping to [Min, Max],
// optional rounding to Precision decimal places, and the scrub-drag
// increment (zero means the engine default of 1). The zero value leaves
// numbers alone.
type NumberSpec struct {
	Min, Max  float64
	Clamp     bool
	Round     bool
	Precision int
	Step      float64
}

// Column is one table column. Fields other than the id may be set while
// building a table; after the table is live, go through commands so the
// edits are undoable and revision-tracked.
type Column struct {
	id       string
	Title    string
	Kind     gridsheet.CellKind
	KindID   string
	Width    int
	MinWidth int
	Pinned   bool
	Locked   bool
	ReadOnly bool
	Settings string
	Preview  int
	Options  []string
	Number   NumberSpec
}

// ID returns the column's stable id.
func (c *Column) ID() string { return c.id }

// Row is one table row. Cells materialize lazily on first write.
type Row struct {
	id    string
	cells map[string]*cell
}

type cell struct {
	val      gridsheet.CellValue
	formula  string // raw "=..." source; display text comes from evaluation
	sub      *Table
	readOnly bool
}

func (r *Row) ensure(colID string) *cell {
	cl := r.cells[colID]
	if cl == nil {
		cl = &cell{}
		r.cells[colID] = cl
	}
	return cl
}

// Table implements gridsheet.DataSource over in-memory rows. New rows
// and columns created here start with generated uuids; everything else
// about the schema is plain data.
type Table struct {
	store *Store
	id    string
	title string
	cols  []*Column
	rows  []*Row

	parentKey  string // "" at root, rowID/colID inside a subtable cell
	view       *View
	appendRows bool
	appendCols bool

	colCache    []gridsheet.Column
	colCacheRev uint64

	viewCache []int
	viewVer   uint64
	viewRev   uint64

	fVals map[fKey]fRes
	fRev  uint64
}

var (
	_ gridsheet.DataSource = (*Table)(nil)
	_ gridsheet.Undoer     = (*Table)(nil)
)

// NewTable creates an empty root table.
func (s *Store) NewTable(title string) *Table {
	t := &Table{
		store:      s,
		id:         uuid.NewString(),
		title:      title,
		appendRows: true,
		appendCols: true,
	}
	s.tables[t.id] = t
	s.touch()
	return t
}

// Title returns the table title.
func (t *Table) Title() string { return t.title }

// AddColumn appends a column definition and returns the stored column.
// An id is generated; the caller's id, if any, is ignored.
func (t *Table) AddColumn(c Column) *Column {
	c.id = uuid.NewString()
	col := &c
	t.cols = append(t.cols, col)
	t.store.touch()
	return col
}

// AppendRow adds an empty row and returns its source index.
func (t *Table) AppendRow() int {
	t.rows = append(t.rows, &Row{id: uuid.NewString(), cells: make(map[string]*cell)})
	t.store.touch()
	return len(t.rows) - 1
}

// RowID returns the stable id of a source row.
func (t *Table) RowID(srcRow int) string {
	if srcRow < 0 || srcRow >= len(t.rows) {
		return ""
	}
	return t.rows[srcRow].id
}

// SetText writes a text-valued cell directly, outside the undo history.
func (t *Table) SetText(srcRow int, colID, s string) {
	if cl := t.cellAt(srcRow, colID); cl != nil {
		col := t.columnByID(colID)
		cl.formula = ""
		cl.val = gridsheet.CellValue{Kind: col.Kind, Text: s}
		t.store.touch()
	}
}

// SetNumber writes a number cell directly, outside the undo history.
func (t *Table) SetNumber(srcRow int, colID string, v float64) {
	if cl := t.cellAt(srcRow, colID); cl != nil {
		col := t.columnByID(colID)
		v = t.normalize(col, v)
		cl.formula = ""
		cl.val = gridsheet.CellValue{
			Kind:   gridsheet.KindNumber,
			Text:   formatNumber(v, col.Number),
			Number: v,
		}
		t.store.touch()
	}
}

// SetBool writes a bool cell directly, outside the undo history.
func (t *Table) SetBool(srcRow int, colID string, v bool) {
	if cl := t.cellAt(srcRow, colID); cl != nil {
		text := "false"
		if v {
			text = "true"
		}
		cl.formula = ""
		cl.val = gridsheet.CellValue{Kind: gridsheet.KindBool, Text: text, Bool: v}
		t.store.touch()
	}
}

// SetFormula stores a formula source on a cell. The display text comes
// from evaluation at read time.
func (t *Table) SetFormula(srcRow int, colID, src string) {
	if cl := t.cellAt(srcRow, colID); cl != nil {
		col := t.columnByID(colID)
		cl.formula = src
		cl.val = gridsheet.CellValue{Kind: col.Kind}
		t.store.touch()
	}
}

// SetCellReadOnly marks one cell read-only independent of its column.
func (t *Table) SetCellReadOnly(srcRow int, colID string, ro bool) {
	if cl := t.cellAt(srcRow, colID); cl != nil {
		cl.readOnly = ro
		t.store.touch()
	}
}

// NewSubtable creates and attaches an empty child table under a
// Subtable-kind cell, replacing any previous child.
func (t *Table) NewSubtable(srcRow int, colID, title string) (*Table, error) {
	col := t.columnByID(colID)
	if col == nil || col.Kind != gridsheet.KindSubtable {
		return nil, fmt.Errorf("memtable: column %q is not a subtable column", colID)
	}
	cl := t.cellAt(srcRow, colID)
	if cl == nil {
		return nil, fmt.Errorf("memtable: row %d out of range", srcRow)
	}
	child := &Table{
		store:      t.store,
		id:         uuid.NewString(),
		title:      title,
		parentKey:  t.rows[srcRow].id + "/" + colID,
		appendRows: true,
		appendCols: true,
	}
	t.store.tables[child.id] = child
	cl.sub = child
	t.store.touch()
	return child, nil
}

func (t *Table) cellAt(srcRow int, colID string) *cell {
	if srcRow < 0 || srcRow >= len(t.rows) || t.columnByID(colID) == nil {
		return nil
	}
	return t.rows[srcRow].ensure(colID)
}

func (t *Table) columnByID(id string) *Column {
	for _, c := range t.cols {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (t *Table) columnIndex(id string) int {
	for i, c := range t.cols {
		if c.id == id {
			return i
		}
	}
	return -1
}

func (t *Table) rowByID(id string) *Row {
	for _, r := range t.rows {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (t *Table) rowIndex(id string) int {
	for i, r := range t.rows {
		if r.id == id {
			return i
		}
	}
	return -1
}

// TableID implements gridsheet.DataSource.
func (t *Table) TableID() string { return t.id }

// ViewID implements gridsheet.DataSource.
func (t *Table) ViewID() string {
	if t.view == nil {
		return ""
	}
	return t.view.id
}

// Revision implements gridsheet.DataSource with the store-wide counter.
func (t *Table) Revision() uint64 { return t.store.rev }

// ParentRowKey implements gridsheet.DataSource.
func (t *Table) ParentRowKey() string { return t.parentKey }

// RowCount implements gridsheet.DataSource.
func (t *Table) RowCount() int { return len(t.rows) }

// CanAppendRows implements gridsheet.DataSource.
func (t *Table) CanAppendRows() bool { return t.appendRows }

// CanAppendColumns implements gridsheet.DataSource.
func (t *Table) CanAppendColumns() bool { return t.appendCols }

// SetAppend configures whether the grid offers row and column append.
func (t *Table) SetAppend(rows, cols bool) {
	t.appendRows, t.appendCols = rows, cols
	t.store.touch()
}

// Columns implements gridsheet.DataSource. The slice is rebuilt when the
// revision moves and is otherwise stable, as the engine requires.
func (t *Table) Columns() []gridsheet.Column {
	if t.colCache != nil && t.colCacheRev == t.store.rev {
		return t.colCache
	}
	out := make([]gridsheet.Column, len(t.cols))
	for i, c := range t.cols {
		out[i] = gridsheet.Column{
			ID:       c.id,
			Title:    c.Title,
			Kind:     c.Kind,
			KindID:   c.KindID,
			Width:    c.Width,
			MinWidth: c.MinWidth,
			Pinned:   c.Pinned,
			Locked:   c.Locked,
			ReadOnly: c.ReadOnly,
			Settings: c.Settings,
			Preview:  c.Preview,
			Step:     c.Number.Step,
			Options:  c.Options,
		}
	}
	t.colCache, t.colCacheRev = out, t.store.rev
	return out
}

// Cell implements gridsheet.DataSource. Formula cells evaluate here and
// report their result as display text, with the raw source as the editor
// seed and CellError set on failure.
func (t *Table) Cell(srcRow int, colID string) gridsheet.CellData {
	col := t.columnByID(colID)
	if col == nil || srcRow < 0 || srcRow >= len(t.rows) {
		return gridsheet.CellData{}
	}
	cl := t.rows[srcRow].cells[colID]
	if cl == nil {
		return gridsheet.CellData{CellValue: gridsheet.CellValue{Kind: col.Kind}}
	}

	d := gridsheet.CellData{CellValue: cl.val}
	d.Kind = col.Kind
	if cl.readOnly {
		d.Flags |= gridsheet.CellReadOnly
	}

	if col.Kind == gridsheet.KindSubtable {
		if cl.sub != nil {
			d.Text = fmt.Sprintf("%d rows", len(cl.sub.rows))
		}
		return d
	}

	if cl.formula != "" {
		d.Flags |= gridsheet.CellFormula
		d.Raw = cl.formula
		v, err := t.evalFormula(srcRow, colID)
		if err != nil {
			d.Flags |= gridsheet.CellError
			d.Text = errDisplay(err)
		} else {
			d.Number = v
			d.Text = formatNumber(v, col.Number)
		}
	}
	return d
}

// Subtable implements gridsheet.DataSource.
func (t *Table) Subtable(srcRow int, colID string) gridsheet.DataSource {
	if srcRow < 0 || srcRow >= len(t.rows) {
		return nil
	}
	cl := t.rows[srcRow].cells[colID]
	if cl == nil || cl.sub == nil {
		return nil
	}
	return cl.sub
}

// NormalizeNumber implements gridsheet.DataSource: clamp then round per
// the column's NumberSpec.
func (t *Table) NormalizeNumber(colID string, v float64) float64 {
	col := t.columnByID(colID)
	if col == nil {
		return v
	}
	return t.normalize(col, v)
}

func (t *Table) normalize(col *Column, v float64) float64 {
	n := col.Number
	if n.Clamp {
		v = math.Min(math.Max(v, n.Min), n.Max)
	}
	if n.Round {
		pow := math.Pow(10, float64(n.Precision))
		v = math.Round(v*pow) / pow
	}
	return v
}

// Undo implements gridsheet.Undoer against the shared store history.
func (t *Table) Undo() bool { return t.store.Undo() }

// Redo implements gridsheet.Undoer against the shared store history.
func (t *Table) Redo() bool { return t.store.Redo() }

func formatNumber(v float64, n NumberSpec) string {
	if !n.Round {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', n.Precision, 64)
}
