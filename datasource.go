package gridsheet

// CellKind identifies how a cell's value is rendered and edited. Built-in
// kinds dispatch inline; KindExtension defers to a handler registered under
// the column's KindID.
type CellKind uint8

const (
	KindText CellKind = iota
	KindNumber
	KindBool
	KindSelect
	KindAsset
	KindSubtable
	KindExtension
)

// CellFlags carries per-cell behavior bits supplied by the data layer.
type CellFlags uint8

const (
	CellReadOnly CellFlags = 1 << iota
	CellFormula
	CellError
)

// Has returns true if the flag set contains the given flag.
func (f CellFlags) Has(flag CellFlags) bool {
	return f&flag != 0
}

// CellValue is the value payload of a cell: Text is the display text for
// every kind, Number and Bool carry the typed value for their kinds.
type CellValue struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
}

// CellData is what the data layer reports for one cell. Raw, when set, is
// the text seeded into the editor instead of Text (formula sources, asset
// paths). Display text for formula cells is the pre-evaluated result; the
// engine never evaluates anything.
type CellData struct {
	CellValue
	Raw   string
	Flags CellFlags
}

// EditText returns the text an editor should start from.
func (c CellData) EditText() string {
	if c.Raw != "" {
		return c.Raw
	}
	return c.Text
}

// Column describes one visible column of the current view.
type Column struct {
	ID       string
	Title    string
	Kind     CellKind
	KindID   string   // extension handler key when Kind == KindExtension
	Width    int      // explicit width in cells; 0 means auto
	MinWidth int      // 0 means the engine default
	Pinned   bool
	Locked   bool     // schema-locked: rename/reorder/edit gestures are refused
	ReadOnly bool
	Settings string   // kind-specific settings text, part of the metrics signature
	Preview  int      // subtable preview rows; 0 collapses to a count label
	Step     float64  // scrub increment for Number columns; 0 means 1
	Options  []string // choices for Select columns
}

// CellRef addresses one cell in source terms.
type CellRef struct {
	Row int // source row index
	Col string
}

// Command is an edit intent emitted by the engine and interpreted by the
// data layer. Row indices in commands are always source indices (already
// translated through the view-row map); column moves are view positions.
type Command interface {
	isCommand()
}

// SetCell writes one cell value.
type SetCell struct {
	Row   int
	Col   string
	Value CellValue
}

// SetColumnWidth commits a resize gesture.
type SetColumnWidth struct {
	Col      string
	OldWidth int
	Width    int
}

// MoveColumn reorders a column from view position From to insertion point To.
type MoveColumn struct {
	From int
	To   int
}

// MoveRow moves a source row to sit before another source row (-1 appends).
type MoveRow struct {
	Row    int
	Before int
}

// RenameColumn commits a header rename.
type RenameColumn struct {
	Col      string
	OldTitle string
	Title    string
}

// RenameTable commits a table title rename.
type RenameTable struct {
	OldTitle string
	Title    string
}

// AddRow inserts a row after the given source row (-1 appends).
type AddRow struct {
	After int
}

// AddColumn appends a column.
type AddColumn struct{}

// ClearCells resets cells to their column defaults.
type ClearCells struct {
	Cells []CellRef
}

func (SetCell) isCommand()        {}
func (SetColumnWidth) isCommand() {}
func (MoveColumn) isCommand()     {}
func (MoveRow) isCommand()        {}
func (RenameColumn) isCommand()   {}
func (RenameTable) isCommand()    {}
func (AddRow) isCommand()         {}
func (AddColumn) isCommand()      {}
func (ClearCells) isCommand()     {}

// DataSource is the call boundary to the external data/command layer. The
// engine reads through it every frame and writes only via Apply; a batch
// passed to Apply is atomic for undo/redo.
//
// Revision must change whenever anything reachable through this interface
// changes; the engine's caches key on it rather than on object identity.
// ViewRows returns the display-to-source row mapping with its own version
// counter, or nil for the identity mapping. The Columns slice must be
// stable for the duration of a frame.
type DataSource interface {
	TableID() string
	ViewID() string
	Revision() uint64
	ParentRowKey() string
	RowCount() int
	Columns() []Column
	ViewRows() (rows []int, version uint64)
	Cell(srcRow int, colID string) CellData
	Subtable(srcRow int, colID string) DataSource
	CanAppendRows() bool
	CanAppendColumns() bool
	NormalizeNumber(colID string, v float64) float64
	Apply(batch []Command)
}

// Undoer is an optional DataSource upgrade. Sources that implement it get
// Ctrl+Z and Ctrl+Y handled by the engine; the return value reports whether
// anything was undone or redone.
type Undoer interface {
	Undo() bool
	Redo() bool
}

// Clipboard is the copy/paste boundary. Text reports ok=false when the
// clipboard is empty or unavailable.
type Clipboard interface {
	Text() (text string, ok bool)
	SetText(text string)
}

// MemClipboard is an in-process Clipboard used when no OS bridge is wired.
type MemClipboard struct {
	text string
	set  bool
}

// Text returns the stored text.
func (m *MemClipboard) Text() (string, bool) {
	return m.text, m.set
}

// SetText stores text.
func (m *MemClipboard) SetText(s string) {
	m.text = s
	m.set = true
}
