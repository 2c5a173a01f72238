package memtable

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"gridsheet"
)

// View is a sorted and filtered presentation of a table. FilterText is a
// case-insensitive substring match against display text; an empty
// FilterCol matches any column. An empty SortCol keeps source order.
type View struct {
	id         string
	Name       string
	SortCol    string
	SortDesc   bool
	FilterCol  string
	FilterText string
}

// NewView creates a named view with no sort or filter.
func NewView(name string) *View {
	return &View{id: uuid.NewString(), Name: name}
}

// ID returns the view's stable id.
func (v *View) ID() string { return v.id }

// SetView attaches a view to the table, or detaches with nil.
func (t *Table) SetView(v *View) {
	t.view = v
	t.viewCache, t.viewRev = nil, 0
	t.store.touch()
}

// View returns the attached view, nil when showing source order.
func (t *Table) View() *View { return t.view }

// SortBy sets the attached view's sort column, creating a view if none
// is attached. An empty colID clears the sort.
func (t *Table) SortBy(colID string, desc bool) {
	if t.view == nil {
		t.view = NewView("")
	}
	t.view.SortCol, t.view.SortDesc = colID, desc
	t.store.touch()
}

// FilterBy sets the attached view's filter, creating a view if none is
// attached. Empty text clears the filter.
func (t *Table) FilterBy(colID, text string) {
	if t.view == nil {
		t.view = NewView("")
	}
	t.view.FilterCol, t.view.FilterText = colID, text
	t.store.touch()
}

// ViewRows implements gridsheet.DataSource. The mapping recomputes when
// the revision moves; the version counter only advances when the rows
// actually change, so engine caches survive unrelated edits.
func (t *Table) ViewRows() ([]int, uint64) {
	v := t.view
	if v == nil || (v.SortCol == "" && v.FilterText == "") {
		return nil, 0
	}
	if t.viewCache != nil && t.viewRev == t.store.rev {
		return t.viewCache, t.viewVer
	}
	rows := t.computeViewRows(v)
	if !slices.Equal(rows, t.viewCache) {
		t.viewVer++
	}
	t.viewCache, t.viewRev = rows, t.store.rev
	return t.viewCache, t.viewVer
}

func (t *Table) computeViewRows(v *View) []int {
	out := make([]int, 0, len(t.rows))
	needle := strings.ToLower(v.FilterText)
	for i := range t.rows {
		if needle != "" && !t.rowMatches(i, v.FilterCol, needle) {
			continue
		}
		out = append(out, i)
	}
	if v.SortCol == "" {
		return out
	}
	col := t.columnByID(v.SortCol)
	if col == nil {
		return out
	}
	sort.SliceStable(out, func(a, b int) bool {
		if v.SortDesc {
			return t.cellLess(out[b], out[a], col)
		}
		return t.cellLess(out[a], out[b], col)
	})
	return out
}

func (t *Table) rowMatches(srcRow int, colID, needle string) bool {
	if colID != "" {
		text := t.Cell(srcRow, colID).Text
		return strings.Contains(strings.ToLower(text), needle)
	}
	for _, c := range t.cols {
		text := t.Cell(srcRow, c.id).Text
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

func (t *Table) cellLess(a, b int, col *Column) bool {
	av := t.Cell(a, col.id)
	bv := t.Cell(b, col.id)
	switch col.Kind {
	case gridsheet.KindNumber:
		return av.Number < bv.Number
	case gridsheet.KindBool:
		return !av.Bool && bv.Bool
	default:
		return strings.ToLower(av.Text) < strings.ToLower(bv.Text)
	}
}
