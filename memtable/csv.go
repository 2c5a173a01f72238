package memtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gridsheet"
)

// ErrEmptyCSV is returned when an imported document has no header row.
var ErrEmptyCSV = errors.New("memtable: empty csv")

// ImportCSV builds a table from CSV content. The first record names the
// columns; each column's kind is inferred from its values, Number when
// every non-empty value parses as a float, Bool when every non-empty
// value is a yes/no word, Text otherwise.
func (s *Store) ImportCSV(r io.Reader, title string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("memtable: read csv: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrEmptyCSV
	}

	header := recs[0]
	body := recs[1:]
	t := s.NewTable(title)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		t.AddColumn(Column{Title: name, Kind: inferKind(body, i)})
	}
	for _, rec := range body {
		row := t.AppendRow()
		for i, col := range t.cols {
			if i >= len(rec) {
				break
			}
			setFromText(t, row, col, strings.TrimSpace(rec[i]))
		}
	}
	return t, nil
}

// ImportCSVFile reads and imports one CSV file, titling the table after
// its path.
func (s *Store) ImportCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memtable: open csv: %w", err)
	}
	defer f.Close()
	return s.ImportCSV(f, path)
}

func setFromText(t *Table, row int, col *Column, text string) {
	if text == "" {
		return
	}
	switch col.Kind {
	case gridsheet.KindNumber:
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			t.SetNumber(row, col.id, v)
		}
	case gridsheet.KindBool:
		if v, ok := boolWord(text); ok {
			t.SetBool(row, col.id, v)
		}
	default:
		t.SetText(row, col.id, text)
	}
}

func inferKind(body [][]string, col int) gridsheet.CellKind {
	sawAny, num, boo := false, true, true
	for _, rec := range body {
		if col >= len(rec) {
			continue
		}
		v := strings.TrimSpace(rec[col])
		if v == "" {
			continue
		}
		sawAny = true
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			num = false
		}
		if _, ok := boolWord(v); !ok {
			boo = false
		}
	}
	switch {
	case !sawAny:
		return gridsheet.KindText
	case num:
		return gridsheet.KindNumber
	case boo:
		return gridsheet.KindBool
	default:
		return gridsheet.KindText
	}
}

func boolWord(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on", "x":
		return true, true
	case "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// ExportCSV writes the table as CSV: column titles first, then each
// source row's display text. Subtable cells export their count label.
func (t *Table) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	rec := make([]string, len(t.cols))
	for i, c := range t.cols {
		rec[i] = c.Title
	}
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("memtable: write csv: %w", err)
	}
	for row := range t.rows {
		for i, c := range t.cols {
			rec[i] = t.Cell(row, c.id).Text
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("memtable: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("memtable: write csv: %w", err)
	}
	return nil
}

// ExportCSVFile writes the table to one CSV file.
func (t *Table) ExportCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("memtable: create csv: %w", err)
	}
	if err := t.ExportCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("memtable: close csv: %w", err)
	}
	return nil
}
