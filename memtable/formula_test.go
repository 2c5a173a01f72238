package memtable

import (
	"errors"
	"testing"

	"gridsheet"
)

// Formulas land on B3 (score, source row 2) so references to the seeded
// rows never hit the cell under test. Column letters follow schema
// order: A name, B score, C done.

func TestFormulaEval(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"Literal", "=42", 42},
		{"Precedence", "=2+3*4", 14},
		{"Parens", "=(2+3)*4", 20},
		{"UnaryMinus", "=-3+10", 7},
		{"FloatDivision", "=7/2", 3.5},
		{"DecimalLiteral", "=1.5*2", 3},
		{"CellRefs", "=B1+B2", 4},
		{"LowercaseRef", "=b1*2", 6},
		{"BoolRefCounts", "=C1+C2", 1},
		{"Whitespace", "= 1 + 2 ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDemo()
			d.tbl.SetFormula(2, d.score.ID(), tt.src)
			got := d.tbl.Cell(2, d.score.ID())
			if got.Flags.Has(gridsheet.CellError) {
				t.Fatalf("evaluation failed: %q", got.Text)
			}
			if !got.Flags.Has(gridsheet.CellFormula) || got.Raw != tt.src {
				t.Errorf("formula cell = %+v", got)
			}
			if got.Number != tt.want {
				t.Errorf("got %v, want %v", got.Number, tt.want)
			}
		})
	}

	t.Run("TextRefParses", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetText(1, d.name.ID(), "2.5")
		d.tbl.SetFormula(2, d.score.ID(), "=A2*2")
		if got := d.tbl.Cell(2, d.score.ID()).Number; got != 5 {
			t.Errorf("got %v, want 5", got)
		}
	})

	t.Run("ChainsThroughFormulas", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetFormula(0, d.name.ID(), "=B1*10")
		d.tbl.SetFormula(2, d.score.ID(), "=A1+1")
		if got := d.tbl.Cell(2, d.score.ID()).Number; got != 31 {
			t.Errorf("got %v, want 31", got)
		}
	})

	t.Run("NeverWritesBack", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetFormula(2, d.score.ID(), "=B1*2")
		if got := d.tbl.Cell(2, d.score.ID()).Number; got != 6 {
			t.Fatalf("got %v", got)
		}
		if cl := d.tbl.rows[2].cells[d.score.ID()]; cl.val.Number != 0 {
			t.Error("evaluation mutated the stored value")
		}
	})

	t.Run("RecomputesWhenInputsChange", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetFormula(2, d.score.ID(), "=B1*2")
		if got := d.tbl.Cell(2, d.score.ID()).Number; got != 6 {
			t.Fatalf("got %v", got)
		}
		d.tbl.SetNumber(0, d.score.ID(), 5)
		if got := d.tbl.Cell(2, d.score.ID()).Number; got != 10 {
			t.Errorf("stale result %v after input change", got)
		}
	})
}

func TestFormulaErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		display string
	}{
		{"BadSyntax", "=1++2", "#ERR"},
		{"TrailingGarbage", "=1 2", "#ERR"},
		{"DivisionByZero", "=1/0", "#ERR"},
		{"EmptySource", "=", "#ERR"},
		{"RefOutOfRange", "=Z9", "#ERR"},
		{"RefMissingRow", "=B", "#ERR"},
		{"NonNumericText", "=A1", "#ERR"},
		{"SelfCycle", "=B3", "#CYCLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDemo()
			d.tbl.SetFormula(2, d.score.ID(), tt.src)
			got := d.tbl.Cell(2, d.score.ID())
			if !got.Flags.Has(gridsheet.CellError) {
				t.Fatalf("no error flag, cell = %+v", got)
			}
			if got.Text != tt.display {
				t.Errorf("display = %q, want %q", got.Text, tt.display)
			}
			if got.Number != 0 {
				t.Errorf("failed cell carries number %v", got.Number)
			}
		})
	}

	t.Run("MutualCycle", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetFormula(0, d.score.ID(), "=B2")
		d.tbl.SetFormula(1, d.score.ID(), "=B1")
		if got := d.tbl.Cell(0, d.score.ID()).Text; got != "#CYCLE" {
			t.Errorf("first cell = %q", got)
		}
		if got := d.tbl.Cell(1, d.score.ID()).Text; got != "#CYCLE" {
			t.Errorf("second cell = %q", got)
		}
	})

	t.Run("SentinelErrors", func(t *testing.T) {
		d := newDemo()
		d.tbl.SetFormula(2, d.score.ID(), "=1/0")
		if _, err := d.tbl.evalFormula(2, d.score.ID()); !errors.Is(err, ErrFormula) {
			t.Errorf("err = %v, want ErrFormula", err)
		}
		d.tbl.SetFormula(2, d.score.ID(), "=B3")
		if _, err := d.tbl.evalFormula(2, d.score.ID()); !errors.Is(err, ErrCycle) {
			t.Errorf("err = %v, want ErrCycle", err)
		}
	})
}
