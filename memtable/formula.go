package memtable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gridsheet"
)

// Formula cells hold a display-only arithmetic demo: cell references in
// A1 notation, number literals, + - * /, unary minus, and parentheses.
// Referenced rows are source rows, numbered from 1. Evaluation failures
// display as #ERR and reference cycles as #CYCLE; nothing is written
// back to the table.

var (
	// ErrFormula marks any evaluation failure other than a cycle.
	ErrFormula = errors.New("memtable: bad formula")
	// ErrCycle marks a self-referential formula chain.
	ErrCycle = errors.New("memtable: formula cycle")
)

type fKey struct {
	row, col string
}

type fRes struct {
	v   float64
	err error
}

func errDisplay(err error) string {
	if errors.Is(err, ErrCycle) {
		return "#CYCLE"
	}
	return "#ERR"
}

// evalFormula evaluates the formula on one cell, memoizing results until
// the store revision moves.
func (t *Table) evalFormula(srcRow int, colID string) (float64, error) {
	if t.fVals == nil || t.fRev != t.store.rev {
		t.fVals = make(map[fKey]fRes)
		t.fRev = t.store.rev
	}
	key := fKey{t.rows[srcRow].id, colID}
	if r, ok := t.fVals[key]; ok {
		return r.v, r.err
	}
	v, err := t.evalCell(srcRow, colID, make(map[fKey]bool))
	return v, err
}

// evalCell resolves one cell to a number: formula cells recurse through
// the parser, plain cells convert by kind. The visiting set carries the
// active reference chain for cycle detection.
func (t *Table) evalCell(srcRow int, colID string, visiting map[fKey]bool) (float64, error) {
	key := fKey{t.rows[srcRow].id, colID}
	if visiting[key] {
		return 0, ErrCycle
	}
	if r, ok := t.fVals[key]; ok {
		return r.v, r.err
	}
	col := t.columnByID(colID)
	cl := t.rows[srcRow].cells[colID]
	if col == nil || cl == nil {
		return 0, nil
	}
	if cl.formula == "" {
		switch col.Kind {
		case gridsheet.KindNumber:
			return cl.val.Number, nil
		case gridsheet.KindBool:
			if cl.val.Bool {
				return 1, nil
			}
			return 0, nil
		default:
			s := strings.TrimSpace(cl.val.Text)
			if s == "" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q is not a number", ErrFormula, s)
			}
			return v, nil
		}
	}

	visiting[key] = true
	p := &fparser{t: t, src: strings.TrimPrefix(strings.TrimSpace(cl.formula), "="), visiting: visiting}
	v, err := p.parse()
	delete(visiting, key)
	t.fVals[key] = fRes{v, err}
	return v, err
}

type fparser struct {
	t        *Table
	src      string
	pos      int
	visiting map[fKey]bool
}

func (p *fparser) parse() (float64, error) {
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.ws()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("%w: trailing %q", ErrFormula, p.src[p.pos:])
	}
	return v, nil
}

func (p *fparser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.ws()
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (p *fparser) term() (float64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		p.ws()
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrFormula)
			}
			v /= r
		default:
			return v, nil
		}
	}
}

func (p *fparser) factor() (float64, error) {
	p.ws()
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		p.ws()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing )", ErrFormula)
		}
		p.pos++
		return v, nil

	case c == '-':
		p.pos++
		v, err := p.factor()
		return -v, err

	case c >= '0' && c <= '9' || c == '.':
		return p.number()

	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		return p.ref()

	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrFormula, p.rest())
	}
}

func (p *fparser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrFormula, p.src[start:p.pos])
	}
	return v, nil
}

// ref reads an A1-style reference and resolves it through evalCell, so
// references to other formula cells chain and cycles surface.
func (p *fparser) ref() (float64, error) {
	start := p.pos
	colIdx := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		colIdx = colIdx*26 + int(c-'A'+1)
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if digits == p.pos {
		return 0, fmt.Errorf("%w: reference %q has no row", ErrFormula, p.src[start:p.pos])
	}
	rowNum, err := strconv.Atoi(p.src[digits:p.pos])
	if err != nil || rowNum < 1 {
		return 0, fmt.Errorf("%w: bad row in %q", ErrFormula, p.src[start:p.pos])
	}
	colIdx--
	if colIdx < 0 || colIdx >= len(p.t.cols) || rowNum > len(p.t.rows) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrFormula, p.src[start:p.pos])
	}
	return p.t.evalCell(rowNum-1, p.t.cols[colIdx].id, p.visiting)
}

func (p *fparser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *fparser) ws() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *fparser) rest() string {
	if p.pos >= len(p.src) {
		return ""
	}
	return p.src[p.pos:]
}
