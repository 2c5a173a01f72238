package gridsheet

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-runewidth"
)

// wrapCacheSize bounds the wrap-count memo. Entries are tiny; the cache
// exists to keep re-measuring visible rows O(1) across frames.
const wrapCacheSize = 4096

type wrapKey struct {
	text  string
	width int
	sig   uint16
}

// measurer provides display-width measurement for layout and hit-testing.
// The runewidth condition and tab width fold into a signature that joins
// the row-metrics cache key, so changing either invalidates heights the
// same way a font change would.
type measurer struct {
	cond     *runewidth.Condition
	tabWidth int
	sig      uint16
	counts   *lru.Cache[wrapKey, int]
}

func newMeasurer(eastAsian bool, tabWidth int) *measurer {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	sig := uint16(tabWidth)
	if eastAsian {
		sig |= 1 << 8
	}
	counts, _ := lru.New[wrapKey, int](wrapCacheSize)
	return &measurer{
		cond:     cond,
		tabWidth: tabWidth,
		sig:      sig,
		counts:   counts,
	}
}

// runeWidth returns the display width of a single rune, expanding tabs.
func (m *measurer) runeWidth(r rune) int {
	if r == '\t' {
		return m.tabWidth
	}
	return m.cond.RuneWidth(r)
}

// Width returns the display width of s in cells, treating tabs as fixed
// width and newlines as zero.
func (m *measurer) Width(s string) int {
	w := 0
	for _, r := range s {
		if r == '\n' {
			continue
		}
		w += m.runeWidth(r)
	}
	return w
}

// LineCount returns how many display lines s occupies when wrapped to the
// given width. Results are memoized.
func (m *measurer) LineCount(s string, width int) int {
	if s == "" {
		return 1
	}
	key := wrapKey{text: s, width: width, sig: m.sig}
	if n, ok := m.counts.Get(key); ok {
		return n
	}
	n := wrapCount(m, s, width)
	m.counts.Add(key, n)
	return n
}
