// teademo hosts the grid in a bubbletea program: lipgloss chrome around
// a teagrid component, a clickable toolbar resolved through bubblezone,
// and a jump-to-cell prompt built on bubbles/textinput.
//
// Ctrl+G jumps, Ctrl+R renames the table, Ctrl+T cycles themes and
// Ctrl+Q quits; everything else belongs to the grid.
package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gridsheet"
	"gridsheet/memtable"
	"gridsheet/teagrid"
)

// chrome above the grid: title and toolbar; one status line below.
const chromeTop = 2

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("57")).Padding(0, 1)
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("teademo: ")
	zone.NewGlobal()

	p := tea.NewProgram(newModel(), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

type model struct {
	grid  *teagrid.Grid
	store *memtable.Store
	table *memtable.Table

	jump    textinput.Model
	jumping bool

	themes   []gridsheet.Theme
	themeIdx int

	w, h int
}

func newModel() model {
	store := memtable.NewStore()
	table := seedTable(store)

	themes := []gridsheet.Theme{gridsheet.ThemeDark, gridsheet.ThemeLight, gridsheet.ThemeMono}
	eng := gridsheet.New(gridsheet.Options{
		RowGutter: true,
		Preview:   gridsheet.PreviewFull,
		Theme:     &themes[0],
	})

	ti := textinput.New()
	ti.Prompt = "jump to: "
	ti.Placeholder = "cell like C12"
	ti.CharLimit = 8

	return model{
		grid:   teagrid.New(eng, table),
		store:  store,
		table:  table,
		jump:   ti,
		themes: themes,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		m.grid.SetOffset(0, chromeTop)
		m.grid.SetSize(msg.Width, max(msg.Height-chromeTop-1, 0))
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			return m.jumpKey(msg)
		}
		if m.grid.Engine().IsAnyOverlayOpen() {
			return m, m.grid.Update(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlQ:
			return m, tea.Quit
		case tea.KeyCtrlG:
			return m.openJump()
		case tea.KeyCtrlR:
			m.grid.Engine().BeginTitleEdit(m.table.Title())
			return m, nil
		case tea.KeyCtrlT:
			m.cycleTheme()
			return m, nil
		}
		return m, m.grid.Update(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			switch {
			case zone.Get("undo").InBounds(msg):
				m.store.Undo()
				return m, nil
			case zone.Get("redo").InBounds(msg):
				m.store.Redo()
				return m, nil
			case zone.Get("theme").InBounds(msg):
				m.cycleTheme()
				return m, nil
			case zone.Get("jump").InBounds(msg):
				return m.openJump()
			case zone.Get("title").InBounds(msg):
				m.grid.Engine().BeginTitleEdit(m.table.Title())
				return m, nil
			}
		}
		return m, m.grid.Update(msg)
	}
	return m, m.grid.Update(msg)
}

func (m model) jumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if row, col, ok := parseCellRef(m.jump.Value()); ok {
			m.grid.Engine().SetActiveCell(row, col)
		}
		fallthrough
	case tea.KeyEscape:
		m.jumping = false
		m.jump.Blur()
		m.jump.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m model) openJump() (tea.Model, tea.Cmd) {
	m.jumping = true
	m.jump.Focus()
	return m, textinput.Blink
}

func (m *model) cycleTheme() {
	m.themeIdx = (m.themeIdx + 1) % len(m.themes)
	m.grid.Engine().SetTheme(&m.themes[m.themeIdx])
}

func (m model) View() string {
	if m.w == 0 || m.h == 0 {
		return ""
	}
	title := zone.Mark("title", titleStyle.Render(m.table.Title()))
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.toolbar(),
		m.grid.View(),
		m.statusLine(),
	))
}

func (m model) toolbar() string {
	if m.jumping {
		return m.jump.View()
	}
	parts := []string{
		zone.Mark("undo", toolButton("undo", m.store.CanUndo())),
		zone.Mark("redo", toolButton("redo", m.store.CanRedo())),
		zone.Mark("theme", toolButton("theme: "+m.themes[m.themeIdx].Name, true)),
		zone.Mark("jump", toolButton("jump", true)),
	}
	return " " + strings.Join(parts, "  ")
}

func toolButton(label string, enabled bool) string {
	if enabled {
		return buttonStyle.Render("[" + label + "]")
	}
	return mutedStyle.Render("[" + label + "]")
}

func (m model) statusLine() string {
	var b strings.Builder
	b.WriteString(" ")
	if row, col, ok := m.grid.Engine().ActiveCell(); ok {
		b.WriteString(colName(col))
		b.WriteString(strconv.Itoa(row + 1))
		if r0, c0, r1, c1, ok := m.grid.Engine().Selection(); ok && (r1 > r0 || c1 > c0) {
			b.WriteString(" (")
			b.WriteString(strconv.Itoa(r1 - r0 + 1))
			b.WriteString("×")
			b.WriteString(strconv.Itoa(c1 - c0 + 1))
			b.WriteString(")")
		}
		b.WriteString(" · ")
	}
	b.WriteString("ctrl+g jump · ctrl+r rename · ctrl+t theme · ctrl+q quit")
	return statusStyle.Render(b.String())
}

// colName renders a column position in A1 notation: A..Z, then AA..
func colName(i int) string {
	name := make([]byte, 0, 3)
	for i >= 0 {
		name = append([]byte{byte('A' + i%26)}, name...)
		i = i/26 - 1
	}
	return string(name)
}

// parseCellRef reads an A1-style cell address into display coordinates.
func parseCellRef(s string) (row, col int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return n - 1, col - 1, true
}

func seedTable(store *memtable.Store) *memtable.Table {
	t := store.NewTable("Issue Triage")
	issue := t.AddColumn(memtable.Column{Title: "Issue", Kind: gridsheet.KindText, Width: 26, Pinned: true})
	sev := t.AddColumn(memtable.Column{Title: "Severity", Kind: gridsheet.KindSelect, Width: 10,
		Options: []string{"low", "medium", "high"}})
	est := t.AddColumn(memtable.Column{Title: "Est", Kind: gridsheet.KindNumber, Width: 7,
		Number: memtable.NumberSpec{Min: 0, Max: 40, Clamp: true, Round: true, Precision: 1, Step: 0.5}})
	fixed := t.AddColumn(memtable.Column{Title: "Fixed", Kind: gridsheet.KindBool, Width: 7})
	repro := t.AddColumn(memtable.Column{Title: "Repro", Kind: gridsheet.KindSubtable, Width: 32, Preview: 2})

	type seedRow struct {
		issue string
		sev   string
		est   float64
		fixed bool
		repro []string
	}
	rows := []seedRow{
		{"Scroll jumps at last row", "high", 2, false,
			[]string{"Open a table taller than the view", "Wheel down past the end"}},
		{"Rename loses first rune", "medium", 0.5, true,
			[]string{"Double-click a header", "Type immediately"}},
		{"Wide runes clip in popup", "low", 1, false, nil},
		{"Undo skips column width", "medium", 1.5, false,
			[]string{"Drag a column edge", "Press ctrl+z"}},
	}
	for _, r := range rows {
		row := t.AppendRow()
		t.SetText(row, issue.ID(), r.issue)
		t.SetText(row, sev.ID(), r.sev)
		t.SetNumber(row, est.ID(), r.est)
		t.SetBool(row, fixed.ID(), r.fixed)
		if len(r.repro) == 0 {
			continue
		}
		sub, err := t.NewSubtable(row, repro.ID(), r.issue)
		if err != nil {
			continue
		}
		step := sub.AddColumn(memtable.Column{Title: "Step", Kind: gridsheet.KindText, Width: 24})
		for _, s := range r.repro {
			sr := sub.AppendRow()
			sub.SetText(sr, step.ID(), s)
		}
	}
	return t
}
