// sheetdemo is a full-screen spreadsheet editor over tcell: every grid
// gesture on a live memtable store, with CSV import/export, theme
// switching, and hot reload when the CSV changes on disk.
//
// Keys the grid does not own: Ctrl+S saves, Ctrl+T cycles the theme,
// Ctrl+Q quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"gridsheet"
	"gridsheet/memtable"
)

type config struct {
	Theme     string `yaml:"theme"`
	CSV       string `yaml:"csv"`
	Log       string `yaml:"log"`
	EastAsian bool   `yaml:"east_asian"`
	Autosave  bool   `yaml:"autosave"`
}

// loadConfig reads the YAML config; a missing file yields the defaults.
func loadConfig(path string) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("sheetdemo: ")

	configPath := flag.String("config", "sheetdemo.yaml", "path to the YAML config")
	csvPath := flag.String("csv", "", "CSV file to open (overrides config)")
	themeName := flag.String("theme", "", "theme name or .toml path (overrides config)")
	logPath := flag.String("log", "", "log file (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *csvPath != "" {
		cfg.CSV = *csvPath
	}
	if *themeName != "" {
		cfg.Theme = *themeName
	}
	if *logPath != "" {
		cfg.Log = *logPath
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	theme, err := resolveTheme(cfg.Theme)
	if err != nil {
		log.Fatal(err)
	}

	store := memtable.NewStore()
	var table *memtable.Table
	if cfg.CSV != "" {
		table, err = store.ImportCSVFile(cfg.CSV)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		table = seedDemo(store)
	}
	logger.Info("starting", "csv", cfg.CSV, "theme", theme.Name, "rows", table.RowCount())

	if err := run(cfg, store, table, theme, logger); err != nil {
		log.Fatal(err)
	}
}

// openLogger opens a text slog logger on the given file, or a discard
// logger when no path is configured. The screen owns the terminal, so
// nothing may log to stderr while the app runs.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

// resolveTheme accepts a built-in name, a .toml path, or a bare name
// resolved against the themes directory.
func resolveTheme(name string) (gridsheet.Theme, error) {
	if strings.HasSuffix(name, ".toml") {
		return gridsheet.LoadThemeFile(name)
	}
	if t, err := gridsheet.LoadTheme(name); err == nil {
		return t, nil
	}
	p := filepath.Join("themes", name+".toml")
	if _, err := os.Stat(p); err == nil {
		return gridsheet.LoadThemeFile(p)
	}
	return gridsheet.Theme{}, fmt.Errorf("unknown theme %q", name)
}

type app struct {
	screen tcell.Screen
	eng    *gridsheet.Engine
	store  *memtable.Store
	table  *memtable.Table
	buf    *gridsheet.Buffer
	in     gridsheet.Input
	logger *slog.Logger

	themes   []gridsheet.Theme
	themeIdx int

	csvPath  string
	autosave bool
}

func run(cfg config, store *memtable.Store, table *memtable.Table, theme gridsheet.Theme, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.Clear()

	themes := []gridsheet.Theme{theme}
	for _, t := range []gridsheet.Theme{gridsheet.ThemeDark, gridsheet.ThemeLight, gridsheet.ThemeMono} {
		if t.Name != theme.Name {
			themes = append(themes, t)
		}
	}

	a := &app{
		screen:   screen,
		store:    store,
		table:    table,
		buf:      gridsheet.NewBuffer(1, 1),
		logger:   logger,
		themes:   themes,
		csvPath:  cfg.CSV,
		autosave: cfg.Autosave,
	}
	a.eng = gridsheet.New(gridsheet.Options{
		RowGutter: true,
		EastAsian: cfg.EastAsian,
		Preview:   gridsheet.PreviewFull,
		Theme:     &a.themes[0],
		Clipboard: &osc52Clipboard{screen: screen},
	})

	if a.csvPath != "" {
		w, err := watchCSV(a.csvPath, screen)
		if err != nil {
			logger.Error("watch csv", "err", err)
		} else {
			defer w.Close()
		}
	}

	for {
		a.render()
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		for ev != nil {
			if !a.handle(ev) {
				if a.autosave && a.csvPath != "" {
					a.save()
				}
				return nil
			}
			ev = nil
			if screen.HasPendingEvent() {
				ev = screen.PollEvent()
			}
		}
	}
}

// osc52Clipboard keeps the in-process clipboard for paste and mirrors
// writes to the terminal's clipboard via OSC 52.
type osc52Clipboard struct {
	gridsheet.MemClipboard
	screen tcell.Screen
}

func (c *osc52Clipboard) SetText(s string) {
	c.MemClipboard.SetText(s)
	c.screen.SetClipboard([]byte(s))
}

// watchCSV watches the CSV's directory, since editors replace files by
// rename, and wakes the event loop with an interrupt on changes.
func watchCSV(path string, screen tcell.Screen) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	base := filepath.Base(path)
	go func() {
		for evt := range w.Events {
			if filepath.Base(evt.Name) != base {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}()
	return w, nil
}

// handle folds one tcell event into the pending input; false means quit.
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventInterrupt:
		a.reload()
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return false
	case tcell.KeyCtrlS:
		a.save()
		return true
	case tcell.KeyCtrlT:
		a.cycleTheme()
		return true
	}
	if kev, ok := keyEvent(ev); ok {
		a.in.Keys = append(a.in.Keys, kev)
	}
	return true
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	a.in.MouseX, a.in.MouseY = x, y
	a.in.Mods = translateMods(ev.Modifiers())

	btns := ev.Buttons()
	if btns&tcell.WheelUp != 0 {
		a.in.WheelDY--
	}
	if btns&tcell.WheelDown != 0 {
		a.in.WheelDY++
	}
	if btns&tcell.WheelLeft != 0 {
		a.in.WheelDX--
	}
	if btns&tcell.WheelRight != 0 {
		a.in.WheelDX++
	}

	var held gridsheet.MouseButton
	if btns&tcell.ButtonPrimary != 0 {
		held |= gridsheet.MouseLeft
	}
	if btns&tcell.ButtonSecondary != 0 {
		held |= gridsheet.MouseRight
	}
	if btns&tcell.ButtonMiddle != 0 {
		held |= gridsheet.MouseMiddle
	}
	a.in.Buttons = held
}

// keyEvent translates a tcell key event. Control-letter chords arrive as
// dedicated key codes and map back to rune+ModCtrl; Tab, Enter, and
// Backspace shadow their control aliases and stay special keys.
func keyEvent(ev *tcell.EventKey) (gridsheet.KeyEvent, bool) {
	var out gridsheet.KeyEvent
	out.Mods = translateMods(ev.Modifiers())

	switch ev.Key() {
	case tcell.KeyRune:
		out.Code, out.Rune = gridsheet.KeyRune, ev.Rune()
	case tcell.KeyEnter:
		out.Code = gridsheet.KeyEnter
	case tcell.KeyEsc:
		out.Code = gridsheet.KeyEscape
	case tcell.KeyTab:
		out.Code = gridsheet.KeyTab
	case tcell.KeyBacktab:
		out.Code = gridsheet.KeyBacktab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Code = gridsheet.KeyBackspace
	case tcell.KeyDelete:
		out.Code = gridsheet.KeyDelete
	case tcell.KeyUp:
		out.Code = gridsheet.KeyUp
	case tcell.KeyDown:
		out.Code = gridsheet.KeyDown
	case tcell.KeyLeft:
		out.Code = gridsheet.KeyLeft
	case tcell.KeyRight:
		out.Code = gridsheet.KeyRight
	case tcell.KeyHome:
		out.Code = gridsheet.KeyHome
	case tcell.KeyEnd:
		out.Code = gridsheet.KeyEnd
	case tcell.KeyPgUp:
		out.Code = gridsheet.KeyPgUp
	case tcell.KeyPgDn:
		out.Code = gridsheet.KeyPgDn
	case tcell.KeyF2:
		out.Code = gridsheet.KeyF2
	default:
		if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			out.Code = gridsheet.KeyRune
			out.Rune = rune('a' + int(k) - int(tcell.KeyCtrlA))
			out.Mods |= gridsheet.ModCtrl
			return out, true
		}
		return out, false
	}
	return out, true
}

func translateMods(m tcell.ModMask) gridsheet.Modifier {
	var out gridsheet.Modifier
	if m&tcell.ModShift != 0 {
		out |= gridsheet.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= gridsheet.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= gridsheet.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= gridsheet.ModMeta
	}
	return out
}

// render runs one engine frame over the accumulated input and flushes the
// surface. Held buttons and the pointer position persist between frames;
// keys and wheel deltas are consumed.
func (a *app) render() {
	w, h := a.screen.Size()
	if w <= 0 || h <= 1 {
		return
	}
	a.buf.Resize(w, h)
	a.buf.Clear()

	in := a.in
	a.in.Keys = a.in.Keys[:0]
	a.in.WheelDX, a.in.WheelDY = 0, 0

	a.eng.BeginFrame(in)
	a.eng.Draw(a.buf, a.table, gridsheet.Rect{W: w, H: h - 1}, true)
	a.eng.EndFrame()

	a.drawStatus(w, h-1)
	a.flush()
}

func (a *app) drawStatus(w, y int) {
	th := a.eng.Theme()
	a.buf.FillRect(gridsheet.Rect{X: 0, Y: y, W: w, H: 1}, gridsheet.NewCell(' ', th.Header))

	left := " " + a.table.Title() + " · " + strconv.Itoa(a.table.RowCount()) + " rows"
	if row, col, ok := a.eng.ActiveCell(); ok {
		left += " · " + colName(col) + strconv.Itoa(row+1)
	}
	if hint := hintWord(a.eng.CursorHint()); hint != "" {
		left += " · " + hint
	}
	right := "ctrl+s save · ctrl+t theme · ctrl+q quit "

	a.buf.WriteTruncated(0, y, left, th.Header, w-len(right)-1)
	a.buf.WriteClipped(w-len(right), y, right, th.Gutter, len(right))
}

func (a *app) flush() {
	w, h := a.buf.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := a.buf.Get(x, y)
			if c.Rune == 0 {
				// continuation cell of a wide rune
				continue
			}
			a.screen.SetContent(x, y, c.Rune, nil, tcellStyle(c.Style))
		}
	}
	a.screen.Show()
}

func tcellStyle(st gridsheet.Style) tcell.Style {
	ts := tcell.StyleDefault.Foreground(tcellColor(st.FG)).Background(tcellColor(st.BG))
	if st.Attr.Has(gridsheet.AttrBold) {
		ts = ts.Bold(true)
	}
	if st.Attr.Has(gridsheet.AttrDim) {
		ts = ts.Dim(true)
	}
	if st.Attr.Has(gridsheet.AttrItalic) {
		ts = ts.Italic(true)
	}
	if st.Attr.Has(gridsheet.AttrUnderline) {
		ts = ts.Underline(true)
	}
	if st.Attr.Has(gridsheet.AttrReverse) {
		ts = ts.Reverse(true)
	}
	if st.Attr.Has(gridsheet.AttrStrike) {
		ts = ts.StrikeThrough(true)
	}
	return ts
}

func tcellColor(c gridsheet.Color) tcell.Color {
	switch c.Mode {
	case gridsheet.Color16, gridsheet.Color256:
		return tcell.PaletteColor(int(c.Index))
	case gridsheet.ColorRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return tcell.ColorDefault
	}
}

func (a *app) cycleTheme() {
	a.themeIdx = (a.themeIdx + 1) % len(a.themes)
	a.eng.SetTheme(&a.themes[a.themeIdx])
	a.logger.Info("theme", "name", a.themes[a.themeIdx].Name)
}

func (a *app) save() {
	if a.csvPath == "" {
		a.logger.Info("no csv path to save to")
		return
	}
	if err := a.table.ExportCSVFile(a.csvPath); err != nil {
		a.logger.Error("save csv", "err", err)
		return
	}
	a.logger.Info("saved", "path", a.csvPath)
}

// reload re-imports the CSV after an on-disk change, unless local edits
// would be lost.
func (a *app) reload() {
	if a.csvPath == "" {
		return
	}
	if a.store.CanUndo() {
		a.logger.Info("csv changed on disk, keeping local edits", "path", a.csvPath)
		return
	}
	t, err := a.store.ImportCSVFile(a.csvPath)
	if err != nil {
		a.logger.Error("reload csv", "err", err)
		return
	}
	a.table = t
	a.logger.Info("reloaded", "path", a.csvPath, "rows", t.RowCount())
}

func hintWord(h gridsheet.CursorHint) string {
	switch h {
	case gridsheet.CursorText:
		return "edit"
	case gridsheet.CursorHand:
		return "drag"
	case gridsheet.CursorResizeCol:
		return "resize"
	case gridsheet.CursorResizeRow:
		return "resize"
	case gridsheet.CursorCross:
		return "fill"
	default:
		return ""
	}
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

// seedDemo builds the table shown when no CSV is given: every cell kind,
// a pinned column, number clamping, a formula row, and nested subtables.
func seedDemo(store *memtable.Store) *memtable.Table {
	t := store.NewTable("Expedition Plan")
	task := t.AddColumn(memtable.Column{Title: "Task", Kind: gridsheet.KindText, Width: 22, Pinned: true})
	owner := t.AddColumn(memtable.Column{Title: "Owner", Kind: gridsheet.KindSelect, Width: 10,
		Options: []string{"ada", "grace", "linus"}})
	days := t.AddColumn(memtable.Column{Title: "Days", Kind: gridsheet.KindNumber, Width: 8,
		Number: memtable.NumberSpec{Min: 0, Max: 365, Clamp: true, Round: true, Precision: 1, Step: 0.5}})
	done := t.AddColumn(memtable.Column{Title: "Done", Kind: gridsheet.KindBool, Width: 6})
	notes := t.AddColumn(memtable.Column{Title: "Notes", Kind: gridsheet.KindText, Width: 30})
	steps := t.AddColumn(memtable.Column{Title: "Steps", Kind: gridsheet.KindSubtable, Width: 34, Preview: 3})

	type seedRow struct {
		task  string
		owner string
		days  float64
		done  bool
		notes string
		steps []string
	}
	rows := []seedRow{
		{"Scout the route", "ada", 3, true,
			"Follow the river until the old bridge, then cut across the ridge.",
			[]string{"Walk the river path", "Mark the crossing", "Sketch the ridge line"}},
		{"Pack supplies", "grace", 1.5, true,
			"Two weeks of rations; resupply is possible at the halfway hut.",
			[]string{"Count rations", "Check stove fuel"}},
		{"Fix the radio", "linus", 2, false,
			"Antenna mast cracked in the last storm.",
			[]string{"Order spare mast", "Test on the glacier frequency", "Log dead zones"}},
		{"File the permits", "ada", 0.5, false,
			"Park office closes at noon on Fridays.", nil},
	}
	for i, r := range rows {
		row := t.AppendRow()
		t.SetText(row, task.ID(), r.task)
		t.SetText(row, owner.ID(), r.owner)
		t.SetNumber(row, days.ID(), r.days)
		t.SetBool(row, done.ID(), r.done)
		t.SetText(row, notes.ID(), r.notes)
		if len(r.steps) == 0 {
			continue
		}
		sub, err := t.NewSubtable(row, steps.ID(), r.task+" steps")
		if err != nil {
			continue
		}
		st := sub.AddColumn(memtable.Column{Title: "Step", Kind: gridsheet.KindText, Width: 20})
		sd := sub.AddColumn(memtable.Column{Title: "Ok", Kind: gridsheet.KindBool, Width: 5})
		for j, s := range r.steps {
			sr := sub.AppendRow()
			sub.SetText(sr, st.ID(), s)
			sub.SetBool(sr, sd.ID(), i == 0 && j < 2)
		}
	}

	total := t.AppendRow()
	t.SetText(total, task.ID(), "Total")
	t.SetCellReadOnly(total, task.ID(), true)
	t.SetFormula(total, days.ID(), "=C1+C2+C3+C4")
	return t
}
