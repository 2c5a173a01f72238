package gridsheet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Theme provides the styles the grid draws with. All fields are plain
// Styles so a theme works on any backend that can render a Style.
type Theme struct {
	Name string

	Header         Style // header row labels
	HeaderSelected Style // selected column's header
	Body           Style // default cell text
	BodyReadOnly   Style // read-only and formula cells
	Gutter         Style // row numbers
	GutterSelected Style // row numbers of selected rows
	GridLine       Style // column separators and subtable borders

	Selection Style // cells inside the selection rectangle
	Active    Style // the focused cell
	Editor    Style // in-place editor text
	Popup     Style // dropdown options
	PopupSel  Style // highlighted dropdown option

	FillPreview Style // live fill target area
	DragGhost   Style // reorder ghost and insert marker
	Handle      Style // fill/tear/gutter handle glyphs
	ErrorCell   Style // cells flagged CellError

	ScrollTrack Style
	ScrollThumb Style
}

// ThemeDark is the default theme: light text on the terminal background.
var ThemeDark = Theme{
	Name:           "dark",
	Header:         Style{FG: BrightWhite, Attr: AttrBold},
	HeaderSelected: Style{FG: Black, BG: BrightCyan, Attr: AttrBold},
	Body:           Style{FG: White},
	BodyReadOnly:   Style{FG: BrightBlack},
	Gutter:         Style{FG: BrightBlack},
	GutterSelected: Style{FG: BrightCyan, Attr: AttrBold},
	GridLine:       Style{FG: BrightBlack},
	Selection:      Style{FG: White, BG: Blue},
	Active:         Style{FG: Black, BG: BrightCyan},
	Editor:         Style{FG: BrightWhite, BG: BrightBlack},
	Popup:          Style{FG: White, BG: BrightBlack},
	PopupSel:       Style{FG: Black, BG: BrightCyan},
	FillPreview:    Style{BG: BrightBlack},
	DragGhost:      Style{FG: Black, BG: BrightYellow},
	Handle:         Style{FG: BrightCyan, Attr: AttrBold},
	ErrorCell:      Style{FG: BrightRed},
	ScrollTrack:    Style{FG: BrightBlack},
	ScrollThumb:    Style{FG: White},
}

// ThemeLight is a light theme for light-background terminals.
var ThemeLight = Theme{
	Name:           "light",
	Header:         Style{FG: Black, Attr: AttrBold},
	HeaderSelected: Style{FG: White, BG: Blue, Attr: AttrBold},
	Body:           Style{FG: Black},
	BodyReadOnly:   Style{FG: BrightBlack},
	Gutter:         Style{FG: BrightBlack},
	GutterSelected: Style{FG: Blue, Attr: AttrBold},
	GridLine:       Style{FG: White},
	Selection:      Style{FG: Black, BG: BrightCyan},
	Active:         Style{FG: White, BG: Blue},
	Editor:         Style{FG: Black, BG: White},
	Popup:          Style{FG: Black, BG: White},
	PopupSel:       Style{FG: White, BG: Blue},
	FillPreview:    Style{BG: White},
	DragGhost:      Style{FG: White, BG: Magenta},
	Handle:         Style{FG: Blue, Attr: AttrBold},
	ErrorCell:      Style{FG: Red},
	ScrollTrack:    Style{FG: White},
	ScrollThumb:    Style{FG: Black},
}

// ThemeMono uses only attributes, for terminals without reliable color.
var ThemeMono = Theme{
	Name:           "mono",
	Header:         Style{Attr: AttrBold},
	HeaderSelected: Style{Attr: AttrBold | AttrReverse},
	Body:           Style{},
	BodyReadOnly:   Style{Attr: AttrDim},
	Gutter:         Style{Attr: AttrDim},
	GutterSelected: Style{Attr: AttrBold},
	GridLine:       Style{Attr: AttrDim},
	Selection:      Style{Attr: AttrReverse},
	Active:         Style{Attr: AttrReverse | AttrBold},
	Editor:         Style{Attr: AttrUnderline},
	Popup:          Style{Attr: AttrReverse},
	PopupSel:       Style{Attr: AttrBold},
	FillPreview:    Style{Attr: AttrDim | AttrReverse},
	DragGhost:      Style{Attr: AttrReverse},
	Handle:         Style{Attr: AttrBold},
	ErrorCell:      Style{Attr: AttrBold | AttrUnderline},
	ScrollTrack:    Style{Attr: AttrDim},
	ScrollThumb:    Style{},
}

// ErrUnknownTheme is returned by LoadTheme for names with no built-in.
var ErrUnknownTheme = errors.New("gridsheet: unknown theme")

// LoadTheme returns a copy of a built-in theme by name.
func LoadTheme(name string) (Theme, error) {
	switch name {
	case "dark", "":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	case "mono":
		return ThemeMono, nil
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// tomlTheme is the TOML-serializable palette of a theme. Colors are
// "#RRGGBB" strings; empty means the terminal default.
type tomlTheme struct {
	Name   string     `toml:"name"`
	Base   tomlBase   `toml:"base"`
	Grid   tomlGrid   `toml:"grid"`
	Accent tomlAccent `toml:"accent"`
	Scroll tomlScroll `toml:"scroll"`
}

type tomlBase struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Dim        string `toml:"dim"`
	Accent     string `toml:"accent"`
	Error      string `toml:"error"`
}

type tomlGrid struct {
	Line     string `toml:"line"`
	HeaderFG string `toml:"header_fg"`
	HeaderBG string `toml:"header_bg"`
	GutterFG string `toml:"gutter_fg"`
	GutterBG string `toml:"gutter_bg"`
}

type tomlAccent struct {
	SelectionBG string `toml:"selection_bg"`
	ActiveFG    string `toml:"active_fg"`
	ActiveBG    string `toml:"active_bg"`
	EditorFG    string `toml:"editor_fg"`
	EditorBG    string `toml:"editor_bg"`
	FillBG      string `toml:"fill_bg"`
	GhostBG     string `toml:"ghost_bg"`
}

type tomlScroll struct {
	Track string `toml:"track"`
	Thumb string `toml:"thumb"`
}

var hexColorRE = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseTheme parses a TOML theme definition from raw bytes.
func ParseTheme(data []byte) (Theme, error) {
	var tt tomlTheme
	if err := toml.Unmarshal(data, &tt); err != nil {
		return Theme{}, fmt.Errorf("gridsheet: parse theme: %w", err)
	}
	if err := validatePalette(tt); err != nil {
		return Theme{}, err
	}

	fg := parseHexColor(tt.Base.Foreground)
	bg := parseHexColor(tt.Base.Background)
	dim := parseHexColor(tt.Base.Dim)
	accent := parseHexColor(tt.Base.Accent)

	return Theme{
		Name:           tt.Name,
		Header:         Style{FG: parseHexColor(tt.Grid.HeaderFG), BG: parseHexColor(tt.Grid.HeaderBG), Attr: AttrBold},
		HeaderSelected: Style{FG: parseHexColor(tt.Accent.ActiveFG), BG: parseHexColor(tt.Accent.ActiveBG), Attr: AttrBold},
		Body:           Style{FG: fg, BG: bg},
		BodyReadOnly:   Style{FG: dim, BG: bg},
		Gutter:         Style{FG: parseHexColor(tt.Grid.GutterFG), BG: parseHexColor(tt.Grid.GutterBG)},
		GutterSelected: Style{FG: accent, BG: parseHexColor(tt.Grid.GutterBG), Attr: AttrBold},
		GridLine:       Style{FG: parseHexColor(tt.Grid.Line), BG: bg},
		Selection:      Style{FG: fg, BG: parseHexColor(tt.Accent.SelectionBG)},
		Active:         Style{FG: parseHexColor(tt.Accent.ActiveFG), BG: parseHexColor(tt.Accent.ActiveBG)},
		Editor:         Style{FG: parseHexColor(tt.Accent.EditorFG), BG: parseHexColor(tt.Accent.EditorBG)},
		Popup:          Style{FG: parseHexColor(tt.Accent.EditorFG), BG: parseHexColor(tt.Accent.EditorBG)},
		PopupSel:       Style{FG: parseHexColor(tt.Accent.ActiveFG), BG: parseHexColor(tt.Accent.ActiveBG)},
		FillPreview:    Style{BG: parseHexColor(tt.Accent.FillBG)},
		DragGhost:      Style{FG: bg, BG: parseHexColor(tt.Accent.GhostBG)},
		Handle:         Style{FG: accent, Attr: AttrBold},
		ErrorCell:      Style{FG: parseHexColor(tt.Base.Error), BG: bg},
		ScrollTrack:    Style{FG: parseHexColor(tt.Scroll.Track)},
		ScrollThumb:    Style{FG: parseHexColor(tt.Scroll.Thumb)},
	}, nil
}

// LoadThemeFile reads and parses a TOML theme file.
func LoadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("gridsheet: read theme: %w", err)
	}
	return ParseTheme(data)
}

// validatePalette rejects any non-empty color that is not "#RRGGBB".
func validatePalette(tt tomlTheme) error {
	fields := map[string]string{
		"base.foreground":     tt.Base.Foreground,
		"base.background":     tt.Base.Background,
		"base.dim":            tt.Base.Dim,
		"base.accent":         tt.Base.Accent,
		"base.error":          tt.Base.Error,
		"grid.line":           tt.Grid.Line,
		"grid.header_fg":      tt.Grid.HeaderFG,
		"grid.header_bg":      tt.Grid.HeaderBG,
		"grid.gutter_fg":      tt.Grid.GutterFG,
		"grid.gutter_bg":      tt.Grid.GutterBG,
		"accent.selection_bg": tt.Accent.SelectionBG,
		"accent.active_fg":    tt.Accent.ActiveFG,
		"accent.active_bg":    tt.Accent.ActiveBG,
		"accent.editor_fg":    tt.Accent.EditorFG,
		"accent.editor_bg":    tt.Accent.EditorBG,
		"accent.fill_bg":      tt.Accent.FillBG,
		"accent.ghost_bg":     tt.Accent.GhostBG,
		"scroll.track":        tt.Scroll.Track,
		"scroll.thumb":        tt.Scroll.Thumb,
	}
	for name, v := range fields {
		if v != "" && !hexColorRE.MatchString(v) {
			return fmt.Errorf("gridsheet: theme %q: %s: invalid color %q", tt.Name, name, v)
		}
	}
	return nil
}

// parseHexColor converts a validated "#RRGGBB" string; empty strings map
// to the terminal default.
func parseHexColor(s string) Color {
	if s == "" {
		return DefaultColor()
	}
	var r, g, b uint8
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return RGB(r, g, b)
}

// SaveTheme serializes a theme's palette back to TOML. Only RGB colors
// round-trip; styles built from basic colors serialize as empty fields.
func SaveTheme(t Theme) ([]byte, error) {
	tt := tomlTheme{
		Name: t.Name,
		Base: tomlBase{
			Foreground: hexString(t.Body.FG),
			Background: hexString(t.Body.BG),
			Dim:        hexString(t.BodyReadOnly.FG),
			Accent:     hexString(t.Handle.FG),
			Error:      hexString(t.ErrorCell.FG),
		},
		Grid: tomlGrid{
			Line:     hexString(t.GridLine.FG),
			HeaderFG: hexString(t.Header.FG),
			HeaderBG: hexString(t.Header.BG),
			GutterFG: hexString(t.Gutter.FG),
			GutterBG: hexString(t.Gutter.BG),
		},
		Accent: tomlAccent{
			SelectionBG: hexString(t.Selection.BG),
			ActiveFG:    hexString(t.Active.FG),
			ActiveBG:    hexString(t.Active.BG),
			EditorFG:    hexString(t.Editor.FG),
			EditorBG:    hexString(t.Editor.BG),
			FillBG:      hexString(t.FillPreview.BG),
			GhostBG:     hexString(t.DragGhost.BG),
		},
		Scroll: tomlScroll{
			Track: hexString(t.ScrollTrack.FG),
			Thumb: hexString(t.ScrollThumb.FG),
		},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tt); err != nil {
		return nil, fmt.Errorf("gridsheet: encode theme: %w", err)
	}
	return buf.Bytes(), nil
}

func hexString(c Color) string {
	if c.Mode != ColorRGB {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
