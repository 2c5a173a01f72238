// gridcat renders a CSV file as a styled grid on stdout: one frame of
// the same pipeline the interactive front ends drive, then exit. Colors
// degrade to the terminal's color profile; piped output falls back to
// plain text.
//
// Usage: gridcat [flags] [file.csv]   (reads stdin when no file is given)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"gridsheet"
	"gridsheet/memtable"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gridcat: ")

	themeFlag := flag.String("theme", "dark", "built-in theme name or path to a .toml theme")
	widthFlag := flag.Int("width", 0, "render width in cells (0 = terminal width)")
	heightFlag := flag.Int("height", 0, "cap output height in lines (0 = whole table)")
	plain := flag.Bool("plain", false, "force plain-text output")
	eastAsian := flag.Bool("east-asian", false, "treat ambiguous-width runes as wide")
	flag.Parse()

	store := memtable.NewStore()
	var (
		table *memtable.Table
		err   error
	)
	if path := flag.Arg(0); path != "" {
		table, err = store.ImportCSVFile(path)
	} else {
		table, err = store.ImportCSV(os.Stdin, "stdin")
	}
	if err != nil {
		log.Fatal(err)
	}

	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	width := *widthFlag
	if width <= 0 {
		width = 100
		if isTTY {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
	}

	theme, err := loadTheme(*themeFlag)
	if err != nil {
		log.Fatal(err)
	}
	styled := isTTY && !*plain
	if styled {
		degradeTheme(&theme, termenv.EnvColorProfile())
	}

	eng := gridsheet.New(gridsheet.Options{
		RowGutter: true,
		EastAsian: *eastAsian,
		Theme:     &theme,
	})

	height := eng.MeasureEmbeddedHeight(table, width)
	if *heightFlag > 0 && height > *heightFlag {
		height = *heightFlag
	}
	if height <= 0 {
		return
	}

	buf := gridsheet.NewBuffer(width, height)
	eng.BeginFrame(gridsheet.Input{})
	eng.Draw(buf, table, gridsheet.Rect{W: width, H: height}, false)
	eng.EndFrame()

	if styled {
		fmt.Println(gridsheet.RenderANSI(buf))
	} else {
		fmt.Println(buf.String())
	}
}

func loadTheme(name string) (gridsheet.Theme, error) {
	if strings.HasSuffix(name, ".toml") {
		return gridsheet.LoadThemeFile(name)
	}
	return gridsheet.LoadTheme(name)
}

func degradeTheme(t *gridsheet.Theme, p termenv.Profile) {
	styles := []*gridsheet.Style{
		&t.Header, &t.HeaderSelected, &t.Body, &t.BodyReadOnly,
		&t.Gutter, &t.GutterSelected, &t.GridLine,
		&t.Selection, &t.Active, &t.Editor, &t.Popup, &t.PopupSel,
		&t.FillPreview, &t.DragGhost, &t.Handle, &t.ErrorCell,
		&t.ScrollTrack, &t.ScrollThumb,
	}
	for _, s := range styles {
		s.FG = degradeColor(p, s.FG)
		s.BG = degradeColor(p, s.BG)
	}
}

// degradeColor maps a color through termenv's profile conversion so true
// color themes render sensibly on 256- and 16-color terminals.
func degradeColor(p termenv.Profile, c gridsheet.Color) gridsheet.Color {
	var src termenv.Color
	switch c.Mode {
	case gridsheet.ColorRGB:
		src = termenv.RGBColor(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	case gridsheet.Color256:
		src = termenv.ANSI256Color(c.Index)
	case gridsheet.Color16:
		src = termenv.ANSIColor(c.Index)
	default:
		return c
	}
	switch v := p.Convert(src).(type) {
	case termenv.ANSIColor:
		return gridsheet.BasicColor(uint8(v))
	case termenv.ANSI256Color:
		return gridsheet.PaletteColor(uint8(v))
	case termenv.RGBColor:
		var r, g, b uint8
		fmt.Sscanf(string(v), "#%02x%02x%02x", &r, &g, &b)
		return gridsheet.RGB(r, g, b)
	default:
		return gridsheet.DefaultColor()
	}
}
