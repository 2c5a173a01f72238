// Package teagrid adapts a gridsheet engine to bubbletea programs. Grid
// is a stateful component in the widget style: the host model forwards
// messages to Update and places View's output; Grid folds messages into
// the next frame's input snapshot and runs one full engine frame per
// View call.
package teagrid

import (
	tea "github.com/charmbracelet/bubbletea"

	"gridsheet"
)

// Grid drives one gridsheet engine from bubbletea messages.
type Grid struct {
	eng *gridsheet.Engine
	src gridsheet.DataSource
	buf *gridsheet.Buffer

	in      gridsheet.Input
	buttons gridsheet.MouseButton
	w, h    int
	offX    int
	offY    int
	focus   bool
}

// New creates a grid component over an engine and its data source. The
// grid starts focused; call Blur when the host moves focus elsewhere.
func New(eng *gridsheet.Engine, src gridsheet.DataSource) *Grid {
	return &Grid{eng: eng, src: src, focus: true}
}

// Engine exposes the wrapped engine for host queries such as CursorHint
// and MenuTarget.
func (g *Grid) Engine() *gridsheet.Engine { return g.eng }

// SetSource swaps the data source shown by the grid.
func (g *Grid) SetSource(src gridsheet.DataSource) { g.src = src }

// SetSize resizes the grid's draw surface.
func (g *Grid) SetSize(w, h int) {
	if w == g.w && h == g.h {
		return
	}
	g.w, g.h = w, h
	if w > 0 && h > 0 {
		g.buf = gridsheet.NewBuffer(w, h)
	} else {
		g.buf = nil
	}
}

// SetOffset tells the grid where the host places its view on screen, so
// terminal mouse coordinates translate into grid coordinates.
func (g *Grid) SetOffset(x, y int) { g.offX, g.offY = x, y }

// Focus gives the grid keyboard and mouse interactivity.
func (g *Grid) Focus() { g.focus = true }

// Blur drops interactivity and releases transient engine state.
func (g *Grid) Blur() {
	g.focus = false
	g.eng.Blur()
}

// Focused reports whether the grid is interactive.
func (g *Grid) Focused() bool { return g.focus }

// Init implements the component protocol; the grid needs no startup
// command.
func (g *Grid) Init() tea.Cmd { return nil }

// Update folds one message into the pending input snapshot.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if ev, ok := keyEvent(msg); ok {
			g.in.Keys = append(g.in.Keys, ev)
		}
	case tea.MouseMsg:
		g.handleMouse(msg)
	}
	return nil
}

// View runs one engine frame over the accumulated input and serializes
// the surface. Held buttons and the pointer position persist between
// frames; keys and wheel deltas are consumed.
func (g *Grid) View() string {
	if g.buf == nil {
		return ""
	}
	in := g.in
	g.in.Keys = g.in.Keys[:0]
	g.in.WheelDX, g.in.WheelDY = 0, 0

	g.eng.BeginFrame(in)
	g.eng.Draw(g.buf, g.src, gridsheet.Rect{W: g.w, H: g.h}, g.focus)
	g.eng.EndFrame()
	return gridsheet.RenderANSI(g.buf)
}

func (g *Grid) handleMouse(m tea.MouseMsg) {
	g.in.MouseX = m.X - g.offX
	g.in.MouseY = m.Y - g.offY

	var mods gridsheet.Modifier
	if m.Shift {
		mods |= gridsheet.ModShift
	}
	if m.Alt {
		mods |= gridsheet.ModAlt
	}
	if m.Ctrl {
		mods |= gridsheet.ModCtrl
	}
	g.in.Mods = mods

	switch m.Button {
	case tea.MouseButtonWheelUp:
		g.in.WheelDY--
	case tea.MouseButtonWheelDown:
		g.in.WheelDY++
	case tea.MouseButtonWheelLeft:
		g.in.WheelDX--
	case tea.MouseButtonWheelRight:
		g.in.WheelDX++
	case tea.MouseButtonLeft:
		g.setButton(gridsheet.MouseLeft, m.Action)
	case tea.MouseButtonRight:
		g.setButton(gridsheet.MouseRight, m.Action)
	case tea.MouseButtonMiddle:
		g.setButton(gridsheet.MouseMiddle, m.Action)
	case tea.MouseButtonNone:
		// X10-style release events carry no button
		if m.Action == tea.MouseActionRelease {
			g.buttons = 0
		}
	}
	g.in.Buttons = g.buttons
}

func (g *Grid) setButton(b gridsheet.MouseButton, a tea.MouseAction) {
	switch a {
	case tea.MouseActionPress:
		g.buttons |= b
	case tea.MouseActionRelease:
		g.buttons &^= b
	}
}

// keyEvent translates a bubbletea key. Control-letter chords arrive as
// dedicated key types and map back to rune+ModCtrl; Tab, Enter, and
// Escape shadow their control aliases and stay special keys.
func keyEvent(k tea.KeyMsg) (gridsheet.KeyEvent, bool) {
	var ev gridsheet.KeyEvent
	if k.Alt {
		ev.Mods |= gridsheet.ModAlt
	}
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 0 {
			return ev, false
		}
		ev.Code, ev.Rune = gridsheet.KeyRune, k.Runes[0]
		return ev, true
	case tea.KeySpace:
		ev.Code, ev.Rune = gridsheet.KeyRune, ' '
		return ev, true
	case tea.KeyEnter:
		ev.Code = gridsheet.KeyEnter
	case tea.KeyEscape:
		ev.Code = gridsheet.KeyEscape
	case tea.KeyTab:
		ev.Code = gridsheet.KeyTab
	case tea.KeyShiftTab:
		ev.Code = gridsheet.KeyBacktab
	case tea.KeyBackspace:
		ev.Code = gridsheet.KeyBackspace
	case tea.KeyDelete:
		ev.Code = gridsheet.KeyDelete
	case tea.KeyUp:
		ev.Code = gridsheet.KeyUp
	case tea.KeyDown:
		ev.Code = gridsheet.KeyDown
	case tea.KeyLeft:
		ev.Code = gridsheet.KeyLeft
	case tea.KeyRight:
		ev.Code = gridsheet.KeyRight
	case tea.KeyShiftUp:
		ev.Code, ev.Mods = gridsheet.KeyUp, ev.Mods|gridsheet.ModShift
	case tea.KeyShiftDown:
		ev.Code, ev.Mods = gridsheet.KeyDown, ev.Mods|gridsheet.ModShift
	case tea.KeyShiftLeft:
		ev.Code, ev.Mods = gridsheet.KeyLeft, ev.Mods|gridsheet.ModShift
	case tea.KeyShiftRight:
		ev.Code, ev.Mods = gridsheet.KeyRight, ev.Mods|gridsheet.ModShift
	case tea.KeyHome:
		ev.Code = gridsheet.KeyHome
	case tea.KeyEnd:
		ev.Code = gridsheet.KeyEnd
	case tea.KeyPgUp:
		ev.Code = gridsheet.KeyPgUp
	case tea.KeyPgDown:
		ev.Code = gridsheet.KeyPgDn
	case tea.KeyF2:
		ev.Code = gridsheet.KeyF2
	default:
		if k.Type >= tea.KeyCtrlA && k.Type <= tea.KeyCtrlZ {
			ev.Code = gridsheet.KeyRune
			ev.Rune = rune('a' + int(k.Type) - int(tea.KeyCtrlA))
			ev.Mods |= gridsheet.ModCtrl
			return ev, true
		}
		return ev, false
	}
	return ev, true
}
