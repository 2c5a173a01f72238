package gridsheet

// MouseButton is a bitmask of pointer buttons.
type MouseButton uint8

const (
	MouseNone   MouseButton = 0
	MouseLeft   MouseButton = 1 << iota
	MouseRight
	MouseMiddle
)

// Has returns true if the mask contains the given button.
func (m MouseButton) Has(b MouseButton) bool {
	return m&b != 0
}

// Modifier is a bitmask of keyboard modifiers accompanying an event.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// KeyCode identifies a non-printable key. Printable input arrives as
// KeyRune events carrying the rune.
type KeyCode uint8

const (
	KeyNone KeyCode = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyF2
)

// KeyEvent is one keyboard event delivered to the current frame.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Mods Modifier
}

// Input is the per-frame input snapshot assembled by a runner. Buttons is
// the held-button state when the frame begins; press/release edges are
// derived by the engine from the previous frame. Wheel deltas accumulate
// all wheel events since the previous frame.
type Input struct {
	MouseX, MouseY int
	Buttons        MouseButton
	Mods           Modifier
	WheelDX        int
	WheelDY        int
	Keys           []KeyEvent
}

// frameInput is the engine's view of one frame of input, with button edges
// resolved against the previous frame.
type frameInput struct {
	Input
	pressed  MouseButton
	released MouseButton
	keys     []KeyEvent // copy owned by the engine
}

func (f *frameInput) update(in Input, prev MouseButton) {
	f.Input = in
	f.pressed = in.Buttons &^ prev
	f.released = prev &^ in.Buttons
	f.keys = append(f.keys[:0], in.Keys...)
	f.Keys = f.keys
}

// PressedLeft reports a left-button press edge this frame.
func (f *frameInput) PressedLeft() bool { return f.pressed.Has(MouseLeft) }

// PressedRight reports a right-button press edge this frame.
func (f *frameInput) PressedRight() bool { return f.pressed.Has(MouseRight) }

// ReleasedLeft reports a left-button release edge this frame.
func (f *frameInput) ReleasedLeft() bool { return f.released.Has(MouseLeft) }

// HeldLeft reports the left button currently held.
func (f *frameInput) HeldLeft() bool { return f.Buttons.Has(MouseLeft) }
