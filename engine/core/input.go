package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A

	KEYS_MAX_KEYS KeyCode = 0xFF
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// InputSystem holds current and previous states for keyboard and mouse and
// fires the matching events when a state changes. Main thread only.
type InputSystem struct {
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
	events           *EventSystem
}

func NewInputSystem(events *EventSystem) *InputSystem {
	return &InputSystem{events: events}
}

// Update copies current states to previous states. Call once at the end of a frame.
func (is *InputSystem) Update() {
	is.keyboardPrevious = is.keyboardCurrent
	is.mousePrevious = is.mouseCurrent
}

// keyboard input
func (is *InputSystem) IsKeyDown(key KeyCode) bool {
	return is.keyboardCurrent.Keys[key]
}

func (is *InputSystem) IsKeyUp(key KeyCode) bool {
	return !is.keyboardCurrent.Keys[key]
}

func (is *InputSystem) WasKeyDown(key KeyCode) bool {
	return is.keyboardPrevious.Keys[key]
}

func (is *InputSystem) WasKeyUp(key KeyCode) bool {
	return !is.keyboardPrevious.Keys[key]
}

func (is *InputSystem) ProcessKey(key KeyCode, pressed bool) {
	// Only handle this if the state actually changed.
	if is.keyboardCurrent.Keys[key] == pressed {
		return
	}
	is.keyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	is.events.Fire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}

// mouse input
func (is *InputSystem) IsButtonDown(button Button) bool {
	return is.mouseCurrent.Buttons[button]
}

func (is *InputSystem) IsButtonUp(button Button) bool {
	return !is.mouseCurrent.Buttons[button]
}

func (is *InputSystem) WasButtonDown(button Button) bool {
	return is.mousePrevious.Buttons[button]
}

func (is *InputSystem) MousePosition() (int32, int32) {
	return is.mouseCurrent.X, is.mouseCurrent.Y
}

func (is *InputSystem) PreviousMousePosition() (int32, int32) {
	return is.mousePrevious.X, is.mousePrevious.Y
}

func (is *InputSystem) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || is.mouseCurrent.Buttons[button] == pressed {
		return
	}
	is.mouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	is.events.Fire(EventContext{
		Type: code,
		Data: &MouseEvent{
			Button: button,
			PosX:   is.mouseCurrent.X,
			PosY:   is.mouseCurrent.Y,
		},
	})
}

func (is *InputSystem) ProcessMouseMove(x, y int32) {
	if is.mouseCurrent.X == x && is.mouseCurrent.Y == y {
		return
	}
	is.mouseCurrent.X = x
	is.mouseCurrent.Y = y

	is.events.Fire(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{
			PosX: x,
			PosY: y,
		},
	})
}

func (is *InputSystem) ProcessMouseWheel(zDelta int8) {
	is.events.Fire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{
			Scroll: zDelta,
		},
	})
}
