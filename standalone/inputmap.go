//go:build !libretro

package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/pockystation/session"
)

// InputMapping maps each handheld control to the host inputs that press it.
type InputMapping struct {
	Keys    map[session.Control][]ebiten.Key
	Gamepad map[session.Control]ebiten.StandardGamepadButton
}

// keyNameMap maps short key name strings to ebiten.Key values.
var keyNameMap = map[string]ebiten.Key{
	"A":          ebiten.KeyA,
	"B":          ebiten.KeyB,
	"C":          ebiten.KeyC,
	"D":          ebiten.KeyD,
	"E":          ebiten.KeyE,
	"F":          ebiten.KeyF,
	"G":          ebiten.KeyG,
	"H":          ebiten.KeyH,
	"I":          ebiten.KeyI,
	"J":          ebiten.KeyJ,
	"K":          ebiten.KeyK,
	"L":          ebiten.KeyL,
	"M":          ebiten.KeyM,
	"N":          ebiten.KeyN,
	"O":          ebiten.KeyO,
	"P":          ebiten.KeyP,
	"Q":          ebiten.KeyQ,
	"R":          ebiten.KeyR,
	"S":          ebiten.KeyS,
	"T":          ebiten.KeyT,
	"U":          ebiten.KeyU,
	"V":          ebiten.KeyV,
	"W":          ebiten.KeyW,
	"X":          ebiten.KeyX,
	"Y":          ebiten.KeyY,
	"Z":          ebiten.KeyZ,
	"0":          ebiten.Key0,
	"1":          ebiten.Key1,
	"2":          ebiten.Key2,
	"3":          ebiten.Key3,
	"4":          ebiten.Key4,
	"5":          ebiten.Key5,
	"6":          ebiten.Key6,
	"7":          ebiten.Key7,
	"8":          ebiten.Key8,
	"9":          ebiten.Key9,
	"Enter":      ebiten.KeyEnter,
	"Backspace":  ebiten.KeyBackspace,
	"Space":      ebiten.KeySpace,
	"Semicolon":  ebiten.KeySemicolon,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"Tab":        ebiten.KeyTab,
	"Escape":     ebiten.KeyEscape,
	"Shift":      ebiten.KeyShift,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"[":          ebiten.KeyLeftBracket,
	"]":          ebiten.KeyRightBracket,
	"-":          ebiten.KeyMinus,
	"=":          ebiten.KeyEqual,
	"'":          ebiten.KeyApostrophe,
	"F1":         ebiten.KeyF1,
	"F2":         ebiten.KeyF2,
	"F3":         ebiten.KeyF3,
	"F4":         ebiten.KeyF4,
	"F5":         ebiten.KeyF5,
	"F6":         ebiten.KeyF6,
	"F7":         ebiten.KeyF7,
	"F8":         ebiten.KeyF8,
	"F9":         ebiten.KeyF9,
	"F10":        ebiten.KeyF10,
	"F11":        ebiten.KeyF11,
	"F12":        ebiten.KeyF12,
}

// padNameMap maps gamepad button name strings to ebiten StandardGamepadButton values.
var padNameMap = map[string]ebiten.StandardGamepadButton{
	"A":         ebiten.StandardGamepadButtonRightBottom,
	"B":         ebiten.StandardGamepadButtonRightRight,
	"X":         ebiten.StandardGamepadButtonRightLeft,
	"Y":         ebiten.StandardGamepadButtonRightTop,
	"L1":        ebiten.StandardGamepadButtonFrontTopLeft,
	"R1":        ebiten.StandardGamepadButtonFrontTopRight,
	"L2":        ebiten.StandardGamepadButtonFrontBottomLeft,
	"R2":        ebiten.StandardGamepadButtonFrontBottomRight,
	"Start":     ebiten.StandardGamepadButtonCenterRight,
	"Select":    ebiten.StandardGamepadButtonCenterLeft,
	"DpadUp":    ebiten.StandardGamepadButtonLeftTop,
	"DpadDown":  ebiten.StandardGamepadButtonLeftBottom,
	"DpadLeft":  ebiten.StandardGamepadButtonLeftLeft,
	"DpadRight": ebiten.StandardGamepadButtonLeftRight,
	"L3":        ebiten.StandardGamepadButtonLeftStick,
	"R3":        ebiten.StandardGamepadButtonRightStick,
}

// reservedKeys drive the standalone host itself and cannot be bound to a
// control.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyF1:  true, // Save state
	ebiten.KeyF2:  true, // Next slot
	ebiten.KeyF3:  true, // Load state
	ebiten.KeyF5:  true, // Reset
	ebiten.KeyF11: true, // Fullscreen
	ebiten.KeyF12: true, // Screenshot
}

// IsReservedKey returns true if the key is reserved for host functions.
func IsReservedKey(k ebiten.Key) bool {
	return reservedKeys[k]
}

// ParseKey converts a key name string to an ebiten.Key.
// Returns the key and true if the name is valid, or 0 and false otherwise.
func ParseKey(name string) (ebiten.Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// ParsePad converts a gamepad button name string to an ebiten.StandardGamepadButton.
// Returns the button and true if the name is valid, or 0 and false otherwise.
func ParsePad(name string) (ebiten.StandardGamepadButton, bool) {
	b, ok := padNameMap[name]
	return b, ok
}

// controlBindings are the default bindings. Config overrides use the
// control names.
var controlBindings = []struct {
	Control     session.Control
	DefaultKeys []string
	DefaultPad  string
}{
	{session.ControlAction, []string{"J", "Enter"}, "A"},
	{session.ControlUp, []string{"ArrowUp"}, "DpadUp"},
	{session.ControlDown, []string{"ArrowDown"}, "DpadDown"},
	{session.ControlLeft, []string{"ArrowLeft"}, "DpadLeft"},
	{session.ControlRight, []string{"ArrowRight"}, "DpadRight"},
}

// BuildDefaultMapping creates the default InputMapping: arrow keys and the
// controller d-pad for directions, J/Enter and the bottom face button for
// Action.
func BuildDefaultMapping() InputMapping {
	return BuildMappingFromConfig(nil, nil)
}

// BuildMappingFromConfig creates an InputMapping from config overrides,
// keyed by control name. An override replaces every default key of that
// control. Unknown or reserved override names unbind the control.
func BuildMappingFromConfig(kbOverrides, padOverrides map[string]string) InputMapping {
	m := InputMapping{
		Keys:    make(map[session.Control][]ebiten.Key),
		Gamepad: make(map[session.Control]ebiten.StandardGamepadButton),
	}

	for _, cb := range controlBindings {
		name := cb.Control.String()

		keys := cb.DefaultKeys
		if override, ok := kbOverrides[name]; ok {
			keys = []string{override}
		}
		for _, keyName := range keys {
			if k, ok := ParseKey(keyName); ok && !reservedKeys[k] {
				m.Keys[cb.Control] = append(m.Keys[cb.Control], k)
			}
		}

		pad := cb.DefaultPad
		if override, ok := padOverrides[name]; ok {
			pad = override
		}
		if b, ok := ParsePad(pad); ok {
			m.Gamepad[cb.Control] = b
		}
	}

	return m
}

// PollControls reads the keyboard and, if present, the gamepad (buttons
// and left stick) and returns the pressed controls as a bitmask. When
// disableAnalog is true, the analog stick is not polled.
func PollControls(mapping InputMapping, gamepadID ebiten.GamepadID, hasGamepad, disableAnalog bool) uint32 {
	var controls uint32

	for c, keys := range mapping.Keys {
		for _, key := range keys {
			if ebiten.IsKeyPressed(key) {
				controls |= 1 << uint(c)
				break
			}
		}
	}

	if !hasGamepad {
		return controls
	}

	for c, padBtn := range mapping.Gamepad {
		if ebiten.IsStandardGamepadButtonPressed(gamepadID, padBtn) {
			controls |= 1 << uint(c)
		}
	}

	if !disableAnalog {
		controls |= stickControls(mapping,
			ebiten.StandardGamepadAxisValue(gamepadID, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(gamepadID, ebiten.StandardGamepadAxisLeftStickVertical))
	}

	return controls
}

// stickDeadZone is the axis magnitude below which the stick is centered.
const stickDeadZone = 0.25

// stickControls maps left stick deflection onto whichever controls the
// d-pad directions are bound to, so remapped d-pads move the stick with
// them.
func stickControls(mapping InputMapping, axisX, axisY float64) uint32 {
	var controls uint32
	for c, padBtn := range mapping.Gamepad {
		var pressed bool
		switch padBtn {
		case ebiten.StandardGamepadButtonLeftLeft:
			pressed = axisX < -stickDeadZone
		case ebiten.StandardGamepadButtonLeftRight:
			pressed = axisX > stickDeadZone
		case ebiten.StandardGamepadButtonLeftTop:
			pressed = axisY < -stickDeadZone
		case ebiten.StandardGamepadButtonLeftBottom:
			pressed = axisY > stickDeadZone
		}
		if pressed {
			controls |= 1 << uint(c)
		}
	}
	return controls
}
