package libretro

import (
	"testing"

	"github.com/user-none/pockystation/session"
)

// TestReorderDefault verifies default value moves to front
func TestReorderDefault(t *testing.T) {
	values := []string{"a", "b", "c"}

	result := reorderDefault(values, "b")
	if len(result) != 3 {
		t.Fatalf("len = %d, want 3", len(result))
	}
	if result[0] != "b" {
		t.Errorf("result[0] = %q, want \"b\"", result[0])
	}
	if result[1] != "a" {
		t.Errorf("result[1] = %q, want \"a\"", result[1])
	}
	if result[2] != "c" {
		t.Errorf("result[2] = %q, want \"c\"", result[2])
	}
}

// TestReorderDefault_AlreadyFirst verifies no change when default is first
func TestReorderDefault_AlreadyFirst(t *testing.T) {
	values := []string{"x", "y", "z"}

	result := reorderDefault(values, "x")
	if result[0] != "x" || result[1] != "y" || result[2] != "z" {
		t.Errorf("unexpected reorder: %v", result)
	}
}

// TestJoypadConstants verifies libretro button ID constants
func TestJoypadConstants(t *testing.T) {
	if JoypadB != 0 {
		t.Errorf("JoypadB = %d, want 0", JoypadB)
	}
	if JoypadY != 1 {
		t.Errorf("JoypadY = %d, want 1", JoypadY)
	}
	if JoypadSelect != 2 {
		t.Errorf("JoypadSelect = %d, want 2", JoypadSelect)
	}
	if JoypadStart != 3 {
		t.Errorf("JoypadStart = %d, want 3", JoypadStart)
	}
	if JoypadUp != 4 || JoypadDown != 5 || JoypadLeft != 6 || JoypadRight != 7 {
		t.Errorf("d-pad IDs = %d,%d,%d,%d, want 4,5,6,7", JoypadUp, JoypadDown, JoypadLeft, JoypadRight)
	}
	if JoypadA != 8 {
		t.Errorf("JoypadA = %d, want 8", JoypadA)
	}
	if JoypadX != 9 {
		t.Errorf("JoypadX = %d, want 9", JoypadX)
	}
	if JoypadL != 10 {
		t.Errorf("JoypadL = %d, want 10", JoypadL)
	}
	if JoypadR != 11 {
		t.Errorf("JoypadR = %d, want 11", JoypadR)
	}
}

// TestVariableValue verifies the option description puts the default first
func TestVariableValue(t *testing.T) {
	tests := []struct {
		opt  session.Option
		want string
	}{
		{
			session.Option{Label: "Sync", Default: "disabled", Values: []string{"disabled", "enabled"}},
			"Sync; disabled|enabled",
		},
		{
			session.Option{Label: "Rotate", Default: "enabled", Values: []string{"disabled", "enabled"}},
			"Rotate; enabled|disabled",
		},
	}

	for _, tt := range tests {
		if got := variableValue(tt.opt); got != tt.want {
			t.Errorf("variableValue(%s) = %q, want %q", tt.opt.Label, got, tt.want)
		}
	}
}

// TestVariableValue_Options verifies every registered option parses back to its default
func TestVariableValue_Options(t *testing.T) {
	for _, opt := range session.Options {
		v := variableValue(opt)
		semi := len(opt.Label) + 2
		if len(v) <= semi || v[:semi] != opt.Label+"; " {
			t.Fatalf("variableValue(%s) = %q", opt.Key, v)
		}
		rest := v[semi:]
		if len(rest) < len(opt.Default) || rest[:len(opt.Default)] != opt.Default {
			t.Errorf("option %s lists %q first, want default %q", opt.Key, rest, opt.Default)
		}
	}
}

// TestValidExtensions verifies leading dots are stripped
func TestValidExtensions(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{".mcr"}, "mcr"},
		{[]string{".mcr", "gme", ".zip"}, "mcr|gme|zip"},
	}
	for _, tt := range tests {
		if got := validExtensions(tt.in); got != tt.want {
			t.Errorf("validExtensions(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestDefaultMapping verifies every control has a button
func TestDefaultMapping(t *testing.T) {
	seen := make(map[session.Control]int)
	for _, m := range DefaultMapping {
		seen[m.Control] = m.RetroID
	}
	controls := []session.Control{
		session.ControlAction, session.ControlUp, session.ControlDown,
		session.ControlLeft, session.ControlRight,
	}
	for _, c := range controls {
		if _, ok := seen[c]; !ok {
			t.Errorf("control %v has no button", c)
		}
	}
	if seen[session.ControlAction] != JoypadA {
		t.Errorf("Action = %d, want JoypadA", seen[session.ControlAction])
	}
}
