package session

import (
	"testing"

	"github.com/user-none/pockystation/engine"
)

func TestApplyInput(t *testing.T) {
	tests := []struct {
		name    string
		pressed []Control
		want    uint8
	}{
		{"none", nil, 0},
		{"up only", []Control{ControlUp}, 1 << uint(engine.IrqUpButton)},
		{"action", []Control{ControlAction}, 1 << uint(engine.IrqActionButton)},
		{"left and right", []Control{ControlLeft, ControlRight},
			1<<uint(engine.IrqLeftButton) | 1<<uint(engine.IrqRightButton)},
		{"all", []Control{ControlAction, ControlUp, ControlDown, ControlLeft, ControlRight}, 0x1f},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost("")
			for _, c := range tt.pressed {
				host.pressed[c] = true
			}
			m := &fakeMachine{irqs: 0xff}
			applyInput(host, m)
			if m.irqs&0x1f != tt.want {
				t.Errorf("irqs = %05b, want %05b", m.irqs&0x1f, tt.want)
			}
		})
	}
}

func TestApplyInputRelease(t *testing.T) {
	host := newFakeHost("")
	m := &fakeMachine{}

	host.pressed[ControlUp] = true
	applyInput(host, m)
	if m.irqs != 1<<uint(engine.IrqUpButton) {
		t.Fatalf("irqs = %05b after press, want only Up", m.irqs)
	}

	host.pressed[ControlUp] = false
	applyInput(host, m)
	if m.irqs != 0 {
		t.Errorf("irqs = %05b after release, want 0", m.irqs)
	}
}

func TestControlString(t *testing.T) {
	if got := ControlAction.String(); got != "Action" {
		t.Errorf("ControlAction.String() = %q, want %q", got, "Action")
	}
	if got := Control(99).String(); got != "Unknown" {
		t.Errorf("Control(99).String() = %q, want %q", got, "Unknown")
	}
}
