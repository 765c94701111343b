package session

import "github.com/user-none/pockystation/engine"

// inputPort is the only controller slot polled.
const inputPort = 0

// buttonMap maps host controls to the interrupt line they drive.
var buttonMap = []struct {
	control Control
	irq     engine.Interrupt
}{
	{ControlAction, engine.IrqActionButton},
	{ControlUp, engine.IrqUpButton},
	{ControlDown, engine.IrqDownButton},
	{ControlLeft, engine.IrqLeftButton},
	{ControlRight, engine.IrqRightButton},
}

// applyInput samples every mapped control and writes its level to the
// interrupt line, whether or not it changed since the last frame.
func applyInput(host Host, m engine.Machine) {
	for _, b := range buttonMap {
		m.SetInterrupt(b.irq, host.ControlPressed(inputPort, b.control))
	}
}
