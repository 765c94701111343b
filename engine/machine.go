// Package engine describes the emulation engine driven by the session core.
// The engine itself (CPU, interconnect, LCD, DAC, RTC and interrupt
// controller) lives outside this module and plugs in through Factory.
package engine

import "io"

// Framebuffer dimensions of the LCD.
const (
	ScreenWidth  = 32
	ScreenHeight = 32
)

// Interrupt identifies a hardware interrupt line driven by the session.
type Interrupt int

// Button interrupt lines.
const (
	IrqActionButton Interrupt = iota
	IrqRightButton
	IrqLeftButton
	IrqDownButton
	IrqUpButton
)

// String returns the name of the interrupt line.
func (i Interrupt) String() string {
	switch i {
	case IrqActionButton:
		return "ActionButton"
	case IrqRightButton:
		return "RightButton"
	case IrqLeftButton:
		return "LeftButton"
	case IrqDownButton:
		return "DownButton"
	case IrqUpButton:
		return "UpButton"
	default:
		return "Unknown"
	}
}

// AudioSink receives mono DAC samples while the machine runs.
type AudioSink interface {
	PushSample(sample int16)
}

// ClockRegisters holds the RTC register block, every field in BCD.
type ClockRegisters struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Weekday uint8
	Day     uint8
	Month   uint8
	Year    uint8
}

// Machine is one running instance of the emulated handheld.
type Machine interface {
	// RunTicks advances the machine by the given number of master clock cycles.
	RunTicks(cycles uint32)

	// Reset performs a hardware reset.
	Reset()

	// SetInterrupt sets the level of an interrupt line.
	SetInterrupt(irq Interrupt, active bool)

	// Framebuffer returns the LCD contents. Row y is element y, pixel x is bit x.
	Framebuffer() [ScreenHeight]uint32

	// Rotated reports whether the LCD is currently in rotated mode.
	Rotated() bool

	// SetClock overwrites the RTC registers.
	SetClock(regs ClockRegisters)

	// StoreByte writes one byte of general RAM.
	StoreByte(addr uint32, value uint8)

	// Firmware returns the firmware image mapped on the bus.
	Firmware() *Firmware

	// AttachFirmware maps a firmware image on the bus.
	AttachFirmware(fw *Firmware)

	// Storage returns a copy of the current flash contents.
	Storage() []byte

	// LoadStorage overwrites the flash contents.
	LoadStorage(data []byte)

	// AttachAudio replaces the sink receiving DAC samples.
	AttachAudio(sink AudioSink)

	// EncodeState writes the complete machine state, excluding the firmware
	// image and the audio sink, to w.
	EncodeState(w io.Writer) error
}
