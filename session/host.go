package session

import "time"

// Control is a host input control polled once per frame.
type Control int

// Controls mapped onto the handheld buttons.
const (
	ControlAction Control = iota
	ControlUp
	ControlDown
	ControlLeft
	ControlRight
)

// String returns the name of the control.
func (c Control) String() string {
	switch c {
	case ControlAction:
		return "Action"
	case ControlUp:
		return "Up"
	case ControlDown:
		return "Down"
	case ControlLeft:
		return "Left"
	case ControlRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// PixelFormat is a video output format negotiated with the host.
type PixelFormat int

const (
	// PixelFormatXRGB8888 is one packed 32-bit pixel per element, top byte unused.
	PixelFormatXRGB8888 PixelFormat = iota
)

// Host is the runtime driving a session. Every method is called from the
// goroutine that drives the session.
type Host interface {
	// SystemDirectory returns the directory searched for firmware.
	SystemDirectory() (string, bool)

	// ControlPressed reports whether control c is held on the given
	// controller port.
	ControlPressed(port int, c Control) bool

	// SetPixelFormat requests a video format, returning false if rejected.
	SetPixelFormat(format PixelFormat) bool

	// VideoRefresh delivers one complete frame. frame is only valid for
	// the duration of the call.
	VideoRefresh(frame []uint32, width, height int)

	// AudioSampleBatch delivers interleaved stereo 16-bit samples. samples
	// is only valid for the duration of the call.
	AudioSampleBatch(samples []int16)

	// Variable returns the current value of a configuration option.
	Variable(key string) (string, bool)

	// Now returns the host wall-clock time.
	Now() time.Time
}
