//go:build !libretro

package standalone

import (
	"sync"

	"github.com/user-none/pockystation/session"
)

// SharedInput holds the pressed controls as a bitmask (bit n is
// session.Control n), written by the ebiten thread and read by the
// emulation goroutine.
type SharedInput struct {
	mu       sync.Mutex
	controls uint32
}

// Set replaces the pressed controls.
func (si *SharedInput) Set(controls uint32) {
	si.mu.Lock()
	si.controls = controls
	si.mu.Unlock()
}

// Read returns the pressed controls.
func (si *SharedInput) Read() uint32 {
	si.mu.Lock()
	c := si.controls
	si.mu.Unlock()
	return c
}

// Pressed reports whether c is held.
func (si *SharedInput) Pressed(c session.Control) bool {
	if c < 0 || c >= 32 {
		return false
	}
	return si.Read()&(1<<uint(c)) != 0
}

// SharedFramebuffer holds RGBA pixels written by the emulation goroutine
// and read by ebiten's Draw. Read hands out a separate copy so Draw never
// races the next Update.
type SharedFramebuffer struct {
	mu          sync.Mutex
	width       int
	height      int
	writePixels []byte
	readPixels  []byte
	frames      uint64
}

// NewSharedFramebuffer allocates a width x height RGBA framebuffer.
func NewSharedFramebuffer(width, height int) *SharedFramebuffer {
	size := width * height * 4
	return &SharedFramebuffer{
		width:       width,
		height:      height,
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// Update copies one frame of RGBA pixels. Short input leaves the tail of
// the previous frame in place.
func (sf *SharedFramebuffer) Update(pixels []byte) {
	sf.mu.Lock()
	copy(sf.writePixels, pixels)
	sf.frames++
	sf.mu.Unlock()
}

// Read returns a snapshot of the latest frame and the number of frames
// delivered so far. The snapshot is valid until the next Read.
func (sf *SharedFramebuffer) Read() (pixels []byte, frames uint64) {
	sf.mu.Lock()
	copy(sf.readPixels, sf.writePixels)
	frames = sf.frames
	sf.mu.Unlock()
	return sf.readPixels, frames
}

// Size returns the framebuffer dimensions in pixels.
func (sf *SharedFramebuffer) Size() (width, height int) {
	return sf.width, sf.height
}

// EmuControl coordinates pausing and stopping the emulation goroutine from
// the ebiten thread.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewEmuControl creates a control in the running state.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until it
// has. It returns at once if a pause is already pending or the goroutine
// was stopped.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.stopped || ec.pauseReq {
		return
	}
	ec.pauseReq = true
	for !ec.paused && !ec.stopped {
		ec.cond.Wait()
	}
}

// RequestResume lets a paused emulation goroutine continue.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. It
// blocks while a pause is requested and returns false once the goroutine
// should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	for ec.pauseReq && !ec.stopped {
		ec.paused = true
		ec.cond.Broadcast()
		ec.cond.Wait()
	}
	ec.paused = false
	return !ec.stopped
}

// Stop tells the emulation goroutine to exit, releasing it if paused.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopped = true
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// ShouldRun reports whether Stop has not been called.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return !ec.stopped
}

// IsPaused reports whether the emulation goroutine is parked in CheckPause.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.paused
}
