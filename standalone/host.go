//go:build !libretro

package standalone

import (
	"time"

	"github.com/user-none/pockystation/session"
)

// audioOutput receives flushed audio blocks.
type audioOutput interface {
	AudioSampleBatch(samples []int16)
}

// emuHost implements session.Host for the standalone window. Every method
// runs on the emulation goroutine.
type emuHost struct {
	systemDir string
	input     *SharedInput
	fb        *SharedFramebuffer
	outputs   []audioOutput
	options   map[string]string
	now       func() time.Time

	rgba []byte
}

var _ session.Host = (*emuHost)(nil)

func newEmuHost(systemDir string, input *SharedInput, fb *SharedFramebuffer, options map[string]string, outputs ...audioOutput) *emuHost {
	w, h := fb.Size()
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[k] = v
	}
	return &emuHost{
		systemDir: systemDir,
		input:     input,
		fb:        fb,
		outputs:   outputs,
		options:   opts,
		now:       time.Now,
		rgba:      make([]byte, w*h*4),
	}
}

func (h *emuHost) SystemDirectory() (string, bool) {
	return h.systemDir, h.systemDir != ""
}

// ControlPressed only knows one controller port.
func (h *emuHost) ControlPressed(port int, c session.Control) bool {
	return port == 0 && h.input.Pressed(c)
}

func (h *emuHost) SetPixelFormat(format session.PixelFormat) bool {
	return format == session.PixelFormatXRGB8888
}

// VideoRefresh converts XRGB8888 to RGBA and publishes the frame.
func (h *emuHost) VideoRefresh(frame []uint32, width, height int) {
	n := width * height
	if n*4 > len(h.rgba) || n > len(frame) {
		return
	}
	for i, px := range frame[:n] {
		j := i * 4
		h.rgba[j] = byte(px >> 16)
		h.rgba[j+1] = byte(px >> 8)
		h.rgba[j+2] = byte(px)
		h.rgba[j+3] = 0xFF
	}
	h.fb.Update(h.rgba[:n*4])
}

func (h *emuHost) AudioSampleBatch(samples []int16) {
	for _, out := range h.outputs {
		out.AudioSampleBatch(samples)
	}
}

func (h *emuHost) Variable(key string) (string, bool) {
	v, ok := h.options[key]
	return v, ok
}

func (h *emuHost) Now() time.Time {
	return h.now()
}
