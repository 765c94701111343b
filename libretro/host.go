package libretro

/*
#include "libretro.h"
#include "cfuncs.h"
*/
import "C"
import (
	"time"
	"unsafe"

	"github.com/user-none/pockystation/session"
)

// retroHost implements session.Host over the frontend callbacks.
type retroHost struct {
	buttons map[session.Control]C.uint
	keys    map[string]*C.char
}

var _ session.Host = (*retroHost)(nil)

func newRetroHost(mapping []RetropadMapping) *retroHost {
	h := &retroHost{
		buttons: make(map[session.Control]C.uint, len(mapping)),
		keys:    make(map[string]*C.char, len(optKeys)),
	}
	for _, m := range mapping {
		h.buttons[m.Control] = C.uint(m.RetroID)
	}
	for i, opt := range session.Options {
		if i < len(optKeys) {
			h.keys[opt.Key] = optKeys[i]
		}
	}
	return h
}

func (h *retroHost) SystemDirectory() (string, bool) {
	var dir *C.char
	if !C.call_environ_cb(C.RETRO_ENVIRONMENT_GET_SYSTEM_DIRECTORY, unsafe.Pointer(&dir)) || dir == nil {
		return "", false
	}
	return C.GoString(dir), true
}

func (h *retroHost) ControlPressed(port int, c session.Control) bool {
	id, ok := h.buttons[c]
	if !ok {
		return false
	}
	return C.call_input_state_cb(C.uint(port), C.RETRO_DEVICE_JOYPAD, 0, id) != 0
}

func (h *retroHost) SetPixelFormat(format session.PixelFormat) bool {
	var pixelFormat C.int
	switch format {
	case session.PixelFormatXRGB8888:
		pixelFormat = C.RETRO_PIXEL_FORMAT_XRGB8888
	default:
		return false
	}
	return bool(C.call_environ_cb(C.RETRO_ENVIRONMENT_SET_PIXEL_FORMAT, unsafe.Pointer(&pixelFormat)))
}

func (h *retroHost) VideoRefresh(frame []uint32, width, height int) {
	if len(frame) == 0 {
		return
	}
	C.call_video_cb(unsafe.Pointer(&frame[0]), C.uint(width), C.uint(height), C.size_t(width*4))
}

func (h *retroHost) AudioSampleBatch(samples []int16) {
	if len(samples) < 2 {
		return
	}
	C.call_audio_batch_cb((*C.int16_t)(unsafe.Pointer(&samples[0])), C.size_t(len(samples)/2))
}

func (h *retroHost) Variable(key string) (string, bool) {
	cKey, ok := h.keys[key]
	if !ok {
		return "", false
	}
	var v C.struct_retro_variable
	v.key = cKey
	if !C.call_environ_cb(C.RETRO_ENVIRONMENT_GET_VARIABLE, unsafe.Pointer(&v)) || v.value == nil {
		return "", false
	}
	return C.GoString(v.value), true
}

func (h *retroHost) Now() time.Time {
	return time.Now()
}
