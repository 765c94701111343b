// Package libretro exposes a session as a libretro core. A core binary
// registers its engine with RegisterFactory from init() and is built with
// -buildmode=c-shared.
package libretro

/*
#include "libretro.h"
#include <stdlib.h>
#include "cfuncs.h"
*/
import "C"
import (
	"log/slog"
	"os"
	"strings"
	"unsafe"

	"github.com/user-none/pockystation/engine"
	"github.com/user-none/pockystation/session"
)

// Libretro joypad button ID constants for use in RetropadMapping.
const (
	JoypadB      = C.RETRO_DEVICE_ID_JOYPAD_B
	JoypadY      = C.RETRO_DEVICE_ID_JOYPAD_Y
	JoypadSelect = C.RETRO_DEVICE_ID_JOYPAD_SELECT
	JoypadStart  = C.RETRO_DEVICE_ID_JOYPAD_START
	JoypadUp     = C.RETRO_DEVICE_ID_JOYPAD_UP
	JoypadDown   = C.RETRO_DEVICE_ID_JOYPAD_DOWN
	JoypadLeft   = C.RETRO_DEVICE_ID_JOYPAD_LEFT
	JoypadRight  = C.RETRO_DEVICE_ID_JOYPAD_RIGHT
	JoypadA      = C.RETRO_DEVICE_ID_JOYPAD_A
	JoypadX      = C.RETRO_DEVICE_ID_JOYPAD_X
	JoypadL      = C.RETRO_DEVICE_ID_JOYPAD_L
	JoypadR      = C.RETRO_DEVICE_ID_JOYPAD_R
	JoypadL2     = C.RETRO_DEVICE_ID_JOYPAD_L2
	JoypadR2     = C.RETRO_DEVICE_ID_JOYPAD_R2
	JoypadL3     = C.RETRO_DEVICE_ID_JOYPAD_L3
	JoypadR3     = C.RETRO_DEVICE_ID_JOYPAD_R3
)

// RetropadMapping maps a libretro button ID to a session control.
type RetropadMapping struct {
	RetroID int // RETRO_DEVICE_ID_JOYPAD_* constant
	Control session.Control
}

// DefaultMapping puts Action on A and the handheld d-pad on the d-pad.
var DefaultMapping = []RetropadMapping{
	{JoypadA, session.ControlAction},
	{JoypadUp, session.ControlUp},
	{JoypadDown, session.ControlDown},
	{JoypadLeft, session.ControlLeft},
	{JoypadRight, session.ControlRight},
}

const (
	frameRate   = 60
	aspectRatio = 1.0
)

var (
	factory  engine.Factory
	inputMap []RetropadMapping
	sysInfo  engine.SystemInfo

	sess   *session.Session
	logger = slog.Default()

	// Pre-allocated C strings (allocated once, kept for the process lifetime)
	libNameStr   *C.char
	libVerStr    *C.char
	validExtStr  *C.char
	stringsReady bool

	// Option keys and "Label; default|other" values, indexed like session.Options
	optKeys []*C.char
	optVals []*C.char
)

// RegisterFactory sets the engine and input mapping used by the libretro
// core. A nil mapping uses DefaultMapping. Must be called during init()
// before any retro_* function runs.
func RegisterFactory(f engine.Factory, mapping []RetropadMapping) {
	factory = f
	if mapping == nil {
		mapping = DefaultMapping
	}
	inputMap = mapping
	sysInfo = f.SystemInfo()
}

//export retro_set_environment
func retro_set_environment(cb C.retro_environment_t) {
	C._retro_set_environment(cb)
	ensureOptionStrings()
	setVariables()
}

//export retro_set_video_refresh
func retro_set_video_refresh(cb C.retro_video_refresh_t) {
	C._retro_set_video_refresh(cb)
}

//export retro_set_audio_sample
func retro_set_audio_sample(cb C.retro_audio_sample_t) {
	C._retro_set_audio_sample(cb)
}

//export retro_set_audio_sample_batch
func retro_set_audio_sample_batch(cb C.retro_audio_sample_batch_t) {
	C._retro_set_audio_sample_batch(cb)
}

//export retro_set_input_poll
func retro_set_input_poll(cb C.retro_input_poll_t) {
	C._retro_set_input_poll(cb)
}

//export retro_set_input_state
func retro_set_input_state(cb C.retro_input_state_t) {
	C._retro_set_input_state(cb)
}

//export retro_init
func retro_init() {
	ensureStrings()
	ensureOptionStrings()
	initLogging()
}

//export retro_deinit
func retro_deinit() {
	sess = nil
}

//export retro_api_version
func retro_api_version() C.uint {
	return C.RETRO_API_VERSION
}

//export retro_get_system_info
func retro_get_system_info(info *C.struct_retro_system_info) {
	ensureStrings()
	info.library_name = libNameStr
	info.library_version = libVerStr
	info.valid_extensions = validExtStr
	// The storage image is opened by path so archives can be unpacked here.
	info.need_fullpath = C.bool(true)
	info.block_extract = C.bool(true)
}

//export retro_get_system_av_info
func retro_get_system_av_info(info *C.struct_retro_system_av_info) {
	info.timing.fps = C.double(frameRate)
	info.timing.sample_rate = C.double(sysInfo.SampleRate)

	info.geometry.base_width = C.uint(engine.ScreenWidth)
	info.geometry.base_height = C.uint(engine.ScreenHeight)
	info.geometry.max_width = C.uint(engine.ScreenWidth)
	info.geometry.max_height = C.uint(engine.ScreenHeight)
	info.geometry.aspect_ratio = C.float(aspectRatio)
}

//export retro_set_controller_port_device
func retro_set_controller_port_device(port C.uint, device C.uint) {
}

//export retro_reset
func retro_reset() {
	if sess == nil {
		return
	}
	sess.Reset()
}

//export retro_run
func retro_run() {
	if sess == nil {
		return
	}

	// Check for option changes
	var updated C.bool
	if C.call_environ_cb(C.RETRO_ENVIRONMENT_GET_VARIABLE_UPDATE, unsafe.Pointer(&updated)) && updated {
		sess.RefreshConfiguration()
	}

	C.call_input_poll_cb()

	sess.StepFrame()
}

//export retro_serialize_size
func retro_serialize_size() C.size_t {
	if sess == nil {
		return 0
	}
	return C.size_t(sess.SerializeSize())
}

//export retro_serialize
func retro_serialize(data unsafe.Pointer, size C.size_t) C.bool {
	if sess == nil || data == nil {
		return C.bool(false)
	}

	dst := unsafe.Slice((*byte)(data), size)
	if _, err := sess.Serialize(dst); err != nil {
		return C.bool(false)
	}
	return C.bool(true)
}

//export retro_unserialize
func retro_unserialize(data unsafe.Pointer, size C.size_t) C.bool {
	if sess == nil || data == nil {
		return C.bool(false)
	}

	state := make([]byte, size)
	src := unsafe.Slice((*byte)(data), size)
	copy(state, src)

	if err := sess.Deserialize(state); err != nil {
		return C.bool(false)
	}
	return C.bool(true)
}

//export retro_cheat_reset
func retro_cheat_reset() {
}

//export retro_cheat_set
func retro_cheat_set(index C.uint, enabled C.bool, code *C.char) {
}

//export retro_load_game
func retro_load_game(game *C.struct_retro_game_info) C.bool {
	if game == nil || game.path == nil || factory == nil {
		return C.bool(false)
	}

	path := C.GoString(game.path)
	logger.Info("loading", "path", path)

	s, err := session.New(factory, newRetroHost(inputMap), path, logger)
	if err != nil {
		return C.bool(false)
	}
	sess = s
	return C.bool(true)
}

//export retro_load_game_special
func retro_load_game_special(gameType C.uint, info *C.struct_retro_game_info, numInfo C.size_t) C.bool {
	return C.bool(false)
}

//export retro_unload_game
func retro_unload_game() {
	sess = nil
}

//export retro_get_region
func retro_get_region() C.uint {
	return C.RETRO_REGION_NTSC
}

//export retro_get_memory_data
func retro_get_memory_data(id C.uint) unsafe.Pointer {
	return nil
}

//export retro_get_memory_size
func retro_get_memory_size(id C.uint) C.size_t {
	return 0
}

// initLogging routes slog through the frontend log interface, or stderr
// when the frontend has none.
func initLogging() {
	if C.init_log_cb() {
		logger = slog.New(newRetroHandler(retroLog, slog.LevelDebug))
		logger.Info("logging initialized")
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		logger.Warn("couldn't initialize libretro logging, using stderr")
	}
}

// retroLog hands one formatted line to the frontend.
func retroLog(level retroLevel, msg string) {
	cMsg := C.CString(msg)
	C.call_log_cb(C.enum_retro_log_level(level), cMsg)
	C.free(unsafe.Pointer(cMsg))
}

// ensureStrings allocates C strings for system info once.
func ensureStrings() {
	if stringsReady {
		return
	}
	libNameStr = C.CString(sysInfo.Name)
	libVerStr = C.CString(sysInfo.Version)
	validExtStr = C.CString(validExtensions(sysInfo.Extensions))
	stringsReady = true
}

// ensureOptionStrings allocates C strings for core options once.
func ensureOptionStrings() {
	if optKeys != nil {
		return
	}
	for _, opt := range session.Options {
		optKeys = append(optKeys, C.CString(opt.Key))
		optVals = append(optVals, C.CString(variableValue(opt)))
	}
}

// setVariables registers all core options with the frontend.
func setVariables() {
	options := make([]C.struct_retro_variable, len(optKeys)+1)
	for i := range optKeys {
		options[i] = C.struct_retro_variable{key: optKeys[i], value: optVals[i]}
	}

	// Nil terminator
	options[len(optKeys)] = C.struct_retro_variable{key: nil, value: nil}

	C.call_environ_cb(C.RETRO_ENVIRONMENT_SET_VARIABLES, unsafe.Pointer(&options[0]))
}

// variableValue builds the libretro "Label; default|other" description.
func variableValue(opt session.Option) string {
	return opt.Label + "; " + strings.Join(reorderDefault(opt.Values, opt.Default), "|")
}

// validExtensions formats extensions the way retro_system_info expects:
// no leading dots, separated by '|'.
func validExtensions(exts []string) string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, strings.TrimPrefix(e, "."))
	}
	return strings.Join(out, "|")
}

// reorderDefault moves the default value to the front of a values slice.
func reorderDefault(values []string, def string) []string {
	result := make([]string, 0, len(values))
	result = append(result, def)
	for _, v := range values {
		if v != def {
			result = append(result, v)
		}
	}
	return result
}
