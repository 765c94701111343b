// Package session drives one emulated PocketStation for a host runtime. It
// loads the firmware and storage images, steps the machine one video frame
// at a time, maps host input onto button interrupts, batches DAC audio,
// keeps the RTC in sync with the host clock and saves and restores machine
// state.
//
// A Session is not safe for concurrent use. The host calls every method
// from one goroutine, one call at a time.
package session

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/user-none/pockystation/engine"
	"github.com/user-none/pockystation/romloader"
)

// frameLen is the number of pixels in one output frame.
const frameLen = engine.ScreenWidth * engine.ScreenHeight

// Output pixel values.
const (
	pixelOff uint32 = 0xFFFFFF
	pixelOn  uint32 = 0x000000
)

// framesPerSecond is the host frame rate the machine is stepped at.
const framesPerSecond = 60

// State is the lifecycle state of a session.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateRunning
	StateResetting
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateLoaded:
		return "Loaded"
	case StateRunning:
		return "Running"
	case StateResetting:
		return "Resetting"
	default:
		return "Unknown"
	}
}

// Session owns one machine and everything bridging it to the host.
type Session struct {
	factory engine.Factory
	info    engine.SystemInfo
	host    Host
	logger  *slog.Logger

	machine engine.Machine
	config  Config
	state   State

	rtcCountdown int
	maxStateSize int

	frame [frameLen]uint32
}

// New loads the storage image at storagePath and a firmware image from the
// host system directory, then powers on a machine. Any failure aborts
// construction; no partial session is returned. A nil logger uses
// slog.Default().
func New(factory engine.Factory, host Host, storagePath string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info := factory.SystemInfo()

	if !host.SetPixelFormat(PixelFormatXRGB8888) {
		logger.Error("can't set pixel format to XRGB8888")
		return nil, ErrHostRejectedFormat
	}

	logger.Info("loading storage image", "path", storagePath)
	storage, err := romloader.LoadStorageImage(storagePath, info.StorageSize, info.Extensions, factory.RecognizeStorage)
	if err != nil {
		logger.Error("couldn't load storage image, bailing out", "err", err)
		return nil, fmt.Errorf("load storage image: %w", err)
	}

	dir, ok := host.SystemDirectory()
	if !ok {
		logger.Error("the host didn't give us a system directory, no firmware can be loaded")
		return nil, romloader.ErrFirmwareNotFound
	}
	fwData, _, err := romloader.FindFirmware([]string{dir}, info.FirmwareSize, factory.RecognizeFirmware, logger)
	if err != nil {
		logger.Error("couldn't find a firmware, bailing out", "dir", dir)
		return nil, err
	}

	m, err := factory.NewMachine(engine.NewFirmware(fwData), storage, newAudioBatcher(host))
	if err != nil {
		logger.Error("couldn't create machine", "err", err)
		return nil, fmt.Errorf("create machine: %w", err)
	}

	s := &Session{
		factory:      factory,
		info:         info,
		host:         host,
		logger:       logger,
		machine:      m,
		rtcCountdown: 1,
	}
	s.RefreshConfiguration()

	s.maxStateSize, err = probeStateSize(m)
	if err != nil {
		logger.Error("couldn't size save states", "err", err)
		return nil, err
	}

	s.state = StateLoaded
	return s, nil
}

// StepFrame runs the machine for one 60Hz frame and delivers the resulting
// picture to the host. It never fails.
func (s *Session) StepFrame() {
	applyInput(s.host, s.machine)

	if s.config.RTCSync {
		s.rtcCountdown--
		if s.rtcCountdown <= 0 {
			s.syncClock()
			s.rtcCountdown = rtcSyncPeriod
		}
	}

	s.machine.RunTicks(s.info.MasterClockHz / framesPerSecond)

	s.renderFrame()
	s.host.VideoRefresh(s.frame[:], engine.ScreenWidth, engine.ScreenHeight)

	s.state = StateRunning
}

// syncClock copies the host time into the RTC. A conversion failure skips
// this sync and is only logged.
func (s *Session) syncClock() {
	ht := HostTimeOf(s.host.Now())
	if err := syncClock(s.machine, s.info.CenturyAddress, ht); err != nil {
		s.logger.Error("RTC sync skipped", "err", err)
	}
}

// renderFrame converts the 1bpp LCD into XRGB8888. A set bit is a dark
// pixel. The picture is turned 180 degrees when rotation is honored and
// the LCD is rotated.
func (s *Session) renderFrame() {
	fb := s.machine.Framebuffer()
	rotate := s.config.Rotation && s.machine.Rotated()

	for y := 0; y < engine.ScreenHeight; y++ {
		row := fb[y]
		for x := 0; x < engine.ScreenWidth; x++ {
			k := y*engine.ScreenWidth + x
			if rotate {
				k = frameLen - k - 1
			}
			if (row>>uint(x))&1 == 0 {
				s.frame[k] = pixelOff
			} else {
				s.frame[k] = pixelOn
			}
		}
	}
}

// Reset resets the machine. Artifacts and configuration are kept.
func (s *Session) Reset() {
	s.state = StateResetting
	s.machine.Reset()
	s.state = StateRunning
}

// RefreshConfiguration re-reads the options from the host. Changes take
// effect on the next frame.
func (s *Session) RefreshConfiguration() {
	s.config = ReadConfig(s.host.Variable, s.logger)
}

// SerializeSize returns the buffer size Serialize needs. It is computed
// once when the session is created.
func (s *Session) SerializeSize() int {
	return s.maxStateSize
}

// Serialize writes the machine state into buf and returns the number of
// bytes written. buf should be at least SerializeSize bytes.
func (s *Session) Serialize(buf []byte) (int, error) {
	n, err := writeState(s.machine, buf)
	if err != nil {
		s.logger.Warn("couldn't serialize state", "err", err)
		return 0, err
	}
	s.state = StateRunning
	return n, nil
}

// Deserialize replaces the machine with the state in buf. The current
// firmware and storage contents are carried over into the restored machine
// and a new audio batcher is attached. On error the running machine is
// left untouched.
func (s *Session) Deserialize(buf []byte) error {
	payload, fwCRC, err := readState(buf)
	if err != nil {
		s.logger.Warn("couldn't deserialize state", "err", err)
		return err
	}

	m, err := s.factory.DecodeMachine(bytes.NewReader(payload))
	if err != nil {
		s.logger.Warn("couldn't deserialize state", "err", err)
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	fw := s.machine.Firmware()
	if fw != nil && fw.CRC32() != fwCRC {
		s.logger.Warn("save state was made with another firmware, keeping the current one",
			"state", fmt.Sprintf("%08x", fwCRC), "current", fmt.Sprintf("%08x", fw.CRC32()))
	}

	m.AttachFirmware(fw)
	m.LoadStorage(s.machine.Storage())
	m.AttachAudio(newAudioBatcher(s.host))

	s.machine = m
	s.state = StateRunning
	return nil
}

// Storage returns a copy of the current storage image contents.
func (s *Session) Storage() []byte {
	return s.machine.Storage()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Config returns the configuration in effect.
func (s *Session) Config() Config {
	return s.config
}

// Info returns the engine's system description.
func (s *Session) Info() engine.SystemInfo {
	return s.info
}
