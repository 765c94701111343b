package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/pockystation/engine"
	"github.com/user-none/pockystation/romloader"
)

func TestNew(t *testing.T) {
	s, host, _ := newTestSession(t)

	if s.State() != StateLoaded {
		t.Errorf("State = %v, want %v", s.State(), StateLoaded)
	}
	if host.formatCalls != 1 {
		t.Errorf("SetPixelFormat calls = %d, want 1", host.formatCalls)
	}
	if s.Config() != DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", s.Config())
	}
	if s.SerializeSize() <= stateHeaderSize {
		t.Errorf("SerializeSize = %d, want more than the header", s.SerializeSize())
	}

	m := fakeOf(t, s)
	if m.fw == nil || m.fw.Len() != fakeFirmwareSize {
		t.Fatal("firmware not attached")
	}
	storage := s.Storage()
	if len(storage) != fakeStorageSize {
		t.Fatalf("storage length = %d, want %d", len(storage), fakeStorageSize)
	}
	if storage[10] != 10 {
		t.Errorf("storage[10] = %d, want 10", storage[10])
	}
}

func TestNewStorageSizeMismatch(t *testing.T) {
	systemDir, storagePath := writeArtifacts(t)
	if err := os.WriteFile(storagePath, make([]byte, fakeStorageSize-1), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(&fakeFactory{}, newFakeHost(systemDir), storagePath, discardLogger())
	if !errors.Is(err, romloader.ErrSizeMismatch) {
		t.Fatalf("error = %v, want ErrSizeMismatch", err)
	}
}

func TestNewRejectedPixelFormat(t *testing.T) {
	systemDir, storagePath := writeArtifacts(t)
	host := newFakeHost(systemDir)
	host.rejectFormat = true

	_, err := New(&fakeFactory{}, host, storagePath, discardLogger())
	if !errors.Is(err, ErrHostRejectedFormat) {
		t.Fatalf("error = %v, want ErrHostRejectedFormat", err)
	}
}

func TestNewFirmwareMissing(t *testing.T) {
	systemDir, storagePath := writeArtifacts(t)
	if err := os.Remove(filepath.Join(systemDir, "fw.bin")); err != nil {
		t.Fatal(err)
	}

	_, err := New(&fakeFactory{}, newFakeHost(systemDir), storagePath, discardLogger())
	if !errors.Is(err, romloader.ErrFirmwareNotFound) {
		t.Fatalf("error = %v, want ErrFirmwareNotFound", err)
	}
}

func TestNewNoSystemDirectory(t *testing.T) {
	systemDir, storagePath := writeArtifacts(t)
	host := newFakeHost(systemDir)
	host.noSystemDir = true

	_, err := New(&fakeFactory{}, host, storagePath, discardLogger())
	if !errors.Is(err, romloader.ErrFirmwareNotFound) {
		t.Fatalf("error = %v, want ErrFirmwareNotFound", err)
	}
}

func TestNewMachineError(t *testing.T) {
	systemDir, storagePath := writeArtifacts(t)

	_, err := New(&fakeFactory{newErr: errFake}, newFakeHost(systemDir), storagePath, discardLogger())
	if !errors.Is(err, errFake) {
		t.Fatalf("error = %v, want errFake", err)
	}
}

func TestStepFrame(t *testing.T) {
	s, host, _ := newTestSession(t)
	m := fakeOf(t, s)

	s.StepFrame()

	if len(host.frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(host.frames))
	}
	if s.State() != StateRunning {
		t.Errorf("State = %v, want %v", s.State(), StateRunning)
	}
	if want := uint64(fakeClockHz / 60); m.ticks != want {
		t.Errorf("ticks = %d, want %d", m.ticks, want)
	}

	fb := m.Framebuffer()
	frame := host.lastFrame(t)
	if len(frame) != engine.ScreenWidth*engine.ScreenHeight {
		t.Fatalf("frame length = %d", len(frame))
	}
	for y := 0; y < engine.ScreenHeight; y++ {
		for x := 0; x < engine.ScreenWidth; x++ {
			want := uint32(0xFFFFFF)
			if fb[y]&(1<<uint(x)) != 0 {
				want = 0
			}
			if got := frame[y*engine.ScreenWidth+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %06x, want %06x", x, y, got, want)
			}
		}
	}
}

func TestStepFrameRotation(t *testing.T) {
	tests := []struct {
		name     string
		option   string
		rotated  bool
		wantFlip bool
	}{
		{"rotated and honored", "enabled", true, true},
		{"rotated but ignored", "disabled", true, false},
		{"not rotated", "enabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, host, _ := newTestSession(t)
			host.variables[OptionRotation] = tt.option
			s.RefreshConfiguration()
			m := fakeOf(t, s)
			m.rotated = tt.rotated

			s.StepFrame()

			fb := m.Framebuffer()
			frame := host.lastFrame(t)
			for y := 0; y < engine.ScreenHeight; y++ {
				for x := 0; x < engine.ScreenWidth; x++ {
					k := y*engine.ScreenWidth + x
					if tt.wantFlip {
						k = len(frame) - k - 1
					}
					want := uint32(0xFFFFFF)
					if fb[y]&(1<<uint(x)) != 0 {
						want = 0
					}
					if frame[k] != want {
						t.Fatalf("pixel (%d,%d) at %d = %06x, want %06x", x, y, k, frame[k], want)
					}
				}
			}
		})
	}
}

func TestStepFrameInput(t *testing.T) {
	s, host, _ := newTestSession(t)
	m := fakeOf(t, s)

	host.pressed[ControlDown] = true
	s.StepFrame()
	if m.irqs != 1<<uint(engine.IrqDownButton) {
		t.Errorf("irqs = %05b, want only Down", m.irqs)
	}
}

func TestStepFrameRTCSync(t *testing.T) {
	s, host, _ := newTestSession(t)
	host.variables[OptionRTCSync] = "enabled"
	s.RefreshConfiguration()
	m := fakeOf(t, s)

	s.StepFrame()
	if m.clocked != 1 {
		t.Fatalf("clock syncs after first frame = %d, want 1", m.clocked)
	}
	if m.clock.Minutes != 0x45 {
		t.Errorf("Minutes = 0x%02x, want 0x45", m.clock.Minutes)
	}

	for i := 0; i < rtcSyncPeriod-1; i++ {
		s.StepFrame()
	}
	if m.clocked != 1 {
		t.Fatalf("clock syncs after %d frames = %d, want 1", rtcSyncPeriod, m.clocked)
	}

	s.StepFrame()
	if m.clocked != 2 {
		t.Errorf("clock syncs after %d frames = %d, want 2", rtcSyncPeriod+1, m.clocked)
	}
}

func TestStepFrameRTCSyncDisabled(t *testing.T) {
	s, _, _ := newTestSession(t)
	m := fakeOf(t, s)

	for i := 0; i < rtcSyncPeriod*2; i++ {
		s.StepFrame()
	}
	if m.clocked != 0 {
		t.Errorf("clock syncs = %d, want 0", m.clocked)
	}
}

func TestStepFrameAudio(t *testing.T) {
	s, host, _ := newTestSession(t)

	// The fake pushes 10 samples per frame, so 1024 samples take 103 frames.
	for i := 0; i < 102; i++ {
		s.StepFrame()
	}
	if len(host.batches) != 0 {
		t.Fatalf("batches = %d, want 0", len(host.batches))
	}
	s.StepFrame()
	if len(host.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(host.batches))
	}
}

func TestReset(t *testing.T) {
	s, host, _ := newTestSession(t)
	host.variables[OptionRTCSync] = "enabled"
	s.RefreshConfiguration()
	m := fakeOf(t, s)
	s.StepFrame()

	s.Reset()

	if m.resets != 1 {
		t.Errorf("resets = %d, want 1", m.resets)
	}
	if s.State() != StateRunning {
		t.Errorf("State = %v, want %v", s.State(), StateRunning)
	}
	if !s.Config().RTCSync {
		t.Error("configuration lost on reset")
	}
	if m.fw == nil {
		t.Error("firmware lost on reset")
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateUninitialized: "Uninitialized",
		StateLoaded:        "Loaded",
		StateRunning:       "Running",
		StateResetting:     "Resetting",
		State(42):          "Unknown",
	}
	for s, want := range states {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
