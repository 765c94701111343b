package session

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user-none/pockystation/engine"
)

const (
	fakeFirmwareSize = 128
	fakeStorageSize  = 256
	fakeClockHz      = 60 * 1000
	fakeCentury      = 0x1f0
)

// fakeFactory builds fakeMachines.
type fakeFactory struct {
	newErr    error
	decodeErr error
}

func (f *fakeFactory) SystemInfo() engine.SystemInfo {
	return engine.SystemInfo{
		Name:           "fake",
		Version:        "test",
		Extensions:     []string{".mcr", ".gme"},
		FirmwareSize:   fakeFirmwareSize,
		StorageSize:    fakeStorageSize,
		MasterClockHz:  fakeClockHz,
		SampleRate:     32768,
		CenturyAddress: fakeCentury,
	}
}

func (f *fakeFactory) RecognizeFirmware(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "PKFW"
}

func (f *fakeFactory) RecognizeStorage(data []byte) bool {
	return true
}

func (f *fakeFactory) NewMachine(fw *engine.Firmware, storage []byte, sink engine.AudioSink) (engine.Machine, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	m := &fakeMachine{
		fw:      fw,
		sink:    sink,
		storage: append([]byte(nil), storage...),
		ram:     make(map[uint32]uint8),
	}
	return m, nil
}

func (f *fakeFactory) DecodeMachine(r io.Reader) (engine.Machine, error) {
	if f.decodeErr != nil {
		return nil, f.decodeErr
	}
	m := &fakeMachine{ram: make(map[uint32]uint8)}
	var hdr struct {
		Ticks   uint64
		Irqs    uint8
		Rotated uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	m.ticks = hdr.Ticks
	m.irqs = hdr.Irqs
	m.rotated = hdr.Rotated != 0
	m.storage = make([]byte, fakeStorageSize)
	if _, err := io.ReadFull(r, m.storage); err != nil {
		return nil, err
	}
	return m, nil
}

// fakeMachine derives its framebuffer from the ticks run and the interrupt
// lines, and pushes one audio sample per 100 ticks.
type fakeMachine struct {
	fw      *engine.Firmware
	sink    engine.AudioSink
	storage []byte
	ram     map[uint32]uint8

	ticks   uint64
	irqs    uint8
	rotated bool
	clock   engine.ClockRegisters
	clocked int
	resets  int

	encodeErr error
}

func (m *fakeMachine) RunTicks(cycles uint32) {
	for i := uint32(0); i < cycles; i += 100 {
		if m.sink != nil {
			m.sink.PushSample(int16(m.ticks))
		}
		m.ticks += 100
	}
}

func (m *fakeMachine) Reset() {
	m.resets++
	m.ticks = 0
}

func (m *fakeMachine) SetInterrupt(irq engine.Interrupt, active bool) {
	if active {
		m.irqs |= 1 << uint(irq)
	} else {
		m.irqs &^= 1 << uint(irq)
	}
}

func (m *fakeMachine) Framebuffer() [engine.ScreenHeight]uint32 {
	var fb [engine.ScreenHeight]uint32
	for y := range fb {
		fb[y] = uint32(m.ticks)*uint32(y+1) ^ uint32(m.irqs)<<uint(y%8)
	}
	return fb
}

func (m *fakeMachine) Rotated() bool { return m.rotated }

func (m *fakeMachine) SetClock(regs engine.ClockRegisters) {
	m.clock = regs
	m.clocked++
}

func (m *fakeMachine) StoreByte(addr uint32, value uint8) {
	m.ram[addr] = value
}

func (m *fakeMachine) Firmware() *engine.Firmware { return m.fw }

func (m *fakeMachine) AttachFirmware(fw *engine.Firmware) { m.fw = fw }

func (m *fakeMachine) Storage() []byte {
	return append([]byte(nil), m.storage...)
}

func (m *fakeMachine) LoadStorage(data []byte) {
	m.storage = append(m.storage[:0], data...)
}

func (m *fakeMachine) AttachAudio(sink engine.AudioSink) { m.sink = sink }

func (m *fakeMachine) EncodeState(w io.Writer) error {
	if m.encodeErr != nil {
		return m.encodeErr
	}
	var rotated uint8
	if m.rotated {
		rotated = 1
	}
	hdr := struct {
		Ticks   uint64
		Irqs    uint8
		Rotated uint8
	}{m.ticks, m.irqs, rotated}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	_, err := w.Write(m.storage)
	return err
}

// fakeHost records everything the session hands it.
type fakeHost struct {
	systemDir    string
	noSystemDir  bool
	rejectFormat bool

	pressed   map[Control]bool
	variables map[string]string
	now       time.Time

	frames      [][]uint32
	batches     [][]int16
	formatCalls int
}

func newFakeHost(systemDir string) *fakeHost {
	return &fakeHost{
		systemDir: systemDir,
		pressed:   make(map[Control]bool),
		variables: make(map[string]string),
		now:       time.Date(2024, time.March, 9, 13, 45, 30, 0, time.UTC),
	}
}

func (h *fakeHost) SystemDirectory() (string, bool) {
	if h.noSystemDir {
		return "", false
	}
	return h.systemDir, true
}

func (h *fakeHost) ControlPressed(port int, c Control) bool {
	return port == inputPort && h.pressed[c]
}

func (h *fakeHost) SetPixelFormat(format PixelFormat) bool {
	h.formatCalls++
	return !h.rejectFormat && format == PixelFormatXRGB8888
}

func (h *fakeHost) VideoRefresh(frame []uint32, width, height int) {
	if width != engine.ScreenWidth || height != engine.ScreenHeight {
		panic("unexpected frame size")
	}
	h.frames = append(h.frames, append([]uint32(nil), frame...))
}

func (h *fakeHost) AudioSampleBatch(samples []int16) {
	h.batches = append(h.batches, append([]int16(nil), samples...))
}

func (h *fakeHost) Variable(key string) (string, bool) {
	v, ok := h.variables[key]
	return v, ok
}

func (h *fakeHost) Now() time.Time { return h.now }

func (h *fakeHost) lastFrame(t *testing.T) []uint32 {
	t.Helper()
	if len(h.frames) == 0 {
		t.Fatal("no frame delivered")
	}
	return h.frames[len(h.frames)-1]
}

var errFake = errors.New("fake failure")

// writeArtifacts puts a firmware image in a new system directory and a
// storage image next to it, returning both paths.
func writeArtifacts(t *testing.T) (systemDir, storagePath string) {
	t.Helper()
	root := t.TempDir()
	systemDir = filepath.Join(root, "system")
	if err := os.Mkdir(systemDir, 0755); err != nil {
		t.Fatal(err)
	}

	fw := make([]byte, fakeFirmwareSize)
	copy(fw, "PKFW")
	if err := os.WriteFile(filepath.Join(systemDir, "fw.bin"), fw, 0644); err != nil {
		t.Fatal(err)
	}

	storage := make([]byte, fakeStorageSize)
	for i := range storage {
		storage[i] = byte(i)
	}
	storagePath = filepath.Join(root, "card.mcr")
	if err := os.WriteFile(storagePath, storage, 0644); err != nil {
		t.Fatal(err)
	}
	return systemDir, storagePath
}

// newTestSession builds a session over the fake engine.
func newTestSession(t *testing.T) (*Session, *fakeHost, *fakeFactory) {
	t.Helper()
	systemDir, storagePath := writeArtifacts(t)
	host := newFakeHost(systemDir)
	factory := &fakeFactory{}
	s, err := New(factory, host, storagePath, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, host, factory
}

func fakeOf(t *testing.T, s *Session) *fakeMachine {
	t.Helper()
	m, ok := s.machine.(*fakeMachine)
	if !ok {
		t.Fatalf("machine is %T, want *fakeMachine", s.machine)
	}
	return m
}
