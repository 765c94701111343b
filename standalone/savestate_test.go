//go:build !libretro

package standalone

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSaveStateManager(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())
	if m.GetCurrentSlot() != 0 {
		t.Errorf("initial slot should be 0, got %d", m.GetCurrentSlot())
	}
}

func TestNextSlot(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())

	for i := 1; i <= 10; i++ {
		m.NextSlot()
		expected := i % 10
		if m.GetCurrentSlot() != expected {
			t.Errorf("after %d NextSlot calls, expected slot %d, got %d", i, expected, m.GetCurrentSlot())
		}
	}
}

func TestPreviousSlot(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())

	// First PreviousSlot from 0 should wrap to 9
	m.PreviousSlot()
	if m.GetCurrentSlot() != 9 {
		t.Errorf("expected slot 9, got %d", m.GetCurrentSlot())
	}

	// Continue backwards
	expected := []int{8, 7, 6, 5, 4, 3, 2, 1, 0}
	for i, exp := range expected {
		m.PreviousSlot()
		if m.GetCurrentSlot() != exp {
			t.Errorf("step %d: expected slot %d, got %d", i, exp, m.GetCurrentSlot())
		}
	}
}

func TestNextPreviousSlotRoundTrip(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())

	// Go forward 7 slots
	for i := 0; i < 7; i++ {
		m.NextSlot()
	}
	if m.GetCurrentSlot() != 7 {
		t.Fatalf("expected slot 7, got %d", m.GetCurrentSlot())
	}

	// Go backward 7 slots
	for i := 0; i < 7; i++ {
		m.PreviousSlot()
	}
	if m.GetCurrentSlot() != 0 {
		t.Errorf("expected slot 0 after round trip, got %d", m.GetCurrentSlot())
	}
}

// fakeSerializer advertises a large buffer but only fills part of it,
// like a session does.
type fakeSerializer struct {
	state   []byte
	size    int
	loaded  []byte
	saveErr error
	loadErr error
}

func (f *fakeSerializer) SerializeSize() int {
	return f.size
}

func (f *fakeSerializer) Serialize(buf []byte) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	return copy(buf, f.state), nil
}

func (f *fakeSerializer) Deserialize(buf []byte) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append([]byte(nil), buf...)
	return nil
}

func TestSaveWritesReportedBytes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "card")
	m := NewSaveStateManager(dir)
	m.NextSlot()
	m.NextSlot()

	s := &fakeSerializer{state: []byte("PKSTATE-payload"), size: 4096}
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "state-2.state"))
	if err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if !bytes.Equal(data, s.state) {
		t.Errorf("state file = %q, want %q", data, s.state)
	}
	if !m.HasSave(2) || m.HasSave(0) {
		t.Errorf("HasSave(2) = %v, HasSave(0) = %v, want true, false", m.HasSave(2), m.HasSave(0))
	}
}

func TestLoadRestoresState(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())
	s := &fakeSerializer{state: []byte{1, 2, 3, 4}, size: 64}
	if err := m.Save(s); err != nil {
		t.Fatal(err)
	}

	if err := m.Load(s); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(s.loaded, s.state) {
		t.Errorf("loaded %v, want %v", s.loaded, s.state)
	}
}

func TestLoadEmptySlot(t *testing.T) {
	m := NewSaveStateManager(t.TempDir())
	m.PreviousSlot()

	err := m.Load(&fakeSerializer{})
	if !errors.Is(err, ErrNoSave) {
		t.Fatalf("expected ErrNoSave, got %v", err)
	}
	if err.Error() != "no save in slot 9" {
		t.Errorf("error = %q, want %q", err.Error(), "no save in slot 9")
	}
}

func TestSaveLoadErrors(t *testing.T) {
	errBoom := errors.New("boom")
	m := NewSaveStateManager(t.TempDir())

	if err := m.Save(&fakeSerializer{saveErr: errBoom}); !errors.Is(err, errBoom) {
		t.Errorf("Save error = %v, want wrapped boom", err)
	}
	if m.HasSave(0) {
		t.Error("failed Save left a state file")
	}

	if err := m.Save(&fakeSerializer{state: []byte{9}, size: 1}); err != nil {
		t.Fatal(err)
	}
	if err := m.Load(&fakeSerializer{loadErr: errBoom}); !errors.Is(err, errBoom) {
		t.Errorf("Load error = %v, want wrapped boom", err)
	}
}
