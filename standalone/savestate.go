//go:build !libretro

package standalone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user-none/pockystation/standalone/storage"
)

// numSlots is the number of save state slots per storage image.
const numSlots = 10

// ErrNoSave is returned when loading from an empty slot.
var ErrNoSave = errors.New("no save in slot")

// stateSerializer is the save state surface of a session.
type stateSerializer interface {
	SerializeSize() int
	Serialize(buf []byte) (int, error)
	Deserialize(buf []byte) error
}

// SaveStateManager keeps numbered save state slots in one directory.
type SaveStateManager struct {
	dir         string
	currentSlot int
}

// NewSaveStateManager creates a manager storing states in dir. The
// directory is created on the first save.
func NewSaveStateManager(dir string) *SaveStateManager {
	return &SaveStateManager{dir: dir}
}

// GetCurrentSlot returns the current save slot
func (m *SaveStateManager) GetCurrentSlot() int {
	return m.currentSlot
}

// NextSlot cycles to the next save slot
func (m *SaveStateManager) NextSlot() {
	m.currentSlot = (m.currentSlot + 1) % numSlots
}

// PreviousSlot cycles to the previous save slot
func (m *SaveStateManager) PreviousSlot() {
	m.currentSlot--
	if m.currentSlot < 0 {
		m.currentSlot = numSlots - 1
	}
}

func (m *SaveStateManager) slotPath(slot int) string {
	return filepath.Join(m.dir, fmt.Sprintf("state-%d.state", slot))
}

// HasSave reports whether slot has a save state.
func (m *SaveStateManager) HasSave(slot int) bool {
	_, err := os.Stat(m.slotPath(slot))
	return err == nil
}

// Save writes the state of s to the current slot. Only the bytes the
// serializer reports are written.
func (m *SaveStateManager) Save(s stateSerializer) error {
	buf := make([]byte, s.SerializeSize())
	n, err := s.Serialize(buf)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := storage.AtomicWriteFile(m.slotPath(m.currentSlot), buf[:n]); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Load restores s from the current slot.
func (m *SaveStateManager) Load(s stateSerializer) error {
	state, err := os.ReadFile(m.slotPath(m.currentSlot))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w %d", ErrNoSave, m.currentSlot)
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if err := s.Deserialize(state); err != nil {
		return fmt.Errorf("failed to deserialize state: %w", err)
	}
	return nil
}
