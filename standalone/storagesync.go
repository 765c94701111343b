//go:build !libretro

package standalone

import (
	"bytes"
	"fmt"

	"github.com/user-none/pockystation/romloader"
	"github.com/user-none/pockystation/standalone/storage"
)

// storageSync writes the live storage image back to the file it was loaded
// from. Images loaded from archives are never written back.
type storageSync struct {
	path     string
	writable bool
	last     []byte
}

func newStorageSync(path string, initial []byte) (*storageSync, error) {
	archived, err := romloader.IsArchive(path)
	if err != nil {
		return nil, err
	}
	return &storageSync{
		path:     path,
		writable: !archived,
		last:     append([]byte(nil), initial...),
	}, nil
}

// Flush writes current if it differs from what is on disk. It reports
// whether the file was written.
func (s *storageSync) Flush(current []byte) (bool, error) {
	if !s.writable || bytes.Equal(current, s.last) {
		return false, nil
	}
	if err := storage.AtomicWriteFile(s.path, current); err != nil {
		return false, fmt.Errorf("failed to write storage image: %w", err)
	}
	s.last = append(s.last[:0], current...)
	return true, nil
}
