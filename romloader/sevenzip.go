package romloader

import (
	"fmt"

	"github.com/bodgit/sevenzip"
)

// walk7z visits the regular files of a 7z archive
func walk7z(path string, fn walkFunc) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		info := f.FileInfo()
		if info.IsDir() {
			continue
		}

		stop, err := fn(member{name: f.Name, size: info.Size(), open: f.Open})
		if stop || err != nil {
			return err
		}
	}
	return nil
}
