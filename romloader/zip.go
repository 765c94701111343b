package romloader

import (
	"archive/zip"
	"fmt"
)

// walkZIP visits the regular files of a ZIP archive
func walkZIP(path string, fn walkFunc) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
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
