package romloader

import (
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

// walkRAR visits the regular files of a RAR archive. RAR is read as a
// stream, so a member can only be opened while the walk is on it.
func walkRAR(path string, fn walkFunc) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}
		if header.IsDir {
			continue
		}

		size := header.UnPackedSize
		if header.UnKnownSize {
			size = -1
		}

		stop, err := fn(member{
			name: header.Name,
			size: size,
			open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		})
		if stop || err != nil {
			return err
		}
	}
}
