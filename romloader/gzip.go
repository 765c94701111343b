package romloader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// walkGzip visits the contents of a gzip file. A tar.gz is walked as a tar
// archive; a plain .gz is a single stream member named after the file.
func walkGzip(path string, fn walkFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return walkTar(gr, fn)
	}

	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	_, err = fn(member{
		name:   name,
		size:   -1,
		stream: true,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(gr), nil },
	})
	return err
}

// walkTar visits the regular files of a tar stream
func walkTar(r io.Reader, fn walkFunc) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		stop, err := fn(member{
			name: header.Name,
			size: header.Size,
			open: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
		})
		if stop || err != nil {
			return err
		}
	}
}
