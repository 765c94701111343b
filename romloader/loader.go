// Package romloader loads the binary artifacts a session boots from: the
// firmware image and the storage image. Storage images may be packed in
// compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Maximum extracted size (1MB safety limit). Both artifacts are far smaller.
const maxImageSize = 1024 * 1024

// ErrNoImageFile is returned when no file with a wanted extension is found
// in an archive
var ErrNoImageFile = errors.New("no image file found in archive")

// ErrUnsupportedFormat is returned for unrecognized archive formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// member is one file inside an archive, visited by an archive walker.
type member struct {
	name string
	size int64 // -1 when unknown before extraction
	// stream is set for single-stream formats (plain gzip) that carry no
	// meaningful member name; the extension filter does not apply.
	stream bool
	open   func() (io.ReadCloser, error)
}

// walkFunc is called for every regular file of an archive. Returning true
// stops the walk.
type walkFunc func(m member) (bool, error)

type walker func(path string, fn walkFunc) error

var walkers = map[formatType]walker{
	formatZIP:  walkZIP,
	format7z:   walk7z,
	formatGzip: walkGzip,
	formatRAR:  walkRAR,
}

// sniff opens path and detects its format from magic bytes, falling back to
// the file extension. Anything not recognized as an archive is raw.
func sniff(path string) (formatType, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatRaw, err
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return formatRaw, fmt.Errorf("failed to read file header: %w", err)
	}
	return detectFormat(header[:n], path), nil
}

// detectFormat determines the file format based on magic bytes and extension.
func detectFormat(header []byte, path string) formatType {
	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	// Magic bytes may be missing on truncated archives; trust the extension
	// so the archive reader reports a useful error.
	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	return formatRaw
}

// extractImage returns the first archive member that has one of the given
// extensions and exactly size bytes. When members with a matching extension
// exist but none has the right size, a *SizeError for the first of them is
// returned.
func extractImage(path string, format formatType, extensions []string, size int) ([]byte, string, error) {
	walk, ok := walkers[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	var (
		found    []byte
		name     string
		mismatch *SizeError
	)

	err := walk(path, func(m member) (bool, error) {
		if !m.stream && !hasExtension(m.name, extensions) {
			return false, nil
		}
		if m.size >= 0 && m.size != int64(size) {
			if mismatch == nil {
				mismatch = &SizeError{Path: path + ":" + m.name, Expected: int64(size), Got: m.size}
			}
			return false, nil
		}

		rc, err := m.open()
		if err != nil {
			return true, fmt.Errorf("failed to open %s in archive: %w", m.name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return true, fmt.Errorf("failed to read %s: %w", m.name, err)
		}
		if len(data) != size {
			if mismatch == nil {
				mismatch = &SizeError{Path: path + ":" + m.name, Expected: int64(size), Got: int64(len(data))}
			}
			return false, nil
		}

		found = data
		name = filepath.Base(m.name)
		return true, nil
	})
	if err != nil {
		return nil, "", err
	}

	if found != nil {
		return found, name, nil
	}
	if mismatch != nil {
		return nil, "", mismatch
	}
	return nil, "", ErrNoImageFile
}

// hasExtension checks if a filename has one of the given extensions (case-insensitive)
func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to maxImageSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxImageSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
