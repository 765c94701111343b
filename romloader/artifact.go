package romloader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact errors
var (
	ErrSizeMismatch     = errors.New("artifact size mismatch")
	ErrUnreadable       = errors.New("artifact unreadable")
	ErrUnrecognized     = errors.New("artifact not recognized")
	ErrFirmwareNotFound = errors.New("firmware not found")
)

// SizeError reports an artifact whose length is not the expected one.
// It matches ErrSizeMismatch with errors.Is.
type SizeError struct {
	Path     string
	Expected int64
	Got      int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: invalid length (expected %d, got %d)", e.Path, e.Expected, e.Got)
}

// Is reports whether target is ErrSizeMismatch.
func (e *SizeError) Is(target error) bool {
	return target == ErrSizeMismatch
}

// Recognizer reports whether data is an acceptable artifact.
type Recognizer func(data []byte) bool

// LoadStorageImage loads the storage image at path. The path may be a raw
// image or an archive containing a file with one of the given extensions.
// The image must be exactly size bytes and accepted by recognize.
func LoadStorageImage(path string, size int, extensions []string, recognize Recognizer) ([]byte, error) {
	md, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	format, err := sniff(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var data []byte
	if format == formatRaw {
		if md.Size() != int64(size) {
			return nil, &SizeError{Path: path, Expected: int64(size), Got: md.Size()}
		}
		data, err = readExact(path, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
	} else {
		data, _, err = extractImage(path, format, extensions, size)
		if errors.Is(err, ErrSizeMismatch) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
		}
	}

	if !recognize(data) {
		return nil, fmt.Errorf("%w: %s", ErrUnrecognized, path)
	}
	return data, nil
}

// FindFirmware scans each directory (non-recursively) for a regular file of
// exactly size bytes accepted by recognize. The first accepted file wins.
// Files are visited in the order the filesystem returns them, which is not
// guaranteed to be stable; with several valid images present, which one is
// picked is unspecified.
func FindFirmware(dirs []string, size int, recognize Recognizer, logger *slog.Logger) ([]byte, string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, dir := range dirs {
		data, path, ok := scanFirmwareDir(dir, size, recognize, logger)
		if ok {
			return data, path, nil
		}
	}
	return nil, "", ErrFirmwareNotFound
}

// scanFirmwareDir searches a single directory. Candidate failures are logged
// and skipped so one bad file never aborts the scan.
func scanFirmwareDir(dir string, size int, recognize Recognizer, logger *slog.Logger) ([]byte, string, bool) {
	d, err := os.Open(dir)
	if err != nil {
		logger.Warn("can't read firmware directory", "dir", dir, "err", err)
		return nil, "", false
	}
	defer d.Close()

	// ReadDir on the open file keeps directory order, os.ReadDir would sort.
	entries, err := d.ReadDir(-1)
	if err != nil {
		logger.Warn("error while reading firmware directory", "dir", dir, "err", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat rather than entry.Info so symlinks are followed
		md, err := os.Stat(path)
		if err != nil {
			logger.Warn("ignoring firmware candidate: can't get file metadata", "path", path, "err", err)
			continue
		}
		if !md.Mode().IsRegular() {
			logger.Debug("ignoring firmware candidate: not a file", "path", path)
			continue
		}
		if md.Size() != int64(size) {
			logger.Debug("ignoring firmware candidate: bad size", "path", path, "size", md.Size())
			continue
		}

		data, err := readExact(path, size)
		if err != nil {
			logger.Warn("ignoring firmware candidate: read failed", "path", path, "err", err)
			continue
		}
		if !recognize(data) {
			logger.Debug("ignoring firmware candidate: not a known firmware", "path", path)
			continue
		}

		logger.Info("using firmware", "path", path)
		return data, path, true
	}
	return nil, "", false
}

// readExact reads exactly size bytes from the start of path
func readExact(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

// IsArchive reports whether path holds a compressed archive rather than a
// raw image.
func IsArchive(path string) (bool, error) {
	format, err := sniff(path)
	if err != nil {
		return false, err
	}
	return format != formatRaw, nil
}
