//go:build !libretro

package standalone

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/user-none/pockystation/standalone/storage"
	"golang.design/x/clipboard"
	xdraw "golang.org/x/image/draw"
)

// ScreenshotManager saves upscaled PNG screenshots of the LCD and copies
// them to the clipboard when one is available.
type ScreenshotManager struct {
	dir       string
	scale     int
	clipboard bool

	clipOnce sync.Once
	clipOK   bool
}

// NewScreenshotManager creates a manager writing into dir. Each LCD pixel
// becomes a scale x scale block.
func NewScreenshotManager(dir string, scale int, toClipboard bool) *ScreenshotManager {
	if scale < 1 {
		scale = 1
	}
	return &ScreenshotManager{
		dir:       dir,
		scale:     scale,
		clipboard: toClipboard,
	}
}

// TakeScreenshot encodes an RGBA frame and writes it as <unix time>.png.
// It returns the file path.
func (m *ScreenshotManager) TakeScreenshot(pixels []byte, width, height int, now time.Time) (string, error) {
	data, err := encodeScreenshot(pixels, width, height, m.scale)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.dir, fmt.Sprintf("%d.png", now.Unix()))
	if err := storage.AtomicWriteFile(path, data); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	if m.clipboard {
		m.copyToClipboard(data)
	}
	return path, nil
}

func (m *ScreenshotManager) copyToClipboard(data []byte) {
	m.clipOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			slog.Warn("clipboard not available, screenshots are only saved to disk", "err", err)
			return
		}
		m.clipOK = true
	})
	if m.clipOK {
		clipboard.Write(clipboard.FmtImage, data)
	}
}

// encodeScreenshot scales an RGBA frame with nearest neighbor so pixels
// stay sharp, then encodes it as PNG.
func encodeScreenshot(pixels []byte, width, height, scale int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return nil, fmt.Errorf("invalid screenshot frame %dx%d with %d bytes", width, height, len(pixels))
	}

	src := &image.RGBA{
		Pix:    append([]byte(nil), pixels[:width*height*4]...),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	dstRect := image.Rect(0, 0, width*scale, height*scale)
	dst := image.NewRGBA(dstRect)
	xdraw.NearestNeighbor.Scale(dst, dstRect, src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
