//go:build !libretro

package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// FramebufferRenderer owns the ebiten offscreen image for the LCD and
// draws it scaled to the window.
type FramebufferRenderer struct {
	width     int
	height    int
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewFramebufferRenderer creates a renderer for a width x height picture.
func NewFramebufferRenderer(width, height int) *FramebufferRenderer {
	return &FramebufferRenderer{
		width:  width,
		height: height,
	}
}

// DrawFramebuffer draws RGBA pixels centered on screen with the largest
// scale that keeps the aspect ratio. Short pixel data is ignored.
func (r *FramebufferRenderer) DrawFramebuffer(screen *ebiten.Image, pixels []byte) {
	requiredLen := r.width * r.height * 4
	if requiredLen == 0 || len(pixels) < requiredLen {
		return
	}

	if r.offscreen == nil {
		r.offscreen = ebiten.NewImage(r.width, r.height)
	}
	r.offscreen.WritePixels(pixels[:requiredLen])

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offsetX, offsetY := fitScale(screenW, screenH, r.width, r.height)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(scale, scale)
	r.drawOpts.GeoM.Translate(offsetX, offsetY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// fitScale returns the scale and offsets that center a native-size picture
// inside a screen, letterboxing the short side.
func fitScale(screenW, screenH, nativeW, nativeH int) (scale, offsetX, offsetY float64) {
	scaleX := float64(screenW) / float64(nativeW)
	scaleY := float64(screenH) / float64(nativeH)
	scale = scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	offsetX = (float64(screenW) - float64(nativeW)*scale) / 2
	offsetY = (float64(screenH) - float64(nativeH)*scale) / 2
	return scale, offsetX, offsetY
}
