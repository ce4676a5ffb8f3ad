package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	xdraw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// fillRoundedRect rasterizes a rounded rectangle composited over dst.
func fillRoundedRect(dst *image.RGBA, r image.Rectangle, radius float32, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	x0, y0 := float32(r.Min.X-b.Min.X), float32(r.Min.Y-b.Min.Y)
	x1, y1 := float32(r.Max.X-b.Min.X), float32(r.Max.Y-b.Min.Y)
	radius = min(radius, (x1-x0)/2, (y1-y0)/2)

	z.MoveTo(x0+radius, y0)
	z.LineTo(x1-radius, y0)
	z.QuadTo(x1, y0, x1, y0+radius)
	z.LineTo(x1, y1-radius)
	z.QuadTo(x1, y1, x1-radius, y1)
	z.LineTo(x0+radius, y1)
	z.QuadTo(x0, y1, x0, y1-radius)
	z.LineTo(x0, y0+radius)
	z.QuadTo(x0, y0, x0+radius, y0)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawPlayIcon draws a right-pointing triangle inscribed in r.
func drawPlayIcon(dst *image.RGBA, r image.Rectangle, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	x0, y0 := float32(r.Min.X-b.Min.X), float32(r.Min.Y-b.Min.Y)
	x1, y1 := float32(r.Max.X-b.Min.X), float32(r.Max.Y-b.Min.Y)
	z.MoveTo(x0, y0)
	z.LineTo(x1, (y0+y1)/2)
	z.LineTo(x0, y1)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// soundIconLevels are the relative heights of the equalizer glyph.
var soundIconLevels = []float64{0.45, 0.8, 1, 0.65, 0.35}

// drawSoundIcon draws a small equalizer glyph filling r.
func drawSoundIcon(dst *image.RGBA, r image.Rectangle, c color.Color) {
	n := len(soundIconLevels)
	slot := r.Dx() / n
	bar := max(slot*2/3, 1)
	mid := r.Min.Y + r.Dy()/2
	for i, level := range soundIconLevels {
		h := max(int(float64(r.Dy())*level), 2)
		x := r.Min.X + i*slot
		fillRect(dst, image.Rect(x, mid-h/2, x+bar, mid+h/2), c)
	}
}
