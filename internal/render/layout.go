package render

import (
	"image"
	"strings"
)

// FormatSpec describes one output video shape.
type FormatSpec struct {
	Name        string
	Width       int
	Height      int
	Enabled     bool
	Description string
}

// Layout holds the proportional geometry of a format.
type Layout struct {
	HeaderRatio  float64
	CentralRatio float64
	FooterRatio  float64
	// LogoSizeRatio sizes the cover against the central region.
	LogoSizeRatio float64
	// LogoWidthRatio, when set, also caps the cover against the frame width.
	LogoWidthRatio float64
	// TranscriptFontRatio is the caption font size relative to frame height.
	TranscriptFontRatio float64
	// TranscriptOffset positions captions within the central region: values
	// below 0.5 measure up from its bottom, others down from its top.
	TranscriptOffset float64
	MaxLines         int
}

var layouts = map[string]Layout{
	"vertical": {
		HeaderRatio: 0.17, CentralRatio: 0.54, FooterRatio: 0.27,
		LogoSizeRatio: 0.6, TranscriptFontRatio: 0.028, TranscriptOffset: 0.84, MaxLines: 5,
	},
	"square": {
		HeaderRatio: 0.12, CentralRatio: 0.66, FooterRatio: 0.20,
		LogoSizeRatio: 0.5, TranscriptFontRatio: 0.030, TranscriptOffset: 0.15, MaxLines: 3,
	},
	"horizontal": {
		HeaderRatio: 0.15, CentralRatio: 0.68, FooterRatio: 0.15,
		LogoSizeRatio: 0.6, LogoWidthRatio: 0.3, TranscriptFontRatio: 0.030, TranscriptOffset: 0.12, MaxLines: 2,
	},
}

// LayoutFor returns the layout for a named format. Custom names pick the
// built-in layout closest to their aspect ratio.
func LayoutFor(spec FormatSpec) Layout {
	if l, ok := layouts[strings.ToLower(spec.Name)]; ok {
		return l
	}
	if spec.Height <= 0 {
		return layouts["vertical"]
	}
	aspect := float64(spec.Width) / float64(spec.Height)
	switch {
	case aspect < 0.8:
		return layouts["vertical"]
	case aspect > 1.25:
		return layouts["horizontal"]
	default:
		return layouts["square"]
	}
}

// Geometry is a Layout resolved to pixels for one frame size.
type Geometry struct {
	Bounds  image.Rectangle
	Header  image.Rectangle
	Central image.Rectangle
	Footer  image.Rectangle
	Cover   image.Rectangle
}

// Resolve converts proportional regions into pixel rectangles. The footer
// absorbs rounding so the three bands always cover the whole frame.
func (l Layout) Resolve(width, height int) Geometry {
	headerH := int(float64(height) * l.HeaderRatio)
	centralH := int(float64(height) * l.CentralRatio)
	g := Geometry{
		Bounds:  image.Rect(0, 0, width, height),
		Header:  image.Rect(0, 0, width, headerH),
		Central: image.Rect(0, headerH, width, headerH+centralH),
		Footer:  image.Rect(0, headerH+centralH, width, height),
	}

	var size int
	if l.LogoWidthRatio > 0 {
		size = int(min(float64(width)*l.LogoWidthRatio, float64(centralH)*l.LogoSizeRatio))
	} else {
		size = int(float64(min(width, centralH)) * l.LogoSizeRatio)
	}
	x := (width - size) / 2
	y := headerH + (centralH-size)/2
	g.Cover = image.Rect(x, y, x+size, y+size)
	return g
}
