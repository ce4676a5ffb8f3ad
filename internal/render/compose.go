package render

import (
	"fmt"
	"image"
	"image/color"
	"iter"
	"math/rand/v2"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"audiogram/internal/transcript"
	"audiogram/internal/waveform"
)

const (
	barMinRatio       = 0.03
	barMaxRatio       = 0.70
	barCenterBoost    = 0.4
	barSensitivityMin = 0.6
	barSensitivityMax = 1.4
	barSeed           = 42
	captionWidthRatio = 0.88
	captionPadding    = 18
	captionRadius     = 18
	captionAlpha      = 190
	captionMaxLines   = 5
	captionSpacing    = 1.6
	titleLineSpacing  = 1.45
	titleMaxLines     = 3
)

// Palette is the frame color scheme.
type Palette struct {
	Primary      color.RGBA
	Background   color.RGBA
	Text         color.RGBA
	TranscriptBG color.RGBA
}

// RGB converts a three-component 0-255 slice to an opaque color. Missing
// components read as zero.
func RGB(v []int) color.RGBA {
	var c [3]uint8
	for i := 0; i < len(v) && i < 3; i++ {
		c[i] = uint8(min(max(v[i], 0), 255))
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// Style is the branding shared by every format of a soundbite.
type Style struct {
	Palette Palette
	// Label is the fixed header text next to the icons.
	Label string
	// Title is the resolved footer title; blank omits it.
	Title            string
	ShowSubtitles    bool
	StripPunctuation bool
	BarWidth         int
	BarSpacing       int
	Fonts            FontData
}

type bars struct {
	count   int
	width   int
	spacing int
	offsetX int
	minH    int
	maxH    int
	centerY int
	// sens scales each bar; it is mirrored around the center.
	sens    []float64
}

type overlay struct {
	img *image.RGBA
}

// Composer renders frames for one format. It is not safe for concurrent use;
// build one per goroutine.
type Composer struct {
	spec     FormatSpec
	layout   Layout
	geo      Geometry
	style    Style
	base     *image.RGBA
	frame    *image.RGBA
	bars     bars
	caption  font.Face
	overlays map[string]*overlay
}

// NewComposer paints the static base for spec. cover may be nil.
func NewComposer(spec FormatSpec, cover image.Image, style Style) (*Composer, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("format %s: invalid dimensions %dx%d", spec.Name, spec.Width, spec.Height)
	}
	layout := LayoutFor(spec)
	c := &Composer{
		spec:     spec,
		layout:   layout,
		geo:      layout.Resolve(spec.Width, spec.Height),
		style:    style,
		base:     image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height)),
		frame:    image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height)),
		overlays: make(map[string]*overlay),
	}
	c.bars = c.barGeometry()

	captionFonts, err := newFontSet(style.Fonts.Transcript, goregular.TTF)
	if err != nil {
		return nil, err
	}
	c.caption, err = captionFonts.face(int(float64(spec.Height) * layout.TranscriptFontRatio))
	if err != nil {
		return nil, err
	}
	headerFonts, err := newFontSet(style.Fonts.Header, gobold.TTF)
	if err != nil {
		return nil, err
	}

	fillRect(c.base, c.geo.Bounds, style.Palette.Background)
	if cover != nil && !c.geo.Cover.Empty() {
		xdraw.CatmullRom.Scale(c.base, c.geo.Cover, cover, centerSquare(cover.Bounds()), xdraw.Over, nil)
	}
	if err := c.paintHeader(headerFonts); err != nil {
		return nil, err
	}
	if err := c.paintFooter(headerFonts); err != nil {
		return nil, err
	}
	return c, nil
}

// BarCount is the number of waveform bars the format fits.
func (c *Composer) BarCount() int { return c.bars.count }

func (c *Composer) barGeometry() bars {
	width := max(c.style.BarWidth, 1)
	spacing := max(c.style.BarSpacing, 0)
	step := width + spacing
	count := c.spec.Width / step
	if count%2 != 0 {
		count--
	}
	if count < 2 {
		count = 0
	}
	central := c.geo.Central
	used := count*step - spacing
	return bars{
		count:   count,
		width:   width,
		spacing: spacing,
		offsetX: max((c.spec.Width-used)/2, 0),
		minH:    max(int(float64(central.Dy())*barMinRatio), 1),
		maxH:    int(float64(central.Dy()) * barMaxRatio),
		centerY: central.Min.Y + central.Dy()/2,
		sens:    barSensitivities(count),
	}
}

// barSensitivities draws count/2 factors from a fixed seed and mirrors them,
// so every frame and every run gets the same bar profile.
func barSensitivities(count int) []float64 {
	if count < 2 {
		return nil
	}
	half := count / 2
	rng := rand.New(rand.NewPCG(barSeed, barSeed))
	sens := make([]float64, count)
	for i := range half {
		v := barSensitivityMin + rng.Float64()*(barSensitivityMax-barSensitivityMin)
		sens[i] = v
		sens[count-1-i] = v
	}
	return sens
}

func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x := b.Min.X + (b.Dx()-side)/2
	y := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

func (c *Composer) paintHeader(fonts *fontSet) error {
	header := c.geo.Header
	fillRect(c.base, header, c.style.Palette.Primary)
	if header.Dy() <= 0 {
		return nil
	}
	padX := int(float64(c.spec.Width) * 0.04)
	icon := max(int(float64(header.Dy())*0.32), 4)
	midY := header.Min.Y + header.Dy()/2
	x := header.Min.X + padX

	drawPlayIcon(c.base, image.Rect(x, midY-icon/2, x+icon*7/8, midY+icon/2), c.style.Palette.Text)
	x += icon*7/8 + icon/2
	soundW := icon * 7 / 5
	drawSoundIcon(c.base, image.Rect(x, midY-icon/2, x+soundW, midY+icon/2), c.style.Palette.Text)
	x += soundW + icon/2

	if c.style.Label == "" {
		return nil
	}
	face, err := fonts.face(int(float64(header.Dy()) * 0.28))
	if err != nil {
		return err
	}
	label := ellipsize(face, c.style.Label, header.Max.X-padX-x)
	m := face.Metrics()
	baseline := midY + (m.Ascent-m.Descent).Ceil()/2
	drawText(c.base, face, label, x, baseline, c.style.Palette.Text)
	return nil
}

func (c *Composer) paintFooter(fonts *fontSet) error {
	footer := c.geo.Footer
	fillRect(c.base, footer, c.style.Palette.Primary)
	if c.style.Title == "" || footer.Dy() <= 0 {
		return nil
	}
	padX := int(float64(c.spec.Width) * 0.04)
	padY := int(float64(footer.Dy()) * 0.1)
	maxW := c.spec.Width - 2*padX
	maxH := footer.Dy() - 2*padY

	var (
		face  font.Face
		lines []string
		total int
		step  int
	)
	for size := max(16, int(float64(footer.Dy())*0.26)); size >= 12; size -= 2 {
		f, err := fonts.face(size)
		if err != nil {
			return err
		}
		face = f
		lines = wrapText(face, c.style.Title, maxW, titleMaxLines)
		step = int(float64(lineHeight(face)) * titleLineSpacing)
		total = lineHeight(face) + (len(lines)-1)*step
		if total <= maxH {
			break
		}
	}
	if face == nil || len(lines) == 0 {
		return nil
	}
	top := footer.Min.Y + (footer.Dy()-total)/2
	ascent := face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		drawText(c.base, face, line, footer.Min.X+padX, top+ascent+i*step, c.style.Palette.Text)
	}
	return nil
}

func drawText(dst *image.RGBA, face font.Face, text string, x, baseline int, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// RenderFrame composes one frame. The returned image is reused by the next
// call.
func (c *Composer) RenderFrame(heights []float64, caption string) *image.RGBA {
	copy(c.frame.Pix, c.base.Pix)
	c.drawBars(heights)
	if c.style.ShowSubtitles && caption != "" {
		if ov := c.overlayFor(caption); ov != nil {
			r := ov.img.Bounds().Intersect(c.geo.Central)
			xdraw.Draw(c.frame, r, ov.img, r.Min, xdraw.Over)
		}
	}
	return c.frame
}

func (c *Composer) drawBars(heights []float64) {
	b := c.bars
	if b.count == 0 {
		return
	}
	center := b.count / 2
	for i := range b.count {
		var amp float64
		if i < len(heights) {
			amp = heights[i]
		}
		dist := float64(abs(i - center))
		amp *= b.sens[i] * (1 + (1-dist/float64(center))*barCenterBoost)
		h := b.minH + int(amp*float64(b.maxH-b.minH))
		h = min(max(h, b.minH), b.maxH)
		x := b.offsetX + i*(b.width+b.spacing)
		r := image.Rect(x, b.centerY-h/2, x+b.width, b.centerY-h/2+h)
		fillRect(c.frame, r.Intersect(c.geo.Central), c.style.Palette.Primary)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// overlayFor renders caption boxes for text once and caches them.
func (c *Composer) overlayFor(text string) *overlay {
	if ov, ok := c.overlays[text]; ok {
		return ov
	}
	display := text
	if c.style.StripPunctuation {
		display = transcript.StripPunctuation(display)
	}
	ov := c.buildOverlay(display)
	c.overlays[text] = ov
	return ov
}

func (c *Composer) buildOverlay(text string) *overlay {
	maxWidth := int(float64(c.spec.Width)*captionWidthRatio) - 2*captionPadding
	lines := wrapText(c.caption, text, maxWidth, min(captionMaxLines, c.layout.MaxLines))
	if len(lines) == 0 {
		return nil
	}
	lh := lineHeight(c.caption)
	step := int(float64(lh) * captionSpacing)
	block := (len(lines)-1)*step + lh + 2*captionPadding

	central := c.geo.Central
	var top int
	if c.layout.TranscriptOffset < 0.5 {
		top = central.Max.Y - int(float64(central.Dy())*c.layout.TranscriptOffset)
	} else {
		top = central.Min.Y + int(float64(central.Dy())*c.layout.TranscriptOffset)
	}
	// keep the block inside the central region when it would spill over
	if top-captionPadding+block > central.Max.Y {
		top = central.Max.Y - block + captionPadding
	}
	top = max(top, central.Min.Y+captionPadding)

	boxes := make([]image.Rectangle, len(lines))
	var area image.Rectangle
	for i, line := range lines {
		w := textWidth(c.caption, line)
		x := (c.spec.Width - w) / 2
		y := top + i*step
		boxes[i] = image.Rect(x-captionPadding, y-captionPadding, x+w+captionPadding, y+lh+captionPadding)
		area = area.Union(boxes[i].Add(image.Pt(0, 4)).Union(boxes[i]))
	}
	area = area.Intersect(c.geo.Bounds)
	if area.Empty() {
		return nil
	}

	img := image.NewRGBA(area)
	bg := c.style.Palette.TranscriptBG
	ascent := c.caption.Metrics().Ascent.Ceil()
	for i, line := range lines {
		fillRoundedRect(img, boxes[i].Add(image.Pt(0, 4)), captionRadius, color.NRGBA{A: 70})
		fillRoundedRect(img, boxes[i], captionRadius, color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: captionAlpha})
		drawText(img, c.caption, line, boxes[i].Min.X+captionPadding, boxes[i].Min.Y+captionPadding+ascent, c.style.Palette.Text)
	}
	return &overlay{img: img}
}

// Frames pairs every waveform tick with the caption active at its timestamp
// and yields the composed frame. The yielded image is reused between
// iterations; consumers must finish with it before advancing.
func (c *Composer) Frames(waves iter.Seq[waveform.Frame], cues []transcript.AlignedCue) iter.Seq[*image.RGBA] {
	return func(yield func(*image.RGBA) bool) {
		next := 0
		for wf := range waves {
			caption := ""
			if c.style.ShowSubtitles {
				for next < len(cues) && cues[next].End <= wf.Time {
					next++
				}
				if next < len(cues) && cues[next].Contains(wf.Time) {
					caption = cues[next].Text
				}
			}
			if !yield(c.RenderFrame(wf.Heights, caption)) {
				return
			}
		}
	}
}
