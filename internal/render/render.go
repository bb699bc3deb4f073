// Package render draws dual-channel magnitude spectra as PNG images.
// Each channel gets a panel of per-bin amplitude columns over a
// logarithmic color ramp, scaled to the target image size. The output
// is fontless; scales are drawn as tick guidelines only.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

const (
	DefaultWidth          = 1024
	DefaultHeight         = 512
	DefaultDynamicRangeDB = 100.0

	// Columns are rasterized at this height per panel before scaling,
	// so the ramp gradient survives small output sizes.
	nativePanelHeight = 256

	panelGap       = 12
	tickMarkLength = 5
	frequencyTicks = 8
	amplitudeTicks = 4

	// Default border sizes in pixels
	defaultTopBorder    = 24
	defaultLeftBorder   = 48
	defaultBottomBorder = 32
	defaultRightBorder  = 24
)

var (
	frameColor = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	gridColor  = color.RGBA{R: 56, G: 56, B: 56, A: 255}
	tickColor  = color.Black
)

// BorderConfig defines the white space around the two spectrum panels.
type BorderConfig struct {
	Top    int
	Left   int // Space for amplitude tick marks
	Bottom int // Space for frequency tick marks
	Right  int
}

// RenderConfig holds the options for spectrum visualization.
type RenderConfig struct {
	Width  int // Output image width in pixels
	Height int // Output image height in pixels

	Theme ColorTheme

	// DynamicRangeDB is the visible range below the peak amplitude.
	// Amplitudes further down render as an empty column.
	DynamicRangeDB float64

	Borders BorderConfig
}

// Renderer draws SpectrumData into bordered two-panel images, channel
// A on top and channel B below.
type Renderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewRenderer creates a renderer, filling zero config values with
// defaults and validating that the borders leave room for the panels.
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = DefaultWidth
	}
	if config.Height == 0 {
		config.Height = DefaultHeight
	}
	if config.Theme == "" {
		config.Theme = ClassicTheme
	}
	if config.DynamicRangeDB == 0 {
		config.DynamicRangeDB = DefaultDynamicRangeDB
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	plotWidth := config.Width - config.Borders.Left - config.Borders.Right
	plotHeight := config.Height - config.Borders.Top - config.Borders.Bottom
	if plotWidth < 16 || (plotHeight-panelGap)/2 < 8 {
		return nil, fmt.Errorf("image %dx%d leaves no room for the spectrum panels", config.Width, config.Height)
	}
	if config.DynamicRangeDB < 0 {
		return nil, fmt.Errorf("dynamic range must be positive, got %.1f dB", config.DynamicRangeDB)
	}

	return &Renderer{config: config}, nil
}

// Render creates an image of the spectrum data. The amplitude ramp is
// anchored at the louder channel's peak, so the strongest bin always
// reaches the top of its panel.
func (r *Renderer) Render(spec *SpectrumData) (*image.RGBA, error) {
	if spec.Bins() < 2 {
		return nil, fmt.Errorf("spectrum holds %d bins, need at least 2", spec.Bins())
	}

	bounds := r.amplitudeBounds(spec)
	if r.colorMap == nil {
		r.colorMap = NewColorMapper(r.config.Theme, bounds)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plot := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Width-r.config.Borders.Right,
		r.config.Height-r.config.Borders.Bottom,
	)
	panelHeight := (plot.Dy() - panelGap) / 2
	dsaArea := image.Rect(plot.Min.X, plot.Min.Y, plot.Max.X, plot.Min.Y+panelHeight)
	mioArea := image.Rect(plot.Min.X, plot.Max.Y-panelHeight, plot.Max.X, plot.Max.Y)

	r.renderChannel(img, dsaArea, spec.DSA)
	r.renderChannel(img, mioArea, spec.MIO)

	for _, area := range []image.Rectangle{dsaArea, mioArea} {
		drawGridlines(img, area)
		drawFrame(img, area)
		drawAmplitudeTicks(img, area)
	}
	drawFrequencyTicks(img, plot)

	return img, nil
}

// amplitudeBounds anchors the visible range at the spectrum peak. A
// silent spectrum anchors at 1 V so empty panels stay empty instead of
// amplifying the floor.
func (r *Renderer) amplitudeBounds(spec *SpectrumData) AmplitudeBounds {
	maxDB := 0.0
	if peak := spec.PeakAmplitude(); peak > 0 {
		maxDB = 20 * math.Log10(peak)
	}
	return AmplitudeBounds{MinDB: maxDB - r.config.DynamicRangeDB, MaxDB: maxDB}
}

// renderChannel rasterizes one channel at native resolution, one
// column per bin with a ramp gradient up to the bin's amplitude, then
// scales it into the panel area.
func (r *Renderer) renderChannel(img *image.RGBA, area image.Rectangle, amplitudes []float64) {
	native := image.NewRGBA(image.Rect(0, 0, len(amplitudes), nativePanelHeight))
	draw.Draw(native, native.Bounds(), image.Black, image.Point{}, draw.Src)

	for x, amp := range amplitudes {
		top := int(math.Round(r.colorMap.Normalize(amp) * nativePanelHeight))
		for y := 0; y < top; y++ {
			native.Set(x, nativePanelHeight-1-y, r.colorMap.At(float64(y)/float64(nativePanelHeight-1)))
		}
	}

	draw.ApproxBiLinear.Scale(img, area, native, native.Bounds(), draw.Src, nil)
}

// drawGridlines draws faint horizontal guides at the quarter levels of
// a panel, over the columns the way an analyzer graticule sits over
// the trace.
func drawGridlines(img *image.RGBA, area image.Rectangle) {
	for i := 1; i < amplitudeTicks; i++ {
		y := area.Min.Y + i*area.Dy()/amplitudeTicks
		for x := area.Min.X; x < area.Max.X; x++ {
			img.Set(x, y, gridColor)
		}
	}
}

// drawFrame outlines a panel with a one-pixel border.
func drawFrame(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x < area.Max.X; x++ {
		img.Set(x, area.Min.Y, frameColor)
		img.Set(x, area.Max.Y-1, frameColor)
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		img.Set(area.Min.X, y, frameColor)
		img.Set(area.Max.X-1, y, frameColor)
	}
}

// drawAmplitudeTicks marks the quarter levels on the left edge of a
// panel.
func drawAmplitudeTicks(img *image.RGBA, area image.Rectangle) {
	for i := 0; i <= amplitudeTicks; i++ {
		y := area.Min.Y + i*(area.Dy()-1)/amplitudeTicks
		for dx := 1; dx <= tickMarkLength; dx++ {
			img.Set(area.Min.X-dx, y, tickColor)
		}
	}
}

// drawFrequencyTicks marks evenly spaced frequencies under the plot.
func drawFrequencyTicks(img *image.RGBA, plot image.Rectangle) {
	for i := 0; i <= frequencyTicks; i++ {
		x := plot.Min.X + i*(plot.Dx()-1)/frequencyTicks
		for dy := 1; dy <= tickMarkLength; dy++ {
			img.Set(x, plot.Max.Y+dy, tickColor)
		}
	}
}

// WritePNG encodes an image to a PNG file.
func WritePNG(img image.Image, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	if err = png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
