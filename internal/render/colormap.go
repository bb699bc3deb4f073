package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme selects a predefined color ramp for amplitude visualization.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red sweep
	GrayscaleTheme ColorTheme = "grayscale" // Black to white
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white

	DefaultColorMapSize = 256

	// Classic ramp hue range in degrees. Low amplitudes map to deep
	// blue, the peak maps to red.
	hueStart = 236.0
	hueEnd   = 0.0
)

// AmplitudeBounds is the visible amplitude range in decibels relative
// to 1 V. Amplitudes at or below MinDB map to the bottom of the ramp,
// amplitudes at or above MaxDB to the top.
type AmplitudeBounds struct {
	MinDB float64
	MaxDB float64
}

// ColorMapper converts per-bin amplitudes to ramp colors through a
// pre-computed lookup table, so rendering a spectrum costs one table
// index per pixel instead of a color-space conversion.
type ColorMapper struct {
	colorMap  []color.Color
	theme     func(float64) color.Color
	themeName ColorTheme
	size      int
	minDB     float64
	spanDB    float64
}

// NewColorMapper creates a color mapper with the default table size.
func NewColorMapper(theme ColorTheme, bounds AmplitudeBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a color mapper with a specific number
// of pre-computed colors.
func NewColorMapperWithSize(theme ColorTheme, bounds AmplitudeBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds sets the visible amplitude range and rebuilds the table.
func (cm *ColorMapper) UpdateBounds(bounds AmplitudeBounds) {
	cm.minDB = bounds.MinDB
	cm.spanDB = bounds.MaxDB - bounds.MinDB
	if cm.spanDB <= 0 {
		cm.spanDB = 1
	}

	for i := 0; i < cm.size; i++ {
		normalized := float64(i) / float64(cm.size-1)
		cm.colorMap[i] = cm.theme(normalized)
	}
}

// Normalize maps an amplitude in volts to the unit range of the ramp.
// Zero and negative amplitudes sit at the bottom of the range.
func (cm *ColorMapper) Normalize(amplitudeV float64) float64 {
	if amplitudeV <= 0 {
		return 0
	}
	db := 20 * math.Log10(amplitudeV)
	u := (db - cm.minDB) / cm.spanDB
	return math.Min(math.Max(u, 0), 1)
}

// At returns the ramp color for a unit position, clamped to [0, 1].
func (cm *ColorMapper) At(u float64) color.Color {
	idx := int(u * float64(cm.size-1))
	if idx < 0 {
		idx = 0
	} else if idx >= cm.size {
		idx = cm.size - 1
	}
	return cm.colorMap[idx]
}

// GetColor returns the ramp color for an amplitude in volts.
func (cm *ColorMapper) GetColor(amplitudeV float64) color.Color {
	return cm.At(cm.Normalize(amplitudeV))
}

// Theme returns the name of the active color theme.
func (cm *ColorMapper) Theme() ColorTheme {
	return cm.themeName
}

// getColorTheme returns the ramp function for a theme name. Unknown
// names fall back to the classic ramp.
func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return grayscaleRamp
	case ThermalTheme:
		return thermalRamp
	case ClassicTheme:
		return classicRamp
	default:
		return classicRamp
	}
}

// classicRamp sweeps the hue from deep blue down to red at full
// saturation, the traditional spectrum-analyzer look.
func classicRamp(normalized float64) color.Color {
	hue := hueStart - normalized*(hueStart-hueEnd)
	hue = math.Min(math.Max(hue, hueEnd), hueStart)
	return colorful.Hsv(hue, 1, 0.90)
}

func grayscaleRamp(normalized float64) color.Color {
	return colorful.Color{R: normalized, G: normalized, B: normalized}.Clamped()
}

// thermalRamp blends through black, red, yellow and white keypoints.
func thermalRamp(normalized float64) color.Color {
	keypoints := []colorful.Color{
		{R: 0, G: 0, B: 0},
		{R: 0.8, G: 0, B: 0},
		{R: 1, G: 0.9, B: 0},
		{R: 1, G: 1, B: 1},
	}

	segments := len(keypoints) - 1
	pos := normalized * float64(segments)
	idx := int(pos)
	if idx >= segments {
		idx = segments - 1
	}
	return keypoints[idx].BlendRgb(keypoints[idx+1], pos-float64(idx)).Clamped()
}
