package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSpectrumFile writes a six-bin spectrum with a tone in bin 3:
// channel A at 1.0 V, channel B at 0.8 V, every other bin near silent.
func writeSpectrumFile(t *testing.T, dir string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)\n")
	for i := 0; i < 6; i++ {
		dsaAmp, mioAmp := 0.000001, 0.000001
		if i == 3 {
			dsaAmp, mioAmp = 1.0, 0.8
		}
		fmt.Fprintf(&sb, "%.2f,%.4f,%.6f,%.4f,%.6f\n", float64(i*10), dsaAmp*500, dsaAmp, mioAmp*500, mioAmp)
	}

	path := filepath.Join(dir, "spectrum.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("writing spectrum file: %v", err)
	}
	return path
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func isBlack(img image.Image, x, y int) bool {
	r, g, b := rgbAt(img, x, y)
	return r == 0 && g == 0 && b == 0
}

func TestLoadSpectrumCSV(t *testing.T) {
	path := writeSpectrumFile(t, t.TempDir())

	spec, err := LoadSpectrumCSV(path)
	if err != nil {
		t.Fatalf("LoadSpectrumCSV() error = %v", err)
	}

	if spec.Bins() != 6 {
		t.Errorf("Bins() = %d, want 6", spec.Bins())
	}
	if spec.FrequencyMin != 0 || spec.FrequencyMax != 50 {
		t.Errorf("frequency range = [%v, %v], want [0, 50]", spec.FrequencyMin, spec.FrequencyMax)
	}
	if spec.DSA[3] != 1.0 {
		t.Errorf("DSA[3] = %v, want 1.0", spec.DSA[3])
	}
	if spec.MIO[3] != 0.8 {
		t.Errorf("MIO[3] = %v, want 0.8", spec.MIO[3])
	}
	if peak := spec.PeakAmplitude(); peak != 1.0 {
		t.Errorf("PeakAmplitude() = %v, want 1.0", peak)
	}
}

func TestLoadSpectrumCSVErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "wrong header",
			content: "Time (s),DSA Data (V),MIO Data (V)\n",
		},
		{
			name:    "bad amplitude",
			content: "Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)\n0.0,1.0,abc,1.0,0.5\n10.0,1.0,0.5,1.0,0.5\n",
		},
		{
			name:    "too few bins",
			content: "Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)\n0.0,1.0,0.5,1.0,0.5\n",
		},
		{
			name:    "ragged row",
			content: "Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)\n0.0,1.0,0.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing file: %v", err)
			}
			if _, err := LoadSpectrumCSV(path); err == nil {
				t.Error("LoadSpectrumCSV() expected an error, got nil")
			}
		})
	}

	if _, err := LoadSpectrumCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("LoadSpectrumCSV() on a missing file expected an error, got nil")
	}
}

func TestRenderImage(t *testing.T) {
	spec, err := LoadSpectrumCSV(writeSpectrumFile(t, t.TempDir()))
	if err != nil {
		t.Fatalf("LoadSpectrumCSV() error = %v", err)
	}

	r, err := NewRenderer(RenderConfig{Width: 320, Height: 200})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	img, err := r.Render(spec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got, want := img.Bounds(), image.Rect(0, 0, 320, 200); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}

	// Border stays white.
	if r8, g8, b8 := rgbAt(img, 1, 1); r8 != 255 || g8 != 255 || b8 != 255 {
		t.Errorf("border pixel = (%d, %d, %d), want white", r8, g8, b8)
	}

	// With 320x200 and default borders the plot spans x [48, 296) and
	// the channel A panel y [24, 90). Row 88 sits inside the panel
	// clear of the frame and gridlines, so the only lit pixels come
	// from the bin 3 tone column, which lands around x 151..233 after
	// scaling six bins across the panel.
	first, last, lit := 0, 0, 0
	for x := 49; x < 295; x++ {
		if !isBlack(img, x, 88) {
			if lit == 0 {
				first = x
			}
			last = x
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("tone column left no lit pixels in the channel A panel")
	}
	if first < 143 || last > 243 {
		t.Errorf("lit pixels span x [%d, %d], want within [143, 243]", first, last)
	}

	// Quiet bins render as empty columns.
	if !isBlack(img, 109, 88) {
		t.Errorf("quiet bin pixel = %v, want black", img.At(109, 88))
	}

	// Channel B panel spans y [102, 168); its tone column at 0.8 V
	// still fills the bottom row.
	if isBlack(img, 192, 166) {
		t.Error("channel B tone column is unexpectedly black")
	}
}

func TestRenderSilentSpectrum(t *testing.T) {
	spec := &SpectrumData{
		Frequencies:  []float64{0, 10, 20, 30, 40, 50},
		DSA:          make([]float64, 6),
		MIO:          make([]float64, 6),
		FrequencyMax: 50,
	}

	r, err := NewRenderer(RenderConfig{Width: 320, Height: 200})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	img, err := r.Render(spec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !isBlack(img, 172, 60) {
		t.Errorf("silent panel pixel = %v, want black", img.At(172, 60))
	}
}

func TestNewRendererValidation(t *testing.T) {
	if _, err := NewRenderer(RenderConfig{Width: 60, Height: 40}); err == nil {
		t.Error("NewRenderer() with no panel room expected an error, got nil")
	}
	if _, err := NewRenderer(RenderConfig{DynamicRangeDB: -10}); err == nil {
		t.Error("NewRenderer() with negative dynamic range expected an error, got nil")
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	spec, err := LoadSpectrumCSV(writeSpectrumFile(t, dir))
	if err != nil {
		t.Fatalf("LoadSpectrumCSV() error = %v", err)
	}

	r, err := NewRenderer(RenderConfig{Width: 320, Height: 200, Theme: ThermalTheme})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	img, err := r.Render(spec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	path := filepath.Join(dir, "spectrum.png")
	if err := WritePNG(img, path); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening image: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding image: %v", err)
	}
	if got, want := decoded.Bounds(), image.Rect(0, 0, 320, 200); got != want {
		t.Errorf("decoded bounds = %v, want %v", got, want)
	}

	if err := WritePNG(img, filepath.Join(dir, "no-such-dir", "spectrum.png")); err == nil {
		t.Error("WritePNG() into a missing directory expected an error, got nil")
	}
}

func TestColorMapperNormalize(t *testing.T) {
	cm := NewColorMapper(ClassicTheme, AmplitudeBounds{MinDB: -100, MaxDB: 0})

	tests := []struct {
		amplitudeV float64
		want       float64
	}{
		{1.0, 1.0},
		{0.0, 0.0},
		{-0.5, 0.0},
		{0.00001, 0.0}, // -100 dB, bottom of range
		{10.0, 1.0},    // +20 dB, clamped
		{0.001, 0.4},   // -60 dB
	}

	for _, tt := range tests {
		if got := cm.Normalize(tt.amplitudeV); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", tt.amplitudeV, got, tt.want)
		}
	}
}

func TestColorThemes(t *testing.T) {
	bounds := AmplitudeBounds{MinDB: -100, MaxDB: 0}

	for _, theme := range []ColorTheme{ClassicTheme, GrayscaleTheme, ThermalTheme} {
		t.Run(string(theme), func(t *testing.T) {
			cm := NewColorMapper(theme, bounds)
			if cm.Theme() != theme {
				t.Errorf("Theme() = %q, want %q", cm.Theme(), theme)
			}

			lowR, lowG, lowB, _ := cm.At(0).RGBA()
			highR, highG, highB, _ := cm.At(1).RGBA()
			if lowR == highR && lowG == highG && lowB == highB {
				t.Error("ramp endpoints are identical")
			}
		})
	}

	// Unknown themes fall back to the classic ramp.
	classic := NewColorMapper(ClassicTheme, bounds)
	fallback := NewColorMapper(ColorTheme("neon"), bounds)
	cr, cg, cb, _ := classic.At(0.5).RGBA()
	fr, fg, fb, _ := fallback.At(0.5).RGBA()
	if cr != fr || cg != fg || cb != fb {
		t.Error("unknown theme did not fall back to the classic ramp")
	}
}
