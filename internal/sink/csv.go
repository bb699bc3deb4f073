package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// Default decimal precisions, matching the instrument's historical log
// format: time and voltage at six places, spectrum frequency at two and
// spectrum values at four.
const (
	DefaultVoltagePrecision       = 6
	DefaultSpectrumFreqPrecision  = 2
	DefaultSpectrumValuePrecision = 4
)

const (
	voltageHeader  = "Time (s),DSA Data (V),MIO Data (V)"
	spectrumHeader = "Frequency (Hz),DSA Magnitude,DSA Amplitude (V),MIO Magnitude,MIO Amplitude (V)"
)

// VoltageWriter appends per-sample voltage rows for both channels to a
// CSV stream. The header is written once, when the writer is created.
type VoltageWriter struct {
	w         *bufio.Writer
	closer    io.Closer
	precision int
}

// NewVoltageWriter creates path (and any missing parent directories),
// truncating an existing file, and writes the CSV header.
func NewVoltageWriter(path string, precision int) (*VoltageWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating voltage log: %w", err)
	}

	vw, err := NewVoltageWriterTo(f, precision)
	if err != nil {
		f.Close()
		return nil, err
	}
	vw.closer = f
	return vw, nil
}

// NewVoltageWriterTo writes the header and returns a writer appending
// to w. The caller keeps ownership of w.
func NewVoltageWriterTo(w io.Writer, precision int) (*VoltageWriter, error) {
	if precision < 0 {
		return nil, fmt.Errorf("precision must not be negative, got %d", precision)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, voltageHeader); err != nil {
		return nil, fmt.Errorf("writing voltage header: %w", err)
	}
	return &VoltageWriter{w: bw, precision: precision}, nil
}

// AppendBlock writes one row per sample. Row times continue from the
// running acquisition: sample i is at (startSample+i)/sampleRate
// seconds.
func (vw *VoltageWriter) AppendBlock(a, b []float64, startSample uint64, sampleRateHz float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("channel blocks differ in length: %d vs %d", len(a), len(b))
	}
	if sampleRateHz <= 0 {
		return fmt.Errorf("sample rate must be positive, got %g", sampleRateHz)
	}

	p := vw.precision
	for i := range a {
		t := float64(startSample+uint64(i)) / sampleRateHz
		if _, err := fmt.Fprintf(vw.w, "%.*f,%.*f,%.*f\n", p, t, p, a[i], p, b[i]); err != nil {
			return fmt.Errorf("writing voltage row: %w", err)
		}
	}
	return vw.w.Flush()
}

// Close flushes buffered rows and closes the underlying file, when the
// writer owns one.
func (vw *VoltageWriter) Close() error {
	if err := vw.w.Flush(); err != nil {
		return err
	}
	if vw.closer != nil {
		return vw.closer.Close()
	}
	return nil
}

// SpectrumWriter rewrites a CSV file with the latest block's dual
// magnitude spectrum. Each write replaces the previous contents, so the
// file always holds exactly one spectrum.
type SpectrumWriter struct {
	path           string
	freqPrecision  int
	valuePrecision int
}

// NewSpectrumWriter validates precisions and prepares a writer for
// path. The file itself is created on first WriteSpectra call.
func NewSpectrumWriter(path string, freqPrecision, valuePrecision int) (*SpectrumWriter, error) {
	if freqPrecision < 0 || valuePrecision < 0 {
		return nil, fmt.Errorf("precision must not be negative, got %d and %d", freqPrecision, valuePrecision)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &SpectrumWriter{
		path:           path,
		freqPrecision:  freqPrecision,
		valuePrecision: valuePrecision,
	}, nil
}

// WriteSpectra replaces the file contents with header plus one row per
// bin of the two spectra.
func (sw *SpectrumWriter) WriteSpectra(a, b *spectral.MagnitudeSpectrum) (err error) {
	f, err := os.Create(sw.path)
	if err != nil {
		return fmt.Errorf("creating spectrum log: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return sw.writeTo(f, a, b)
}

func (sw *SpectrumWriter) writeTo(w io.Writer, a, b *spectral.MagnitudeSpectrum) error {
	if a == nil || b == nil {
		return fmt.Errorf("both spectra are required")
	}
	if !a.SameGeometry(b) {
		return fmt.Errorf("spectra geometry mismatch: %d bins vs %d bins", len(a.Bins), len(b.Bins))
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, spectrumHeader); err != nil {
		return fmt.Errorf("writing spectrum header: %w", err)
	}

	fp, vp := sw.freqPrecision, sw.valuePrecision
	for i := range a.Bins {
		_, err := fmt.Fprintf(bw, "%.*f,%.*f,%.*f,%.*f,%.*f\n",
			fp, a.Bins[i].FrequencyHz,
			vp, a.Bins[i].Magnitude,
			vp, a.Bins[i].AmplitudeV,
			vp, b.Bins[i].Magnitude,
			vp, b.Bins[i].AmplitudeV,
		)
		if err != nil {
			return fmt.Errorf("writing spectrum row: %w", err)
		}
	}
	return bw.Flush()
}
