package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

const spectrumColumns = 5

// SpectrumData holds one dual-channel magnitude spectrum loaded from a
// spectrum CSV, one amplitude per frequency bin and channel.
type SpectrumData struct {
	Frequencies []float64 // Bin center frequencies in Hz, ascending
	DSA         []float64 // Channel A amplitudes in volts
	MIO         []float64 // Channel B amplitudes in volts

	FrequencyMin float64
	FrequencyMax float64
}

// Bins returns the number of frequency bins.
func (s *SpectrumData) Bins() int {
	return len(s.Frequencies)
}

// PeakAmplitude returns the largest amplitude across both channels.
func (s *SpectrumData) PeakAmplitude() float64 {
	peak := 0.0
	for i := range s.Frequencies {
		peak = max(peak, s.DSA[i], s.MIO[i])
	}
	return peak
}

// LoadSpectrumCSV reads a spectrum CSV written by an acquisition run.
// The file carries five columns per row: frequency, then magnitude and
// amplitude for each channel. Magnitude columns are skipped; the
// renderer works from amplitudes.
func LoadSpectrumCSV(path string) (*SpectrumData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spectrum file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = spectrumColumns

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading spectrum header: %w", err)
	}
	if header[0] != "Frequency (Hz)" {
		return nil, fmt.Errorf("unexpected spectrum header, first column is %q", header[0])
	}

	spec := &SpectrumData{
		FrequencyMin: math.MaxFloat64,
		FrequencyMax: -math.MaxFloat64,
	}
	for row := 1; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading spectrum row %d: %w", row, err)
		}

		freq, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing frequency at row %d: %w", row, err)
		}
		dsaAmp, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing channel A amplitude at row %d: %w", row, err)
		}
		mioAmp, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing channel B amplitude at row %d: %w", row, err)
		}

		spec.Frequencies = append(spec.Frequencies, freq)
		spec.DSA = append(spec.DSA, dsaAmp)
		spec.MIO = append(spec.MIO, mioAmp)
		spec.FrequencyMin = min(spec.FrequencyMin, freq)
		spec.FrequencyMax = max(spec.FrequencyMax, freq)
	}

	if spec.Bins() < 2 {
		return nil, fmt.Errorf("spectrum holds %d bins, need at least 2", spec.Bins())
	}
	return spec, nil
}
