package sink

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/phase-skew-monitor/internal/daq"
	"github.com/RyanBlaney/phase-skew-monitor/pkg/dsp/spectral"
)

// StatusWriter renders the acquisition banner and the per-block status
// line on a console stream.
type StatusWriter struct {
	w     io.Writer
	title cases.Caser
}

// NewStatusWriter creates a status writer on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	return &StatusWriter{
		w:     w,
		title: cases.Title(language.English),
	}
}

// Banner prints the run header: device identity, sync mode and clock
// route, selection policy, and the column legend for the status lines.
func (sw *StatusWriter) Banner(info daq.DeviceInfo, policy spectral.SelectionPolicy) {
	fmt.Fprintf(sw.w, "Device:      %s (%s / %s)\n", info.Name, info.Channels[0], info.Channels[1])
	fmt.Fprintf(sw.w, "Sync:        %s via %s\n", sw.title.String(string(info.Sync)), info.Sync.ClockRoute())
	fmt.Fprintf(sw.w, "Policy:      %s\n", sw.title.String(string(policy)))
	fmt.Fprintf(sw.w, "Sampling:    %s at %s\n",
		humanize.Comma(int64(info.BlockSize))+" samples/block", formatHz(info.SampleRateHz))
	fmt.Fprintln(sw.w)
	fmt.Fprintf(sw.w, "%14s %14s %12s %12s %12s\n",
		"DSA samples", "MIO samples", "Frequency", "Skew (deg)", "Skew (sec)")
}

// Status prints one line for a processed block: cumulative samples per
// channel and the skew result. A block with no detection renders
// dashes, never NaN.
func (sw *StatusWriter) Status(dsaSamples, mioSamples uint64, result spectral.SkewResult) {
	freq, deg, sec := "-", "-", "-"
	if result.Detected {
		freq = formatHz(result.DetectedFrequencyHz)
		deg = fmt.Sprintf("%.2f", result.PhaseSkewDegrees)
		sec = fmt.Sprintf("%.2e", result.PhaseSkewSeconds)
	}
	fmt.Fprintf(sw.w, "%14s %14s %12s %12s %12s\n",
		humanize.Comma(int64(dsaSamples)), humanize.Comma(int64(mioSamples)), freq, deg, sec)
}

// formatHz renders a frequency with an SI prefix: 500 Hz, 1.50 kHz.
func formatHz(hz float64) string {
	value, prefix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%.2f %sHz", value, prefix)
}
