package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
)

// minBlockSize is the smallest block a one-sided spectrum makes sense for.
const minBlockSize = 2

// Transform computes one-sided spectra of real-valued sample blocks.
//
// Per-length state (bin geometry and the output buffer) is derived once
// and reused for every block of the same length, so repeated transforms
// of a fixed block size do not re-allocate. A Transform is not safe for
// concurrent use; the acquisition model processes blocks serially.
type Transform struct {
	plans map[int]*transformPlan
}

// transformPlan holds the derived state for one block length.
type transformPlan struct {
	blockSize int
	bins      []complex128
}

// NewTransform creates a transform with an empty plan cache.
func NewTransform() *Transform {
	return &Transform{
		plans: make(map[int]*transformPlan),
	}
}

// Compute returns the first N/2+1 complex bins of the DFT of block,
// where N is len(block). No window is applied; blocks are transformed
// exactly as sampled.
//
// The returned slice is owned by the Transform and remains valid until
// the next Compute call with a block of the same length.
func (t *Transform) Compute(block []float64) ([]complex128, error) {
	n := len(block)
	if n < minBlockSize {
		return nil, fmt.Errorf("block length %d is too short for a spectrum (minimum %d)", n, minBlockSize)
	}

	plan, ok := t.plans[n]
	if !ok {
		plan = &transformPlan{
			blockSize: n,
			bins:      make([]complex128, n/2+1),
		}
		t.plans[n] = plan
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2.
	full := fft.FFTReal(block)
	copy(plan.bins, full[:len(plan.bins)])

	return plan.bins, nil
}

// BinCount returns the number of one-sided bins for a block of n samples.
func BinCount(n int) int {
	return n/2 + 1
}
