package spectral

import (
	"fmt"
)

// Deinterleave splits a scan-ordered dual-channel buffer into its two
// per-channel blocks of blockSize samples each. Sample order is
// A0 B0 A1 B1 ...: channel A occupies the even indices, channel B the
// odd ones.
//
// The buffer must hold exactly 2*blockSize samples; anything else is a
// structural error and no data is returned.
func Deinterleave(interleaved []float64, blockSize int) (a, b []float64, err error) {
	if blockSize <= 0 {
		return nil, nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	a = make([]float64, blockSize)
	b = make([]float64, blockSize)
	if err := DeinterleaveInto(a, b, interleaved); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// DeinterleaveInto is Deinterleave writing into caller-owned blocks, so
// a long-running consumer can reuse its buffers across calls. a and b
// must be the same length and interleaved exactly twice that.
func DeinterleaveInto(a, b, interleaved []float64) error {
	if len(a) == 0 || len(a) != len(b) {
		return fmt.Errorf("destination blocks must be same non-zero length, got %d and %d", len(a), len(b))
	}
	if len(interleaved) != 2*len(a) {
		return fmt.Errorf("interleaved buffer holds %d samples, two channels of %d require %d",
			len(interleaved), len(a), 2*len(a))
	}

	for i := range a {
		a[i] = interleaved[2*i]
		b[i] = interleaved[2*i+1]
	}
	return nil
}
