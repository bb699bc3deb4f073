package spectral

import (
	"math"
	"testing"
)

func TestDeinterleave(t *testing.T) {
	interleaved := []float64{0, 10, 1, 11, 2, 12}

	a, b, err := Deinterleave(interleaved, 3)
	if err != nil {
		t.Fatalf("Deinterleave: unexpected error: %v", err)
	}

	wantA := []float64{0, 1, 2}
	wantB := []float64{10, 11, 12}
	for i := range wantA {
		if a[i] != wantA[i] {
			t.Errorf("channel A sample %d: want %g, got %g", i, wantA[i], a[i])
		}
		if b[i] != wantB[i] {
			t.Errorf("channel B sample %d: want %g, got %g", i, wantB[i], b[i])
		}
	}
}

func TestDeinterleaveErrors(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		blockSize int
	}{
		{"zero block size", 4, 0},
		{"negative block size", 4, -1},
		{"empty buffer", 0, 2},
		{"odd buffer", 5, 2},
		{"short buffer", 6, 4},
		{"long buffer", 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]float64, tt.length)
			a, b, err := Deinterleave(buf, tt.blockSize)
			if err == nil {
				t.Fatalf("Deinterleave(len %d, block %d): want error, got none", tt.length, tt.blockSize)
			}
			if a != nil || b != nil {
				t.Errorf("Deinterleave(len %d, block %d): want no data with error", tt.length, tt.blockSize)
			}
		})
	}
}

func TestDeinterleaveInto(t *testing.T) {
	a := make([]float64, 2)
	b := make([]float64, 2)

	if err := DeinterleaveInto(a, b, []float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("DeinterleaveInto: unexpected error: %v", err)
	}
	if a[0] != 1 || a[1] != 3 || b[0] != 2 || b[1] != 4 {
		t.Errorf("DeinterleaveInto: want a=[1 3] b=[2 4], got a=%v b=%v", a, b)
	}

	// Reused buffers are fully overwritten by the next call.
	if err := DeinterleaveInto(a, b, []float64{5, 6, 7, 8}); err != nil {
		t.Fatalf("DeinterleaveInto reuse: unexpected error: %v", err)
	}
	if a[0] != 5 || a[1] != 7 || b[0] != 6 || b[1] != 8 {
		t.Errorf("DeinterleaveInto reuse: want a=[5 7] b=[6 8], got a=%v b=%v", a, b)
	}

	if err := DeinterleaveInto(a, make([]float64, 3), []float64{1, 2, 3, 4}); err == nil {
		t.Error("DeinterleaveInto: want error for mismatched destinations")
	}
	if err := DeinterleaveInto(a, b, []float64{1, 2}); err == nil {
		t.Error("DeinterleaveInto: want error for short buffer")
	}
}

// Two distinct waveforms survive a scan-ordered round trip intact.
func TestDeinterleaveWaveforms(t *testing.T) {
	const n = 256

	interleaved := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		interleaved[2*i] = math.Sin(2 * math.Pi * float64(i) / 32)
		interleaved[2*i+1] = math.Cos(2 * math.Pi * float64(i) / 32)
	}

	a, b, err := Deinterleave(interleaved, n)
	if err != nil {
		t.Fatalf("Deinterleave: unexpected error: %v", err)
	}

	for i := 0; i < n; i++ {
		if want := math.Sin(2 * math.Pi * float64(i) / 32); a[i] != want {
			t.Fatalf("channel A sample %d: want %g, got %g", i, want, a[i])
		}
		if want := math.Cos(2 * math.Pi * float64(i) / 32); b[i] != want {
			t.Fatalf("channel B sample %d: want %g, got %g", i, want, b[i])
		}
	}
}
