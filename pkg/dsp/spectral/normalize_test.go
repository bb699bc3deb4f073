package spectral

import (
	"math"
	"testing"
)

func TestNormalizePhaseAngle(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"zero", 0, 0},
		{"in range positive", 45, 45},
		{"in range high", 180, 180},
		{"upper boundary unchanged", 270, 270},
		{"just above upper boundary", 270.5, -89.5},
		{"wraps down", 300, -60},
		{"near full turn", 359.5, -0.5},
		{"lower boundary unchanged", -90, -90},
		{"just below lower boundary", -90.5, 269.5},
		{"wraps up", -100, 260},
		{"near negative full turn", -359.5, 0.5},
		{"small negative", -45, -45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhaseAngle(tt.input)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NormalizePhaseAngle(%g): want %g, got %g", tt.input, tt.want, got)
			}
		})
	}
}

// A wrapped value must already be in range: -100 becomes 260 and 260
// stays 260, with no second adjustment pulling it back around.
func TestNormalizePhaseAngleSingleAdjustment(t *testing.T) {
	got := NormalizePhaseAngle(-100)
	if got != 260 {
		t.Fatalf("NormalizePhaseAngle(-100): want 260, got %g", got)
	}
	if again := NormalizePhaseAngle(got); again != got {
		t.Errorf("NormalizePhaseAngle(%g): want %g unchanged, got %g", got, got, again)
	}
}

func TestNormalizePhaseAngleIdempotent(t *testing.T) {
	for deg := -359.9; deg < 360; deg += 0.1 {
		once := NormalizePhaseAngle(deg)
		twice := NormalizePhaseAngle(once)
		if once != twice {
			t.Fatalf("not idempotent at %g: first %g, second %g", deg, once, twice)
		}
		if once < -90-1e-9 || once > 270+1e-9 {
			t.Fatalf("NormalizePhaseAngle(%g) = %g, outside [-90, 270]", deg, once)
		}
	}
}
