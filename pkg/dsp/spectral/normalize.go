package spectral

// NormalizePhaseAngle maps a phase difference in degrees into [-90, 270].
//
// Exactly one adjustment pass is applied: values above 270 are brought
// down by a full turn, then values below -90 are brought up by one. The
// comparisons are strict, so 270 and -90 pass through unchanged, and a
// value already inside the range is a fixed point. For inputs within
// (-360, 360), the usual range of a difference of two atan2 results in
// degrees, a single pass is sufficient and the function is idempotent.
func NormalizePhaseAngle(deg float64) float64 {
	if deg > 270 {
		deg -= 360
	}
	if deg < -90 {
		deg += 360
	}
	return deg
}
