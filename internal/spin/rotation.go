package spin

import "math"

// ExtraTurns is the number of full revolutions before the wheel settles.
const ExtraTurns = 5

// jitterSpread keeps the pointer away from segment borders: at most 40% of a
// segment from its center.
const jitterSpread = 0.4

// RotationAngle returns the clockwise rotation in degrees that brings the
// center of segment index, shifted by jitter in [-1, 1], under a pointer at
// the top of the wheel. Segment i spans [i·360/count, (i+1)·360/count)
// measured clockwise from the top before rotating.
func RotationAngle(index, count, extraTurns int, jitter float64) float64 {
	if count <= 0 {
		return 0
	}
	jitter = math.Max(-1, math.Min(1, jitter))

	seg := 360.0 / float64(count)
	target := float64(index)*seg + seg/2 + jitter*seg*jitterSpread
	return float64(extraTurns)*360 + (360 - target)
}

// SegmentAt returns the segment under the pointer after rotating the wheel
// by angle degrees.
func SegmentAt(angle float64, count int) int {
	if count <= 0 {
		return -1
	}
	seg := 360.0 / float64(count)
	a := math.Mod(360-math.Mod(angle, 360), 360)
	return int(a/seg) % count
}
