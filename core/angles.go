package core

import "math"

// Degree/radian plumbing for the solar math. Every public boundary in
// this package speaks degrees; radians stay confined to call sites of
// the math package.

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// normalizeDegrees maps an angle onto [0,360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// clampUnit confines v to [-1,1] before it hits asin/acos, guarding
// against float drift just outside the domain.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// clamp01 confines v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
