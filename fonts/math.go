package fonts

import "math"

const nearlyZero = 1.0 / (1 << 12)

// FloatNearlyEqual reports whether a and b differ by at most 1/4096.
func FloatNearlyEqual(a, b float32) bool {
	return abs32(a-b) <= nearlyZero
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func round32(v float32) float32 {
	return float32(math.Round(float64(v)))
}

func hypot32(a, b float32) float32 {
	return float32(math.Hypot(float64(a), float64(b)))
}

func atan2Degrees(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)) * 180 / math.Pi)
}
