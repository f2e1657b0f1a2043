package common

// Logical screen size. Levels are authored in these units.
const (
	BaseWidth  = 800
	BaseHeight = 600
)

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Fraction returns v/limit clamped to [0, 1]. A non-positive limit yields 0.
func Fraction(v, limit float64) float32 {
	if limit <= 0 {
		return 0
	}
	f := v / limit
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return float32(f)
}
