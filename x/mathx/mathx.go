package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scale8 scales v by s/255 with 16-bit intermediates (channel brightness).
func Scale8(v, s uint8) uint8 {
	return uint8((uint16(v) * uint16(s)) / 255)
}
