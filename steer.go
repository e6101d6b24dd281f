package steer

import "math"

const (
	// DefaultEpsilon is the default distance tolerance, in world units, for
	// functions that take an epsilon argument.
	DefaultEpsilon = 1e-5

	// AngleEpsilon is the tolerance below which an angle counts as zero.
	AngleEpsilon = 1e-9

	// sinEpsilon is the smallest sine for which a chord still defines a finite
	// radius.
	sinEpsilon = 1e-9
)

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// normalizeAngle maps th into [0, 2π).
func normalizeAngle(th float64) float64 {
	th = math.Mod(th, 2*math.Pi)
	if th < 0 {
		th += 2 * math.Pi
	}
	if th >= 2*math.Pi {
		th = 0
	}
	return th
}

type option[T any] struct {
	isSet bool
	value T
}

func (opt *option[T]) set(v T) {
	opt.isSet = true
	opt.value = v
}

func (opt option[T]) get() (T, bool) {
	return opt.value, opt.isSet
}
