package steer

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Radians is an angle in radians. It is never normalized implicitly.
type Radians float64

// Degrees returns the angle in degrees.
func (r Radians) Degrees() float64 {
	return float64(r) * 180 / math.Pi
}

// UnsignedFloat is a float64 that is never negative.
//
// The zero value is 0.
type UnsignedFloat struct {
	v float64
}

// UnsignedZero is the zero UnsignedFloat.
var UnsignedZero = UnsignedFloat{}

// NewUnsignedFloat returns v as an UnsignedFloat. Negative values and NaN are
// rejected with [ErrInvalidArgument].
func NewUnsignedFloat(v float64) (UnsignedFloat, error) {
	if v < 0 || math.IsNaN(v) {
		return UnsignedFloat{}, fmt.Errorf("unsigned float %g: %w", v, ErrInvalidArgument)
	}
	return UnsignedFloat{v}, nil
}

// MustUnsigned is like [NewUnsignedFloat] but panics on error.
func MustUnsigned(v float64) UnsignedFloat {
	u, err := NewUnsignedFloat(v)
	if err != nil {
		panic(err)
	}
	return u
}

// ClampUnsigned returns v as an UnsignedFloat, replacing negative values and NaN
// with zero.
func ClampUnsigned(v float64) UnsignedFloat {
	if !(v > 0) {
		return UnsignedFloat{}
	}
	return UnsignedFloat{v}
}

func (u UnsignedFloat) Value() float64 { return u.v }

func (u UnsignedFloat) IsZero() bool { return u.v == 0 }

func (u UnsignedFloat) String() string {
	return fmt.Sprintf("%g", u.v)
}

// Percentage is a factor in [0, 1].
type Percentage struct {
	v float64
}

var (
	PercentageZero = Percentage{0}
	PercentageFull = Percentage{1}
)

// NewPercentage returns v as a Percentage. Values outside of [0, 1] are clamped to
// the nearest bound and reported on the package logger; this never fails. NaN
// becomes 0.
func NewPercentage(v float64) Percentage {
	if v >= 0 && v <= 1 {
		return Percentage{v}
	}
	c := 0.0
	if v > 1 {
		c = 1
	}
	Logger().Warn("percentage out of range, clamping",
		zap.Float64("value", v),
		zap.Float64("clamped", c))
	return Percentage{c}
}

func (p Percentage) Value() float64 { return p.v }

func (p Percentage) String() string {
	return fmt.Sprintf("%g%%", p.v*100)
}

// MarshalYAML and UnmarshalYAML let configuration files use plain numbers.

func (u UnsignedFloat) MarshalYAML() (any, error) { return u.v, nil }

func (u *UnsignedFloat) UnmarshalYAML(unmarshal func(any) error) error {
	var v float64
	if err := unmarshal(&v); err != nil {
		return err
	}
	nu, err := NewUnsignedFloat(v)
	if err != nil {
		return err
	}
	*u = nu
	return nil
}

func (p Percentage) MarshalYAML() (any, error) { return p.v, nil }

func (p *Percentage) UnmarshalYAML(unmarshal func(any) error) error {
	var v float64
	if err := unmarshal(&v); err != nil {
		return err
	}
	*p = NewPercentage(v)
	return nil
}
