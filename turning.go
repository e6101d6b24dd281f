package steer

import (
	"fmt"
)

// TurningConfiguration describes the circular arc an agent follows while turning.
// A zero radius means the agent doesn't turn and moves straight.
type TurningConfiguration struct {
	Midpoint  Point         `yaml:"midpoint"`
	Radius    UnsignedFloat `yaml:"radius"`
	Clockwise bool          `yaml:"clockwise"`
}

// NewTurningConfiguration returns the configuration for turning around midpoint.
func NewTurningConfiguration(midpoint Point, radius UnsignedFloat, clockwise bool) TurningConfiguration {
	return TurningConfiguration{
		Midpoint:  midpoint,
		Radius:    radius,
		Clockwise: clockwise,
	}
}

// TurningConfigurationAt returns the configuration for turning with the given
// radius from a pose. The midpoint lies to the right of dir for clockwise turns and
// to the left of it otherwise.
func TurningConfigurationAt(pos Point, dir Vec2, radius float64, clockwise bool) TurningConfiguration {
	side := dir.NormalizeOrZero().Perp()
	if clockwise {
		side = side.Negate()
	}
	return TurningConfiguration{
		Midpoint:  pos.Translate(side.Mul(radius)),
		Radius:    ClampUnsigned(radius),
		Clockwise: clockwise,
	}
}

// IsStraight reports whether the configuration has a zero radius.
func (tc TurningConfiguration) IsStraight() bool {
	return tc.Radius.IsZero()
}

func (tc TurningConfiguration) Circle() Circle {
	return Circle{Center: tc.Midpoint, Radius: tc.Radius.Value()}
}

func (tc TurningConfiguration) String() string {
	sense := "ccw"
	if tc.Clockwise {
		sense = "cw"
	}
	return fmt.Sprintf("turn %s around %s r=%s", sense, tc.Midpoint, tc.Radius)
}

// MovementFlags describe what an agent may do to follow a path.
type MovementFlags uint8

const (
	// MayManeuver allows multi-point turns when a curve can't be driven in one go.
	MayManeuver MovementFlags = 1 << iota
	// MayShrinkTurningRadius allows turning tighter than the minimum turning radius
	// at the cost of path quality.
	MayShrinkTurningRadius
	MayMoveBackwards
)

// TurningConstraint describes the turning capability of an agent and the free
// space it needs. The zero value is unconstrained.
type TurningConstraint struct {
	MinTurningRadius UnsignedFloat `yaml:"min_turning_radius"`
	// LateralFreeSpace is the clearance the agent needs on each side of its path.
	LateralFreeSpace UnsignedFloat `yaml:"lateral_free_space"`
	ForwardFreeSpace UnsignedFloat `yaml:"forward_free_space"`
	// MaxTurnInPlaceFreeSpace is the free space needed when turning on the spot.
	MaxTurnInPlaceFreeSpace UnsignedFloat `yaml:"max_turn_in_place_free_space"`
	// CurveSmoothing widens curves beyond the minimum radius. 0 drives every curve
	// at the minimum turning radius.
	CurveSmoothing Percentage    `yaml:"curve_smoothing"`
	Movement       MovementFlags `yaml:"movement"`
}

// NewTurningConstraint returns a constraint with the given values.
func NewTurningConstraint(
	minTurningRadius, lateral, forward, turnInPlace UnsignedFloat,
	smoothing Percentage,
	movement MovementFlags,
) TurningConstraint {
	return TurningConstraint{
		MinTurningRadius:        minTurningRadius,
		LateralFreeSpace:        lateral,
		ForwardFreeSpace:        forward,
		MaxTurnInPlaceFreeSpace: turnInPlace,
		CurveSmoothing:          smoothing,
		Movement:                movement,
	}
}

// NavigationCapability is the subset of an agent's navigation capabilities that
// determines its turning constraint.
type NavigationCapability struct {
	TurningRadius float64
	Width         float64
	Length        float64
	// Clearance is added to every side of the agent's footprint.
	Clearance float64
	Flags     MovementFlags
}

// TurningConstraintFromCapability derives a constraint from an agent's footprint.
// Free space is half the footprint plus the clearance; turning in place needs the
// footprint's half diagonal.
func TurningConstraintFromCapability(nc NavigationCapability) TurningConstraint {
	halfDiag := 0.5 * Vec(nc.Width, nc.Length).Hypot()
	return TurningConstraint{
		MinTurningRadius:        ClampUnsigned(nc.TurningRadius),
		LateralFreeSpace:        ClampUnsigned(nc.Width/2 + nc.Clearance),
		ForwardFreeSpace:        ClampUnsigned(nc.Length/2 + nc.Clearance),
		MaxTurnInPlaceFreeSpace: ClampUnsigned(halfDiag + nc.Clearance),
		Movement:                nc.Flags,
	}
}

func (c TurningConstraint) CanManeuver() bool {
	return c.Movement&MayManeuver != 0
}

func (c TurningConstraint) CanShrinkTurningRadius() bool {
	return c.Movement&MayShrinkTurningRadius != 0
}

func (c TurningConstraint) CanMoveBackwards() bool {
	return c.Movement&MayMoveBackwards != 0
}

// IsUnconstrained reports whether c is the zero constraint.
func (c TurningConstraint) IsUnconstrained() bool {
	return c == TurningConstraint{}
}

// EffectiveTurningRadius returns the radius to plan curves with: the minimum
// turning radius widened by the curve smoothing factor, up to twice the minimum.
func (c TurningConstraint) EffectiveTurningRadius() float64 {
	return c.MinTurningRadius.Value() * (1 + c.CurveSmoothing.Value())
}
