package steer

import (
	"github.com/golang/geo/r3"
)

// SpatialConfiguration2D is a position with a direction in the plane. A zero
// direction means the direction is unknown or unconstrained; check
// [SpatialConfiguration2D.HasDirection] before treating it as a unit vector.
type SpatialConfiguration2D struct {
	Position  Point
	Direction Vec2
}

func (sc SpatialConfiguration2D) HasDirection() bool {
	return !sc.Direction.IsZero()
}

// UnitDirection returns the normalized direction, or the zero vector.
func (sc SpatialConfiguration2D) UnitDirection() Vec2 {
	return sc.Direction.NormalizeOrZero()
}

// SpatialConfiguration3D is the world-space counterpart of
// [SpatialConfiguration2D].
type SpatialConfiguration3D struct {
	Position  r3.Vector `yaml:"position"`
	Direction r3.Vector `yaml:"direction"`
}

func (sc SpatialConfiguration3D) HasDirection() bool {
	return sc.Direction != (r3.Vector{})
}

// Project maps the configuration onto the plane of proj.
func (sc SpatialConfiguration3D) Project(proj PlanarProjector) SpatialConfiguration2D {
	return SpatialConfiguration2D{
		Position:  proj.Project(sc.Position),
		Direction: proj.ProjectDirection(sc.Direction),
	}
}
