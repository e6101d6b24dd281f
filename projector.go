package steer

import (
	"github.com/golang/geo/r3"
)

// PlanarProjector maps world positions onto a 2D plane spanned by two orthonormal
// axes through an origin. The plane's normal is XAxis × YAxis; the signed distance
// along the normal is the height of a position above the plane.
type PlanarProjector struct {
	Origin r3.Vector `yaml:"origin"`
	XAxis  r3.Vector `yaml:"x_axis"`
	YAxis  r3.Vector `yaml:"y_axis"`
}

// GroundProjector returns the projector for a y-up world whose ground plane is
// spanned by the world X and Z axes.
//
// World Z maps to -y so that the 2D frame keeps its y-up orientation when seen
// from above.
func GroundProjector(origin r3.Vector) PlanarProjector {
	return PlanarProjector{
		Origin: origin,
		XAxis:  r3.Vector{X: 1},
		YAxis:  r3.Vector{Z: -1},
	}
}

// IdentityProjector maps (x, y, z) to (x, y), with z as the height.
var IdentityProjector = PlanarProjector{
	XAxis: r3.Vector{X: 1},
	YAxis: r3.Vector{Y: 1},
}

func (pp PlanarProjector) normal() r3.Vector {
	return pp.XAxis.Cross(pp.YAxis)
}

// Project returns the 2D position of v in the plane.
func (pp PlanarProjector) Project(v r3.Vector) Point {
	d := v.Sub(pp.Origin)
	return Point{X: d.Dot(pp.XAxis), Y: d.Dot(pp.YAxis)}
}

// ProjectDirection returns the 2D component of the direction v.
func (pp PlanarProjector) ProjectDirection(v r3.Vector) Vec2 {
	return Vec2{X: v.Dot(pp.XAxis), Y: v.Dot(pp.YAxis)}
}

// Height returns the signed distance of v from the plane.
func (pp PlanarProjector) Height(v r3.Vector) float64 {
	return v.Sub(pp.Origin).Dot(pp.normal())
}

// Unproject returns the world position of pt lifted by height along the plane's
// normal.
func (pp PlanarProjector) Unproject(pt Point, height float64) r3.Vector {
	return pp.Origin.
		Add(pp.XAxis.Mul(pt.X)).
		Add(pp.YAxis.Mul(pt.Y)).
		Add(pp.normal().Mul(height))
}

// UnprojectDirection returns the in-plane world direction of v.
func (pp PlanarProjector) UnprojectDirection(v Vec2) r3.Vector {
	return pp.XAxis.Mul(v.X).Add(pp.YAxis.Mul(v.Y))
}

// TangentDirection3D is [TangentDirection] for world positions. The result lies in
// the plane.
func (pp PlanarProjector) TangentDirection3D(pointOnCircle, midpoint r3.Vector, clockwise bool) r3.Vector {
	return pp.UnprojectDirection(TangentDirection(pp.Project(pointOnCircle), pp.Project(midpoint), clockwise))
}

// AngleInDirection3D is [AngleInDirection] for world vectors relative to a local
// origin.
func (pp PlanarProjector) AngleInDirection3D(p1, p2 r3.Vector, clockwise bool) Radians {
	return AngleInDirection(pp.ProjectDirection(p1), pp.ProjectDirection(p2), clockwise)
}

// LengthOnCircle3D is [LengthOnCircle] for world vectors relative to the circle's
// midpoint.
func (pp PlanarProjector) LengthOnCircle3D(p1, p2 r3.Vector, clockwise bool) float64 {
	return LengthOnCircle(pp.ProjectDirection(p1), pp.ProjectDirection(p2), clockwise)
}

// MovePointOnCircle3D is [MovePointOnCircle] for world positions. The height of
// current is preserved.
func (pp PlanarProjector) MovePointOnCircle3D(current r3.Vector, tc TurningConfiguration, distance float64) r3.Vector {
	moved := MovePointOnCircle(pp.Project(current), tc, distance)
	return pp.Unproject(moved, pp.Height(current))
}
