package steer

import (
	"math"
)

// Arc is a circular arc. It starts at StartAngle and sweeps by SweepAngle radians;
// negative sweeps run clockwise.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	SweepAngle float64
}

// NewArc returns the arc of tc that starts at from and ends at to, traversed in the
// sense of tc. Both points are assumed to lie on the circle.
func NewArc(tc TurningConfiguration, from, to Point) Arc {
	r0 := from.Sub(tc.Midpoint)
	sweep := float64(AngleInDirection(r0, to.Sub(tc.Midpoint), tc.Clockwise))
	if tc.Clockwise {
		sweep = -sweep
	}
	return Arc{
		Center:     tc.Midpoint,
		Radius:     tc.Radius.Value(),
		StartAngle: r0.Angle(),
		SweepAngle: sweep,
	}
}

// Eval returns the point at t ∈ [0, 1] along the arc.
func (a Arc) Eval(t float64) Point {
	return pointOnCircle(a.Center, a.Radius, a.StartAngle+t*a.SweepAngle)
}

func (a Arc) Start() Point { return a.Eval(0) }
func (a Arc) End() Point   { return a.Eval(1) }

// Length returns the arc length.
func (a Arc) Length() float64 {
	return math.Abs(a.SweepAngle) * a.Radius
}

// Tangent returns the unit direction of travel at t.
func (a Arc) Tangent(t float64) Vec2 {
	d := VecFromAngle(a.StartAngle + t*a.SweepAngle).Perp()
	if a.SweepAngle < 0 {
		return d.Negate()
	}
	return d
}

// Nearest returns the squared distance from pt to the closest point of the arc, and
// that point's parameter in [0, 1].
func (a Arc) Nearest(pt Point) (distSq, t float64) {
	if a.SweepAngle != 0 && !pt.ApproxEqual(a.Center, 0) {
		// Parameter of the radial projection of pt, if it falls inside the sweep.
		rel := normalizeAngle(pt.Sub(a.Center).Angle() - a.StartAngle)
		if a.SweepAngle < 0 {
			rel = normalizeAngle(-rel)
		}
		if rel <= math.Abs(a.SweepAngle) {
			t := rel / math.Abs(a.SweepAngle)
			return pt.DistanceSquared(a.Eval(t)), t
		}
	}
	d0 := pt.DistanceSquared(a.Start())
	d1 := pt.DistanceSquared(a.End())
	if d1 < d0 {
		return d1, 1
	}
	return d0, 0
}

// SupportPoints approximates the arc with n+1 evenly spaced points, including both
// endpoints.
func (a Arc) SupportPoints(n int) []Point {
	n = max(n, 1)
	out := make([]Point, 0, n+1)
	for i := 0; i < n+1; i++ {
		out = append(out, a.Eval(float64(i)/float64(n)))
	}
	return out
}

func (a Arc) BoundingBox() Rect {
	bbox := NewRectFromPoints(a.Start(), a.End())
	// Include every axis extreme covered by the sweep.
	for k := 0; k < 4; k++ {
		th := float64(k) * math.Pi / 2
		rel := normalizeAngle(th - a.StartAngle)
		if a.SweepAngle < 0 {
			rel = normalizeAngle(-rel)
		}
		if rel <= math.Abs(a.SweepAngle) {
			bbox = bbox.UnionPoint(pointOnCircle(a.Center, a.Radius, th))
		}
	}
	return bbox
}

// Rotate `pt` about the origin by `angle` radians.
func rotatePt(pt Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{
		X: pt.X*cos - pt.Y*sin,
		Y: pt.X*sin + pt.Y*cos,
	}
}
