package steer

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// TangentDirection returns the unit direction of travel at pointOnCircle when
// moving around midpoint in the given sense. It returns the zero vector if the
// point is the midpoint.
func TangentDirection(pointOnCircle, midpoint Point, clockwise bool) Vec2 {
	return tangentAtRadial(pointOnCircle.Sub(midpoint), clockwise).NormalizeOrZero()
}

// tangentAtRadial returns the (unnormalized) direction of travel at the point
// midpoint+radial.
func tangentAtRadial(radial Vec2, clockwise bool) Vec2 {
	if clockwise {
		return radial.Perp().Negate()
	}
	return radial.Perp()
}

// RadiusOfCircle returns the radius of the circle that touches tangentDir at
// tangentPos and also passes through secondPos.
//
// The radius is |chord| / (2 sin θ), where θ is the angle between the tangent and
// the chord. Collinear input has no finite solution and yields +Inf; a zero-length
// chord yields 0. A zero tangent direction is a precondition violation and is
// reported as [ErrInvalidArgument].
func RadiusOfCircle(tangentPos Point, tangentDir Vec2, secondPos Point) (float64, error) {
	if tangentDir.IsZero() {
		return 0, fmt.Errorf("tangent direction is zero: %w", ErrInvalidArgument)
	}
	chord := secondPos.Sub(tangentPos)
	l := chord.Hypot()
	if l == 0 {
		return 0, nil
	}
	return radiusFromChord(l, angleBetween(tangentDir, chord)), nil
}

// RadiusOfCircle3D is the 3D variant of [RadiusOfCircle].
func RadiusOfCircle3D(tangentPos, tangentDir, secondPos r3.Vector) (float64, error) {
	if tangentDir == (r3.Vector{}) {
		return 0, fmt.Errorf("tangent direction is zero: %w", ErrInvalidArgument)
	}
	chord := secondPos.Sub(tangentPos)
	l := chord.Norm()
	if l == 0 {
		return 0, nil
	}
	return radiusFromChord(l, float64(tangentDir.Angle(chord))), nil
}

func radiusFromChord(chordLength, theta float64) float64 {
	s := math.Sin(theta)
	if s < sinEpsilon {
		return math.Inf(1)
	}
	return chordLength / (2 * s)
}

// TangentPointsOnCircle returns the two points on the circle whose tangent is
// parallel to dir. The first point is where a counterclockwise traversal moves
// along dir, the second where a clockwise traversal does.
func TangentPointsOnCircle(midpoint Point, radius float64, dir Vec2) [2]Point {
	n := dir.NormalizeOrZero().Perp().Mul(radius)
	return [2]Point{
		midpoint.Translate(n.Negate()),
		midpoint.Translate(n),
	}
}

// TangentPointOnCircle returns the point on the circle at which a traversal in the
// given sense moves along dir.
func TangentPointOnCircle(midpoint Point, radius float64, dir Vec2, clockwise bool) Point {
	pts := TangentPointsOnCircle(midpoint, radius, dir)
	if clockwise {
		return pts[1]
	}
	return pts[0]
}

// AngleInDirection returns the angle swept when rotating p1 onto p2 around the
// origin in the given sense. The result is in [0, 2π). Angles within
// [AngleEpsilon] of zero are returned as zero in both senses.
func AngleInDirection(p1, p2 Vec2, clockwise bool) Radians {
	signed := p1.AngleTo(p2)
	if math.Abs(signed) < AngleEpsilon {
		return 0
	}
	if clockwise {
		signed = -signed
	}
	return Radians(normalizeAngle(signed))
}

// LengthOnCircle returns the arc length from p1 to p2, both relative to the
// circle's midpoint, in the given sense. The radius is taken from p1.
func LengthOnCircle(p1, p2 Vec2, clockwise bool) float64 {
	return LengthOnCircleWithRadius(p1, p2, clockwise, p1.Hypot())
}

// LengthOnCircleWithRadius is like [LengthOnCircle] with a known radius.
func LengthOnCircleWithRadius(p1, p2 Vec2, clockwise bool, radius float64) float64 {
	return radius * float64(AngleInDirection(p1, p2, clockwise))
}

// MovePointOnCircle advances current along the circle of tc by an arc length of
// distance, in the sense of tc. A zero-radius configuration doesn't move the point.
func MovePointOnCircle(current Point, tc TurningConfiguration, distance float64) Point {
	r := tc.Radius.Value()
	if r == 0 {
		return current
	}
	th := distance / r
	if tc.Clockwise {
		th = -th
	}
	return current.Transform(RotateAbout(th, tc.Midpoint))
}

// CircleCircleIntersection returns the intersections of two circles.
//
// Circles that touch within epsilon have a single intersection. Disjoint circles,
// circles containing each other, and coincident circles have none.
func CircleCircleIntersection(c1 Point, r1 float64, c2 Point, r2 float64, epsilon float64) ([2]Point, int) {
	dv := c2.Sub(c1)
	d := dv.Hypot()
	if d <= epsilon {
		return [2]Point{}, 0
	}
	if d > r1+r2+epsilon || d < math.Abs(r1-r2)-epsilon {
		return [2]Point{}, 0
	}

	u := dv.Div(d)
	// a is the distance from c1 to the radical line.
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	base := c1.Translate(u.Mul(a))
	h2 := r1*r1 - a*a
	if math.Abs(d-(r1+r2)) <= epsilon || math.Abs(d-math.Abs(r1-r2)) <= epsilon || h2 <= epsilon*epsilon {
		return [2]Point{base}, 1
	}
	h := u.Perp().Mul(math.Sqrt(h2))
	return [2]Point{base.Translate(h), base.Translate(h.Negate())}, 2
}

// CircleLineIntersectionAsDirectionFactor intersects a circle with the infinite
// line through a and b. Solutions are factors t of a + t·(b−a) in ascending order;
// they are not limited to the segment.
//
// A line touching the circle within epsilon has one solution. A degenerate line
// (a == b) has none.
func CircleLineIntersectionAsDirectionFactor(center Point, radius float64, a, b Point, epsilon float64) ([2]float64, int) {
	d := b.Sub(a)
	dd := d.Hypot2()
	if dd == 0 {
		return [2]float64{}, 0
	}
	l := math.Sqrt(dd)
	tc := d.Dot(center.Sub(a)) / dd
	dist := math.Abs(d.Cross(center.Sub(a))) / l
	switch {
	case dist > radius+epsilon:
		return [2]float64{}, 0
	case math.Abs(dist-radius) <= epsilon:
		return [2]float64{tc}, 1
	}
	half := math.Sqrt(max(radius*radius-dist*dist, 0)) / l
	return [2]float64{tc - half, tc + half}, 2
}

// CircleLineIntersection is like [CircleLineIntersectionAsDirectionFactor] but
// returns points.
func CircleLineIntersection(center Point, radius float64, a, b Point, epsilon float64) ([2]Point, int) {
	ts, n := CircleLineIntersectionAsDirectionFactor(center, radius, a, b, epsilon)
	var out [2]Point
	l := Line{a, b}
	for i, t := range ts[:n] {
		out[i] = l.Eval(t)
	}
	return out, n
}

// TangentPoints returns the points on the circle whose tangents pass through
// point.
//
// A point strictly inside the circle has no tangents. A point on the circle
// (within epsilon), or a circle of zero radius, has exactly one, the point itself
// or the center respectively.
func TangentPoints(center Point, radius float64, point Point, epsilon float64) ([2]Point, int) {
	if radius <= 0 {
		return [2]Point{center}, 1
	}
	v := point.Sub(center)
	d := v.Hypot()
	switch {
	case math.Abs(d-radius) <= epsilon:
		return [2]Point{point}, 1
	case d < radius:
		return [2]Point{}, 0
	}
	alpha := math.Acos(clamp(radius/d, -1, 1))
	u := v.Div(d).Mul(radius)
	return [2]Point{
		center.Translate(u.Rotate(alpha)),
		center.Translate(u.Rotate(-alpha)),
	}, 2
}

// PartialCircleSupportPoints approximates the arc of tc between start and goal
// with a polyline. Both endpoints are always included. density is the number of
// points per world unit of the straight distance between start and goal.
//
// If forward is true, the arc is traversed in the sense of tc, otherwise in the
// opposite sense, which covers the other part of the circle. Heights are
// interpolated linearly between start and goal.
func PartialCircleSupportPoints(tc TurningConfiguration, start, goal r3.Vector, density float64, forward bool, proj PlanarProjector) []r3.Vector {
	s := proj.Project(start)
	g := proj.Project(goal)
	n := max(int(math.Ceil(s.Distance(g)*density)), 1)

	sense := tc
	if !forward {
		sense.Clockwise = !sense.Clockwise
	}
	arc := NewArc(sense, s, g)

	hs := proj.Height(start)
	hg := proj.Height(goal)
	out := make([]r3.Vector, 0, n+1)
	out = append(out, start)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		out = append(out, proj.Unproject(arc.Eval(t), hs+(hg-hs)*t))
	}
	out = append(out, goal)
	return out
}
