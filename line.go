package steer

import (
	"fmt"
	"math"
)

// Line represents a line segment.
type Line struct {
	/// The line's start point.
	P0 Point
	/// The line's end point.
	P1 Point
}

// Length returns the length of the line.
func (l Line) Length() float64 {
	return l.P1.Sub(l.P0).Hypot()
}

// Computes the point where two lines, if extended to infinity, would cross.
func (l Line) CrossingPoint(o Line) (Point, bool) {
	ab := l.P1.Sub(l.P0)
	cd := o.P1.Sub(o.P0)
	pcd := ab.Cross(cd)
	if pcd == 0 {
		return Point{}, false
	}
	h := ab.Cross(l.P0.Sub(o.P0)) / pcd
	return o.P0.Translate(cd.Mul(h)), true
}

func (l Line) Eval(t float64) Point {
	return l.P0.Lerp(l.P1, t)
}

// Nearest returns the squared distance from pt to the closest point of the
// segment, and that point's parameter in [0, 1].
func (l Line) Nearest(pt Point) (distSq, t float64) {
	d := l.P1.Sub(l.P0)
	dotp := d.Dot(pt.Sub(l.P0))
	dSquared := d.Dot(d)
	if dotp <= 0.0 {
		return pt.Sub(l.P0).Hypot2(), 0.0
	} else if dotp >= dSquared {
		return pt.Sub(l.P1).Hypot2(), 1.0
	} else {
		t := dotp / dSquared
		dist := pt.Sub(l.Eval(t)).Hypot2()
		return dist, t
	}
}

// Project returns the unclamped parameter of the point on the infinite extension
// of l that is closest to pt. Degenerate segments project everything onto t = 0.
func (l Line) Project(pt Point) float64 {
	d := l.P1.Sub(l.P0)
	dSquared := d.Dot(d)
	if dSquared == 0 {
		return 0
	}
	return d.Dot(pt.Sub(l.P0)) / dSquared
}

// DirectedLine is an infinite line given by an origin and a non-zero direction.
//
// The zero value is not a valid line; use [NewLineFromPoints] or
// [NewLineFromDirection].
type DirectedLine struct {
	origin    Point
	direction Vec2
}

// NewLineFromPoints returns the line through a and b, directed from a towards b.
// It returns [ErrInvalidArgument] if a and b are the same point.
func NewLineFromPoints(a, b Point) (DirectedLine, error) {
	return NewLineFromDirection(a, b.Sub(a))
}

// NewLineFromDirection returns the line through origin with the given direction.
// It returns [ErrInvalidArgument] if dir is zero or not finite.
func NewLineFromDirection(origin Point, dir Vec2) (DirectedLine, error) {
	if dir.IsZero() || dir.IsNaN() || dir.IsInf() {
		return DirectedLine{}, fmt.Errorf("line direction %s: %w", dir, ErrInvalidArgument)
	}
	return DirectedLine{origin: origin, direction: dir}, nil
}

// MustLineFromPoints is like [NewLineFromPoints] but panics on error.
func MustLineFromPoints(a, b Point) DirectedLine {
	l, err := NewLineFromPoints(a, b)
	if err != nil {
		panic(err)
	}
	return l
}

func (l DirectedLine) Origin() Point   { return l.origin }
func (l DirectedLine) Direction() Vec2 { return l.direction }

func (l DirectedLine) String() string {
	return fmt.Sprintf("%s + t·%s", l.origin, l.direction)
}

// Side returns the cross product of the line's direction and the vector from the
// origin to pt. It is positive for points left of the line, negative for points
// right of it, and zero for points on it. Its magnitude is the distance scaled by
// the length of the direction.
func (l DirectedLine) Side(pt Point) float64 {
	return l.direction.Cross(pt.Sub(l.origin))
}

// Distance returns the unsigned distance from pt to the line.
func (l DirectedLine) Distance(pt Point) float64 {
	return math.Abs(l.Side(pt)) / l.direction.Hypot()
}

// Factor returns t such that origin + t·direction is the point of the line closest
// to pt.
func (l DirectedLine) Factor(pt Point) float64 {
	return l.direction.Dot(pt.Sub(l.origin)) / l.direction.Hypot2()
}

// Eval returns origin + t·direction.
func (l DirectedLine) Eval(t float64) Point {
	return l.origin.Translate(l.direction.Mul(t))
}

// ClosestPoint returns the point of the line closest to pt.
func (l DirectedLine) ClosestPoint(pt Point) Point {
	return l.Eval(l.Factor(pt))
}

// Intersect returns the point where l and o cross. It reports false for parallel
// lines.
func (l DirectedLine) Intersect(o DirectedLine) (Point, bool) {
	return Line{l.origin, l.Eval(1)}.CrossingPoint(Line{o.origin, o.Eval(1)})
}
