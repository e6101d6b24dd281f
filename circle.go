package steer

import (
	"math"
)

type Circle struct {
	Center Point
	Radius float64
}

// ContainsApprox reports whether pt lies inside the circle or at most epsilon
// outside of it.
func (c Circle) ContainsApprox(pt Point, epsilon float64) bool {
	r := math.Abs(c.Radius) + epsilon
	return pt.DistanceSquared(c.Center) <= r*r
}

// Nearest returns the point of the closed disc that is closest to pt.
func (c Circle) Nearest(pt Point) Point {
	d := pt.Sub(c.Center)
	r := math.Abs(c.Radius)
	if h := d.Hypot(); h > r {
		return c.Center.Translate(d.Mul(r / h))
	}
	return pt
}

func (c Circle) IsInf() bool {
	return c.Center.IsInf() || math.IsInf(c.Radius, 0)
}

func (c Circle) IsNaN() bool {
	return c.Center.IsNaN() || math.IsNaN(c.Radius)
}

func pointOnCircle(center Point, radius float64, angle float64) Point {
	sin, cos := math.Sincos(angle)
	return center.Translate(
		Vec2{
			X: cos * radius,
			Y: sin * radius,
		})
}
