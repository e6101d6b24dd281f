package steer

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// DynamicPortal is a crossable region modelled as a disc: the home position plus
// the free space around it.
type DynamicPortal struct {
	Home      r3.Vector     `yaml:"home"`
	FreeSpace UnsignedFloat `yaml:"free_space"`
}

// EdgePortal is a crossable region given by its left and right end points, as seen
// when crossing it.
type EdgePortal struct {
	Left  r3.Vector `yaml:"left"`
	Right r3.Vector `yaml:"right"`
}

func NewDynamicPortal(home r3.Vector, freeSpace UnsignedFloat) DynamicPortal {
	return DynamicPortal{Home: home, FreeSpace: freeSpace}
}

// DynamicPortalFromEdge returns the disc that spans the edge.
func DynamicPortalFromEdge(e EdgePortal) DynamicPortal {
	return DynamicPortal{
		Home:      e.Left.Add(e.Right).Mul(0.5),
		FreeSpace: ClampUnsigned(0.5 * e.Left.Distance(e.Right)),
	}
}

// EdgePortal returns the edge of the portal that is perpendicular to crossing, a
// direction in the plane of proj.
func (dp DynamicPortal) EdgePortal(crossing Vec2, proj PlanarProjector) EdgePortal {
	left := proj.UnprojectDirection(crossing.NormalizeOrZero().Perp()).Mul(dp.FreeSpace.Value())
	return EdgePortal{
		Left:  dp.Home.Add(left),
		Right: dp.Home.Sub(left),
	}
}

// Shrink returns the portal with its free space reduced by amount. Free space
// never drops below zero; such portals collapse to their home position.
func (dp DynamicPortal) Shrink(amount float64) DynamicPortal {
	dp.FreeSpace = ClampUnsigned(dp.FreeSpace.Value() - amount)
	return dp
}

// Grow returns the portal with its free space increased by amount.
func (dp DynamicPortal) Grow(amount float64) DynamicPortal {
	dp.FreeSpace = ClampUnsigned(dp.FreeSpace.Value() + amount)
	return dp
}

// Disc returns the portal's projection onto the plane of proj.
func (dp DynamicPortal) Disc(proj PlanarProjector) Circle {
	return Circle{Center: proj.Project(dp.Home), Radius: dp.FreeSpace.Value()}
}

func (dp DynamicPortal) String() string {
	return fmt.Sprintf("portal %v free=%s", dp.Home, dp.FreeSpace)
}

// InterpolateLinearly interpolates home position and free space between a and b.
// The free space is clamped at zero to absorb round-off.
func InterpolateLinearly(a, b DynamicPortal, f Percentage) DynamicPortal {
	t := f.Value()
	fa := a.FreeSpace.Value()
	fb := b.FreeSpace.Value()
	return DynamicPortal{
		Home:      a.Home.Add(b.Home.Sub(a.Home).Mul(t)),
		FreeSpace: ClampUnsigned(fa + (fb-fa)*t),
	}
}
