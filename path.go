package steer

import (
	"github.com/golang/geo/r3"
)

// Quality rates a planned movement. Higher values are better, so candidates can be
// compared with < and >.
type Quality int

const (
	NeedsMoreSpace Quality = iota
	NeedsReducedTurningRadius
	NeedsManeuvering
	IdealSimpleCurve
	IdealStraightSegment
)

func (q Quality) String() string {
	switch q {
	case NeedsMoreSpace:
		return "needs more space"
	case NeedsReducedTurningRadius:
		return "needs reduced turning radius"
	case NeedsManeuvering:
		return "needs maneuvering"
	case IdealSimpleCurve:
		return "ideal simple curve"
	case IdealStraightSegment:
		return "ideal straight segment"
	default:
		return "unknown quality"
	}
}

func (q Quality) MarshalYAML() (any, error) { return q.String(), nil }

// Path is an ordered sequence of waypoints.
type Path struct {
	Waypoints []Waypoint `yaml:"waypoints"`
	// Quality is the worst quality of any movement along the path.
	Quality Quality `yaml:"quality"`
}

// Append adds wp to the path unless it is at the same position as the last
// waypoint, in which case the last waypoint is updated with wp's direction and
// turn if it doesn't have them yet. It reports whether a waypoint was added.
func (p *Path) Append(wp Waypoint) bool {
	return p.appendApprox(wp, DefaultEpsilon)
}

// appendApprox is like Append, with positions closer than epsilon counting as the
// same.
func (p *Path) appendApprox(wp Waypoint, epsilon float64) bool {
	if n := len(p.Waypoints); n > 0 {
		last := &p.Waypoints[n-1]
		if last.Position.Sub(wp.Position).Norm() <= epsilon {
			if last.Direction == nil {
				last.Direction = wp.Direction
			}
			if last.Turn == nil {
				last.Turn = wp.Turn
			}
			return false
		}
	}
	p.Waypoints = append(p.Waypoints, wp)
	return true
}

// Len returns the number of waypoints.
func (p Path) Len() int {
	return len(p.Waypoints)
}

// Positions returns the positions of all waypoints.
func (p Path) Positions() []r3.Vector {
	out := make([]r3.Vector, len(p.Waypoints))
	for i, wp := range p.Waypoints {
		out[i] = wp.Position
	}
	return out
}

// Length returns the length of the path as driven: arcs for waypoints with a turn
// and straight lines otherwise, measured in the plane of proj.
func (p Path) Length(proj PlanarProjector) float64 {
	var l float64
	for i := 1; i < len(p.Waypoints); i++ {
		from := proj.Project(p.Waypoints[i-1].Position)
		to := proj.Project(p.Waypoints[i].Position)
		if tc := p.Waypoints[i].Turn; tc != nil && !tc.IsStraight() {
			l += NewArc(*tc, from, to).Length()
		} else {
			l += from.Distance(to)
		}
	}
	return l
}

// BoundingBox returns the bounding box of all waypoint positions.
func (p Path) BoundingBox() (Box3, bool) {
	return BoundingBox3D(p.Positions())
}

// Footprint returns the area in the plane of proj that an agent with the given
// lateral free space covers while driving the path. Arcs count with their full
// extent, not just their end points.
func (p Path) Footprint(proj PlanarProjector, lateral float64) (Rect, bool) {
	if len(p.Waypoints) == 0 {
		return Rect{}, false
	}
	from := proj.Project(p.Waypoints[0].Position)
	bbox := NewRectFromPoints(from, from)
	for _, wp := range p.Waypoints[1:] {
		to := proj.Project(wp.Position)
		if tc := wp.Turn; tc != nil && !tc.IsStraight() {
			bbox = bbox.Union(NewArc(*tc, from, to).BoundingBox())
		} else {
			bbox = bbox.UnionPoint(to)
		}
		from = to
	}
	return bbox.Inflate(lateral, lateral), true
}
