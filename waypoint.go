package steer

import (
	"github.com/golang/geo/r3"
)

type WaypointFlags uint8

const (
	// WaypointPrimaryMap marks waypoints that lie on the primary navigation map.
	WaypointPrimaryMap WaypointFlags = 1 << iota
	// WaypointMovingForward is set when the agent reaches the waypoint driving
	// forwards.
	WaypointMovingForward
	// WaypointEvasionInserted marks waypoints inserted to evade an obstacle.
	WaypointEvasionInserted
	// WaypointFromLegacyRouter marks waypoints produced by the legacy router.
	WaypointFromLegacyRouter
)

// ElementID identifies a world element or lane node. The zero ID means none.
type ElementID uint64

// Waypoint is one point of a [Path].
type Waypoint struct {
	Position r3.Vector `yaml:"position"`
	// Direction is the facing direction at the waypoint, if any.
	Direction *r3.Vector `yaml:"direction,omitempty"`
	// Portal is the region the agent crosses at this waypoint.
	Portal       DynamicPortal `yaml:"portal"`
	WorldElement ElementID     `yaml:"world_element,omitempty"`
	Node         ElementID     `yaml:"node,omitempty"`
	Flags        WaypointFlags `yaml:"flags,omitempty"`
	// Turn is the arc the agent follows to reach this waypoint. It is nil if the
	// agent arrives moving straight.
	Turn *TurningConfiguration `yaml:"turn,omitempty"`
}

// NewWaypoint returns a waypoint at the home position of portal.
func NewWaypoint(portal DynamicPortal) Waypoint {
	return Waypoint{
		Position: portal.Home,
		Portal:   portal,
		Flags:    WaypointPrimaryMap | WaypointMovingForward,
	}
}

// WaypointsFromEdgePortals builds smoother input from a start position, the
// edges crossed on the way, and the goal.
func WaypointsFromEdgePortals(start, goal r3.Vector, portals []EdgePortal) []Waypoint {
	out := make([]Waypoint, 0, len(portals)+2)
	out = append(out, NewWaypoint(DynamicPortal{Home: start}))
	for _, e := range portals {
		out = append(out, NewWaypoint(DynamicPortalFromEdge(e)))
	}
	out = append(out, NewWaypoint(DynamicPortal{Home: goal}))
	return out
}

func (wp Waypoint) HasFlag(f WaypointFlags) bool {
	return wp.Flags&f != 0
}

// HasDirection reports whether the waypoint has a non-zero facing direction.
func (wp Waypoint) HasDirection() bool {
	return wp.Direction != nil && *wp.Direction != (r3.Vector{})
}

// Spatial returns the waypoint's position and direction. The direction is zero if
// the waypoint has none.
func (wp Waypoint) Spatial() SpatialConfiguration3D {
	sc := SpatialConfiguration3D{Position: wp.Position}
	if wp.Direction != nil {
		sc.Direction = *wp.Direction
	}
	return sc
}
