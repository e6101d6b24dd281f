// Package steer provides geometry and path smoothing for agents that cannot turn
// on the spot. It was designed for wheeled vehicles moving through lane graphs, but
// it only depends on positions, directions, and crossable regions, so it is usable
// for anything that has a minimum turning radius.
//
// # Primitives
//
// All circle math happens in two dimensions. [Point] and [Vec2] are the 2D value
// types, [DirectedLine] is an infinite line with a non-zero direction. World
// positions are 3D [github.com/golang/geo/r3.Vector] values that get mapped onto the ground plane by a
// [PlanarProjector] before any circle math is done.
//
// [UnsignedFloat] and [Percentage] are small wrappers that keep radii and free space
// non-negative and interpolation factors inside [0, 1].
//
// # Turning geometry
//
// A [TurningConfiguration] describes one circular arc: its midpoint, its radius, and
// the sense of travel. The circle functions compute tangents, arc lengths and
// intersections on such circles. [TangentConnection] and
// [TangentConnectionBetweenCircles] connect two poses with arcs of a given turning
// radius and a straight tangent segment, and rate the result with a [Quality].
//
// By convention, the 2D frame is y-up. Clockwise turns are negative rotations,
// counterclockwise turns are positive ones.
//
// # Funnel smoothing
//
// [FunnelSmoother] turns a coarse sequence of waypoints, each carrying a
// [DynamicPortal] the agent has to cross, into the shortest path that passes through
// all portals and honors a [TurningConstraint]. Portals are discs rather than edges:
// a home position plus the free space around it.
//
// The smoother can run to completion with [FunnelSmoother.Execute], or one turning
// point at a time with [FunnelSmoother.ExecuteStep] followed by
// [FunnelSmoother.Result]. The state between steps is an explicit [FunnelState]
// value, and [FunnelSmoother.Step] is the pure transition function, so callers can
// pause, inspect, or checkpoint the search.
//
// # Errors
//
// Programmer errors, such as lines with a zero direction, are reported as
// [ErrInvalidArgument]. Degenerate but meaningful geometry, such as the infinite
// radius of collinear tangent data, is returned as a value. Solvers that find no
// valid connection report so with a boolean and never with an error.
package steer
