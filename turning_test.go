package steer

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestTurningConfigurationAt(t *testing.T) {
	ccw := TurningConfigurationAt(Pt(1, 1), Vec(2, 0), 3, false)
	require.Equal(t, Pt(1, 4), ccw.Midpoint)
	require.False(t, ccw.Clockwise)

	cw := TurningConfigurationAt(Pt(1, 1), Vec(2, 0), 3, true)
	require.Equal(t, Pt(1, -2), cw.Midpoint)
	require.Equal(t, 3.0, cw.Radius.Value())

	// The pose is on the circle and moving along the given direction.
	for _, tc := range []TurningConfiguration{ccw, cw} {
		require.InDelta(t, 3, tc.Midpoint.Distance(Pt(1, 1)), 1e-12)
		d := TangentDirection(Pt(1, 1), tc.Midpoint, tc.Clockwise)
		require.InDelta(t, 1, d.X, 1e-12)
	}

	require.True(t, TurningConfigurationAt(Pt(0, 0), Vec(1, 0), 0, false).IsStraight())
}

func TestTurningConstraint(t *testing.T) {
	require.True(t, TurningConstraint{}.IsUnconstrained())

	c := NewTurningConstraint(MustUnsigned(4), MustUnsigned(1), MustUnsigned(2), MustUnsigned(3),
		NewPercentage(0.5), MayManeuver|MayShrinkTurningRadius)
	require.False(t, c.IsUnconstrained())
	require.True(t, c.CanManeuver())
	require.True(t, c.CanShrinkTurningRadius())
	require.False(t, c.CanMoveBackwards())
	require.InDelta(t, 6, c.EffectiveTurningRadius(), 1e-12)
}

func TestTurningConstraintFromCapability(t *testing.T) {
	c := TurningConstraintFromCapability(NavigationCapability{
		TurningRadius: 5,
		Width:         2,
		Length:        4,
		Clearance:     0.5,
		Flags:         MayMoveBackwards,
	})
	require.Equal(t, 5.0, c.MinTurningRadius.Value())
	require.Equal(t, 1.5, c.LateralFreeSpace.Value())
	require.Equal(t, 2.5, c.ForwardFreeSpace.Value())
	require.InDelta(t, 0.5*math.Sqrt(20)+0.5, c.MaxTurnInPlaceFreeSpace.Value(), 1e-12)
	require.True(t, c.CanMoveBackwards())
}

func TestDynamicPortal(t *testing.T) {
	e := EdgePortal{Left: r3.Vector{X: 0, Y: 2}, Right: r3.Vector{X: 0, Y: -2}}
	dp := DynamicPortalFromEdge(e)
	require.Equal(t, r3.Vector{}, dp.Home)
	require.Equal(t, 2.0, dp.FreeSpace.Value())

	// Crossing the portal along +x, left is +y.
	back := dp.EdgePortal(Vec(1, 0), IdentityProjector)
	requireVectorNear(t, e.Left, back.Left, 1e-12)
	requireVectorNear(t, e.Right, back.Right, 1e-12)

	require.Equal(t, 0.5, dp.Shrink(1.5).FreeSpace.Value())
	require.True(t, dp.Shrink(3).FreeSpace.IsZero())
	require.Equal(t, 3.0, dp.Grow(1).FreeSpace.Value())
	require.Equal(t, Circle{Center: Pt(0, 0), Radius: 2}, dp.Disc(IdentityProjector))
}

func TestInterpolateLinearly(t *testing.T) {
	a := NewDynamicPortal(r3.Vector{X: 0}, MustUnsigned(1))
	b := NewDynamicPortal(r3.Vector{X: 10, Z: 2}, MustUnsigned(3))

	mid := InterpolateLinearly(a, b, NewPercentage(0.5))
	require.Equal(t, r3.Vector{X: 5, Z: 1}, mid.Home)
	require.Equal(t, 2.0, mid.FreeSpace.Value())

	require.Equal(t, a, InterpolateLinearly(a, b, PercentageZero))
	require.Equal(t, b, InterpolateLinearly(a, b, PercentageFull))

	// Extrapolating past a narrower portal would make the free space negative.
	wide := NewDynamicPortal(r3.Vector{}, MustUnsigned(3))
	narrow := NewDynamicPortal(r3.Vector{X: 1}, MustUnsigned(1))
	past := InterpolateLinearly(wide, narrow, Percentage{2})
	require.Equal(t, r3.Vector{X: 2}, past.Home)
	require.True(t, past.FreeSpace.IsZero())
	require.Equal(t, UnsignedZero, InterpolateLinearly(narrow, wide, Percentage{-1}).FreeSpace)
}

func TestWaypointsFromEdgePortals(t *testing.T) {
	wps := WaypointsFromEdgePortals(r3.Vector{}, r3.Vector{X: 10}, []EdgePortal{
		{Left: r3.Vector{X: 5, Y: 1}, Right: r3.Vector{X: 5, Y: -1}},
	})
	require.Len(t, wps, 3)
	require.Equal(t, r3.Vector{X: 5}, wps[1].Position)
	require.Equal(t, 1.0, wps[1].Portal.FreeSpace.Value())
	require.True(t, wps[1].HasFlag(WaypointMovingForward))
	require.False(t, wps[1].HasFlag(WaypointEvasionInserted))
	require.False(t, wps[0].HasDirection())
}

func TestPathAppend(t *testing.T) {
	var p Path
	dir := r3.Vector{X: 1}
	require.True(t, p.Append(Waypoint{Position: r3.Vector{}}))
	require.False(t, p.Append(Waypoint{Position: r3.Vector{X: 1e-7}, Direction: &dir}))
	require.Equal(t, 1, p.Len())
	require.Equal(t, &dir, p.Waypoints[0].Direction)

	tc := NewTurningConfiguration(Pt(0, 1), MustUnsigned(1), false)
	require.True(t, p.Append(Waypoint{Position: r3.Vector{X: 1, Y: 1}, Turn: &tc}))
	require.InDelta(t, math.Pi/2, p.Length(IdentityProjector), 1e-12)

	box, ok := p.BoundingBox()
	require.True(t, ok)
	require.Equal(t, r3.Vector{X: 1, Y: 1}, box.Max)
}

func TestPathAppendApprox(t *testing.T) {
	var p Path
	require.True(t, p.appendApprox(Waypoint{Position: r3.Vector{}}, 0.5))
	require.False(t, p.appendApprox(Waypoint{Position: r3.Vector{X: 0.3}}, 0.5))
	require.True(t, p.appendApprox(Waypoint{Position: r3.Vector{X: 0.6}}, 0.5))
	require.Equal(t, 2, p.Len())

	// Append uses the package default, which keeps the close waypoint.
	require.True(t, p.Append(Waypoint{Position: r3.Vector{X: 0.6001}}))
}

func TestPathFootprint(t *testing.T) {
	_, ok := Path{}.Footprint(IdentityProjector, 1)
	require.False(t, ok)

	// A half circle to the left bulges out beyond both of its end points.
	tc := NewTurningConfiguration(Pt(0, 1), MustUnsigned(1), false)
	p := Path{Waypoints: []Waypoint{
		{Position: r3.Vector{}},
		{Position: r3.Vector{Y: 2}, Turn: &tc},
		{Position: r3.Vector{X: -3, Y: 2}},
	}}
	fp, ok := p.Footprint(IdentityProjector, 0.5)
	require.True(t, ok)
	require.InDelta(t, -3.5, fp.X0, 1e-9)
	require.InDelta(t, -0.5, fp.Y0, 1e-9)
	require.InDelta(t, 1.5, fp.X1, 1e-9)
	require.InDelta(t, 2.5, fp.Y1, 1e-9)
}

func TestQualityOrder(t *testing.T) {
	require.Less(t, NeedsMoreSpace, NeedsReducedTurningRadius)
	require.Less(t, NeedsReducedTurningRadius, NeedsManeuvering)
	require.Less(t, NeedsManeuvering, IdealSimpleCurve)
	require.Less(t, IdealSimpleCurve, IdealStraightSegment)
	require.Equal(t, "needs maneuvering", NeedsManeuvering.String())
}
