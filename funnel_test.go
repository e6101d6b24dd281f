package steer

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T, radius, lateral float64, movement MovementFlags) Config {
	cfg := DefaultConfig()
	cfg.Projector = IdentityProjector
	cfg.Constraint = TurningConstraint{
		MinTurningRadius: MustUnsigned(radius),
		LateralFreeSpace: MustUnsigned(lateral),
		Movement:         movement,
	}
	cfg.Logger = zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))
	return cfg
}

func dirPtr(x, y, z float64) *r3.Vector {
	return &r3.Vector{X: x, Y: y, Z: z}
}

func startGoal(start, goal r3.Vector, startDir, goalDir *r3.Vector, portals ...DynamicPortal) []Waypoint {
	wps := []Waypoint{NewWaypoint(DynamicPortal{Home: start})}
	wps[0].Direction = startDir
	for _, p := range portals {
		wps = append(wps, NewWaypoint(p))
	}
	goalWp := NewWaypoint(DynamicPortal{Home: goal})
	goalWp.Direction = goalDir
	return append(wps, goalWp)
}

func straightCorridor() []Waypoint {
	return startGoal(r3.Vector{}, r3.Vector{X: 20}, dirPtr(1, 0, 0), dirPtr(1, 0, 0),
		NewDynamicPortal(r3.Vector{X: 5}, MustUnsigned(2)),
		NewDynamicPortal(r3.Vector{X: 10}, MustUnsigned(2)),
		NewDynamicPortal(r3.Vector{X: 15}, MustUnsigned(2)),
	)
}

func TestFunnelStraightCorridor(t *testing.T) {
	fs, err := NewFunnelSmoother(straightCorridor(), testConfig(t, 3, 0.5, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 2)
	require.Equal(t, IdealStraightSegment, res.Path.Quality)
	for _, wp := range res.Path.Waypoints {
		require.Nil(t, wp.Turn)
	}
	require.Equal(t, r3.Vector{X: 20}, res.Path.Waypoints[1].Position)

	require.Len(t, res.Crossings, 5)
	for i, x := range []float64{0, 5, 10, 15, 20} {
		requireVectorNear(t, r3.Vector{X: x}, res.Crossings[i], 1e-9)
	}
}

func TestFunnelKeepPortalWaypoints(t *testing.T) {
	cfg := testConfig(t, 3, 0.5, 0)
	cfg.KeepPortalWaypoints = true
	fs, err := NewFunnelSmoother(straightCorridor(), cfg)
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 5)
	for i, wp := range res.Path.Waypoints {
		requireVectorNear(t, r3.Vector{X: 5 * float64(i)}, wp.Position, 1e-9)
	}
	// Portals are reported with the free space they were given, not the shrunk
	// one used while planning.
	require.Equal(t, 2.0, res.Path.Waypoints[2].Portal.FreeSpace.Value())
}

func TestFunnelBendsAroundPortal(t *testing.T) {
	// The only portal is up and to the right; the goal is straight ahead. The path
	// has to touch the portal's clockwise edge.
	input := startGoal(r3.Vector{}, r3.Vector{X: 20}, dirPtr(1, 0, 0), nil,
		NewDynamicPortal(r3.Vector{X: 10, Y: 10}, MustUnsigned(1)),
	)
	fs, err := NewFunnelSmoother(input, testConfig(t, 0, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 3)
	tp := IdentityProjector.Project(res.Path.Waypoints[1].Position)
	require.InDelta(t, 1, tp.Distance(Pt(10, 10)), 1e-9)
	require.Less(t, tp.Y, 10.0)
	require.Greater(t, tp.X, 10.0)
	require.Equal(t, IdealSimpleCurve, res.Path.Quality)

	require.NotNil(t, res.Path.Waypoints[1].Direction)
	require.Equal(t, 1.0, res.Path.Waypoints[1].Portal.FreeSpace.Value())
}

func TestFunnelTurnsWithRadius(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 30, Y: 10}, dirPtr(1, 0, 0), nil)
	fs, err := NewFunnelSmoother(input, testConfig(t, 5, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 3)
	turn := res.Path.Waypoints[1].Turn
	require.NotNil(t, turn)
	require.False(t, turn.Clockwise)
	require.Equal(t, 5.0, turn.Radius.Value())
	require.Nil(t, res.Path.Waypoints[2].Turn)
	require.Equal(t, IdealSimpleCurve, res.Path.Quality)
	require.Greater(t, res.Path.Length(IdentityProjector), Pt(0, 0).Distance(Pt(30, 10)))
}

func TestFunnelCorrectsZeroStartDirection(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 10}, nil, nil)
	fs, err := NewFunnelSmoother(input, testConfig(t, 5, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 2)
	require.NotNil(t, res.Path.Waypoints[0].Direction)
	requireVectorNear(t, r3.Vector{X: 1}, *res.Path.Waypoints[0].Direction, 1e-12)
	require.Equal(t, IdealStraightSegment, res.Path.Quality)
}

func TestFunnelZeroStartDirectionKeepsGoalDirection(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 10}, nil, dirPtr(0, 1, 0))
	fs, err := NewFunnelSmoother(input, testConfig(t, 5, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	// The agent sets off toward the goal, so it has to loop around to arrive
	// facing +y.
	require.Equal(t, NeedsManeuvering, res.Path.Quality)
	require.NotNil(t, res.Path.Waypoints[0].Direction)
	requireVectorNear(t, r3.Vector{X: 1}, *res.Path.Waypoints[0].Direction, 1e-9)

	last := res.Path.Waypoints[len(res.Path.Waypoints)-1]
	require.Equal(t, r3.Vector{X: 10}, last.Position)
	requireVectorNear(t, r3.Vector{Y: 1}, *last.Direction, 1e-12)
	require.NotNil(t, last.Turn)
	require.False(t, last.Turn.Clockwise)
	require.InDelta(t, 0, last.Turn.Midpoint.Distance(Pt(5, 0)), 1e-9)
}

func TestFunnelGoalDirectionUnreachable(t *testing.T) {
	// Turning around within two units is impossible with radius 5, even when
	// looping, without driving more than half of the goal circle.
	input := startGoal(r3.Vector{}, r3.Vector{X: 2}, dirPtr(1, 0, 0), dirPtr(-1, 0, 0))
	fs, err := NewFunnelSmoother(input, testConfig(t, 5, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 2)
	require.Nil(t, res.Path.Waypoints[1].Turn)
	require.Equal(t, NeedsManeuvering, res.Path.Quality)
}

// requireInCorridor checks the projected path, including points along its arcs.
func requireInCorridor(t *testing.T, c Corridor, p Path) {
	t.Helper()
	var prev Point
	for i, wp := range p.Waypoints {
		pt := IdentityProjector.Project(wp.Position)
		require.Truef(t, c.Contains(pt, 1e-6), "waypoint %d at %v", i, pt)
		if i > 0 && wp.Turn != nil {
			for _, q := range NewArc(*wp.Turn, prev, pt).SupportPoints(16) {
				require.Truef(t, c.Contains(q, 1e-6), "arc to waypoint %d passes %v", i, q)
			}
		}
		prev = pt
	}
}

func TestFunnelManeuversInsideCorridor(t *testing.T) {
	// A U-turn through a portal that only leaves room on the right.
	input := startGoal(r3.Vector{}, r3.Vector{X: -10}, dirPtr(1, 0, 0), dirPtr(-1, 0, 0),
		NewDynamicPortal(r3.Vector{X: -5, Y: -1}, MustUnsigned(2)),
	)
	cfg := testConfig(t, 1, 0, MayManeuver)
	core, logs := observer.New(zapcore.DebugLevel)
	cfg.Logger = zap.New(core)
	fs, err := NewFunnelSmoother(input, cfg)
	require.NoError(t, err)
	res := fs.Execute()

	require.Equal(t, 1, logs.FilterMessage("maneuvering inside corridor").Len())
	require.Equal(t, NeedsManeuvering, res.Path.Quality)
	require.NotNil(t, res.Path.Waypoints[1].Turn)
	require.True(t, res.Path.Waypoints[1].Turn.Clockwise)

	corridor, err := NewCorridor(Pt(-5, -3), Pt(-5, 1), Vec(-1, 0))
	require.NoError(t, err)
	requireInCorridor(t, corridor, res.Path)

	last := res.Path.Waypoints[len(res.Path.Waypoints)-1]
	require.Equal(t, r3.Vector{X: -10}, last.Position)
}

func TestFunnelShrinksRadiusInsideCorridor(t *testing.T) {
	// A lane change that is too tight for the full radius. Without the corridor,
	// the agent would loop around at full radius.
	input := startGoal(r3.Vector{}, r3.Vector{X: 4, Y: 1}, dirPtr(1, 0, 0), dirPtr(1, 0, 0),
		NewDynamicPortal(r3.Vector{X: 2, Y: 0.5}, MustUnsigned(1.5)),
	)
	fs, err := NewFunnelSmoother(input, testConfig(t, 5, 0, MayManeuver|MayShrinkTurningRadius))
	require.NoError(t, err)
	res := fs.Execute()

	require.Equal(t, NeedsReducedTurningRadius, res.Path.Quality)
	require.Len(t, res.Path.Waypoints, 4)
	first, last := res.Path.Waypoints[1].Turn, res.Path.Waypoints[3].Turn
	require.NotNil(t, first)
	require.NotNil(t, last)
	require.False(t, first.Clockwise)
	require.True(t, last.Clockwise)
	require.InDelta(t, 3.75, first.Radius.Value(), 1e-12)

	corridor, err := NewCorridor(Pt(2, 2), Pt(2, -1), Vec(1, 0))
	require.NoError(t, err)
	requireInCorridor(t, corridor, res.Path)

	// Without maneuvering, the looping full-radius approach is kept.
	fs, err = NewFunnelSmoother(input, testConfig(t, 5, 0, MayShrinkTurningRadius))
	require.NoError(t, err)
	require.Equal(t, NeedsManeuvering, fs.Execute().Path.Quality)
}

func TestFunnelDuplicateTolerance(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 20}, dirPtr(1, 0, 0), nil,
		NewDynamicPortal(r3.Vector{X: 0.3}, MustUnsigned(2)),
	)
	cfg := testConfig(t, 0, 0, 0)
	cfg.KeepPortalWaypoints = true

	fs, err := NewFunnelSmoother(input, cfg)
	require.NoError(t, err)
	require.Len(t, fs.Execute().Path.Waypoints, 3)

	cfg.Epsilon = 0.5
	fs, err = NewFunnelSmoother(input, cfg)
	require.NoError(t, err)
	res := fs.Execute()
	require.Len(t, res.Path.Waypoints, 2)
	require.Equal(t, r3.Vector{X: 20}, res.Path.Waypoints[1].Position)
}

func TestFunnelCollapsedPortal(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 20}, dirPtr(1, 0, 0), dirPtr(1, 0, 0),
		NewDynamicPortal(r3.Vector{X: 10}, MustUnsigned(0.3)),
	)
	fs, err := NewFunnelSmoother(input, testConfig(t, 3, 0.5, 0))
	require.NoError(t, err)
	res := fs.Execute()

	require.Len(t, res.Path.Waypoints, 2)
	require.Equal(t, NeedsMoreSpace, res.Path.Quality)
}

func TestFunnelStepwiseMatchesExecute(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 40}, dirPtr(1, 0, 0), nil,
		NewDynamicPortal(r3.Vector{X: 10, Y: 10}, MustUnsigned(1)),
		NewDynamicPortal(r3.Vector{X: 20, Y: -10}, MustUnsigned(1)),
		NewDynamicPortal(r3.Vector{X: 30, Y: 10}, MustUnsigned(1)),
	)
	cfg := testConfig(t, 2, 0.25, 0)

	whole, err := NewFunnelSmoother(input, cfg)
	require.NoError(t, err)
	want := whole.Execute()

	stepped, err := NewFunnelSmoother(input, cfg)
	require.NoError(t, err)
	steps := 0
	for {
		steps++
		if stepped.ExecuteStep() {
			break
		}
		require.Less(t, steps, len(input))
	}
	require.Equal(t, want, stepped.Result())
	require.Greater(t, steps, 1)
}

func TestFunnelStepIsPure(t *testing.T) {
	fs, err := NewFunnelSmoother(straightCorridor(), testConfig(t, 3, 0.5, 0))
	require.NoError(t, err)

	st := fs.State()
	next, added := fs.Step(st)
	require.True(t, next.Done)
	require.Len(t, added, 1)
	require.False(t, st.Done)
	require.Len(t, st.Path.Waypoints, 1)
	require.False(t, st.Refined[2])

	again, _ := fs.Step(next)
	require.Equal(t, next, again)
}

func TestFunnelGoalDirection(t *testing.T) {
	// Lane change: arrive at the goal facing the same way as at the start.
	input := startGoal(r3.Vector{}, r3.Vector{X: 30, Y: 6}, dirPtr(1, 0, 0), dirPtr(1, 0, 0))
	fs, err := NewFunnelSmoother(input, testConfig(t, 4, 0, 0))
	require.NoError(t, err)
	res := fs.Execute()

	n := len(res.Path.Waypoints)
	require.GreaterOrEqual(t, n, 3)
	last := res.Path.Waypoints[n-1]
	require.Equal(t, r3.Vector{X: 30, Y: 6}, last.Position)
	require.NotNil(t, last.Turn)
	require.True(t, last.Turn.Clockwise)
	require.Equal(t, IdealSimpleCurve, res.Path.Quality)
}

func TestNewFunnelSmootherErrors(t *testing.T) {
	_, err := NewFunnelSmoother([]Waypoint{NewWaypoint(DynamicPortal{})}, DefaultConfig())
	require.ErrorIs(t, err, ErrTooFewWaypoints)

	cfg := DefaultConfig()
	cfg.Epsilon = -1
	_, err = NewFunnelSmoother(startGoal(r3.Vector{}, r3.Vector{X: 1}, nil, nil), cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFunnelSmoother(startGoal(r3.Vector{}, r3.Vector{X: math.NaN()}, nil, nil), DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRefineCrossing(t *testing.T) {
	input := startGoal(r3.Vector{}, r3.Vector{X: 10}, nil, nil,
		NewDynamicPortal(r3.Vector{X: 5}, MustUnsigned(2)))
	far := trajectory{pieces: []piece{linePiece(Pt(0, 3), Pt(10, 3))}}
	short := trajectory{pieces: []piece{linePiece(Pt(0, 1), Pt(2, 1))}}

	tests := []struct {
		name         string
		tr           trajectory
		segment, rng bool
		want         Point
		wantS        float64
		wantMissed   bool
	}{
		{"into range", far, true, true, Pt(5, 1.5), 5, true},
		{"outside range", far, true, false, Pt(5, 3), 5, true},
		{"segment end", short, true, false, Pt(2, 1), 2, true},
		{"extended segment", short, false, true, Pt(5, 1), 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, 0, 0.5, 0)
			cfg.ForceIntoSegment = tt.segment
			cfg.ForceIntoRange = tt.rng
			fs, err := NewFunnelSmoother(input, cfg)
			require.NoError(t, err)

			c, missed := fs.refineCrossing(tt.tr, 1)
			require.Equal(t, tt.wantMissed, missed)
			require.InDelta(t, tt.want.X, c.pos.X, 1e-9)
			require.InDelta(t, tt.want.Y, c.pos.Y, 1e-9)
			require.InDelta(t, tt.wantS, c.s, 1e-9)
		})
	}
}
