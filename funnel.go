package steer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
)

// funnelPortal is a preprocessed input waypoint.
type funnelPortal struct {
	wp Waypoint
	// working is the portal shrunk by the agent's lateral free space.
	working DynamicPortal
	disc    Circle
	height  float64
	// collapsed is set if the portal is narrower than the agent.
	collapsed bool
}

// FunnelState is the state of a funnel smoothing run between two steps.
type FunnelState struct {
	// Anchor is the pose of the agent at the last turning point. A zero direction
	// means the agent may leave the anchor in any direction.
	Anchor SpatialConfiguration2D
	// AnchorIndex is the index of the input waypoint the anchor lies on.
	AnchorIndex int
	// Refined records, per input waypoint, whether its crossing position has been
	// computed. Each crossing is refined at most once.
	Refined   []bool
	Crossings []Point
	Path      Path
	// sources maps each waypoint of Path to the input waypoint it was derived from,
	// or -1 for inserted waypoints.
	sources []int
	Done    bool
}

func (st FunnelState) clone() FunnelState {
	st.Refined = slices.Clone(st.Refined)
	st.Crossings = slices.Clone(st.Crossings)
	st.Path.Waypoints = slices.Clone(st.Path.Waypoints)
	st.sources = slices.Clone(st.sources)
	return st
}

// FunnelResult is the outcome of a smoothing run.
type FunnelResult struct {
	Path Path
	// Crossings holds, per input waypoint, where the path crosses its portal.
	Crossings []r3.Vector
}

// FunnelSmoother turns a sequence of portals into a drivable path. It runs the
// funnel algorithm on the projected portals and connects consecutive turning points
// with arcs and straight tangents that respect the agent's turning constraint.
//
// Input waypoints carry the portals to cross. The first waypoint is the start
// pose; its direction, if any, is the initial heading. The last waypoint is the
// goal, optionally with a direction to arrive in.
type FunnelSmoother struct {
	cfg     Config
	log     *zap.Logger
	eps     float64
	portals []funnelPortal
	state   FunnelState
}

// NewFunnelSmoother preprocesses input for smoothing under cfg.
func NewFunnelSmoother(input []Waypoint, cfg Config) (*FunnelSmoother, error) {
	if len(input) < 2 {
		return nil, fmt.Errorf("got %d waypoints, need start and goal: %w", len(input), ErrTooFewWaypoints)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fs := &FunnelSmoother{
		cfg: cfg,
		log: cfg.logger(),
		eps: cfg.epsilon(),
	}
	lateral := cfg.Constraint.LateralFreeSpace.Value()
	last := len(input) - 1
	collapsed := 0
	fs.portals = make([]funnelPortal, len(input))
	for i, wp := range input {
		fp := funnelPortal{wp: wp}
		if i == 0 || i == last {
			fp.working = DynamicPortal{Home: wp.Position, FreeSpace: wp.Portal.FreeSpace}.Shrink(lateral)
			fp.disc = Circle{Center: cfg.Projector.Project(wp.Position)}
			fp.height = cfg.Projector.Height(wp.Position)
		} else {
			fp.working = wp.Portal.Shrink(lateral)
			fp.disc = fp.working.Disc(cfg.Projector)
			fp.height = cfg.Projector.Height(wp.Portal.Home)
			if wp.Portal.FreeSpace.Value() < lateral-fs.eps {
				fp.collapsed = true
				collapsed++
			}
		}
		if fp.disc.IsNaN() || fp.disc.IsInf() {
			return nil, fmt.Errorf("waypoint %d projects to %v: %w", i, fp.disc.Center, ErrInvalidArgument)
		}
		fs.portals[i] = fp
	}
	fs.log.Debug("preprocessed portals",
		zap.Int("waypoints", len(input)),
		zap.Int("collapsed", collapsed),
		zap.Float64("turning_radius", cfg.Constraint.EffectiveTurningRadius()))
	fs.state = fs.initialState()
	return fs, nil
}

func (fs *FunnelSmoother) initialState() FunnelState {
	start := fs.portals[0]
	st := FunnelState{
		Anchor: SpatialConfiguration2D{
			Position: start.disc.Center,
			Direction: fs.cfg.Projector.ProjectDirection(start.wp.Spatial().Direction).
				NormalizeOrZero(),
		},
		Refined:   make([]bool, len(fs.portals)),
		Crossings: make([]Point, len(fs.portals)),
		Path:      Path{Quality: IdealStraightSegment},
	}
	st.Refined[0] = true
	st.Crossings[0] = start.disc.Center
	wp := start.wp
	wp.Portal = start.working
	wp.Turn = nil
	st.Path.appendApprox(wp, fs.eps)
	st.sources = append(st.sources, 0)
	return st
}

// State returns the current state.
func (fs *FunnelSmoother) State() FunnelState {
	return fs.state.clone()
}

// ExecuteStep advances the smoother to the next turning point. It reports whether
// the goal has been reached.
func (fs *FunnelSmoother) ExecuteStep() bool {
	fs.state, _ = fs.Step(fs.state)
	return fs.state.Done
}

// Execute runs the smoother to completion and returns the result.
func (fs *FunnelSmoother) Execute() FunnelResult {
	for !fs.ExecuteStep() {
	}
	return fs.Result()
}

// Step computes one funnel step from st: the next turning point, the movement to
// it, and the crossings of the portals passed on the way. It returns the new state
// and the waypoints added to the path. Step doesn't modify st or the smoother.
func (fs *FunnelSmoother) Step(st FunnelState) (FunnelState, []Waypoint) {
	if st.Done {
		return st, nil
	}
	st = st.clone()
	a := st.AnchorIndex
	last := len(fs.portals) - 1

	target, k := fs.nextTurningPoint(st.Anchor.Position, a)
	tr := fs.trajectory(st.Anchor, target, k)
	if !st.Anchor.HasDirection() && a == 0 && st.Path.Waypoints[0].Direction == nil {
		if d := tr.startHeading(); !d.IsZero() {
			dir := fs.cfg.Projector.UnprojectDirection(d)
			st.Path.Waypoints[0].Direction = &dir
		}
	}

	quality := tr.quality
	var out []emission
	for j := a + 1; j < k; j++ {
		if st.Refined[j] {
			continue
		}
		c, forced := fs.refineCrossing(tr, j)
		st.Refined[j] = true
		st.Crossings[j] = c.pos
		if forced || fs.portals[j].collapsed {
			quality = NeedsMoreSpace
		}
		if fs.cfg.KeepPortalWaypoints {
			wp := fs.portals[j].wp
			wp.Position = fs.cfg.Projector.Unproject(c.pos, fs.portals[j].height)
			wp.Portal = fs.portals[j].working
			wp.Turn = c.turn
			out = append(out, emission{s: c.s, wp: wp, source: j})
		}
	}
	st.Refined[k] = true
	st.Crossings[k] = target
	if fs.portals[k].collapsed {
		quality = NeedsMoreSpace
	}
	out = append(out, fs.pieceEnds(tr, a, k)...)
	slices.SortStableFunc(out, func(x, y emission) int { return cmp.Compare(x.s, y.s) })

	var added []Waypoint
	for _, e := range out {
		if st.Path.appendApprox(e.wp, fs.eps) {
			st.sources = append(st.sources, e.source)
			added = append(added, e.wp)
		}
	}
	st.Path.Quality = min(st.Path.Quality, quality)
	st.Anchor = SpatialConfiguration2D{Position: target, Direction: tr.heading}
	st.AnchorIndex = k
	st.Done = k == last

	fs.log.Debug("funnel step",
		zap.Int("anchor", a),
		zap.Int("turning_point", k),
		zap.Stringer("position", target),
		zap.Stringer("quality", quality),
		zap.Int("added", len(added)))
	return st, added
}

// Result returns the path built so far, with the portals of all waypoints restored
// to the agent's full free space.
func (fs *FunnelSmoother) Result() FunnelResult {
	st := fs.state
	lateral := fs.cfg.Constraint.LateralFreeSpace.Value()
	res := FunnelResult{
		Path: Path{
			Waypoints: slices.Clone(st.Path.Waypoints),
			Quality:   st.Path.Quality,
		},
		Crossings: make([]r3.Vector, len(fs.portals)),
	}
	for i := range res.Path.Waypoints {
		if src := st.sources[i]; src >= 0 {
			res.Path.Waypoints[i].Portal = fs.portals[src].wp.Portal
		} else {
			res.Path.Waypoints[i].Portal = res.Path.Waypoints[i].Portal.Grow(lateral)
		}
	}
	for i, fp := range fs.portals {
		switch {
		case i == 0 || i == len(fs.portals)-1:
			res.Crossings[i] = fp.wp.Position
		case st.Refined[i]:
			res.Crossings[i] = fs.cfg.Projector.Unproject(st.Crossings[i], fp.height)
		default:
			res.Crossings[i] = fp.wp.Portal.Home
		}
	}
	return res
}

// nextTurningPoint runs the funnel from the anchor at position a over the portals
// after index ai. It returns the next turning point and the index of the portal it
// lies on.
//
// The funnel is an angular interval seen from the anchor. Each portal narrows it to
// the directions that pass through the portal's disc. When a portal lies entirely
// on one side of the funnel, the path has to bend around the portal that set that
// side, at its tangent point.
func (fs *FunnelSmoother) nextTurningPoint(a Point, ai int) (Point, int) {
	last := len(fs.portals) - 1
	goal := fs.portals[last].disc.Center
	lo, hi := math.Inf(-1), math.Inf(1)
	loIdx, hiIdx := -1, -1

	var prev Vec2
	var prevAngle float64
	for j := ai + 1; j <= last; j++ {
		disc := fs.portals[j].disc
		v := disc.Center.Sub(a)
		dist := v.Hypot()
		if j == last {
			if dist <= fs.eps {
				return goal, last
			}
		} else if disc.ContainsApprox(a, fs.eps) {
			// The anchor is inside the portal, which doesn't restrict anything.
			continue
		}

		// Angles are unwrapped relative to the previous portal, so the funnel can
		// turn by more than π overall.
		phi := 0.0
		if !prev.IsZero() {
			phi = prevAngle + prev.AngleTo(v)
		}
		prev, prevAngle = v, phi

		alpha := 0.0
		if j != last {
			alpha = math.Asin(clamp(disc.Radius/dist, -1, 1))
		}
		l, h := phi-alpha, phi+alpha
		if h < lo-AngleEpsilon {
			return fs.boundaryPoint(a, loIdx, true), loIdx
		}
		if l > hi+AngleEpsilon {
			return fs.boundaryPoint(a, hiIdx, false), hiIdx
		}
		if l > lo {
			lo, loIdx = l, j
		}
		if h < hi {
			hi, hiIdx = h, j
		}
	}
	return goal, last
}

// boundaryPoint returns the tangent point from a on the disc of portal j. The
// clockwise tangent point bounds the funnel on its clockwise side.
func (fs *FunnelSmoother) boundaryPoint(a Point, j int, clockwise bool) Point {
	disc := fs.portals[j].disc
	tps, n := TangentPoints(disc.Center, disc.Radius, a, fs.eps)
	switch n {
	case 1:
		return tps[0]
	case 2:
		axis := disc.Center.Sub(a)
		side := axis.Cross(tps[0].Sub(a))
		if (side < 0) == clockwise {
			return tps[0]
		}
		return tps[1]
	default:
		goal := fs.portals[len(fs.portals)-1].disc.Center
		fs.log.Debug("no tangent point on portal, using point closest to goal",
			zap.Int("portal", j),
			zap.Stringer("anchor", a))
		if disc.Radius == 0 {
			return disc.Center
		}
		return disc.Center.Translate(goal.Sub(disc.Center).NormalizeOrZero().Mul(disc.Radius))
	}
}

// piece is one part of a trajectory: an arc or a straight line.
type piece struct {
	isArc bool
	arc   Arc
	line  Line
	turn  *TurningConfiguration
}

func (p piece) length() float64 {
	if p.isArc {
		return p.arc.Length()
	}
	return p.line.Length()
}

func (p piece) end() Point {
	if p.isArc {
		return p.arc.End()
	}
	return p.line.P1
}

func arcPiece(tc TurningConfiguration, from, to Point) piece {
	return piece{isArc: true, arc: NewArc(tc, from, to), turn: &tc}
}

func linePiece(from, to Point) piece {
	return piece{line: Line{P0: from, P1: to}}
}

// trajectory is the movement from one turning point to the next.
type trajectory struct {
	pieces  []piece
	heading Vec2
	quality Quality
}

func (tr trajectory) length() float64 {
	var l float64
	for _, p := range tr.pieces {
		l += p.length()
	}
	return l
}

// startHeading returns the direction in which the trajectory leaves its start.
func (tr trajectory) startHeading() Vec2 {
	for _, p := range tr.pieces {
		if p.length() == 0 {
			continue
		}
		if p.isArc {
			return p.arc.Tangent(0)
		}
		return p.line.P1.Sub(p.line.P0).NormalizeOrZero()
	}
	return tr.heading
}

// trajectory plans the movement from the anchor to the turning point target on
// portal k.
func (fs *FunnelSmoother) trajectory(anchor SpatialConfiguration2D, target Point, k int) trajectory {
	c := fs.cfg.Constraint
	radius := c.EffectiveTurningRadius()
	opts := TangentConnectionOptions{
		MaxHalfGoalCircle:    fs.cfg.MaxHalfGoalCircle,
		AllowShrinkingRadius: c.CanShrinkTurningRadius(),
		Epsilon:              fs.eps,
	}

	floor := IdealStraightSegment
	if k == len(fs.portals)-1 {
		goal := fs.portals[k].wp.Spatial().Project(fs.cfg.Projector)
		goal.Position = target
		if goal.HasDirection() {
			if !anchor.HasDirection() {
				// Leave toward the goal and turn into its direction from there.
				anchor.Direction = target.Sub(anchor.Position).NormalizeOrZero()
			}
			if tr, ok := fs.goalTrajectory(anchor, goal, k, radius, opts); ok {
				return tr
			}
			fs.log.Debug("goal direction unreachable, ignoring it", zap.Stringer("goal", target))
			floor = NeedsManeuvering
		}
	}

	if anchor.HasDirection() && radius > fs.eps {
		res, ok := TangentConnection(anchor, target, radius, opts)
		if !ok {
			fs.log.Debug("no tangent connection, moving straight",
				zap.Stringer("from", anchor.Position),
				zap.Stringer("to", target))
			tr := fs.straightTrajectory(anchor, target)
			tr.quality = min(tr.quality, NeedsManeuvering)
			return tr
		}
		tr := trajectory{heading: res.ExitDirection, quality: min(res.Quality, floor)}
		if res.Turn != nil {
			tr.pieces = append(tr.pieces, arcPiece(*res.Turn, anchor.Position, res.ExitPoint))
		}
		tr.pieces = append(tr.pieces, linePiece(res.ExitPoint, target))
		return tr
	}

	tr := fs.straightTrajectory(anchor, target)
	tr.quality = min(tr.quality, floor)
	return tr
}

// straightTrajectory moves straight to target. Agents without a turning radius
// turn on the spot at the anchor.
func (fs *FunnelSmoother) straightTrajectory(anchor SpatialConfiguration2D, target Point) trajectory {
	tr := trajectory{
		pieces:  []piece{linePiece(anchor.Position, target)},
		heading: target.Sub(anchor.Position).NormalizeOrZero(),
		quality: IdealStraightSegment,
	}
	if tr.heading.IsZero() {
		tr.heading = anchor.UnitDirection()
	} else if anchor.HasDirection() && angleBetween(anchor.Direction, tr.heading) > AngleEpsilon {
		tr.quality = IdealSimpleCurve
	}
	return tr
}

// goalTrajectory arrives at the goal in its direction. Looping connections are
// retried inside the corridor of the last portal if the agent may maneuver.
func (fs *FunnelSmoother) goalTrajectory(anchor, goal SpatialConfiguration2D, k int, radius float64, opts TangentConnectionOptions) (trajectory, bool) {
	res, ok := TangentConnectionBetweenCircles(anchor, goal, radius, opts)
	if !ok {
		return trajectory{}, false
	}
	if res.Quality == NeedsManeuvering && fs.cfg.Constraint.CanManeuver() && k-1 > 0 {
		fp := fs.portals[k-1]
		edge := fp.working.EdgePortal(goal.Direction, fs.cfg.Projector)
		corridor, err := NewCorridor(fs.cfg.Projector.Project(edge.Left), fs.cfg.Projector.Project(edge.Right), goal.Direction)
		if err == nil {
			o := opts
			o.Corridor = &corridor
			if cres, ok := TangentConnectionBetweenCircles(anchor, goal, radius, o); ok {
				fs.log.Debug("maneuvering inside corridor", zap.Int("portal", k-1))
				res = cres
			}
		}
	}

	tr := trajectory{heading: goal.UnitDirection(), quality: res.Quality}
	if res.StartTurn != nil {
		tr.pieces = append(tr.pieces, arcPiece(*res.StartTurn, anchor.Position, res.StartExitPoint))
	}
	tr.pieces = append(tr.pieces, linePiece(res.StartExitPoint, res.GoalEntryPoint))
	if res.GoalTurn != nil {
		tr.pieces = append(tr.pieces, arcPiece(*res.GoalTurn, res.GoalEntryPoint, goal.Position))
	}
	return tr, true
}

// crossing is where a trajectory passes a portal.
type crossing struct {
	pos Point
	// s is the distance along the trajectory.
	s    float64
	turn *TurningConfiguration
}

// refineCrossing finds where tr passes the disc of portal j. It reports whether
// the trajectory misses the disc.
func (fs *FunnelSmoother) refineCrossing(tr trajectory, j int) (crossing, bool) {
	disc := fs.portals[j].disc
	var best crossing
	bestDist := math.Inf(1)
	var offset float64
	for _, p := range tr.pieces {
		var q Point
		var s float64
		switch {
		case p.isArc:
			_, t := p.arc.Nearest(disc.Center)
			q, s = p.arc.Eval(t), t*p.arc.Length()
		case fs.cfg.ForceIntoSegment:
			_, t := p.line.Nearest(disc.Center)
			q, s = p.line.Eval(t), t*p.line.Length()
		default:
			t := p.line.Project(disc.Center)
			q, s = p.line.Eval(t), t*p.line.Length()
		}
		if d := q.Distance(disc.Center); d < bestDist {
			bestDist = d
			best = crossing{pos: q, s: offset + s, turn: p.turn}
		}
		offset += p.length()
	}

	missed := bestDist > disc.Radius+fs.eps
	if missed {
		fs.log.Debug("trajectory misses portal",
			zap.Int("portal", j),
			zap.Float64("distance", bestDist),
			zap.Float64("free_space", disc.Radius))
		if fs.cfg.ForceIntoRange {
			best.pos = disc.Nearest(best.pos)
		}
	}
	return best, missed
}

// emission is a waypoint to add, ordered by its distance along the trajectory.
type emission struct {
	s      float64
	wp     Waypoint
	source int
}

// pieceEnds returns the waypoints at the ends of the non-empty pieces of tr. The
// last one is the turning point on portal k.
func (fs *FunnelSmoother) pieceEnds(tr trajectory, a, k int) []emission {
	var nonEmpty []int
	for i, p := range tr.pieces {
		if p.length() > fs.eps {
			nonEmpty = append(nonEmpty, i)
		}
	}
	total := tr.length()
	from, to := fs.portals[a], fs.portals[k]

	var out []emission
	var s float64
	next := 0
	for i, p := range tr.pieces {
		s += p.length()
		if next >= len(nonEmpty) || nonEmpty[next] != i {
			continue
		}
		next++
		if next == len(nonEmpty) {
			break
		}
		frac := 0.0
		if total > 0 {
			frac = clamp(s/total, 0, 1)
		}
		pt := p.end()
		dir := fs.cfg.Projector.UnprojectDirection(fs.headingAfter(p))
		out = append(out, emission{
			s: s,
			wp: Waypoint{
				Position:  fs.cfg.Projector.Unproject(pt, from.height+(to.height-from.height)*frac),
				Direction: &dir,
				Portal:    InterpolateLinearly(from.working, to.working, NewPercentage(frac)),
				Flags:     from.wp.Flags&WaypointPrimaryMap | WaypointMovingForward,
				Turn:      p.turn,
			},
			source: -1,
		})
	}

	wp := to.wp
	wp.Portal = to.working
	wp.Turn = nil
	if n := len(nonEmpty); n > 0 {
		wp.Turn = tr.pieces[nonEmpty[n-1]].turn
	}
	if k != len(fs.portals)-1 {
		wp.Position = fs.cfg.Projector.Unproject(tr.pieces[len(tr.pieces)-1].end(), to.height)
	}
	if k != len(fs.portals)-1 || !wp.HasDirection() {
		if !tr.heading.IsZero() {
			dir := fs.cfg.Projector.UnprojectDirection(tr.heading)
			wp.Direction = &dir
		}
	}
	out = append(out, emission{s: total, wp: wp, source: k})
	return out
}

func (fs *FunnelSmoother) headingAfter(p piece) Vec2 {
	if p.isArc {
		return p.arc.Tangent(1)
	}
	return p.line.P1.Sub(p.line.P0).NormalizeOrZero()
}
