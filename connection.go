package steer

import (
	"math"
)

// shrinkFactors are the fractions of the turning radius tried, in order, when a
// connection may use a reduced radius.
var shrinkFactors = [...]float64{0.75, 0.5, 0.25}

// Corridor bounds a movement by two lines that run in the direction of travel. A
// point is inside if it is on or right of Left and on or left of Right.
type Corridor struct {
	Left  DirectedLine
	Right DirectedLine
}

// NewCorridor returns the corridor through the end points of an edge, running along
// dir.
func NewCorridor(left, right Point, dir Vec2) (Corridor, error) {
	l, err := NewLineFromDirection(left, dir)
	if err != nil {
		return Corridor{}, err
	}
	r, err := NewLineFromDirection(right, dir)
	if err != nil {
		return Corridor{}, err
	}
	return Corridor{Left: l, Right: r}, nil
}

// Contains reports whether pt is inside the corridor, allowing epsilon of slack.
func (c Corridor) Contains(pt Point, epsilon float64) bool {
	l := c.Left.Side(pt) / c.Left.Direction().Hypot()
	r := c.Right.Side(pt) / c.Right.Direction().Hypot()
	return l <= epsilon && r >= -epsilon
}

type TangentConnectionOptions struct {
	// MaxHalfGoalCircle rejects connections that drive more than half of the goal
	// circle. Such connections pass in front of the goal before reaching it.
	MaxHalfGoalCircle bool
	// AllowShrinkingRadius retries with smaller radii if the full radius has no
	// solution.
	AllowShrinkingRadius bool
	// Corridor, if set, must contain the connection.
	Corridor *Corridor
	// Epsilon is the distance tolerance. Zero means DefaultEpsilon.
	Epsilon float64
}

func (opts TangentConnectionOptions) epsilon() float64 {
	if opts.Epsilon > 0 {
		return opts.Epsilon
	}
	return DefaultEpsilon
}

func (opts TangentConnectionOptions) inCorridor(epsilon float64, pts ...Point) bool {
	if opts.Corridor == nil {
		return true
	}
	for _, pt := range pts {
		if !opts.Corridor.Contains(pt, epsilon) {
			return false
		}
	}
	return true
}

// SimpleTangentConnectionResult is a movement from a pose to a point: an arc on
// one circle followed by a straight segment.
type SimpleTangentConnectionResult struct {
	// ExitPoint is where the agent leaves the circle.
	ExitPoint     Point
	ExitDirection Vec2
	// DistanceOnCircle is the arc length driven before ExitPoint.
	DistanceOnCircle float64
	// Turn is nil if the agent doesn't need to turn.
	Turn          *TurningConfiguration
	Quality       Quality
	TotalDistance float64
}

// CircleTangentConnectionResult is a movement between two poses: an arc on the
// start circle, a straight tangent, and an arc on the goal circle.
type CircleTangentConnectionResult struct {
	StartExitPoint Point
	GoalEntryPoint Point
	// ExitDirection is the direction of the straight tangent segment.
	ExitDirection         Vec2
	DistanceOnStartCircle float64
	DistanceOnGoalCircle  float64
	StartTurn             *TurningConfiguration
	GoalTurn              *TurningConfiguration
	Quality               Quality
	TotalDistance         float64
}

// StraightDistance returns the length of the tangent segment.
func (res CircleTangentConnectionResult) StraightDistance() float64 {
	return res.StartExitPoint.Distance(res.GoalEntryPoint)
}

// TangentConnectionBetweenCircles finds the shortest movement from start to goal
// that drives an arc of the given radius, a straight tangent, and another arc of
// the same radius ending in the goal pose. Every combination of turning senses is
// considered.
//
// Both poses need a direction. The second return value is false if no connection
// satisfies opts, which is a normal outcome.
func TangentConnectionBetweenCircles(start, goal SpatialConfiguration2D, radius float64, opts TangentConnectionOptions) (CircleTangentConnectionResult, bool) {
	if !start.HasDirection() || !goal.HasDirection() {
		return CircleTangentConnectionResult{}, false
	}
	eps := opts.epsilon()
	if radius <= eps {
		return straightBetweenPoses(start, goal, opts)
	}
	if res, ok := connectCircles(start, goal, radius, opts); ok {
		return res, true
	}
	if opts.AllowShrinkingRadius {
		for _, f := range shrinkFactors {
			if res, ok := connectCircles(start, goal, radius*f, opts); ok {
				res.Quality = min(res.Quality, NeedsReducedTurningRadius)
				return res, true
			}
		}
	}
	return CircleTangentConnectionResult{}, false
}

// straightBetweenPoses connects two poses without arcs. The agent turns on the
// spot wherever its direction doesn't match the segment.
func straightBetweenPoses(start, goal SpatialConfiguration2D, opts TangentConnectionOptions) (CircleTangentConnectionResult, bool) {
	eps := opts.epsilon()
	if !opts.inCorridor(eps, start.Position, goal.Position) {
		return CircleTangentConnectionResult{}, false
	}
	seg := goal.Position.Sub(start.Position)
	res := CircleTangentConnectionResult{
		StartExitPoint: start.Position,
		GoalEntryPoint: goal.Position,
		ExitDirection:  seg.NormalizeOrZero(),
		Quality:        IdealStraightSegment,
		TotalDistance:  seg.Hypot(),
	}
	if res.ExitDirection.IsZero() {
		res.ExitDirection = goal.UnitDirection()
	}
	if angleBetween(start.Direction, res.ExitDirection) > AngleEpsilon ||
		angleBetween(res.ExitDirection, goal.Direction) > AngleEpsilon {
		res.Quality = NeedsManeuvering
	}
	return res, true
}

func connectCircles(start, goal SpatialConfiguration2D, radius float64, opts TangentConnectionOptions) (CircleTangentConnectionResult, bool) {
	eps := opts.epsilon()
	var best option[CircleTangentConnectionResult]
	for _, startCW := range [2]bool{false, true} {
		stc := TurningConfigurationAt(start.Position, start.Direction, radius, startCW)
		for _, goalCW := range [2]bool{false, true} {
			gtc := TurningConfigurationAt(goal.Position, goal.Direction, radius, goalCW)
			for _, cand := range circleTangents(start.Position, stc, goal.Position, gtc, eps) {
				if opts.MaxHalfGoalCircle && cand.DistanceOnGoalCircle > math.Pi*radius+eps {
					continue
				}
				if !opts.inCorridor(eps, cand.corridorPoints(start.Position, goal.Position)...) {
					continue
				}
				if !best.isSet || cand.TotalDistance < best.value.TotalDistance {
					best.set(cand)
				}
			}
		}
	}
	return best.get()
}

// circleTangents returns the valid connections from the start circle to the goal
// circle for fixed turning senses. There are at most two.
func circleTangents(sPos Point, stc TurningConfiguration, gPos Point, gtc TurningConfiguration, eps float64) []CircleTangentConnectionResult {
	r := stc.Radius.Value()
	cs, cg := stc.Midpoint, gtc.Midpoint
	w := cg.Sub(cs)
	d := w.Hypot()
	sameSense := stc.Clockwise == gtc.Clockwise

	if sameSense && d <= eps {
		// Both poses are on the same circle; follow it.
		res := CircleTangentConnectionResult{
			StartExitPoint: gPos,
			GoalEntryPoint: gPos,
			ExitDirection:  TangentDirection(gPos, cs, stc.Clockwise),
		}
		res.DistanceOnStartCircle = LengthOnCircleWithRadius(sPos.Sub(cs), gPos.Sub(cs), stc.Clockwise, r)
		res.finish(stc, gtc, eps)
		return []CircleTangentConnectionResult{res}
	}

	var normals [2]Vec2
	u := w.Div(d)
	if sameSense {
		normals = [2]Vec2{u.Perp(), u.Perp().Negate()}
	} else {
		if d < 2*r-eps {
			return nil
		}
		phi := math.Acos(clamp(2*r/d, -1, 1))
		normals = [2]Vec2{u.Rotate(phi), u.Rotate(-phi)}
	}

	var out []CircleTangentConnectionResult
	for _, n := range normals {
		ps := cs.Translate(n.Mul(r))
		gn := n
		if !sameSense {
			gn = n.Negate()
		}
		pg := cg.Translate(gn.Mul(r))
		v := tangentAtRadial(n, stc.Clockwise)
		if pg.Sub(ps).Dot(v) < -eps {
			continue
		}
		res := CircleTangentConnectionResult{
			StartExitPoint:        ps,
			GoalEntryPoint:        pg,
			ExitDirection:         v.NormalizeOrZero(),
			DistanceOnStartCircle: LengthOnCircleWithRadius(sPos.Sub(cs), ps.Sub(cs), stc.Clockwise, r),
			DistanceOnGoalCircle:  LengthOnCircleWithRadius(pg.Sub(cg), gPos.Sub(cg), gtc.Clockwise, r),
		}
		res.finish(stc, gtc, eps)
		out = append(out, res)
	}
	return out
}

// finish sets turns, total distance, and quality from the arc distances.
func (res *CircleTangentConnectionResult) finish(stc, gtc TurningConfiguration, eps float64) {
	res.StartTurn, res.GoalTurn = nil, nil
	if res.DistanceOnStartCircle > eps {
		res.StartTurn = &stc
	} else {
		res.DistanceOnStartCircle = 0
	}
	if res.DistanceOnGoalCircle > eps {
		res.GoalTurn = &gtc
	} else {
		res.DistanceOnGoalCircle = 0
	}
	res.TotalDistance = res.DistanceOnStartCircle + res.StraightDistance() + res.DistanceOnGoalCircle

	r := stc.Radius.Value()
	switch {
	case res.StartTurn == nil && res.GoalTurn == nil:
		res.Quality = IdealStraightSegment
	case res.DistanceOnStartCircle > math.Pi*r+eps:
		// Looping around the start circle.
		res.Quality = NeedsManeuvering
	default:
		res.Quality = IdealSimpleCurve
	}
}

// corridorPoints returns the points of the connection that are checked against a
// corridor: the tangent end points and the middle of each arc.
func (res CircleTangentConnectionResult) corridorPoints(sPos, gPos Point) []Point {
	pts := []Point{res.StartExitPoint, res.GoalEntryPoint}
	if res.StartTurn != nil {
		pts = append(pts, NewArc(*res.StartTurn, sPos, res.StartExitPoint).Eval(0.5))
	}
	if res.GoalTurn != nil {
		pts = append(pts, NewArc(*res.GoalTurn, res.GoalEntryPoint, gPos).Eval(0.5))
	}
	return pts
}

// TangentConnection finds the shortest movement from start to the goal point that
// drives an arc of the given radius followed by a straight tangent. The goal has no
// required direction.
//
// A start without direction, or a zero radius, connects straight. The second
// return value is false if the goal can't be reached under opts, for example
// because it lies inside both turning circles.
func TangentConnection(start SpatialConfiguration2D, goal Point, radius float64, opts TangentConnectionOptions) (SimpleTangentConnectionResult, bool) {
	eps := opts.epsilon()
	if !start.HasDirection() || radius <= eps {
		if !opts.inCorridor(eps, start.Position, goal) {
			return SimpleTangentConnectionResult{}, false
		}
		dir := goal.Sub(start.Position).NormalizeOrZero()
		q := IdealStraightSegment
		if start.HasDirection() && angleBetween(start.Direction, dir) > AngleEpsilon {
			q = NeedsManeuvering
		}
		if dir.IsZero() {
			dir = start.UnitDirection()
		}
		return SimpleTangentConnectionResult{
			ExitPoint:     start.Position,
			ExitDirection: dir,
			Quality:       q,
			TotalDistance: start.Position.Distance(goal),
		}, true
	}

	if res, ok := connectCircle(start, goal, radius, opts); ok {
		return res, true
	}
	if opts.AllowShrinkingRadius {
		for _, f := range shrinkFactors {
			if res, ok := connectCircle(start, goal, radius*f, opts); ok {
				res.Quality = min(res.Quality, NeedsReducedTurningRadius)
				return res, true
			}
		}
	}
	return SimpleTangentConnectionResult{}, false
}

func connectCircle(start SpatialConfiguration2D, goal Point, radius float64, opts TangentConnectionOptions) (SimpleTangentConnectionResult, bool) {
	eps := opts.epsilon()
	var best option[SimpleTangentConnectionResult]
	for _, cw := range [2]bool{false, true} {
		tc := TurningConfigurationAt(start.Position, start.Direction, radius, cw)
		tps, n := TangentPoints(tc.Midpoint, radius, goal, eps)
		for _, tp := range tps[:n] {
			v := TangentDirection(tp, tc.Midpoint, cw)
			seg := goal.Sub(tp)
			if seg.Hypot() > eps && seg.Dot(v) < 0 {
				continue
			}
			arc := LengthOnCircleWithRadius(start.Position.Sub(tc.Midpoint), tp.Sub(tc.Midpoint), cw, radius)
			res := SimpleTangentConnectionResult{
				ExitPoint:        tp,
				ExitDirection:    v,
				DistanceOnCircle: arc,
				TotalDistance:    arc + seg.Hypot(),
				Quality:          IdealSimpleCurve,
			}
			if arc <= eps {
				res.ExitPoint = start.Position
				res.DistanceOnCircle = 0
				res.TotalDistance = seg.Hypot()
				res.Quality = IdealStraightSegment
			} else {
				tc := tc
				res.Turn = &tc
				if arc > math.Pi*radius+eps {
					res.Quality = NeedsManeuvering
				}
			}
			pts := []Point{res.ExitPoint, goal}
			if res.Turn != nil {
				pts = append(pts, NewArc(*res.Turn, start.Position, tp).Eval(0.5))
			}
			if !opts.inCorridor(eps, pts...) {
				continue
			}
			if !best.isSet || res.TotalDistance < best.value.TotalDistance {
				best.set(res)
			}
		}
	}
	return best.get()
}
