package steer

import (
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config configures a [FunnelSmoother].
type Config struct {
	Constraint TurningConstraint `yaml:"constraint"`
	Projector  PlanarProjector   `yaml:"projector"`
	// Epsilon is the distance tolerance. Zero means DefaultEpsilon.
	Epsilon float64 `yaml:"epsilon,omitempty"`
	// ForceIntoSegment clamps crossing positions to the movement between two
	// turning points, even if the infinite extension of the movement is closer to
	// the portal.
	ForceIntoSegment bool `yaml:"force_into_segment"`
	// ForceIntoRange clamps crossing positions into the portal's free space, even if
	// the movement passes outside of it.
	ForceIntoRange bool `yaml:"force_into_range"`
	// MaxHalfGoalCircle rejects goal approaches that drive more than half of the
	// goal circle.
	MaxHalfGoalCircle bool `yaml:"max_half_goal_circle"`
	// KeepPortalWaypoints emits a waypoint at every refined portal crossing, not
	// just at turning points.
	KeepPortalWaypoints bool `yaml:"keep_portal_waypoints"`

	// Logger receives step diagnostics. Nil means the package logger.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultConfig returns an unconstrained configuration on the ground plane of a
// y-up world.
func DefaultConfig() Config {
	return Config{
		Projector:         GroundProjector(r3.Vector{}),
		Epsilon:           DefaultEpsilon,
		ForceIntoSegment:  true,
		ForceIntoRange:    true,
		MaxHalfGoalCircle: true,
	}
}

func (cfg Config) epsilon() float64 {
	if cfg.Epsilon > 0 {
		return cfg.Epsilon
	}
	return DefaultEpsilon
}

func (cfg Config) logger() *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return Logger()
}

// Validate reports all problems with the configuration.
func (cfg Config) Validate() error {
	var err error
	if cfg.Epsilon < 0 || math.IsNaN(cfg.Epsilon) {
		err = multierr.Append(err, fmt.Errorf("epsilon %g must not be negative: %w", cfg.Epsilon, ErrInvalidConfig))
	}
	if !isUnit(cfg.Projector.XAxis) {
		err = multierr.Append(err, fmt.Errorf("projector x axis %v is not a unit vector: %w", cfg.Projector.XAxis, ErrInvalidConfig))
	}
	if !isUnit(cfg.Projector.YAxis) {
		err = multierr.Append(err, fmt.Errorf("projector y axis %v is not a unit vector: %w", cfg.Projector.YAxis, ErrInvalidConfig))
	}
	if d := cfg.Projector.XAxis.Dot(cfg.Projector.YAxis); math.Abs(d) > 1e-9 {
		err = multierr.Append(err, fmt.Errorf("projector axes are not orthogonal: %w", ErrInvalidConfig))
	}
	if r := cfg.Constraint.MinTurningRadius.Value(); math.IsInf(r, 0) {
		err = multierr.Append(err, fmt.Errorf("turning radius must be finite: %w", ErrInvalidConfig))
	}
	return err
}

func isUnit(v r3.Vector) bool {
	return math.Abs(v.Norm2()-1) <= 1e-9
}

// LoadConfig reads a YAML configuration. Fields missing from the input keep their
// values from [DefaultConfig].
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Scenario is a smoothing problem: configuration, start, crossed portals, and
// goal.
type Scenario struct {
	Config  Config                 `yaml:"config"`
	Start   SpatialConfiguration3D `yaml:"start"`
	Portals []DynamicPortal        `yaml:"portals"`
	Goal    SpatialConfiguration3D `yaml:"goal"`
}

// LoadScenario reads a YAML scenario.
func LoadScenario(r io.Reader) (Scenario, error) {
	sc := Scenario{Config: DefaultConfig()}
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate reports all problems with the scenario, including its configuration.
func (sc Scenario) Validate() error {
	err := sc.Config.Validate()
	check := func(what string, v r3.Vector) {
		if math.IsNaN(v.X+v.Y+v.Z) || math.IsInf(v.X+v.Y+v.Z, 0) {
			err = multierr.Append(err, fmt.Errorf("%s %v is not finite: %w", what, v, ErrInvalidScenario))
		}
	}
	check("start position", sc.Start.Position)
	check("start direction", sc.Start.Direction)
	check("goal position", sc.Goal.Position)
	check("goal direction", sc.Goal.Direction)
	for i, p := range sc.Portals {
		check(fmt.Sprintf("portal %d", i), p.Home)
	}
	return err
}

// Waypoints returns the smoother input for the scenario.
func (sc Scenario) Waypoints() []Waypoint {
	out := make([]Waypoint, 0, len(sc.Portals)+2)
	start := NewWaypoint(DynamicPortal{Home: sc.Start.Position})
	if sc.Start.HasDirection() {
		d := sc.Start.Direction
		start.Direction = &d
	}
	out = append(out, start)
	for _, p := range sc.Portals {
		out = append(out, NewWaypoint(p))
	}
	goal := NewWaypoint(DynamicPortal{Home: sc.Goal.Position})
	if sc.Goal.HasDirection() {
		d := sc.Goal.Direction
		goal.Direction = &d
	}
	out = append(out, goal)
	return out
}
