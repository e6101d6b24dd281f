// Command steersmooth smooths a path through a sequence of portals.
//
// It reads a YAML scenario from the file named by its argument, or from standard
// input, and writes the smoothed path as YAML to standard output.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"honnef.co/go/steer"
)

var verbose bool

func init() {
	flag.BoolVar(&verbose, "v", false, "log every smoothing step to stderr")
}

type output struct {
	Path      steer.Path  `yaml:"path"`
	Crossings []r3.Vector `yaml:"crossings"`
	Footprint steer.Rect  `yaml:"footprint"`
	Steps     int         `yaml:"steps"`
}

func newLogger() (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      verbose,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    !verbose,
	}
	return config.Build()
}

func run(in io.Reader, out io.Writer, logger *zap.Logger) error {
	sc, err := steer.LoadScenario(in)
	if err != nil {
		return err
	}
	sc.Config.Logger = logger
	fs, err := steer.NewFunnelSmoother(sc.Waypoints(), sc.Config)
	if err != nil {
		return err
	}

	steps := 1
	for !fs.ExecuteStep() {
		steps++
	}
	res := fs.Result()
	footprint, _ := res.Path.Footprint(sc.Config.Projector, sc.Config.Constraint.LateralFreeSpace.Value())
	logger.Info("smoothed path",
		zap.Int("waypoints", res.Path.Len()),
		zap.Int("steps", steps),
		zap.Stringer("quality", res.Path.Quality),
		zap.Float64("length", res.Path.Length(sc.Config.Projector)),
		zap.Float64("footprint_width", footprint.Width()),
		zap.Float64("footprint_height", footprint.Height()))

	o := output{Path: res.Path, Crossings: res.Crossings, Footprint: footprint, Steps: steps}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encoding path: %w", err)
	}
	return enc.Close()
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-v] [scenario.yaml]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer logger.Sync()
	steer.SetLogger(logger)

	var in io.Reader = os.Stdin
	switch flag.NArg() {
	case 0:
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		in = f
	default:
		flag.Usage()
		return 2
	}

	if err := run(in, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "steersmooth:", err)
		return 1
	}
	return 0
}
