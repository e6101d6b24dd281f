package steer

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrShortBuffer     = errors.New("binary data too short")
	ErrUnknownEncoding = errors.New("unknown binary encoding")
	ErrTooFewWaypoints = errors.New("need at least a start and a goal waypoint")
	ErrInvalidConfig   = errors.New("invalid smoother configuration")
	ErrInvalidScenario = errors.New("invalid scenario")
)
