package steer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Binary encodings are little-endian, with fields in declaration order. Optional
// fields are preceded by a presence byte of 0 or 1.

const (
	dynamicPortalSize        = 4 * 8
	turningConfigurationSize = 3*8 + 1
	turningConstraintSize    = 5*8 + 1
)

type encoder struct {
	b []byte
}

func (e *encoder) float(v float64) {
	e.b = binary.LittleEndian.AppendUint64(e.b, math.Float64bits(v))
}

func (e *encoder) uint64(v uint64) {
	e.b = binary.LittleEndian.AppendUint64(e.b, v)
}

func (e *encoder) byte(v byte) {
	e.b = append(e.b, v)
}

func (e *encoder) bool(v bool) {
	if v {
		e.byte(1)
	} else {
		e.byte(0)
	}
}

func (e *encoder) vector(v r3.Vector) {
	e.float(v.X)
	e.float(v.Y)
	e.float(v.Z)
}

func (e *encoder) point(pt Point) {
	e.float(pt.X)
	e.float(pt.Y)
}

func (e *encoder) portal(dp DynamicPortal) {
	e.vector(dp.Home)
	e.float(dp.FreeSpace.Value())
}

func (e *encoder) turn(tc TurningConfiguration) {
	e.point(tc.Midpoint)
	e.float(tc.Radius.Value())
	e.bool(tc.Clockwise)
}

// decoder reads fields until the first error, which sticks.
type decoder struct {
	b   []byte
	off int
	err error
}

func (d *decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.b)-d.off < n {
		d.err = fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, d.off, len(d.b)-d.off, ErrShortBuffer)
		return nil
	}
	out := d.b[d.off : d.off+n]
	d.off += n
	return out
}

func (d *decoder) float() float64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (d *decoder) uint64() uint64 {
	b := d.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) byte() byte {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) bool() bool {
	switch v := d.byte(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if d.err == nil {
			d.err = fmt.Errorf("flag byte %#x at offset %d: %w", v, d.off-1, ErrUnknownEncoding)
		}
		return false
	}
}

func (d *decoder) unsigned() UnsignedFloat {
	v := d.float()
	if d.err != nil {
		return UnsignedFloat{}
	}
	u, err := NewUnsignedFloat(v)
	if err != nil {
		d.err = err
	}
	return u
}

func (d *decoder) vector() r3.Vector {
	return r3.Vector{X: d.float(), Y: d.float(), Z: d.float()}
}

func (d *decoder) point() Point {
	return Point{X: d.float(), Y: d.float()}
}

func (d *decoder) portal() DynamicPortal {
	return DynamicPortal{Home: d.vector(), FreeSpace: d.unsigned()}
}

func (d *decoder) turn() TurningConfiguration {
	return TurningConfiguration{Midpoint: d.point(), Radius: d.unsigned(), Clockwise: d.bool()}
}

// done returns the first error, or an error if data is left over.
func (d *decoder) done() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.b) {
		return fmt.Errorf("%d trailing bytes: %w", len(d.b)-d.off, ErrInvalidArgument)
	}
	return nil
}

func (dp DynamicPortal) MarshalBinary() ([]byte, error) {
	e := encoder{b: make([]byte, 0, dynamicPortalSize)}
	e.portal(dp)
	return e.b, nil
}

func (dp *DynamicPortal) UnmarshalBinary(data []byte) error {
	d := decoder{b: data}
	v := d.portal()
	if err := d.done(); err != nil {
		return fmt.Errorf("decoding dynamic portal: %w", err)
	}
	*dp = v
	return nil
}

func (tc TurningConfiguration) MarshalBinary() ([]byte, error) {
	e := encoder{b: make([]byte, 0, turningConfigurationSize)}
	e.turn(tc)
	return e.b, nil
}

func (tc *TurningConfiguration) UnmarshalBinary(data []byte) error {
	d := decoder{b: data}
	v := d.turn()
	if err := d.done(); err != nil {
		return fmt.Errorf("decoding turning configuration: %w", err)
	}
	*tc = v
	return nil
}

func (c TurningConstraint) MarshalBinary() ([]byte, error) {
	e := encoder{b: make([]byte, 0, turningConstraintSize)}
	e.float(c.MinTurningRadius.Value())
	e.float(c.LateralFreeSpace.Value())
	e.float(c.ForwardFreeSpace.Value())
	e.float(c.MaxTurnInPlaceFreeSpace.Value())
	e.float(c.CurveSmoothing.Value())
	e.byte(byte(c.Movement))
	return e.b, nil
}

func (c *TurningConstraint) UnmarshalBinary(data []byte) error {
	d := decoder{b: data}
	v := TurningConstraint{
		MinTurningRadius:        d.unsigned(),
		LateralFreeSpace:        d.unsigned(),
		ForwardFreeSpace:        d.unsigned(),
		MaxTurnInPlaceFreeSpace: d.unsigned(),
	}
	if s := d.float(); d.err == nil {
		if s < 0 || s > 1 || math.IsNaN(s) {
			d.err = fmt.Errorf("curve smoothing %g: %w", s, ErrInvalidArgument)
		}
		v.CurveSmoothing = Percentage{s}
	}
	v.Movement = MovementFlags(d.byte())
	if err := d.done(); err != nil {
		return fmt.Errorf("decoding turning constraint: %w", err)
	}
	*c = v
	return nil
}

func (wp Waypoint) MarshalBinary() ([]byte, error) {
	var e encoder
	e.vector(wp.Position)
	e.bool(wp.Direction != nil)
	if wp.Direction != nil {
		e.vector(*wp.Direction)
	}
	e.portal(wp.Portal)
	e.uint64(uint64(wp.WorldElement))
	e.uint64(uint64(wp.Node))
	e.byte(byte(wp.Flags))
	e.bool(wp.Turn != nil)
	if wp.Turn != nil {
		e.turn(*wp.Turn)
	}
	return e.b, nil
}

func (wp *Waypoint) UnmarshalBinary(data []byte) error {
	d := decoder{b: data}
	var v Waypoint
	v.Position = d.vector()
	if d.bool() {
		dir := d.vector()
		v.Direction = &dir
	}
	v.Portal = d.portal()
	v.WorldElement = ElementID(d.uint64())
	v.Node = ElementID(d.uint64())
	v.Flags = WaypointFlags(d.byte())
	if d.bool() {
		tc := d.turn()
		v.Turn = &tc
	}
	if err := d.done(); err != nil {
		return fmt.Errorf("decoding waypoint: %w", err)
	}
	*wp = v
	return nil
}
