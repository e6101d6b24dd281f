package steer

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestVecPerpRotate(t *testing.T) {
	opt := cmpopts.EquateApprox(0, 1e-12)
	diff(t, Vec(-2, 1), Vec(1, 2).Perp())
	diff(t, Vec(1, 2).Perp(), Vec(1, 2).Rotate(math.Pi/2), opt)
	diff(t, Vec(1, 2).Perp().Negate(), Vec(1, 2).Rotate(-math.Pi/2), opt)
}

func TestVecAngles(t *testing.T) {
	opt := cmpopts.EquateApprox(0, 1e-12)
	diff(t, math.Pi/2, Vec(1, 0).AngleTo(Vec(0, 3)), opt)
	diff(t, -math.Pi/2, Vec(1, 0).AngleTo(Vec(0, -3)), opt)
	diff(t, math.Pi/4, angleBetween(Vec(1, 0), Vec(1, -1)), opt)

	// Parallel vectors must not produce NaN through round-off.
	v := Vec(0.1, 0.7)
	if a := angleBetween(v, v.Mul(3)); math.IsNaN(a) || a > 1e-7 {
		t.Errorf("got angle %v between parallel vectors", a)
	}
	if a := angleBetween(Vec2{}, v); a != 0 {
		t.Errorf("got angle %v with a zero vector", a)
	}
}

func TestVecNormalizeOrZero(t *testing.T) {
	diff(t, Vec2{}, Vec2{}.NormalizeOrZero())
	diff(t, Vec(0.6, 0.8), Vec(3, 4).NormalizeOrZero(), cmpopts.EquateApprox(0, 1e-12))
	if !(Vec2{}).IsZero() || Vec(0, 1e-300).IsZero() {
		t.Error("IsZero is wrong")
	}
}
