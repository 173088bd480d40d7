package game

import (
	"math"
	"testing"
)

func TestVecNormalizeZero(t *testing.T) {
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing zero should yield zero")
	}
	n := Vec3{3, 0, 4}.Normalize()
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("expected unit length, got %v", n.Len())
	}
}

func TestRotateAroundUp(t *testing.T) {
	r := Vec3{0, 0, -1}.RotateAround(Up, math.Pi/2)
	if r.DistSq(Vec3{-1, 0, 0}) > 1e-18 {
		t.Errorf("expected (-1,0,0), got %v", r)
	}
}

func TestSpheresOverlap(t *testing.T) {
	if !SpheresOverlap(Vec3{}, 1, Vec3{1.9, 0, 0}, 1) {
		t.Error("expected overlap")
	}
	if SpheresOverlap(Vec3{}, 1, Vec3{2, 0, 0}, 1) {
		t.Error("touching spheres should not overlap")
	}
}

func TestRandDeterministic(t *testing.T) {
	a, b := NewRand(77), NewRand(77)
	for i := 0; i < 100; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatal("same seed should give the same sequence")
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Float64 out of range: %v", x)
		}
	}
	if n := a.IntN(3); n < 0 || n >= 3 {
		t.Errorf("IntN out of range: %d", n)
	}

	c, d := NewRand(77), NewRand(78)
	same := true
	for i := 0; i < 8; i++ {
		if c.Uint64() != d.Uint64() {
			same = false
		}
	}
	if same {
		t.Error("different seeds should give different sequences")
	}
}
