package game

import (
	"math"
	"testing"
)

func TestNewEnemySizeTable(t *testing.T) {
	for size, def := range SizeTable {
		e := NewEnemy(1, size, KindStandard, Vec3{})
		if e.Radius != def.Radius {
			t.Errorf("%s: expected radius %v, got %v", size, def.Radius, e.Radius)
		}
		if e.Points != def.Points {
			t.Errorf("%s: expected %d points, got %d", size, def.Points, e.Points)
		}
		if e.Health != def.Health || e.MaxHealth != def.Health {
			t.Errorf("%s: expected health %d, got %d/%d", size, def.Health, e.Health, e.MaxHealth)
		}
		if !e.Alive {
			t.Errorf("%s: enemy should be alive on spawn", size)
		}
	}
	if boss := NewEnemy(1, SizeBoss, KindStandard, Vec3{}); boss.Health != 10 {
		t.Errorf("expected boss health 10, got %d", boss.Health)
	}
}

func TestKindModifiers(t *testing.T) {
	speed := NewEnemy(1, SizeLarge, KindSpeed, Vec3{})
	if speed.BaseSpeed != 1.5*1.5 {
		t.Errorf("expected speed kind base speed 2.25, got %v", speed.BaseSpeed)
	}
	if speed.Points != 15 {
		t.Errorf("expected speed kind 15 points, got %d", speed.Points)
	}

	armor := NewEnemy(2, SizeLarge, KindArmor, Vec3{})
	if armor.Health != 2 || armor.MaxHealth != 2 {
		t.Errorf("expected armor health 2, got %d", armor.Health)
	}
	if armor.Points != 13 {
		t.Errorf("expected armor 13 points, got %d", armor.Points)
	}

	zz := NewEnemy(3, SizeLarge, KindZigzag, Vec3{})
	if zz.Points != 14 {
		t.Errorf("expected zigzag 14 points, got %d", zz.Points)
	}
	if zz.ZigzagAmp != ZigzagStartAmp {
		t.Errorf("expected zigzag amplitude %v, got %v", ZigzagStartAmp, zz.ZigzagAmp)
	}
	if zz.Health != 1 {
		t.Errorf("expected zigzag health 1, got %d", zz.Health)
	}
}

func TestHitHealthMonotonic(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindArmor, Vec3{})

	if e.Hit() {
		t.Error("armored enemy should survive the first hit")
	}
	if e.Health != 1 {
		t.Errorf("expected health 1, got %d", e.Health)
	}
	if !e.Hit() {
		t.Error("armored enemy should die on the second hit")
	}
	if e.Health != 0 {
		t.Errorf("expected health 0, got %d", e.Health)
	}
	if e.Hit() {
		t.Error("enemy at zero health should not report dying again")
	}
	if e.Health != 0 {
		t.Errorf("health should never go negative, got %d", e.Health)
	}
}

func TestShouldSplit(t *testing.T) {
	cases := []struct {
		size  Size
		kind  Kind
		split bool
		next  Size
	}{
		{SizeLarge, KindStandard, true, SizeMedium},
		{SizeMedium, KindStandard, true, SizeSmall},
		{SizeSmall, KindStandard, false, ""},
		{SizeBoss, KindStandard, false, ""},
		{SizeLarge, KindSpeed, false, SizeMedium},
		{SizeLarge, KindArmor, false, SizeMedium},
		{SizeMedium, KindZigzag, false, SizeSmall},
	}
	for _, c := range cases {
		e := NewEnemy(1, c.size, c.kind, Vec3{})
		if got := e.ShouldSplit(); got != c.split {
			t.Errorf("%s/%s: expected split=%v, got %v", c.size, c.kind, c.split, got)
		}
		if got := e.NextSize(); got != c.next {
			t.Errorf("%s/%s: expected next size %q, got %q", c.size, c.kind, c.next, got)
		}
	}
}

func TestSplitOffsetsBounded(t *testing.T) {
	rng := NewRand(9)
	parent := NewEnemy(1, SizeLarge, KindStandard, Vec3{3, 4, -20})
	maxDist := math.Sqrt(SplitRadius*SplitRadius+SplitDepthJitter*SplitDepthJitter) + 1e-9

	for n := 2; n <= 3; n++ {
		pts := parent.SplitOffsets(n, rng)
		if len(pts) != n {
			t.Fatalf("expected %d positions, got %d", n, len(pts))
		}
		for _, p := range pts {
			if d := p.Sub(parent.Position).Len(); d > maxDist {
				t.Errorf("child %v is %v from parent, max %v", p, d, maxDist)
			}
		}
		if pts[0] == pts[1] {
			t.Error("children should not overlap perfectly")
		}
	}
}

func TestEnemyChasesPlayer(t *testing.T) {
	target := PlayerStart
	e := NewEnemy(1, SizeLarge, KindStandard, Vec3{0, 1.6, -20})
	start := e.Position.Sub(target).Len()

	for i := 0; i < 120; i++ {
		e.Update(1.0/60.0, target)
	}

	if d := e.Position.Sub(target).Len(); d >= start {
		t.Errorf("enemy should close in on the player, distance %v -> %v", start, d)
	}
	if e.Age < 1.99 {
		t.Errorf("expected age ~2s, got %v", e.Age)
	}
}

func TestEnemySpeedDrift(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindStandard, Vec3{0, 0, -20})
	for i := 0; i < 300; i++ {
		e.Update(1.0/60.0, PlayerStart)
		lo := e.BaseSpeed * (1 - SpeedDrift)
		hi := e.BaseSpeed * (1 + SpeedDrift)
		if e.Speed < lo-1e-9 || e.Speed > hi+1e-9 {
			t.Fatalf("speed %v outside drift band [%v, %v]", e.Speed, lo, hi)
		}
	}
}

func TestZigzagAmplitudeCapped(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindZigzag, Vec3{0, 5, -90})
	for i := 0; i < 60*30; i++ {
		e.Update(1.0/60.0, Vec3{0, 5, -90})
	}
	if e.ZigzagAmp != ZigzagMaxAmp {
		t.Errorf("expected amplitude capped at %v, got %v", ZigzagMaxAmp, e.ZigzagAmp)
	}
}

func TestDeadEnemyDoesNotMove(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindStandard, Vec3{0, 0, -20})
	e.Alive = false
	e.Update(1, PlayerStart)
	if e.Position != (Vec3{0, 0, -20}) {
		t.Errorf("dead enemy moved to %v", e.Position)
	}
}

func TestEnemyOutOfBounds(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindStandard, Vec3{100, 0, 0})
	if e.OutOfBounds(DefaultBound) {
		t.Error("enemy exactly on the bound should be inside")
	}
	e.Position = Vec3{0, 0, -100.5}
	if !e.OutOfBounds(DefaultBound) {
		t.Error("enemy past the bound should be out")
	}
}

func TestEnemyCollidesWithPlayer(t *testing.T) {
	e := NewEnemy(1, SizeLarge, KindStandard, Vec3{0, 1.6, -1.9})
	if !e.CollidesWithPlayer(PlayerStart, PlayerRadius) {
		t.Error("expected overlap at distance 1.9 with combined radius 2")
	}
	e.Position = Vec3{0, 1.6, -2.0}
	if e.CollidesWithPlayer(PlayerStart, PlayerRadius) {
		t.Error("touching exactly at the combined radius should not collide")
	}
}
