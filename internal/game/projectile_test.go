package game

import "testing"

func TestProjectileUpdate(t *testing.T) {
	def, _ := GetWeaponDef(WeaponStandard)
	p := NewProjectile(1, def, Vec3{}, Vec3{0, 0, -1}, 1.0)

	startZ := p.Position.Z
	p.Update(0.1)
	if want := startZ - def.ProjectileSpeed*0.1; p.Position.Z > want+1e-9 || p.Position.Z < want-1e-9 {
		t.Errorf("expected Z %v, got %v", want, p.Position.Z)
	}
	if !p.Alive {
		t.Error("projectile should still be alive")
	}
	if p.Life > 0.9+1e-9 || p.Life < 0.9-1e-9 {
		t.Errorf("expected life 0.9, got %v", p.Life)
	}
}

func TestProjectileExpires(t *testing.T) {
	def, _ := GetWeaponDef(WeaponStandard)
	p := NewProjectile(1, def, Vec3{}, Vec3{0, 0, -1}, 0.05)
	p.Update(0.1)
	if p.Alive {
		t.Error("projectile should be dead after lifetime")
	}
	pos := p.Position
	p.Update(0.1)
	if p.Position != pos {
		t.Error("dead projectile should not move")
	}
}

func TestProjectileSpawnOffset(t *testing.T) {
	def, _ := GetWeaponDef(WeaponStandard)
	p := NewProjectile(1, def, PlayerStart, Vec3{0, 0, -2}, 1)
	want := PlayerStart.Add(Vec3{0, 0, -ProjectileOffset})
	if p.Position.DistSq(want) > 1e-12 {
		t.Errorf("expected spawn at %v, got %v", want, p.Position)
	}
	if p.Velocity.Len() < def.ProjectileSpeed-1e-9 || p.Velocity.Len() > def.ProjectileSpeed+1e-9 {
		t.Errorf("expected speed %v, got %v", def.ProjectileSpeed, p.Velocity.Len())
	}
}

func TestNonPiercingConsumedOnFirstHit(t *testing.T) {
	def, _ := GetWeaponDef(WeaponStandard)
	p := NewProjectile(1, def, Vec3{}, Vec3{0, 0, -1}, 1)
	if !p.RegisterHit(10) {
		t.Fatal("first hit should register")
	}
	if p.Alive {
		t.Error("non-piercing projectile should die on first hit")
	}
	if p.RegisterHit(11) {
		t.Error("dead projectile should not register more hits")
	}
}

func TestPierceBudgetAndHitSet(t *testing.T) {
	def, _ := GetWeaponDef(WeaponPierceShot)
	p := NewProjectile(1, def, Vec3{}, Vec3{0, 0, -1}, 1)
	if !p.Pierces() || p.MaxPierces != 3 {
		t.Fatalf("expected pierce budget 3, got %d", p.MaxPierces)
	}

	if !p.RegisterHit(10) {
		t.Fatal("first hit should register")
	}
	if p.RegisterHit(10) {
		t.Error("same enemy should not be hit twice")
	}
	if p.PierceCount != 1 {
		t.Errorf("expected pierce count 1, got %d", p.PierceCount)
	}
	p.RegisterHit(11)
	if !p.Alive {
		t.Error("projectile should survive two of three pierces")
	}
	p.RegisterHit(12)
	if p.Alive {
		t.Error("projectile should be removed after the third pierce")
	}
	if p.PierceCount > p.MaxPierces {
		t.Errorf("pierce count %d exceeds budget %d", p.PierceCount, p.MaxPierces)
	}
}
