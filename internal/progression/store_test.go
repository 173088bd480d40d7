package progression

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"bubble-defense/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestProfile(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreateProfile(name, "hash")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return id
}

func TestCreateAndLookupProfile(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "alice")

	p, err := s.GetProfileByUsername("alice")
	if err != nil || p == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if p.ID != id || p.PassHash != "hash" || p.Guest {
		t.Errorf("unexpected profile %+v", p)
	}
	if p, err := s.GetProfileByID(id + 100); err != nil || p != nil {
		t.Errorf("missing profile should be nil, nil; got %v, %v", p, err)
	}
	if _, err := s.CreateProfile("alice", "x"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if ok, _ := s.UsernameExists("alice"); !ok {
		t.Error("alice should exist")
	}
	st, err := s.GetStats(id)
	if err != nil || st == nil || st.BubblesPopped != 0 {
		t.Errorf("expected a zeroed stats row, got %+v, %v", st, err)
	}
}

func TestUnlockWeaponSpendsStarsOnce(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "bob")

	if _, err := s.UnlockWeapon(id, game.WeaponRapidFire); !errors.Is(err, ErrInsufficientStars) {
		t.Fatalf("expected ErrInsufficientStars, got %v", err)
	}
	if _, err := s.AddStars(id, 12); err != nil {
		t.Fatal(err)
	}
	left, err := s.UnlockWeapon(id, game.WeaponRapidFire)
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if left != 2 {
		t.Errorf("expected 2 stars left, got %d", left)
	}
	if _, err := s.UnlockWeapon(id, game.WeaponRapidFire); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Errorf("expected ErrAlreadyUnlocked, got %v", err)
	}
	if stars, _ := s.Stars(id); stars != 2 {
		t.Errorf("second unlock should not spend, got %d stars", stars)
	}
	if _, err := s.UnlockWeapon(id, "laser"); !errors.Is(err, ErrUnknownWeapon) {
		t.Errorf("expected ErrUnknownWeapon, got %v", err)
	}
	if _, err := s.UnlockWeapon(id, game.WeaponStandard); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Errorf("standard is always unlocked, got %v", err)
	}

	ids, err := s.UnlockedWeapons(id)
	if err != nil {
		t.Fatal(err)
	}
	if want := []game.WeaponID{game.WeaponStandard, game.WeaponRapidFire}; !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}

	u, err := s.LoadUnlocks(id)
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsWeaponUnlocked(game.WeaponRapidFire) || u.IsWeaponUnlocked(game.WeaponPierceShot) {
		t.Error("unlock set does not match the store")
	}
}

func TestApplyStatsKeepsMaxima(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "carol")

	if err := s.ApplyStats(id, StatsDelta{BubblesPopped: 10, HighestWave: 4, HighestCombo: 12, PlayTime: 30}); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyStats(id, StatsDelta{BubblesPopped: 5, HighestWave: 2, HighestCombo: 20, PlayTime: 15}); err != nil {
		t.Fatal(err)
	}
	st, err := s.GetStats(id)
	if err != nil {
		t.Fatal(err)
	}
	if st.BubblesPopped != 15 || st.HighestWave != 4 || st.HighestCombo != 20 || st.PlayTime != 45 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestLeaderboardByBestScore(t *testing.T) {
	s := openTestStore(t)
	a := createTestProfile(t, s, "ann")
	b := createTestProfile(t, s, "ben")
	g, err := s.CreateGuest("Guest_abc")
	if err != nil {
		t.Fatal(err)
	}

	s.RecordRun(a, 500, 3, 60)
	s.RecordRun(a, 900, 5, 90)
	s.RecordRun(b, 700, 6, 80)
	s.RecordRun(g, 5000, 9, 200)

	lb, err := s.Leaderboard(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lb) != 2 {
		t.Fatalf("guests should be hidden, got %d entries", len(lb))
	}
	if lb[0].Username != "ann" || lb[0].BestScore != 900 || lb[0].Runs != 2 || lb[0].Rank != 1 {
		t.Errorf("unexpected first entry %+v", lb[0])
	}
	if lb[1].Username != "ben" || lb[1].BestWave != 6 || lb[1].Rank != 2 {
		t.Errorf("unexpected second entry %+v", lb[1])
	}

	hist, err := s.RunHistory(a, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].Score != 900 {
		t.Errorf("expected newest run first, got %+v", hist)
	}
}

func TestUnlockAchievementOnce(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "dan")

	first, err := s.UnlockAchievement(id, "first_blood")
	if err != nil || !first {
		t.Fatalf("first unlock should report new, got %v %v", first, err)
	}
	again, err := s.UnlockAchievement(id, "first_blood")
	if err != nil || again {
		t.Errorf("second unlock should not report new, got %v %v", again, err)
	}
	ids, _ := s.Achievements(id)
	if len(ids) != 1 || ids[0] != "first_blood" {
		t.Errorf("unexpected achievements %v", ids)
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	if s.GetSetting("jwt_secret") != "" {
		t.Error("unset setting should be empty")
	}
	s.SetSetting("jwt_secret", "a")
	s.SetSetting("jwt_secret", "b")
	if got := s.GetSetting("jwt_secret"); got != "b" {
		t.Errorf("expected b, got %q", got)
	}
}

func TestStarsForWave(t *testing.T) {
	tests := []struct {
		wave    int
		perfect bool
		want    int
	}{
		{1, false, 1},
		{1, true, 1},
		{4, true, 6},
		{5, false, 7},
		{5, true, 9},
		{10, false, 15},
		{10, true, 20},
		{15, false, 17},
		{0, true, 0},
	}
	for _, tt := range tests {
		if got := StarsForWave(tt.wave, tt.perfect); got != tt.want {
			t.Errorf("StarsForWave(%d, %v) = %d, want %d", tt.wave, tt.perfect, got, tt.want)
		}
	}
}
