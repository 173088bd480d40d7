package progression

import (
	"testing"

	"bubble-defense/internal/game"
)

func TestRecorderCompletesWave(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "erin")
	clock := 0.0
	r := NewRecorder(s, id, NewUnlockSet(), func() float64 { return clock })

	var earned, total int
	r.OnStars = func(e, n int) { earned, total = e, n }
	var got []string
	r.OnAchievement = func(def AchievementDef) { got = append(got, def.ID) }

	r.Begin()
	r.OnEvent(game.WaveStarted{Wave: 1, Budget: 6})
	for i := 1; i <= 6; i++ {
		r.OnEvent(game.EnemyPopped{Size: game.SizeLarge, Combo: i, Points: 10})
	}
	r.OnEvent(game.CoinsChanged{Total: 30, Delta: 30})
	r.OnEvent(game.MultiplierChanged{Multiplier: 2})
	clock = 42
	r.OnEvent(game.WaveComplete{Wave: 1, Perfect: true, Reward: 15})

	if earned != 1 {
		t.Errorf("expected 1 star for wave 1, got %d", earned)
	}
	st, err := s.GetStats(id)
	if err != nil {
		t.Fatal(err)
	}
	if st.BubblesPopped != 6 || st.WavesCompleted != 1 || st.PerfectWaves != 1 || st.HighestCombo != 6 || st.CoinsEarned != 30 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.PlayTime != 42 {
		t.Errorf("expected 42s of play, got %v", st.PlayTime)
	}

	want := map[string]bool{"first_blood": true, "wave_rookie": true, "untouchable": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d achievements, got %v", len(want), got)
	}
	for _, a := range got {
		if !want[a] {
			t.Errorf("unexpected achievement %s", a)
		}
	}
	stars, _ := s.Stars(id)
	if stars != 1+1+1+3 {
		t.Errorf("expected wave plus achievement stars, got %d", stars)
	}
	if total != 1 {
		t.Errorf("balance reported before achievements should be 1, got %d", total)
	}
}

func TestRecorderFinishRecordsRunOnce(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "finn")
	r := NewRecorder(s, id, nil, func() float64 { return 90 })

	r.Begin()
	r.OnEvent(game.WaveStarted{Wave: 1})
	r.OnEvent(game.GameOver{Score: 320, Wave: 1})
	r.Finish(320, 1)

	hist, err := s.RunHistory(id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Score != 320 || hist[0].Duration != 90 {
		t.Errorf("expected one recorded run, got %+v", hist)
	}
	st, _ := s.GetStats(id)
	if st.RunsPlayed != 1 {
		t.Errorf("expected 1 run played, got %d", st.RunsPlayed)
	}
	if r.Active() {
		t.Error("recorder should be idle after finish")
	}

	r.OnEvent(game.EnemyPopped{})
	if st, _ := s.GetStats(id); st.BubblesPopped != 0 {
		t.Error("events after finish should be ignored")
	}
}

func TestRecorderBombAndBossAchievements(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "gus")
	r := NewRecorder(s, id, nil, nil)
	var got []string
	r.OnAchievement = func(def AchievementDef) { got = append(got, def.ID) }

	r.Begin()
	r.OnEvent(game.WaveStarted{Wave: game.BossWave})
	r.OnEvent(game.BombDetonated{Cleared: 25})
	r.OnEvent(game.BossDefeated{Wave: game.BossWave})
	r.OnEvent(game.WaveComplete{Wave: game.BossWave})

	has := map[string]bool{}
	for _, a := range got {
		has[a] = true
	}
	for _, a := range []string{"bomb_expert", "boss_slayer", "wave_warrior"} {
		if !has[a] {
			t.Errorf("expected %s, got %v", a, got)
		}
	}
	if has["untouchable"] {
		t.Error("imperfect wave should not grant untouchable")
	}
	st, _ := s.GetStats(id)
	if st.BombsUsed != 1 || st.BossesDefeated != 1 || st.HighestWave != game.BossWave {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestRecorderWithoutStore(t *testing.T) {
	r := NewRecorder(nil, 0, nil, nil)
	called := false
	r.OnStars = func(int, int) { called = true }
	r.Begin()
	r.OnEvent(game.WaveComplete{Wave: 1, Perfect: true})
	r.Finish(0, 1)
	r.Recheck()
	if called {
		t.Error("guest recorder should not credit stars")
	}
}

func TestRecorderWeaponAchievements(t *testing.T) {
	s := openTestStore(t)
	id := createTestProfile(t, s, "hal")
	s.AddStars(id, 100)
	u := NewUnlockSet()
	r := NewRecorder(s, id, u, nil)
	var got []string
	r.OnAchievement = func(def AchievementDef) { got = append(got, def.ID) }

	for _, w := range []game.WeaponID{game.WeaponRapidFire, game.WeaponSpreadShot} {
		if _, err := s.UnlockWeapon(id, w); err != nil {
			t.Fatal(err)
		}
		u.Add(w)
	}
	r.Recheck()
	if len(got) != 1 || got[0] != "weapon_collector" {
		t.Errorf("expected weapon_collector, got %v", got)
	}
}

func TestUnlockSetList(t *testing.T) {
	u := NewUnlockSet(game.WeaponPierceShot)
	if !u.IsWeaponUnlocked(game.WeaponStandard) {
		t.Error("standard should always be unlocked")
	}
	want := []game.WeaponID{game.WeaponStandard, game.WeaponPierceShot}
	got := u.List()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}
