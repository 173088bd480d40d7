package game

import "testing"

func TestMultiplierFor(t *testing.T) {
	cases := map[int]int{0: 1, 4: 1, 5: 2, 9: 2, 10: 3, 44: 9, 45: 10, 200: 10}
	for combo, want := range cases {
		if got := MultiplierFor(combo); got != want {
			t.Errorf("combo %d: expected x%d, got x%d", combo, want, got)
		}
	}
}

func TestAddScoreThresholdAndCoins(t *testing.T) {
	l := NewLedger(DefaultCoinRate, nil)
	for i := 0; i < 4; i++ {
		l.AddScore(10)
	}
	if l.Combo() != 4 || l.Multiplier() != 1 {
		t.Fatalf("expected combo 4 at x1, got %d at x%d", l.Combo(), l.Multiplier())
	}
	score, coins := l.Score(), l.Coins()

	if got := l.AddScore(100); got != 100 {
		t.Errorf("points should use the multiplier before the combo step, got %d", got)
	}
	if l.Multiplier() != 2 {
		t.Errorf("expected x2 after the fifth pop, got x%d", l.Multiplier())
	}
	if l.Coins()-coins != 50 {
		t.Errorf("expected 50 coins from 100 base points, got %d", l.Coins()-coins)
	}

	coins = l.Coins()
	l.AddScore(100)
	if l.Score()-score != 300 {
		t.Errorf("expected 100 + 200 points, got %d", l.Score()-score)
	}
	if l.Coins()-coins != 50 {
		t.Errorf("coins should ignore the multiplier, got %d", l.Coins()-coins)
	}
}

func TestConfigurableCoinRate(t *testing.T) {
	l := NewLedger(0.7, nil)
	l.AddScore(25)
	if l.Coins() != 17 {
		t.Errorf("expected floor(25*0.7)=17 coins, got %d", l.Coins())
	}
}

func TestMultiplierCapped(t *testing.T) {
	l := NewLedger(DefaultCoinRate, nil)
	for i := 0; i < 100; i++ {
		l.AddScore(1)
	}
	if l.Multiplier() != MaxMultiplier {
		t.Errorf("expected x%d cap, got x%d", MaxMultiplier, l.Multiplier())
	}
	if l.MaxCombo() != 100 {
		t.Errorf("expected max combo 100, got %d", l.MaxCombo())
	}
}

func TestResetCombo(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(EvtMultiplierChanged, rec)
	l := NewLedger(DefaultCoinRate, bus)
	for i := 0; i < 5; i++ {
		l.AddScore(10)
	}
	l.ResetCombo()
	if l.Combo() != 0 || l.Multiplier() != 1 {
		t.Errorf("expected combo 0 at x1, got %d at x%d", l.Combo(), l.Multiplier())
	}
	if rec.count(EvtMultiplierChanged) != 2 {
		t.Errorf("expected up and down multiplier changes, got %d", rec.count(EvtMultiplierChanged))
	}
	if l.MaxCombo() != 5 {
		t.Error("max combo should survive a combo reset")
	}
}

func TestWaveReward(t *testing.T) {
	cases := map[int]int{1: 15, 3: 29, 4: 41, 5: 57 + MilestoneBonus, 10: 309 + BossWaveBonus}
	for wave, want := range cases {
		if got := WaveReward(wave); got != want {
			t.Errorf("wave %d: expected %d, got %d", wave, want, got)
		}
	}
}

func TestSpendCoins(t *testing.T) {
	l := NewLedger(DefaultCoinRate, nil)
	l.addCoins(100)

	if l.SpendCoins(101) {
		t.Error("overspend should fail")
	}
	if l.Coins() != 100 {
		t.Errorf("failed spend should not deduct, got %d", l.Coins())
	}
	if !l.SpendCoins(100) {
		t.Error("exact spend should succeed")
	}
	if l.Coins() != 0 {
		t.Errorf("expected 0 coins, got %d", l.Coins())
	}
	if l.CoinsEarned() != 100 {
		t.Errorf("spending should not reduce coins earned, got %d", l.CoinsEarned())
	}
	if l.SpendCoins(-5) {
		t.Error("negative spend should fail")
	}
}

func TestScoreObservations(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.SubscribeAll(rec)
	l := NewLedger(DefaultCoinRate, bus)
	l.AddScore(50)

	sc, ok := rec.last(EvtScoreChanged).(ScoreChanged)
	if !ok || sc.Total != 50 || sc.Delta != 50 {
		t.Errorf("unexpected score change %+v", sc)
	}
	cc, ok := rec.last(EvtCoinsChanged).(CoinsChanged)
	if !ok || cc.Total != 25 || cc.Delta != 25 {
		t.Errorf("unexpected coin change %+v", cc)
	}
}
