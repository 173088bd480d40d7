package progression

import (
	"testing"

	"bubble-defense/internal/game"
)

func TestTrackerFlushesOnStop(t *testing.T) {
	s := openTestStore(t)
	tr := NewTracker(s)

	l := tr.Listener(1, "sess")
	l.OnEvent(game.WaveStarted{Wave: 1, Budget: 6})
	l.OnEvent(game.ScoreChanged{Total: 10, Delta: 10})
	l.OnEvent(game.WaveComplete{Wave: 1, Perfect: true})
	tr.Track(EvtSessionStart, 1, "sess", "")
	tr.Stop()
	tr.Stop()

	counts, err := s.EventCounts(1)
	if err != nil {
		t.Fatal(err)
	}
	if counts["wave_started"] != 1 || counts["wave_complete"] != 1 || counts[EvtSessionStart] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts["score_changed"]; ok {
		t.Error("score changes should not be persisted")
	}
	if n, err := s.ActiveProfiles(1); err != nil || n != 1 {
		t.Errorf("expected 1 active profile, got %d (%v)", n, err)
	}

	tr.Track(EvtSessionEnd, 1, "sess", "")
}

func TestNilTrackerIsNoop(t *testing.T) {
	var tr *Tracker
	tr.Track(EvtSessionStart, 0, "", "")
}
