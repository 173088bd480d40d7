package progression

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"bubble-defense/internal/game"
)

// Event types tracked outside the game's own observations
const (
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtUnlock       = "unlock"
	EvtAchievement  = "achievement"
	EvtPurchase     = "purchase"
)

const (
	trackerQueueSize  = 1024
	trackerBatchSize  = 50
	trackerFlushEvery = 5 * time.Second
)

// game observations worth persisting; per-frame noise such as score and
// coin changes is left out
var trackedKinds = map[game.EventKind]bool{
	game.EvtWaveStarted:   true,
	game.EvtWaveComplete:  true,
	game.EvtBossSpawned:   true,
	game.EvtBossDefeated:  true,
	game.EvtShieldBroken:  true,
	game.EvtGameOver:      true,
	game.EvtWeaponChanged: true,
	game.EvtBombDetonated: true,
}

// TrackedEvent represents a single trackable event
type TrackedEvent struct {
	Type      string
	ProfileID int64
	SessionID string
	Data      string // JSON payload, optional
	Timestamp time.Time
}

// Tracker persists events with batched background writes
type Tracker struct {
	store  *Store
	events chan TrackedEvent
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu       sync.Mutex
	dropped  int
	sessions int
}

// NewTracker creates and starts the background writer
func NewTracker(s *Store) *Tracker {
	t := &Tracker{
		store:  s,
		events: make(chan TrackedEvent, trackerQueueSize),
		stop:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.writer()
	return t
}

// Track enqueues an event for async persistence (non-blocking)
func (t *Tracker) Track(evtType string, profileID int64, sessionID, data string) {
	if t == nil {
		return
	}
	select {
	case <-t.stop:
		return
	default:
	}
	select {
	case t.events <- TrackedEvent{
		Type:      evtType,
		ProfileID: profileID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()
	}
}

// Listener returns a game listener that tracks observations for one session.
func (t *Tracker) Listener(profileID int64, sessionID string) game.Listener {
	if t == nil {
		return game.ListenerFunc(func(game.Event) {})
	}
	return game.ListenerFunc(func(e game.Event) {
		if !trackedKinds[e.Kind()] {
			return
		}
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		t.Track(e.Kind().String(), profileID, sessionID, string(data))
	})
}

// SetActiveSessions updates the live session count.
func (t *Tracker) SetActiveSessions(n int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.sessions = n
	t.mu.Unlock()
}

// Live returns the live session count and how many events were dropped.
func (t *Tracker) Live() (sessions, dropped int) {
	if t == nil {
		return 0, 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions, t.dropped
}

// Stop flushes queued events and shuts down the writer
func (t *Tracker) Stop() {
	t.once.Do(func() {
		close(t.stop)
		t.wg.Wait()
	})
}

func (t *Tracker) writer() {
	defer t.wg.Done()

	batch := make([]TrackedEvent, 0, 64)
	ticker := time.NewTicker(trackerFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-t.events:
			batch = append(batch, evt)
			if len(batch) >= trackerBatchSize {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-t.stop:
			for {
				select {
				case evt := <-t.events:
					batch = append(batch, evt)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

func (t *Tracker) flush(events []TrackedEvent) {
	if t.store == nil || len(events) == 0 {
		return
	}
	tx, err := t.store.conn.Begin()
	if err != nil {
		log.Printf("tracker: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (profile_id, session_id, kind, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("tracker: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		if _, err := stmt.Exec(evt.ProfileID, evt.SessionID, evt.Type, evt.Data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("tracker: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("tracker: commit error: %v", err)
	}
}

// EventCounts returns counts of each event type for the last N days
func (s *Store) EventCounts(days int) (map[string]int, error) {
	rows, err := s.conn.Query(`
		SELECT kind, COUNT(*) FROM events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY kind ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			continue
		}
		result[kind] = count
	}
	return result, rows.Err()
}

// ActiveProfiles returns the number of distinct profiles with events in the last N days.
func (s *Store) ActiveProfiles(days int) (int, error) {
	var count int
	err := s.conn.QueryRow(`
		SELECT COUNT(DISTINCT profile_id) FROM events
		WHERE profile_id > 0 AND created_at >= date('now', '-' || ? || ' days')
	`, days).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
