package server

import (
	"log"
	"sync"
	"time"

	"bubble-defense/internal/game"
	"bubble-defense/internal/progression"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	BroadcastRate = 30 // snapshots per second
	maxSessions   = 100
)

// Sender is a connection a session can push messages to
type Sender interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Session is one player's run, driven at a fixed tick rate. Spectators may
// watch it.
type Session struct {
	ID        string
	ProfileID int64
	Username  string

	mu       sync.Mutex
	game     *game.Game
	unlocks  *progression.UnlockSet
	recorder *progression.Recorder
	owner    Sender
	watchers map[Sender]bool
	tickRate int
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// SessionOptions are the collaborators a new session is wired to.
type SessionOptions struct {
	Config    game.Config
	ProfileID int64
	Username  string
	Unlocks   *progression.UnlockSet
	Store     *progression.Store
	Tracker   *progression.Tracker
	Owner     Sender
}

func newSession(id string, opts SessionOptions) *Session {
	if opts.Unlocks == nil {
		opts.Unlocks = progression.NewUnlockSet()
	}
	s := &Session{
		ID:        id,
		ProfileID: opts.ProfileID,
		Username:  opts.Username,
		game:      game.New(opts.Config, opts.Unlocks),
		unlocks:   opts.Unlocks,
		owner:     opts.Owner,
		watchers:  make(map[Sender]bool),
		tickRate:  opts.Config.TickRate,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if s.tickRate <= 0 {
		s.tickRate = game.DefaultTickRate
	}

	s.recorder = progression.NewRecorder(opts.Store, opts.ProfileID, opts.Unlocks, s.game.Clock)
	s.recorder.OnStars = func(earned, total int) {
		s.broadcast(Envelope{T: MsgStars, Data: StarsMsg{Earned: earned, Total: total}})
	}
	s.recorder.OnAchievement = func(def progression.AchievementDef) {
		s.broadcast(Envelope{T: MsgAchievement, Data: def})
	}

	bus := s.game.Bus()
	bus.SubscribeAll(game.ListenerFunc(func(e game.Event) {
		s.broadcast(eventEnvelope(e))
	}))
	bus.SubscribeAll(s.recorder)
	if opts.Tracker != nil {
		bus.SubscribeAll(opts.Tracker.Listener(opts.ProfileID, id))
	}
	return s
}

// Run starts the game loop
func (s *Session) Run() {
	defer close(s.done)

	tickDur := time.Second / time.Duration(s.tickRate)
	dt := 1.0 / float64(s.tickRate)
	every := uint64(max(1, s.tickRate/BroadcastRate))

	ticker := time.NewTicker(tickDur)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.game.Update(dt)
			if s.game.Tick()%every == 0 {
				s.broadcastState()
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Stop terminates the game loop and records the run in progress.
// Sessions are always started with Run by the manager.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder.Finish(s.game.Ledger().Score(), s.game.Director().Wave)
}

// Start begins a fresh run, recording the previous one if it was still going.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder.Active() {
		s.recorder.Finish(s.game.Ledger().Score(), s.game.Director().Wave)
	}
	s.recorder.Begin()
	s.game.Start()
}

func (s *Session) HandleInput(in InputMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.SetAim(game.V(in.X, in.Y, in.Z))
	s.game.SetFiring(in.Fire)
}

func (s *Session) SelectWeapon(id game.WeaponID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.SelectWeapon(id)
}

func (s *Session) Buy(msg BuyMsg) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Weapon != "" {
		return s.game.PurchaseWeapon(msg.Weapon)
	}
	return s.game.Buy(msg.Item)
}

func (s *Session) Bomb() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Bomb()
}

func (s *Session) NextWave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.NextWave()
}

// Unlocked re-evaluates achievements after the profile unlocked a weapon.
func (s *Session) Unlocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder.Recheck()
}

// Snapshot returns the current state of the run.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

func (s *Session) SetOwner(c Sender) {
	s.mu.Lock()
	s.owner = c
	s.mu.Unlock()
}

func (s *Session) AddWatcher(c Sender) {
	s.mu.Lock()
	s.watchers[c] = true
	s.mu.Unlock()
}

func (s *Session) RemoveWatcher(c Sender) {
	s.mu.Lock()
	delete(s.watchers, c)
	s.mu.Unlock()
}

func (s *Session) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// broadcast sends to the owner and every watcher. Callers hold s.mu.
func (s *Session) broadcast(env Envelope) {
	if s.owner != nil {
		s.owner.SendJSON(env)
	}
	for w := range s.watchers {
		w.SendJSON(env)
	}
}

// broadcastState sends the msgpack snapshot. Callers hold s.mu.
func (s *Session) broadcastState() {
	data, err := msgpack.Marshal(s.game.Snapshot())
	if err != nil {
		log.Printf("snapshot marshal error: %v", err)
		return
	}
	if s.owner != nil {
		s.owner.SendBinary(data)
	}
	for w := range s.watchers {
		w.SendBinary(data)
	}
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Create creates and starts a session. Returns nil if the limit is reached.
func (sm *SessionManager) Create(opts SessionOptions) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}
	sess := newSession(uuid.NewString(), opts)
	sm.sessions[sess.ID] = sess
	go sess.Run()
	return sess
}

// Get returns a session by ID
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Remove stops and forgets a session.
func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		sess.Stop()
	}
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// StopAll stops every session, recording runs in progress.
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	all := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()
	for _, sess := range all {
		sess.Stop()
	}
}
