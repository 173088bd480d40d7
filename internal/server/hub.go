package server

import (
	"sync"

	"bubble-defense/internal/auth"
	"bubble-defense/internal/game"
	"bubble-defense/internal/progression"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and the sessions they drive
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	cfg        game.Config

	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	store   *progression.Store
	auth    *auth.Auth
	tracker *progression.Tracker
}

// NewHub creates a Hub. store may be nil, in which case nothing persists
// and accounts are unavailable.
func NewHub(cfg game.Config, store *progression.Store) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   NewSessionManager(),
		cfg:        cfg,
		ipConns:    make(map[string]int),
		store:      store,
	}
	if store != nil {
		h.auth = auth.New(store)
		h.tracker = progression.NewTracker(store)
	}
	return h
}

// Auth exposes the hub's authenticator, nil without a store.
func (h *Hub) Auth() *auth.Auth { return h.auth }

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until stop is closed
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.detach(client)

		case <-stop:
			return
		}
	}
}

// detach removes a client from whatever session it owns or watches.
func (h *Hub) detach(c *Client) {
	c.handleLeave()
}

// Shutdown stops every session and flushes tracked events.
func (h *Hub) Shutdown() {
	h.sessions.StopAll()
	if h.tracker != nil {
		h.tracker.Stop()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

// SessionCount returns the number of live runs
func (h *Hub) SessionCount() int {
	return h.sessions.Count()
}
