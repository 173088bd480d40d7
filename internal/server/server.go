package server

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"

	"bubble-defense/internal/progression"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
	statsWindowDays         = 7
	qrSize                  = 256
)

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http encode error: %v", err)
	}
}

// SetupRoutes configures HTTP routes. staticDir may be empty to serve no client.
func SetupRoutes(hub *Hub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	if staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			// SPA: a session path opens the client in spectator mode
			if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fs.ServeHTTP(w, r)
		}))
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":       true,
			"clients":  hub.ClientCount(),
			"sessions": hub.SessionCount(),
		})
	})

	mux.HandleFunc("GET /api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if hub.store == nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorMsg{Msg: "no database"})
			return
		}
		limit := defaultLeaderboardLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "bad limit"})
				return
			}
			limit = min(n, maxLeaderboardLimit)
		}
		entries, err := hub.store.Leaderboard(limit)
		if err != nil {
			log.Printf("leaderboard error: %v", err)
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "internal error"})
			return
		}
		if entries == nil {
			entries = []progression.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		sessions, dropped := hub.tracker.Live()
		out := map[string]interface{}{
			"clients":  hub.ClientCount(),
			"sessions": sessions,
			"dropped":  dropped,
		}
		if hub.store != nil {
			if counts, err := hub.store.EventCounts(statsWindowDays); err == nil {
				out["events"] = counts
			}
			if n, err := hub.store.ActiveProfiles(statsWindowDays); err == nil {
				out["activeProfiles"] = n
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /qr/{sid}", func(w http.ResponseWriter, r *http.Request) {
		sid := r.PathValue("sid")
		if hub.sessions.Get(sid) == nil {
			http.NotFound(w, r)
			return
		}
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		png, err := qrcode.Encode(scheme+"://"+r.Host+"/"+sid, qrcode.Medium, qrSize)
		if err != nil {
			log.Printf("qr error: %v", err)
			http.Error(w, "qr failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	return mux
}
