package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"bubble-defense/internal/auth"
	"bubble-defense/internal/game"
	"bubble-defense/internal/progression"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	historyLimit      = 10
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	// touched only by the read pump, then by the hub after unregister
	sessionID string
	watching  string
	profileID int64 // 0 until authenticated or a guest profile is made
	username  string
	guest     bool
	unlocks   *progression.UnlockSet
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if msgType == websocket.BinaryMessage && len(message) == binaryInputLen && message[0] == binaryInputTag {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame, see SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }() // send may be closed by the hub
	select {
	case c.send <- data:
	default:
		// too slow, drop
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// A leading 0xFF marker lets WritePump tell it apart from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(errorEnvelope(msg))
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgStart:
		c.handleStart()
	case MsgRestart:
		c.handleRestart()
	case MsgInput:
		c.handleInput(env.D)
	case MsgWeapon:
		c.handleWeapon(env.D)
	case MsgBuy:
		c.handleBuy(env.D)
	case MsgBomb:
		c.handleBomb()
	case MsgNext:
		c.handleNext()
	case MsgUnlock:
		c.handleUnlock(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgWatch:
		c.handleWatch(env.D)
	case MsgLeave:
		c.handleLeave()
	}
}

func (c *Client) session() *Session {
	if c.sessionID == "" {
		return nil
	}
	return c.hub.sessions.Get(c.sessionID)
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts are unavailable")
		return
	}
	if c.sessionID != "" {
		c.sendError("leave the run before changing account")
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.signIn(id, msg.Username, token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts are unavailable")
		return
	}
	if c.sessionID != "" {
		c.sendError("leave the run before changing account")
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrRateLimited) {
			c.sendError(err.Error())
		} else {
			log.Printf("login error: %v", err)
			c.sendError("internal error")
		}
		return
	}
	c.signIn(id, msg.Username, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts are unavailable")
		return
	}
	if c.sessionID != "" {
		c.sendError("leave the run before changing account")
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.signIn(id, username, msg.Token)
}

func (c *Client) signIn(id int64, username, token string) {
	c.profileID = id
	c.username = username
	c.guest = false
	c.unlocks = nil
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:     token,
		Username:  username,
		ProfileID: id,
	}})
}

// ensureProfile gives an anonymous connection a guest profile so its run
// still earns stars for the length of the connection.
func (c *Client) ensureProfile() error {
	if c.unlocks != nil {
		return nil
	}
	store := c.hub.store
	if c.profileID == 0 {
		c.username = auth.GuestName()
		c.guest = true
		if store != nil {
			id, err := store.CreateGuest(c.username)
			if err != nil {
				return fmt.Errorf("create guest: %w", err)
			}
			c.profileID = id
		}
	}
	if store == nil || c.profileID == 0 {
		c.unlocks = progression.NewUnlockSet()
		return nil
	}
	u, err := store.LoadUnlocks(c.profileID)
	if err != nil {
		return fmt.Errorf("load unlocks: %w", err)
	}
	c.unlocks = u
	return nil
}

func (c *Client) handleStart() {
	if sess := c.session(); sess != nil {
		sess.Start()
		return
	}
	if c.watching != "" {
		c.stopWatching()
	}
	if err := c.ensureProfile(); err != nil {
		log.Printf("start error: %v", err)
		c.sendError("internal error")
		return
	}

	sess := c.hub.sessions.Create(SessionOptions{
		Config:    c.hub.cfg,
		ProfileID: c.profileID,
		Username:  c.username,
		Unlocks:   c.unlocks,
		Store:     c.hub.store,
		Tracker:   c.hub.tracker,
	})
	if sess == nil {
		c.sendError("too many active sessions")
		return
	}
	c.sessionID = sess.ID
	c.hub.tracker.Track(progression.EvtSessionStart, c.profileID, sess.ID, "")
	c.hub.tracker.SetActiveSessions(c.hub.sessions.Count())

	welcome := WelcomeMsg{
		SID:      sess.ID,
		Username: c.username,
		Guest:    c.guest,
		Unlocked: c.unlocks.List(),
		Weapons:  game.WeaponCatalog,
		Shop:     game.ShopCatalog,
		Bound:    c.hub.cfg.Bound,
		TickRate: c.hub.cfg.TickRate,
	}
	if c.hub.store != nil && c.profileID != 0 {
		if stars, err := c.hub.store.Stars(c.profileID); err == nil {
			welcome.Stars = stars
		}
	}
	c.SendJSON(Envelope{T: MsgWelcome, Data: welcome})
	sess.SetOwner(c)
	sess.Start()
}

func (c *Client) handleRestart() {
	sess := c.session()
	if sess == nil {
		c.sendError("no run in progress")
		return
	}
	sess.Start()
}

// handleBinaryInput decodes the compact 8-byte input message
func (c *Client) handleBinaryInput(msg []byte) {
	sess := c.session()
	if sess == nil {
		return
	}
	x := float64(int16(uint16(msg[1])<<8|uint16(msg[2]))) / binaryInputScale
	y := float64(int16(uint16(msg[3])<<8|uint16(msg[4]))) / binaryInputScale
	z := float64(int16(uint16(msg[5])<<8|uint16(msg[6]))) / binaryInputScale
	sess.HandleInput(InputMsg{X: x, Y: y, Z: z, Fire: msg[7]&inputFlagFire != 0})
}

func (c *Client) handleInput(data json.RawMessage) {
	sess := c.session()
	if sess == nil {
		return
	}
	var in InputMsg
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}
	sess.HandleInput(in)
}

func (c *Client) handleWeapon(data json.RawMessage) {
	sess := c.session()
	if sess == nil {
		return
	}
	var msg WeaponMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !sess.SelectWeapon(msg.ID) {
		c.sendError("weapon not owned")
	}
}

func (c *Client) handleBuy(data json.RawMessage) {
	sess := c.session()
	if sess == nil {
		return
	}
	var msg BuyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !sess.Buy(msg) {
		c.sendError("purchase failed")
		return
	}
	item := msg.Item
	if msg.Weapon != "" {
		item = "weapon:" + string(msg.Weapon)
	}
	payload, _ := json.Marshal(map[string]string{"item": item})
	c.hub.tracker.Track(progression.EvtPurchase, c.profileID, c.sessionID, string(payload))
}

func (c *Client) handleBomb() {
	sess := c.session()
	if sess == nil {
		return
	}
	if !sess.Bomb() {
		c.sendError("bomb unavailable")
	}
}

func (c *Client) handleNext() {
	sess := c.session()
	if sess == nil {
		return
	}
	if !sess.NextWave() {
		c.sendError("wave in progress")
	}
}

func (c *Client) handleUnlock(data json.RawMessage) {
	store := c.hub.store
	if store == nil {
		c.sendError("progression is unavailable")
		return
	}
	var msg UnlockMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := c.ensureProfile(); err != nil {
		log.Printf("unlock error: %v", err)
		c.sendError("internal error")
		return
	}

	left, err := store.UnlockWeapon(c.profileID, msg.Weapon)
	switch {
	case errors.Is(err, progression.ErrInsufficientStars),
		errors.Is(err, progression.ErrAlreadyUnlocked),
		errors.Is(err, progression.ErrUnknownWeapon):
		c.sendError(err.Error())
		return
	case err != nil:
		log.Printf("unlock error: %v", err)
		c.sendError("internal error")
		return
	}

	c.unlocks.Add(msg.Weapon)
	c.SendJSON(Envelope{T: MsgUnlocked, Data: UnlockedMsg{Weapon: msg.Weapon, Stars: left}})
	payload, _ := json.Marshal(map[string]string{"weapon": string(msg.Weapon)})
	c.hub.tracker.Track(progression.EvtUnlock, c.profileID, c.sessionID, string(payload))
	if sess := c.session(); sess != nil {
		sess.Unlocked()
	}
}

func (c *Client) handleProfile() {
	store := c.hub.store
	if store == nil || c.profileID == 0 {
		c.sendError("not authenticated")
		return
	}
	p, err := store.GetProfileByID(c.profileID)
	if err != nil || p == nil {
		c.sendError("profile not found")
		return
	}
	out := ProfileDataMsg{Username: p.Username}
	if out.Stars, err = store.Stars(p.ID); err != nil {
		log.Printf("profile error: %v", err)
	}
	if out.Unlocked, err = store.UnlockedWeapons(p.ID); err != nil {
		log.Printf("profile error: %v", err)
	}
	if out.Achievements, err = store.Achievements(p.ID); err != nil {
		log.Printf("profile error: %v", err)
	}
	if out.Stats, err = store.GetStats(p.ID); err != nil {
		log.Printf("profile error: %v", err)
	}
	if out.Runs, err = store.RunHistory(p.ID, historyLimit); err != nil {
		log.Printf("profile error: %v", err)
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: out})
}

func (c *Client) handleWatch(data json.RawMessage) {
	var msg WatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.sessionID != "" {
		c.sendError("leave the run before watching")
		return
	}
	sess := c.hub.sessions.Get(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	c.stopWatching()
	sess.AddWatcher(c)
	c.watching = sess.ID
	c.SendJSON(Envelope{T: MsgWatching, Data: WatchingMsg{SID: sess.ID}})
}

func (c *Client) stopWatching() {
	if c.watching == "" {
		return
	}
	if sess := c.hub.sessions.Get(c.watching); sess != nil {
		sess.RemoveWatcher(c)
	}
	c.watching = ""
}

func (c *Client) handleLeave() {
	c.stopWatching()
	if c.sessionID != "" {
		id := c.sessionID
		c.sessionID = ""
		c.hub.sessions.Remove(id)
		c.hub.tracker.Track(progression.EvtSessionEnd, c.profileID, id, "")
		c.hub.tracker.SetActiveSessions(c.hub.sessions.Count())
	}
}
