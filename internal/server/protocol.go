package server

import (
	"encoding/json"

	"bubble-defense/internal/game"
	"bubble-defense/internal/progression"
)

// Client -> Server message types
const (
	MsgAuth     = "auth"     // resume with a token
	MsgRegister = "register" // create an account
	MsgLogin    = "login"
	MsgStart    = "start" // start a run (creates the session on first use)
	MsgInput    = "input" // aim + trigger
	MsgWeapon   = "weapon"
	MsgBuy      = "buy"
	MsgBomb     = "bomb"
	MsgNext     = "next" // begin the next wave from the shop
	MsgRestart  = "restart"
	MsgUnlock   = "unlock" // spend stars on a weapon
	MsgProfile  = "profile"
	MsgWatch    = "watch" // spectate a run by session ID
	MsgLeave    = "leave"
)

// Server -> Client message types
const (
	MsgWelcome     = "welcome"
	MsgAuthOK      = "auth_ok"
	MsgEvent       = "event"
	MsgStars       = "stars"
	MsgAchievement = "achievement"
	MsgUnlocked    = "unlocked"
	MsgProfileData = "profile_data"
	MsgWatching    = "watching"
	MsgError       = "error"
	MsgState       = "state" // binary msgpack Snapshot; name used only by tests
)

// binary input: [0x01, x_hi, x_lo, y_hi, y_lo, z_hi, z_lo, flags]
const (
	binaryInputTag   = 0x01
	binaryInputLen   = 8
	binaryInputScale = 32767.0
	inputFlagFire    = 0x01
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// InputMsg carries the aim direction and trigger state
type InputMsg struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Fire bool    `json:"fire"`
}

type AuthMsg struct {
	Token string `json:"token"`
}

type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type WeaponMsg struct {
	ID game.WeaponID `json:"id"`
}

// BuyMsg buys a shop item, or a weapon when Weapon is set
type BuyMsg struct {
	Item   string        `json:"item,omitempty"`
	Weapon game.WeaponID `json:"weapon,omitempty"`
}

type UnlockMsg struct {
	Weapon game.WeaponID `json:"weapon"`
}

type WatchMsg struct {
	SID string `json:"sid"`
}

// WelcomeMsg is sent when a run starts
type WelcomeMsg struct {
	SID      string           `json:"sid"`
	Username string           `json:"username"`
	Guest    bool             `json:"guest"`
	Stars    int              `json:"stars"`
	Unlocked []game.WeaponID  `json:"unlocked"`
	Weapons  []game.WeaponDef `json:"weapons"`
	Shop     []game.ShopItem  `json:"shop"`
	Bound    float64          `json:"bound"`
	TickRate int              `json:"tickRate"`
}

type AuthOKMsg struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ProfileID int64  `json:"pid"`
}

// EventMsg forwards one game observation
type EventMsg struct {
	Kind string     `json:"kind"`
	Data game.Event `json:"data"`
}

type StarsMsg struct {
	Earned int `json:"earned"`
	Total  int `json:"total"`
}

type UnlockedMsg struct {
	Weapon game.WeaponID `json:"weapon"`
	Stars  int           `json:"stars"`
}

type ProfileDataMsg struct {
	Username     string                `json:"username"`
	Stars        int                   `json:"stars"`
	Unlocked     []game.WeaponID       `json:"unlocked"`
	Achievements []string              `json:"achievements"`
	Stats        *progression.StatsRow `json:"stats,omitempty"`
	Runs         []progression.RunRow  `json:"runs,omitempty"`
}

type WatchingMsg struct {
	SID string `json:"sid"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

func errorEnvelope(msg string) Envelope {
	return Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}}
}

func eventEnvelope(e game.Event) Envelope {
	return Envelope{T: MsgEvent, Data: EventMsg{Kind: e.Kind().String(), Data: e}}
}
