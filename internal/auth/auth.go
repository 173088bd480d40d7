package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bubble-defense/internal/progression"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenExpiry      = 7 * 24 * time.Hour
	BcryptCost       = 12
	MinPasswordLen   = 4
	MinUsernameLen   = 2
	MaxUsernameLen   = 16
	LoginRateWindow  = 60 * time.Second
	MaxLoginAttempts = 10

	secretSetting = "jwt_secret"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = progression.ErrUsernameTaken
	ErrRateLimited        = errors.New("too many login attempts, try again later")
	ErrInvalidToken       = errors.New("invalid token")
)

// Store is the profile storage auth needs.
type Store interface {
	CreateProfile(username, passHash string) (int64, error)
	GetProfileByUsername(username string) (*progression.ProfileRow, error)
	GetSetting(key string) string
	SetSetting(key, value string) error
}

// Auth handles registration, login and session tokens
type Auth struct {
	store     Store
	jwtSecret []byte
	cost      int

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// New creates an Auth backed by store. The signing secret is loaded from the
// store, or generated and persisted on first use.
func New(store Store) *Auth {
	return &Auth{
		store:     store,
		jwtSecret: loadOrCreateSecret(store),
		cost:      BcryptCost,
		rateMap:   make(map[string]*rateEntry),
	}
}

// SetCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *Auth) SetCost(cost int) { a.cost = cost }

func loadOrCreateSecret(store Store) []byte {
	if store != nil {
		if h := store.GetSetting(secretSetting); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if store != nil {
		if err := store.SetSetting(secretSetting, hex.EncodeToString(secret)); err != nil {
			log.Printf("auth: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Register creates a new account and returns its profile ID and a token.
func (a *Auth) Register(username, password string) (int64, string, error) {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return 0, "", fmt.Errorf("username must be %d-%d characters", MinUsernameLen, MaxUsernameLen)
	}
	if strings.HasPrefix(username, GuestPrefix) {
		return 0, "", fmt.Errorf("username may not start with %q", GuestPrefix)
	}
	if len(password) < MinPasswordLen {
		return 0, "", fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return 0, "", fmt.Errorf("hash password: %w", err)
	}

	id, err := a.store.CreateProfile(username, string(hash))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return 0, "", ErrUsernameTaken
		}
		return 0, "", fmt.Errorf("create profile: %w", err)
	}

	token, err := a.IssueToken(id, username)
	if err != nil {
		return 0, "", err
	}
	return id, token, nil
}

// Login authenticates a user and returns a token. ip keys the rate limiter.
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.checkRate(ip) {
		return 0, "", ErrRateLimited
	}

	p, err := a.store.GetProfileByUsername(strings.TrimSpace(username))
	if err != nil {
		return 0, "", fmt.Errorf("lookup profile: %w", err)
	}
	if p == nil || p.PassHash == "" {
		return 0, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PassHash), []byte(password)); err != nil {
		return 0, "", ErrInvalidCredentials
	}

	token, err := a.IssueToken(p.ID, p.Username)
	if err != nil {
		return 0, "", err
	}
	return p.ID, token, nil
}

// ValidateToken validates a token and returns (profileID, username, error)
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", ErrInvalidToken
	}
	pid, ok := claims["pid"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	username, ok := claims["usr"].(string)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return int64(pid), username, nil
}

// IssueToken signs a token for the given profile.
func (a *Auth) IssueToken(profileID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"pid": profileID,
		"usr": username,
		"exp": now.Add(TokenExpiry).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(LoginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= MaxLoginAttempts
}

const GuestPrefix = "Guest_"

// GuestName creates a guest name like "Guest_a3f2c1"
func GuestName() string {
	b := make([]byte, 3)
	rand.Read(b)
	return GuestPrefix + hex.EncodeToString(b)
}
