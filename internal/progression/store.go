package progression

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bubble-defense/internal/game"

	_ "modernc.org/sqlite"
)

var (
	ErrInsufficientStars = errors.New("not enough stars")
	ErrAlreadyUnlocked   = errors.New("weapon already unlocked")
	ErrUnknownWeapon     = errors.New("unknown weapon")
	ErrUsernameTaken     = errors.New("username already taken")
)

// Store wraps the SQLite database holding cross-run progression.
type Store struct {
	conn *sql.DB
}

// ProfileRow represents a profile record.
type ProfileRow struct {
	ID        int64
	Username  string
	PassHash  string
	Guest     bool
	CreatedAt time.Time
}

// StatsRow holds lifetime statistics for a profile.
type StatsRow struct {
	ProfileID      int64   `json:"-"`
	BubblesPopped  int     `json:"bubblesPopped"`
	WavesCompleted int     `json:"wavesCompleted"`
	HighestWave    int     `json:"highestWave"`
	HighestCombo   int     `json:"highestCombo"`
	CoinsEarned    int     `json:"coinsEarned"`
	BossesDefeated int     `json:"bossesDefeated"`
	BombsUsed      int     `json:"bombsUsed"`
	PerfectWaves   int     `json:"perfectWaves"`
	RunsPlayed     int     `json:"runsPlayed"`
	PlayTime       float64 `json:"playTime"` // seconds
}

// StatsDelta is added onto a StatsRow. Highest* fields are maxima, not increments.
type StatsDelta struct {
	BubblesPopped  int
	WavesCompleted int
	HighestWave    int
	HighestCombo   int
	CoinsEarned    int
	BossesDefeated int
	BombsUsed      int
	PerfectWaves   int
	RunsPlayed     int
	PlayTime       float64
}

// IsZero reports whether applying d would change nothing.
func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}

// RunRow is one finished run.
type RunRow struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"-"`
	Score     int       `json:"score"`
	Wave      int       `json:"wave"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	BestScore int    `json:"bestScore"`
	BestWave  int    `json:"bestWave"`
	Runs      int    `json:"runs"`
}

// OpenStore opens (or creates) the SQLite database
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		stars INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		profile_id INTEGER PRIMARY KEY REFERENCES profiles(id),
		bubbles_popped INTEGER NOT NULL DEFAULT 0,
		waves_completed INTEGER NOT NULL DEFAULT 0,
		highest_wave INTEGER NOT NULL DEFAULT 0,
		highest_combo INTEGER NOT NULL DEFAULT 0,
		coins_earned INTEGER NOT NULL DEFAULT 0,
		bosses_defeated INTEGER NOT NULL DEFAULT 0,
		bombs_used INTEGER NOT NULL DEFAULT 0,
		perfect_waves INTEGER NOT NULL DEFAULT 0,
		runs_played INTEGER NOT NULL DEFAULT 0,
		play_time REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS unlocked_weapons (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		weapon TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, weapon)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		score INTEGER NOT NULL DEFAULT 0,
		wave INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id INTEGER NOT NULL DEFAULT 0,
		session_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile_id);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind, created_at);
	`
	_, err := s.conn.Exec(schema)
	if err != nil {
		log.Printf("store: migration error: %v", err)
	}
	return err
}

// CreateProfile creates an account and its stats row, returning the profile ID.
func (s *Store) CreateProfile(username, passHash string) (int64, error) {
	return s.createProfile(username, passHash, false)
}

// CreateGuest creates a guest profile (no password, hidden from the leaderboard).
func (s *Store) CreateGuest(username string) (int64, error) {
	return s.createProfile(username, "", true)
}

func (s *Store) createProfile(username, passHash string, guest bool) (int64, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO profiles (username, pass_hash, is_guest) VALUES (?, ?, ?)",
		username, passHash, guest,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO stats (profile_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	// standard is owned from the start
	if _, err := tx.Exec("INSERT INTO unlocked_weapons (profile_id, weapon) VALUES (?, ?)", id, game.WeaponStandard); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// GetProfileByUsername returns a profile by username, or nil if there is none.
func (s *Store) GetProfileByUsername(username string) (*ProfileRow, error) {
	row := s.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, created_at FROM profiles WHERE username = ?",
		username,
	)
	return scanProfile(row)
}

// GetProfileByID returns a profile by ID, or nil if there is none.
func (s *Store) GetProfileByID(id int64) (*ProfileRow, error) {
	row := s.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, created_at FROM profiles WHERE id = ?",
		id,
	)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*ProfileRow, error) {
	p := &ProfileRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.Guest, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UsernameExists checks if a username is taken
func (s *Store) UsernameExists(username string) (bool, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM profiles WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// Stars returns the profile's star balance.
func (s *Store) Stars(profileID int64) (int, error) {
	var stars int
	err := s.conn.QueryRow("SELECT stars FROM profiles WHERE id = ?", profileID).Scan(&stars)
	return stars, err
}

// AddStars credits stars and returns the new balance.
func (s *Store) AddStars(profileID int64, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("add stars: negative amount %d", n)
	}
	if _, err := s.conn.Exec("UPDATE profiles SET stars = stars + ? WHERE id = ?", n, profileID); err != nil {
		return 0, err
	}
	return s.Stars(profileID)
}

// UnlockedWeapons returns the weapons the profile has unlocked, in catalog order.
func (s *Store) UnlockedWeapons(profileID int64) ([]game.WeaponID, error) {
	rows, err := s.conn.Query("SELECT weapon FROM unlocked_weapons WHERE profile_id = ?", profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	have := make(map[game.WeaponID]bool)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		have[game.WeaponID(w)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []game.WeaponID{game.WeaponStandard}
	for _, def := range game.WeaponCatalog {
		if def.ID != game.WeaponStandard && have[def.ID] {
			out = append(out, def.ID)
		}
	}
	return out, nil
}

// UnlockWeapon spends the weapon's star cost and records the unlock.
// Returns the remaining star balance.
func (s *Store) UnlockWeapon(profileID int64, id game.WeaponID) (int, error) {
	def, ok := game.GetWeaponDef(id)
	if !ok {
		return 0, ErrUnknownWeapon
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM unlocked_weapons WHERE profile_id = ? AND weapon = ?",
		profileID, id,
	).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 || id == game.WeaponStandard {
		return 0, ErrAlreadyUnlocked
	}

	var stars int
	if err := tx.QueryRow("SELECT stars FROM profiles WHERE id = ?", profileID).Scan(&stars); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("unlock weapon: no profile %d", profileID)
		}
		return 0, err
	}
	if stars < def.UnlockCost {
		return stars, ErrInsufficientStars
	}

	if _, err := tx.Exec("UPDATE profiles SET stars = stars - ? WHERE id = ?", def.UnlockCost, profileID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO unlocked_weapons (profile_id, weapon) VALUES (?, ?)", profileID, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return stars - def.UnlockCost, nil
}

// LoadUnlocks returns an in-memory unlock set for the profile, suitable for handing to a game.
func (s *Store) LoadUnlocks(profileID int64) (*UnlockSet, error) {
	ids, err := s.UnlockedWeapons(profileID)
	if err != nil {
		return nil, err
	}
	return NewUnlockSet(ids...), nil
}

// GetStats returns lifetime statistics, or nil if the profile has none.
func (s *Store) GetStats(profileID int64) (*StatsRow, error) {
	row := s.conn.QueryRow(`
		SELECT profile_id, bubbles_popped, waves_completed, highest_wave, highest_combo,
			coins_earned, bosses_defeated, bombs_used, perfect_waves, runs_played, play_time
		FROM stats WHERE profile_id = ?`,
		profileID,
	)
	st := &StatsRow{}
	err := row.Scan(&st.ProfileID, &st.BubblesPopped, &st.WavesCompleted, &st.HighestWave, &st.HighestCombo,
		&st.CoinsEarned, &st.BossesDefeated, &st.BombsUsed, &st.PerfectWaves, &st.RunsPlayed, &st.PlayTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ApplyStats folds a delta into the profile's lifetime statistics.
func (s *Store) ApplyStats(profileID int64, d StatsDelta) error {
	_, err := s.conn.Exec(`
		UPDATE stats SET
			bubbles_popped = bubbles_popped + ?,
			waves_completed = waves_completed + ?,
			highest_wave = MAX(highest_wave, ?),
			highest_combo = MAX(highest_combo, ?),
			coins_earned = coins_earned + ?,
			bosses_defeated = bosses_defeated + ?,
			bombs_used = bombs_used + ?,
			perfect_waves = perfect_waves + ?,
			runs_played = runs_played + ?,
			play_time = play_time + ?
		WHERE profile_id = ?`,
		d.BubblesPopped, d.WavesCompleted, d.HighestWave, d.HighestCombo, d.CoinsEarned,
		d.BossesDefeated, d.BombsUsed, d.PerfectWaves, d.RunsPlayed, d.PlayTime, profileID,
	)
	return err
}

// RecordRun records a finished run and returns its ID
func (s *Store) RecordRun(profileID int64, score, wave int, duration float64) (int64, error) {
	res, err := s.conn.Exec(
		"INSERT INTO runs (profile_id, score, wave, duration) VALUES (?, ?, ?, ?)",
		profileID, score, wave, duration,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RunHistory returns the most recent runs for a profile.
func (s *Store) RunHistory(profileID int64, limit int) ([]RunRow, error) {
	rows, err := s.conn.Query(`
		SELECT id, profile_id, score, wave, duration, created_at
		FROM runs WHERE profile_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Score, &r.Wave, &r.Duration, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Leaderboard returns registered profiles ranked by their best run score.
func (s *Store) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.conn.Query(`
		SELECT p.username, MAX(r.score), MAX(r.wave), COUNT(r.id)
		FROM runs r JOIN profiles p ON p.id = r.profile_id
		WHERE p.is_guest = 0
		GROUP BY p.id
		ORDER BY MAX(r.score) DESC, p.username ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.BestScore, &e.BestWave, &e.Runs); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// Achievements returns the IDs of achievements the profile holds.
func (s *Store) Achievements(profileID int64) ([]string, error) {
	rows, err := s.conn.Query(
		"SELECT achievement_id FROM achievements WHERE profile_id = ? ORDER BY unlocked_at, achievement_id",
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnlockAchievement records an achievement. Returns true only the first time.
func (s *Store) UnlockAchievement(profileID int64, id string) (bool, error) {
	res, err := s.conn.Exec(
		"INSERT OR IGNORE INTO achievements (profile_id, achievement_id) VALUES (?, ?)",
		profileID, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetSetting returns a stored setting, or "" if unset.
func (s *Store) GetSetting(key string) string {
	var v string
	err := s.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Printf("store: get setting %s: %v", key, err)
	}
	return v
}

// SetSetting stores a setting, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
