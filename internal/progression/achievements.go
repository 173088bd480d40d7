package progression

import (
	"log"

	"bubble-defense/internal/game"
)

// AchievementDef describes one achievement and the stars it grants.
type AchievementDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
}

var Achievements = []AchievementDef{
	{"first_blood", "First Pop", "Pop your first bubble", 1},
	{"wave_rookie", "Wave Rookie", "Complete wave 1", 1},
	{"centurion", "Centurion", "Pop 100 bubbles", 2},
	{"bubble_popper", "Bubble Popper", "Pop 1000 bubbles", 2},
	{"combo_starter", "Combo Starter", "Reach a 5x multiplier", 2},
	{"combo_master", "Combo Master", "Reach the 10x multiplier", 3},
	{"wave_warrior", "Wave Warrior", "Reach wave 10", 5},
	{"untouchable", "Untouchable", "Complete a wave without taking damage", 3},
	{"perfectionist", "Perfectionist", "Complete 5 perfect waves", 7},
	{"boss_slayer", "Boss Slayer", "Defeat the boss", 10},
	{"boss_master", "Boss Master", "Defeat the boss 3 times", 15},
	{"weapon_collector", "Weapon Collector", "Unlock 2 weapons", 3},
	{"weapon_master", "Weapon Master", "Unlock every weapon", 5},
	{"bomb_expert", "Bomb Expert", "Clear 20 bubbles with one bomb", 3},
	{"millionaire", "Millionaire", "Earn 10000 coins in total", 8},
}

// Progress is what achievement conditions are evaluated against.
type Progress struct {
	Stats         StatsRow
	Wave          int // highest wave reached this run
	PerfectWave   bool
	MaxMultiplier int
	BestBomb      int // most enemies cleared by a single bomb this run
	Unlocked      int // weapons unlocked, standard excluded
}

// GetAchievement returns the definition for id, or nil.
func GetAchievement(id string) *AchievementDef {
	for i := range Achievements {
		if Achievements[i].ID == id {
			return &Achievements[i]
		}
	}
	return nil
}

// CheckAchievements unlocks every achievement whose condition p meets and
// credits its stars. Returns the newly unlocked achievements.
func CheckAchievements(s *Store, profileID int64, p Progress) []AchievementDef {
	if s == nil {
		return nil
	}

	existing, err := s.Achievements(profileID)
	if err != nil {
		log.Printf("store: load achievements for %d: %v", profileID, err)
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_blood":
			return p.Stats.BubblesPopped >= 1
		case "wave_rookie":
			return p.Stats.WavesCompleted >= 1
		case "centurion":
			return p.Stats.BubblesPopped >= 100
		case "bubble_popper":
			return p.Stats.BubblesPopped >= 1000
		case "combo_starter":
			return p.MaxMultiplier >= 5
		case "combo_master":
			return p.MaxMultiplier >= game.MaxMultiplier
		case "wave_warrior":
			return p.Wave >= game.BossWave || p.Stats.HighestWave >= game.BossWave
		case "untouchable":
			return p.PerfectWave || p.Stats.PerfectWaves >= 1
		case "perfectionist":
			return p.Stats.PerfectWaves >= 5
		case "boss_slayer":
			return p.Stats.BossesDefeated >= 1
		case "boss_master":
			return p.Stats.BossesDefeated >= 3
		case "weapon_collector":
			return p.Unlocked >= 2
		case "weapon_master":
			return p.Unlocked >= len(game.WeaponCatalog)-1
		case "bomb_expert":
			return p.BestBomb >= 20
		case "millionaire":
			return p.Stats.CoinsEarned >= 10000
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if !check(def.ID) {
			continue
		}
		newlyUnlocked, err := s.UnlockAchievement(profileID, def.ID)
		if err != nil {
			log.Printf("store: unlock achievement %s for %d: %v", def.ID, profileID, err)
			continue
		}
		if !newlyUnlocked {
			continue
		}
		if _, err := s.AddStars(profileID, def.Stars); err != nil {
			log.Printf("store: credit stars for %s: %v", def.ID, err)
		}
		unlocked = append(unlocked, def)
	}
	return unlocked
}
