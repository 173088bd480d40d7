package progression

import (
	"sync"

	"bubble-defense/internal/game"
)

// UnlockSet is an in-memory view of a profile's unlocked weapons.
// It satisfies game.Unlocks and is safe to read from the game loop while a
// connection handler adds to it.
type UnlockSet struct {
	mu  sync.RWMutex
	ids map[game.WeaponID]bool
}

func NewUnlockSet(ids ...game.WeaponID) *UnlockSet {
	u := &UnlockSet{ids: map[game.WeaponID]bool{game.WeaponStandard: true}}
	for _, id := range ids {
		u.ids[id] = true
	}
	return u
}

func (u *UnlockSet) IsWeaponUnlocked(id game.WeaponID) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.ids[id]
}

func (u *UnlockSet) Add(id game.WeaponID) {
	u.mu.Lock()
	u.ids[id] = true
	u.mu.Unlock()
}

// List returns the unlocked weapons in catalog order.
func (u *UnlockSet) List() []game.WeaponID {
	u.mu.RLock()
	defer u.mu.RUnlock()
	var out []game.WeaponID
	for _, def := range game.WeaponCatalog {
		if u.ids[def.ID] {
			out = append(out, def.ID)
		}
	}
	return out
}

func (u *UnlockSet) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.ids)
}
