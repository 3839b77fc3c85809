package user

import (
	"sync"
	"time"
)

var nowFunc = time.Now // mockable

// revocationList holds the ids of logged out tokens until they expire on their own.
type revocationList struct {
	sync.Mutex
	ids map[string]time.Time
}

func newRevocationList() *revocationList {
	return &revocationList{ids: make(map[string]time.Time)}
}

func (rl *revocationList) add(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	rl.Lock()
	defer rl.Unlock()
	rl.purge()
	rl.ids[jti] = expiresAt
}

func (rl *revocationList) has(jti string) bool {
	rl.Lock()
	defer rl.Unlock()
	_, ok := rl.ids[jti]
	return ok
}

// purge drops expired entries; callers hold the lock.
func (rl *revocationList) purge() {
	now := nowFunc()
	for jti, exp := range rl.ids {
		if now.After(exp) {
			delete(rl.ids, jti)
		}
	}
}
