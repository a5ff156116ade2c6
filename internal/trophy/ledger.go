package trophy

import (
	"sort"
	"sync"

	"inplayrs/backoffice/internal/models"
)

// Ledger is the per-run snapshot of which trophies each user already holds.
// A user present in the ledger has been loaded from the store, even when the
// set is empty. It is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	users map[int64]map[models.TrophyID]struct{}
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger {
	return &Ledger{users: make(map[int64]map[models.TrophyID]struct{})}
}

// Load merges a bulk snapshot into the ledger and marks every user as loaded
func (l *Ledger) Load(held map[int64][]models.TrophyID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for userID, trophies := range held {
		l.mergeLocked(userID, trophies)
	}
}

// LoadUser merges one user's trophies into the ledger and marks the user as loaded
func (l *Ledger) LoadUser(userID int64, trophies []models.TrophyID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.mergeLocked(userID, trophies)
}

func (l *Ledger) mergeLocked(userID int64, trophies []models.TrophyID) {
	set, ok := l.users[userID]
	if !ok {
		set = make(map[models.TrophyID]struct{}, len(trophies))
		l.users[userID] = set
	}
	for _, id := range trophies {
		set[id] = struct{}{}
	}
}

// Loaded reports whether the user's trophies are known to the ledger
func (l *Ledger) Loaded(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.users[userID]
	return ok
}

// Has reports whether the user holds the trophy. Unknown users hold nothing.
func (l *Ledger) Has(userID int64, trophyID models.TrophyID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.users[userID][trophyID]
	return ok
}

// Claim marks the pair as held and returns true if it was not held before.
// Exactly one caller wins the claim for a given pair.
func (l *Ledger) Claim(userID int64, trophyID models.TrophyID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.users[userID]
	if !ok {
		set = make(map[models.TrophyID]struct{})
		l.users[userID] = set
	}
	if _, held := set[trophyID]; held {
		return false
	}
	set[trophyID] = struct{}{}
	return true
}

// Trophies returns the trophies held by a user in ID order
func (l *Ledger) Trophies(userID int64) []models.TrophyID {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.users[userID]
	ids := make([]models.TrophyID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Users returns the number of users known to the ledger
func (l *Ledger) Users() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.users)
}
