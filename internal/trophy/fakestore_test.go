package trophy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inplayrs/backoffice/internal/models"
)

// entry is one game_entry row with the aggregates the rules look at
type entry struct {
	user        int64
	game        int64
	h2hWinnings float64
	banks       int
	correct     int
}

// fakeStore is an in-memory Store over a handful of tables. The user_trophy
// set enforces the same (user, trophy) uniqueness as the real schema.
type fakeStore struct {
	mu sync.Mutex

	games        map[int64]*models.Game
	competitions map[int64]models.State
	entries      []entry
	periods      map[int64]int
	gamesPlayed  map[int64]int
	invites      map[int64]int
	globalRank1  map[int64][]int64
	compRank1    map[int64][]int64
	poolWinners  map[int64][]models.PoolWinner

	userTrophies map[int64]map[models.TrophyID]bool

	inserts      int
	userLoads    []int64
	bulkLoads    int
	failQueries  map[string]error
	insertFailer func(userID int64, trophyID models.TrophyID) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		games:        make(map[int64]*models.Game),
		competitions: make(map[int64]models.State),
		periods:      make(map[int64]int),
		gamesPlayed:  make(map[int64]int),
		invites:      make(map[int64]int),
		globalRank1:  make(map[int64][]int64),
		compRank1:    make(map[int64][]int64),
		poolWinners:  make(map[int64][]models.PoolWinner),
		userTrophies: make(map[int64]map[models.TrophyID]bool),
		failQueries:  make(map[string]error),
	}
}

func (s *fakeStore) addGame(g models.Game, periods int) {
	s.games[g.ID] = &g
	s.periods[g.ID] = periods
}

func (s *fakeStore) addEntry(e entry) {
	s.entries = append(s.entries, e)
}

func (s *fakeStore) grantExisting(userID int64, trophyID models.TrophyID) {
	if s.userTrophies[userID] == nil {
		s.userTrophies[userID] = make(map[models.TrophyID]bool)
	}
	s.userTrophies[userID][trophyID] = true
}

func (s *fakeStore) failOn(query string, err error) {
	s.failQueries[query] = err
}

func (s *fakeStore) fail(query string) error {
	return s.failQueries[query]
}

// held returns the persisted trophies of a user in ID order
func (s *fakeStore) held(userID int64) []models.TrophyID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []models.TrophyID
	for id := range s.userTrophies[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *fakeStore) totalRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, set := range s.userTrophies {
		n += len(set)
	}
	return n
}

func (s *fakeStore) entrants(gameID int64) []int64 {
	var users []int64
	seen := make(map[int64]bool)
	for _, e := range s.entries {
		if e.game == gameID && !seen[e.user] {
			seen[e.user] = true
			users = append(users, e.user)
		}
	}
	return users
}

func (s *fakeStore) GetGame(ctx context.Context, gameID int64) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("GetGame"); err != nil {
		return nil, err
	}
	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", gameID, models.ErrNotFound)
	}
	copied := *g
	return &copied, nil
}

func (s *fakeStore) GetCompetitionState(ctx context.Context, compID int64) (models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("GetCompetitionState"); err != nil {
		return 0, err
	}
	state, ok := s.competitions[compID]
	if !ok {
		return 0, fmt.Errorf("competition %d: %w", compID, models.ErrNotFound)
	}
	return state, nil
}

func (s *fakeStore) LoadTrophiesForGameEntrants(ctx context.Context, gameID int64) (map[int64][]models.TrophyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkLoads++
	if err := s.fail("LoadTrophiesForGameEntrants"); err != nil {
		return nil, err
	}
	held := make(map[int64][]models.TrophyID)
	for _, u := range s.entrants(gameID) {
		held[u] = []models.TrophyID{}
		for id := range s.userTrophies[u] {
			held[u] = append(held[u], id)
		}
	}
	return held, nil
}

func (s *fakeStore) LoadTrophiesForUser(ctx context.Context, userID int64) ([]models.TrophyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userLoads = append(s.userLoads, userID)
	if err := s.fail("LoadTrophiesForUser"); err != nil {
		return nil, err
	}
	var ids []models.TrophyID
	for id := range s.userTrophies[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeStore) InsertUserTrophy(ctx context.Context, userID int64, trophyID models.TrophyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertFailer != nil {
		if err := s.insertFailer(userID, trophyID); err != nil {
			return err
		}
	}
	if s.userTrophies[userID][trophyID] {
		return fmt.Errorf("user_trophy (%d, %d): %w", userID, trophyID, models.ErrDuplicate)
	}
	if s.userTrophies[userID] == nil {
		s.userTrophies[userID] = make(map[models.TrophyID]bool)
	}
	s.userTrophies[userID][trophyID] = true
	s.inserts++
	return nil
}

func (s *fakeStore) GlobalGameWinners(ctx context.Context, gameID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("GlobalGameWinners"); err != nil {
		return nil, err
	}
	return s.globalRank1[gameID], nil
}

func (s *fakeStore) CompetitionWinners(ctx context.Context, compID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("CompetitionWinners"); err != nil {
		return nil, err
	}
	return s.compRank1[compID], nil
}

func (s *fakeStore) PoolGameWinners(ctx context.Context, gameID int64) ([]models.PoolWinner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("PoolGameWinners"); err != nil {
		return nil, err
	}
	return s.poolWinners[gameID], nil
}

func (s *fakeStore) HeadToHeadWinners(ctx context.Context, gameID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("HeadToHeadWinners"); err != nil {
		return nil, err
	}
	var users []int64
	for _, e := range s.entries {
		if e.game == gameID && e.h2hWinnings > 0 {
			users = append(users, e.user)
		}
	}
	return users, nil
}

func (s *fakeStore) EntrantsBankedMoreThan(ctx context.Context, gameID int64, times int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("EntrantsBankedMoreThan"); err != nil {
		return nil, err
	}
	var users []int64
	for _, u := range s.entrants(gameID) {
		total := 0
		for _, e := range s.entries {
			if e.user == u {
				total += e.banks
			}
		}
		if total > times {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeStore) EntrantsPlayedMoreThan(ctx context.Context, gameID int64, games int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("EntrantsPlayedMoreThan"); err != nil {
		return nil, err
	}
	var users []int64
	for _, u := range s.entrants(gameID) {
		if s.gamesPlayed[u] > games {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeStore) PerfectGameEntrants(ctx context.Context, gameID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("PerfectGameEntrants"); err != nil {
		return nil, err
	}
	periods := s.periods[gameID]
	if periods == 0 {
		return nil, nil
	}
	var users []int64
	for _, e := range s.entries {
		if e.game == gameID && e.correct == periods {
			users = append(users, e.user)
		}
	}
	return users, nil
}

func (s *fakeStore) EntrantsInvitedMoreThan(ctx context.Context, gameID int64, invites int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("EntrantsInvitedMoreThan"); err != nil {
		return nil, err
	}
	var users []int64
	for _, u := range s.entrants(gameID) {
		if s.invites[u] > invites {
			users = append(users, u)
		}
	}
	return users, nil
}

// fakeNotifier records messages of the day and rejects repeats like the motd table
type fakeNotifier struct {
	mu       sync.Mutex
	messages map[int64][]string
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[int64][]string)}
}

func (n *fakeNotifier) CreateMOTD(ctx context.Context, userID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	for _, m := range n.messages[userID] {
		if m == message {
			return fmt.Errorf("motd for user %d: %w", userID, models.ErrDuplicate)
		}
	}
	n.messages[userID] = append(n.messages[userID], message)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0
	for _, msgs := range n.messages {
		total += len(msgs)
	}
	return total
}
