package models

import "fmt"

// State is the lifecycle state shared by games and competitions
type State int

const (
	StateInactive State = -2
	StatePreplay  State = -1
	StateInplay   State = 0
	StateComplete State = 1
)

// String returns the state name used in logs
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StatePreplay:
		return "preplay"
	case StateInplay:
		return "inplay"
	case StateComplete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// GameType is the play mode of a game
type GameType int

const (
	GameTypeClassic GameType = 1
	GameTypeFantasy GameType = 2
	GameTypeQuiz    GameType = 3
	GameTypeH2H     GameType = 4
)

// String returns the game type name used in logs
func (t GameType) String() string {
	switch t {
	case GameTypeClassic:
		return "classic"
	case GameTypeFantasy:
		return "fantasy"
	case GameTypeQuiz:
		return "quiz"
	case GameTypeH2H:
		return "h2h"
	}
	return fmt.Sprintf("other(%d)", int(t))
}

// Game is a played contest as stored in the game table
type Game struct {
	ID          int64    `db:"game_id"`
	Name        string   `db:"name"`
	State       State    `db:"state"`
	Competition int64    `db:"competition"`
	Type        GameType `db:"game_type"`
}

// IsComplete returns true once the game has finished and results are final
func (g *Game) IsComplete() bool {
	return g.State == StateComplete
}

// HasSelectionsToScore returns false for game types where a "perfect game"
// has no meaning (fantasy line-ups and quizzes)
func (g *Game) HasSelectionsToScore() bool {
	return g.Type != GameTypeFantasy && g.Type != GameTypeQuiz
}

// Competition groups games and has its own lifecycle
type Competition struct {
	ID    int64  `db:"comp_id"`
	Name  string `db:"name"`
	State State  `db:"state"`
}

// PoolWinner is a rank-1 user on a pool leaderboard for a game
type PoolWinner struct {
	UserID     int64 `db:"user_id"`
	PoolID     int64 `db:"pool_id"`
	NumPlayers int   `db:"num_players"`
}

// UserTrophy is a granted award
type UserTrophy struct {
	UserID   int64    `db:"user_id"`
	TrophyID TrophyID `db:"trophy"`
}
