// Package trophy awards achievement trophies to users once a game is complete.
//
// An Engine run loads the trophies already held by every entrant of the game
// into a Ledger, evaluates each Rule against the Store and passes every
// qualifying user through the Granter. The Granter is the only code path that
// creates user_trophy rows and it never grants a (user, trophy) pair twice.
package trophy

import (
	"context"

	"inplayrs/backoffice/internal/models"
)

// Store is the relational data the engine reads and the single write it makes.
// Each rule query returns the users that satisfy the rule for a game.
type Store interface {
	GetGame(ctx context.Context, gameID int64) (*models.Game, error)
	GetCompetitionState(ctx context.Context, compID int64) (models.State, error)

	// LoadTrophiesForGameEntrants returns every user with an entry in the game,
	// mapped to the trophies they hold. Users without trophies map to an empty slice.
	LoadTrophiesForGameEntrants(ctx context.Context, gameID int64) (map[int64][]models.TrophyID, error)
	LoadTrophiesForUser(ctx context.Context, userID int64) ([]models.TrophyID, error)

	// InsertUserTrophy returns an error wrapping models.ErrDuplicate when the
	// pair already exists.
	InsertUserTrophy(ctx context.Context, userID int64, trophyID models.TrophyID) error

	GlobalGameWinners(ctx context.Context, gameID int64) ([]int64, error)
	CompetitionWinners(ctx context.Context, compID int64) ([]int64, error)
	PoolGameWinners(ctx context.Context, gameID int64) ([]models.PoolWinner, error)
	HeadToHeadWinners(ctx context.Context, gameID int64) ([]int64, error)
	EntrantsBankedMoreThan(ctx context.Context, gameID int64, times int) ([]int64, error)
	EntrantsPlayedMoreThan(ctx context.Context, gameID int64, games int) ([]int64, error)
	PerfectGameEntrants(ctx context.Context, gameID int64) ([]int64, error)
	EntrantsInvitedMoreThan(ctx context.Context, gameID int64, invites int) ([]int64, error)
}

// Notifier creates the user-facing message of the day for a new award.
// Duplicate messages surface as an error wrapping models.ErrDuplicate.
type Notifier interface {
	CreateMOTD(ctx context.Context, userID int64, message string) error
}
