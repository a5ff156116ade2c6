package trophy

import (
	"context"
	"errors"
	"fmt"

	"inplayrs/backoffice/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrRuleSkipped is returned by a rule whose precondition does not hold for
// the game. It is a normal outcome, not a failure.
var ErrRuleSkipped = errors.New("rule not applicable")

// Thresholds for the count-based trophies. A user qualifies when their count
// is strictly greater than the threshold.
const (
	bankedThreshold     = 2
	played10Threshold   = 9
	played50Threshold   = 49
	invitationThreshold = 4
)

// EvaluateFunc returns the users that satisfy a rule for a completed game
type EvaluateFunc func(ctx context.Context, store Store, game *models.Game) ([]int64, error)

// Rule binds a trophy to the query that decides who earns it
type Rule struct {
	Trophy   models.TrophyID
	Evaluate EvaluateFunc
}

// RuleOptions tunes the rules that take settings
type RuleOptions struct {
	// MinPoolMembers is the pool size a friend pool must exceed for its winner
	// to earn the Friend Win trophy.
	MinPoolMembers int
}

// DefaultRules returns the full rule set in evaluation order
func DefaultRules(opts RuleOptions) []Rule {
	return []Rule{
		{Trophy: models.TrophyGlobalWin, Evaluate: globalWin},
		{Trophy: models.TrophyCompetitionWin, Evaluate: competitionWin},
		{Trophy: models.TrophyFriendWin, Evaluate: friendWin(opts.MinPoolMembers)},
		{Trophy: models.TrophyHeadToHeadWin, Evaluate: headToHeadWin},
		{Trophy: models.TrophyBanked3Times, Evaluate: bankedMoreThan(bankedThreshold)},
		{Trophy: models.TrophyPlayed10Games, Evaluate: playedMoreThan(played10Threshold)},
		{Trophy: models.TrophyPlayed50Games, Evaluate: playedMoreThan(played50Threshold)},
		{Trophy: models.TrophyPerfectGame, Evaluate: perfectGame},
		{Trophy: models.TrophyInvited5People, Evaluate: invitedMoreThan(invitationThreshold)},
	}
}

func globalWin(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
	return store.GlobalGameWinners(ctx, game.ID)
}

// competitionWin only applies once the whole competition is complete.
// Winners may never have entered this game; the engine loads their ledger entry.
func competitionWin(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
	state, err := store.GetCompetitionState(ctx, game.Competition)
	if err != nil {
		return nil, fmt.Errorf("failed to get competition state: %w", err)
	}
	if state != models.StateComplete {
		return nil, fmt.Errorf("%w: competition %d is not complete, state=%s", ErrRuleSkipped, game.Competition, state)
	}
	return store.CompetitionWinners(ctx, game.Competition)
}

func friendWin(minPoolMembers int) EvaluateFunc {
	return func(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
		winners, err := store.PoolGameWinners(ctx, game.ID)
		if err != nil {
			return nil, err
		}

		users := make([]int64, 0, len(winners))
		for _, w := range winners {
			if w.NumPlayers <= minPoolMembers {
				log.Info().
					Int64("user_id", w.UserID).
					Int64("pool_id", w.PoolID).
					Int("members", w.NumPlayers).
					Int("minimum", minPoolMembers).
					Msg("Not processing Friend Win trophy, pool does not have more members than the minimum")
				continue
			}
			log.Debug().
				Int64("user_id", w.UserID).
				Int64("pool_id", w.PoolID).
				Int("members", w.NumPlayers).
				Msg("User is rank 1 in pool")
			users = append(users, w.UserID)
		}
		return users, nil
	}
}

func headToHeadWin(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
	return store.HeadToHeadWinners(ctx, game.ID)
}

// bankedMoreThan counts cash-outs across every game the entrant has played,
// not just this one.
func bankedMoreThan(times int) EvaluateFunc {
	return func(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
		return store.EntrantsBankedMoreThan(ctx, game.ID, times)
	}
}

func playedMoreThan(games int) EvaluateFunc {
	return func(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
		return store.EntrantsPlayedMoreThan(ctx, game.ID, games)
	}
}

func perfectGame(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
	if !game.HasSelectionsToScore() {
		return nil, fmt.Errorf("%w: game type is %s", ErrRuleSkipped, game.Type)
	}
	return store.PerfectGameEntrants(ctx, game.ID)
}

func invitedMoreThan(invites int) EvaluateFunc {
	return func(ctx context.Context, store Store, game *models.Game) ([]int64, error) {
		return store.EntrantsInvitedMoreThan(ctx, game.ID, invites)
	}
}

// uniqueUsers drops repeated user IDs, keeping first-seen order
func uniqueUsers(users []int64) []int64 {
	seen := make(map[int64]struct{}, len(users))
	out := make([]int64, 0, len(users))
	for _, u := range users {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
