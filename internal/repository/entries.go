package repository

import (
	"context"
)

// EntryRepository answers questions about the users who entered a game
type EntryRepository struct {
	db *Database
}

// HeadToHeadWinners returns entrants with positive head-to-head winnings in the game
func (r *EntryRepository) HeadToHeadWinners(ctx context.Context, gameID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM game_entry
		WHERE game = $1 AND h2h_winnings > 0
	`
	return queryUserIDs(ctx, r.db, "head to head winners", query, gameID)
}

// EntrantsBankedMoreThan returns entrants of the game who have cashed out more
// than times selections across all of their game entries
func (r *EntryRepository) EntrantsBankedMoreThan(ctx context.Context, gameID int64, times int) ([]int64, error) {
	query := `
		SELECT ge.user_id
		FROM game_entry ge
		LEFT JOIN period_selection ps ON ge.game_entry_id = ps.game_entry
		WHERE ge.user_id IN (SELECT user_id FROM game_entry WHERE game = $1)
		GROUP BY ge.user_id
		HAVING COALESCE(SUM(ps.cashed_out), 0) > $2
	`
	return queryUserIDs(ctx, r.db, "banked entrants", query, gameID, times)
}

// EntrantsPlayedMoreThan returns entrants whose lifetime games played exceeds games
func (r *EntryRepository) EntrantsPlayedMoreThan(ctx context.Context, gameID int64, games int) ([]int64, error) {
	query := `
		SELECT ge.user_id
		FROM game_entry ge
		JOIN user_stats us ON ge.user_id = us.user_id
		WHERE ge.game = $1 AND us.total_games_played > $2
	`
	return queryUserIDs(ctx, r.db, "entrants by games played", query, gameID, games)
}

// PerfectGameEntrants returns entrants whose correct selections equal the
// number of periods in the game. A game with no periods has no perfect entrants.
func (r *EntryRepository) PerfectGameEntrants(ctx context.Context, gameID int64) ([]int64, error) {
	query := `
		SELECT correct.user_id
		FROM (
			SELECT ge.user_id,
			       SUM(CASE WHEN ps.selection = p.result THEN 1 ELSE 0 END) AS correct_answers
			FROM game_entry ge
			LEFT JOIN period_selection ps ON ge.game_entry_id = ps.game_entry
			LEFT JOIN period p ON ps.period = p.period_id
			WHERE ge.game = $1
			GROUP BY ge.user_id
		) AS correct
		CROSS JOIN (
			SELECT COUNT(1) AS num_periods FROM period WHERE game = $1
		) AS periods
		WHERE periods.num_periods > 0
		  AND correct.correct_answers = periods.num_periods
	`
	return queryUserIDs(ctx, r.db, "perfect game entrants", query, gameID)
}

// EntrantsInvitedMoreThan returns entrants who have sent more than invites invitations
func (r *EntryRepository) EntrantsInvitedMoreThan(ctx context.Context, gameID int64, invites int) ([]int64, error) {
	query := `
		SELECT ge.user_id
		FROM game_entry ge
		LEFT JOIN user_invite ui ON ge.user_id = ui.source_user
		WHERE ge.game = $1
		GROUP BY ge.user_id
		HAVING COUNT(ui.user_invite_id) > $2
	`
	return queryUserIDs(ctx, r.db, "entrants by invitations", query, gameID, invites)
}
