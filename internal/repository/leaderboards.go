package repository

import (
	"context"
	"fmt"

	"inplayrs/backoffice/internal/models"

	"github.com/jackc/pgx/v5"
)

// LeaderboardRepository reads rank-1 users from the game, competition and pool leaderboards
type LeaderboardRepository struct {
	db *Database
}

// GlobalGameWinners returns the users ranked first on the global leaderboard of a game
func (r *LeaderboardRepository) GlobalGameWinners(ctx context.Context, gameID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM global_game_leaderboard
		WHERE game = $1 AND rank = 1
	`
	return r.userIDs(ctx, "global game winners", query, gameID)
}

// CompetitionWinners returns the users ranked first on the global leaderboard of a competition
func (r *LeaderboardRepository) CompetitionWinners(ctx context.Context, compID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM global_comp_leaderboard
		WHERE competition = $1 AND rank = 1
	`
	return r.userIDs(ctx, "competition winners", query, compID)
}

// PoolGameWinners returns the rank-1 user of every friend pool for a game with the pool size
func (r *LeaderboardRepository) PoolGameWinners(ctx context.Context, gameID int64) ([]models.PoolWinner, error) {
	query := `
		SELECT pgl.user_id, p.pool_id, COALESCE(p.num_players, 0)
		FROM pool_game_leaderboard pgl
		JOIN pool p ON pgl.pool = p.pool_id
		WHERE pgl.game = $1 AND pgl.rank = 1
	`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool game winners: %w", err)
	}
	defer rows.Close()

	var winners []models.PoolWinner
	for rows.Next() {
		var w models.PoolWinner
		if err := rows.Scan(&w.UserID, &w.PoolID, &w.NumPlayers); err != nil {
			return nil, fmt.Errorf("failed to scan pool winner: %w", err)
		}
		winners = append(winners, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pool winners: %w", err)
	}

	return winners, nil
}

func (r *LeaderboardRepository) userIDs(ctx context.Context, what, query string, args ...any) ([]int64, error) {
	return queryUserIDs(ctx, r.db, what, query, args...)
}

// queryUserIDs runs a query whose single column is a user ID
func queryUserIDs(ctx context.Context, db *Database, what, query string, args ...any) ([]int64, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", what, err)
	}

	return users, nil
}
