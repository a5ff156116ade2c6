package repository

import (
	"context"
	"fmt"
	"slices"

	"inplayrs/backoffice/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TrophyRepository handles user_trophy rows
type TrophyRepository struct {
	db *Database
}

// LoadTrophiesForGameEntrants returns every entrant of the game with the trophies they hold.
// Entrants without trophies are present with an empty slice.
func (r *TrophyRepository) LoadTrophiesForGameEntrants(ctx context.Context, gameID int64) (map[int64][]models.TrophyID, error) {
	query := `
		SELECT ge.user_id, ut.trophy
		FROM game_entry ge
		LEFT JOIN user_trophy ut ON ge.user_id = ut.user_id
		WHERE ge.game = $1
	`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trophies for game entrants: %w", err)
	}
	defer rows.Close()

	held := make(map[int64][]models.TrophyID)
	for rows.Next() {
		var userID int64
		var trophyID *int
		if err := rows.Scan(&userID, &trophyID); err != nil {
			return nil, fmt.Errorf("failed to scan user trophy: %w", err)
		}
		if _, ok := held[userID]; !ok {
			held[userID] = []models.TrophyID{}
		}
		if trophyID != nil && !slices.Contains(held[userID], models.TrophyID(*trophyID)) {
			held[userID] = append(held[userID], models.TrophyID(*trophyID))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user trophies: %w", err)
	}

	return held, nil
}

// LoadTrophiesForUser returns the trophies held by one user
func (r *TrophyRepository) LoadTrophiesForUser(ctx context.Context, userID int64) ([]models.TrophyID, error) {
	query := `
		SELECT trophy
		FROM user_trophy
		WHERE user_id = $1
		ORDER BY trophy
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trophies for user: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[models.TrophyID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan user trophies: %w", err)
	}

	return ids, nil
}

// InsertUserTrophy records an award. An existing (user, trophy) row yields ErrDuplicate.
func (r *TrophyRepository) InsertUserTrophy(ctx context.Context, userID int64, trophyID models.TrophyID) error {
	query := `INSERT INTO user_trophy (user_id, trophy) VALUES ($1, $2)`

	if _, err := r.db.Pool.Exec(ctx, query, userID, int(trophyID)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user_trophy user_id=%d trophy=%d: %w", userID, trophyID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user trophy: %w", err)
	}

	log.Debug().
		Int64("user_id", userID).
		Int("trophy_id", int(trophyID)).
		Msg("User trophy inserted")

	return nil
}
