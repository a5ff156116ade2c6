package repository

import (
	"context"
	"errors"
	"fmt"

	"inplayrs/backoffice/internal/models"

	"github.com/jackc/pgx/v5"
)

// GameRepository reads games and competitions
type GameRepository struct {
	db *Database
}

// GetGame retrieves a game by ID
func (r *GameRepository) GetGame(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT game_id, name, state, competition, game_type
		FROM game
		WHERE game_id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.ID, &game.Name, &game.State, &game.Competition, &game.Type,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game not found: game_id=%d: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// GetCompetition retrieves a competition by ID
func (r *GameRepository) GetCompetition(ctx context.Context, compID int64) (*models.Competition, error) {
	query := `
		SELECT comp_id, name, state
		FROM competition
		WHERE comp_id = $1
	`

	var comp models.Competition
	err := r.db.Pool.QueryRow(ctx, query, compID).Scan(&comp.ID, &comp.Name, &comp.State)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("competition not found: comp_id=%d: %w", compID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return &comp, nil
}

// GetCompetitionState returns the lifecycle state of a competition
func (r *GameRepository) GetCompetitionState(ctx context.Context, compID int64) (models.State, error) {
	comp, err := r.GetCompetition(ctx, compID)
	if err != nil {
		return 0, err
	}
	return comp.State, nil
}
