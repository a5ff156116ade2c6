package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// MotdRepository writes messages of the day shown to users on their next login
type MotdRepository struct {
	db *Database
}

// CreateMOTD adds a message for a user. A repeated (user, message) pair yields ErrDuplicate.
func (r *MotdRepository) CreateMOTD(ctx context.Context, userID int64, message string) error {
	query := `INSERT INTO motd (user_id, message) VALUES ($1, $2)`

	if _, err := r.db.Pool.Exec(ctx, query, userID, message); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("motd user_id=%d: %w", userID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert motd: %w", err)
	}

	log.Debug().Int64("user_id", userID).Msg("Motd created")
	return nil
}
