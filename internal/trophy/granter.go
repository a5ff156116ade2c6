package trophy

import (
	"context"
	"errors"

	"inplayrs/backoffice/internal/metrics"
	"inplayrs/backoffice/internal/models"

	"github.com/rs/zerolog/log"
)

// GrantStatus is the outcome of persisting an award
type GrantStatus int

const (
	// StatusGranted means a new user_trophy row was written
	StatusGranted GrantStatus = iota
	// StatusAlreadyHeld means the ledger already had the pair; nothing was written
	StatusAlreadyHeld
	// StatusDuplicate means the store already had the row (another process won the race)
	StatusDuplicate
	// StatusPersistFailed means the insert failed for any other reason
	StatusPersistFailed
)

func (s GrantStatus) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusAlreadyHeld:
		return "already_held"
	case StatusDuplicate:
		return "duplicate"
	case StatusPersistFailed:
		return "persist_failed"
	}
	return "unknown"
}

// NoticeStatus is the outcome of the best-effort award notification
type NoticeStatus int

const (
	// NoticeNone means no notification was attempted
	NoticeNone NoticeStatus = iota
	NoticeSent
	NoticeDuplicate
	NoticeFailed
)

func (s NoticeStatus) String() string {
	switch s {
	case NoticeNone:
		return "none"
	case NoticeSent:
		return "sent"
	case NoticeDuplicate:
		return "duplicate"
	case NoticeFailed:
		return "failed"
	}
	return "unknown"
}

// GrantResult describes what happened to one (user, trophy) candidate.
// Err carries the persistence or notification error for logging only.
type GrantResult struct {
	UserID int64
	Trophy models.TrophyID
	Status GrantStatus
	Notice NoticeStatus
	Err    error
}

// Awarded reports whether this call created the award
func (r GrantResult) Awarded() bool {
	return r.Status == StatusGranted
}

// Granter is the single path that creates user trophies
type Granter struct {
	store    Store
	notifier Notifier
	ledger   *Ledger
}

// NewGranter creates a granter backed by a run's ledger
func NewGranter(store Store, notifier Notifier, ledger *Ledger) *Granter {
	return &Granter{
		store:    store,
		notifier: notifier,
		ledger:   ledger,
	}
}

// Grant awards the trophy to the user unless the ledger says they already hold it.
// The ledger entry is claimed before the insert and is kept even if the insert
// fails, so a failing user never blocks the rest of the run. Notification
// failures never undo the award.
func (g *Granter) Grant(ctx context.Context, userID int64, trophyID models.TrophyID) GrantResult {
	result := GrantResult{UserID: userID, Trophy: trophyID}
	logger := log.With().Int64("user_id", userID).Int("trophy_id", int(trophyID)).Str("trophy", trophyID.Name()).Logger()

	if !g.ledger.Claim(userID, trophyID) {
		logger.Info().Msg("User already has trophy")
		result.Status = StatusAlreadyHeld
		metrics.RecordGrant(trophyID.Name(), result.Status.String())
		return result
	}

	logger.Info().Msg("User has won a new trophy, inserting into DB")
	if err := g.store.InsertUserTrophy(ctx, userID, trophyID); err != nil {
		result.Err = err
		if errors.Is(err, models.ErrDuplicate) {
			result.Status = StatusDuplicate
			logger.Warn().Err(err).Msg("Trophy already recorded in DB, skipping")
		} else {
			result.Status = StatusPersistFailed
			logger.Error().Err(err).Msg("Failed to insert user trophy")
			metrics.RecordError("granter", "insert_user_trophy")
		}
		metrics.RecordGrant(trophyID.Name(), result.Status.String())
		return result
	}

	result.Status = StatusGranted
	metrics.RecordGrant(trophyID.Name(), result.Status.String())

	result.Notice, result.Err = g.notify(ctx, userID, trophyID)
	metrics.RecordNotification(result.Notice.String())
	return result
}

func (g *Granter) notify(ctx context.Context, userID int64, trophyID models.TrophyID) (NoticeStatus, error) {
	if g.notifier == nil {
		return NoticeNone, nil
	}

	message := trophyID.AwardMessage()
	log.Info().Int64("user_id", userID).Str("message", message).Msg("Adding motd")

	err := g.notifier.CreateMOTD(ctx, userID, message)
	switch {
	case err == nil:
		return NoticeSent, nil
	case errors.Is(err, models.ErrDuplicate):
		log.Error().Err(err).Int64("user_id", userID).Msg("Duplicate motd present, cannot insert")
		return NoticeDuplicate, err
	default:
		log.Error().Err(err).Int64("user_id", userID).Msg("Error when inserting motd")
		metrics.RecordError("granter", "insert_motd")
		return NoticeFailed, err
	}
}
