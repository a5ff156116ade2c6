package repository

import "inplayrs/backoffice/internal/trophy"

// TrophyStore is the PostgreSQL trophy.Store
type TrophyStore struct {
	*GameRepository
	*TrophyRepository
	*LeaderboardRepository
	*EntryRepository
}

var (
	_ trophy.Store    = (*TrophyStore)(nil)
	_ trophy.Notifier = (*MotdRepository)(nil)
)
