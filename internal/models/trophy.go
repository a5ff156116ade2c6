package models

import "fmt"

// TrophyID identifies an achievement in the static trophy catalog.
// The numeric values are stored in user_trophy.trophy and must not change.
type TrophyID int

const (
	TrophyGlobalWin      TrophyID = 1
	TrophyFriendWin      TrophyID = 2
	TrophyHeadToHeadWin  TrophyID = 3
	TrophyBanked3Times   TrophyID = 4
	TrophyCompetitionWin TrophyID = 5
	TrophyPlayed10Games  TrophyID = 6
	TrophyPerfectGame    TrophyID = 7
	TrophyPlayed50Games  TrophyID = 8
	TrophyInvited5People TrophyID = 9
)

var trophyNames = [...]string{
	TrophyGlobalWin:      "Global Win",
	TrophyFriendWin:      "Friend Win",
	TrophyHeadToHeadWin:  "Head 2 Head Win",
	TrophyBanked3Times:   "Banked 3 Times",
	TrophyCompetitionWin: "Competition Win",
	TrophyPlayed10Games:  "Played 10 Games",
	TrophyPerfectGame:    "Perfect Game",
	TrophyPlayed50Games:  "Played 50 Games",
	TrophyInvited5People: "Invited 5 People",
}

// AllTrophies returns every trophy in the catalog in ID order
func AllTrophies() []TrophyID {
	ids := make([]TrophyID, 0, len(trophyNames)-1)
	for id := TrophyGlobalWin; int(id) < len(trophyNames); id++ {
		ids = append(ids, id)
	}
	return ids
}

// Valid reports whether id is part of the catalog
func (id TrophyID) Valid() bool {
	return id >= TrophyGlobalWin && int(id) < len(trophyNames)
}

// Name returns the display name shown to users
func (id TrophyID) Name() string {
	if !id.Valid() {
		return ""
	}
	return trophyNames[id]
}

// String implements fmt.Stringer
func (id TrophyID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("trophy(%d)", int(id))
	}
	return trophyNames[id]
}

// AwardMessage returns the message-of-the-day text sent on first award
func (id TrophyID) AwardMessage() string {
	return fmt.Sprintf("Congratulations, you have achieved the %s Trophy!", id.Name())
}
