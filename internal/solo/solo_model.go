package solo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/bracket"
)

type Status string

const (
	// StatusWaiting means the player is in the pool awaiting matchmaking.
	StatusWaiting Status = "waiting"
)

var ErrPaidEntry = errors.New("solo registration requires payment for this tournament")

// Registration is one player's entry in a tournament's solo pool, with the
// bracket and MMR snapshot taken when they joined. Solo tournaments pool
// every entrant; team tournaments also carry a pool for players without a
// full roster, capacity-checked against their bracket.
type Registration struct {
	gorm.Model
	TournamentID uint         `gorm:"uniqueIndex:idx_solo_tournament_player;not null" json:"tournament_id"`
	PlayerID     uint         `gorm:"uniqueIndex:idx_solo_tournament_player;not null" json:"player_id"`
	Tier         bracket.Tier `gorm:"index;not null" json:"tier"`
	MMR          int          `json:"mmr"`
	RankTier     int          `json:"rank_tier"`
	Status       Status       `gorm:"not null;default:'waiting'" json:"status"`
}

func (Registration) TableName() string { return "solo_registrations" }

type RegistrationResponse struct {
	ID           uint      `json:"id"`
	TournamentID uint      `json:"tournament_id"`
	PlayerID     uint      `json:"player_id"`
	Tier         string    `json:"tier"`
	TierLabel    string    `json:"tier_label"`
	Status       Status    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

func FilterRegistrationRecord(r *Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		PlayerID:     r.PlayerID,
		Tier:         string(r.Tier),
		TierLabel:    bracket.Label(r.Tier),
		Status:       r.Status,
		RegisteredAt: r.CreatedAt,
	}
}
