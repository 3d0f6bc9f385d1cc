package tournament

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/bracket"
)

type Kind string

const (
	KindTeam Kind = "team"
	KindSolo Kind = "solo"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
)

// Registration path, recorded on the shared registration index.
type RegKind string

const (
	RegTeam RegKind = "team"
	RegSolo RegKind = "solo"
)

// Registration failure taxonomy. All terminal for the caller.
var (
	ErrNotFound          = errors.New("tournament not found")
	ErrNotOpen           = errors.New("tournament is not open for registration")
	ErrDeadlinePassed    = errors.New("registration deadline has passed")
	ErrCapacityExceeded  = errors.New("no slots left")
	ErrAlreadyRegistered = errors.New("player already registered for this tournament")
	ErrBracketMissing    = errors.New("tournament has no such bracket")
	ErrWrongKind         = errors.New("tournament does not accept this registration type")
)

// Tournament holds the capacity counters for one event. SlotsBooked counts
// committed registrations only: full teams and solo entries, never members
// of still-forming teams.
type Tournament struct {
	gorm.Model
	Name      string `gorm:"not null" json:"name"`
	Game      string `gorm:"index;default:'dota2'" json:"game"`
	Kind      Kind   `gorm:"index;not null" json:"kind"`
	Status    Status `gorm:"index;not null;default:'upcoming'" json:"status"`
	PrizePool string `json:"prize_pool"`
	Entry     string `json:"entry"`
	EntryFee  int    `gorm:"default:0" json:"entry_fee"`
	Rules     string `gorm:"type:text" json:"rules"`

	StartAt              time.Time `gorm:"not null" json:"start_at"`
	EndAt                time.Time `gorm:"not null" json:"end_at"`
	RegistrationDeadline time.Time `gorm:"not null" json:"registration_deadline"`

	TotalSlots  int `gorm:"not null" json:"total_slots"`
	SlotsBooked int `gorm:"not null;default:0" json:"slots_booked"`

	Brackets []BracketSlots `gorm:"foreignKey:TournamentID" json:"brackets,omitempty"`
}

// BracketSlots subdivides a team tournament's capacity by skill tier.
// Booked counts individual member reservations, including members of
// forming teams.
type BracketSlots struct {
	gorm.Model
	TournamentID uint         `gorm:"uniqueIndex:idx_bracket_tournament_tier;not null" json:"tournament_id"`
	Tier         bracket.Tier `gorm:"uniqueIndex:idx_bracket_tournament_tier;not null" json:"tier"`
	SlotsTotal   int          `gorm:"not null" json:"slots_total"`
	SlotsBooked  int          `gorm:"not null;default:0" json:"slots_booked"`
}

// Registration is the shared per-player index across both registration
// paths. The unique (tournament, player) key is what makes "one
// registration per tournament" hold even under racing requests.
type Registration struct {
	gorm.Model
	TournamentID uint    `gorm:"uniqueIndex:idx_registration_tournament_player;not null" json:"tournament_id"`
	PlayerID     uint    `gorm:"uniqueIndex:idx_registration_tournament_player;not null" json:"player_id"`
	Kind         RegKind `gorm:"not null" json:"kind"`
}

// AcceptsRegistrations reports whether the tournament can take new
// registrations at the given time.
func (t *Tournament) AcceptsRegistrations(now time.Time) error {
	if t.Status != StatusActive {
		return ErrNotOpen
	}
	if now.After(t.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// --- Request/response DTOs ---

type CreateBracketRequest struct {
	Tier       string `json:"tier" binding:"required,oneof=herald_guardian crusader_archon legend_ancient divine_immortal"`
	SlotsTotal int    `json:"slots_total" binding:"required,gte=5"`
}

type CreateTournamentRequest struct {
	Name                 string                 `json:"name" binding:"required,min=3,max=120"`
	Game                 string                 `json:"game" binding:"omitempty,max=30"`
	Kind                 string                 `json:"kind" binding:"required,oneof=team solo"`
	PrizePool            string                 `json:"prize_pool"`
	Entry                string                 `json:"entry"`
	EntryFee             int                    `json:"entry_fee" binding:"gte=0"`
	Rules                string                 `json:"rules"`
	StartAt              time.Time              `json:"start_at" binding:"required"`
	EndAt                time.Time              `json:"end_at" binding:"required,gtfield=StartAt"`
	RegistrationDeadline time.Time              `json:"registration_deadline" binding:"required"`
	TotalSlots           int                    `json:"total_slots" binding:"required,gte=5"`
	Brackets             []CreateBracketRequest `json:"brackets" binding:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=upcoming active ended"`
}
