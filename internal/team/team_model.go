package team

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/bracket"
)

// TeamSize is the fixed roster size. A team is full exactly when it has
// this many members.
const TeamSize = 5

// JoinCodeLength is the length of the human-shareable join code.
const JoinCodeLength = 6

type Status string

const (
	StatusForming Status = "forming"
	StatusFull    Status = "full"
)

var (
	ErrInvalidCode   = errors.New("invalid team code")
	ErrTeamFull      = errors.New("team is already full")
	ErrAlreadyMember = errors.New("player is already in this team")
	ErrTeamLocked    = errors.New("team is full and closed for changes")
)

// Team is the captain-created roster for one team tournament. AverageMMR
// and Tier are settled once on the fifth join and never change after; the
// effective tier is always the captain's bracket.
type Team struct {
	gorm.Model
	TournamentID uint         `gorm:"index;not null" json:"tournament_id"`
	CaptainID    uint         `gorm:"index;not null" json:"captain_id"`
	TeamCode     string       `gorm:"uniqueIndex;not null" json:"team_code"`
	Status       Status       `gorm:"index;not null;default:'forming'" json:"status"`
	AverageMMR   float64      `json:"average_mmr,omitempty"`
	Tier         bracket.Tier `json:"tier,omitempty"`
}

// Member is one seat on a team, with the bracket and MMR snapshot taken at
// join time.
type Member struct {
	gorm.Model
	TeamID    uint         `gorm:"uniqueIndex:idx_team_member;not null" json:"team_id"`
	PlayerID  uint         `gorm:"uniqueIndex:idx_team_member;not null" json:"player_id"`
	Tier      bracket.Tier `gorm:"not null" json:"tier"`
	MMR       int          `json:"mmr"`
	RankTier  int          `json:"rank_tier"`
	IsCaptain bool         `gorm:"default:false" json:"is_captain"`
}

func (Member) TableName() string { return "team_members" }

// --- Request/response DTOs ---

type CreateTeamRequest struct {
	TournamentID uint `json:"tournament_id" binding:"required"`
}

type JoinTeamRequest struct {
	Code string `json:"code" binding:"required,len=6,alphanum"`
}

type MemberResponse struct {
	PlayerID  uint      `json:"player_id"`
	Tier      string    `json:"tier"`
	TierLabel string    `json:"tier_label"`
	IsCaptain bool      `json:"is_captain"`
	JoinedAt  time.Time `json:"joined_at"`
}

type TeamResponse struct {
	ID           uint             `json:"id"`
	TournamentID uint             `json:"tournament_id"`
	CaptainID    uint             `json:"captain_id"`
	TeamCode     string           `json:"team_code"`
	Status       Status           `json:"status"`
	AverageMMR   float64          `json:"average_mmr,omitempty"`
	Tier         string           `json:"tier,omitempty"`
	Members      []MemberResponse `json:"members"`
	CreatedAt    time.Time        `json:"created_at"`
}

// FilterTeamRecord shapes a team and its roster for API responses. The
// join code is only included for members, which callers control via
// includeCode.
func FilterTeamRecord(t *Team, members []Member, includeCode bool) TeamResponse {
	resp := TeamResponse{
		ID:           t.ID,
		TournamentID: t.TournamentID,
		CaptainID:    t.CaptainID,
		Status:       t.Status,
		AverageMMR:   t.AverageMMR,
		Tier:         string(t.Tier),
		CreatedAt:    t.CreatedAt,
	}
	if includeCode {
		resp.TeamCode = t.TeamCode
	}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			PlayerID:  m.PlayerID,
			Tier:      string(m.Tier),
			TierLabel: bracket.Label(m.Tier),
			IsCaptain: m.IsCaptain,
			JoinedAt:  m.CreatedAt,
		})
	}
	return resp
}
