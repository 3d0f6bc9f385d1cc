package leaderboard

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/scoring"
)

// TopMatchList stores the contributing match scores as a JSONB column.
type TopMatchList []scoring.MatchScore

func (l TopMatchList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *TopMatchList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for TopMatchList", value)
	}
	return json.Unmarshal(b, l)
}

// Entry is one player's row on a solo tournament leaderboard. A zero-score
// row is created at registration time so every registrant is visible before
// their first refresh.
type Entry struct {
	gorm.Model
	TournamentID    uint         `gorm:"uniqueIndex:idx_leaderboard_tournament_player;not null" json:"tournament_id"`
	PlayerID        uint         `gorm:"uniqueIndex:idx_leaderboard_tournament_player;not null" json:"player_id"`
	PlayerName      string       `json:"player_name"`
	TotalScore      int          `gorm:"index;not null;default:0" json:"total_score"`
	MatchesPlayed   int          `gorm:"not null;default:0" json:"matches_played"`
	TopMatches      TopMatchList `gorm:"type:jsonb;default:'[]'" json:"top_matches"`
	RiskScore       int          `gorm:"not null;default:0" json:"risk_score"`
	LastRefreshedAt *time.Time   `json:"last_refreshed_at,omitempty"`

	// Set by operators only. A score refresh never touches these; a high
	// risk score does not flip them automatically.
	Disqualified     bool   `gorm:"not null;default:false" json:"disqualified"`
	DisqualifyReason string `json:"disqualify_reason,omitempty"`
}

func (Entry) TableName() string { return "leaderboard_entries" }

var ErrNeverRefreshed = errors.New("no cached scores and the match provider is unavailable")

type DisqualifyRequest struct {
	Disqualified bool   `json:"disqualified"`
	Reason       string `json:"reason" binding:"max=255"`
}
