package identity

import (
	"time"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/bracket"
)

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Player is a phone-verified account, optionally linked to a Steam
// identity. Rank fields are snapshots from the last provider fetch; the
// registration core only reads them through VerifiedRating.
type Player struct {
	gorm.Model
	Phone         string `gorm:"uniqueIndex;not null" json:"phone"`
	Name          string `json:"name"`
	Role          string `gorm:"default:'player'" json:"role"`
	PhoneVerified bool   `gorm:"default:false" json:"phone_verified"`

	SteamID     string `gorm:"index" json:"steam_id,omitempty"`
	SteamName   string `json:"steam_name,omitempty"`
	SteamAvatar string `json:"steam_avatar,omitempty"`

	RankTier       int          `json:"rank_tier"`
	MMR            int          `json:"mmr"`
	Tier           bracket.Tier `gorm:"index" json:"tier,omitempty"`
	SmurfRiskScore int          `json:"smurf_risk_score"`
	RankFetchedAt  *time.Time   `json:"rank_fetched_at,omitempty"`
}

// OTP is a short-lived phone sign-in code. Only the bcrypt hash is stored.
type OTP struct {
	gorm.Model
	Phone     string    `gorm:"not null;index"`
	CodeHash  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Verified  bool      `gorm:"default:false"`
	Attempt   int       `gorm:"default:0"`
}

// RefreshToken tracks issued refresh tokens by their JWT id so individual
// sessions can be revoked.
type RefreshToken struct {
	gorm.Model
	PlayerID  uint   `gorm:"index;not null"`
	TokenID   string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
	Revoked   bool `gorm:"default:false"`
}

// Rating is a verified skill snapshot returned by VerifiedRating.
type Rating struct {
	RankTier int
	MMR      int
	Tier     bracket.Tier
}

// --- Request/response DTOs ---

type OTPRequest struct {
	Phone string `json:"phone" binding:"required,e164" example:"+919876543210"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,e164" example:"+919876543210"`
	Code  string `json:"code" binding:"required,len=6" example:"123456"`
	Name  string `json:"name" binding:"omitempty,max=100" example:"Arjun"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LinkSteamRequest struct {
	SteamID string `json:"steam_id" binding:"required,numeric" example:"76561198012345678"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Player       PlayerResponse `json:"player"`
}

type PlayerResponse struct {
	ID             uint       `json:"id"`
	Phone          string     `json:"phone"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	SteamID        string     `json:"steam_id,omitempty"`
	SteamName      string     `json:"steam_name,omitempty"`
	SteamAvatar    string     `json:"steam_avatar,omitempty"`
	RankTier       int        `json:"rank_tier"`
	MMR            int        `json:"mmr"`
	Tier           string     `json:"tier,omitempty"`
	TierLabel      string     `json:"tier_label,omitempty"`
	SmurfRiskScore int        `json:"smurf_risk_score"`
	RankFetchedAt  *time.Time `json:"rank_fetched_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FilterPlayerRecord shapes a Player for API responses.
func FilterPlayerRecord(p *Player) PlayerResponse {
	var tierLabel string
	if p.Tier != "" {
		tierLabel = bracket.Label(p.Tier)
	}
	return PlayerResponse{
		ID:             p.ID,
		Phone:          p.Phone,
		Name:           p.Name,
		Role:           p.Role,
		SteamID:        p.SteamID,
		SteamName:      p.SteamName,
		SteamAvatar:    p.SteamAvatar,
		RankTier:       p.RankTier,
		MMR:            p.MMR,
		Tier:           string(p.Tier),
		TierLabel:      tierLabel,
		SmurfRiskScore: p.SmurfRiskScore,
		RankFetchedAt:  p.RankFetchedAt,
		CreatedAt:      p.CreatedAt,
	}
}
