package identity

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository defines the interface for player/auth data operations.
type Repository interface {
	CreatePlayer(p *Player) error
	GetPlayerByID(id uint) (*Player, error)
	GetPlayerByPhone(phone string) (*Player, error)
	GetPlayerBySteamID(steamID string) (*Player, error)
	UpdatePlayer(p *Player) error

	SaveOTP(otp *OTP) error
	GetLatestOTP(phone string) (*OTP, error)
	UpdateOTP(otp *OTP) error

	SaveRefreshToken(rt *RefreshToken) error
	GetRefreshToken(tokenID string) (*RefreshToken, error)
	RevokeRefreshToken(tokenID string) error
	RevokeAllRefreshTokens(playerID uint) error
}

type identityRepository struct {
	db *gorm.DB
}

// NewRepository creates a new identity Repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &identityRepository{db: db}
}

func (r *identityRepository) CreatePlayer(p *Player) error {
	return r.db.Create(p).Error
}

func (r *identityRepository) GetPlayerByID(id uint) (*Player, error) {
	var p Player
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *identityRepository) GetPlayerByPhone(phone string) (*Player, error) {
	var p Player
	if err := r.db.Where("phone = ?", phone).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *identityRepository) GetPlayerBySteamID(steamID string) (*Player, error) {
	var p Player
	if err := r.db.Where("steam_id = ?", steamID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *identityRepository) UpdatePlayer(p *Player) error {
	return r.db.Save(p).Error
}

func (r *identityRepository) SaveOTP(otp *OTP) error {
	return r.db.Create(otp).Error
}

func (r *identityRepository) GetLatestOTP(phone string) (*OTP, error) {
	var otp OTP
	err := r.db.Where("phone = ? AND expires_at > ? AND verified = ?", phone, time.Now(), false).
		Order("created_at DESC").First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

func (r *identityRepository) UpdateOTP(otp *OTP) error {
	return r.db.Save(otp).Error
}

func (r *identityRepository) SaveRefreshToken(rt *RefreshToken) error {
	return r.db.Create(rt).Error
}

func (r *identityRepository) GetRefreshToken(tokenID string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := r.db.Where("token_id = ?", tokenID).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *identityRepository) RevokeRefreshToken(tokenID string) error {
	return r.db.Model(&RefreshToken{}).Where("token_id = ?", tokenID).Update("revoked", true).Error
}

func (r *identityRepository) RevokeAllRefreshTokens(playerID uint) error {
	return r.db.Model(&RefreshToken{}).Where("player_id = ?", playerID).Update("revoked", true).Error
}
