package solo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nexclash/nexclash/internal/leaderboard"
	"github.com/nexclash/nexclash/internal/tournament"
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *Registration, kind tournament.Kind) error
	GetRegistration(tournamentID, playerID uint) (*Registration, error)
	ListPool(tournamentID uint, page, limit int) ([]Registration, int64, error)
	RemoveRegistration(ctx context.Context, tournamentID, playerID uint) (*Registration, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateRegistration persists the pool entry and the shared registration
// row in one transaction. A duplicate surfaces as
// tournament.ErrAlreadyRegistered. Solo tournaments additionally seed a
// zero-score leaderboard row; in team tournaments the entrant counts
// against the tournament total immediately, so the commit happens here and
// rolls back with the rows.
func (r *gormRepository) CreateRegistration(ctx context.Context, reg *Registration, kind tournament.Kind) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tournament.ErrAlreadyRegistered
			}
			return err
		}
		shared := tournament.Registration{
			TournamentID: reg.TournamentID,
			PlayerID:     reg.PlayerID,
			Kind:         tournament.RegSolo,
		}
		if err := tx.Create(&shared).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tournament.ErrAlreadyRegistered
			}
			return err
		}
		if kind == tournament.KindTeam {
			return tournament.CommitBookedSlots(tx, reg.TournamentID, 1)
		}
		entry := leaderboard.Entry{
			TournamentID: reg.TournamentID,
			PlayerID:     reg.PlayerID,
			TopMatches:   leaderboard.TopMatchList{},
		}
		return tx.Create(&entry).Error
	})
}

func (r *gormRepository) GetRegistration(tournamentID, playerID uint) (*Registration, error) {
	var reg Registration
	err := r.db.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *gormRepository) ListPool(tournamentID uint, page, limit int) ([]Registration, int64, error) {
	var regs []Registration
	var total int64

	query := r.db.Model(&Registration{}).Where("tournament_id = ?", tournamentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at asc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// RemoveRegistration deletes a pool entry together with its shared
// registration and leaderboard rows, returning the removed entry so the
// caller can release the pool slot.
func (r *gormRepository) RemoveRegistration(ctx context.Context, tournamentID, playerID uint) (*Registration, error) {
	var reg Registration
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).First(&reg).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tournament.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&reg).Error; err != nil {
			return err
		}
		err = tx.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).
			Delete(&tournament.Registration{}).Error
		if err != nil {
			return err
		}
		return tx.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).
			Delete(&leaderboard.Entry{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
