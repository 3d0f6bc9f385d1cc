package tournament

import (
	"errors"

	"gorm.io/gorm"
)

// Repository defines the interface for tournament data operations.
type Repository interface {
	CreateTournament(t *Tournament) error
	GetTournamentByID(id uint) (*Tournament, error)
	GetTournaments(filters map[string]interface{}, page, limit int) ([]Tournament, int64, error)
	UpdateStatus(id uint, status Status) error

	IsPlayerRegistered(tournamentID, playerID uint) (bool, error)

	// ResetRegistrations is the administrative reset: it wipes every
	// registration artifact for the tournament and zeroes all counters.
	ResetRegistrations(tournamentID uint) error
}

type tournamentRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &tournamentRepository{db: db}
}

func (r *tournamentRepository) CreateTournament(t *Tournament) error {
	return r.db.Create(t).Error
}

func (r *tournamentRepository) GetTournamentByID(id uint) (*Tournament, error) {
	var t Tournament
	if err := r.db.Preload("Brackets").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tournamentRepository) GetTournaments(filters map[string]interface{}, page, limit int) ([]Tournament, int64, error) {
	var tournaments []Tournament
	var total int64

	query := r.db.Model(&Tournament{}).Preload("Brackets")
	if kind, ok := filters["kind"]; ok {
		query = query.Where("kind = ?", kind)
	}
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if game, ok := filters["game"]; ok {
		query = query.Where("game = ?", game)
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("start_at desc").Find(&tournaments).Error; err != nil {
		return nil, 0, err
	}
	return tournaments, total, nil
}

func (r *tournamentRepository) UpdateStatus(id uint, status Status) error {
	res := r.db.Model(&Tournament{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tournamentRepository) IsPlayerRegistered(tournamentID, playerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Registration{}).
		Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).
		Count(&count).Error
	return count > 0, err
}

func (r *tournamentRepository) ResetRegistrations(tournamentID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Team and leaderboard rows live in sibling packages; going through
		// their table names directly avoids an import cycle.
		if err := tx.Exec(
			"DELETE FROM team_members WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = ?)",
			tournamentID,
		).Error; err != nil {
			return err
		}
		for _, table := range []string{"teams", "solo_registrations", "leaderboard_entries"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE tournament_id = ?", tournamentID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&BracketSlots{}).Where("tournament_id = ?", tournamentID).
			Update("slots_booked", 0).Error; err != nil {
			return err
		}
		res := tx.Model(&Tournament{}).Where("id = ?", tournamentID).Update("slots_booked", 0)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
