package leaderboard

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexclash/nexclash/internal/tournament"
)

type Repository interface {
	GetEntry(tournamentID, playerID uint) (*Entry, error)
	UpsertEntry(e *Entry) error
	ListEntries(tournamentID uint, page, limit int) ([]Entry, int64, error)
	RegisteredPlayers(tournamentID uint) ([]uint, error)
	SetDisqualified(tournamentID, playerID uint, disqualified bool, reason string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetEntry(tournamentID, playerID uint) (*Entry, error) {
	var e Entry
	err := r.db.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// UpsertEntry writes the refreshed scores, replacing any previous snapshot
// for the same (tournament, player) pair. The disqualification columns are
// deliberately absent from the assignment list: an operator-set flag
// survives every refresh.
func (r *gormRepository) UpsertEntry(e *Entry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tournament_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"player_name", "total_score", "matches_played", "top_matches",
			"risk_score", "last_refreshed_at", "updated_at",
		}),
	}).Create(e).Error
}

// ListEntries returns one leaderboard page ordered by score. Ties break on
// the earlier refresh so standings stay stable between reads.
func (r *gormRepository) ListEntries(tournamentID uint, page, limit int) ([]Entry, int64, error) {
	var entries []Entry
	var total int64

	query := r.db.Model(&Entry{}).Where("tournament_id = ?", tournamentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("total_score DESC, last_refreshed_at ASC NULLS LAST, player_id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *gormRepository) SetDisqualified(tournamentID, playerID uint, disqualified bool, reason string) error {
	res := r.db.Model(&Entry{}).
		Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).
		Updates(map[string]interface{}{
			"disqualified":      disqualified,
			"disqualify_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tournament.ErrNotFound
	}
	return nil
}

func (r *gormRepository) RegisteredPlayers(tournamentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&Entry{}).Where("tournament_id = ?", tournamentID).
		Pluck("player_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
