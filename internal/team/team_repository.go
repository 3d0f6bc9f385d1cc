package team

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexclash/nexclash/internal/tournament"
)

type Repository interface {
	CreateTeam(ctx context.Context, t *Team, captain *Member) error
	AddMember(ctx context.Context, code string, m *Member) (*Team, error)
	GetTeamByCode(code string) (*Team, []Member, error)
	GetTeamByID(id uint) (*Team, []Member, error)
	GetTeamForPlayer(tournamentID, playerID uint) (*Team, []Member, error)
	CodeInUse(code string) (bool, error)
	DisbandForming(ctx context.Context, teamID uint) (*Team, []Member, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateTeam inserts the team, its captain seat and the registration row in
// one transaction. A duplicate registration surfaces as
// tournament.ErrAlreadyRegistered.
func (r *gormRepository) CreateTeam(ctx context.Context, t *Team, captain *Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		captain.TeamID = t.ID
		if err := tx.Create(captain).Error; err != nil {
			return err
		}
		reg := tournament.Registration{
			TournamentID: t.TournamentID,
			PlayerID:     captain.PlayerID,
			Kind:         tournament.RegTeam,
		}
		if err := tx.Create(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tournament.ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
}

// AddMember appends a seat to the team identified by code. The team row is
// locked for the duration of the transaction so concurrent joins serialize;
// the fifth seat settles the team (average MMR, captain's tier, status full)
// and commits the five booked slots to the tournament total in the same
// transaction.
func (r *gormRepository) AddMember(ctx context.Context, code string, m *Member) (*Team, error) {
	var t Team
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_code = ?", code).First(&t).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCode
			}
			return err
		}
		if t.Status == StatusFull {
			return ErrTeamFull
		}

		var members []Member
		if err := tx.Where("team_id = ?", t.ID).Find(&members).Error; err != nil {
			return err
		}
		if len(members) >= TeamSize {
			return ErrTeamFull
		}
		for _, existing := range members {
			if existing.PlayerID == m.PlayerID {
				return ErrAlreadyMember
			}
		}

		m.TeamID = t.ID
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		reg := tournament.Registration{
			TournamentID: t.TournamentID,
			PlayerID:     m.PlayerID,
			Kind:         tournament.RegTeam,
		}
		if err := tx.Create(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tournament.ErrAlreadyRegistered
			}
			return err
		}

		members = append(members, *m)
		if len(members) < TeamSize {
			return nil
		}

		// Settlement: the roster is complete.
		var sum int
		var captainTier = t.Tier
		for _, member := range members {
			sum += member.MMR
			if member.IsCaptain {
				captainTier = member.Tier
			}
		}
		t.AverageMMR = float64(sum) / float64(TeamSize)
		t.Tier = captainTier
		t.Status = StatusFull
		if err := tx.Model(&Team{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"status":      StatusFull,
			"average_mmr": t.AverageMMR,
			"tier":        t.Tier,
		}).Error; err != nil {
			return err
		}
		return tournament.CommitBookedSlots(tx, t.TournamentID, TeamSize)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetTeamByCode(code string) (*Team, []Member, error) {
	var t Team
	if err := r.db.Where("team_code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	members, err := r.membersOf(t.ID)
	if err != nil {
		return nil, nil, err
	}
	return &t, members, nil
}

func (r *gormRepository) GetTeamByID(id uint) (*Team, []Member, error) {
	var t Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	members, err := r.membersOf(t.ID)
	if err != nil {
		return nil, nil, err
	}
	return &t, members, nil
}

func (r *gormRepository) GetTeamForPlayer(tournamentID, playerID uint) (*Team, []Member, error) {
	var m Member
	err := r.db.
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.tournament_id = ? AND team_members.player_id = ?", tournamentID, playerID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return r.GetTeamByID(m.TeamID)
}

func (r *gormRepository) CodeInUse(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&Team{}).Where("team_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DisbandForming deletes a forming team, its seats and the members'
// registration rows. It returns the removed roster so the caller can
// release the reserved bracket slots. Full teams are locked.
func (r *gormRepository) DisbandForming(ctx context.Context, teamID uint) (*Team, []Member, error) {
	var t Team
	var members []Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, teamID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tournament.ErrNotFound
			}
			return err
		}
		if t.Status == StatusFull {
			return ErrTeamLocked
		}
		if err := tx.Where("team_id = ?", t.ID).Find(&members).Error; err != nil {
			return err
		}
		for _, m := range members {
			err := tx.Where("tournament_id = ? AND player_id = ?", t.TournamentID, m.PlayerID).
				Delete(&tournament.Registration{}).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Where("team_id = ?", t.ID).Delete(&Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &t, members, nil
}

func (r *gormRepository) membersOf(teamID uint) ([]Member, error) {
	var members []Member
	if err := r.db.Where("team_id = ?", teamID).Order("created_at asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
