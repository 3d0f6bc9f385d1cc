package solo

import (
	"context"
	"log"
	"time"

	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/tournament"
)

type TournamentReader interface {
	GetTournamentByID(id uint) (*tournament.Tournament, error)
	IsPlayerRegistered(tournamentID, playerID uint) (bool, error)
}

type RatingSource interface {
	VerifiedRating(ctx context.Context, playerID uint) (identity.Rating, error)
}

type Service struct {
	repo        Repository
	tournaments TournamentReader
	ledger      tournament.Ledger
	ratings     RatingSource
	now         func() time.Time
}

func NewService(repo Repository, tournaments TournamentReader, ledger tournament.Ledger, ratings RatingSource) *Service {
	return &Service{repo: repo, tournaments: tournaments, ledger: ledger, ratings: ratings, now: time.Now}
}

// Register puts the player in the tournament's solo pool. A slot is
// reserved first; if persisting the entry fails afterwards the slot is
// released again. Solo tournaments book against the shared pool counter;
// team tournaments book the seat in the player's own bracket, mutually
// exclusive with joining a team in the same tournament.
func (s *Service) Register(ctx context.Context, tournamentID, playerID uint) (*Registration, error) {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tournament.ErrNotFound
	}
	if err := t.AcceptsRegistrations(s.now()); err != nil {
		return nil, err
	}
	if t.EntryFee > 0 {
		return nil, ErrPaidEntry
	}
	registered, err := s.tournaments.IsPlayerRegistered(tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, tournament.ErrAlreadyRegistered
	}

	rating, err := s.ratings.VerifiedRating(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if t.Kind == tournament.KindTeam {
		err = s.ledger.Reserve(ctx, tournamentID, rating.Tier, 1)
	} else {
		err = s.ledger.ReservePool(ctx, tournamentID, 1)
	}
	if err != nil {
		return nil, err
	}

	reg := &Registration{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Tier:         rating.Tier,
		MMR:          rating.MMR,
		RankTier:     rating.RankTier,
		Status:       StatusWaiting,
	}
	if err := s.repo.CreateRegistration(ctx, reg, t.Kind); err != nil {
		var relErr error
		if t.Kind == tournament.KindTeam {
			relErr = s.ledger.Release(ctx, tournamentID, rating.Tier, 1)
		} else {
			relErr = s.ledger.ReleasePool(ctx, tournamentID, 1)
		}
		if relErr != nil {
			log.Printf("solo: slot release after failed registration, tournament %d: %v", tournamentID, relErr)
		}
		return nil, err
	}
	return reg, nil
}

// MyRegistration returns the player's pool entry, or nil when they are not
// in the pool.
func (s *Service) MyRegistration(tournamentID, playerID uint) (*Registration, error) {
	return s.repo.GetRegistration(tournamentID, playerID)
}

// Pool returns one page of the tournament's waiting pool.
func (s *Service) Pool(tournamentID uint, page, limit int) ([]Registration, int64, error) {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, 0, err
	}
	if t == nil {
		return nil, 0, tournament.ErrNotFound
	}
	return s.repo.ListPool(tournamentID, page, limit)
}

// Remove drops a player from the pool and releases their slot back to the
// tournament. In team tournaments the bracket seat and the tournament total
// both come back.
func (s *Service) Remove(ctx context.Context, tournamentID, playerID uint) error {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return err
	}
	if t == nil {
		return tournament.ErrNotFound
	}
	reg, err := s.repo.RemoveRegistration(ctx, tournamentID, playerID)
	if err != nil {
		return err
	}
	if t.Kind == tournament.KindTeam {
		if err := s.ledger.Release(ctx, tournamentID, reg.Tier, 1); err != nil {
			log.Printf("solo: bracket slot release on removal, tournament %d player %d: %v", tournamentID, playerID, err)
		}
	}
	if err := s.ledger.ReleasePool(ctx, tournamentID, 1); err != nil {
		log.Printf("solo: pool slot release on removal, tournament %d player %d: %v", tournamentID, playerID, err)
	}
	return nil
}
