package team

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/utils"
)

const codeAttempts = 5

// TournamentReader is the slice of the tournament repository the team flows
// need.
type TournamentReader interface {
	GetTournamentByID(id uint) (*tournament.Tournament, error)
	IsPlayerRegistered(tournamentID, playerID uint) (bool, error)
}

// RatingSource resolves a player's verified bracket and MMR snapshot.
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

// Create reserves one slot in the captain's bracket, then persists the team
// with the captain as its first member. If persistence fails after the
// reservation succeeded, the slot is released again.
func (s *Service) Create(ctx context.Context, tournamentID, captainID uint) (*Team, []Member, error) {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, tournament.ErrNotFound
	}
	if t.Kind != tournament.KindTeam {
		return nil, nil, tournament.ErrWrongKind
	}
	if err := t.AcceptsRegistrations(s.now()); err != nil {
		return nil, nil, err
	}
	registered, err := s.tournaments.IsPlayerRegistered(tournamentID, captainID)
	if err != nil {
		return nil, nil, err
	}
	if registered {
		return nil, nil, tournament.ErrAlreadyRegistered
	}

	rating, err := s.ratings.VerifiedRating(ctx, captainID)
	if err != nil {
		return nil, nil, err
	}

	code, err := s.freshCode()
	if err != nil {
		return nil, nil, err
	}

	if err := s.ledger.Reserve(ctx, tournamentID, rating.Tier, 1); err != nil {
		return nil, nil, err
	}

	team := &Team{
		TournamentID: tournamentID,
		CaptainID:    captainID,
		TeamCode:     code,
		Status:       StatusForming,
		Tier:         rating.Tier,
	}
	captain := &Member{
		PlayerID:  captainID,
		Tier:      rating.Tier,
		MMR:       rating.MMR,
		RankTier:  rating.RankTier,
		IsCaptain: true,
	}
	if err := s.repo.CreateTeam(ctx, team, captain); err != nil {
		if relErr := s.ledger.Release(ctx, tournamentID, rating.Tier, 1); relErr != nil {
			log.Printf("team: slot release after failed create, tournament %d tier %s: %v", tournamentID, rating.Tier, relErr)
		}
		return nil, nil, err
	}
	return team, []Member{*captain}, nil
}

// Join adds the player to the team behind code. The joiner's own bracket
// slot is reserved before the seat is persisted; the repository serializes
// concurrent joins on the team row and settles the roster on the fifth
// member.
func (s *Service) Join(ctx context.Context, code string, playerID uint) (*Team, []Member, error) {
	found, members, err := s.repo.GetTeamByCode(code)
	if err != nil {
		return nil, nil, err
	}
	if found == nil {
		return nil, nil, ErrInvalidCode
	}
	if found.Status == StatusFull || len(members) >= TeamSize {
		return nil, nil, ErrTeamFull
	}
	for _, m := range members {
		if m.PlayerID == playerID {
			return nil, nil, ErrAlreadyMember
		}
	}

	t, err := s.tournaments.GetTournamentByID(found.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, tournament.ErrNotFound
	}
	if err := t.AcceptsRegistrations(s.now()); err != nil {
		return nil, nil, err
	}
	registered, err := s.tournaments.IsPlayerRegistered(t.ID, playerID)
	if err != nil {
		return nil, nil, err
	}
	if registered {
		return nil, nil, tournament.ErrAlreadyRegistered
	}

	rating, err := s.ratings.VerifiedRating(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.ledger.Reserve(ctx, t.ID, rating.Tier, 1); err != nil {
		return nil, nil, err
	}

	member := &Member{
		PlayerID: playerID,
		Tier:     rating.Tier,
		MMR:      rating.MMR,
		RankTier: rating.RankTier,
	}
	updated, err := s.repo.AddMember(ctx, code, member)
	if err != nil {
		if relErr := s.ledger.Release(ctx, t.ID, rating.Tier, 1); relErr != nil {
			log.Printf("team: slot release after failed join, tournament %d tier %s: %v", t.ID, rating.Tier, relErr)
		}
		return nil, nil, err
	}

	_, roster, err := s.repo.GetTeamByID(updated.ID)
	if err != nil {
		return updated, nil, err
	}
	return updated, roster, nil
}

// MyTeam returns the player's team in a tournament, or nil when the player
// has no team there.
func (s *Service) MyTeam(tournamentID, playerID uint) (*Team, []Member, error) {
	return s.repo.GetTeamForPlayer(tournamentID, playerID)
}

// Disband removes a forming team and releases each member's reserved
// bracket slot. Full teams cannot be disbanded.
func (s *Service) Disband(ctx context.Context, teamID uint) error {
	t, members, err := s.repo.DisbandForming(ctx, teamID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := s.ledger.Release(ctx, t.TournamentID, m.Tier, 1); err != nil {
			log.Printf("team: slot release on disband, tournament %d tier %s: %v", t.TournamentID, m.Tier, err)
		}
	}
	return nil
}

func (s *Service) freshCode() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := utils.GenerateJoinCode(JoinCodeLength)
		if err != nil {
			return "", err
		}
		inUse, err := s.repo.CodeInUse(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique team code after %d attempts", codeAttempts)
}
