package leaderboard

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/scoring"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/opendota"
)

// MatchProvider fetches a player's recent match history.
type MatchProvider interface {
	GetRecentMatches(ctx context.Context, steam32 string) ([]scoring.MatchStats, error)
}

// PlayerSource resolves identity details needed for scoring.
type PlayerSource interface {
	VerifiedRating(ctx context.Context, playerID uint) (identity.Rating, error)
	Steam32(playerID uint) (string, error)
	StoreRiskScore(playerID uint, score int) error
	PlayerName(playerID uint) (string, error)
}

type TournamentReader interface {
	GetTournamentByID(id uint) (*tournament.Tournament, error)
	IsPlayerRegistered(tournamentID, playerID uint) (bool, error)
}

type Service struct {
	repo        Repository
	tournaments TournamentReader
	players     PlayerSource
	provider    MatchProvider
	now         func() time.Time
}

func NewService(repo Repository, tournaments TournamentReader, players PlayerSource, provider MatchProvider) *Service {
	return &Service{repo: repo, tournaments: tournaments, players: players, provider: provider, now: time.Now}
}

// Refresh re-pulls the player's recent matches and overwrites their
// leaderboard entry with the freshly aggregated score and risk rating. When
// the match provider is down the cached entry is served untouched rather
// than zeroed.
func (s *Service) Refresh(ctx context.Context, tournamentID, playerID uint) (*Entry, error) {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tournament.ErrNotFound
	}
	registered, err := s.tournaments.IsPlayerRegistered(tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, tournament.ErrNotFound
	}

	rating, err := s.players.VerifiedRating(ctx, playerID)
	if err != nil {
		return nil, err
	}
	steam32, err := s.players.Steam32(playerID)
	if err != nil {
		return nil, err
	}

	matches, err := s.provider.GetRecentMatches(ctx, steam32)
	if err != nil {
		if errors.Is(err, opendota.ErrUnavailable) {
			cached, cacheErr := s.repo.GetEntry(tournamentID, playerID)
			if cacheErr != nil {
				return nil, cacheErr
			}
			if cached != nil {
				log.Printf("leaderboard: match provider unavailable, serving cached entry for player %d in tournament %d", playerID, tournamentID)
				return cached, nil
			}
			return nil, ErrNeverRefreshed
		}
		return nil, err
	}

	agg := scoring.AggregateScore(matches, t.StartAt.Unix())
	risk := scoring.SmurfRisk(matches, rating.Tier)

	name, err := s.players.PlayerName(playerID)
	if err != nil {
		return nil, err
	}

	refreshedAt := s.now()
	entry := &Entry{
		TournamentID:    tournamentID,
		PlayerID:        playerID,
		PlayerName:      name,
		TotalScore:      agg.TotalScore,
		MatchesPlayed:   agg.MatchesPlayed,
		TopMatches:      TopMatchList(agg.TopMatches),
		RiskScore:       risk,
		LastRefreshedAt: &refreshedAt,
	}
	// The upsert leaves the disqualification columns alone; carry the
	// stored flag over so the returned entry matches the row.
	cached, err := s.repo.GetEntry(tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		entry.Disqualified = cached.Disqualified
		entry.DisqualifyReason = cached.DisqualifyReason
	}
	if err := s.repo.UpsertEntry(entry); err != nil {
		return nil, err
	}
	if err := s.players.StoreRiskScore(playerID, risk); err != nil {
		log.Printf("leaderboard: storing risk score for player %d: %v", playerID, err)
	}
	return entry, nil
}

// RefreshTournament re-aggregates every registrant of a tournament. Used by
// the periodic sweep; per-player failures are logged and skipped so one bad
// account does not stall the rest.
func (s *Service) RefreshTournament(ctx context.Context, tournamentID uint) {
	players, err := s.repo.RegisteredPlayers(tournamentID)
	if err != nil {
		log.Printf("leaderboard: listing registrants for tournament %d: %v", tournamentID, err)
		return
	}
	for _, playerID := range players {
		if _, err := s.Refresh(ctx, tournamentID, playerID); err != nil {
			log.Printf("leaderboard: sweep refresh for player %d in tournament %d: %v", playerID, tournamentID, err)
		}
	}
}

// Disqualify flips the operator-set disqualification flag on an entry. It
// is the only write path for the flag; refreshes never change it.
func (s *Service) Disqualify(tournamentID, playerID uint, disqualified bool, reason string) (*Entry, error) {
	if err := s.repo.SetDisqualified(tournamentID, playerID, disqualified, reason); err != nil {
		return nil, err
	}
	return s.repo.GetEntry(tournamentID, playerID)
}

// Standings returns one page of the tournament leaderboard.
func (s *Service) Standings(tournamentID uint, page, limit int) ([]Entry, int64, error) {
	t, err := s.tournaments.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, 0, err
	}
	if t == nil {
		return nil, 0, tournament.ErrNotFound
	}
	return s.repo.ListEntries(tournamentID, page, limit)
}
