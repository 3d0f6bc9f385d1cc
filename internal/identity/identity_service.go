package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nexclash/nexclash/internal/bracket"
	"github.com/nexclash/nexclash/internal/scoring"
	"github.com/nexclash/nexclash/pkg/opendota"
)

// ErrUnverified means the player has no usable skill rating: either no
// Steam account is linked or their match data is private. Callers must ask
// the player to link/expose their identity first.
var ErrUnverified = errors.New("identity: no verified skill rating")

// ErrSteamTaken means the Steam account is already linked to another player.
var ErrSteamTaken = errors.New("identity: steam account already linked")

// rankTTL is how long a fetched rank snapshot stays fresh. Within the TTL
// registration reuses the snapshot instead of hitting the provider again.
const rankTTL = 24 * time.Hour

// RankProvider is the outbound dependency on the match-data provider.
// *opendota.Client satisfies it.
type RankProvider interface {
	GetPlayer(ctx context.Context, steam32 string) (*opendota.Player, error)
	GetRecentMatches(ctx context.Context, steam32 string) ([]scoring.MatchStats, error)
}

// Service owns player identity: Steam linking, rank snapshots and the
// VerifiedRating contract the registration paths depend on.
type Service struct {
	repo     Repository
	provider RankProvider
	now      func() time.Time
}

func NewService(repo Repository, provider RankProvider) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		now:      time.Now,
	}
}

// LinkSteam attaches a Steam64 account to the player and performs the
// initial rank fetch. The OpenID verification dance happens upstream; by
// the time this is called the Steam id is trusted.
func (s *Service) LinkSteam(ctx context.Context, playerID uint, steam64 string) (*Player, error) {
	existing, err := s.repo.GetPlayerBySteamID(steam64)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != playerID {
		return nil, ErrSteamTaken
	}

	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("identity: player %d not found", playerID)
	}

	if _, err := opendota.Steam32(steam64); err != nil {
		return nil, err
	}
	player.SteamID = steam64

	if err := s.refreshRank(ctx, player); err != nil {
		// The link itself still goes through; rank can be fetched later.
		if !errors.Is(err, opendota.ErrUnavailable) {
			return nil, err
		}
		log.Printf("identity: rank fetch deferred for player %d: %v", playerID, err)
	}

	if err := s.repo.UpdatePlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

// RefreshRank re-fetches the player's rank, MMR and smurf risk from the
// provider and stores the snapshot.
func (s *Service) RefreshRank(ctx context.Context, playerID uint) (*Player, error) {
	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("identity: player %d not found", playerID)
	}
	if player.SteamID == "" {
		return nil, ErrUnverified
	}

	if err := s.refreshRank(ctx, player); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

// VerifiedRating returns the player's verified skill snapshot for
// registration. A fresh snapshot is served from the database; a stale one
// triggers a provider refresh, falling back to the stale snapshot when the
// provider is down so registration never blocks on match data.
func (s *Service) VerifiedRating(ctx context.Context, playerID uint) (Rating, error) {
	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return Rating{}, err
	}
	if player == nil || player.SteamID == "" {
		return Rating{}, ErrUnverified
	}

	stale := player.RankFetchedAt == nil || s.now().Sub(*player.RankFetchedAt) > rankTTL
	if stale {
		if err := s.refreshRank(ctx, player); err != nil {
			if errors.Is(err, opendota.ErrUnavailable) && player.RankFetchedAt != nil {
				log.Printf("identity: provider down, using cached rank for player %d", playerID)
			} else {
				return Rating{}, err
			}
		} else if err := s.repo.UpdatePlayer(player); err != nil {
			return Rating{}, err
		}
	}

	if player.RankTier <= 0 {
		// OpenDota reports rank_tier 0 for private or uncalibrated profiles.
		return Rating{}, ErrUnverified
	}

	return Rating{
		RankTier: player.RankTier,
		MMR:      player.MMR,
		Tier:     player.Tier,
	}, nil
}

// Steam32 returns the player's 32-bit account id for match fetches.
func (s *Service) Steam32(playerID uint) (string, error) {
	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return "", err
	}
	if player == nil || player.SteamID == "" {
		return "", ErrUnverified
	}
	return opendota.Steam32(player.SteamID)
}

// PlayerName returns the display name for leaderboards, preferring the
// Steam persona over the profile name.
func (s *Service) PlayerName(playerID uint) (string, error) {
	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return "", err
	}
	if player == nil {
		return "", fmt.Errorf("identity: player %d not found", playerID)
	}
	if player.SteamName != "" {
		return player.SteamName, nil
	}
	return player.Name, nil
}

// StoreRiskScore persists a recomputed smurf risk score on the profile.
func (s *Service) StoreRiskScore(playerID uint, score int) error {
	player, err := s.repo.GetPlayerByID(playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return fmt.Errorf("identity: player %d not found", playerID)
	}
	player.SmurfRiskScore = score
	return s.repo.UpdatePlayer(player)
}

func (s *Service) refreshRank(ctx context.Context, player *Player) error {
	steam32, err := opendota.Steam32(player.SteamID)
	if err != nil {
		return err
	}

	profile, err := s.provider.GetPlayer(ctx, steam32)
	if err != nil {
		return err
	}
	matches, err := s.provider.GetRecentMatches(ctx, steam32)
	if err != nil {
		return err
	}

	tier := bracket.Classify(profile.RankTier)

	player.RankTier = profile.RankTier
	player.MMR = profile.MMR
	player.Tier = tier
	player.SmurfRiskScore = scoring.SmurfRisk(matches, tier)
	if profile.Name != "" {
		player.SteamName = profile.Name
	}
	if profile.Avatar != "" {
		player.SteamAvatar = profile.Avatar
	}
	fetchedAt := s.now()
	player.RankFetchedAt = &fetchedAt
	return nil
}
