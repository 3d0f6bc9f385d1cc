package opendota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nexclash/nexclash/internal/scoring"
)

// ErrUnavailable marks transient provider failures (timeouts, rate limits,
// 5xx). Callers keep their last cached data instead of overwriting it.
var ErrUnavailable = errors.New("opendota: provider unavailable")

// ErrNotFound is returned for unknown accounts.
var ErrNotFound = errors.New("opendota: player not found")

// recentMatchLimit bounds how many matches we keep per fetch. OpenDota's
// recentMatches endpoint returns at most 20 anyway.
const recentMatchLimit = 20

// Player is the subset of the OpenDota player profile the platform needs.
type Player struct {
	RankTier int
	MMR      int
	Name     string
	Avatar   string
}

type playerResponse struct {
	RankTier    int `json:"rank_tier"`
	MMREstimate struct {
		Estimate int `json:"estimate"`
	} `json:"mmr_estimate"`
	Profile struct {
		PersonaName string `json:"personaname"`
		AvatarFull  string `json:"avatarfull"`
	} `json:"profile"`
}

type recentMatch struct {
	MatchID    int64 `json:"match_id"`
	PlayerSlot int   `json:"player_slot"`
	RadiantWin bool  `json:"radiant_win"`
	Kills      int   `json:"kills"`
	Deaths     int   `json:"deaths"`
	Assists    int   `json:"assists"`
	LastHits   int   `json:"last_hits"`
	GoldPerMin int   `json:"gold_per_min"`
	XPPerMin   int   `json:"xp_per_min"`
	StartTime  int64 `json:"start_time"`
	HeroID     int   `json:"hero_id"`
}

// Client is a rate-limited OpenDota API client. All calls are bounded by
// the HTTP client timeout; registration paths never depend on it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, timeout time.Duration, perSecond float64) *Client {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// GetPlayer fetches the profile of a Steam32 account id.
func (c *Client) GetPlayer(ctx context.Context, steam32 string) (*Player, error) {
	var resp playerResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/players/%s", c.baseURL, steam32), &resp); err != nil {
		return nil, err
	}
	return &Player{
		RankTier: resp.RankTier,
		MMR:      resp.MMREstimate.Estimate,
		Name:     resp.Profile.PersonaName,
		Avatar:   resp.Profile.AvatarFull,
	}, nil
}

// GetRecentMatches fetches the account's recent matches with win/loss
// resolved from the player slot.
func (c *Client) GetRecentMatches(ctx context.Context, steam32 string) ([]scoring.MatchStats, error) {
	var raw []recentMatch
	if err := c.getJSON(ctx, fmt.Sprintf("%s/players/%s/recentMatches", c.baseURL, steam32), &raw); err != nil {
		return nil, err
	}
	if len(raw) > recentMatchLimit {
		raw = raw[:recentMatchLimit]
	}

	matches := make([]scoring.MatchStats, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, scoring.MatchStats{
			MatchID:       m.MatchID,
			StartTime:     m.StartTime,
			HeroID:        m.HeroID,
			Kills:         m.Kills,
			Deaths:        m.Deaths,
			Assists:       m.Assists,
			LastHits:      m.LastHits,
			GoldPerMinute: m.GoldPerMin,
			XPPerMinute:   m.XPPerMin,
			Win:           m.RadiantWin == (m.PlayerSlot < 128),
		})
	}
	return matches, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("opendota: unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("opendota: decode response: %w", err)
	}
	return nil
}
