package opendota

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second, 100), srv
}

func TestGetPlayer(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players/70388859", r.URL.Path)
		w.Write([]byte(`{
			"rank_tier": 55,
			"mmr_estimate": {"estimate": 3400},
			"profile": {"personaname": "Dendi", "avatarfull": "https://example.com/a.jpg"}
		}`))
	})
	defer srv.Close()

	player, err := client.GetPlayer(context.Background(), "70388859")
	require.NoError(t, err)
	assert.Equal(t, 55, player.RankTier)
	assert.Equal(t, 3400, player.MMR)
	assert.Equal(t, "Dendi", player.Name)
}

func TestGetPlayerNotFound(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.GetPlayer(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPlayerServerErrorsAreTransient(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := client.GetPlayer(context.Background(), "1")
		assert.ErrorIs(t, err, ErrUnavailable, "status %d", status)
		srv.Close()
	}
}

func TestGetPlayerConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // nothing listening anymore

	client := NewClient(srv.URL, time.Second, 100)
	_, err := client.GetPlayer(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetRecentMatches(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players/70388859/recentMatches", r.URL.Path)
		w.Write([]byte(`[
			{"match_id": 1, "player_slot": 2, "radiant_win": true, "kills": 10, "deaths": 3, "assists": 7,
			 "last_hits": 210, "gold_per_min": 520, "xp_per_min": 600, "start_time": 1700000000, "hero_id": 74},
			{"match_id": 2, "player_slot": 130, "radiant_win": true, "kills": 1, "deaths": 9, "assists": 4,
			 "last_hits": 80, "gold_per_min": 290, "xp_per_min": 310, "start_time": 1700003600, "hero_id": 14}
		]`))
	})
	defer srv.Close()

	matches, err := client.GetRecentMatches(context.Background(), "70388859")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Radiant player on a radiant win.
	assert.True(t, matches[0].Win)
	assert.Equal(t, int64(1), matches[0].MatchID)
	assert.Equal(t, 520, matches[0].GoldPerMinute)

	// Dire player on a radiant win.
	assert.False(t, matches[1].Win)
}

func TestGetRecentMatchesCanceledContext(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetRecentMatches(ctx, "1")
	assert.Error(t, err)
}
