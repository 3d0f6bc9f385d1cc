package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMatchFormula(t *testing.T) {
	m := MatchStats{
		Kills:         10,
		Deaths:        4,
		Assists:       8,
		LastHits:      230,
		GoldPerMinute: 520,
		XPPerMinute:   610,
		Win:           true,
	}
	// 30 + 8 - 8 + 23 + 10 + 12 + 20
	assert.Equal(t, 95, ScoreMatch(m).Score)
}

func TestScoreMatchLoss(t *testing.T) {
	m := MatchStats{Kills: 5, Deaths: 2, Assists: 3, LastHits: 100, GoldPerMinute: 400, XPPerMinute: 450}
	// 15 + 3 - 4 + 10 + 8 + 9, no win bonus
	assert.Equal(t, 41, ScoreMatch(m).Score)
}

func TestScoreMatchNeverNegative(t *testing.T) {
	m := MatchStats{Kills: 0, Deaths: 15, Assists: 1}
	assert.Equal(t, 0, ScoreMatch(m).Score)
}

func TestScoreMatchDivisionFloors(t *testing.T) {
	m := MatchStats{LastHits: 9, GoldPerMinute: 49, XPPerMinute: 49}
	assert.Equal(t, 0, ScoreMatch(m).Score)

	m = MatchStats{LastHits: 10, GoldPerMinute: 50, XPPerMinute: 50}
	assert.Equal(t, 3, ScoreMatch(m).Score)
}

func matchWithScore(id int64, startTime int64, kills int) MatchStats {
	// Score is 3 per kill with everything else zeroed.
	return MatchStats{MatchID: id, StartTime: startTime, Kills: kills}
}

func TestAggregateScoreTopThree(t *testing.T) {
	matches := []MatchStats{
		matchWithScore(1, 100, 10), // 30
		matchWithScore(2, 100, 45), // 135
		matchWithScore(3, 100, 30), // 90
		matchWithScore(4, 100, 5),  // 15
		matchWithScore(5, 100, 50), // 150
	}

	agg := AggregateScore(matches, 0)
	assert.Equal(t, 375, agg.TotalScore) // 150 + 135 + 90
	assert.Equal(t, 5, agg.MatchesPlayed)
	require.Len(t, agg.TopMatches, 3)
	assert.Equal(t, int64(5), agg.TopMatches[0].MatchID)
	assert.Equal(t, int64(2), agg.TopMatches[1].MatchID)
	assert.Equal(t, int64(3), agg.TopMatches[2].MatchID)
}

func TestAggregateScoreFewerThanThree(t *testing.T) {
	matches := []MatchStats{
		matchWithScore(1, 100, 10),
		matchWithScore(2, 100, 20),
	}
	agg := AggregateScore(matches, 0)
	assert.Equal(t, 90, agg.TotalScore)
	assert.Equal(t, 2, agg.MatchesPlayed)
	assert.Len(t, agg.TopMatches, 2)
}

func TestAggregateScoreWindowFilter(t *testing.T) {
	matches := []MatchStats{
		matchWithScore(1, 50, 100), // before the window, ignored
		matchWithScore(2, 100, 10), // exactly at the window start, counts
		matchWithScore(3, 150, 20),
	}
	agg := AggregateScore(matches, 100)
	assert.Equal(t, 90, agg.TotalScore)
	assert.Equal(t, 2, agg.MatchesPlayed)
}

func TestAggregateScoreEmpty(t *testing.T) {
	agg := AggregateScore(nil, 0)
	assert.Zero(t, agg.TotalScore)
	assert.Zero(t, agg.MatchesPlayed)
	assert.Empty(t, agg.TopMatches)

	// All matches outside the window behaves the same as no matches.
	agg = AggregateScore([]MatchStats{matchWithScore(1, 10, 5)}, 100)
	assert.Zero(t, agg.TotalScore)
	assert.Zero(t, agg.MatchesPlayed)
}

func TestAggregateScoreIsIdempotent(t *testing.T) {
	matches := []MatchStats{
		matchWithScore(1, 100, 10),
		matchWithScore(2, 100, 45),
		matchWithScore(3, 100, 30),
	}
	first := AggregateScore(matches, 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AggregateScore(matches, 0))
	}
}

func TestAggregateScoreTiesAreStable(t *testing.T) {
	matches := []MatchStats{
		matchWithScore(1, 100, 10),
		matchWithScore(2, 100, 10),
		matchWithScore(3, 100, 10),
		matchWithScore(4, 100, 10),
	}
	agg := AggregateScore(matches, 0)
	require.Len(t, agg.TopMatches, 3)
	// Equal scores keep input order.
	assert.Equal(t, int64(1), agg.TopMatches[0].MatchID)
	assert.Equal(t, int64(2), agg.TopMatches[1].MatchID)
	assert.Equal(t, int64(3), agg.TopMatches[2].MatchID)
}
