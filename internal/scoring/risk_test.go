package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexclash/nexclash/internal/bracket"
)

// quiet returns a match profile no heuristic fires on for the bottom
// bracket.
func quiet() MatchStats {
	return MatchStats{Kills: 2, Deaths: 5, Assists: 4, LastHits: 30, GoldPerMinute: 300}
}

func TestSmurfRiskEmptyHistory(t *testing.T) {
	assert.Zero(t, SmurfRisk(nil, bracket.TierHeraldGuardian))
}

func TestSmurfRiskCleanProfile(t *testing.T) {
	matches := []MatchStats{quiet(), quiet(), quiet()}
	assert.Zero(t, SmurfRisk(matches, bracket.TierHeraldGuardian))
}

func TestSmurfRiskLastHitSignal(t *testing.T) {
	m := quiet()
	m.LastHits = 70 // above 40 * 1.5 for the bottom bracket
	assert.Equal(t, 40, SmurfRisk([]MatchStats{m}, bracket.TierHeraldGuardian))
}

func TestSmurfRiskGPMSignal(t *testing.T) {
	m := quiet()
	m.GoldPerMinute = 500 // above 350 * 1.3
	assert.Equal(t, 30, SmurfRisk([]MatchStats{m}, bracket.TierHeraldGuardian))
}

func TestSmurfRiskKDASignal(t *testing.T) {
	m := quiet()
	m.Kills, m.Deaths, m.Assists = 10, 2, 5 // KDA 7.5
	assert.Equal(t, 20, SmurfRisk([]MatchStats{m}, bracket.TierHeraldGuardian))
}

func TestSmurfRiskWinRateSignal(t *testing.T) {
	matches := make([]MatchStats, 10)
	for i := range matches {
		matches[i] = quiet()
		matches[i].Win = i < 7 // 70% win rate
	}
	assert.Equal(t, 10, SmurfRisk(matches, bracket.TierHeraldGuardian))
}

func TestSmurfRiskAllSignalsCapAtHundred(t *testing.T) {
	matches := make([]MatchStats, 10)
	for i := range matches {
		matches[i] = MatchStats{
			Kills:         15,
			Deaths:        1,
			Assists:       10,
			LastHits:      300,
			GoldPerMinute: 900,
			Win:           true,
		}
	}
	assert.Equal(t, 100, SmurfRisk(matches, bracket.TierHeraldGuardian))
}

func TestSmurfRiskZeroDeathsDoesNotDivideByZero(t *testing.T) {
	m := quiet()
	m.Kills, m.Deaths, m.Assists = 3, 0, 3 // deaths floored to 1, KDA 6
	assert.Equal(t, 20, SmurfRisk([]MatchStats{m}, bracket.TierHeraldGuardian))
}

func TestSmurfRiskScalesWithBracket(t *testing.T) {
	// A farm profile suspicious for the bottom bracket is ordinary for the
	// top one.
	m := quiet()
	m.LastHits = 90
	m.GoldPerMinute = 500

	assert.Equal(t, 70, SmurfRisk([]MatchStats{m}, bracket.TierHeraldGuardian))
	assert.Zero(t, SmurfRisk([]MatchStats{m}, bracket.TierDivineImmortal))
}
