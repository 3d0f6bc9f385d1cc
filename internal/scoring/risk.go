package scoring

import "github.com/nexclash/nexclash/internal/bracket"

// Smurf risk weights. Each fires when the sample average exceeds the
// bracket expectation by the given multiplier.
const (
	lastHitMultiplier = 1.5
	gpmMultiplier     = 1.3
	kdaThreshold      = 4.0
	winRateThreshold  = 0.65

	lastHitWeight = 40
	gpmWeight     = 30
	kdaWeight     = 20
	winRateWeight = 10

	maxRisk = 100
)

// SmurfRisk computes a 0-100 suspicion score for a player's recent matches
// relative to their bracket's expected performance. A heuristic screening
// signal only: crossing any threshold never disqualifies a player by
// itself, it is surfaced for manual review.
func SmurfRisk(matches []MatchStats, tier bracket.Tier) int {
	if len(matches) == 0 {
		return 0
	}

	var lastHits, gpm, kda float64
	wins := 0
	for _, m := range matches {
		lastHits += float64(m.LastHits)
		gpm += float64(m.GoldPerMinute)
		deaths := m.Deaths
		if deaths < 1 {
			deaths = 1
		}
		kda += float64(m.Kills+m.Assists) / float64(deaths)
		if m.Win {
			wins++
		}
	}
	n := float64(len(matches))
	avgLastHits := lastHits / n
	avgGPM := gpm / n
	avgKDA := kda / n
	winRate := float64(wins) / n

	expected := bracket.Expected(tier)

	score := 0
	if avgLastHits > expected.LastHits*lastHitMultiplier {
		score += lastHitWeight
	}
	if avgGPM > expected.GoldPerMinute*gpmMultiplier {
		score += gpmWeight
	}
	if avgKDA > kdaThreshold {
		score += kdaWeight
	}
	if winRate > winRateThreshold {
		score += winRateWeight
	}

	if score > maxRisk {
		score = maxRisk
	}
	return score
}
