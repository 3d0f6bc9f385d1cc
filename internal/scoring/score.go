package scoring

import "sort"

// topMatchCount is how many of a player's best matches count toward the
// leaderboard score.
const topMatchCount = 3

// MatchStats is one externally reported match as seen by the scoring
// functions. Immutable once fetched from the provider.
type MatchStats struct {
	MatchID       int64 `json:"match_id"`
	StartTime     int64 `json:"start_time"`
	HeroID        int   `json:"hero_id"`
	Kills         int   `json:"kills"`
	Deaths        int   `json:"deaths"`
	Assists       int   `json:"assists"`
	LastHits      int   `json:"last_hits"`
	GoldPerMinute int   `json:"gpm"`
	XPPerMinute   int   `json:"xpm"`
	Win           bool  `json:"win"`
}

// MatchScore is a scored match kept for leaderboard display.
type MatchScore struct {
	MatchID       int64 `json:"match_id"`
	Score         int   `json:"score"`
	Kills         int   `json:"kills"`
	Deaths        int   `json:"deaths"`
	Assists       int   `json:"assists"`
	LastHits      int   `json:"last_hits"`
	GoldPerMinute int   `json:"gpm"`
	XPPerMinute   int   `json:"xpm"`
	Win           bool  `json:"win"`
	StartTime     int64 `json:"start_time"`
	HeroID        int   `json:"hero_id"`
}

// Aggregate is the recomputable leaderboard result for one player.
type Aggregate struct {
	TotalScore    int
	TopMatches    []MatchScore
	MatchesPlayed int
}

// ScoreMatch converts one match into leaderboard points:
// 3 per kill, 1 per assist, -2 per death, 1 per 10 last hits,
// 1 per 50 GPM, 1 per 50 XPM, 20 for a win. Never negative.
func ScoreMatch(m MatchStats) MatchScore {
	score := m.Kills*3 +
		m.Assists -
		m.Deaths*2 +
		m.LastHits/10 +
		m.GoldPerMinute/50 +
		m.XPPerMinute/50
	if m.Win {
		score += 20
	}
	if score < 0 {
		score = 0
	}

	return MatchScore{
		MatchID:       m.MatchID,
		Score:         score,
		Kills:         m.Kills,
		Deaths:        m.Deaths,
		Assists:       m.Assists,
		LastHits:      m.LastHits,
		GoldPerMinute: m.GoldPerMinute,
		XPPerMinute:   m.XPPerMinute,
		Win:           m.Win,
		StartTime:     m.StartTime,
		HeroID:        m.HeroID,
	}
}

// AggregateScore scores every match that started at or after windowStart,
// keeps the top three by score and sums them. MatchesPlayed counts all
// eligible matches, not just the selected ones. Pure recomputation over
// immutable inputs: safe to re-run arbitrarily often.
func AggregateScore(matches []MatchStats, windowStart int64) Aggregate {
	var eligible []MatchStats
	for _, m := range matches {
		if m.StartTime >= windowStart {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return Aggregate{}
	}

	scored := make([]MatchScore, 0, len(eligible))
	for _, m := range eligible {
		scored = append(scored, ScoreMatch(m))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := scored
	if len(top) > topMatchCount {
		top = top[:topMatchCount]
	}
	total := 0
	for _, m := range top {
		total += m.Score
	}

	return Aggregate{
		TotalScore:    total,
		TopMatches:    top,
		MatchesPlayed: len(eligible),
	}
}
