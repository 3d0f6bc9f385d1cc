package bracket

// Tier is a rank-locked skill bracket. Team tournaments subdivide their
// capacity by tier; solo tournaments run a single shared pool.
type Tier string

const (
	TierHeraldGuardian Tier = "herald_guardian"
	TierCrusaderArchon Tier = "crusader_archon"
	TierLegendAncient  Tier = "legend_ancient"
	TierDivineImmortal Tier = "divine_immortal"
)

// Tiers lists all brackets in ascending skill order.
var Tiers = []Tier{
	TierHeraldGuardian,
	TierCrusaderArchon,
	TierLegendAncient,
	TierDivineImmortal,
}

// Rank tier cutoffs. The upper bracket catches everything above the last
// cutoff, including leaderboard ranks.
const (
	heraldGuardianMax = 25
	crusaderArchonMax = 45
	legendAncientMax  = 65
)

// Classify maps a Dota 2 rank tier to its bracket. Pure and stable: the
// same rank tier always yields the same bracket, so a team's locked-in
// bracket cannot drift if a member's rank updates later.
func Classify(rankTier int) Tier {
	switch {
	case rankTier <= heraldGuardianMax:
		return TierHeraldGuardian
	case rankTier <= crusaderArchonMax:
		return TierCrusaderArchon
	case rankTier <= legendAncientMax:
		return TierLegendAncient
	default:
		return TierDivineImmortal
	}
}

// Valid reports whether t is one of the known brackets.
func Valid(t Tier) bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable bracket name.
func Label(t Tier) string {
	switch t {
	case TierHeraldGuardian:
		return "Herald – Guardian"
	case TierCrusaderArchon:
		return "Crusader – Archon"
	case TierLegendAncient:
		return "Legend – Ancient"
	case TierDivineImmortal:
		return "Divine – Immortal"
	default:
		return string(t)
	}
}

// Baseline holds the per-bracket performance expectations used by the
// smurf risk heuristic. Higher brackets expect better farm.
type Baseline struct {
	LastHits      float64
	GoldPerMinute float64
}

var baselines = map[Tier]Baseline{
	TierHeraldGuardian: {LastHits: 40, GoldPerMinute: 350},
	TierCrusaderArchon: {LastHits: 60, GoldPerMinute: 450},
	TierLegendAncient:  {LastHits: 80, GoldPerMinute: 550},
	TierDivineImmortal: {LastHits: 100, GoldPerMinute: 650},
}

// Expected returns the performance baseline for a bracket. Unknown tiers
// fall back to the highest bracket's baseline so the risk heuristic never
// over-flags on bad input.
func Expected(t Tier) Baseline {
	if b, ok := baselines[t]; ok {
		return b
	}
	return baselines[TierDivineImmortal]
}
