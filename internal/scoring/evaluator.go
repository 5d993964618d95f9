package scoring

import "github.com/Adahandles/ledgertrace/internal/entity"

// Score bounds. Rule points may sum past MaxScore; the final score is
// clamped once, after all rules have been evaluated.
const (
	MinScore = 0
	MaxScore = 100
)

// Risk tiers, derived purely from the numeric score.
const (
	TierMinimal  = "Minimal"
	TierLow      = "Low"
	TierMedium   = "Medium"
	TierHigh     = "High"
	TierCritical = "Critical"
)

// Result holds the evaluator output for one entity.
type Result struct {
	Score     int      `json:"score"`
	Tier      string   `json:"tier"`
	Anomalies []string `json:"anomalies"`
}

// Evaluate applies every rule in table order and sums the points of
// those whose predicate holds. Missing signal sub-records simply make
// the corresponding predicates false; evaluation never fails.
func Evaluate(in *entity.Input, sig *entity.SignalBundle) Result {
	if sig == nil {
		sig = &entity.SignalBundle{}
	}

	score := 0
	anomalies := make([]string, 0, len(Rules))
	for _, rule := range Rules {
		if rule.Predicate(in, sig) {
			score += rule.Points
			anomalies = append(anomalies, rule.Message)
		}
	}

	return Result{
		Score:     Clamp(score),
		Tier:      Tier(Clamp(score)),
		Anomalies: anomalies,
	}
}

// Clamp bounds a raw point sum to [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Tier maps a clamped score to its risk tier. Thresholds are evaluated
// highest first with >= semantics: 75 is Critical, 74 is High.
func Tier(score int) string {
	switch {
	case score >= 75:
		return TierCritical
	case score >= 50:
		return TierHigh
	case score >= 25:
		return TierMedium
	case score >= 10:
		return TierLow
	default:
		return TierMinimal
	}
}
