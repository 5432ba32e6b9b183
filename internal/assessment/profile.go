// internal/assessment/profile.go
package assessment

import (
	"errors"
	"fmt"
	"math"

	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
)

var ErrInvalidProfile = errors.New("INVALID_RISK_PROFILE")

const profileTolerance = 1e-9

// CheckProfile rejects a profile that could not have come from the scoring
// core: a score outside [0,1], an overall that is not the breakdown mean, or
// a tier that does not follow from the overall.
func CheckProfile(p models.RiskProfile) error {
	scores := map[string]float64{"overallScore": p.OverallScore}
	for k, v := range p.RiskBreakdown.AsMap() {
		scores[k] = v
	}
	for name, v := range scores {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidProfile, name, v)
		}
	}

	b := p.RiskBreakdown
	mean := (b.MarketRisk + b.FinancialRisk + b.ProductRisk + b.TeamRisk) / 4
	if math.Abs(mean-p.OverallScore) > profileTolerance {
		return fmt.Errorf("%w: overallScore %v does not match breakdown mean %v", ErrInvalidProfile, p.OverallScore, mean)
	}
	if want := scoring.ClassifyRiskLevel(p.OverallScore); p.RiskLevel != want {
		return fmt.Errorf("%w: riskLevel %q, overallScore %v implies %q", ErrInvalidProfile, p.RiskLevel, p.OverallScore, want)
	}
	return nil
}
