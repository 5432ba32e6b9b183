// internal/scoring/profile.go
package scoring

import (
	"venture-risk-workers/internal/models"
)

// Risk tier thresholds on the overall fraction. Both comparisons are strict.
const (
	HighRiskThreshold   = 0.66
	MediumRiskThreshold = 0.33
)

// suggestionRule fires when the raw category score exceeds Threshold.
type suggestionRule struct {
	Category  string
	Threshold float64
	Text      string
	score     func(CategoryScores) float64
}

// Evaluated in this order; the output order follows it.
var suggestionRules = []suggestionRule{
	{
		Category:  models.CategoryFinancial,
		Threshold: 7,
		Text:      "High financial risk detected. Focus on developing a strong MVP to demonstrate traction.",
		score:     func(s CategoryScores) float64 { return s.Financial },
	},
	{
		Category:  models.CategoryMarket,
		Threshold: 7,
		Text:      "Entering a highly competitive market requires significant differentiation. Clearly articulate your Unique Selling Proposition (USP).",
		score:     func(s CategoryScores) float64 { return s.Market },
	},
	{
		Category:  models.CategoryTeam,
		Threshold: 6,
		Text:      "Solo founders face immense pressure. Consider finding a co-founder with complementary skills.",
		score:     func(s CategoryScores) float64 { return s.Team },
	},
	{
		Category:  models.CategoryProduct,
		Threshold: 7,
		Text:      "The 'idea' stage is the highest risk. Prioritize building a functional MVP to gather real-world user feedback.",
		score:     func(s CategoryScores) float64 { return s.Product },
	},
}

// DefaultResourceKeys is the category to deep-link mapping used when the
// deployment configures none.
func DefaultResourceKeys() map[string]string {
	return map[string]string{
		models.CategoryMarket:  "usp",
		models.CategoryProduct: "founder-agreement",
	}
}

// ProfileBuilder normalizes raw category scores into a RiskProfile.
type ProfileBuilder struct {
	resourceKeys map[string]string
}

func NewProfileBuilder(resourceKeys map[string]string) *ProfileBuilder {
	keys := make(map[string]string, len(resourceKeys))
	for k, v := range resourceKeys {
		// the co-founder suggestion never links out
		if k == models.CategoryTeam {
			continue
		}
		keys[k] = v
	}
	return &ProfileBuilder{resourceKeys: keys}
}

// OverallScore is the sum of the four raw scores over the maximum of 40.
func OverallScore(s CategoryScores) float64 {
	return s.Sum() / (4 * MaxCategoryScore)
}

// ClassifyRiskLevel maps an overall fraction onto Low/Medium/High.
func ClassifyRiskLevel(overall float64) models.RiskLevel {
	switch {
	case overall > HighRiskThreshold:
		return models.RiskLevelHigh
	case overall > MediumRiskThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func (b *ProfileBuilder) Suggestions(s CategoryScores) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(suggestionRules))
	for _, rule := range suggestionRules {
		if rule.score(s) > rule.Threshold {
			out = append(out, models.Suggestion{
				Text:        rule.Text,
				ResourceKey: b.resourceKeys[rule.Category],
			})
		}
	}
	return out
}

func (b *ProfileBuilder) Build(s CategoryScores, strategy string) models.RiskProfile {
	s = s.clamped()
	overall := OverallScore(s)
	return models.RiskProfile{
		OverallScore: overall,
		RiskLevel:    ClassifyRiskLevel(overall),
		RiskBreakdown: models.RiskBreakdown{
			MarketRisk:    s.Market / MaxCategoryScore,
			FinancialRisk: s.Financial / MaxCategoryScore,
			ProductRisk:   s.Product / MaxCategoryScore,
			TeamRisk:      s.Team / MaxCategoryScore,
		},
		Suggestions: b.Suggestions(s),
		Strategy:    strategy,
	}
}
