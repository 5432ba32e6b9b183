// internal/scoring/rules.go
package scoring

import (
	"context"

	"venture-risk-workers/internal/models"
)

// NeutralScore is used for any answer missing from a lookup table.
const NeutralScore = 5.0

// RuleTables maps each category's driving answer value to a raw score.
type RuleTables struct {
	Financial map[string]float64
	Market    map[string]float64
	Team      map[string]float64
	Product   map[string]float64
}

// DefaultRuleTables holds the production lookup tables.
//
// The team table is intentionally not monotonic in headcount: solo=8, 2=3,
// 3+=5. It is pending product-owner confirmation and must not be "fixed"
// here.
func DefaultRuleTables() RuleTables {
	return RuleTables{
		Financial: map[string]float64{"pre-seed": 10, "seed": 6, "series-a": 2},
		Market:    map[string]float64{"low": 2, "medium": 6, "high": 10},
		Team:      map[string]float64{"solo": 8, "2": 3, "3+": 5},
		Product:   map[string]float64{"idea": 9, "mvp": 5, "growth": 2},
	}
}

// RuleScorer is the deterministic lookup-table strategy. It holds no mutable
// state after construction.
type RuleScorer struct {
	tables RuleTables
}

func NewRuleScorer(tables RuleTables) *RuleScorer {
	return &RuleScorer{tables: tables}
}

func (r *RuleScorer) Name() string {
	return StrategyRules
}

func (r *RuleScorer) Score(_ context.Context, answers models.QuestionnaireAnswers) (CategoryScores, error) {
	answers = answers.Canonical()
	scores := CategoryScores{
		Financial: lookup(r.tables.Financial, answers.Get(models.AnswerFundingStage)),
		Market:    lookup(r.tables.Market, answers.Get(models.AnswerCompetition)),
		Team:      lookup(r.tables.Team, answers.Get(models.AnswerTeamSize)),
		Product:   lookup(r.tables.Product, answers.Get(models.AnswerProductStage)),
	}
	return scores.clamped(), nil
}

func lookup(table map[string]float64, value string) float64 {
	if score, ok := table[value]; ok {
		return score
	}
	return NeutralScore
}
