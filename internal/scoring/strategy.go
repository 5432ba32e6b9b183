// internal/scoring/strategy.go
package scoring

import (
	"context"
	"errors"
	"math"

	"venture-risk-workers/internal/models"
)

const (
	StrategyModel  = "model"
	StrategyRules  = "rules"
	StrategyRemote = "remote"
)

// MaxCategoryScore is the top of the raw per-category scale.
const MaxCategoryScore = 10.0

var (
	ErrScoringUnavailable = errors.New("SCORING_SERVICE_UNAVAILABLE")
	ErrModelShapeMismatch = errors.New("MODEL_SHAPE_MISMATCH")
	ErrModelUnavailable   = errors.New("MODEL_UNAVAILABLE")
)

// CategoryScores are raw per-category risk scores on the [0,10] scale.
type CategoryScores struct {
	Financial float64 `json:"financial"`
	Market    float64 `json:"market"`
	Team      float64 `json:"team"`
	Product   float64 `json:"product"`
}

// Sum of the four category scores.
func (s CategoryScores) Sum() float64 {
	return s.Financial + s.Market + s.Team + s.Product
}

func (s CategoryScores) clamped() CategoryScores {
	return CategoryScores{
		Financial: clamp(s.Financial, 0, MaxCategoryScore),
		Market:    clamp(s.Market, 0, MaxCategoryScore),
		Team:      clamp(s.Team, 0, MaxCategoryScore),
		Product:   clamp(s.Product, 0, MaxCategoryScore),
	}
}

// Scorer turns questionnaire answers into raw category scores. Implementations
// are deterministic for the same answers and the same loaded state.
type Scorer interface {
	Name() string
	Score(ctx context.Context, answers models.QuestionnaireAnswers) (CategoryScores, error)
}

// fromFractions maps classifier outputs in [0,1] onto the [0,10] scale,
// rounded to the nearest integer.
func fromFractions(financial, market, team, product float64) CategoryScores {
	scale := func(v float64) float64 {
		return math.Round(clamp(v, 0, 1) * MaxCategoryScore)
	}
	return CategoryScores{
		Financial: scale(financial),
		Market:    scale(market),
		Team:      scale(team),
		Product:   scale(product),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
