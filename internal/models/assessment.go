// internal/models/assessment.go
package models

import "time"

// Risk categories. The set is fixed; riskBreakdown always carries all four.
const (
	CategoryFinancial = "financial"
	CategoryMarket    = "market"
	CategoryTeam      = "team"
	CategoryProduct   = "product"
)

// Breakdown keys as stored and returned to callers.
const (
	BreakdownMarket    = "marketRisk"
	BreakdownFinancial = "financialRisk"
	BreakdownProduct   = "productRisk"
	BreakdownTeam      = "teamRisk"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// Questionnaire keys consumed by the scoring core.
const (
	AnswerIndustry     = "industry"
	AnswerFundingStage = "fundingStage"
	AnswerCompetition  = "competition"
	AnswerTeamSize     = "teamSize"
	AnswerProductStage = "productStage"
)

// QuestionnaireAnswers maps a question key to the selected option value.
type QuestionnaireAnswers map[string]string

var answerAliases = map[string]map[string]string{
	AnswerTeamSize: {"2-cofounders": "2"},
}

// Get returns the answer for key, or "" when the question was not answered.
func (a QuestionnaireAnswers) Get(key string) string {
	if a == nil {
		return ""
	}
	return a[key]
}

// Industry returns the benchmarking segment of the answers.
func (a QuestionnaireAnswers) Industry() string {
	return a.Get(AnswerIndustry)
}

// Canonical returns a copy with known option aliases rewritten to their
// canonical values. The receiver is never modified.
func (a QuestionnaireAnswers) Canonical() QuestionnaireAnswers {
	out := make(QuestionnaireAnswers, len(a))
	for k, v := range a {
		if aliases, ok := answerAliases[k]; ok {
			if canonical, ok := aliases[v]; ok {
				v = canonical
			}
		}
		out[k] = v
	}
	return out
}

type Suggestion struct {
	Text        string `json:"text"`
	ResourceKey string `json:"resourceKey,omitempty"`
}

type RiskBreakdown struct {
	MarketRisk    float64 `json:"marketRisk"`
	FinancialRisk float64 `json:"financialRisk"`
	ProductRisk   float64 `json:"productRisk"`
	TeamRisk      float64 `json:"teamRisk"`
}

// AsMap renders the breakdown under its four fixed keys.
func (b RiskBreakdown) AsMap() map[string]float64 {
	return map[string]float64{
		BreakdownMarket:    b.MarketRisk,
		BreakdownFinancial: b.FinancialRisk,
		BreakdownProduct:   b.ProductRisk,
		BreakdownTeam:      b.TeamRisk,
	}
}

type RiskProfile struct {
	OverallScore  float64       `json:"overallScore"`
	RiskLevel     RiskLevel     `json:"riskLevel"`
	RiskBreakdown RiskBreakdown `json:"riskBreakdown"`
	Suggestions   []Suggestion  `json:"suggestions"`
	Strategy      string        `json:"strategy,omitempty"`
}

// Percentage renders OverallScore on the 0-100 scale.
func (p RiskProfile) Percentage() float64 {
	return p.OverallScore * 100
}

type AssessmentRecord struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	Answers     QuestionnaireAnswers `json:"answers"`
	RiskProfile RiskProfile          `json:"riskProfile"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type BenchmarkSummary struct {
	Industry     string  `json:"industry"`
	Count        int     `json:"count"`
	AvgOverall   float64 `json:"avgOverall"`
	AvgMarket    float64 `json:"avgMarket"`
	AvgFinancial float64 `json:"avgFinancial"`
	AvgProduct   float64 `json:"avgProduct"`
	AvgTeam      float64 `json:"avgTeam"`
}

type BenchmarkStatus string

const (
	BenchmarkAvailable  BenchmarkStatus = "available"
	BenchmarkSuppressed BenchmarkStatus = "suppressed"
	BenchmarkNoData     BenchmarkStatus = "no_data"
)

// BenchmarkView is what callers may forward. Summary is set only when
// Status is BenchmarkAvailable.
type BenchmarkView struct {
	Industry string            `json:"industry"`
	Status   BenchmarkStatus   `json:"status"`
	Summary  *BenchmarkSummary `json:"summary,omitempty"`
}

type Trend string

const (
	TrendFirst     Trend = "first"
	TrendDecreased Trend = "decreased"
	TrendIncreased Trend = "increased"
	TrendStable    Trend = "stable"
)

type ComparisonMessage struct {
	Trend            Trend   `json:"trend"`
	Message          string  `json:"message"`
	Difference       float64 `json:"difference"`
	PercentageChange int     `json:"percentageChange"`
}
