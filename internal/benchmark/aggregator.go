// internal/benchmark/aggregator.go
package benchmark

import (
	"venture-risk-workers/internal/common/metrics"
	"venture-risk-workers/internal/models"
)

// MinDisclosureCount is the default floor: a summary is only disclosed when
// strictly more records than this contributed to it.
const MinDisclosureCount = 2

// Aggregate averages the profiles of every record whose industry matches.
// It returns nil when no record matches. Small counts are NOT filtered here;
// callers must pass the result through Disclose.
func Aggregate(industry string, records []models.AssessmentRecord) *models.BenchmarkSummary {
	var (
		count                                  int
		overall, market, financial, prod, team float64
	)
	for _, r := range records {
		if r.Answers.Industry() != industry {
			continue
		}
		count++
		p := r.RiskProfile
		overall += p.OverallScore
		market += p.RiskBreakdown.MarketRisk
		financial += p.RiskBreakdown.FinancialRisk
		prod += p.RiskBreakdown.ProductRisk
		team += p.RiskBreakdown.TeamRisk
	}
	if count == 0 {
		return nil
	}

	n := float64(count)
	return &models.BenchmarkSummary{
		Industry:     industry,
		Count:        count,
		AvgOverall:   overall / n,
		AvgMarket:    market / n,
		AvgFinancial: financial / n,
		AvgProduct:   prod / n,
		AvgTeam:      team / n,
	}
}

// Disclose applies the privacy gate. Absent data and suppressed data are
// distinct statuses; the raw summary never leaves a suppressed view.
func Disclose(industry string, summary *models.BenchmarkSummary, minCount int) models.BenchmarkView {
	var view models.BenchmarkView
	switch {
	case summary == nil || summary.Count == 0:
		view = models.BenchmarkView{Industry: industry, Status: models.BenchmarkNoData}
	case summary.Count <= minCount:
		view = models.BenchmarkView{Industry: industry, Status: models.BenchmarkSuppressed}
	default:
		s := *summary
		view = models.BenchmarkView{Industry: industry, Status: models.BenchmarkAvailable, Summary: &s}
	}
	metrics.BenchmarkDisclosures.WithLabelValues(string(view.Status)).Inc()
	return view
}
