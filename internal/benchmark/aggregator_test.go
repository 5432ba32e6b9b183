// internal/benchmark/aggregator_test.go
package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-risk-workers/internal/models"
)

func record(industry string, overall, market float64) models.AssessmentRecord {
	return models.AssessmentRecord{
		Answers: models.QuestionnaireAnswers{models.AnswerIndustry: industry},
		RiskProfile: models.RiskProfile{
			OverallScore:  overall,
			RiskBreakdown: models.RiskBreakdown{MarketRisk: market},
		},
	}
}

func TestAggregate(t *testing.T) {
	records := []models.AssessmentRecord{
		record("saas", 0.2, 0.1),
		record("saas", 0.4, 0.3),
		record("fintech", 0.9, 0.9),
		record("saas", 0.6, 0.5),
	}

	s := Aggregate("saas", records)
	require.NotNil(t, s)
	assert.Equal(t, "saas", s.Industry)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.4, s.AvgOverall, 1e-9)
	assert.InDelta(t, 0.3, s.AvgMarket, 1e-9)
	assert.Zero(t, s.AvgTeam)

	assert.Nil(t, Aggregate("healthtech", records))
	assert.Nil(t, Aggregate("saas", nil))
}

func TestDisclose(t *testing.T) {
	summary := func(count int) *models.BenchmarkSummary {
		return &models.BenchmarkSummary{Industry: "saas", Count: count, AvgOverall: 0.5}
	}

	tests := []struct {
		name    string
		summary *models.BenchmarkSummary
		min     int
		status  models.BenchmarkStatus
	}{
		{"nothing", nil, MinDisclosureCount, models.BenchmarkNoData},
		{"empty summary", summary(0), MinDisclosureCount, models.BenchmarkNoData},
		{"one record", summary(1), MinDisclosureCount, models.BenchmarkSuppressed},
		{"at floor", summary(2), MinDisclosureCount, models.BenchmarkSuppressed},
		{"above floor", summary(3), MinDisclosureCount, models.BenchmarkAvailable},
		{"custom floor", summary(3), 5, models.BenchmarkSuppressed},
		{"floor zero", summary(1), 0, models.BenchmarkAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Disclose("saas", tt.summary, tt.min)
			assert.Equal(t, "saas", view.Industry)
			assert.Equal(t, tt.status, view.Status)
			if tt.status == models.BenchmarkAvailable {
				require.NotNil(t, view.Summary)
				assert.Equal(t, tt.summary.Count, view.Summary.Count)
			} else {
				assert.Nil(t, view.Summary)
			}
		})
	}
}

func TestDisclose_CopiesSummary(t *testing.T) {
	s := &models.BenchmarkSummary{Industry: "saas", Count: 4, AvgOverall: 0.5}
	view := Disclose("saas", s, MinDisclosureCount)
	s.AvgOverall = 0.9
	assert.InDelta(t, 0.5, view.Summary.AvgOverall, 1e-9)
}
