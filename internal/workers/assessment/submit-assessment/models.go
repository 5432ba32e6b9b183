// internal/workers/assessment/submit-assessment/models.go
package submitassessment

import "venture-risk-workers/internal/models"

type Input struct {
	UserID  string                 `json:"userId"`
	Answers map[string]interface{} `json:"answers"`
}

// Output is the full submission response. Benchmark is null when the
// industry lookup failed.
type Output struct {
	AssessmentID string                   `json:"assessmentId"`
	CreatedAt    string                   `json:"createdAt"`
	Current      models.RiskProfile       `json:"current"`
	Comparison   models.ComparisonMessage `json:"comparison"`
	Benchmark    *models.BenchmarkView    `json:"benchmark"`
}
