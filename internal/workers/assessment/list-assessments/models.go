// internal/workers/assessment/list-assessments/models.go
package listassessments

import "venture-risk-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit,omitempty"`
}

// TrendPoint is one chart sample, oldest first.
type TrendPoint struct {
	AssessmentID string           `json:"assessmentId"`
	CreatedAt    string           `json:"createdAt"`
	OverallScore float64          `json:"overallScore"`
	RiskLevel    models.RiskLevel `json:"riskLevel"`
}

type Output struct {
	Assessments []models.AssessmentRecord `json:"assessments"` // newest first
	Trend       []TrendPoint              `json:"trend"`
	Count       int                       `json:"count"`
}
