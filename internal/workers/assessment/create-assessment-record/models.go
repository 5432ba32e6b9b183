// internal/workers/assessment/create-assessment-record/models.go
package createassessmentrecord

import "venture-risk-workers/internal/models"

// Input carries the raw answers only. The stored profile is always scored
// from them; a riskProfile variable on the job is ignored.
type Input struct {
	UserID  string                 `json:"userId"`
	Answers map[string]interface{} `json:"answers"`
}

type Output struct {
	AssessmentID string             `json:"assessmentId"`
	CreatedAt    string             `json:"createdAt"` // ISO 8601
	RiskProfile  models.RiskProfile `json:"riskProfile"`
}
