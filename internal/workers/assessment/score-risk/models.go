// internal/workers/assessment/score-risk/models.go
package scorerisk

import "venture-risk-workers/internal/models"

type Input struct {
	Answers map[string]interface{} `json:"answers"`
}

type Output struct {
	RiskProfile       models.RiskProfile `json:"riskProfile"`
	OverallPercentage float64            `json:"overallPercentage"`
}
