// internal/workers/assessment/compare-history/models.go
package comparehistory

import "venture-risk-workers/internal/models"

type Input struct {
	UserID      string              `json:"userId"`
	RiskProfile *models.RiskProfile `json:"riskProfile"`
}

type Output struct {
	Comparison models.ComparisonMessage `json:"comparison"`
}
