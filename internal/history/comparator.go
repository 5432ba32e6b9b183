// internal/history/comparator.go
package history

import (
	"fmt"
	"math"

	"venture-risk-workers/internal/models"
)

// StableBand is the absolute overall-score change (half a percentage point)
// inside which a profile is reported as unchanged.
const StableBand = 0.005

const (
	firstMessage     = "This is your first assessment. We will track your progress from now on!"
	decreasedMessage = "Great progress! Your overall risk has decreased by approximately %d%% since your last assessment."
	increasedMessage = "Your overall risk has increased by approximately %d%%. Review the suggestions to identify areas for improvement."
	stableMessage    = "Your overall risk profile has remained stable. Continue executing your plan and reassess soon."
)

// Compare classifies the change between the previous profile and the current
// one. A nil previous profile yields the first-assessment message.
func Compare(current models.RiskProfile, previous *models.RiskProfile) models.ComparisonMessage {
	if previous == nil {
		return models.ComparisonMessage{Trend: models.TrendFirst, Message: firstMessage}
	}

	diff := current.OverallScore - previous.OverallScore
	pct := int(math.Abs(math.Round(diff * 100)))

	switch {
	case diff < -StableBand:
		return models.ComparisonMessage{
			Trend:            models.TrendDecreased,
			Message:          fmt.Sprintf(decreasedMessage, pct),
			Difference:       diff,
			PercentageChange: pct,
		}
	case diff > StableBand:
		return models.ComparisonMessage{
			Trend:            models.TrendIncreased,
			Message:          fmt.Sprintf(increasedMessage, pct),
			Difference:       diff,
			PercentageChange: pct,
		}
	default:
		return models.ComparisonMessage{
			Trend:            models.TrendStable,
			Message:          stableMessage,
			Difference:       diff,
			PercentageChange: pct,
		}
	}
}

// CompareRecord is Compare against a stored record, if any.
func CompareRecord(current models.RiskProfile, previous *models.AssessmentRecord) models.ComparisonMessage {
	if previous == nil {
		return Compare(current, nil)
	}
	return Compare(current, &previous.RiskProfile)
}
