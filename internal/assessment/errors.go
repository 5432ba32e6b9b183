// internal/assessment/errors.go
package assessment

import (
	"errors"
	"fmt"

	apperrors "venture-risk-workers/internal/common/errors"
	"venture-risk-workers/internal/common/validation"
	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
)

var ErrInvalidAnswers = errors.New("INVALID_ANSWERS")

// ParseAnswers validates raw job answers and flattens them. industry is
// required when the answers will be stored or benchmarked.
func ParseAnswers(raw map[string]interface{}, requireIndustry bool) (models.QuestionnaireAnswers, error) {
	result := validation.ValidateAnswers(raw, requireIndustry)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAnswers, result.Summary())
	}
	return validation.ToAnswers(raw), nil
}

// RequireUserID rejects an empty user id as invalid input.
func RequireUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidAnswers)
	}
	return nil
}

// Classify maps pipeline errors onto the job error taxonomy.
func Classify(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case errors.Is(err, ErrInvalidAnswers):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, scoring.ErrScoringUnavailable):
		return apperrors.NewScoringUnavailableError(err)
	case errors.Is(err, scoring.ErrModelShapeMismatch):
		return apperrors.NewModelShapeMismatchError(err)
	case errors.Is(err, ErrRecordInsert):
		return apperrors.NewAssessmentInsertFailedError(err)
	case errors.Is(err, ErrHistoryLookup):
		return apperrors.NewHistoryLookupFailedError(err)
	case errors.Is(err, ErrBenchmarkQuery):
		return apperrors.NewBenchmarkQueryFailedError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}
