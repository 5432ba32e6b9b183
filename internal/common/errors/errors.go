// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParse                     ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidAnswers            ErrorCode = "INVALID_ANSWERS"
	ErrCodeScoringServiceUnavailable ErrorCode = "SCORING_SERVICE_UNAVAILABLE"
	ErrCodeModelShapeMismatch        ErrorCode = "MODEL_SHAPE_MISMATCH"

	ErrCodeAssessmentInsertFailed ErrorCode = "ASSESSMENT_INSERT_FAILED"
	ErrCodeHistoryLookupFailed    ErrorCode = "HISTORY_LOOKUP_FAILED"
	ErrCodeBenchmarkQueryFailed   ErrorCode = "BENCHMARK_QUERY_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// UnavailableMessage is the single caller-facing scoring failure.
const UnavailableMessage = "Analysis service is currently unavailable"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParse, "Job variables could not be parsed", err.Error(), false)
}

// NewInvalidAnswersError creates a non-retryable questionnaire validation error.
func NewInvalidAnswersError(details string) *StandardError {
	return newError(ErrCodeInvalidAnswers, "Questionnaire answers failed validation", details, false)
}

// NewScoringUnavailableError is returned when the external model service
// cannot be reached or answers badly. It is retryable.
func NewScoringUnavailableError(err error) *StandardError {
	return newError(ErrCodeScoringServiceUnavailable, UnavailableMessage, err.Error(), true)
}

// NewModelShapeMismatchError is a startup configuration error.
func NewModelShapeMismatchError(err error) *StandardError {
	return newError(ErrCodeModelShapeMismatch, "Classifier input shape does not match the answer encoder", err.Error(), false)
}

func NewAssessmentInsertFailedError(err error) *StandardError {
	return newError(ErrCodeAssessmentInsertFailed, "Assessment record could not be stored", err.Error(), true)
}

func NewHistoryLookupFailedError(err error) *StandardError {
	return newError(ErrCodeHistoryLookupFailed, "Previous assessment lookup failed", err.Error(), true)
}

func NewBenchmarkQueryFailedError(err error) *StandardError {
	return newError(ErrCodeBenchmarkQueryFailed, "Industry benchmark query failed", err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParse:                     "PARSE_ERROR",
	ErrCodeInvalidAnswers:            "INVALID_ANSWERS",
	ErrCodeScoringServiceUnavailable: "SCORING_SERVICE_UNAVAILABLE",
	ErrCodeModelShapeMismatch:        "MODEL_SHAPE_MISMATCH",
	ErrCodeAssessmentInsertFailed:    "ASSESSMENT_INSERT_FAILED",
	ErrCodeHistoryLookupFailed:       "HISTORY_LOOKUP_FAILED",
	ErrCodeBenchmarkQueryFailed:      "BENCHMARK_QUERY_FAILED",
	ErrCodeInternal:                  "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeScoringServiceUnavailable:
		return 2
	case ErrCodeAssessmentInsertFailed, ErrCodeHistoryLookupFailed, ErrCodeBenchmarkQueryFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	code, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		code = string(stdErr.Code)
	}
	return &BPMNError{
		Code:           code,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.HasPrefix(c, "SCORING_"), strings.HasPrefix(c, "MODEL_"):
		return "scoring"
	case strings.HasPrefix(c, "ASSESSMENT_"), strings.HasPrefix(c, "HISTORY_"), strings.HasPrefix(c, "BENCHMARK_"):
		return "data"
	case code == ErrCodeInvalidAnswers || code == ErrCodeParse:
		return "validation"
	default:
		return "internal"
	}
}
