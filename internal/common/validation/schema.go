package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"venture-risk-workers/internal/models"
)

// MaxAnswerLength bounds a single answer value.
const MaxAnswerLength = 200

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins every error into one line for job failure details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

var answerValue = map[string]interface{}{
	"type":      []interface{}{"string", "number"},
	"maxLength": MaxAnswerLength,
}

func answersSchema(requireIndustry bool) map[string]interface{} {
	schema := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": answerValue,
		"properties": map[string]interface{}{
			models.AnswerIndustry: map[string]interface{}{
				"type":      "string",
				"minLength": 1,
				"maxLength": MaxAnswerLength,
			},
		},
	}
	if requireIndustry {
		schema["required"] = []interface{}{models.AnswerIndustry}
	}
	return schema
}

// ValidateAnswers checks the raw questionnaire map from job variables.
// Values must be strings or numbers; unknown keys are allowed and ignored by
// scoring. industry is required only when the record will be benchmarked.
func ValidateAnswers(raw map[string]interface{}, requireIndustry bool) *ValidationResult {
	if raw == nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "answers",
			Message: "answers are required",
			Code:    "REQUIRED_FIELD_MISSING",
		}}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(answersSchema(requireIndustry)),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "answers",
			Message: err.Error(),
			Code:    "SCHEMA_ERROR",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if p, ok := desc.Details()["property"].(string); ok {
				field = p
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// ToAnswers flattens validated raw answers into string values. Numbers are
// rendered without a trailing fraction so 2 and "2" select the same option.
func ToAnswers(raw map[string]interface{}) models.QuestionnaireAnswers {
	out := make(models.QuestionnaireAnswers, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			out[k] = strconv.Itoa(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
