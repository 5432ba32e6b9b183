// internal/common/validation/schema_test.go
package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAnswers(t *testing.T) {
	tests := []struct {
		name            string
		raw             map[string]interface{}
		requireIndustry bool
		valid           bool
		field           string
	}{
		{"complete", map[string]interface{}{"industry": "saas", "fundingStage": "seed"}, true, true, ""},
		{"numbers allowed", map[string]interface{}{"teamSize": float64(2)}, false, true, ""},
		{"extra keys allowed", map[string]interface{}{"revenueModel": "subscription"}, false, true, ""},
		{"industry optional", map[string]interface{}{"fundingStage": "seed"}, false, true, ""},
		{"industry required", map[string]interface{}{"fundingStage": "seed"}, true, false, "industry"},
		{"empty industry", map[string]interface{}{"industry": ""}, false, false, "industry"},
		{"nested value", map[string]interface{}{"competition": map[string]interface{}{"level": "low"}}, false, false, "competition"},
		{"too long", map[string]interface{}{"productStage": strings.Repeat("x", MaxAnswerLength+1)}, false, false, "productStage"},
		{"nil", nil, false, false, "answers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateAnswers(tt.raw, tt.requireIndustry)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.field, res.Errors[0].Field)
				assert.Contains(t, res.Summary(), tt.field)
			}
		})
	}
}

func TestToAnswers(t *testing.T) {
	got := ToAnswers(map[string]interface{}{
		"industry": "saas",
		"teamSize": float64(2),
		"rounds":   1.5,
		"founders": 3,
	})
	assert.Equal(t, "saas", got.Industry())
	assert.Equal(t, "2", got.Get("teamSize"))
	assert.Equal(t, "1.5", got.Get("rounds"))
	assert.Equal(t, "3", got.Get("founders"))
}
