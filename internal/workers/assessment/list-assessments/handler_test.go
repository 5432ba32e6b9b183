// internal/workers/assessment/list-assessments/handler_test.go
package listassessments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-risk-workers/internal/assessment"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
	"venture-risk-workers/internal/store"
)

var recordColumns = []string{"id", "user_id", "answers", "risk_profile", "created_at"}

func setupHandler(t *testing.T, db *sql.DB, cfg *Config) *Handler {
	t.Helper()
	st := store.NewAssessmentStore(db)
	engine := scoring.NewEngineWithScorer(scoring.NewRuleScorer(scoring.DefaultRuleTables()), nil)
	svc := assessment.NewService(engine, st, st, assessment.Options{MinDisclosureCount: 2}, logger.NewTestLogger(t))
	return NewHandler(cfg, svc, logger.NewTestLogger(t))
}

func TestHandler_Execute_NewestFirstWithTrend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments\s+WHERE user_id = \$1\s+ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("user-1", 50).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("r2", "user-1", []byte(`{"industry":"saas"}`), []byte(`{"overallScore":0.3,"riskLevel":"Low"}`), time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)).
			AddRow("r1", "user-1", []byte(`{"industry":"saas"}`), []byte(`{"overallScore":0.7,"riskLevel":"High"}`), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	h := setupHandler(t, db, nil)
	out, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	require.Equal(t, 2, out.Count)
	assert.Equal(t, "r2", out.Assessments[0].ID)
	assert.Equal(t, "saas", out.Assessments[0].Answers.Industry())

	require.Len(t, out.Trend, 2)
	assert.Equal(t, "r1", out.Trend[0].AssessmentID)
	assert.Equal(t, models.RiskLevelHigh, out.Trend[0].RiskLevel)
	assert.Equal(t, "2026-05-02T00:00:00Z", out.Trend[1].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_LimitIsCapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WithArgs("user-1", 10).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	h := setupHandler(t, db, &Config{Timeout: time.Second, DefaultLimit: 5, MaxLimit: 10})
	out, err := h.Execute(context.Background(), &Input{UserID: "user-1", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Assessments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WillReturnError(errors.New("too many connections"))

	h := setupHandler(t, db, nil)
	_, err = h.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.True(t, errors.Is(err, assessment.ErrHistoryLookup))
}

func TestHandler_Execute_RequiresUser(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := setupHandler(t, db, nil)
	_, err = h.Execute(context.Background(), &Input{})
	assert.True(t, errors.Is(err, assessment.ErrInvalidAnswers))
}
