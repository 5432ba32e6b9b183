// internal/workers/assessment/benchmark-industry/handler_test.go
package benchmarkindustry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-risk-workers/internal/assessment"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
	"venture-risk-workers/internal/store"
)

var recordColumns = []string{"id", "user_id", "answers", "risk_profile", "created_at"}

func setupHandler(t *testing.T, db *sql.DB, cache assessment.SummaryCache) *Handler {
	t.Helper()
	st := store.NewAssessmentStore(db)
	engine := scoring.NewEngineWithScorer(scoring.NewRuleScorer(scoring.DefaultRuleTables()), nil)
	svc := assessment.NewService(engine, st, st, assessment.Options{
		MinDisclosureCount: 2,
		Cache:              cache,
	}, logger.NewTestLogger(t))
	return NewHandler(&Config{Timeout: 5 * time.Second}, svc, logger.NewTestLogger(t))
}

func industryRows(industry string, overall ...float64) *sqlmock.Rows {
	rows := sqlmock.NewRows(recordColumns)
	for i, o := range overall {
		profile := fmt.Sprintf(`{"overallScore":%g,"riskLevel":"Low","riskBreakdown":{"marketRisk":%g,"financialRisk":0.5,"productRisk":0.5,"teamRisk":0.5},"suggestions":[]}`, o, o)
		rows.AddRow(
			fmt.Sprintf("rec-%d", i),
			fmt.Sprintf("user-%d", i),
			[]byte(fmt.Sprintf(`{"industry":%q}`, industry)),
			[]byte(profile),
			time.Date(2026, 2, 1, 0, 0, i, 0, time.UTC),
		)
	}
	return rows
}

func TestHandler_Execute_Available(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments\s+WHERE industry = \$1`).
		WithArgs("saas").
		WillReturnRows(industryRows("saas", 0.2, 0.4, 0.6))

	h := setupHandler(t, db, nil)
	out, err := h.Execute(context.Background(), &Input{Industry: "saas"})
	require.NoError(t, err)

	b := out.Benchmark
	assert.Equal(t, models.BenchmarkAvailable, b.Status)
	require.NotNil(t, b.Summary)
	assert.Equal(t, 3, b.Summary.Count)
	assert.InDelta(t, 0.4, b.Summary.AvgOverall, 1e-9)
	assert.InDelta(t, 0.4, b.Summary.AvgMarket, 1e-9)
	assert.InDelta(t, 0.5, b.Summary.AvgTeam, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SuppressedAtThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WithArgs("fintech").
		WillReturnRows(industryRows("fintech", 0.3, 0.5))

	h := setupHandler(t, db, nil)
	out, err := h.Execute(context.Background(), &Input{Industry: "fintech"})
	require.NoError(t, err)
	assert.Equal(t, models.BenchmarkSuppressed, out.Benchmark.Status)
	assert.Nil(t, out.Benchmark.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoData(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WithArgs("biotech").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	h := setupHandler(t, db, nil)
	out, err := h.Execute(context.Background(), &Input{Industry: "biotech"})
	require.NoError(t, err)
	assert.Equal(t, models.BenchmarkNoData, out.Benchmark.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ServedFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := store.NewBenchmarkCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// only the first call reaches Postgres
	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WithArgs("saas").
		WillReturnRows(industryRows("saas", 0.2, 0.4, 0.6))

	h := setupHandler(t, db, cache)
	first, err := h.Execute(context.Background(), &Input{Industry: "saas"})
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), &Input{Industry: "saas"})
	require.NoError(t, err)

	assert.Equal(t, first.Benchmark, second.Benchmark)
	assert.Equal(t, models.BenchmarkAvailable, second.Benchmark.Status)
	assert.True(t, mr.Exists("benchmark:saas:0"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).
		WithArgs("saas").
		WillReturnError(errors.New("statement timeout"))

	h := setupHandler(t, db, nil)
	out, err := h.Execute(context.Background(), &Input{Industry: "saas"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, assessment.ErrBenchmarkQuery))
	assert.NoError(t, mock.ExpectationsWereMet())
}
