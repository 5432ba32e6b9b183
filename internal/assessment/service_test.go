// internal/assessment/service_test.go
package assessment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
	"venture-risk-workers/internal/store"
)

type memStore struct {
	mu         sync.Mutex
	records    []models.AssessmentRecord
	latestErr  error
	industErr  error
	appendErr  error
	appendSeen int
	seq        int
	// afterIndustry runs once, after ByIndustry has read its records
	afterIndustry func()
}

func (m *memStore) Append(_ context.Context, rec *models.AssessmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendSeen++
	if m.appendErr != nil {
		return m.appendErr
	}
	m.seq++
	rec.ID = "rec-" + string(rune('0'+m.seq))
	rec.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) Latest(ctx context.Context, userID string) (*models.AssessmentRecord, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	list, _ := m.ListByUser(ctx, userID, 1)
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (m *memStore) ListByUser(_ context.Context, userID string, limit int) ([]models.AssessmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AssessmentRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ByIndustry(_ context.Context, industry string) ([]models.AssessmentRecord, error) {
	if m.industErr != nil {
		return nil, m.industErr
	}
	m.mu.Lock()
	var out []models.AssessmentRecord
	for _, r := range m.records {
		if r.Answers.Industry() == industry {
			out = append(out, r)
		}
	}
	hook := m.afterIndustry
	m.afterIndustry = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

type failingMirror struct{ calls int }

func (f *failingMirror) IndexRecord(context.Context, *models.AssessmentRecord) error {
	f.calls++
	return errors.New("index unavailable")
}

type brokenScorer struct{}

func (brokenScorer) Score(context.Context, models.QuestionnaireAnswers) (*models.RiskProfile, error) {
	return nil, scoring.ErrScoringUnavailable
}

// summarizingSource aggregates on its side and must never be scanned.
type summarizingSource struct {
	summary *models.BenchmarkSummary
	calls   int
}

func (s *summarizingSource) ByIndustry(context.Context, string) ([]models.AssessmentRecord, error) {
	return nil, errors.New("records must not be pulled")
}

func (s *summarizingSource) SummarizeIndustry(context.Context, string) (*models.BenchmarkSummary, error) {
	s.calls++
	return s.summary, nil
}

type fixedScorer struct{ profile models.RiskProfile }

func (f fixedScorer) Score(context.Context, models.QuestionnaireAnswers) (*models.RiskProfile, error) {
	p := f.profile
	return &p, nil
}

// 10+10+8+9 = 37/40
func highRisk(industry string) models.QuestionnaireAnswers {
	return models.QuestionnaireAnswers{
		"industry":     industry,
		"fundingStage": "pre-seed",
		"competition":  "high",
		"teamSize":     "solo",
		"productStage": "idea",
	}
}

// 2+2+3+2 = 9/40
func lowRisk(industry string) models.QuestionnaireAnswers {
	return models.QuestionnaireAnswers{
		"industry":     industry,
		"fundingStage": "series-a",
		"competition":  "low",
		"teamSize":     "2",
		"productStage": "growth",
	}
}

func newRuleEngine() *scoring.Engine {
	return scoring.NewEngineWithScorer(scoring.NewRuleScorer(scoring.DefaultRuleTables()), nil)
}

func newTestService(t *testing.T, st *memStore, opts Options) *Service {
	t.Helper()
	if opts.MinDisclosureCount == 0 {
		opts.MinDisclosureCount = 2
	}
	return NewService(newRuleEngine(), st, st, opts, logger.NewTestLogger(t))
}

func TestSubmit_FirstAssessment(t *testing.T) {
	st := &memStore{}
	svc := newTestService(t, st, Options{})

	res, err := svc.Submit(context.Background(), "user-1", highRisk("saas"))
	require.NoError(t, err)

	assert.Equal(t, models.TrendFirst, res.Comparison.Trend)
	assert.Equal(t, models.RiskLevelHigh, res.Current.RiskLevel)
	assert.InDelta(t, 0.925, res.Current.OverallScore, 1e-9)
	require.NotNil(t, res.Benchmark)
	assert.Equal(t, models.BenchmarkNoData, res.Benchmark.Status)
	assert.Nil(t, res.Benchmark.Summary)
	assert.Equal(t, "rec-1", res.RecordID)
	assert.Len(t, st.records, 1)
}

func TestSubmit_ComparesWithPreviousRecord(t *testing.T) {
	st := &memStore{}
	svc := newTestService(t, st, Options{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", highRisk("saas"))
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "user-1", lowRisk("saas"))
	require.NoError(t, err)

	assert.Equal(t, models.TrendDecreased, res.Comparison.Trend)
	assert.Equal(t, 70, res.Comparison.PercentageChange)
	assert.Contains(t, res.Comparison.Message, "decreased by approximately 70%")

	// another user's history is never consulted
	other, err := svc.Submit(ctx, "user-2", lowRisk("saas"))
	require.NoError(t, err)
	assert.Equal(t, models.TrendFirst, other.Comparison.Trend)
}

func TestSubmit_BenchmarkExcludesCurrentSubmission(t *testing.T) {
	st := &memStore{}
	svc := newTestService(t, st, Options{})
	ctx := context.Background()

	for _, u := range []string{"a", "b"} {
		_, err := svc.Submit(ctx, u, lowRisk("saas"))
		require.NoError(t, err)
	}

	res, err := svc.Submit(ctx, "c", highRisk("saas"))
	require.NoError(t, err)
	require.NotNil(t, res.Benchmark)
	assert.Equal(t, models.BenchmarkSuppressed, res.Benchmark.Status)
	assert.Nil(t, res.Benchmark.Summary)

	view, err := svc.Benchmark(ctx, "saas")
	require.NoError(t, err)
	require.Equal(t, models.BenchmarkAvailable, view.Status)
	require.NotNil(t, view.Summary)
	assert.Equal(t, 3, view.Summary.Count)
	assert.InDelta(t, (0.225+0.225+0.925)/3, view.Summary.AvgOverall, 1e-9)
}

func TestBenchmark_CacheInvalidatedOnAppend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := store.NewBenchmarkCache(client, time.Minute)

	st := &memStore{}
	svc := newTestService(t, st, Options{Cache: cache})
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		_, err := svc.Record(ctx, u, lowRisk("fintech"))
		require.NoError(t, err)
	}
	assert.Equal(t, "3", mustGet(t, mr, "benchmark:ver:fintech"))

	view, err := svc.Benchmark(ctx, "fintech")
	require.NoError(t, err)
	require.Equal(t, models.BenchmarkAvailable, view.Status)
	assert.Equal(t, 3, view.Summary.Count)
	assert.True(t, mr.Exists("benchmark:fintech:3"))

	_, err = svc.Record(ctx, "d", highRisk("fintech"))
	require.NoError(t, err)
	assert.Equal(t, "4", mustGet(t, mr, "benchmark:ver:fintech"))

	view, err = svc.Benchmark(ctx, "fintech")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Summary.Count)
	// (3*0.225 + 0.925) / 4
	assert.InDelta(t, 0.4, view.Summary.AvgOverall, 1e-9)
}

func TestBenchmark_AppendDuringAggregationIsNotCachedStale(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := &memStore{}
	svc := newTestService(t, st, Options{Cache: store.NewBenchmarkCache(client, time.Minute)})
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		_, err := svc.Record(ctx, u, lowRisk("fintech"))
		require.NoError(t, err)
	}

	// a writer lands between the reader's record scan and its cache write
	st.afterIndustry = func() {
		_, err := svc.Record(ctx, "d", lowRisk("fintech"))
		require.NoError(t, err)
	}
	view, err := svc.Benchmark(ctx, "fintech")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Summary.Count)

	view, err = svc.Benchmark(ctx, "fintech")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Summary.Count)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestBenchmark_CacheFailureFallsBackToSource(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	st := &memStore{}
	svc := newTestService(t, st, Options{Cache: store.NewBenchmarkCache(client, time.Minute)})

	view, err := svc.Benchmark(context.Background(), "saas")
	require.NoError(t, err)
	assert.Equal(t, models.BenchmarkNoData, view.Status)
}

func TestSubmit_HistoryFailureStoresNothing(t *testing.T) {
	st := &memStore{latestErr: errors.New("connection reset")}
	svc := newTestService(t, st, Options{})

	res, err := svc.Submit(context.Background(), "user-1", highRisk("saas"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrHistoryLookup)
	assert.Zero(t, st.appendSeen)
}

func TestSubmit_BenchmarkFailureStillSubmits(t *testing.T) {
	st := &memStore{industErr: errors.New("timeout")}
	svc := newTestService(t, st, Options{})

	res, err := svc.Submit(context.Background(), "user-1", highRisk("saas"))
	require.NoError(t, err)
	assert.Nil(t, res.Benchmark)
	assert.Len(t, st.records, 1)

	_, err = svc.Benchmark(context.Background(), "saas")
	assert.ErrorIs(t, err, ErrBenchmarkQuery)
}

func TestSubmit_ScoringFailureStoresNothing(t *testing.T) {
	st := &memStore{}
	svc := NewService(brokenScorer{}, st, st, Options{MinDisclosureCount: 2}, logger.NewTestLogger(t))

	_, err := svc.Submit(context.Background(), "user-1", highRisk("saas"))
	assert.ErrorIs(t, err, scoring.ErrScoringUnavailable)
	assert.Zero(t, st.appendSeen)
}

func TestSubmit_AppendFailure(t *testing.T) {
	st := &memStore{appendErr: errors.New("disk full")}
	svc := newTestService(t, st, Options{})

	_, err := svc.Submit(context.Background(), "user-1", highRisk("saas"))
	assert.ErrorIs(t, err, ErrRecordInsert)
}

func TestRecord_MirrorFailureIsIgnored(t *testing.T) {
	st := &memStore{}
	mirror := &failingMirror{}
	svc := newTestService(t, st, Options{Mirror: mirror})

	rec, err := svc.Record(context.Background(), "user-1", highRisk("saas"))
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, 1, mirror.calls)
}

func TestRecord_DerivesProfileFromAnswers(t *testing.T) {
	st := &memStore{}
	svc := newTestService(t, st, Options{})

	rec, err := svc.Record(context.Background(), "user-1", highRisk("saas"))
	require.NoError(t, err)
	assert.InDelta(t, 0.925, rec.RiskProfile.OverallScore, 1e-9)
	assert.Equal(t, models.RiskLevelHigh, rec.RiskProfile.RiskLevel)
	require.Len(t, st.records, 1)
	assert.Equal(t, rec.RiskProfile, st.records[0].RiskProfile)
}

func TestRecord_RejectsProfileOutsideRange(t *testing.T) {
	st := &memStore{}
	bad := models.RiskProfile{
		OverallScore:  7.5,
		RiskLevel:     "Banana",
		RiskBreakdown: models.RiskBreakdown{MarketRisk: 9, FinancialRisk: -4},
	}
	svc := NewService(fixedScorer{profile: bad}, st, st, Options{}, logger.NewTestLogger(t))

	_, err := svc.Record(context.Background(), "user-1", highRisk("saas"))
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = svc.Submit(context.Background(), "user-1", highRisk("saas"))
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Zero(t, st.appendSeen)
}

func TestBenchmark_EmptyIndustryIsNoData(t *testing.T) {
	st := &memStore{industErr: errors.New("must not be queried")}
	svc := newTestService(t, st, Options{})

	view, err := svc.Benchmark(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.BenchmarkNoData, view.Status)
}

func TestHistory_NewestFirst(t *testing.T) {
	st := &memStore{}
	svc := newTestService(t, st, Options{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", highRisk("saas"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-1", lowRisk("saas"))
	require.NoError(t, err)

	list, err := svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rec-2", list[0].ID)
	assert.Equal(t, "rec-1", list[1].ID)

	list, err = svc.History(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBenchmark_UsesSourceSideAggregation(t *testing.T) {
	st := &memStore{}
	src := &summarizingSource{summary: &models.BenchmarkSummary{Industry: "saas", Count: 12000, AvgOverall: 0.4}}
	svc := NewService(newRuleEngine(), st, src, Options{}, logger.NewTestLogger(t))

	view, err := svc.Benchmark(context.Background(), "saas")
	require.NoError(t, err)
	require.Equal(t, models.BenchmarkAvailable, view.Status)
	assert.Equal(t, 12000, view.Summary.Count)
	assert.Equal(t, 1, src.calls)
}
