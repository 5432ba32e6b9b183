// internal/assessment/service.go
package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"venture-risk-workers/internal/benchmark"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/common/observability"
	"venture-risk-workers/internal/history"
	"venture-risk-workers/internal/models"
)

var (
	ErrHistoryLookup  = errors.New("HISTORY_LOOKUP_FAILED")
	ErrBenchmarkQuery = errors.New("BENCHMARK_QUERY_FAILED")
	ErrRecordInsert   = errors.New("ASSESSMENT_INSERT_FAILED")
)

// ProfileScorer turns answers into a complete RiskProfile.
type ProfileScorer interface {
	Score(ctx context.Context, answers models.QuestionnaireAnswers) (*models.RiskProfile, error)
}

// RecordStore is the append-only assessment store.
type RecordStore interface {
	Append(ctx context.Context, rec *models.AssessmentRecord) error
	Latest(ctx context.Context, userID string) (*models.AssessmentRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AssessmentRecord, error)
}

// IndustrySource returns every record tagged with an industry.
type IndustrySource interface {
	ByIndustry(ctx context.Context, industry string) ([]models.AssessmentRecord, error)
}

// IndustrySummarizer is an IndustrySource that can aggregate on its side.
// When the source implements it, records are never pulled.
type IndustrySummarizer interface {
	SummarizeIndustry(ctx context.Context, industry string) (*models.BenchmarkSummary, error)
}

// SummaryCache holds raw industry summaries between appends. Summaries are
// keyed by a per-industry version that Invalidate advances.
type SummaryCache interface {
	Version(ctx context.Context, industry string) (int64, error)
	Get(ctx context.Context, industry string, version int64) (*models.BenchmarkSummary, bool, error)
	Set(ctx context.Context, summary *models.BenchmarkSummary, version int64) error
	Invalidate(ctx context.Context, industry string) error
}

// RecordMirror receives a copy of every appended record.
type RecordMirror interface {
	IndexRecord(ctx context.Context, rec *models.AssessmentRecord) error
}

// Result is the caller-facing outcome of a submission. Benchmark is nil when
// the industry lookup failed; the submission itself still succeeds.
type Result struct {
	RecordID   string                   `json:"recordId"`
	CreatedAt  time.Time                `json:"createdAt"`
	Current    models.RiskProfile       `json:"current"`
	Comparison models.ComparisonMessage `json:"comparison"`
	Benchmark  *models.BenchmarkView    `json:"benchmark"`
}

type Options struct {
	MinDisclosureCount int
	Cache              SummaryCache
	Mirror             RecordMirror
}

type Service struct {
	scorer     ProfileScorer
	records    RecordStore
	industries IndustrySource
	cache      SummaryCache
	mirror     RecordMirror
	minCount   int
	logger     logger.Logger
	tracer     trace.Tracer
}

func NewService(scorer ProfileScorer, records RecordStore, industries IndustrySource, opts Options, log logger.Logger) *Service {
	// the floor can be raised, never lowered
	if opts.MinDisclosureCount < benchmark.MinDisclosureCount {
		opts.MinDisclosureCount = benchmark.MinDisclosureCount
	}
	return &Service{
		scorer:     scorer,
		records:    records,
		industries: industries,
		cache:      opts.Cache,
		mirror:     opts.Mirror,
		minCount:   opts.MinDisclosureCount,
		logger:     log.WithFields(map[string]interface{}{"component": "assessment"}),
		tracer:     observability.Tracer("venture-risk-workers/assessment"),
	}
}

// Score runs the scoring core only. Nothing is stored.
func (s *Service) Score(ctx context.Context, answers models.QuestionnaireAnswers) (*models.RiskProfile, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.score")
	defer span.End()

	profile, err := s.scorer.Score(ctx, answers)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("risk.level", string(profile.RiskLevel)),
		attribute.Float64("risk.overall", profile.OverallScore),
	)
	return profile, nil
}

// Compare looks up the user's latest stored record and compares the profile
// against it.
func (s *Service) Compare(ctx context.Context, userID string, current *models.RiskProfile) (models.ComparisonMessage, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.compare")
	defer span.End()

	previous, err := s.records.Latest(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.ComparisonMessage{}, fmt.Errorf("%w: %v", ErrHistoryLookup, err)
	}
	msg := history.CompareRecord(*current, previous)
	span.SetAttributes(attribute.String("history.trend", string(msg.Trend)))
	return msg, nil
}

// Benchmark returns the disclosed view of the industry summary. Cache
// failures degrade to a direct query.
func (s *Service) Benchmark(ctx context.Context, industry string) (models.BenchmarkView, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.benchmark", trace.WithAttributes(
		attribute.String("benchmark.industry", industry),
	))
	defer span.End()

	if industry == "" {
		return benchmark.Disclose(industry, nil, s.minCount), nil
	}

	summary, err := s.summary(ctx, industry)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.BenchmarkView{}, fmt.Errorf("%w: %v", ErrBenchmarkQuery, err)
	}
	view := benchmark.Disclose(industry, summary, s.minCount)
	span.SetAttributes(attribute.String("benchmark.status", string(view.Status)))
	return view, nil
}

func (s *Service) summary(ctx context.Context, industry string) (*models.BenchmarkSummary, error) {
	useCache := s.cache != nil
	var version int64
	if useCache {
		v, err := s.cache.Version(ctx, industry)
		if err != nil {
			s.logger.Warn("benchmark cache version read failed", map[string]interface{}{
				"industry": industry,
				"error":    err,
			})
			useCache = false
		}
		version = v
	}
	if useCache {
		cached, ok, err := s.cache.Get(ctx, industry, version)
		switch {
		case err != nil:
			s.logger.Warn("benchmark cache read failed", map[string]interface{}{
				"industry": industry,
				"error":    err,
			})
		case ok:
			return cached, nil
		}
	}

	summary, err := s.aggregate(ctx, industry)
	if err != nil {
		return nil, err
	}

	if useCache && summary != nil {
		if err := s.cache.Set(ctx, summary, version); err != nil {
			s.logger.Warn("benchmark cache write failed", map[string]interface{}{
				"industry": industry,
				"error":    err,
			})
		}
	}
	return summary, nil
}

func (s *Service) aggregate(ctx context.Context, industry string) (*models.BenchmarkSummary, error) {
	if summarizer, ok := s.industries.(IndustrySummarizer); ok {
		return summarizer.SummarizeIndustry(ctx, industry)
	}
	records, err := s.industries.ByIndustry(ctx, industry)
	if err != nil {
		return nil, err
	}
	return benchmark.Aggregate(industry, records), nil
}

// Record scores the answers and appends the result. The stored profile is
// always derived here from the answers; callers cannot supply one.
func (s *Service) Record(ctx context.Context, userID string, answers models.QuestionnaireAnswers) (*models.AssessmentRecord, error) {
	profile, err := s.Score(ctx, answers)
	if err != nil {
		return nil, err
	}
	return s.appendRecord(ctx, userID, answers, *profile)
}

// appendRecord appends a scored assessment, then invalidates the industry's
// cached summary and mirrors the record. Only the append can fail the call.
func (s *Service) appendRecord(ctx context.Context, userID string, answers models.QuestionnaireAnswers, profile models.RiskProfile) (*models.AssessmentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.record")
	defer span.End()

	if err := CheckProfile(profile); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec := &models.AssessmentRecord{
		UserID:      userID,
		Answers:     answers,
		RiskProfile: profile,
	}
	if err := s.records.Append(ctx, rec); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrRecordInsert, err)
	}
	span.SetAttributes(attribute.String("assessment.id", rec.ID))

	if industry := answers.Industry(); industry != "" && s.cache != nil {
		if err := s.cache.Invalidate(ctx, industry); err != nil {
			s.logger.Warn("benchmark cache invalidation failed", map[string]interface{}{
				"industry": industry,
				"error":    err,
			})
		}
	}

	if s.mirror != nil {
		if err := s.mirror.IndexRecord(ctx, rec); err != nil {
			s.logger.Warn("assessment mirror failed", map[string]interface{}{
				"assessmentId": rec.ID,
				"error":        err,
			})
		}
	}
	return rec, nil
}

// Submit scores the answers, compares them with the user's previous record
// and the industry benchmark, and appends the new record. History and
// benchmark are read concurrently and both complete before the append, so
// neither ever sees the record being submitted.
func (s *Service) Submit(ctx context.Context, userID string, answers models.QuestionnaireAnswers) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.submit", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	profile, err := s.Score(ctx, answers)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var (
		comparison models.ComparisonMessage
		view       *models.BenchmarkView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		msg, err := s.Compare(gctx, userID, profile)
		if err != nil {
			return err
		}
		comparison = msg
		return nil
	})
	g.Go(func() error {
		v, err := s.Benchmark(gctx, answers.Industry())
		if err != nil {
			s.logger.Warn("benchmark unavailable for submission", map[string]interface{}{
				"industry": answers.Industry(),
				"error":    err,
			})
			return nil
		}
		view = &v
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec, err := s.appendRecord(ctx, userID, answers, *profile)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.Info("assessment submitted", map[string]interface{}{
		"assessmentId": rec.ID,
		"userId":       userID,
		"riskLevel":    profile.RiskLevel,
		"trend":        comparison.Trend,
	})

	return &Result{
		RecordID:   rec.ID,
		CreatedAt:  rec.CreatedAt,
		Current:    *profile,
		Comparison: comparison,
		Benchmark:  view,
	}, nil
}

// History returns the user's records newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.AssessmentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.history")
	defer span.End()

	records, err := s.records.ListByUser(ctx, userID, limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrHistoryLookup, err)
	}
	return records, nil
}
