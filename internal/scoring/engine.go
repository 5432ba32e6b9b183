// internal/scoring/engine.go
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/common/metrics"
	"venture-risk-workers/internal/models"
)

const (
	ModeEmbedded = "embedded"
	ModeRemote   = "remote"
)

type EngineConfig struct {
	Mode         string
	ModelPath    string
	ServiceURL   string
	Timeout      time.Duration
	ResourceKeys map[string]string
	Fields       []Field
	Rules        *RuleTables
}

// Engine is the process-wide scorer. It is built once at startup and only
// read afterwards.
type Engine struct {
	scorer   Scorer
	builder  *ProfileBuilder
	fallback bool
}

// NewEngine selects the scoring strategy. In embedded mode a classifier that
// fails to load downgrades the engine to rules for the process lifetime; a
// classifier whose shape disagrees with the encoder is returned as an error.
func NewEngine(cfg EngineConfig, log logger.Logger) (*Engine, error) {
	fields := cfg.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	rules := DefaultRuleTables()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	resourceKeys := cfg.ResourceKeys
	if resourceKeys == nil {
		resourceKeys = DefaultResourceKeys()
	}

	e := &Engine{builder: NewProfileBuilder(resourceKeys)}

	switch cfg.Mode {
	case ModeRemote:
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("scoring.service_url is required in %s mode", ModeRemote)
		}
		e.scorer = NewRemoteScorer(cfg.ServiceURL, cfg.Timeout)
	case ModeEmbedded, "":
		scorer, err := newEmbeddedScorer(cfg.ModelPath, NewEncoder(fields))
		switch {
		case err == nil:
			e.scorer = scorer
		case errors.Is(err, ErrModelUnavailable):
			log.Warn("classifier unavailable, using rule-based scoring for this process", map[string]interface{}{
				"modelPath": cfg.ModelPath,
				"error":     err.Error(),
			})
			e.scorer = NewRuleScorer(rules)
			e.fallback = true
		default:
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown scoring mode %q", cfg.Mode)
	}

	if e.fallback {
		metrics.ScorerFallbackActive.Set(1)
	} else {
		metrics.ScorerFallbackActive.Set(0)
	}

	log.Info("scoring engine ready", map[string]interface{}{
		"strategy": e.scorer.Name(),
		"fallback": e.fallback,
	})
	return e, nil
}

func newEmbeddedScorer(path string, encoder *Encoder) (Scorer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelUnavailable)
	}
	classifier, err := LoadClassifier(path)
	if err != nil {
		return nil, err
	}
	return NewModelScorer(encoder, classifier)
}

// NewEngineWithScorer wires an explicit strategy, bypassing startup selection.
func NewEngineWithScorer(scorer Scorer, resourceKeys map[string]string) *Engine {
	if resourceKeys == nil {
		resourceKeys = DefaultResourceKeys()
	}
	return &Engine{scorer: scorer, builder: NewProfileBuilder(resourceKeys)}
}

func (e *Engine) Strategy() string {
	return e.scorer.Name()
}

// FallbackActive reports whether the classifier failed to load at startup.
func (e *Engine) FallbackActive() bool {
	return e.fallback
}

// Score returns a complete RiskProfile or an error; never a partial profile.
func (e *Engine) Score(ctx context.Context, answers models.QuestionnaireAnswers) (*models.RiskProfile, error) {
	scores, err := e.scorer.Score(ctx, answers)
	if err != nil {
		metrics.ScoringFailures.WithLabelValues(e.scorer.Name()).Inc()
		return nil, err
	}
	profile := e.builder.Build(scores, e.scorer.Name())
	metrics.AssessmentsScored.WithLabelValues(e.scorer.Name(), string(profile.RiskLevel)).Inc()
	return &profile, nil
}
