// internal/scoring/remote.go
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "venture-risk-workers/internal/common/http"
	"venture-risk-workers/internal/models"
)

const predictPath = "/predict_risk"

// RemoteScorer delegates to an external model-serving process. There is no
// local fallback in this deployment shape: every failure is reported as
// ErrScoringUnavailable.
type RemoteScorer struct {
	baseURL string
	client  *httpclient.Client
	timeout time.Duration
}

func NewRemoteScorer(baseURL string, timeout time.Duration) *RemoteScorer {
	return &RemoteScorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.NewClient(timeout),
		timeout: timeout,
	}
}

func (r *RemoteScorer) Name() string {
	return StrategyRemote
}

type predictRequest struct {
	Answers models.QuestionnaireAnswers `json:"answers"`
}

type predictResponse struct {
	RiskBreakdown *models.RiskBreakdown `json:"riskBreakdown"`
	Error         string                `json:"error"`
}

func (r *RemoteScorer) Score(ctx context.Context, answers models.QuestionnaireAnswers) (CategoryScores, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(predictRequest{Answers: answers.Canonical()})
	if err != nil {
		return CategoryScores{}, fmt.Errorf("%w: encode request: %v", ErrScoringUnavailable, err)
	}

	req, err := http.NewRequest(http.MethodPost, r.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return CategoryScores{}, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.DoWithContext(ctx, req)
	if err != nil {
		return CategoryScores{}, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return CategoryScores{}, fmt.Errorf("%w: model service returned status %d", ErrScoringUnavailable, resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return CategoryScores{}, fmt.Errorf("%w: decode response: %v", ErrScoringUnavailable, err)
	}
	if pr.RiskBreakdown == nil {
		return CategoryScores{}, fmt.Errorf("%w: response has no riskBreakdown", ErrScoringUnavailable)
	}

	b := pr.RiskBreakdown
	return fromFractions(b.FinancialRisk, b.MarketRisk, b.TeamRisk, b.ProductRisk), nil
}
