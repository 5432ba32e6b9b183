// internal/workers/assessment/list-assessments/handler.go
package listassessments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"venture-risk-workers/internal/assessment"
	apperrors "venture-risk-workers/internal/common/errors"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/models"
)

const (
	TaskType = "list-assessments"
)

// Handler returns a user's assessment history for dashboards.
type Handler struct {
	config   *Config
	service  *assessment.Service
	errorsHd *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, service *assessment.Service, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		service:  service,
		errorsHd: apperrors.NewErrorHandler(scoped),
		logger:   scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(client, job, apperrors.NewParseError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.failJob(client, job, assessment.Classify(err))
	}
	return h.completeJob(client, job, output)
}

func (h *Handler) limit(requested int) int {
	switch {
	case requested <= 0:
		return h.config.DefaultLimit
	case h.config.MaxLimit > 0 && requested > h.config.MaxLimit:
		return h.config.MaxLimit
	default:
		return requested
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := assessment.RequireUserID(input.UserID); err != nil {
		return nil, err
	}

	records, err := h.service.History(ctx, input.UserID, h.limit(input.Limit))
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.AssessmentRecord{}
	}

	trend := make([]TrendPoint, len(records))
	for i, rec := range records {
		trend[len(records)-1-i] = TrendPoint{
			AssessmentID: rec.ID,
			CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
			OverallScore: rec.RiskProfile.OverallScore,
			RiskLevel:    rec.RiskProfile.RiskLevel,
		}
	}

	h.logger.Info("assessments listed", map[string]interface{}{
		"userId": input.UserID,
		"count":  len(records),
	})

	return &Output{
		Assessments: records,
		Trend:       trend,
		Count:       len(records),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return h.failJob(client, job, apperrors.NewInternalError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}
	h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.errorsHd.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
