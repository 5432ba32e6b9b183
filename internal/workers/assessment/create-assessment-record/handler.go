// internal/workers/assessment/create-assessment-record/handler.go
package createassessmentrecord

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
)

const (
	TaskType = "create-assessment-record"
)

// Handler scores and appends an assessment. Records are never updated.
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := assessment.RequireUserID(input.UserID); err != nil {
		return nil, err
	}
	answers, err := assessment.ParseAnswers(input.Answers, true)
	if err != nil {
		return nil, err
	}

	rec, err := h.service.Record(ctx, input.UserID, answers)
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessment record created", map[string]interface{}{
		"assessmentId": rec.ID,
		"userId":       rec.UserID,
		"industry":     answers.Industry(),
		"riskLevel":    rec.RiskProfile.RiskLevel,
	})

	return &Output{
		AssessmentID: rec.ID,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		RiskProfile:  rec.RiskProfile,
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
