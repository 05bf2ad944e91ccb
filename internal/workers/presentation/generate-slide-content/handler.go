// internal/workers/presentation/generate-slide-content/handler.go
package generateslidecontent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/metrics"
	"slide-generator/internal/common/observability"
	"slide-generator/internal/common/validation"
	"slide-generator/internal/models"
)

const (
	TaskType = "generate-slide-content"
)

// ContentService generates slide records for a topic.
type ContentService interface {
	Generate(ctx context.Context, topic string, numSlides int) ([]models.Slide, error)
}

type Handler struct {
	config       *Config
	svc          ContentService
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, svc ContentService, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		svc:          svc,
		errorHandler: apperrors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput(job.Variables)
	var output *Output
	if err == nil {
		output, err = h.Execute(ctx, input)
	}
	if err != nil {
		h.record(ctx, start, err)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.record(ctx, start, nil)

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func ParseInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, apperrors.NewInvalidInputError("Job variables are not valid JSON", err.Error())
	}

	result, err := validation.ValidateInput(validation.SchemaGenerateSlideContent, raw)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewValidationFailedError(result.FirstMessage())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	n := h.config.DefaultNumSlides
	if input.NumSlides != nil {
		n = *input.NumSlides
	}

	slides, err := h.svc.Generate(ctx, input.Topic, n)
	if err != nil {
		return nil, err
	}

	h.logger.Info("slide content generated", map[string]interface{}{
		"topic":      input.Topic,
		"slideCount": len(slides),
	})

	return &Output{
		Topic:      input.Topic,
		Slides:     slides,
		SlideCount: len(slides),
	}, nil
}

func (h *Handler) record(ctx context.Context, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())

	status := "completed"
	if err != nil {
		status = "failed"
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Classify(err).Code)).Inc()
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	}
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}
