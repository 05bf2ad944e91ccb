// internal/workers/presentation/render-presentation/handler.go
package renderpresentation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/metrics"
	"slide-generator/internal/common/observability"
	"slide-generator/internal/common/validation"
	"slide-generator/internal/models"
)

const (
	TaskType = "render-presentation"
)

// PresentationService is the part of presentation.Service this worker needs.
type PresentationService interface {
	Create(ctx context.Context, req models.CreatePresentationRequest) (*models.Deck, error)
	Get(ctx context.Context, id string) (*models.Deck, error)
	Render(ctx context.Context, id string) (string, *models.Deck, error)
}

type Handler struct {
	config       *Config
	svc          PresentationService
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, svc PresentationService, obs *observability.Observability, log logger.Logger) *Handler {
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
		input.InlineDeckID = InlineDeckID(job.Key)
		output, err = h.Execute(ctx, input)
	}
	if err != nil {
		h.record(ctx, start, err)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.record(ctx, start, nil)
	h.completeJob(ctx, client, job, output)
}

// ParseInput validates the job variables and decodes them.
func ParseInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, apperrors.NewInvalidInputError("Job variables are not valid JSON", err.Error())
	}

	result, err := validation.ValidateInput(validation.SchemaRenderPresentation, raw)
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

// Execute renders the named deck. An inline deck is stored first so the
// returned presentationId can be downloaded later.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id := input.PresentationID
	if id == "" {
		var err error
		if id, err = h.storeInline(ctx, input); err != nil {
			return nil, err
		}
	}

	path, d, err := h.svc.Render(ctx, id)
	if err != nil {
		return nil, err
	}

	h.logger.Info("presentation rendered", map[string]interface{}{
		"presentationId": id,
		"slideCount":     len(d.Slides),
	})

	return &Output{
		PresentationID: id,
		FilePath:       path,
		SlideCount:     len(d.Slides),
	}, nil
}

// storeInline stores the inline deck under input.InlineDeckID. A retried job
// finds the deck its earlier attempt stored and reuses it.
func (h *Handler) storeInline(ctx context.Context, input *Input) (string, error) {
	if input.InlineDeckID != "" {
		_, err := h.svc.Get(ctx, input.InlineDeckID)
		if err == nil {
			h.logger.Debug("reusing inline deck from an earlier attempt", map[string]interface{}{
				"presentationId": input.InlineDeckID,
			})
			return input.InlineDeckID, nil
		}
		if apperrors.Classify(err).Code != apperrors.ErrCodePresentationNotFound {
			return "", err
		}
	}

	n := len(input.Slides)
	d, err := h.svc.Create(ctx, models.CreatePresentationRequest{
		ID:        input.InlineDeckID,
		Topic:     input.Topic,
		NumSlides: &n,
		Content:   input.Slides,
		Theme:     input.Theme,
	})
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// InlineDeckID derives a stable deck id from a job key. Zeebe keeps the key
// across retries of the same job.
func InlineDeckID(jobKey int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", TaskType, jobKey))).String()
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
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
