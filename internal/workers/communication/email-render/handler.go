// Package emailrender renders a stored template for a workflow and hands the
// subject, HTML and plain text back as process variables.
package emailrender

import (
	"context"
	"fmt"
	"time"

	"branded-email-workers/internal/common/camunda"
	"branded-email-workers/internal/common/config"
	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
	"branded-email-workers/internal/common/observability"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/rendering"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "email-render"

type Handler struct {
	config   *Config
	logger   logger.Logger
	camunda  *camunda.Client
	renderer Renderer
	obs      *observability.Observability
	errors   *errors.ErrorHandler
	worker   *camunda.CamundaWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Renderer      Renderer
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("invalid configuration for %s: renderer is required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   workerConfig,
		logger:   loggerInstance,
		camunda:  opts.Camunda,
		renderer: opts.Renderer,
		obs:      opts.Observability,
		errors:   errors.NewErrorHandler(loggerInstance),
	}, nil
}

// Handle completes the job with the rendered email or reports the failure to
// the broker. Only a failed complete command is returned.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int64("job.key", job.GetKey()),
		attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
	)
	defer span.End()

	h.logger.Info("Processing email render request", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	output, err := h.process(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.record(ctx, startTime, "failed")
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return nil
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.record(ctx, startTime, "failed")
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeBrokerUnavailable)).Inc()
		return err
	}

	h.record(ctx, startTime, "success")
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	return nil
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, time.Since(start), status)
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	input, err := h.parseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(variables map[string]interface{}) (*Input, error) {
	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewValidationError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	input := &Input{
		TemplateSlug: variables["templateSlug"].(string),
	}
	if vars, ok := variables["variables"].(map[string]interface{}); ok {
		input.Variables = vars
	}
	if brandingID, ok := variables["brandingId"].(string); ok {
		input.BrandingID = brandingID
	}
	if systemData, ok := variables["systemData"].(map[string]interface{}); ok {
		input.SystemData = systemData
	}
	return input, nil
}

// Execute renders without any broker interaction.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rendered, err := h.renderer.RenderTemplate(ctx, rendering.RenderRequest{
		TemplateSlug: input.TemplateSlug,
		Variables:    input.Variables,
		BrandingID:   input.BrandingID,
		SystemData:   input.SystemData,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		Subject:   rendered.Subject,
		HTML:      rendered.HTML,
		Text:      rendered.Text,
		Preheader: rendered.Preheader,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	variables := map[string]interface{}{
		"subject":   output.Subject,
		"html":      output.HTML,
		"text":      output.Text,
		"preheader": output.Preheader,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return err
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return errors.NewBrokerUnavailableError("complete job", err)
	}

	h.logger.Info("Successfully rendered email", map[string]interface{}{
		"jobKey":  job.GetKey(),
		"subject": output.Subject,
		"worker":  TaskType,
	})
	return nil
}

// Register opens the job worker unless the worker is disabled.
func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", map[string]interface{}{
			"worker": TaskType,
		})
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("%s: camunda client is required to register", TaskType)
	}

	h.worker = camunda.NewWorker(h.camunda.GetClient(), h.WorkerOptions(), h, h.logger)
	return nil
}

func (h *Handler) WorkerOptions() camunda.WorkerOptions {
	return camunda.WorkerOptions{
		TaskType:       TaskType,
		MaxJobsActive:  h.config.MaxJobsActive,
		Timeout:        h.config.Timeout,
		FetchVariables: inputVariables,
	}
}

func (h *Handler) Close() {
	if h.worker != nil {
		h.worker.Stop()
		h.worker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func extractErrorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
