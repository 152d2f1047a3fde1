// Package emailsend renders a template and delivers it through the active
// email settings, or the settings record a workflow names.
package emailsend

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "email-send"

type Handler struct {
	config  *Config
	logger  logger.Logger
	camunda *camunda.Client
	service *Service
	obs     *observability.Observability
	errors  *errors.ErrorHandler
	worker  *camunda.CamundaWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Renderer      Renderer
	Sender        Sender
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Renderer == nil || opts.Sender == nil {
		return nil, fmt.Errorf("invalid configuration for %s: renderer and sender are required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:  workerConfig,
		logger:  loggerInstance,
		camunda: opts.Camunda,
		obs:     opts.Observability,
		errors:  errors.NewErrorHandler(loggerInstance),
		service: NewService(ServiceDependencies{
			Renderer: opts.Renderer,
			Sender:   opts.Sender,
			Logger:   loggerInstance,
		}),
	}, nil
}

// Handle completes the job with the send result or reports the failure to
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

	h.logger.Info("Processing email send request", map[string]interface{}{
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
		To:           variables["to"].(string),
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
	if configID, ok := variables["configId"].(string); ok {
		input.ConfigID = configID
	}
	return input, nil
}

// Execute renders and sends without any broker interaction.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	variables := map[string]interface{}{
		"success":   output.Success,
		"messageId": output.MessageID,
		"provider":  output.Provider,
		"sentAt":    output.SentAt.Format(time.RFC3339),
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
		// the email is already out; the broker will redeliver and the
		// recipient may see a duplicate
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey":    job.GetKey(),
			"messageId": output.MessageID,
			"error":     err.Error(),
			"worker":    TaskType,
		})
		return errors.NewBrokerUnavailableError("complete job", err)
	}

	h.logger.Info("Successfully completed email send", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"messageId": output.MessageID,
		"provider":  output.Provider,
		"worker":    TaskType,
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
