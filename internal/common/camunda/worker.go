// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"branded-email-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself; a returned error is only logged.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// WorkerOptions are the per-task settings from the workers config map.
type WorkerOptions struct {
	TaskType       string
	MaxJobsActive  int
	Timeout        time.Duration
	FetchVariables []string
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, log logger.Logger) *CamundaWorker {
	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			if err := handler.Handle(jc, job); err != nil {
				log.Error("Handler returned error", map[string]interface{}{
					"taskType": opts.TaskType,
					"jobKey":   job.Key,
					"error":    err,
				})
			}
		}).
		MaxJobsActive(opts.MaxJobsActive)

	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}
	if len(opts.FetchVariables) > 0 {
		step = step.FetchVariables(opts.FetchVariables...)
	}

	w := &CamundaWorker{
		worker:   step.Open(),
		logger:   log,
		taskType: opts.TaskType,
	}
	log.Info("worker started", map[string]interface{}{"taskType": opts.TaskType, "maxJobsActive": opts.MaxJobsActive})
	return w
}

// Stop closes the job stream and waits for in-flight handlers.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
