package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"lyrsync/internal/models"
	"lyrsync/internal/storage"
)

// maxRetries is how many times a failed job is requeued before it is
// marked failed for good.
const maxRetries = 3

// JobHandler processes one claimed job.
type JobHandler func(ctx context.Context, job *models.Job) error

// Worker polls the job queue and dispatches each claimed row to the
// handler registered for its type. Jobs run one at a time; when a handler
// submits a follow-up job the same drain pass picks it up, so a
// download -> transcribe -> align chain runs back to back.
type Worker struct {
	jobRepo  *storage.JobRepository
	handlers map[string]JobHandler
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

// NewWorker creates a worker polling at a one second interval.
func NewWorker(jobRepo *storage.JobRepository) *Worker {
	return &Worker{
		jobRepo:  jobRepo,
		handlers: make(map[string]JobHandler),
		interval: 1 * time.Second,
		stop:     make(chan struct{}),
	}
}

// RegisterHandler binds a handler to a job type.
func (w *Worker) RegisterHandler(jobType string, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

// SetInterval changes the polling interval. Call before Start.
func (w *Worker) SetInterval(interval time.Duration) {
	w.interval = interval
}

// Start launches the polling goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	log.Println("Worker started")
}

// Stop waits for the job in flight to finish and shuts the worker down.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	log.Println("Worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			// drain queued jobs so a chain does not wait out a tick per
			// step; a failure ends the pass, keeping retries a tick apart
			for w.processNext(ctx) {
				select {
				case <-ctx.Done():
					return
				case <-w.stop:
					return
				default:
				}
			}
		}
	}
}

// processNext claims and runs the highest priority queued job. It reports
// whether the caller should keep draining.
func (w *Worker) processNext(ctx context.Context) bool {
	job, err := w.jobRepo.GetNextQueued(ctx)
	if err != nil {
		log.Printf("Error getting next job: %v", err)
		return false
	}
	if job == nil {
		return false
	}

	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()
	if !ok {
		log.Printf("No handler for job type: %s", job.Type)
		_ = w.jobRepo.Fail(ctx, job.ID, "no handler registered for job type: "+job.Type)
		return true
	}

	if err := w.jobRepo.Start(ctx, job.ID); err != nil {
		log.Printf("Error starting job %s: %v", job.ID, err)
		return false
	}

	log.Printf("Processing job %s (type: %s)", job.ID, job.Type)

	if err := w.runHandler(ctx, handler, job); err != nil {
		log.Printf("Job %s failed: %v", job.ID, err)
		w.retryOrFail(ctx, job, err)
		return false
	}

	if err := w.jobRepo.Complete(ctx, job.ID); err != nil {
		log.Printf("Error completing job %s: %v", job.ID, err)
		return true
	}

	log.Printf("Job %s completed", job.ID)
	return true
}

// runHandler runs a handler, turning a panic into an error so one bad job
// cannot take the polling goroutine down.
func (w *Worker) runHandler(ctx context.Context, handler JobHandler, job *models.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panic: %v", r)
		}
	}()
	return handler(ctx, job)
}

// retryOrFail requeues a failed job until its retry budget is spent.
func (w *Worker) retryOrFail(ctx context.Context, job *models.Job, jobErr error) {
	if job.RetryCount >= maxRetries {
		if err := w.jobRepo.Fail(ctx, job.ID, jobErr.Error()); err != nil {
			log.Printf("Error failing job %s: %v", job.ID, err)
		}
		return
	}

	if err := w.jobRepo.Retry(ctx, job.ID); err != nil {
		log.Printf("Error retrying job %s: %v", job.ID, err)
		return
	}
	log.Printf("Job %s queued for retry (attempt %d/%d)", job.ID, job.RetryCount+1, maxRetries)
}

// SubmitJob queues a job with an empty payload.
func (w *Worker) SubmitJob(ctx context.Context, jobType, projectID string, priority int) (*models.Job, error) {
	return w.SubmitJobWithPayload(ctx, jobType, projectID, priority, "")
}

// SubmitJobWithPayload queues a job carrying handler-specific options,
// such as alignment overrides that travel through the transcribe step.
func (w *Worker) SubmitJobWithPayload(ctx context.Context, jobType, projectID string, priority int, payload string) (*models.Job, error) {
	job := &models.Job{
		Type:      jobType,
		ProjectID: projectID,
		Priority:  priority,
		Payload:   payload,
	}

	if err := w.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	log.Printf("Job %s submitted (type: %s, priority: %d)", job.ID, jobType, priority)
	return job, nil
}
