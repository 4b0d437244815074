package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/queue"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

// WorkerOptions configures the bulk evaluation runner.
type WorkerOptions struct {
	Concurrency        int
	MaxAttempts        int
	RetryBaseDelay     time.Duration
	ReevaluateDecided  bool
	CompletedRetention int
	FailedRetention    int
}

// Worker is the asynchronous bulk evaluation runner: it fans candidate
// evaluations out over the job queue and consumes them with bounded
// concurrency, retrying failed jobs with exponential backoff.
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	EnqueueBulk(ctx context.Context, jobID uuid.UUID, promptID *uuid.UUID, candidateIDs []uuid.UUID, requestedBy string) (int, error)
}

type worker struct {
	jobQueue      queue.Queue
	candidateRepo repositories.CandidateRepository
	evalRepo      repositories.EvaluationRepository
	evaluator     EvaluatorService
	opts          WorkerOptions
	logger        *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc

	// injectable for tests so retry timing can be asserted without waiting
	sleep func(time.Duration)
}

func NewWorker(
	jobQueue queue.Queue,
	candidateRepo repositories.CandidateRepository,
	evalRepo repositories.EvaluationRepository,
	evaluator EvaluatorService,
	opts WorkerOptions,
	logger *zap.Logger,
) Worker {
	return &worker{
		jobQueue:      jobQueue,
		candidateRepo: candidateRepo,
		evalRepo:      evalRepo,
		evaluator:     evaluator,
		opts:          opts,
		logger:        logger,
		sleep:         time.Sleep,
	}
}

func (w *worker) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	deliveries, err := w.jobQueue.Consume(ctx)
	if err != nil {
		w.cancel()
		return err
	}

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processLoop(ctx, i+1, deliveries)
	}

	w.logger.Info("evaluation worker started", zap.Int("concurrency", w.opts.Concurrency))
	return nil
}

func (w *worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("evaluation worker stopped")
}

// EnqueueBulk selects the candidates for a posting (all linked candidates,
// or the explicit subset) and enqueues one evaluation job per candidate.
// Enqueueing is not deduplicated: re-running the same selection produces
// new evaluation results rather than mutating earlier ones.
func (w *worker) EnqueueBulk(ctx context.Context, jobID uuid.UUID, promptID *uuid.UUID, candidateIDs []uuid.UUID, requestedBy string) (int, error) {
	var candidates []models.Candidate
	var err error

	if len(candidateIDs) > 0 {
		candidates, err = w.candidateRepo.FindByIDs(candidateIDs)
	} else {
		candidates, err = w.candidateRepo.FindByJob(jobID)
	}
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, candidate := range candidates {
		if !w.opts.ReevaluateDecided && candidate.Status.Decided() {
			continue
		}

		job := &models.EvaluationJob{
			ID:          uuid.New(),
			CandidateID: candidate.ID,
			JobID:       jobID,
			PromptID:    promptID,
			RequestedBy: requestedBy,
			Status:      models.JobPending,
		}
		if err := w.evalRepo.CreateJob(job); err != nil {
			w.logger.Error("failed to create evaluation job record",
				zap.String("candidate_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}

		msg := queue.Message{
			EvaluationJobID: job.ID,
			CandidateID:     candidate.ID,
			JobID:           jobID,
			PromptID:        promptID,
			RequestedBy:     requestedBy,
		}
		if err := w.jobQueue.Publish(ctx, msg); err != nil {
			w.logger.Error("failed to publish evaluation job",
				zap.String("evaluation_job_id", job.ID.String()),
				zap.Error(err),
			)
			if failErr := w.evalRepo.FailJob(job.ID, err.Error()); failErr != nil {
				w.logger.Error("failed to mark unpublished job as failed", zap.Error(failErr))
			}
			continue
		}

		queued++
	}

	return queued, nil
}

func (w *worker) processLoop(ctx context.Context, workerID int, deliveries <-chan queue.Delivery) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			w.handle(ctx, workerID, delivery)
		}
	}
}

// handle runs one queued job through the retry budget. After the final
// attempt exhausts, the job record is failed with the causing error and the
// candidate's status is left untouched for human investigation. The broker
// delivery is acked only once the job record is terminal, so a crash before
// that point redelivers the job.
func (w *worker) handle(ctx context.Context, workerID int, delivery queue.Delivery) {
	msg := delivery.Message
	var lastErr error

	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		if err := w.evalRepo.MarkJobProcessing(msg.EvaluationJobID, attempt); err != nil {
			w.logger.Warn("failed to mark job processing",
				zap.String("evaluation_job_id", msg.EvaluationJobID.String()),
				zap.Error(err),
			)
		}

		result, err := w.evaluator.EvaluateCandidate(ctx, msg.CandidateID, msg.JobID, msg.PromptID)
		if err == nil {
			if err := w.evalRepo.CompleteJob(msg.EvaluationJobID, result.ID); err != nil {
				w.logger.Error("failed to complete evaluation job",
					zap.String("evaluation_job_id", msg.EvaluationJobID.String()),
					zap.Error(err),
				)
			}
			w.trimRetention()
			w.ack(delivery)
			return
		}

		lastErr = err
		w.logger.Warn("evaluation job attempt failed",
			zap.Int("worker", workerID),
			zap.String("evaluation_job_id", msg.EvaluationJobID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		w.sleep(w.backoff(attempt))
	}

	if err := w.evalRepo.FailJob(msg.EvaluationJobID, lastErr.Error()); err != nil {
		w.logger.Error("failed to mark evaluation job failed",
			zap.String("evaluation_job_id", msg.EvaluationJobID.String()),
			zap.Error(err),
		)
	}
	w.trimRetention()
	w.ack(delivery)
}

func (w *worker) ack(delivery queue.Delivery) {
	if err := delivery.Ack(); err != nil {
		w.logger.Warn("failed to ack queue delivery",
			zap.String("evaluation_job_id", delivery.Message.EvaluationJobID.String()),
			zap.Error(err),
		)
	}
}

// backoff doubles the base delay per attempt: 1s, 2s, 4s with the defaults.
func (w *worker) backoff(attempt int) time.Duration {
	return w.opts.RetryBaseDelay << (attempt - 1)
}

func (w *worker) trimRetention() {
	if err := w.evalRepo.TrimTerminalJobs(w.opts.CompletedRetention, w.opts.FailedRetention); err != nil {
		w.logger.Warn("failed to trim terminal evaluation jobs", zap.Error(err))
	}
}
