package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/queue"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

type stubQueue struct {
	mu         sync.Mutex
	published  []queue.Message
	acked      int
	publishErr error
	deliveries chan queue.Delivery
}

func newStubQueue() *stubQueue {
	return &stubQueue{deliveries: make(chan queue.Delivery, 16)}
}

func (q *stubQueue) Publish(ctx context.Context, msg queue.Message) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	q.published = append(q.published, msg)
	q.mu.Unlock()
	q.deliveries <- queue.NewDelivery(msg, func() error {
		q.mu.Lock()
		q.acked++
		q.mu.Unlock()
		return nil
	})
	return nil
}

func (q *stubQueue) Consume(ctx context.Context) (<-chan queue.Delivery, error) {
	return q.deliveries, nil
}

func (q *stubQueue) Close() error {
	return nil
}

type stubEvalRepo struct {
	mu           sync.Mutex
	createdJobs  []*models.EvaluationJob
	markAttempts []int
	completed    map[uuid.UUID]uuid.UUID
	failed       map[uuid.UUID]string
	trimCalls    int
}

func newStubEvalRepo() *stubEvalRepo {
	return &stubEvalRepo{
		completed: map[uuid.UUID]uuid.UUID{},
		failed:    map[uuid.UUID]string{},
	}
}

func (r *stubEvalRepo) CreateResult(result *models.EvaluationResult) error { return nil }

func (r *stubEvalRepo) FindResultByID(id uuid.UUID) (*models.EvaluationResult, error) {
	return nil, errors.New("not found")
}

func (r *stubEvalRepo) FindLatestResult(candidateID, jobID uuid.UUID) (*models.EvaluationResult, error) {
	return nil, errors.New("not found")
}

func (r *stubEvalRepo) CreateJob(job *models.EvaluationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createdJobs = append(r.createdJobs, job)
	return nil
}

func (r *stubEvalRepo) FindJobByID(id uuid.UUID) (*models.EvaluationJob, error) {
	return nil, errors.New("not found")
}

func (r *stubEvalRepo) MarkJobProcessing(id uuid.UUID, attempt int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markAttempts = append(r.markAttempts, attempt)
	return nil
}

func (r *stubEvalRepo) CompleteJob(id uuid.UUID, resultID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[id] = resultID
	return nil
}

func (r *stubEvalRepo) FailJob(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = errorMsg
	return nil
}

func (r *stubEvalRepo) CountByJob(jobID uuid.UUID) (*repositories.BulkProgress, error) {
	return &repositories.BulkProgress{}, nil
}

func (r *stubEvalRepo) TrimTerminalJobs(keepCompleted, keepFailed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trimCalls++
	return nil
}

type stubEvaluator struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (*models.EvaluationResult, error)
}

func (e *stubEvaluator) EvaluateCandidate(ctx context.Context, candidateID, jobID uuid.UUID, promptID *uuid.UUID) (*models.EvaluationResult, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.mu.Unlock()
	return e.fn(call)
}

func defaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		Concurrency:        1,
		MaxAttempts:        3,
		RetryBaseDelay:     time.Second,
		ReevaluateDecided:  true,
		CompletedRetention: 100,
		FailedRetention:    200,
	}
}

func newTestWorker(q queue.Queue, candidateRepo repositories.CandidateRepository, evalRepo repositories.EvaluationRepository, evaluator EvaluatorService, opts WorkerOptions) (*worker, *[]time.Duration) {
	w := NewWorker(q, candidateRepo, evalRepo, evaluator, opts, zap.NewNop()).(*worker)

	var sleeps []time.Duration
	w.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return w, &sleeps
}

func TestWorkerExhaustsRetryBudget(t *testing.T) {
	evalRepo := newStubEvalRepo()
	evaluator := &stubEvaluator{fn: func(int) (*models.EvaluationResult, error) {
		return nil, errors.New("model unavailable")
	}}

	w, sleeps := newTestWorker(newStubQueue(), newStubCandidateRepo(), evalRepo, evaluator, defaultWorkerOptions())

	msg := queue.Message{EvaluationJobID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}
	acks := 0
	w.handle(context.Background(), 1, queue.NewDelivery(msg, func() error {
		acks++
		return nil
	}))

	assert.Equal(t, []int{1, 2, 3}, evalRepo.markAttempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *sleeps)
	assert.Equal(t, "model unavailable", evalRepo.failed[msg.EvaluationJobID])
	assert.Empty(t, evalRepo.completed)
	assert.Equal(t, 1, evalRepo.trimCalls)
	assert.Equal(t, 1, acks)
}

func TestWorkerCompletesJobOnFirstAttempt(t *testing.T) {
	evalRepo := newStubEvalRepo()
	resultID := uuid.New()
	evaluator := &stubEvaluator{fn: func(int) (*models.EvaluationResult, error) {
		return &models.EvaluationResult{ID: resultID}, nil
	}}

	w, sleeps := newTestWorker(newStubQueue(), newStubCandidateRepo(), evalRepo, evaluator, defaultWorkerOptions())

	msg := queue.Message{EvaluationJobID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}
	acks := 0
	w.handle(context.Background(), 1, queue.NewDelivery(msg, func() error {
		acks++
		return nil
	}))

	assert.Equal(t, []int{1}, evalRepo.markAttempts)
	assert.Empty(t, *sleeps)
	assert.Equal(t, resultID, evalRepo.completed[msg.EvaluationJobID])
	assert.Empty(t, evalRepo.failed)
	assert.Equal(t, 1, acks)
}

func TestWorkerRecoversAfterTransientFailure(t *testing.T) {
	evalRepo := newStubEvalRepo()
	resultID := uuid.New()
	evaluator := &stubEvaluator{fn: func(call int) (*models.EvaluationResult, error) {
		if call == 1 {
			return nil, errors.New("timeout")
		}
		return &models.EvaluationResult{ID: resultID}, nil
	}}

	w, sleeps := newTestWorker(newStubQueue(), newStubCandidateRepo(), evalRepo, evaluator, defaultWorkerOptions())

	msg := queue.Message{EvaluationJobID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}
	w.handle(context.Background(), 1, queue.NewDelivery(msg, nil))

	assert.Equal(t, []int{1, 2}, evalRepo.markAttempts)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)
	assert.Equal(t, resultID, evalRepo.completed[msg.EvaluationJobID])
	assert.Empty(t, evalRepo.failed)
}

// A delivery may only be acknowledged once the job row is terminal;
// acking earlier would let a crash mid-evaluation lose the job forever.
func TestWorkerAcksOnlyAfterJobIsTerminal(t *testing.T) {
	evalRepo := newStubEvalRepo()
	evaluator := &stubEvaluator{fn: func(int) (*models.EvaluationResult, error) {
		return nil, errors.New("model unavailable")
	}}

	w, _ := newTestWorker(newStubQueue(), newStubCandidateRepo(), evalRepo, evaluator, defaultWorkerOptions())

	msg := queue.Message{EvaluationJobID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}
	terminalAtAck := false
	w.handle(context.Background(), 1, queue.NewDelivery(msg, func() error {
		_, failed := evalRepo.failed[msg.EvaluationJobID]
		_, completed := evalRepo.completed[msg.EvaluationJobID]
		terminalAtAck = failed || completed
		return nil
	}))

	assert.True(t, terminalAtAck)
}

func TestEnqueueBulkSelectsByJob(t *testing.T) {
	jobID := uuid.New()
	pending := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusPending}
	shortlisted := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusShortlisted}
	candidateRepo := newStubCandidateRepo(pending, shortlisted)

	q := newStubQueue()
	evalRepo := newStubEvalRepo()
	w, _ := newTestWorker(q, candidateRepo, evalRepo, &stubEvaluator{}, defaultWorkerOptions())

	queued, err := w.EnqueueBulk(context.Background(), jobID, nil, nil, "recruiter@example.com")
	require.NoError(t, err)

	assert.Equal(t, 2, queued)
	assert.Len(t, evalRepo.createdJobs, 2)
	assert.Len(t, q.published, 2)
}

func TestEnqueueBulkSkipsDecidedWhenDisabled(t *testing.T) {
	jobID := uuid.New()
	pending := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusPending}
	shortlisted := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusShortlisted}
	hired := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusHired}
	candidateRepo := newStubCandidateRepo(pending, shortlisted, hired)

	opts := defaultWorkerOptions()
	opts.ReevaluateDecided = false

	q := newStubQueue()
	evalRepo := newStubEvalRepo()
	w, _ := newTestWorker(q, candidateRepo, evalRepo, &stubEvaluator{}, opts)

	queued, err := w.EnqueueBulk(context.Background(), jobID, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, queued)
	require.Len(t, q.published, 1)
	assert.Equal(t, pending.ID, q.published[0].CandidateID)
}

func TestEnqueueBulkExplicitSubset(t *testing.T) {
	jobID := uuid.New()
	first := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusPending}
	second := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusPending}
	candidateRepo := newStubCandidateRepo(first, second)

	q := newStubQueue()
	w, _ := newTestWorker(q, candidateRepo, newStubEvalRepo(), &stubEvaluator{}, defaultWorkerOptions())

	queued, err := w.EnqueueBulk(context.Background(), jobID, nil, []uuid.UUID{first.ID}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, queued)
	require.Len(t, q.published, 1)
	assert.Equal(t, first.ID, q.published[0].CandidateID)
}

func TestEnqueueBulkMarksUnpublishableJobsFailed(t *testing.T) {
	jobID := uuid.New()
	pending := &models.Candidate{ID: uuid.New(), JobID: &jobID, Status: models.StatusPending}
	candidateRepo := newStubCandidateRepo(pending)

	q := newStubQueue()
	q.publishErr = errors.New("broker unavailable")
	evalRepo := newStubEvalRepo()
	w, _ := newTestWorker(q, candidateRepo, evalRepo, &stubEvaluator{}, defaultWorkerOptions())

	queued, err := w.EnqueueBulk(context.Background(), jobID, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, 0, queued)
	assert.Len(t, evalRepo.failed, 1)
}

func TestWorkerConsumesFromQueue(t *testing.T) {
	evalRepo := newStubEvalRepo()
	resultID := uuid.New()
	done := make(chan struct{})
	evaluator := &stubEvaluator{fn: func(int) (*models.EvaluationResult, error) {
		defer close(done)
		return &models.EvaluationResult{ID: resultID}, nil
	}}

	q := newStubQueue()
	w, _ := newTestWorker(q, newStubCandidateRepo(), evalRepo, evaluator, defaultWorkerOptions())

	require.NoError(t, w.Start(context.Background()))

	msg := queue.Message{EvaluationJobID: uuid.New(), CandidateID: uuid.New(), JobID: uuid.New()}
	require.NoError(t, q.Publish(context.Background(), msg))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not consume the queued message")
	}

	w.Stop()
	assert.Equal(t, resultID, evalRepo.completed[msg.EvaluationJobID])
	assert.Equal(t, 1, q.acked)
}
