package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

const casRetryLimit = 3

// EvaluatorService runs the full pipeline for one candidate: load records,
// orchestrate scoring, resolve status, persist the result and trigger the
// notification. Both the synchronous endpoint and the queue worker go
// through here.
type EvaluatorService interface {
	EvaluateCandidate(ctx context.Context, candidateID, jobID uuid.UUID, promptID *uuid.UUID) (*models.EvaluationResult, error)
}

type evaluatorService struct {
	candidateRepo repositories.CandidateRepository
	jobRepo       repositories.JobPostingRepository
	promptRepo    repositories.PromptRepository
	evalRepo      repositories.EvaluationRepository
	orchestrator  EvaluationOrchestrator
	statusRes     StatusResolver
	notifier      Notifier
	logger        *zap.Logger
}

func NewEvaluatorService(
	candidateRepo repositories.CandidateRepository,
	jobRepo repositories.JobPostingRepository,
	promptRepo repositories.PromptRepository,
	evalRepo repositories.EvaluationRepository,
	orchestrator EvaluationOrchestrator,
	statusRes StatusResolver,
	notifier Notifier,
	logger *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		candidateRepo: candidateRepo,
		jobRepo:       jobRepo,
		promptRepo:    promptRepo,
		evalRepo:      evalRepo,
		orchestrator:  orchestrator,
		statusRes:     statusRes,
		notifier:      notifier,
		logger:        logger,
	}
}

func (e *evaluatorService) EvaluateCandidate(ctx context.Context, candidateID, jobID uuid.UUID, promptID *uuid.UUID) (*models.EvaluationResult, error) {
	candidate, err := e.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}

	posting, err := e.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job posting: %w", err)
	}

	template, err := e.loadTemplate(promptID)
	if err != nil {
		return nil, err
	}

	if err := e.transitionWithRetry(candidate, models.StatusUnderProcess, ActorSystem, "evaluation started"); err != nil {
		return nil, fmt.Errorf("failed to mark candidate under process: %w", err)
	}

	// never fails: the cascade ends at the heuristic scorer
	result := e.orchestrator.Evaluate(ctx, candidate.ExtractedText, posting, template)
	result.ID = uuid.New()
	result.CandidateID = candidate.ID
	result.JobID = posting.ID

	if err := e.evalRepo.CreateResult(result); err != nil {
		return nil, fmt.Errorf("failed to persist evaluation result: %w", err)
	}

	next := e.statusRes.ResolveScore(result.TotalScore, posting)
	reason := ""
	if next == models.StatusDisqualified {
		reason = fmt.Sprintf("Total score %d below manual review cut-off %d", result.TotalScore, posting.ReviewCutoff())
		if posting.AutoReject > 0 && result.TotalScore <= posting.AutoReject {
			reason = fmt.Sprintf("Total score %d at or below auto-reject cut-off %d", result.TotalScore, posting.AutoReject)
		}
	}

	if err := e.transitionWithRetry(candidate, next, ActorSystem, reason); err != nil {
		return nil, fmt.Errorf("failed to resolve candidate status: %w", err)
	}

	e.notify(ctx, candidate, posting, next)

	e.logger.Info("candidate evaluated",
		zap.String("candidate_id", candidate.ID.String()),
		zap.String("job_id", posting.ID.String()),
		zap.Int("total_score", result.TotalScore),
		zap.String("model", result.Model),
		zap.String("status", string(next)),
	)

	return result, nil
}

func (e *evaluatorService) loadTemplate(promptID *uuid.UUID) (*models.PromptTemplate, error) {
	if promptID != nil {
		template, err := e.promptRepo.FindByID(*promptID)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompt template: %w", err)
		}
		return template, nil
	}

	// no template configured is fine, the builder has default instructions
	template, err := e.promptRepo.FindDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load default prompt template: %w", err)
	}
	return template, nil
}

// transitionWithRetry reloads and retries on a lost compare-and-swap race,
// so two workers touching the same candidate serialize their writes.
func (e *evaluatorService) transitionWithRetry(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error {
	var err error
	for attempt := 0; attempt < casRetryLimit; attempt++ {
		err = e.statusRes.Transition(candidate, to, actor, reason)
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return err
		}

		reloaded, loadErr := e.candidateRepo.FindByID(candidate.ID)
		if loadErr != nil {
			return loadErr
		}
		*candidate = *reloaded
	}
	return err
}

// notify fires the status-dependent notification. Failures are logged and
// swallowed: delivery problems must never fail an evaluation.
func (e *evaluatorService) notify(ctx context.Context, candidate *models.Candidate, posting *models.JobPosting, status models.CandidateStatus) {
	var outcome string
	switch status {
	case models.StatusShortlisted:
		outcome = OutcomeShortlist
	case models.StatusDisqualified:
		outcome = OutcomeReject
	default:
		return
	}

	sent, err := e.notifier.Notify(ctx, candidate.Name, candidate.Email, posting.Title, outcome)
	if err != nil {
		e.logger.Warn("notification delivery failed",
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return
	}
	if sent {
		e.logger.Debug("notification sent",
			zap.String("candidate_id", candidate.ID.String()),
			zap.String("outcome", outcome),
		)
	}
}
