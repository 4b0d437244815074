package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

// ActorSystem marks transitions produced by the evaluation pipeline itself,
// as opposed to a human override.
const ActorSystem = "system"

var (
	// ErrMissingReason rejects a disqualification without a recorded reason.
	ErrMissingReason = errors.New("disqualified transition requires a reason")
	// ErrInvalidTransition rejects moves the status state machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// allowedTransitions is the status state machine. Decided statuses may
// return to under_process because bulk re-evaluation is permitted; terminal
// statuses have no outgoing edges.
var allowedTransitions = map[models.CandidateStatus][]models.CandidateStatus{
	models.StatusPending:      {models.StatusUnderProcess},
	models.StatusUnderProcess: {models.StatusShortlisted, models.StatusManualReview, models.StatusDisqualified},
	models.StatusShortlisted:  {models.StatusUnderProcess, models.StatusManualReview, models.StatusDisqualified, models.StatusHired, models.StatusRejected},
	models.StatusManualReview: {models.StatusUnderProcess, models.StatusShortlisted, models.StatusDisqualified, models.StatusHired, models.StatusRejected},
	models.StatusDisqualified: {models.StatusUnderProcess, models.StatusShortlisted, models.StatusManualReview, models.StatusHired, models.StatusRejected},
	models.StatusHired:        {},
	models.StatusRejected:     {},
}

type StatusResolver interface {
	ResolveScore(score int, posting *models.JobPosting) models.CandidateStatus
	Transition(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error
	Override(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error
}

type statusResolver struct {
	candidateRepo repositories.CandidateRepository
}

func NewStatusResolver(candidateRepo repositories.CandidateRepository) StatusResolver {
	return &statusResolver{candidateRepo: candidateRepo}
}

// ResolveScore maps an evaluation score to a status using the posting's
// cut-off thresholds. A configured auto-reject cut-off pulls scores at or
// below it straight to disqualified, skipping manual review. Resolving the
// same score twice yields the same status.
func (s *statusResolver) ResolveScore(score int, posting *models.JobPosting) models.CandidateStatus {
	switch {
	case score >= posting.ShortlistCutoff():
		return models.StatusShortlisted
	case posting.AutoReject > 0 && score <= posting.AutoReject:
		return models.StatusDisqualified
	case score >= posting.ReviewCutoff():
		return models.StatusManualReview
	default:
		return models.StatusDisqualified
	}
}

// Transition validates the move against the state machine, appends an
// immutable history entry and updates the candidate via compare-and-swap.
// Same-status transitions are accepted so repeated evaluation runs stay
// idempotent.
func (s *statusResolver) Transition(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error {
	if to.Terminal() && actor == ActorSystem {
		return fmt.Errorf("%w: %s is reachable only by human action", ErrInvalidTransition, to)
	}

	if candidate.Status != to && !transitionAllowed(candidate.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, candidate.Status, to)
	}

	return s.apply(candidate, to, actor, reason)
}

// Override is the human transition path: it bypasses the score rule and the
// transition table but is audited identically. Terminal statuses cannot be
// overridden away from.
func (s *statusResolver) Override(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error {
	if actor == "" || actor == ActorSystem {
		return fmt.Errorf("%w: override requires a human actor", ErrInvalidTransition)
	}

	if candidate.Status.Terminal() && candidate.Status != to {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, candidate.Status)
	}

	return s.apply(candidate, to, actor, reason)
}

func (s *statusResolver) apply(candidate *models.Candidate, to models.CandidateStatus, actor, reason string) error {
	if to == models.StatusDisqualified && strings.TrimSpace(reason) == "" {
		return ErrMissingReason
	}

	if err := s.candidateRepo.UpdateStatus(candidate.ID, candidate.Version, to); err != nil {
		return err
	}

	transition := &models.StatusTransition{
		CandidateID: candidate.ID,
		FromStatus:  candidate.Status,
		ToStatus:    to,
		Actor:       actor,
		Reason:      reason,
	}
	if err := s.candidateRepo.AppendTransition(transition); err != nil {
		return err
	}

	candidate.Status = to
	candidate.Version++
	return nil
}

func transitionAllowed(from, to models.CandidateStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
