package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/repositories"
)

type stubCandidateRepo struct {
	candidates  map[uuid.UUID]*models.Candidate
	transitions []*models.StatusTransition
	updateErr   error
	conflicts   int
}

func newStubCandidateRepo(candidates ...*models.Candidate) *stubCandidateRepo {
	repo := &stubCandidateRepo{candidates: map[uuid.UUID]*models.Candidate{}}
	for _, c := range candidates {
		clone := *c
		repo.candidates[c.ID] = &clone
	}
	return repo
}

func (r *stubCandidateRepo) Create(candidate *models.Candidate) error {
	clone := *candidate
	r.candidates[candidate.ID] = &clone
	return nil
}

func (r *stubCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	candidate, ok := r.candidates[id]
	if !ok {
		return nil, errors.New("candidate not found")
	}
	clone := *candidate
	return &clone, nil
}

func (r *stubCandidateRepo) FindByIDWithHistory(id uuid.UUID) (*models.Candidate, error) {
	return r.FindByID(id)
}

func (r *stubCandidateRepo) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, id := range ids {
		if candidate, ok := r.candidates[id]; ok {
			out = append(out, *candidate)
		}
	}
	return out, nil
}

func (r *stubCandidateRepo) FindByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, candidate := range r.candidates {
		if candidate.JobID != nil && *candidate.JobID == jobID {
			out = append(out, *candidate)
		}
	}
	return out, nil
}

func (r *stubCandidateRepo) UpdateStatus(id uuid.UUID, version int64, status models.CandidateStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.conflicts > 0 {
		r.conflicts--
		return repositories.ErrVersionConflict
	}
	candidate, ok := r.candidates[id]
	if !ok {
		return errors.New("candidate not found")
	}
	if candidate.Version != version {
		return repositories.ErrVersionConflict
	}
	candidate.Status = status
	candidate.Version++
	return nil
}

func (r *stubCandidateRepo) AppendTransition(transition *models.StatusTransition) error {
	r.transitions = append(r.transitions, transition)
	return nil
}

func pendingCandidate() *models.Candidate {
	return &models.Candidate{ID: uuid.New(), Status: models.StatusPending}
}

func candidateWithStatus(status models.CandidateStatus) *models.Candidate {
	return &models.Candidate{ID: uuid.New(), Status: status}
}

func TestResolveScoreDefaultThresholds(t *testing.T) {
	resolver := NewStatusResolver(newStubCandidateRepo())
	posting := &models.JobPosting{}

	tests := []struct {
		score    int
		expected models.CandidateStatus
	}{
		{100, models.StatusShortlisted},
		{80, models.StatusShortlisted},
		{79, models.StatusManualReview},
		{50, models.StatusManualReview},
		{49, models.StatusDisqualified},
		{0, models.StatusDisqualified},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolver.ResolveScore(tt.score, posting), "score %d", tt.score)
	}
}

func TestResolveScoreCustomThresholds(t *testing.T) {
	resolver := NewStatusResolver(newStubCandidateRepo())
	posting := &models.JobPosting{AutoShortlist: 90, ManualReview: 70}

	assert.Equal(t, models.StatusShortlisted, resolver.ResolveScore(90, posting))
	assert.Equal(t, models.StatusManualReview, resolver.ResolveScore(89, posting))
	assert.Equal(t, models.StatusDisqualified, resolver.ResolveScore(69, posting))
}

func TestResolveScoreAutoRejectSkipsManualReview(t *testing.T) {
	resolver := NewStatusResolver(newStubCandidateRepo())
	posting := &models.JobPosting{ManualReview: 50, AutoReject: 60}

	// at or below the auto-reject cut-off, the review band does not apply
	assert.Equal(t, models.StatusDisqualified, resolver.ResolveScore(55, posting))
	assert.Equal(t, models.StatusDisqualified, resolver.ResolveScore(60, posting))
	assert.Equal(t, models.StatusManualReview, resolver.ResolveScore(61, posting))
	assert.Equal(t, models.StatusShortlisted, resolver.ResolveScore(85, posting))
}

func TestResolveScoreAutoRejectDisabledByDefault(t *testing.T) {
	resolver := NewStatusResolver(newStubCandidateRepo())
	posting := &models.JobPosting{ManualReview: 50}

	assert.Equal(t, models.StatusManualReview, resolver.ResolveScore(55, posting))
}

func TestResolveScoreIsIdempotent(t *testing.T) {
	resolver := NewStatusResolver(newStubCandidateRepo())
	posting := &models.JobPosting{}

	first := resolver.ResolveScore(75, posting)
	second := resolver.ResolveScore(75, posting)

	assert.Equal(t, first, second)
}

func TestTransitionRecordsHistory(t *testing.T) {
	candidate := pendingCandidate()
	repo := newStubCandidateRepo(candidate)
	resolver := NewStatusResolver(repo)

	err := resolver.Transition(candidate, models.StatusUnderProcess, ActorSystem, "evaluation started")
	require.NoError(t, err)

	assert.Equal(t, models.StatusUnderProcess, candidate.Status)
	assert.Equal(t, int64(1), candidate.Version)
	require.Len(t, repo.transitions, 1)
	assert.Equal(t, models.StatusPending, repo.transitions[0].FromStatus)
	assert.Equal(t, models.StatusUnderProcess, repo.transitions[0].ToStatus)
	assert.Equal(t, ActorSystem, repo.transitions[0].Actor)
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	candidate := pendingCandidate()
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Transition(candidate, models.StatusShortlisted, ActorSystem, "")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, models.StatusPending, candidate.Status)
}

func TestTransitionSameStatusIsIdempotent(t *testing.T) {
	candidate := candidateWithStatus(models.StatusUnderProcess)
	repo := newStubCandidateRepo(candidate)
	resolver := NewStatusResolver(repo)

	err := resolver.Transition(candidate, models.StatusUnderProcess, ActorSystem, "evaluation started")

	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderProcess, candidate.Status)
	assert.Len(t, repo.transitions, 1)
}

func TestTransitionDisqualifiedRequiresReason(t *testing.T) {
	candidate := candidateWithStatus(models.StatusUnderProcess)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Transition(candidate, models.StatusDisqualified, ActorSystem, "   ")

	assert.True(t, errors.Is(err, ErrMissingReason))
}

func TestTransitionSystemCannotReachTerminal(t *testing.T) {
	candidate := candidateWithStatus(models.StatusShortlisted)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Transition(candidate, models.StatusHired, ActorSystem, "")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestTransitionDecidedBackToUnderProcess(t *testing.T) {
	candidate := candidateWithStatus(models.StatusShortlisted)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Transition(candidate, models.StatusUnderProcess, ActorSystem, "re-evaluation")

	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderProcess, candidate.Status)
}

func TestTransitionPropagatesVersionConflict(t *testing.T) {
	candidate := pendingCandidate()
	repo := newStubCandidateRepo(candidate)
	resolver := NewStatusResolver(repo)

	// simulate a concurrent writer bumping the stored version
	repo.candidates[candidate.ID].Version = 5

	err := resolver.Transition(candidate, models.StatusUnderProcess, ActorSystem, "")

	assert.True(t, errors.Is(err, repositories.ErrVersionConflict))
}

func TestOverrideToTerminalStatus(t *testing.T) {
	candidate := candidateWithStatus(models.StatusShortlisted)
	repo := newStubCandidateRepo(candidate)
	resolver := NewStatusResolver(repo)

	err := resolver.Override(candidate, models.StatusHired, "recruiter@example.com", "offer accepted")

	require.NoError(t, err)
	assert.Equal(t, models.StatusHired, candidate.Status)
	require.Len(t, repo.transitions, 1)
	assert.Equal(t, "recruiter@example.com", repo.transitions[0].Actor)
}

func TestOverrideRequiresHumanActor(t *testing.T) {
	candidate := candidateWithStatus(models.StatusShortlisted)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	assert.True(t, errors.Is(resolver.Override(candidate, models.StatusHired, ActorSystem, ""), ErrInvalidTransition))
	assert.True(t, errors.Is(resolver.Override(candidate, models.StatusHired, "", ""), ErrInvalidTransition))
}

func TestOverrideCannotLeaveTerminalStatus(t *testing.T) {
	candidate := candidateWithStatus(models.StatusHired)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Override(candidate, models.StatusShortlisted, "recruiter@example.com", "changed my mind")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, models.StatusHired, candidate.Status)
}

func TestOverrideDisqualifiedRequiresReason(t *testing.T) {
	candidate := candidateWithStatus(models.StatusManualReview)
	resolver := NewStatusResolver(newStubCandidateRepo(candidate))

	err := resolver.Override(candidate, models.StatusDisqualified, "recruiter@example.com", "")

	assert.True(t, errors.Is(err, ErrMissingReason))
}
