package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

// ContextRetriever supplies optional reference-document context for the
// scoring prompt. Lookups are best-effort.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, queryText string, docTypes []string) (string, error)
}

// EvaluationOrchestrator produces exactly one evaluation result per call.
// AI failures are absorbed by the fallback cascade and never surface to the
// caller: primary model, then secondary model, then the heuristic scorer.
type EvaluationOrchestrator interface {
	Evaluate(ctx context.Context, candidateText string, posting *models.JobPosting, template *models.PromptTemplate) *models.EvaluationResult
}

type orchestrator struct {
	primary   TextGenerator
	secondary TextGenerator
	heuristic HeuristicScorer
	prompts   *PromptBuilder
	retriever ContextRetriever
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewEvaluationOrchestrator(
	primary TextGenerator,
	secondary TextGenerator,
	heuristic HeuristicScorer,
	retriever ContextRetriever,
	timeout time.Duration,
	logger *zap.Logger,
) EvaluationOrchestrator {
	return &orchestrator{
		primary:   primary,
		secondary: secondary,
		heuristic: heuristic,
		prompts:   NewPromptBuilder(),
		retriever: retriever,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

func (o *orchestrator) Evaluate(
	ctx context.Context,
	candidateText string,
	posting *models.JobPosting,
	template *models.PromptTemplate,
) *models.EvaluationResult {
	referenceContext := o.retrieveContext(ctx, posting)
	prompt := o.prompts.BuildEvaluationPrompt(posting, template, referenceContext, candidateText)

	for _, generator := range []TextGenerator{o.primary, o.secondary} {
		if generator == nil {
			continue
		}

		result, err := o.tryModel(ctx, generator, prompt)
		if err != nil {
			o.logger.Warn("AI model evaluation failed, falling back",
				zap.String("model", generator.Model()),
				zap.Error(err),
			)
			continue
		}

		o.finalize(result, generator.Model())
		return result
	}

	result := o.heuristic.Score(candidateText, posting.Keywords())
	o.finalize(result, models.ModelHeuristicFallback)
	return result
}

// tryModel performs a single attempt against one model. No per-model
// retries: a failure immediately advances the cascade.
func (o *orchestrator) tryModel(ctx context.Context, generator TextGenerator, prompt string) (*models.EvaluationResult, error) {
	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	raw, err := generator.Generate(callCtx, prompt)
	if err != nil {
		return nil, err
	}

	return parseAIResult(raw)
}

func (o *orchestrator) retrieveContext(ctx context.Context, posting *models.JobPosting) string {
	if o.retriever == nil {
		return ""
	}

	query := fmt.Sprintf("Job requirements and qualifications for %s", posting.Title)
	referenceContext, err := o.retriever.RetrieveContext(ctx, query, []string{"job_description", "scoring_rubric"})
	if err != nil {
		o.logger.Debug("reference context lookup failed", zap.Error(err))
		return ""
	}
	return referenceContext
}

func (o *orchestrator) finalize(result *models.EvaluationResult, model string) {
	result.Model = model
	result.EvaluatedAt = o.now()

	result.TotalScore = clampScore(result.TotalScore)
	result.Confidence = clampScore(result.Confidence)
	for key, value := range result.Details {
		result.Details[key] = clampScore(value)
	}

	if result.ConfidenceLevel == "" {
		result.ConfidenceLevel = confidenceLevel(result.Confidence)
	}
}

// aiPayload is the strict schema the AI response must satisfy. The model's
// output is untrusted input: malformed field types reject the whole
// response, missing fields default to empty/zero.
type aiPayload struct {
	TotalScore      int            `json:"total_score"`
	Summary         string         `json:"summary"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	MatchedSkills   []string       `json:"matched_skills"`
	MissingSkills   []string       `json:"missing_skills"`
	CandidateSkills []string       `json:"candidate_skills"`
	Details         map[string]int `json:"details"`
	Confidence      int            `json:"confidence"`
	RiskFlag        string         `json:"risk_flag"`
}

func parseAIResult(raw string) (*models.EvaluationResult, error) {
	payload := aiPayload{}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return &models.EvaluationResult{
		TotalScore:      payload.TotalScore,
		Summary:         payload.Summary,
		Strengths:       defaultList(payload.Strengths),
		Weaknesses:      defaultList(payload.Weaknesses),
		MatchedSkills:   defaultList(payload.MatchedSkills),
		MissingSkills:   defaultList(payload.MissingSkills),
		CandidateSkills: defaultList(payload.CandidateSkills),
		Details:         defaultDetails(payload.Details),
		Confidence:      payload.Confidence,
		RiskFlag:        defaultRiskFlag(payload.RiskFlag),
	}, nil
}

// extractJSON isolates the JSON payload from a model response that may wrap
// it in markdown fences or surround it with prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func confidenceLevel(confidence int) string {
	switch {
	case confidence >= 80:
		return models.ConfidenceHigh
	case confidence >= 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func defaultList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func defaultDetails(details map[string]int) map[string]int {
	if details == nil {
		return map[string]int{}
	}
	return details
}

func defaultRiskFlag(flag string) string {
	switch flag {
	case models.RiskNone, models.RiskLow, models.RiskMedium, models.RiskHigh:
		return flag
	default:
		return models.RiskNone
	}
}
