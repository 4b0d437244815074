package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

const (
	heuristicBaselineMatch  = 50
	heuristicKeywordWeight  = 60.0
	heuristicLongTextBonus  = 40.0
	heuristicShortTextBonus = 20.0
	heuristicLengthCutoff   = 500
	heuristicConfidence     = 60
	heuristicRiskCutoff     = 40
	heuristicListLimit      = 5
)

// HeuristicScorer is the deterministic keyword-overlap fallback used when
// neither AI model produced a usable evaluation. It never fails and returns
// identical output for identical input.
type HeuristicScorer interface {
	Score(candidateText string, keywords []string) *models.EvaluationResult
}

type heuristicScorer struct{}

func NewHeuristicScorer() HeuristicScorer {
	return &heuristicScorer{}
}

func (h *heuristicScorer) Score(candidateText string, keywords []string) *models.EvaluationResult {
	lowered := strings.ToLower(candidateText)

	result := &models.EvaluationResult{
		Strengths:       []string{},
		Weaknesses:      []string{},
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		CandidateSkills: []string{},
		Details:         map[string]int{},
		Confidence:      heuristicConfidence,
		ConfidenceLevel: models.ConfidenceLow,
	}

	var keywordComponent float64
	if len(keywords) == 0 {
		keywordComponent = heuristicBaselineMatch
		result.Details["requirementsMatch"] = heuristicBaselineMatch
		result.Summary = "Heuristic evaluation: the job posting lists no requirement keywords, baseline score applied."
	} else {
		var matched, missing []string
		for _, keyword := range keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
			} else {
				missing = append(missing, keyword)
			}
		}

		matchRatio := float64(len(matched)) / float64(len(keywords))
		keywordComponent = matchRatio * heuristicKeywordWeight
		result.Details["requirementsMatch"] = int(math.Round(matchRatio * 100))

		result.Strengths = append(result.Strengths, limitList(matched, heuristicListLimit)...)
		result.Weaknesses = append(result.Weaknesses, limitList(missing, heuristicListLimit)...)
		result.MatchedSkills = append(result.MatchedSkills, matched...)
		result.MissingSkills = append(result.MissingSkills, missing...)
		result.CandidateSkills = append(result.CandidateSkills, matched...)
		result.Summary = fmt.Sprintf(
			"Heuristic evaluation: matched %d of %d job keywords.",
			len(matched), len(keywords),
		)
	}

	lengthComponent := heuristicShortTextBonus
	if len(candidateText) > heuristicLengthCutoff {
		lengthComponent = heuristicLongTextBonus
	} else {
		result.Weaknesses = append(result.Weaknesses, "brief content")
	}

	score := int(math.Round(keywordComponent + lengthComponent))
	if score > 100 {
		score = 100
	}
	result.TotalScore = score

	if score < heuristicRiskCutoff {
		result.RiskFlag = models.RiskHigh
	} else {
		result.RiskFlag = models.RiskLow
	}

	return result
}

func limitList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
