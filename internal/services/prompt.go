package services

import (
	"fmt"
	"strings"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/models"
)

const defaultPromptInstructions = `You are an expert HR recruiter scoring a candidate resume against a job posting. Be objective and justify scores with specific evidence from the resume.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEvaluationPrompt renders the single structured scoring prompt sent to
// both AI models. The response contract is a fixed JSON schema with no
// surrounding prose.
func (pb *PromptBuilder) BuildEvaluationPrompt(
	posting *models.JobPosting,
	template *models.PromptTemplate,
	referenceContext string,
	candidateText string,
) string {
	instructions := defaultPromptInstructions
	if template != nil && strings.TrimSpace(template.Instructions) != "" {
		instructions = strings.TrimSpace(template.Instructions)
	}

	var b strings.Builder

	b.WriteString(instructions)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "JOB TITLE: %s\n", posting.Title)
	fmt.Fprintf(&b, "INDUSTRY: %s\n", posting.Industry)
	fmt.Fprintf(&b, "EXPERIENCE LEVEL: %s\n\n", posting.ExperienceLevel)

	writeSection(&b, "RESPONSIBILITIES", posting.Responsibilities)
	writeSection(&b, "REQUIREMENTS", posting.Requirements)
	writeSection(&b, "ROLE EXPECTATIONS", posting.RoleExpectations)
	writeSection(&b, "PERFORMANCE INDICATORS", posting.PerformanceIndicators)

	if referenceContext != "" {
		b.WriteString("REFERENCE CONTEXT:\n")
		b.WriteString(referenceContext)
		b.WriteString("\n\n")
	}

	b.WriteString("CANDIDATE RESUME:\n")
	b.WriteString(candidateText)
	b.WriteString("\n\n")

	b.WriteString(`Score the candidate against the posting. Return ONLY a JSON object with exactly this structure, no markdown fences or extra text:
{
  "total_score": <integer 0-100>,
  "summary": "<3-5 sentence assessment>",
  "strengths": ["<string>"],
  "weaknesses": ["<string>"],
  "matched_skills": ["<string>"],
  "missing_skills": ["<string>"],
  "candidate_skills": ["<string>"],
  "details": {
    "skillsMatch": <integer 0-100>,
    "experienceMatch": <integer 0-100>,
    "requirementsMatch": <integer 0-100>
  },
  "confidence": <integer 0-100>,
  "risk_flag": "<None|Low|Medium|High>"
}`)

	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString(":\n")
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}
