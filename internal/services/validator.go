package services

import (
	"strings"
)

const (
	anomalyTooShort    = "Text is too short"
	anomalyFewKeywords = "Fewer than 3 common resume keywords found"
)

// resumeKeywords is the fixed vocabulary used to judge whether extracted
// text plausibly came from a resume.
var resumeKeywords = []string{
	"experience",
	"education",
	"skills",
	"work",
	"employment",
	"university",
	"college",
	"degree",
	"bachelor",
	"master",
	"project",
	"certification",
	"summary",
	"objective",
	"email",
	"phone",
	"address",
	"linkedin",
	"references",
	"achievements",
	"languages",
	"internship",
}

const minKeywordMatches = 3

// Validation is advisory metadata attached to the stored candidate record.
// It never blocks evaluation.
type Validation struct {
	IsResume  bool
	Anomalies []string
}

type ContentValidator interface {
	Validate(text string) Validation
}

type contentValidator struct {
	minLength int
}

// NewContentValidator builds a validator with the given minimum character
// threshold (200 for general uploads, 50 for the public-apply flow).
func NewContentValidator(minLength int) ContentValidator {
	return &contentValidator{minLength: minLength}
}

func (v *contentValidator) Validate(text string) Validation {
	validation := Validation{IsResume: true, Anomalies: []string{}}
	lowered := strings.ToLower(text)

	if len(text) < v.minLength {
		validation.IsResume = false
		validation.Anomalies = append(validation.Anomalies, anomalyTooShort)
	}

	matches := 0
	for _, keyword := range resumeKeywords {
		if strings.Contains(lowered, keyword) {
			matches++
		}
	}

	if matches < minKeywordMatches {
		validation.IsResume = false
		validation.Anomalies = append(validation.Anomalies, anomalyFewKeywords)
	}

	return validation
}
