package models

import (
	"time"

	"github.com/google/uuid"
)

// Default score cut-offs applied when a posting leaves its own unset.
const (
	DefaultAutoShortlist = 80
	DefaultManualReview  = 50
)

type JobPosting struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                 string    `gorm:"type:text;not null" json:"title"`
	Industry              string    `gorm:"type:text" json:"industry"`
	ExperienceLevel       string    `gorm:"type:text" json:"experience_level"`
	Responsibilities      []string  `gorm:"serializer:json" json:"responsibilities"`
	Requirements          []string  `gorm:"serializer:json" json:"requirements"`
	RoleExpectations      []string  `gorm:"serializer:json" json:"role_expectations"`
	PerformanceIndicators []string  `gorm:"serializer:json" json:"performance_indicators"`
	AutoShortlist         int       `json:"auto_shortlist"`
	ManualReview          int       `json:"manual_review"`
	AutoReject            int       `json:"auto_reject"`
	CreatedAt             time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt             time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// ShortlistCutoff returns the configured auto-shortlist threshold, falling
// back to the platform default when the posting has none.
func (j *JobPosting) ShortlistCutoff() int {
	if j.AutoShortlist > 0 {
		return j.AutoShortlist
	}
	return DefaultAutoShortlist
}

func (j *JobPosting) ReviewCutoff() int {
	if j.ManualReview > 0 {
		return j.ManualReview
	}
	return DefaultManualReview
}

// Keywords returns the combined requirement and responsibility terms used
// by the heuristic scorer.
func (j *JobPosting) Keywords() []string {
	keywords := make([]string, 0, len(j.Requirements)+len(j.Responsibilities))
	keywords = append(keywords, j.Requirements...)
	keywords = append(keywords, j.Responsibilities...)
	return keywords
}
