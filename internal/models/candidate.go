package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	StatusPending      CandidateStatus = "pending"
	StatusUnderProcess CandidateStatus = "under_process"
	StatusShortlisted  CandidateStatus = "shortlisted"
	StatusManualReview CandidateStatus = "manual_review"
	StatusDisqualified CandidateStatus = "disqualified"
	StatusHired        CandidateStatus = "hired"
	StatusRejected     CandidateStatus = "rejected"
)

// Decided reports whether the status is past automatic evaluation, i.e. a
// score decision or a terminal human decision has already been recorded.
func (s CandidateStatus) Decided() bool {
	switch s {
	case StatusShortlisted, StatusManualReview, StatusDisqualified, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses are reachable only by explicit human action.
func (s CandidateStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

type Candidate struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string          `gorm:"type:text" json:"name"`
	Email            string          `gorm:"type:text" json:"email"`
	JobID            *uuid.UUID      `gorm:"type:uuid;index" json:"job_id,omitempty"`
	OriginalFileName string          `gorm:"type:text" json:"original_filename"`
	MimeType         string          `gorm:"type:text" json:"mime_type"`
	ExtractedText    string          `gorm:"type:text" json:"-"`
	IsResume         bool            `json:"is_resume"`
	Anomalies        []string        `gorm:"serializer:json" json:"anomalies"`
	Status           CandidateStatus `gorm:"not null;default:'pending'" json:"status"`
	Version          int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt        time.Time       `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"type:timestamp;default:now()" json:"updated_at"`

	History []StatusTransition `gorm:"foreignKey:CandidateID" json:"history,omitempty"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// StatusTransition is one append-only audit entry. Rows are never updated
// or deleted.
type StatusTransition struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID uuid.UUID       `gorm:"type:uuid;not null;index" json:"candidate_id"`
	FromStatus  CandidateStatus `gorm:"type:text;not null" json:"from_status"`
	ToStatus    CandidateStatus `gorm:"type:text;not null" json:"to_status"`
	Actor       string          `gorm:"type:text;not null" json:"actor"`
	Reason      string          `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time       `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (StatusTransition) TableName() string {
	return "status_transitions"
}
