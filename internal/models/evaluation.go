package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

const (
	RiskNone   = "None"
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// ModelHeuristicFallback marks results produced by the local scorer when no
// AI model was reachable.
const ModelHeuristicFallback = "Heuristic-Fallback"

// EvaluationResult is the outcome of one evaluation attempt, AI-sourced or
// heuristic. TotalScore and Confidence are always within [0,100].
type EvaluationResult struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"candidate_id"`
	JobID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	TotalScore      int            `gorm:"not null" json:"total_score"`
	Summary         string         `gorm:"type:text" json:"summary"`
	Strengths       []string       `gorm:"serializer:json" json:"strengths"`
	Weaknesses      []string       `gorm:"serializer:json" json:"weaknesses"`
	MatchedSkills   []string       `gorm:"serializer:json" json:"matched_skills"`
	MissingSkills   []string       `gorm:"serializer:json" json:"missing_skills"`
	CandidateSkills []string       `gorm:"serializer:json" json:"candidate_skills"`
	Details         map[string]int `gorm:"serializer:json" json:"details"`
	Confidence      int            `gorm:"not null" json:"confidence"`
	ConfidenceLevel string         `gorm:"type:text" json:"confidence_level"`
	RiskFlag        string         `gorm:"type:text" json:"risk_flag"`
	Model           string         `gorm:"type:text;not null" json:"model"`
	EvaluatedAt     time.Time      `gorm:"type:timestamp;default:now()" json:"evaluated_at"`
	CreatedAt       time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (EvaluationResult) TableName() string {
	return "evaluation_results"
}

type EvaluationJobStatus string

const (
	JobPending    EvaluationJobStatus = "pending"
	JobProcessing EvaluationJobStatus = "processing"
	JobCompleted  EvaluationJobStatus = "completed"
	JobFailed     EvaluationJobStatus = "failed"
)

// EvaluationJob is one queued unit of "evaluate this candidate against this
// posting with this prompt".
type EvaluationJob struct {
	ID           uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"candidate_id"`
	JobID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"job_id"`
	PromptID     *uuid.UUID          `gorm:"type:uuid" json:"prompt_id,omitempty"`
	RequestedBy  string              `gorm:"type:text" json:"requested_by,omitempty"`
	Attempts     int                 `gorm:"not null;default:0" json:"attempts"`
	Status       EvaluationJobStatus `gorm:"not null;default:'pending'" json:"status"`
	ResultID     *uuid.UUID          `gorm:"type:uuid" json:"result_id,omitempty"`
	ErrorMessage string              `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time           `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (EvaluationJob) TableName() string {
	return "evaluation_jobs"
}
