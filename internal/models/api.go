package models

type UploadResponse struct {
	ID           string   `json:"id"`
	OriginalName string   `json:"original_name"`
	IsResume     bool     `json:"is_resume"`
	Anomalies    []string `json:"anomalies"`
	Status       string   `json:"status"`
}

type EvaluateRequest struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	PromptID    string `json:"prompt_id,omitempty"`
}

type BulkEvaluateRequest struct {
	JobID        string   `json:"job_id"`
	PromptID     string   `json:"prompt_id,omitempty"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	RequestedBy  string   `json:"requested_by,omitempty"`
}

type BulkEvaluateResponse struct {
	Queued int `json:"queued"`
}

type BulkProgressResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Pending   int64 `json:"pending"`
}

type OverrideStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}
