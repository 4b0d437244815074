package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notification outcomes delivered after an evaluation decision.
const (
	OutcomeShortlist = "shortlist"
	OutcomeReject    = "reject"
)

// Notifier is the notification boundary. Delivery is best effort: callers
// log failures and never propagate them into evaluation results.
type Notifier interface {
	Notify(ctx context.Context, candidateName, candidateEmail, jobTitle, outcome string) (bool, error)
}

type webhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier posts notification events to the configured webhook.
// An empty URL disables delivery entirely.
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) Notifier {
	return &webhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type notificationEvent struct {
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	JobTitle       string `json:"job_title"`
	Outcome        string `json:"outcome"`
}

func (n *webhookNotifier) Notify(ctx context.Context, candidateName, candidateEmail, jobTitle, outcome string) (bool, error) {
	if n.url == "" {
		return false, nil
	}

	body, err := json.Marshal(notificationEvent{
		CandidateName:  candidateName,
		CandidateEmail: candidateEmail,
		JobTitle:       jobTitle,
		Outcome:        outcome,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return false, fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("notification delivered",
		zap.String("outcome", outcome),
		zap.String("job_title", jobTitle),
	)
	return true, nil
}
