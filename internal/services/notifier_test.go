package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookNotifierDeliversEvent(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, 5*time.Second, zap.NewNop())

	sent, err := notifier.Notify(context.Background(), "Jamie Rivera", "jamie@example.com", "Backend Engineer", OutcomeShortlist)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, map[string]string{
		"candidate_name":  "Jamie Rivera",
		"candidate_email": "jamie@example.com",
		"job_title":       "Backend Engineer",
		"outcome":         "shortlist",
	}, received)
}

func TestWebhookNotifierEmptyURLIsDisabled(t *testing.T) {
	notifier := NewWebhookNotifier("", 5*time.Second, zap.NewNop())

	sent, err := notifier.Notify(context.Background(), "Jamie", "jamie@example.com", "Backend Engineer", OutcomeReject)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestWebhookNotifierNonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, 5*time.Second, zap.NewNop())

	sent, err := notifier.Notify(context.Background(), "Jamie", "jamie@example.com", "Backend Engineer", OutcomeReject)
	assert.Error(t, err)
	assert.False(t, sent)
}
