package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDoc struct {
	ProjectID string `json:"project_id"`
	NodeCount int    `json:"node_count"`
}

func TestEncodeDecodeGraphEnvelope_RoundTrips(t *testing.T) {
	doc := sampleDoc{ProjectID: "proj-1", NodeCount: 42}

	envelope, err := EncodeGraphEnvelope(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, envelope)

	var got sampleDoc
	require.NoError(t, DecodeGraphEnvelope(envelope, &got))
	assert.Equal(t, doc, got)
}

func TestMemoryPublisher_RecordsMessagesByTopic(t *testing.T) {
	pub := NewMemoryPublisher()
	require.NoError(t, pub.Publish(context.Background(), "results", []byte(`{"ok":true}`)))
	require.NoError(t, pub.Publish(context.Background(), "results", []byte(`{"ok":false}`)))

	assert.Len(t, pub.Messages["results"], 2)
}

func TestNewRouter_HealthAndSubscribe(t *testing.T) {
	called := false
	router := NewRouter("pubsub", func(body []byte) error {
		called = true
		return nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dapr/subscribe", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parser-code-tasks")

	rec = httptest.NewRecorder()
	body := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"data":{"project_id":"p1"}}`))
	router.ServeHTTP(rec, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
