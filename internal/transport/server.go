package transport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// subscriptionEntry matches Dapr's expected /dapr/subscribe response
// shape: one entry per topic this service consumes.
type subscriptionEntry struct {
	PubsubName string `json:"pubsubname"`
	Topic      string `json:"topic"`
	Route      string `json:"route"`
}

// TaskHandler processes one inbound "parser-code-tasks" message body.
type TaskHandler func(body []byte) error

// NewRouter builds the chi router serving /health, /ready, and
// /dapr/subscribe, plus the inbound task route Dapr delivers
// "parser-code-tasks" messages to.
func NewRouter(pubsubName string, handle TaskHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Get("/dapr/subscribe", func(w http.ResponseWriter, _ *http.Request) {
		subs := []subscriptionEntry{{
			PubsubName: pubsubName,
			Topic:      "parser-code-tasks",
			Route:      "/tasks",
		}}
		writeJSON(w, http.StatusOK, subs)
	})
	r.Post("/tasks", func(w http.ResponseWriter, req *http.Request) {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(req.Body).Decode(&envelope); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "RETRY", "message": err.Error()})
			return
		}
		if err := handle(envelope.Data); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "RETRY", "message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "SUCCESS"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
