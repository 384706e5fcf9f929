// Package transport carries pub/sub envelopes in and out of the
// Orchestrator: inbound work items from "parser-code-tasks", outbound
// graph documents (zstd+base64) to "graph-updates", and plain JSON run
// results to "results". A small interface lets tests use an in-memory
// double while production posts to the Dapr sidecar over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/klauspost/compress/zstd"
)

// Publisher sends a message to a named pub/sub topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// EncodeGraphEnvelope zstd-compresses then base64-encodes doc, the shape
// published on "graph-updates".
func EncodeGraphEnvelope(doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal graph document: %w", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		return "", fmt.Errorf("compress graph document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close zstd encoder: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeGraphEnvelope reverses EncodeGraphEnvelope, unmarshalling the
// decompressed bytes into v.
func DecodeGraphEnvelope(envelope string, v any) error {
	compressed, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return fmt.Errorf("decode base64 envelope: %w", err)
	}

	dec, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(dec); err != nil {
		return fmt.Errorf("decompress graph document: %w", err)
	}
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		return fmt.Errorf("unmarshal graph document: %w", err)
	}
	return nil
}

// DaprPublisher posts to a Dapr sidecar's pub/sub publish endpoint.
type DaprPublisher struct {
	Host   string
	PubSub string
	Client *http.Client
}

// NewDaprPublisher creates a DaprPublisher targeting the sidecar at host
// (e.g. "localhost:3500") under the named pub/sub component.
func NewDaprPublisher(host, pubsub string) *DaprPublisher {
	return &DaprPublisher{Host: host, PubSub: pubsub, Client: http.DefaultClient}
}

// Publish POSTs payload to the sidecar's /v1.0/publish/{pubsub}/{topic}.
func (p *DaprPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	url := fmt.Sprintf("http://%s/v1.0/publish/%s/%s", p.Host, p.PubSub, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build publish request for topic %s: %w", topic, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("publish to topic %s: %w", topic, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("publish to topic %s: sidecar returned status %d", topic, resp.StatusCode)
	}
	return nil
}

// MemoryPublisher is an in-process double recording every publish, used
// by tests in place of a live Dapr sidecar.
type MemoryPublisher struct {
	Messages map[string][][]byte
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{Messages: map[string][][]byte{}}
}

// Publish records payload under topic.
func (m *MemoryPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}
