package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	// Endpoint is the embedding service's full URL (e.g.
	// "http://localhost:11434/api/embed").
	Endpoint string
	Model    string
	Dims     int
	Timeout  time.Duration
}

// HTTPProvider calls a JSON HTTP embedding endpoint: POST {model, input},
// expects {embeddings: [][]float32} back. This shape matches Ollama's
// /api/embed and is broad enough to front most self-hosted embedding
// servers behind a thin adapter.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	model    string
	dims     int
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider returns an HTTPProvider for cfg.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPProvider{
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		dims:     cfg.Dims,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *HTTPProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, apperrors.ServiceUnavailable("failed to encode embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ServiceUnavailable("failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.ServiceUnavailable("embedding provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.ServiceUnavailable(
			fmt.Sprintf("embedding provider returned status %d: %s", resp.StatusCode, string(payload)), nil)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.ServiceUnavailable("failed to decode embedding response", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, apperrors.ServiceUnavailable(
			fmt.Sprintf("embedding provider returned %d vectors for %d inputs", len(parsed.Embeddings), len(texts)), nil)
	}
	return parsed.Embeddings, nil
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *HTTPProvider) Dimensions() int  { return p.dims }
func (p *HTTPProvider) ModelName() string { return p.model }

func (p *HTTPProvider) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
