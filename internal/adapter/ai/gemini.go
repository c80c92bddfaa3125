package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mycampus/assistant/internal/port"
)

// Config holds the Gemini REST API configuration. The embed and generate
// endpoints are separate URLs sharing one API key.
type Config struct {
	APIKey      string
	EmbedURL    string
	GenerateURL string
	EmbedModel  string        // e.g. models/gemini-embedding-001
	Dimension   int           // requested output dimensionality
	MaxRetries  int           // extra embed attempts after the first
	RetryDelay  time.Duration // initial backoff, doubled per retry
	Timeout     time.Duration // per-attempt HTTP timeout
}

// DefaultConfig returns the production Gemini configuration for the given
// key and endpoint URLs.
func DefaultConfig(apiKey, embedURL, generateURL string) Config {
	return Config{
		APIKey:      apiKey,
		EmbedURL:    embedURL,
		GenerateURL: generateURL,
		EmbedModel:  "models/gemini-embedding-001",
		Dimension:   768,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// GeminiProvider implements port.EmbeddingProvider and
// port.GenerationProvider against the Gemini REST API.
//
// Embeddings are retried on transient network failures because they gate
// index consistency; generation is not retried — a failed answer surfaces
// to the caller immediately.
type GeminiProvider struct {
	cfg        Config
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini-backed AI provider.
func NewGeminiProvider(cfg Config) *GeminiProvider {
	return &GeminiProvider{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Dimension returns the configured embedding dimensionality.
func (g *GeminiProvider) Dimension() int {
	return g.cfg.Dimension
}

// Embed generates an embedding vector for the given text.
//
// Transient failures (connect/read timeouts, dropped connections) are
// retried with exponential backoff starting at cfg.RetryDelay. An HTTP
// error status or an unparsable body fails immediately: the server answered,
// so retrying the same request would not help.
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", port.ErrProviderConfig)
	}
	if g.cfg.EmbedURL == "" {
		return nil, fmt.Errorf("%w: GEMINI_EMBED_URL not set", port.ErrProviderConfig)
	}

	payload := map[string]any{
		"model": g.cfg.EmbedModel,
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
		"output_dimensionality": g.cfg.Dimension,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embed payload: %w", err)
	}

	attempts := g.cfg.MaxRetries + 1
	delay := g.cfg.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		respBody, err := g.post(ctx, g.cfg.EmbedURL, body)
		if err == nil {
			var resp struct {
				Embedding struct {
					Values []float32 `json:"values"`
				} `json:"embedding"`
			}
			if jsonErr := json.Unmarshal(respBody, &resp); jsonErr != nil {
				return nil, fmt.Errorf("%w: embed decode: %v", port.ErrProviderResponse, jsonErr)
			}
			if len(resp.Embedding.Values) == 0 {
				return nil, fmt.Errorf("%w: embed response has no values", port.ErrProviderResponse)
			}
			return resp.Embedding.Values, nil
		}

		var statusErr *statusError
		if errors.As(err, &statusErr) {
			// The server responded; not transient.
			return nil, fmt.Errorf("%w: embed status %d: %s", port.ErrProviderResponse, statusErr.code, statusErr.body)
		}

		lastErr = err
		slog.Warn("gemini embed attempt failed", "attempt", attempt, "of", attempts, "error", err)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", port.ErrProviderUnavailable, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("%w: embed failed after %d attempts: %v", port.ErrProviderUnavailable, attempts, lastErr)
}

// Generate produces an answer for the given prompt. Single attempt, no retry.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", port.ErrProviderConfig)
	}
	if g.cfg.GenerateURL == "" {
		return "", fmt.Errorf("%w: GEMINI_GEN_URL not set", port.ErrProviderConfig)
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate payload: %w", err)
	}

	respBody, err := g.post(ctx, g.cfg.GenerateURL, body)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: generate status %d: %s", port.ErrProviderResponse, statusErr.code, statusErr.body)
		}
		return "", fmt.Errorf("%w: generate: %v", port.ErrProviderUnavailable, err)
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: generate decode: %v", port.ErrProviderResponse, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: generate response has no candidates", port.ErrProviderResponse)
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// statusError marks a non-2xx response so Embed can tell it apart from
// transport failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini API error (%d): %s", e.code, e.body)
}

// post issues one HTTP attempt with its own timeout.
func (g *GeminiProvider) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	return respBody, nil
}
