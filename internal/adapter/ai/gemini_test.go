package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mycampus/assistant/internal/port"
)

func testConfig(embedURL, genURL string) Config {
	cfg := DefaultConfig("test-key", embedURL, genURL)
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = time.Second
	return cfg
}

// flakyTransport fails the first n round trips with a transport error, then
// delegates to the real transport.
type flakyTransport struct {
	failures int
	seen     int
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.seen++
	if t.seen <= t.failures {
		return nil, errors.New("connection reset")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestEmbedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q, want %q", got, "test-key")
		}
		fmt.Fprint(w, `{"embedding":{"values":[0.1,0.2,0.3]}}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider(testConfig(srv.URL, ""))

	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("len(vec) = %d, want 3", len(vec))
	}
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":{"values":[1]}}`)
	}))
	defer srv.Close()

	// Three transport failures, success on the fourth and final attempt.
	transport := &flakyTransport{failures: 3}
	p := NewGeminiProvider(testConfig(srv.URL, ""))
	p.httpClient = &http.Client{Transport: transport}

	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("Embed() error = %v, want success on final attempt", err)
	}
	if transport.seen != 4 {
		t.Errorf("attempts = %d, want 4", transport.seen)
	}
}

func TestEmbedExhaustsRetries(t *testing.T) {
	transport := &flakyTransport{failures: 10}
	p := NewGeminiProvider(testConfig("http://localhost:0", ""))
	p.httpClient = &http.Client{Transport: transport}

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, port.ErrProviderUnavailable) {
		t.Fatalf("Embed() error = %v, want ErrProviderUnavailable", err)
	}
	if transport.seen != 4 {
		t.Errorf("attempts = %d, want 4 (1 + 3 retries)", transport.seen)
	}
}

func TestEmbedDoesNotRetryStatusErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGeminiProvider(testConfig(srv.URL, ""))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, port.ErrProviderResponse) {
		t.Fatalf("Embed() error = %v, want ErrProviderResponse", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on HTTP errors)", calls)
	}
}

func TestEmbedRejectsEmptyValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":{"values":[]}}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider(testConfig(srv.URL, ""))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, port.ErrProviderResponse) {
		t.Fatalf("Embed() error = %v, want ErrProviderResponse", err)
	}
}

func TestEmbedRequiresConfig(t *testing.T) {
	p := NewGeminiProvider(Config{})
	if _, err := p.Embed(context.Background(), "hello"); !errors.Is(err, port.ErrProviderConfig) {
		t.Errorf("Embed() error = %v, want ErrProviderConfig", err)
	}

	p = NewGeminiProvider(Config{APIKey: "k"})
	if _, err := p.Embed(context.Background(), "hello"); !errors.Is(err, port.ErrProviderConfig) {
		t.Errorf("Embed() without URL error = %v, want ErrProviderConfig", err)
	}
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"jawaban"}]}}]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider(testConfig("", srv.URL))

	answer, err := p.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "jawaban" {
		t.Errorf("Generate() = %q, want %q", answer, "jawaban")
	}
}

func TestGenerateDoesNotRetry(t *testing.T) {
	transport := &flakyTransport{failures: 1}
	p := NewGeminiProvider(testConfig("", "http://localhost:0"))
	p.httpClient = &http.Client{Transport: transport}

	_, err := p.Generate(context.Background(), "prompt")
	if !errors.Is(err, port.ErrProviderUnavailable) {
		t.Fatalf("Generate() error = %v, want ErrProviderUnavailable", err)
	}
	if transport.seen != 1 {
		t.Errorf("attempts = %d, want 1 (generation is never retried)", transport.seen)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider(testConfig("", srv.URL))

	_, err := p.Generate(context.Background(), "prompt")
	if !errors.Is(err, port.ErrProviderResponse) {
		t.Fatalf("Generate() error = %v, want ErrProviderResponse", err)
	}
}
