package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/domain"
)

type fakeAnswerer struct {
	answer    string
	docs      []domain.EmbeddingRecord
	err       error
	lastOwner *int64
	lastTopK  int
}

func (f *fakeAnswerer) Answer(ctx context.Context, ownerID *int64, question string, topK int, localTime *time.Time) (string, []domain.EmbeddingRecord, error) {
	f.lastOwner = ownerID
	f.lastTopK = topK
	return f.answer, f.docs, f.err
}

type fakeChatHistory struct {
	turns []domain.ConversationTurn
}

func (f *fakeChatHistory) ListChatByUser(ctx context.Context, userID int64, limit int) ([]domain.ConversationTurn, error) {
	return f.turns, nil
}

// fakeAuth injects a user context the way the JWT middleware would.
func fakeAuth(userID int64) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals("user", &domain.UserContext{UserID: userID, Email: "budi@kampus.ac.id", Name: "Budi"})
		return c.Next()
	}
}

func newRAGTestApp(answerer *fakeAnswerer, history *fakeChatHistory, authed bool) *fiber.App {
	app := fiber.New()
	h := NewRAGHandler(answerer, history)

	var api fiber.Router
	if authed {
		api = app.Group("/api/v1", fakeAuth(7))
	} else {
		api = app.Group("/api/v1")
	}
	h.Register(api)
	h.RegisterPublic(app)
	return app
}

func TestAskScopesToAuthenticatedUser(t *testing.T) {
	answerer := &fakeAnswerer{
		answer: "Besok ada kelas Algoritma.",
		docs:   []domain.EmbeddingRecord{{SourceType: "jadwal", SourceID: "3", Text: "Jadwal Mata Kuliah: Algoritma."}},
	}
	app := newRAGTestApp(answerer, &fakeChatHistory{}, true)

	req := httptest.NewRequest("POST", "/api/v1/rag/ask", strings.NewReader(`{"question":"Besok ada kelas apa?","top_k":3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if answerer.lastOwner == nil || *answerer.lastOwner != 7 {
		t.Errorf("owner not taken from JWT context")
	}
	if answerer.lastTopK != 3 {
		t.Errorf("top_k = %d, want 3", answerer.lastTopK)
	}

	var body struct {
		Answer      string `json:"answer"`
		ContextDocs []struct {
			SourceType string `json:"source_type"`
		} `json:"context_docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != "Besok ada kelas Algoritma." {
		t.Errorf("answer = %q", body.Answer)
	}
	if len(body.ContextDocs) != 1 || body.ContextDocs[0].SourceType != "jadwal" {
		t.Errorf("context_docs = %+v", body.ContextDocs)
	}
}

func TestAskRequiresAuth(t *testing.T) {
	app := newRAGTestApp(&fakeAnswerer{}, &fakeChatHistory{}, false)

	req := httptest.NewRequest("POST", "/api/v1/rag/ask", strings.NewReader(`{"question":"halo"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	app := newRAGTestApp(&fakeAnswerer{}, &fakeChatHistory{}, true)

	req := httptest.NewRequest("POST", "/api/v1/rag/ask", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAskPublicUsesBodyUserID(t *testing.T) {
	answerer := &fakeAnswerer{answer: "ok"}
	app := newRAGTestApp(answerer, &fakeChatHistory{}, false)

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(`{"question":"halo","id_user":9}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if answerer.lastOwner == nil || *answerer.lastOwner != 9 {
		t.Errorf("public ask ignored id_user from body")
	}
}

func TestAskPublicAnonymous(t *testing.T) {
	answerer := &fakeAnswerer{answer: "ok"}
	app := newRAGTestApp(answerer, &fakeChatHistory{}, false)

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(`{"question":"halo"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if answerer.lastOwner != nil {
		t.Errorf("anonymous ask was owner-scoped")
	}
}

func TestHistoryReturnsTurns(t *testing.T) {
	history := &fakeChatHistory{turns: []domain.ConversationTurn{
		{ID: 1, UserID: 7, Role: domain.RoleUser, Message: "halo"},
		{ID: 2, UserID: 7, Role: domain.RoleAssistant, Message: "hai"},
	}}
	app := newRAGTestApp(&fakeAnswerer{}, history, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/rag/history", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Count   int                       `json:"count"`
		History []domain.ConversationTurn `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 2 || len(body.History) != 2 {
		t.Errorf("count = %d, history = %d, want 2 each", body.Count, len(body.History))
	}
	if body.History[0].Role != domain.RoleUser || body.History[1].Role != domain.RoleAssistant {
		t.Errorf("history order wrong: %+v", body.History)
	}
}
