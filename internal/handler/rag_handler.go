package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/middleware"
)

// QuestionAnswerer runs the question-answering pipeline.
type QuestionAnswerer interface {
	Answer(ctx context.Context, ownerID *int64, question string, topK int, localTime *time.Time) (string, []domain.EmbeddingRecord, error)
}

// ChatHistory lists stored conversation turns.
type ChatHistory interface {
	ListChatByUser(ctx context.Context, userID int64, limit int) ([]domain.ConversationTurn, error)
}

// RAGHandler handles assistant question endpoints.
type RAGHandler struct {
	rag     QuestionAnswerer
	history ChatHistory
}

// NewRAGHandler creates a new RAG handler.
func NewRAGHandler(rag QuestionAnswerer, history ChatHistory) *RAGHandler {
	return &RAGHandler{rag: rag, history: history}
}

// Register sets up the authenticated assistant routes.
func (h *RAGHandler) Register(router fiber.Router) {
	rag := router.Group("/rag")
	rag.Post("/ask", h.Ask)
	rag.Get("/history", h.History)
}

// RegisterPublic sets up the anonymous ask route. Questions asked here scope
// retrieval by the optional id_user in the body and leave no history unless
// one is given.
func (h *RAGHandler) RegisterPublic(app *fiber.App) {
	app.Post("/api/v1/ask", h.AskPublic)
}

type askBody struct {
	Question        string     `json:"question"`
	TopK            int        `json:"top_k"`
	ClientLocalTime *time.Time `json:"client_local_time"`
	UserID          *int64     `json:"id_user"` // public route only
}

func (h *RAGHandler) answer(c fiber.Ctx, ownerID *int64, body askBody) error {
	answer, docs, err := h.rag.Answer(c.Context(), ownerID, body.Question, body.TopK, body.ClientLocalTime)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	contextDocs := make([]fiber.Map, len(docs))
	for i, doc := range docs {
		contextDocs[i] = fiber.Map{
			"source_type": doc.SourceType,
			"source_id":   doc.SourceID,
			"text":        doc.Text,
		}
	}

	return c.JSON(fiber.Map{
		"answer":       answer,
		"context_docs": contextDocs,
	})
}

// Ask answers a question scoped to the authenticated user.
func (h *RAGHandler) Ask(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body askBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	return h.answer(c, &uc.UserID, body)
}

// AskPublic answers a question without authentication.
func (h *RAGHandler) AskPublic(c fiber.Ctx) error {
	var body askBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	return h.answer(c, body.UserID, body)
}

// History returns the authenticated user's conversation log, oldest first.
func (h *RAGHandler) History(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	turns, err := h.history.ListChatByUser(c.Context(), uc.UserID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"history": turns, "count": len(turns)})
}
