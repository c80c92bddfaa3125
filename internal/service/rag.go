package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/port"
)

// DefaultTopK is the number of context documents retrieved when the caller
// does not specify one.
const DefaultTopK = 5

// VectorSearcher is the slice of the vector store the RAG pipeline needs.
type VectorSearcher interface {
	NearestNeighbors(ctx context.Context, vector []float32, k int, ownerID *int64) ([]domain.EmbeddingRecord, error)
}

// HistoryStore persists conversation turns. AppendExchange writes the
// question and answer atomically so history never holds half a conversation.
type HistoryStore interface {
	AppendExchange(ctx context.Context, userID int64, question, answer string) error
	ListChatByUser(ctx context.Context, userID int64, limit int) ([]domain.ConversationTurn, error)
}

// RAGService answers questions over the user's personal data: embed the
// question, retrieve the nearest context documents, generate an answer from
// the augmented prompt, then record the exchange.
type RAGService struct {
	embedder       port.EmbeddingProvider
	generator      port.GenerationProvider
	searcher       VectorSearcher
	history        HistoryStore
	answerLanguage string
}

// NewRAGService creates a new RAG service. answerLanguage names the language
// the model is instructed to answer in.
func NewRAGService(embedder port.EmbeddingProvider, generator port.GenerationProvider, searcher VectorSearcher, history HistoryStore, answerLanguage string) *RAGService {
	return &RAGService{
		embedder:       embedder,
		generator:      generator,
		searcher:       searcher,
		history:        history,
		answerLanguage: answerLanguage,
	}
}

// Answer runs the full RAG pipeline. When ownerID is set, retrieval is scoped
// to that user and the exchange is recorded in their history; anonymous
// questions leave no history. localTime, when given, is the client's local
// clock and is injected into the prompt for time-sensitive questions.
//
// History is written only after generation succeeds: a failed pipeline leaves
// no trace in the conversation log.
func (s *RAGService) Answer(ctx context.Context, ownerID *int64, question string, topK int, localTime *time.Time) (string, []domain.EmbeddingRecord, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := s.searcher.NearestNeighbors(ctx, queryVector, topK, ownerID)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve context: %w", err)
	}

	prompt := s.buildPrompt(question, docs, localTime)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}

	if ownerID != nil {
		if err := s.history.AppendExchange(ctx, *ownerID, question, answer); err != nil {
			return "", nil, fmt.Errorf("record conversation: %w", err)
		}
	}

	slog.Info("question answered", "docs", len(docs), "anonymous", ownerID == nil)
	return answer, docs, nil
}

// buildPrompt assembles the augmented prompt: system instruction, optional
// time context, retrieved documents, and the question.
func (s *RAGService) buildPrompt(question string, docs []domain.EmbeddingRecord, localTime *time.Time) string {
	contextParts := make([]string, len(docs))
	for i, doc := range docs {
		id := doc.SourceID
		if id == "" {
			id = strconv.FormatInt(doc.ID, 10)
		}
		contextParts[i] = fmt.Sprintf("Source: %s (ID: %s)\nContent: %s", doc.SourceType, id, doc.Text)
	}
	contextStr := strings.Join(contextParts, "\n\n")
	if len(docs) == 0 {
		contextStr = "No relevant information found in the user's database to answer this question."
	}

	timeContext := ""
	if localTime != nil {
		formatted := localTime.Format("Monday, 02 January 2006, 15:04:05")
		timeContext = fmt.Sprintf("For your information, the user's current local date and time is %s. Please use this for any time-sensitive queries about schedules or deadlines.", formatted)
	}

	systemInstruction := "You are a smart, helpful personal assistant. " +
		"You have DIRECT ACCESS to the user's personal database, which includes:\n" +
		"1. Complete Profile (Name, Email, Bio)\n" +
		"2. To-Do List (Tasks, Deadlines)\n" +
		"3. Class Schedule/Jadwal Matkul (Day, Time, SKS)\n" +
		"4. UKM Activities (Organization Name, Role)\n\n" +
		"IMPORTANT: You MUST answer based on the provided context below. " +
		"Do NOT say 'I cannot access your calendar' or 'I don't have access to your data'. " +
		"You HAVE the data in the context. " +
		"If the specific answer is not in the context, state 'Based on your saved data, I couldn't find that specific information.' " +
		"Always be concise and actionable."

	return fmt.Sprintf(
		"%s\n\n------------------\n\n%s\n\nCONTEXT FROM DATABASE:\n------------------\n%s\n\n------------------\n\nQUESTION: %s\n\n------------------\n\nBased on the context, provide a concise and actionable answer in %s.",
		systemInstruction, timeContext, contextStr, question, s.answerLanguage,
	)
}
