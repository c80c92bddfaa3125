package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/service"
)

// TodoHandler handles to-do endpoints.
type TodoHandler struct {
	store    *store.PostgresStore
	sync     *service.SyncService
	calendar *service.CalendarService
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(store *store.PostgresStore, sync *service.SyncService, calendar *service.CalendarService) *TodoHandler {
	return &TodoHandler{store: store, sync: sync, calendar: calendar}
}

// Register sets up todo routes.
func (h *TodoHandler) Register(router fiber.Router) {
	todos := router.Group("/todos")
	todos.Post("/", h.Create)
	todos.Get("/", h.List)
	todos.Get("/:id", h.Get)
	todos.Put("/:id", h.Update)
	todos.Delete("/:id", h.Delete)
}

type todoBody struct {
	Nama      string     `json:"nama"`
	Tipe      string     `json:"tipe"`
	Tenggat   *time.Time `json:"tenggat"`
	Deskripsi string     `json:"deskripsi"`
}

// Create adds a todo, syncs its embedding, and mirrors it to the calendar.
func (h *TodoHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body todoBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Nama == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nama is required"})
	}

	todo, err := h.store.CreateTodo(c.Context(), &domain.Todo{
		UserID:    uc.UserID,
		Nama:      body.Nama,
		Tipe:      body.Tipe,
		Tenggat:   body.Tenggat,
		Deskripsi: body.Deskripsi,
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), todo)
	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
		h.calendar.SyncTodoCreated(c.Context(), user, todo)
	}

	return c.Status(fiber.StatusCreated).JSON(todo)
}

// List returns the authenticated user's todos.
func (h *TodoHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	todos, err := h.store.ListTodosByUser(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"todos": todos, "count": len(todos)})
}

// Get returns one todo owned by the authenticated user.
func (h *TodoHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	todo, err := h.store.GetTodoByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if todo.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return c.JSON(todo)
}

// Update edits a todo and propagates the change to the embedding index and
// the calendar.
func (h *TodoHandler) Update(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	existing, err := h.store.GetTodoByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	var body todoBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	existing.Nama = body.Nama
	existing.Tipe = body.Tipe
	existing.Tenggat = body.Tenggat
	existing.Deskripsi = body.Deskripsi

	todo, err := h.store.UpdateTodo(c.Context(), existing)
	if err != nil {
		return respondStoreError(c, err)
	}
	h.sync.Sync(c.Context(), todo)
	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
		h.calendar.SyncTodoUpdated(c.Context(), user, todo)
	}

	return c.JSON(todo)
}

// Delete removes a todo, its embedding, and its calendar event.
func (h *TodoHandler) Delete(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	todo, err := h.store.GetTodoByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if todo.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.DeleteTodo(c.Context(), id); err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Remove(c.Context(), todo.EmbeddingKind(), todo.EmbeddingSourceID())
	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
		h.calendar.SyncTodoDeleted(c.Context(), user, todo)
	}

	return c.JSON(fiber.Map{"deleted": true})
}
