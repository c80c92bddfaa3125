package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/service"
)

// ActivityHandler handles UKM activity endpoints.
type ActivityHandler struct {
	store *store.PostgresStore
	sync  *service.SyncService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(store *store.PostgresStore, sync *service.SyncService) *ActivityHandler {
	return &ActivityHandler{store: store, sync: sync}
}

// Register sets up UKM routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	ukm := router.Group("/ukm")
	ukm.Post("/", h.Create)
	ukm.Get("/", h.List)
	ukm.Get("/:id", h.Get)
	ukm.Put("/:id", h.Update)
	ukm.Delete("/:id", h.Delete)
}

type activityBody struct {
	Nama      string `json:"nama"`
	Jabatan   string `json:"jabatan"`
	Deskripsi string `json:"deskripsi"`
}

// Create adds a UKM activity and syncs its embedding.
func (h *ActivityHandler) Create(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body activityBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Nama == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nama is required"})
	}

	activity, err := h.store.CreateActivity(c.Context(), &domain.Activity{
		UserID:    uc.UserID,
		Nama:      body.Nama,
		Jabatan:   body.Jabatan,
		Deskripsi: body.Deskripsi,
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), activity)

	return c.Status(fiber.StatusCreated).JSON(activity)
}

// List returns the authenticated user's UKM activities.
func (h *ActivityHandler) List(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	activities, err := h.store.ListActivitiesByUser(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"ukm": activities, "count": len(activities)})
}

// Get returns one UKM activity owned by the authenticated user.
func (h *ActivityHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	activity, err := h.store.GetActivityByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if activity.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return c.JSON(activity)
}

// Update edits a UKM activity and re-syncs its embedding.
func (h *ActivityHandler) Update(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	existing, err := h.store.GetActivityByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	var body activityBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	existing.Nama = body.Nama
	existing.Jabatan = body.Jabatan
	existing.Deskripsi = body.Deskripsi

	activity, err := h.store.UpdateActivity(c.Context(), existing)
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), activity)

	return c.JSON(activity)
}

// Delete removes a UKM activity and its embedding.
func (h *ActivityHandler) Delete(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	activity, err := h.store.GetActivityByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if activity.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.DeleteActivity(c.Context(), id); err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Remove(c.Context(), activity.EmbeddingKind(), activity.EmbeddingSourceID())

	return c.JSON(fiber.Map{"deleted": true})
}
