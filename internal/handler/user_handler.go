package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/service"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	store    *store.PostgresStore
	sync     *service.SyncService
	calendar *service.CalendarService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(store *store.PostgresStore, sync *service.SyncService, calendar *service.CalendarService) *UserHandler {
	return &UserHandler{store: store, sync: sync, calendar: calendar}
}

// Register sets up user routes.
func (h *UserHandler) Register(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/", h.List)
	users.Get("/me", h.Me)
	users.Put("/me", h.Update)
	users.Delete("/me", h.Delete)
	users.Post("/me/calendar/resync", h.ResyncCalendars)
}

// List returns all users.
func (h *UserHandler) List(c fiber.Ctx) error {
	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.store.GetUserByID(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(user)
}

// Update edits the authenticated user's profile and re-syncs the profile
// embedding. A calendar name change also renames the Google calendars.
func (h *UserHandler) Update(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	current, err := h.store.GetUserByID(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}

	var body struct {
		Nama         *string `json:"nama"`
		Email        *string `json:"email"`
		Telepon      *string `json:"telepon"`
		Bio          *string `json:"bio"`
		Lokasi       *string `json:"lokasi"`
		CalendarName *string `json:"calendar_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if body.Nama != nil {
		current.Nama = *body.Nama
	}
	if body.Email != nil {
		current.Email = *body.Email
	}
	if body.Telepon != nil {
		current.Telepon = *body.Telepon
	}
	if body.Bio != nil {
		current.Bio = *body.Bio
	}
	if body.Lokasi != nil {
		current.Lokasi = *body.Lokasi
	}
	calendarRenamed := body.CalendarName != nil && *body.CalendarName != current.CalendarName
	if body.CalendarName != nil {
		current.CalendarName = *body.CalendarName
	}

	user, err := h.store.UpdateUserProfile(c.Context(), current)
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), user)
	if calendarRenamed {
		h.calendar.ResyncAll(c.Context(), user)
	}

	return c.JSON(user)
}

// Delete removes the authenticated user's account and all derived data.
func (h *UserHandler) Delete(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.store.DeleteUser(c.Context(), uc.UserID); err != nil {
		return respondStoreError(c, err)
	}

	h.sync.RemoveOwner(c.Context(), uc.UserID)

	return c.JSON(fiber.Map{"deleted": true})
}

// ResyncCalendars re-synchronizes the user's Google calendars on demand.
func (h *UserHandler) ResyncCalendars(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.store.GetUserByID(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}

	synced := h.calendar.ResyncAll(c.Context(), user)
	return c.JSON(fiber.Map{"synced": synced})
}
