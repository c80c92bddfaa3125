package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/mycampus/assistant/internal/adapter/store"
	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/middleware"
	"github.com/mycampus/assistant/internal/service"
)

// ScheduleHandler handles semester and class schedule endpoints.
type ScheduleHandler struct {
	store    *store.PostgresStore
	sync     *service.SyncService
	calendar *service.CalendarService
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(store *store.PostgresStore, sync *service.SyncService, calendar *service.CalendarService) *ScheduleHandler {
	return &ScheduleHandler{store: store, sync: sync, calendar: calendar}
}

// Register sets up semester and jadwal routes.
func (h *ScheduleHandler) Register(router fiber.Router) {
	semesters := router.Group("/semesters")
	semesters.Post("/", h.CreateSemester)
	semesters.Get("/", h.ListSemesters)
	semesters.Get("/:id", h.GetSemester)
	semesters.Put("/:id", h.UpdateSemester)
	semesters.Delete("/:id", h.DeleteSemester)

	jadwal := router.Group("/jadwal")
	jadwal.Post("/", h.CreateItem)
	jadwal.Get("/", h.ListItems)
	jadwal.Get("/:id", h.GetItem)
	jadwal.Put("/:id", h.UpdateItem)
	jadwal.Delete("/:id", h.DeleteItem)
}

// --- Semesters ---

type semesterBody struct {
	Tipe           string `json:"tipe"`
	TahunAjaran    string `json:"tahun_ajaran"`
	TanggalMulai   string `json:"tanggal_mulai"`   // YYYY-MM-DD
	TanggalSelesai string `json:"tanggal_selesai"` // YYYY-MM-DD
}

func (b *semesterBody) dates() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", b.TanggalMulai)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid tanggal_mulai: %w", err)
	}
	end, err := time.Parse("2006-01-02", b.TanggalSelesai)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid tanggal_selesai: %w", err)
	}
	return start, end, nil
}

// CreateSemester adds a semester and creates its dedicated calendar.
func (h *ScheduleHandler) CreateSemester(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body semesterBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	start, end, err := body.dates()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	semester, err := h.store.CreateSemester(c.Context(), &domain.Semester{
		UserID:         uc.UserID,
		Tipe:           body.Tipe,
		TahunAjaran:    body.TahunAjaran,
		TanggalMulai:   start,
		TanggalSelesai: end,
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil && user.AccessToken != "" {
		// Calendar creation is best-effort; the semester row is already saved.
		h.calendar.EnsureSemesterCalendar(c.Context(), user, semester)
	}

	return c.Status(fiber.StatusCreated).JSON(semester)
}

// ListSemesters returns the authenticated user's semesters.
func (h *ScheduleHandler) ListSemesters(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	semesters, err := h.store.ListSemestersByUser(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"semesters": semesters, "count": len(semesters)})
}

// GetSemester returns one semester owned by the authenticated user.
func (h *ScheduleHandler) GetSemester(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	semester, err := h.store.GetSemesterByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if semester.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return c.JSON(semester)
}

// UpdateSemester edits a semester and propagates date or name changes to the
// calendar and every class event in it.
func (h *ScheduleHandler) UpdateSemester(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	existing, err := h.store.GetSemesterByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	var body semesterBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	start, end, err := body.dates()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	existing.Tipe = body.Tipe
	existing.TahunAjaran = body.TahunAjaran
	existing.TanggalMulai = start
	existing.TanggalSelesai = end

	semester, err := h.store.UpdateSemester(c.Context(), existing)
	if err != nil {
		return respondStoreError(c, err)
	}

	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
		h.calendar.SyncSemesterUpdated(c.Context(), user, semester)
	}

	return c.JSON(semester)
}

// DeleteSemester removes a semester and its dedicated calendar.
func (h *ScheduleHandler) DeleteSemester(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	semester, err := h.store.GetSemesterByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if semester.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.DeleteSemester(c.Context(), id); err != nil {
		return respondStoreError(c, err)
	}

	if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
		h.calendar.SyncSemesterDeleted(c.Context(), user, semester)
	}

	return c.JSON(fiber.Map{"deleted": true})
}

// --- Jadwal Matkul ---

type jadwalBody struct {
	SemesterID *int64 `json:"id_semester"`
	Hari       string `json:"hari"`
	Nama       string `json:"nama"`
	JamMulai   string `json:"jam_mulai"`   // HH:MM or HH:MM:SS
	JamSelesai string `json:"jam_selesai"` // HH:MM or HH:MM:SS
	SKS        int    `json:"sks"`
}

// parseClock accepts HH:MM:SS and HH:MM.
func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04:05", value)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04", value)
}

func (b *jadwalBody) times() (time.Time, time.Time, error) {
	start, err := parseClock(b.JamMulai)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid jam_mulai: %w", err)
	}
	end, err := parseClock(b.JamSelesai)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid jam_selesai: %w", err)
	}
	return start, end, nil
}

// ownedSemester loads a semester when the item references one, enforcing
// ownership.
func (h *ScheduleHandler) ownedSemester(c fiber.Ctx, userID int64, semesterID *int64) (*domain.Semester, error) {
	if semesterID == nil {
		return nil, nil
	}
	semester, err := h.store.GetSemesterByID(c.Context(), *semesterID)
	if err != nil {
		return nil, err
	}
	if semester.UserID != userID {
		return nil, fmt.Errorf("semester %d: not owned", *semesterID)
	}
	return semester, nil
}

// CreateItem adds a class schedule item, syncs its embedding, and creates its
// recurring calendar event.
func (h *ScheduleHandler) CreateItem(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var body jadwalBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	start, end, err := body.times()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	semester, err := h.ownedSemester(c, uc.UserID, body.SemesterID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	item, err := h.store.CreateScheduleItem(c.Context(), &domain.ScheduleItem{
		UserID:     uc.UserID,
		SemesterID: body.SemesterID,
		Hari:       body.Hari,
		Nama:       body.Nama,
		JamMulai:   start,
		JamSelesai: end,
		SKS:        body.SKS,
	})
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), item)
	if semester != nil {
		if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
			h.calendar.SyncScheduleCreated(c.Context(), user, semester, item)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// ListItems returns the authenticated user's class schedule, optionally
// filtered by semester.
func (h *ScheduleHandler) ListItems(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	items, err := h.store.ListScheduleByUser(c.Context(), uc.UserID)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"jadwal": items, "count": len(items)})
}

// GetItem returns one class schedule item owned by the authenticated user.
func (h *ScheduleHandler) GetItem(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	item, err := h.store.GetScheduleItemByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if item.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return c.JSON(item)
}

// UpdateItem edits a class schedule item and propagates the change.
func (h *ScheduleHandler) UpdateItem(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	existing, err := h.store.GetScheduleItemByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if existing.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	var body jadwalBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	start, end, err := body.times()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	semester, err := h.ownedSemester(c, uc.UserID, body.SemesterID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	existing.SemesterID = body.SemesterID
	existing.Hari = body.Hari
	existing.Nama = body.Nama
	existing.JamMulai = start
	existing.JamSelesai = end
	existing.SKS = body.SKS

	item, err := h.store.UpdateScheduleItem(c.Context(), existing)
	if err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Sync(c.Context(), item)
	if semester != nil {
		if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
			h.calendar.SyncScheduleUpdated(c.Context(), user, semester, item)
		}
	}

	return c.JSON(item)
}

// DeleteItem removes a class schedule item, its embedding, and its event.
func (h *ScheduleHandler) DeleteItem(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	item, err := h.store.GetScheduleItemByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if item.UserID != uc.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.DeleteScheduleItem(c.Context(), id); err != nil {
		return respondStoreError(c, err)
	}

	h.sync.Remove(c.Context(), item.EmbeddingKind(), item.EmbeddingSourceID())
	if item.SemesterID != nil {
		if semester, err := h.store.GetSemesterByID(c.Context(), *item.SemesterID); err == nil {
			if user, err := h.store.GetUserByID(c.Context(), uc.UserID); err == nil {
				h.calendar.SyncScheduleDeleted(c.Context(), user, semester, item)
			}
		}
	}

	return c.JSON(fiber.Map{"deleted": true})
}
