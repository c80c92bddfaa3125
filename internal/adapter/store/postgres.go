package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mycampus/assistant/internal/domain"
	"github.com/mycampus/assistant/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by the vector store.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// InitSchema creates all tables and the pgvector extension if missing.
// The embedding table schema lives in vector.go next to the queries that
// depend on it.
func (s *PostgresStore) InitSchema(ctx context.Context, embeddingDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users (
			id_user BIGSERIAL PRIMARY KEY,
			nama TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			telepon TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			lokasi TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			provider_id TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			calendar_name TEXT NOT NULL DEFAULT '',
			todo_calendar_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS semesters (
			id_semester BIGSERIAL PRIMARY KEY,
			id_user BIGINT NOT NULL REFERENCES users(id_user) ON DELETE CASCADE,
			tipe TEXT NOT NULL,
			tahun_ajaran TEXT NOT NULL,
			tanggal_mulai DATE NOT NULL,
			tanggal_selesai DATE NOT NULL,
			google_calendar_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			id_todo BIGSERIAL PRIMARY KEY,
			id_user BIGINT NOT NULL REFERENCES users(id_user) ON DELETE CASCADE,
			nama TEXT NOT NULL,
			tipe TEXT NOT NULL,
			tenggat TIMESTAMPTZ,
			deskripsi TEXT NOT NULL DEFAULT '',
			google_event_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS jadwal_matkul (
			id_jadwal BIGSERIAL PRIMARY KEY,
			id_user BIGINT NOT NULL REFERENCES users(id_user) ON DELETE CASCADE,
			id_semester BIGINT REFERENCES semesters(id_semester) ON DELETE SET NULL,
			hari TEXT NOT NULL,
			nama TEXT NOT NULL,
			jam_mulai TIME NOT NULL,
			jam_selesai TIME NOT NULL,
			sks INT NOT NULL,
			google_event_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ukm (
			id_ukm BIGSERIAL PRIMARY KEY,
			id_user BIGINT NOT NULL REFERENCES users(id_user) ON DELETE CASCADE,
			nama TEXT NOT NULL,
			jabatan TEXT NOT NULL,
			deskripsi TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ai_chat_history (
			id_chat BIGSERIAL PRIMARY KEY,
			id_user BIGINT NOT NULL REFERENCES users(id_user) ON DELETE CASCADE,
			role TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rags_embeddings (
			id_embedding BIGSERIAL PRIMARY KEY,
			id_user BIGINT,
			source_type TEXT NOT NULL,
			source_id TEXT,
			text_original TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (source_type, source_id)
		)`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS rags_embeddings_hnsw_idx
			ON rags_embeddings USING hnsw (embedding vector_cosine_ops)
			WITH (m=16, ef_construction=200)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			details JSONB NOT NULL DEFAULT '{}',
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// --- Users ---

const userColumns = `id_user, nama, email, telepon, bio, lokasi, provider, provider_id,
	access_token, refresh_token, calendar_name, todo_calendar_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Nama, &u.Email, &u.Telepon, &u.Bio, &u.Lokasi,
		&u.Provider, &u.ProviderID, &u.AccessToken, &u.RefreshToken,
		&u.CalendarName, &u.TodoCalendarID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (nama, email, telepon, bio, lokasi)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, u.Nama, u.Email, u.Telepon, u.Bio, u.Lokasi))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpsertUserByEmail inserts or updates a user keyed by email. Used by the
// OAuth login flow, which refreshes profile data and tokens on every login.
func (s *PostgresStore) UpsertUserByEmail(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (nama, email, provider, provider_id, access_token, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			nama = EXCLUDED.nama,
			provider = EXCLUDED.provider,
			provider_id = EXCLUDED.provider_id,
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN users.refresh_token ELSE EXCLUDED.refresh_token END,
			updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.Nama, u.Email, u.Provider, u.ProviderID, u.AccessToken, u.RefreshToken))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id_user = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id_user`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserProfile updates the editable profile fields of a user.
func (s *PostgresStore) UpdateUserProfile(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `UPDATE users SET nama = $1, email = $2, telepon = $3, bio = $4, lokasi = $5,
	          calendar_name = $6, updated_at = NOW()
	          WHERE id_user = $7
	          RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.Nama, u.Email, u.Telepon, u.Bio, u.Lokasi, u.CalendarName, u.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", u.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// SetUserTodoCalendar stores the id of the user's dedicated reminder calendar.
func (s *PostgresStore) SetUserTodoCalendar(ctx context.Context, userID int64, calendarID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET todo_calendar_id = $1, updated_at = NOW() WHERE id_user = $2`,
		calendarID, userID)
	return err
}

// DeleteUser removes a user. Owned rows cascade at the database level;
// embeddings are removed separately by the synchronizer.
func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id_user = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// --- Todos ---

const todoColumns = `id_todo, id_user, nama, tipe, tenggat, deskripsi, google_event_id, created_at`

func scanTodo(row interface{ Scan(...any) error }) (*domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Nama, &t.Tipe, &t.Tenggat, &t.Deskripsi, &t.GoogleEventID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTodo inserts a new todo.
func (s *PostgresStore) CreateTodo(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	query := `INSERT INTO todos (id_user, nama, tipe, tenggat, deskripsi)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + todoColumns

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, t.UserID, t.Nama, t.Tipe, t.Tenggat, t.Deskripsi))
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// GetTodoByID retrieves a todo by ID.
func (s *PostgresStore) GetTodoByID(ctx context.Context, id int64) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id_todo = $1`

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// ListTodosByUser returns a user's todos, newest first.
func (s *PostgresStore) ListTodosByUser(ctx context.Context, userID int64) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id_user = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// UpdateTodo overwrites the editable fields of a todo.
func (s *PostgresStore) UpdateTodo(ctx context.Context, t *domain.Todo) (*domain.Todo, error) {
	query := `UPDATE todos SET nama = $1, tipe = $2, tenggat = $3, deskripsi = $4
	          WHERE id_todo = $5
	          RETURNING ` + todoColumns

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, t.Nama, t.Tipe, t.Tenggat, t.Deskripsi, t.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d: %w", t.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// SetTodoEvent stores or clears the calendar event id linked to a todo.
func (s *PostgresStore) SetTodoEvent(ctx context.Context, todoID int64, eventID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE todos SET google_event_id = $1 WHERE id_todo = $2`, eventID, todoID)
	return err
}

// DeleteTodo removes a todo.
func (s *PostgresStore) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id_todo = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("todo %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// --- Semesters ---

const semesterColumns = `id_semester, id_user, tipe, tahun_ajaran, tanggal_mulai, tanggal_selesai, google_calendar_id, created_at`

func scanSemester(row interface{ Scan(...any) error }) (*domain.Semester, error) {
	var sm domain.Semester
	err := row.Scan(&sm.ID, &sm.UserID, &sm.Tipe, &sm.TahunAjaran,
		&sm.TanggalMulai, &sm.TanggalSelesai, &sm.GoogleCalendarID, &sm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sm, nil
}

// CreateSemester inserts a new semester.
func (s *PostgresStore) CreateSemester(ctx context.Context, sm *domain.Semester) (*domain.Semester, error) {
	query := `INSERT INTO semesters (id_user, tipe, tahun_ajaran, tanggal_mulai, tanggal_selesai)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + semesterColumns

	semester, err := scanSemester(s.db.QueryRowContext(ctx, query,
		sm.UserID, sm.Tipe, sm.TahunAjaran, sm.TanggalMulai, sm.TanggalSelesai))
	if err != nil {
		return nil, fmt.Errorf("create semester: %w", err)
	}
	return semester, nil
}

// GetSemesterByID retrieves a semester by ID.
func (s *PostgresStore) GetSemesterByID(ctx context.Context, id int64) (*domain.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id_semester = $1`

	semester, err := scanSemester(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("semester %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get semester: %w", err)
	}
	return semester, nil
}

// ListSemestersByUser returns a user's semesters, newest period first.
func (s *PostgresStore) ListSemestersByUser(ctx context.Context, userID int64) ([]domain.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id_user = $1 ORDER BY tanggal_mulai DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	defer rows.Close()

	var semesters []domain.Semester
	for rows.Next() {
		sm, err := scanSemester(rows)
		if err != nil {
			return nil, fmt.Errorf("scan semester: %w", err)
		}
		semesters = append(semesters, *sm)
	}
	return semesters, rows.Err()
}

// UpdateSemester overwrites the editable fields of a semester.
func (s *PostgresStore) UpdateSemester(ctx context.Context, sm *domain.Semester) (*domain.Semester, error) {
	query := `UPDATE semesters SET tipe = $1, tahun_ajaran = $2, tanggal_mulai = $3, tanggal_selesai = $4
	          WHERE id_semester = $5
	          RETURNING ` + semesterColumns

	semester, err := scanSemester(s.db.QueryRowContext(ctx, query,
		sm.Tipe, sm.TahunAjaran, sm.TanggalMulai, sm.TanggalSelesai, sm.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("semester %d: %w", sm.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update semester: %w", err)
	}
	return semester, nil
}

// SetSemesterCalendar stores the Google Calendar id created for a semester.
func (s *PostgresStore) SetSemesterCalendar(ctx context.Context, semesterID int64, calendarID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE semesters SET google_calendar_id = $1 WHERE id_semester = $2`, calendarID, semesterID)
	return err
}

// DeleteSemester removes a semester. Class items keep existing with a null
// semester reference.
func (s *PostgresStore) DeleteSemester(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM semesters WHERE id_semester = $1`, id)
	if err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("semester %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// --- Jadwal Matkul ---

const jadwalColumns = `id_jadwal, id_user, id_semester, hari, nama, jam_mulai, jam_selesai, sks, google_event_id, created_at`

func scanJadwal(row interface{ Scan(...any) error }) (*domain.ScheduleItem, error) {
	var j domain.ScheduleItem
	err := row.Scan(&j.ID, &j.UserID, &j.SemesterID, &j.Hari, &j.Nama,
		&j.JamMulai, &j.JamSelesai, &j.SKS, &j.GoogleEventID, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateScheduleItem inserts a new class schedule item.
func (s *PostgresStore) CreateScheduleItem(ctx context.Context, j *domain.ScheduleItem) (*domain.ScheduleItem, error) {
	query := `INSERT INTO jadwal_matkul (id_user, id_semester, hari, nama, jam_mulai, jam_selesai, sks)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING ` + jadwalColumns

	item, err := scanJadwal(s.db.QueryRowContext(ctx, query,
		j.UserID, j.SemesterID, j.Hari, j.Nama, j.JamMulai, j.JamSelesai, j.SKS))
	if err != nil {
		return nil, fmt.Errorf("create jadwal: %w", err)
	}
	return item, nil
}

// GetScheduleItemByID retrieves a class schedule item by ID.
func (s *PostgresStore) GetScheduleItemByID(ctx context.Context, id int64) (*domain.ScheduleItem, error) {
	query := `SELECT ` + jadwalColumns + ` FROM jadwal_matkul WHERE id_jadwal = $1`

	item, err := scanJadwal(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("jadwal %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get jadwal: %w", err)
	}
	return item, nil
}

// ListScheduleByUser returns a user's class schedule.
func (s *PostgresStore) ListScheduleByUser(ctx context.Context, userID int64) ([]domain.ScheduleItem, error) {
	query := `SELECT ` + jadwalColumns + ` FROM jadwal_matkul WHERE id_user = $1 ORDER BY id_jadwal`
	return s.listSchedule(ctx, query, userID)
}

// ListScheduleBySemester returns the class schedule of one semester.
func (s *PostgresStore) ListScheduleBySemester(ctx context.Context, semesterID int64) ([]domain.ScheduleItem, error) {
	query := `SELECT ` + jadwalColumns + ` FROM jadwal_matkul WHERE id_semester = $1 ORDER BY id_jadwal`
	return s.listSchedule(ctx, query, semesterID)
}

func (s *PostgresStore) listSchedule(ctx context.Context, query string, arg any) ([]domain.ScheduleItem, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list jadwal: %w", err)
	}
	defer rows.Close()

	var items []domain.ScheduleItem
	for rows.Next() {
		j, err := scanJadwal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan jadwal: %w", err)
		}
		items = append(items, *j)
	}
	return items, rows.Err()
}

// UpdateScheduleItem overwrites the editable fields of a class schedule item.
func (s *PostgresStore) UpdateScheduleItem(ctx context.Context, j *domain.ScheduleItem) (*domain.ScheduleItem, error) {
	query := `UPDATE jadwal_matkul SET id_semester = $1, hari = $2, nama = $3, jam_mulai = $4, jam_selesai = $5, sks = $6
	          WHERE id_jadwal = $7
	          RETURNING ` + jadwalColumns

	item, err := scanJadwal(s.db.QueryRowContext(ctx, query,
		j.SemesterID, j.Hari, j.Nama, j.JamMulai, j.JamSelesai, j.SKS, j.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("jadwal %d: %w", j.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update jadwal: %w", err)
	}
	return item, nil
}

// SetScheduleEvent stores or clears the calendar event id linked to a class item.
func (s *PostgresStore) SetScheduleEvent(ctx context.Context, jadwalID int64, eventID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jadwal_matkul SET google_event_id = $1 WHERE id_jadwal = $2`, eventID, jadwalID)
	return err
}

// DeleteScheduleItem removes a class schedule item.
func (s *PostgresStore) DeleteScheduleItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jadwal_matkul WHERE id_jadwal = $1`, id)
	if err != nil {
		return fmt.Errorf("delete jadwal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("jadwal %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// --- UKM Activities ---

const activityColumns = `id_ukm, id_user, nama, jabatan, deskripsi, created_at`

func scanActivity(row interface{ Scan(...any) error }) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.Nama, &a.Jabatan, &a.Deskripsi, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateActivity inserts a new UKM activity.
func (s *PostgresStore) CreateActivity(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	query := `INSERT INTO ukm (id_user, nama, jabatan, deskripsi)
	          VALUES ($1, $2, $3, $4)
	          RETURNING ` + activityColumns

	activity, err := scanActivity(s.db.QueryRowContext(ctx, query, a.UserID, a.Nama, a.Jabatan, a.Deskripsi))
	if err != nil {
		return nil, fmt.Errorf("create ukm: %w", err)
	}
	return activity, nil
}

// GetActivityByID retrieves a UKM activity by ID.
func (s *PostgresStore) GetActivityByID(ctx context.Context, id int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM ukm WHERE id_ukm = $1`

	activity, err := scanActivity(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ukm %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ukm: %w", err)
	}
	return activity, nil
}

// ListActivitiesByUser returns a user's UKM activities.
func (s *PostgresStore) ListActivitiesByUser(ctx context.Context, userID int64) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM ukm WHERE id_user = $1 ORDER BY id_ukm`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ukm: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ukm: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// UpdateActivity overwrites the editable fields of a UKM activity.
func (s *PostgresStore) UpdateActivity(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	query := `UPDATE ukm SET nama = $1, jabatan = $2, deskripsi = $3
	          WHERE id_ukm = $4
	          RETURNING ` + activityColumns

	activity, err := scanActivity(s.db.QueryRowContext(ctx, query, a.Nama, a.Jabatan, a.Deskripsi, a.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ukm %d: %w", a.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update ukm: %w", err)
	}
	return activity, nil
}

// DeleteActivity removes a UKM activity.
func (s *PostgresStore) DeleteActivity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ukm WHERE id_ukm = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ukm: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ukm %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// --- Chat History ---

// AppendExchange writes a question/answer pair in one transaction so history
// never holds half a conversation.
func (s *PostgresStore) AppendExchange(ctx context.Context, userID int64, question, answer string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO ai_chat_history (id_user, role, message) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, userID, domain.RoleUser, question); err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert, userID, domain.RoleAssistant, answer); err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return tx.Commit()
}

// AppendChat writes one conversation turn. History is append-only.
func (s *PostgresStore) AppendChat(ctx context.Context, turn domain.ConversationTurn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_chat_history (id_user, role, message) VALUES ($1, $2, $3)`,
		turn.UserID, turn.Role, turn.Message)
	if err != nil {
		return fmt.Errorf("append chat: %w", err)
	}
	return nil
}

// ListChatByUser returns a user's conversation history, oldest first.
func (s *PostgresStore) ListChatByUser(ctx context.Context, userID int64, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id_chat, id_user, role, message, created_at
	          FROM ai_chat_history WHERE id_user = $1 ORDER BY id_chat LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var t domain.ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Message, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(id, userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`
	_, err := s.db.ExecContext(context.Background(), query,
		id, userID, action, resource, resourceID, details, ip, userAgent)
	return err
}

// ListAuditLogs returns recent audit logs with an optional action filter.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details::text, ip, user_agent, created_at
	          FROM audit_logs`
	args := []any{}
	if action != "" {
		query += ` WHERE action = $1`
		args = append(args, action)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
