package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"kaiginote/internal/model"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrEventNotFound        = errors.New("event not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("duplicate participant")
)

// ListEventsParams are the optional filters for ListEvents.
type ListEventsParams struct {
	Keyword string
	Status  string
	Offset  int
	Limit   int
}

type Repository interface {
	CreateUser(ctx context.Context, u *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetAllUsers(ctx context.Context, offset, limit int) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context, params ListEventsParams) ([]model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error

	GetParticipantsByEventID(ctx context.Context, eventID int64) ([]model.ParticipantWithUser, error)
	AddParticipantTx(ctx context.Context, p *model.EventParticipant) (int64, error)
	GetParticipant(ctx context.Context, eventID, participantID int64) (*model.EventParticipant, error)
	UpdateParticipant(ctx context.Context, p *model.EventParticipant) error
	DeleteParticipant(ctx context.Context, eventID, participantID int64) error

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

// isUniqueViolation matches postgres unique-constraint errors without
// depending on the driver's error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func (r *repository) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	query := `
		INSERT INTO users (name, email, password_hash, profile_picture, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.ProfilePicture, u.IsActive,
	)

	var id int64
	if err := row.Scan(&id, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

const userColumns = `id, name, email, password_hash, profile_picture, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *repository) GetAllUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

func (r *repository) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, profile_picture = $4,
		    is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.ProfilePicture, u.IsActive, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (title, start_time, end_time, place, content, status, total_cost, max_participants, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowContext(ctx, query,
		e.Title, e.StartTime, e.EndTime, e.Place, e.Content,
		e.Status, e.TotalCost, e.MaxParticipants, e.IsPublic,
	)

	var id int64
	if err := row.Scan(&id, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

const eventColumns = `id, title, start_time, end_time, place, content, status,
	       total_cost, max_participants, is_public, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.StartTime, &e.EndTime, &e.Place, &e.Content,
		&e.Status, &e.TotalCost, &e.MaxParticipants, &e.IsPublic,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *repository) ListEvents(ctx context.Context, params ListEventsParams) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var conds []string
	var args []any

	if params.Keyword != "" {
		args = append(args, "%"+params.Keyword+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(place LIKE $%d OR content LIKE $%d)", n, n))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY start_time DESC"
	args = append(args, params.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))
	args = append(args, params.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, start_time = $2, end_time = $3, place = $4, content = $5,
		    status = $6, total_cost = $7, max_participants = $8, is_public = $9,
		    updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.StartTime, e.EndTime, e.Place, e.Content,
		e.Status, e.TotalCost, e.MaxParticipants, e.IsPublic, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	// Participant rows go with the event via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) GetParticipantsByEventID(ctx context.Context, eventID int64) ([]model.ParticipantWithUser, error) {
	query := `
		SELECT p.id, p.event_id, p.user_id, p.paid_amount, p.attendance_status,
		       p.created_at, p.updated_at, u.name AS user_name
		FROM event_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY p.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []model.ParticipantWithUser
	for rows.Next() {
		var p model.ParticipantWithUser
		if err := rows.Scan(
			&p.ID, &p.EventID, &p.UserID, &p.PaidAmount, &p.AttendanceStatus,
			&p.CreatedAt, &p.UpdatedAt, &p.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// AddParticipantTx inserts a participant after verifying the event and user
// exist. The event row is locked so concurrent adds for the same pair
// serialize; the unique index on (event_id, user_id) backs the race anyway.
func (r *repository) AddParticipantTx(ctx context.Context, p *model.EventParticipant) (int64, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if pnc := recover(); pnc != nil {
			_ = tx.Rollback()
			panic(pnc)
		}
	}()

	var eventID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, p.EventID).Scan(&eventID)
	if err != nil {
		_ = tx.Rollback()
		return 0, ErrEventNotFound
	}

	var userID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, p.UserID).Scan(&userID)
	if err != nil {
		_ = tx.Rollback()
		return 0, ErrUserNotFound
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM event_participants
		WHERE event_id = $1 AND user_id = $2
	`, p.EventID, p.UserID).Scan(&existing)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate participation: %w", err)
	}
	if existing > 0 {
		_ = tx.Rollback()
		return 0, ErrDuplicateParticipant
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, paid_amount, attendance_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.EventID, p.UserID, p.PaidAmount, p.AttendanceStatus).Scan(&id, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return 0, ErrDuplicateParticipant
		}
		return 0, fmt.Errorf("failed to create participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (r *repository) GetParticipant(ctx context.Context, eventID, participantID int64) (*model.EventParticipant, error) {
	query := `
		SELECT id, event_id, user_id, paid_amount, attendance_status, created_at, updated_at
		FROM event_participants
		WHERE id = $1 AND event_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, participantID, eventID)

	var p model.EventParticipant
	if err := row.Scan(
		&p.ID, &p.EventID, &p.UserID, &p.PaidAmount, &p.AttendanceStatus,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return &p, nil
}

func (r *repository) UpdateParticipant(ctx context.Context, p *model.EventParticipant) error {
	query := `
		UPDATE event_participants
		SET paid_amount = $1, attendance_status = $2, updated_at = NOW()
		WHERE id = $3 AND event_id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.PaidAmount, p.AttendanceStatus, p.ID, p.EventID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

func (r *repository) DeleteParticipant(ctx context.Context, eventID, participantID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM event_participants WHERE id = $1 AND event_id = $2
	`, participantID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
