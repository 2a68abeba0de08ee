package overbook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the stores use.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgSuggestionStore struct {
	pool Querier
}

func NewPgSuggestionStore(pool Querier) *PgSuggestionStore {
	return &PgSuggestionStore{pool: pool}
}

type PgWaitlistStore struct {
	pool Querier
}

func NewPgWaitlistStore(pool Querier) *PgWaitlistStore {
	return &PgWaitlistStore{pool: pool}
}

type PgConfigStore struct {
	pool Querier
}

func NewPgConfigStore(pool Querier) *PgConfigStore {
	return &PgConfigStore{pool: pool}
}

// Helpers

const suggestionColumns = "id, department, doctor_name, date_time, risk, confidence, status, accepted_by_user_id, created_at, updated_at"

func scanSuggestion(row pgx.Row) (*Suggestion, error) {
	var s Suggestion
	var acceptedBy *uuid.UUID

	err := row.Scan(
		&s.ID,
		&s.Department,
		&s.DoctorName,
		&s.DateTime,
		&s.Risk,
		&s.Confidence,
		&s.Status,
		&acceptedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}

	s.AcceptedByUserID = acceptedBy
	return &s, nil
}

const waitlistColumns = "id, department, doctor_name, patient_name, patient_email, priority, status, invite_token, hold_expires_at, invited_slot_date_time, created_at, updated_at"

func scanWaitlistEntry(row pgx.Row) (*WaitlistEntry, error) {
	var e WaitlistEntry
	var doctorName, patientEmail, inviteToken *string
	var holdExpiresAt, invitedSlot *time.Time

	err := row.Scan(
		&e.ID,
		&e.Department,
		&doctorName,
		&e.PatientName,
		&patientEmail,
		&e.Priority,
		&e.Status,
		&inviteToken,
		&holdExpiresAt,
		&invitedSlot,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	e.DoctorName = doctorName
	e.PatientEmail = patientEmail
	e.InviteToken = inviteToken
	e.HoldExpiresAt = holdExpiresAt
	e.InvitedSlotDateTime = invitedSlot
	return &e, nil
}

func scanConfig(row pgx.Row) (*Config, error) {
	var c Config
	err := row.Scan(
		&c.ID,
		&c.Enabled,
		&c.RiskThreshold,
		&c.MaxPerHour,
		&c.HoldMinutes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SuggestionStore

func (s *PgSuggestionStore) ListSuggested(ctx context.Context, f SuggestionFilter) ([]Suggestion, error) {
	where := []string{"status = 'suggested'"}
	args := []any{}

	if f.From != nil && f.To != nil {
		args = append(args, *f.From)
		where = append(where, "date_time >= $"+strconv.Itoa(len(args)))
		args = append(args, *f.To)
		where = append(where, "date_time <= $"+strconv.Itoa(len(args)))
	}
	if f.DoctorName != "" {
		args = append(args, f.DoctorName)
		where = append(where, "doctor_name = $"+strconv.Itoa(len(args)))
	}
	if f.Department != "" {
		args = append(args, f.Department)
		where = append(where, "department = $"+strconv.Itoa(len(args)))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM overbook_suggestions
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY date_time ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sug)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgSuggestionStore) ExistsSuggested(ctx context.Context, doctorName, department string, at time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM overbook_suggestions
			WHERE doctor_name = $1
			  AND department = $2
			  AND date_time = $3
			  AND status = 'suggested'
		)
	`, doctorName, department, at).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check suggested exists: %w", err)
	}
	return exists, nil
}

func (s *PgSuggestionStore) Create(ctx context.Context, in NewSuggestion) (*Suggestion, error) {
	id := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO overbook_suggestions (id, department, doctor_name, date_time, risk, confidence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'suggested', now(), now())
		RETURNING `+suggestionColumns+`
	`, id, in.Department, in.DoctorName, in.DateTime, in.Risk, in.Confidence)

	return scanSuggestion(row)
}

func (s *PgSuggestionStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to SuggestionStatus, acceptedBy *uuid.UUID) (*Suggestion, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE overbook_suggestions
		SET status = $2,
		    accepted_by_user_id = COALESCE($3, accepted_by_user_id),
		    updated_at = now()
		WHERE id = $1
		  AND status = $4
		RETURNING `+suggestionColumns+`
	`, id, to, acceptedBy, from)

	return scanSuggestion(row)
}

// WaitlistStore

func (s *PgWaitlistStore) Create(ctx context.Context, in NewWaitlistEntry) (*WaitlistEntry, error) {
	id := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO waitlist_entries (id, department, doctor_name, patient_name, patient_email, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'waiting', now(), now())
		RETURNING `+waitlistColumns+`
	`, id, in.Department, in.DoctorName, in.PatientName, in.PatientEmail, in.Priority)

	return scanWaitlistEntry(row)
}

func (s *PgWaitlistStore) TopWaiting(ctx context.Context, department string, doctorName *string) (*WaitlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE department = $1
		  AND doctor_name IS NOT DISTINCT FROM $2
		  AND status = 'waiting'
		ORDER BY priority DESC, created_at ASC
		LIMIT 1
	`, department, doctorName)

	entry, err := scanWaitlistEntry(row)
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return nil, ErrNoCandidates
		}
		return nil, err
	}
	return entry, nil
}

func (s *PgWaitlistStore) MarkInvited(ctx context.Context, id uuid.UUID, token string, holdExpiresAt, slot time.Time) (*WaitlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE waitlist_entries
		SET status = 'invited',
		    invite_token = $2,
		    hold_expires_at = $3,
		    invited_slot_date_time = $4,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'waiting'
		RETURNING `+waitlistColumns+`
	`, id, token, holdExpiresAt, slot)

	entry, err := scanWaitlistEntry(row)
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return nil, ErrNoCandidates
		}
		return nil, err
	}
	return entry, nil
}

func (s *PgWaitlistStore) GetInvitedByToken(ctx context.Context, token string) (*WaitlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE invite_token = $1
		  AND status = 'invited'
	`, token)
	return scanWaitlistEntry(row)
}

func (s *PgWaitlistStore) MarkExpired(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	return s.updateInvited(ctx, id, WaitlistExpired)
}

func (s *PgWaitlistStore) MarkConfirmed(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	return s.updateInvited(ctx, id, WaitlistConfirmed)
}

func (s *PgWaitlistStore) updateInvited(ctx context.Context, id uuid.UUID, to WaitlistStatus) (*WaitlistEntry, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE waitlist_entries
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'invited'
		RETURNING `+waitlistColumns+`
	`, id, to)
	return scanWaitlistEntry(row)
}

func (s *PgWaitlistStore) FindInvitedExpiredBefore(ctx context.Context, cutoff time.Time) ([]WaitlistEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE status = 'invited'
		  AND hold_expires_at IS NOT NULL
		  AND hold_expires_at < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ConfigStore

func (s *PgConfigStore) FindOrCreate(ctx context.Context) (*Config, error) {
	def := DefaultConfig()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO overbook_config (id, enabled, risk_threshold, max_per_hour, hold_minutes, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, now(), now())
		ON CONFLICT (id) DO UPDATE SET id = overbook_config.id
		RETURNING id, enabled, risk_threshold, max_per_hour, hold_minutes, created_at, updated_at
	`, def.Enabled, def.RiskThreshold, def.MaxPerHour, def.HoldMinutes)

	cfg, err := scanConfig(row)
	if err != nil {
		return nil, fmt.Errorf("find or create overbook config: %w", err)
	}
	return cfg, nil
}

func (s *PgConfigStore) Save(ctx context.Context, cfg *Config) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE overbook_config
		SET enabled = $2,
		    risk_threshold = $3,
		    max_per_hour = $4,
		    hold_minutes = $5,
		    updated_at = now()
		WHERE id = $1
	`, cfg.ID, cfg.Enabled, cfg.RiskThreshold, cfg.MaxPerHour, cfg.HoldMinutes)
	if err != nil {
		return fmt.Errorf("save overbook config: %w", err)
	}
	return nil
}
