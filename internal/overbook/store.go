package overbook

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SuggestionFilter narrows suggestion listings and generation scans.
type SuggestionFilter struct {
	From       *time.Time
	To         *time.Time
	DoctorName string
	Department string
}

// SuggestionStore persists overbook suggestions.
type SuggestionStore interface {
	ListSuggested(ctx context.Context, f SuggestionFilter) ([]Suggestion, error)

	// ExistsSuggested is the dedup check: at most one suggested-status row
	// per (doctor, department, dateTime).
	ExistsSuggested(ctx context.Context, doctorName, department string, at time.Time) (bool, error)

	Create(ctx context.Context, in NewSuggestion) (*Suggestion, error)

	// UpdateStatus transitions a suggestion from one status to another in a
	// single compare-and-swap. Returns ErrSuggestionNotFound when no row is
	// in the expected state.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to SuggestionStatus, acceptedBy *uuid.UUID) (*Suggestion, error)
}

// WaitlistStore persists waitlist entries and their invite lifecycle.
type WaitlistStore interface {
	Create(ctx context.Context, in NewWaitlistEntry) (*WaitlistEntry, error)

	// TopWaiting selects the best candidate for a department/doctor bucket:
	// highest priority first, earliest join time breaking ties. A nil
	// doctorName matches only entries with no doctor preference. Returns
	// ErrNoCandidates when the bucket is empty.
	TopWaiting(ctx context.Context, department string, doctorName *string) (*WaitlistEntry, error)

	// MarkInvited moves a waiting entry to invited, attaching the token,
	// hold deadline and target slot. CAS on status=waiting; returns
	// ErrNoCandidates if the entry was grabbed concurrently.
	MarkInvited(ctx context.Context, id uuid.UUID, token string, holdExpiresAt, slot time.Time) (*WaitlistEntry, error)

	// GetInvitedByToken looks up an entry by token in invited status only.
	// Returns ErrInviteNotFound otherwise.
	GetInvitedByToken(ctx context.Context, token string) (*WaitlistEntry, error)

	// MarkExpired / MarkConfirmed CAS from invited; ErrInviteNotFound when
	// the entry is no longer invited.
	MarkExpired(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)

	// FindInvitedExpiredBefore lists invited entries whose hold deadline
	// passed before the cutoff. Used by the sweep worker.
	FindInvitedExpiredBefore(ctx context.Context, cutoff time.Time) ([]WaitlistEntry, error)
}

// ConfigStore persists the singleton overbook policy.
type ConfigStore interface {
	// FindOrCreate returns the id=1 row, creating it with defaults on first
	// read.
	FindOrCreate(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}
