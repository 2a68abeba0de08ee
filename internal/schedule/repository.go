package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the scheduling and
// overbooking services.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Find(ctx context.Context, f Filter) ([]Appointment, error)

	// For doctor-hour capacity checks
	CountForDoctorBetween(ctx context.Context, doctorName string, from, to time.Time) (int, error)

	Create(ctx context.Context, in NewAppointment) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
