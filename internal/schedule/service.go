package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/realtime"
	"github.com/medware/hospital-overbook/pkg/logging"
)

const (
	EventScheduleDeleted = "deleted_schedule"
)

// Backfiller fills a freed slot from the waitlist. Implemented by the
// overbook service; errors are its own to log, a freed slot staying empty is
// acceptable.
type Backfiller interface {
	Backfill(ctx context.Context, department, doctorName string, at time.Time)
}

type Service struct {
	repo     Repository
	events   realtime.Broadcaster
	backfill Backfiller
	logger   *logging.Logger
}

func NewService(repo Repository, events realtime.Broadcaster, backfill Backfiller, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		events:   events,
		backfill: backfill,
		logger:   logger,
	}
}

// List returns appointments matching the filter, capped at 200 rows.
func (s *Service) List(ctx context.Context, f Filter) ([]Appointment, error) {
	appts, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// Delete removes an appointment and, when overbooking is enabled, tries to
// refill the freed slot from the waitlist. The delete itself always succeeds
// regardless of the backfill outcome.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		s.events.Emit(EventScheduleDeleted, appt.ID)
	}

	if s.backfill != nil {
		s.backfill.Backfill(ctx, appt.Department, appt.DoctorName, appt.DateTime)
	}

	return nil
}
