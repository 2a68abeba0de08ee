package overbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/redisclient"
	"github.com/medware/hospital-overbook/internal/schedule"
)

// ConfirmInvite consumes a claim token and promotes the waitlist entry into
// a confirmed appointment. The lookup never distinguishes unknown tokens
// from consumed ones. The capacity check and insert run under the
// doctor-hour lock so two concurrent confirmations cannot both squeeze into
// the same window.
//
// actingUserID may be nil: the claim link in the invite email is reachable
// unauthenticated.
func (s *Service) ConfirmInvite(ctx context.Context, token string, actingUserID *uuid.UUID) (*schedule.Appointment, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	entry, err := s.waitlist.GetInvitedByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			s.metrics.ObserveConfirmation("not_found")
		}
		return nil, err
	}

	if entry.HoldExpiresAt != nil && entry.HoldExpiresAt.Before(s.now()) {
		if _, err := s.waitlist.MarkExpired(ctx, entry.ID); err != nil && !errors.Is(err, ErrInviteNotFound) {
			s.logger.Error("mark invite expired during confirm", "entry_id", entry.ID, "error", err)
		}
		s.metrics.ObserveConfirmation("expired")
		return nil, ErrInviteExpired
	}

	if entry.InvitedSlotDateTime == nil {
		return nil, fmt.Errorf("invited entry %s has no target slot", entry.ID)
	}
	slot := *entry.InvitedSlotDateTime

	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overbook config: %w", err)
	}

	doctor := "TBD"
	if entry.DoctorName != nil && *entry.DoctorName != "" {
		doctor = *entry.DoctorName
	}

	var created *schedule.Appointment

	err = s.locker.WithLock(ctx, doctorHourBucket(doctor, slot), func(lockCtx context.Context) error {
		count, err := s.schedules.CountForDoctorBetween(lockCtx, doctor, slot.Add(-time.Hour), slot.Add(time.Hour))
		if err != nil {
			return fmt.Errorf("count doctor-hour appointments: %w", err)
		}

		overbooked := false
		if count >= 1 {
			if cfg.MaxPerHour > 0 && count < cfg.MaxPerHour {
				overbooked = true
			} else {
				return ErrSlotUnavailable
			}
		}

		created, err = s.schedules.Create(lockCtx, schedule.NewAppointment{
			DoctorName:  doctor,
			PatientName: entry.PatientName,
			Department:  entry.Department,
			DateTime:    slot,
			Overbooked:  overbooked,
			OwnerUserID: actingUserID,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		if _, err := s.waitlist.MarkConfirmed(lockCtx, entry.ID); err != nil {
			// The appointment exists; a lost status flip is recoverable by
			// the sweep worker, so don't fail the claim.
			s.logger.Error("mark invite confirmed", "entry_id", entry.ID, "error", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			// Another claim holds the bucket; the entry stays invited, so
			// the caller can retry before the hold expires.
			s.metrics.ObserveConfirmation("conflict")
			return nil, ErrSlotUnavailable
		}
		if errors.Is(err, ErrSlotUnavailable) {
			s.metrics.ObserveConfirmation("conflict")
		}
		return nil, err
	}

	s.metrics.ObserveConfirmation("confirmed")
	s.emit(EventScheduleCreated, created)

	return created, nil
}
