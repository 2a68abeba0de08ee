package overbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/notify"
)

// InviteResult reports the outcome of a candidate selection. Invited=false
// with a nil error is the normal outcome for an empty bucket.
type InviteResult struct {
	Invited bool
	EntryID uuid.UUID
}

// JoinWaitlist registers a patient as waiting for a department (and
// optionally a specific doctor). A patient may join multiple times; the
// queue does not dedup.
func (s *Service) JoinWaitlist(ctx context.Context, in NewWaitlistEntry) (*WaitlistEntry, error) {
	if in.PatientName == "" || in.Department == "" {
		return nil, ErrJoinFieldsMissing
	}

	entry, err := s.waitlist.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("join waitlist: %w", err)
	}
	return entry, nil
}

// InviteTopCandidate selects the best-priority waiting entry for the
// department/doctor bucket and issues a time-bounded single-use claim token.
// Selection and the status flip run under the bucket lock so two concurrent
// invites cannot pick the same candidate. A mail failure surfaces as
// ErrMailSendFailed; the hold has already been placed at that point.
func (s *Service) InviteTopCandidate(ctx context.Context, department string, doctorName *string, slot time.Time) (InviteResult, error) {
	if department == "" || slot.IsZero() {
		return InviteResult{}, ErrInviteFieldsMissing
	}

	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		return InviteResult{}, fmt.Errorf("load overbook config: %w", err)
	}

	var result InviteResult
	var invited *WaitlistEntry
	var token string

	err = s.locker.WithLock(ctx, waitlistBucket(department, doctorName), func(lockCtx context.Context) error {
		candidate, err := s.waitlist.TopWaiting(lockCtx, department, doctorName)
		if err != nil {
			return err
		}

		token, err = newInviteToken()
		if err != nil {
			return err
		}

		holdExpiresAt := s.now().Add(time.Duration(cfg.HoldMinutes) * time.Minute)
		invited, err = s.waitlist.MarkInvited(lockCtx, candidate.ID, token, holdExpiresAt, slot)
		if err != nil {
			return fmt.Errorf("mark candidate invited: %w", err)
		}

		result = InviteResult{Invited: true, EntryID: invited.ID}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoCandidates) {
			s.metrics.ObserveInvite("manual", "empty")
			return InviteResult{Invited: false}, nil
		}
		return InviteResult{}, err
	}

	// The hold is persisted; mail failure is the caller's policy call.
	if err := s.sendInviteMail(ctx, invited, cfg, slot, token); err != nil {
		s.metrics.ObserveInvite("manual", "mail_error")
		return result, fmt.Errorf("%w: %v", ErrMailSendFailed, err)
	}

	s.metrics.ObserveInvite("manual", "sent")
	return result, nil
}

// Backfill is the best-effort variant invoked after an appointment delete.
// Nothing is surfaced to the deleting caller; failures are logged only.
func (s *Service) Backfill(ctx context.Context, department, doctorName string, slot time.Time) {
	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		s.logger.Error("backfill: load overbook config", "error", err)
		return
	}
	if !cfg.Enabled {
		return
	}

	var doctor *string
	if doctorName != "" {
		doctor = &doctorName
	}

	res, err := s.InviteTopCandidate(ctx, department, doctor, slot)
	switch {
	case err != nil:
		s.metrics.ObserveInvite("backfill", "error")
		s.logger.Warn("backfill invite failed",
			"department", department, "doctor", doctorName, "error", err)
	case !res.Invited:
		s.logger.Debug("backfill found no candidates",
			"department", department, "doctor", doctorName)
	default:
		s.metrics.ObserveInvite("backfill", "sent")
		s.logger.Info("backfill invited waitlist candidate",
			"department", department, "doctor", doctorName, "entry_id", res.EntryID)
	}
}

func (s *Service) sendInviteMail(ctx context.Context, entry *WaitlistEntry, cfg *Config, slot time.Time, token string) error {
	to := "no-reply@example.com"
	if entry.PatientEmail != nil && *entry.PatientEmail != "" {
		to = *entry.PatientEmail
	}

	link := fmt.Sprintf("%s/overbook/confirm?token=%s", s.frontendURL, token)
	when := slot.Format("Mon, 02 Jan 2006 15:04")

	return s.mailer.Send(ctx, notify.EmailMessage{
		To:      to,
		ToName:  entry.PatientName,
		Subject: "Appointment slot available",
		Body: fmt.Sprintf("Hello %s, a %s slot is available %s. Claim it within %d minutes: %s",
			entry.PatientName, entry.Department, when, cfg.HoldMinutes, link),
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>A %s slot is available %s. Click to claim within %d minutes:</p><p><a href=%q>%s</a></p>",
			entry.PatientName, entry.Department, when, cfg.HoldMinutes, link, link),
	})
}

// ExpireStaleInvites flips invited entries whose hold deadline has passed to
// expired. Claim-time expiry remains authoritative; this keeps the table
// tidy for operators.
func (s *Service) ExpireStaleInvites(ctx context.Context) (int, error) {
	stale, err := s.waitlist.FindInvitedExpiredBefore(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find stale invites: %w", err)
	}

	expired := 0
	for _, entry := range stale {
		if _, err := s.waitlist.MarkExpired(ctx, entry.ID); err != nil {
			if errors.Is(err, ErrInviteNotFound) {
				continue // claimed or swept concurrently
			}
			s.logger.Error("expire stale invite", "entry_id", entry.ID, "error", err)
			continue
		}
		expired++
	}

	return expired, nil
}
