package overbook

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/medware/hospital-overbook/internal/metrics"
	"github.com/medware/hospital-overbook/internal/notify"
	"github.com/medware/hospital-overbook/internal/realtime"
	"github.com/medware/hospital-overbook/internal/redisclient"
	"github.com/medware/hospital-overbook/internal/schedule"
	"github.com/medware/hospital-overbook/pkg/logging"
)

const (
	EventSuggestions        = "overbook_suggestions"
	EventSuggestionAccepted = "overbook_accepted"
	EventSuggestionDeclined = "overbook_declined"
	EventScheduleCreated    = "new_schedule"
)

// Deps wires the overbook service to its collaborators. Events, Metrics and
// Now are optional.
type Deps struct {
	Suggestions SuggestionStore
	Waitlist    WaitlistStore
	Config      ConfigStore
	Schedules   schedule.Repository
	Mailer      notify.EmailSender
	Events      realtime.Broadcaster
	Locker      redisclient.Locker
	Scorer      *Scorer
	Metrics     *metrics.OverbookMetrics
	Logger      *logging.Logger
	FrontendURL string
	Now         func() time.Time
}

// Service implements the overbooking/waitlist backfill subsystem: risk-based
// suggestion generation, waitlist invites with timed holds, and the invite
// confirmation state machine.
type Service struct {
	suggestions SuggestionStore
	waitlist    WaitlistStore
	config      ConfigStore
	schedules   schedule.Repository
	mailer      notify.EmailSender
	events      realtime.Broadcaster
	locker      redisclient.Locker
	scorer      *Scorer
	metrics     *metrics.OverbookMetrics
	logger      *logging.Logger
	frontendURL string
	now         func() time.Time
}

func NewService(d Deps) *Service {
	if d.Scorer == nil {
		d.Scorer = NewScorer(nil)
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		suggestions: d.Suggestions,
		waitlist:    d.Waitlist,
		config:      d.Config,
		schedules:   d.Schedules,
		mailer:      d.Mailer,
		events:      d.Events,
		locker:      d.Locker,
		scorer:      d.Scorer,
		metrics:     d.Metrics,
		logger:      d.Logger,
		frontendURL: d.FrontendURL,
		now:         d.Now,
	}
}

func (s *Service) emit(event string, payload any) {
	if s.events != nil {
		s.events.Emit(event, payload)
	}
}

// newInviteToken returns a 24-byte cryptographically random hex token.
func newInviteToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// waitlistBucket keys the lock guarding candidate selection for a
// department/doctor queue.
func waitlistBucket(department string, doctorName *string) string {
	doctor := ""
	if doctorName != nil {
		doctor = *doctorName
	}
	return "waitlist:" + strings.ToLower(department) + ":" + strings.ToLower(doctor)
}

// doctorHourBucket keys the lock guarding the capacity check + insert for a
// doctor-hour window.
func doctorHourBucket(doctorName string, slot time.Time) string {
	return "doctor-hour:" + strings.ToLower(doctorName) + ":" + slot.UTC().Format("2006010215")
}
