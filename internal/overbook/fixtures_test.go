package overbook

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/notify"
	"github.com/medware/hospital-overbook/internal/schedule"
	"github.com/medware/hospital-overbook/pkg/logging"
)

// testClock is a mutable clock injected as Deps.Now.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock {
	return &testClock{now: at}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// noopLocker runs the critical section inline.
type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, bucket string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeBroadcaster records emitted events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Name    string
	Payload any
}

func (b *fakeBroadcaster) Emit(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Name: event, Payload: payload})
}

func (b *fakeBroadcaster) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Name)
	}
	return out
}

// fakeMailer records sent messages and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, msg notify.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

// memSuggestionStore is an in-memory SuggestionStore.
type memSuggestionStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*Suggestion
}

func newMemSuggestionStore() *memSuggestionStore {
	return &memSuggestionStore{rows: make(map[uuid.UUID]*Suggestion)}
}

func (s *memSuggestionStore) ListSuggested(ctx context.Context, f SuggestionFilter) ([]Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Suggestion
	for _, row := range s.rows {
		if row.Status != SuggestionSuggested {
			continue
		}
		if f.DoctorName != "" && row.DoctorName != f.DoctorName {
			continue
		}
		if f.Department != "" && row.Department != f.Department {
			continue
		}
		if f.From != nil && f.To != nil && (row.DateTime.Before(*f.From) || row.DateTime.After(*f.To)) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (s *memSuggestionStore) ExistsSuggested(ctx context.Context, doctorName, department string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.Status == SuggestionSuggested && row.DoctorName == doctorName &&
			row.Department == department && row.DateTime.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memSuggestionStore) Create(ctx context.Context, in NewSuggestion) (*Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &Suggestion{
		ID:         uuid.New(),
		Department: in.Department,
		DoctorName: in.DoctorName,
		DateTime:   in.DateTime,
		Risk:       in.Risk,
		Confidence: in.Confidence,
		Status:     SuggestionSuggested,
	}
	s.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (s *memSuggestionStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to SuggestionStatus, acceptedBy *uuid.UUID) (*Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.Status != from {
		return nil, ErrSuggestionNotFound
	}
	row.Status = to
	if acceptedBy != nil {
		row.AcceptedByUserID = acceptedBy
	}
	out := *row
	return &out, nil
}

// memWaitlistStore is an in-memory WaitlistStore.
type memWaitlistStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*WaitlistEntry
	seq  int
}

func newMemWaitlistStore() *memWaitlistStore {
	return &memWaitlistStore{rows: make(map[uuid.UUID]*WaitlistEntry)}
}

func (s *memWaitlistStore) Create(ctx context.Context, in NewWaitlistEntry) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	row := &WaitlistEntry{
		ID:           uuid.New(),
		Department:   in.Department,
		DoctorName:   in.DoctorName,
		PatientName:  in.PatientName,
		PatientEmail: in.PatientEmail,
		Priority:     in.Priority,
		Status:       WaitlistWaiting,
		CreatedAt:    time.Unix(int64(s.seq), 0),
	}
	s.rows[row.ID] = row
	out := *row
	return &out, nil
}

func sameDoctor(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *memWaitlistStore) TopWaiting(ctx context.Context, department string, doctorName *string) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *WaitlistEntry
	for _, row := range s.rows {
		if row.Status != WaitlistWaiting || row.Department != department || !sameDoctor(row.DoctorName, doctorName) {
			continue
		}
		if best == nil ||
			row.Priority > best.Priority ||
			(row.Priority == best.Priority && row.CreatedAt.Before(best.CreatedAt)) {
			best = row
		}
	}
	if best == nil {
		return nil, ErrNoCandidates
	}
	out := *best
	return &out, nil
}

func (s *memWaitlistStore) MarkInvited(ctx context.Context, id uuid.UUID, token string, holdExpiresAt, slot time.Time) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.Status != WaitlistWaiting {
		return nil, ErrNoCandidates
	}
	hold := holdExpiresAt
	target := slot
	row.Status = WaitlistInvited
	row.InviteToken = &token
	row.HoldExpiresAt = &hold
	row.InvitedSlotDateTime = &target
	out := *row
	return &out, nil
}

func (s *memWaitlistStore) GetInvitedByToken(ctx context.Context, token string) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.Status == WaitlistInvited && row.InviteToken != nil && *row.InviteToken == token {
			out := *row
			return &out, nil
		}
	}
	return nil, ErrInviteNotFound
}

func (s *memWaitlistStore) MarkExpired(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	return s.updateInvited(id, WaitlistExpired)
}

func (s *memWaitlistStore) MarkConfirmed(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	return s.updateInvited(id, WaitlistConfirmed)
}

func (s *memWaitlistStore) updateInvited(id uuid.UUID, to WaitlistStatus) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok || row.Status != WaitlistInvited {
		return nil, ErrInviteNotFound
	}
	row.Status = to
	out := *row
	return &out, nil
}

func (s *memWaitlistStore) FindInvitedExpiredBefore(ctx context.Context, cutoff time.Time) ([]WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []WaitlistEntry
	for _, row := range s.rows {
		if row.Status == WaitlistInvited && row.HoldExpiresAt != nil && row.HoldExpiresAt.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *memWaitlistStore) get(t *testing.T, id uuid.UUID) WaitlistEntry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		t.Fatalf("waitlist entry %s not found", id)
	}
	return *row
}

// memConfigStore is an in-memory ConfigStore.
type memConfigStore struct {
	mu  sync.Mutex
	cfg *Config
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{}
}

func (s *memConfigStore) FindOrCreate(ctx context.Context) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		def := DefaultConfig()
		s.cfg = &def
	}
	out := *s.cfg
	return &out, nil
}

func (s *memConfigStore) Save(ctx context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *cfg
	s.cfg = &out
	return nil
}

// memSchedules is an in-memory schedule.Repository.
type memSchedules struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*schedule.Appointment
}

func newMemSchedules() *memSchedules {
	return &memSchedules{rows: make(map[uuid.UUID]*schedule.Appointment)}
}

func (s *memSchedules) add(doctorName, patientName, department string, at time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &schedule.Appointment{
		ID:          uuid.New(),
		DoctorName:  doctorName,
		PatientName: patientName,
		Department:  department,
		DateTime:    at,
	}
	s.rows[row.ID] = row
	return row.ID
}

func (s *memSchedules) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, schedule.ErrAppointmentNotFound
	}
	out := *row
	return &out, nil
}

func (s *memSchedules) Find(ctx context.Context, f schedule.Filter) ([]schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []schedule.Appointment
	for _, row := range s.rows {
		if f.DoctorName != "" && row.DoctorName != f.DoctorName {
			continue
		}
		if f.Department != "" && row.Department != f.Department {
			continue
		}
		if f.From != nil && row.DateTime.Before(*f.From) {
			continue
		}
		if f.To != nil && row.DateTime.After(*f.To) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })

	limit := f.Limit
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memSchedules) CountForDoctorBetween(ctx context.Context, doctorName string, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, row := range s.rows {
		if row.DoctorName == doctorName && row.DateTime.After(from) && row.DateTime.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *memSchedules) Create(ctx context.Context, in schedule.NewAppointment) (*schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &schedule.Appointment{
		ID:          uuid.New(),
		DoctorName:  in.DoctorName,
		PatientName: in.PatientName,
		Department:  in.Department,
		DateTime:    in.DateTime,
		Overbooked:  in.Overbooked,
		OwnerUserID: in.OwnerUserID,
	}
	s.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (s *memSchedules) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return schedule.ErrAppointmentNotFound
	}
	delete(s.rows, id)
	return nil
}

// fixture bundles a Service wired to in-memory collaborators.
type fixture struct {
	svc         *Service
	schedules   *memSchedules
	suggestions *memSuggestionStore
	waitlist    *memWaitlistStore
	config      *memConfigStore
	mailer      *fakeMailer
	events      *fakeBroadcaster
	clock       *testClock
}

// newFixture wires a service with a pinned clock and jitter source. The
// default jitter of 0.5 cancels the noise term entirely.
func newFixture(t *testing.T, jitter func() float64) *fixture {
	t.Helper()

	if jitter == nil {
		jitter = func() float64 { return 0.5 }
	}

	f := &fixture{
		schedules:   newMemSchedules(),
		suggestions: newMemSuggestionStore(),
		waitlist:    newMemWaitlistStore(),
		config:      newMemConfigStore(),
		mailer:      &fakeMailer{},
		events:      &fakeBroadcaster{},
		clock:       newTestClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)),
	}

	f.svc = NewService(Deps{
		Suggestions: f.suggestions,
		Waitlist:    f.waitlist,
		Config:      f.config,
		Schedules:   f.schedules,
		Mailer:      f.mailer,
		Events:      f.events,
		Locker:      noopLocker{},
		Scorer:      NewScorer(jitter),
		Logger:      logging.New("error"),
		FrontendURL: "http://localhost:5173",
		Now:         f.clock.Now,
	})

	return f
}

func (f *fixture) setConfig(t *testing.T, mutate func(*Config)) {
	t.Helper()

	cfg, err := f.config.FindOrCreate(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	mutate(cfg)
	if err := f.config.Save(context.Background(), cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
}
