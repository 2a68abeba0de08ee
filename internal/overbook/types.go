package overbook

import (
	"time"

	"github.com/google/uuid"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// atMost reports whether r is at or below the given threshold in the
// low < medium < high ordering.
func (r Risk) atMost(threshold Risk) bool {
	rank := map[Risk]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	return rank[r] <= rank[threshold]
}

func ValidRisk(r Risk) bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type SuggestionStatus string

const (
	SuggestionSuggested SuggestionStatus = "suggested"
	SuggestionAccepted  SuggestionStatus = "accepted"
	SuggestionDeclined  SuggestionStatus = "declined"
	SuggestionExpired   SuggestionStatus = "expired"
)

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistInvited   WaitlistStatus = "invited"
	WaitlistConfirmed WaitlistStatus = "confirmed"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

// Suggestion is an advisory overbooking recommendation for a low-risk slot.
// Accepting one never books anything on its own.
type Suggestion struct {
	ID               uuid.UUID
	Department       string
	DoctorName       string
	DateTime         time.Time
	Risk             Risk
	Confidence       float64
	Status           SuggestionStatus
	AcceptedByUserID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewSuggestion struct {
	Department string
	DoctorName string
	DateTime   time.Time
	Risk       Risk
	Confidence float64
}

// WaitlistEntry is a patient waiting for a department (and optionally a
// specific doctor). The entry exclusively owns its single-use InviteToken.
type WaitlistEntry struct {
	ID                  uuid.UUID
	Department          string
	DoctorName          *string
	PatientName         string
	PatientEmail        *string
	Priority            int
	Status              WaitlistStatus
	InviteToken         *string
	HoldExpiresAt       *time.Time
	InvitedSlotDateTime *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type NewWaitlistEntry struct {
	Department   string
	DoctorName   *string
	PatientName  string
	PatientEmail *string
	Priority     int
}

// Config is the singleton overbooking policy, find-or-created with id=1.
type Config struct {
	ID            int
	Enabled       bool
	RiskThreshold Risk
	MaxPerHour    int
	HoldMinutes   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultConfig is what the singleton row is created with on first read.
func DefaultConfig() Config {
	return Config{
		ID:            1,
		Enabled:       true,
		RiskThreshold: RiskLow,
		MaxPerHour:    1,
		HoldMinutes:   20,
	}
}
