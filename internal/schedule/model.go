package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a booked doctor-patient slot. For a fixed doctor no two
// appointments may fall within the same rolling one-hour window unless the
// later one is marked Overbooked and the configured per-hour cap allows it.
type Appointment struct {
	ID          uuid.UUID
	DoctorName  string
	PatientName string
	Department  string
	DateTime    time.Time
	Overbooked  bool
	OwnerUserID *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAppointment carries the fields callers supply on creation.
type NewAppointment struct {
	DoctorName  string
	PatientName string
	Department  string
	DateTime    time.Time
	Overbooked  bool
	OwnerUserID *uuid.UUID
}

// Filter narrows Find queries. Zero values mean "any".
type Filter struct {
	DoctorName string
	Department string
	From       *time.Time
	To         *time.Time
	Limit      int
}
