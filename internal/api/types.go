package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/schedule"
)

type GenerateSuggestionsRequest struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DoctorName string     `json:"doctorName,omitempty"`
	Department string     `json:"department,omitempty"`
}

type GenerateSuggestionsResponse struct {
	Created int `json:"created"`
}

type SuggestionResponse struct {
	ID               uuid.UUID  `json:"id"`
	Department       string     `json:"department"`
	DoctorName       string     `json:"doctorName"`
	DateTime         time.Time  `json:"dateTime"`
	Risk             string     `json:"risk"`
	Confidence       float64    `json:"confidence"`
	Status           string     `json:"status"`
	AcceptedByUserID *uuid.UUID `json:"acceptedByUserId,omitempty"`
}

func toSuggestionResponse(s overbook.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:               s.ID,
		Department:       s.Department,
		DoctorName:       s.DoctorName,
		DateTime:         s.DateTime,
		Risk:             string(s.Risk),
		Confidence:       s.Confidence,
		Status:           string(s.Status),
		AcceptedByUserID: s.AcceptedByUserID,
	}
}

type JoinWaitlistRequest struct {
	PatientName  string  `json:"patientName"`
	PatientEmail *string `json:"patientEmail,omitempty"`
	Department   string  `json:"department"`
	DoctorName   *string `json:"doctorName,omitempty"`
	Priority     int     `json:"priority,omitempty"`
}

type WaitlistEntryResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Department          string     `json:"department"`
	DoctorName          *string    `json:"doctorName,omitempty"`
	PatientName         string     `json:"patientName"`
	PatientEmail        *string    `json:"patientEmail,omitempty"`
	Priority            int        `json:"priority"`
	Status              string     `json:"status"`
	HoldExpiresAt       *time.Time `json:"holdExpiresAt,omitempty"`
	InvitedSlotDateTime *time.Time `json:"invitedSlotDateTime,omitempty"`
}

func toWaitlistEntryResponse(e overbook.WaitlistEntry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:                  e.ID,
		Department:          e.Department,
		DoctorName:          e.DoctorName,
		PatientName:         e.PatientName,
		PatientEmail:        e.PatientEmail,
		Priority:            e.Priority,
		Status:              string(e.Status),
		HoldExpiresAt:       e.HoldExpiresAt,
		InvitedSlotDateTime: e.InvitedSlotDateTime,
	}
}

type InviteRequest struct {
	Department string     `json:"department"`
	DoctorName *string    `json:"doctorName,omitempty"`
	DateTime   *time.Time `json:"dateTime"`
}

type InviteResponse struct {
	Invited uuid.UUID `json:"invited"`
}

type ConfirmRequest struct {
	Token string `json:"token"`
}

type ConfirmResponse struct {
	Confirmed bool                `json:"confirmed"`
	Schedule  AppointmentResponse `json:"schedule"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	DoctorName  string     `json:"doctorName"`
	PatientName string     `json:"patientName"`
	Department  string     `json:"department"`
	DateTime    time.Time  `json:"dateTime"`
	Overbooked  bool       `json:"overbooked"`
	OwnerUserID *uuid.UUID `json:"userId,omitempty"`
}

func toAppointmentResponse(a schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		DoctorName:  a.DoctorName,
		PatientName: a.PatientName,
		Department:  a.Department,
		DateTime:    a.DateTime,
		Overbooked:  a.Overbooked,
		OwnerUserID: a.OwnerUserID,
	}
}

type ConfigResponse struct {
	Enabled       bool   `json:"enabled"`
	RiskThreshold string `json:"riskThreshold"`
	MaxPerHour    int    `json:"maxPerHour"`
	HoldMinutes   int    `json:"holdMinutes"`
}

func toConfigResponse(c overbook.Config) ConfigResponse {
	return ConfigResponse{
		Enabled:       c.Enabled,
		RiskThreshold: string(c.RiskThreshold),
		MaxPerHour:    c.MaxPerHour,
		HoldMinutes:   c.HoldMinutes,
	}
}

type UpdateConfigRequest struct {
	Enabled       *bool   `json:"enabled,omitempty"`
	RiskThreshold *string `json:"riskThreshold,omitempty"`
	MaxPerHour    *int    `json:"maxPerHour,omitempty"`
	HoldMinutes   *int    `json:"holdMinutes,omitempty"`
}
