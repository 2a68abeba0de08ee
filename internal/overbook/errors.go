package overbook

import "errors"

var (
	// ErrSuggestionNotFound covers both absent suggestions and suggestions
	// that already left the suggested state; no re-decision is allowed.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrInviteNotFound deliberately does not distinguish unknown tokens
	// from consumed or never-issued ones, to avoid a token-guessing oracle.
	ErrInviteNotFound = errors.New("invalid or used token")

	// ErrInviteExpired means the hold window passed before the claim; the
	// token is dead and the entry has been marked expired.
	ErrInviteExpired = errors.New("invite expired")

	// ErrSlotUnavailable means the doctor-hour bucket is at capacity. The
	// hold is not consumed, so the same token may be retried before expiry.
	ErrSlotUnavailable = errors.New("slot not available")

	ErrNoCandidates = errors.New("no waitlist candidates")

	ErrMailSendFailed = errors.New("invite email could not be sent")

	// Validation failures on required request fields.
	ErrInviteFieldsMissing  = errors.New("department and dateTime required")
	ErrJoinFieldsMissing    = errors.New("patientName and department required")
	ErrTokenRequired        = errors.New("token required")
	ErrInvalidRiskThreshold = errors.New("riskThreshold must be low, medium or high")
)
