package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/redisclient"
)

func TestHandleOverbookErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing invite fields", overbook.ErrInviteFieldsMissing, http.StatusBadRequest, "validation_error"},
		{"missing join fields", overbook.ErrJoinFieldsMissing, http.StatusBadRequest, "validation_error"},
		{"token required", overbook.ErrTokenRequired, http.StatusBadRequest, "validation_error"},
		{"bad risk threshold", overbook.ErrInvalidRiskThreshold, http.StatusBadRequest, "validation_error"},
		{"suggestion not found", overbook.ErrSuggestionNotFound, http.StatusNotFound, "suggestion_not_found"},
		{"invite not found", overbook.ErrInviteNotFound, http.StatusNotFound, "invalid_or_used_token"},
		{"invite expired", overbook.ErrInviteExpired, http.StatusGone, "invite_expired"},
		{"slot unavailable", overbook.ErrSlotUnavailable, http.StatusConflict, "slot_not_available"},
		{"lock contention", redisclient.ErrLockNotAcquired, http.StatusConflict, "slot_not_available"},
		{"mail failure", overbook.ErrMailSendFailed, http.StatusBadGateway, "mail_send_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleOverbookError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantCode, body.Error)
		})
	}
}

func TestHandleOverbookErrorUnwrapsCauses(t *testing.T) {
	rec := httptest.NewRecorder()
	handleOverbookError(rec, errors.Join(errors.New("send invite"), overbook.ErrMailSendFailed))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestParseTimeParam(t *testing.T) {
	rec := httptest.NewRecorder()
	got, ok := parseTimeParam(rec, "2026-03-03T10:00:00Z", "startDate")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, 2026, got.Year())

	rec = httptest.NewRecorder()
	got, ok = parseTimeParam(rec, "", "startDate")
	require.True(t, ok)
	assert.Nil(t, got)

	rec = httptest.NewRecorder()
	_, ok = parseTimeParam(rec, "tomorrow", "startDate")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid_startDate", body.Error)
}
