package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/overbook"
	"github.com/medware/hospital-overbook/internal/redisclient"
	"github.com/medware/hospital-overbook/internal/schedule"
)

func listSuggestionsHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := suggestionFilterFromQuery(w, r)
		if !ok {
			return
		}

		rows, err := svc.ListSuggestions(r.Context(), f)
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		resp := make([]SuggestionResponse, 0, len(rows))
		for _, s := range rows {
			resp = append(resp, toSuggestionResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func generateSuggestionsHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateSuggestionsRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		created, err := svc.GenerateSuggestions(r.Context(), overbook.SuggestionFilter{
			From:       req.StartDate,
			To:         req.EndDate,
			DoctorName: req.DoctorName,
			Department: req.Department,
		})
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, GenerateSuggestionsResponse{Created: created})
	}
}

func acceptSuggestionHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_suggestion_id", "id must be a valid UUID")
			return
		}

		sug, err := svc.AcceptSuggestion(r.Context(), id, GetUserID(r.Context()))
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSuggestionResponse(*sug))
	}
}

func declineSuggestionHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_suggestion_id", "id must be a valid UUID")
			return
		}

		sug, err := svc.DeclineSuggestion(r.Context(), id)
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSuggestionResponse(*sug))
	}
}

func joinWaitlistHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinWaitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		entry, err := svc.JoinWaitlist(r.Context(), overbook.NewWaitlistEntry{
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			Department:   req.Department,
			DoctorName:   req.DoctorName,
			Priority:     req.Priority,
		})
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toWaitlistEntryResponse(*entry))
	}
}

func inviteTopCandidateHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.DateTime == nil {
			writeError(w, http.StatusBadRequest, "validation_error", overbook.ErrInviteFieldsMissing.Error())
			return
		}

		res, err := svc.InviteTopCandidate(r.Context(), req.Department, req.DoctorName, *req.DateTime)
		if err != nil {
			handleOverbookError(w, err)
			return
		}
		if !res.Invited {
			writeError(w, http.StatusNotFound, "no_candidates", "no waiting candidates for this bucket")
			return
		}

		writeJSON(w, http.StatusOK, InviteResponse{Invited: res.EntryID})
	}
}

func confirmInviteHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" && r.Body != nil {
			var req ConfirmRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
				token = req.Token
			}
		}

		appt, err := svc.ConfirmInvite(r.Context(), token, GetUserID(r.Context()))
		if err != nil {
			handleOverbookError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConfirmResponse{
			Confirmed: true,
			Schedule:  toAppointmentResponse(*appt),
		})
	}
}

func getConfigHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.GetConfig(r.Context())
		if err != nil {
			handleOverbookError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConfigResponse(*cfg))
	}
}

func updateConfigHandler(svc *overbook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		upd := overbook.ConfigUpdate{
			Enabled:     req.Enabled,
			MaxPerHour:  req.MaxPerHour,
			HoldMinutes: req.HoldMinutes,
		}
		if req.RiskThreshold != nil {
			rt := overbook.Risk(*req.RiskThreshold)
			upd.RiskThreshold = &rt
		}

		cfg, err := svc.UpdateConfig(r.Context(), upd)
		if err != nil {
			handleOverbookError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConfigResponse(*cfg))
	}
}

func listAppointmentsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := schedule.Filter{
			DoctorName: q.Get("doctorName"),
			Department: q.Get("department"),
		}

		var ok bool
		if f.From, ok = parseTimeParam(w, q.Get("startDate"), "startDate"); !ok {
			return
		}
		if f.To, ok = parseTimeParam(w, q.Get("endDate"), "endDate"); !ok {
			return
		}

		appts, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for _, a := range appts {
			resp = append(resp, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteAppointmentHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			if errors.Is(err, schedule.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "schedule deleted"})
	}
}

// Helpers

func suggestionFilterFromQuery(w http.ResponseWriter, r *http.Request) (overbook.SuggestionFilter, bool) {
	q := r.URL.Query()
	f := overbook.SuggestionFilter{
		DoctorName: q.Get("doctorName"),
		Department: q.Get("department"),
	}

	var ok bool
	if f.From, ok = parseTimeParam(w, q.Get("startDate"), "startDate"); !ok {
		return f, false
	}
	if f.To, ok = parseTimeParam(w, q.Get("endDate"), "endDate"); !ok {
		return f, false
	}
	return f, true
}

func parseTimeParam(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be RFC3339")
		return nil, false
	}
	return &t, true
}

func handleOverbookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, overbook.ErrInviteFieldsMissing),
		errors.Is(err, overbook.ErrJoinFieldsMissing),
		errors.Is(err, overbook.ErrTokenRequired),
		errors.Is(err, overbook.ErrInvalidRiskThreshold):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, overbook.ErrSuggestionNotFound):
		writeError(w, http.StatusNotFound, "suggestion_not_found", err.Error())
	case errors.Is(err, overbook.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "invalid_or_used_token", err.Error())
	case errors.Is(err, overbook.ErrInviteExpired):
		writeError(w, http.StatusGone, "invite_expired", err.Error())
	case errors.Is(err, overbook.ErrSlotUnavailable),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_not_available", err.Error())
	case errors.Is(err, overbook.ErrMailSendFailed):
		writeError(w, http.StatusBadGateway, "mail_send_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
