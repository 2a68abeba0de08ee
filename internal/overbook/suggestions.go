package overbook

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medware/hospital-overbook/internal/schedule"
)

// maxScanSlots bounds the cost of a single generation run.
const maxScanSlots = 200

// GenerateSuggestions scans upcoming appointments matching the filter,
// scores each slot and materializes suggestions for slots at or below the
// configured risk threshold. Dedup on (doctor, department, dateTime) makes
// repeated calls on unchanged data idempotent. Returns the number of
// suggestions created.
func (s *Service) GenerateSuggestions(ctx context.Context, f SuggestionFilter) (int, error) {
	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		return 0, fmt.Errorf("load overbook config: %w", err)
	}

	slots, err := s.schedules.Find(ctx, schedule.Filter{
		DoctorName: f.DoctorName,
		Department: f.Department,
		From:       f.From,
		To:         f.To,
		Limit:      maxScanSlots,
	})
	if err != nil {
		return 0, fmt.Errorf("scan appointments: %w", err)
	}

	var created []Suggestion
	for _, slot := range slots {
		score := s.scorer.Score(slot.Department, slot.DateTime)
		if !score.Risk.atMost(cfg.RiskThreshold) {
			continue
		}

		exists, err := s.suggestions.ExistsSuggested(ctx, slot.DoctorName, slot.Department, slot.DateTime)
		if err != nil {
			return len(created), fmt.Errorf("check existing suggestion: %w", err)
		}
		if exists {
			continue
		}

		sug, err := s.suggestions.Create(ctx, NewSuggestion{
			Department: slot.Department,
			DoctorName: slot.DoctorName,
			DateTime:   slot.DateTime,
			Risk:       score.Risk,
			Confidence: score.Confidence,
		})
		if err != nil {
			return len(created), fmt.Errorf("create suggestion: %w", err)
		}
		created = append(created, *sug)
	}

	if len(created) > 0 {
		s.emit(EventSuggestions, created)
	}
	s.metrics.ObserveSuggestionsCreated(len(created))

	return len(created), nil
}

// ListSuggestions returns open suggestions matching the filter, ordered by
// slot time.
func (s *Service) ListSuggestions(ctx context.Context, f SuggestionFilter) ([]Suggestion, error) {
	rows, err := s.suggestions.ListSuggested(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return rows, nil
}

// AcceptSuggestion marks a suggestion accepted by the acting admin. This is
// advisory only: no appointment is created and nobody is invited.
func (s *Service) AcceptSuggestion(ctx context.Context, id uuid.UUID, actingUserID *uuid.UUID) (*Suggestion, error) {
	sug, err := s.suggestions.UpdateStatus(ctx, id, SuggestionSuggested, SuggestionAccepted, actingUserID)
	if err != nil {
		return nil, err
	}

	s.emit(EventSuggestionAccepted, map[string]any{"id": sug.ID})
	return sug, nil
}

// DeclineSuggestion marks a suggestion declined. Terminal, like accept.
func (s *Service) DeclineSuggestion(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	sug, err := s.suggestions.UpdateStatus(ctx, id, SuggestionSuggested, SuggestionDeclined, nil)
	if err != nil {
		return nil, err
	}

	s.emit(EventSuggestionDeclined, map[string]any{"id": sug.ID})
	return sug, nil
}
