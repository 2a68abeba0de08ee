package overbook

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medware/hospital-overbook/internal/schedule"
)

func TestGenerateSuggestionsCreatesForLowRiskSlots(t *testing.T) {
	f := newFixture(t, fixedJitter(1.0)) // morning derm scores low risk
	ctx := context.Background()

	morning := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.schedules.add("Dr. Reyes", "Ana Obi", "Dermatology", morning)
	f.schedules.add("Dr. Chen", "Tom Ade", "Emergency", morning.Add(9*time.Hour))

	created, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	rows, err := f.svc.ListSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dr. Reyes", rows[0].DoctorName)
	assert.Equal(t, RiskLow, rows[0].Risk)
	assert.Equal(t, SuggestionSuggested, rows[0].Status)

	require.Equal(t, []string{EventSuggestions}, f.events.names())
}

func TestGenerateSuggestionsIsDedupIdempotent(t *testing.T) {
	f := newFixture(t, fixedJitter(1.0))
	ctx := context.Background()

	morning := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.schedules.add("Dr. Reyes", "Ana Obi", "Dermatology", morning)

	first, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	rows, err := f.svc.ListSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// No broadcast for an empty batch.
	assert.Equal(t, []string{EventSuggestions}, f.events.names())
}

func TestGenerateSuggestionsHonorsRiskThreshold(t *testing.T) {
	f := newFixture(t, fixedJitter(0.5))
	ctx := context.Background()

	// 0.50 confidence: medium risk, below the default low-only threshold.
	morning := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.schedules.add("Dr. Okafor", "Mia Lund", "General Practice", morning)

	created, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	f.setConfig(t, func(cfg *Config) { cfg.RiskThreshold = RiskMedium })

	created, err = f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestGenerateSuggestionsAppliesFilter(t *testing.T) {
	f := newFixture(t, fixedJitter(1.0))
	ctx := context.Background()

	morning := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.schedules.add("Dr. Reyes", "Ana Obi", "Dermatology", morning)
	f.schedules.add("Dr. Voss", "Ben Tan", "Orthopedics", morning.Add(time.Hour))

	created, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{Department: "Orthopedics"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	rows, err := f.svc.ListSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Orthopedics", rows[0].Department)
}

func TestAcceptSuggestionIsTerminalAndAdvisory(t *testing.T) {
	f := newFixture(t, fixedJitter(1.0))
	ctx := context.Background()

	morning := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.schedules.add("Dr. Reyes", "Ana Obi", "Dermatology", morning)

	_, err := f.svc.GenerateSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)

	rows, err := f.svc.ListSuggestions(ctx, SuggestionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	admin := uuid.New()
	accepted, err := f.svc.AcceptSuggestion(ctx, rows[0].ID, &admin)
	require.NoError(t, err)
	assert.Equal(t, SuggestionAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedByUserID)
	assert.Equal(t, admin, *accepted.AcceptedByUserID)

	// Advisory only: nothing was booked.
	appts, err := f.schedules.Find(ctx, schedule.Filter{})
	require.NoError(t, err)
	assert.Len(t, appts, 1)

	// No re-decision in either direction.
	_, err = f.svc.AcceptSuggestion(ctx, rows[0].ID, &admin)
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
	_, err = f.svc.DeclineSuggestion(ctx, rows[0].ID)
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestDeclineSuggestionUnknownID(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.DeclineSuggestion(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}
