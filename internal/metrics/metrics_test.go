package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOverbookMetricsCount(t *testing.T) {
	m := NewOverbookMetrics(prometheus.NewRegistry())

	m.ObserveSuggestionsCreated(3)
	m.ObserveSuggestionsCreated(0)
	m.ObserveSuggestionsCreated(-1)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.suggestionsCreated))

	m.ObserveInvite("backfill", "sent")
	m.ObserveInvite("backfill", "sent")
	m.ObserveInvite("manual", "empty")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.invitesTotal.WithLabelValues("backfill", "sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invitesTotal.WithLabelValues("manual", "empty")))

	m.ObserveConfirmation("confirmed")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.confirmationsTotal.WithLabelValues("confirmed")))
}

func TestOverbookMetricsNilReceiver(t *testing.T) {
	var m *OverbookMetrics

	// Unwired metrics are a supported configuration.
	m.ObserveSuggestionsCreated(1)
	m.ObserveInvite("manual", "sent")
	m.ObserveConfirmation("conflict")
}
