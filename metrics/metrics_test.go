package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("fallback_demo")
		m.RecordAttempt("gemini", "timeout", time.Second)
		m.RecordLike(true)
	})
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordLike(false)
	m.RecordLike(true)
	m.RecordLike(true)
	m.RecordAttempt("gemini", "success", 2*time.Second)

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]int{}
	for _, mf := range families {
		byName[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 2, byName["gallery_likes_total"])
	assert.Equal(t, 1, byName["gallery_provider_attempt_duration_seconds"])

	_, err = New(reg)
	assert.Error(t, err)
}
