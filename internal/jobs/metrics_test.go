package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("dashboard:warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("dashboard:warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("dashboard:warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("dashboard:warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("dashboard:warmup")))
}

func TestSetOverdue(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetOverdue(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.overdue))
	m.SetOverdue(-1)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.overdue))

	var nilMetrics *Metrics
	nilMetrics.SetOverdue(5)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
