package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStepCountsFailures(t *testing.T) {
	m := New()

	m.ObserveStep("bills", true, time.Second)
	m.ObserveStep("bills", false, time.Second)
	m.ObserveStep("roster", false, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncStepFailures.WithLabelValues("bills")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncStepFailures.WithLabelValues("roster")))
}

func TestObserveAudit(t *testing.T) {
	m := New()
	m.ObserveAudit(12, 3)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.MembersRanked))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ConflictsFlagged))
}
