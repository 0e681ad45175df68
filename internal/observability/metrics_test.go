package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRegistration(t *testing.T) {
	before := testutil.ToFloat64(registrationsCounter.WithLabelValues("full"))
	RecordRegistration("full")
	RecordRegistration("full")
	assert.Equal(t, before+2, testutil.ToFloat64(registrationsCounter.WithLabelValues("full")))
}

func TestRecordReminderScan(t *testing.T) {
	before := testutil.ToFloat64(remindersCounter)
	start := time.Unix(1_700_000_000, 0)
	RecordReminderScan(start, start.Add(250*time.Millisecond), 3)

	assert.Equal(t, before+3, testutil.ToFloat64(remindersCounter))
	assert.Equal(t, float64(start.Unix()), testutil.ToFloat64(reminderLastScan))
}

func TestSetWebSocketConnections(t *testing.T) {
	SetWebSocketConnections(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(wsConnections))
}
