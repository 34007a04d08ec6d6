package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func record(b *Breaker, outcomes ...outcome) StateChange {
	var last StateChange
	for _, o := range outcomes {
		if o == ok {
			_, last = b.RecordSuccess()
		} else {
			_, last = b.RecordFailure()
		}
	}
	return last
}

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		successes int
		outcomes  []outcome
		wantState State
		wantLast  StateChange
	}{
		{name: "starts closed", failures: 3, wantState: StateClosed},
		{name: "stays closed below threshold", failures: 3, outcomes: []outcome{fail, fail}, wantState: StateClosed},
		{name: "opens on threshold", failures: 3, outcomes: []outcome{fail, fail, fail}, wantState: StateOpen, wantLast: StateChange{Opened: true}},
		{name: "success clears failure streak", failures: 3, outcomes: []outcome{fail, fail, ok, fail, fail}, wantState: StateClosed},
		{name: "failure while open is not a transition", failures: 1, outcomes: []outcome{fail, fail}, wantState: StateOpen},
		{name: "closes after success streak", failures: 1, successes: 2, outcomes: []outcome{fail, ok, ok}, wantState: StateClosed, wantLast: StateChange{Closed: true}},
		{name: "failure breaks success streak", failures: 1, successes: 2, outcomes: []outcome{fail, ok, fail, ok}, wantState: StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("audit-stream", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))
			last := record(b, tt.outcomes...)
			assert.Equal(t, tt.wantState, b.State())
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestBreaker_RecordReportsPath(t *testing.T) {
	b := New("audit-stream", WithFailureThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback)
	useFallback, _ = b.RecordFailure()
	assert.True(t, useFallback)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
}

func TestBreaker_ResetCloses(t *testing.T) {
	b := New("audit-stream", WithFailureThreshold(1))
	record(b, fail)
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "audit-stream", b.Name())
}

func TestBreaker_AllowAfterCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := New("audit-stream",
		WithFailureThreshold(1),
		WithCooldown(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	assert.True(t, b.Allow())
	record(b, fail)
	assert.False(t, b.Allow(), "open breaker refuses attempts during cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "probe allowed once cooldown elapsed")

	// a failed probe restarts the cooldown
	record(b, fail)
	assert.False(t, b.Allow())
}
