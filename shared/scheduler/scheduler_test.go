package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtube/shared/monitoring"
)

type summary string

func (s summary) GetSummary() string { return string(s) }

type stubAgent struct {
	initErr error
	runErr  error
	partial error
	panics  bool
	runs    chan struct{}
}

func (a *stubAgent) Name() string      { return "stub" }
func (a *stubAgent) Initialize() error { return a.initErr }

func (a *stubAgent) RunOnce(_ context.Context, events *Events) error {
	if a.runs != nil {
		select {
		case a.runs <- struct{}{}:
		default:
		}
	}
	if a.panics {
		panic("agent bug")
	}
	if a.runErr != nil {
		return a.runErr
	}
	if a.partial != nil {
		events.OnPartialFailure(a.partial, time.Millisecond)
	}
	events.OnSuccess(summary("1 comparison"), time.Millisecond)
	return nil
}

func TestRunOnceRecordsOutcome(t *testing.T) {
	monitor := monitoring.NewMonitor()

	ok := New("@every 1h", &stubAgent{partial: errors.New("one failed")}, monitor)
	require.NoError(t, ok.RunOnce(context.Background()))
	assert.True(t, monitor.IsHealthy())
	assert.Contains(t, monitor.GetStatusSummary(), "1 comparison")

	failing := New("@every 1h", &stubAgent{runErr: errors.New("boom")}, monitor)
	err := failing.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stub run failed")
	assert.False(t, monitor.IsHealthy())
}

func TestStartFailsOnInitialize(t *testing.T) {
	s := New("@every 1h", &stubAgent{initErr: errors.New("no config")}, monitoring.NewMonitor())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize agent")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New("not a schedule", &stubAgent{}, monitoring.NewMonitor())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add cron job")
}

func TestStartRunsOnSchedule(t *testing.T) {
	agent := &stubAgent{runs: make(chan struct{}, 1)}
	s := New("@every 1s", agent, monitoring.NewMonitor())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-agent.runs:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not happen")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStartSurvivesPanickingRun(t *testing.T) {
	agent := &stubAgent{panics: true, runs: make(chan struct{}, 1)}
	s := New("@every 1s", agent, monitoring.NewMonitor())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-agent.runs:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not happen")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
