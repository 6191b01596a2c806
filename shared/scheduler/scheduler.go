// Package scheduler runs an Agent on a cron schedule and feeds every run's
// outcome to a monitoring.Monitor.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"truthtube/shared/logger"
	"truthtube/shared/monitoring"
)

// Summary is what an agent reports about a successful run.
type Summary interface {
	GetSummary() string
}

// Events are the callbacks an agent uses to report progress within a run.
type Events struct {
	OnSuccess         func(summary Summary, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent is a unit of scheduled work.
type Agent interface {
	Name() string
	Initialize() error
	RunOnce(ctx context.Context, events *Events) error
}

// Scheduler runs an agent on a six-field cron spec (seconds first).
// Overlapping runs are skipped.
type Scheduler struct {
	spec    string
	agent   Agent
	monitor *monitoring.Monitor
	cron    *cron.Cron
}

func New(spec string, agent Agent, monitor *monitoring.Monitor) *Scheduler {
	cronLog := cron.PrintfLogger(logger.Log.WithField("component", "cron"))
	return &Scheduler{
		spec:    spec,
		agent:   agent,
		monitor: monitor,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// Start initializes the agent and blocks until ctx is done. A run that is
// in progress at shutdown is waited for.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	id, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunOnce(ctx); err != nil {
			logger.Log.WithField("agent", s.agent.Name()).Errorf("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.Log.WithField("agent", s.agent.Name()).
		Infof("Scheduled with %q, next run at %s", s.spec, s.cron.Entry(id).Next.Format(time.RFC3339))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	logger.Log.WithField("agent", s.agent.Name()).Info("Scheduler stopped")
	return ctx.Err()
}

// RunOnce performs one run and records its outcome. The returned error is
// the agent's own failure; partial failures only reach the monitor.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	log := logger.Log.WithFields(logrus.Fields{"agent": s.agent.Name(), "run_id": uuid.NewString()})
	log.Info("Run started")

	err := s.agent.RunOnce(ctx, s.events(log))
	if err != nil {
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", s.agent.Name(), err), time.Since(start))
		return fmt.Errorf("%s run failed: %w", s.agent.Name(), err)
	}
	log.Infof("Run finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Scheduler) events(log *logrus.Entry) *Events {
	name := s.agent.Name()
	return &Events{
		OnSuccess: func(summary Summary, d time.Duration) {
			log.Info(summary.GetSummary())
			s.monitor.RecordSuccess(summary.GetSummary(), d)
		},
		OnPartialFailure: func(err error, d time.Duration) {
			s.monitor.RecordPartialFailure(fmt.Errorf("%s partial failure: %w", name, err), d)
		},
		OnCriticalFailure: func(err error, d time.Duration) {
			s.monitor.RecordCriticalFailure(fmt.Errorf("%s critical failure: %w", name, err), d)
		},
	}
}
