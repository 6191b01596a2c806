// Package videoranker ranks a small set of videos against each other on
// information density, redundancy, title relevance and originality.
package videoranker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/logger"
	"truthtube/shared/scheduler"
)

// Analyzer is implemented by Orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, urls []string) (*models.AnalysisReport, error)
}

// ReportMailer delivers a finished report.
type ReportMailer interface {
	SendReport(name string, report *models.AnalysisReport) error
}

// ComparisonAgent implements scheduler.Agent. Every run analyzes each
// configured comparison and mails the ranked report.
type ComparisonAgent struct {
	comparisons []config.ComparisonConfig
	analyzer    Analyzer
	mailer      ReportMailer
}

// NewComparisonAgent builds the agent; mailer may be nil to only log reports.
func NewComparisonAgent(comparisons []config.ComparisonConfig, analyzer Analyzer, mailer ReportMailer) *ComparisonAgent {
	return &ComparisonAgent{
		comparisons: comparisons,
		analyzer:    analyzer,
		mailer:      mailer,
	}
}

func (a *ComparisonAgent) Name() string {
	return "Video Ranker"
}

func (a *ComparisonAgent) Initialize() error {
	if len(a.comparisons) == 0 {
		return errors.New("no comparisons configured")
	}
	if a.analyzer == nil {
		return errors.New("no analyzer configured")
	}
	if a.mailer == nil {
		logger.Log.Warn("Email is not configured, reports will only be logged")
	}
	logger.Log.Infof("%s initialized with %d comparisons", a.Name(), len(a.comparisons))
	return nil
}

// RunMetrics summarizes one scheduled run.
type RunMetrics struct {
	Comparisons int
	Failed      int
	Ranked      int
	Excluded    int
	Degraded    int
	Emailed     int
}

func (m RunMetrics) GetSummary() string {
	return fmt.Sprintf("%d comparisons (%d failed), ranked %d videos, excluded %d, %d with degraded metrics, emailed %d",
		m.Comparisons, m.Failed, m.Ranked, m.Excluded, m.Degraded, m.Emailed)
}

// RunOnce fails only when every comparison failed; anything less is
// reported as a partial failure.
func (a *ComparisonAgent) RunOnce(ctx context.Context, events *scheduler.Events) error {
	startTime := time.Now()
	metrics := RunMetrics{Comparisons: len(a.comparisons)}

	for _, c := range a.comparisons {
		log := logger.Log.WithField("comparison", c.Name)
		log.Infof("Analyzing %d URLs", len(c.URLs))

		report, err := a.analyzer.Analyze(ctx, c.URLs)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("run interrupted: %w", ctx.Err())
			}
			metrics.Failed++
			log.Errorf("Comparison failed: %v", err)
			events.OnPartialFailure(fmt.Errorf("comparison %q: %w", c.Name, err), time.Since(startTime))
			continue
		}

		metrics.Ranked += len(report.Videos)
		metrics.Excluded += len(report.Failures)
		for _, v := range report.Videos {
			if v.Degraded() {
				metrics.Degraded++
			}
		}
		log.Info(report.Summary)

		if a.mailer == nil {
			continue
		}
		if err := a.mailer.SendReport(c.Name, report); err != nil {
			log.Errorf("Failed to send report: %v", err)
			events.OnPartialFailure(fmt.Errorf("emailing comparison %q: %w", c.Name, err), time.Since(startTime))
			continue
		}
		metrics.Emailed++
	}

	if metrics.Failed == metrics.Comparisons {
		return fmt.Errorf("all %d comparisons failed", metrics.Comparisons)
	}

	events.OnSuccess(metrics, time.Since(startTime))
	return nil
}
