// Package scoring turns a resolved video into metric results by asking the
// language model for structured evidence and combining it into 0-100 scores.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"truthtube/internal/models"
	"truthtube/shared/ai"
	"truthtube/shared/logger"
)

// Collaborator is the language-model capability the scorers need.
// *ai.Client implements it.
type Collaborator interface {
	Score(ctx context.Context, req ai.Request, out ai.Schema) error
}

// Scorer produces one metric for one video. Implementations share no
// mutable state and may be called concurrently.
type Scorer interface {
	Metric() models.Metric
	Score(ctx context.Context, video *models.ResolvedVideo) (*models.MetricResult, error)
}

// PerVideo returns the three independent per-video scorers.
func PerVideo(c Collaborator) []Scorer {
	return []Scorer{
		NewDensityScorer(c),
		NewRedundancyScorer(c),
		NewTitleScorer(c),
	}
}

const noTranscriptNote = "transcript unavailable"

func noContent(m models.Metric) *models.MetricResult {
	return models.NewMetricResult(m, models.NeutralScore, models.StatusNoContent, noTranscriptNote)
}

// scoringFailed wraps a collaborator failure so it classifies as ScoringError
// (or CollaboratorTimeout when the call ran out of time).
func scoringFailed(m models.Metric, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrScoring, m, err)
}

func videoLog(m models.Metric, v *models.ResolvedVideo) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{"metric": m, "video_id": v.Ref.ID})
}

// durationMinutes never goes below half a minute so rates stay finite.
func durationMinutes(v *models.ResolvedVideo) float64 {
	return math.Max(float64(v.DurationSeconds)/60, 0.5)
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n], true
}

func firstWords(words []string, n int) string {
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func lastWords(words []string, n int) string {
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func clampPercent(f float64) float64 {
	return math.Min(100, math.Max(0, f))
}
