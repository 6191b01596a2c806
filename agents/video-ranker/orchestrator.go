package videoranker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"truthtube/agents/video-ranker/ranking"
	"truthtube/agents/video-ranker/scoring"
	"truthtube/agents/video-ranker/youtube"
	"truthtube/internal/models"
	"truthtube/shared/config"
	"truthtube/shared/logger"
)

// VideoResolver fetches the metadata and transcript of a parsed reference.
type VideoResolver interface {
	ResolveRef(ctx context.Context, ref models.VideoRef) (*models.ResolvedVideo, error)
}

// MetricScorer scores one metric of one video.
type MetricScorer = scoring.Scorer

// ComparativeScorer scores every video of a request in one call.
type ComparativeScorer interface {
	ScoreAll(ctx context.Context, videos []*models.ResolvedVideo) (*models.Comparison, error)
}

// State is a step of one analysis request.
type State string

const (
	StateValidating  State = "validating"
	StateResolving   State = "resolving"
	StateScoring     State = "scoring"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Orchestrator runs analysis requests. It holds no per-request state and
// is safe for concurrent use.
type Orchestrator struct {
	resolver    VideoResolver
	scorers     []MetricScorer
	comparative ComparativeScorer
	weights     config.WeightsConfig
	maxVideos   int
}

func NewOrchestrator(resolver VideoResolver, scorers []MetricScorer, comparative ComparativeScorer, cfg *config.AnalysisConfig) *Orchestrator {
	o := &Orchestrator{
		resolver:    resolver,
		scorers:     scorers,
		comparative: comparative,
		weights:     cfg.Weights,
		maxVideos:   cfg.MaxVideos,
	}
	if o.maxVideos <= 0 {
		o.maxVideos = 5
	}
	if o.weights == (config.WeightsConfig{}) {
		o.weights = config.DefaultWeights()
	}
	return o
}

// slot is the part of the request one video branch owns. Branches write
// only to their own slot, so no locking is needed.
type slot struct {
	ref     models.VideoRef
	video   *models.ResolvedVideo
	err     error
	results []*models.MetricResult // indexed like Orchestrator.scorers
}

type analysis struct {
	o     *Orchestrator
	id    string
	start time.Time
	state State
	log   *logrus.Entry
}

// Analyze ranks the videos behind urls. The only errors it returns are
// *models.RequestError; per-video and per-metric problems end up inside the
// report.
func (o *Orchestrator) Analyze(ctx context.Context, urls []string) (*models.AnalysisReport, error) {
	a := &analysis{o: o, id: uuid.NewString(), start: time.Now().UTC()}
	a.log = logger.Log.WithField("request_id", a.id)

	report, err := a.run(ctx, urls)
	if err != nil {
		a.enter(StateFailed)
		a.log.WithField("kind", models.KindOf(err)).Errorf("Analysis failed: %v", err)
		return nil, err
	}

	a.enter(StateDone)
	a.log.Infof("Analysis complete in %v: %d ranked, %d failed",
		time.Since(a.start).Round(time.Millisecond), len(report.Videos), len(report.Failures))
	return report, nil
}

func (a *analysis) enter(s State) {
	a.state = s
	a.log.WithField("state", s).Debug("State transition")
}

func (a *analysis) run(ctx context.Context, urls []string) (*models.AnalysisReport, error) {
	a.enter(StateValidating)
	slots, failures, err := a.validate(urls)
	if err != nil {
		return nil, err
	}

	// Everything still in flight is abandoned once run returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.enter(StateResolving)
	var resolving, perVideo errgroup.Group
	for _, s := range slots {
		resolving.Go(func() error {
			video, err := a.o.resolver.ResolveRef(ctx, s.ref)
			if err != nil {
				s.err = err
				return nil
			}
			s.video = video
			// Per-video scorers do not wait for the other resolutions.
			for i, scorer := range a.o.scorers {
				perVideo.Go(func() error {
					s.results[i] = a.score(ctx, scorer, video)
					return nil
				})
			}
			return nil
		})
	}
	_ = resolving.Wait()

	// Every resolution is accounted for from here on.
	if err := ctx.Err(); err != nil {
		_ = perVideo.Wait()
		return nil, a.interrupted(err)
	}

	var videos []*models.ResolvedVideo
	for _, s := range slots {
		if s.err != nil {
			failures = append(failures, resolutionFailure(s))
			a.log.WithField("video_id", s.ref.ID).Warnf("Video excluded: %v", s.err)
			continue
		}
		videos = append(videos, s.video)
	}
	if len(videos) == 0 {
		return nil, models.NewRequestError(models.KindNoVideosResolved,
			"none of the %d submitted URL(s) could be resolved", len(urls))
	}

	a.enter(StateScoring)
	comparison := a.compare(ctx, videos)
	_ = perVideo.Wait()
	if err := ctx.Err(); err != nil {
		return nil, a.interrupted(err)
	}

	a.enter(StateAggregating)
	return a.aggregate(slots, failures, comparison), nil
}

func (a *analysis) validate(urls []string) ([]*slot, []models.VideoFailure, error) {
	if len(urls) == 0 || len(urls) > a.o.maxVideos {
		return nil, nil, models.NewRequestError(models.KindInvalidRequest,
			"expected between 1 and %d URLs, got %d", a.o.maxVideos, len(urls))
	}

	failures := []models.VideoFailure{}
	slots := make([]*slot, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, raw := range urls {
		ref, err := youtube.ParseVideoRef(raw)
		if err != nil {
			failures = append(failures, models.VideoFailure{
				URL:     raw,
				Kind:    models.KindInvalidURL,
				Message: err.Error(),
			})
			a.log.Warnf("Skipping URL: %v", err)
			continue
		}
		if seen[ref.ID] {
			a.log.WithField("video_id", ref.ID).Infof("Dropping duplicate URL %s", raw)
			continue
		}
		seen[ref.ID] = true
		slots = append(slots, &slot{ref: ref, results: make([]*models.MetricResult, len(a.o.scorers))})
	}
	return slots, failures, nil
}

// score runs one scorer and turns any failure into a placeholder.
func (a *analysis) score(ctx context.Context, scorer MetricScorer, video *models.ResolvedVideo) *models.MetricResult {
	result, err := scorer.Score(ctx, video)
	if err == nil && result != nil {
		return result
	}
	if err == nil {
		err = fmt.Errorf("%w: %s scorer returned no result", models.ErrScoring, scorer.Metric())
	}
	kind := models.KindOf(err)
	a.log.WithFields(logrus.Fields{"video_id": video.Ref.ID, "metric": scorer.Metric()}).
		Warnf("Metric degraded (%s): %v", kind, err)
	return models.DegradedResult(scorer.Metric(), string(kind))
}

// compare runs the comparative scorer once across all resolved videos.
// A failure degrades originality for every video.
func (a *analysis) compare(ctx context.Context, videos []*models.ResolvedVideo) *models.Comparison {
	if a.o.comparative == nil {
		return &models.Comparison{}
	}
	cmp, err := a.o.comparative.ScoreAll(ctx, videos)
	if err == nil && cmp != nil {
		return cmp
	}
	if err == nil {
		err = fmt.Errorf("%w: comparative scorer returned no result", models.ErrScoring)
	}
	kind := models.KindOf(err)
	a.log.WithField("metric", models.MetricOriginality).Warnf("Comparison degraded (%s): %v", kind, err)
	degraded := &models.Comparison{Results: make(map[string]*models.MetricResult, len(videos))}
	for _, v := range videos {
		degraded.Results[v.Ref.ID] = models.DegradedResult(models.MetricOriginality, string(kind))
	}
	return degraded
}

func (a *analysis) aggregate(slots []*slot, failures []models.VideoFailure, cmp *models.Comparison) *models.AnalysisReport {
	reports := make([]*models.VideoReport, 0, len(slots))
	for _, s := range slots {
		if s.video == nil {
			continue
		}
		r := &models.VideoReport{Video: s.video}
		for i, scorer := range a.o.scorers {
			setResult(r, scorer.Metric(), s.results[i])
		}
		setResult(r, models.MetricOriginality, cmp.Results[s.video.Ref.ID])
		for _, m := range models.Metrics {
			if r.Result(m) == nil {
				setResult(r, m, models.DegradedResult(m, "no scorer produced a result"))
			}
		}
		reports = append(reports, r)
	}

	ranked := ranking.Rank(reports, a.o.weights)
	return &models.AnalysisReport{
		RequestID:    a.id,
		AnalyzedAt:   a.start,
		Videos:       ranked,
		Failures:     failures,
		Comparison:   cmp.Summary,
		MostOriginal: cmp.MostOriginal,
		Summary:      ranking.Summary(ranked, len(failures)),
	}
}

func setResult(r *models.VideoReport, m models.Metric, res *models.MetricResult) {
	if res == nil {
		return
	}
	switch m {
	case models.MetricDensity:
		r.Density = res
	case models.MetricRedundancy:
		r.Redundancy = res
	case models.MetricTitleRelevance:
		r.TitleRelevance = res
	case models.MetricOriginality:
		r.Originality = res
	}
}

func resolutionFailure(s *slot) models.VideoFailure {
	return models.VideoFailure{
		URL:     s.ref.URL,
		VideoID: s.ref.ID,
		Kind:    models.KindOf(s.err),
		Message: s.err.Error(),
	}
}

// interrupted maps a cancelled request context onto the request-level taxonomy.
func (a *analysis) interrupted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewRequestError(models.KindCollaboratorTimeout,
			"request deadline exceeded while %s", a.state)
	}
	return models.NewRequestError(models.KindCanceled, "request canceled while %s", a.state)
}
