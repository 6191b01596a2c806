package videoranker

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"truthtube/agents/video-ranker/scoring"
	"truthtube/internal/models"
	"truthtube/shared/logger"
)

const (
	benchVideoID       = "transcript"
	benchDefaultTitle  = "Test Video"
	benchDefaultLength = 60
)

// URLResolver resolves a raw video URL. *youtube.Resolver implements it.
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) (*models.ResolvedVideo, error)
}

var scorerInfo = map[models.Metric]models.ScorerInfo{
	models.MetricDensity: {
		Scorer:      "DensityScorer",
		Description: "Analyzes information density in video transcripts",
	},
	models.MetricRedundancy: {
		Scorer:      "RedundancyScorer",
		Description: "Detects filler content, repetition, and fluff",
	},
	models.MetricTitleRelevance: {
		Scorer:      "TitleScorer",
		Description: "Checks if content matches title, detects clickbait",
	},
	models.MetricOriginality: {
		Scorer:      "OriginalityScorer",
		Description: "Compares videos against each other for unique content",
	},
}

// Bench runs one scorer at a time outside of a full analysis, for tuning
// prompts against a known video or transcript.
type Bench struct {
	resolver    URLResolver
	scorers     map[models.Metric]MetricScorer
	comparative ComparativeScorer
	model       string
	maxVideos   int
}

func NewBench(resolver URLResolver, scorers []MetricScorer, comparative ComparativeScorer, model string, maxVideos int) *Bench {
	b := &Bench{
		resolver:    resolver,
		scorers:     make(map[models.Metric]MetricScorer, len(scorers)),
		comparative: comparative,
		model:       model,
		maxVideos:   maxVideos,
	}
	for _, s := range scorers {
		b.scorers[s.Metric()] = s
	}
	if b.maxVideos <= 0 {
		b.maxVideos = 5
	}
	return b
}

// Info describes the scorer behind m.
func (b *Bench) Info(m models.Metric) (*models.ScorerInfo, error) {
	info, ok := scorerInfo[m]
	if !ok {
		return nil, models.NewRequestError(models.KindInvalidRequest, "unknown metric %q", m)
	}
	info.Metric = m
	info.Model = b.model
	if m == models.MetricRedundancy {
		info.FillerPatterns = scoring.FillerPatternCount()
	}
	return &info, nil
}

// TestMetric scores a single video on one per-video metric. Unlike Analyze,
// a scorer failure is returned instead of degraded.
func (b *Bench) TestMetric(ctx context.Context, m models.Metric, in models.ScorerInput) (*models.ScorerTest, error) {
	scorer, ok := b.scorers[m]
	if !ok {
		return nil, models.NewRequestError(models.KindInvalidRequest, "no per-video scorer for metric %q", m)
	}
	video, err := b.video(ctx, in)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("metric", m).Infof("Running scorer test: %s", video.Title)
	result, err := scorer.Score(ctx, video)
	if err != nil {
		return nil, err
	}
	return &models.ScorerTest{Video: video, Result: result}, nil
}

func (b *Bench) video(ctx context.Context, in models.ScorerInput) (*models.ResolvedVideo, error) {
	if in.URL != "" {
		video, err := b.resolver.Resolve(ctx, in.URL)
		if err != nil {
			return nil, models.NewRequestError(models.KindOf(err), "could not fetch video data: %v", err)
		}
		if !video.HasTranscript() {
			return nil, models.NewRequestError(models.KindInvalidRequest, "video %s has no transcript", video.Ref.ID)
		}
		return video, nil
	}

	if strings.TrimSpace(in.Transcript) == "" {
		return nil, models.NewRequestError(models.KindInvalidRequest, "either youtube_url or transcript must be provided")
	}
	title := in.Title
	if title == "" {
		title = benchDefaultTitle
	}
	duration := in.DurationSeconds
	if duration <= 0 {
		duration = benchDefaultLength
	}
	return &models.ResolvedVideo{
		Ref:             models.VideoRef{ID: benchVideoID},
		Title:           title,
		DurationSeconds: duration,
		Transcript:      []models.TranscriptSegment{{Duration: float64(duration), Text: in.Transcript}},
	}, nil
}

// TestOriginality resolves urls and runs one comparison across the videos
// that resolved. At least two must resolve.
func (b *Bench) TestOriginality(ctx context.Context, urls []string) (*models.Comparison, error) {
	if len(urls) < 2 || len(urls) > b.maxVideos {
		return nil, models.NewRequestError(models.KindInvalidRequest,
			"expected between 2 and %d URLs, got %d", b.maxVideos, len(urls))
	}
	if b.comparative == nil {
		return nil, models.NewRequestError(models.KindInternal, "no comparative scorer configured")
	}

	resolved := make([]*models.ResolvedVideo, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			video, err := b.resolver.Resolve(ctx, u)
			if err != nil {
				logger.Log.Warnf("Skipping %s: %v", u, err)
				return nil
			}
			resolved[i] = video
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewRequestError(models.KindCollaboratorTimeout, "request deadline exceeded while resolving")
		}
		return nil, models.NewRequestError(models.KindCanceled, "request canceled while resolving")
	}

	var videos []*models.ResolvedVideo
	for _, v := range resolved {
		if v != nil {
			videos = append(videos, v)
		}
	}
	if len(videos) < 2 {
		return nil, models.NewRequestError(models.KindNoVideosResolved,
			"could not fetch at least 2 videos (%d of %d resolved)", len(videos), len(urls))
	}
	return b.comparative.ScoreAll(ctx, videos)
}
