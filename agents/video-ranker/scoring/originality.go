package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"truthtube/internal/models"
	"truthtube/shared/ai"
	"truthtube/shared/logger"
)

const (
	originalityExcerptWords = 300
	originalityExcerptChars = 500

	singleVideoNote = "comparison requires at least two videos with transcripts"
	omittedReason   = "video missing from comparison response"
)

type originalityVideo struct {
	VideoID          string   `json:"video_id"`
	OriginalityScore *int     `json:"originality_score"`
	UniqueAspects    []string `json:"unique_aspects"`
	CommonWithOthers []string `json:"common_with_others"`
	StandoutReason   string   `json:"standout_reason"`
}

type originalityResponse struct {
	Videos            []originalityVideo `json:"videos"`
	MostOriginal      string             `json:"most_original"`
	ComparisonSummary string             `json:"comparison_summary"`
}

func (r *originalityResponse) Validate() error {
	if len(r.Videos) == 0 {
		return errors.New("videos must not be empty")
	}
	for i, v := range r.Videos {
		if strings.TrimSpace(v.VideoID) == "" {
			return fmt.Errorf("videos[%d].video_id is empty", i)
		}
		if v.OriginalityScore == nil {
			return fmt.Errorf("videos[%d].originality_score is required", i)
		}
		if *v.OriginalityScore < 0 || *v.OriginalityScore > 100 {
			return fmt.Errorf("videos[%d].originality_score %d outside 0..100", i, *v.OriginalityScore)
		}
	}
	return nil
}

// OriginalityScorer compares all videos of a request in a single model call.
type OriginalityScorer struct {
	client Collaborator
}

func NewOriginalityScorer(c Collaborator) *OriginalityScorer {
	return &OriginalityScorer{client: c}
}

func (s *OriginalityScorer) Metric() models.Metric { return models.MetricOriginality }

// ScoreAll scores every video relative to the others. Videos without a
// transcript get a no-content result; with fewer than two comparable videos
// no call is made and every video gets the neutral score.
func (s *OriginalityScorer) ScoreAll(ctx context.Context, videos []*models.ResolvedVideo) (*models.Comparison, error) {
	cmp := &models.Comparison{Results: make(map[string]*models.MetricResult, len(videos))}

	var comparable []*models.ResolvedVideo
	for _, v := range videos {
		if v.HasTranscript() {
			comparable = append(comparable, v)
		} else {
			cmp.Results[v.Ref.ID] = noContent(models.MetricOriginality)
		}
	}
	if len(comparable) < 2 {
		for _, v := range comparable {
			cmp.Results[v.Ref.ID] = models.NewMetricResult(models.MetricOriginality, models.NeutralScore, models.StatusNoContent, singleVideoNote)
		}
		return cmp, nil
	}

	var entries strings.Builder
	for i, v := range comparable {
		excerpt, _ := clip(firstWords(strings.Fields(v.TranscriptText()), originalityExcerptWords), originalityExcerptChars)
		fmt.Fprintf(&entries, originalityEntry, i+1, v.Ref.ID, v.Title, excerpt+"...")
	}

	var resp originalityResponse
	err := s.client.Score(ctx, ai.Request{
		Metric:  models.MetricOriginality,
		System:  originalitySystem,
		Payload: fmt.Sprintf(originalityPayload, entries.String()),
	}, &resp)
	if err != nil {
		return nil, scoringFailed(models.MetricOriginality, err)
	}

	log := logger.Log.WithFields(logrus.Fields{"metric": models.MetricOriginality})
	byID := make(map[string]originalityVideo, len(resp.Videos))
	for _, v := range resp.Videos {
		byID[strings.TrimSpace(v.VideoID)] = v
	}
	for _, v := range comparable {
		got, ok := byID[v.Ref.ID]
		if !ok {
			log.WithField("video_id", v.Ref.ID).Warn("Model omitted video from originality comparison")
			cmp.Results[v.Ref.ID] = models.DegradedResult(models.MetricOriginality, omittedReason)
			continue
		}
		result := models.NewMetricResult(models.MetricOriginality, *got.OriginalityScore, models.StatusOK, "")
		result.Originality.UniqueAspects = models.NonNil(got.UniqueAspects)
		result.Originality.CommonWithOthers = models.NonNil(got.CommonWithOthers)
		cmp.Results[v.Ref.ID] = result
	}

	if most := strings.TrimSpace(resp.MostOriginal); cmp.Results[most] != nil && cmp.Results[most].Status == models.StatusOK {
		cmp.MostOriginal = most
	}
	cmp.Summary = resp.ComparisonSummary
	log.Infof("Originality comparison of %d videos complete, most original: %s", len(comparable), resp.MostOriginal)
	return cmp, nil
}
