package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"truthtube/internal/models"
	"truthtube/shared/ai"
)

const (
	titlePreviewWords = 500
	titleEdgeWords    = 200
	titleExcerptChars = 2000
	clickbaitCap      = 40
)

type titleResponse struct {
	RelevanceScore      *int     `json:"relevance_score"`
	CompletenessScore   *int     `json:"completeness_score"`
	IsClickbait         *bool    `json:"is_clickbait"`
	ClickbaitIndicators []string `json:"clickbait_indicators"`
	TitlePromise        string   `json:"title_promise"`
	ContentDelivery     string   `json:"content_delivery"`
	Explanation         string   `json:"explanation"`
}

func (r *titleResponse) Validate() error {
	if r.RelevanceScore == nil || r.CompletenessScore == nil || r.IsClickbait == nil {
		return errors.New("relevance_score, completeness_score and is_clickbait are required")
	}
	for name, v := range map[string]int{"relevance_score": *r.RelevanceScore, "completeness_score": *r.CompletenessScore} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s %d outside 0..100", name, v)
		}
	}
	return nil
}

// TitleScorer checks whether the content delivers what the title promises.
type TitleScorer struct {
	client Collaborator
}

func NewTitleScorer(c Collaborator) *TitleScorer {
	return &TitleScorer{client: c}
}

func (s *TitleScorer) Metric() models.Metric { return models.MetricTitleRelevance }

func (s *TitleScorer) Score(ctx context.Context, video *models.ResolvedVideo) (*models.MetricResult, error) {
	if !video.HasTranscript() {
		return noContent(models.MetricTitleRelevance), nil
	}

	words := strings.Fields(video.TranscriptText())
	ending := ""
	if len(words) > 2*titleEdgeWords {
		ending = lastWords(words, titleEdgeWords)
	}
	excerpt, _ := clip(fmt.Sprintf("Beginning: %s\n\nEnding: %s", firstWords(words, titleEdgeWords), ending), titleExcerptChars)

	var resp titleResponse
	err := s.client.Score(ctx, ai.Request{
		Metric:  models.MetricTitleRelevance,
		System:  titleSystem,
		Payload: fmt.Sprintf(titlePayload, video.Title, excerpt, titlePreviewWords, firstWords(words, titlePreviewWords)),
	}, &resp)
	if err != nil {
		return nil, scoringFailed(models.MetricTitleRelevance, err)
	}

	score := (*resp.RelevanceScore*6 + *resp.CompletenessScore*4) / 10
	if *resp.IsClickbait {
		score = min(score, clickbaitCap)
	}

	result := models.NewMetricResult(models.MetricTitleRelevance, score, models.StatusOK, "")
	result.Title.Explanation = resp.Explanation
	result.Title.IsClickbait = *resp.IsClickbait
	result.Title.ClickbaitIndicators = models.NonNil(resp.ClickbaitIndicators)

	videoLog(models.MetricTitleRelevance, video).Infof("Title relevance score=%d clickbait=%v", score, *resp.IsClickbait)
	return result, nil
}
