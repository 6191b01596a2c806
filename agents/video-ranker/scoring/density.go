package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"truthtube/internal/models"
	"truthtube/shared/ai"
)

const (
	densityMaxChars = 15000
	densityTopFacts = 5
)

type densityFact struct {
	Text       string `json:"text"`
	Category   string `json:"category"`
	Importance int    `json:"importance"`
}

type densityResponse struct {
	Facts          []densityFact `json:"facts"`
	TotalCount     *int          `json:"total_count"`
	HighValueCount *int          `json:"high_value_count"`
	Summary        string        `json:"summary"`
}

func (r *densityResponse) Validate() error {
	if r.TotalCount == nil || r.HighValueCount == nil {
		return errors.New("total_count and high_value_count are required")
	}
	if *r.TotalCount < 0 || *r.HighValueCount < 0 {
		return errors.New("counts must not be negative")
	}
	if *r.HighValueCount > *r.TotalCount {
		return fmt.Errorf("high_value_count %d exceeds total_count %d", *r.HighValueCount, *r.TotalCount)
	}
	for i, f := range r.Facts {
		if strings.TrimSpace(f.Text) == "" {
			return fmt.Errorf("facts[%d].text is empty", i)
		}
		if f.Importance < 1 || f.Importance > 3 {
			return fmt.Errorf("facts[%d].importance %d outside 1..3", i, f.Importance)
		}
	}
	return nil
}

// DensityScorer rates how much a viewer learns per minute.
type DensityScorer struct {
	client Collaborator
}

func NewDensityScorer(c Collaborator) *DensityScorer {
	return &DensityScorer{client: c}
}

func (s *DensityScorer) Metric() models.Metric { return models.MetricDensity }

func (s *DensityScorer) Score(ctx context.Context, video *models.ResolvedVideo) (*models.MetricResult, error) {
	if !video.HasTranscript() {
		return noContent(models.MetricDensity), nil
	}

	text := video.TranscriptText()
	wordCount := len(strings.Fields(text))
	minutes := durationMinutes(video)

	transcript, cut := clip(text, densityMaxChars)
	if cut {
		transcript += "\n[... transcript truncated ...]"
	}

	var resp densityResponse
	err := s.client.Score(ctx, ai.Request{
		Metric:  models.MetricDensity,
		System:  densitySystem,
		Payload: fmt.Sprintf(densityPayload, video.Title, minutes, wordCount, transcript),
	}, &resp)
	if err != nil {
		return nil, scoringFailed(models.MetricDensity, err)
	}

	total, highValue := *resp.TotalCount, *resp.HighValueCount
	perMinute := round(float64(total)/minutes, 2)
	base := min(100, perMinute*20)
	boost := float64(highValue) / float64(max(total, 1)) * 20
	score := int(min(100, base+boost))

	result := models.NewMetricResult(models.MetricDensity, score, models.StatusOK, "")
	result.Density.FactsCount = total
	result.Density.InsightsPerMinute = perMinute
	result.Density.Summary = resp.Summary
	result.Density.KeyFacts = topFacts(resp.Facts, densityTopFacts)

	videoLog(models.MetricDensity, video).Infof("Density score=%d facts=%d insights/min=%.2f", score, total, perMinute)
	return result, nil
}

func topFacts(facts []densityFact, n int) []string {
	sorted := append([]densityFact(nil), facts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})
	out := make([]string, 0, n)
	for _, f := range sorted {
		if len(out) == n {
			break
		}
		out = append(out, f.Text)
	}
	return out
}
