package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"truthtube/internal/models"
	"truthtube/shared/ai"
)

const (
	redundancyMaxChars   = 12000
	redundancyExamples   = 3
	redundancyExampleLen = 100
	fillerPhrasesShown   = 5
)

// fillerPatterns catch stock creator phrases the model tends to overlook.
var fillerPatterns = compileAll(
	`don'?t forget to (like|subscribe|hit)`,
	`hit that (bell|notification|like)`,
	`before we (begin|start|dive|get started)`,
	`let me know in the comments`,
	`without further ado`,
	`make sure (to|you) (subscribe|like)`,
	`if you enjoy(ed)? this`,
	`smash that like`,
	`welcome back to (my|the|this) channel`,
	`hey (guys|everyone|folks)`,
	`what'?s up (guys|everyone|folks)`,
	`in today'?s video`,
	`so yeah`,
	`you know what i mean`,
	`like i said`,
	`as i mentioned`,
)

// FillerPatternCount is the number of regex filler patterns checked
// alongside the model's estimate.
func FillerPatternCount() int { return len(fillerPatterns) }

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)\b` + p + `\b`)
	}
	return out
}

func findFillers(transcript string) []string {
	var found []string
	for _, re := range fillerPatterns {
		found = append(found, re.FindAllString(transcript, -1)...)
	}
	return found
}

type redundancyIssue struct {
	Type    string `json:"type"`
	Example string `json:"example"`
	Impact  string `json:"impact"`
}

type redundancyResponse struct {
	Issues               []redundancyIssue `json:"issues"`
	RepetitionPercentage *float64          `json:"repetition_percentage"`
	TangentPercentage    *float64          `json:"tangent_percentage"`
	FillerPercentage     *float64          `json:"filler_percentage"`
	Summary              string            `json:"summary"`
}

func (r *redundancyResponse) Validate() error {
	for name, p := range map[string]*float64{
		"repetition_percentage": r.RepetitionPercentage,
		"tangent_percentage":    r.TangentPercentage,
		"filler_percentage":     r.FillerPercentage,
	} {
		if p == nil {
			return fmt.Errorf("%s is required", name)
		}
		if *p < 0 || *p > 100 {
			return fmt.Errorf("%s %.1f outside 0..100", name, *p)
		}
	}
	for i, issue := range r.Issues {
		switch strings.ToUpper(issue.Type) {
		case "REPETITION", "TANGENT", "FILLER":
		default:
			return fmt.Errorf("issues[%d].type %q is not REPETITION, TANGENT or FILLER", i, issue.Type)
		}
	}
	return nil
}

// RedundancyScorer estimates how much of a video is repeated, off-topic or
// filler. Higher scores are worse.
type RedundancyScorer struct {
	client Collaborator
}

func NewRedundancyScorer(c Collaborator) *RedundancyScorer {
	return &RedundancyScorer{client: c}
}

func (s *RedundancyScorer) Metric() models.Metric { return models.MetricRedundancy }

func (s *RedundancyScorer) Score(ctx context.Context, video *models.ResolvedVideo) (*models.MetricResult, error) {
	if !video.HasTranscript() {
		return noContent(models.MetricRedundancy), nil
	}

	text := video.TranscriptText()
	wordCount := len(strings.Fields(text))
	fillers := findFillers(text)

	transcript, cut := clip(text, redundancyMaxChars)
	if cut {
		transcript += "\n[... truncated ...]"
	}

	var resp redundancyResponse
	err := s.client.Score(ctx, ai.Request{
		Metric:  models.MetricRedundancy,
		System:  redundancySystem,
		Payload: fmt.Sprintf(redundancyPayload, video.Title, durationMinutes(video), transcript),
	}, &resp)
	if err != nil {
		return nil, scoringFailed(models.MetricRedundancy, err)
	}

	repetition, tangent := *resp.RepetitionPercentage, *resp.TangentPercentage
	regexFiller := float64(len(fillers)) / max(float64(wordCount)/10, 1) * 5
	filler := clampPercent(*resp.FillerPercentage + regexFiller)
	score := int(min(100, repetition*0.4+tangent*0.3+filler*0.3))

	result := models.NewMetricResult(models.MetricRedundancy, score, models.StatusOK, "")
	result.Redundancy.FillerPercentage = round(filler, 1)
	result.Redundancy.RepetitionPercentage = round(repetition, 1)
	for _, issue := range resp.Issues {
		if len(result.Redundancy.Examples) == redundancyExamples {
			break
		}
		example, _ := clip(strings.TrimSpace(issue.Example), redundancyExampleLen)
		if example != "" {
			result.Redundancy.Examples = append(result.Redundancy.Examples, example)
		}
	}
	if len(fillers) > fillerPhrasesShown {
		fillers = fillers[:fillerPhrasesShown]
	}
	result.Redundancy.FillerPhrases = models.NonNil(fillers)

	videoLog(models.MetricRedundancy, video).Infof("Redundancy score=%d repetition=%.1f%% filler=%.1f%%", score, repetition, filler)
	return result, nil
}
