package scoring

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtube/internal/models"
	"truthtube/shared/ai"
	"truthtube/shared/config"
)

// cannedModel replays fixed answers in order and records every prompt.
type cannedModel struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (m *cannedModel) Generate(_ context.Context, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.prompts) > len(m.replies) {
		return "", errors.New("no more canned replies")
	}
	return m.replies[len(m.prompts)-1], nil
}

func (m *cannedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func newCollaborator(replies ...string) (*ai.Client, *cannedModel) {
	m := &cannedModel{replies: replies}
	return ai.NewClient(m, &config.AIConfig{TimeoutSeconds: 5}), m
}

func testVideo(id, title string, durationSeconds int, lines ...string) *models.ResolvedVideo {
	v := &models.ResolvedVideo{
		Ref:             models.VideoRef{ID: id, URL: "https://youtu.be/" + id},
		Title:           title,
		DurationSeconds: durationSeconds,
	}
	for i, l := range lines {
		v.Transcript = append(v.Transcript, models.TranscriptSegment{Start: float64(i * 5), Duration: 5, Text: l})
	}
	return v
}

func TestPerVideoScorers(t *testing.T) {
	client, _ := newCollaborator()
	var metrics []models.Metric
	for _, s := range PerVideo(client) {
		metrics = append(metrics, s.Metric())
	}
	assert.Equal(t, []models.Metric{models.MetricDensity, models.MetricRedundancy, models.MetricTitleRelevance}, metrics)
}

func TestEmptyTranscriptIsNeutral(t *testing.T) {
	client, model := newCollaborator()
	video := testVideo("aaaaaaaaaaa", "Silent video", 60)

	for _, s := range PerVideo(client) {
		t.Run(string(s.Metric()), func(t *testing.T) {
			result, err := s.Score(context.Background(), video)
			require.NoError(t, err)
			assert.Equal(t, models.NeutralScore, result.Score)
			assert.Equal(t, models.StatusNoContent, result.Status)
			assert.Equal(t, noTranscriptNote, result.Note)
			assert.True(t, result.Unavailable())
		})
	}
	assert.Zero(t, model.calls())
}

func TestDensityScorer(t *testing.T) {
	client, model := newCollaborator(`Here you go:
{"facts": [
  {"text": "goroutines are cheap", "category": "FACT", "importance": 1},
  {"text": "channels synchronize", "category": "CONCEPT", "importance": 3},
  {"text": "select multiplexes", "category": "CONCEPT", "importance": 2},
  {"text": "close signals done", "category": "FACT", "importance": 1},
  {"text": "avoid shared memory", "category": "INSIGHT", "importance": 3},
  {"text": "buffer sizes matter", "category": "FACT", "importance": 1}
 ],
 "total_count": 6, "high_value_count": 3, "summary": "Concurrency basics."}`)
	video := testVideo("aaaaaaaaaaa", "Go concurrency", 120, "goroutines are cheap", "channels synchronize")

	result, err := NewDensityScorer(client).Score(context.Background(), video)
	require.NoError(t, err)

	// 6 items over 2 minutes = 3/min -> 60, plus half high value -> 10.
	assert.Equal(t, 70, result.Score)
	assert.Equal(t, models.StatusOK, result.Status)
	assert.Equal(t, 6, result.Density.FactsCount)
	assert.InDelta(t, 3.0, result.Density.InsightsPerMinute, 1e-9)
	assert.Equal(t, "Concurrency basics.", result.Density.Summary)
	assert.Equal(t, []string{
		"channels synchronize", "avoid shared memory", "select multiplexes",
		"goroutines are cheap", "close signals done",
	}, result.Density.KeyFacts)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Go concurrency")
	assert.Contains(t, model.prompts[0], "Word count: 5 words")
}

func TestDensityScorerCapsAt100(t *testing.T) {
	client, _ := newCollaborator(`{"facts": [], "total_count": 40, "high_value_count": 40, "summary": ""}`)
	video := testVideo("aaaaaaaaaaa", "Short", 10, "dense")

	result, err := NewDensityScorer(client).Score(context.Background(), video)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.NotNil(t, result.Density.KeyFacts)
}

func TestScorerSchemaViolation(t *testing.T) {
	client, model := newCollaborator(
		`{"facts": [], "total_count": 2, "high_value_count": 5}`,
		`not json at all`,
	)
	video := testVideo("aaaaaaaaaaa", "Broken", 60, "some words")

	_, err := NewDensityScorer(client).Score(context.Background(), video)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrScoring)
	assert.ErrorIs(t, err, ai.ErrSchemaViolation)
	assert.Equal(t, models.KindScoringError, models.KindOf(err))
	assert.Equal(t, 2, model.calls())
}

func TestRedundancyScorer(t *testing.T) {
	client, _ := newCollaborator(`{
  "issues": [
    {"type": "REPETITION", "example": "` + strings.Repeat("x", 150) + `", "impact": "HIGH"},
    {"type": "filler", "example": "so basically", "impact": "LOW"},
    {"type": "TANGENT", "example": "my holiday", "impact": "MEDIUM"},
    {"type": "FILLER", "example": "fourth", "impact": "LOW"}
  ],
  "repetition_percentage": 25, "tangent_percentage": 15, "filler_percentage": 2,
  "summary": "Mostly fine."}`)
	video := testVideo("aaaaaaaaaaa", "Go concurrency", 300,
		"Hey guys welcome back to my channel",
		"goroutines are cheap threads managed by the runtime",
		"smash that like button before we begin")

	result, err := NewRedundancyScorer(client).Score(context.Background(), video)
	require.NoError(t, err)

	// 4 regex fillers in 22 words add 4/2.2*5 = 9.09 points of filler.
	// 25*.4 + 15*.3 + 11.09*.3 = 17.8
	assert.Equal(t, 17, result.Score)
	assert.InDelta(t, 11.1, result.Redundancy.FillerPercentage, 1e-9)
	assert.InDelta(t, 25.0, result.Redundancy.RepetitionPercentage, 1e-9)
	assert.ElementsMatch(t, []string{"Hey guys", "welcome back to my channel", "smash that like", "before we begin"},
		result.Redundancy.FillerPhrases)
	require.Len(t, result.Redundancy.Examples, 3)
	assert.Len(t, result.Redundancy.Examples[0], 100)
	assert.Equal(t, "my holiday", result.Redundancy.Examples[2])
}

func TestTitleScorer(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		score      int
		clickbait  bool
		indicators []string
	}{
		{
			name:       "weighted",
			reply:      `{"relevance_score": 80, "completeness_score": 70, "is_clickbait": false, "explanation": "Delivers."}`,
			score:      76,
			indicators: []string{},
		},
		{
			name:       "clickbait capped",
			reply:      `{"relevance_score": 90, "completeness_score": 90, "is_clickbait": true, "clickbait_indicators": ["ALL CAPS"], "explanation": "Hyped."}`,
			score:      clickbaitCap,
			clickbait:  true,
			indicators: []string{"ALL CAPS"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, model := newCollaborator(tt.reply)
			video := testVideo("aaaaaaaaaaa", "Learn Go in 10 minutes", 600, "package main", "func main")

			result, err := NewTitleScorer(client).Score(context.Background(), video)
			require.NoError(t, err)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, tt.clickbait, result.Title.IsClickbait)
			assert.Equal(t, tt.indicators, result.Title.ClickbaitIndicators)
			assert.Contains(t, model.prompts[0], "Video title: Learn Go in 10 minutes")
			assert.Contains(t, model.prompts[0], "Beginning: package main func main")
		})
	}
}

func TestResponseValidation(t *testing.T) {
	intp := func(i int) *int { return &i }
	floatp := func(f float64) *float64 { return &f }
	boolp := func(b bool) *bool { return &b }

	tests := []struct {
		name    string
		schema  ai.Schema
		wantErr bool
	}{
		{"density ok", &densityResponse{TotalCount: intp(2), HighValueCount: intp(1)}, false},
		{"density missing counts", &densityResponse{}, true},
		{"density bad importance", &densityResponse{TotalCount: intp(1), HighValueCount: intp(0), Facts: []densityFact{{Text: "x", Importance: 7}}}, true},
		{"redundancy ok", &redundancyResponse{RepetitionPercentage: floatp(1), TangentPercentage: floatp(2), FillerPercentage: floatp(3)}, false},
		{"redundancy out of range", &redundancyResponse{RepetitionPercentage: floatp(101), TangentPercentage: floatp(2), FillerPercentage: floatp(3)}, true},
		{"redundancy bad type", &redundancyResponse{RepetitionPercentage: floatp(1), TangentPercentage: floatp(2), FillerPercentage: floatp(3), Issues: []redundancyIssue{{Type: "RANT"}}}, true},
		{"title missing flag", &titleResponse{RelevanceScore: intp(1), CompletenessScore: intp(1)}, true},
		{"title out of range", &titleResponse{RelevanceScore: intp(-1), CompletenessScore: intp(1), IsClickbait: boolp(false)}, true},
		{"originality empty", &originalityResponse{}, true},
		{"originality no id", &originalityResponse{Videos: []originalityVideo{{OriginalityScore: intp(3)}}}, true},
		{"originality ok", &originalityResponse{Videos: []originalityVideo{{VideoID: "a", OriginalityScore: intp(3)}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOriginalityScoreAll(t *testing.T) {
	client, model := newCollaborator(`{
  "videos": [
    {"video_id": "aaaaaaaaaaa", "originality_score": 82, "unique_aspects": ["live demo"], "common_with_others": ["syntax"]},
    {"video_id": "zzzzzzzzzzz", "originality_score": 10}
  ],
  "most_original": "aaaaaaaaaaa",
  "comparison_summary": "A shows more."}`)
	videos := []*models.ResolvedVideo{
		testVideo("aaaaaaaaaaa", "First", 60, "alpha content"),
		testVideo("bbbbbbbbbbb", "Second", 60, "beta content"),
	}

	cmp, err := NewOriginalityScorer(client).ScoreAll(context.Background(), videos)
	require.NoError(t, err)
	require.Equal(t, 1, model.calls())
	assert.Contains(t, model.prompts[0], "aaaaaaaaaaa")
	assert.Contains(t, model.prompts[0], "bbbbbbbbbbb")

	require.Len(t, cmp.Results, 2)
	first := cmp.Results["aaaaaaaaaaa"]
	assert.Equal(t, 82, first.Score)
	assert.Equal(t, []string{"live demo"}, first.Originality.UniqueAspects)

	second := cmp.Results["bbbbbbbbbbb"]
	assert.Equal(t, models.StatusDegraded, second.Status)
	assert.Equal(t, models.NeutralScore, second.Score)
	assert.NotNil(t, second.Originality.UniqueAspects)

	assert.Equal(t, "aaaaaaaaaaa", cmp.MostOriginal)
	assert.Equal(t, "A shows more.", cmp.Summary)
}

func TestOriginalityIgnoresUnknownMostOriginal(t *testing.T) {
	client, _ := newCollaborator(`{
  "videos": [
    {"video_id": "aaaaaaaaaaa", "originality_score": 60},
    {"video_id": "bbbbbbbbbbb", "originality_score": 40}
  ],
  "most_original": "Video 3",
  "comparison_summary": "close"}`)
	videos := []*models.ResolvedVideo{
		testVideo("aaaaaaaaaaa", "First", 60, "alpha content"),
		testVideo("bbbbbbbbbbb", "Second", 60, "beta content"),
	}

	cmp, err := NewOriginalityScorer(client).ScoreAll(context.Background(), videos)
	require.NoError(t, err)
	assert.Empty(t, cmp.MostOriginal)
	assert.Equal(t, 60, cmp.Results["aaaaaaaaaaa"].Score)
}

func TestOriginalityWithoutComparison(t *testing.T) {
	tests := []struct {
		name   string
		videos []*models.ResolvedVideo
	}{
		{"single video", []*models.ResolvedVideo{testVideo("aaaaaaaaaaa", "Only", 60, "words")}},
		{"one transcript", []*models.ResolvedVideo{
			testVideo("aaaaaaaaaaa", "Has words", 60, "words"),
			testVideo("bbbbbbbbbbb", "Silent", 60),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, model := newCollaborator()
			cmp, err := NewOriginalityScorer(client).ScoreAll(context.Background(), tt.videos)
			require.NoError(t, err)
			assert.Zero(t, model.calls())
			require.Len(t, cmp.Results, len(tt.videos))
			for _, r := range cmp.Results {
				assert.Equal(t, models.NeutralScore, r.Score)
				assert.Equal(t, models.StatusNoContent, r.Status)
				assert.Empty(t, r.Originality.UniqueAspects)
				assert.NotNil(t, r.Originality.UniqueAspects)
			}
		})
	}
}

func TestClipKeepsRunes(t *testing.T) {
	s, cut := clip("héllo", 2)
	assert.True(t, cut)
	assert.Equal(t, "h", s)

	s, cut = clip("go", 10)
	assert.False(t, cut)
	assert.Equal(t, "go", s)
}
