package models

// Metric names one scored dimension of video quality.
type Metric string

const (
	MetricDensity        Metric = "density"
	MetricRedundancy     Metric = "redundancy"
	MetricTitleRelevance Metric = "title_relevance"
	MetricOriginality    Metric = "originality"
)

// Metrics lists every metric in report order.
var Metrics = []Metric{MetricDensity, MetricRedundancy, MetricTitleRelevance, MetricOriginality}

// NeutralScore is used whenever a metric cannot be computed from real evidence.
const NeutralScore = 50

// ResultStatus tags how a MetricResult was produced.
type ResultStatus string

const (
	// StatusOK means the collaborator produced a valid, schema-checked answer.
	StatusOK ResultStatus = "ok"
	// StatusNoContent means there was nothing to score (empty transcript or a
	// single-video comparison) and the neutral score was used on purpose.
	StatusNoContent ResultStatus = "no_content"
	// StatusDegraded means the scoring path failed and a placeholder stands in.
	StatusDegraded ResultStatus = "degraded"
)

type DensityEvidence struct {
	KeyFacts          []string `json:"key_facts"`
	FactsCount        int      `json:"facts_count"`
	InsightsPerMinute float64  `json:"insights_per_minute"`
	Summary           string   `json:"summary"`
}

type RedundancyEvidence struct {
	Examples             []string `json:"examples"`
	FillerPercentage     float64  `json:"filler_percentage"`
	RepetitionPercentage float64  `json:"repetition_percentage"`
	FillerPhrases        []string `json:"filler_phrases"`
}

type TitleEvidence struct {
	Explanation         string   `json:"explanation"`
	IsClickbait         bool     `json:"is_clickbait"`
	ClickbaitIndicators []string `json:"clickbait_indicators"`
}

type OriginalityEvidence struct {
	UniqueAspects    []string `json:"unique_aspects"`
	CommonWithOthers []string `json:"common_with_others"`
}

// MetricResult is the score for one metric of one video. Score is always in
// [0,100]; exactly one evidence pointer matching Metric is set and its lists
// are never nil.
type MetricResult struct {
	Metric      Metric               `json:"metric"`
	Score       int                  `json:"score"`
	Status      ResultStatus         `json:"status"`
	Note        string               `json:"note,omitempty"`
	Density     *DensityEvidence     `json:"density,omitempty"`
	Redundancy  *RedundancyEvidence  `json:"redundancy,omitempty"`
	Title       *TitleEvidence       `json:"title,omitempty"`
	Originality *OriginalityEvidence `json:"originality,omitempty"`
}

// Unavailable reports whether the result is not backed by real evidence.
func (r *MetricResult) Unavailable() bool {
	return r.Status != StatusOK
}

// ClampScore forces s into [0,100].
func ClampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// NewMetricResult builds a result with empty (non-nil) evidence for m.
func NewMetricResult(m Metric, score int, status ResultStatus, note string) *MetricResult {
	r := &MetricResult{
		Metric: m,
		Score:  ClampScore(score),
		Status: status,
		Note:   note,
	}
	switch m {
	case MetricDensity:
		r.Density = &DensityEvidence{KeyFacts: []string{}}
	case MetricRedundancy:
		r.Redundancy = &RedundancyEvidence{Examples: []string{}, FillerPhrases: []string{}}
	case MetricTitleRelevance:
		r.Title = &TitleEvidence{ClickbaitIndicators: []string{}}
	case MetricOriginality:
		r.Originality = &OriginalityEvidence{UniqueAspects: []string{}, CommonWithOthers: []string{}}
	}
	return r
}

// DegradedResult is the neutral placeholder used after a scorer failed.
func DegradedResult(m Metric, reason string) *MetricResult {
	return NewMetricResult(m, NeutralScore, StatusDegraded, "unavailable: "+reason)
}

// NonNil returns s, or an empty slice when s is nil.
func NonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
