package models

import "time"

// VideoReport is one ranked row of an AnalysisReport.
type VideoReport struct {
	Video          *ResolvedVideo `json:"video"`
	Density        *MetricResult  `json:"density"`
	Redundancy     *MetricResult  `json:"redundancy"`
	TitleRelevance *MetricResult  `json:"title_relevance"`
	Originality    *MetricResult  `json:"originality"`
	Composite      float64        `json:"composite_score"`
	Rank           int            `json:"overall_rank"`
	Recommendation string         `json:"recommendation"`
}

// Result returns the metric result for m.
func (r *VideoReport) Result(m Metric) *MetricResult {
	switch m {
	case MetricDensity:
		return r.Density
	case MetricRedundancy:
		return r.Redundancy
	case MetricTitleRelevance:
		return r.TitleRelevance
	case MetricOriginality:
		return r.Originality
	}
	return nil
}

// Degraded reports whether any metric of the video is a placeholder.
func (r *VideoReport) Degraded() bool {
	for _, m := range Metrics {
		if res := r.Result(m); res == nil || res.Status == StatusDegraded {
			return true
		}
	}
	return false
}

// VideoFailure records a URL that was excluded from the ranking.
type VideoFailure struct {
	URL     string    `json:"url"`
	VideoID string    `json:"video_id,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// AnalysisReport is the terminal output of one analyze request.
type AnalysisReport struct {
	RequestID  string         `json:"request_id"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Videos     []*VideoReport `json:"videos"`
	Failures   []VideoFailure `json:"failures"`
	Comparison string         `json:"comparison,omitempty"`
	// MostOriginal is the ID of the video the comparison found most original.
	MostOriginal string `json:"most_original,omitempty"`
	Summary      string `json:"summary"`
}

// Comparison is the outcome of one cross-video originality call.
// Results holds one entry per input video, keyed by video ID.
type Comparison struct {
	Results      map[string]*MetricResult `json:"results"`
	MostOriginal string                   `json:"most_original,omitempty"`
	Summary      string                   `json:"summary"`
}
