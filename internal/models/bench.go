package models

// ScorerInput is a single-scorer test case: either a video URL or a raw
// transcript with optional title and duration.
type ScorerInput struct {
	URL             string `json:"youtube_url"`
	Transcript      string `json:"transcript"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
}

// ScorerInfo describes one scorer and the model behind it.
type ScorerInfo struct {
	Scorer         string `json:"agent"`
	Metric         Metric `json:"metric"`
	Model          string `json:"model"`
	Description    string `json:"description"`
	FillerPatterns int    `json:"regex_patterns_count,omitempty"`
}

// ScorerTest is the outcome of running one scorer on one video.
type ScorerTest struct {
	Video  *ResolvedVideo `json:"video"`
	Result *MetricResult  `json:"result"`
}
