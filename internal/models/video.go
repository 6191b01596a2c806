package models

// VideoRef identifies a video by its canonical platform ID. Two URLs that
// point at the same video produce the same ID.
type VideoRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// TranscriptSegment is one timed caption line.
type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// ResolvedVideo is created once per request by the resolver and never
// mutated afterwards.
type ResolvedVideo struct {
	Ref             VideoRef            `json:"ref"`
	Title           string              `json:"title"`
	ChannelTitle    string              `json:"channel_title,omitempty"`
	ThumbnailURL    string              `json:"thumbnail_url,omitempty"`
	DurationSeconds int                 `json:"duration_seconds"`
	Transcript      []TranscriptSegment `json:"-"`
}

// HasTranscript reports whether any caption text is available.
func (v *ResolvedVideo) HasTranscript() bool {
	for _, seg := range v.Transcript {
		if seg.Text != "" {
			return true
		}
	}
	return false
}

// TranscriptText joins all segments into a single space separated string.
func (v *ResolvedVideo) TranscriptText() string {
	n := 0
	for _, seg := range v.Transcript {
		n += len(seg.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, seg := range v.Transcript {
		if seg.Text == "" {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, seg.Text...)
	}
	return string(buf)
}
