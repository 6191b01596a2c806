package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"truthtube/internal/models"
)

const (
	playerResponseMarker = "ytInitialPlayerResponse = "
	maxWatchPageBytes    = 8 << 20
	maxTimedTextBytes    = 2 << 20
)

var errNoCaptions = errors.New("video has no caption tracks")

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// unavailable reports whether the watch page says the video does not exist.
// Age or login gates are not treated as missing; they only cost the transcript.
func (p *playerResponse) unavailable() (string, bool) {
	if p.PlayabilityStatus.Status == "ERROR" {
		reason := p.PlayabilityStatus.Reason
		if reason == "" {
			reason = "video unavailable"
		}
		return reason, true
	}
	return "", false
}

// fill completes details with whatever the metadata source left empty.
func (p *playerResponse) fill(details *VideoDetails) {
	if details.Title == "" {
		details.Title = p.VideoDetails.Title
	}
	if details.ChannelTitle == "" {
		details.ChannelTitle = p.VideoDetails.Author
	}
	if details.DurationSeconds == 0 {
		if n, err := strconv.Atoi(p.VideoDetails.LengthSeconds); err == nil {
			details.DurationSeconds = n
		}
	}
}

func (c *Client) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	body, err := c.get(ctx, c.baseURL+"/watch?hl=en&v="+videoID, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	raw, err := extractPlayerResponse(body)
	if err != nil {
		return nil, err
	}
	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return &player, nil
}

func (c *Client) fetchTranscript(ctx context.Context, player *playerResponse) ([]models.TranscriptSegment, error) {
	tracks := player.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errNoCaptions
	}
	track, ok := pickBestTrack(tracks, c.languages)
	if !ok {
		return nil, fmt.Errorf("no server-fetchable caption track among %d", len(tracks))
	}

	body, err := c.get(ctx, track.BaseURL, maxTimedTextBytes)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	segments, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("caption track %s is empty", track.LanguageCode)
	}
	return segments, nil
}

func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// extractPlayerResponse cuts the JSON object assigned to
// ytInitialPlayerResponse out of the watch page HTML.
func extractPlayerResponse(page []byte) ([]byte, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("player response not found in watch page")
	}
	rest := page[idx+len(playerResponseMarker):]
	if len(rest) == 0 || rest[0] != '{' {
		return nil, errors.New("player response is not an object")
	}

	depth := 0
	inString, escaped := false, false
	for i, b := range rest {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[:i+1], nil
			}
		}
	}
	return nil, errors.New("player response is truncated")
}

// needsPoToken reports whether a caption URL only works inside a browser session.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then whatever is usable.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// timedText covers both caption formats YouTube serves: the classic
// <transcript><text start dur> in seconds and srv3 <timedtext><body><p t d>
// in milliseconds.
type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
	Paragraphs []struct {
		T    string `xml:"t,attr"`
		D    string `xml:"d,attr"`
		Text string `xml:",innerxml"`
	} `xml:"body>p"`
}

func parseTimedText(body []byte) ([]models.TranscriptSegment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]models.TranscriptSegment, 0, len(tt.Lines)+len(tt.Paragraphs))
	for _, line := range tt.Lines {
		text := cleanCaption(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Start:    parseSeconds(line.Start),
			Duration: parseSeconds(line.Dur),
			Text:     text,
		})
	}
	for _, p := range tt.Paragraphs {
		text := cleanCaption(stripTags(p.Text))
		if text == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Start:    parseSeconds(p.T) / 1000,
			Duration: parseSeconds(p.D) / 1000,
			Text:     text,
		})
	}
	return segments, nil
}

func parseSeconds(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

// cleanCaption unescapes entities (captions are often double-escaped) and
// collapses whitespace.
func cleanCaption(s string) string {
	s = html.UnescapeString(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}

func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
