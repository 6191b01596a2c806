package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"truthtube/shared/config"
	"truthtube/shared/logger"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client is the YouTube implementation of Platform. Metadata comes from the
// Data API when credentials are configured and from oEmbed otherwise;
// transcripts come from the caption tracks listed on the watch page.
type Client struct {
	service    *youtube.Service
	httpClient *http.Client
	languages  []string
	baseURL    string
}

func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second},
		languages:  cfg.Languages,
		baseURL:    defaultBaseURL,
	}

	switch {
	case cfg.APIKey != "":
		service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service: %w", err)
		}
		c.service = service
		logger.Log.Info("YouTube Data API client initialized (API key)")
	case cfg.UseOAuth():
		httpClient, err := newOAuthHTTPClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service: %w", err)
		}
		c.service = service
		logger.Log.Info("YouTube Data API client initialized (OAuth)")
	default:
		logger.Log.Info("No YouTube API credentials configured, using oEmbed for metadata")
	}

	return c, nil
}

// Fetch implements Platform.
func (c *Client) Fetch(ctx context.Context, videoID string) (*VideoDetails, error) {
	var details *VideoDetails
	var err error
	if c.service != nil {
		details, err = c.fetchDataAPI(ctx, videoID)
	} else {
		details, err = c.fetchOEmbed(ctx, videoID)
	}
	if err != nil {
		return nil, err
	}

	player, err := c.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return details, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}
	if reason, gone := player.unavailable(); gone {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reason)
	}
	player.fill(details)

	segments, err := c.fetchTranscript(ctx, player)
	if err != nil {
		return details, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}
	details.Transcript = segments
	return details, nil
}

func (c *Client) fetchDataAPI(ctx context.Context, videoID string) (*VideoDetails, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video details: %w", err)
	}
	// Private and deleted videos are simply absent from the listing.
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	}

	item := resp.Items[0]
	details := &VideoDetails{}
	if item.Snippet != nil {
		details.Title = item.Snippet.Title
		details.ChannelTitle = item.Snippet.ChannelTitle
		details.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		details.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
	}
	return details, nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (c *Client) fetchOEmbed(ctx context.Context, videoID string) (*VideoDetails, error) {
	endpoint := c.baseURL + "/oembed?format=json&url=" + url.QueryEscape(WatchURL(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s is private", ErrNotFound, videoID)
	default:
		return nil, fmt.Errorf("oembed returned %s", resp.Status)
	}

	var data oembedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	return &VideoDetails{
		Title:        data.Title,
		ChannelTitle: data.AuthorName,
		ThumbnailURL: data.ThumbnailURL,
	}, nil
}

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseDurationSeconds parses ISO 8601 durations such as "PT1M30S" or "P1DT2H".
func parseDurationSeconds(duration string) int {
	matches := isoDurationRE.FindStringSubmatch(duration)
	if matches == nil {
		return 0
	}

	var totalSeconds int
	for i, unit := range []int{86400, 3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			totalSeconds += n * unit
		}
	}
	return totalSeconds
}
