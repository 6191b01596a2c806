package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"truthtube/internal/models"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// pathForms are the youtube.com paths that carry the ID as their next segment.
var pathForms = []string{"/embed/", "/shorts/", "/v/", "/live/"}

// ParseVideoRef extracts the canonical video ID from a watch-page URL
// (youtube.com/watch?v=ID and its embed/shorts variants) or a short link
// (youtu.be/ID). The scheme is optional.
func ParseVideoRef(raw string) (models.VideoRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.VideoRef{}, fmt.Errorf("%w: empty url", models.ErrInvalidURL)
	}

	s := trimmed
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return models.VideoRef{}, fmt.Errorf("%w: %q is not a valid url", models.ErrInvalidURL, trimmed)
	}

	var id string
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id = firstSegment(u.Path)
	case watchHosts[host]:
		if u.Path == "/watch" || u.Path == "/watch/" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range pathForms {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return models.VideoRef{}, fmt.Errorf("%w: %q is not a YouTube watch or short link", models.ErrInvalidURL, trimmed)
	}
	return models.VideoRef{ID: id, URL: trimmed}, nil
}

// WatchURL is the canonical watch-page URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
