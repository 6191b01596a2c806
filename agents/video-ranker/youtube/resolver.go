package youtube

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"truthtube/internal/models"
	"truthtube/shared/logger"
)

var (
	// ErrNotFound means the video does not exist or is private.
	ErrNotFound = errors.New("video not found")
	// ErrNoTranscript means the video exists but has no usable captions.
	// Platform.Fetch returns it together with the metadata it did find.
	ErrNoTranscript = errors.New("no transcript available")
)

// VideoDetails is what the platform knows about one video.
type VideoDetails struct {
	Title           string
	ChannelTitle    string
	ThumbnailURL    string
	DurationSeconds int
	Transcript      []models.TranscriptSegment
}

// Platform fetches metadata and transcript for a video ID.
type Platform interface {
	Fetch(ctx context.Context, videoID string) (*VideoDetails, error)
}

// Resolver turns URLs into ResolvedVideos.
type Resolver struct {
	platform Platform
	timeout  time.Duration
}

func NewResolver(platform Platform, timeout time.Duration) *Resolver {
	return &Resolver{platform: platform, timeout: timeout}
}

// Resolve validates rawURL and fetches the video it points at.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*models.ResolvedVideo, error) {
	ref, err := ParseVideoRef(rawURL)
	if err != nil {
		return nil, err
	}
	return r.ResolveRef(ctx, ref)
}

// ResolveRef fetches an already parsed reference. A video without captions
// resolves with an empty transcript; a missing or private video fails with
// models.ErrVideoUnavailable.
func (r *Resolver) ResolveRef(ctx context.Context, ref models.VideoRef) (*models.ResolvedVideo, error) {
	log := logger.Log.WithFields(logrus.Fields{"video_id": ref.ID})

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	details, err := r.platform.Fetch(callCtx, ref.ID)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %w", models.ErrCanceled, ctx.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %w: fetching %s took longer than %v", models.ErrCollaboratorTimeout, models.ErrVideoUnavailable, ref.ID, r.timeout)
	case errors.Is(err, ErrNoTranscript) && details != nil:
		log.Warnf("No transcript available, continuing with empty transcript: %v", err)
		details.Transcript = nil
	case errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("%w: %s: %v", models.ErrVideoUnavailable, ref.ID, err)
	default:
		return nil, fmt.Errorf("%w: failed to fetch %s: %v", models.ErrVideoUnavailable, ref.ID, err)
	}
	if details == nil {
		return nil, fmt.Errorf("%w: platform returned no details for %s", models.ErrVideoUnavailable, ref.ID)
	}

	video := &models.ResolvedVideo{
		Ref:             ref,
		Title:           details.Title,
		ChannelTitle:    details.ChannelTitle,
		ThumbnailURL:    details.ThumbnailURL,
		DurationSeconds: max(details.DurationSeconds, 0),
		Transcript:      append([]models.TranscriptSegment(nil), details.Transcript...),
	}
	if video.Title == "" {
		video.Title = "Unknown"
	}
	if video.DurationSeconds == 0 && len(video.Transcript) > 0 {
		last := video.Transcript[len(video.Transcript)-1]
		video.DurationSeconds = int(math.Round(last.Start + last.Duration))
	}

	log.Infof("Resolved %q (%ds, %d transcript segments)", video.Title, video.DurationSeconds, len(video.Transcript))
	return video, nil
}
