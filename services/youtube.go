package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"deepessays.dev/deep-essays/models"
)

// Accepted URL shapes: bare share links (youtu.be/), watch?v=, embed/,
// shorts/, v/, and legacy user-playlist links.
var (
	videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|embed|shorts)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]+)`)
	videoIDShape   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-character video id out of a YouTube URL.
func ExtractVideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil || !videoIDShape.MatchString(m[1]) {
		return "", false
	}
	return m[1], true
}

// YouTubeResolver fetches video and channel metadata from the YouTube Data
// API: one videos.list call, then one channels.list call keyed by the
// channel id the first one returned. Any failure in either call means the
// URL cannot back a post; the caller surfaces that without retrying.
type YouTubeResolver struct {
	svc *youtube.Service
}

func NewYouTubeResolver(ctx context.Context, opts ...option.ClientOption) (*YouTubeResolver, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &YouTubeResolver{svc: svc}, nil
}

func (r *YouTubeResolver) Resolve(ctx context.Context, url string) (*models.VideoMetadata, error) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return nil, fmt.Errorf("no video id in %q", url)
	}

	videoResp, err := r.svc.Videos.List([]string{"snippet", "statistics"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("video lookup: %w", err)
	}
	if len(videoResp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", id)
	}
	video := videoResp.Items[0]
	if video.Snippet == nil || video.Statistics == nil {
		return nil, errors.New("video metadata incomplete")
	}

	channelResp, err := r.svc.Channels.List([]string{"snippet"}).Id(video.Snippet.ChannelId).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channel lookup: %w", err)
	}
	if len(channelResp.Items) == 0 {
		return nil, fmt.Errorf("channel %s not found", video.Snippet.ChannelId)
	}

	meta := &models.VideoMetadata{
		VideoID:           id,
		Title:             video.Snippet.Title,
		ChannelName:       video.Snippet.ChannelTitle,
		ViewCount:         int64(video.Statistics.ViewCount),
		ExternalLikeCount: int64(video.Statistics.LikeCount),
		PublishedAt:       video.Snippet.PublishedAt,
	}
	if len(meta.PublishedAt) > 10 {
		meta.PublishedAt = meta.PublishedAt[:10]
	}
	if video.Snippet.Thumbnails != nil && video.Snippet.Thumbnails.High != nil {
		meta.Thumbnail = video.Snippet.Thumbnails.High.Url
	}
	if snip := channelResp.Items[0].Snippet; snip != nil && snip.Thumbnails != nil && snip.Thumbnails.Default != nil {
		meta.ChannelThumbnail = snip.Thumbnails.Default.Url
	}
	return meta, nil
}
