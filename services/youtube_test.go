package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"deepessays.dev/deep-essays/models"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch with extra params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"share link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"share link with timestamp", "https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"other host", "https://vimeo.com/123456789", "", false},
		{"id too short", "https://youtu.be/short", "", false},
		{"channel page", "https://www.youtube.com/@somechannel", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

const (
	videosJSON = `{"items":[{"snippet":{
		"title":"Test Video",
		"channelId":"UCchannel",
		"channelTitle":"Test Channel",
		"publishedAt":"2024-01-02T15:04:05Z",
		"thumbnails":{"high":{"url":"https://img.example/video.jpg"}}
	},"statistics":{"viewCount":"1000","likeCount":"50"}}]}`

	channelsJSON = `{"items":[{"snippet":{
		"thumbnails":{"default":{"url":"https://img.example/channel.jpg"}}
	}}]}`
)

func newFakeAPI(t *testing.T, videos, channels string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			w.Write([]byte(videos))
		case strings.HasSuffix(r.URL.Path, "/channels"):
			w.Write([]byte(channels))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestResolver(t *testing.T, server *httptest.Server) *YouTubeResolver {
	t.Helper()
	resolver, err := NewYouTubeResolver(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithAPIKey("test-key"),
	)
	require.NoError(t, err)
	return resolver
}

func TestResolve(t *testing.T) {
	server := newFakeAPI(t, videosJSON, channelsJSON)
	defer server.Close()

	meta, err := newTestResolver(t, server).Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, &models.VideoMetadata{
		VideoID:           "dQw4w9WgXcQ",
		Title:             "Test Video",
		ChannelName:       "Test Channel",
		ChannelThumbnail:  "https://img.example/channel.jpg",
		Thumbnail:         "https://img.example/video.jpg",
		ViewCount:         1000,
		ExternalLikeCount: 50,
		PublishedAt:       "2024-01-02",
	}, meta)
}

func TestResolveRejectsBadURL(t *testing.T) {
	server := newFakeAPI(t, videosJSON, channelsJSON)
	defer server.Close()

	_, err := newTestResolver(t, server).Resolve(context.Background(), "https://example.com/page")
	assert.Error(t, err)
}

func TestResolveVideoNotFound(t *testing.T) {
	server := newFakeAPI(t, `{"items":[]}`, channelsJSON)
	defer server.Close()

	_, err := newTestResolver(t, server).Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestResolveChannelNotFound(t *testing.T) {
	server := newFakeAPI(t, videosJSON, `{"items":[]}`)
	defer server.Close()

	_, err := newTestResolver(t, server).Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
