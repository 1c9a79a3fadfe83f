package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepessays.dev/deep-essays/handlers"
	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/posts"
	"deepessays.dev/deep-essays/routes"
	"deepessays.dev/deep-essays/store"
	"deepessays.dev/deep-essays/users"
)

var devSecret = []byte("test-secret")

type fixedResolver struct{}

func (fixedResolver) Resolve(_ context.Context, url string) (*models.VideoMetadata, error) {
	if !strings.Contains(url, "youtu") {
		return nil, errors.New("no video id in url")
	}
	return &models.VideoMetadata{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Test Video",
		ChannelName: "Test Channel",
		ViewCount:   1000,
		PublishedAt: "2024-01-02",
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := store.NewMemory()
	postSvc := posts.NewService(st, fixedResolver{})
	userSvc := users.NewService(st)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handlers.AuthMiddleware(handlers.DevVerifier{Secret: devSecret}))
	routes.CreatePostRoutes(postSvc, api)
	routes.CreateUserRoutes(userSvc, api)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func tokenFor(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := handlers.SignDevToken(devSecret, posts.Session{UserID: userID, Email: email}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, server *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, server.URL+"/api/v1"+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, server, "GET", "/feed?mode=public", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, server, "GET", "/feed?mode=public", "garbage-token", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateDraftRejectsBadURL(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")

	resp := do(t, server, "POST", "/posts", alice, map[string]string{
		"source_url": "https://example.com/not-a-video",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, "POST", "/posts", alice, map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")
	bob := tokenFor(t, "bob", "bob@example.com")

	// alice drafts
	resp := do(t, server, "POST", "/posts", alice, map[string]string{
		"source_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)
	assert.False(t, post.IsPublished)

	// draft is invisible to bob
	resp = do(t, server, "GET", "/posts/"+post.ID, bob, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// bob may not edit alice's essay
	resp = do(t, server, "PUT", "/posts/"+post.ID+"/essay", bob, map[string]string{"essay": "hijack"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// alice writes and publishes
	resp = do(t, server, "PUT", "/posts/"+post.ID+"/essay", alice, map[string]string{"essay": "my take"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "POST", "/posts/"+post.ID+"/publish", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pub map[string]bool
	decode(t, resp, &pub)
	assert.True(t, pub["is_published"])

	// now visible to bob, and on the public feed
	resp = do(t, server, "GET", "/posts/"+post.ID, bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var seen models.Post
	decode(t, resp, &seen)
	assert.Equal(t, "my take", seen.Essay)

	resp = do(t, server, "GET", "/feed?mode=public", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []models.Post
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)

	// bob likes it
	resp = do(t, server, "POST", "/posts/"+post.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var like posts.LikeResult
	decode(t, resp, &like)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(1), like.LikeCount)

	resp = do(t, server, "GET", "/likes", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var likedPosts []models.Post
	decode(t, resp, &likedPosts)
	require.Len(t, likedPosts, 1)
	assert.Equal(t, post.ID, likedPosts[0].ID)

	// an edit pulls the post off the public feed
	resp = do(t, server, "PUT", "/posts/"+post.ID+"/essay", alice, map[string]string{"essay": "revised"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "GET", "/feed?mode=public", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed = nil
	decode(t, resp, &feed)
	assert.Empty(t, feed)

	// but it is back in alice's private feed
	resp = do(t, server, "GET", "/feed?mode=private", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed = nil
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)
}

func TestReplyRoutes(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")
	bob := tokenFor(t, "bob", "bob@example.com")

	resp := do(t, server, "POST", "/posts", alice, map[string]string{
		"source_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)

	resp = do(t, server, "POST", "/posts/"+post.ID+"/replies", bob, map[string]string{
		"source_url": "https://youtu.be/dQw4w9WgXcQ",
		"essay":      "counterpoint",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reply models.Reply
	decode(t, resp, &reply)
	assert.True(t, reply.IsPublished)
	assert.Equal(t, "bob", reply.AuthorID)
	assert.Equal(t, "bob@example.com", reply.AuthorEmail)

	resp = do(t, server, "GET", "/posts/"+post.ID+"/replies", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replies []models.Reply
	decode(t, resp, &replies)
	require.Len(t, replies, 1)
	assert.Equal(t, "counterpoint", replies[0].Essay)

	// like a reply through the nested route
	resp = do(t, server, "POST", "/posts/"+post.ID+"/replies/"+reply.ID+"/like", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var like posts.LikeResult
	decode(t, resp, &like)
	assert.Equal(t, int64(1), like.LikeCount)

	// only the author deletes
	resp = do(t, server, "DELETE", "/posts/"+post.ID+"/replies/"+reply.ID, alice, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, server, "DELETE", "/posts/"+post.ID+"/replies/"+reply.ID, bob, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "GET", "/posts/"+post.ID+"/replies", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replies = nil
	decode(t, resp, &replies)
	assert.Empty(t, replies)
}

func TestDeletePostRoute(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")
	bob := tokenFor(t, "bob", "bob@example.com")

	resp := do(t, server, "POST", "/posts", alice, map[string]string{
		"source_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)

	resp = do(t, server, "DELETE", "/posts/"+post.ID, bob, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, server, "DELETE", "/posts/"+post.ID, alice, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "GET", "/posts/"+post.ID, alice, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeedRejectsUnknownMode(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")

	resp := do(t, server, "GET", "/feed?mode=friends", alice, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, "GET", "/feed", alice, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVisibilityModeRoutes(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")

	resp := do(t, server, "GET", "/me/mode", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]string
	decode(t, resp, &got)
	assert.Equal(t, "private", got["mode"])

	resp = do(t, server, "PUT", "/me/mode", alice, map[string]string{"mode": "public"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "GET", "/me/mode", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = nil
	decode(t, resp, &got)
	assert.Equal(t, "public", got["mode"])

	resp = do(t, server, "PUT", "/me/mode", alice, map[string]string{"mode": "friends"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	server := newTestServer(t)
	alice := tokenFor(t, "alice", "alice@example.com")

	resp := do(t, server, "GET", "/me", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session posts.Session
	decode(t, resp, &session)
	assert.Equal(t, posts.Session{UserID: "alice", Email: "alice@example.com"}, session)
}
