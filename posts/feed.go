package posts

import (
	"context"
	"fmt"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/store"
)

// FeedMode selects which feed a viewer sees.
type FeedMode string

const (
	// FeedPublic is every published post, most liked first.
	FeedPublic FeedMode = "public"
	// FeedPrivate is the viewer's own unpublished drafts, newest first.
	FeedPrivate FeedMode = "private"
)

func ParseFeedMode(s string) (FeedMode, error) {
	switch FeedMode(s) {
	case FeedPublic:
		return FeedPublic, nil
	case FeedPrivate:
		return FeedPrivate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func feedQuery(viewerID string, mode FeedMode) (store.Query, error) {
	switch mode {
	case FeedPublic:
		return store.Query{
			Filters: []store.Filter{{Field: "isPublished", Op: "==", Value: true}},
			Orders: []store.Order{
				{Field: "likeCount", Desc: true},
				{Field: "createdAt", Desc: true},
			},
		}, nil
	case FeedPrivate:
		return store.Query{
			Filters: []store.Filter{
				{Field: "ownerId", Op: "==", Value: viewerID},
				{Field: "isPublished", Op: "==", Value: false},
			},
			Orders: []store.Order{{Field: "createdAt", Desc: true}},
		}, nil
	}
	return store.Query{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// ListFeed returns a one-shot snapshot of the feed.
func (s *Service) ListFeed(ctx context.Context, viewerID string, mode FeedMode) ([]models.Post, error) {
	q, err := feedQuery(viewerID, mode)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, postsCollection, q)
	if err != nil {
		return nil, storeFail(err)
	}
	return postsFromDocs(docs), nil
}

// WatchFeed delivers the current feed immediately and redelivers the full
// ordered feed whenever a matching post is inserted, deleted, or changes a
// sort key. The channel closes when ctx is done.
func (s *Service) WatchFeed(ctx context.Context, viewerID string, mode FeedMode) (<-chan []models.Post, error) {
	q, err := feedQuery(viewerID, mode)
	if err != nil {
		return nil, err
	}
	docsCh, err := s.store.Watch(ctx, postsCollection, q)
	if err != nil {
		return nil, storeFail(err)
	}

	out := make(chan []models.Post, 1)
	go func() {
		defer close(out)
		for docs := range docsCh {
			select {
			case out <- postsFromDocs(docs):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func postsFromDocs(docs []store.Doc) []models.Post {
	out := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.PostFromDoc(doc))
	}
	return out
}
