// Package posts implements the post visibility and engagement model:
// private drafts, essay edits that retract publication, publish toggling,
// per-user like toggling with a rebuildable counter, nested replies, and
// the public/private feeds.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/store"
)

// Session carries the authenticated caller's identity into the model. The
// model never talks to the identity provider itself.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// MetadataResolver turns a source URL into normalized video metadata.
// Any failure means the URL cannot back a post; there is no retry.
type MetadataResolver interface {
	Resolve(ctx context.Context, url string) (*models.VideoMetadata, error)
}

type Service struct {
	store    store.Store
	resolver MetadataResolver
	now      func() time.Time
}

func NewService(st store.Store, resolver MetadataResolver) *Service {
	return &Service{
		store:    st,
		resolver: resolver,
		now:      time.Now,
	}
}

// CreateDraft resolves the URL's metadata and inserts a new unpublished
// post with an empty essay. No deduplication: several drafts may reference
// the same video.
func (s *Service) CreateDraft(ctx context.Context, ownerID, sourceURL string) (*models.Post, error) {
	meta, err := s.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	p := models.Post{
		OwnerID:           ownerID,
		SourceURL:         sourceURL,
		VideoID:           meta.VideoID,
		Title:             meta.Title,
		ChannelName:       meta.ChannelName,
		ChannelThumbnail:  meta.ChannelThumbnail,
		Thumbnail:         meta.Thumbnail,
		ViewCount:         meta.ViewCount,
		ExternalLikeCount: meta.ExternalLikeCount,
		PublishedAt:       meta.PublishedAt,
		IsPublished:       false,
		LikeCount:         0,
		CreatedAt:         s.now().UTC(),
	}

	id, err := s.store.Add(ctx, postsCollection, p.Fields())
	if err != nil {
		return nil, storeFail(err)
	}
	p.ID = id
	return &p, nil
}

// GetPost returns a post if the viewer may see it: owners see everything,
// everyone else only published posts.
func (s *Service) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	doc, err := s.store.Get(ctx, PostSubject(postID).DocPath())
	if err != nil {
		return nil, storeFail(err)
	}
	p := models.PostFromDoc(doc)
	if !p.IsPublished && p.OwnerID != viewerID {
		return nil, ErrNotFound
	}
	return &p, nil
}

// EditEssay overwrites the subject's essay and unconditionally retracts
// publication: a live post must not silently diverge from what readers
// engaged with, so every edit forces a deliberate republish.
func (s *Service) EditEssay(ctx context.Context, subj Subject, callerID, text string) error {
	if _, err := s.ownedSubject(ctx, subj, callerID); err != nil {
		return err
	}
	err := s.store.Update(ctx, subj.DocPath(), store.Fields{
		"essay":       text,
		"isPublished": false,
	})
	if err != nil {
		return storeFail(err)
	}
	return nil
}

// TogglePublish flips the subject's published flag and returns the new
// state. Likes survive the toggle; the counter is never reset here.
func (s *Service) TogglePublish(ctx context.Context, subj Subject, callerID string) (bool, error) {
	doc, err := s.ownedSubject(ctx, subj, callerID)
	if err != nil {
		return false, err
	}
	next := !models.PostFromDoc(doc).IsPublished
	err = s.store.Update(ctx, subj.DocPath(), store.Fields{"isPublished": next})
	if err != nil {
		return false, storeFail(err)
	}
	return next, nil
}

// DeletePost removes the post, every reply under it, and every like marker
// referencing the post or its replies. The deletes commit in batches; if a
// batch fails the whole delete is reported failed and must be retried as a
// whole.
func (s *Service) DeletePost(ctx context.Context, postID, callerID string) error {
	subj := PostSubject(postID)
	if _, err := s.ownedSubject(ctx, subj, callerID); err != nil {
		return err
	}

	paths, err := s.cascadePaths(ctx, subj)
	if err != nil {
		return err
	}
	return s.deleteAll(ctx, paths)
}

// cascadePaths collects every document path under a post, children first
// so the post itself is the last delete to land.
func (s *Service) cascadePaths(ctx context.Context, subj Subject) ([]string, error) {
	var paths []string

	replies, err := s.store.List(ctx, repliesCollection(subj.PostID), store.Query{})
	if err != nil {
		return nil, storeFail(err)
	}
	for _, r := range replies {
		likes, err := s.store.List(ctx, r.Path+"/likes", store.Query{})
		if err != nil {
			return nil, storeFail(err)
		}
		for _, l := range likes {
			paths = append(paths, l.Path)
		}
		paths = append(paths, r.Path)
	}

	likes, err := s.store.List(ctx, subj.likesCollection(), store.Query{})
	if err != nil {
		return nil, storeFail(err)
	}
	for _, l := range likes {
		paths = append(paths, l.Path)
	}

	paths = append(paths, subj.DocPath())
	return paths, nil
}

// maxBatchWrites is the store's per-batch write limit.
const maxBatchWrites = 500

func (s *Service) deleteAll(ctx context.Context, paths []string) error {
	for start := 0; start < len(paths); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(paths) {
			end = len(paths)
		}
		batch := s.store.Batch()
		for _, p := range paths[start:end] {
			batch.Delete(p)
		}
		if err := batch.Commit(ctx); err != nil {
			return storeFail(err)
		}
	}
	return nil
}

// ownedSubject fetches the subject and verifies ownership.
func (s *Service) ownedSubject(ctx context.Context, subj Subject, callerID string) (store.Doc, error) {
	doc, err := s.store.Get(ctx, subj.DocPath())
	if err != nil {
		return store.Doc{}, storeFail(err)
	}
	if models.PostFromDoc(doc).OwnerID != callerID {
		return store.Doc{}, ErrNotOwner
	}
	return doc, nil
}

func storeFail(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
