package posts

import (
	"context"
	"errors"
	"log"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/store"
)

// LikeResult reports the caller's like state and the subject's counter
// after a toggle.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleLike creates the caller's like marker and bumps the subject's
// counter, or removes both if the marker already exists. Marker and counter
// mutate in one batch. The marker is the source of truth: a decrement that
// would go negative is logged and clamped to zero instead of propagated.
func (s *Service) ToggleLike(ctx context.Context, subj Subject, userID string) (LikeResult, error) {
	doc, err := s.store.Get(ctx, subj.DocPath())
	if err != nil {
		return LikeResult{}, storeFail(err)
	}
	current := models.PostFromDoc(doc).LikeCount

	likePath := subj.likePath(userID)
	_, err = s.store.Get(ctx, likePath)
	switch {
	case errors.Is(err, store.ErrNotFound):
		like := models.Like{UserID: userID, LikedAt: s.now().UTC()}
		batch := s.store.Batch()
		batch.Set(likePath, like.Fields())
		batch.Update(subj.DocPath(), store.Fields{"likeCount": store.Increment(1)})
		if err := batch.Commit(ctx); err != nil {
			return LikeResult{}, storeFail(err)
		}
		return LikeResult{Liked: true, LikeCount: current + 1}, nil

	case err != nil:
		return LikeResult{}, storeFail(err)

	default:
		batch := s.store.Batch()
		batch.Delete(likePath)
		if current <= 0 {
			log.Printf("[LIKES] counter for %s is %d with an existing like marker, clamping to 0", subj.DocPath(), current)
			batch.Update(subj.DocPath(), store.Fields{"likeCount": int64(0)})
			if err := batch.Commit(ctx); err != nil {
				return LikeResult{}, storeFail(err)
			}
			return LikeResult{Liked: false, LikeCount: 0}, nil
		}
		batch.Update(subj.DocPath(), store.Fields{"likeCount": store.Increment(-1)})
		if err := batch.Commit(ctx); err != nil {
			return LikeResult{}, storeFail(err)
		}
		return LikeResult{Liked: false, LikeCount: current - 1}, nil
	}
}

// HasLiked reports whether the user's like marker exists on the subject.
func (s *Service) HasLiked(ctx context.Context, subj Subject, userID string) (bool, error) {
	_, err := s.store.Get(ctx, subj.likePath(userID))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeFail(err)
	}
	return true, nil
}

// RebuildLikeCount recounts the subject's like markers and overwrites the
// counter with that authoritative value. Returns the rebuilt count.
func (s *Service) RebuildLikeCount(ctx context.Context, subj Subject) (int64, error) {
	likes, err := s.store.List(ctx, subj.likesCollection(), store.Query{})
	if err != nil {
		return 0, storeFail(err)
	}
	count := int64(len(likes))
	if err := s.store.Update(ctx, subj.DocPath(), store.Fields{"likeCount": count}); err != nil {
		return 0, storeFail(err)
	}
	return count, nil
}

// RebuildAllLikeCounts rebuilds the counter of every post and reply.
// Returns the number of subjects repaired.
func (s *Service) RebuildAllLikeCounts(ctx context.Context) (int, error) {
	postDocs, err := s.store.List(ctx, postsCollection, store.Query{})
	if err != nil {
		return 0, storeFail(err)
	}

	repaired := 0
	for _, p := range postDocs {
		if _, err := s.RebuildLikeCount(ctx, PostSubject(p.ID)); err != nil {
			return repaired, err
		}
		repaired++

		replyDocs, err := s.store.List(ctx, repliesCollection(p.ID), store.Query{})
		if err != nil {
			return repaired, storeFail(err)
		}
		for _, r := range replyDocs {
			if _, err := s.RebuildLikeCount(ctx, ReplySubject(p.ID, r.ID)); err != nil {
				return repaired, err
			}
			repaired++
		}
	}
	return repaired, nil
}

// ListLikedPosts returns the published posts the user has liked, most
// liked first.
func (s *Service) ListLikedPosts(ctx context.Context, userID string) ([]models.Post, error) {
	docs, err := s.store.List(ctx, postsCollection, store.Query{
		Filters: []store.Filter{{Field: "isPublished", Op: "==", Value: true}},
		Orders: []store.Order{
			{Field: "likeCount", Desc: true},
			{Field: "createdAt", Desc: true},
		},
	})
	if err != nil {
		return nil, storeFail(err)
	}

	liked := make([]models.Post, 0)
	for _, doc := range docs {
		ok, err := s.HasLiked(ctx, PostSubject(doc.ID), userID)
		if err != nil {
			return nil, err
		}
		if ok {
			liked = append(liked, models.PostFromDoc(doc))
		}
	}
	return liked, nil
}
