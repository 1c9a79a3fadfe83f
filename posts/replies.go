package posts

import (
	"context"
	"fmt"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/store"
)

// CreateReply resolves the URL's metadata and inserts a reply under the
// parent post. Replies go straight into the parent's thread (published on
// creation); editing one retracts it like any other subject.
func (s *Service) CreateReply(ctx context.Context, parentPostID string, author Session, sourceURL, essay string) (*models.Reply, error) {
	if _, err := s.store.Get(ctx, PostSubject(parentPostID).DocPath()); err != nil {
		return nil, storeFail(err)
	}

	meta, err := s.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	r := models.Reply{
		Post: models.Post{
			OwnerID:           author.UserID,
			SourceURL:         sourceURL,
			VideoID:           meta.VideoID,
			Title:             meta.Title,
			ChannelName:       meta.ChannelName,
			ChannelThumbnail:  meta.ChannelThumbnail,
			Thumbnail:         meta.Thumbnail,
			ViewCount:         meta.ViewCount,
			ExternalLikeCount: meta.ExternalLikeCount,
			PublishedAt:       meta.PublishedAt,
			Essay:             essay,
			IsPublished:       true,
			LikeCount:         0,
			CreatedAt:         s.now().UTC(),
		},
		ParentPostID: parentPostID,
		AuthorID:     author.UserID,
		AuthorEmail:  author.Email,
	}

	id, err := s.store.Add(ctx, repliesCollection(parentPostID), r.Fields())
	if err != nil {
		return nil, storeFail(err)
	}
	r.ID = id
	return &r, nil
}

// GetReply returns a reply if the viewer may see it.
func (s *Service) GetReply(ctx context.Context, postID, replyID, viewerID string) (*models.Reply, error) {
	doc, err := s.store.Get(ctx, ReplySubject(postID, replyID).DocPath())
	if err != nil {
		return nil, storeFail(err)
	}
	r := models.ReplyFromDoc(doc)
	if !r.IsPublished && r.AuthorID != viewerID {
		return nil, ErrNotFound
	}
	return &r, nil
}

// ListReplies returns the parent's replies, most liked first: published
// ones for everyone plus the viewer's own retracted ones.
func (s *Service) ListReplies(ctx context.Context, postID, viewerID string) ([]models.Reply, error) {
	if _, err := s.store.Get(ctx, PostSubject(postID).DocPath()); err != nil {
		return nil, storeFail(err)
	}

	docs, err := s.store.List(ctx, repliesCollection(postID), store.Query{
		Orders: []store.Order{
			{Field: "likeCount", Desc: true},
			{Field: "createdAt", Desc: true},
		},
	})
	if err != nil {
		return nil, storeFail(err)
	}

	replies := make([]models.Reply, 0, len(docs))
	for _, doc := range docs {
		r := models.ReplyFromDoc(doc)
		if r.IsPublished || r.AuthorID == viewerID {
			replies = append(replies, r)
		}
	}
	return replies, nil
}

// DeleteReply removes the reply and its like markers. Author-scoped.
func (s *Service) DeleteReply(ctx context.Context, postID, replyID, callerID string) error {
	subj := ReplySubject(postID, replyID)
	if _, err := s.ownedSubject(ctx, subj, callerID); err != nil {
		return err
	}

	likes, err := s.store.List(ctx, subj.likesCollection(), store.Query{})
	if err != nil {
		return storeFail(err)
	}
	paths := make([]string, 0, len(likes)+1)
	for _, l := range likes {
		paths = append(paths, l.Path)
	}
	paths = append(paths, subj.DocPath())
	return s.deleteAll(ctx, paths)
}
