package models

import (
	"time"

	"deepessays.dev/deep-essays/store"
)

// Post is an owner-curated video reference plus an attached essay, the unit
// of publication. Unpublished posts are visible only to their owner.
type Post struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	SourceURL         string    `json:"source_url"`
	VideoID           string    `json:"video_id"`
	Title             string    `json:"title"`
	ChannelName       string    `json:"channel_name"`
	ChannelThumbnail  string    `json:"channel_thumbnail"`
	Thumbnail         string    `json:"thumbnail"`
	ViewCount         int64     `json:"view_count"`
	ExternalLikeCount int64     `json:"external_like_count"`
	PublishedAt       string    `json:"published_at"`
	Essay             string    `json:"essay"`
	IsPublished       bool      `json:"is_published"`
	LikeCount         int64     `json:"like_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Reply is a post-shaped response video nested under a parent post. Its
// published flag is independent of the parent's.
type Reply struct {
	Post
	ParentPostID string `json:"parent_post_id"`
	AuthorID     string `json:"author_id"`
	AuthorEmail  string `json:"author_email"`
}

// VideoMetadata is the normalized record the metadata resolver produces
// for a source URL.
type VideoMetadata struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	ChannelName       string `json:"channel_name"`
	ChannelThumbnail  string `json:"channel_thumbnail"`
	Thumbnail         string `json:"thumbnail"`
	ViewCount         int64  `json:"view_count"`
	ExternalLikeCount int64  `json:"external_like_count"`
	PublishedAt       string `json:"published_at"`
}

func (p Post) Fields() store.Fields {
	return store.Fields{
		"ownerId":           p.OwnerID,
		"sourceUrl":         p.SourceURL,
		"videoId":           p.VideoID,
		"title":             p.Title,
		"channelName":       p.ChannelName,
		"channelThumbnail":  p.ChannelThumbnail,
		"thumbnail":         p.Thumbnail,
		"viewCount":         p.ViewCount,
		"externalLikeCount": p.ExternalLikeCount,
		"publishedAt":       p.PublishedAt,
		"essay":             p.Essay,
		"isPublished":       p.IsPublished,
		"likeCount":         p.LikeCount,
		"createdAt":         p.CreatedAt,
	}
}

func PostFromDoc(doc store.Doc) Post {
	return Post{
		ID:                doc.ID,
		OwnerID:           fieldString(doc.Data, "ownerId"),
		SourceURL:         fieldString(doc.Data, "sourceUrl"),
		VideoID:           fieldString(doc.Data, "videoId"),
		Title:             fieldString(doc.Data, "title"),
		ChannelName:       fieldString(doc.Data, "channelName"),
		ChannelThumbnail:  fieldString(doc.Data, "channelThumbnail"),
		Thumbnail:         fieldString(doc.Data, "thumbnail"),
		ViewCount:         fieldInt64(doc.Data, "viewCount"),
		ExternalLikeCount: fieldInt64(doc.Data, "externalLikeCount"),
		PublishedAt:       fieldString(doc.Data, "publishedAt"),
		Essay:             fieldString(doc.Data, "essay"),
		IsPublished:       fieldBool(doc.Data, "isPublished"),
		LikeCount:         fieldInt64(doc.Data, "likeCount"),
		CreatedAt:         fieldTime(doc.Data, "createdAt"),
	}
}

func (r Reply) Fields() store.Fields {
	fields := r.Post.Fields()
	fields["parentPostId"] = r.ParentPostID
	fields["authorId"] = r.AuthorID
	fields["authorEmail"] = r.AuthorEmail
	return fields
}

func ReplyFromDoc(doc store.Doc) Reply {
	return Reply{
		Post:         PostFromDoc(doc),
		ParentPostID: fieldString(doc.Data, "parentPostId"),
		AuthorID:     fieldString(doc.Data, "authorId"),
		AuthorEmail:  fieldString(doc.Data, "authorEmail"),
	}
}
