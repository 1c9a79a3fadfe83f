package models

import (
	"time"

	"deepessays.dev/deep-essays/store"
)

// Like marks that a user liked a post or reply. At most one exists per
// (subject, user); its existence is the source of truth for like state,
// and the subject's likeCount is a denormalized counter rebuilt from it.
type Like struct {
	UserID  string    `json:"user_id"`
	LikedAt time.Time `json:"liked_at"`
}

func (l Like) Fields() store.Fields {
	return store.Fields{
		"userId":  l.UserID,
		"likedAt": l.LikedAt,
	}
}

func LikeFromDoc(doc store.Doc) Like {
	return Like{
		UserID:  fieldString(doc.Data, "userId"),
		LikedAt: fieldTime(doc.Data, "likedAt"),
	}
}

// VisibilityMode selects whether a user's dashboard shows the public feed
// or their private drafts.
type VisibilityMode string

const (
	ModePublic  VisibilityMode = "public"
	ModePrivate VisibilityMode = "private"
)

func (m VisibilityMode) Valid() bool {
	return m == ModePublic || m == ModePrivate
}

// UserProfile is the per-user preference record. A missing profile reads
// as private.
type UserProfile struct {
	UserID         string         `json:"user_id"`
	VisibilityMode VisibilityMode `json:"visibility_mode"`
}
