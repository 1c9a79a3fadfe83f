package posts

const postsCollection = "posts"

// Subject addresses a likeable, editable entity: a post, or a reply nested
// under one. One code path serves both, with the nesting as data.
type Subject struct {
	PostID  string
	ReplyID string
}

func PostSubject(postID string) Subject {
	return Subject{PostID: postID}
}

func ReplySubject(postID, replyID string) Subject {
	return Subject{PostID: postID, ReplyID: replyID}
}

// IsReply reports whether the subject is a nested reply.
func (s Subject) IsReply() bool {
	return s.ReplyID != ""
}

// DocPath is the subject's own document path.
func (s Subject) DocPath() string {
	if s.IsReply() {
		return postsCollection + "/" + s.PostID + "/replies/" + s.ReplyID
	}
	return postsCollection + "/" + s.PostID
}

func (s Subject) likesCollection() string {
	return s.DocPath() + "/likes"
}

func (s Subject) likePath(userID string) string {
	return s.likesCollection() + "/" + userID
}

func repliesCollection(postID string) string {
	return postsCollection + "/" + postID + "/replies"
}
