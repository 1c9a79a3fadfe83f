package posts

import "errors"

var (
	// ErrInvalidSource indicates the source URL could not be resolved to a
	// video: no recognizable video id, or the metadata fetch failed.
	ErrInvalidSource = errors.New("invalid source url")

	// ErrNotOwner indicates the caller does not own the subject of a
	// mutating call.
	ErrNotOwner = errors.New("not the owner")

	// ErrNotFound indicates the referenced post or reply does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the document store call failed. It is
	// reported as-is; retrying is the caller's decision.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidMode indicates an unknown feed mode.
	ErrInvalidMode = errors.New("invalid feed mode")
)
