// Package store defines the document-store boundary the rest of the app
// writes through. Two implementations exist: a Firestore adapter and an
// in-memory store used by tests and the STORE=memory dev mode.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
)

// Fields is the raw field map of a document.
type Fields map[string]interface{}

// Increment marks a field value as an atomic numeric delta in Update and
// batch Update calls rather than an overwrite.
type Increment int64

// Doc is a document snapshot.
type Doc struct {
	ID   string
	Path string
	Data Fields
}

// Filter is a single field predicate. Op is one of "==", "<", "<=", ">", ">=".
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Order sorts results by a field.
type Order struct {
	Field string
	Desc  bool
}

// Query selects direct children of a collection.
type Query struct {
	Filters []Filter
	Orders  []Order
	Limit   int
}

// Batch accumulates writes that commit together. A failed commit applies
// none of the queued writes.
type Batch interface {
	Set(path string, data Fields)
	Update(path string, data Fields)
	Delete(path string)
	Commit(ctx context.Context) error
}

// Store is the document-store surface: document reads and writes by
// slash-separated path ("posts/p1/likes/u1"), generated-id inserts,
// field updates with atomic increments, equality queries with ordering,
// batched writes, and watchable queries that redeliver the full matching
// set whenever it changes.
type Store interface {
	// Get fetches one document. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, path string) (Doc, error)

	// Set writes a document at a known path. With merge, existing fields
	// not named in data are preserved; the document is created if absent.
	Set(ctx context.Context, path string, data Fields, merge bool) error

	// Add inserts a document with a generated ID into a collection and
	// returns the ID.
	Add(ctx context.Context, collection string, data Fields) (string, error)

	// Update overwrites the named fields of an existing document.
	// Increment values apply as atomic deltas. Returns ErrNotFound if the
	// document does not exist.
	Update(ctx context.Context, path string, data Fields) error

	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, path string) error

	// List returns the direct child documents of a collection matching q.
	List(ctx context.Context, collection string, q Query) ([]Doc, error)

	// Watch delivers the current matching document set immediately and
	// redelivers the full ordered set on every change. The channel closes
	// when ctx is done.
	Watch(ctx context.Context, collection string, q Query) (<-chan []Doc, error)

	// Batch starts a new write batch.
	Batch() Batch

	Close() error
}
