package store

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store with the same observable behavior as the
// Firestore adapter. Handler and service tests run against it, and the
// server can be started with STORE=memory for credential-free local dev.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]Fields
	watchers map[int]*memWatcher
	nextID   int
}

type memWatcher struct {
	collection string
	query      Query
	ch         chan []Doc
	last       []Doc
}

func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]Fields),
		watchers: make(map[int]*memWatcher),
	}
}

func (m *Memory) Get(ctx context.Context, path string) (Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.docs[path]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return Doc{ID: docID(path), Path: path, Data: copyFields(data)}, nil
}

func (m *Memory) Set(ctx context.Context, path string, data Fields, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[path]
	if merge && ok {
		merged := copyFields(existing)
		for k, v := range data {
			merged[k] = v
		}
		m.docs[path] = merged
	} else {
		m.docs[path] = copyFields(data)
	}
	m.notifyLocked()
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, data Fields) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.docs[collection+"/"+id] = copyFields(data)
	m.notifyLocked()
	return id, nil
}

func (m *Memory) Update(ctx context.Context, path string, data Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.updateLocked(path, data); err != nil {
		return err
	}
	m.notifyLocked()
	return nil
}

func (m *Memory) updateLocked(path string, data Fields) error {
	existing, ok := m.docs[path]
	if !ok {
		return ErrNotFound
	}
	updated := copyFields(existing)
	for k, v := range data {
		if inc, isInc := v.(Increment); isInc {
			updated[k] = asInt64(updated[k]) + int64(inc)
		} else {
			updated[k] = v
		}
	}
	m.docs[path] = updated
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, path)
	m.notifyLocked()
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, q Query) ([]Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listLocked(collection, q), nil
}

func (m *Memory) Watch(ctx context.Context, collection string, q Query) (<-chan []Doc, error) {
	m.mu.Lock()
	w := &memWatcher{
		collection: collection,
		query:      q,
		ch:         make(chan []Doc, 64),
	}
	key := m.nextID
	m.nextID++
	m.watchers[key] = w
	initial := m.listLocked(collection, q)
	w.last = initial
	w.ch <- initial
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, key)
		close(w.ch)
		m.mu.Unlock()
	}()

	return w.ch, nil
}

func (m *Memory) Batch() Batch {
	return &memBatch{store: m}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) listLocked(collection string, q Query) []Doc {
	prefix := collection + "/"
	var docs []Doc
	for path, data := range m.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if strings.Contains(rest, "/") {
			continue
		}
		if !matches(data, q.Filters) {
			continue
		}
		docs = append(docs, Doc{ID: rest, Path: path, Data: copyFields(data)})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, ord := range q.Orders {
			c := compareValues(docs[i].Data[ord.Field], docs[j].Data[ord.Field])
			if c == 0 {
				continue
			}
			if ord.Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

// notifyLocked recomputes every watcher's result set and redelivers it when
// it changed. Callers hold m.mu.
func (m *Memory) notifyLocked() {
	for _, w := range m.watchers {
		docs := m.listLocked(w.collection, w.query)
		if reflect.DeepEqual(docs, w.last) {
			continue
		}
		w.last = docs
		select {
		case w.ch <- docs:
		default:
			log.Printf("[STORE] slow watcher on %s, dropping update", w.collection)
		}
	}
}

type memOp struct {
	kind string // "set", "update", "delete"
	path string
	data Fields
}

type memBatch struct {
	store *Memory
	ops   []memOp
}

func (b *memBatch) Set(path string, data Fields) {
	b.ops = append(b.ops, memOp{kind: "set", path: path, data: copyFields(data)})
}

func (b *memBatch) Update(path string, data Fields) {
	b.ops = append(b.ops, memOp{kind: "update", path: path, data: copyFields(data)})
}

func (b *memBatch) Delete(path string) {
	b.ops = append(b.ops, memOp{kind: "delete", path: path})
}

func (b *memBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	// Updates against missing documents fail the whole batch before any
	// write lands, matching Firestore's all-or-nothing commit.
	for _, op := range b.ops {
		if op.kind == "update" {
			if _, ok := b.store.docs[op.path]; !ok {
				return fmt.Errorf("batch update %s: %w", op.path, ErrNotFound)
			}
		}
	}
	for _, op := range b.ops {
		switch op.kind {
		case "set":
			b.store.docs[op.path] = copyFields(op.data)
		case "update":
			_ = b.store.updateLocked(op.path, op.data)
		case "delete":
			delete(b.store.docs, op.path)
		}
	}
	b.store.notifyLocked()
	return nil
}

func docID(path string) string {
	i := strings.LastIndex(path, "/")
	return path[i+1:]
}

func copyFields(data Fields) Fields {
	out := make(Fields, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func matches(data Fields, filters []Filter) bool {
	for _, f := range filters {
		c := compareValues(data[f.Field], f.Value)
		switch f.Op {
		case "==":
			if c != 0 {
				return false
			}
		case "<":
			if c >= 0 {
				return false
			}
		case "<=":
			if c > 0 {
				return false
			}
		case ">":
			if c <= 0 {
				return false
			}
		case ">=":
			if c < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders the scalar types this app stores: bools, numbers,
// strings and timestamps. Mixed or missing values sort before present ones.
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		if a == nil {
			return -1
		}
		return 1
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	if an, aok := toFloat(a); aok {
		if bn, bok := toFloat(b); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case Increment:
		return float64(n), true
	}
	return 0, false
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
