package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore adapts a *firestore.Client to the Store interface.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Get(ctx context.Context, path string) (Doc, error) {
	snap, err := f.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Doc{}, ErrNotFound
		}
		return Doc{}, fmt.Errorf("firestore get %s: %w", path, err)
	}
	return Doc{ID: snap.Ref.ID, Path: path, Data: snap.Data()}, nil
}

func (f *Firestore) Set(ctx context.Context, path string, data Fields, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := f.client.Doc(path).Set(ctx, map[string]interface{}(data), opts...); err != nil {
		return fmt.Errorf("firestore set %s: %w", path, err)
	}
	return nil
}

func (f *Firestore) Add(ctx context.Context, collection string, data Fields) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, map[string]interface{}(data))
	if err != nil {
		return "", fmt.Errorf("firestore add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Update(ctx context.Context, path string, data Fields) error {
	if _, err := f.client.Doc(path).Update(ctx, toUpdates(data)); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update %s: %w", path, err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, path string) error {
	if _, err := f.client.Doc(path).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s: %w", path, err)
	}
	return nil
}

func (f *Firestore) List(ctx context.Context, collection string, q Query) ([]Doc, error) {
	snaps, err := f.buildQuery(collection, q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", collection, err)
	}
	docs := make([]Doc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Doc{
			ID:   snap.Ref.ID,
			Path: collection + "/" + snap.Ref.ID,
			Data: snap.Data(),
		})
	}
	return docs, nil
}

func (f *Firestore) Watch(ctx context.Context, collection string, q Query) (<-chan []Doc, error) {
	it := f.buildQuery(collection, q).Snapshots(ctx)
	out := make(chan []Doc, 1)

	go func() {
		defer close(out)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[STORE] watch on %s ended: %v", collection, err)
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("[STORE] watch read on %s failed: %v", collection, err)
				return
			}
			docs := make([]Doc, 0, len(snaps))
			for _, s := range snaps {
				docs = append(docs, Doc{
					ID:   s.Ref.ID,
					Path: collection + "/" + s.Ref.ID,
					Data: s.Data(),
				})
			}
			select {
			case out <- docs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (f *Firestore) Batch() Batch {
	return &firestoreBatch{client: f.client, wb: f.client.Batch()}
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) buildQuery(collection string, q Query) firestore.Query {
	fq := f.client.Collection(collection).Query
	for _, flt := range q.Filters {
		fq = fq.Where(flt.Field, flt.Op, flt.Value)
	}
	for _, ord := range q.Orders {
		dir := firestore.Asc
		if ord.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(ord.Field, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

type firestoreBatch struct {
	client *firestore.Client
	wb     *firestore.WriteBatch
}

func (b *firestoreBatch) Set(path string, data Fields) {
	b.wb.Set(b.client.Doc(path), map[string]interface{}(data))
}

func (b *firestoreBatch) Update(path string, data Fields) {
	b.wb.Update(b.client.Doc(path), toUpdates(data))
}

func (b *firestoreBatch) Delete(path string) {
	b.wb.Delete(b.client.Doc(path))
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if _, err := b.wb.Commit(ctx); err != nil {
		return fmt.Errorf("firestore batch commit: %w", err)
	}
	return nil
}

func toUpdates(data Fields) []firestore.Update {
	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		if inc, ok := v.(Increment); ok {
			v = firestore.Increment(int64(inc))
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}
