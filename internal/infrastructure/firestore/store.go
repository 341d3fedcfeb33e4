// Package firestore implements the DocumentStore on Cloud Firestore, with live
// queries served by Query.Snapshots.
package firestore

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, path string) (*service.Document, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return toDocument(snap), nil
}

func (s *Store) Set(ctx context.Context, path string, data service.Record, merge bool) error {
	ref := s.client.Doc(path)
	if ref == nil {
		return fmt.Errorf("firestore: invalid document path %q", path)
	}

	var err error
	if merge {
		_, err = ref.Set(ctx, toWire(data), firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, toWire(data))
	}
	return translate(err)
}

func (s *Store) Add(ctx context.Context, collection string, data service.Record) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toWire(data))
	if err != nil {
		return "", translate(err)
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, path string, changes service.Record) error {
	ref := s.client.Doc(path)
	if ref == nil {
		return fmt.Errorf("firestore: invalid document path %q", path)
	}

	updates := make([]firestore.Update, 0, len(changes))
	for field, value := range changes {
		updates = append(updates, firestore.Update{Path: field, Value: toWireValue(value)})
	}
	_, err := ref.Update(ctx, updates)
	return translate(err)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	ref := s.client.Doc(path)
	if ref == nil {
		return fmt.Errorf("firestore: invalid document path %q", path)
	}
	_, err := ref.Delete(ctx)
	return translate(err)
}

type listener struct {
	cancel context.CancelFunc
	once   sync.Once
}

// Stop cancels the listen stream. It does not wait for the pump goroutine, so
// it is safe to call from inside a snapshot callback.
func (l *listener) Stop() {
	l.once.Do(l.cancel)
}

// Watch streams query snapshots until the listener is stopped or ctx ends. A
// stream error is reported once through onError; the listen stream is gone
// after that, so callers wanting fresh data resubscribe.
func (s *Store) Watch(ctx context.Context, q service.Query, onSnapshot service.SnapshotFunc, onError service.ErrorFunc) (service.Listener, error) {
	query, err := s.buildQuery(q)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	l := &listener{cancel: cancel}
	it := query.Snapshots(watchCtx)

	go func() {
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if watchCtx.Err() != nil || status.Code(err) == codes.Canceled || err == iterator.Done {
					return
				}
				logger.Warn("firestore watch on %s failed: %v", q.Collection, err)
				if onError != nil {
					onError(translate(err))
				}
				return
			}

			docs, err := readAll(qs.Documents)
			if err != nil {
				if onError != nil {
					onError(translate(err))
				}
				continue
			}
			onSnapshot(docs)
		}
	}()

	return l, nil
}

func (s *Store) buildQuery(q service.Query) (firestore.Query, error) {
	coll := s.client.Collection(q.Collection)
	if coll == nil {
		return firestore.Query{}, fmt.Errorf("firestore: invalid collection path %q", q.Collection)
	}

	query := coll.Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == service.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	return query, nil
}

func readAll(it *firestore.DocumentIterator) ([]service.Document, error) {
	defer it.Stop()

	var docs []service.Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, *toDocument(snap))
	}
	return docs, nil
}

func toDocument(snap *firestore.DocumentSnapshot) *service.Document {
	return &service.Document{
		ID:         snap.Ref.ID,
		Path:       snap.Ref.Path,
		Data:       snap.Data(),
		UpdateTime: snap.UpdateTime,
	}
}

func toWire(data service.Record) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = toWireValue(v)
	}
	return out
}

func toWireValue(v interface{}) interface{} {
	switch t := v.(type) {
	case service.ArrayUnion:
		return firestore.ArrayUnion(t.Elems...)
	case service.ArrayRemove:
		return firestore.ArrayRemove(t.Elems...)
	case service.Increment:
		return firestore.Increment(t.By)
	case service.ServerTimestamp:
		return firestore.ServerTimestamp
	}
	return v
}

// translate maps gRPC status codes onto the store sentinels so callers never
// depend on Firestore error types.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", service.ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", service.ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	}
	return err
}
