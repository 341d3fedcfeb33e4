package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/infrastructure/memstore"
)

func idOf(_ map[string]interface{}, id string) string { return id }

func next[T any](t *testing.T, sub *Subscription[T]) []T {
	t.Helper()
	select {
	case items, ok := <-sub.Updates():
		require.True(t, ok, "updates channel closed")
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

// scriptedStore hands the test direct control over listener callbacks.
type scriptedStore struct {
	service.DocumentStore

	mu         sync.Mutex
	onSnapshot service.SnapshotFunc
	onError    service.ErrorFunc
	stops      int
	watchErr   error
}

type scriptedListener struct{ s *scriptedStore }

func (l scriptedListener) Stop() {
	l.s.mu.Lock()
	l.s.stops++
	l.s.mu.Unlock()
}

func (s *scriptedStore) Watch(ctx context.Context, q service.Query, onSnapshot service.SnapshotFunc, onError service.ErrorFunc) (service.Listener, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	s.onSnapshot = onSnapshot
	s.onError = onError
	return scriptedListener{s}, nil
}

func docs(ids ...string) []service.Document {
	out := make([]service.Document, len(ids))
	for i, id := range ids {
		out[i] = service.Document{ID: id, Data: service.Record{}}
	}
	return out
}

func TestSubscribe_EmitsFullSnapshots(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Set(ctx, "listings/a", service.Record{"createdAt": time.Unix(1, 0)}, false))

	sub, err := Subscribe(ctx, store, service.NewQuery("listings").Order("createdAt", service.Desc), Decoder[string](idOf))
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"a"}, next(t, sub))

	require.NoError(t, store.Set(ctx, "listings/b", service.Record{"createdAt": time.Unix(2, 0)}, false))
	assert.Equal(t, []string{"b", "a"}, next(t, sub))
}

func TestSubscribe_PreservesEmissionOrder(t *testing.T) {
	store := &scriptedStore{}
	sub, err := Subscribe(context.Background(), store, service.NewQuery("chats"), Decoder[string](idOf))
	require.NoError(t, err)
	defer sub.Close()

	const n = 20
	for i := 0; i < n; i++ {
		store.onSnapshot(docs(fmt.Sprintf("s%02d", i)))
	}

	for i := 0; i < n; i++ {
		assert.Equal(t, []string{fmt.Sprintf("s%02d", i)}, next(t, sub))
	}
}

func TestSubscribe_SlowConsumerKeepsNewest(t *testing.T) {
	store := &scriptedStore{}
	sub, err := Subscribe(context.Background(), store, service.NewQuery("chats"), Decoder[string](idOf), WithBuffer(2))
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 10; i++ {
		store.onSnapshot(docs(fmt.Sprintf("s%d", i)))
	}

	var got []string
	for len(got) == 0 || got[len(got)-1] != "s9" {
		got = append(got, next(t, sub)[0])
	}
	assert.LessOrEqual(t, len(got), 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}

func TestSubscribe_ErrorKeepsStreamOpen(t *testing.T) {
	store := &scriptedStore{}
	var handled []error
	var mu sync.Mutex
	sub, err := Subscribe(context.Background(), store, service.NewQuery("chats"), Decoder[string](idOf),
		WithErrorHandler(func(err error) {
			mu.Lock()
			handled = append(handled, err)
			mu.Unlock()
		}))
	require.NoError(t, err)
	defer sub.Close()

	store.onSnapshot(docs("a"))
	assert.Equal(t, []string{"a"}, next(t, sub))

	store.onError(service.ErrPermissionDenied)

	latest, ok := sub.Latest()
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, latest)
	mu.Lock()
	assert.Equal(t, []error{service.ErrPermissionDenied}, handled)
	mu.Unlock()

	select {
	case <-sub.Done():
		t.Fatal("subscription closed after listener error")
	default:
	}

	store.onSnapshot(docs("a", "b"))
	assert.Equal(t, []string{"a", "b"}, next(t, sub))
}

func TestSubscribe_ErrorWithoutHandlerIsLogged(t *testing.T) {
	store := &scriptedStore{}
	sub, err := Subscribe(context.Background(), store, service.NewQuery("chats"), Decoder[string](idOf))
	require.NoError(t, err)
	defer sub.Close()

	store.onSnapshot(docs("a"))
	assert.Equal(t, []string{"a"}, next(t, sub))

	assert.NotPanics(t, func() { store.onError(service.ErrUnavailable) })

	latest, ok := sub.Latest()
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, latest)
}

func TestSubscribe_CloseIsIdempotent(t *testing.T) {
	store := memstore.New()
	sub, err := Subscribe(context.Background(), store, service.NewQuery("listings"), Decoder[string](idOf))
	require.NoError(t, err)
	next(t, sub)

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, store.Watchers())
	assert.Eventually(t, func() bool {
		_, open := <-sub.Updates()
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribe_ContextCancelDetachesOnce(t *testing.T) {
	store := &scriptedStore{}
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := Subscribe(ctx, store, service.NewQuery("chats"), Decoder[string](idOf))
	require.NoError(t, err)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context cancel did not close the subscription")
	}
	sub.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.stops)
}

func TestSubscribe_WatchFailure(t *testing.T) {
	store := &scriptedStore{watchErr: errors.New("offline")}
	_, err := Subscribe(context.Background(), store, service.NewQuery("chats"), Decoder[string](idOf))
	assert.Error(t, err)
}

func TestSubscribe_DeactivatedListingLeavesActiveFeed(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	for i, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, store.Set(ctx, "listings/"+id, mapper.EncodeListing(&entity.Listing{
			ID:        id,
			Title:     id,
			IsActive:  true,
			CreatedAt: time.Unix(int64(i+1), 0).UTC(),
		}), false))
	}

	q := service.NewQuery("listings").Where("isActive", service.OpEqual, true).Order("createdAt", service.Desc)
	sub, err := Subscribe(ctx, store, q, mapper.DecodeListing)
	require.NoError(t, err)
	defer sub.Close()

	initial := next(t, sub)
	require.Len(t, initial, 3)
	assert.Equal(t, "l3", initial[0].ID)

	require.NoError(t, store.Update(ctx, "listings/l2", service.Record{"isActive": false}))

	after := next(t, sub)
	require.Len(t, after, 2)
	for _, l := range after {
		assert.NotEqual(t, "l2", l.ID)
	}
}

func TestFirst(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Set(ctx, "listings/a", service.Record{}, false))

	items, err := First(ctx, store, service.NewQuery("listings"), Decoder[string](idOf))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)
	assert.Equal(t, 0, store.Watchers())
}
