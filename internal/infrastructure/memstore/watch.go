package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/satvik8373/Rentieo/internal/domain/service"
)

type event struct {
	docs []service.Document
	err  error
}

type watcher struct {
	store      *Store
	query      service.Query
	onSnapshot service.SnapshotFunc
	onError    service.ErrorFunc

	mu     sync.Mutex
	queue  []event
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Watch queues the current result set immediately and one full snapshot per
// committed change afterwards. Callbacks run on a goroutine owned by the
// watcher, one at a time.
func (s *Store) Watch(ctx context.Context, q service.Query, onSnapshot service.SnapshotFunc, onError service.ErrorFunc) (service.Listener, error) {
	q.Collection = strings.Trim(q.Collection, "/")

	w := &watcher{
		store:      s,
		query:      q,
		onSnapshot: onSnapshot,
		onError:    onError,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if err := s.checkFault(OpWatch, q.Collection); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.watchers[w] = struct{}{}
	w.enqueue(event{docs: s.run(q)})
	s.mu.Unlock()

	go w.loop(ctx)
	return w, nil
}

// Watchers reports how many listeners are attached, for leak checks.
func (s *Store) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

func (w *watcher) enqueue(e event) {
	w.mu.Lock()
	w.queue = append(w.queue, e)
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.signal:
		}

		w.mu.Lock()
		pending := w.queue
		w.queue = nil
		w.mu.Unlock()

		for _, e := range pending {
			select {
			case <-w.done:
				return
			default:
			}
			if e.err != nil {
				if w.onError != nil {
					w.onError(e.err)
				}
				continue
			}
			w.onSnapshot(e.docs)
		}
	}
}

func (w *watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.store.mu.Lock()
		delete(w.store.watchers, w)
		w.store.mu.Unlock()
	})
}
