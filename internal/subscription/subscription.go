// Package subscription turns a live document query into a stream of decoded
// snapshots. Every emission is the complete, ordered result set.
package subscription

import (
	"context"
	"fmt"
	"sync"

	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

const DefaultBuffer = 64

// Decoder converts one raw document into an entity. It must not fail.
type Decoder[T any] func(record map[string]interface{}, id string) T

type options struct {
	name    string
	buffer  int
	onError func(error)
}

type Option func(*options)

// WithName labels the subscription in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithBuffer bounds how many undelivered snapshots are kept for a slow
// consumer. The oldest pending snapshot is dropped first.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithErrorHandler is called for every listener error, after it is logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

type Subscription[T any] struct {
	name    string
	decode  Decoder[T]
	limit   int
	onError func(error)

	updates chan []T
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	queue    [][]T
	latest   []T
	received bool
	listener service.Listener
}

// Subscribe attaches a live query and starts publishing snapshots on
// Updates. The subscription ends when ctx is done or Close is called.
func Subscribe[T any](ctx context.Context, store service.DocumentStore, q service.Query, decode Decoder[T], opts ...Option) (*Subscription[T], error) {
	o := options{name: q.Collection, buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Subscription[T]{
		name:    o.name,
		decode:  decode,
		limit:   o.buffer,
		onError: o.onError,
		updates: make(chan []T),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	listener, err := store.Watch(ctx, q, s.push, s.fail)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", o.name, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	logger.Debug("subscription %s attached", s.name)
	return s, nil
}

// Updates delivers snapshots in the order the backend produced them. The
// channel is closed once the subscription is closed.
func (s *Subscription[T]) Updates() <-chan []T {
	return s.updates
}

// Latest returns the last snapshot received from the backend, if any. A
// listener error leaves it untouched.
func (s *Subscription[T]) Latest() ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.received
}

// Close detaches the remote listener. Calling it again is a no-op.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		listener := s.listener
		s.queue = nil
		s.mu.Unlock()

		if listener != nil {
			listener.Stop()
		}
		logger.Debug("subscription %s closed", s.name)
	})
}

// Done is closed when the subscription has been closed.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) push(docs []service.Document) {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, s.decode(doc.Data, doc.ID))
	}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	s.latest = items
	s.received = true
	s.queue = append(s.queue, items)
	if len(s.queue) > s.limit {
		dropped := len(s.queue) - s.limit
		s.queue = append([][]T(nil), s.queue[dropped:]...)
		logger.Warn("subscription %s: consumer is slow, dropped %d stale snapshot(s)", s.name, dropped)
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) fail(err error) {
	l := logger.With("subscription")
	l.Error().Str("name", s.name).Err(err).Msg("listener error, keeping last snapshot")
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.updates)

	for {
		s.mu.Lock()
		var next []T
		ready := len(s.queue) > 0
		if ready {
			next = s.queue[0]
			s.queue = s.queue[1:]
		}
		s.mu.Unlock()

		if !ready {
			select {
			case <-s.done:
				return
			case <-s.signal:
			}
			continue
		}

		select {
		case <-s.done:
			return
		case s.updates <- next:
		}
	}
}

// First opens a subscription, waits for its initial snapshot and closes it.
// It serves point-in-time reads of a feed. A listener error before the first
// snapshot is returned.
func First[T any](ctx context.Context, store service.DocumentStore, q service.Query, decode Decoder[T]) ([]T, error) {
	errs := make(chan error, 1)
	sub, err := Subscribe(ctx, store, q, decode, WithErrorHandler(func(err error) {
		select {
		case errs <- err:
		default:
		}
	}))
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	select {
	case items, ok := <-sub.Updates():
		if !ok {
			return nil, context.Canceled
		}
		return items, nil
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
