// Package memstore is an in-process DocumentStore with live queries. It backs
// the API when STORE_BACKEND=memory and drives the sync tests.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satvik8373/Rentieo/internal/domain/service"
)

type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpWatch  Op = "watch"
)

// FaultFunc lets tests fail individual operations. Returning nil lets the
// operation through.
type FaultFunc func(op Op, path string) error

type document struct {
	data    service.Record
	seq     uint64
	updated time.Time
}

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*document
	watchers    map[*watcher]struct{}
	seq         uint64
	fault       FaultFunc
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]*document),
		watchers:    make(map[*watcher]struct{}),
		now:         time.Now,
	}
}

func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

func (s *Store) checkFault(op Op, path string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, path)
}

func splitPath(path string) (collection, id string, err error) {
	path = strings.Trim(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", fmt.Errorf("memstore: invalid document path %q", path)
	}
	return path[:idx], path[idx+1:], nil
}

func (s *Store) Get(ctx context.Context, path string) (*service.Document, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpGet, path); err != nil {
		return nil, err
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &service.Document{
		ID:         id,
		Path:       collection + "/" + id,
		Data:       cloneRecord(doc.data),
		UpdateTime: doc.updated,
	}, nil
}

func (s *Store) Set(ctx context.Context, path string, data service.Record, merge bool) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpSet, path); err != nil {
		return err
	}

	var base service.Record
	if existing, ok := s.collections[collection][id]; ok && merge {
		base = existing.data
	}
	s.write(collection, id, applyChanges(base, data, s.now()))
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, data service.Record) (string, error) {
	collection = strings.Trim(collection, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpAdd, collection); err != nil {
		return "", err
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.write(collection, id, applyChanges(nil, data, s.now()))
	return id, nil
}

func (s *Store) Update(ctx context.Context, path string, changes service.Record) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpUpdate, path); err != nil {
		return err
	}

	existing, ok := s.collections[collection][id]
	if !ok {
		return service.ErrNotFound
	}
	s.write(collection, id, applyChanges(existing.data, changes, s.now()))
	return nil
}

// Delete succeeds for missing documents, as the remote store does.
func (s *Store) Delete(ctx context.Context, path string) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpDelete, path); err != nil {
		return err
	}

	if _, ok := s.collections[collection][id]; !ok {
		return nil
	}
	delete(s.collections[collection], id)
	s.notify(collection)
	return nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[strings.Trim(collection, "/")])
}

// Documents returns every document of a collection in insertion order.
func (s *Store) Documents(collection string) []service.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(service.Query{Collection: strings.Trim(collection, "/")})
}

// InjectError delivers err to every watcher on the collection, in line with
// any snapshots already queued for them.
func (s *Store) InjectError(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers {
		if w.query.Collection == collection {
			w.enqueue(event{err: err})
		}
	}
}

// write must be called with s.mu held.
func (s *Store) write(collection, id string, data service.Record) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]*document)
		s.collections[collection] = docs
	}

	var seq uint64
	if existing, ok := docs[id]; ok {
		seq = existing.seq
	} else {
		s.seq++
		seq = s.seq
	}
	docs[id] = &document{data: data, seq: seq, updated: s.now()}
	s.notify(collection)
}

// notify must be called with s.mu held so that every watcher sees snapshots
// in commit order.
func (s *Store) notify(collection string) {
	for w := range s.watchers {
		if w.query.Collection == collection {
			w.enqueue(event{docs: s.run(w.query)})
		}
	}
}

type ranked struct {
	doc service.Document
	seq uint64
}

// run evaluates q against the current state. Documents missing the order-by
// field are excluded; ties keep insertion order.
func (s *Store) run(q service.Query) []service.Document {
	var matched []ranked
	for id, doc := range s.collections[q.Collection] {
		if !matches(doc.data, q.Filters) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := doc.data[q.OrderBy]; !ok {
				continue
			}
		}
		matched = append(matched, ranked{
			doc: service.Document{
				ID:         id,
				Path:       q.Collection + "/" + id,
				Data:       cloneRecord(doc.data),
				UpdateTime: doc.updated,
			},
			seq: doc.seq,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].seq < matched[j].seq
	})
	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i].doc.Data[q.OrderBy], matched[j].doc.Data[q.OrderBy])
			if q.Direction == service.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	out := make([]service.Document, len(matched))
	for i, m := range matched {
		out[i] = m.doc
	}
	return out
}

func matches(data service.Record, filters []service.Filter) bool {
	for _, f := range filters {
		value, ok := data[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case service.OpEqual:
			if !equal(value, f.Value) {
				return false
			}
		case service.OpArrayContains:
			found := false
			for _, item := range toList(value) {
				if equal(item, f.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func equal(a, b interface{}) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// compare orders values of the same kind; mismatched kinds compare equal.
func compare(a, b interface{}) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	switch va := a.(type) {
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case bool:
		if vb, ok := b.(bool); ok && va != vb {
			if !va {
				return -1
			}
			return 1
		}
	}
	return 0
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toList(v interface{}) []interface{} {
	switch l := v.(type) {
	case []interface{}:
		return l
	case []string:
		out := make([]interface{}, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return nil
}
