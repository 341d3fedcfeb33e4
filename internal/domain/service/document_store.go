package service

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrNotFound is returned by a DocumentStore when the addressed document does
// not exist.
var ErrNotFound = stderrors.New("document not found")

// ErrUnavailable wraps connectivity failures talking to the store.
var ErrUnavailable = stderrors.New("document store unavailable")

// ErrPermissionDenied is returned when the store rejects the caller.
var ErrPermissionDenied = stderrors.New("permission denied")

// Record is a schemaless document body: field name to scalar, array, nested
// map or timestamp.
type Record = map[string]interface{}

// Document is a point-in-time read of a single document.
type Document struct {
	ID         string
	Path       string
	Data       Record
	UpdateTime time.Time
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Operator string

const (
	OpEqual         Operator = "=="
	OpArrayContains Operator = "array-contains"
)

type Filter struct {
	Field string
	Op    Operator
	Value interface{}
}

// Query describes a filtered, ordered view over one collection. Collection is
// a slash separated path such as "listings" or "chats/{id}/messages".
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
}

func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

func (q Query) Where(field string, op Operator, value interface{}) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Listener is a handle to an attached live query. Stop detaches it; calling
// Stop more than once is a no-op.
type Listener interface {
	Stop()
}

// SnapshotFunc receives the full, ordered result set of a live query.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives listener errors. An error does not detach the listener;
// the caller still owns Stop.
type ErrorFunc func(err error)

// DocumentStore is the remote document database the application syncs with.
type DocumentStore interface {
	Get(ctx context.Context, path string) (*Document, error)
	// Set writes the whole document, or merges the given fields when merge is true.
	Set(ctx context.Context, path string, data Record, merge bool) error
	// Add inserts into a collection under a backend-assigned id.
	Add(ctx context.Context, collection string, data Record) (string, error)
	// Update changes only the named fields and fails with ErrNotFound when the
	// document is missing.
	Update(ctx context.Context, path string, changes Record) error
	Delete(ctx context.Context, path string) error
	Watch(ctx context.Context, q Query, onSnapshot SnapshotFunc, onError ErrorFunc) (Listener, error)
}

// Field transforms understood by every DocumentStore in Set and Update.

type ArrayUnion struct{ Elems []interface{} }

type ArrayRemove struct{ Elems []interface{} }

type Increment struct{ By int64 }

// ServerTimestamp asks the backend to stamp the field with its own clock.
type ServerTimestamp struct{}
