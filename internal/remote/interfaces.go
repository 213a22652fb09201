// Package remote abstracts the hosted document store, object store and
// identity provider behind small interfaces so the sync engine can be driven
// by fakes in tests. The production implementations bind to Firebase.
package remote

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a document addressed for a one-shot operation
// does not exist.
var ErrNotFound = errors.New("document not found")

// Subscription is the handle for a live listener. Cancel is idempotent and
// blocks until no further deliveries can occur: once Cancel returns, the
// listener's callbacks are guaranteed never to fire again.
type Subscription interface {
	Cancel()
}

// Document is one snapshot of a subscribed document. Data is nil when the
// document does not exist.
type Document struct {
	ID     string
	Exists bool
	Data   map[string]interface{}
}

// Filter is a single equality constraint on a collection query.
type Filter struct {
	Field string
	Value interface{}
}

// CollectionQuery describes a filtered, ordered, optionally bounded live
// query over a collection.
type CollectionQuery struct {
	Path    string
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int // 0 means unbounded
}

// DocumentStore exposes push-based subscriptions and merge-writes against the
// hosted document store.
type DocumentStore interface {
	// ListenDocument opens a live subscription on a single document. Every
	// remote change, including the initial state, is delivered to onSnap in
	// server-commit order. A terminal listener failure is delivered to onErr
	// exactly once, after which no further snapshots arrive.
	ListenDocument(ctx context.Context, path string, onSnap func(Document), onErr func(error)) Subscription

	// ListenCollection behaves like ListenDocument for a query result set;
	// each delivery carries the full current result set in query order.
	ListenCollection(ctx context.Context, q CollectionQuery, onSnap func([]Document), onErr func(error)) Subscription

	// MergeWrite writes exactly the given fields into the document, creating
	// it if absent and leaving all other fields untouched.
	MergeWrite(ctx context.Context, path string, fields map[string]interface{}) error
}

// ObjectStore exposes binary upload and retrieval-URL resolution.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	DownloadURL(ctx context.Context, path string) (string, error)
}

// Session is an authenticated identity issued by the identity provider.
type Session struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// SessionSource delivers session-change notifications. The callback fires
// immediately on subscribe with the current session (nil when absent) and
// again on every sign-in and sign-out.
type SessionSource interface {
	Listen(ctx context.Context, fn func(*Session)) Subscription
	SignOut(ctx context.Context) error
}
