package sync

import (
	"context"
	"fmt"
	"io"
	"sync"

	"schoolmaps-sync-go/internal/remote"
)

// The fakes below implement the remote interfaces in-memory. Deliveries run
// on the test goroutine and each listener records an ordered op log, so tests
// can assert close-before-open sequencing.

type fakeSub struct {
	once   sync.Once
	cancel func()
}

func (s *fakeSub) Cancel() { s.once.Do(s.cancel) }

type docListener struct {
	path      string
	onSnap    func(remote.Document)
	onErr     func(error)
	cancelled bool
}

type collListener struct {
	query     remote.CollectionQuery
	onSnap    func([]remote.Document)
	onErr     func(error)
	cancelled bool
}

type mergeWrite struct {
	path   string
	fields map[string]interface{}
}

type fakeDocumentStore struct {
	mu       sync.Mutex
	docs     []*docListener
	colls    []*collListener
	writes   []mergeWrite
	writeErr error
	ops      []string
}

func queryKey(q remote.CollectionQuery) string {
	key := q.Path
	for _, f := range q.Filters {
		key += fmt.Sprintf("|%s=%v", f.Field, f.Value)
	}
	return key
}

func (f *fakeDocumentStore) ListenDocument(_ context.Context, path string, onSnap func(remote.Document), onErr func(error)) remote.Subscription {
	l := &docListener{path: path, onSnap: onSnap, onErr: onErr}
	f.mu.Lock()
	f.docs = append(f.docs, l)
	f.ops = append(f.ops, "open:"+path)
	f.mu.Unlock()
	return &fakeSub{cancel: func() {
		f.mu.Lock()
		l.cancelled = true
		f.ops = append(f.ops, "cancel:"+path)
		f.mu.Unlock()
	}}
}

func (f *fakeDocumentStore) ListenCollection(_ context.Context, q remote.CollectionQuery, onSnap func([]remote.Document), onErr func(error)) remote.Subscription {
	l := &collListener{query: q, onSnap: onSnap, onErr: onErr}
	f.mu.Lock()
	f.colls = append(f.colls, l)
	f.ops = append(f.ops, "open:"+queryKey(q))
	f.mu.Unlock()
	return &fakeSub{cancel: func() {
		f.mu.Lock()
		l.cancelled = true
		f.ops = append(f.ops, "cancel:"+queryKey(q))
		f.mu.Unlock()
	}}
}

func (f *fakeDocumentStore) MergeWrite(_ context.Context, path string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, mergeWrite{path: path, fields: fields})
	return nil
}

// deliverDoc pushes a snapshot to the newest live listener on path. It
// reports whether such a listener existed.
func (f *fakeDocumentStore) deliverDoc(path string, d remote.Document) bool {
	f.mu.Lock()
	var target *docListener
	for i := len(f.docs) - 1; i >= 0; i-- {
		if f.docs[i].path == path && !f.docs[i].cancelled {
			target = f.docs[i]
			break
		}
	}
	f.mu.Unlock()
	if target == nil {
		return false
	}
	target.onSnap(d)
	return true
}

// failDoc pushes a terminal error to the newest live listener on path.
func (f *fakeDocumentStore) failDoc(path string, err error) bool {
	f.mu.Lock()
	var target *docListener
	for i := len(f.docs) - 1; i >= 0; i-- {
		if f.docs[i].path == path && !f.docs[i].cancelled {
			target = f.docs[i]
			break
		}
	}
	f.mu.Unlock()
	if target == nil {
		return false
	}
	target.onErr(err)
	return true
}

// deliverColl pushes a result set to the newest live collection listener
// matching key.
func (f *fakeDocumentStore) deliverColl(key string, docs []remote.Document) bool {
	f.mu.Lock()
	var target *collListener
	for i := len(f.colls) - 1; i >= 0; i-- {
		if queryKey(f.colls[i].query) == key && !f.colls[i].cancelled {
			target = f.colls[i]
			break
		}
	}
	f.mu.Unlock()
	if target == nil {
		return false
	}
	target.onSnap(docs)
	return true
}

func (f *fakeDocumentStore) liveDocListeners(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.docs {
		if l.path == path && !l.cancelled {
			n++
		}
	}
	return n
}

func (f *fakeDocumentStore) liveCollListeners() []remote.CollectionQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remote.CollectionQuery
	for _, l := range f.colls {
		if !l.cancelled {
			out = append(out, l.query)
		}
	}
	return out
}

func (f *fakeDocumentStore) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.ops...)
}

func (f *fakeDocumentStore) recordedWrites() []mergeWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mergeWrite{}, f.writes...)
}

func (f *fakeDocumentStore) setWriteErr(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

type upload struct {
	path        string
	contentType string
	data        string
}

type fakeObjectStore struct {
	mu        sync.Mutex
	uploads   []upload
	uploadErr error
	urlErr    error
}

func (f *fakeObjectStore) Upload(_ context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, upload{path: path, contentType: contentType, data: string(data)})
	return nil
}

func (f *fakeObjectStore) DownloadURL(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://storage.example/" + path, nil
}

type sessionListener struct {
	fn        func(*remote.Session)
	cancelled bool
}

type fakeSessionSource struct {
	mu        sync.Mutex
	current   *remote.Session
	listeners []*sessionListener
	signOuts  int
}

func (f *fakeSessionSource) Listen(_ context.Context, fn func(*remote.Session)) remote.Subscription {
	l := &sessionListener{fn: fn}
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	cur := f.current
	f.mu.Unlock()
	fn(cur)
	return &fakeSub{cancel: func() {
		f.mu.Lock()
		l.cancelled = true
		f.mu.Unlock()
	}}
}

func (f *fakeSessionSource) SignOut(_ context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	f.set(nil)
	return nil
}

func (f *fakeSessionSource) set(s *remote.Session) {
	f.mu.Lock()
	f.current = s
	fns := make([]func(*remote.Session), 0, len(f.listeners))
	for _, l := range f.listeners {
		if !l.cancelled {
			fns = append(fns, l.fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeSessionSource) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts
}
