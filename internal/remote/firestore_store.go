package remote

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreStore implements DocumentStore on top of Firestore's native
// snapshot listeners.
type firestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore creates a DocumentStore backed by the given Firestore
// client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) DocumentStore {
	if client == nil {
		panic("Firestore client is not initialized for FirestoreStore")
	}
	return &firestoreStore{client: client, logger: logger.Named("firestore")}
}

// listenerHandle tears down one snapshot goroutine. Cancel blocks until the
// goroutine has exited, so no callback can fire after Cancel returns.
type listenerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *listenerHandle) Cancel() {
	h.cancel()
	<-h.done
}

func (s *firestoreStore) ListenDocument(ctx context.Context, path string, onSnap func(Document), onErr func(error)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		it := s.client.Doc(path).Snapshots(ctx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				s.logger.Error("document listener failed", zap.String("path", path), zap.Error(err))
				onErr(fmt.Errorf("listen %s: %w", path, err))
				return
			}
			doc := Document{ID: snap.Ref.ID, Exists: snap.Exists()}
			if snap.Exists() {
				doc.Data = snap.Data()
			}
			onSnap(doc)
		}
	}()

	return &listenerHandle{cancel: cancel, done: done}
}

func (s *firestoreStore) ListenCollection(ctx context.Context, q CollectionQuery, onSnap func([]Document), onErr func(error)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	query := s.buildQuery(q)
	go func() {
		defer close(done)
		it := query.Snapshots(ctx)
		defer it.Stop()
		for {
			qsnap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				s.logger.Error("collection listener failed", zap.String("path", q.Path), zap.Error(err))
				onErr(fmt.Errorf("listen %s: %w", q.Path, err))
				return
			}
			docs, err := collectDocuments(qsnap)
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				s.logger.Error("collection snapshot read failed", zap.String("path", q.Path), zap.Error(err))
				onErr(fmt.Errorf("read snapshot %s: %w", q.Path, err))
				return
			}
			onSnap(docs)
		}
	}()

	return &listenerHandle{cancel: cancel, done: done}
}

func (s *firestoreStore) buildQuery(q CollectionQuery) firestore.Query {
	query := s.client.Collection(q.Path).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func collectDocuments(qsnap *firestore.QuerySnapshot) ([]Document, error) {
	docs := make([]Document, 0)
	iter := qsnap.Documents
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Exists: true, Data: snap.Data()})
	}
	return docs, nil
}

// MergeWrite writes exactly the supplied fields, creating the document when
// it does not exist yet.
func (s *firestoreStore) MergeWrite(ctx context.Context, path string, fields map[string]interface{}) error {
	_, err := s.client.Doc(path).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("merge-write %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("merge-write %s: %w", path, err)
	}
	return nil
}
