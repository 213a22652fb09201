package remote

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// tokenSessionSource is a SessionSource for a headless daemon that
// synchronizes a single identity. The identity is resolved once from a
// Firebase ID token; when no token is configured the daemon runs a guest
// session. SignOut clears the session and notifies listeners, mirroring the
// provider's sign-out event.
type tokenSessionSource struct {
	mu        sync.Mutex
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
	logger    *zap.Logger
}

// NewTokenSessionSource verifies idToken against the Firebase Auth client and
// builds a session from its claims. An empty idToken yields a guest session
// with the given uid.
func NewTokenSessionSource(ctx context.Context, authClient *auth.Client, idToken, guestUID string, logger *zap.Logger) (SessionSource, error) {
	src := &tokenSessionSource{
		listeners: make(map[int]func(*Session)),
		logger:    logger.Named("session"),
	}

	if idToken == "" {
		src.session = &Session{UID: guestUID}
		src.logger.Warn("no ID token configured, running guest demo session")
		return src, nil
	}

	token, err := authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify ID token: %w", err)
	}
	sess := &Session{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		sess.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		sess.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		sess.PhotoURL = picture
	}
	src.session = sess
	src.logger.Info("session resolved", zap.String("uid", sess.UID))
	return src, nil
}

// Listen registers fn and fires it immediately with the current session.
func (s *tokenSessionSource) Listen(ctx context.Context, fn func(*Session)) Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.session
	s.mu.Unlock()

	fn(current)

	return &sessionHandle{src: s, id: id}
}

// SignOut clears the current session and delivers the sign-out notification
// to every listener.
func (s *tokenSessionSource) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	s.session = nil
	fns := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

type sessionHandle struct {
	src  *tokenSessionSource
	id   int
	once sync.Once
}

func (h *sessionHandle) Cancel() {
	h.once.Do(func() {
		h.src.mu.Lock()
		delete(h.src.listeners, h.id)
		h.src.mu.Unlock()
	})
}
