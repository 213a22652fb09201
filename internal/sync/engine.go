// Package sync implements the client-side real-time state synchronization
// engine: session tracking, the live user-profile projection, the dynamic
// collection subscriptions, optimistic mutation with re-sync on failure,
// connectivity transitions and preference reconciliation.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/localstate"
	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
)

// Status is the tri-state application status.
type Status string

const (
	StatusInitializing    Status = "initializing"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// DefaultSplashDelay is the minimum visible duration of the loading state:
// the user-facing status flips no earlier than this after resolution. It
// gates only the published status, never subscription setup or teardown.
const DefaultSplashDelay = 1500 * time.Millisecond

// User-facing notice texts.
const (
	msgBackOnline          = "You are back online."
	msgConfirmLogout       = "Are you sure you want to log out?"
	msgLogoutSuccess       = "You have been signed out."
	msgProfileLoadFailed   = "Your profile could not be loaded. Please sign in again."
	msgSaveSettingsFailed  = "Saving your settings failed. Your data has been restored."
	msgAvatarUploadOK      = "Profile picture updated."
	msgAvatarUploadFailed  = "Uploading your profile picture failed."
	msgShareCopied         = "Link to '%s' copied."
	msgShareCopyFailed     = "Copying the share link failed."
)

// Options configures an Engine.
type Options struct {
	AppID       string
	SplashDelay time.Duration // 0 means DefaultSplashDelay
	Logger      *zap.Logger
	Documents   remote.DocumentStore
	Objects     remote.ObjectStore
	Sessions    remote.SessionSource
	Local       *localstate.Store
}

// Engine owns the authoritative local projection of the remote state. All of
// its outputs are single-writer (the engine) / multi-reader (the accessors
// below); collaborators mutate only through the engine's operations.
type Engine struct {
	opts     Options
	log      *zap.Logger
	docs     remote.DocumentStore
	objects  remote.ObjectStore
	sessions remote.SessionSource
	local    *localstate.Store
	notifier *Notifier

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards all projected state. Listener callbacks deliver into this
	// lock, which is the Go rendition of the single cooperative scheduler:
	// every event is applied atomically with respect to every other.
	//
	// Listener replacement is logically atomic: the generation counter for a
	// slot is bumped and its handle detached under mu, then the old handle
	// is cancelled with no lock held (Cancel waits for in-flight callbacks,
	// and callbacks take mu). A callback whose captured generation is stale
	// drops its delivery, so data from a superseded listener is never
	// applied.
	mu             sync.Mutex
	status         Status
	pendingStatus  Status // armed delayed flip target, "" when none
	session        *remote.Session
	user           *models.AppUser
	theme          string
	language       string
	online         bool
	tutorialOpen   bool
	currentSubject string
	searchQuery    string
	events         []models.CalendarEvent
	recentFiles    []models.FileData
	subjectFiles   []models.FileData

	statusGen  int
	profileGen int
	collGen    int
	subjectGen int

	sessionSub remote.Subscription
	profileSub remote.Subscription
	eventsSub  remote.Subscription
	recentSub  remote.Subscription
	subjectSub remote.Subscription
	collKey    string
	subjectKey string
}

// New creates an Engine. It does not open any subscriptions until Start.
func New(opts Options) (*Engine, error) {
	if opts.Documents == nil || opts.Objects == nil || opts.Sessions == nil {
		return nil, errors.New("sync: Documents, Objects and Sessions are required")
	}
	if opts.Local == nil {
		return nil, errors.New("sync: Local state store is required")
	}
	if opts.AppID == "" {
		return nil, errors.New("sync: AppID is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SplashDelay == 0 {
		opts.SplashDelay = DefaultSplashDelay
	}

	e := &Engine{
		opts:     opts,
		log:      opts.Logger.Named("sync"),
		docs:     opts.Documents,
		objects:  opts.Objects,
		sessions: opts.Sessions,
		local:    opts.Local,
		notifier: NewNotifier(opts.Logger),
		status:   StatusInitializing,
		online:   true,
		theme:    opts.Local.Theme(),
		language: opts.Local.Language(),
	}
	if e.theme == "" {
		e.theme = models.DefaultTheme
	}
	if e.language == "" {
		e.language = models.DefaultLanguage
	}
	return e, nil
}

// Start subscribes to session changes. The session source fires immediately
// with the current session, so by the time Start returns the engine has begun
// resolving the initial state.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.sessionSub = e.sessions.Listen(e.ctx, e.handleSessionChange)
}

// Close tears down every live listener. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	e.statusGen++
	e.pendingStatus = ""
	e.profileGen++
	e.collGen++
	e.subjectGen++
	subs := []remote.Subscription{e.sessionSub, e.profileSub, e.eventsSub, e.recentSub, e.subjectSub}
	e.sessionSub, e.profileSub, e.eventsSub, e.recentSub, e.subjectSub = nil, nil, nil, nil, nil
	e.collKey = ""
	e.subjectKey = ""
	e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	for _, sub := range subs {
		if sub != nil {
			sub.Cancel()
		}
	}
}

// Notifier exposes the single notice slot shared by all components.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// scheduleStatus arms the delayed user-visible status flip. A newer
// resolution supersedes a pending one, so the comparison runs against the
// armed target when a flip is pending, not the published status: a resolution
// back to the current status must still disarm a pending flip away from it.
func (e *Engine) scheduleStatus(target Status) {
	e.mu.Lock()
	effective := e.status
	if e.pendingStatus != "" {
		effective = e.pendingStatus
	}
	if effective == target {
		e.mu.Unlock()
		return
	}
	e.statusGen++
	gen := e.statusGen
	e.pendingStatus = target
	delay := e.opts.SplashDelay
	e.mu.Unlock()

	time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.statusGen {
			return
		}
		e.status = target
		e.pendingStatus = ""
		e.log.Info("status changed", zap.String("status", string(target)))
	})
}

// Status returns the current user-visible application status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// State is a read-only snapshot of the engine's top-level state.
type State struct {
	Status         Status          `json:"status"`
	Online         bool            `json:"online"`
	User           *models.AppUser `json:"user,omitempty"`
	CurrentSubject string          `json:"currentSubject,omitempty"`
	SearchQuery    string          `json:"searchQuery,omitempty"`
	Theme          string          `json:"theme"`
	Language       string          `json:"language"`
	TutorialOpen   bool            `json:"tutorialOpen"`
	Notice         *Notice         `json:"notice,omitempty"`
}

// State copies out the current top-level state.
func (e *Engine) State() State {
	e.mu.Lock()
	st := State{
		Status:         e.status,
		Online:         e.online,
		CurrentSubject: e.currentSubject,
		SearchQuery:    e.searchQuery,
		Theme:          e.theme,
		Language:       e.language,
		TutorialOpen:   e.tutorialOpen,
	}
	if e.user != nil {
		u := e.user.Clone()
		st.User = &u
	}
	e.mu.Unlock()

	st.Notice = e.notifier.Current()
	return st
}

// Events returns the current calendar events, start ascending.
func (e *Engine) Events() []models.CalendarEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.CalendarEvent{}, e.events...)
}

// RecentFiles returns the five most recently created files.
func (e *Engine) RecentFiles() []models.FileData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.FileData{}, e.recentFiles...)
}

// SubjectFiles returns the subject-scoped files, narrowed by the current
// search query.
func (e *Engine) SubjectFiles() []models.FileData {
	e.mu.Lock()
	files := append([]models.FileData{}, e.subjectFiles...)
	query := e.searchQuery
	e.mu.Unlock()
	return FilterFiles(files, query)
}

// SetSearchQuery updates the local search filter over the subject files. The
// underlying collection is never touched.
func (e *Engine) SetSearchQuery(q string) {
	e.mu.Lock()
	e.searchQuery = q
	e.mu.Unlock()
}
