package sync

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoticeNotFound is returned when resolving a notice that is no longer the
// visible one.
var ErrNoticeNotFound = errors.New("notice not found or already superseded")

// Notice is a transient notification or confirmation unit. At most one notice
// is visible at a time.
type Notice struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Confirmable bool   `json:"confirmable"`

	confirm func()
	cancel  func()
}

// Notifier owns the process-wide single notice slot. Showing a new notice
// supersedes the pending one; a superseded confirmation has its cancel action
// invoked before it is replaced, so no pending decision is silently dropped.
type Notifier struct {
	mu      sync.Mutex
	current *Notice
	logger  *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger.Named("notifier")}
}

// Show displays an informational notice, superseding any pending one.
func (n *Notifier) Show(text string) *Notice {
	return n.show(&Notice{ID: uuid.NewString(), Text: text})
}

// ShowConfirm displays a confirmation notice. Exactly one of confirm or
// cancel is invoked when the notice is resolved, or cancel if the notice is
// superseded first.
func (n *Notifier) ShowConfirm(text string, confirm, cancel func()) *Notice {
	return n.show(&Notice{
		ID:          uuid.NewString(),
		Text:        text,
		Confirmable: true,
		confirm:     confirm,
		cancel:      cancel,
	})
}

func (n *Notifier) show(notice *Notice) *Notice {
	n.mu.Lock()
	prev := n.current
	n.current = notice
	n.mu.Unlock()

	// The superseded notice is cancelled explicitly rather than dropped.
	if prev != nil && prev.cancel != nil {
		n.logger.Debug("superseding pending notice", zap.String("id", prev.ID))
		prev.cancel()
	}
	return notice
}

// Current returns the visible notice, or nil.
func (n *Notifier) Current() *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Resolve clears the notice with the given ID and invokes its confirm or
// cancel action. Resolving a stale ID is a no-op error: the notice it refers
// to has already been superseded or resolved.
func (n *Notifier) Resolve(id string, confirmed bool) error {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return ErrNoticeNotFound
	}
	notice := n.current
	n.current = nil
	n.mu.Unlock()

	action := notice.cancel
	if confirmed {
		action = notice.confirm
	}
	if action != nil {
		action()
	}
	return nil
}
