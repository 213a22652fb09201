package sync

import (
	"time"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
)

// openProfile opens the live subscription on the identity's profile
// document. gen is the profile generation the listener belongs to;
// deliveries for a superseded generation are dropped.
func (e *Engine) openProfile(s *remote.Session, gen int) {
	claims := models.Claims{UID: s.UID, Email: s.Email, DisplayName: s.DisplayName, PhotoURL: s.PhotoURL}
	path := remote.ProfilePath(e.opts.AppID, s.UID)

	sub := e.docs.ListenDocument(e.ctx, path,
		func(doc remote.Document) { e.applyProfileSnapshot(gen, claims, doc) },
		func(err error) { e.handleProfileError(gen, claims.UID, err) },
	)

	e.mu.Lock()
	if gen == e.profileGen {
		e.profileSub = sub
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	// A newer identity arrived while this listener was being opened; it is
	// already stale.
	sub.Cancel()
}

// applyProfileSnapshot projects a profile document snapshot into a complete
// AppUser. A missing document is the new-user bootstrap path: a default
// profile is synthesized from the provider's claims instead of failing.
func (e *Engine) applyProfileSnapshot(gen int, claims models.Claims, doc remote.Document) {
	var data map[string]interface{}
	if doc.Exists {
		data = doc.Data
	}
	u := models.ProjectUser(claims, data, e.cachedPrefs(), time.Now().UTC())

	e.mu.Lock()
	if gen != e.profileGen {
		e.mu.Unlock()
		return
	}
	e.user = &u
	e.reconcilePreferencesLocked(&u)
	e.mu.Unlock()

	// The status flips only after the first snapshot has produced a user,
	// never on the bare session event.
	e.scheduleStatus(StatusAuthenticated)
	e.ensureCollections(u.UID)
}

// handleProfileError treats a profile listener failure as fatal for the
// session: the app cannot operate without an authoritative profile.
func (e *Engine) handleProfileError(gen int, uid string, err error) {
	e.mu.Lock()
	if gen != e.profileGen {
		e.mu.Unlock()
		return
	}
	// The erroring listener stops delivering on its own; invalidate its
	// generation and drop the handle rather than cancelling it from inside
	// its own callback.
	e.profileGen++
	e.profileSub = nil
	e.user = nil
	e.mu.Unlock()

	e.log.Error("profile listener failed, forcing unauthenticated",
		zap.String("uid", uid), zap.Error(err))
	e.notifier.Show(msgProfileLoadFailed)

	e.ensureCollections("")
	e.scheduleStatus(StatusUnauthenticated)
}

// resubscribeProfile drops the current profile listener and reopens it
// against the canonical document. Used after a failed optimistic write: the
// next snapshot overwrites whatever the optimistic overlay left behind.
func (e *Engine) resubscribeProfile() {
	e.mu.Lock()
	s := e.session
	if s == nil || s.UID == models.GuestUID {
		e.mu.Unlock()
		return
	}
	e.profileGen++
	gen := e.profileGen
	old := e.profileSub
	e.profileSub = nil
	e.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	e.openProfile(s, gen)
}

func (e *Engine) cachedPrefs() models.CachedPrefs {
	return models.CachedPrefs{Language: e.local.Language(), Theme: e.local.Theme()}
}
