package sync

import (
	"time"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/localstate"
	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
)

// handleSessionChange is the single entry point for identity transitions. It
// fires on subscribe with the current session and again on every sign-in and
// sign-out. The old profile listener is closed before any new one opens, so
// snapshots from a superseded identity never interleave.
func (e *Engine) handleSessionChange(s *remote.Session) {
	e.mu.Lock()
	e.session = s
	e.profileGen++
	gen := e.profileGen
	old := e.profileSub
	e.profileSub = nil
	e.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	if s == nil {
		e.handleSignedOut()
		return
	}

	e.log.Info("session resolved", zap.String("uid", s.UID))

	if s.UID == models.GuestUID {
		// Demo session: synthesize a default profile, no remote listeners.
		u := models.ProjectUser(models.Claims{UID: s.UID, DisplayName: models.FallbackUserName},
			nil, e.cachedPrefs(), time.Now().UTC())
		e.mu.Lock()
		e.user = &u
		e.reconcilePreferencesLocked(&u)
		e.mu.Unlock()
		e.ensureCollections(s.UID)
		e.scheduleStatus(StatusAuthenticated)
		return
	}

	e.openProfile(s, gen)
}

// handleSignedOut clears all projected state. The "signed out successfully"
// notice is shown only when the transition was caused by an explicit logout,
// tracked by a cross-restart marker rather than in-memory state.
func (e *Engine) handleSignedOut() {
	e.mu.Lock()
	e.user = nil
	e.mu.Unlock()

	e.ensureCollections("")

	if e.local.ConsumeMarker(localstate.MarkerLogout) {
		e.notifier.Show(msgLogoutSuccess)
	}
	e.scheduleStatus(StatusUnauthenticated)
}

// BeginLogout runs the confirm-gated half of the two-phase logout protocol:
// the returned notice asks for confirmation, and confirming arms the logout
// marker before the provider's sign-out is invoked.
func (e *Engine) BeginLogout() *Notice {
	return e.notifier.ShowConfirm(msgConfirmLogout, e.confirmLogout, func() {})
}

func (e *Engine) confirmLogout() {
	if err := e.local.SetMarker(localstate.MarkerLogout); err != nil {
		e.log.Warn("failed to arm logout marker", zap.Error(err))
	}
	if err := e.sessions.SignOut(e.ctx); err != nil {
		e.log.Error("sign-out failed", zap.Error(err))
	}
}
