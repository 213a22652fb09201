package sync

import (
	"context"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/localstate"
	"schoolmaps-sync-go/internal/models"
)

// reconcilePreferencesLocked adopts server-confirmed theme and language into
// the local UI state and the persisted cache. Server wins, one-directional;
// it runs after every profile projection, including the user's own
// optimistic ones, so a pending local change is never clobbered by a stale
// snapshot. It also arms first-run onboarding exactly once. Caller must hold
// e.mu.
func (e *Engine) reconcilePreferencesLocked(u *models.AppUser) {
	if u.ThemePreference != "" && u.ThemePreference != e.theme {
		e.theme = u.ThemePreference
		e.persistPref(e.local.SetTheme, u.ThemePreference, "theme")
	}
	if u.LanguagePreference != "" && u.LanguagePreference != e.language {
		e.language = u.LanguagePreference
		e.persistPref(e.local.SetLanguage, u.LanguagePreference, "language")
	}
	if !u.HasCompletedTutorial && e.local.ConsumeMarker(localstate.MarkerJustRegistered) {
		e.tutorialOpen = true
	}
}

func (e *Engine) persistPref(set func(string) error, v, what string) {
	if err := set(v); err != nil {
		e.log.Warn("failed to cache preference", zap.String("pref", what), zap.Error(err))
	}
}

// Theme returns the active theme identifier.
func (e *Engine) Theme() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme
}

// Language returns the active language code.
func (e *Engine) Language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// TutorialOpen reports whether first-run onboarding is currently triggered.
func (e *Engine) TutorialOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tutorialOpen
}

// FinishTutorial closes onboarding and marks the tutorial complete through
// the regular profile mutation path, so it never repeats. Skipping uses the
// same call.
func (e *Engine) FinishTutorial(ctx context.Context) error {
	e.mu.Lock()
	e.tutorialOpen = false
	e.mu.Unlock()
	return e.UpdateProfile(ctx, map[string]interface{}{"hasCompletedTutorial": true})
}
