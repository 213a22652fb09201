package sync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
)

var (
	// ErrNoSession is returned when a mutation is requested without an
	// authenticated user.
	ErrNoSession = errors.New("no authenticated session")
	// ErrGuestSession is returned when a guest demo session attempts a
	// remote mutation.
	ErrGuestSession = errors.New("guest session cannot mutate remote state")
)

// UpdateProfile applies a partial profile mutation optimistically and
// persists exactly those fields with a merge-write. On remote failure the
// optimistic overlay is not reverted by hand; the engine re-subscribes to the
// canonical document and lets its next snapshot overwrite the local value,
// then surfaces a failure notice.
func (e *Engine) UpdateProfile(ctx context.Context, fields map[string]interface{}) error {
	e.mu.Lock()
	if e.user == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	if e.user.UID == models.GuestUID {
		e.mu.Unlock()
		return ErrGuestSession
	}
	uid := e.user.UID
	updated := models.ApplyPartial(*e.user, fields)
	e.user = &updated
	// Reconciliation runs on the optimistic projection too, so a pending
	// preference change is already the local value before the write is
	// issued.
	e.reconcilePreferencesLocked(&updated)
	e.mu.Unlock()

	if err := e.docs.MergeWrite(ctx, remote.ProfilePath(e.opts.AppID, uid), fields); err != nil {
		e.log.Error("profile merge-write failed", zap.String("uid", uid), zap.Error(err))
		e.notifier.Show(msgSaveSettingsFailed)
		e.resubscribeProfile()
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UploadAvatar is the two-step avatar mutation: binary upload to the object
// store, then a merge-write of the resulting retrieval URL. No optimistic
// change is applied before the upload succeeds; failure at either step leaves
// the previous avatar untouched.
func (e *Engine) UploadAvatar(ctx context.Context, filename string, r io.Reader, contentType string) error {
	e.mu.Lock()
	if e.user == nil {
		e.mu.Unlock()
		return ErrNoSession
	}
	if e.user.UID == models.GuestUID {
		e.mu.Unlock()
		return ErrGuestSession
	}
	uid := e.user.UID
	e.mu.Unlock()

	path := remote.AvatarPath(uid, filename)
	if err := e.objects.Upload(ctx, path, r, contentType); err != nil {
		e.log.Error("avatar upload failed", zap.String("path", path), zap.Error(err))
		e.notifier.Show(msgAvatarUploadFailed)
		return fmt.Errorf("upload avatar: %w", err)
	}

	url, err := e.objects.DownloadURL(ctx, path)
	if err != nil {
		e.log.Error("avatar URL resolution failed", zap.String("path", path), zap.Error(err))
		e.notifier.Show(msgAvatarUploadFailed)
		return fmt.Errorf("resolve avatar URL: %w", err)
	}

	if err := e.docs.MergeWrite(ctx, remote.ProfilePath(e.opts.AppID, uid),
		map[string]interface{}{"profilePictureUrl": url}); err != nil {
		e.log.Error("avatar merge-write failed", zap.String("uid", uid), zap.Error(err))
		e.notifier.Show(msgAvatarUploadFailed)
		return fmt.Errorf("persist avatar URL: %w", err)
	}

	e.mu.Lock()
	if e.user != nil && e.user.UID == uid {
		u := e.user.Clone()
		u.ProfilePictureURL = url
		e.user = &u
	}
	e.mu.Unlock()

	e.notifier.Show(msgAvatarUploadOK)
	return nil
}

// ShareResult records the outcome of a collaborator's clipboard attempt and
// surfaces the matching notice.
func (e *Engine) ShareResult(ok bool, title string) {
	if ok {
		e.notifier.Show(fmt.Sprintf(msgShareCopied, title))
		return
	}
	e.notifier.Show(msgShareCopyFailed)
}
