package sync

import (
	"strings"

	"go.uber.org/zap"

	"schoolmaps-sync-go/internal/models"
	"schoolmaps-sync-go/internal/remote"
)

// ensureCollections reconciles the user-keyed collection listeners (calendar
// events and recent files) against the given uid, then the subject-scoped
// listener. An empty or guest uid means no remote listeners: the outputs
// reset to empty so stale data never lingers after its key becomes invalid.
// When the key changes, the old listeners are cancelled before the new ones
// open, so there is no window in which two users' data could union.
func (e *Engine) ensureCollections(uid string) {
	key := uid
	if uid == models.GuestUID {
		key = ""
	}

	e.mu.Lock()
	if key == e.collKey {
		e.mu.Unlock()
		e.ensureSubjectListener(uid)
		return
	}
	e.collKey = key
	e.collGen++
	gen := e.collGen
	oldEvents := e.eventsSub
	oldRecent := e.recentSub
	e.eventsSub, e.recentSub = nil, nil
	e.events = []models.CalendarEvent{}
	e.recentFiles = []models.FileData{}
	e.mu.Unlock()

	if oldEvents != nil {
		oldEvents.Cancel()
	}
	if oldRecent != nil {
		oldRecent.Cancel()
	}

	if key != "" {
		e.openUserCollections(key, gen)
	}
	e.ensureSubjectListener(uid)
}

func (e *Engine) openUserCollections(uid string, gen int) {
	eventsQuery := remote.CollectionQuery{
		Path:    remote.EventsPath(e.opts.AppID, uid),
		OrderBy: "start",
	}
	eventsSub := e.docs.ListenCollection(e.ctx, eventsQuery,
		func(docs []remote.Document) {
			events := make([]models.CalendarEvent, 0, len(docs))
			for _, d := range docs {
				events = append(events, models.EventFromDoc(d.ID, d.Data))
			}
			e.mu.Lock()
			if gen == e.collGen {
				e.events = events
			}
			e.mu.Unlock()
		},
		func(err error) {
			// Non-fatal: the collection stays at its last-known value.
			e.log.Error("calendar events listener failed", zap.String("uid", uid), zap.Error(err))
		},
	)

	recentQuery := remote.CollectionQuery{
		Path:    remote.FilesPath(e.opts.AppID),
		Filters: []remote.Filter{{Field: "ownerId", Value: uid}},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   5,
	}
	recentSub := e.docs.ListenCollection(e.ctx, recentQuery,
		func(docs []remote.Document) {
			files := make([]models.FileData, 0, len(docs))
			for _, d := range docs {
				files = append(files, models.FileFromDoc(d.ID, d.Data))
			}
			e.mu.Lock()
			if gen == e.collGen {
				e.recentFiles = files
			}
			e.mu.Unlock()
		},
		func(err error) {
			e.log.Error("recent files listener failed", zap.String("uid", uid), zap.Error(err))
		},
	)

	e.mu.Lock()
	if gen == e.collGen {
		e.eventsSub = eventsSub
		e.recentSub = recentSub
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	eventsSub.Cancel()
	recentSub.Cancel()
}

// SelectSubject changes the subject scope. An empty subject deselects.
func (e *Engine) SelectSubject(subject string) {
	e.mu.Lock()
	e.currentSubject = subject
	uid := ""
	if e.user != nil {
		uid = e.user.UID
	}
	e.mu.Unlock()

	e.ensureSubjectListener(uid)
}

// ensureSubjectListener reconciles the subject-scoped file listener against
// the (uid, subject) key.
func (e *Engine) ensureSubjectListener(uid string) {
	e.mu.Lock()
	subject := e.currentSubject
	key := ""
	if uid != "" && uid != models.GuestUID && subject != "" {
		key = uid + "\x00" + subject
	}
	if key == e.subjectKey {
		e.mu.Unlock()
		return
	}
	e.subjectKey = key
	e.subjectGen++
	gen := e.subjectGen
	old := e.subjectSub
	e.subjectSub = nil
	e.subjectFiles = []models.FileData{}
	e.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	if key == "" {
		return
	}

	query := remote.CollectionQuery{
		Path: remote.FilesPath(e.opts.AppID),
		Filters: []remote.Filter{
			{Field: "ownerId", Value: uid},
			{Field: "subject", Value: subject},
		},
		OrderBy: "createdAt",
		Desc:    true,
	}
	sub := e.docs.ListenCollection(e.ctx, query,
		func(docs []remote.Document) {
			files := make([]models.FileData, 0, len(docs))
			for _, d := range docs {
				files = append(files, models.FileFromDoc(d.ID, d.Data))
			}
			e.mu.Lock()
			if gen == e.subjectGen {
				e.subjectFiles = files
			}
			e.mu.Unlock()
		},
		func(err error) {
			e.log.Error("subject files listener failed",
				zap.String("uid", uid), zap.String("subject", subject), zap.Error(err))
		},
	)

	e.mu.Lock()
	if gen == e.subjectGen {
		e.subjectSub = sub
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	sub.Cancel()
}

// FilterFiles narrows files to those whose title or description contains the
// query, case-insensitively. An empty or all-whitespace query returns the set
// unchanged; any other query matches literally, surrounding whitespace
// included. The input is never mutated.
func FilterFiles(files []models.FileData, query string) []models.FileData {
	if strings.TrimSpace(query) == "" {
		return append([]models.FileData{}, files...)
	}
	query = strings.ToLower(query)
	out := make([]models.FileData, 0, len(files))
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Title), query) ||
			(f.Description != "" && strings.Contains(strings.ToLower(f.Description), query)) {
			out = append(out, f)
		}
	}
	return out
}
