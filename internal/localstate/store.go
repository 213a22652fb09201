// Package localstate persists the small amount of client-side state that
// survives a restart but is never authoritative: the last chosen theme and
// language (superseded by server-confirmed profile values once available) and
// two one-shot markers used to carry intent across a reload.
package localstate

import (
	"errors"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

const (
	keyTheme    = "themeColor"
	keyLanguage = "appLanguage"

	// MarkerLogout is set before sign-out is invoked and consumed exactly
	// once on the next unauthenticated transition.
	MarkerLogout = "logout-event"
	// MarkerJustRegistered is set by the registration flow and consumed by
	// the first-run onboarding trigger.
	MarkerJustRegistered = "justRegistered"
)

// Store is a diskv-backed key/value store for local persisted state.
type Store struct {
	d *diskv.Diskv
}

// Open creates (or reuses) a store rooted at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("localstate: dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 64 * 1024,
	})}, nil
}

func (s *Store) get(key string) string {
	val, err := s.d.Read(key)
	if err != nil {
		return ""
	}
	return string(val)
}

// Theme returns the cached theme identifier, or "" when none is cached.
func (s *Store) Theme() string { return s.get(keyTheme) }

// SetTheme caches the theme identifier.
func (s *Store) SetTheme(v string) error { return s.d.Write(keyTheme, []byte(v)) }

// Language returns the cached language code, or "" when none is cached.
func (s *Store) Language() string { return s.get(keyLanguage) }

// SetLanguage caches the language code.
func (s *Store) SetLanguage(v string) error { return s.d.Write(keyLanguage, []byte(v)) }

// SetMarker arms a one-shot marker.
func (s *Store) SetMarker(name string) error { return s.d.Write(name, []byte("true")) }

// ConsumeMarker reports whether the marker was armed and clears it. A marker
// is observed at most once.
func (s *Store) ConsumeMarker(name string) bool {
	if !s.d.Has(name) {
		return false
	}
	if err := s.d.Erase(name); err != nil {
		return false
	}
	return true
}
