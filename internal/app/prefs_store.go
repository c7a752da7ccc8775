package app

import (
	"sync"

	"github.com/five82/stylekit/internal/prefs"
)

// PrefsStore serialises preference updates from the UI and the favorites
// store so concurrent writers never clobber each other's fields.
type PrefsStore struct {
	mu    sync.Mutex
	path  string
	prefs prefs.Prefs
}

// NewPrefsStore wraps already-loaded preferences.
func NewPrefsStore(path string, p prefs.Prefs) *PrefsStore {
	return &PrefsStore{path: path, prefs: p}
}

// Get returns a copy of the current preferences.
func (s *PrefsStore) Get() prefs.Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.prefs
	out.Favorites = append([]string(nil), s.prefs.Favorites...)
	return out
}

// Update applies fn and writes the result. The in-memory copy only changes
// when the write succeeds.
func (s *PrefsStore) Update(fn func(p *prefs.Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	next.Favorites = append([]string(nil), s.prefs.Favorites...)
	fn(&next)
	if err := prefs.Save(s.path, next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}
