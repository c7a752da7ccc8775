package state

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/five82/stylekit/internal/library"
)

// Marker records a favorite with the remote library.
type Marker interface {
	MarkFavorite(ctx context.Context, id library.TemplateID, favorite bool) error
}

// Favorites coordinates concurrent access to the favorite template ids.
type Favorites struct {
	mu      sync.RWMutex
	ids     map[library.TemplateID]struct{}
	remote  Marker
	persist func(ids []library.TemplateID) error
}

// NewFavorites seeds the set with ids. remote may be nil to keep favorites local.
func NewFavorites(ids []library.TemplateID, remote Marker) *Favorites {
	f := &Favorites{
		ids:    make(map[library.TemplateID]struct{}, len(ids)),
		remote: remote,
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		f.ids[id] = struct{}{}
	}
	return f
}

// OnChange registers a hook that receives the full id list after each
// successful Mark.
func (f *Favorites) OnChange(persist func(ids []library.TemplateID) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persist = persist
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id library.TemplateID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// IDs returns the favorite ids in sorted order.
func (f *Favorites) IDs() []library.TemplateID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sortedLocked()
}

// Mark records the favorite remotely first; the local set only changes once
// the library accepted it.
func (f *Favorites) Mark(ctx context.Context, id library.TemplateID, favorite bool) error {
	if id == "" {
		return fmt.Errorf("template id required")
	}
	if f.remote != nil {
		if err := f.remote.MarkFavorite(ctx, id, favorite); err != nil {
			return err
		}
	}

	f.mu.Lock()
	if favorite {
		f.ids[id] = struct{}{}
	} else {
		delete(f.ids, id)
	}
	ids := f.sortedLocked()
	persist := f.persist
	f.mu.Unlock()

	if persist == nil {
		return nil
	}
	if err := persist(ids); err != nil {
		return fmt.Errorf("persist favorites: %w", err)
	}
	return nil
}

func (f *Favorites) sortedLocked() []library.TemplateID {
	out := make([]library.TemplateID, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
