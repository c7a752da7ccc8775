// Package state holds the user's favorite templates.
//
// Favorites is the store behind the browser's favorites-mode and its
// MarkFavorite operation. It is read from the UI goroutine and written from
// Bubble Tea commands, so access goes through a sync.RWMutex.
//
// Mark follows a remote-first rule:
//
//	Mark(ctx, id, true)
//	→ remote.MarkFavorite(ctx, id, true)   error: set unchanged, error returned
//	→ set[id] = struct{}{}
//	→ persist(sorted ids)                   optional OnChange hook (prefs file)
//
// The set is seeded at construction, normally from prefs.
package state
