// Package browser implements the template browser controller.
//
// The controller keeps three pieces of state: the Catalog, fetched wholesale
// from the library and never patched; the View, a subset or reordering of the
// Catalog that is what the user sees; and the favorites-mode flag. Every view
// operation is a transform re-derived from the Catalog (filter, sort) or from
// the current View (search, entering favorites-mode):
//
//	FilterByType(t)   Catalog -> templates of type t ("all" = Catalog)
//	SortBy(key)       Catalog -> stable order by key; leaves favorites-mode
//	Search(q)         View    -> title/tag matches; none or "" = Catalog
//	ToggleFavorites() View    -> favorites; toggling back = Catalog
//	Reset()           Catalog; leaves favorites-mode
//
// Load and Refresh are the only blocking operations. A failed fetch is
// returned as a *FetchError matching ErrNetwork and kept as Snapshot.LastError;
// nothing is retried.
//
// Collaborators are injected: a Fetcher for the catalog, a Favorites set and
// an optional FavoriteMarker that MarkFavorite forwards to.
package browser
