// Package ui implements the stylekit terminal browser with Bubble Tea.
//
// The Model never owns catalog data. Every key that changes what is shown
// calls the browser.Controller and then re-reads its Snapshot, so the UI is
// a thin view over the controller's Catalog, View and favorites-mode flag.
//
// Layout:
//
//	┌ header: site, load state, count, favorites marker, last sync ┐
//	│ command bar (or the search prompt while typing)              │
//	├──── Templates · latest ────┬──────────── Details ───────────┤
//	│ ★ Hero Split · hero  9     │ Hero Split                      │
//	│   Pricing · section  7     │ ID  12  Type  Hero ...          │
//	└────────────────────────────┴─────────────────────────────────┘
//
// Load, Refresh and MarkFavorite block on the network, so they run as
// tea.Cmds and report back as messages. While a fetch is in flight a tick
// re-reads the snapshot so the header can show progress.
//
// Esc resets the controller the same way closing the library dialog does.
// Theme and sort choices are written back through PrefsUpdater.
package ui
