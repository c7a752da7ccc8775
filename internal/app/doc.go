// Package app is the composition root for stylekit.
//
// Setup loads config.toml and prefs.toml, opens the zap log file and wires
// the object graph:
//
//	config ──> library.Client ──┬──> browser.Controller ──> ui / cmd
//	prefs  ──> state.Favorites ─┘
//	               │
//	               └─> PrefsStore (favorites written back to prefs.toml)
//
// Run hands the controller to the Bubble Tea UI and blocks until the user
// quits. The CLI subcommands call Setup directly and drive the controller
// without a terminal UI.
//
// Favorites are marked with the remote library only when credentials are
// configured, since the plugin rejects anonymous writes. Either way the set
// is persisted to the prefs file.
package app
