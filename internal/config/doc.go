// Package config loads stylekit's configuration file.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/stylekit/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. Missing or blank fields keep their defaults
//
// # TOML Format
//
//	site_url = "https://example.com"      # WordPress site running Style Kits
//	username = "admin"                    # optional, with app_password
//	app_password = "abcd efgh ijkl mnop"  # WordPress application password
//	timeout_seconds = 10
//	log_file = "~/.local/state/stylekit/stylekit.log"
//	log_level = "info"                    # debug, info, warn, error
//
// Tilde expansion is applied to log_file. Invalid TOML and unknown log levels
// are errors; a missing file is not.
package config
