// Package logtail reads the tail of stylekit's log file.
//
// Read keeps a ring buffer of the last N lines, so memory stays bounded by N
// regardless of file size. Format turns zap's JSON entries into one-line,
// human-readable text for the logs command:
//
//	{"level":"info","ts":1767323045.1,"msg":"catalog loaded","templates":42}
//	→ 03:04:05 INFO  catalog loaded templates=42
package logtail
