// Package library provides an HTTP client for the Style Kits template library.
//
// # Overview
//
// The Style Kits plugin exposes its template library through the WordPress
// REST API under /wp-json/agwp/v1. This package wraps the two endpoints the
// browser needs and normalises the loosely typed payloads WordPress emits.
//
// # Endpoints
//
//	GET  /wp-json/agwp/v1/templates/[?force_update=true]
//	POST /wp-json/agwp/v1/mark_favorite/   {"template_id": 12, "favorite": true}
//
// force_update asks the plugin to drop its cached copy of the remote library
// before answering.
//
// # Payload normalisation
//
//   - Template ids may be numbers or strings; both decode to TemplateID.
//   - popularityIndex may be a number, a numeric string or absent. Absent or
//     unparsable values decode to an invalid PopularityIndex.
//   - Titles are rendered HTML; markup is stripped and entities decoded.
//
// # Errors
//
// Transport failures, non-2xx responses (*StatusError) and undecodable bodies
// are returned as errors. The client never retries.
//
// # Usage
//
//	client, err := library.NewClient("https://example.com",
//		library.WithCredentials("admin", "xxxx xxxx xxxx"),
//		library.WithLogger(logger),
//	)
//	resp, err := client.FetchTemplates(ctx, library.FetchOptions{ForceUpdate: true})
package library
