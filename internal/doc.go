// Package internal holds the conference server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, JSON responses, and routing
// - domain: registrations, contact messages, and record ids
// - storage: repository interfaces and the Postgres implementation
// - email: notification delivery providers
// - audit, config, metrics, sanitize, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
