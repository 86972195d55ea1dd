// Package server implements the session and message relay engine for the
// chat application.
//
// The implementation is organized into specialized files for configuration,
// the connection registry, message routing and history, presence and typing
// fan-out, the dispatch gateway, hub and client plumbing, and HTTP handlers to
// keep the codebase maintainable and testable as the project grows.
package server
