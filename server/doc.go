// Package server hosts the HTTP surface of streamkit services: a Gin engine
// behind an h2c handler, so HTTP/2 clients can multiplex many event streams
// over one cleartext connection.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - RequestLogger: one log line per finished request
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /healthz: component health folded by observability.CheckAll
//   - /version: build version information
package server
