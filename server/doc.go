// Package server exposes disk contents over HTTP.
//
// Files are served from GET {prefix}/:disk/*path through a scoped
// filesystem.Storage session per disk, so HTTP traffic never changes the
// binding of the Storage the process uses. Temporary URLs of local disks
// with a signing key are checked before the object is read.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the log context
//   - CORS: cross-origin resource sharing
//   - RequestLogger: request logging and HTTP metrics
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /alive, /ready and /info.
package server
