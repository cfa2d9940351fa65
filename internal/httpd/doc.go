// Package httpd implements a minimal HTTP/1.1-subset engine over raw
// TCP: one request per connection, Content-Length-only bodies,
// Connection: close on every response.
//
// Responsibilities:
//   - accept loop with a bounded worker pool
//   - per-connection request framing and parsing
//   - routing between sandboxed static files and the JSON API
//   - path-safety enforcement against the sandbox root
//   - graceful shutdown that drains in-flight connections
package httpd
