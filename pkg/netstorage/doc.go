// Package netstorage is a client for the NetStorage HTTP API ("ACS" API),
// a flat object store addressed by a CP code, an optional restricted
// directory and an optional working directory chosen by the integrator.
//
// # Basic Usage
//
//	client, err := netstorage.New(netstorage.Config{
//	    Host:       "example-nsu.akamaihd.net",
//	    StaticHost: "static.example.com",
//	    CPCode:     "123456",
//	    Credential: netstorage.NewCredential("upload-key", secret),
//	})
//	stat, err := client.Upload(ctx, netstorage.PathFromString("docs/a.txt"), data)
//	listing, err := client.Dir(ctx, netstorage.PathFromString("docs"), true)
//
// # Authentication
//
// Every request carrying an X-Akamai-ACS-Action header is signed by the
// Authentication middleware: an X-Akamai-ACS-Auth-Data header with the
// protocol version, timestamp, nonce and key name, and an
// X-Akamai-ACS-Auth-Sign header holding the base64 HMAC-SHA256 of the auth
// data, the request path and the action header. Signer values are immutable
// and can be shared between goroutines.
//
// # Errors
//
// Stat, Dir, Du and Stream return errors matching ErrNotFound when the
// target is missing, ErrMalformedResponse when the server answers with
// unparsable XML and ErrTransport for anything else. Upload failures match
// ErrUploadFailed. Delete and Rmdir only report success as a bool so that
// bulk removals carry on past single failures.
//
// # Middleware
//
// The HTTP stack is a chain of Middleware values around a base transport.
// WithLogger installs request logging through log/slog, and
// NewMetrics(...).Middleware() can be added with WithMiddleware to export
// Prometheus metrics.
package netstorage
