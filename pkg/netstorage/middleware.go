package netstorage

import (
	"log/slog"
	"net/http"
	"time"
)

// Middleware decorates the transport used by the Client.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain represents an ordered list of middlewares
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Then adds middleware to the chain
func (c *Chain) Then(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Wrap applies all middleware in the chain to the given transport.
// The first middleware added is the outermost.
func (c *Chain) Wrap(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		if c.middlewares[i] == nil {
			continue
		}
		rt = c.middlewares[i](rt)
	}
	return rt
}

// Logging logs each request with its action, status and duration at debug
// level. Authentication headers are never logged.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			action := actionLabel(r)

			resp, err := next.RoundTrip(r)
			duration := time.Since(start)
			if err != nil {
				logger.DebugContext(r.Context(), "netstorage request failed",
					"method", r.Method,
					"path", r.URL.Path,
					"action", action,
					"duration", duration,
					"err", err,
				)
				return nil, err
			}

			logger.DebugContext(r.Context(), "netstorage request",
				"method", r.Method,
				"path", r.URL.Path,
				"action", action,
				"status", resp.StatusCode,
				"duration", duration,
			)
			return resp, nil
		})
	}
}

// actionLabel names the ACS verb of r, or "none" for unsigned requests.
func actionLabel(r *http.Request) string {
	header := r.Header.Get(ActionHeader)
	if header == "" {
		return "none"
	}
	action, err := ActionFromHeader(header)
	if err != nil {
		return "unknown"
	}
	return action.String()
}
