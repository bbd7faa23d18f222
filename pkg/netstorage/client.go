package netstorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config addresses one storage group and the account used to reach it.
type Config struct {
	// Host is the upload API host name, without scheme.
	Host string
	// StaticHost serves published objects over plain HTTP(S) GETs.
	StaticHost string
	// CPCode is the numeric root directory of the storage group.
	CPCode string
	// RestrictedDirectory is the subtree the credential is scoped to.
	RestrictedDirectory string
	// WorkingDirectory is prefixed to every path handed to the client.
	WorkingDirectory Path
	Proxy            *Proxy
	Credential       Credential
}

// Proxy selects an outbound proxy per request scheme.
type Proxy struct {
	HTTP  string
	HTTPS string
}

// Validate reports missing required fields.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Host) == "":
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	case strings.TrimSpace(c.CPCode) == "":
		return fmt.Errorf("%w: cp code is required", ErrInvalidConfig)
	case c.Credential.IsZero():
		return fmt.Errorf("%w: key name and key are required", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Client.
type Option func(*options)

type options struct {
	transport       http.RoundTripper
	timeout         time.Duration
	logger          *slog.Logger
	logRequests     bool
	middlewares     []Middleware
	listConcurrency int
}

// WithTransport sets the base transport the middleware stack wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the client logger and installs the Logging middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
		o.logRequests = true
	}
}

// WithMiddleware adds decorators between request logging and signing.
func WithMiddleware(m ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, m...)
	}
}

// WithListConcurrency lets recursive listings fetch up to n sibling
// directories at once. Values below 2 keep the walk sequential.
func WithListConcurrency(n int) Option {
	return func(o *options) {
		o.listConcurrency = n
	}
}

// Client talks to the storage HTTP API. It is safe for concurrent use.
type Client struct {
	config Config
	opts   options
	logger *slog.Logger

	once       sync.Once
	httpClient *http.Client
}

// New creates a Client. The HTTP stack is built on first use.
func New(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return newClient(config, o), nil
}

func newClient(config Config, o options) *Client {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: config,
		opts:   o,
		logger: logger,
	}
}

// WithWorkingDirectory returns a copy of c rooted at path. The copy builds
// its own HTTP stack.
func (c *Client) WithWorkingDirectory(path Path) *Client {
	config := c.config
	config.WorkingDirectory = path
	return newClient(config, c.opts)
}

// Config returns the configuration c was built with.
func (c *Client) Config() Config {
	return c.config
}

// FullPath is the wire prefix of c: cp code, restricted directory and
// working directory.
func (c *Client) FullPath() Path {
	return PathFromString(c.config.CPCode).
		Append(PathFromString(c.config.RestrictedDirectory)).
		Append(c.config.WorkingDirectory)
}

// applyPathPrefix maps a client path to its wire path.
func (c *Client) applyPathPrefix(path Path) Path {
	if !c.config.WorkingDirectory.IsRoot() {
		path = path.Prepend(c.config.WorkingDirectory)
	}
	return PathFromString(c.config.CPCode).
		Append(PathFromString(c.config.RestrictedDirectory)).
		Append(path)
}

// PublicPath is the encoded path of path below the static host. It omits
// the cp code.
func (c *Client) PublicPath(path Path) Path {
	if !c.config.WorkingDirectory.IsRoot() {
		path = path.Prepend(c.config.WorkingDirectory)
	}
	return PathFromString(c.config.RestrictedDirectory).Append(path).URLEncode()
}

// PublicURL is the URL under which path is served by the static host.
func (c *Client) PublicURL(path Path) string {
	return "https://" + strings.TrimRight(c.config.StaticHost, `\/`) + "/" + c.PublicPath(path).String()
}

func (c *Client) requestURL(path Path) string {
	return "https://" + strings.TrimRight(c.config.Host, `\/`) + "/" + c.applyPathPrefix(path).URLEncode().String()
}

// client returns the lazily built HTTP client.
func (c *Client) client() *http.Client {
	c.once.Do(func() {
		chain := NewChain()
		if c.opts.logRequests {
			chain.Then(Logging(c.logger))
		}
		for _, m := range c.opts.middlewares {
			chain.Then(m)
		}
		chain.Then(Authentication(NewSigner(c.config.Credential)))

		c.httpClient = &http.Client{
			Transport: chain.Wrap(c.baseTransport()),
			Timeout:   c.opts.timeout,
		}
	})
	return c.httpClient
}

func (c *Client) baseTransport() http.RoundTripper {
	if c.opts.transport != nil {
		return c.opts.transport
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.config.Proxy != nil {
		transport.Proxy = c.config.Proxy.proxyFunc()
	}
	return transport
}

func (p *Proxy) proxyFunc() func(*http.Request) (*url.URL, error) {
	return func(r *http.Request) (*url.URL, error) {
		raw := p.HTTPS
		if r.URL.Scheme == "http" {
			raw = p.HTTP
		}
		if raw == "" {
			return nil, nil
		}
		return parseProxy(raw)
	}
}

// parseProxy accepts both "http://host:port" and a bare "host:port".
func parseProxy(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: proxy %q: %w", ErrInvalidConfig, raw, err)
	}
	return u, nil
}

// request is one ACS call.
type request struct {
	op     string
	method string
	path   Path
	action Action
	params []ActionParam
	body   []byte
}

// do performs req and maps the outcome onto the error taxonomy. On success
// the caller owns the response body.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.requestURL(req.path), body)
	if err != nil {
		return nil, &RequestError{Op: req.op, Path: req.path, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}
	httpReq.Header.Set(ActionHeader, req.action.Header(req.params...))
	if req.body != nil {
		httpReq.ContentLength = int64(len(req.body))
	}

	resp, err := c.client().Do(httpReq)
	if err != nil {
		return nil, &RequestError{Op: req.op, Path: req.path, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	cause := ErrTransport
	if resp.StatusCode == http.StatusNotFound {
		cause = ErrNotFound
	}
	return nil, &RequestError{Op: req.op, Path: req.path, StatusCode: resp.StatusCode, Err: cause}
}

// fetch performs req and reads the whole response body.
func (c *Client) fetch(ctx context.Context, req request) ([]byte, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: req.op, Path: req.path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}
	return data, nil
}
