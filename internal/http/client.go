package http

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"
)

// Result is the outcome of one request attempt.
//
// Latency is populated even when Send returns an error.
type Result struct {
	Latency    time.Duration
	StatusCode int
}

// Sender issues a single request against a URL.
type Sender interface {
	Send(ctx context.Context, url string) (Result, error)
}

// Client sends load-test requests over a shared connection pool.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	method     string
	headers    map[string]string
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given options.
func NewClient(options ...ClientOption) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	client := &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		transport: transport,
		method:    http.MethodGet,
		headers:   make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithTimeout sets the timeout for each request.
// The default timeout is 30 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMethod sets the HTTP method used by Send.
func WithMethod(method string) ClientOption {
	return func(c *Client) {
		if method != "" {
			c.method = method
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header unless one was given explicitly.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if _, ok := c.headers["User-Agent"]; !ok {
			c.headers["User-Agent"] = ua
		}
	}
}

// WithMaxConnsPerHost sizes the idle pool so that n concurrent workers can
// reuse their connections.
func WithMaxConnsPerHost(n int) ClientOption {
	return func(c *Client) {
		if n <= 0 || c.transport == nil {
			return
		}
		c.transport.MaxIdleConnsPerHost = n
		if c.transport.MaxIdleConns < n {
			c.transport.MaxIdleConns = n
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
// WARNING: This should only be used for testing purposes.
func WithInsecureSkipVerify() ClientOption {
	return func(c *Client) {
		if c.transport == nil {
			return
		}
		c.transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
}

// WithHTTPClient sets a custom *http.Client. Transport options applied after
// this one have no effect.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
		c.transport = nil
	}
}

// Send issues one request and waits for the complete response.
//
// Latency spans from handing the request to the transport until the body has
// been drained, or until the terminal failure. A response with any status code
// is a successful exchange; only transport failures return a *RequestError.
func (c *Client) Send(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, c.method, url, nil)
	if err != nil {
		return Result{}, &RequestError{Kind: ErrProtocol, Err: err}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Latency: time.Since(start)}, &RequestError{Kind: Classify(err), Err: err}
	}

	// Drain so the connection goes back to the pool.
	_, err = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	res := Result{
		Latency:    time.Since(start),
		StatusCode: resp.StatusCode,
	}
	if err != nil {
		return res, &RequestError{Kind: Classify(err), Err: err}
	}

	return res, nil
}

// IsSuccessStatus returns true for 2xx and 3xx status codes.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 400
}

// Ensure Client implements Sender
var _ Sender = (*Client)(nil)
