// Package config defines the run configuration for a load test.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultRequests is the total request count used when none is given.
	DefaultRequests = 100

	// DefaultConcurrency is the concurrency level used when none is given.
	DefaultConcurrency = 10

	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// DefaultMethod is the HTTP method used for every request.
	DefaultMethod = http.MethodGet
)

// RunConfig describes a single load test invocation.
type RunConfig struct {
	// URL is the target of every request. Must include http:// or https://.
	URL string `json:"url" yaml:"url"`

	// TotalRequests is the number of requests to issue (N).
	TotalRequests int `json:"requests" yaml:"requests"`

	// Concurrency is the maximum number of requests in flight (C).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// OutputPath is where the JSON report is written. Empty means console only.
	OutputPath string `json:"output,omitempty" yaml:"output,omitempty"`

	// Method is the HTTP method for every request.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Timeout bounds each individual request.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Insecure disables TLS certificate verification.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
}

// Default returns a RunConfig populated with the CLI defaults and no URL.
func Default() RunConfig {
	return RunConfig{
		TotalRequests: DefaultRequests,
		Concurrency:   DefaultConcurrency,
		Method:        DefaultMethod,
		Timeout:       Duration(DefaultTimeout),
	}
}

// EffectiveConcurrency returns min(Concurrency, TotalRequests), the ceiling
// actually enforced during dispatch.
func (c RunConfig) EffectiveConcurrency() int {
	if c.Concurrency > c.TotalRequests {
		return c.TotalRequests
	}
	return c.Concurrency
}

// RequestTimeout returns the per-request timeout, falling back to DefaultTimeout.
func (c RunConfig) RequestTimeout() time.Duration {
	return c.Timeout.GetDuration(DefaultTimeout)
}

// RequestMethod returns the configured method in upper case, or GET.
func (c RunConfig) RequestMethod() string {
	if c.Method == "" {
		return DefaultMethod
	}
	return strings.ToUpper(c.Method)
}

// Validate checks the configuration before any request is dispatched.
//
// Returns a *ConfigError describing the first problem found.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return &ConfigError{Field: "url", Message: "target URL is required"}
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return &ConfigError{Field: "url", Message: fmt.Sprintf("invalid URL %q: %v", c.URL, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "url", Message: fmt.Sprintf("URL must include http:// or https://, got %q", c.URL)}
	}
	if u.Host == "" {
		return &ConfigError{Field: "url", Message: fmt.Sprintf("URL %q has no host", c.URL)}
	}

	if c.TotalRequests <= 0 {
		return &ConfigError{Field: "requests", Message: fmt.Sprintf("must be a positive integer, got %d", c.TotalRequests)}
	}
	if c.Concurrency <= 0 {
		return &ConfigError{Field: "concurrency", Message: fmt.Sprintf("must be a positive integer, got %d", c.Concurrency)}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Message: "must not be negative"}
	}

	for key := range c.Headers {
		if strings.TrimSpace(key) == "" {
			return &ConfigError{Field: "headers", Message: "header name must not be empty"}
		}
	}

	return nil
}

// ConfigError is a fatal configuration problem detected before dispatch.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

// ParseHeader splits a "Key: Value" string as accepted by the --header flag.
func ParseHeader(raw string) (string, string, error) {
	idx := strings.Index(raw, ":")
	if idx <= 0 {
		return "", "", &ConfigError{Field: "headers", Message: fmt.Sprintf("expected 'Key: Value', got %q", raw)}
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:]), nil
}
