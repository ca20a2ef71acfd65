// Package client provides a wrapper around the VaultSens file-storage API.
// It handles base URL normalization, API key/secret authentication, and a
// single-shot request pipeline that turns every failure into an
// *apierr.APIError with a classified Kind.
//
// The client never retries and never imposes its own timeout: cancellation
// and deadlines come from the context and the underlying http.Client.
package client

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultsens/vaultsens-go/apierr"
)

const (
	// apiPrefix is prepended to every endpoint path.
	apiPrefix = "/api/v1"

	// defaultUserAgent is sent on every request unless overridden via WithUserAgent.
	defaultUserAgent = "vaultsens-go/1.0.0"

	// defaultErrCap caps how many bytes we slurp from a non-2xx response when
	// constructing an apierr.APIError.
	defaultErrCap = 64 << 10

	// Authentication headers. The server expects these exact names, so they
	// are written to the header map verbatim instead of via Header.Set.
	headerAPIKey    = "x-api-key"
	headerAPISecret = "x-api-secret"
)

// Credentials is the API key/secret pair. Both are required; a pair with
// either half blank counts as no credentials at all.
type Credentials struct {
	Key    string
	Secret string
}

// Valid reports whether both halves are present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Key) != "" && strings.TrimSpace(c.Secret) != ""
}

// Client is a VaultSens API client.
// It is safe for concurrent use. The exported fields must not be changed
// after NewClient returns; credentials are swapped atomically via SetAuth.
type Client struct {
	BaseURL    string            // normalized base URL without trailing slash
	UserAgent  string            // User-Agent header value
	HTTPClient *http.Client      // underlying HTTP client
	Classifier apierr.Classifier // maps (status, message) to a Kind
	Logger     zerolog.Logger    // request-level debug logging

	creds atomic.Pointer[Credentials]
}

// Option customizes a Client during construction.
// Errors returned by an Option abort NewClient.
type Option func(*Client) error

// WithCredentials sets the initial API key and secret.
func WithCredentials(key, secret string) Option {
	return func(c *Client) error {
		c.SetAuth(key, secret)
		return nil
	}
}

// WithUserAgent overrides the default User-Agent string.
// An empty value is ignored.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		ua = strings.TrimSpace(ua)
		if ua != "" {
			c.UserAgent = ua
		}
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client.
// The client must be non-nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		c.HTTPClient = hc
		return nil
	}
}

// WithHTTPTimeout sets the HTTP client timeout. A zero value disables it.
// By default no timeout is set and the context alone bounds a call.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return errors.New("http timeout cannot be negative")
		}
		if c.HTTPClient == nil {
			c.HTTPClient = &http.Client{}
		}
		c.HTTPClient.Timeout = d
		return nil
	}
}

// WithLogger attaches a zerolog logger. Requests are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.Logger = l
		return nil
	}
}

// WithClassifier replaces the message-based error classifier, e.g. once the
// server exposes structured error codes.
func WithClassifier(cl apierr.Classifier) Option {
	return func(c *Client) error {
		if cl == nil {
			return errors.New("classifier cannot be nil")
		}
		c.Classifier = cl
		return nil
	}
}

// NewClient builds a Client for the API at baseURL and applies the provided
// options in order. baseURL must be an absolute http(s) URL; trailing
// slashes are stripped.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		BaseURL:    base,
		UserAgent:  defaultUserAgent,
		HTTPClient: &http.Client{},
		Classifier: apierr.DefaultClassifier,
		Logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetAuth replaces the API key and secret. Setting the values already in
// use is a no-op. Blank values clear the credentials.
func (c *Client) SetAuth(key, secret string) {
	next := Credentials{Key: strings.TrimSpace(key), Secret: strings.TrimSpace(secret)}
	if cur := c.creds.Load(); cur != nil && *cur == next {
		return
	}
	c.creds.Store(&next)
}

// Credentials returns the current key/secret pair and whether it is usable.
func (c *Client) Credentials() (Credentials, bool) {
	cur := c.creds.Load()
	if cur == nil {
		return Credentials{}, false
	}
	return *cur, cur.Valid()
}

// requireCredentials is the local precondition shared by every operation.
func (c *Client) requireCredentials() (Credentials, error) {
	creds, ok := c.Credentials()
	if !ok {
		return Credentials{}, apierr.MissingCredentials()
	}
	return creds, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("base URL cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errors.New("invalid base URL")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}
