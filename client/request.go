package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vaultsens/vaultsens-go/apierr"
	"github.com/vaultsens/vaultsens-go/internal/utils"
)

// transportSnippet bounds how much of a non-JSON error body ends up in the
// error message.
const transportSnippet = 120

// Result is the decoded body of a successful call.
//
// A JSON object body is returned as-is and a JSON array is stored under
// "data". Any other body (empty, plain text, JSON scalar) becomes
// {"status": <HTTP status>, "message": <raw body>}.
type Result map[string]any

// Decode re-decodes r into v (typically a pointer to a struct).
func (r Result) Decode(v any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// RequestOptions carries the optional parts of a call.
// At most one of JSON and Body should be set; JSON wins when both are.
type RequestOptions struct {
	Query       url.Values  // appended to the URL
	Header      http.Header // merged in; cannot override the auth headers
	JSON        any         // encoded as the JSON request body
	Body        io.Reader   // raw request body; closed when the call ends if it is an io.Closer
	ContentType string      // Content-Type for Body
}

// Do executes one authenticated call against path (relative to /api/v1,
// e.g. "/files") and returns the decoded result.
//
// Every failure is an *apierr.APIError:
//   - no credentials: UNAUTHORIZED/401, nothing is sent;
//   - no response at all (DNS, refused, canceled ctx): status 500 and the
//     transport's message, wrapping the cause;
//   - non-2xx: the status, the body's "message" (or a description of the
//     exchange) and the decoded payload when the body was JSON.
//
// Exactly one request is made; nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions) (Result, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	// Whatever happens below, a caller-supplied body is released.
	defer closeBody(opts.Body)

	creds, err := c.requireCredentials()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := c.newRequest(ctx, method, path, opts, creds)
	if err != nil {
		return nil, apierr.FromTransport(err, c.Classifier)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		ae := apierr.FromTransport(err, c.Classifier)
		c.logFailure(method, path, ae, time.Since(start))
		return nil, ae
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, defaultErrCap))
		// Drain the rest to maximize chances of connection reuse.
		_, _ = io.Copy(io.Discard, resp.Body)

		ae := apierr.Parse(slurp, resp.StatusCode, describeExchange(req, resp.StatusCode, slurp), c.Classifier)
		// Keep headers accessible; body is already consumed (don't read it).
		ae.Resp = resp
		c.logFailure(method, path, ae, time.Since(start))
		return nil, ae
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		ae := apierr.FromTransport(fmt.Errorf("read response: %w", err), c.Classifier)
		c.logFailure(method, path, ae, time.Since(start))
		return nil, ae
	}

	c.Logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("vaultsens request")

	return Result(utils.DecodeResult(raw, resp.StatusCode)), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts *RequestOptions, creds Credentials) (*http.Request, error) {
	fullURL, err := c.endpointURL(path, opts.Query)
	if err != nil {
		return nil, err
	}

	body := opts.Body
	contentType := opts.ContentType
	if opts.JSON != nil {
		buf, err := utils.EncodeJSONBody(opts.JSON)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for k, vv := range opts.Header {
		if len(vv) == 0 {
			continue
		}
		if isAuthHeader(k) {
			c.Logger.Debug().
				Str("method", method).
				Str("path", path).
				Str("header", k).
				Msg("caller header dropped; credentials set via SetAuth take precedence")
			continue
		}
		req.Header.Del(k)
		req.Header[k] = append([]string(nil), vv...)
	}

	// Written last so a caller header can never replace the identity.
	req.Header[headerAPIKey] = []string{creds.Key}
	req.Header[headerAPISecret] = []string{creds.Secret}

	return req, nil
}

// endpointURL builds BaseURL + /api/v1 + path and appends query.
func (c *Client) endpointURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.BaseURL + apiPrefix + path)
	if err != nil {
		return "", fmt.Errorf("join url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vv := range query {
			for _, v := range vv {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) logFailure(method, path string, ae *apierr.APIError, took time.Duration) {
	c.Logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", ae.Status).
		Str("kind", ae.Kind.String()).
		Dur("took", took).
		Msg("vaultsens request failed")
}

// describeExchange is the message used when the error body has no
// "message" of its own. The body snippet is kept so keywords in plain-text
// bodies still reach the classifier.
func describeExchange(req *http.Request, status int, body []byte) string {
	u := *req.URL
	u.User = nil
	msg := fmt.Sprintf("%s %s resulted in a `%d %s` response",
		req.Method, u.String(), status, http.StatusText(status))

	snippet := strings.TrimSpace(string(body))
	if snippet == "" {
		return msg
	}
	if r := []rune(snippet); len(r) > transportSnippet {
		snippet = string(r[:transportSnippet]) + " (truncated...)"
	}
	return msg + ": " + snippet
}

func isAuthHeader(k string) bool {
	return strings.EqualFold(k, headerAPIKey) || strings.EqualFold(k, headerAPISecret)
}

func closeBody(body io.Reader) {
	if cl, ok := body.(io.Closer); ok {
		_ = cl.Close()
	}
}
