package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vaultsens/vaultsens-go/apierr"
)

// ListFiles lists files, optionally restricted to one folder
// (GET /files[?folderId=]). An empty folderID lists everything.
func (c *Client) ListFiles(ctx context.Context, folderID string) (Result, error) {
	var q url.Values
	if folderID != "" {
		q = url.Values{fieldFolderID: {folderID}}
	}
	return c.Do(ctx, http.MethodGet, "/files", &RequestOptions{Query: q})
}

// GetFileMetadata fetches one file's metadata (GET /files/metadata/{id}).
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (Result, error) {
	return c.doOnID(ctx, http.MethodGet, "/files/metadata/", "file id", fileID, nil)
}

// DeleteFile deletes one file (DELETE /files/{id}).
func (c *Client) DeleteFile(ctx context.Context, fileID string) (Result, error) {
	return c.doOnID(ctx, http.MethodDelete, "/files/", "file id", fileID, nil)
}

// BuildFileURL returns the absolute URL of a file, with query appended when
// it is non-empty (e.g. image transform parameters). No request is made and
// no credentials are needed.
func (c *Client) BuildFileURL(fileID string, query url.Values) string {
	u := c.BaseURL + apiPrefix + "/files/" + url.PathEscape(fileID)
	if len(query) == 0 {
		return u
	}
	return u + "?" + query.Encode()
}

// GetMetrics fetches account usage metrics (GET /metrics).
func (c *Client) GetMetrics(ctx context.Context) (Result, error) {
	return c.Do(ctx, http.MethodGet, "/metrics", nil)
}

// doOnID runs an operation on prefix+{id}. The credential check comes first
// so a client without credentials always reports UNAUTHORIZED.
func (c *Client) doOnID(ctx context.Context, method, prefix, what, id string, opts *RequestOptions) (Result, error) {
	if _, err := c.requireCredentials(); err != nil {
		return nil, err
	}
	seg, err := pathSegment(what, id)
	if err != nil {
		return nil, apierr.Local(err)
	}
	return c.Do(ctx, method, prefix+seg, opts)
}

// pathSegment validates and escapes an identifier used as a path segment.
func pathSegment(what, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New(what + " is required")
	}
	if strings.Contains(id, "/") {
		return "", fmt.Errorf("%s %q must not contain '/'", what, id)
	}
	return url.PathEscape(id), nil
}
