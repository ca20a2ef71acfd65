package client

import (
	"context"
	"net/http"
)

// ListFolders lists all folders (GET /folders).
func (c *Client) ListFolders(ctx context.Context) (Result, error) {
	return c.Do(ctx, http.MethodGet, "/folders", nil)
}

// CreateFolder creates a folder (POST /folders). An empty parentID creates
// it at the top level.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (Result, error) {
	body := map[string]any{"name": name}
	if parentID != "" {
		body["parentId"] = parentID
	}
	return c.Do(ctx, http.MethodPost, "/folders", &RequestOptions{JSON: body})
}

// RenameFolder renames a folder (PATCH /folders/{id}).
func (c *Client) RenameFolder(ctx context.Context, folderID, name string) (Result, error) {
	return c.doOnID(ctx, http.MethodPatch, "/folders/", "folder id", folderID,
		&RequestOptions{JSON: map[string]any{"name": name}})
}

// DeleteFolder deletes a folder (DELETE /folders/{id}).
func (c *Client) DeleteFolder(ctx context.Context, folderID string) (Result, error) {
	return c.doOnID(ctx, http.MethodDelete, "/folders/", "folder id", folderID, nil)
}
