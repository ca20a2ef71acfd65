package client

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentDeletes bounds DeleteFiles fan-out.
const maxConcurrentDeletes = 4

// DeleteResult is the outcome for one ID passed to DeleteFiles.
type DeleteResult struct {
	FileID string
	Result Result
	Err    error // *apierr.APIError when the call failed
}

// DeleteFiles deletes several files with independent DELETE calls.
//
// Rules:
//   - Returns one result per input ID, in the caller's order (duplicates kept).
//   - A failure for one ID does not stop the others.
//   - The returned error aggregates every per-ID failure; nil when all succeeded.
//   - Without credentials nothing is sent and the credential error is returned.
func (c *Client) DeleteFiles(ctx context.Context, fileIDs []string) ([]DeleteResult, error) {
	if _, err := c.requireCredentials(); err != nil {
		return nil, err
	}

	out := make([]DeleteResult, len(fileIDs))

	// Plain group (no WithContext): one failed delete must not cancel the rest.
	var g errgroup.Group
	g.SetLimit(maxConcurrentDeletes)

	for i, id := range fileIDs {
		g.Go(func() error {
			res, err := c.DeleteFile(ctx, id)
			// each goroutine owns out[i]; no lock needed
			out[i] = DeleteResult{FileID: id, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for _, r := range out {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("delete file %q: %w", r.FileID, r.Err))
		}
	}
	return out, merr.ErrorOrNil()
}
