package netstorage

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Dir lists path. With recursive set, every subdirectory is listed as well
// and attached as children of its entry. A subdirectory that cannot be
// listed stays in the result without children.
func (c *Client) Dir(ctx context.Context, path Path, recursive bool) (*DirectoryListing, error) {
	// One limiter covers the whole walk, so at most listConcurrency
	// listings are in flight regardless of depth.
	var sem *semaphore.Weighted
	if recursive && c.opts.listConcurrency >= 2 {
		sem = semaphore.NewWeighted(int64(c.opts.listConcurrency))
	}

	listing, err := c.list(ctx, path, sem)
	if err != nil {
		return nil, err
	}
	if recursive {
		listing.Files = c.expand(ctx, listing.Files, sem)
	}
	return &listing, nil
}

// list fetches a single directory listing. The slot in sem is held only for
// the request itself.
func (c *Client) list(ctx context.Context, path Path, sem *semaphore.Weighted) (DirectoryListing, error) {
	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return DirectoryListing{}, &RequestError{Op: "dir", Path: path, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
		}
		defer sem.Release(1)
	}

	data, err := c.fetch(ctx, request{
		op:     "dir",
		method: http.MethodGet,
		path:   path,
		action: ActionDir,
	})
	if err != nil {
		return DirectoryListing{}, err
	}

	parsed, err := ParseDirectoryListing(data)
	if err != nil {
		return DirectoryListing{}, &RequestError{Op: "dir", Path: path, Err: err}
	}
	return parsed.WithDirectory(path), nil
}

// expand attaches the recursive listing of every directory in files. The
// returned slice keeps the order of files. A nil sem walks sequentially.
func (c *Client) expand(ctx context.Context, files []File, sem *semaphore.Weighted) []File {
	out := make([]File, len(files))
	copy(out, files)

	if sem == nil {
		for i := range out {
			if out[i].IsDir() {
				out[i] = c.expandDir(ctx, out[i], nil)
			}
		}
		return out
	}

	// Branch failures are absorbed in expandDir, so the group never fails.
	var g errgroup.Group
	for i := range out {
		if !out[i].IsDir() {
			continue
		}
		g.Go(func() error {
			out[i] = c.expandDir(ctx, out[i], sem)
			return nil
		})
	}
	g.Wait()
	return out
}

func (c *Client) expandDir(ctx context.Context, dir File, sem *semaphore.Weighted) File {
	listing, err := c.list(ctx, dir.FullPath(), sem)
	if err != nil {
		c.logger.WarnContext(ctx, "netstorage listing of subdirectory failed", "path", dir.FullPath().String(), "err", err)
		return dir.WithChildren(nil)
	}
	return dir.WithChildren(c.expand(ctx, listing.Files, sem))
}
