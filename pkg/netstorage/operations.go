package netstorage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// CanConnect reports whether the root of the client can be stat'ed.
func (c *Client) CanConnect(ctx context.Context) bool {
	_, err := c.Stat(ctx, RootPath())
	return err == nil
}

// Stat fetches the metadata of path. A missing object yields an error
// matching ErrNotFound.
func (c *Client) Stat(ctx context.Context, path Path) (*Stat, error) {
	data, err := c.fetch(ctx, request{
		op:     "stat",
		method: http.MethodGet,
		path:   path,
		action: ActionStat,
		params: []ActionParam{{Key: "implicit", Value: "yes"}, {Key: "encoding", Value: "utf-8"}},
	})
	if err != nil {
		return nil, err
	}

	stat, err := ParseStat(path, data)
	if err != nil {
		return nil, &RequestError{Op: "stat", Path: path, Err: err}
	}
	return stat, nil
}

// Upload stores content at path and returns the resulting Stat. If an
// identical file is already stored, nothing is sent and its Stat is
// returned.
func (c *Client) Upload(ctx context.Context, path Path, content []byte) (*Stat, error) {
	sum := md5.Sum(content)
	checksum := hex.EncodeToString(sum[:])

	existing, err := c.Stat(ctx, path)
	switch {
	case err == nil && existing.IsFile() && existing.MD5 == checksum:
		return existing, nil
	case err != nil && !IsNotFound(err):
		c.logger.WarnContext(ctx, "netstorage stat before upload failed", "path", path.String(), "err", err)
	}

	if content == nil {
		content = []byte{}
	}
	resp, err := c.do(ctx, request{
		op:     "upload",
		method: http.MethodPut,
		path:   path,
		action: ActionUpload,
		body:   content,
	})
	if err != nil {
		return nil, uploadFailed(path, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	stat, err := c.Stat(ctx, path)
	if err != nil {
		return nil, uploadFailed(path, err)
	}
	return stat, nil
}

func uploadFailed(path Path, err error) error {
	var reqErr *RequestError
	status := 0
	if errors.As(err, &reqErr) {
		status = reqErr.StatusCode
	}
	return &RequestError{Op: "upload", Path: path, StatusCode: status, Err: fmt.Errorf("%w: %w", ErrUploadFailed, err)}
}

// Delete removes the file at path. It reports success instead of failing.
func (c *Client) Delete(ctx context.Context, path Path) bool {
	return c.put(ctx, "delete", path, ActionDelete)
}

// Rmdir removes path and everything below it. Every entry is attempted even
// when a sibling fails; the result is true only if all removals succeeded.
func (c *Client) Rmdir(ctx context.Context, path Path) bool {
	listing, err := c.Dir(ctx, path, false)
	if err != nil {
		c.logger.WarnContext(ctx, "netstorage rmdir listing failed", "path", path.String(), "err", err)
		return false
	}

	ok := true
	for _, f := range listing.Files {
		if f.IsDir() {
			ok = c.Rmdir(ctx, f.FullPath()) && ok
			continue
		}
		ok = c.Delete(ctx, f.FullPath()) && ok
	}

	return c.put(ctx, "rmdir", path, ActionRmdir) && ok
}

// Mkdir creates the directory path.
func (c *Client) Mkdir(ctx context.Context, path Path) error {
	resp, err := c.do(ctx, request{
		op:     "mkdir",
		method: http.MethodPut,
		path:   path,
		action: ActionMkdir,
	})
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Stream opens the content of path for reading. The caller closes it.
func (c *Client) Stream(ctx context.Context, path Path) (io.ReadCloser, error) {
	resp, err := c.do(ctx, request{
		op:     "download",
		method: http.MethodGet,
		path:   path,
		action: ActionDownload,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Du reports the number of files and bytes below path.
func (c *Client) Du(ctx context.Context, path Path) (*DiskUsage, error) {
	data, err := c.fetch(ctx, request{
		op:     "du",
		method: http.MethodGet,
		path:   path,
		action: ActionDu,
	})
	if err != nil {
		return nil, err
	}

	usage, err := ParseDiskUsage(data)
	if err != nil {
		return nil, &RequestError{Op: "du", Path: path, Err: err}
	}
	usage.Directory = path
	return usage, nil
}

// put issues a body-less PUT and folds any failure into false.
func (c *Client) put(ctx context.Context, op string, path Path, action Action) bool {
	resp, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPut,
		path:   path,
		action: action,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "netstorage "+op+" failed", "path", path.String(), "err", err)
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return true
}
