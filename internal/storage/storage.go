package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const gcsScheme = "gs://"

var (
	ErrNotFound = errors.New("file not found")
	ErrNotFile  = errors.New("not a regular file")
)

type FileInfo struct {
	Name string
	Size int64
}

// Source resolves a video path to its metadata and contents.
type Source interface {
	Stat(ctx context.Context, path string) (FileInfo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Router sends gs:// paths to the remote source and everything else to the
// local one.
type Router struct {
	local  Source
	remote Source
}

func NewRouter(local, remote Source) *Router {
	return &Router{local: local, remote: remote}
}

func (r *Router) Stat(ctx context.Context, path string) (FileInfo, error) {
	src, err := r.route(path)
	if err != nil {
		return FileInfo{}, err
	}
	return src.Stat(ctx, path)
}

func (r *Router) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	src, err := r.route(path)
	if err != nil {
		return nil, err
	}
	return src.Open(ctx, path)
}

func (r *Router) route(path string) (Source, error) {
	if !IsRemote(path) {
		return r.local, nil
	}
	if r.remote == nil {
		return nil, fmt.Errorf("cloud storage not configured for %s", path)
	}
	return r.remote, nil
}

func IsRemote(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}
