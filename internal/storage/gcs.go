package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

type GCSStorage struct {
	client *storage.Client
}

func NewGCSStorage(ctx context.Context) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{client: client}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) Stat(ctx context.Context, uri string) (FileInfo, error) {
	bucket, object, err := ParseGCSPath(uri)
	if err != nil {
		return FileInfo{}, err
	}

	attrs, err := s.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to get object attrs: %w", err)
	}

	return FileInfo{Name: path.Base(attrs.Name), Size: attrs.Size}, nil
}

func (s *GCSStorage) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCSPath(uri)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	return r, nil
}

// ParseGCSPath splits gs://bucket/object into its parts.
func ParseGCSPath(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a gs:// path: %s", uri)
	}

	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("invalid gs:// path: %s", uri)
	}
	return bucket, object, nil
}
