package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/heartcheck/internal/model"
)

// NewStorageClient builds a read-only Cloud Storage client for cfg.
func NewStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	cfg, err := ResolveStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ObjectStorageModeGCSEmulator:
		// the client library only honours the emulator through the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		opts := ClientOptions(cfg)
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
		return storage.NewClient(ctx, opts...)
	}
}

// ObjectSource reads a model artifact from a bucket object.
type ObjectSource struct {
	client *storage.Client
	bucket string
	object string
}

func NewObjectSource(client *storage.Client, bucket, object string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, object: object}
}

func (s *ObjectSource) URI() string {
	return "gs://" + s.bucket + "/" + s.object
}

func (s *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, &model.ArtifactNotFoundError{URI: s.URI(), Cause: err}
		}
		return nil, fmt.Errorf("open %s: %w", s.URI(), err)
	}
	return rc, nil
}
