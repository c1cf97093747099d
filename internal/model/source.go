package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// Source yields the raw bytes of a model artifact.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	URI() string
}

type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeGCS  Scheme = "gs"
)

// Location is a parsed artifact URI.
type Location struct {
	Scheme Scheme
	// Path is the local path for SchemeFile.
	Path string
	// Bucket and Object are set for SchemeGCS.
	Bucket string
	Object string
}

// ParseLocation accepts a bare path, a file:// URI or gs://bucket/object.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("model artifact location is empty")
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: SchemeFile, Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse artifact uri %q: %w", raw, err)
	}
	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeFile:
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			// file://relative/path
			p = u.Host + u.Path
		}
		if p == "" {
			return Location{}, fmt.Errorf("artifact uri %q has no path", raw)
		}
		return Location{Scheme: SchemeFile, Path: p}, nil
	case SchemeGCS:
		obj := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || obj == "" {
			return Location{}, fmt.Errorf("artifact uri %q must look like gs://bucket/object", raw)
		}
		return Location{Scheme: SchemeGCS, Bucket: u.Host, Object: obj}, nil
	default:
		return Location{}, fmt.Errorf("unsupported artifact uri scheme %q", u.Scheme)
	}
}

func (l Location) String() string {
	if l.Scheme == SchemeGCS {
		return "gs://" + l.Bucket + "/" + l.Object
	}
	return l.Path
}

// FileSource reads an artifact from the local filesystem.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) URI() string { return s.Path }

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ArtifactNotFoundError{URI: s.Path, Cause: err}
		}
		return nil, fmt.Errorf("open model artifact %s: %w", s.Path, err)
	}
	st, err := f.Stat()
	if err == nil && st.IsDir() {
		_ = f.Close()
		return nil, &ArtifactNotFoundError{URI: s.Path, Cause: errors.New("path is a directory")}
	}
	return f, nil
}
