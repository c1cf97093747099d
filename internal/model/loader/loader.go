// Package loader reads a model artifact once per process and hands out the
// same classifier to every caller.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/mock"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

const DefaultMaxBytes int64 = 64 << 20

type Options struct {
	// Kind restricts the artifact format. Empty detects it; model.KindMock
	// skips the source entirely.
	Kind      model.Kind
	Threshold float64
	MaxBytes  int64
	MockLabel int
}

// Loader caches the outcome of the first Load, success or failure. The
// source is opened at most once for the lifetime of the Loader.
type Loader struct {
	src  model.Source
	opts Options
	log  *logger.Logger

	once   sync.Once
	clf    model.Classifier
	err    error
	loaded atomic.Bool
}

func New(src model.Source, opts Options, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Loader{src: src, opts: opts, log: log.With("component", "ModelLoader")}
}

// Load returns the cached classifier, reading the artifact on first use.
// Errors match model.ErrArtifactNotFound or model.ErrDeserialization.
// The read ignores ctx cancellation; its outcome is shared by every later
// caller.
func (l *Loader) Load(ctx context.Context) (model.Classifier, error) {
	l.once.Do(func() {
		l.clf, l.err = l.load(context.WithoutCancel(ctx))
		l.loaded.Store(l.err == nil)
	})
	return l.clf, l.err
}

// Loaded reports whether a classifier is ready.
func (l *Loader) Loaded() bool { return l.loaded.Load() }

func (l *Loader) load(ctx context.Context) (model.Classifier, error) {
	if l.opts.Kind == model.KindMock {
		l.log.Warn("Using mock classifier", "label", l.opts.MockLabel)
		return mock.New(l.opts.MockLabel), nil
	}
	if l.src == nil {
		return nil, &model.ArtifactNotFoundError{URI: "", Cause: errors.New("no artifact source configured")}
	}
	uri := l.src.URI()

	ctx, span := otel.Tracer("heartcheck/model").Start(ctx, "model.load")
	defer span.End()
	span.SetAttributes(attribute.String("model.uri", uri))

	start := time.Now()
	clf, err := l.read(ctx, uri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		l.log.Error("Model load failed", "uri", uri, "error", err)
		return nil, err
	}

	info := clf.Info()
	span.SetAttributes(attribute.String("model.kind", string(info.Kind)), attribute.Int("model.trees", info.Trees))
	l.log.Info("Model loaded",
		"uri", uri,
		"kind", info.Kind,
		"trees", info.Trees,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return clf, nil
}

func (l *Loader) read(ctx context.Context, uri string) (model.Classifier, error) {
	rc, err := l.src.Open(ctx)
	if err != nil {
		if errors.Is(err, model.ErrArtifactNotFound) || isContextErr(err) {
			return nil, err
		}
		return nil, &model.DeserializationError{URI: uri, Cause: err}
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, l.opts.MaxBytes+1))
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		return nil, &model.DeserializationError{URI: uri, Cause: fmt.Errorf("read: %w", err)}
	}
	if int64(len(raw)) > l.opts.MaxBytes {
		return nil, &model.DeserializationError{URI: uri, Cause: fmt.Errorf("artifact exceeds %d bytes", l.opts.MaxBytes)}
	}

	a, err := decode(raw, l.opts.Kind, l.opts.Threshold)
	if err != nil {
		return nil, &model.DeserializationError{URI: uri, Cause: err}
	}
	a.info.Source = uri
	return a, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
