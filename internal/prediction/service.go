// Package prediction runs the request pipeline: validate the submission,
// encode it, ask the loaded classifier and render the label.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/observability"
	"github.com/yungbote/heartcheck/internal/patient"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

const (
	MessageNoDisease = "Patient does NOT have heart disease."
	MessageDisease   = "Patient has heart disease."
)

// Loader hands out the process-wide classifier.
type Loader interface {
	Load(ctx context.Context) (model.Classifier, error)
}

type Result struct {
	Label           int             `json:"label"`
	Message         string          `json:"message"`
	HasHeartDisease bool            `json:"has_heart_disease"`
	Probability     float64         `json:"probability"`
	Vector          features.Vector `json:"-"`
	Cached          bool            `json:"-"`
}

// LabelMessage maps a classifier label to the text shown to the user.
func LabelMessage(label int) (string, error) {
	switch label {
	case model.LabelNoDisease:
		return MessageNoDisease, nil
	case model.LabelDisease:
		return MessageDisease, nil
	default:
		return "", fmt.Errorf("classifier returned label %d", label)
	}
}

type Service struct {
	loader  Loader
	log     *logger.Logger
	metrics *observability.Metrics
	cache   *lru.Cache[features.Vector, model.Prediction]
	tracer  trace.Tracer
}

type Option func(*Service) error

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) error {
		s.metrics = m
		return nil
	}
}

// WithCacheSize memoizes up to n predictions keyed by the encoded vector.
// n <= 0 disables the memo.
func WithCacheSize(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			s.cache = nil
			return nil
		}
		c, err := lru.New[features.Vector, model.Prediction](n)
		if err != nil {
			return fmt.Errorf("prediction cache: %w", err)
		}
		s.cache = c
		return nil
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) error {
		s.tracer = tp.Tracer("heartcheck/prediction")
		return nil
	}
}

func NewService(loader Loader, log *logger.Logger, opts ...Option) (*Service, error) {
	if loader == nil {
		return nil, errors.New("prediction service needs a model loader")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		loader: loader,
		log:    log.With("service", "PredictionService"),
		tracer: otel.Tracer("heartcheck/prediction"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Predict validates raw, encodes it and classifies it. Validation failures
// are returned as-is (see patient.IsValidationError); anything after
// validation is a *PredictionError.
func (s *Service) Predict(ctx context.Context, raw patient.RawFields) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.predict")
	defer span.End()

	rec, err := s.validate(ctx, raw)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return Result{}, err
	}
	return s.predictRecord(ctx, span, rec)
}

// PredictRecord classifies an already validated record.
func (s *Service) PredictRecord(ctx context.Context, rec patient.Record) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.predict_record")
	defer span.End()
	return s.predictRecord(ctx, span, rec)
}

// Encode validates raw and returns its feature vector without predicting.
func (s *Service) Encode(ctx context.Context, raw patient.RawFields) (features.Vector, error) {
	rec, err := s.validate(ctx, raw)
	if err != nil {
		return features.Vector{}, err
	}
	return features.Encode(rec), nil
}

func (s *Service) validate(ctx context.Context, raw patient.RawFields) (patient.Record, error) {
	_, span := s.tracer.Start(ctx, "prediction.validate")
	defer span.End()

	rec, err := patient.Validate(raw)
	if err != nil {
		for family, sentinel := range validationFamilies {
			if errors.Is(err, sentinel) {
				s.metrics.IncValidationFailure(family)
			}
		}
		// Error text can echo submitted values; spans only get keys and reasons.
		fields := patient.FieldErrors(err)
		attrs := make([]attribute.KeyValue, 0, len(fields))
		for key, reason := range fields {
			attrs = append(attrs, attribute.String("validation."+key, reason))
		}
		span.AddEvent("validation failed", trace.WithAttributes(attrs...))
		span.SetStatus(codes.Error, "validation failed")
		s.log.Debug("Submission rejected", "fields", fields)
		return patient.Record{}, err
	}
	return rec, nil
}

var validationFamilies = map[string]error{
	"missing_field":     patient.ErrMissingField,
	"missing_selection": patient.ErrMissingSelection,
	"invalid_field":     patient.ErrInvalidField,
	"invalid_selection": patient.ErrInvalidSelection,
}

func (s *Service) predictRecord(ctx context.Context, span trace.Span, rec patient.Record) (Result, error) {
	vec := features.Encode(rec)

	pred, cached, err := s.classify(ctx, vec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		return Result{}, err
	}

	msg, err := LabelMessage(pred.Label)
	if err != nil {
		s.metrics.IncPredictionFailure(StageLabel)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown label")
		return Result{}, &PredictionError{Stage: StageLabel, Err: err}
	}
	span.SetAttributes(attribute.Int("prediction.label", pred.Label), attribute.Bool("prediction.cached", cached))

	return Result{
		Label:           pred.Label,
		Message:         msg,
		HasHeartDisease: pred.Label == model.LabelDisease,
		Probability:     pred.Probability,
		Vector:          vec,
		Cached:          cached,
	}, nil
}

func (s *Service) classify(ctx context.Context, vec features.Vector) (model.Prediction, bool, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(vec); ok {
			s.metrics.ObserveCacheLookup(true)
			return p, true, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	clf, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.IncPredictionFailure(StageLoad)
		s.log.Error("Model unavailable", "error", err)
		return model.Prediction{}, false, &PredictionError{Stage: StageLoad, Err: err}
	}

	ctx, span := s.tracer.Start(ctx, "prediction.classify")
	defer span.End()

	start := time.Now()
	p, err := clf.Predict(ctx, vec)
	if err != nil {
		s.metrics.IncPredictionFailure(StagePredict)
		s.log.Error("Model prediction failed", "error", err)
		return model.Prediction{}, false, &PredictionError{Stage: StagePredict, Err: err}
	}
	s.metrics.ObservePrediction(p.Label, time.Since(start))

	if s.cache != nil {
		s.cache.Add(vec, p)
	}
	return p, false, nil
}

// Model returns the loaded classifier's metadata.
func (s *Service) Model(ctx context.Context) (model.Info, error) {
	clf, err := s.loader.Load(ctx)
	if err != nil {
		return model.Info{}, &PredictionError{Stage: StageLoad, Err: err}
	}
	return clf.Info(), nil
}
