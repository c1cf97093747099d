package prediction

import (
	"errors"
	"fmt"
)

var ErrPredictionFailed = errors.New("prediction failed")

// Stages at which a validated request can fail.
const (
	StageLoad    = "load"
	StagePredict = "predict"
	StageLabel   = "label"
)

// PredictionError is an operational failure after validation succeeded. It
// is never retried.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Is(target error) bool { return target == ErrPredictionFailed }

func (e *PredictionError) Unwrap() error { return e.Err }
