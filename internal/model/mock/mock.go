package mock

import (
	"context"
	"sync/atomic"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
)

// Classifier returns a fixed label. Err, when set, is returned instead.
type Classifier struct {
	Label int
	Err   error

	calls atomic.Int64
}

func New(label int) *Classifier {
	return &Classifier{Label: label}
}

func (c *Classifier) Predict(ctx context.Context, x features.Vector) (model.Prediction, error) {
	_ = x
	c.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	if c.Err != nil {
		return model.Prediction{}, c.Err
	}
	return model.Prediction{Label: c.Label, Probability: float64(c.Label)}, nil
}

func (c *Classifier) Info() model.Info {
	return model.Info{Kind: model.KindMock, FeatureNames: features.Names()}
}

// Calls reports how many times Predict ran.
func (c *Classifier) Calls() int64 { return c.calls.Load() }
