package evaluation

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/patient"
	"github.com/yungbote/heartcheck/internal/prediction"
)

// Predictor classifies a validated record.
type Predictor interface {
	PredictRecord(ctx context.Context, rec patient.Record) (prediction.Result, error)
}

type Options struct {
	// Workers bounds concurrent predictions; <= 0 uses GOMAXPROCS.
	Workers int
}

// Report is a confusion matrix with LabelDisease as the positive class.
type Report struct {
	Total          int `json:"total"`
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

func (r Report) Correct() int { return r.TruePositives + r.TrueNegatives }

func (r Report) Accuracy() float64 { return ratio(r.Correct(), r.Total) }

func (r Report) Precision() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
}

func (r Report) Recall() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
}

func (r Report) String() string {
	return fmt.Sprintf(
		"samples=%d accuracy=%.2f%% precision=%.2f%% recall=%.2f%% tp=%d tn=%d fp=%d fn=%d",
		r.Total, r.Accuracy()*100, r.Precision()*100, r.Recall()*100,
		r.TruePositives, r.TrueNegatives, r.FalsePositives, r.FalseNegatives,
	)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Evaluate predicts every sample and tallies the outcome. The first
// prediction error cancels the rest and is returned.
func Evaluate(ctx context.Context, p Predictor, samples []Sample, opts Options) (Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	predicted := make([]int, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range samples {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			res, err := p.PredictRecord(gctx, samples[i].Record)
			if err != nil {
				return fmt.Errorf("line %d: %w", samples[i].Line, err)
			}
			predicted[i] = res.Label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var r Report
	for i, s := range samples {
		r.Total++
		switch got := predicted[i]; {
		case got == model.LabelDisease && s.Label == model.LabelDisease:
			r.TruePositives++
		case got == model.LabelNoDisease && s.Label == model.LabelNoDisease:
			r.TrueNegatives++
		case got == model.LabelDisease:
			r.FalsePositives++
		default:
			r.FalseNegatives++
		}
	}
	return r, nil
}
