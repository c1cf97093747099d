package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
)

// Forest is a majority vote over decision trees. A tied vote is reported as
// disease.
type Forest struct {
	trees []*DecisionTree
}

func NewForest(trees [][]Node) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	f := &Forest{trees: make([]*DecisionTree, 0, len(trees))}
	for i, nodes := range trees {
		dt, err := New(nodes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		f.trees = append(f.trees, dt)
	}
	return f, nil
}

func (f *Forest) Predict(ctx context.Context, x features.Vector) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	votes := 0
	for _, dt := range f.trees {
		votes += dt.Classify(&x)
	}
	p := float64(votes) / float64(len(f.trees))
	label := model.LabelNoDisease
	if 2*votes >= len(f.trees) {
		label = model.LabelDisease
	}
	return model.Prediction{Label: label, Probability: p}, nil
}

func (f *Forest) Info() model.Info {
	return model.Info{Kind: model.KindRandomForest, Trees: len(f.trees)}
}
