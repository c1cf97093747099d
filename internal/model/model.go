// Package model defines the classifier contract shared by every artifact
// format and the sources artifacts are read from.
package model

import (
	"context"

	"github.com/yungbote/heartcheck/internal/features"
)

type Kind string

const (
	KindXGBoost      Kind = "xgboost"
	KindDecisionTree Kind = "decision_tree"
	KindRandomForest Kind = "random_forest"
	KindMock         Kind = "mock"
)

// Labels produced by every classifier.
const (
	LabelNoDisease = 0
	LabelDisease   = 1
)

// DefaultThreshold is the probability at or above which a margin-based
// classifier reports LabelDisease.
const DefaultThreshold = 0.5

type Prediction struct {
	Label int
	// Probability of LabelDisease. Vote-based classifiers report the share of
	// trees voting for it; a single tree reports 0 or 1.
	Probability float64
}

// Metric is an accuracy pair recorded at training time, as fractions in [0, 1].
type Metric struct {
	Name          string  `json:"name" yaml:"name"`
	TrainAccuracy float64 `json:"train_accuracy" yaml:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy" yaml:"test_accuracy"`
}

type Info struct {
	Kind         Kind     `json:"kind"`
	Source       string   `json:"source,omitempty"`
	Trees        int      `json:"trees"`
	FeatureNames []string `json:"feature_names"`
	Threshold    float64  `json:"threshold,omitempty"`
	Metrics      []Metric `json:"metrics,omitempty"`

	// Sample marks an illustrative artifact; it carries no metrics.
	Sample bool `json:"sample,omitempty"`
}

// Classifier is a loaded, immutable model. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Predict(ctx context.Context, x features.Vector) (Prediction, error)
	Info() Info
}
