package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
	"github.com/yungbote/heartcheck/internal/model/tree"
	"github.com/yungbote/heartcheck/internal/model/xgboost"
)

// envelope wraps formats that carry no metadata of their own.
type envelope struct {
	Kind         model.Kind      `json:"kind"`
	FeatureNames []string        `json:"feature_names"`
	Metrics      []model.Metric  `json:"metrics"`
	Sample       bool            `json:"sample"`
	Tree         []tree.Node     `json:"tree"`
	Trees        [][]tree.Node   `json:"trees"`
	Booster      json.RawMessage `json:"booster"`
}

// annotated overrides Info with what the loader learned about the artifact.
type annotated struct {
	model.Classifier
	info model.Info
}

func (a *annotated) Info() model.Info { return a.info }

// Decode builds a classifier from raw artifact bytes. want restricts the
// accepted kind; the empty kind accepts anything recognisable.
func Decode(raw []byte, want model.Kind, threshold float64) (model.Classifier, error) {
	a, err := decode(raw, want, threshold)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func decode(raw []byte, want model.Kind, threshold float64) (*annotated, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("artifact is empty")
	}

	var (
		clf     model.Classifier
		names   []string
		metrics []model.Metric
		sample  bool
	)

	if xgboost.IsDocument(raw) {
		b, err := xgboost.Decode(bytes.NewReader(raw), xgboost.Options{Threshold: threshold})
		if err != nil {
			return nil, err
		}
		clf, names = b, b.FeatureNames()
	} else {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("artifact is not a recognised model: %w", err)
		}
		names, metrics, sample = env.FeatureNames, env.Metrics, env.Sample

		switch model.Kind(strings.ToLower(string(env.Kind))) {
		case model.KindXGBoost:
			if len(env.Booster) == 0 {
				return nil, errors.New("xgboost envelope has no booster")
			}
			b, err := xgboost.Decode(bytes.NewReader(env.Booster), xgboost.Options{Threshold: threshold})
			if err != nil {
				return nil, err
			}
			clf = b
			if len(names) == 0 {
				names = b.FeatureNames()
			}
		case model.KindDecisionTree:
			dt, err := tree.New(env.Tree)
			if err != nil {
				return nil, err
			}
			clf = dt
		case model.KindRandomForest:
			f, err := tree.NewForest(env.Trees)
			if err != nil {
				return nil, err
			}
			clf = f
		case "":
			return nil, errors.New("artifact has no kind")
		default:
			return nil, fmt.Errorf("unsupported model kind %q", env.Kind)
		}
	}

	info := clf.Info()
	if want != "" && info.Kind != want {
		return nil, fmt.Errorf("artifact holds a %s model, configured kind is %s", info.Kind, want)
	}
	if err := features.CheckNames(names); err != nil {
		return nil, err
	}

	info.FeatureNames = features.Names()
	// A sample artifact was not trained on the dataset, so recorded
	// accuracies do not describe it.
	if sample {
		info.Sample = true
		metrics = nil
	}
	info.Metrics = metrics
	return &annotated{Classifier: clf, info: info}, nil
}
