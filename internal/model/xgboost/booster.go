// Package xgboost evaluates binary classifiers saved with XGBoost's JSON
// model format (Booster.save_model("model.json")).
package xgboost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
)

type document struct {
	Learner *learner `json:"learner"`
	Version []int    `json:"version"`
}

type learner struct {
	FeatureNames      []string          `json:"feature_names"`
	GradientBooster   gradientBooster   `json:"gradient_booster"`
	LearnerModelParam learnerModelParam `json:"learner_model_param"`
	Objective         struct {
		Name string `json:"name"`
	} `json:"objective"`
}

type gradientBooster struct {
	Name  string     `json:"name"`
	Model gbtreeBody `json:"model"`
	// dart nests the tree model one level down and scales each tree.
	Gbtree     *gradientBooster `json:"gbtree"`
	WeightDrop []float64        `json:"weight_drop"`
}

type gbtreeBody struct {
	Trees    []tree `json:"trees"`
	TreeInfo []int  `json:"tree_info"`
}

type learnerModelParam struct {
	BaseScore  string `json:"base_score"`
	NumClass   string `json:"num_class"`
	NumFeature string `json:"num_feature"`
}

type tree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	CategoriesNodes []int      `json:"categories_nodes"`
}

// flexBool accepts both the 0/1 and true/false spellings XGBoost has used.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*b = true
	case "0", "false":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

type node struct {
	left, right int32
	feature     int32
	defaultLeft bool
	// split condition for internal nodes, leaf margin for leaves
	value float64
}

type compiledTree struct {
	nodes  []node
	weight float64
}

// Booster is an immutable, compiled XGBoost binary classifier.
type Booster struct {
	trees        []compiledTree
	baseMargin   float64
	threshold    float64
	objective    string
	featureNames []string
}

type Options struct {
	// Threshold on the positive-class probability; zero means
	// model.DefaultThreshold.
	Threshold float64
}

var supportedObjectives = map[string]bool{
	"binary:logistic": true,
	"binary:logitraw": true,
	"reg:logistic":    true,
}

// IsDocument reports whether raw looks like an XGBoost JSON model.
func IsDocument(raw []byte) bool {
	var probe struct {
		Learner json.RawMessage `json:"learner"`
	}
	return json.Unmarshal(raw, &probe) == nil && len(probe.Learner) > 0
}

// Decode reads and compiles an XGBoost JSON model.
func Decode(r io.Reader, opts Options) (*Booster, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xgboost json: %w", err)
	}
	if doc.Learner == nil {
		return nil, errors.New("xgboost json has no learner")
	}
	return compile(doc.Learner, opts)
}

func compile(l *learner, opts Options) (*Booster, error) {
	obj := strings.TrimSpace(l.Objective.Name)
	if !supportedObjectives[obj] {
		return nil, fmt.Errorf("unsupported objective %q (binary classifiers only)", obj)
	}
	if n := strings.TrimSpace(l.LearnerModelParam.NumClass); n != "" && n != "0" && n != "1" {
		return nil, fmt.Errorf("multi-class model (num_class=%s) is not supported", n)
	}
	if n := strings.TrimSpace(l.LearnerModelParam.NumFeature); n != "" {
		nf, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("num_feature %q: %w", n, err)
		}
		if nf != int(features.NumColumns) {
			return nil, &features.SchemaMismatchError{Got: make([]string, nf)}
		}
	}

	baseScore, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	gb := l.GradientBooster
	var weights []float64
	switch gb.Name {
	case "", "gbtree":
	case "dart":
		if gb.Gbtree == nil {
			return nil, errors.New("dart booster has no gbtree section")
		}
		weights = gb.WeightDrop
		gb = *gb.Gbtree
	default:
		return nil, fmt.Errorf("unsupported booster %q", gb.Name)
	}
	if len(gb.Model.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	if weights != nil && len(weights) != len(gb.Model.Trees) {
		return nil, fmt.Errorf("dart weight_drop has %d entries for %d trees", len(weights), len(gb.Model.Trees))
	}

	b := &Booster{
		trees:        make([]compiledTree, 0, len(gb.Model.Trees)),
		threshold:    opts.Threshold,
		objective:    obj,
		featureNames: append([]string(nil), l.FeatureNames...),
	}
	if b.threshold <= 0 {
		b.threshold = model.DefaultThreshold
	}
	if obj == "binary:logitraw" {
		b.baseMargin = baseScore
	} else {
		if baseScore <= 0 || baseScore >= 1 {
			return nil, fmt.Errorf("base_score %v out of range (0, 1)", baseScore)
		}
		b.baseMargin = logit(baseScore)
	}

	for i, t := range gb.Model.Trees {
		ct, err := compileTree(t)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		ct.weight = 1
		if weights != nil {
			ct.weight = weights[i]
		}
		b.trees = append(b.trees, ct)
	}
	return b, nil
}

func compileTree(t tree) (compiledTree, error) {
	n := len(t.LeftChildren)
	if n == 0 {
		return compiledTree{}, errors.New("empty tree")
	}
	if len(t.RightChildren) != n || len(t.SplitIndices) != n || len(t.SplitConditions) != n {
		return compiledTree{}, errors.New("node arrays have different lengths")
	}
	if len(t.DefaultLeft) != 0 && len(t.DefaultLeft) != n {
		return compiledTree{}, errors.New("default_left length mismatch")
	}
	if len(t.CategoriesNodes) > 0 {
		return compiledTree{}, errors.New("categorical splits are not supported")
	}

	nodes := make([]node, n)
	for i := 0; i < n; i++ {
		l, r := t.LeftChildren[i], t.RightChildren[i]
		nd := node{left: int32(l), right: int32(r), value: t.SplitConditions[i]}
		if len(t.DefaultLeft) > 0 {
			nd.defaultLeft = bool(t.DefaultLeft[i])
		}
		if l != -1 {
			if l <= i || l >= n || r <= i || r >= n {
				return compiledTree{}, fmt.Errorf("node %d has invalid children (%d, %d)", i, l, r)
			}
			f := t.SplitIndices[i]
			if f < 0 || f >= int(features.NumColumns) {
				return compiledTree{}, fmt.Errorf("node %d splits on feature %d", i, f)
			}
			nd.feature = int32(f)
		}
		nodes[i] = nd
	}
	return compiledTree{nodes: nodes}, nil
}

func (t compiledTree) leaf(x *features.Vector) float64 {
	i := int32(0)
	for {
		nd := &t.nodes[i]
		if nd.left == -1 {
			return nd.value
		}
		v := x[nd.feature]
		switch {
		case math.IsNaN(v):
			if nd.defaultLeft {
				i = nd.left
			} else {
				i = nd.right
			}
		case v < nd.value:
			i = nd.left
		default:
			i = nd.right
		}
	}
}

// Margin returns the raw additive score for x.
func (b *Booster) Margin(x features.Vector) float64 {
	m := b.baseMargin
	for _, t := range b.trees {
		m += t.weight * t.leaf(&x)
	}
	return m
}

func (b *Booster) Predict(ctx context.Context, x features.Vector) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	p := sigmoid(b.Margin(x))
	label := model.LabelNoDisease
	if p >= b.threshold {
		label = model.LabelDisease
	}
	return model.Prediction{Label: label, Probability: p}, nil
}

func (b *Booster) FeatureNames() []string {
	return append([]string(nil), b.featureNames...)
}

func (b *Booster) Info() model.Info {
	return model.Info{
		Kind:         model.KindXGBoost,
		Trees:        len(b.trees),
		FeatureNames: b.FeatureNames(),
		Threshold:    b.threshold,
	}
}

// parseBaseScore handles both "5E-1" and the bracketed "[5E-1]" written by
// newer releases.
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return 0.5, nil
	}
	if strings.Contains(s, ",") {
		return 0, fmt.Errorf("vector base_score %q is not supported", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("base_score %q: %w", s, err)
	}
	return v, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func logit(p float64) float64 { return math.Log(p / (1 - p)) }
