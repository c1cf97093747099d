// Package tree evaluates node-array decision trees and random forests.
//
// A tree is a flat slice of nodes with the root at index 0. Internal nodes
// send x[feature_idx] <= threshold to left_child and everything else to
// right_child; leaves carry class_label.
package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/heartcheck/internal/features"
	"github.com/yungbote/heartcheck/internal/model"
)

type Node struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree is a validated, immutable tree.
type DecisionTree struct {
	nodes []Node
}

// New validates nodes and returns a tree. Every path from the root must end
// at a leaf labelled 0 or 1.
func New(nodes []Node) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("tree has no nodes")
	}
	if err := validate(nodes); err != nil {
		return nil, err
	}
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return &DecisionTree{nodes: cp}, nil
}

func validate(nodes []Node) error {
	// 0 unvisited, 1 on the current path, 2 done
	state := make([]uint8, len(nodes))
	var walk func(i int) error
	walk = func(i int) error {
		if i < 0 || i >= len(nodes) {
			return fmt.Errorf("child index %d out of range", i)
		}
		switch state[i] {
		case 1:
			return fmt.Errorf("cycle at node %d", i)
		case 2:
			return nil
		}
		n := nodes[i]
		if n.IsLeaf {
			if n.ClassLabel != model.LabelNoDisease && n.ClassLabel != model.LabelDisease {
				return fmt.Errorf("leaf %d has class label %d", i, n.ClassLabel)
			}
			state[i] = 2
			return nil
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= int(features.NumColumns) {
			return fmt.Errorf("node %d splits on feature %d", i, n.FeatureIdx)
		}
		state[i] = 1
		if err := walk(n.LeftChild); err != nil {
			return err
		}
		if err := walk(n.RightChild); err != nil {
			return err
		}
		state[i] = 2
		return nil
	}
	return walk(0)
}

// Classify returns the leaf label for x.
func (dt *DecisionTree) Classify(x *features.Vector) int {
	idx := 0
	for {
		node := &dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) Predict(ctx context.Context, x features.Vector) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	label := dt.Classify(&x)
	return model.Prediction{Label: label, Probability: float64(label)}, nil
}

func (dt *DecisionTree) Info() model.Info {
	return model.Info{Kind: model.KindDecisionTree, Trees: 1}
}

func (dt *DecisionTree) Len() int { return len(dt.nodes) }
