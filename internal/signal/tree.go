// Package signal implements the directional signal model: a bootstrap
// aggregated regression-tree ensemble with Platt-scaled probability
// calibration.
package signal

import (
	"math"
	"math/rand"
	"sort"
)

// Tree training parameters.
type TreeConfig struct {
	MaxDepth        int
	MinSamplesSplit int
}

// Node is one node of a regression tree. Internal nodes route on
// (FeatureIndex, Threshold); leaves carry the mean target value of the
// samples that reached them. Trees are immutable after training.
type Node struct {
	FeatureIndex int     `json:"feature_index"`
	Threshold    float64 `json:"threshold"`
	Left         *Node   `json:"left,omitempty"`
	Right        *Node   `json:"right,omitempty"`
	Value        float64 `json:"value"`
	Leaf         bool    `json:"leaf"`
}

// Tree is a trained regression tree.
type Tree struct {
	Root *Node `json:"root"`
}

// trainTree grows a tree on the given sample rows. featurePool is the
// subset of feature indices this tree may split on.
func trainTree(samples [][]float64, targets []float64, featurePool []int, cfg TreeConfig) *Tree {
	return &Tree{Root: growNode(samples, targets, featurePool, cfg, 0)}
}

func growNode(samples [][]float64, targets []float64, featurePool []int, cfg TreeConfig, depth int) *Node {
	if depth >= cfg.MaxDepth || len(samples) < cfg.MinSamplesSplit || isPure(targets) {
		return &Node{Leaf: true, Value: mean(targets)}
	}

	feature, threshold, gain := bestSplit(samples, targets, featurePool)
	if gain <= 0 {
		// No split reduces variance: absorb as a leaf.
		return &Node{Leaf: true, Value: mean(targets)}
	}

	leftSamples, leftTargets, rightSamples, rightTargets := partition(samples, targets, feature, threshold)
	if len(leftSamples) == 0 || len(rightSamples) == 0 {
		return &Node{Leaf: true, Value: mean(targets)}
	}

	return &Node{
		FeatureIndex: feature,
		Threshold:    threshold,
		Left:         growNode(leftSamples, leftTargets, featurePool, cfg, depth+1),
		Right:        growNode(rightSamples, rightTargets, featurePool, cfg, depth+1),
	}
}

// bestSplit scans every candidate feature/threshold pair and returns the
// one maximizing variance reduction (parent variance minus size-weighted
// child variance).
func bestSplit(samples [][]float64, targets []float64, featurePool []int) (feature int, threshold, gain float64) {
	parentVar := variance(targets)
	n := float64(len(targets))
	feature = -1

	for _, f := range featurePool {
		for _, candidate := range splitCandidates(samples, f) {
			var leftT, rightT []float64
			for i, s := range samples {
				if s[f] <= candidate {
					leftT = append(leftT, targets[i])
				} else {
					rightT = append(rightT, targets[i])
				}
			}
			if len(leftT) == 0 || len(rightT) == 0 {
				continue
			}

			weighted := (float64(len(leftT))*variance(leftT) + float64(len(rightT))*variance(rightT)) / n
			if g := parentVar - weighted; g > gain {
				gain = g
				feature = f
				threshold = candidate
			}
		}
	}
	return feature, threshold, gain
}

// splitCandidates returns midpoints between adjacent distinct values of
// feature f, capped at a fixed number of quantile cuts for wide samples.
func splitCandidates(samples [][]float64, f int) []float64 {
	const maxCandidates = 16

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s[f]
	}
	sort.Float64s(values)

	var out []float64
	if len(values) <= maxCandidates {
		for i := 1; i < len(values); i++ {
			if values[i] != values[i-1] {
				out = append(out, (values[i]+values[i-1])/2)
			}
		}
		return out
	}

	step := len(values) / maxCandidates
	for i := step; i < len(values); i += step {
		if values[i] != values[i-1] {
			out = append(out, (values[i]+values[i-1])/2)
		}
	}
	return out
}

func partition(samples [][]float64, targets []float64, feature int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	var ls [][]float64
	var lt []float64
	var rs [][]float64
	var rt []float64
	for i, s := range samples {
		if s[feature] <= threshold {
			ls = append(ls, s)
			lt = append(lt, targets[i])
		} else {
			rs = append(rs, s)
			rt = append(rt, targets[i])
		}
	}
	return ls, lt, rs, rt
}

// Predict routes the feature row to a leaf and returns its value together
// with the feature indices visited on the decision path.
func (t *Tree) Predict(row []float64) (float64, []int) {
	node := t.Root
	var path []int
	for !node.Leaf {
		path = append(path, node.FeatureIndex)
		if row[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value, path
}

// validate checks structural integrity of a deserialized tree: every
// internal node has both children and a feature index within bounds.
func (t *Tree) validate(featureCount int) bool {
	return validateNode(t.Root, featureCount)
}

func validateNode(n *Node, featureCount int) bool {
	if n == nil {
		return false
	}
	if n.Leaf {
		return !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
	}
	if n.FeatureIndex < 0 || n.FeatureIndex >= featureCount {
		return false
	}
	return validateNode(n.Left, featureCount) && validateNode(n.Right, featureCount)
}

// isPure reports whether the targets are numerically indistinguishable.
func isPure(targets []float64) bool {
	if len(targets) == 0 {
		return true
	}
	first := targets[0]
	for _, t := range targets[1:] {
		if math.Abs(t-first) > 1e-12 {
			return false
		}
	}
	return true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// sampleFeatures draws a random subset of round(n*ratio) feature indices
// without replacement.
func sampleFeatures(n int, ratio float64, rng *rand.Rand) []int {
	k := int(math.Round(float64(n) * ratio))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	perm := rng.Perm(n)
	pool := make([]int, k)
	copy(pool, perm[:k])
	return pool
}
