package ml

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Forest is a random forest over CART regression trees. With binary 0/1
// labels the averaged leaf values are positive-class probabilities, so the
// same structure serves both the regression (actual_pct) and classification
// (winner) tasks. Trees consume raw, unscaled inputs.
type Forest struct {
	Trees      []*TreeNode `json:"trees"`
	NumTrees   int         `json:"num_trees"`
	MaxDepth   int         `json:"max_depth"`
	MinLeaf    int         `json:"min_leaf"`
	NumColumns int         `json:"num_columns"`
}

// TreeNode is one node of a fitted CART tree. Leaves carry the mean label of
// their training rows.
type TreeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// ForestOptions control forest fitting. Zero values pick the defaults.
type ForestOptions struct {
	NumTrees int
	MaxDepth int
	MinLeaf  int
}

func (o ForestOptions) withDefaults() ForestOptions {
	if o.NumTrees == 0 {
		o.NumTrees = 100
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = 8
	}
	if o.MinLeaf == 0 {
		o.MinLeaf = 2
	}
	return o
}

// FitForest fits a seeded random forest: bootstrap row sampling plus sqrt
// feature subsampling per split. The same seed over the same data produces
// an identical forest.
func FitForest(rows [][]float64, y []float64, opts ForestOptions, rng *rand.Rand) (*Forest, error) {
	if len(rows) == 0 || len(rows) != len(y) {
		return nil, fmt.Errorf("forest fit needs matching non-empty X and y, got %d rows and %d labels", len(rows), len(y))
	}

	opts = opts.withDefaults()
	cols := len(rows[0])
	f := &Forest{
		Trees:      make([]*TreeNode, 0, opts.NumTrees),
		NumTrees:   opts.NumTrees,
		MaxDepth:   opts.MaxDepth,
		MinLeaf:    opts.MinLeaf,
		NumColumns: cols,
	}

	mtry := int(math.Max(1, math.Round(math.Sqrt(float64(cols)))))
	builder := treeBuilder{
		rows:     rows,
		y:        y,
		maxDepth: opts.MaxDepth,
		minLeaf:  opts.MinLeaf,
		mtry:     mtry,
		rng:      rng,
	}

	n := len(rows)
	for t := 0; t < opts.NumTrees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		f.Trees = append(f.Trees, builder.build(sample, 0))
	}

	return f, nil
}

// Predict averages the member trees' responses for one row.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != f.NumColumns {
		return 0, fmt.Errorf("row has %d columns, forest fitted on %d", len(row), f.NumColumns)
	}
	var sum float64
	for _, tree := range f.Trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(f.Trees)), nil
}

func (n *TreeNode) predict(row []float64) float64 {
	node := n
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

type treeBuilder struct {
	rows     [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	mtry     int
	rng      *rand.Rand
}

func (b treeBuilder) build(indices []int, depth int) *TreeNode {
	if depth >= b.maxDepth || len(indices) < 2*b.minLeaf || b.pure(indices) {
		return &TreeNode{Leaf: true, Value: b.mean(indices)}
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return &TreeNode{Leaf: true, Value: b.mean(indices)}
	}

	var left, right []int
	for _, i := range indices {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return &TreeNode{Leaf: true, Value: b.mean(indices)}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the threshold minimizing the
// weighted sum of squared errors of the two children.
func (b treeBuilder) bestSplit(indices []int) (feature int, threshold float64, ok bool) {
	features := b.sampleFeatures()

	bestSSE := math.Inf(1)
	values := make([]float64, 0, len(indices))

	for _, f := range features {
		values = values[:0]
		for _, i := range indices {
			values = append(values, b.rows[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			t := (values[v] + values[v-1]) / 2
			sse := b.splitSSE(indices, f, t)
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = t
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b treeBuilder) splitSSE(indices []int, feature int, threshold float64) float64 {
	var nL, nR float64
	var sumL, sumR, sqL, sqR float64
	for _, i := range indices {
		v := b.y[i]
		if b.rows[i][feature] <= threshold {
			nL++
			sumL += v
			sqL += v * v
		} else {
			nR++
			sumR += v
			sqR += v * v
		}
	}
	if nL == 0 || nR == 0 {
		return math.Inf(1)
	}
	// SSE = Σy² − (Σy)²/n per side.
	return (sqL - sumL*sumL/nL) + (sqR - sumR*sumR/nR)
}

func (b treeBuilder) sampleFeatures() []int {
	cols := len(b.rows[0])
	perm := b.rng.Perm(cols)
	return perm[:b.mtry]
}

func (b treeBuilder) mean(indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += b.y[i]
	}
	return sum / float64(len(indices))
}

func (b treeBuilder) pure(indices []int) bool {
	first := b.y[indices[0]]
	for _, i := range indices[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}
