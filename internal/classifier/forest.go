package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestParams configures Fit.
type ForestParams struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

func (p ForestParams) withDefaults() ForestParams {
	if p.Trees <= 0 {
		p.Trees = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 12
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	return p
}

// Node is a flattened tree node. Leaves carry the fraction of positive
// samples that reached them; internal nodes send x[Feature] <= Threshold
// to Left.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Prob      float64 `json:"p,omitempty"`
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x Vector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Prob
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that every split points at later nodes inside the tree
// and tests a known feature. Children always follow their parent, so a
// valid tree cannot loop.
func (t *Tree) validate(numFeatures int) error {
	if t == nil || len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			if n.Prob < 0 || n.Prob > 1 {
				return fmt.Errorf("node %d: leaf probability %v out of range", i, n.Prob)
			}
			continue
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
	}
	return nil
}

// Forest is a bagged ensemble of CART trees.
type Forest struct {
	NumFeatures int     `json:"num_features"`
	Trees       []*Tree `json:"trees"`
}

// PredictProba averages the leaf probabilities of every tree.
func (f *Forest) PredictProba(x Vector) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

// FitForest trains one tree per bootstrap sample. It returns the forest
// and its out-of-bag accuracy; samples that land in every bootstrap are
// not scored, and when no sample is out of bag the training accuracy is
// reported instead.
func FitForest(ctx context.Context, X []Vector, y []bool, numFeatures int, params ForestParams) (*Forest, float64, error) {
	params = params.withDefaults()
	n := len(X)

	// Per-tree seeds come from one generator so results do not depend on
	// goroutine scheduling.
	master := rand.New(rand.NewSource(params.Seed))
	seeds := make([]int64, params.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*Tree, params.Trees)
	inBag := make([][]bool, params.Trees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < params.Trees; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			sample := make([]int, n)
			bag := make([]bool, n)
			for j := range sample {
				k := rng.Intn(n)
				sample[j] = k
				bag[k] = true
			}
			b := &treeBuilder{X: X, y: y, numFeatures: numFeatures, params: params, rng: rng}
			b.build(sample, 0)
			trees[i] = &Tree{Nodes: b.nodes}
			inBag[i] = bag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	forest := &Forest{NumFeatures: numFeatures, Trees: trees}
	return forest, oobAccuracy(forest, X, y, inBag), nil
}

func oobAccuracy(f *Forest, X []Vector, y []bool, inBag [][]bool) float64 {
	var scored, correct int
	for j := range X {
		var sum float64
		var votes int
		for i, t := range f.Trees {
			if inBag[i][j] {
				continue
			}
			sum += t.predict(X[j])
			votes++
		}
		if votes == 0 {
			continue
		}
		scored++
		if (sum/float64(votes) >= 0.5) == y[j] {
			correct++
		}
	}

	if scored == 0 {
		for j := range X {
			if (f.PredictProba(X[j]) >= 0.5) == y[j] {
				correct++
			}
		}
		scored = len(X)
	}
	if scored == 0 {
		return 0
	}
	return float64(correct) / float64(scored)
}

type treeBuilder struct {
	X           []Vector
	y           []bool
	numFeatures int
	params      ForestParams
	rng         *rand.Rand
	nodes       []Node
}

// build appends the subtree for idx and returns its node index.
func (b *treeBuilder) build(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		if b.y[i] {
			pos++
		}
	}
	prob := float64(pos) / float64(len(idx))

	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Leaf: true, Prob: prob})

	if depth >= b.params.MaxDepth || len(idx) < b.params.MinSamplesSplit || pos == 0 || pos == len(idx) {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx, pos)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

type valueLabel struct {
	v   float64
	pos bool
}

// bestSplit scores sqrt(numFeatures) random non-constant features by Gini
// impurity decrease. Features that are constant on idx do not count
// towards the budget.
func (b *treeBuilder) bestSplit(idx []int, pos int) (int, float64, bool) {
	if b.numFeatures == 0 {
		return 0, 0, false
	}
	mtry := int(math.Sqrt(float64(b.numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	total := float64(len(idx))
	parent := gini(float64(pos), total)
	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	vals := make([]valueLabel, len(idx))
	evaluated := 0
	for _, f := range b.rng.Perm(b.numFeatures) {
		if evaluated >= mtry {
			break
		}
		for k, i := range idx {
			vals[k] = valueLabel{v: b.X[i][f], pos: b.y[i]}
		}
		sort.Slice(vals, func(a, c int) bool { return vals[a].v < vals[c].v })
		if vals[0].v == vals[len(vals)-1].v {
			continue
		}
		evaluated++

		var leftN, leftPos float64
		for k := 0; k < len(vals)-1; k++ {
			leftN++
			if vals[k].pos {
				leftPos++
			}
			if vals[k].v == vals[k+1].v {
				continue
			}
			rightN := total - leftN
			rightPos := float64(pos) - leftPos
			weighted := (leftN*gini(leftPos, leftN) + rightN*gini(rightPos, rightN)) / total
			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (vals[k].v + vals[k+1].v) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(pos, n float64) float64 {
	if n == 0 {
		return 0
	}
	p := pos / n
	return 2 * p * (1 - p)
}
