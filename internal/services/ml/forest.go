package ml

import (
	"math"
	"math/rand"
	"sort"

	"QuantEase/internal/domain/models"
)

// randomForest is a bagged ensemble of CART trees. Each tree fits a
// bootstrap resample with sqrt(d) feature subsampling per node; the ensemble
// probability is the mean of the leaf probabilities. All randomness comes
// from the seeded rng, so repeated runs with the same seed agree.
type randomForest struct {
	nTrees   int
	maxDepth int
	minLeaf  int
	rng      *rand.Rand
	trees    []*treeNode
}

func newRandomForest(seed int64) *randomForest {
	return &randomForest{
		nTrees:   100,
		maxDepth: 10,
		minLeaf:  2,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (f *randomForest) Kind() string { return models.ModelRandomForest }

type treeNode struct {
	leaf      bool
	prob      float64 // P(label=1) at a leaf
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (f *randomForest) Fit(X [][]float64, y []int) {
	if len(X) == 0 {
		return
	}
	d := len(X[0])
	mtry := int(math.Sqrt(float64(d)))
	if mtry < 1 {
		mtry = 1
	}

	f.trees = make([]*treeNode, 0, f.nTrees)
	for t := 0; t < f.nTrees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = f.rng.Intn(len(X))
		}
		f.trees = append(f.trees, f.grow(X, y, idx, mtry, 0))
	}
}

func (f *randomForest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.trees) == 0 {
		return out
	}
	for i, x := range X {
		s := 0.0
		for _, tr := range f.trees {
			s += tr.predict(x)
		}
		out[i] = s / float64(len(f.trees))
	}
	return out
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

func (f *randomForest) grow(X [][]float64, y []int, idx []int, mtry, depth int) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	prob := float64(pos) / float64(len(idx))

	if depth >= f.maxDepth || len(idx) < 2*f.minLeaf || pos == 0 || pos == len(idx) {
		return &treeNode{leaf: true, prob: prob}
	}

	feat, thr, ok := f.bestSplit(X, y, idx, mtry)
	if !ok {
		return &treeNode{leaf: true, prob: prob}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < f.minLeaf || len(right) < f.minLeaf {
		return &treeNode{leaf: true, prob: prob}
	}

	return &treeNode{
		feature:   feat,
		threshold: thr,
		left:      f.grow(X, y, left, mtry, depth+1),
		right:     f.grow(X, y, right, mtry, depth+1),
	}
}

// bestSplit scans mtry randomly chosen features for the threshold with the
// lowest weighted gini impurity.
func (f *randomForest) bestSplit(X [][]float64, y []int, idx []int, mtry int) (int, float64, bool) {
	d := len(X[0])
	feats := f.rng.Perm(d)[:mtry]

	bestGini := math.Inf(1)
	bestFeat := -1
	bestThr := 0.0

	order := make([]int, len(idx))
	for _, feat := range feats {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][feat] < X[order[b]][feat] })

		// prefix positives over the sorted order
		total := len(order)
		totalPos := 0
		for _, i := range order {
			totalPos += y[i]
		}

		leftPos := 0
		for k := 1; k < total; k++ {
			leftPos += y[order[k-1]]
			prev, cur := X[order[k-1]][feat], X[order[k]][feat]
			if prev == cur {
				continue
			}
			nl, nr := k, total-k
			gl := giniBinary(leftPos, nl)
			gr := giniBinary(totalPos-leftPos, nr)
			g := (float64(nl)*gl + float64(nr)*gr) / float64(total)
			if g < bestGini {
				bestGini = g
				bestFeat = feat
				bestThr = (prev + cur) / 2
			}
		}
	}

	return bestFeat, bestThr, bestFeat >= 0
}

func giniBinary(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
