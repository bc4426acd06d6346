package regress

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a CART regression tree. Leaves carry the mean
// target of their samples; internal nodes route on x[feature] <= threshold.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil
}

type treeConfig struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	maxFeatures     int // 0 means all features
}

// regressionTree fits on a fixed index set so forests can bootstrap without
// copying rows. Split search is sequential; with a fixed rand source the
// fitted tree is fully reproducible.
type regressionTree struct {
	cfg  treeConfig
	root *treeNode
}

// fit builds the tree on the rows named by samples. Importance mass for
// every accepted split is accumulated into importances, weighted by the
// share of samples reaching the node.
func (t *regressionTree) fit(x [][]float64, y []float64, samples []int, rnd *rand.Rand, importances []float64) {
	t.root = t.buildNode(x, y, samples, 0, len(samples), rnd, importances)
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.isLeaf() {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func (t *regressionTree) buildNode(x [][]float64, y []float64, idx []int, depth, rootSize int, rnd *rand.Rand, importances []float64) *treeNode {
	node := &treeNode{value: meanAt(y, idx)}

	if len(idx) < t.cfg.minSamplesSplit {
		return node
	}
	if t.cfg.maxDepth > 0 && depth >= t.cfg.maxDepth {
		return node
	}

	parentVar := varianceAt(y, idx, node.value)
	if parentVar == 0 {
		return node
	}

	best := t.findBestSplit(x, y, idx, parentVar, rnd)
	if best.feature < 0 {
		return node
	}

	importances[best.feature] += float64(len(idx)) / float64(rootSize) * best.gain

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.buildNode(x, y, best.leftIdx, depth+1, rootSize, rnd, importances)
	node.right = t.buildNode(x, y, best.rightIdx, depth+1, rootSize, rnd, importances)
	return node
}

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

type valueIndex struct {
	v float64
	i int
}

// findBestSplit scans candidate features for the threshold with the largest
// variance reduction. Thresholds are midpoints between adjacent distinct
// values; left and right variances are tracked with running sums so each
// feature costs one sort plus one linear scan.
func (t *regressionTree) findBestSplit(x [][]float64, y []float64, idx []int, parentVar float64, rnd *rand.Rand) splitResult {
	best := splitResult{feature: -1}

	p := len(x[0])
	candidates := make([]int, p)
	for j := range candidates {
		candidates[j] = j
	}
	if t.cfg.maxFeatures > 0 && t.cfg.maxFeatures < p {
		rnd.Shuffle(p, func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		candidates = candidates[:t.cfg.maxFeatures]
	}

	n := len(idx)
	order := make([]valueIndex, n)

	for _, f := range candidates {
		for i, ii := range idx {
			order[i] = valueIndex{v: x[ii][f], i: ii}
		}
		sort.Slice(order, func(a, b int) bool { return order[a].v < order[b].v })

		var sumL, sumSqL float64
		sumR, sumSqR := sumAndSumSq(y, idx)

		for s := 1; s < n; s++ {
			yv := y[order[s-1].i]
			sumL += yv
			sumSqL += yv * yv
			sumR -= yv
			sumSqR -= yv * yv

			if order[s].v == order[s-1].v {
				continue
			}

			nL := float64(s)
			nR := float64(n - s)
			varL := sumSqL/nL - (sumL/nL)*(sumL/nL)
			varR := sumSqR/nR - (sumR/nR)*(sumR/nR)
			if varL < 0 {
				varL = 0
			}
			if varR < 0 {
				varR = 0
			}

			gain := parentVar - (nL*varL+nR*varR)/float64(n)
			if gain > best.gain {
				best.gain = gain
				best.feature = f
				best.threshold = (order[s-1].v + order[s].v) / 2
				best.leftIdx, best.rightIdx = partitionAt(order, s)
			}
		}
	}
	return best
}

func partitionAt(order []valueIndex, s int) (left, right []int) {
	left = make([]int, s)
	for i := 0; i < s; i++ {
		left[i] = order[i].i
	}
	right = make([]int, len(order)-s)
	for i := s; i < len(order); i++ {
		right[i-s] = order[i].i
	}
	return left, right
}

func meanAt(y []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func varianceAt(y []float64, idx []int, mean float64) float64 {
	sum := 0.0
	for _, i := range idx {
		d := y[i] - mean
		sum += d * d
	}
	return sum / float64(len(idx))
}

func sumAndSumSq(y []float64, idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		v := y[i]
		sum += v
		sumSq += v * v
	}
	return sum, sumSq
}
