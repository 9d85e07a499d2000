// Package barneshut implements the Barnes-Hut-approximated sigmoid-matching
// solver: every sample is updated against an exact set of near-field
// siblings (the other samples in its own deepest grid cell) plus one
// population-weighted cell average per ancestor layer (the far field),
// instead of every other sample. This trades exactness for an update cost
// that scales with grid depth rather than sample count.
package barneshut

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/sigred/sigred/internal/morton"
	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/stats"
	"github.com/sigred/sigred/internal/workerpool"
)

// minParallelSamples is the sample count below which grid preparation's
// binning pass runs on the calling goroutine instead of dispatching to the
// pool.
const minParallelSamples = 2048

// Grid is the quad-tree spatial index backing the far/near-field update: a
// flat, layer-offset-addressed array of per-cell gradients, target/original
// averages, and populations, plus a reverse index from leaf cell to the
// sample indices it contains.
//
// Grid is 2-D only: the quad-tree split only makes sense for a target
// dimension of exactly 2.
type Grid[Target numeric.Float, Original numeric.Float] struct {
	depth       int
	targetDim   int
	originalDim int

	gradients        []Target
	targetAverages   []Target
	originalAverages []Original
	populations      []atomic.Int64
	reverseIndex     [][]int
	index            []int

	minValues []Target
	maxValues []Target
}

// NewGrid builds an empty Grid of the given depth. targetDim must be 2.
func NewGrid[Target numeric.Float, Original numeric.Float](depth, targetDim, originalDim int) (*Grid[Target, Original], error) {
	if targetDim != 2 {
		return nil, errors.New("currently we only support a target dimension of 2")
	}

	totalCells := morton.LayerOffset(depth + 1)
	gridSize := morton.LayerSize(depth)

	return &Grid[Target, Original]{
		depth:        depth,
		targetDim:    targetDim,
		originalDim:  originalDim,
		gradients:    make([]Target, targetDim*totalCells),
		populations:  make([]atomic.Int64, totalCells),
		reverseIndex: make([][]int, gridSize),
	}, nil
}

func (g *Grid[Target, Original]) reset() {
	for i := range g.gradients {
		g.gradients[i] = 0
	}
	for i := range g.populations {
		g.populations[i].Store(0)
	}
	for i := range g.targetAverages {
		g.targetAverages[i] = 0
	}
	for i := range g.originalAverages {
		g.originalAverages[i] = 0
	}
	for i := range g.reverseIndex {
		g.reverseIndex[i] = g.reverseIndex[i][:0]
	}
}

// cellCoordinates returns the (column, row) of the cell containing (x, y) at
// the given layer. The grid's bounding box must already be set via Prepare.
func (g *Grid[Target, Original]) cellCoordinates(x, y Target, layer int) (col, row int) {
	return morton.CellCoordinates(
		float64(x), float64(y),
		float64(g.minValues[0]), float64(g.maxValues[0]),
		float64(g.minValues[1]), float64(g.maxValues[1]),
		layer,
	)
}

func (g *Grid[Target, Original]) relativeCellID(x, y Target, layer int) int {
	col, row := g.cellCoordinates(x, y, layer)
	return morton.RelativeCellID(col, row)
}

func (g *Grid[Target, Original]) absoluteCellID(x, y Target, layer int) int {
	return morton.LayerOffset(layer) + g.relativeCellID(x, y, layer)
}

// childRange returns the absolute id range [start, end) of the four
// children of cell, which lives at layer.
//
// The reference implementation this package is ported from computes a
// cell's children as cell*4..(cell+1)*4. With this package's addressing the
// root is not stored (LayerOffset(1) == 0), so LayerOffset(layer+1) ==
// 4*LayerOffset(layer)+4 and the children of cell are 4*cell+4..4*cell+8 at
// every layer; childRange derives that range from the layer offsets.
func childRange(cell, layer int) (start, end int) {
	relative := cell - morton.LayerOffset(layer)
	start = morton.LayerOffset(layer+1) + 4*relative
	return start, start + 4
}

// farAwayLeafs returns, for the point (x, y), one ancestor cell id per grid
// layer from 1 up to (but excluding) the deepest layer: the far-field cells
// whose population-weighted average stands in for every sample inside them.
func (g *Grid[Target, Original]) farAwayLeafs(x, y Target) []int {
	if g.depth <= 1 {
		return nil
	}
	ids := make([]int, 0, g.depth-1)
	for layer := 1; layer < g.depth; layer++ {
		ids = append(ids, g.absoluteCellID(x, y, layer))
	}
	return ids
}

// siblings returns the sample indices sharing (x, y)'s deepest-layer cell,
// the near-field set exact updates are computed against.
func (g *Grid[Target, Original]) siblings(x, y Target) []int {
	id := g.relativeCellID(x, y, g.depth)
	return g.reverseIndex[id]
}

func (g *Grid[Target, Original]) targetAverage(cell int) []Target {
	return g.targetAverages[cell*g.targetDim : (cell+1)*g.targetDim]
}

func (g *Grid[Target, Original]) originalAverage(cell int) []Original {
	return g.originalAverages[cell*g.originalDim : (cell+1)*g.originalDim]
}

func (g *Grid[Target, Original]) gradient(cell int) []Target {
	return g.gradients[cell*g.targetDim : (cell+1)*g.targetDim]
}

func (g *Grid[Target, Original]) population(cell int) int64 {
	return g.populations[cell].Load()
}

// downpropagateGradient pushes each layer's accumulated gradient down into
// its four children, from the shallowest stored layer to the deepest, so
// that leaf cells end up with the sum of every ancestor's far-field
// gradient contribution.
func (g *Grid[Target, Original]) downpropagateGradient(pool *workerpool.Pool) {
	for layer := 1; layer < g.depth; layer++ {
		start := morton.LayerOffset(layer)
		end := morton.LayerOffset(layer + 1)
		n := end - start

		apply := func(i int) {
			cell := start + i
			grad := g.gradient(cell)
			childStart, childEnd := childRange(cell, layer)
			for child := childStart; child < childEnd; child++ {
				cg := g.gradient(child)
				for d := range cg {
					cg[d] += grad[d]
				}
			}
		}

		if pool == nil {
			for i := 0; i < n; i++ {
				apply(i)
			}
			continue
		}
		pool.ParallelForAtomic(n, apply)
	}
}

// applyGradient adds each sample's deepest-cell gradient (after
// down-propagation) onto its target features in place.
func (g *Grid[Target, Original]) applyGradient(pool *workerpool.Pool, targetFeatures []Target) {
	n := len(g.index)

	apply := func(i int) {
		cell := g.index[i]
		tf := targetFeatures[i*g.targetDim : (i+1)*g.targetDim]
		gr := g.gradient(cell)
		for d := range tf {
			tf[d] += gr[d]
		}
	}

	if pool == nil {
		for i := 0; i < n; i++ {
			apply(i)
		}
		return
	}
	pool.ParallelForAtomic(n, apply)
}

// prepare rebuilds the grid from scratch for one iteration: bins every
// sample into its deepest-layer cell, computes per-cell target/original
// averages, up-propagates populations and averages to every ancestor layer,
// and rebuilds the leaf reverse index used for near-field lookups.
func (g *Grid[Target, Original]) prepare(pool *workerpool.Pool, targetFeatures []Target, originalFeatures []Original) error {
	g.reset()

	minValues, maxValues, err := stats.MinMax(pool, targetFeatures, g.targetDim)
	if err != nil {
		return errors.Wrap(err, "computing target bounding box")
	}
	g.minValues = minValues
	g.maxValues = maxValues

	numSamples := len(targetFeatures) / g.targetDim
	totalCells := len(g.populations)

	targetSums := make([]Target, totalCells*g.targetDim)
	originalSums := make([]Original, totalCells*g.originalDim)

	accumulate := func(start, end int, partialTarget []Target, partialOriginal []Original) {
		for s := start; s < end; s++ {
			tf := targetFeatures[s*g.targetDim : (s+1)*g.targetDim]
			of := originalFeatures[s*g.originalDim : (s+1)*g.originalDim]

			cell := g.absoluteCellID(tf[0], tf[1], g.depth)
			g.populations[cell].Add(1)

			for d := 0; d < g.targetDim; d++ {
				partialTarget[cell*g.targetDim+d] += tf[d]
			}
			for d := 0; d < g.originalDim; d++ {
				partialOriginal[cell*g.originalDim+d] += of[d]
			}
		}
	}

	if pool == nil || numSamples < minParallelSamples {
		accumulate(0, numSamples, targetSums, originalSums)
	} else {
		var mu sync.Mutex
		batch := (numSamples + pool.NumWorkers() - 1) / pool.NumWorkers()
		if batch < 1 {
			batch = 1
		}
		pool.ParallelForAtomicBatched(numSamples, batch, func(start, end int) {
			partialTarget := make([]Target, totalCells*g.targetDim)
			partialOriginal := make([]Original, totalCells*g.originalDim)
			accumulate(start, end, partialTarget, partialOriginal)
			mu.Lock()
			for i := range targetSums {
				targetSums[i] += partialTarget[i]
			}
			for i := range originalSums {
				originalSums[i] += partialOriginal[i]
			}
			mu.Unlock()
		})
	}

	// Cell sums become cell averages at the leaf layer first; internal
	// layers are filled in by the up-propagation pass below.
	leafStart := morton.LayerOffset(g.depth)
	for cell := leafStart; cell < totalCells; cell++ {
		pop := g.populations[cell].Load()
		if pop == 0 {
			continue
		}
		for d := 0; d < g.targetDim; d++ {
			targetSums[cell*g.targetDim+d] /= Target(pop)
		}
		for d := 0; d < g.originalDim; d++ {
			originalSums[cell*g.originalDim+d] /= Original(pop)
		}
	}
	g.targetAverages = targetSums
	g.originalAverages = originalSums

	// Up-propagate populations and averages from the penultimate layer up
	// to the first stored layer.
	for layer := g.depth - 1; layer >= 1; layer-- {
		start := morton.LayerOffset(layer)
		end := morton.LayerOffset(layer + 1)

		propagate := func(cell int) {
			childStart, childEnd := childRange(cell, layer)
			var total int64
			for child := childStart; child < childEnd; child++ {
				pop := g.populations[child].Load()
				if pop == 0 {
					continue
				}
				total += pop
				ta := g.targetAverage(cell)
				ca := g.targetAverage(child)
				for d := range ta {
					ta[d] += ca[d] * Target(pop)
				}
				oa := g.originalAverage(cell)
				co := g.originalAverage(child)
				for d := range oa {
					oa[d] += co[d] * Original(pop)
				}
			}
			g.populations[cell].Store(total)
			if total == 0 {
				return
			}
			ta := g.targetAverage(cell)
			for d := range ta {
				ta[d] /= Target(total)
			}
			oa := g.originalAverage(cell)
			for d := range oa {
				oa[d] /= Original(total)
			}
		}

		if pool == nil {
			for cell := start; cell < end; cell++ {
				propagate(cell)
			}
			continue
		}
		pool.ParallelForAtomic(end-start, func(i int) { propagate(start + i) })
	}

	// Rebuild the leaf reverse index and the per-sample absolute cell id
	// used by applyGradient.
	g.index = make([]int, numSamples)
	for s := 0; s < numSamples; s++ {
		tf := targetFeatures[s*g.targetDim : (s+1)*g.targetDim]
		relative := g.relativeCellID(tf[0], tf[1], g.depth)
		g.reverseIndex[relative] = append(g.reverseIndex[relative], s)
		g.index[s] = morton.LayerOffset(g.depth) + relative
	}

	return nil
}
