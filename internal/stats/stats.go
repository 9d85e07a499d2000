// Package stats computes column-wise reductions over row-major feature
// matrices: sum, mean, variance, standard deviation, and min/max. Every
// reduction is parallelized across rows via internal/workerpool.
package stats

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/sigred/sigred/internal/numeric"
	"github.com/sigred/sigred/internal/workerpool"
)

// minParallelRows is the row count below which reductions just run
// sequentially on the calling goroutine; pool dispatch overhead is not worth
// it for small matrices.
const minParallelRows = 2048

// ErrShape is returned when a matrix's length is not a multiple of its
// declared row width.
var ErrShape = errors.New("matrix length is not a multiple of the row width")

// ErrEmpty is returned when a matrix has zero rows.
var ErrEmpty = errors.New("matrix has no rows")

func rowCount(length, width int) (int, error) {
	if width <= 0 {
		return 0, errors.Wrapf(ErrShape, "row width %d must be positive", width)
	}
	if length%width != 0 {
		return 0, errors.Wrapf(ErrShape, "length %d is not a multiple of row width %d", length, width)
	}
	n := length / width
	if n == 0 {
		return 0, ErrEmpty
	}
	return n, nil
}

// Sum returns the column-wise sum of a row-major matrix with row width
// width.
func Sum[T numeric.Float](pool *workerpool.Pool, matrix []T, width int) ([]T, error) {
	n, err := rowCount(len(matrix), width)
	if err != nil {
		return nil, err
	}
	return sum(pool, matrix, n, width), nil
}

func sum[T numeric.Float](pool *workerpool.Pool, matrix []T, n, width int) []T {
	total := make([]T, width)

	if pool == nil || n < minParallelRows {
		for r := 0; r < n; r++ {
			row := matrix[r*width : (r+1)*width]
			for c, v := range row {
				total[c] += v
			}
		}
		return total
	}

	var mu sync.Mutex
	batch := (n + pool.NumWorkers() - 1) / pool.NumWorkers()
	if batch < 1 {
		batch = 1
	}
	pool.ParallelForAtomicBatched(n, batch, func(start, end int) {
		partial := make([]T, width)
		for r := start; r < end; r++ {
			row := matrix[r*width : (r+1)*width]
			for c, v := range row {
				partial[c] += v
			}
		}
		mu.Lock()
		for c := range total {
			total[c] += partial[c]
		}
		mu.Unlock()
	})
	return total
}

// Mean returns the column-wise mean of a row-major matrix with row width
// width.
func Mean[T numeric.Float](pool *workerpool.Pool, matrix []T, width int) ([]T, error) {
	n, err := rowCount(len(matrix), width)
	if err != nil {
		return nil, err
	}
	total := sum(pool, matrix, n, width)
	mean := make([]T, width)
	nt := T(n)
	for c := range mean {
		mean[c] = total[c] / nt
	}
	return mean, nil
}

// Var returns the column-wise, non-Bessel-corrected variance (divided by N,
// not N-1) of a row-major matrix with row width width.
func Var[T numeric.Float](pool *workerpool.Pool, matrix []T, width int) ([]T, error) {
	n, err := rowCount(len(matrix), width)
	if err != nil {
		return nil, err
	}
	mean := sum(pool, matrix, n, width)
	nt := T(n)
	for c := range mean {
		mean[c] /= nt
	}

	variance := varianceFrom(pool, matrix, n, width, mean)
	return variance, nil
}

func varianceFrom[T numeric.Float](pool *workerpool.Pool, matrix []T, n, width int, mean []T) []T {
	total := make([]T, width)

	accumulate := func(start, end int, partial []T) {
		for r := start; r < end; r++ {
			row := matrix[r*width : (r+1)*width]
			for c, v := range row {
				d := v - mean[c]
				partial[c] += d * d
			}
		}
	}

	if pool == nil || n < minParallelRows {
		accumulate(0, n, total)
		for c := range total {
			total[c] /= T(n)
		}
		return total
	}

	var mu sync.Mutex
	batch := (n + pool.NumWorkers() - 1) / pool.NumWorkers()
	if batch < 1 {
		batch = 1
	}
	pool.ParallelForAtomicBatched(n, batch, func(start, end int) {
		partial := make([]T, width)
		accumulate(start, end, partial)
		mu.Lock()
		for c := range total {
			total[c] += partial[c]
		}
		mu.Unlock()
	})
	for c := range total {
		total[c] /= T(n)
	}
	return total
}

// Std returns the column-wise standard deviation (sqrt of Var) of a
// row-major matrix with row width width.
func Std[T numeric.Float](pool *workerpool.Pool, matrix []T, width int) ([]T, error) {
	variance, err := Var(pool, matrix, width)
	if err != nil {
		return nil, err
	}
	std := make([]T, len(variance))
	for c, v := range variance {
		std[c] = T(math.Sqrt(float64(v)))
	}
	return std, nil
}

// MinMax returns the column-wise minimum and maximum of a row-major matrix
// with row width width.
func MinMax[T numeric.Float](pool *workerpool.Pool, matrix []T, width int) (min, max []T, err error) {
	n, rErr := rowCount(len(matrix), width)
	if rErr != nil {
		return nil, nil, rErr
	}

	min = make([]T, width)
	max = make([]T, width)
	for c := range min {
		min[c] = T(math.Inf(1))
		max[c] = T(math.Inf(-1))
	}

	accumulate := func(start, end int, pmin, pmax []T) {
		for r := start; r < end; r++ {
			row := matrix[r*width : (r+1)*width]
			for c, v := range row {
				if v < pmin[c] {
					pmin[c] = v
				}
				if v > pmax[c] {
					pmax[c] = v
				}
			}
		}
	}

	if pool == nil || n < minParallelRows {
		accumulate(0, n, min, max)
		return min, max, nil
	}

	var mu sync.Mutex
	batch := (n + pool.NumWorkers() - 1) / pool.NumWorkers()
	if batch < 1 {
		batch = 1
	}
	pool.ParallelForAtomicBatched(n, batch, func(start, end int) {
		pmin := make([]T, width)
		pmax := make([]T, width)
		for c := range pmin {
			pmin[c] = T(math.Inf(1))
			pmax[c] = T(math.Inf(-1))
		}
		accumulate(start, end, pmin, pmax)
		mu.Lock()
		for c := range min {
			if pmin[c] < min[c] {
				min[c] = pmin[c]
			}
			if pmax[c] > max[c] {
				max[c] = pmax[c]
			}
		}
		mu.Unlock()
	})
	return min, max, nil
}
