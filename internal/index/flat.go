// Package index implements exact inner-product similarity search over a fixed
// set of L2-normalized vectors. On normalized vectors the inner product equals
// cosine similarity.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptyMatrix signals a build over zero vectors.
	ErrEmptyMatrix = errors.New("empty embedding matrix")
	// ErrDimMismatch signals a vector with the wrong dimensionality.
	ErrDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidK signals a non-positive k.
	ErrInvalidK = errors.New("k must be positive")
)

// Flat is an exact nearest-neighbor index using brute-force inner product.
// Read-only after Build; concurrent Search calls are safe.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build constructs a flat index over exactly the rows supplied.
// The dimension is taken from the first row and fixed thereafter.
func Build(matrix [][]float32) (*Flat, error) {
	if len(matrix) == 0 {
		return nil, ErrEmptyMatrix
	}

	dim := len(matrix[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-dimension row 0", ErrDimMismatch)
	}
	for i, row := range matrix {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has dim %d, want %d", ErrDimMismatch, i, len(row), dim)
		}
	}

	return &Flat{dim: dim, vectors: matrix}, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dim returns the vector dimensionality.
func (f *Flat) Dim() int { return f.dim }

// Search returns up to k (score, row) pairs ordered by descending inner
// product. Exactly equal scores order by ascending row index, which keeps
// rankings reproducible. If the index holds fewer than k vectors, all rows
// are returned.
func (f *Flat) Search(query []float32, k int) (scores []float32, rows []int, err error) {
	if k <= 0 {
		return nil, nil, ErrInvalidK
	}
	if len(query) != f.dim {
		return nil, nil, fmt.Errorf("%w: query has dim %d, want %d", ErrDimMismatch, len(query), f.dim)
	}

	all := make([]float32, len(f.vectors))
	for i, row := range f.vectors {
		all[i] = dot(row, query)
	}

	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := order[a], order[b]
		if all[ra] != all[rb] {
			return all[ra] > all[rb]
		}
		return ra < rb
	})

	if k > len(order) {
		k = len(order)
	}

	scores = make([]float32, k)
	rows = make([]int, k)
	for i := 0; i < k; i++ {
		rows[i] = order[i]
		scores[i] = all[order[i]]
	}
	return scores, rows, nil
}

// Normalize scales a vector to unit L2 length in place. Zero vectors are left
// untouched.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// NormalizeMatrix normalizes every row in place.
func NormalizeMatrix(matrix [][]float32) {
	for _, row := range matrix {
		Normalize(row)
	}
}

func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
