// SPDX-License-Identifier: MIT

package matrix

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/quikdel/core"
)

// Sentinel errors; every message is prefixed with "matrix: ".
var (
	// ErrBadShape is returned when the id list is empty.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrDuplicateID indicates the same id was listed twice.
	ErrDuplicateID = errors.New("matrix: duplicate id")

	// ErrUnknownID indicates an id that is not part of the index.
	ErrUnknownID = errors.New("matrix: unknown id")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrBadValue indicates a negative or NaN travel cost.
	ErrBadValue = errors.New("matrix: travel cost must be non-negative")
)

// Matrix is a square travel matrix over stable ids.
type Matrix struct {
	n     int
	ids   []string
	index map[string]int
	dist  []float64 // row-major, len n*n
	time  []float64 // row-major, len n*n
}

// New allocates an n×n matrix for ids with +Inf off the diagonal.
//
// Implementation:
//   - Stage 1: Validate non-empty, duplicate-free ids.
//   - Stage 2: Allocate both buffers and seed diagonal 0 / off-diagonal +Inf.
//
// Complexity: O(n²) time and memory.
func New(ids []string) (*Matrix, error) {
	// 1) Validate.
	if len(ids) == 0 {
		return nil, ErrBadShape
	}
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		index[id] = i
	}

	// 2) Allocate.
	n := len(ids)
	m := &Matrix{
		n:     n,
		ids:   append([]string(nil), ids...),
		index: index,
		dist:  make([]float64, n*n),
		time:  make([]float64, n*n),
	}
	inf := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			m.dist[i*n+j] = inf
			m.time[i*n+j] = inf
		}
	}

	return m, nil
}

// Len returns n.
func (m *Matrix) Len() int { return m.n }

// IDs returns a copy of the id list in index order.
func (m *Matrix) IDs() []string { return append([]string(nil), m.ids...) }

// Index returns the row/column of id.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Set records the travel cost from → to. Diagonal writes are ignored.
// Complexity: O(1).
func (m *Matrix) Set(from, to string, t core.Travel) error {
	i, ok := m.index[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, from)
	}
	j, ok := m.index[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, to)
	}
	if t.Distance < 0 || t.Time < 0 || math.IsNaN(t.Distance) || math.IsNaN(t.Time) {
		return fmt.Errorf("%w: %q→%q %+v", ErrBadValue, from, to, t)
	}
	if i == j {
		return nil
	}
	m.dist[i*m.n+j] = t.Distance
	m.time[i*m.n+j] = t.Time

	return nil
}

// At returns the travel cost between row i and column j.
// Complexity: O(1).
func (m *Matrix) At(i, j int) (core.Travel, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return core.Travel{}, fmt.Errorf("At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	k := i*m.n + j

	return core.Travel{Distance: m.dist[k], Time: m.time[k]}, nil
}

// Travel implements core.DistanceOracle using matrix indices as hotspot ids.
func (m *Matrix) Travel(from, to core.HotspotID) (core.Travel, bool) {
	t, err := m.At(int(from), int(to))
	if err != nil || !t.Finite() {
		return core.Travel{}, false
	}

	return t, true
}

// Missing counts off-diagonal pairs without a finite distance.
func (m *Matrix) Missing() int {
	missing := 0
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && math.IsInf(m.dist[i*m.n+j], 1) {
				missing++
			}
		}
	}

	return missing
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		n:     m.n,
		ids:   append([]string(nil), m.ids...),
		index: make(map[string]int, len(m.index)),
		dist:  append([]float64(nil), m.dist...),
		time:  append([]float64(nil), m.time...),
	}
	for k, v := range m.index {
		c.index[k] = v
	}

	return c
}
