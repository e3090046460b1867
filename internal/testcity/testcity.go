// SPDX-License-Identifier: MIT

// Package testcity builds small synthetic cities for tests and examples.
package testcity

import (
	"context"
	"fmt"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
	"github.com/katalvlaran/quikdel/network"
)

// TractID returns the id of the i-th tract ("T00", "T01", ...).
func TractID(i int) string { return fmt.Sprintf("T%02d", i) }

// Line lays n tracts on the x axis one unit apart. Travel exists only between
// neighbors (distance 1, time 2). Tract i gets producers[i] producer sites
// (default 1) and consumers[i] consumer sites (default 1).
func Line(n int, producers, consumers map[int]int) (network.Input, error) {
	in := network.Input{City: "line"}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = TractID(i)
		tr := core.CensusTract{ID: ids[i], Centroid: core.Point{X: float64(i)}}
		if i > 0 {
			tr.Bordering = append(tr.Bordering, TractID(i-1))
		}
		if i < n-1 {
			tr.Bordering = append(tr.Bordering, TractID(i+1))
		}
		in.Tracts = append(in.Tracts, tr)

		loc := core.Point{X: float64(i)}
		for k := 0; k < count(producers, i); k++ {
			in.Producers = append(in.Producers, core.Site{ID: fmt.Sprintf("p%d-%d", i, k), TractID: ids[i], Location: loc})
		}
		for k := 0; k < count(consumers, i); k++ {
			in.Consumers = append(in.Consumers, core.Site{ID: fmt.Sprintf("c%d-%d", i, k), TractID: ids[i], Location: loc})
		}
	}

	m, err := matrix.New(ids)
	if err != nil {
		return network.Input{}, err
	}
	for i := 0; i+1 < n; i++ {
		if err = m.Set(ids[i], ids[i+1], core.Travel{Distance: 1, Time: 2}); err != nil {
			return network.Input{}, err
		}
		if err = m.Set(ids[i+1], ids[i], core.Travel{Distance: 1, Time: 2}); err != nil {
			return network.Input{}, err
		}
	}
	in.Travel = m

	return in, nil
}

// Grid lays rows×cols tracts on an orthogonal grid, row-major, one unit
// apart. Tract r*cols+c borders its 4-neighbors and travel exists only
// between them (distance 1, time 2). Every tract gets one producer and one
// consumer site.
//
// Complexity: O(rows*cols) tracts and edges.
func Grid(rows, cols int) (network.Input, error) {
	if rows < 1 || cols < 1 {
		return network.Input{}, fmt.Errorf("testcity: grid %dx%d: each side must be ≥ 1", rows, cols)
	}
	in := network.Input{City: fmt.Sprintf("grid%dx%d", rows, cols)}
	n := rows * cols
	ids := make([]string, n)
	for i := range ids {
		ids[i] = TractID(i)
	}

	// 1) Tracts and sites in row-major order.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			loc := core.Point{X: float64(c), Y: float64(r)}
			tr := core.CensusTract{ID: ids[i], Centroid: loc}
			for _, nb := range gridNeighbors(rows, cols, r, c) {
				tr.Bordering = append(tr.Bordering, ids[nb])
			}
			in.Tracts = append(in.Tracts, tr)
			in.Producers = append(in.Producers, core.Site{ID: fmt.Sprintf("p%d", i), TractID: ids[i], Location: loc})
			in.Consumers = append(in.Consumers, core.Site{ID: fmt.Sprintf("c%d", i), TractID: ids[i], Location: loc})
		}
	}

	// 2) Travel: right and bottom neighbors, both directions.
	m, err := matrix.New(ids)
	if err != nil {
		return network.Input{}, err
	}
	link := core.Travel{Distance: 1, Time: 2}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := r*cols + c
			var next []int
			if c+1 < cols {
				next = append(next, u+1)
			}
			if r+1 < rows {
				next = append(next, u+cols)
			}
			for _, v := range next {
				if err = m.Set(ids[u], ids[v], link); err != nil {
					return network.Input{}, err
				}
				if err = m.Set(ids[v], ids[u], link); err != nil {
					return network.Input{}, err
				}
			}
		}
	}
	in.Travel = m

	return in, nil
}

func gridNeighbors(rows, cols, r, c int) []int {
	var out []int
	if r > 0 {
		out = append(out, (r-1)*cols+c)
	}
	if c > 0 {
		out = append(out, r*cols+c-1)
	}
	if c+1 < cols {
		out = append(out, r*cols+c+1)
	}
	if r+1 < rows {
		out = append(out, (r+1)*cols+c)
	}
	return out
}

// LineNetwork is the ten-tract city used across package tests: hubs at
// hotspots 2 and 7 with clusters {0..4} and {5..9}.
func LineNetwork(ctx context.Context, opts ...network.Option) (*network.Network, network.Input, error) {
	in, err := Line(10, map[int]int{2: 3}, map[int]int{7: 3})
	if err != nil {
		return nil, network.Input{}, err
	}
	net, err := network.Build(ctx, in, append([]network.Option{network.WithRatio(5)}, opts...)...)

	return net, in, err
}

func count(m map[int]int, i int) int {
	if v, ok := m[i]; ok {
		return v
	}
	return 1
}
