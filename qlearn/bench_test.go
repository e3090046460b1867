// SPDX-License-Identifier: MIT

package qlearn_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/quikdel/internal/testcity"
	"github.com/katalvlaran/quikdel/mdp"
	"github.com/katalvlaran/quikdel/network"
	"github.com/katalvlaran/quikdel/qlearn"
)

func gridSet(b *testing.B) (*network.Network, *mdp.Set) {
	b.Helper()
	in, err := testcity.Grid(8, 8)
	if err != nil {
		b.Fatal(err)
	}
	net, err := network.Build(context.Background(), in, network.WithRatio(8))
	if err != nil {
		b.Fatal(err)
	}
	set, err := mdp.Formulate(net)
	if err != nil {
		b.Fatal(err)
	}
	return net, set
}

// BenchmarkTrain_Cluster trains one hotspot process of an 8×8 grid city.
func BenchmarkTrain_Cluster(b *testing.B) {
	net, set := gridSet(b)
	p := set.Hotspot[net.SuperspotIDs()[0]]
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := qlearn.Train(ctx, p, qlearn.WithEpisodes(500)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTrainAll_Grid trains every process of the city in parallel.
func BenchmarkTrainAll_Grid(b *testing.B) {
	_, set := gridSet(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := qlearn.TrainAll(ctx, set, qlearn.WithEpisodes(300)); err != nil {
			b.Fatal(err)
		}
	}
}
