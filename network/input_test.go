// SPDX-License-Identifier: MIT

package network_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/internal/testcity"
	"github.com/katalvlaran/quikdel/network"
)

func TestInput_EncodeDecode(t *testing.T) {
	in, err := testcity.Line(6, nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, network.EncodeInput(&buf, in))
	got, err := network.DecodeInput(&buf)
	require.NoError(t, err)

	assert.Equal(t, in.City, got.City)
	assert.Equal(t, in.Tracts, got.Tracts)
	assert.Equal(t, in.Producers, got.Producers)
	assert.Equal(t, in.Travel.Edges(), got.Travel.Edges())

	a, err := network.Build(context.Background(), in, network.WithRatio(3))
	require.NoError(t, err)
	b, err := network.Build(context.Background(), got, network.WithRatio(3))
	require.NoError(t, err)
	assert.Equal(t, a.Superspots, b.Superspots)
}

func TestDecodeInput_Errors(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":        `{"city": `,
		"unknown field": `{"city": "x", "tracts": [{"id": "A"}], "roads": []}`,
		"no tracts":     `{"city": "x"}`,
		"unknown tract": `{"city": "x", "tracts": [{"id": "A"}], "travel": [{"from": "A", "to": "B", "distance": 1, "time": 1}]}`,
	} {
		_, err := network.DecodeInput(strings.NewReader(body))
		var de *network.DataError
		assert.True(t, errors.As(err, &de), name)
		assert.ErrorIs(t, err, network.ErrData, name)
	}
}

func TestBuild_Grid(t *testing.T) {
	in, err := testcity.Grid(4, 5)
	require.NoError(t, err)
	require.Len(t, in.Tracts, 20)

	net, err := network.Build(context.Background(), in, network.WithRatio(4))
	require.NoError(t, err)
	require.NoError(t, net.Validate())
	assert.Equal(t, 20, net.Len())

	seen := map[core.HotspotID]int{}
	for _, s := range net.Superspots {
		assert.LessOrEqual(t, len(s.Members), net.Capacity, "superspot %d", s.ID)
		for _, m := range s.Members {
			seen[m]++
		}
	}
	assert.Len(t, seen, 20)
	for h, n := range seen {
		assert.Equal(t, 1, n, "hotspot %d", h)
	}

	_, err = testcity.Grid(0, 3)
	assert.Error(t, err)
}
