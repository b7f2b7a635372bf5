/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package graph

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestConstDim(t *testing.T) {
	d := ConstDim(5)
	value, ok := d.Fold()
	require.True(t, ok)
	require.Equal(t, 5, value)
	require.Panics(t, func() { ConstDim(-1) })

	one, ok := OneDim.Fold()
	require.True(t, ok)
	require.Equal(t, 1, one)
}

func TestAxisDim(t *testing.T) {
	g := New("axes")
	p := Parameter(g, "x", shapes.Make(dtypes.Float32, 3, shapes.UnknownDim))

	// A statically known axis folds immediately.
	d0 := AxisDim(p, 0)
	value, ok := d0.Fold()
	require.True(t, ok)
	require.Equal(t, 3, value)

	// An unknown axis stays symbolic.
	d1 := AxisDim(p, 1)
	_, ok = d1.Fold()
	require.False(t, ok)

	// Negative axis counts from the end.
	require.True(t, AxisDim(p, -2).Equal(d0))
	require.Panics(t, func() { AxisDim(p, 2) })
}

func TestBroadcastDims(t *testing.T) {
	g := New("broadcast")
	p := Parameter(g, "x", shapes.Make(dtypes.Float32, shapes.UnknownDim, 1))
	unknown := AxisDim(p, 0)

	t.Run("literals", func(t *testing.T) {
		dims, err := BroadcastDims(ConstDims(3, 1), ConstDims(1, 4))
		require.NoError(t, err)
		require.Equal(t, []int{3, 4}, FoldDims(dims))
	})

	t.Run("padding", func(t *testing.T) {
		dims, err := BroadcastDims(ConstDims(2, 1, 5), ConstDims(7, 1))
		require.NoError(t, err)
		require.Equal(t, []int{2, 7, 5}, FoldDims(dims))
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := BroadcastDims(ConstDims(3), ConstDims(4))
		require.Error(t, err)
	})

	t.Run("symbolic with non-1 literal folds", func(t *testing.T) {
		// broadcast(?, 5) must be 5 in any valid execution.
		dims, err := BroadcastDims([]Dim{unknown}, ConstDims(5))
		require.NoError(t, err)
		require.Equal(t, []int{5}, FoldDims(dims))
	})

	t.Run("symbolic with 1s stays symbolic", func(t *testing.T) {
		dims, err := BroadcastDims([]Dim{unknown}, ConstDims(1))
		require.NoError(t, err)
		require.Len(t, dims, 1)
		_, ok := dims[0].Fold()
		require.False(t, ok)
		require.True(t, dims[0].Equal(unknown))
	})

	t.Run("no operands", func(t *testing.T) {
		dims, err := BroadcastDims()
		require.NoError(t, err)
		require.Empty(t, dims)
	})
}

func TestSignature(t *testing.T) {
	g := New("signature")
	p := Parameter(g, "x", shapes.Make(dtypes.Float64, shapes.UnknownDim, 1, 4))

	sig := p.Signature()
	require.Equal(t, 3, sig.Rank())
	require.False(t, sig.IsFullyDefined())
	require.Equal(t, []bool{false, true, false}, sig.Broadcastable())
	require.Equal(t, shapes.Make(dtypes.Float64, shapes.UnknownDim, 1, 4), p.Shape())

	full := MakeSignature(dtypes.Int32, 2, 2)
	require.True(t, full.IsFullyDefined())
	require.Equal(t, shapes.Make(dtypes.Int32, 2, 2), full.StaticShape())
}

func TestConstNode(t *testing.T) {
	g := New("consts")
	c := ConstValue(g, [][]float32{{1, 2, 3}, {4, 5, 6}})
	require.Equal(t, NodeTypeConstant, c.Type())
	require.Equal(t, shapes.Make(dtypes.Float32, 2, 3), c.Shape())
	require.True(t, c.Signature().IsFullyDefined())
	require.Equal(t, 1, g.NumNodes())
	require.Same(t, c, g.NodeById(c.Id()))
}
