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

package shapes

import (
	"testing"

	. "github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())

	shape0 := Make(Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.True(t, shape0.IsFullyDefined())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 4*4*3*2, int(shape1.Memory()))
	require.Equal(t, 2, shape1.Dim(-1))
	require.Equal(t, 4, shape1.Dim(0))

	require.True(t, shape1.Equal(Make(Float32, 4, 3, 2)))
	require.False(t, shape1.Equal(Make(Float64, 4, 3, 2)))
	require.True(t, shape1.EqualDimensions(Make(Float64, 4, 3, 2)))

	// Dimension 0 is a valid empty shape; negative dimensions are not.
	empty := Make(Float32, 0, 3)
	require.Equal(t, 0, empty.Size())
	require.True(t, empty.IsFullyDefined())
	require.Panics(t, func() { Make(Float32, -2) })
}

func TestUnknownDims(t *testing.T) {
	shape := Make(Float32, UnknownDim, 5)
	require.True(t, shape.Ok())
	require.False(t, shape.IsFullyDefined())
	require.Equal(t, 2, shape.Rank())
	require.Equal(t, "(Float32)[? 5]", shape.String())
	require.Panics(t, func() { shape.Size() })
}

func TestBroadcastDims(t *testing.T) {
	dims, err := BroadcastDims([]int{3, 1}, []int{1, 4})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, dims)

	// Shorter operands are left-padded with 1s.
	dims, err = BroadcastDims([]int{2, 1, 5}, []int{7, 1})
	require.NoError(t, err)
	require.Equal(t, []int{2, 7, 5}, dims)

	// Empty operands are scalars and broadcast with anything.
	dims, err = BroadcastDims([]int{}, []int{3})
	require.NoError(t, err)
	require.Equal(t, []int{3}, dims)

	dims, err = BroadcastDims()
	require.NoError(t, err)
	require.Empty(t, dims)

	// Two distinct non-1 sizes at the same axis is an error.
	_, err = BroadcastDims([]int{3}, []int{4})
	require.Error(t, err)
}

func TestConcatenateDimensions(t *testing.T) {
	s := ConcatenateDimensions(Make(Int64, 2), Make(Int64, 3, 4))
	require.Equal(t, Make(Int64, 2, 3, 4), s)
	s = ConcatenateDimensions(Make(Int64), Make(Int64, 3))
	require.Equal(t, Make(Int64, 3), s)
}
