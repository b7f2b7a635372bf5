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

package tensors

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float32, 2, 3))
	require.Equal(t, 6, tensor.Size())
	ConstFlatData(tensor, func(flat []float32) {
		require.Len(t, flat, 6)
		for _, v := range flat {
			require.Equal(t, float32(0), v)
		}
	})

	// Tensors require fully defined shapes.
	require.Panics(t, func() { FromShape(shapes.Make(dtypes.Float32, shapes.UnknownDim)) })
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]int8{1, 2, 3, 4}, 2, 2)
	require.Equal(t, shapes.Make(dtypes.Int8, 2, 2), tensor.Shape())
	ConstFlatData(tensor, func(flat []int8) {
		require.Equal(t, []int8{1, 2, 3, 4}, flat)
	})
	require.Panics(t, func() { FromFlatDataAndDimensions([]int8{1, 2, 3}, 2, 2) })
}

func TestFromValue(t *testing.T) {
	tensor := FromValue([][]float64{{1, 2}, {3, 5}, {7, 11}})
	require.Equal(t, shapes.Make(dtypes.Float64, 3, 2), tensor.Shape())
	ConstFlatData(tensor, func(flat []float64) {
		require.Equal(t, []float64{1, 2, 3, 5, 7, 11}, flat)
	})

	scalar := FromValue(float32(7))
	require.True(t, scalar.IsScalar())

	// Go ints are stored as Int64.
	ints := FromValue([]int{3, 4})
	require.Equal(t, dtypes.Int64, ints.DType())

	// Irregular slices panic.
	require.Panics(t, func() { FromValue([][]int32{{1, 2}, {3}}) })
}

func TestCloneAndEqual(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 4)
	clone := tensor.Clone()
	require.True(t, tensor.Equal(clone))
	MutableFlatData(clone, func(flat []float32) { flat[0] = 100 })
	require.False(t, tensor.Equal(clone))
	// The original is untouched.
	ConstFlatData(tensor, func(flat []float32) { require.Equal(t, float32(1), flat[0]) })
}

func TestConvertDType(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]float64{1.7, -2.3, 3, 4}, 2, 2)

	converted, err := ConvertDType(tensor, dtypes.Int32)
	require.NoError(t, err)
	require.Equal(t, dtypes.Int32, converted.DType())
	ConstFlatData(converted, func(flat []int32) {
		require.Equal(t, []int32{1, -2, 3, 4}, flat)
	})

	// Same dtype is a no-op returning the same tensor.
	same, err := ConvertDType(tensor, dtypes.Float64)
	require.NoError(t, err)
	require.Same(t, tensor, same)

	// Real to complex gets a zero imaginary part.
	asComplex, err := ConvertDType(tensor, dtypes.Complex64)
	require.NoError(t, err)
	ConstFlatData(asComplex, func(flat []complex64) {
		require.Equal(t, complex64(complex(1.7, 0)), flat[0])
	})

	// Complex to real is not supported.
	_, err = ConvertDType(asComplex, dtypes.Float32)
	require.Error(t, err)

	// Half-precision roundtrip.
	asF16, err := ConvertDType(FromFlatDataAndDimensions([]float64{0.5, 2}, 2), dtypes.Float16)
	require.NoError(t, err)
	back, err := ConvertDType(asF16, dtypes.Float64)
	require.NoError(t, err)
	ConstFlatData(back, func(flat []float64) {
		require.Equal(t, []float64{0.5, 2}, flat)
	})
}

func TestReshape(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]int64{1, 2, 3, 4, 5, 6}, 6)
	reshaped := tensor.Reshape(2, 3)
	require.Equal(t, shapes.Make(dtypes.Int64, 2, 3), reshaped.Shape())
	require.Panics(t, func() { tensor.Reshape(4) })
}
