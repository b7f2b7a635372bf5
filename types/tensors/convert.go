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
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// ConvertDType returns a new tensor with the same dimensions and the contents
// converted to the given dtype. If the dtype already matches, the tensor itself is
// returned unchanged.
//
// Real values convert through float64, so integer conversions truncate the way a Go
// conversion does. Real values convert to complex with a zero imaginary part;
// converting complex values to a real dtype is an error.
func ConvertDType(t *Tensor, dtype dtypes.DType) (*Tensor, error) {
	t.AssertValid()
	if t.DType() == dtype {
		return t, nil
	}
	newShape := t.Shape().Clone()
	newShape.DType = dtype

	if t.DType().IsComplex() {
		values, err := Complex128Values(t)
		if err != nil {
			return nil, err
		}
		return fromComplex128Values(values, newShape)
	}

	values, err := Float64Values(t)
	if err != nil {
		return nil, err
	}
	if dtype.IsComplex() {
		cValues := make([]complex128, len(values))
		for ii, v := range values {
			cValues[ii] = complex(v, 0)
		}
		return fromComplex128Values(cValues, newShape)
	}
	return fromFloat64Values(values, newShape)
}

// Float64Values returns the flat contents of a real-valued tensor as float64.
func Float64Values(t *Tensor) (values []float64, err error) {
	values = make([]float64, t.Size())
	t.ConstFlatData(func(flatAny any) {
		switch flat := flatAny.(type) {
		case []int8:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []int16:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []int32:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []int64:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []uint8:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []uint16:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []uint32:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []uint64:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []float16.Float16:
			for ii, v := range flat {
				values[ii] = float64(v.Float32())
			}
		case []bfloat16.BFloat16:
			for ii, v := range flat {
				values[ii] = float64(v.Float32())
			}
		case []float32:
			for ii, v := range flat {
				values[ii] = float64(v)
			}
		case []float64:
			copy(values, flat)
		case []bool:
			for ii, v := range flat {
				if v {
					values[ii] = 1
				}
			}
		default:
			err = errors.Errorf("cannot read dtype %s as float64", t.DType())
		}
	})
	return
}

// Complex128Values returns the flat contents of a complex-valued tensor as complex128.
func Complex128Values(t *Tensor) (values []complex128, err error) {
	values = make([]complex128, t.Size())
	t.ConstFlatData(func(flatAny any) {
		switch flat := flatAny.(type) {
		case []complex64:
			for ii, v := range flat {
				values[ii] = complex128(v)
			}
		case []complex128:
			copy(values, flat)
		default:
			err = errors.Errorf("cannot read dtype %s as complex128", t.DType())
		}
	})
	return
}

// fromFloat64Values builds a tensor of the given (real-valued) shape from float64 contents.
func fromFloat64Values(values []float64, shape shapes.Shape) (t *Tensor, err error) {
	t = FromShape(shape)
	t.MutableFlatData(func(flatAny any) {
		switch flat := flatAny.(type) {
		case []int8:
			for ii, v := range values {
				flat[ii] = int8(v)
			}
		case []int16:
			for ii, v := range values {
				flat[ii] = int16(v)
			}
		case []int32:
			for ii, v := range values {
				flat[ii] = int32(v)
			}
		case []int64:
			for ii, v := range values {
				flat[ii] = int64(v)
			}
		case []uint8:
			for ii, v := range values {
				flat[ii] = uint8(v)
			}
		case []uint16:
			for ii, v := range values {
				flat[ii] = uint16(v)
			}
		case []uint32:
			for ii, v := range values {
				flat[ii] = uint32(v)
			}
		case []uint64:
			for ii, v := range values {
				flat[ii] = uint64(v)
			}
		case []float16.Float16:
			for ii, v := range values {
				flat[ii] = float16.Fromfloat32(float32(v))
			}
		case []bfloat16.BFloat16:
			for ii, v := range values {
				flat[ii] = bfloat16.FromFloat32(float32(v))
			}
		case []float32:
			for ii, v := range values {
				flat[ii] = float32(v)
			}
		case []float64:
			copy(flat, values)
		default:
			err = errors.Errorf("cannot write float64 values as dtype %s", shape.DType)
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// fromComplex128Values builds a tensor of the given (complex-valued) shape.
func fromComplex128Values(values []complex128, shape shapes.Shape) (t *Tensor, err error) {
	t = FromShape(shape)
	t.MutableFlatData(func(flatAny any) {
		switch flat := flatAny.(type) {
		case []complex64:
			for ii, v := range values {
				flat[ii] = complex64(v)
			}
		case []complex128:
			copy(flat, values)
		default:
			err = errors.Errorf("cannot write complex values as dtype %s -- converting complex to a real dtype is not supported", shape.DType)
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
