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

// Package tensors implements a Tensor, a representation of a multi-dimensional array.
//
// Tensors are multidimensional arrays (from scalar with 0 dimensions, to arbitrarily
// large dimensions), defined by their shape (a data type and its axes' dimensions) and
// their actual content, stored as a flat (1D) slice of the corresponding Go type.
//
// Tensors only exist at execution time: graph construction never creates one. They are
// the concrete values fed to and returned by sampling kernels and the executor.
//
// There are various ways to construct a Tensor:
//
//   - FromShape(shape shapes.Shape): a tensor with the given shape and zero values.
//   - FromScalar[T](value T): a scalar tensor, DType inferred from T.
//   - FromFlatDataAndDimensions[T](data []T, dimensions ...int): dimensions plus
//     flattened content.
//   - FromValue / FromAnyValue: conversion from a Go scalar or (regular)
//     multidimensional slice.
package tensors

import (
	"fmt"
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/pkg/errors"
)

// Tensor is a multidimensional array with a fully defined Shape, stored as a flat
// slice of the Go type corresponding to its DType.
type Tensor struct {
	shape shapes.Shape

	// flat holds the actual data, a slice of the Go type for the shape's dtype.
	flat any
}

// FromShape returns a Tensor with the given shape, with the data initialized with zeros.
func FromShape(shape shapes.Shape) (t *Tensor) {
	if !shape.Ok() {
		exceptions.Panicf("tensors.FromShape: invalid shape")
	}
	if !shape.IsFullyDefined() {
		exceptions.Panicf("tensors.FromShape(%s): concrete tensors require fully defined shapes", shape)
	}
	t = &Tensor{shape: shape}
	flatV := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), shape.Size(), shape.Size())
	t.flat = flatV.Interface()
	return
}

// Shape of the Tensor, includes DType.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType returns the DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank returns the rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar returns whether the tensor represents a scalar value.
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// Size returns the number of elements in the tensor.
func (t *Tensor) Size() int { return t.shape.Size() }

// AssertValid panics if the tensor is nil or has no storage.
func (t *Tensor) AssertValid() {
	if t == nil {
		panic(errors.New("Tensor is nil"))
	}
	if !t.shape.Ok() || t.flat == nil {
		panic(errors.New("Tensor is in an invalid state"))
	}
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go type
// corresponding to the DType. Even scalar values have a flattened representation of
// one element.
//
// The slice is the actual Tensor data (not a copy), owned by the Tensor; it must not
// be changed -- see Tensor.MutableFlatData for that.
func (t *Tensor) ConstFlatData(accessFn func(flat any)) {
	t.AssertValid()
	accessFn(t.flat)
}

// MutableFlatData calls accessFn with the flattened data as a slice of the Go type
// corresponding to the DType, and the contents may be changed in place.
func (t *Tensor) MutableFlatData(accessFn func(flat any)) {
	t.AssertValid()
	accessFn(t.flat)
}

// ConstFlatData is the generic version of Tensor.ConstFlatData; it panics if T doesn't
// match the tensor's DType.
func ConstFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	t.AssertValid()
	flat, ok := t.flat.([]T)
	if !ok {
		var dummy T
		exceptions.Panicf("tensors.ConstFlatData[%T]: tensor has dtype %s", dummy, t.DType())
	}
	accessFn(flat)
}

// MutableFlatData is the generic version of Tensor.MutableFlatData; it panics if T
// doesn't match the tensor's DType.
func MutableFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	t.AssertValid()
	flat, ok := t.flat.([]T)
	if !ok {
		var dummy T
		exceptions.Panicf("tensors.MutableFlatData[%T]: tensor has dtype %s", dummy, t.DType())
	}
	accessFn(flat)
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	t.AssertValid()
	clone := FromShape(t.shape.Clone())
	flatV := reflect.ValueOf(t.flat)
	reflect.Copy(reflect.ValueOf(clone.flat), flatV)
	return clone
}

// Equal compares shape and contents.
func (t *Tensor) Equal(t2 *Tensor) bool {
	if t == nil || t2 == nil {
		return t == t2
	}
	if !t.shape.Equal(t2.shape) {
		return false
	}
	return reflect.DeepEqual(t.flat, t2.flat)
}

// String prints shape and, for small tensors, the flat contents.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	const maxSizeToPrint = 8
	if t.Size() <= maxSizeToPrint {
		return fmt.Sprintf("%s: %v", t.shape, t.flat)
	}
	return fmt.Sprintf("%s: (%d values)", t.shape, t.Size())
}

// FromScalar creates a scalar tensor with the given value.
// The DType is inferred from the value.
func FromScalar[T dtypes.Supported](value T) (t *Tensor) {
	t = FromShape(shapes.Shape{DType: dtypes.FromGenericsType[T]()})
	MutableFlatData(t, func(flat []T) {
		flat[0] = value
	})
	return
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions, filled with the
// flattened values given in data. The data is copied. The DType is inferred from the
// data type.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) (t *Tensor) {
	shape := shapes.Make(dtypes.FromGenericsType[T](), dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("tensors.FromFlatDataAndDimensions(%s): data size is %d, but dimensions size is %d",
			shape, len(data), shape.Size())
	}
	t = FromShape(shape)
	MutableFlatData(t, func(flat []T) {
		copy(flat, data)
	})
	return
}

// FromValue returns a tensor constructed from the given multi-dimension slice (or
// scalar). If the rank of value is larger than 1, the shape of all sub-slices must be
// the same. It panics if the shape is not regular or the element type unsupported.
func FromValue(value any) *Tensor {
	return FromAnyValue(value)
}

// FromAnyValue is like FromValue. If value is already a *Tensor it is returned as is.
// Go `int` values (and slices of them) are stored as Int64.
func FromAnyValue(value any) (t *Tensor) {
	if valueT, ok := value.(*Tensor); ok {
		return valueT
	}
	shape, err := shapeForValue(value)
	if err != nil {
		panic(errors.Wrapf(err, "cannot create tensor from %T", value))
	}
	t = FromShape(shape)
	flatV := reflect.ValueOf(t.flat)
	pos := 0
	var fill func(v reflect.Value)
	fill = func(v reflect.Value) {
		if v.Kind() != reflect.Slice {
			elem := v
			if elem.Type() != flatV.Type().Elem() {
				elem = elem.Convert(flatV.Type().Elem())
			}
			flatV.Index(pos).Set(elem)
			pos++
			return
		}
		for ii := 0; ii < v.Len(); ii++ {
			fill(v.Index(ii))
		}
	}
	fill(reflect.ValueOf(value))
	return
}

// shapeForValue returns the shape of a Go scalar or regular multidimensional slice.
func shapeForValue(value any) (shape shapes.Shape, err error) {
	valueV := reflect.ValueOf(value)
	baseT := valueV.Type()
	var dims []int
	v := valueV
	for baseT.Kind() == reflect.Slice {
		if v.Len() == 0 {
			err = errors.Errorf("empty slices not supported (%T)", value)
			return
		}
		dims = append(dims, v.Len())
		baseT = baseT.Elem()
		v = v.Index(0)
	}
	dtype := dtypes.FromGoType(baseT)
	if dtype == dtypes.InvalidDType {
		err = errors.Errorf("unsupported element type %s", baseT)
		return
	}
	shape = shapes.Make(dtype, dims...)
	// Check regularity of sub-slices.
	var check func(v reflect.Value, level int) error
	check = func(v reflect.Value, level int) error {
		if level == len(dims) {
			return nil
		}
		if v.Len() != dims[level] {
			return errors.Errorf("irregular slice: got lengths %d and %d at level %d", dims[level], v.Len(), level)
		}
		for ii := 0; ii < v.Len(); ii++ {
			if level+1 < len(dims) {
				if err := check(v.Index(ii), level+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	err = check(valueV, 0)
	return
}

// Reshape returns a tensor sharing the same flat data with new dimensions. The total
// size must not change.
func (t *Tensor) Reshape(dimensions ...int) *Tensor {
	t.AssertValid()
	newShape := shapes.Make(t.DType(), dimensions...)
	if newShape.Size() != t.Size() {
		exceptions.Panicf("Tensor.Reshape(%v): new size %d != current size %d", dimensions, newShape.Size(), t.Size())
	}
	return &Tensor{shape: newShape, flat: t.flat}
}
