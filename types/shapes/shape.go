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

// Package shapes defines Shape and associated tools.
//
// Shape represents the shape (rank, dimensions and DType) of either a concrete tensor
// or the declared shape of a value in a computation graph. DType indicates the type of
// the unit element of a tensor, and is the enumeration defined in github.com/gomlx/gopjrt/dtypes.
//
// Different from a concrete tensor, a graph value may not have all of its dimensions
// known at graph construction time: such dimensions are stored as UnknownDim and only
// resolve during shape propagation (see the graph package) or at execution.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a Tensor.
//   - Axis: the index of a dimension on a multidimensional Tensor.
//   - Dimension: the size of a multi-dimensions Tensor in one of its axes.
//   - DType: the data type of the unit element in a tensor.
//   - Scalar: a shape with no axes (or dimensions), only a single value
//     of the associated DType.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// UnknownDim is the value used for dimensions not yet known at graph construction
// time. They are resolved by shape propagation or at execution time.
const UnknownDim = -1

// Shape represents the shape of either a concrete tensor or the declared shape of
// a value in a computation graph.
//
// Use Make to create a new shape. Dimensions may be UnknownDim for graph values whose
// sizes are not yet determined; concrete tensors always have fully defined shapes.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
// Dimensions must be non-negative or UnknownDim. A dimension of 0 is valid and
// yields an empty (size 0) shape.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 && dim != UnknownDim {
			exceptions.Panicf("shapes.Make(%s): dimensions must be non-negative or UnknownDim, got %d", s, dim)
		}
	}
	return s
}

// Scalar returns a scalar Shape for the given type.
func Scalar[T dtypes.Number]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just instantiating
// it with Shape{}, will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar: no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// IsFullyDefined returns whether every dimension of the shape is known. Scalars are
// always fully defined. Concrete tensors require fully defined shapes.
func (s Shape) IsFullyDefined() bool {
	return !slices.Contains(s.Dimensions, UnknownDim)
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts from the end -- so axis=-1 refers to the last axis.
// Like with slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// HasShape is satisfied by any value with an associated Shape -- Shape itself,
// tensors and graph nodes.
type HasShape interface {
	Shape() Shape
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, 0, s.Rank())
	for _, dim := range s.Dimensions {
		if dim == UnknownDim {
			parts = append(parts, "?")
		} else {
			parts = append(parts, fmt.Sprintf("%d", dim))
		}
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}

// Size returns the number of elements of DType needed for this shape. It's the
// product of all dimensions. It panics if the shape is not fully defined.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		if d == UnknownDim {
			exceptions.Panicf("Shape.Size() undefined for shape %s with unknown dimensions", s)
		}
		size *= d
	}
	return
}

// Memory returns the memory used to store an array of the given shape, the same as
// the size in bytes.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
// UnknownDim only equals UnknownDim.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return s.EqualDimensions(s2)
}

// EqualDimensions compares two shapes for equality of dimensions. DTypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.Rank() != s2.Rank() {
		return false
	}
	if s.IsScalar() {
		return true
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// BroadcastDims returns the broadcast of the given lists of dimensions, under the
// standard array-broadcasting rules: the operands are right-aligned on their trailing
// axis, shorter operands are treated as left-padded with 1s, and at each aligned axis
// the result is 1 if every operand is 1, and otherwise the unique non-1 size.
//
// Returns an error if two distinct non-1 sizes meet at the same axis.
// UnknownDim operands are not accepted here; this operates on concrete dimensions only
// (for the symbolic version see the graph package).
func BroadcastDims(dimsList ...[]int) ([]int, error) {
	rank := 0
	for _, dims := range dimsList {
		rank = max(rank, len(dims))
	}
	result := make([]int, rank)
	for axis := range result {
		result[axis] = 1
	}
	for _, dims := range dimsList {
		pad := rank - len(dims)
		for axis, dim := range dims {
			if dim == UnknownDim {
				return nil, errors.Errorf("BroadcastDims: cannot broadcast unknown dimension (axis %d of %v)", axis, dims)
			}
			if dim == 1 {
				continue
			}
			if result[pad+axis] == 1 {
				result[pad+axis] = dim
			} else if result[pad+axis] != dim {
				return nil, errors.Errorf("BroadcastDims: incompatible dimensions %d and %d at axis %d (from the left) for operands %v",
					result[pad+axis], dim, pad+axis, dimsList)
			}
		}
	}
	return result, nil
}

// ConcatenateDimensions of two shapes. The resulting rank is the sum of both ranks.
// They must have the same dtype. If any of them is a scalar, the resulting shape will
// be a copy of the other.
func ConcatenateDimensions(s1, s2 Shape) (shape Shape) {
	if s1.DType == dtypes.InvalidDType || s2.DType == dtypes.InvalidDType {
		return
	}
	if s1.DType != s2.DType {
		return
	}
	if s1.IsScalar() {
		return s2.Clone()
	} else if s2.IsScalar() {
		return s1.Clone()
	}
	shape.DType = s1.DType
	shape.Dimensions = make([]int, s1.Rank()+s2.Rank())
	copy(shape.Dimensions, s1.Dimensions)
	copy(shape.Dimensions[s1.Rank():], s2.Dimensions)
	return
}
