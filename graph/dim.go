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
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/pkg/errors"
)

// Dim is a symbolic scalar dimension expression: a non-negative literal, the runtime
// size of some node's axis, or the broadcast of several of those.
//
// Dims form the "shape sub-graph" of a node under construction: shape inference builds
// Dim expressions without touching numeric data, and Dim.Fold constant-folds each
// expression to a literal where the graph carries enough static information. Dims that
// fold to the literal 1 are the statically broadcastable axes.
//
// The zero value of Dim is the literal 0.
type Dim struct {
	kind dimKind

	// value is the literal, for dimConst.
	value int

	// node and axis identify a runtime axis size, for dimAxis.
	node *Node
	axis int

	// operands of a dimBroadcast; none of them folds to a literal other than 1.
	operands []Dim
}

type dimKind int

const (
	dimConst dimKind = iota
	dimAxis
	dimBroadcast
)

// ConstDim returns the literal dimension expression of the given size.
func ConstDim(value int) Dim {
	if value < 0 {
		exceptions.Panicf("ConstDim(%d): dimensions must be non-negative", value)
	}
	return Dim{kind: dimConst, value: value}
}

// OneDim is the literal dimension 1, the identity of broadcasting.
var OneDim = Dim{kind: dimConst, value: 1}

// AxisDim returns the dimension expression for the runtime size of the node's given
// axis. Negative axis counts from the end. If the node's signature already knows the
// axis statically, the literal is returned instead.
func AxisDim(node *Node, axis int) Dim {
	node.AssertValid()
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += node.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= node.Rank() {
		exceptions.Panicf("AxisDim(%s, %d): out-of-bounds for rank %d", node, axis, node.Rank())
	}
	d := node.signature.Dims[adjustedAxis]
	if value, ok := d.Fold(); ok {
		return ConstDim(value)
	}
	return d
}

// unknownAxisDim creates the irreducible expression for an axis whose size is not
// known at graph construction. Used when creating placeholder (parameter) nodes.
func unknownAxisDim(node *Node, axis int) Dim {
	return Dim{kind: dimAxis, node: node, axis: axis}
}

// IsConst returns the literal value and whether the expression is a literal
// (without attempting any folding).
func (d Dim) IsConst() (int, bool) {
	if d.kind == dimConst {
		return d.value, true
	}
	return 0, false
}

// Fold constant-folds the expression: it returns the concrete size and true if the
// graph carries enough static information, otherwise the expression remains symbolic
// and it returns false.
func (d Dim) Fold() (int, bool) {
	switch d.kind {
	case dimConst:
		return d.value, true
	case dimAxis:
		// The node's signature may have been given more static information than this
		// expression captured when created.
		sd := d.node.signature.Dims[d.axis]
		if sd.kind == dimConst {
			return sd.value, true
		}
		return 0, false
	case dimBroadcast:
		// A broadcast folds if any operand folds to a non-1 size: the remaining
		// symbolic operands must resolve to 1 or that same size for the program to be
		// valid at all, and in both cases the broadcast result is the non-1 size.
		result := 1
		allFolded := true
		for _, operand := range d.operands {
			value, ok := operand.Fold()
			if !ok {
				allFolded = false
				continue
			}
			if value != 1 {
				result = value
			}
		}
		if result != 1 || allFolded {
			return result, true
		}
		return 0, false
	}
	return 0, false
}

// Equal compares two dimension expressions structurally.
func (d Dim) Equal(d2 Dim) bool {
	if d.kind != d2.kind {
		return false
	}
	switch d.kind {
	case dimConst:
		return d.value == d2.value
	case dimAxis:
		return d.node == d2.node && d.axis == d2.axis
	case dimBroadcast:
		if len(d.operands) != len(d2.operands) {
			return false
		}
		for ii, operand := range d.operands {
			if !operand.Equal(d2.operands[ii]) {
				return false
			}
		}
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (d Dim) String() string {
	switch d.kind {
	case dimConst:
		return fmt.Sprintf("%d", d.value)
	case dimAxis:
		return fmt.Sprintf("dim(#%d,%d)", d.node.Id(), d.axis)
	case dimBroadcast:
		parts := make([]string, 0, len(d.operands))
		for _, operand := range d.operands {
			parts = append(parts, operand.String())
		}
		return fmt.Sprintf("broadcast(%s)", strings.Join(parts, ","))
	}
	return "?"
}

// ConstDims converts a list of literal sizes to dimension expressions.
func ConstDims(values ...int) []Dim {
	dims := make([]Dim, len(values))
	for ii, value := range values {
		dims[ii] = ConstDim(value)
	}
	return dims
}

// FoldDims constant-folds a sequence of dimension expressions, the counterpart of
// building a shape sub-graph and constant-folding it. Per expression it returns
// either the concrete literal or shapes.UnknownDim if it did not fold.
func FoldDims(dims []Dim) []int {
	folded := make([]int, len(dims))
	for ii, d := range dims {
		if value, ok := d.Fold(); ok {
			folded[ii] = value
		} else {
			folded[ii] = shapes.UnknownDim
		}
	}
	return folded
}

// BroadcastDims resolves the broadcast of several symbolic shapes, each an ordered
// sequence of dimension expressions: the operands are right-aligned on their trailing
// axis, shorter operands are treated as left-padded with 1s, and at each aligned axis
// the result is 1 if every operand is (statically) 1, the unique non-1 size if it is
// determined, and a symbolic broadcast expression otherwise.
//
// It returns an error if two operands fold to distinct non-1 sizes at the same axis.
func BroadcastDims(dimsList ...[]Dim) ([]Dim, error) {
	rank := 0
	for _, dims := range dimsList {
		rank = max(rank, len(dims))
	}
	result := make([]Dim, rank)
	for axis := range result {
		// Operands at this axis that don't fold to the literal 1.
		var symbolic []Dim
		constSize := 1
		for _, dims := range dimsList {
			pad := rank - len(dims)
			if axis < pad {
				continue
			}
			d := dims[axis-pad]
			value, ok := d.Fold()
			if !ok {
				symbolic = append(symbolic, d)
				continue
			}
			if value == 1 {
				continue
			}
			if constSize != 1 && constSize != value {
				return nil, errors.Errorf(
					"cannot broadcast dimensions %d and %d at axis %d (of %d) -- two distinct non-1 sizes at the same axis",
					constSize, value, axis, rank)
			}
			constSize = value
		}
		switch {
		case constSize != 1:
			// Any symbolic operand must resolve to 1 or constSize at runtime, so the
			// broadcast size is determined.
			result[axis] = ConstDim(constSize)
		case len(symbolic) == 0:
			result[axis] = OneDim
		case len(symbolic) == 1:
			result[axis] = symbolic[0]
		default:
			result[axis] = Dim{kind: dimBroadcast, operands: symbolic}
		}
	}
	return result, nil
}

// Signature is the static type of a node's output: a dtype plus an ordered sequence
// of symbolic dimension expressions. It is produced once, at node construction, and
// never recomputed.
type Signature struct {
	DType dtypes.DType
	Dims  []Dim
}

// MakeSignature builds a Signature from a dtype and literal dimensions;
// shapes.UnknownDim values are rejected -- unknown dimensions only arise from
// parameter placeholders (see Parameter).
func MakeSignature(dtype dtypes.DType, dimensions ...int) Signature {
	return Signature{DType: dtype, Dims: ConstDims(dimensions...)}
}

// Rank of the signature.
func (s Signature) Rank() int { return len(s.Dims) }

// StaticShape constant-folds each dimension and returns the concrete shape, with
// shapes.UnknownDim for dimensions that did not fold.
func (s Signature) StaticShape() shapes.Shape {
	return shapes.Shape{DType: s.DType, Dimensions: FoldDims(s.Dims)}
}

// IsFullyDefined returns whether every dimension of the signature constant-folds.
func (s Signature) IsFullyDefined() bool {
	for _, d := range s.Dims {
		if _, ok := d.Fold(); !ok {
			return false
		}
	}
	return true
}

// Broadcastable returns, per axis, whether the axis is statically known to have
// size 1: the dimension expression constant-folds to the literal 1. Dimensions that
// do not fold remain symbolic and are reported as not broadcastable.
func (s Signature) Broadcastable() []bool {
	bcast := make([]bool, len(s.Dims))
	for ii, d := range s.Dims {
		value, ok := d.Fold()
		bcast[ii] = ok && value == 1
	}
	return bcast
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	if len(s.Dims) == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, 0, len(s.Dims))
	for _, d := range s.Dims {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}
