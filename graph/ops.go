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

	"github.com/gomlx/exceptions"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/gomlx/randvar/types/tensors"
)

type nodeInputsParameter struct {
	name string
}

func (ni *nodeInputsParameter) Type() NodeType { return NodeTypeParameter }
func (ni *nodeInputsParameter) String() string {
	return fmt.Sprintf("Parameter(%q)", ni.name)
}

// Parameter creates an input placeholder node with the declared shape. Dimensions
// given as shapes.UnknownDim stay symbolic: they only resolve during shape
// propagation or at execution time.
func Parameter(g *Graph, name string, shape shapes.Shape) *Node {
	g.AssertValid()
	if !shape.Ok() {
		exceptions.Panicf("Parameter(%q): invalid shape", name)
	}
	n := g.NewNode(&nodeInputsParameter{name: name}, nil, Signature{DType: shape.DType})
	dims := make([]Dim, shape.Rank())
	for axis, dim := range shape.Dimensions {
		if dim == shapes.UnknownDim {
			dims[axis] = unknownAxisDim(n, axis)
		} else {
			dims[axis] = ConstDim(dim)
		}
	}
	n.signature.Dims = dims
	return n
}

type nodeInputsConstant struct {
	value *tensors.Tensor
}

func (ni *nodeInputsConstant) Type() NodeType { return NodeTypeConstant }
func (ni *nodeInputsConstant) String() string {
	return fmt.Sprintf("Constant(%s)", ni.value)
}

// Const creates a constant node holding the given tensor. The node's signature is
// fully defined, taken from the tensor's shape.
func Const(g *Graph, value *tensors.Tensor) *Node {
	g.AssertValid()
	value.AssertValid()
	shape := value.Shape()
	return g.NewNode(&nodeInputsConstant{value: value},
		nil, MakeSignature(shape.DType, shape.Dimensions...))
}

// ConstValue creates a constant node from a Go scalar or multidimensional slice,
// converting it to a tensor first. If value is already a *tensors.Tensor it is used
// as is.
func ConstValue(g *Graph, value any) *Node {
	return Const(g, tensors.FromAnyValue(value))
}

// ConstantValue returns the tensor held by a constant node. It panics if the node is
// not a constant.
func (n *Node) ConstantValue() *tensors.Tensor {
	n.AssertValid()
	if n.Type() != NodeTypeConstant {
		exceptions.Panicf("node %s is not a Constant node", n)
	}
	return n.inputs.(*nodeInputsConstant).value
}
