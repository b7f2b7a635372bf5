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
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/types/shapes"
)

// NodeId is a unique identifier of a Node within a Graph.
type NodeId int

// InvalidNodeId indicates a node that failed to be created or is not set.
const InvalidNodeId = NodeId(-1)

// NodeType identifies the operation performed by a node.
type NodeType int

const (
	NodeTypeInvalid NodeType = iota
	NodeTypeParameter
	NodeTypeConstant
	NodeTypeRandomVariable
	NodeTypeRngStateOutput
)

// String implements fmt.Stringer.
func (t NodeType) String() string {
	switch t {
	case NodeTypeParameter:
		return "Parameter"
	case NodeTypeConstant:
		return "Constant"
	case NodeTypeRandomVariable:
		return "RandomVariable"
	case NodeTypeRngStateOutput:
		return "RngStateOutput"
	default:
		return "Invalid"
	}
}

// NodeInputs represents the operation-specific inputs of a node. Each operation
// defines its own concrete type; the common interface returns the type of the node
// and a descriptive representation.
type NodeInputs interface {
	Type() NodeType

	// String prints a descriptive representation of the node, using its parameters.
	String() string
}

// Node represents the result of an operation in a Graph. Nodes are immutable once
// created; their static type is a Signature fixed at construction.
type Node struct {
	graph *Graph
	id    NodeId

	// inputNodes are the edges of the computation graph. Other static inputs to the
	// node are registered in inputs.
	inputNodes []*Node

	// inputs are the operation-specific parameters of the node.
	inputs NodeInputs

	signature Signature
}

// NewNode creates a node in the graph with the given operation inputs, graph input
// edges and output signature. All input nodes must belong to the same graph.
//
// It is used by this package's ops and by packages implementing their own node types
// (like randvar).
func (g *Graph) NewNode(inputs NodeInputs, inputNodes []*Node, signature Signature) *Node {
	g.AssertValid()
	if inputs == nil {
		exceptions.Panicf("Graph(%q).NewNode: inputs is nil", g.name)
	}
	for ii, input := range inputNodes {
		input.AssertValid()
		if input.graph != g {
			exceptions.Panicf("Graph(%q).NewNode(%s): input #%d belongs to a different graph (%q)",
				g.name, inputs, ii, input.graph.name)
		}
	}
	n := &Node{
		graph:      g,
		inputNodes: inputNodes,
		inputs:     inputs,
		signature:  signature,
	}
	g.registerNode(n)
	return n
}

// Type identifies the operation performed by the node.
func (n *Node) Type() NodeType {
	if n == nil || n.inputs == nil {
		return NodeTypeInvalid
	}
	return n.inputs.Type()
}

// Graph that holds this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id is the unique id of this node within the Graph.
func (n *Node) Id() NodeId {
	if n == nil {
		return InvalidNodeId
	}
	return n.id
}

// Inputs are the other nodes that are direct inputs to the node. This doesn't include
// static inputs that are not given by other Graph nodes.
func (n *Node) Inputs() []*Node { return n.inputNodes }

// NodeInputs returns the operation-specific inputs of the node.
func (n *Node) NodeInputs() NodeInputs { return n.inputs }

// Signature returns the static type (dtype plus symbolic dimensions) of the node's output.
func (n *Node) Signature() Signature { return n.signature }

// DType returns the DType of the node's signature.
func (n *Node) DType() dtypes.DType { return n.signature.DType }

// Rank returns the rank of the node's signature.
func (n *Node) Rank() int { return n.signature.Rank() }

// IsScalar returns whether the node's output is a scalar.
func (n *Node) IsScalar() bool { return n.signature.Rank() == 0 }

// Shape returns the static shape of the node: dimensions that constant-fold become
// literals, the others are shapes.UnknownDim.
func (n *Node) Shape() shapes.Shape { return n.signature.StaticShape() }

// Broadcastable returns, per axis, whether the axis is statically known to have
// size 1 -- eligible to stretch during broadcast operations.
func (n *Node) Broadcastable() []bool { return n.signature.Broadcastable() }

// AssertValid panics if n is nil or if its graph is invalid.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.inputs == nil {
		exceptions.Panicf("Node is in an invalid state")
	}
	n.graph.AssertValid()
}

// String implements the fmt.Stringer interface.
func (n *Node) String() (str string) {
	if n == nil {
		return "Node(nil)"
	}
	if n.inputs == nil {
		return "Invalid(?)"
	}
	return fmt.Sprintf("%s -> %s", n.inputs, n.signature)
}
