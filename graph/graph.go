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

// Package graph implements the lazily-evaluated computation graph skeleton consumed
// by the randvar package: graphs, immutable nodes with a static Signature (dtype plus
// symbolic dimensions), and the symbolic dimension expressions (Dim) with their
// constant folder.
//
// The main elements in the package are:
//
//   - Graph: owns the nodes. Building a graph is purely computational, no numeric
//     data is touched; all shape and type checking happens here, at graph building
//     time, and errors are reported by panicking with an error that carries a stack
//     trace (see github.com/gomlx/exceptions).
//
//   - Node: represents the result of an operation. Each node has a fixed Signature
//     known at graph building time. Nodes are immutable once created.
//
//   - Dim: a symbolic scalar dimension expression -- a literal, the runtime size of
//     some node's axis, or the broadcast of several of those. Dim.Fold constant-folds
//     an expression to a literal when the graph has enough static information.
//
// Everything here runs at graph building time only: it is single-threaded per Graph,
// allocates no shared state, and different graphs can be built concurrently.
package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// GraphId is a unique identifier of a Graph within a process.
type GraphId int

var nextGraphId GraphId

// Graph with the operations and dependencies needed to run a computation.
type Graph struct {
	graphId GraphId
	name    string
	nodes   []*Node
}

// New constructs an empty Graph with the given name (optional, it may be empty).
func New(name string) *Graph {
	g := &Graph{
		graphId: nextGraphId,
		name:    name,
	}
	nextGraphId++
	return g
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// GraphId of the graph, unique within the process.
func (g *Graph) GraphId() GraphId { return g.graphId }

// AssertValid panics if the graph is nil.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("the Graph is nil")
	}
}

// NumNodes returns the number of nodes created in the graph so far.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeById returns the node with the given id. It panics if out of range.
func (g *Graph) NodeById(id NodeId) *Node {
	g.AssertValid()
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("Graph(%q).NodeById(%d): invalid node id, graph has %d nodes", g.name, id, len(g.nodes))
	}
	return g.nodes[id]
}

// registerNode assigns an id to the node and stores it in the graph.
func (g *Graph) registerNode(n *Node) {
	n.id = NodeId(len(g.nodes))
	g.nodes = append(g.nodes, n)
}

// String lists all nodes of the graph, for debugging.
func (g *Graph) String() string {
	if g == nil {
		return "Graph(nil)"
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Graph %q: %d nodes\n", g.name, len(g.nodes))
	for _, n := range g.nodes {
		_, _ = fmt.Fprintf(&sb, "\t#%d\t%s\n", n.Id(), n)
	}
	return sb.String()
}
