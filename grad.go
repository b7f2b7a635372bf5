package randvar

import (
	"github.com/gomlx/randvar/graph"
	"github.com/gomlx/randvar/types/shapes"
)

// VJP is the reverse-mode gradient of a draw node: random draws have no defined
// derivative with respect to any input, so every input's adjoint is nil
// ("gradient undefined"). This is a deliberate terminal stub for the surrounding
// autodiff engine, not an omission; it never panics.
func VJP(node *graph.Node, adjoints []*graph.Node, outputShape shapes.Shape) []*graph.Node {
	_, _ = adjoints, outputShape
	if node == nil {
		return nil
	}
	return make([]*graph.Node, len(node.Inputs()))
}

// JVP is the forward-mode (directional-derivative) counterpart of VJP: it yields
// "undefined" (nil) for every input, regardless of the evaluation points.
func JVP(node *graph.Node, evalPoints []*graph.Node) []*graph.Node {
	_ = evalPoints
	if node == nil {
		return nil
	}
	return make([]*graph.Node, len(node.Inputs()))
}
