package randvar

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/graph"
	"github.com/gomlx/randvar/rng"
	"github.com/gomlx/randvar/types/tensors"
	"github.com/pkg/errors"
)

// StateSignature is the graph signature of generator-state values: the recognized
// state family. A state is three uint64 words (two key words and a position).
var StateSignature = graph.MakeSignature(dtypes.Uint64, 3)

// StateNode creates a graph node holding a generator state. If state is nil, a
// fresh clock-seeded state is created -- never a shared process-wide instance.
func StateNode(g *graph.Graph, state *rng.State) *graph.Node {
	if state == nil {
		state = rng.New()
	}
	words := state.Words()
	return graph.Const(g, tensors.FromFlatDataAndDimensions(words[:], 3))
}

// IsStateNode returns whether the node's signature belongs to the recognized
// generator-state family.
func IsStateNode(node *graph.Node) bool {
	if node == nil {
		return false
	}
	sig := node.Signature()
	return sig.DType == StateSignature.DType &&
		slices.Equal(graph.FoldDims(sig.Dims), graph.FoldDims(StateSignature.Dims))
}

// nodeInputsRandomVariable records the operation-specific inputs of a draw node:
// the family descriptor, the normalized size specification, the catalogue index of
// the resolved dtype, and the parameter nodes.
type nodeInputsRandomVariable struct {
	descriptor *Descriptor
	size       []graph.Dim
	dtypeIndex int
	params     []*graph.Node
}

func (ni *nodeInputsRandomVariable) Type() graph.NodeType { return graph.NodeTypeRandomVariable }

func (ni *nodeInputsRandomVariable) String() string {
	return fmt.Sprintf("%s(size=%v, dtypeIndex=%d)", ni.descriptor, ni.size, ni.dtypeIndex)
}

// nodeInputsRngStateOutput is the post-draw generator-state output of a draw node.
type nodeInputsRngStateOutput struct {
	rv *graph.Node
}

func (ni *nodeInputsRngStateOutput) Type() graph.NodeType { return graph.NodeTypeRngStateOutput }

func (ni *nodeInputsRngStateOutput) String() string {
	return fmt.Sprintf("RngStateOutput(#%d)", ni.rv.Id())
}

// NormalizeSize coerces the accepted size encodings to the canonical ordered
// sequence of dimension expressions: nil (no explicit replication), a single int, a
// []int, a graph.Dim or a []graph.Dim. Replication dimensions must be non-negative
// (0 yields empty samples); it panics with ErrConfig for negative entries or any
// other encoding.
func NormalizeSize(size any) []graph.Dim {
	switch v := size.(type) {
	case nil:
		return nil
	case int:
		return NormalizeSize([]int{v})
	case []int:
		for _, dim := range v {
			if dim < 0 {
				panic(errors.Wrapf(ErrConfig, "size %v has a negative replication dimension", v))
			}
		}
		return graph.ConstDims(v...)
	case graph.Dim:
		return []graph.Dim{v}
	case []graph.Dim:
		return slices.Clone(v)
	default:
		panic(errors.Wrapf(ErrConfig, "unsupported size specification of type %T", size))
	}
}

// MakeNode validates and normalizes the inputs of a draw, infers the output's
// static shape signature without executing any sampling, and assembles the
// immutable graph node. It returns the node's two outputs: the post-draw generator
// state and the sample.
//
// Arguments:
//   - state: an existing generator-state node (see StateNode), or nil for a fresh
//     default-seeded state owned by this node alone.
//   - size: the replication dimensions, in any encoding accepted by NormalizeSize;
//     nil means "no explicit replication -- infer purely from parameter shapes".
//   - dtype: the requested sample dtype. Only used when the descriptor itself
//     declares no dtype policy; dtypes.InvalidDType means unspecified.
//   - params: the distribution parameters, each a *graph.Node or any value
//     convertible to a constant tensor (Go scalars and slices, *tensors.Tensor).
//
// Failures panic with errors wrapping ErrConfig, ErrType, ErrShape or ErrDType.
// No numeric computation occurs.
func (d *Descriptor) MakeNode(g *graph.Graph, state *graph.Node, size any, dtype dtypes.DType, params ...any) (stateOut, sample *graph.Node) {
	g.AssertValid()
	if err := d.Validate(); err != nil {
		panic(err)
	}

	sizeDims := NormalizeSize(size)

	paramNodes := make([]*graph.Node, len(params))
	for ii, param := range params {
		if node, ok := param.(*graph.Node); ok {
			paramNodes[ii] = node
		} else {
			paramNodes[ii] = graph.ConstValue(g, param)
		}
	}
	if len(paramNodes) != d.NumParams() {
		panic(errors.Wrapf(ErrConfig, "%s: got %d parameter(s), family declares %d",
			d.Name, len(paramNodes), d.NumParams()))
	}

	if state == nil {
		state = StateNode(g, rng.New())
	} else if !IsStateNode(state) {
		panic(errors.Wrapf(ErrType, "%s: state handle %s is not of the generator-state family %s",
			d.Name, state.Signature(), StateSignature))
	}

	// Shape inference runs on symbolic dimension expressions; constant folding of
	// the resulting expressions (in Signature) determines the broadcastable axes.
	outputDims, err := d.inferShape(sizeDims, paramNodes, nil)
	if err != nil {
		panic(err)
	}

	resolved := dtypes.InvalidDType
	switch {
	case d.FloatX:
		resolved = DefaultFloat()
	case d.DType != dtypes.InvalidDType:
		resolved = d.DType
	case dtype != dtypes.InvalidDType:
		resolved = dtype
	}
	if resolved == dtypes.InvalidDType {
		panic(errors.Wrapf(ErrDType, "%s: dtype is unspecified -- set Descriptor.DType, Descriptor.FloatX or supply one to MakeNode", d.Name))
	}
	dtypeIndex, err := DTypeIndex(resolved)
	if err != nil {
		panic(err)
	}

	inputs := &nodeInputsRandomVariable{
		descriptor: d,
		size:       sizeDims,
		dtypeIndex: dtypeIndex,
		params:     paramNodes,
	}
	inputNodes := make([]*graph.Node, 0, 1+len(paramNodes))
	inputNodes = append(inputNodes, state)
	inputNodes = append(inputNodes, paramNodes...)
	sample = g.NewNode(inputs, inputNodes, graph.Signature{DType: resolved, Dims: outputDims})
	stateOut = g.NewNode(&nodeInputsRngStateOutput{rv: sample}, []*graph.Node{sample},
		graph.MakeSignature(StateSignature.DType, 3))
	return stateOut, sample
}

// nodeInputsOf returns the draw-node inputs of a node, accepting either the sample
// node itself or its generator-state output.
func nodeInputsOf(node *graph.Node) (*nodeInputsRandomVariable, error) {
	if node == nil {
		return nil, errors.Wrapf(ErrConfig, "node is nil")
	}
	if stateOut, ok := node.NodeInputs().(*nodeInputsRngStateOutput); ok {
		node = stateOut.rv
	}
	rv, ok := node.NodeInputs().(*nodeInputsRandomVariable)
	if !ok {
		return nil, errors.Wrapf(ErrConfig, "node %s is not a random-variable node", node)
	}
	return rv, nil
}

// NodeDescriptor returns the distribution descriptor recorded in a draw node.
func NodeDescriptor(node *graph.Node) *Descriptor {
	rv, err := nodeInputsOf(node)
	if err != nil {
		panic(err)
	}
	return rv.descriptor
}

// NodeSize returns the normalized size specification recorded in a draw node.
func NodeSize(node *graph.Node) []graph.Dim {
	rv, err := nodeInputsOf(node)
	if err != nil {
		panic(err)
	}
	return slices.Clone(rv.size)
}

// NodeDTypeIndex returns the catalogue index of the draw node's resolved dtype.
// DTypeByIndex of this value and the node's own DType resolve identically.
func NodeDTypeIndex(node *graph.Node) int {
	rv, err := nodeInputsOf(node)
	if err != nil {
		panic(err)
	}
	return rv.dtypeIndex
}
