package randvar

import (
	"github.com/gomlx/randvar/graph"
	"github.com/pkg/errors"
)

// sliceSupportDims splits one parameter's symbolic shape into its independent
// (batch) prefix and its support suffix, given how many trailing dimensions n
// belong to the distribution's intrinsic support.
//
// Independent dimensions statically known to be 1 are collapsed to the literal 1,
// so downstream broadcasting and constant folding can treat them as scalar along
// that axis.
func sliceSupportDims(dims []graph.Dim, n int) (independent, support []graph.Dim, err error) {
	if n == 0 {
		return dims, nil, nil
	}
	if len(dims) < n {
		return nil, nil, errors.Wrapf(ErrShape,
			"parameter has %d dimension(s), fewer than its declared %d support dimension(s)", len(dims), n)
	}
	support = dims[len(dims)-n:]
	independent = make([]graph.Dim, len(dims)-n)
	for ii, d := range dims[:len(dims)-n] {
		if value, ok := d.Fold(); ok && value == 1 {
			independent[ii] = graph.OneDim
		} else {
			independent[ii] = d
		}
	}
	return independent, support, nil
}

// defaultSupportShape is the default support-shape rule: the reference parameter's
// trailing SupportRank dimensions, as-is. It is not universally valid -- see
// Descriptor.SupportShape for the per-distribution override.
func (d *Descriptor) defaultSupportShape(paramShapes [][]graph.Dim) ([]graph.Dim, error) {
	refShape := paramShapes[d.RefParam]
	if len(refShape) < d.SupportRank {
		return nil, errors.Wrapf(ErrShape,
			"%s: reference parameter #%d has %d dimension(s), fewer than the declared support rank %d",
			d.Name, d.RefParam, len(refShape), d.SupportRank)
	}
	return refShape[len(refShape)-d.SupportRank:], nil
}

// inferShape computes the symbolic output shape of a draw given the size
// specification and the parameters' symbolic shapes. No numeric data is touched.
//
// The result concatenates, in order: replication dimensions (from size),
// independent dimensions (from broadcasting the parameters' batch dimensions
// together) and support dimensions (one intrinsic draw). An all-empty result is the
// rank-0, empty-shape scalar.
func (d *Descriptor) inferShape(size []graph.Dim, params []*graph.Node, paramShapes [][]graph.Dim) ([]graph.Dim, error) {
	if paramShapes == nil {
		paramShapes = make([][]graph.Dim, len(params))
		for ii, p := range params {
			paramShapes[ii] = p.Signature().Dims
		}
	}
	if len(paramShapes) != len(d.ParamRanks) {
		return nil, errors.Wrapf(ErrConfig, "%s: got %d parameter(s), family declares %d",
			d.Name, len(paramShapes), len(d.ParamRanks))
	}

	if d.SupportRank == 0 && len(size) > 0 {
		// A scalar-support distribution with an explicit size: the size completely
		// determines the output shape, and is the only trustworthy source for it.
		return size, nil
	}

	// Slice off every parameter's support dimensions, leaving only the independent
	// variate dimensions, and broadcast those together.
	independentShapes := make([][]graph.Dim, len(paramShapes))
	for ii, paramShape := range paramShapes {
		independent, _, err := sliceSupportDims(paramShape, d.ParamRanks[ii])
		if err != nil {
			return nil, errors.WithMessagef(err, "%s: parameter #%d", d.Name, ii)
		}
		independentShapes[ii] = independent
	}
	var shapeInd []graph.Dim
	if len(independentShapes) == 1 {
		shapeInd = independentShapes[0]
	} else if len(independentShapes) > 1 {
		var err error
		shapeInd, err = graph.BroadcastDims(independentShapes...)
		if err != nil {
			return nil, errors.Wrapf(ErrShape, "%s: broadcasting parameters' independent dimensions: %v", d.Name, err)
		}
	}
	ndimInd := len(shapeInd)

	var shapeSupp, shapeReps []graph.Dim
	if d.SupportRank == 0 {
		// The trailing independent dimensions are already implied by the parameters;
		// drop them from the replication shape to avoid double counting.
		cut := len(size) - ndimInd
		if cut < 0 {
			cut = 0
		}
		shapeReps = size[:cut]
	} else {
		var err error
		if d.SupportShape != nil {
			shapeSupp, err = d.SupportShape(params, paramShapes)
		} else {
			shapeSupp, err = d.defaultSupportShape(paramShapes)
		}
		if err != nil {
			return nil, err
		}
		shapeReps = size
	}

	shape := make([]graph.Dim, 0, len(shapeReps)+ndimInd+len(shapeSupp))
	shape = append(shape, shapeReps...)
	shape = append(shape, shapeInd...)
	shape = append(shape, shapeSupp...)
	return shape, nil
}

// InferOutputShape returns the symbolic output shape of a random-variable node given
// already-known input shapes for its parameters (one per parameter, in declaration
// order). Pass nil to fall back to the parameters' own declared shapes.
//
// This is the hook the surrounding graph engine registers to propagate shapes
// without executing the node.
func InferOutputShape(node *graph.Node, paramShapes [][]graph.Dim) ([]graph.Dim, error) {
	rv, err := nodeInputsOf(node)
	if err != nil {
		return nil, err
	}
	return rv.descriptor.inferShape(rv.size, rv.params, paramShapes)
}
