package randvar

import (
	"github.com/gomlx/randvar/graph"
	"github.com/gomlx/randvar/rng"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/gomlx/randvar/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Execute performs the draw recorded in a random-variable node, given concrete
// numeric inputs. It returns the node's two outputs: the post-draw generator state
// and the sample, coerced to the node's declared dtype.
//
// The generator state to operate on is resolved by the descriptor's mutation
// policy: under the copy policy (the default) the incoming state is cloned first
// and the caller's state is left observably unchanged; under the in-place policy
// the incoming state object itself advances destructively. Either way the returned
// state is the one actually advanced.
//
// An empty (or nil) size delegates the output shape entirely to the kernel;
// otherwise the kernel replicates draws over the given dimensions.
//
// The kernel call is the only place randomness is consumed; no side effect escapes
// beyond the two returned outputs. Failures are returned wrapping ErrKernel (or
// ErrConfig/ErrType for malformed inputs), never panicking.
func Execute(node *graph.Node, state *rng.State, params []*tensors.Tensor, size []int) (newState *rng.State, sample *tensors.Tensor, err error) {
	rv, err := nodeInputsOf(node)
	if err != nil {
		return nil, nil, err
	}
	d := rv.descriptor
	if state == nil {
		return nil, nil, errors.Wrapf(ErrType, "%s: Execute requires a concrete generator state", d.Name)
	}
	if len(params) != d.NumParams() {
		return nil, nil, errors.Wrapf(ErrConfig, "%s: Execute got %d parameter(s), family declares %d",
			d.Name, len(params), d.NumParams())
	}

	// An empty size means no size is enforced: the kernel is trusted to produce its
	// natural output shape.
	if len(size) == 0 {
		size = nil
	}

	if !d.Inplace {
		state = state.Clone()
	}
	newState = state

	kernel, found := kernelByName(d.Name)
	if !found {
		return nil, nil, errors.Wrapf(ErrKernel, "%s: no sampling kernel registered under this name", d.Name)
	}
	sample, err = kernel(state, params, size)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrKernel, "%s: %v", d.Name, err)
	}
	if sample == nil {
		return nil, nil, errors.Wrapf(ErrKernel, "%s: kernel returned no sample", d.Name)
	}

	if sample.DType() != node.DType() {
		sample, err = tensors.ConvertDType(sample, node.DType())
		if err != nil {
			return nil, nil, errors.Wrapf(ErrKernel, "%s: coercing kernel output to declared dtype %s: %v",
				d.Name, node.DType(), err)
		}
	}
	if err = checkSampleShape(node, sample); err != nil {
		return nil, nil, err
	}

	if klog.V(2).Enabled() {
		klog.Infof("randvar.Execute(%s): drew %s, state advanced to position %d", d.Name, sample.Shape(), newState.Position())
	}
	return newState, sample, nil
}

// checkSampleShape verifies the drawn sample against the node's static shape
// signature: the rank must match, and every dimension that constant-folded at
// construction must agree.
func checkSampleShape(node *graph.Node, sample *tensors.Tensor) error {
	static := node.Shape()
	got := sample.Shape()
	if got.Rank() != static.Rank() {
		return errors.Wrapf(ErrKernel, "kernel output rank %d, node declares rank %d (%s vs %s)",
			got.Rank(), static.Rank(), got, static)
	}
	for axis, dim := range static.Dimensions {
		if dim != shapes.UnknownDim && got.Dimensions[axis] != dim {
			return errors.Wrapf(ErrKernel, "kernel output dimension %d at axis %d, node declares %d (%s vs %s)",
				got.Dimensions[axis], axis, dim, got, static)
		}
	}
	return nil
}
