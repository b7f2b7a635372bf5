// Package randvar implements random-variable nodes for a lazily-evaluated
// computation graph: graph-building-time construction and shape inference of
// randomized-sampling operations, and their execution against concrete values.
//
// A Descriptor identifies one parametric distribution family (its name, support
// rank, per-parameter intrinsic ranks, dtype and state-mutation policy). From
// abstract, possibly shape-unknown parameters, Descriptor.MakeNode determines the
// exact output shape and broadcast pattern of a draw without executing any sampling,
// and assembles an immutable graph node with two outputs: the post-draw generator
// state and the sample.
//
// The output shape composes three groups of dimensions, in order:
//
//	replication (from the requested size) ++ independent (from broadcasting the
//	parameters' batch dimensions together) ++ support (one intrinsic draw)
//
// Execution happens separately, per node, via Execute: it resolves the generator
// state according to the descriptor's mutation policy (clone by default, destructive
// update when Inplace is set), dispatches to the named sampling kernel, and coerces
// the result to the node's declared dtype.
//
// Construction errors panic with stack-carrying errors (the graph-building
// convention, see github.com/gomlx/exceptions) wrapping one of the exported error
// kinds; execution errors are returned as values wrapping ErrKernel.
package randvar

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Error kinds reported by this package. Construction-time failures panic with an
// error wrapping one of these (check with errors.Is after recovering, e.g. with
// exceptions.TryCatch); execution-time failures are returned wrapping ErrKernel.
var (
	// ErrConfig indicates an invalid Descriptor: a missing per-parameter rank list,
	// an out-of-range reference parameter, or a malformed size specification.
	ErrConfig = errors.New("invalid distribution configuration")

	// ErrType indicates a generator-state handle that is not of the recognized
	// state family.
	ErrType = errors.New("invalid generator state type")

	// ErrShape indicates a shape mismatch: a reference parameter with fewer
	// dimensions than the declared support rank, or two distinct non-1 sizes at the
	// same broadcast axis.
	ErrShape = errors.New("shape mismatch")

	// ErrDType indicates an unresolvable or unrecognized dtype.
	ErrDType = errors.New("invalid dtype")

	// ErrKernel indicates a sampling-kernel failure at execution time, or a kernel
	// result that could not be coerced to the node's declared dtype.
	ErrKernel = errors.New("sampling kernel failed")
)

// defaultFloat is the ambient default float precision, resolved when a Descriptor
// declares FloatX. Set it before building graphs; it is not synchronized.
var defaultFloat = dtypes.Float64

// DefaultFloat returns the currently configured default float precision.
func DefaultFloat() dtypes.DType { return defaultFloat }

// SetDefaultFloat configures the default float precision resolved by the FloatX
// dtype policy. Only float dtypes are accepted.
func SetDefaultFloat(dtype dtypes.DType) {
	if !dtype.IsFloat() {
		exceptions.Panicf("SetDefaultFloat(%s): not a float dtype", dtype)
	}
	defaultFloat = dtype
}
