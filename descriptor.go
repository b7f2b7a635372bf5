package randvar

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/randvar/graph"
	"github.com/pkg/errors"
)

// SupportShapeFn derives the support-shape dimensions of one intrinsic draw from the
// distribution parameters and their symbolic shapes. Distributions for which the
// default rule (the reference parameter's trailing dimensions) is wrong supply one
// of these on their Descriptor.
type SupportShapeFn func(params []*graph.Node, paramShapes [][]graph.Dim) ([]graph.Dim, error)

// Descriptor identifies one parametric distribution family. It is shared, read-only,
// by arbitrarily many graph nodes; set the fields once and treat it as immutable.
//
// The zero values give the safe defaults: scalar support, copy state policy,
// reference parameter 0, dtype to be supplied by the caller at MakeNode.
type Descriptor struct {
	// Name identifies the family and selects the sampling kernel at execution time.
	Name string

	// SupportRank is the number of dimensions of one intrinsic draw
	// (e.g. a multivariate normal draw is 1D, so SupportRank = 1; 0 = scalar draws).
	SupportRank int

	// ParamRanks states, per declared parameter, how many of that parameter's
	// trailing dimensions are intrinsic rather than batch (e.g. a multivariate
	// normal's mean is 1D and covariance 2D, so ParamRanks = []int{1, 2}).
	// Required: a nil ParamRanks fails node construction with ErrConfig.
	// For families without parameters use an explicit empty slice.
	ParamRanks []int

	// DType of the sampled output. InvalidDType (the zero value) means the caller
	// must supply a dtype at MakeNode time. Ignored if FloatX is set.
	DType dtypes.DType

	// FloatX, when set, types samples with the ambient default float precision
	// (see DefaultFloat), taking precedence over both DType and any caller-supplied
	// dtype.
	FloatX bool

	// Inplace selects the state-mutation policy at execution time: when set, the
	// generator state advances destructively in place; otherwise each draw operates
	// on an independent copy, leaving the input state unchanged. Copy is the safer
	// default; in-place requires the caller to thread states strictly sequentially.
	Inplace bool

	// RefParam is the index of the parameter whose trailing dimensions provide the
	// support shape under the default rule. Default 0 (the first parameter).
	RefParam int

	// SupportShape optionally replaces the default support-shape rule.
	SupportShape SupportShapeFn
}

// Validate checks the descriptor's configuration. Returns an error wrapping
// ErrConfig if ParamRanks is missing or malformed, or RefParam is out of range.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return errors.Wrapf(ErrConfig, "Descriptor.Name must be set")
	}
	if d.SupportRank < 0 {
		return errors.Wrapf(ErrConfig, "%s: SupportRank must be non-negative, got %d", d.Name, d.SupportRank)
	}
	if d.ParamRanks == nil {
		return errors.Wrapf(ErrConfig, "%s: ParamRanks must be set (use an empty slice for parameterless families)", d.Name)
	}
	if slices.ContainsFunc(d.ParamRanks, func(r int) bool { return r < 0 }) {
		return errors.Wrapf(ErrConfig, "%s: ParamRanks must be non-negative, got %v", d.Name, d.ParamRanks)
	}
	if len(d.ParamRanks) > 0 && (d.RefParam < 0 || d.RefParam >= len(d.ParamRanks)) {
		return errors.Wrapf(ErrConfig, "%s: RefParam %d out of range for %d parameters", d.Name, d.RefParam, len(d.ParamRanks))
	}
	return nil
}

// NumParams returns the number of parameters the family accepts.
func (d *Descriptor) NumParams() int { return len(d.ParamRanks) }

// String implements fmt.Stringer, in the form "name_rv{supportRank, paramRanks, dtype, inplace}".
func (d *Descriptor) String() string {
	dtype := "?"
	switch {
	case d.FloatX:
		dtype = "floatX"
	case d.DType != dtypes.InvalidDType:
		dtype = d.DType.String()
	}
	return fmt.Sprintf("%s_rv{%d, %v, %s, %v}", d.Name, d.SupportRank, d.ParamRanks, dtype, d.Inplace)
}
