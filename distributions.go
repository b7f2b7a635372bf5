package randvar

import (
	"github.com/gomlx/gopjrt/dtypes"
)

// Pre-made descriptors for the built-in sampling kernels. They are read-only;
// to customize (say, an in-place uniform) copy the value and adjust the copy.
var (
	// Uniform draws from the half-open interval [low, high).
	Uniform = &Descriptor{
		Name:       "uniform",
		ParamRanks: []int{0, 0},
		FloatX:     true,
	}

	// Normal draws from Normal(loc, scale).
	Normal = &Descriptor{
		Name:       "normal",
		ParamRanks: []int{0, 0},
		FloatX:     true,
	}

	// Bernoulli draws 0/1 with probability p of 1.
	Bernoulli = &Descriptor{
		Name:       "bernoulli",
		ParamRanks: []int{0},
		DType:      dtypes.Int64,
	}

	// Dirichlet draws probability vectors from Dirichlet(alphas): the trailing axis
	// of alphas is the support, leading axes are batch dimensions.
	Dirichlet = &Descriptor{
		Name:        "dirichlet",
		SupportRank: 1,
		ParamRanks:  []int{1},
		FloatX:      true,
	}
)
