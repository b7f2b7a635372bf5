package randvar

import (
	"math"
	"slices"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/randvar/rng"
	"github.com/gomlx/randvar/types/shapes"
	"github.com/gomlx/randvar/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Kernel draws a numeric array: given a generator state to advance, the concrete
// distribution parameters and the normalized replication size (nil for "the
// kernel's natural output shape"), it returns the sampled tensor.
//
// Kernels are looked up by the Descriptor.Name of the node being executed; they are
// the only consumers of true randomness in the system.
type Kernel func(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error)

var (
	muKernels sync.RWMutex
	kernels   = make(map[string]Kernel)
)

// RegisterKernel registers a sampling kernel under the given name. Registering a
// duplicate name panics: kernels are process-wide and registered at initialization.
func RegisterKernel(name string, kernel Kernel) {
	if name == "" || kernel == nil {
		exceptions.Panicf("RegisterKernel(%q): name and kernel must be set", name)
	}
	muKernels.Lock()
	defer muKernels.Unlock()
	if _, found := kernels[name]; found {
		exceptions.Panicf("RegisterKernel(%q): a kernel is already registered under this name", name)
	}
	kernels[name] = kernel
	klog.V(1).Infof("randvar: registered sampling kernel %q", name)
}

func kernelByName(name string) (Kernel, bool) {
	muKernels.RLock()
	defer muKernels.RUnlock()
	kernel, found := kernels[name]
	return kernel, found
}

func init() {
	RegisterKernel("uniform", uniformKernel)
	RegisterKernel("normal", normalKernel)
	RegisterKernel("bernoulli", bernoulliKernel)
	RegisterKernel("dirichlet", dirichletKernel)
}

// floatParams reads every parameter as float64 contents plus dimensions.
func floatParams(params []*tensors.Tensor) (values [][]float64, dims [][]int, err error) {
	values = make([][]float64, len(params))
	dims = make([][]int, len(params))
	for ii, param := range params {
		values[ii], err = tensors.Float64Values(param)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "parameter #%d", ii)
		}
		dims[ii] = param.Shape().Dimensions
	}
	return
}

// drawElementwise implements scalar-support kernels: it broadcasts the parameters
// together, prepends the replication size, and calls draw once per output element
// with the broadcast parameter values for that element. Draws happen in row-major
// order, so the consumed randomness is reproducible for a given state.
func drawElementwise(state *rng.State, params []*tensors.Tensor, size []int,
	draw func(state *rng.State, paramValues []float64) float64) (*tensors.Tensor, error) {
	values, dims, err := floatParams(params)
	if err != nil {
		return nil, err
	}
	batchDims, err := shapes.BroadcastDims(dims...)
	if err != nil {
		return nil, err
	}
	outDims := batchDims
	if size != nil {
		// The batch shape must be broadcast-compatible with the trailing dimensions
		// of size: size never removes draws implied by the parameters.
		if len(size) < len(batchDims) {
			return nil, errors.Errorf("size %v has fewer dimensions than the parameters' batch shape %v", size, batchDims)
		}
		tail := size[len(size)-len(batchDims):]
		resolved, err := shapes.BroadcastDims(tail, batchDims)
		if err != nil || !slices.Equal(resolved, tail) {
			return nil, errors.Errorf("size %v is incompatible with the parameters' batch shape %v", size, batchDims)
		}
		outDims = size
	}

	strides := broadcastStrides(dims, outDims)
	totalSize := 1
	for _, dim := range outDims {
		totalSize *= dim
	}
	flat := make([]float64, totalSize)
	index := make([]int, len(outDims))
	paramValues := make([]float64, len(params))
	for pos := range flat {
		for ii := range params {
			offset := 0
			for axis, idx := range index {
				offset += idx * strides[ii][axis]
			}
			paramValues[ii] = values[ii][offset]
		}
		flat[pos] = draw(state, paramValues)
		for axis := len(index) - 1; axis >= 0; axis-- {
			index[axis]++
			if index[axis] < outDims[axis] {
				break
			}
			index[axis] = 0
		}
	}
	return tensors.FromFlatDataAndDimensions(flat, outDims...), nil
}

// broadcastStrides computes, per parameter, the flat stride to apply for each axis
// of the output dimensions: axes where the parameter is absent (left-padded) or has
// size 1 get stride 0, so the parameter value stretches along them.
func broadcastStrides(paramDims [][]int, outDims []int) [][]int {
	strides := make([][]int, len(paramDims))
	for ii, dims := range paramDims {
		strides[ii] = make([]int, len(outDims))
		stride := 1
		for axis := len(dims) - 1; axis >= 0; axis-- {
			outAxis := axis + len(outDims) - len(dims)
			if dims[axis] != 1 {
				strides[ii][outAxis] = stride
			}
			stride *= dims[axis]
		}
	}
	return strides
}

// normalDraw draws one standard normal value, consuming two positions of the state
// (Box-Muller, no spare caching so draws stay position-reproducible).
func normalDraw(state *rng.State) float64 {
	u1 := 1 - state.Float64() // (0, 1]
	u2 := state.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// gammaDraw draws one Gamma(alpha, 1) value with the Marsaglia-Tsang method.
func gammaDraw(state *rng.State, alpha float64) float64 {
	if alpha < 1 {
		u := 1 - state.Float64()
		return gammaDraw(state, alpha+1) * math.Pow(u, 1/alpha)
	}
	d := alpha - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := normalDraw(state)
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := 1 - state.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// uniformKernel draws uniformly from the half-open interval [low, high).
func uniformKernel(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error) {
	return drawElementwise(state, params, size, func(state *rng.State, p []float64) float64 {
		low, high := p[0], p[1]
		return low + (high-low)*state.Float64()
	})
}

// normalKernel draws from Normal(loc, scale).
func normalKernel(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error) {
	return drawElementwise(state, params, size, func(state *rng.State, p []float64) float64 {
		loc, scale := p[0], p[1]
		return loc + scale*normalDraw(state)
	})
}

// bernoulliKernel draws 0/1 values with probability p of 1.
func bernoulliKernel(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error) {
	return drawElementwise(state, params, size, func(state *rng.State, p []float64) float64 {
		if state.Float64() < p[0] {
			return 1
		}
		return 0
	})
}

// dirichletKernel draws from Dirichlet(alphas): each intrinsic draw is a vector of
// the length of the trailing axis of alphas, normalized gamma draws. Leading axes
// of alphas are batch dimensions, and size prepends replication dimensions.
func dirichletKernel(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error) {
	alphas := params[0]
	if alphas.Rank() < 1 {
		return nil, errors.Errorf("dirichlet requires alphas with at least 1 dimension, got %s", alphas.Shape())
	}
	alphaValues, err := tensors.Float64Values(alphas)
	if err != nil {
		return nil, err
	}
	alphaDims := alphas.Shape().Dimensions
	support := alphaDims[len(alphaDims)-1]
	numCells := len(alphaValues) / support

	reps := 1
	for _, dim := range size {
		reps *= dim
	}
	flat := make([]float64, reps*numCells*support)
	for rep := 0; rep < reps; rep++ {
		for cell := 0; cell < numCells; cell++ {
			out := flat[(rep*numCells+cell)*support:][:support]
			alpha := alphaValues[cell*support:][:support]
			total := 0.0
			for jj, a := range alpha {
				out[jj] = gammaDraw(state, a)
				total += out[jj]
			}
			for jj := range out {
				out[jj] /= total
			}
		}
	}
	outDims := slices.Concat(size, alphaDims)
	return tensors.FromFlatDataAndDimensions(flat, outDims...), nil
}
