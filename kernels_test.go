package randvar

import (
	"math"
	"testing"

	"github.com/gomlx/randvar/rng"
	"github.com/gomlx/randvar/types/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestRegisterKernel(t *testing.T) {
	name := "test_register_kernel"
	RegisterKernel(name, func(state *rng.State, params []*tensors.Tensor, size []int) (*tensors.Tensor, error) {
		return tensors.FromScalar(0.0), nil
	})
	_, found := kernelByName(name)
	require.True(t, found)

	require.Error(t, buildErr(func() { RegisterKernel(name, uniformKernel) }), "duplicate registration must panic")
	require.Error(t, buildErr(func() { RegisterKernel("", uniformKernel) }))
	require.Error(t, buildErr(func() { RegisterKernel("test_nil_kernel", nil) }))
}

func TestBroadcastStrides(t *testing.T) {
	strides := broadcastStrides([][]int{{3, 1}, {1, 4}, {}}, []int{3, 4})
	require.Equal(t, [][]int{{1, 0}, {0, 1}, {0, 0}}, strides)

	// Left-padded parameter: only the trailing axes carry strides.
	strides = broadcastStrides([][]int{{5}}, []int{2, 5})
	require.Equal(t, [][]int{{0, 1}}, strides)
}

func TestDrawElementwiseSizeCompatibility(t *testing.T) {
	state := rng.NewFromSeed(9)
	p := tensors.FromValue([]float64{1, 2, 3})
	identity := func(state *rng.State, p []float64) float64 { return p[0] }

	// Size replicates over the parameters' batch shape.
	out, err := drawElementwise(state, []*tensors.Tensor{p}, []int{2, 3}, identity)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, out.Shape().Dimensions)
	require.Equal(t, []float64{1, 2, 3, 1, 2, 3}, must.M1(tensors.Float64Values(out)))

	// Size may not contradict the batch shape.
	_, err = drawElementwise(state, []*tensors.Tensor{p}, []int{2, 4}, identity)
	require.Error(t, err)
	_, err = drawElementwise(state, []*tensors.Tensor{p}, []int{2}, identity)
	require.Error(t, err)
}

func TestNormalDrawMoments(t *testing.T) {
	state := rng.NewFromSeed(1234)
	const n = 20000
	sum, sumSq := 0.0, 0.0
	for ii := 0; ii < n; ii++ {
		v := normalDraw(state)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	require.InDelta(t, 0.0, mean, 0.05)
	require.InDelta(t, 1.0, variance, 0.05)
}

func TestGammaDrawMoments(t *testing.T) {
	state := rng.NewFromSeed(99)
	const n = 20000
	for _, alpha := range []float64{0.5, 2.5} {
		sum := 0.0
		for ii := 0; ii < n; ii++ {
			v := gammaDraw(state, alpha)
			require.False(t, math.IsNaN(v))
			require.Greater(t, v, 0.0)
			sum += v
		}
		// Gamma(alpha, 1) has mean alpha.
		require.InDelta(t, alpha, sum/n, 0.1*alpha+0.05)
	}
}

func TestBernoulliKernelFrequency(t *testing.T) {
	state := rng.NewFromSeed(5)
	p := tensors.FromScalar(0.25)
	out, err := bernoulliKernel(state, []*tensors.Tensor{p}, []int{10000})
	require.NoError(t, err)
	values := must.M1(tensors.Float64Values(out))
	count := 0.0
	for _, v := range values {
		require.True(t, v == 0 || v == 1)
		count += v
	}
	require.InDelta(t, 0.25, count/float64(len(values)), 0.02)
}
