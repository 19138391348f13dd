// Package neural provides the feedforward network that drives a learned bird.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network dimensions.
const (
	NumInputs  = 3 // y, distance to gap top, distance to gap bottom
	NumOutputs = 1 // jump signal
)

const (
	// sigmoidSteepness sharpens the output so small weight changes can flip
	// a decision.
	sigmoidSteepness = 5
	// maxWeight bounds every parameter after mutation.
	maxWeight = 30
)

// ErrShape is returned when a weight vector or a partner network does not
// match the expected layout.
var ErrShape = errors.New("neural: network shape mismatch")

// layer is one fully connected stage: out = act(W·in + b).
type layer struct {
	w *mat.Dense    // out x in
	b *mat.VecDense // out
}

// Network maps an observation to a jump signal in (0, 1). With hidden == 0
// the inputs connect straight to the output; otherwise one tanh hidden layer
// sits in between.
type Network struct {
	hidden int
	layers []layer
}

// New creates a network with He-scaled gaussian weights and zero biases.
func New(rng *rand.Rand, hidden int) *Network {
	n := newShape(hidden)
	for _, l := range n.layers {
		_, in := l.w.Dims()
		scale := math.Sqrt(2.0 / float64(in))
		data := l.w.RawMatrix().Data
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
	}
	return n
}

func newShape(hidden int) *Network {
	sizes := []int{NumInputs}
	if hidden > 0 {
		sizes = append(sizes, hidden)
	}
	sizes = append(sizes, NumOutputs)

	n := &Network{hidden: hidden}
	for i := 1; i < len(sizes); i++ {
		n.layers = append(n.layers, layer{
			w: mat.NewDense(sizes[i], sizes[i-1], nil),
			b: mat.NewVecDense(sizes[i], nil),
		})
	}
	return n
}

// NumParams returns the number of weights and biases of a network with the
// given hidden layer size.
func NumParams(hidden int) int {
	if hidden <= 0 {
		return NumInputs*NumOutputs + NumOutputs
	}
	return NumInputs*hidden + hidden + hidden*NumOutputs + NumOutputs
}

// Hidden returns the hidden layer size (0 = none).
func (n *Network) Hidden() int {
	return n.hidden
}

// Forward computes the jump signal.
func (n *Network) Forward(inputs []float64) (float64, error) {
	if len(inputs) != NumInputs {
		return 0, fmt.Errorf("neural: expected %d inputs, got %d", NumInputs, len(inputs))
	}

	x := mat.NewVecDense(NumInputs, append([]float64(nil), inputs...))
	for i, l := range n.layers {
		out, _ := l.w.Dims()
		y := mat.NewVecDense(out, nil)
		y.MulVec(l.w, x)
		y.AddVec(y, l.b)

		last := i == len(n.layers)-1
		for k := 0; k < out; k++ {
			if last {
				y.SetVec(k, sigmoid(y.AtVec(k)))
			} else {
				y.SetVec(k, math.Tanh(y.AtVec(k)))
			}
		}
		x = y
	}
	return x.AtVec(0), nil
}

func sigmoid(z float64) float64 {
	z = math.Max(-60, math.Min(60, sigmoidSteepness*z))
	return 1 / (1 + math.Exp(-z))
}

// params returns the backing slices of every weight matrix and bias vector
// in a fixed order.
func (n *Network) params() [][]float64 {
	out := make([][]float64, 0, 2*len(n.layers))
	for _, l := range n.layers {
		out = append(out, l.w.RawMatrix().Data, l.b.RawVector().Data)
	}
	return out
}

// Mutate visits every parameter and, with probability rate, either redraws
// it from a unit gaussian (probability replaceRate) or perturbs it by
// gaussian noise of stddev power.
func (n *Network) Mutate(rng *rand.Rand, rate, power, replaceRate float64) {
	for _, p := range n.params() {
		for i := range p {
			if rng.Float64() >= rate {
				continue
			}
			if rng.Float64() < replaceRate {
				p[i] = rng.NormFloat64()
			} else {
				p[i] += rng.NormFloat64() * power
			}
			p[i] = math.Max(-maxWeight, math.Min(maxWeight, p[i]))
		}
	}
}

// Crossover builds a child taking each parameter from a or b with equal
// probability.
func Crossover(rng *rand.Rand, a, b *Network) (*Network, error) {
	if a.hidden != b.hidden {
		return nil, fmt.Errorf("%w: hidden %d vs %d", ErrShape, a.hidden, b.hidden)
	}

	child := newShape(a.hidden)
	pa, pb, pc := a.params(), b.params(), child.params()
	for k := range pc {
		for i := range pc[k] {
			if rng.Intn(2) == 0 {
				pc[k][i] = pa[k][i]
			} else {
				pc[k][i] = pb[k][i]
			}
		}
	}
	return child, nil
}

// Weights flattens all parameters, layer by layer, weights row-major then
// biases.
func (n *Network) Weights() []float64 {
	out := make([]float64, 0, NumParams(n.hidden))
	for _, p := range n.params() {
		out = append(out, p...)
	}
	return out
}

// FromWeights rebuilds a network from the output of Weights.
func FromWeights(hidden int, weights []float64) (*Network, error) {
	if hidden < 0 || len(weights) != NumParams(hidden) {
		return nil, fmt.Errorf("%w: hidden %d needs %d weights, got %d", ErrShape, hidden, NumParams(hidden), len(weights))
	}

	n := newShape(hidden)
	off := 0
	for _, p := range n.params() {
		off += copy(p, weights[off:])
	}
	return n, nil
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	c, _ := FromWeights(n.hidden, n.Weights())
	return c
}
