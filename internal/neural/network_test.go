package neural

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewShapes(t *testing.T) {
	tests := []struct {
		hidden int
		params int
	}{
		{0, 4},
		{1, 6},
		{6, 31},
	}

	for _, tc := range tests {
		n := New(rand.New(rand.NewSource(1)), tc.hidden)
		if got := len(n.Weights()); got != tc.params {
			t.Errorf("hidden %d: %d params, expected %d", tc.hidden, got, tc.params)
		}
		if NumParams(tc.hidden) != tc.params {
			t.Errorf("NumParams(%d) = %d, expected %d", tc.hidden, NumParams(tc.hidden), tc.params)
		}
	}
}

func TestForwardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, hidden := range []int{0, 4} {
		n := New(rng, hidden)
		for i := 0; i < 200; i++ {
			in := []float64{rng.Float64() * 800, rng.Float64() * 400, rng.Float64() * 400}
			out, err := n.Forward(in)
			if err != nil {
				t.Fatalf("Forward() failed: %v", err)
			}
			if out < 0 || out > 1 {
				t.Fatalf("output %v out of [0, 1]", out)
			}
		}
	}
}

func TestForwardZeroWeights(t *testing.T) {
	n, err := FromWeights(0, make([]float64, NumParams(0)))
	if err != nil {
		t.Fatal(err)
	}
	out, err := n.Forward([]float64{350, 10, 20})
	if err != nil {
		t.Fatal(err)
	}
	if out != 0.5 {
		t.Errorf("Forward() = %v with zero weights, expected 0.5", out)
	}
}

func TestForwardDirectConnection(t *testing.T) {
	// Output fires only when y exceeds the bias: w=(1,0,0), b=-400.
	n, err := FromWeights(0, []float64{1, 0, 0, -400})
	if err != nil {
		t.Fatal(err)
	}

	low, _ := n.Forward([]float64{300, 0, 0})
	high, _ := n.Forward([]float64{500, 0, 0})
	if low >= 0.5 || high <= 0.5 {
		t.Errorf("Forward() low=%v high=%v, expected below and above 0.5", low, high)
	}
}

func TestForwardRejectsWrongInputCount(t *testing.T) {
	n := New(rand.New(rand.NewSource(1)), 0)
	if _, err := n.Forward([]float64{1, 2}); err == nil {
		t.Fatal("Forward() should reject two inputs")
	}
}

func TestForwardDoesNotAliasInputs(t *testing.T) {
	n := New(rand.New(rand.NewSource(1)), 2)
	in := []float64{1, 2, 3}
	if _, err := n.Forward(in); err != nil {
		t.Fatal(err)
	}
	if in[0] != 1 || in[1] != 2 || in[2] != 3 {
		t.Errorf("inputs modified: %v", in)
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	n := New(rand.New(rand.NewSource(7)), 3)
	c, err := FromWeights(3, n.Weights())
	if err != nil {
		t.Fatalf("FromWeights() failed: %v", err)
	}

	in := []float64{123, 45, 67}
	a, _ := n.Forward(in)
	b, _ := c.Forward(in)
	if a != b {
		t.Errorf("rebuilt network output %v, expected %v", b, a)
	}
}

func TestFromWeightsShapeMismatch(t *testing.T) {
	_, err := FromWeights(2, []float64{1, 2, 3})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("FromWeights() error = %v, expected ErrShape", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := New(rand.New(rand.NewSource(3)), 0)
	c := n.Clone()
	c.Mutate(rand.New(rand.NewSource(4)), 1, 1, 0)

	if n.Weights()[0] == c.Weights()[0] {
		t.Error("mutating the clone should not change the original")
	}
}

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := New(rng, 2)
	before := n.Weights()

	n.Mutate(rng, 0, 1, 0)
	for i, w := range n.Weights() {
		if w != before[i] {
			t.Fatalf("rate 0 changed weight %d", i)
		}
	}

	n.Mutate(rng, 1, 100, 0)
	changed := 0
	for i, w := range n.Weights() {
		if w != before[i] {
			changed++
		}
		if w > maxWeight || w < -maxWeight {
			t.Errorf("weight %d = %v escaped the clamp", i, w)
		}
	}
	if changed != len(before) {
		t.Errorf("rate 1 changed %d of %d weights", changed, len(before))
	}
}

func TestCrossover(t *testing.T) {
	a, _ := FromWeights(0, []float64{1, 1, 1, 1})
	b, _ := FromWeights(0, []float64{2, 2, 2, 2})

	child, err := Crossover(rand.New(rand.NewSource(5)), a, b)
	if err != nil {
		t.Fatalf("Crossover() failed: %v", err)
	}
	for i, w := range child.Weights() {
		if w != 1 && w != 2 {
			t.Errorf("child weight %d = %v not taken from a parent", i, w)
		}
	}

	c := New(rand.New(rand.NewSource(6)), 3)
	if _, err := Crossover(rand.New(rand.NewSource(5)), a, c); !errors.Is(err, ErrShape) {
		t.Errorf("Crossover() of different shapes error = %v, expected ErrShape", err)
	}
}
