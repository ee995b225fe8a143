package noise

import (
	"math"
	"testing"
)

func TestDeterministicForSeed(t *testing.T) {
	c := Config{Theta: 0.15, Sigma: 0.2, Mu: 0}
	first, err := NewOrnsteinUhlenbeck(c, 16, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewOrnsteinUhlenbeck(c, 16, 42)
	if err != nil {
		t.Fatal(err)
	}

	for step := 0; step < 100; step++ {
		a := first.Sample()
		b := second.Sample()
		for i := 0; i < a.Len(); i++ {
			if a.AtVec(i) != b.AtVec(i) {
				t.Fatalf("step %v component %v: %v != %v", step, i,
					a.AtVec(i), b.AtVec(i))
			}
		}
	}
}

func TestZeroSigmaRevertsToMean(t *testing.T) {
	c := Config{Theta: 0.5, Sigma: 0, Mu: 2}
	o, err := NewOrnsteinUhlenbeck(c, 3, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Without noise, x_{t+1} - μ = (1 - θ)(x_t - μ)
	want := 1.0
	for step := 0; step < 5; step++ {
		want = want + c.Theta*(c.Mu-want)
		sample := o.Sample()
		for i := 0; i < sample.Len(); i++ {
			if math.Abs(sample.AtVec(i)-want) > 1e-12 {
				t.Errorf("step %v: want %v have %v", step, want,
					sample.AtVec(i))
			}
		}
	}
}

func TestReset(t *testing.T) {
	o, err := NewOrnsteinUhlenbeck(Config{Theta: 0.15, Sigma: 0.2}, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	o.Sample()
	o.Sample()
	o.Reset()

	for i, x := range o.state {
		if x != 1.0 {
			t.Errorf("component %v: want 1 after reset, have %v", i, x)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := NewOrnsteinUhlenbeck(Config{Theta: 2}, 4, 1); err == nil {
		t.Error("theta > 1 accepted")
	}
	if _, err := NewOrnsteinUhlenbeck(Config{Theta: 0.1}, 0, 1); err == nil {
		t.Error("zero size accepted")
	}
}
