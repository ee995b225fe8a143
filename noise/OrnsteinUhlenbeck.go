// Package noise implements exploration noise processes that perturb
// continuous action proposals.
package noise

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config describes an Ornstein-Uhlenbeck process
type Config struct {
	Theta float64 // Mean reversion rate
	Sigma float64 // Scale of the Gaussian perturbation
	Mu    float64 // Long-run mean
}

// Validate returns an error if the Config cannot describe a stable
// process.
func (c Config) Validate() error {
	if c.Theta < 0 || c.Theta > 1 {
		return fmt.Errorf("validate: theta must be in [0, 1], have %v",
			c.Theta)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("validate: sigma must be non-negative, have %v",
			c.Sigma)
	}
	return nil
}

// OrnsteinUhlenbeck implements a temporally correlated noise process.
// Each call to Sample updates the state as:
//
//	x ← x + θ(μ - x) + σε,	ε ~ N(0, 1)
//
// with one independent ε per component. The state starts at all ones.
type OrnsteinUhlenbeck struct {
	theta float64
	sigma float64
	mu    float64

	state  []float64
	view   *mat.VecDense
	normal distuv.Normal
	eps    []float64
}

// NewOrnsteinUhlenbeck returns a new Ornstein-Uhlenbeck process of
// dimension size.
func NewOrnsteinUhlenbeck(c Config, size int,
	seed uint64) (*OrnsteinUhlenbeck, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOrnsteinUhlenbeck: %w", err)
	}
	if size < 1 {
		return nil, fmt.Errorf("newOrnsteinUhlenbeck: size must be "+
			"positive, have %v", size)
	}

	state := make([]float64, size)
	o := &OrnsteinUhlenbeck{
		theta: c.Theta,
		sigma: c.Sigma,
		mu:    c.Mu,
		state: state,
		view:  mat.NewVecDense(size, state),
		normal: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewSource(seed),
		},
		eps: make([]float64, size),
	}
	o.Reset()

	return o, nil
}

// Reset restores the process to its initial state
func (o *OrnsteinUhlenbeck) Reset() {
	for i := range o.state {
		o.state[i] = 1.0
	}
}

// Sample advances the process one step and returns its state. The
// returned vector is a view of the process state: it must not be
// modified and is overwritten by the next call to Sample.
func (o *OrnsteinUhlenbeck) Sample() mat.Vector {
	for i := range o.eps {
		o.eps[i] = o.normal.Rand()
	}

	// x += θ(μ - x)
	for i, x := range o.state {
		o.state[i] = x + o.theta*(o.mu-x)
	}
	floats.AddScaled(o.state, o.sigma, o.eps)

	return o.view
}

// Len returns the dimension of the process
func (o *OrnsteinUhlenbeck) Len() int {
	return len(o.state)
}
