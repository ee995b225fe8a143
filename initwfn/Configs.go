package initwfn

import G "gorgonia.org/gorgonia"

// GlorotUConfig configures Glorot uniform initialization
type GlorotUConfig struct {
	Gain float64
}

func (GlorotUConfig) Type() Type { return GlorotU }

func (g GlorotUConfig) Create() G.InitWFn { return G.GlorotU(g.Gain) }

// NewGlorotU returns a new Glorot uniform weight initializer
func NewGlorotU(gain float64) *InitWFn {
	return New(GlorotUConfig{Gain: gain})
}

// GlorotNConfig configures Glorot normal initialization
type GlorotNConfig struct {
	Gain float64
}

func (GlorotNConfig) Type() Type { return GlorotN }

func (g GlorotNConfig) Create() G.InitWFn { return G.GlorotN(g.Gain) }

// HeUConfig configures He uniform initialization
type HeUConfig struct {
	Gain float64
}

func (HeUConfig) Type() Type { return HeU }

func (h HeUConfig) Create() G.InitWFn { return G.HeU(h.Gain) }

// HeNConfig configures He normal initialization
type HeNConfig struct {
	Gain float64
}

func (HeNConfig) Type() Type { return HeN }

func (h HeNConfig) Create() G.InitWFn { return G.HeN(h.Gain) }

// UniformConfig configures weights drawn from U[Low, High)
type UniformConfig struct {
	Low, High float64
}

func (UniformConfig) Type() Type { return Uniform }

func (u UniformConfig) Create() G.InitWFn { return G.Uniform(u.Low, u.High) }

// GaussianConfig configures weights drawn from N(Mean, StdDev²)
type GaussianConfig struct {
	Mean, StdDev float64
}

func (GaussianConfig) Type() Type { return Gaussian }

func (g GaussianConfig) Create() G.InitWFn {
	return G.Gaussian(g.Mean, g.StdDev)
}

// ZeroesConfig configures all-zero weights. Networks restored from a
// checkpoint are built with zero weights before their values are
// overwritten.
type ZeroesConfig struct{}

func (ZeroesConfig) Type() Type { return Zeroes }

func (ZeroesConfig) Create() G.InitWFn { return G.Zeroes() }

// NewZeroes returns a new all-zero weight initializer
func NewZeroes() *InitWFn {
	return New(ZeroesConfig{})
}

// ConstantConfig configures weights that all equal Value
type ConstantConfig struct {
	Value float64
}

func (ConstantConfig) Type() Type { return Constant }

func (c ConstantConfig) Create() G.InitWFn { return G.ValuesOf(c.Value) }

// NewConstant returns a weight initializer that sets every weight to
// value
func NewConstant(value float64) *InitWFn {
	return New(ConstantConfig{Value: value})
}
