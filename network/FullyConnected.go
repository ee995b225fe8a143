package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayers adds len(sizes) fully connected layers to the graph g.
// Layer i maps its input to sizes[i] units, adds a bias, and applies
// activations[i]. Node names are prefixed so that several networks
// can share one graph.
func newFCLayers(g *G.ExprGraph, features int, sizes []int,
	activations []*Activation, init G.InitWFn, prefix string) []*fcLayer {
	layers := make([]*fcLayer, len(sizes))

	in := features
	for i, out := range sizes {
		weights := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(in, out),
			G.WithName(fmt.Sprintf("%sL%dW", prefix, i)),
			G.WithInit(init),
		)
		bias := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, out),
			G.WithName(fmt.Sprintf("%sL%dB", prefix, i)),
			G.WithInit(G.Zeroes()),
		)

		layers[i] = &fcLayer{
			weights: weights,
			bias:    bias,
			act:     activations[i],
		}
		in = out
	}

	return layers
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0})
	if err != nil {
		return nil, err
	}

	return f.act.fwd(x)
}

// Activation returns the activation applied by the layer
func (f *fcLayer) Activation() *Activation {
	return f.act
}

// Bias returns the bias node of the layer
func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

// Weights returns the weight node of the layer
func (f *fcLayer) Weights() *G.Node {
	return f.weights
}
