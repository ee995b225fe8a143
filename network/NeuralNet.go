// Package network implements neural network function approximators
// built on Gorgonia computational graphs.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a network whose parameters live in a Gorgonia graph.
// A NeuralNet owns no VM: running the graph is up to the caller.
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error

	// Set copies the parameters of another network with the same
	// architecture verbatim.
	Set(NeuralNet) error

	// Polyak sets each parameter p to τ·p' + (1-τ)·p where p' is the
	// matching parameter of the argument network.
	Polyak(NeuralNet, float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node
}
