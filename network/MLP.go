package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. Hidden layers use the
// ReLU activation and the output layer uses a configurable activation.
type MLP struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	inputs     []*G.Node
	prefix     string
	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for gobbing
	hiddenSizes []int
	output      *Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    *G.Value
}

// NewMLP creates and returns a new MLP with its own input node of
// shape (batch, features) in the graph g. Every node the MLP adds to
// g has its name prefixed with prefix.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, init G.InitWFn, output *Activation,
	prefix string) (*MLP, error) {
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName(prefix+"input"), G.WithInit(G.Zeroes()))

	return NewMLPFromInputs([]*G.Node{input}, outputs, hiddenSizes, init,
		output, prefix)
}

// NewMLPFromInputs returns a new MLP whose input is the given nodes,
// concatenated along the feature (column) dimension in order. All
// inputs must belong to the same graph.
func NewMLPFromInputs(inputs []*G.Node, outputs int, hiddenSizes []int,
	init G.InitWFn, output *Activation, prefix string) (*MLP, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("newMLPFromInputs: no inputs")
	}
	if outputs < 1 {
		return nil, fmt.Errorf("newMLPFromInputs: outputs must be "+
			"positive, have %v", outputs)
	}
	for i, size := range hiddenSizes {
		if size < 1 {
			return nil, fmt.Errorf("newMLPFromInputs: hidden layer %v has "+
				"size %v", i, size)
		}
	}

	g := inputs[0].Graph()
	for _, input := range inputs {
		if input.Graph() != g {
			return nil, fmt.Errorf("newMLPFromInputs: not all inputs " +
				"have the same graph")
		}
		if !input.IsMatrix() {
			return nil, fmt.Errorf("newMLPFromInputs: input %v must be a "+
				"matrix", input.Name())
		}
	}

	// Concatenate inputs if necessary
	input := inputs[0]
	if len(inputs) > 1 {
		var err error
		if input, err = G.Concat(1, inputs...); err != nil {
			return nil, fmt.Errorf("newMLPFromInputs: could not "+
				"concatenate inputs: %v", err)
		}
	}

	batch := input.Shape()[0]
	features := input.Shape()[1]

	sizes := append(append([]int{}, hiddenSizes...), outputs)
	activations := make([]*Activation, len(sizes))
	for i := range hiddenSizes {
		activations[i] = ReLU()
	}
	activations[len(activations)-1] = output

	net := &MLP{
		g:           g,
		layers:      newFCLayers(g, features, sizes, activations, init, prefix),
		inputs:      inputs,
		prefix:      prefix,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: append([]int{}, hiddenSizes...),
		output:      output,
		predVal:     new(G.Value),
	}

	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newMLPFromInputs: could not compute "+
			"forward pass: %v", err)
	}

	return net, nil
}

// CloneTo creates a network with the same architecture and parameter
// values in the graph of inputs, reading from inputs.
func (m *MLP) CloneTo(inputs []*G.Node, prefix string) (*MLP, error) {
	clone, err := NewMLPFromInputs(inputs, m.numOutputs, m.hiddenSizes,
		G.Zeroes(), m.output, prefix)
	if err != nil {
		return nil, fmt.Errorf("cloneTo: %w", err)
	}

	if clone.numInputs != m.numInputs {
		return nil, fmt.Errorf("cloneTo: inputs have %v features but "+
			"network expects %v", clone.numInputs, m.numInputs)
	}

	if err := clone.Set(m); err != nil {
		return nil, fmt.Errorf("cloneTo: %w", err)
	}
	return clone, nil
}

// Graph returns the computational graph of the MLP.
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// Inputs returns the input nodes of the MLP
func (m *MLP) Inputs() []*G.Node {
	return m.inputs
}

// BatchSize returns the batch size of inputs to the MLP
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single input row
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs from the network
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// HiddenSizes returns the number of units in each hidden layer
func (m *MLP) HiddenSizes() []int {
	return append([]int{}, m.hiddenSizes...)
}

// SetInput sets the value of the input node before running the forward
// pass. It is only valid for networks with a single input node.
func (m *MLP) SetInput(input []float64) error {
	if len(m.inputs) != 1 {
		return fmt.Errorf("setInput: network has %v input nodes",
			len(m.inputs))
	}
	if len(input) != m.numInputs*m.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", m.numInputs*m.batchSize, len(input))
	}

	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.inputs[0].Shape()...),
	)
	return G.Let(m.inputs[0], inputTensor)
}

// Set sets the weights of the MLP to be equal to the weights of
// another network. Weights are copied into the existing backing
// storage so that VMs bound to the MLP see the new values.
func (m *MLP) Set(source NeuralNet) error {
	return m.combine(source, func(dest, src []float64) {
		copy(dest, src)
	})
}

// Polyak sets the weights of the MLP to be a polyak average between
// its existing weights and the weights of another network:
//
//	w ← τ·w' + (1-τ)·w
func (m *MLP) Polyak(source NeuralNet, tau float64) error {
	if tau < 0 || tau > 1 {
		return fmt.Errorf("polyak: τ must be in [0, 1], have %v", tau)
	}
	return m.combine(source, func(dest, src []float64) {
		floats.Scale(1-tau, dest)
		floats.AddScaled(dest, tau, src)
	})
}

// combine applies f to each pair of matching parameters
func (m *MLP) combine(source NeuralNet, f func(dest, src []float64)) error {
	sourceNodes := source.Learnables()
	nodes := m.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("networks have different numbers of parameters: "+
			"%v != %v", len(nodes), len(sourceNodes))
	}

	for i := range nodes {
		dest, err := values(nodes[i])
		if err != nil {
			return err
		}
		src, err := values(sourceNodes[i])
		if err != nil {
			return err
		}
		if len(dest) != len(src) {
			return fmt.Errorf("parameter %v has shape %v but source has "+
				"shape %v", nodes[i].Name(), nodes[i].Shape(),
				sourceNodes[i].Shape())
		}
		f(dest, src)
	}
	return nil
}

// values returns the backing data of a node's value
func values(n *G.Node) ([]float64, error) {
	if n.Value() == nil {
		return nil, fmt.Errorf("node %v has no value", n.Name())
	}
	data, ok := n.Value().Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("node %v does not hold float64 data",
			n.Name())
	}
	return data, nil
}

// Learnables returns the learnable nodes in the MLP
func (m *MLP) Learnables() G.Nodes {
	// Lazy instantiation
	if m.learnables == nil {
		learnables := make([]*G.Node, 0, 2*len(m.layers))
		for _, layer := range m.layers {
			learnables = append(learnables, layer.Weights(), layer.Bias())
		}
		m.learnables = G.Nodes(learnables)
	}
	return m.learnables
}

// Model returns the learnables nodes with their gradients.
func (m *MLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if m.model == nil {
		m.model = G.NodesToValueGrads(m.Learnables())
	}
	return m.model
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	m.prediction = pred
	G.Read(m.prediction, m.predVal)

	return pred, nil
}

// Output returns the output of the MLP computed on the last run of
// the graph.
func (m *MLP) Output() G.Value {
	return *m.predVal
}

// Prediction returns the node of the computational graph the stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// GobEncode implements the gob.GobEncoder interface. Only the
// architecture and parameter values are encoded; the decoded network
// lives in a new graph with a single input node.
func (m *MLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	header := []interface{}{
		m.numInputs, m.numOutputs, m.batchSize, m.hiddenSizes, m.output,
		m.prefix,
	}
	for _, field := range header {
		if err := enc.Encode(field); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"architecture: %v", err)
		}
	}

	for _, node := range m.Learnables() {
		weights, err := values(node)
		if err != nil {
			return nil, fmt.Errorf("gobencode: %v", err)
		}
		if err := enc.Encode(weights); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode %v: %v",
				node.Name(), err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (m *MLP) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var numInputs, numOutputs, batchSize int
	var hiddenSizes []int
	var prefix string
	output := Identity()
	header := []interface{}{
		&numInputs, &numOutputs, &batchSize, &hiddenSizes, output, &prefix,
	}
	for _, field := range header {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode architecture: %v",
				err)
		}
	}

	net, err := NewMLP(numInputs, batchSize, numOutputs, G.NewGraph(),
		hiddenSizes, G.Zeroes(), output, prefix)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct MLP: %v", err)
	}

	for _, node := range net.Learnables() {
		var weights []float64
		if err := dec.Decode(&weights); err != nil {
			return fmt.Errorf("gobdecode: could not decode %v: %v",
				node.Name(), err)
		}
		dest, err := values(node)
		if err != nil {
			return fmt.Errorf("gobdecode: %v", err)
		}
		if len(dest) != len(weights) {
			return fmt.Errorf("gobdecode: %v has %v weights, decoded %v",
				node.Name(), len(dest), len(weights))
		}
		copy(dest, weights)
	}

	*m = *net
	return nil
}
