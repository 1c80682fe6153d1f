package nn

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

var ErrWeightCount = errors.New("weight count does not match topology")

// Topology lists neurons per layer; the first entry is the input width.
type Topology []int

func (t Topology) validate() error {
	if len(t) < 2 {
		return fmt.Errorf("topology needs at least 2 layers, got %d", len(t))
	}
	for i, width := range t {
		if width <= 0 {
			return fmt.Errorf("layer %d width must be > 0, got %d", i, width)
		}
	}
	return nil
}

// WeightCount is the number of parameters a network of this shape carries:
// one bias plus one weight per input for every non-input neuron.
func (t Topology) WeightCount() int {
	total := 0
	for i := 1; i < len(t); i++ {
		total += (t[i-1] + 1) * t[i]
	}
	return total
}

type Neuron struct {
	Bias    float64
	Weights []float64
}

type Layer struct {
	Neurons []Neuron
}

// Network is a dense feed-forward network with one activation for every layer.
type Network struct {
	topology   Topology
	activation string
	fn         ActivationFunc
	layers     []Layer
}

// Random builds a network with biases and weights drawn from [-1, 1].
func Random(rng *rand.Rand, topology Topology, activation string) (*Network, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := topology.validate(); err != nil {
		return nil, err
	}
	weights := make([]float64, topology.WeightCount())
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	return FromWeights(topology, activation, weights)
}

// FromWeights is the inverse of Weights.
func FromWeights(topology Topology, activation string, weights []float64) (*Network, error) {
	if err := topology.validate(); err != nil {
		return nil, err
	}
	if len(weights) != topology.WeightCount() {
		return nil, fmt.Errorf("%w: got %d want %d", ErrWeightCount, len(weights), topology.WeightCount())
	}
	fn, err := GetActivation(activation)
	if err != nil {
		return nil, err
	}

	layers := make([]Layer, 0, len(topology)-1)
	offset := 0
	for i := 1; i < len(topology); i++ {
		inputs := topology[i-1]
		layer := Layer{Neurons: make([]Neuron, topology[i])}
		for n := range layer.Neurons {
			layer.Neurons[n] = Neuron{
				Bias:    weights[offset],
				Weights: append([]float64(nil), weights[offset+1:offset+1+inputs]...),
			}
			offset += inputs + 1
		}
		layers = append(layers, layer)
	}

	return &Network{
		topology:   append(Topology(nil), topology...),
		activation: activation,
		fn:         fn,
		layers:     layers,
	}, nil
}

// Weights flattens the network as bias, then input weights, neuron by neuron.
func (n *Network) Weights() []float64 {
	weights := make([]float64, 0, n.topology.WeightCount())
	for _, layer := range n.layers {
		for _, neuron := range layer.Neurons {
			weights = append(weights, neuron.Bias)
			weights = append(weights, neuron.Weights...)
		}
	}
	return weights
}

func (n *Network) Topology() Topology {
	return append(Topology(nil), n.topology...)
}

func (n *Network) Activation() string {
	return n.activation
}

func (n *Network) Propagate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.topology[0] {
		return nil, fmt.Errorf("expected %d inputs, got %d", n.topology[0], len(inputs))
	}
	values := inputs
	for _, layer := range n.layers {
		next := make([]float64, len(layer.Neurons))
		for i, neuron := range layer.Neurons {
			next[i] = n.fn(neuron.Bias + floats.Dot(neuron.Weights, values))
		}
		values = next
	}
	return values, nil
}
