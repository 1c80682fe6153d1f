package agent

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/evo"
	aviaryio "aviary/internal/io"
	"aviary/internal/nn"
)

// BrainConfig describes the wiring shared by every brain in a population.
type BrainConfig struct {
	Sensor     aviaryio.Sensor
	Actuator   aviaryio.Actuator
	Neurons    int
	Activation string
}

func (c BrainConfig) validate() error {
	if c.Sensor == nil {
		return fmt.Errorf("brain sensor is required")
	}
	if c.Actuator == nil {
		return fmt.Errorf("brain actuator is required")
	}
	if c.Neurons <= 0 {
		return fmt.Errorf("brain neurons must be > 0, got %d", c.Neurons)
	}
	return nil
}

// Topology is sensor width, one hidden layer, actuator width.
func (c BrainConfig) Topology() nn.Topology {
	return nn.Topology{c.Sensor.Width(), c.Neurons, c.Actuator.Width()}
}

// ChromosomeLength is the number of genes a brain of this shape encodes.
func (c BrainConfig) ChromosomeLength() int {
	return c.Topology().WeightCount()
}

// Brain binds a network between a sensor and an actuator.
type Brain struct {
	sensor   aviaryio.Sensor
	actuator aviaryio.Actuator
	network  *nn.Network
}

func RandomBrain(rng *rand.Rand, cfg BrainConfig) (*Brain, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	network, err := nn.Random(rng, cfg.Topology(), cfg.Activation)
	if err != nil {
		return nil, fmt.Errorf("random brain: %w", err)
	}
	return &Brain{sensor: cfg.Sensor, actuator: cfg.Actuator, network: network}, nil
}

func BrainFromChromosome(cfg BrainConfig, chromosome evo.Chromosome) (*Brain, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	network, err := nn.FromWeights(cfg.Topology(), cfg.Activation, chromosome)
	if err != nil {
		return nil, fmt.Errorf("brain from chromosome: %w", err)
	}
	return &Brain{sensor: cfg.Sensor, actuator: cfg.Actuator, network: network}, nil
}

func (b *Brain) Chromosome() evo.Chromosome {
	return evo.Chromosome(b.network.Weights())
}

// Tick senses the targets, runs the network and returns the requested motion
// together with the sensor reading that produced it.
func (b *Brain) Tick(position r2.Vec, rotation float64, targets []r2.Vec) (aviaryio.Motion, []float64, error) {
	vision := b.sensor.Process(position, rotation, targets)
	outputs, err := b.network.Propagate(vision)
	if err != nil {
		return aviaryio.Motion{}, nil, err
	}
	motion, err := b.actuator.Apply(outputs)
	if err != nil {
		return aviaryio.Motion{}, nil, err
	}
	return motion, vision, nil
}
