package aviary

import (
	"math/rand"

	"aviary/internal/scape"
)

// Simulation is a self-contained simulation for embedding in a host loop. It
// owns its random source, so the same config and seed replay identically.
type Simulation struct {
	sim *scape.Simulation
	rng *rand.Rand
}

func NewSimulation(cfg Config, seed int64) (*Simulation, error) {
	rng := rand.New(rand.NewSource(seed))
	sim, err := scape.Random(cfg, rng)
	if err != nil {
		return nil, err
	}
	return &Simulation{sim: sim, rng: rng}, nil
}

// Step advances one tick and reports whether a generation just ended.
func (s *Simulation) Step() (Statistics, bool, error) {
	return s.sim.Step(s.rng)
}

// Train runs until the current generation ends.
func (s *Simulation) Train() (Statistics, error) {
	return s.sim.Train(s.rng)
}

func (s *Simulation) World() WorldView {
	return s.sim.World()
}

func (s *Simulation) Stats() Statistics {
	return s.sim.Stats()
}

func (s *Simulation) Config() Config {
	return s.sim.Config()
}
