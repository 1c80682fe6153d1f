package scape

import (
	"fmt"
	"math/rand"

	"aviary/internal/agent"
	"aviary/internal/evo"
)

// Simulation owns one world and evolves its birds every generation_length
// steps. It is not safe for concurrent use.
type Simulation struct {
	config     Config
	brain      agent.BrainConfig
	ga         *evo.GeneticAlgorithm[*agent.Animal]
	world      World
	age        int
	generation int
	last       *evo.Statistics
}

// Random builds a simulation with random brains, positions and food.
func Random(cfg Config, rng *rand.Rand) (*Simulation, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	brain, err := cfg.brainConfig()
	if err != nil {
		return nil, err
	}
	gaConfig, err := cfg.geneticAlgorithmConfig()
	if err != nil {
		return nil, err
	}
	ga, err := evo.NewGeneticAlgorithm[*agent.Animal](gaConfig)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{
		config: cfg,
		brain:  brain,
		ga:     ga,
		world: World{
			size:    cfg.WorldSize,
			edges:   cfg.WorldEdges,
			animals: make([]*agent.Animal, 0, cfg.WorldAnimals),
			foods:   make([]*Food, 0, cfg.WorldFoods),
		},
	}
	for i := 0; i < cfg.WorldAnimals; i++ {
		b, err := agent.RandomBrain(rng, brain)
		if err != nil {
			return nil, err
		}
		sim.world.animals = append(sim.world.animals, agent.NewAnimal(rng, b, cfg.WorldSize, cfg.SimSpeedMax))
	}
	for i := 0; i < cfg.WorldFoods; i++ {
		sim.world.foods = append(sim.world.foods, randomFood(rng, cfg.WorldSize))
	}
	return sim, nil
}

func (s *Simulation) Config() Config {
	return s.config
}

func (s *Simulation) World() WorldView {
	return s.world.view()
}

func (s *Simulation) Stats() Statistics {
	return newStatistics(s.age, s.config.SimGenerationLength, s.generation, s.last)
}

// Step advances the world by one tick: birds eat, think, then move. When the
// tick completes a generation the population is evolved and the returned
// statistics describe the generation that just ended; the bool reports it.
//
// If evolving fails, the final tick stays applied and age sits at the
// generation length; the next Step retries only the evolution.
func (s *Simulation) Step(rng *rand.Rand) (Statistics, bool, error) {
	if rng == nil {
		return Statistics{}, false, fmt.Errorf("random source is required")
	}
	if s.age < s.config.SimGenerationLength {
		s.processCollisions(rng)
		if err := s.processBrains(); err != nil {
			return Statistics{}, false, err
		}
		s.processMovements()

		s.age++
		if s.age < s.config.SimGenerationLength {
			return s.Stats(), false, nil
		}
	}
	if err := s.evolve(rng); err != nil {
		return Statistics{}, false, err
	}
	return s.Stats(), true, nil
}

// Train steps until the current generation ends.
func (s *Simulation) Train(rng *rand.Rand) (Statistics, error) {
	for {
		stats, done, err := s.Step(rng)
		if err != nil {
			return Statistics{}, err
		}
		if done {
			return stats, nil
		}
	}
}

func (s *Simulation) processCollisions(rng *rand.Rand) {
	for _, animal := range s.world.animals {
		for _, food := range s.world.foods {
			if distance(animal.Position, food.Position) <= s.config.FoodSize {
				animal.Feed()
				food.Position = randomPosition(rng, s.world.size)
			}
		}
	}
}

func (s *Simulation) processBrains() error {
	foods := s.world.foodPositions()
	for i, animal := range s.world.animals {
		if err := animal.Think(foods, s.config.SimSpeedMin, s.config.SimSpeedMax); err != nil {
			return fmt.Errorf("animal %d: %w", i, err)
		}
	}
	return nil
}

func (s *Simulation) processMovements() {
	for _, animal := range s.world.animals {
		animal.Advance()
		animal.Position = s.world.confine(animal.Position)
	}
}

func (s *Simulation) evolve(rng *rand.Rand) error {
	children, stats, err := s.ga.Evolve(rng, s.world.animals, s.newAnimal)
	if err != nil {
		return fmt.Errorf("evolve generation %d: %w", s.generation, err)
	}
	s.world.animals = children
	s.world.relocateFoods(rng)
	s.age = 0
	s.generation++
	s.last = &stats
	return nil
}

func (s *Simulation) newAnimal(rng *rand.Rand, chromosome evo.Chromosome) (*agent.Animal, error) {
	brain, err := agent.BrainFromChromosome(s.brain, chromosome)
	if err != nil {
		return nil, err
	}
	return agent.NewAnimal(rng, brain, s.config.WorldSize, s.config.SimSpeedMax), nil
}
