package evo

import (
	"fmt"
	"math/rand"
)

type Config struct {
	Selection     SelectionMethod
	Crossover     CrossoverMethod
	Mutation      MutationMethod
	Postprocessor FitnessPostprocessor
}

// GeneticAlgorithm turns one evaluated population into the next one.
type GeneticAlgorithm[I Individual] struct {
	selection     SelectionMethod
	crossover     CrossoverMethod
	mutation      MutationMethod
	postprocessor FitnessPostprocessor
}

func NewGeneticAlgorithm[I Individual](cfg Config) (*GeneticAlgorithm[I], error) {
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation method is required")
	}
	if cfg.Selection == nil {
		cfg.Selection = RouletteWheelSelection{}
	}
	if cfg.Crossover == nil {
		cfg.Crossover = UniformCrossover{}
	}
	if cfg.Postprocessor == nil {
		cfg.Postprocessor = NoopFitnessPostprocessor{}
	}
	return &GeneticAlgorithm[I]{
		selection:     cfg.Selection,
		crossover:     cfg.Crossover,
		mutation:      cfg.Mutation,
		postprocessor: cfg.Postprocessor,
	}, nil
}

// Evolve breeds a population of the same size as the input. Each child comes
// from two independently selected parents (possibly the same one), crossover
// and mutation. The returned statistics describe the input population.
// Nothing is returned unless every child was built.
func (ga *GeneticAlgorithm[I]) Evolve(rng *rand.Rand, population []I, factory Factory[I]) ([]I, Statistics, error) {
	if rng == nil {
		return nil, Statistics{}, fmt.Errorf("random source is required")
	}
	if factory == nil {
		return nil, Statistics{}, fmt.Errorf("individual factory is required")
	}
	if len(population) == 0 {
		return nil, Statistics{}, ErrEmptyPopulation
	}

	fitness := make([]float64, len(population))
	for i, individual := range population {
		fitness[i] = individual.Fitness()
		if err := checkFitness(fitness[i]); err != nil {
			return nil, Statistics{}, fmt.Errorf("individual %d: %w", i, err)
		}
	}
	stats, err := NewStatistics(fitness)
	if err != nil {
		return nil, Statistics{}, err
	}

	weights := ga.postprocessor.Process(fitness)
	if len(weights) != len(population) {
		return nil, Statistics{}, fmt.Errorf("postprocessor %s returned %d weights for %d individuals", ga.postprocessor.Name(), len(weights), len(population))
	}
	pool := make([]Individual, len(population))
	for i, individual := range population {
		pool[i] = weighted{Individual: individual, weight: weights[i]}
	}

	next := make([]I, 0, len(population))
	for len(next) < len(population) {
		parentA, err := ga.selection.Select(rng, pool)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("select parent: %w", err)
		}
		parentB, err := ga.selection.Select(rng, pool)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("select parent: %w", err)
		}

		child, err := ga.crossover.Crossover(rng, parentA.Chromosome(), parentB.Chromosome())
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("%s crossover: %w", ga.crossover.Name(), err)
		}
		ga.mutation.Mutate(rng, child)

		individual, err := factory(rng, child)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("build individual %d: %w", len(next), err)
		}
		next = append(next, individual)
	}
	return next, stats, nil
}

// weighted exposes a postprocessed selection weight in place of raw fitness.
type weighted struct {
	Individual
	weight float64
}

func (w weighted) Fitness() float64 {
	return w.weight
}
