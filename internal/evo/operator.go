package evo

import "math/rand"

// SelectionMethod picks one parent from a non-empty population.
type SelectionMethod interface {
	Name() string
	Select(rng *rand.Rand, population []Individual) (Individual, error)
}

// CrossoverMethod combines two equal-length parent chromosomes into one child.
type CrossoverMethod interface {
	Name() string
	Crossover(rng *rand.Rand, parentA, parentB Chromosome) (Chromosome, error)
}

// MutationMethod perturbs a chromosome in place.
type MutationMethod interface {
	Name() string
	Mutate(rng *rand.Rand, child Chromosome)
}
