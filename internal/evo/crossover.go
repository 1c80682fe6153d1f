package evo

import (
	"fmt"
	"math/rand"
)

// UniformCrossover takes every gene from either parent with equal probability.
type UniformCrossover struct{}

func (UniformCrossover) Name() string {
	return "uniform"
}

func (UniformCrossover) Crossover(rng *rand.Rand, parentA, parentB Chromosome) (Chromosome, error) {
	if err := checkParents(rng, parentA, parentB); err != nil {
		return nil, err
	}
	child := make(Chromosome, len(parentA))
	for i := range parentA {
		if rng.Float64() < 0.5 {
			child[i] = parentA[i]
		} else {
			child[i] = parentB[i]
		}
	}
	return child, nil
}

// SinglePointCrossover copies parentA up to a random cut and parentB after it.
type SinglePointCrossover struct{}

func (SinglePointCrossover) Name() string {
	return "single_point"
}

func (SinglePointCrossover) Crossover(rng *rand.Rand, parentA, parentB Chromosome) (Chromosome, error) {
	if err := checkParents(rng, parentA, parentB); err != nil {
		return nil, err
	}
	child := make(Chromosome, len(parentA))
	if len(child) == 0 {
		return child, nil
	}
	point := rng.Intn(len(parentA) + 1)
	copy(child[:point], parentA[:point])
	copy(child[point:], parentB[point:])
	return child, nil
}

func checkParents(rng *rand.Rand, parentA, parentB Chromosome) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if len(parentA) != len(parentB) {
		return fmt.Errorf("%w: %d != %d", ErrChromosomeLength, len(parentA), len(parentB))
	}
	return nil
}
