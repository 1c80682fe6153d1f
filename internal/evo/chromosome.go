package evo

import (
	"errors"
	"math/rand"
)

var (
	ErrEmptyPopulation  = errors.New("population must not be empty")
	ErrChromosomeLength = errors.New("chromosome length mismatch")
	ErrInvalidFitness   = errors.New("fitness must be finite and >= 0")
)

// Chromosome is the flattened, fixed-length parameter vector of one individual.
type Chromosome []float64

func (c Chromosome) Len() int {
	return len(c)
}

func (c Chromosome) Clone() Chromosome {
	return append(Chromosome(nil), c...)
}

// Individual is anything the genetic algorithm can score and recombine.
type Individual interface {
	Fitness() float64
	Chromosome() Chromosome
}

// Factory rebuilds an individual from a child chromosome. The rng covers any
// state the chromosome does not carry (position, heading, ...).
type Factory[I Individual] func(rng *rand.Rand, chromosome Chromosome) (I, error)
