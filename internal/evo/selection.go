package evo

import (
	"fmt"
	"math"
	"math/rand"
)

// RouletteWheelSelection picks individuals with probability proportional to
// their fitness. A population whose fitness sums to zero is sampled uniformly.
type RouletteWheelSelection struct{}

func (RouletteWheelSelection) Name() string {
	return "roulette_wheel"
}

func (RouletteWheelSelection) Select(rng *rand.Rand, population []Individual) (Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	total := 0.0
	for i, individual := range population {
		fitness := individual.Fitness()
		if err := checkFitness(fitness); err != nil {
			return nil, fmt.Errorf("individual %d: %w", i, err)
		}
		total += fitness
	}
	if total == 0 {
		return population[rng.Intn(len(population))], nil
	}

	spin := rng.Float64() * total
	cumulative := 0.0
	for _, individual := range population {
		cumulative += individual.Fitness()
		if spin < cumulative {
			return individual, nil
		}
	}

	// Rounding can leave spin just above the final cumulative sum.
	for i := len(population) - 1; i >= 0; i-- {
		if population[i].Fitness() > 0 {
			return population[i], nil
		}
	}
	return population[len(population)-1], nil
}

// TournamentSelection samples Size individuals uniformly and keeps the fittest.
type TournamentSelection struct {
	Size int
}

func (TournamentSelection) Name() string {
	return "tournament"
}

func (s TournamentSelection) Select(rng *rand.Rand, population []Individual) (Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := population[rng.Intn(len(population))]
	if err := checkFitness(best.Fitness()); err != nil {
		return nil, err
	}
	for i := 1; i < size; i++ {
		candidate := population[rng.Intn(len(population))]
		if err := checkFitness(candidate.Fitness()); err != nil {
			return nil, err
		}
		if candidate.Fitness() > best.Fitness() {
			best = candidate
		}
	}
	return best, nil
}

func checkFitness(fitness float64) error {
	if fitness < 0 || math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidFitness, fitness)
	}
	return nil
}
