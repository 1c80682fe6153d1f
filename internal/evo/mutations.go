package evo

import "math/rand"

// UniformPerturbation adds a value drawn uniformly from [-Coeff, Coeff] to each
// gene with probability Chance. Resulting genes are not clamped.
type UniformPerturbation struct {
	Chance float64
	Coeff  float64
}

func (UniformPerturbation) Name() string {
	return "uniform_perturbation"
}

func (m UniformPerturbation) Mutate(rng *rand.Rand, child Chromosome) {
	for i := range child {
		sign := 1.0
		if rng.Float64() < 0.5 {
			sign = -1.0
		}
		if rng.Float64() < m.Chance {
			child[i] += sign * m.Coeff * rng.Float64()
		}
	}
}
