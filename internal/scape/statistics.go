package scape

import (
	"fmt"

	"aviary/internal/evo"
)

// Statistics is the progress of a simulation. The fitness fields describe the
// most recently finished generation and are nil until one has finished.
type Statistics struct {
	Age              int      `json:"age"`
	GenerationLength int      `json:"generation_length"`
	Generation       int      `json:"generation"`
	MinFitness       *float64 `json:"min_fitness,omitempty"`
	AvgFitness       *float64 `json:"avg_fitness,omitempty"`
	MaxFitness       *float64 `json:"max_fitness,omitempty"`
	StdDevFitness    *float64 `json:"std_dev_fitness,omitempty"`
}

func newStatistics(age, generationLength, generation int, fitness *evo.Statistics) Statistics {
	stats := Statistics{Age: age, GenerationLength: generationLength, Generation: generation}
	if fitness != nil {
		minFitness, avgFitness, maxFitness, stdDev := fitness.Min, fitness.Avg, fitness.Max, fitness.StdDev
		stats.MinFitness = &minFitness
		stats.AvgFitness = &avgFitness
		stats.MaxFitness = &maxFitness
		stats.StdDevFitness = &stdDev
	}
	return stats
}

func (s Statistics) HasFitness() bool {
	return s.MinFitness != nil && s.AvgFitness != nil && s.MaxFitness != nil
}

func (s Statistics) String() string {
	if !s.HasFitness() {
		return fmt.Sprintf("generation %d: age %d/%d", s.Generation, s.Age, s.GenerationLength)
	}
	return fmt.Sprintf("generation %d: min[%.2f] avg[%.2f] max[%.2f]", s.Generation, *s.MinFitness, *s.AvgFitness, *s.MaxFitness)
}
