package evo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarises the fitness of one evaluated generation.
type Statistics struct {
	Size   int     `json:"size"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"std_dev"`
}

func NewStatistics(fitness []float64) (Statistics, error) {
	if len(fitness) == 0 {
		return Statistics{}, ErrEmptyPopulation
	}
	mean, variance := stat.PopMeanVariance(fitness, nil)
	return Statistics{
		Size:   len(fitness),
		Min:    floats.Min(fitness),
		Max:    floats.Max(fitness),
		Avg:    mean,
		StdDev: math.Sqrt(variance),
	}, nil
}

func (s Statistics) String() string {
	return fmt.Sprintf("min[%.2f] avg[%.2f] max[%.2f]", s.Min, s.Avg, s.Max)
}
