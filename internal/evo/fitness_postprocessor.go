package evo

// FitnessPostprocessor reshapes raw fitness into selection weights. It never
// changes the statistics reported for a generation.
type FitnessPostprocessor interface {
	Name() string
	Process(fitness []float64) []float64
}

type NoopFitnessPostprocessor struct{}

func (NoopFitnessPostprocessor) Name() string {
	return "none"
}

func (NoopFitnessPostprocessor) Process(fitness []float64) []float64 {
	return append([]float64(nil), fitness...)
}

// ReverseFitnessPostprocessor ranks the weakest individuals highest by
// weighting each with max-fitness. Evolution then favours avoiding food.
type ReverseFitnessPostprocessor struct{}

func (ReverseFitnessPostprocessor) Name() string {
	return "reverse"
}

func (ReverseFitnessPostprocessor) Process(fitness []float64) []float64 {
	out := make([]float64, len(fitness))
	if len(fitness) == 0 {
		return out
	}
	max := fitness[0]
	for _, value := range fitness[1:] {
		if value > max {
			max = value
		}
	}
	for i, value := range fitness {
		out[i] = max - value
	}
	return out
}
