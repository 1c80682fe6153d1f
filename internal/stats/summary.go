package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"aviary/internal/model"
)

// RunSummary condenses a run's per-generation maxima.
type RunSummary struct {
	Generations int     `json:"generations"`
	InitialMax  float64 `json:"initial_max"`
	FinalMax    float64 `json:"final_max"`
	BestMax     float64 `json:"best_max"`
	MeanMax     float64 `json:"mean_max"`
	StdMax      float64 `json:"std_max"`
	FinalAvg    float64 `json:"final_avg"`
	Improvement float64 `json:"improvement"`
}

func Summarize(generations []model.GenerationRecord) RunSummary {
	if len(generations) == 0 {
		return RunSummary{}
	}
	maxima := make([]float64, len(generations))
	for i, g := range generations {
		maxima[i] = g.Max
	}
	first, last := generations[0], generations[len(generations)-1]
	mean, std := stat.PopMeanStdDev(maxima, nil)
	return RunSummary{
		Generations: len(generations),
		InitialMax:  first.Max,
		FinalMax:    last.Max,
		BestMax:     floats.Max(maxima),
		MeanMax:     mean,
		StdMax:      std,
		FinalAvg:    last.Avg,
		Improvement: last.Max - first.Max,
	}
}
