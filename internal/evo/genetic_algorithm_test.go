package evo

import (
	"errors"
	"math/rand"
	"testing"
)

func testFactory(_ *rand.Rand, chromosome Chromosome) (*testIndividual, error) {
	return &testIndividual{chromosome: chromosome}, nil
}

func newTestGA(t *testing.T, cfg Config) *GeneticAlgorithm[*testIndividual] {
	t.Helper()
	if cfg.Mutation == nil {
		cfg.Mutation = UniformPerturbation{Chance: 0.01, Coeff: 0.3}
	}
	ga, err := NewGeneticAlgorithm[*testIndividual](cfg)
	if err != nil {
		t.Fatalf("new genetic algorithm: %v", err)
	}
	return ga
}

func seededPopulation(rng *rand.Rand, size, genes int) []*testIndividual {
	population := make([]*testIndividual, size)
	for i := range population {
		chromosome := make(Chromosome, genes)
		for g := range chromosome {
			chromosome[g] = rng.Float64()*2 - 1
		}
		population[i] = &testIndividual{fitness: float64(rng.Intn(10)), chromosome: chromosome}
	}
	return population
}

func TestGeneticAlgorithmPreservesPopulationSize(t *testing.T) {
	ga := newTestGA(t, Config{})
	for size := 1; size <= 12; size++ {
		rng := rand.New(rand.NewSource(int64(size)))
		population := seededPopulation(rng, size, 6)

		next, _, err := ga.Evolve(rng, population, testFactory)
		if err != nil {
			t.Fatalf("size %d: evolve: %v", size, err)
		}
		if len(next) != size {
			t.Fatalf("size %d: got %d individuals", size, len(next))
		}
		for i, individual := range next {
			if individual.Chromosome().Len() != 6 {
				t.Fatalf("size %d: child %d has %d genes", size, i, individual.Chromosome().Len())
			}
		}
	}
}

func TestGeneticAlgorithmSingleIndividualZeroFitness(t *testing.T) {
	ga := newTestGA(t, Config{Mutation: UniformPerturbation{Chance: 0, Coeff: 1}})
	population := []*testIndividual{{fitness: 0, chromosome: Chromosome{1, 2, 3}}}

	next, stats, err := ga.Evolve(rand.New(rand.NewSource(1)), population, testFactory)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if len(next) != 1 {
		t.Fatalf("expected one child, got %d", len(next))
	}
	for i, gene := range next[0].Chromosome() {
		if gene != population[0].chromosome[i] {
			t.Fatalf("expected self-crossover clone, got %v", next[0].Chromosome())
		}
	}
	if stats.Min != 0 || stats.Avg != 0 || stats.Max != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestGeneticAlgorithmStatisticsDescribeInputPopulation(t *testing.T) {
	ga := newTestGA(t, Config{})
	population := []*testIndividual{
		{fitness: 1, chromosome: Chromosome{0}},
		{fitness: 2, chromosome: Chromosome{0}},
		{fitness: 6, chromosome: Chromosome{0}},
	}

	_, stats, err := ga.Evolve(rand.New(rand.NewSource(1)), population, testFactory)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if stats.Size != 3 || stats.Min != 1 || stats.Avg != 3 || stats.Max != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !(stats.Min <= stats.Avg && stats.Avg <= stats.Max) {
		t.Fatalf("expected min <= avg <= max: %+v", stats)
	}
}

func TestGeneticAlgorithmOnlyFitParentsBreed(t *testing.T) {
	ga := newTestGA(t, Config{Mutation: UniformPerturbation{Chance: 0, Coeff: 1}})
	population := []*testIndividual{
		{fitness: 0, chromosome: Chromosome{0, 0, 0}},
		{fitness: 0, chromosome: Chromosome{1, 1, 1}},
		{fitness: 5, chromosome: Chromosome{2, 2, 2}},
	}

	next, _, err := ga.Evolve(rand.New(rand.NewSource(9)), population, testFactory)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	for i, child := range next {
		for _, gene := range child.Chromosome() {
			if gene != 2 {
				t.Fatalf("child %d inherited from a zero-fitness parent: %v", i, child.Chromosome())
			}
		}
	}
}

func TestGeneticAlgorithmReversePostprocessorKeepsRawStatistics(t *testing.T) {
	ga := newTestGA(t, Config{
		Mutation:      UniformPerturbation{Chance: 0, Coeff: 1},
		Postprocessor: ReverseFitnessPostprocessor{},
	})
	population := []*testIndividual{
		{fitness: 5, chromosome: Chromosome{0, 0, 0}},
		{fitness: 0, chromosome: Chromosome{1, 1, 1}},
		{fitness: 0, chromosome: Chromosome{2, 2, 2}},
	}

	next, stats, err := ga.Evolve(rand.New(rand.NewSource(4)), population, testFactory)
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if stats.Max != 5 {
		t.Fatalf("expected raw max fitness 5, got %+v", stats)
	}
	for i, child := range next {
		for _, gene := range child.Chromosome() {
			if gene == 0 {
				t.Fatalf("child %d inherited from the fittest parent under reverse: %v", i, child.Chromosome())
			}
		}
	}
}

func TestGeneticAlgorithmDeterministic(t *testing.T) {
	run := func() ([]Chromosome, []Statistics) {
		rng := rand.New(rand.NewSource(42))
		population := seededPopulation(rng, 10, 9)
		ga := newTestGA(t, Config{Mutation: UniformPerturbation{Chance: 0.2, Coeff: 0.3}})

		history := make([]Statistics, 0, 5)
		for gen := 0; gen < 5; gen++ {
			next, stats, err := ga.Evolve(rng, population, testFactory)
			if err != nil {
				t.Fatalf("evolve: %v", err)
			}
			for i := range next {
				next[i].fitness = float64(i % 4)
			}
			population = next
			history = append(history, stats)
		}
		chromosomes := make([]Chromosome, len(population))
		for i := range population {
			chromosomes[i] = population[i].chromosome
		}
		return chromosomes, history
	}

	firstChromosomes, firstStats := run()
	secondChromosomes, secondStats := run()
	for i := range firstStats {
		if firstStats[i] != secondStats[i] {
			t.Fatalf("generation %d stats differ: %+v vs %+v", i, firstStats[i], secondStats[i])
		}
	}
	for i := range firstChromosomes {
		for g := range firstChromosomes[i] {
			if firstChromosomes[i][g] != secondChromosomes[i][g] {
				t.Fatalf("individual %d gene %d differs", i, g)
			}
		}
	}
}

func TestGeneticAlgorithmRejectsInvalidPopulations(t *testing.T) {
	ga := newTestGA(t, Config{})
	rng := rand.New(rand.NewSource(1))

	if _, _, err := ga.Evolve(rng, nil, testFactory); !errors.Is(err, ErrEmptyPopulation) {
		t.Fatalf("expected ErrEmptyPopulation, got %v", err)
	}

	negative := []*testIndividual{{fitness: 1, chromosome: Chromosome{0}}, {fitness: -1, chromosome: Chromosome{0}}}
	next, _, err := ga.Evolve(rng, negative, testFactory)
	if !errors.Is(err, ErrInvalidFitness) {
		t.Fatalf("expected ErrInvalidFitness, got %v", err)
	}
	if next != nil {
		t.Fatal("expected no population on failure")
	}

	mismatched := []*testIndividual{{fitness: 1, chromosome: Chromosome{0, 1}}, {fitness: 1, chromosome: Chromosome{0}}}
	clashed := false
	for seed := int64(1); seed < 50 && !clashed; seed++ {
		_, _, err = ga.Evolve(rand.New(rand.NewSource(seed)), mismatched, testFactory)
		clashed = errors.Is(err, ErrChromosomeLength)
	}
	if !clashed {
		t.Fatalf("expected ErrChromosomeLength, got %v", err)
	}
}

func TestGeneticAlgorithmFactoryErrorStopsEvolution(t *testing.T) {
	ga := newTestGA(t, Config{})
	failing := func(*rand.Rand, Chromosome) (*testIndividual, error) {
		return nil, errors.New("boom")
	}
	population := []*testIndividual{{fitness: 1, chromosome: Chromosome{0}}}

	next, _, err := ga.Evolve(rand.New(rand.NewSource(1)), population, failing)
	if err == nil || next != nil {
		t.Fatalf("expected factory failure, got next=%v err=%v", next, err)
	}
}

func TestNewGeneticAlgorithmRequiresMutation(t *testing.T) {
	if _, err := NewGeneticAlgorithm[*testIndividual](Config{}); err == nil {
		t.Fatal("expected missing mutation error")
	}
}
