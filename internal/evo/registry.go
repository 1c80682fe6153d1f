package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrOperatorExists   = errors.New("operator already registered")
	ErrOperatorNotFound = errors.New("operator not found")
)

// Params carries the tunables operator factories may need.
type Params struct {
	TournamentSize int
	MutationChance float64
	MutationCoeff  float64
}

type registry[T any] struct {
	kind string
	mu   sync.RWMutex
	m    map[string]func(Params) T
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, m: make(map[string]func(Params) T)}
}

func (r *registry[T]) register(name string, factory func(Params) T) error {
	if name == "" {
		return fmt.Errorf("%s name is required", r.kind)
	}
	if factory == nil {
		return fmt.Errorf("%s factory is required", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[name]; exists {
		return fmt.Errorf("%w: %s %s", ErrOperatorExists, r.kind, name)
	}
	r.m[name] = factory
	return nil
}

func (r *registry[T]) resolve(name string, params Params) (T, error) {
	r.mu.RLock()
	factory, ok := r.m[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrOperatorNotFound, r.kind, name)
	}
	return factory(params), nil
}

func (r *registry[T]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry[T]) reset() {
	r.mu.Lock()
	r.m = make(map[string]func(Params) T)
	r.mu.Unlock()
}

var (
	selections     = newRegistry[SelectionMethod]("selection")
	crossovers     = newRegistry[CrossoverMethod]("crossover")
	mutations      = newRegistry[MutationMethod]("mutation")
	postprocessors = newRegistry[FitnessPostprocessor]("postprocessor")
)

func init() {
	initializeBuiltInOperators()
}

func initializeBuiltInOperators() {
	mustRegister(selections.register("roulette_wheel", func(Params) SelectionMethod { return RouletteWheelSelection{} }))
	mustRegister(selections.register("tournament", func(p Params) SelectionMethod { return TournamentSelection{Size: p.TournamentSize} }))
	mustRegister(crossovers.register("uniform", func(Params) CrossoverMethod { return UniformCrossover{} }))
	mustRegister(crossovers.register("single_point", func(Params) CrossoverMethod { return SinglePointCrossover{} }))
	mustRegister(mutations.register("uniform_perturbation", func(p Params) MutationMethod {
		return UniformPerturbation{Chance: p.MutationChance, Coeff: p.MutationCoeff}
	}))
	mustRegister(postprocessors.register("none", func(Params) FitnessPostprocessor { return NoopFitnessPostprocessor{} }))
	mustRegister(postprocessors.register("reverse", func(Params) FitnessPostprocessor { return ReverseFitnessPostprocessor{} }))
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func RegisterSelection(name string, factory func(Params) SelectionMethod) error {
	return selections.register(name, factory)
}

func RegisterCrossover(name string, factory func(Params) CrossoverMethod) error {
	return crossovers.register(name, factory)
}

func RegisterMutation(name string, factory func(Params) MutationMethod) error {
	return mutations.register(name, factory)
}

func RegisterPostprocessor(name string, factory func(Params) FitnessPostprocessor) error {
	return postprocessors.register(name, factory)
}

func ResolveSelection(name string, params Params) (SelectionMethod, error) {
	return selections.resolve(name, params)
}

func ResolveCrossover(name string, params Params) (CrossoverMethod, error) {
	return crossovers.resolve(name, params)
}

func ResolveMutation(name string, params Params) (MutationMethod, error) {
	return mutations.resolve(name, params)
}

func ResolvePostprocessor(name string, params Params) (FitnessPostprocessor, error) {
	return postprocessors.resolve(name, params)
}

func ListSelections() []string {
	return selections.list()
}

func ListCrossovers() []string {
	return crossovers.list()
}

func ListMutations() []string {
	return mutations.list()
}

func ListPostprocessors() []string {
	return postprocessors.list()
}

// ResolveConfig builds a GeneticAlgorithm config from operator names.
func ResolveConfig(selection, crossover, mutation, postprocessor string, params Params) (Config, error) {
	var (
		cfg Config
		err error
	)
	if cfg.Selection, err = ResolveSelection(selection, params); err != nil {
		return Config{}, err
	}
	if cfg.Crossover, err = ResolveCrossover(crossover, params); err != nil {
		return Config{}, err
	}
	if cfg.Mutation, err = ResolveMutation(mutation, params); err != nil {
		return Config{}, err
	}
	if cfg.Postprocessor, err = ResolvePostprocessor(postprocessor, params); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resetOperatorRegistryForTests() {
	selections.reset()
	crossovers.reset()
	mutations.reset()
	postprocessors.reset()
	initializeBuiltInOperators()
}
