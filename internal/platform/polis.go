package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aviary/internal/model"
	"aviary/internal/scape"
	"aviary/internal/storage"
)

var (
	ErrNotStarted  = errors.New("polis is not initialized")
	ErrRunActive   = errors.New("run already active")
	ErrRunNotFound = errors.New("run not found")
)

// contextCheckInterval is how many steps run between cancellation checks.
const contextCheckInterval = 256

type Config struct {
	Store  storage.Store
	Logger *slog.Logger
	// Now overrides the clock used for run timestamps.
	Now func() time.Time
}

type RunConfig struct {
	RunID       string
	Seed        int64
	Generations int
	Simulation  scape.Config
	// OnGeneration, if set, is called after every finished generation.
	OnGeneration func(scape.Statistics)
}

type RunResult struct {
	Run         model.RunRecord
	Generations []model.GenerationRecord
}

// Polis owns a store and drives headless training runs against it.
type Polis struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	started bool
	runs    map[string]context.CancelFunc
}

func NewPolis(cfg Config) *Polis {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Polis{
		store:  cfg.Store,
		logger: logger,
		now:    now,
		runs:   make(map[string]context.CancelFunc),
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	p.logger.Debug("polis started")
	return nil
}

// Reset stops active runs and clears every stored report.
func (p *Polis) Reset(ctx context.Context) error {
	p.Stop()
	if err := p.Init(ctx); err != nil {
		return err
	}
	if err := p.store.Reset(ctx); err != nil {
		return err
	}
	p.logger.Info("store reset")
	return nil
}

// Stop cancels every active run.
func (p *Polis) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.runs {
		cancel()
	}
	p.runs = make(map[string]context.CancelFunc)
	p.started = false
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Polis) StopRun(runID string) error {
	p.mu.RLock()
	cancel, ok := p.runs[runID]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	cancel()
	return nil
}

// RunSimulation trains a fresh simulation for cfg.Generations generations
// and persists one generation record per finished generation. A cancelled
// run keeps the generations it finished and returns the context error.
func (p *Polis) RunSimulation(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if cfg.Generations <= 0 {
		return RunResult{}, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if !p.Started() {
		return RunResult{}, ErrNotStarted
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sim, err := scape.Random(cfg.Simulation, rng)
	if err != nil {
		return RunResult{}, err
	}
	rawConfig, err := json.Marshal(cfg.Simulation)
	if err != nil {
		return RunResult{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := p.registerRun(cfg.RunID, cancel); err != nil {
		return RunResult{}, err
	}
	defer p.unregisterRun(cfg.RunID)

	result := RunResult{
		Run: model.RunRecord{
			VersionedRecord:  storage.CurrentVersion(),
			ID:               cfg.RunID,
			CreatedAtUTC:     p.now().UTC(),
			Seed:             cfg.Seed,
			PopulationSize:   cfg.Simulation.WorldAnimals,
			ChromosomeLength: cfg.Simulation.ChromosomeLength(),
			Config:           rawConfig,
		},
		Generations: make([]model.GenerationRecord, 0, cfg.Generations),
	}
	if err := p.store.SaveRun(ctx, result.Run); err != nil {
		return RunResult{}, err
	}

	logger := p.logger.With("run_id", cfg.RunID)
	logger.Info("run started",
		"seed", cfg.Seed,
		"generations", cfg.Generations,
		"animals", cfg.Simulation.WorldAnimals,
		"generation_length", cfg.Simulation.SimGenerationLength,
	)
	started := time.Now()

	for len(result.Generations) < cfg.Generations {
		stats, err := trainGeneration(runCtx, sim, rng)
		if err != nil {
			logger.Warn("run interrupted", "generations", len(result.Generations), "err", err)
			return result, err
		}

		record := generationRecord(stats)
		result.Generations = append(result.Generations, record)
		result.Run.Generations = len(result.Generations)
		if len(result.Generations) == 1 || record.Max > result.Run.BestFitness {
			result.Run.BestFitness = record.Max
		}
		if err := p.persist(ctx, result); err != nil {
			return result, err
		}

		logger.Debug("generation finished",
			"generation", record.Generation,
			"min", record.Min,
			"avg", record.Avg,
			"max", record.Max,
		)
		if cfg.OnGeneration != nil {
			cfg.OnGeneration(stats)
		}
	}

	logger.Info("run finished",
		"generations", result.Run.Generations,
		"best_fitness", result.Run.BestFitness,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return result, nil
}

// Runs lists stored runs, newest first. limit <= 0 returns all of them.
func (p *Polis) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if !p.Started() {
		return nil, ErrNotStarted
	}
	runs, err := p.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Run loads one run; an empty id selects the most recent run.
func (p *Polis) Run(ctx context.Context, runID string) (model.RunRecord, error) {
	if !p.Started() {
		return model.RunRecord{}, ErrNotStarted
	}
	if runID == "" {
		runs, err := p.store.ListRuns(ctx)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(runs) == 0 {
			return model.RunRecord{}, fmt.Errorf("%w: no runs stored", ErrRunNotFound)
		}
		return runs[0], nil
	}
	run, ok, err := p.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, nil
}

// FitnessHistory returns the generation records of a run; an empty id
// selects the most recent run.
func (p *Polis) FitnessHistory(ctx context.Context, runID string) (model.RunRecord, []model.GenerationRecord, error) {
	run, err := p.Run(ctx, runID)
	if err != nil {
		return model.RunRecord{}, nil, err
	}
	generations, ok, err := p.store.GetGenerations(ctx, run.ID)
	if err != nil {
		return model.RunRecord{}, nil, err
	}
	if !ok {
		generations = []model.GenerationRecord{}
	}
	return run, generations, nil
}

func trainGeneration(ctx context.Context, sim *scape.Simulation, rng *rand.Rand) (scape.Statistics, error) {
	for step := 0; ; step++ {
		if step%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return scape.Statistics{}, err
			}
		}
		stats, done, err := sim.Step(rng)
		if err != nil {
			return scape.Statistics{}, err
		}
		if done {
			return stats, nil
		}
	}
}

func generationRecord(stats scape.Statistics) model.GenerationRecord {
	record := model.GenerationRecord{
		VersionedRecord: storage.CurrentVersion(),
		Generation:      stats.Generation,
	}
	if stats.HasFitness() {
		record.Min = *stats.MinFitness
		record.Avg = *stats.AvgFitness
		record.Max = *stats.MaxFitness
	}
	if stats.StdDevFitness != nil {
		record.StdDev = *stats.StdDevFitness
	}
	return record
}

func (p *Polis) persist(ctx context.Context, result RunResult) error {
	if err := p.store.SaveGenerations(ctx, result.Run.ID, result.Generations); err != nil {
		return fmt.Errorf("save generations: %w", err)
	}
	if err := p.store.SaveRun(ctx, result.Run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (p *Polis) registerRun(runID string, cancel context.CancelFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	if _, exists := p.runs[runID]; exists {
		return fmt.Errorf("%w: %s", ErrRunActive, runID)
	}
	p.runs[runID] = cancel
	return nil
}

func (p *Polis) unregisterRun(runID string) {
	p.mu.Lock()
	delete(p.runs, runID)
	p.mu.Unlock()
}
