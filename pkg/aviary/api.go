package aviary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"aviary/internal/model"
	"aviary/internal/platform"
	"aviary/internal/scape"
	"aviary/internal/stats"
	"aviary/internal/storage"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "aviary.db"
)

type (
	Config           = scape.Config
	Statistics       = scape.Statistics
	WorldView        = scape.WorldView
	RunRecord        = model.RunRecord
	GenerationRecord = model.GenerationRecord
	FitnessSummary   = stats.RunSummary
)

var ErrInvalidConfig = scape.ErrInvalidConfig

func DefaultConfig() Config {
	return scape.DefaultConfig()
}

func LoadConfig(path string) (Config, error) {
	return scape.LoadConfig(path)
}

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
	Logger     *slog.Logger
}

type Client struct {
	store  storage.Store
	polis  *platform.Polis
	logger *slog.Logger

	runsDir    string
	exportsDir string
}

type RunRequest struct {
	RunID       string
	Seed        int64
	Generations int
	// Config defaults to DefaultConfig when nil.
	Config       *Config
	OnGeneration func(Statistics)
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Generations  []GenerationRecord
	BestFitness  float64
	Summary      FitnessSummary
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	PopulationSize int
	Generations    int
	BestFitness    float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type FitnessHistory struct {
	RunID       string
	Generations []GenerationRecord
	Summary     FitnessSummary
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		polis:      platform.NewPolis(platform.Config{Store: store, Logger: logger}),
		logger:     logger,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	c.polis.Stop()
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.polis.Init(ctx)
}

// Reset removes every stored run report.
func (c *Client) Reset(ctx context.Context) error {
	return c.polis.Reset(ctx)
}

// Run trains a fresh population headlessly, stores its reports and writes the
// run's artifacts under the runs directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Generations <= 0 {
		req.Generations = 1
	}
	cfg := DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := c.polis.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	result, err := c.polis.RunSimulation(ctx, platform.RunConfig{
		RunID:        req.RunID,
		Seed:         req.Seed,
		Generations:  req.Generations,
		Simulation:   cfg,
		OnGeneration: req.OnGeneration,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := c.writeArtifacts(result.Run, result.Generations)
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:        result.Run.ID,
		ArtifactsDir: filepath.Clean(runDir),
		Generations:  append([]GenerationRecord(nil), result.Generations...),
		BestFitness:  result.Run.BestFitness,
		Summary:      stats.Summarize(result.Generations),
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.polis.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.polis.Runs(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		entry := stats.NewRunIndexEntry(run)
		out = append(out, RunItem{
			RunID:          entry.RunID,
			CreatedAtUTC:   entry.CreatedAtUTC,
			Seed:           entry.Seed,
			PopulationSize: entry.PopulationSize,
			Generations:    entry.Generations,
			BestFitness:    entry.BestFitness,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) (FitnessHistory, error) {
	runID, err := resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return FitnessHistory{}, err
	}
	if req.Limit < 0 {
		return FitnessHistory{}, errors.New("limit must be >= 0")
	}
	if err := c.polis.Init(ctx); err != nil {
		return FitnessHistory{}, err
	}

	run, generations, err := c.polis.FitnessHistory(ctx, runID)
	if err != nil {
		return FitnessHistory{}, err
	}
	summary := stats.Summarize(generations)
	if req.Limit > 0 && len(generations) > req.Limit {
		generations = generations[:req.Limit]
	}
	return FitnessHistory{RunID: run.ID, Generations: generations, Summary: summary}, nil
}

// Export copies a run's artifacts to the exports directory, writing them from
// the store first if the run directory is missing.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	if err := c.polis.Init(ctx); err != nil {
		return ExportSummary{}, err
	}

	run, generations, err := c.polis.FitnessHistory(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if _, err := os.Stat(filepath.Join(c.runsDir, run.ID)); err != nil {
		if !os.IsNotExist(err) {
			return ExportSummary{}, err
		}
		if _, err := c.writeArtifacts(run, generations); err != nil {
			return ExportSummary{}, err
		}
	}

	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, run.ID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	c.logger.Info("run exported", "run_id", run.ID, "dir", exportedDir)
	return ExportSummary{RunID: run.ID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) writeArtifacts(run RunRecord, generations []GenerationRecord) (string, error) {
	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{Run: run, Generations: generations})
	if err != nil {
		return "", fmt.Errorf("write artifacts: %w", err)
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.NewRunIndexEntry(run)); err != nil {
		return "", fmt.Errorf("update run index: %w", err)
	}
	return runDir, nil
}

func resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}
