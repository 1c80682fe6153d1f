package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"aviary/internal/render"
	"aviary/internal/scape"
	"aviary/pkg/aviary"
)

const (
	defaultStoreKind = "badger"
	defaultDBPath    = "aviary.db"
	runsDir          = "runs"
	exportsDir       = "exports"
)

var stdout io.Writer = os.Stdout

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "config":
		return runConfig(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "view":
		return runView(ctx, args[1:])
	case "snapshot":
		return runSnapshot(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type storeFlags struct {
	kind      *string
	path      *string
	logLevel  *string
	logFormat *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:      fs.String("store", defaultStoreKind, "store backend: memory|sqlite|badger"),
		path:      fs.String("db-path", defaultDBPath, "sqlite database file or badger directory"),
		logLevel:  fs.String("log-level", "info", "log level: debug|info|warn|error"),
		logFormat: fs.String("log-format", "text", "log format: text|json"),
	}
}

func (f storeFlags) client() (*aviary.Client, error) {
	logger, err := newLogger(os.Stderr, *f.logLevel, *f.logFormat)
	if err != nil {
		return nil, err
	}
	return aviary.New(aviary.Options{
		StoreKind:  *f.kind,
		DBPath:     *f.path,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
		Logger:     logger,
	})
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	store := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "initialized store=%s\n", *store.kind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	store := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "reset store=%s\n", *store.kind)
	return nil
}

func runConfig(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	overrides := addConfigFlags(fs)
	keys := fs.Bool("keys", false, "list every key with its value")
	get := fs.String("get", "", "print a single key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := overrides.resolve(fs)
	if err != nil {
		return err
	}

	switch {
	case *get != "":
		value, err := cfg.Get(*get)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, value)
	case *keys:
		for _, key := range scape.ConfigKeys() {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s = %s\n", key, value)
		}
		fmt.Fprintf(stdout, "chromosome_length = %d\n", cfg.ChromosomeLength())
	default:
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	store := addStoreFlags(fs)
	overrides := addConfigFlags(fs)
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 1, "rng seed")
	generations := fs.Int("gens", 10, "generation count")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *generations <= 0 {
		return errors.New("gens must be > 0")
	}

	cfg, err := overrides.resolve(fs)
	if err != nil {
		return err
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := aviary.RunRequest{
		RunID:       *runID,
		Seed:        *seed,
		Generations: *generations,
		Config:      &cfg,
	}
	if !*jsonOut {
		req.OnGeneration = func(stats aviary.Statistics) {
			fmt.Fprintln(stdout, stats)
		}
	}

	started := time.Now()
	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	steps := int64(*generations) * int64(cfg.SimGenerationLength)
	fmt.Fprintf(stdout, "run completed run_id=%s steps=%s best_fitness=%.2f elapsed=%s artifacts=%s\n",
		summary.RunID,
		humanize.Comma(steps),
		summary.BestFitness,
		time.Since(started).Round(time.Millisecond),
		summary.ArtifactsDir,
	)
	return nil
}

func runView(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	overrides := addConfigFlags(fs)
	seed := fs.Int64("seed", time.Now().UnixNano(), "rng seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := overrides.resolve(fs)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	viewer, err := render.NewViewer(screen, cfg, *seed)
	if err != nil {
		return err
	}
	return viewer.Run(ctx)
}

type snapshot struct {
	Stats scape.Statistics `json:"stats"`
	World scape.WorldView  `json:"world"`
}

func runSnapshot(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	overrides := addConfigFlags(fs)
	seed := fs.Int64("seed", 1, "rng seed")
	generations := fs.Int("gens", 0, "generations to train before the snapshot")
	steps := fs.Int("steps", 0, "extra steps after training")
	out := fs.String("out", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *generations < 0 || *steps < 0 {
		return errors.New("gens and steps must be >= 0")
	}

	cfg, err := overrides.resolve(fs)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(*seed))
	sim, err := scape.Random(cfg, rng)
	if err != nil {
		return err
	}
	for i := 0; i < *generations; i++ {
		if _, err := sim.Train(rng); err != nil {
			return err
		}
	}
	for i := 0; i < *steps; i++ {
		if _, _, err := sim.Step(rng); err != nil {
			return err
		}
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot{Stats: sim.Stats(), World: sim.World()})
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	store := addStoreFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, aviary.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}

	for _, r := range runs {
		created := r.CreatedAtUTC
		if ts, err := time.Parse(time.RFC3339Nano, r.CreatedAtUTC); err == nil {
			created = humanize.Time(ts)
		}
		fmt.Fprintf(stdout, "run_id=%s created=%q seed=%d animals=%d generations=%s best_fitness=%.2f\n",
			r.RunID, created, r.Seed, r.PopulationSize, humanize.Comma(int64(r.Generations)), r.BestFitness)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, aviary.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	if len(history.Generations) == 0 {
		fmt.Fprintln(stdout, "no fitness history")
		return nil
	}

	for _, g := range history.Generations {
		fmt.Fprintf(stdout, "generation=%d min=%.2f avg=%.2f max=%.2f std_dev=%.2f\n", g.Generation, g.Min, g.Avg, g.Max, g.StdDev)
	}
	s := history.Summary
	fmt.Fprintf(stdout, "run_id=%s generations=%s best_max=%s mean_max=%s improvement=%s\n",
		history.RunID,
		humanize.Comma(int64(s.Generations)),
		humanize.FtoaWithDigits(s.BestMax, 2),
		humanize.FtoaWithDigits(s.MeanMax, 2),
		humanize.FtoaWithDigits(s.Improvement, 2),
	)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := store.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, aviary.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func usageError(msg string) error {
	commands := []string{"init", "reset", "config", "run", "view", "snapshot", "runs", "fitness", "export"}
	return fmt.Errorf("%s\nusage: aviaryctl <%s> [flags]", msg, strings.Join(commands, "|"))
}
