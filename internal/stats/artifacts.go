package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"aviary/internal/model"
)

const (
	runIndexFile    = "run_index.json"
	configFile      = "config.json"
	generationsCSV  = "generations.csv"
	generationsXLSX = "generations.xlsx"
)

var generationsHeader = []string{"generation", "min", "avg", "max", "std_dev"}

type RunArtifacts struct {
	Run         model.RunRecord
	Generations []model.GenerationRecord
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	BestFitness    float64 `json:"best_fitness"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

func NewRunIndexEntry(run model.RunRecord) RunIndexEntry {
	return RunIndexEntry{
		RunID:          run.ID,
		PopulationSize: run.PopulationSize,
		Generations:    run.Generations,
		Seed:           run.Seed,
		BestFitness:    run.BestFitness,
		CreatedAtUTC:   run.CreatedAtUTC.UTC().Format(time.RFC3339Nano),
	}
}

// WriteRunArtifacts writes config.json, generations.csv and
// generations.xlsx under baseDir/<run id> and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	runID := strings.TrimSpace(artifacts.Run.ID)
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Run); err != nil {
		return "", err
	}
	if err := WriteGenerationsCSV(filepath.Join(runDir, generationsCSV), artifacts.Generations); err != nil {
		return "", err
	}
	if err := WriteGenerationsXLSX(filepath.Join(runDir, generationsXLSX), artifacts.Generations); err != nil {
		return "", err
	}
	return runDir, nil
}

func ReadRunConfig(baseDir, runID string) (model.RunRecord, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, false, err
	}
	return run, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first. Entries with equal timestamps
// keep the later-appended one first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func WriteGenerationsCSV(path string, generations []model.GenerationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(generationsHeader); err != nil {
		return err
	}
	for _, g := range generations {
		if err := writer.Write([]string{
			strconv.Itoa(g.Generation),
			formatFloat(g.Min),
			formatFloat(g.Avg),
			formatFloat(g.Max),
			formatFloat(g.StdDev),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadGenerationsCSV(path string) ([]model.GenerationRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.GenerationRecord{}, nil
		}
		return nil, err
	}
	if len(header) < len(generationsHeader) {
		return nil, fmt.Errorf("generations header must have %d columns, got %d", len(generationsHeader), len(header))
	}

	generations := make([]model.GenerationRecord, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		g, err := parseGenerationRow(record)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, nil
}

func parseGenerationRow(record []string) (model.GenerationRecord, error) {
	if len(record) < len(generationsHeader) {
		return model.GenerationRecord{}, fmt.Errorf("generations row must have %d columns, got %d", len(generationsHeader), len(record))
	}
	generation, err := strconv.Atoi(record[0])
	if err != nil {
		return model.GenerationRecord{}, err
	}
	values := make([]float64, 4)
	for i := range values {
		if values[i], err = strconv.ParseFloat(record[i+1], 64); err != nil {
			return model.GenerationRecord{}, err
		}
	}
	return model.GenerationRecord{
		Generation: generation,
		Min:        values[0],
		Avg:        values[1],
		Max:        values[2],
		StdDev:     values[3],
	}, nil
}

// ExportRunArtifacts copies a written run directory to outDir/<run id>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{configFile, generationsCSV, generationsXLSX} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
