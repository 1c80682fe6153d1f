package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one headless training run. Populations themselves are
// never persisted, only the reports they produced.
type RunRecord struct {
	VersionedRecord
	ID               string          `json:"id"`
	CreatedAtUTC     time.Time       `json:"created_at_utc"`
	Seed             int64           `json:"seed"`
	Generations      int             `json:"generations"`
	PopulationSize   int             `json:"population_size"`
	ChromosomeLength int             `json:"chromosome_length"`
	BestFitness      float64         `json:"best_fitness"`
	Config           json.RawMessage `json:"config"`
}

// GenerationRecord is the fitness summary of one finished generation.
type GenerationRecord struct {
	VersionedRecord
	Generation int     `json:"generation"`
	Min        float64 `json:"min"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
	StdDev     float64 `json:"std_dev"`
}
