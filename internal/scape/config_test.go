package scape

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.WorldAnimals != 40 || cfg.WorldFoods != 60 || cfg.EyeCells != 9 || cfg.BrainNeurons != 9 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SimGenerationLength != 2500 || cfg.GAMutChance != 0.01 || cfg.GAMutCoeff != 0.3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if got := cfg.ChromosomeLength(); got != 110 {
		t.Fatalf("expected chromosome length 110, got %d", got)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"no animals":       func(c *Config) { c.WorldAnimals = 0 },
		"no foods":         func(c *Config) { c.WorldFoods = 0 },
		"negative foods":   func(c *Config) { c.WorldFoods = -1 },
		"no eye cells":     func(c *Config) { c.EyeCells = 0 },
		"no neurons":       func(c *Config) { c.BrainNeurons = 0 },
		"zero generation":  func(c *Config) { c.SimGenerationLength = 0 },
		"speed range":      func(c *Config) { c.SimSpeedMin = 0.01 },
		"edges":            func(c *Config) { c.WorldEdges = "bounce" },
		"chance":           func(c *Config) { c.GAMutChance = 1.5 },
		"selection":        func(c *Config) { c.GASelection = "rank" },
		"crossover":        func(c *Config) { c.GACrossover = "blend" },
		"activation":       func(c *Config) { c.BrainActivation = "softmax" },
		"fov angle":        func(c *Config) { c.EyeFOVAngle = 0 },
		"world size":       func(c *Config) { c.WorldSize = 0 },
		"tournament size":  func(c *Config) { c.GASelection = "tournament"; c.GATournamentSize = 0 },
		"negative coeff":   func(c *Config) { c.GAMutCoeff = -1 },
		"negative accel":   func(c *Config) { c.SimSpeedAccel = -0.1 },
		"negative food sz": func(c *Config) { c.FoodSize = -0.1 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestConfigValidateNamesFirstNonFiniteField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldSize = math.NaN()
	cfg.GAMutCoeff = math.Inf(1)
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "world_size must be finite") {
			t.Fatalf("attempt %d: expected world_size to be reported, got %v", i, err)
		}
	}
}

func TestConfigValidateListsActivations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BrainActivation = "softmax"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "leaky_relu") {
		t.Fatalf("expected known activations in error, got %v", err)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	cfg := DefaultConfig()
	for key, value := range map[string]string{
		"world_animals":         "12",
		"food_size":             "0.02",
		"ga_reverse":            "true",
		"world_edges":           "clamp",
		"sim_generation_length": "100",
	} {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if got != value {
			t.Fatalf("get %s: expected %q, got %q", key, value, got)
		}
	}
	if cfg.WorldAnimals != 12 || !cfg.GAReverse || cfg.WorldEdges != EdgesClamp {
		t.Fatalf("set did not update config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := cfg.Set("unknown", "1"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	if err := cfg.Set("world_animals", "many"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(ConfigKeys()) != 21 {
		t.Fatalf("expected 21 config keys, got %d", len(ConfigKeys()))
	}
}

func TestLoadConfigOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aviary.yaml")
	data := []byte("world_animals: 7\nga_selection: tournament\nga_tournament_size: 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorldAnimals != 7 || cfg.GASelection != "tournament" || cfg.GATournamentSize != 2 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.WorldFoods != 60 || cfg.EyeCells != 9 {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadConfigRoundTripYAML(t *testing.T) {
	want := DefaultConfig()
	want.GAReverse = true
	want.WorldFoods = 3
	data, err := want.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	path := filepath.Join(t.TempDir(), "aviary.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aviary.json")
	if err := os.WriteFile(path, []byte(`{"world_animals": 0}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
