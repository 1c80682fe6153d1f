package scape

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"aviary/internal/agent"
	"aviary/internal/evo"
	aviaryio "aviary/internal/io"
	"aviary/internal/nn"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

const (
	EdgesWrap  = "wrap"
	EdgesClamp = "clamp"
)

// Config holds every tunable of a simulation. It is treated as immutable once
// a simulation has been built from it.
type Config struct {
	WorldSize    float64 `yaml:"world_size" json:"world_size"`
	WorldEdges   string  `yaml:"world_edges" json:"world_edges"`
	WorldAnimals int     `yaml:"world_animals" json:"world_animals"`
	WorldFoods   int     `yaml:"world_foods" json:"world_foods"`

	FoodSize float64 `yaml:"food_size" json:"food_size"`

	EyeFOVRange float64 `yaml:"eye_fov_range" json:"eye_fov_range"`
	EyeFOVAngle float64 `yaml:"eye_fov_angle" json:"eye_fov_angle"`
	EyeCells    int     `yaml:"eye_cells" json:"eye_cells"`

	BrainNeurons    int    `yaml:"brain_neurons" json:"brain_neurons"`
	BrainActivation string `yaml:"brain_activation" json:"brain_activation"`

	SimSpeedMin         float64 `yaml:"sim_speed_min" json:"sim_speed_min"`
	SimSpeedMax         float64 `yaml:"sim_speed_max" json:"sim_speed_max"`
	SimSpeedAccel       float64 `yaml:"sim_speed_accel" json:"sim_speed_accel"`
	SimRotationAccel    float64 `yaml:"sim_rotation_accel" json:"sim_rotation_accel"`
	SimGenerationLength int     `yaml:"sim_generation_length" json:"sim_generation_length"`

	GASelection      string  `yaml:"ga_selection" json:"ga_selection"`
	GATournamentSize int     `yaml:"ga_tournament_size" json:"ga_tournament_size"`
	GACrossover      string  `yaml:"ga_crossover" json:"ga_crossover"`
	GAMutChance      float64 `yaml:"ga_mut_chance" json:"ga_mut_chance"`
	GAMutCoeff       float64 `yaml:"ga_mut_coeff" json:"ga_mut_coeff"`
	GAReverse        bool    `yaml:"ga_reverse" json:"ga_reverse"`
}

func DefaultConfig() Config {
	return Config{
		WorldSize:    1.0,
		WorldEdges:   EdgesWrap,
		WorldAnimals: 40,
		WorldFoods:   60,

		FoodSize: 0.01,

		EyeFOVRange: 0.25,
		EyeFOVAngle: math.Pi + math.Pi/4,
		EyeCells:    9,

		BrainNeurons:    9,
		BrainActivation: "relu",

		SimSpeedMin:         0.001,
		SimSpeedMax:         0.005,
		SimSpeedAccel:       0.2,
		SimRotationAccel:    math.Pi / 2,
		SimGenerationLength: 2500,

		GASelection:      "roulette_wheel",
		GATournamentSize: 3,
		GACrossover:      "uniform",
		GAMutChance:      0.01,
		GAMutCoeff:       0.3,
	}
}

// LoadConfig reads a YAML (or JSON) file over the defaults. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// YAML renders the config in the same shape LoadConfig reads.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	for _, field := range []struct {
		name  string
		value float64
	}{
		{"world_size", c.WorldSize},
		{"food_size", c.FoodSize},
		{"eye_fov_range", c.EyeFOVRange},
		{"eye_fov_angle", c.EyeFOVAngle},
		{"sim_speed_min", c.SimSpeedMin},
		{"sim_speed_max", c.SimSpeedMax},
		{"sim_speed_accel", c.SimSpeedAccel},
		{"sim_rotation_accel", c.SimRotationAccel},
		{"ga_mut_chance", c.GAMutChance},
		{"ga_mut_coeff", c.GAMutCoeff},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return invalid("%s must be finite", field.name)
		}
	}

	switch {
	case c.WorldSize <= 0:
		return invalid("world_size must be > 0, got %v", c.WorldSize)
	case c.WorldEdges != EdgesWrap && c.WorldEdges != EdgesClamp:
		return invalid("world_edges must be %q or %q, got %q", EdgesWrap, EdgesClamp, c.WorldEdges)
	case c.WorldAnimals <= 0:
		return invalid("world_animals must be > 0, got %d", c.WorldAnimals)
	case c.WorldFoods <= 0:
		return invalid("world_foods must be > 0, got %d", c.WorldFoods)
	case c.FoodSize < 0:
		return invalid("food_size must be >= 0, got %v", c.FoodSize)
	case c.EyeCells <= 0:
		return invalid("eye_cells must be > 0, got %d", c.EyeCells)
	case c.BrainNeurons <= 0:
		return invalid("brain_neurons must be > 0, got %d", c.BrainNeurons)
	case c.SimSpeedMin < 0 || c.SimSpeedMax < c.SimSpeedMin:
		return invalid("sim speed range [%v, %v] is invalid", c.SimSpeedMin, c.SimSpeedMax)
	case c.SimSpeedAccel < 0:
		return invalid("sim_speed_accel must be >= 0, got %v", c.SimSpeedAccel)
	case c.SimRotationAccel < 0:
		return invalid("sim_rotation_accel must be >= 0, got %v", c.SimRotationAccel)
	case c.SimGenerationLength <= 0:
		return invalid("sim_generation_length must be > 0, got %d", c.SimGenerationLength)
	case c.GAMutChance < 0 || c.GAMutChance > 1:
		return invalid("ga_mut_chance must be in [0, 1], got %v", c.GAMutChance)
	case c.GAMutCoeff < 0:
		return invalid("ga_mut_coeff must be >= 0, got %v", c.GAMutCoeff)
	case c.GASelection == "tournament" && c.GATournamentSize <= 0:
		return invalid("ga_tournament_size must be > 0, got %d", c.GATournamentSize)
	}

	if _, err := aviaryio.NewEye(c.EyeFOVRange, c.EyeFOVAngle, c.EyeCells); err != nil {
		return invalid("%v", err)
	}
	if _, err := nn.GetActivation(c.BrainActivation); err != nil {
		return invalid("brain_activation %q, want one of %s", c.BrainActivation, strings.Join(nn.ListActivations(), ", "))
	}
	if _, err := c.geneticAlgorithmConfig(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// ChromosomeLength is the number of genes each bird carries.
func (c Config) ChromosomeLength() int {
	return nn.Topology{c.EyeCells, c.BrainNeurons, 2}.WeightCount()
}

func (c Config) brainConfig() (agent.BrainConfig, error) {
	eye, err := aviaryio.NewEye(c.EyeFOVRange, c.EyeFOVAngle, c.EyeCells)
	if err != nil {
		return agent.BrainConfig{}, err
	}
	return agent.BrainConfig{
		Sensor:     eye,
		Actuator:   aviaryio.Propulsion{SpeedAccel: c.SimSpeedAccel, RotationAccel: c.SimRotationAccel},
		Neurons:    c.BrainNeurons,
		Activation: c.BrainActivation,
	}, nil
}

func (c Config) geneticAlgorithmConfig() (evo.Config, error) {
	postprocessor := "none"
	if c.GAReverse {
		postprocessor = "reverse"
	}
	return evo.ResolveConfig(c.GASelection, c.GACrossover, "uniform_perturbation", postprocessor, evo.Params{
		TournamentSize: c.GATournamentSize,
		MutationChance: c.GAMutChance,
		MutationCoeff:  c.GAMutCoeff,
	})
}

type configField struct {
	get func(c *Config) string
	set func(c *Config, raw string) error
}

func floatField(ptr func(c *Config) *float64) configField {
	return configField{
		get: func(c *Config) string { return strconv.FormatFloat(*ptr(c), 'g', -1, 64) },
		set: func(c *Config, raw string) error {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return err
			}
			*ptr(c) = v
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int) configField {
	return configField{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, raw string) error {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return err
			}
			*ptr(c) = v
			return nil
		},
	}
}

func stringField(ptr func(c *Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, raw string) error {
			*ptr(c) = raw
			return nil
		},
	}
}

func boolField(ptr func(c *Config) *bool) configField {
	return configField{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, raw string) error {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return err
			}
			*ptr(c) = v
			return nil
		},
	}
}

var configFields = map[string]configField{
	"world_size":            floatField(func(c *Config) *float64 { return &c.WorldSize }),
	"world_edges":           stringField(func(c *Config) *string { return &c.WorldEdges }),
	"world_animals":         intField(func(c *Config) *int { return &c.WorldAnimals }),
	"world_foods":           intField(func(c *Config) *int { return &c.WorldFoods }),
	"food_size":             floatField(func(c *Config) *float64 { return &c.FoodSize }),
	"eye_fov_range":         floatField(func(c *Config) *float64 { return &c.EyeFOVRange }),
	"eye_fov_angle":         floatField(func(c *Config) *float64 { return &c.EyeFOVAngle }),
	"eye_cells":             intField(func(c *Config) *int { return &c.EyeCells }),
	"brain_neurons":         intField(func(c *Config) *int { return &c.BrainNeurons }),
	"brain_activation":      stringField(func(c *Config) *string { return &c.BrainActivation }),
	"sim_speed_min":         floatField(func(c *Config) *float64 { return &c.SimSpeedMin }),
	"sim_speed_max":         floatField(func(c *Config) *float64 { return &c.SimSpeedMax }),
	"sim_speed_accel":       floatField(func(c *Config) *float64 { return &c.SimSpeedAccel }),
	"sim_rotation_accel":    floatField(func(c *Config) *float64 { return &c.SimRotationAccel }),
	"sim_generation_length": intField(func(c *Config) *int { return &c.SimGenerationLength }),
	"ga_selection":          stringField(func(c *Config) *string { return &c.GASelection }),
	"ga_tournament_size":    intField(func(c *Config) *int { return &c.GATournamentSize }),
	"ga_crossover":          stringField(func(c *Config) *string { return &c.GACrossover }),
	"ga_mut_chance":         floatField(func(c *Config) *float64 { return &c.GAMutChance }),
	"ga_mut_coeff":          floatField(func(c *Config) *float64 { return &c.GAMutCoeff }),
	"ga_reverse":            boolField(func(c *Config) *bool { return &c.GAReverse }),
}

// ConfigKeys lists every key accepted by Set and Get.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set overrides one key. The result is not validated until Validate runs.
func (c *Config) Set(key, value string) error {
	field, ok := configFields[strings.TrimSpace(key)]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	if err := field.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return nil
}

func (c Config) Get(key string) (string, error) {
	field, ok := configFields[strings.TrimSpace(key)]
	if !ok {
		return "", fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	return field.get(&c), nil
}
