package main

import (
	"flag"
	"fmt"
	"strings"

	"aviary/pkg/aviary"
)

// setFlag collects repeated -set key=value pairs.
type setFlag []string

func (s *setFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *setFlag) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	*s = append(*s, value)
	return nil
}

type configFlags struct {
	path             *string
	animals          *int
	foods            *int
	neurons          *int
	eyeCells         *int
	generationLength *int
	sets             *setFlag
}

func addConfigFlags(fs *flag.FlagSet) configFlags {
	defaults := aviary.DefaultConfig()
	sets := &setFlag{}
	fs.Var(sets, "set", "override any config key as key=value (repeatable)")
	return configFlags{
		path:             fs.String("config", "", "optional simulation config YAML/JSON path"),
		animals:          fs.Int("animals", defaults.WorldAnimals, "number of birds"),
		foods:            fs.Int("foods", defaults.WorldFoods, "number of foods"),
		neurons:          fs.Int("neurons", defaults.BrainNeurons, "hidden neurons per brain"),
		eyeCells:         fs.Int("eye-cells", defaults.EyeCells, "eye cells per bird"),
		generationLength: fs.Int("generation-length", defaults.SimGenerationLength, "steps per generation"),
		sets:             sets,
	}
}

// resolve loads the config file (or the defaults), then applies the flags the
// user actually passed, then the -set pairs in order.
func (f configFlags) resolve(fs *flag.FlagSet) (aviary.Config, error) {
	cfg := aviary.DefaultConfig()
	if *f.path != "" {
		loaded, err := aviary.LoadConfig(*f.path)
		if err != nil {
			return aviary.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "animals":
			cfg.WorldAnimals = *f.animals
		case "foods":
			cfg.WorldFoods = *f.foods
		case "neurons":
			cfg.BrainNeurons = *f.neurons
		case "eye-cells":
			cfg.EyeCells = *f.eyeCells
		case "generation-length":
			cfg.SimGenerationLength = *f.generationLength
		}
	})

	for _, pair := range *f.sets {
		key, value, _ := strings.Cut(pair, "=")
		if err := cfg.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return aviary.Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return aviary.Config{}, err
	}
	return cfg, nil
}
