package agent

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/evo"
)

func TestNewAnimalPlacement(t *testing.T) {
	cfg := testBrainConfig(t)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		brain, err := RandomBrain(rng, cfg)
		if err != nil {
			t.Fatalf("random brain: %v", err)
		}
		animal := NewAnimal(rng, brain, 2, 0.005)
		if animal.Position.X < 0 || animal.Position.X >= 2 || animal.Position.Y < 0 || animal.Position.Y >= 2 {
			t.Fatalf("position outside world: %+v", animal.Position)
		}
		if animal.Rotation < 0 || animal.Rotation >= 2*math.Pi {
			t.Fatalf("rotation outside [0, 2pi): %v", animal.Rotation)
		}
		if animal.Speed != 0.005 || animal.Satiation != 0 {
			t.Fatalf("unexpected initial state: %+v", animal)
		}
	}
}

func TestAnimalFitnessTracksSatiation(t *testing.T) {
	cfg := testBrainConfig(t)
	brain, err := RandomBrain(rand.New(rand.NewSource(5)), cfg)
	if err != nil {
		t.Fatalf("random brain: %v", err)
	}
	animal := NewAnimal(rand.New(rand.NewSource(6)), brain, 1, 0.005)
	var individual evo.Individual = animal
	if individual.Fitness() != 0 {
		t.Fatalf("expected zero fitness, got %v", individual.Fitness())
	}
	animal.Feed()
	animal.Feed()
	if individual.Fitness() != 2 {
		t.Fatalf("expected fitness 2, got %v", individual.Fitness())
	}
	if individual.Chromosome().Len() != cfg.ChromosomeLength() {
		t.Fatalf("unexpected chromosome length %d", individual.Chromosome().Len())
	}
}

func TestAnimalThinkKeepsSpeedInBounds(t *testing.T) {
	cfg := testBrainConfig(t)
	brain, err := BrainFromChromosome(cfg, make(evo.Chromosome, cfg.ChromosomeLength()))
	if err != nil {
		t.Fatalf("brain from chromosome: %v", err)
	}
	animal := &Animal{Position: r2.Vec{X: 0.5, Y: 0.5}, Speed: 0.005, brain: brain}

	// a silent brain brakes every tick
	if err := animal.Think(nil, 0.001, 0.005); err != nil {
		t.Fatalf("think: %v", err)
	}
	if animal.Speed != 0.001 {
		t.Fatalf("expected speed clamped to min, got %v", animal.Speed)
	}
	if len(animal.Vision) != 9 {
		t.Fatalf("expected vision to be recorded, got %v", animal.Vision)
	}
}

func TestAnimalAdvanceFollowsHeading(t *testing.T) {
	animal := &Animal{Position: r2.Vec{X: 0.5, Y: 0.5}, Speed: 0.1}
	animal.Advance()
	if math.Abs(animal.Position.X-0.5) > 1e-12 || math.Abs(animal.Position.Y-0.6) > 1e-12 {
		t.Fatalf("expected to move up, got %+v", animal.Position)
	}

	animal.Rotation = math.Pi / 2
	animal.Advance()
	if math.Abs(animal.Position.X-0.4) > 1e-12 || math.Abs(animal.Position.Y-0.6) > 1e-12 {
		t.Fatalf("expected to move left, got %+v", animal.Position)
	}
}
