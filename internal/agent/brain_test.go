package agent

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/evo"
	aviaryio "aviary/internal/io"
)

func testBrainConfig(t *testing.T) BrainConfig {
	t.Helper()
	eye, err := aviaryio.NewEye(0.25, math.Pi+math.Pi/4, 9)
	if err != nil {
		t.Fatalf("new eye: %v", err)
	}
	return BrainConfig{
		Sensor:     eye,
		Actuator:   aviaryio.Propulsion{SpeedAccel: 0.2, RotationAccel: math.Pi / 2},
		Neurons:    9,
		Activation: "relu",
	}
}

func TestBrainChromosomeRoundTrip(t *testing.T) {
	cfg := testBrainConfig(t)
	if got := cfg.ChromosomeLength(); got != 10*9+10*2 {
		t.Fatalf("unexpected chromosome length: %d", got)
	}

	brain, err := RandomBrain(rand.New(rand.NewSource(7)), cfg)
	if err != nil {
		t.Fatalf("random brain: %v", err)
	}
	chromosome := brain.Chromosome()
	if chromosome.Len() != cfg.ChromosomeLength() {
		t.Fatalf("expected %d genes, got %d", cfg.ChromosomeLength(), chromosome.Len())
	}

	rebuilt, err := BrainFromChromosome(cfg, chromosome)
	if err != nil {
		t.Fatalf("brain from chromosome: %v", err)
	}
	again := rebuilt.Chromosome()
	for i := range chromosome {
		if again[i] != chromosome[i] {
			t.Fatalf("gene %d changed: %v -> %v", i, chromosome[i], again[i])
		}
	}
}

func TestBrainFromChromosomeRejectsWrongLength(t *testing.T) {
	cfg := testBrainConfig(t)
	if _, err := BrainFromChromosome(cfg, make(evo.Chromosome, cfg.ChromosomeLength()-1)); err == nil {
		t.Fatal("expected error for short chromosome")
	}
	if _, err := BrainFromChromosome(cfg, make(evo.Chromosome, cfg.ChromosomeLength()+1)); err == nil {
		t.Fatal("expected error for long chromosome")
	}
}

func TestBrainConfigValidation(t *testing.T) {
	cfg := testBrainConfig(t)
	cfg.Neurons = 0
	if _, err := RandomBrain(rand.New(rand.NewSource(1)), cfg); err == nil {
		t.Fatal("expected neurons error")
	}
	cfg = testBrainConfig(t)
	cfg.Sensor = nil
	if _, err := RandomBrain(rand.New(rand.NewSource(1)), cfg); err == nil {
		t.Fatal("expected sensor error")
	}
}

func TestBrainTickZeroWeightsRests(t *testing.T) {
	cfg := testBrainConfig(t)
	brain, err := BrainFromChromosome(cfg, make(evo.Chromosome, cfg.ChromosomeLength()))
	if err != nil {
		t.Fatalf("brain from chromosome: %v", err)
	}

	motion, vision, err := brain.Tick(r2.Vec{X: 0.5, Y: 0.5}, 0, []r2.Vec{{X: 0.5, Y: 0.6}})
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(vision) != 9 || vision[4] == 0 {
		t.Fatalf("expected food in the center cell, got %v", vision)
	}
	// zero outputs map to -0.5 thrust on both sides
	if math.Abs(motion.Speed-(-0.2)) > 1e-12 || motion.Rotation != 0 {
		t.Fatalf("unexpected motion: %+v", motion)
	}
}
