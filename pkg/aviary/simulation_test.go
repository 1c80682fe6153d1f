package aviary

import (
	"reflect"
	"testing"
)

func TestSimulationReplaysWithSameSeed(t *testing.T) {
	cfg := smallConfig()

	a, err := NewSimulation(cfg, 7)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	b, err := NewSimulation(cfg, 7)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	for i := 0; i < 2; i++ {
		sa, err := a.Train()
		if err != nil {
			t.Fatalf("train a: %v", err)
		}
		sb, err := b.Train()
		if err != nil {
			t.Fatalf("train b: %v", err)
		}
		if sa.String() != sb.String() {
			t.Fatalf("generation %d diverged: %s vs %s", i, sa, sb)
		}
	}
	if !reflect.DeepEqual(a.World(), b.World()) {
		t.Fatal("expected identical worlds for identical seeds")
	}
	if a.Stats().Generation != 2 {
		t.Fatalf("expected generation 2, got %d", a.Stats().Generation)
	}
}

func TestSimulationStepEndsGeneration(t *testing.T) {
	cfg := smallConfig()
	sim, err := NewSimulation(cfg, 1)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	for i := 1; i < cfg.SimGenerationLength; i++ {
		_, ended, err := sim.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if ended {
			t.Fatalf("generation ended early at step %d", i)
		}
	}
	stats, ended, err := sim.Step()
	if err != nil {
		t.Fatalf("final step: %v", err)
	}
	if !ended || !stats.HasFitness() {
		t.Fatalf("expected generation to end with fitness, got %+v", stats)
	}
	if sim.Config() != cfg {
		t.Fatal("expected config to be preserved")
	}
}

func TestNewSimulationRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.EyeCells = 0
	if _, err := NewSimulation(cfg, 1); err == nil {
		t.Fatal("expected invalid config error")
	}
}
