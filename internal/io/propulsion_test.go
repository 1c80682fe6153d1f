package io

import (
	"math"
	"testing"
)

func TestPropulsionApply(t *testing.T) {
	p := Propulsion{SpeedAccel: 0.2, RotationAccel: math.Pi / 2}

	motion, err := p.Apply([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if motion.Speed != 0 || motion.Rotation != 0 {
		t.Fatalf("expected no motion at rest outputs, got %+v", motion)
	}

	motion, err = p.Apply([]float64{5, 5})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if motion.Speed != 0.2 || motion.Rotation != 0 {
		t.Fatalf("expected speed capped at accel, got %+v", motion)
	}

	motion, err = p.Apply([]float64{1, 0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if motion.Speed != 0 || motion.Rotation != 1 {
		t.Fatalf("expected full turn, got %+v", motion)
	}

	motion, err = p.Apply([]float64{-3, 0.8})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if math.Abs(motion.Speed-(-0.2)) > 1e-12 || math.Abs(motion.Rotation-(-0.8)) > 1e-12 {
		t.Fatalf("unexpected motion: %+v", motion)
	}
}

func TestPropulsionRejectsWrongWidth(t *testing.T) {
	p := Propulsion{SpeedAccel: 0.2, RotationAccel: 1}
	if _, err := p.Apply([]float64{1}); err == nil {
		t.Fatal("expected width error")
	}
	if p.Width() != 2 || p.Name() != PropulsionActuatorName {
		t.Fatalf("unexpected actuator shape: %s/%d", p.Name(), p.Width())
	}
}
