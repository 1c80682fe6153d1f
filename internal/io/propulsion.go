package io

import (
	"fmt"
	"math"

	"aviary/internal/nn"
)

const PropulsionActuatorName = "propulsion"

// Propulsion reads two outputs as left and right thrust. Their sum changes
// speed and their difference changes heading, each bounded by its
// acceleration limit.
type Propulsion struct {
	SpeedAccel    float64
	RotationAccel float64
}

func (p Propulsion) Name() string {
	return PropulsionActuatorName
}

func (p Propulsion) Width() int {
	return 2
}

func (p Propulsion) Apply(outputs []float64) (Motion, error) {
	if len(outputs) != 2 {
		return Motion{}, fmt.Errorf("%s expects 2 outputs, got %d", p.Name(), len(outputs))
	}
	r0 := nn.Clamp(outputs[0], 0, 1) - 0.5
	r1 := nn.Clamp(outputs[1], 0, 1) - 0.5
	if math.IsNaN(r0) || math.IsNaN(r1) {
		return Motion{}, nil
	}
	return Motion{
		Speed:    nn.Clamp(r0+r1, -p.SpeedAccel, p.SpeedAccel),
		Rotation: nn.Clamp(r0-r1, -p.RotationAccel, p.RotationAccel),
	}, nil
}
