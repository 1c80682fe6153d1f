package io

import "gonum.org/v1/gonum/spatial/r2"

// Sensor turns the surroundings of a body into a fixed-width input vector.
type Sensor interface {
	Name() string
	Width() int
	Process(position r2.Vec, rotation float64, targets []r2.Vec) []float64
}

// Actuator turns decision outputs into motion deltas.
type Actuator interface {
	Name() string
	Width() int
	Apply(outputs []float64) (Motion, error)
}

// Motion is a change in speed and heading requested by an actuator.
type Motion struct {
	Speed    float64
	Rotation float64
}
