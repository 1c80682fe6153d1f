package io

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/nn"
)

const EyeSensorName = "eye"

// Eye splits a field of view centered on the heading into equal cells. Every
// target within range adds (range-distance)/range to the cell its bearing
// falls into, so closer targets weigh more.
type Eye struct {
	FOVRange float64
	FOVAngle float64
	Cells    int
}

func NewEye(fovRange, fovAngle float64, cells int) (Eye, error) {
	if fovRange <= 0 || math.IsNaN(fovRange) || math.IsInf(fovRange, 0) {
		return Eye{}, fmt.Errorf("eye fov range must be > 0, got %v", fovRange)
	}
	if fovAngle <= 0 || fovAngle > 2*math.Pi {
		return Eye{}, fmt.Errorf("eye fov angle must be in (0, 2pi], got %v", fovAngle)
	}
	if cells <= 0 {
		return Eye{}, fmt.Errorf("eye cells must be > 0, got %d", cells)
	}
	return Eye{FOVRange: fovRange, FOVAngle: fovAngle, Cells: cells}, nil
}

func (e Eye) Name() string {
	return EyeSensorName
}

func (e Eye) Width() int {
	return e.Cells
}

func (e Eye) Process(position r2.Vec, rotation float64, targets []r2.Vec) []float64 {
	cells := make([]float64, e.Cells)
	for _, target := range targets {
		offset := r2.Sub(target, position)
		dist := r2.Norm(offset)
		if dist >= e.FOVRange {
			continue
		}

		angle := nn.WrapAngle(Bearing(offset) - rotation)
		if angle < -e.FOVAngle/2 || angle > e.FOVAngle/2 {
			continue
		}

		cell := int((angle + e.FOVAngle/2) / e.FOVAngle * float64(e.Cells))
		if cell >= e.Cells {
			cell = e.Cells - 1
		}
		cells[cell] += (e.FOVRange - dist) / e.FOVRange
	}
	return cells
}

// Bearing is the heading angle that points along v. Heading 0 faces +Y and
// grows counter-clockwise, matching Heading.
func Bearing(v r2.Vec) float64 {
	return math.Atan2(-v.X, v.Y)
}

// Heading is the unit vector for a rotation angle.
func Heading(rotation float64) r2.Vec {
	return r2.Vec{X: -math.Sin(rotation), Y: math.Cos(rotation)}
}
