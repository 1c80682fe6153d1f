package scape

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/agent"
	"aviary/internal/nn"
)

type Food struct {
	Position r2.Vec
}

func randomFood(rng *rand.Rand, worldSize float64) *Food {
	return &Food{Position: randomPosition(rng, worldSize)}
}

func randomPosition(rng *rand.Rand, worldSize float64) r2.Vec {
	return r2.Vec{X: rng.Float64() * worldSize, Y: rng.Float64() * worldSize}
}

// World is the square region [0, size)² birds and food live in.
type World struct {
	size    float64
	edges   string
	animals []*agent.Animal
	foods   []*Food
}

func (w *World) relocateFoods(rng *rand.Rand) {
	for _, food := range w.foods {
		food.Position = randomPosition(rng, w.size)
	}
}

func (w *World) foodPositions() []r2.Vec {
	positions := make([]r2.Vec, len(w.foods))
	for i, food := range w.foods {
		positions[i] = food.Position
	}
	return positions
}

// confine brings a position that left the world back inside it.
func (w *World) confine(p r2.Vec) r2.Vec {
	if w.edges == EdgesClamp {
		hi := math.Nextafter(w.size, 0)
		return r2.Vec{X: nn.Clamp(p.X, 0, hi), Y: nn.Clamp(p.Y, 0, hi)}
	}
	return r2.Vec{X: nn.Wrap(p.X, 0, w.size), Y: nn.Wrap(p.Y, 0, w.size)}
}

type AnimalView struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Rotation  float64   `json:"rotation"`
	Speed     float64   `json:"speed"`
	Satiation int       `json:"satiation"`
	Vision    []float64 `json:"vision"`
}

type FoodView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorldView is a detached copy of the world for drawing and export.
type WorldView struct {
	Size    float64      `json:"size"`
	Animals []AnimalView `json:"animals"`
	Foods   []FoodView   `json:"foods"`
}

func (w *World) view() WorldView {
	view := WorldView{
		Size:    w.size,
		Animals: make([]AnimalView, len(w.animals)),
		Foods:   make([]FoodView, len(w.foods)),
	}
	for i, animal := range w.animals {
		view.Animals[i] = AnimalView{
			X:         animal.Position.X,
			Y:         animal.Position.Y,
			Rotation:  animal.Rotation,
			Speed:     animal.Speed,
			Satiation: animal.Satiation,
			Vision:    append([]float64(nil), animal.Vision...),
		}
	}
	for i, food := range w.foods {
		view.Foods[i] = FoodView{X: food.Position.X, Y: food.Position.Y}
	}
	return view
}

func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
