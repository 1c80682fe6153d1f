package agent

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"aviary/internal/evo"
	aviaryio "aviary/internal/io"
	"aviary/internal/nn"
)

// Animal is one bird. Its fitness is the food it ate this generation and its
// chromosome is its brain's weights.
type Animal struct {
	Position  r2.Vec
	Rotation  float64
	Speed     float64
	Satiation int
	Vision    []float64

	brain *Brain
}

var _ evo.Individual = (*Animal)(nil)

// NewAnimal places a brain at a random spot in [0, worldSize)² facing a
// random direction.
func NewAnimal(rng *rand.Rand, brain *Brain, worldSize, speed float64) *Animal {
	return &Animal{
		Position: r2.Vec{X: rng.Float64() * worldSize, Y: rng.Float64() * worldSize},
		Rotation: rng.Float64() * 2 * math.Pi,
		Speed:    speed,
		brain:    brain,
	}
}

func (a *Animal) Fitness() float64 {
	return float64(a.Satiation)
}

func (a *Animal) Chromosome() evo.Chromosome {
	return a.brain.Chromosome()
}

func (a *Animal) Feed() {
	a.Satiation++
}

// Think lets the brain steer. Speed stays inside [minSpeed, maxSpeed] and
// rotation is kept in [0, 2pi).
func (a *Animal) Think(targets []r2.Vec, minSpeed, maxSpeed float64) error {
	motion, vision, err := a.brain.Tick(a.Position, a.Rotation, targets)
	if err != nil {
		return err
	}
	a.Vision = vision
	a.Speed = nn.Clamp(a.Speed+motion.Speed, minSpeed, maxSpeed)
	a.Rotation = nn.Wrap(a.Rotation+motion.Rotation, 0, 2*math.Pi)
	return nil
}

// Advance moves the animal one tick along its heading. Edge handling is left
// to the world.
func (a *Animal) Advance() {
	a.Position = r2.Add(a.Position, r2.Scale(a.Speed, aviaryio.Heading(a.Rotation)))
}
