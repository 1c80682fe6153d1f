package render

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"aviary/internal/scape"
)

const (
	minSpeed = 1
	maxSpeed = 256
)

// Viewer runs a simulation interactively:
//
//	p      pause / resume
//	t      train through the rest of the generation
//	r      restart with a fresh population
//	+ / -  double / halve the steps per frame
//	q, Esc quit
type Viewer struct {
	screen tcell.Screen
	config scape.Config
	rng    *rand.Rand
	sim    *scape.Simulation

	frame  time.Duration
	speed  int
	paused bool
	last   scape.Statistics
}

func NewViewer(screen tcell.Screen, cfg scape.Config, seed int64) (*Viewer, error) {
	if screen == nil {
		return nil, fmt.Errorf("screen is required")
	}
	v := &Viewer{
		screen: screen,
		config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
		frame:  16 * time.Millisecond,
		speed:  1,
	}
	if err := v.reset(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Viewer) Speed() int {
	return v.speed
}

func (v *Viewer) Paused() bool {
	return v.paused
}

func (v *Viewer) Stats() scape.Statistics {
	return v.sim.Stats()
}

// Run draws frames until the user quits or ctx is done. The caller owns the
// screen and finalizes it.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(v.frame)
	defer ticker.Stop()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			done, err := v.HandleEvent(ev)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			v.Draw()
		case <-ticker.C:
			if err := v.Advance(); err != nil {
				return err
			}
			v.Draw()
		}
	}
}

// HandleEvent applies one input event and reports whether the viewer should
// exit.
func (v *Viewer) HandleEvent(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true, nil
			case 'p':
				v.paused = !v.paused
			case 't':
				stats, err := v.sim.Train(v.rng)
				if err != nil {
					return false, err
				}
				v.last = stats
			case 'r':
				if err := v.reset(); err != nil {
					return false, err
				}
			case '+', '=':
				if v.speed < maxSpeed {
					v.speed *= 2
				}
			case '-':
				if v.speed > minSpeed {
					v.speed /= 2
				}
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false, nil
}

// Advance runs one frame worth of steps unless paused.
func (v *Viewer) Advance() error {
	if v.paused {
		return nil
	}
	for i := 0; i < v.speed; i++ {
		stats, done, err := v.sim.Step(v.rng)
		if err != nil {
			return err
		}
		if done {
			v.last = stats
		}
	}
	return nil
}

func (v *Viewer) Draw() {
	Draw(v.screen, v.sim.World(), v.status())
}

func (v *Viewer) status() string {
	current := v.sim.Stats()
	state := "running"
	if v.paused {
		state = "paused"
	}
	line := fmt.Sprintf(" gen %d  age %d/%d  x%d  %s", current.Generation, current.Age, current.GenerationLength, v.speed, state)
	if v.last.HasFitness() {
		line += fmt.Sprintf("  | last %s", v.last)
	}
	return line + "  | p pause  t train  r reset  +/- speed  q quit"
}

func (v *Viewer) reset() error {
	sim, err := scape.Random(v.config, v.rng)
	if err != nil {
		return err
	}
	v.sim = sim
	v.last = scape.Statistics{}
	return nil
}
