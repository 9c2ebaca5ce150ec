package host

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
)

// Stepper is the part of the simulation the host drives.
type Stepper interface {
	Advance(elapsed float64) int
	Tick() uint64
}

// StepperSystem feeds engo's frame time into the simulation's fixed-step
// accumulator.
type StepperSystem struct {
	Sim Stepper
	// MaxTicks ends the host loop once reached. Zero runs until exit.
	MaxTicks uint64
	// Exit stops the host loop. Defaults to engo.Exit.
	Exit func()

	frames  uint64
	exiting bool
}

// Remove satisfies the ecs.System interface
func (s *StepperSystem) Remove(ecs.BasicEntity) {}

// Priority runs the stepper before anything that reads simulation state.
func (s *StepperSystem) Priority() int { return 100 }

// Update advances the simulation by the frame time.
func (s *StepperSystem) Update(dt float32) {
	if s.exiting {
		return
	}
	s.frames++
	s.Sim.Advance(float64(dt))
	if s.MaxTicks > 0 && s.Sim.Tick() >= s.MaxTicks {
		s.exiting = true
		if s.Exit != nil {
			s.Exit()
			return
		}
		engo.Exit()
	}
}

// Frames returns the number of frames seen.
func (s *StepperSystem) Frames() uint64 { return s.frames }
