// Package host runs a simulation inside engo's headless game loop, pacing
// fixed ticks against the wall clock.
package host

import (
	"context"
	"errors"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-flightcore/pkg/engine"
)

// DefaultFPS is the frame rate of the headless loop.
const DefaultFPS = 60

// FlightScene represents the simulation as an engo scene
type FlightScene struct {
	world *ecs.World
	sim   *engine.Simulation

	stepper *StepperSystem
	cameras []*CameraRig
}

// NewFlightScene creates a scene that steps sim and follows the named
// cameras.
func NewFlightScene(sim *engine.Simulation, maxTicks uint64, cameras ...string) *FlightScene {
	scene := &FlightScene{
		sim:     sim,
		stepper: &StepperSystem{Sim: sim, MaxTicks: maxTicks},
	}
	for _, name := range cameras {
		scene.cameras = append(scene.cameras, NewCameraRig(name, sim))
	}
	return scene
}

// Type returns the scene type (required by Engo)
func (scene *FlightScene) Type() string {
	return "FlightScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *FlightScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *FlightScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		world = &ecs.World{}
	}
	scene.world = world

	scene.world.AddSystem(scene.stepper)
	for _, c := range scene.cameras {
		scene.world.AddSystem(c)
	}
}

// Stepper returns the system driving the simulation.
func (scene *FlightScene) Stepper() *StepperSystem { return scene.stepper }

// Camera returns the rig with the given name.
func (scene *FlightScene) Camera(name string) (*CameraRig, bool) {
	for _, c := range scene.cameras {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Options configures the headless host loop.
type Options struct {
	Title    string
	FPS      int
	MaxTicks uint64
	Cameras  []string
}

// Run blocks in engo's headless loop until MaxTicks is reached or ctx is
// cancelled. The simulation is started and stopped around the loop.
func Run(ctx context.Context, sim *engine.Simulation, opts Options) error {
	if sim == nil {
		return errors.New("nil simulation")
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Title == "" {
		opts.Title = "flightcore"
	}

	scene := NewFlightScene(sim, opts.MaxTicks, opts.Cameras...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			engo.Exit()
		case <-done:
		}
	}()

	sim.Start()
	defer sim.Stop()
	engo.Run(engo.RunOptions{
		Title:        opts.Title,
		HeadlessMode: true,
		FPSLimit:     opts.FPS,
	}, scene)
	return ctx.Err()
}
