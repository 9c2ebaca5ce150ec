package host

import (
	"math"
	"testing"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/engine"
	"github.com/opd-ai/go-flightcore/pkg/logging"
	"github.com/opd-ai/go-flightcore/pkg/physics"
)

type fakeStepper struct {
	tick     uint64
	advanced []float64
}

func (f *fakeStepper) Advance(elapsed float64) int {
	f.advanced = append(f.advanced, elapsed)
	f.tick++
	return 1
}

func (f *fakeStepper) Tick() uint64 { return f.tick }

func TestStepperSystem_ExitsAtMaxTicks(t *testing.T) {
	sim := &fakeStepper{}
	exits := 0
	s := &StepperSystem{Sim: sim, MaxTicks: 3, Exit: func() { exits++ }}

	for i := 0; i < 5; i++ {
		s.Update(0.016)
	}

	if sim.tick != 3 {
		t.Errorf("expected 3 ticks, got %d", sim.tick)
	}
	if exits != 1 {
		t.Errorf("expected Exit once, got %d", exits)
	}
	if s.Frames() != 3 {
		t.Errorf("Frames() = %d, expected 3", s.Frames())
	}
	if math.Abs(sim.advanced[0]-0.016) > 1e-6 {
		t.Errorf("advanced %v, expected frame time", sim.advanced[0])
	}
}

func TestStepperSystem_Unbounded(t *testing.T) {
	sim := &fakeStepper{}
	s := &StepperSystem{Sim: sim, Exit: func() { t.Error("unexpected exit") }}
	for i := 0; i < 100; i++ {
		s.Update(0.016)
	}
	if sim.tick != 100 {
		t.Errorf("expected 100 ticks, got %d", sim.tick)
	}
}

type fakeSubjects struct {
	poses   map[uint64]physics.Pose
	cameras map[string]uint64
}

func (f *fakeSubjects) Locate(id uint64) (physics.Pose, physics.LocalVec, bool) {
	p, ok := f.poses[id]
	return p, physics.LocalVec{}, ok
}

func (f *fakeSubjects) CameraSubject(camera string) (uint64, bool) {
	id, ok := f.cameras[camera]
	return id, ok
}

func TestCameraRig_Follow(t *testing.T) {
	subjects := &fakeSubjects{
		poses:   map[uint64]physics.Pose{7: physics.NewPose(physics.World(10, 0, 0))},
		cameras: map[string]uint64{"main": 7},
	}
	rig := NewCameraRig("main", subjects)

	if _, _, ok := rig.View(); ok {
		t.Fatal("rig should have no view before the first update")
	}

	rig.Update(0.1)
	eye, focus, ok := rig.View()
	if !ok {
		t.Fatal("expected a view after update")
	}
	if eye != physics.World(10, 3, 12) {
		t.Errorf("first eye = %v, expected snap to (10, 3, 12)", eye)
	}
	if focus != physics.World(10, 0, 0) {
		t.Errorf("focus = %v", focus)
	}

	subjects.poses[7] = physics.NewPose(physics.World(20, 0, 0))
	rig.Update(0.25)
	eye, _, _ = rig.View()
	if math.Abs(eye[0]-15) > 1e-12 {
		t.Errorf("smoothed eye x = %v, expected halfway at 15", eye[0])
	}

	rig.EnableSmoothing(false)
	rig.Update(0.25)
	eye, _, _ = rig.View()
	if eye != physics.World(20, 3, 12) {
		t.Errorf("unsmoothed eye = %v", eye)
	}
}

func TestCameraRig_HoldsViewWithoutSubject(t *testing.T) {
	subjects := &fakeSubjects{
		poses:   map[uint64]physics.Pose{1: physics.NewPose(physics.World(1, 1, 1))},
		cameras: map[string]uint64{"main": 1},
	}
	rig := NewCameraRig("main", subjects)
	rig.Update(0.016)
	before, _, _ := rig.View()

	delete(subjects.poses, 1)
	rig.Update(0.016)
	after, _, ok := rig.View()
	if !ok || after != before {
		t.Errorf("view changed to %v after subject vanished", after)
	}
}

func TestFlightScene_Setup(t *testing.T) {
	sim, err := engine.NewSimulation(config.DefaultConfig(), engine.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	scene := NewFlightScene(sim, 10, "main")
	if scene.Type() != "FlightScene" {
		t.Errorf("Type() = %q", scene.Type())
	}

	world := &ecs.World{}
	scene.Setup(world)
	if len(world.Systems()) != 2 {
		t.Fatalf("expected stepper and camera systems, got %d", len(world.Systems()))
	}

	exited := false
	scene.Stepper().Exit = func() { exited = true }
	for i := 0; i < 100 && !exited; i++ {
		world.Update(float32(sim.TimeStep))
	}
	if !exited {
		t.Fatal("scene never reached MaxTicks")
	}
	if sim.Tick() < 10 {
		t.Errorf("Tick() = %d, expected at least 10", sim.Tick())
	}

	rig, ok := scene.Camera("main")
	if !ok {
		t.Fatal("camera rig missing")
	}
	if _, _, ok := rig.View(); !ok {
		t.Error("main camera should follow the interceptor")
	}
}
