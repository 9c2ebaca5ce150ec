package tracking

import (
	"testing"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

type body struct {
	pose     physics.Pose
	velocity physics.LocalVec
}

type mapLocator map[uint64]body

func (m mapLocator) Locate(id uint64) (physics.Pose, physics.LocalVec, bool) {
	b, ok := m[id]
	return b.pose, b.velocity, ok
}

func TestResolve_OneStepPrediction(t *testing.T) {
	loc := mapLocator{
		7: {pose: physics.NewPose(physics.World(5, 0, 0)), velocity: physics.Local(1, 0, 0)},
	}
	var tr Tracker
	tr.Track(7)

	if !Resolve(&tr, loc) {
		t.Fatal("Resolve() = false, expected true")
	}
	if tr.Target != physics.World(6, 0, 0) {
		t.Errorf("Target = %v, expected (6, 0, 0)", tr.Target)
	}
	if !tr.ResolvedFrom(7) {
		t.Error("ResolvedFrom(7) = false, expected true")
	}
}

func TestResolve_RotatedVelocity(t *testing.T) {
	// Velocity is body-frame; a target flying forward while yawed 180
	// degrees moves along world +Z.
	pose := physics.NewPoseEuler(physics.World(0, 0, 0), 0, 3.141592653589793, 0)
	loc := mapLocator{1: {pose: pose, velocity: physics.Forward.Scale(2)}}

	var tr Tracker
	tr.Track(1)
	Resolve(&tr, loc)

	if tr.Target.Distance(physics.World(0, 0, 2)) > 1e-9 {
		t.Errorf("Target = %v, expected (0, 0, 2)", tr.Target)
	}
}

func TestResolve_MissingEntityKeepsStaleTarget(t *testing.T) {
	var tr Tracker
	tr.SetTarget(physics.World(1, 2, 3))
	tr.Track(99)

	if Resolve(&tr, mapLocator{}) {
		t.Error("Resolve() = true for missing entity")
	}
	if tr.Target != physics.World(1, 2, 3) || !tr.HasTarget {
		t.Errorf("Target = %v (present %v), expected stale (1, 2, 3)", tr.Target, tr.HasTarget)
	}
	if tr.ResolvedFrom(99) {
		t.Error("ResolvedFrom(99) = true, expected false")
	}
}

func TestResolve_NoEntity(t *testing.T) {
	var tr Tracker
	if Resolve(&tr, mapLocator{0: {}}) {
		t.Error("Resolve() without entity reference = true")
	}
	if tr.HasTarget {
		t.Error("HasTarget set without entity reference")
	}
}

func TestTracker_SetTargetClearsResolution(t *testing.T) {
	loc := mapLocator{3: {pose: physics.NewPose(physics.World(1, 1, 1))}}
	var tr Tracker
	tr.Track(3)
	Resolve(&tr, loc)

	tr.SetTarget(physics.World(0, 0, 0))
	if tr.ResolvedFrom(3) {
		t.Error("ResolvedFrom(3) after SetTarget = true, expected false")
	}
	tr.ClearTarget()
	if tr.HasTarget {
		t.Error("HasTarget after ClearTarget = true")
	}
}

func TestResolverSystem(t *testing.T) {
	loc := mapLocator{42: {pose: physics.NewPose(physics.World(0, 3, 0)), velocity: physics.Local(0, 1, 0)}}
	sys := &ResolverSystem{Locator: loc}

	basic := newBasic()
	var tr Tracker
	tr.Track(42)
	sys.Add(basic, &tr)
	sys.Update(0.016)

	if tr.Target != physics.World(0, 4, 0) {
		t.Errorf("Target = %v, expected (0, 4, 0)", tr.Target)
	}

	sys.Remove(*basic)
	delete(loc, 42)
	loc[42] = body{pose: physics.NewPose(physics.World(9, 9, 9))}
	sys.Update(0.016)
	if tr.Target != physics.World(0, 4, 0) {
		t.Errorf("removed tracker was resolved: Target = %v", tr.Target)
	}
}
