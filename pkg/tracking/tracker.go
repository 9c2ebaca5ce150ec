// Package tracking resolves steering targets and computes the guidance
// impulses that turn and push an agent toward them.
package tracking

import (
	"github.com/opd-ai/go-flightcore/pkg/physics"
)

// Tracker holds an agent's steering goal: a concrete world-space Target
// and, optionally, a weak reference to another agent the Target is derived
// from each tick.
type Tracker struct {
	Target    physics.WorldVec
	HasTarget bool

	// Entity is the id of the tracked agent. It is never dereferenced
	// directly; a Locator looks it up every tick.
	Entity    uint64
	HasEntity bool

	resolvedFrom uint64
	resolved     bool
}

// SetTarget points the tracker at a fixed world position. It does not touch
// the entity reference; callers that want a static goal should also call
// ClearEntity.
func (t *Tracker) SetTarget(p physics.WorldVec) {
	t.Target = p
	t.HasTarget = true
	t.resolved = false
}

// Track sets the weak entity reference.
func (t *Tracker) Track(id uint64) {
	t.Entity = id
	t.HasEntity = true
}

// ClearEntity drops the entity reference. The current Target stays.
func (t *Tracker) ClearEntity() {
	t.Entity = 0
	t.HasEntity = false
}

// ClearTarget drops the concrete Target.
func (t *Tracker) ClearTarget() {
	t.Target = physics.WorldVec{}
	t.HasTarget = false
	t.resolved = false
}

// ResolvedFrom reports whether the current Target was last derived from
// the agent with the given id.
func (t *Tracker) ResolvedFrom(id uint64) bool {
	return t.HasTarget && t.resolved && t.resolvedFrom == id
}

// Locator looks up the live pose and body-frame velocity of an agent.
type Locator interface {
	Locate(id uint64) (physics.Pose, physics.LocalVec, bool)
}

// Predict is the one-step position prediction of an agent: where it will
// be after one second at its current velocity.
func Predict(pose physics.Pose, velocity physics.LocalVec) physics.WorldVec {
	return pose.Position.Add(pose.ToWorld(velocity))
}

// Resolve refreshes the Target from the tracked entity. If the entity
// cannot be found the Target is left as it was and false is returned.
func Resolve(t *Tracker, loc Locator) bool {
	if !t.HasEntity {
		return false
	}
	pose, velocity, ok := loc.Locate(t.Entity)
	if !ok {
		return false
	}
	t.Target = Predict(pose, velocity)
	t.HasTarget = true
	t.resolvedFrom = t.Entity
	t.resolved = true
	return true
}
