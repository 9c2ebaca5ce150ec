package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IntegrateLinear advances the position by the body-frame velocity rotated
// into world space.
func IntegrateLinear(pose *Pose, velocity LocalVec, dt float64) {
	pose.Position = pose.Position.Add(pose.ToWorld(velocity).Scale(dt))
}

// IntegrateAngular rotates the orientation by the body-frame angular
// velocity over dt. A zero rotation is a no-op.
func IntegrateAngular(pose *Pose, angularVelocity LocalVec, dt float64) {
	scaled := angularVelocity.Scale(dt)
	angle := scaled.Len()
	if !(angle > 0) || math.IsInf(angle, 0) {
		return
	}
	delta := mgl64.QuatRotate(angle, scaled.Vec3().Mul(1/angle))
	pose.Orientation = pose.Orientation.Mul(delta).Normalize()
}

// DragFactor is the fraction of velocity removed in one tick, clamped to
// [0, 1] so a long frame can never reverse the velocity.
func DragFactor(drag, dt float64) float64 {
	f := drag * dt
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1
	}
	return f
}

// ApplyDrag lerps both velocities toward zero by DragFactor.
func ApplyDrag(k *Kinematics, dt float64) {
	f := DragFactor(k.Drag, dt)
	if f == 0 {
		return
	}
	k.Velocity = k.Velocity.Scale(1 - f)
	k.AngularVelocity = k.AngularVelocity.Scale(1 - f)
}

// IntegrateAcceleration is an explicit Euler step of both velocities.
func IntegrateAcceleration(k *Kinematics, dt float64) {
	k.Velocity = k.Velocity.Add(k.Acceleration.Scale(dt))
	k.AngularVelocity = k.AngularVelocity.Add(k.AngularAcceleration.Scale(dt))
}

// Step advances one body by one tick.
// Drag acts on last tick's velocity before new acceleration is added, then
// the updated velocities move the pose.
func Step(pose *Pose, k *Kinematics, dt float64) {
	ApplyDrag(k, dt)
	IntegrateAcceleration(k, dt)
	IntegrateAngular(pose, k.AngularVelocity, dt)
	IntegrateLinear(pose, k.Velocity, dt)
}
