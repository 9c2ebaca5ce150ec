package tracking

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

// DefaultDamping is the velocity look-ahead, in seconds, used by intercept
// guidance.
const DefaultDamping = 4.0

// GuidanceConfig tunes the guidance laws.
type GuidanceConfig struct {
	// Damping scales how far ahead the agent's own velocity is projected
	// when aiming at the target. Larger values brake earlier.
	Damping float64
}

// DefaultGuidanceConfig returns the standard tuning.
func DefaultGuidanceConfig() GuidanceConfig {
	return GuidanceConfig{Damping: DefaultDamping}
}

// parallelEps is the cross-product length below which a look direction is
// treated as parallel to world up.
const parallelEps = 1e-9

var (
	worldUp = mgl64.Vec3{0, 1, 0}
	altUp   = mgl64.Vec3{0, 0, 1}
)

// LookRotation returns the orientation whose forward axis (-Z) points along
// direction with +Y kept as close to world up as possible. It returns false
// for a zero or non-finite direction.
func LookRotation(direction physics.WorldVec) (mgl64.Quat, bool) {
	f := direction.Normalize().Vec3()
	if f == (mgl64.Vec3{}) {
		return mgl64.QuatIdent(), false
	}

	right := f.Cross(worldUp)
	if right.Len() < parallelEps {
		right = f.Cross(altUp)
	}
	right = right.Normalize()
	up := right.Cross(f)

	m := mgl64.Mat3FromCols(right, up, f.Mul(-1))
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize(), true
}

// OrientationError returns the rotation, as a body-frame scaled axis, that
// takes current to desired along the short way around.
func OrientationError(current, desired mgl64.Quat) physics.LocalVec {
	diff := desired.Mul(current.Conjugate())
	if desired.Dot(current) <= 0 {
		diff = diff.Scale(-1)
	}
	diff = diff.Normalize()

	s := diff.V.Len()
	if !(s > 0) || math.IsInf(s, 0) {
		return physics.LocalVec{}
	}
	angle := 2 * math.Atan2(s, diff.W)
	world := diff.V.Mul(angle / s)
	return physics.LocalVec(current.Conjugate().Rotate(world))
}

// AngularImpulse is the rotational guidance law. With a desired orientation
// it closes the orientation error while damping the current rate; without
// one it only damps the rate.
func AngularImpulse(pose physics.Pose, angularVelocity physics.LocalVec, desired mgl64.Quat, hasDesired bool) physics.LocalVec {
	var e physics.LocalVec
	if hasDesired {
		e = OrientationError(pose.Orientation, desired)
	}
	return physics.LocalVec(sqrtLaw(e.Sub(angularVelocity).Vec3()))
}

// InterceptImpulse is the translational guidance law. It aims at the target
// minus the agent's own velocity projected damping seconds ahead and returns
// a body-frame impulse.
func InterceptImpulse(pose physics.Pose, velocity physics.LocalVec, target physics.WorldVec, damping float64) physics.LocalVec {
	dir := target.Sub(pose.Position).Sub(pose.ToWorld(velocity).Scale(damping))
	return pose.ToLocal(physics.WorldVec(sqrtLaw(dir.Vec3())))
}

// sqrtLaw keeps the direction of x and replaces its length with sqrt(2|x|),
// the minimum-time approach profile under constant acceleration.
func sqrtLaw(x mgl64.Vec3) mgl64.Vec3 {
	l := x.Len()
	if !(l > 0) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return x.Mul(math.Sqrt(2*l) / l)
}
