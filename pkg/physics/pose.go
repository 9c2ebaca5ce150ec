package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// Forward is the body-frame direction an agent faces.
	Forward = Local(0, 0, -1)
	// Up is the body-frame up direction.
	Up = Local(0, 1, 0)
)

// Pose is the position and orientation of an agent. Only the integrator
// mutates it during a tick.
type Pose struct {
	Position    WorldVec
	Orientation mgl64.Quat
}

// NewPose creates a pose at position with identity orientation.
func NewPose(position WorldVec) Pose {
	return Pose{
		Position:    position,
		Orientation: mgl64.QuatIdent(),
	}
}

// NewPoseEuler creates a pose rotated by XYZ Euler angles in radians.
func NewPoseEuler(position WorldVec, x, y, z float64) Pose {
	return Pose{
		Position:    position,
		Orientation: mgl64.AnglesToQuat(x, y, z, mgl64.XYZ).Normalize(),
	}
}

// ToWorld rotates a body-frame vector into world space.
func (p Pose) ToWorld(v LocalVec) WorldVec {
	return WorldVec(p.Orientation.Rotate(v.Vec3()))
}

// ToLocal rotates a world-space vector into the body frame.
func (p Pose) ToLocal(v WorldVec) LocalVec {
	return LocalVec(p.Orientation.Conjugate().Rotate(v.Vec3()))
}

// Heading returns the world-space direction the agent faces.
func (p Pose) Heading() WorldVec {
	return p.ToWorld(Forward)
}

// IsFinite reports whether position and orientation are free of NaN/Inf and
// the orientation is still a unit quaternion.
func (p Pose) IsFinite() bool {
	if !p.Position.IsFinite() {
		return false
	}
	q := p.Orientation
	for _, c := range [4]float64{q.W, q.V[0], q.V[1], q.V[2]} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return math.Abs(q.Len()-1) < 1e-6
}
