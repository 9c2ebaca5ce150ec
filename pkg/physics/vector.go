// Package physics holds the kinematic state of simulated agents and the
// fixed-step integrator that advances it.
//
// Two vector types keep reference frames apart: LocalVec is expressed in an
// agent's body frame (velocities, accelerations, impulses, thrust bounds) and
// WorldVec in world space (positions, targets). The only way to move a vector
// between frames is through a Pose.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LocalVec is a 3D vector in an agent's body frame. Forward is -Z, up is +Y.
type LocalVec mgl64.Vec3

// WorldVec is a 3D vector in world space.
type WorldVec mgl64.Vec3

// Local builds a body-frame vector.
func Local(x, y, z float64) LocalVec {
	return LocalVec{x, y, z}
}

// World builds a world-space vector.
func World(x, y, z float64) WorldVec {
	return WorldVec{x, y, z}
}

// Vec3 returns the untagged vector.
func (v LocalVec) Vec3() mgl64.Vec3 { return mgl64.Vec3(v) }

// Add returns the sum of two vectors
func (v LocalVec) Add(other LocalVec) LocalVec {
	return LocalVec(v.Vec3().Add(other.Vec3()))
}

// Sub returns the difference between two vectors
func (v LocalVec) Sub(other LocalVec) LocalVec {
	return LocalVec(v.Vec3().Sub(other.Vec3()))
}

// Scale multiplies the vector by a scalar value
func (v LocalVec) Scale(factor float64) LocalVec {
	return LocalVec(v.Vec3().Mul(factor))
}

// Len returns the magnitude of the vector
func (v LocalVec) Len() float64 { return v.Vec3().Len() }

// LenSqr returns magnitude squared
func (v LocalVec) LenSqr() float64 { return v.Vec3().LenSqr() }

// Normalize returns a unit vector in the same direction, or the zero vector.
func (v LocalVec) Normalize() LocalVec {
	return LocalVec(normalize(v.Vec3()))
}

// Dot returns the dot product of two vectors
func (v LocalVec) Dot(other LocalVec) float64 { return v.Vec3().Dot(other.Vec3()) }

// IsZero reports whether every component is exactly zero.
func (v LocalVec) IsZero() bool { return v == LocalVec{} }

// IsFinite reports whether no component is NaN or infinite.
func (v LocalVec) IsFinite() bool { return finite(v.Vec3()) }

// Vec3 returns the untagged vector.
func (v WorldVec) Vec3() mgl64.Vec3 { return mgl64.Vec3(v) }

// Add returns the sum of two vectors
func (v WorldVec) Add(other WorldVec) WorldVec {
	return WorldVec(v.Vec3().Add(other.Vec3()))
}

// Sub returns the difference between two vectors
func (v WorldVec) Sub(other WorldVec) WorldVec {
	return WorldVec(v.Vec3().Sub(other.Vec3()))
}

// Scale multiplies the vector by a scalar value
func (v WorldVec) Scale(factor float64) WorldVec {
	return WorldVec(v.Vec3().Mul(factor))
}

// Len returns the magnitude of the vector
func (v WorldVec) Len() float64 { return v.Vec3().Len() }

// LenSqr returns magnitude squared (optimization for comparisons)
func (v WorldVec) LenSqr() float64 { return v.Vec3().LenSqr() }

// Normalize returns a unit vector in the same direction, or the zero vector.
func (v WorldVec) Normalize() WorldVec {
	return WorldVec(normalize(v.Vec3()))
}

// Dot returns the dot product of two vectors
func (v WorldVec) Dot(other WorldVec) float64 { return v.Vec3().Dot(other.Vec3()) }

// Distance returns the distance between two points
func (v WorldVec) Distance(other WorldVec) float64 { return v.Sub(other).Len() }

// IsZero reports whether every component is exactly zero.
func (v WorldVec) IsZero() bool { return v == WorldVec{} }

// IsFinite reports whether no component is NaN or infinite.
func (v WorldVec) IsFinite() bool { return finite(v.Vec3()) }

// normalize is mgl64's Normalize without the divide-by-zero.
func normalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / length)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
