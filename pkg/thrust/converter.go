package thrust

import (
	"math"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

// Controls are the per-tick desired impulses written by guidance or player
// input. Both are body-frame and carry direction, not a magnitude budget.
type Controls struct {
	Impulse        physics.LocalVec
	AngularImpulse physics.LocalVec
}

// Linear converts a desired impulse into the largest acceleration along
// the same direction that fits inside the box [min, max].
//
// The engines always fire at full authority on the binding axis, so the
// output magnitude does not depend on |impulse|. A zero or non-finite
// impulse yields zero acceleration.
func Linear(impulse physics.LocalVec, c Characteristics) physics.LocalVec {
	return saturate(impulse, c.Min, c.Max)
}

// Angular is Linear for rotation, with symmetric bounds [-rot, rot].
func Angular(angularImpulse physics.LocalVec, c Characteristics) physics.LocalVec {
	return saturate(angularImpulse, c.Rot.Scale(-1), c.Rot)
}

func saturate(impulse, lo, hi physics.LocalVec) physics.LocalVec {
	lenSqr := impulse.LenSqr()
	if !(lenSqr > 0) || math.IsInf(lenSqr, 0) {
		return physics.LocalVec{}
	}
	d := impulse.Normalize()

	scale := math.Inf(1)
	for i := 0; i < 3; i++ {
		var s float64
		switch {
		case d[i] > 0:
			s = hi[i] / d[i]
		case d[i] < 0:
			s = lo[i] / d[i]
		default:
			continue
		}
		if s >= 0 && s < scale {
			scale = s
		}
	}
	if math.IsInf(scale, 0) {
		return physics.LocalVec{}
	}
	return d.Scale(scale)
}

// Utilization reports, per axis, the fraction of the available bound that
// an acceleration uses. Values are in [0, 1].
func Utilization(acceleration physics.LocalVec, c Characteristics) physics.LocalVec {
	var u physics.LocalVec
	for i := 0; i < 3; i++ {
		a := acceleration[i]
		var bound float64
		switch {
		case a > 0:
			bound = c.Max[i]
		case a < 0:
			bound = -c.Min[i]
		default:
			continue
		}
		if bound <= 0 {
			continue
		}
		u[i] = math.Min(math.Abs(a)/bound, 1)
	}
	return u
}

// Apply converts both impulses and overwrites the agent's accelerations.
func Apply(controls Controls, c Characteristics, k *physics.Kinematics) {
	k.Acceleration = Linear(controls.Impulse, c)
	k.AngularAcceleration = Angular(controls.AngularImpulse, c)
}
