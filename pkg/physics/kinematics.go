package physics

// Kinematics is the integrable motion state of an agent. Every vector is in
// the body frame.
//
// Acceleration and AngularAcceleration are per-tick outputs of the thrust
// converter; they are overwritten every tick and never accumulated.
type Kinematics struct {
	Velocity        LocalVec
	AngularVelocity LocalVec
	// Drag is the damping coefficient, constant after spawn.
	Drag float64

	Acceleration        LocalVec
	AngularAcceleration LocalVec
}

// IsFinite reports whether all vectors are free of NaN/Inf.
func (k *Kinematics) IsFinite() bool {
	return k.Velocity.IsFinite() &&
		k.AngularVelocity.IsFinite() &&
		k.Acceleration.IsFinite() &&
		k.AngularAcceleration.IsFinite()
}
