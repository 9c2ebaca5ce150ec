package tracking

import (
	"fmt"
	"strings"
)

// Facing selects what the angular guidance law turns an agent toward.
type Facing int

const (
	// FaceNone leaves rotation to whatever wrote the AngularImpulse.
	FaceNone Facing = iota
	// FaceTarget points the forward axis at the Target.
	FaceTarget
	// FaceAcceleration points the forward axis along the agent's own
	// acceleration, so the main engine does the pushing.
	FaceAcceleration
)

var facingNames = map[Facing]string{
	FaceNone:         "none",
	FaceTarget:       "target",
	FaceAcceleration: "acceleration",
}

func (f Facing) String() string {
	if name, ok := facingNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Facing(%d)", int(f))
}

// ParseFacing converts a configuration string into a Facing. The empty
// string is FaceNone.
func ParseFacing(s string) (Facing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FaceNone, nil
	}
	for f, name := range facingNames {
		if name == s {
			return f, nil
		}
	}
	return FaceNone, fmt.Errorf("unknown facing mode %q", s)
}

// Behavior selects which guidance laws drive an agent.
type Behavior struct {
	// Intercept enables translational guidance toward the Target.
	Intercept bool
	Facing    Facing
}

// Active reports whether any guidance law is engaged.
func (b Behavior) Active() bool {
	return b.Intercept || b.Facing != FaceNone
}
