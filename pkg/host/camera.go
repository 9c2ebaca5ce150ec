package host

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// Subjects resolves which agent a named camera follows.
type Subjects interface {
	tracking.Locator
	CameraSubject(camera string) (uint64, bool)
}

// CameraRig follows the agent that claimed its camera, chasing a point
// offset in the agent's body frame.
type CameraRig struct {
	Name string

	subjects Subjects

	// Offset is the eye position in the subject's body frame.
	Offset physics.LocalVec

	// Smooth following
	followSpeed float64
	smoothing   bool

	eye     physics.WorldVec
	focus   physics.WorldVec
	hasView bool
}

// NewCameraRig creates a rig that sits behind and above its subject.
func NewCameraRig(name string, subjects Subjects) *CameraRig {
	return &CameraRig{
		Name:        name,
		subjects:    subjects,
		Offset:      physics.Local(0, 3, 12),
		followSpeed: 2.0,
		smoothing:   true,
	}
}

// Remove satisfies the ecs.System interface
func (c *CameraRig) Remove(ecs.BasicEntity) {}

// Priority runs cameras after the simulation stepped.
func (c *CameraRig) Priority() int { return -10 }

// Update moves the eye toward the subject. Without a live subject the rig
// holds its last view.
func (c *CameraRig) Update(dt float32) {
	id, ok := c.subjects.CameraSubject(c.Name)
	if !ok {
		return
	}
	pose, _, ok := c.subjects.Locate(id)
	if !ok {
		return
	}
	desired := pose.Position.Add(pose.ToWorld(c.Offset))
	c.focus = pose.Position

	if !c.smoothing || !c.hasView {
		c.eye = desired
		c.hasView = true
		return
	}
	t := c.followSpeed * float64(dt)
	if t > 1 {
		t = 1
	}
	c.eye = c.eye.Add(desired.Sub(c.eye).Scale(t))
}

// View returns the eye position and the point it looks at.
func (c *CameraRig) View() (eye, focus physics.WorldVec, ok bool) {
	return c.eye, c.focus, c.hasView
}

// SetFollowSpeed sets the camera follow speed
func (c *CameraRig) SetFollowSpeed(speed float64) {
	c.followSpeed = speed
}

// EnableSmoothing enables or disables camera smoothing
func (c *CameraRig) EnableSmoothing(enabled bool) {
	c.smoothing = enabled
}
