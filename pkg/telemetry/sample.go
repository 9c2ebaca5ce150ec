// Package telemetry records periodic flight samples to memory, SQL
// databases or InfluxDB.
package telemetry

import (
	"context"
	"math"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// Sample is one agent's state at one tick. Vectors are flattened so the
// struct maps directly onto a table row.
type Sample struct {
	ID      uint   `gorm:"primarykey" json:"-"`
	Tick    uint64 `gorm:"index" json:"tick"`
	AgentID uint64 `gorm:"index" json:"agentId"`
	Agent   string `gorm:"size:64" json:"agent"`

	PosX float64 `json:"posX"`
	PosY float64 `json:"posY"`
	PosZ float64 `json:"posZ"`

	RotW float64 `json:"rotW"`
	RotX float64 `json:"rotX"`
	RotY float64 `json:"rotY"`
	RotZ float64 `json:"rotZ"`

	VelX float64 `json:"velX"`
	VelY float64 `json:"velY"`
	VelZ float64 `json:"velZ"`

	AngVelX float64 `json:"angVelX"`
	AngVelY float64 `json:"angVelY"`
	AngVelZ float64 `json:"angVelZ"`

	// Acceleration is the magnitude of the commanded body-frame acceleration.
	Acceleration float64 `json:"acceleration"`
	// Utilization is the largest per-axis fraction of thrust capacity in use.
	Utilization float64 `json:"utilization"`
	// TargetDistance is negative when the agent has no target.
	TargetDistance float64 `json:"targetDistance"`
}

// TableName sets the table name for gorm.
func (Sample) TableName() string { return "flight_samples" }

// Position returns the sampled world position.
func (s Sample) Position() physics.WorldVec { return physics.World(s.PosX, s.PosY, s.PosZ) }

// Velocity returns the sampled body-frame velocity.
func (s Sample) Velocity() physics.LocalVec { return physics.Local(s.VelX, s.VelY, s.VelZ) }

// NewSample captures the state of one agent.
func NewSample(tick, agentID uint64, name string, pose physics.Pose, k physics.Kinematics, c thrust.Characteristics, t tracking.Tracker) Sample {
	u := thrust.Utilization(k.Acceleration, c)
	dist := -1.0
	if t.HasTarget {
		dist = pose.Position.Distance(t.Target)
	}
	return Sample{
		Tick:           tick,
		AgentID:        agentID,
		Agent:          name,
		PosX:           pose.Position[0],
		PosY:           pose.Position[1],
		PosZ:           pose.Position[2],
		RotW:           pose.Orientation.W,
		RotX:           pose.Orientation.V[0],
		RotY:           pose.Orientation.V[1],
		RotZ:           pose.Orientation.V[2],
		VelX:           k.Velocity[0],
		VelY:           k.Velocity[1],
		VelZ:           k.Velocity[2],
		AngVelX:        k.AngularVelocity[0],
		AngVelY:        k.AngularVelocity[1],
		AngVelZ:        k.AngularVelocity[2],
		Acceleration:   k.Acceleration.Len(),
		Utilization:    math.Max(math.Abs(u[0]), math.Max(math.Abs(u[1]), math.Abs(u[2]))),
		TargetDistance: dist,
	}
}

// Recorder persists samples. Implementations need not be safe for
// concurrent use; the simulation records from one goroutine.
type Recorder interface {
	Record(ctx context.Context, samples []Sample) error
	Flush(ctx context.Context) error
	Close() error
}
