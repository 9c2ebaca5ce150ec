package telemetry

import (
	"context"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/logging"
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// TelemetryPriority runs the recorder after the integrator, so samples
// show the state at the end of the tick.
const TelemetryPriority = 0

type recorded struct {
	*ecs.BasicEntity
	name            string
	pose            *physics.Pose
	kinematics      *physics.Kinematics
	characteristics *thrust.Characteristics
	tracker         *tracking.Tracker
}

// TelemetrySystem samples every registered agent every Interval ticks.
// Recorder failures are logged and never stop the simulation.
type TelemetrySystem struct {
	Recorder Recorder
	Interval uint64
	Logger   *logging.Logger
	// Clock reports the current simulation tick. May be nil.
	Clock func() uint64

	entities []recorded
	ticks    uint64
	failures uint64
}

// Add registers an agent for sampling.
func (s *TelemetrySystem) Add(basic *ecs.BasicEntity, name string, pose *physics.Pose, k *physics.Kinematics,
	c *thrust.Characteristics, t *tracking.Tracker) {
	s.entities = append(s.entities, recorded{basic, name, pose, k, c, t})
}

// Remove satisfies the ecs.System interface
func (s *TelemetrySystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entities {
		if e.ID() == basic.ID() {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *TelemetrySystem) Priority() int { return TelemetryPriority }

// Update satisfies the ecs.System interface
func (s *TelemetrySystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick records a batch when the interval has elapsed.
func (s *TelemetrySystem) Tick(float64) {
	s.ticks++
	if s.Recorder == nil || len(s.entities) == 0 {
		return
	}
	interval := s.Interval
	if interval == 0 {
		interval = 1
	}
	if s.ticks%interval != 0 {
		return
	}

	tick := s.ticks
	if s.Clock != nil {
		tick = s.Clock()
	}
	batch := make([]Sample, 0, len(s.entities))
	for _, e := range s.entities {
		batch = append(batch, NewSample(tick, e.ID(), e.name, *e.pose, *e.kinematics, *e.characteristics, *e.tracker))
	}
	if err := s.Recorder.Record(context.Background(), batch); err != nil {
		s.failures++
		if s.Logger != nil {
			s.Logger.Warn(context.Background(), "telemetry record failed",
				"tick", tick,
				"samples", len(batch),
				"failures", s.failures,
				"error", err.Error(),
			)
		}
	}
}

// Failures returns the number of batches the recorder rejected.
func (s *TelemetrySystem) Failures() uint64 { return s.failures }
