package control

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-flightcore/pkg/thrust"
)

// PlayerPriority runs player input alongside the route sequencer, ahead of
// guidance and conversion.
const PlayerPriority = 50

type pilot struct {
	*ecs.BasicEntity
	controls *thrust.Controls
}

// PlayerSystem writes Controls of player-controlled agents from an
// IntentSource, bypassing guidance.
type PlayerSystem struct {
	Source IntentSource
	Gain   float64
	// Clock reports the current simulation tick. May be nil.
	Clock func() uint64

	pilots []pilot
}

// Add registers a player-controlled agent.
func (s *PlayerSystem) Add(basic *ecs.BasicEntity, controls *thrust.Controls) {
	s.pilots = append(s.pilots, pilot{basic, controls})
}

// Remove satisfies the ecs.System interface
func (s *PlayerSystem) Remove(basic ecs.BasicEntity) {
	for i, p := range s.pilots {
		if p.ID() == basic.ID() {
			s.pilots = append(s.pilots[:i], s.pilots[i+1:]...)
			return
		}
	}
}

// Priority satisfies ecs.Prioritizer.
func (s *PlayerSystem) Priority() int { return PlayerPriority }

// Update satisfies the ecs.System interface
func (s *PlayerSystem) Update(dt float32) { s.Tick(float64(dt)) }

// Tick samples the source for every pilot. Without a source, controls are
// left as they are.
func (s *PlayerSystem) Tick(float64) {
	if s.Source == nil {
		return
	}
	var tick uint64
	if s.Clock != nil {
		tick = s.Clock()
	}
	gain := s.Gain
	if gain == 0 {
		gain = DefaultGain
	}
	for _, p := range s.pilots {
		*p.controls = ApplyIntent(s.Source.Intent(p.ID(), tick), gain)
	}
}
