// Package control adapts abstract player intent into thrust controls.
// Reading physical devices is left to the host.
package control

import (
	"math"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
)

// DefaultGain scales a full-deflection intent into an impulse.
const DefaultGain = 10.0

// Intent is a device-independent control request. Every axis is in [-1, 1].
type Intent struct {
	Surge float64 // forward (+) / back
	Sway  float64 // right (+) / left
	Heave float64 // up (+) / down
	Pitch float64 // nose up (+) / down
	Yaw   float64 // nose left (+) / right
	Roll  float64 // counter-clockwise (+) seen from behind
}

// IsZero reports whether no axis is deflected.
func (i Intent) IsZero() bool { return i == Intent{} }

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// ApplyIntent converts an intent into body-frame impulses. Forward is -Z.
func ApplyIntent(intent Intent, gain float64) thrust.Controls {
	return thrust.Controls{
		Impulse: physics.Local(
			clampAxis(intent.Sway),
			clampAxis(intent.Heave),
			-clampAxis(intent.Surge),
		).Scale(gain),
		AngularImpulse: physics.Local(
			clampAxis(intent.Pitch),
			clampAxis(intent.Yaw),
			clampAxis(intent.Roll),
		).Scale(gain),
	}
}

// IntentSource supplies the intent for a player-controlled agent each tick.
type IntentSource interface {
	Intent(agentID uint64, tick uint64) Intent
}

// IntentFunc adapts a function to IntentSource.
type IntentFunc func(agentID uint64, tick uint64) Intent

// Intent calls f.
func (f IntentFunc) Intent(agentID uint64, tick uint64) Intent { return f(agentID, tick) }

// Step is one segment of a scripted input sequence.
type Step struct {
	Ticks  uint64
	Intent Intent
}

// ScriptedSource replays a fixed sequence of intents for every agent, then
// holds a neutral intent. Useful for demos and tests.
type ScriptedSource struct {
	Steps []Step
	// Loop restarts the sequence instead of going neutral.
	Loop bool
}

// Intent returns the scripted intent for tick.
func (s *ScriptedSource) Intent(_ uint64, tick uint64) Intent {
	var total uint64
	for _, st := range s.Steps {
		total += st.Ticks
	}
	if total == 0 {
		return Intent{}
	}
	if tick >= total {
		if !s.Loop {
			return Intent{}
		}
		tick %= total
	}
	for _, st := range s.Steps {
		if tick < st.Ticks {
			return st.Intent
		}
		tick -= st.Ticks
	}
	return Intent{}
}
