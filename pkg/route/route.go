// Package route sequences an agent through an endless patrol of waypoints.
package route

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
)

// ErrEmptyRoute is returned when a route is built without waypoints.
var ErrEmptyRoute = errors.New("route has no waypoints")

// WaypointKind tells the two kinds of waypoint apart.
type WaypointKind int

const (
	// Point is a fixed world position.
	Point WaypointKind = iota
	// Entity follows another agent.
	Entity
)

// Waypoint is either a fixed world position or a reference to an agent.
type Waypoint struct {
	Kind     WaypointKind
	Position physics.WorldVec
	EntityID uint64
}

// PointWaypoint creates a waypoint at a fixed position.
func PointWaypoint(p physics.WorldVec) Waypoint {
	return Waypoint{Kind: Point, Position: p}
}

// EntityWaypoint creates a waypoint that follows agent id.
func EntityWaypoint(id uint64) Waypoint {
	return Waypoint{Kind: Entity, EntityID: id}
}

func (w Waypoint) String() string {
	if w.Kind == Entity {
		return fmt.Sprintf("entity(%d)", w.EntityID)
	}
	return fmt.Sprintf("point(%.2f, %.2f, %.2f)", w.Position[0], w.Position[1], w.Position[2])
}

// Route is an ordered, wrapping list of waypoints. The current index is
// always valid.
type Route struct {
	waypoints []Waypoint
	current   int
}

// NewRoute builds a route starting at the first waypoint.
func NewRoute(waypoints ...Waypoint) (*Route, error) {
	if len(waypoints) == 0 {
		return nil, ErrEmptyRoute
	}
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return &Route{waypoints: wps}, nil
}

// Current returns the waypoint being sought.
func (r *Route) Current() Waypoint { return r.waypoints[r.current] }

// Index returns the position of the current waypoint.
func (r *Route) Index() int { return r.current }

// Len returns the number of waypoints.
func (r *Route) Len() int { return len(r.waypoints) }

// Waypoints returns a copy of the waypoint list.
func (r *Route) Waypoints() []Waypoint {
	out := make([]Waypoint, len(r.waypoints))
	copy(out, r.waypoints)
	return out
}

// Advance moves to the next waypoint, wrapping to the first after the last.
func (r *Route) Advance() {
	r.current = (r.current + 1) % len(r.waypoints)
}

// DefaultArrivalRadius is the distance at which a waypoint counts as reached.
var DefaultArrivalRadius = math.Sqrt(20)

// SequencerConfig tunes waypoint arrival.
type SequencerConfig struct {
	ArrivalRadius float64
}

// DefaultSequencerConfig returns the standard arrival radius.
func DefaultSequencerConfig() SequencerConfig {
	return SequencerConfig{ArrivalRadius: DefaultArrivalRadius}
}

// Materialize writes the current waypoint into the tracker. A point
// waypoint sets the Target and drops any entity reference so the resolver
// cannot overwrite it with stale data; an entity waypoint sets the
// reference and leaves resolution to tracking.
func Materialize(r *Route, t *tracking.Tracker) {
	wp := r.Current()
	switch wp.Kind {
	case Point:
		t.ClearEntity()
		t.SetTarget(wp.Position)
	case Entity:
		t.Track(wp.EntityID)
	}
}

// Arrived reports whether the agent is within radius of the current
// waypoint. For an entity waypoint the Target must already have been
// resolved from that entity.
func Arrived(pose physics.Pose, r *Route, t *tracking.Tracker, radius float64) bool {
	wp := r.Current()
	if !t.HasTarget {
		return false
	}
	if wp.Kind == Entity && !t.ResolvedFrom(wp.EntityID) {
		return false
	}
	return pose.Position.Sub(t.Target).LenSqr() < radius*radius
}

// Sequence runs one tick of the sequencer for one agent: materialize the
// current waypoint and, on arrival, advance once and materialize the next.
// It returns true when the route advanced.
func Sequence(pose physics.Pose, r *Route, t *tracking.Tracker, cfg SequencerConfig) bool {
	Materialize(r, t)
	if !Arrived(pose, r, t, cfg.ArrivalRadius) {
		return false
	}
	r.Advance()
	Materialize(r, t)
	return true
}
