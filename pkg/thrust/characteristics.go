// Package thrust converts desired impulses into accelerations an agent's
// engines can actually produce.
package thrust

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

// ErrInvalidCharacteristics is returned by Validate for bounds that cannot
// describe a real engine.
var ErrInvalidCharacteristics = errors.New("invalid thrust characteristics")

var axisNames = [3]string{"x", "y", "z"}

// Characteristics are the per-axis acceleration bounds of an agent, in the
// body frame. Min is the most negative and Max the most positive linear
// acceleration on each axis; Rot bounds angular acceleration symmetrically.
type Characteristics struct {
	Min physics.LocalVec
	Max physics.LocalVec
	Rot physics.LocalVec
}

// DefaultCharacteristics returns bounds with strong forward thrust (-Z),
// weak reverse and lateral thrust.
func DefaultCharacteristics() Characteristics {
	return Characteristics{
		Min: physics.Local(-1, -5, -1),
		Max: physics.Local(1, 2, 1),
		Rot: physics.Local(1, 1, 1),
	}
}

// Validate checks min <= 0 <= max and rot > 0 on every axis.
func (c Characteristics) Validate() error {
	for i, axis := range axisNames {
		lo, hi, rot := c.Min[i], c.Max[i], c.Rot[i]
		switch {
		case !isFinite(lo) || !isFinite(hi) || !isFinite(rot):
			return fmt.Errorf("%w: non-finite bound on axis %s", ErrInvalidCharacteristics, axis)
		case lo > 0:
			return fmt.Errorf("%w: min %s = %v must not be positive", ErrInvalidCharacteristics, axis, lo)
		case hi < 0:
			return fmt.Errorf("%w: max %s = %v must not be negative", ErrInvalidCharacteristics, axis, hi)
		case rot <= 0:
			return fmt.Errorf("%w: rot %s = %v must be positive", ErrInvalidCharacteristics, axis, rot)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
