package thrust

import (
	"errors"
	"math"
	"testing"

	"github.com/opd-ai/go-flightcore/pkg/physics"
)

func TestCharacteristics_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Characteristics)
		wantErr bool
	}{
		{"default", func(c *Characteristics) {}, false},
		{"zero_linear", func(c *Characteristics) { c.Min, c.Max = physics.LocalVec{}, physics.LocalVec{} }, false},
		{"positive_min", func(c *Characteristics) { c.Min[1] = 0.5 }, true},
		{"negative_max", func(c *Characteristics) { c.Max[2] = -0.5 }, true},
		{"zero_rot", func(c *Characteristics) { c.Rot[0] = 0 }, true},
		{"nan_bound", func(c *Characteristics) { c.Max[0] = math.NaN() }, true},
		{"inf_rot", func(c *Characteristics) { c.Rot[2] = math.Inf(1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCharacteristics()
			tt.modify(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCharacteristics) {
				t.Errorf("Validate() error = %v, expected ErrInvalidCharacteristics", err)
			}
		})
	}
}
