// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

func TestLocalVec_Add(t *testing.T) {
	tests := []struct {
		name     string
		v1       LocalVec
		v2       LocalVec
		expected LocalVec
	}{
		{
			name:     "positive_vectors",
			v1:       Local(3, 4, 5),
			v2:       Local(1, 2, 3),
			expected: Local(4, 6, 8),
		},
		{
			name:     "mixed_signs",
			v1:       Local(5, -3, 0),
			v2:       Local(-2, 7, -1),
			expected: Local(3, 4, -1),
		},
		{
			name:     "zero_vector",
			v1:       LocalVec{},
			v2:       Local(5, -3, 2),
			expected: Local(5, -3, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.v1.Add(tt.v2)
			if result != tt.expected {
				t.Errorf("Add() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestWorldVec_Sub(t *testing.T) {
	tests := []struct {
		name     string
		v1       WorldVec
		v2       WorldVec
		expected WorldVec
	}{
		{"positive_result", World(5, 7, 9), World(2, 3, 4), World(3, 4, 5)},
		{"negative_result", World(2, 3, 4), World(5, 7, 9), World(-3, -4, -5)},
		{"same_vectors", World(4, 6, 1), World(4, 6, 1), WorldVec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.v1.Sub(tt.v2)
			if result != tt.expected {
				t.Errorf("Sub() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestNormalize_ZeroAndNonFinite(t *testing.T) {
	tests := []struct {
		name string
		v    LocalVec
		want LocalVec
	}{
		{"zero", LocalVec{}, LocalVec{}},
		{"nan", Local(math.NaN(), 0, 0), LocalVec{}},
		{"inf", Local(math.Inf(1), 1, 0), LocalVec{}},
		{"axis", Local(0, 0, -7), Local(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Normalize()
			if got != tt.want {
				t.Errorf("Normalize() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_UnitLength(t *testing.T) {
	v := World(3, -4, 12).Normalize()
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("Len() = %v, expected 1", v.Len())
	}
}

func TestIsFinite(t *testing.T) {
	if !Local(1, 2, 3).IsFinite() {
		t.Error("expected finite vector")
	}
	if Local(1, math.NaN(), 3).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if World(math.Inf(-1), 0, 0).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestWorldVec_Distance(t *testing.T) {
	d := World(1, 2, 3).Distance(World(4, 6, 3))
	if math.Abs(d-5) > 1e-12 {
		t.Errorf("Distance() = %v, expected 5", d)
	}
}
