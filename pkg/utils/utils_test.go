package utils

import (
	"strings"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id1 := GenerateRunID()
	id2 := GenerateRunID()

	if id1 == id2 {
		t.Error("GenerateRunID should return unique IDs")
	}
	if !strings.HasPrefix(id1, "run-") {
		t.Errorf("GenerateRunID should start with 'run-': %s", id1)
	}
	// run-YYYYMMDD-HHMMSS-xxxxxxxx
	if parts := strings.Split(id1, "-"); len(parts) != 4 || len(parts[3]) != 8 {
		t.Errorf("unexpected run id shape: %s", id1)
	}
	if err := ValidateRunID(id1); err != nil {
		t.Errorf("generated id must be valid: %v", err)
	}
}

func TestGenerateInstanceID(t *testing.T) {
	if id := GenerateInstanceID("vid_case", "service_a", 3); id != "vid_case-service_a-3" {
		t.Errorf("unexpected instance id %s", id)
	}
}

func TestValidateRunID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"run-1", false},
		{"my_scenario", false},
		{"", true},
		{"a/b", true},
		{"a:stop", true},
		{"with space", true},
	}
	for _, tt := range tests {
		err := ValidateRunID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRunID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{4}, 4},
		{[]float64{10000, 5000, 10000, 8000}, 8250},
	}
	for _, tt := range tests {
		if got := Mean(tt.values); got != tt.want {
			t.Errorf("Mean(%v) = %f, want %f", tt.values, got, tt.want)
		}
	}
	if got := Sum([]float64{1, 2, 3.5}); got != 6.5 {
		t.Errorf("Sum = %f, want 6.5", got)
	}
}
