package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"30ms", 30 * time.Millisecond, false},
		{"10s", 10 * time.Second, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"", 0, false},
		{"invalid", 0, true},
		{"3dx", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"20m", 20, false},
		{"1.5km", 1500, false},
		{"1nm", 1852, false},
		{"100ft", 30.48, false},
		{"500", 500, false},
		{"10x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDistance(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestUnitsYAML(t *testing.T) {
	type unitsDoc struct {
		Time   Duration `yaml:"time"`
		Dist   Distance `yaml:"dist"`
		Radius Distance `yaml:"radius"`
	}

	var doc unitsDoc
	assert.NoError(t, yaml.Unmarshal([]byte("time: 2d\ndist: 5km\nradius: 25\n"), &doc))
	assert.Equal(t, 48*time.Hour, doc.Time.Std())
	assert.Equal(t, 5000.0, doc.Dist.Meters())
	assert.Equal(t, 25.0, doc.Radius.Meters())

	out, err := yaml.Marshal(unitsDoc{Time: Duration(30 * time.Millisecond), Dist: Distance(20), Radius: Distance(12.5)})
	assert.NoError(t, err)
	assert.Contains(t, string(out), "time: 30ms")
	assert.Contains(t, string(out), "dist: 20m")
	assert.Contains(t, string(out), "radius: 12.5m")
}
