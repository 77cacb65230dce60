package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateLocalPickup(t *testing.T) {
	d := Estimate(MethodLocalPickup, 42)
	require.NotNil(t, d.Estimate)
	assert.Equal(t, 0.0, *d.Estimate)
	assert.Equal(t, "No shipping charge.", d.Note)
}

func TestEstimatePWE(t *testing.T) {
	tests := []struct {
		units     int
		want      float64
		multiNote bool
	}{
		{1, 2, false},
		{10, 2, false},
		{15, 2, false}, // exactly one envelope
		{16, 4, true},
		{30, 4, true},
		{31, 6, true},
	}
	for _, tt := range tests {
		d := Estimate(MethodPWE, tt.units)
		require.NotNil(t, d.Estimate, "units=%d", tt.units)
		assert.Equal(t, tt.want, *d.Estimate, "units=%d", tt.units)
		if tt.multiNote {
			assert.Contains(t, d.Note, "envelopes")
		} else {
			assert.Contains(t, d.Note, "one envelope")
		}
	}

	// no units selected, no charge
	d := Estimate(MethodPWE, 0)
	require.NotNil(t, d.Estimate)
	assert.Equal(t, 0.0, *d.Estimate)
}

func TestEstimateBMWT(t *testing.T) {
	d := Estimate(MethodBMWT, 79)
	require.NotNil(t, d.Estimate)
	assert.Equal(t, 8.0, *d.Estimate)

	// 80+ cards need manual pricing
	d = Estimate(MethodBMWT, 80)
	assert.Nil(t, d.Estimate)
	assert.Equal(t, "Priority Mail", d.Label)
	assert.Contains(t, d.Note, "requires approval")

	d = Estimate(MethodBMWT, 0)
	require.NotNil(t, d.Estimate)
	assert.Equal(t, 0.0, *d.Estimate)
}

func TestEstimateUnrecognizedMethod(t *testing.T) {
	d := Estimate("Carrier pigeon", 5)
	assert.Nil(t, d.Estimate)
	assert.Equal(t, "Carrier pigeon", d.Label)
	assert.Equal(t, "Shipping cost to be confirmed.", d.Note)
}
