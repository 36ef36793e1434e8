package consumption

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_GasScenario(t *testing.T) {
	// 120.00 m3 -> 135.50 m3 at R$3.20/m3
	res := Compute(120.00, 135.50, 3.20)

	assert.False(t, res.RolledBack)
	assert.InDelta(t, 15.50, res.Consumption, 1e-9)
	assert.InDelta(t, 49.60, res.Total, 1e-9)
}

func TestCompute_ZeroConsumption(t *testing.T) {
	res := Compute(88.0, 88.0, 5.0)

	assert.False(t, res.RolledBack)
	assert.Equal(t, 0.0, res.Consumption)
	assert.Equal(t, 0.0, res.Total)
}

func TestCompute_RollbackNeverChargesNegative(t *testing.T) {
	res := Compute(135.50, 120.00, 3.20)

	assert.True(t, res.RolledBack)
	assert.Equal(t, 0.0, res.Consumption)
	assert.Equal(t, 0.0, res.Total)
}

func TestCompute_RollbackIgnoresRate(t *testing.T) {
	for _, rate := range []float64{0, 1, 100, 9999.99} {
		res := Compute(50, 49.99, rate)
		assert.True(t, res.RolledBack)
		assert.Equal(t, 0.0, res.Total)
	}
}

func TestCompute_NaNInputs(t *testing.T) {
	nan := math.NaN()

	for _, tc := range [][3]float64{
		{nan, 10, 1},
		{10, nan, 1},
		{10, 20, nan},
	} {
		res := Compute(tc[0], tc[1], tc[2])
		assert.True(t, res.RolledBack)
		assert.Equal(t, 0.0, res.Consumption)
		assert.Equal(t, 0.0, res.Total)
	}
}

func TestCompute_NoInternalRounding(t *testing.T) {
	// 10.333 m3 at R$3.00 is 30.999 exactly; rounding is the caller's job.
	res := Compute(0, 10.333, 3.0)

	assert.False(t, res.RolledBack)
	assert.InDelta(t, 30.999, res.Total, 1e-9)
}

func TestCompute_ZeroRate(t *testing.T) {
	res := Compute(100, 150, 0)

	assert.False(t, res.RolledBack)
	assert.InDelta(t, 50.0, res.Consumption, 1e-9)
	assert.Equal(t, 0.0, res.Total)
}
