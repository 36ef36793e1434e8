package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCurrency(t *testing.T) {
	assert.Equal(t, 49.60, RoundCurrency(49.6000000001))
	assert.Equal(t, 468.0, RoundCurrency(468.0))
	assert.Equal(t, 0.13, RoundCurrency(0.125))
	assert.Equal(t, -0.13, RoundCurrency(-0.125))
	assert.Equal(t, 0.0, RoundCurrency(0))
}

func TestBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", BRL(0))
	assert.Equal(t, "R$ 49,60", BRL(49.60))
	assert.Equal(t, "R$ 1.234,56", BRL(1234.56))
	assert.Equal(t, "R$ 1.234.567,89", BRL(1234567.89))
	assert.Equal(t, "-R$ 320,40", BRL(-320.40))
}

func TestCubicMeters(t *testing.T) {
	assert.Equal(t, "15.50 m³", CubicMeters(15.5))
}
