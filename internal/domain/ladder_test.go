package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddTicks_WithinBand(t *testing.T) {
	assert.InDelta(t, 1.52, AddTicks(1.50, 2, LadderClassic), 1e-9)
	assert.InDelta(t, 2.10, AddTicks(2.00, 5, LadderClassic), 1e-9)
	assert.InDelta(t, 4.3, AddTicks(4.0, 3, LadderClassic), 1e-9)
}

func TestAddTicks_CrossesBandBoundary(t *testing.T) {
	// 1.99 → 2.00 (incremento 0.01) → 2.02 (incremento 0.02).
	assert.InDelta(t, 2.02, AddTicks(1.99, 2, LadderClassic), 1e-9)
	// 2.98 → 3.00 → 3.05.
	assert.InDelta(t, 3.05, AddTicks(2.98, 2, LadderClassic), 1e-9)
	// 5.9 → 6.0 → 6.2.
	assert.InDelta(t, 6.2, AddTicks(5.9, 2, LadderClassic), 1e-9)
}

func TestAddTicks_Negative(t *testing.T) {
	assert.InDelta(t, 1.99, AddTicks(2.00, -1, LadderClassic), 1e-9)
	// Cruce hacia abajo: 3.00 − 1 tick = 2.98 (incremento de la banda 2-3).
	assert.InDelta(t, 2.98, AddTicks(3.00, -1, LadderClassic), 1e-9)
	// Nunca por debajo del mínimo.
	assert.InDelta(t, 1.01, AddTicks(1.02, -5, LadderClassic), 1e-9)
}

func TestAddTicks_Finest(t *testing.T) {
	assert.InDelta(t, 2.03, AddTicks(2.00, 3, LadderFinest), 1e-9)
	assert.InDelta(t, 6.02, AddTicks(6.00, 2, LadderFinest), 1e-9)
}

func TestTicksBetween(t *testing.T) {
	assert.Equal(t, 5, TicksBetween(1.50, 1.55, LadderClassic))
	assert.Equal(t, 0, TicksBetween(1.55, 1.50, LadderClassic))
	assert.Equal(t, 0, TicksBetween(2.00, 2.00, LadderClassic))

	// Cruce de banda: 1.98→2.00 son 2 ticks de 0.01, 2.00→2.04 son 2 de
	// 0.02: total 4.
	assert.Equal(t, 4, TicksBetween(1.98, 2.04, LadderClassic))

	// FINEST ignora bandas.
	assert.Equal(t, 6, TicksBetween(1.98, 2.04, LadderFinest))
}

func TestRoundToValidPrice(t *testing.T) {
	assert.InDelta(t, 1.50, RoundToValidPrice(1.50, LadderClassic), 1e-9)
	assert.InDelta(t, 2.02, RoundToValidPrice(2.013, LadderClassic), 1e-9)
	assert.InDelta(t, 3.05, RoundToValidPrice(3.06, LadderClassic), 1e-9)
	assert.InDelta(t, 1.01, RoundToValidPrice(0.5, LadderClassic), 1e-9)
}

func TestIsValidPrice(t *testing.T) {
	assert.True(t, IsValidPrice(1.01, LadderClassic))
	assert.True(t, IsValidPrice(2.02, LadderClassic))
	assert.True(t, IsValidPrice(6.2, LadderClassic))
	assert.False(t, IsValidPrice(2.01, LadderClassic))
	assert.False(t, IsValidPrice(6.1, LadderClassic))
}
