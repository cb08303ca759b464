package livescore

import (
	"sync"
	"time"
)

// Budget controla el cupo diario del plan del feed (y el prorrateo por
// hora, para no quemar el día entero en una tarde de partidos). Es
// independiente del rate limiter de corto plazo del Client.
type Budget struct {
	mu sync.Mutex

	perDay  int
	perHour int

	day       int
	hour      int
	usedDay   int
	usedHour  int
	resetDate time.Time

	now func() time.Time
}

// NewBudget crea un Budget con el límite diario dado.
func NewBudget(perDay int) *Budget {
	if perDay <= 0 {
		perDay = 1500
	}
	return &Budget{
		perDay:  perDay,
		perHour: perDay / 24,
		now:     time.Now,
	}
}

// Allow devuelve true si queda cupo para una petición y la reserva.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()

	if b.usedDay >= b.perDay || b.usedHour >= b.perHour {
		return false
	}
	b.usedDay++
	b.usedHour++
	return true
}

// Remaining devuelve el cupo restante del día.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.perDay - b.usedDay
}

func (b *Budget) resetIfNeeded() {
	now := b.now()
	if now.YearDay() != b.day || now.Year() != b.resetDate.Year() {
		b.day = now.YearDay()
		b.resetDate = now
		b.usedDay = 0
		b.usedHour = 0
		b.hour = now.Hour()
		return
	}
	if now.Hour() != b.hour {
		b.hour = now.Hour()
		b.usedHour = 0
	}
}
