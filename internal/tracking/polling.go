package tracking

import (
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Intervals define las cadencias de polling por nivel de urgencia.
type Intervals struct {
	Default     time.Duration // sin partidos cerca de la ventana
	Intensive   time.Duration // partidos dentro de la ventana de decisión
	Fast        time.Duration // calificados dentro del minuto 75
	FastEnabled bool
}

// DefaultIntervals son las cadencias estándar: 60s / 10s / 1s.
func DefaultIntervals() Intervals {
	return Intervals{
		Default:     60 * time.Second,
		Intensive:   10 * time.Second,
		Fast:        time.Second,
		FastEnabled: true,
	}
}

// FeedInterval calcula la cadencia de consulta del feed en vivo:
//
//   - algún partido en 60-74 monitorizando o calificado: intensiva
//   - algún calificado o listo en 74-76: intensiva
//   - resto: por defecto
func (iv Intervals) FeedInterval(trackers []*domain.Tracker) time.Duration {
	for _, t := range trackers {
		min, state := t.Minute(), t.State()
		switch {
		case min >= 60 && min < 74 &&
			(state == domain.StateMonitoring60_74 || state == domain.StateQualified):
			return iv.Intensive
		case min >= 74 && min < 76 &&
			(state == domain.StateQualified || state == domain.StateReadyForBet):
			return iv.Intensive
		}
	}
	return iv.Default
}

// ExchangeInterval calcula la cadencia de consulta de precios del exchange:
//
//   - calificado o listo en 74-76 sin apuesta resuelta: rápida
//   - calificado en 60-74: intensiva
//   - resto: por defecto
func (iv Intervals) ExchangeInterval(trackers []*domain.Tracker) time.Duration {
	intensive := false
	for _, t := range trackers {
		min, state := t.Minute(), t.State()
		if min >= 74 && min < 76 && t.BetAllowed() &&
			(state == domain.StateQualified || state == domain.StateReadyForBet) {
			if iv.FastEnabled {
				return iv.Fast
			}
			intensive = true
			continue
		}
		if min >= 60 && min < 74 && state == domain.StateQualified {
			intensive = true
		}
	}
	if intensive {
		return iv.Intensive
	}
	return iv.Default
}
