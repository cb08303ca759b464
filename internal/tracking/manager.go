// Package tracking mantiene el conjunto de partidos en seguimiento: alta
// por emparejamiento exchange-feed, refresco por ciclo de polling y limpieza
// de trackers terminales.
package tracking

import (
	"log/slog"
	"sync"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Manager es el registro de trackers activos, indexado por event ID del
// exchange. El mutex protege el mapa; cada tracker lo muta solo el ciclo de
// polling.
type Manager struct {
	mu       sync.RWMutex
	trackers map[string]*domain.Tracker
}

// NewManager crea un registro vacío.
func NewManager() *Manager {
	return &Manager{trackers: make(map[string]*domain.Tracker)}
}

// Add registra un tracker. Sobrescribe si ya existía el event ID.
func (m *Manager) Add(t *domain.Tracker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackers[t.EventID] = t
	slog.Info("tracker added", "event", t.EventName, "event_id", t.EventID)
}

// Get devuelve el tracker de un evento, nil si no existe.
func (m *Manager) Get(eventID string) *domain.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trackers[eventID]
}

// Remove elimina el tracker de un evento.
func (m *Manager) Remove(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trackers[eventID]; ok {
		delete(m.trackers, eventID)
		slog.Info("tracker removed", "event", t.EventName, "event_id", eventID)
	}
}

// All devuelve todos los trackers activos.
func (m *Manager) All() []*domain.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Tracker, 0, len(m.trackers))
	for _, t := range m.trackers {
		out = append(out, t)
	}
	return out
}

// Len devuelve el número de trackers activos.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trackers)
}

// ReadyForBet devuelve los trackers en READY_FOR_BET sin intento de apuesta
// previo.
func (m *Manager) ReadyForBet() []*domain.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Tracker
	for _, t := range m.trackers {
		if t.IsReadyForBet() && t.BetAllowed() {
			out = append(out, t)
		}
	}
	return out
}

// CleanupFinished elimina los trackers de partidos terminados y devuelve
// cuántos quitó.
func (m *Manager) CleanupFinished() int {
	return m.cleanup(domain.StateFinished)
}

// CleanupDisqualified elimina los trackers descartados y devuelve cuántos
// quitó.
func (m *Manager) CleanupDisqualified() int {
	return m.cleanup(domain.StateDisqualified)
}

func (m *Manager) cleanup(state domain.MatchState) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, t := range m.trackers {
		if t.State() == state {
			delete(m.trackers, id)
			removed++
			slog.Debug("tracker cleaned up", "event", t.EventName, "state", state)
		}
	}
	return removed
}

// Statuses devuelve el snapshot de estado de todos los trackers, para la
// tabla de seguimiento.
func (m *Manager) Statuses() []domain.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Status, 0, len(m.trackers))
	for _, t := range m.trackers {
		out = append(out, t.GetStatus())
	}
	return out
}
