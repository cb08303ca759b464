package livescore

import (
	"context"
	"fmt"
	"sync"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// MockFeed sirve partidos guionizados para el modo test. Los snapshots se
// pueden ir sustituyendo entre ciclos para simular el avance del reloj.
// Implementa ports.LiveFeed.
type MockFeed struct {
	mu      sync.Mutex
	matches []domain.LiveMatch
	details map[string]domain.LiveMatch
}

// NewMockFeed crea un feed simulado vacío.
func NewMockFeed() *MockFeed {
	return &MockFeed{details: make(map[string]domain.LiveMatch)}
}

// SetSnapshot sustituye el estado del feed simulado.
func (f *MockFeed) SetSnapshot(matches []domain.LiveMatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = matches
	for _, m := range matches {
		f.details[m.ID] = m
	}
}

func (f *MockFeed) LiveMatches(_ context.Context, competitionIDs []string) ([]domain.LiveMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[string]bool, len(competitionIDs))
	for _, id := range competitionIDs {
		wanted[id] = true
	}
	out := make([]domain.LiveMatch, 0, len(f.matches))
	for _, m := range f.matches {
		if len(wanted) > 0 && !wanted[m.CompetitionID] {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *MockFeed) MatchDetails(_ context.Context, matchID string) (domain.LiveMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.details[matchID]
	if !ok {
		return domain.LiveMatch{}, fmt.Errorf("livescore.MockFeed: match %s not scripted", matchID)
	}
	return m, nil
}
