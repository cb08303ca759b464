package betfair

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// MockExchange simula el exchange en modo test: sirve los datos con los
// que se construye y registra las órdenes sin enviarlas a ningún sitio.
// Implementa ports.MarketProvider, ports.BetPlacer y ports.Session.
type MockExchange struct {
	mu sync.Mutex

	Events       []domain.Event
	Competitions []domain.Competition
	Markets      map[string][]domain.Market // por event ID
	Books        map[string]domain.MarketBook

	Balance float64

	betCounter int
	orders     []domain.LayOrder
}

// NewMockExchange crea un mock con el saldo simulado dado.
func NewMockExchange(balance float64) *MockExchange {
	slog.Info("mock exchange active, no real orders will be sent", "balance", balance)
	return &MockExchange{
		Markets: make(map[string][]domain.Market),
		Books:   make(map[string]domain.MarketBook),
		Balance: balance,
	}
}

func (m *MockExchange) ListInPlayEvents(_ context.Context, competitionIDs []string) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(competitionIDs) == 0 {
		return m.Events, nil
	}
	allowed := make(map[string]struct{}, len(competitionIDs))
	for _, id := range competitionIDs {
		allowed[id] = struct{}{}
	}
	var out []domain.Event
	for _, ev := range m.Events {
		if _, ok := allowed[ev.CompetitionID]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockExchange) ListCompetitions(context.Context) ([]domain.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Competitions, nil
}

func (m *MockExchange) OverUnderMarkets(_ context.Context, eventID string) ([]domain.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Markets[eventID], nil
}

func (m *MockExchange) MarketBook(_ context.Context, marketID string) (domain.MarketBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.Books[marketID]
	if !ok {
		return domain.MarketBook{}, fmt.Errorf("betfair.MockExchange: market %s not scripted", marketID)
	}
	return book, nil
}

// PlaceLay registra la orden y devuelve una confirmación simulada sin
// casar (orderStatus EXECUTABLE, sizeMatched 0), como el modo test del
// exchange real.
func (m *MockExchange) PlaceLay(_ context.Context, order domain.LayOrder) (domain.PlacedBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.betCounter++
	m.orders = append(m.orders, order)

	betID := fmt.Sprintf("TEST_%d_%d", time.Now().UnixMilli(), m.betCounter)
	slog.Info("simulated lay order",
		"market_id", order.MarketID,
		"selection_id", order.SelectionID,
		"price", order.Price,
		"size", order.Size,
		"bet_id", betID,
	)
	return domain.PlacedBet{
		BetID:       betID,
		Status:      "SUCCESS",
		OrderStatus: "EXECUTABLE",
		PlacedAt:    time.Now(),
	}, nil
}

func (m *MockExchange) AvailableBalance(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Balance, nil
}

func (m *MockExchange) Login(context.Context) error     { return nil }
func (m *MockExchange) KeepAlive(context.Context) error { return nil }

// Orders devuelve las órdenes simuladas registradas hasta ahora.
func (m *MockExchange) Orders() []domain.LayOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LayOrder, len(m.orders))
	copy(out, m.orders)
	return out
}
