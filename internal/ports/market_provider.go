package ports

import (
	"context"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// MarketProvider obtiene eventos, mercados y precios del exchange.
type MarketProvider interface {
	// ListInPlayEvents devuelve los eventos de fútbol actualmente en juego,
	// filtrados por IDs de competición del exchange si se pasan.
	ListInPlayEvents(ctx context.Context, competitionIDs []string) ([]domain.Event, error)

	// ListCompetitions devuelve las competiciones de fútbol con mercados
	// activos, para mapearlas contra la hoja de targets.
	ListCompetitions(ctx context.Context) ([]domain.Competition, error)

	// OverUnderMarkets devuelve los mercados Over/Under X.5 Goals del
	// evento, con sus selecciones.
	OverUnderMarkets(ctx context.Context, eventID string) ([]domain.Market, error)

	// MarketBook devuelve el estado en vivo del mercado con los mejores
	// precios por selección.
	MarketBook(ctx context.Context, marketID string) (domain.MarketBook, error)
}
