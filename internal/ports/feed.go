package ports

import (
	"context"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// LiveFeed obtiene partidos en vivo del proveedor de datos.
type LiveFeed interface {
	// LiveMatches devuelve los partidos actualmente en juego, filtrados por
	// IDs de competición del feed si se pasan.
	LiveMatches(ctx context.Context, competitionIDs []string) ([]domain.LiveMatch, error)

	// MatchDetails devuelve el snapshot de un partido con su timeline de
	// goles completo.
	MatchDetails(ctx context.Context, matchID string) (domain.LiveMatch, error)
}
