package ports

import (
	"context"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Notifier presenta el estado del bot al usuario.
type Notifier interface {
	// NotifyTracking muestra el estado de los partidos en seguimiento.
	// En la implementación de consola, imprime una tabla formateada.
	NotifyTracking(ctx context.Context, statuses []domain.Status) error

	// NotifyBetPlaced anuncia una apuesta recién colocada.
	NotifyBetPlaced(ctx context.Context, rec domain.BetRecord) error

	// NotifyBetSkipped anuncia un partido saltado con su razón.
	NotifyBetSkipped(ctx context.Context, skip domain.SkippedMatch) error
}
