package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// RecordStore persiste las apuestas colocadas y los partidos saltados.
type RecordStore interface {
	// SaveBet persiste una apuesta recién colocada (outcome Pending).
	SaveBet(ctx context.Context, rec domain.BetRecord) error

	// SaveSkipped persiste un partido que llegó a READY_FOR_BET pero cuya
	// apuesta no pasó validación.
	SaveSkipped(ctx context.Context, skip domain.SkippedMatch) error

	// PendingBets devuelve las apuestas sin liquidar.
	PendingBets(ctx context.Context) ([]domain.BetRecord, error)

	// SettleBet registra el resultado final de una apuesta.
	SettleBet(ctx context.Context, id string, outcome domain.BetOutcome, profitLoss float64, finalScore domain.Scoreline, settledAt time.Time) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
