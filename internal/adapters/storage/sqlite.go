package storage

// sqlite.go — registro persistente de apuestas y descartes.
//
// Estrategia:
//   - `bet_records`: una fila por apuesta colocada; la liquidación los
//     completa (outcome, P/L, marcador final) sin borrar nada.
//   - `skipped_matches`: una fila por intento descartado con su razón y
//     los precios vistos, para auditar por qué no se apostó.
//   - Prune automático al arrancar: descartes > 90 días. Las apuestas no
//     se borran nunca; son el histórico de la cuenta.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/laybot/internal/domain"
)

const schema = `
-- Una fila por apuesta lay colocada
CREATE TABLE IF NOT EXISTS bet_records (
    id              TEXT PRIMARY KEY,
    bet_id          TEXT NOT NULL,
    event_id        TEXT NOT NULL,
    event_name      TEXT NOT NULL,
    competition     TEXT NOT NULL,
    market_name     TEXT NOT NULL,
    selection       TEXT NOT NULL,
    minute_of_entry INTEGER NOT NULL,
    score_at_entry  TEXT NOT NULL,
    target_score    TEXT NOT NULL,
    under_best_back REAL NOT NULL DEFAULT 0,
    over_best_lay   REAL NOT NULL DEFAULT 0,
    final_lay_price REAL NOT NULL DEFAULT 0,
    spread_ticks    INTEGER NOT NULL DEFAULT 0,
    stake_percent   REAL NOT NULL DEFAULT 0,
    liability       REAL NOT NULL DEFAULT 0,
    stake           REAL NOT NULL DEFAULT 0,
    odds            REAL NOT NULL DEFAULT 0,
    bankroll_before REAL NOT NULL DEFAULT 0,
    bankroll_after  REAL NOT NULL DEFAULT 0,
    outcome         TEXT NOT NULL DEFAULT 'Pending',
    profit_loss     REAL NOT NULL DEFAULT 0,
    final_score     TEXT NOT NULL DEFAULT '',
    placed_at       DATETIME NOT NULL,
    settled_at      DATETIME
);

-- Una fila por partido que llegó a READY_FOR_BET sin apuesta
CREATE TABLE IF NOT EXISTS skipped_matches (
    id              TEXT PRIMARY KEY,
    event_id        TEXT NOT NULL,
    event_name      TEXT NOT NULL,
    competition     TEXT NOT NULL,
    minute          INTEGER NOT NULL,
    score           TEXT NOT NULL,
    targets         TEXT NOT NULL DEFAULT '',
    reason          TEXT NOT NULL,
    under_best_back REAL NOT NULL DEFAULT 0,
    over_best_lay   REAL NOT NULL DEFAULT 0,
    spread_ticks    INTEGER NOT NULL DEFAULT 0,
    skipped_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_outcome ON bet_records(outcome);
CREATE INDEX IF NOT EXISTS idx_bets_placed  ON bet_records(placed_at DESC);
CREATE INDEX IF NOT EXISTS idx_skip_at      ON skipped_matches(skipped_at DESC);
`

// Los descartes viejos no aportan nada pasado un tiempo; las apuestas son
// el histórico de la cuenta y no se tocan.
const retentionSkipped = 90 * 24 * time.Hour

// SQLiteStore implementa ports.RecordStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada. Aplica el
// schema y limpia descartes antiguos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveBet persiste una apuesta recién colocada.
func (s *SQLiteStore) SaveBet(ctx context.Context, rec domain.BetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bet_records
			(id, bet_id, event_id, event_name, competition, market_name, selection,
			 minute_of_entry, score_at_entry, target_score,
			 under_best_back, over_best_lay, final_lay_price, spread_ticks,
			 stake_percent, liability, stake, odds,
			 bankroll_before, bankroll_after, outcome, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.BetID, rec.EventID, rec.EventName, rec.Competition,
		rec.MarketName, rec.Selection,
		rec.MinuteOfEntry, rec.ScoreAtEntry, rec.TargetScore,
		rec.UnderBestBack, rec.OverBestLay, rec.FinalLayPrice, rec.SpreadTicks,
		rec.StakePercent, rec.Liability, rec.Stake, rec.Odds,
		rec.BankrollBefore, rec.BankrollAfter, string(rec.Outcome), rec.PlacedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveBet: insert %s: %w", rec.ID, err)
	}
	return nil
}

// SaveSkipped persiste un intento de apuesta descartado.
func (s *SQLiteStore) SaveSkipped(ctx context.Context, skip domain.SkippedMatch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skipped_matches
			(id, event_id, event_name, competition, minute, score, targets,
			 reason, under_best_back, over_best_lay, spread_ticks, skipped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		skip.ID, skip.EventID, skip.EventName, skip.Competition,
		skip.Minute, skip.Score, strings.Join(skip.Targets, ","),
		skip.Reason, skip.UnderBestBack, skip.OverBestLay, skip.SpreadTicks,
		skip.SkippedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSkipped: insert %s: %w", skip.ID, err)
	}
	return nil
}

// PendingBets devuelve las apuestas sin liquidar, las más viejas primero.
func (s *SQLiteStore) PendingBets(ctx context.Context) ([]domain.BetRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bet_id, event_id, event_name, competition, market_name, selection,
		       minute_of_entry, score_at_entry, target_score,
		       under_best_back, over_best_lay, final_lay_price, spread_ticks,
		       stake_percent, liability, stake, odds,
		       bankroll_before, bankroll_after, placed_at
		FROM bet_records
		WHERE outcome = ?
		ORDER BY placed_at ASC
	`, string(domain.OutcomePending))
	if err != nil {
		return nil, fmt.Errorf("storage.PendingBets: query: %w", err)
	}
	defer rows.Close()

	var recs []domain.BetRecord
	for rows.Next() {
		var rec domain.BetRecord
		var placedAt string
		if err := rows.Scan(
			&rec.ID, &rec.BetID, &rec.EventID, &rec.EventName, &rec.Competition,
			&rec.MarketName, &rec.Selection,
			&rec.MinuteOfEntry, &rec.ScoreAtEntry, &rec.TargetScore,
			&rec.UnderBestBack, &rec.OverBestLay, &rec.FinalLayPrice, &rec.SpreadTicks,
			&rec.StakePercent, &rec.Liability, &rec.Stake, &rec.Odds,
			&rec.BankrollBefore, &rec.BankrollAfter, &placedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.PendingBets: scan row: %w", err)
		}
		rec.Outcome = domain.OutcomePending
		rec.PlacedAt = parseStoredTime(placedAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SettleBet completa una apuesta con su resultado final.
func (s *SQLiteStore) SettleBet(ctx context.Context, id string, outcome domain.BetOutcome, profitLoss float64, finalScore domain.Scoreline, settledAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bet_records
		SET outcome = ?, profit_loss = ?, final_score = ?, settled_at = ?
		WHERE id = ?
	`, string(outcome), profitLoss, finalScore.String(), settledAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("storage.SettleBet: update %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.SettleBet: bet %s not found", id)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSkipped)
	s.db.ExecContext(ctx, `DELETE FROM skipped_matches WHERE skipped_at < ?`, cutoff)
}

// parseStoredTime acepta los dos formatos con los que el driver serializa
// DATETIME.
func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
