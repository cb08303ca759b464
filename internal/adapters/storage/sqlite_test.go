package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/internal/adapters/storage"
	"github.com/alejandrodnm/laybot/internal/domain"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "laybot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBet(id string) domain.BetRecord {
	return domain.BetRecord{
		ID:            id,
		BetID:         "31242604945",
		EventID:       "ev1",
		EventName:     "Milan v Inter",
		Competition:   "Serie A",
		MarketName:    "Over/Under 2.5 Goals",
		Selection:     "Over 2.5 Goals",
		MinuteOfEntry: 75,
		ScoreAtEntry:  "1-1",
		TargetScore:   "1-1",
		UnderBestBack: 1.8,
		OverBestLay:   2.02,
		FinalLayPrice: 2.06,
		SpreadTicks:   1,
		StakePercent:  2,
		Liability:     20,
		Stake:         18.87,
		Odds:          2.06,

		BankrollBefore: 1000,
		BankrollAfter:  980,
		Outcome:        domain.OutcomePending,
		PlacedAt:       time.Date(2026, 3, 14, 20, 15, 0, 0, time.UTC),
	}
}

func TestSaveBetAndPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBet(ctx, sampleBet("rec-1")))
	require.NoError(t, s.SaveBet(ctx, sampleBet("rec-2")))

	pending, err := s.PendingBets(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	got := pending[0]
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "Milan v Inter", got.EventName)
	assert.Equal(t, 75, got.MinuteOfEntry)
	assert.Equal(t, "1-1", got.ScoreAtEntry)
	assert.InDelta(t, 2.06, got.FinalLayPrice, 1e-9)
	assert.Equal(t, 1, got.SpreadTicks)
	assert.InDelta(t, 18.87, got.Stake, 1e-9)
	assert.Equal(t, domain.OutcomePending, got.Outcome)
	assert.Equal(t, 2026, got.PlacedAt.Year())
}

func TestSettleBet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBet(ctx, sampleBet("rec-1")))

	settledAt := time.Date(2026, 3, 14, 21, 50, 0, 0, time.UTC)
	err := s.SettleBet(ctx, "rec-1", domain.OutcomeWon, 18.87, domain.Scoreline{Home: 1, Away: 1}, settledAt)
	require.NoError(t, err)

	// Liquidada deja de estar pendiente.
	pending, err := s.PendingBets(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSettleBet_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.SettleBet(context.Background(), "missing", domain.OutcomeWon, 0, domain.Scoreline{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	skip := domain.SkippedMatch{
		ID:            "skip-1",
		EventID:       "ev2",
		EventName:     "Getafe v Sevilla",
		Competition:   "La Liga",
		Minute:        75,
		Score:         "2-2",
		Targets:       []string{"1-1", "2-2"},
		Reason:        "spread 7 ticks above maximum 4",
		UnderBestBack: 1.62,
		OverBestLay:   2.4,
		SpreadTicks:   7,
		SkippedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.SaveSkipped(ctx, skip))

	// El insert es append-only; un ID duplicado es un bug del caller.
	assert.Error(t, s.SaveSkipped(ctx, skip))
}
