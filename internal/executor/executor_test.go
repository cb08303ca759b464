package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/targets"
)

type fakeSheet struct{ rows []targets.Row }

func (f fakeSheet) ReadTargetRows(string) ([]targets.Row, error) { return f.rows, nil }

type fakeMarkets struct {
	markets    []domain.Market
	marketsErr error
	book       domain.MarketBook
	bookErr    error
}

func (f *fakeMarkets) ListInPlayEvents(context.Context, []string) ([]domain.Event, error) {
	return nil, nil
}

func (f *fakeMarkets) ListCompetitions(context.Context) ([]domain.Competition, error) {
	return nil, nil
}

func (f *fakeMarkets) OverUnderMarkets(context.Context, string) ([]domain.Market, error) {
	return f.markets, f.marketsErr
}

func (f *fakeMarkets) MarketBook(context.Context, string) (domain.MarketBook, error) {
	return f.book, f.bookErr
}

type fakePlacer struct {
	balance    float64
	balanceErr error
	placed     domain.PlacedBet
	placeErr   error

	lastOrder domain.LayOrder
	calls     int
}

func (f *fakePlacer) PlaceLay(_ context.Context, order domain.LayOrder) (domain.PlacedBet, error) {
	f.calls++
	f.lastOrder = order
	return f.placed, f.placeErr
}

func (f *fakePlacer) AvailableBalance(context.Context) (float64, error) {
	return f.balance, f.balanceErr
}

func sheetTable(rows ...targets.Row) *targets.Table {
	return targets.NewTable(fakeSheet{rows: rows}, "targets.xlsx")
}

func serieATable() *targets.Table {
	return sheetTable(targets.Row{
		Competition:  "Serie A",
		Result:       "1-1",
		MinOdds:      1.5,
		StakePercent: 2,
	})
}

// readyTracker lleva un tracker hasta READY_FOR_BET con marcador 1-1 en el
// minuto 75, usando la fuente de targets dada.
func readyTracker(t *testing.T, src domain.TargetSource) *domain.Tracker {
	t.Helper()

	tr := domain.NewTracker("e1", "Milan v Inter", "f1", "Serie A", "", domain.TrackerConfig{
		Window:            domain.DefaultWindow(),
		TargetOver:        2.5,
		StrictDiscardAt60: true,
		DiscardDelay:      4 * time.Minute,
	})
	tr.UpdateMatchData(domain.Scoreline{Home: 1, Away: 1}, 70, []domain.GoalEvent{{Minute: 63, Team: domain.TeamAway}})
	tr.UpdateState(src)
	tr.UpdateMatchData(domain.Scoreline{Home: 1, Away: 1}, 75, nil)
	tr.UpdateState(src)
	require.Equal(t, domain.StateReadyForBet, tr.State())
	return tr
}

func overUnderMarket() domain.Market {
	return domain.Market{
		ID:      "1.234",
		Name:    "Over/Under 2.5 Goals",
		EventID: "e1",
		Line:    2.5,
		Runners: []domain.RunnerCatalog{
			{SelectionID: 101, Name: "Under 2.5 Goals"},
			{SelectionID: 102, Name: "Over 2.5 Goals"},
		},
	}
}

func openBook(underBack, overBack, overLay float64) domain.MarketBook {
	return domain.MarketBook{
		MarketID: "1.234",
		Status:   "OPEN",
		InPlay:   true,
		Runners: []domain.RunnerBook{
			{
				SelectionID: 101,
				Status:      "ACTIVE",
				BestBack:    []domain.PriceSize{{Price: underBack, Size: 100}},
				BestLay:     []domain.PriceSize{{Price: underBack + 0.02, Size: 100}},
			},
			{
				SelectionID: 102,
				Status:      "ACTIVE",
				BestBack:    []domain.PriceSize{{Price: overBack, Size: 50}},
				BestLay:     []domain.PriceSize{{Price: overLay, Size: 80}, {Price: overLay + 0.02, Size: 40}},
			},
		},
	}
}

func TestExecuteBet_PlacesLayOrder(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.80, 2.00, 2.02),
	}
	placer := &fakePlacer{
		balance: 1000,
		placed: domain.PlacedBet{
			BetID:       "B-7",
			Status:      "SUCCESS",
			OrderStatus: "EXECUTION_COMPLETE",
			SizeMatched: 18.87,
			PlacedAt:    time.Date(2026, 3, 14, 20, 15, 0, 0, time.UTC),
		},
	}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.True(t, res.Placed)
	require.NotNil(t, res.Bet)
	assert.Nil(t, res.Skip)

	// Precio: mejor lay 2.02 + 2 ticks en banda de 0.02 = 2.06.
	assert.Equal(t, 1, placer.calls)
	assert.Equal(t, "1.234", placer.lastOrder.MarketID)
	assert.Equal(t, int64(102), placer.lastOrder.SelectionID)
	assert.InDelta(t, 2.06, placer.lastOrder.Price, 1e-9)
	// Liability = 1000 × 2% = 20; stake = 20 / (2.06 - 1) = 18.87.
	assert.InDelta(t, 18.87, placer.lastOrder.Size, 1e-9)

	bet := res.Bet
	assert.Equal(t, "B-7", bet.BetID)
	assert.Equal(t, "e1", bet.EventID)
	assert.Equal(t, "Over 2.5 Goals", bet.Selection)
	assert.Equal(t, 75, bet.MinuteOfEntry)
	assert.Equal(t, "1-1", bet.ScoreAtEntry)
	assert.InDelta(t, 1.80, bet.UnderBestBack, 1e-9)
	assert.InDelta(t, 2.02, bet.OverBestLay, 1e-9)
	assert.InDelta(t, 2.06, bet.FinalLayPrice, 1e-9)
	assert.Equal(t, 1, bet.SpreadTicks)
	assert.InDelta(t, 20.0, bet.Liability, 1e-9)
	assert.InDelta(t, 18.87, bet.Stake, 1e-9)
	assert.InDelta(t, 1000.0, bet.BankrollBefore, 1e-9)
	assert.InDelta(t, 980.0, bet.BankrollAfter, 1e-9)
	assert.Equal(t, domain.OutcomePending, bet.Outcome)
	assert.Equal(t, placer.placed.PlacedAt, bet.PlacedAt)

	betID, ok := tr.BetPlaced()
	require.True(t, ok)
	assert.Equal(t, "B-7", betID)
}

func TestExecuteBet_UnderOddsNotAboveMinimum(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.45, 2.00, 2.02),
	}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.False(t, res.Placed)
	assert.Contains(t, res.Skip.Reason, "not above minimum")
	assert.InDelta(t, 1.45, res.Skip.UnderBestBack, 1e-9)
	assert.Zero(t, placer.calls)
	assert.True(t, tr.BetSkipped())
}

func TestExecuteBet_SpreadTooWide(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	// 2.00 → 2.20 son 10 ticks en la banda de 0.02.
	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.80, 2.00, 2.20),
	}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "spread 10 ticks above maximum 4")
	assert.Equal(t, 10, res.Skip.SpreadTicks)
	assert.Zero(t, placer.calls)
}

func TestExecuteBet_NoLayLiquidity(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	book := openBook(1.80, 2.00, 2.02)
	book.Runners[1].BestLay = []domain.PriceSize{{Price: 2.02, Size: 0}}
	markets := &fakeMarkets{markets: []domain.Market{overUnderMarket()}, book: book}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "no lay liquidity")
	assert.Zero(t, placer.calls)
}

func TestExecuteBet_MarketNotFound(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	other := overUnderMarket()
	other.Line = 3.5
	other.Name = "Over/Under 3.5 Goals"
	markets := &fakeMarkets{markets: []domain.Market{other}}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "market not found")
	assert.True(t, tr.BetSkipped())
}

func TestExecuteBet_MarketsErrorIsRetryable(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	markets := &fakeMarkets{marketsErr: errors.New("timeout")}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	_, err := ex.ExecuteBet(context.Background(), tr)
	require.Error(t, err)
	// El tracker queda intacto para reintentar en el siguiente ciclo.
	assert.False(t, tr.BetSkipped())
	assert.True(t, tr.BetAllowed())
}

func TestExecuteBet_SuspendedBook(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	book := openBook(1.80, 2.00, 2.02)
	book.Status = "SUSPENDED"
	markets := &fakeMarkets{markets: []domain.Market{overUnderMarket()}, book: book}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "unavailable or closed")
}

func TestExecuteBet_ScoreNotInSheet(t *testing.T) {
	// El tracker califica con una fuente ad-hoc, pero la hoja real no
	// tiene fila para Serie A: sin stake no hay apuesta.
	src := stubTargets{"Serie A": domain.NewScoreSet("1-1")}
	tr := readyTracker(t, src)

	table := sheetTable(targets.Row{
		Competition:  "Premier League",
		Result:       "2-2",
		MinOdds:      1.6,
		StakePercent: 1,
	})
	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.80, 2.00, 2.02),
	}
	placer := &fakePlacer{balance: 1000}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "not in sheet targets")
	assert.Zero(t, placer.calls)
}

func TestExecuteBet_BalanceUnavailable(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.80, 2.00, 2.02),
	}
	placer := &fakePlacer{balanceErr: errors.New("session expired")}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "account funds unavailable")
	assert.Zero(t, placer.calls)
}

func TestExecuteBet_PlacementFailure(t *testing.T) {
	table := serieATable()
	tr := readyTracker(t, table)

	markets := &fakeMarkets{
		markets: []domain.Market{overUnderMarket()},
		book:    openBook(1.80, 2.00, 2.02),
	}
	placer := &fakePlacer{balance: 1000, placeErr: errors.New("connection reset")}

	ex := New(markets, placer, table, DefaultConfig())
	res, err := ex.ExecuteBet(context.Background(), tr)
	require.NoError(t, err)
	require.NotNil(t, res.Skip)
	assert.Contains(t, res.Skip.Reason, "bet placement failed")
	assert.True(t, tr.BetSkipped())
}

func TestExecuteBet_RejectsTrackerNotReady(t *testing.T) {
	table := serieATable()
	tr := domain.NewTracker("e1", "Milan v Inter", "f1", "Serie A", "", domain.TrackerConfig{
		Window:     domain.DefaultWindow(),
		TargetOver: 2.5,
	})

	ex := New(&fakeMarkets{}, &fakePlacer{}, table, DefaultConfig())
	_, err := ex.ExecuteBet(context.Background(), tr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

type stubTargets map[string]domain.ScoreSet

func (s stubTargets) Targets(competition, _ string) domain.ScoreSet { return s[competition] }
