package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/ports"
	"github.com/alejandrodnm/laybot/internal/targets"
)

// Config son los parámetros de validación y precio de la colocación.
type Config struct {
	// DefaultMinOdds se usa cuando la fila de la hoja no trae Min_Odds.
	DefaultMinOdds float64
	// MaxSpreadTicks es el spread máximo tolerado entre el mejor back y
	// el mejor lay del mercado Over, medido en ticks del ladder.
	MaxSpreadTicks int
	// TicksOffset son los ticks que se suman al mejor lay para fijar el
	// precio de la orden.
	TicksOffset int
	Ladder      domain.LadderType
}

// DefaultConfig replica los valores de operación habituales.
func DefaultConfig() Config {
	return Config{
		DefaultMinOdds: 1.5,
		MaxSpreadTicks: 4,
		TicksOffset:    2,
		Ladder:         domain.LadderClassic,
	}
}

// Result es el desenlace de un intento de apuesta: o bien se colocó la
// orden (Bet relleno), o bien se descartó con motivo (Skip relleno).
type Result struct {
	Placed bool
	Bet    *domain.BetRecord
	Skip   *domain.SkippedMatch
}

// Executor coloca la lay bet sobre el mercado Over X.5 de un tracker que
// ha llegado a READY_FOR_BET, aplicando las validaciones de mercado antes
// de enviar la orden.
type Executor struct {
	markets ports.MarketProvider
	placer  ports.BetPlacer
	table   *targets.Table
	cfg     Config

	now func() time.Time
}

// New crea el executor de apuestas.
func New(markets ports.MarketProvider, placer ports.BetPlacer, table *targets.Table, cfg Config) *Executor {
	if cfg.DefaultMinOdds <= 0 {
		cfg.DefaultMinOdds = 1.5
	}
	if cfg.TicksOffset == 0 {
		cfg.TicksOffset = 2
	}
	if cfg.Ladder == "" {
		cfg.Ladder = domain.LadderClassic
	}
	return &Executor{
		markets: markets,
		placer:  placer,
		table:   table,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ExecuteBet ejecuta el pipeline completo para el tracker: localizar el
// mercado Over/Under del target, validar precios y liquidez, calcular el
// precio y el stake, y enviar la orden. Cualquier validación fallida
// devuelve un Result de descarte y marca el tracker como saltado; solo
// los fallos de transporte al listar mercados devuelven error para que el
// ciclo siguiente reintente dentro de la ventana.
func (e *Executor) ExecuteBet(ctx context.Context, tr *domain.Tracker) (Result, error) {
	if !tr.IsReadyForBet() || !tr.BetAllowed() {
		return Result{}, fmt.Errorf("executor.ExecuteBet: tracker %s not ready (state %s)", tr.EventID, tr.State())
	}

	line := tr.TargetOver()
	slog.Info("executing lay bet",
		"event", tr.EventName,
		"target_over", line,
		"score", tr.Score().String(),
		"minute", tr.Minute())

	mkts, err := e.markets.OverUnderMarkets(ctx, tr.EventID)
	if err != nil {
		return Result{}, fmt.Errorf("executor.ExecuteBet: list markets for %s: %w", tr.EventID, err)
	}

	market, ok := marketForLine(mkts, line)
	if !ok {
		return e.skip(tr, marketPrices{}, fmt.Sprintf("Over/Under %.1f market not found", line)), nil
	}
	overRunner, okOver := market.OverRunner()
	underRunner, okUnder := market.UnderRunner()
	if !okOver || !okUnder {
		return e.skip(tr, marketPrices{}, fmt.Sprintf("market %s missing Over/Under selections", market.ID)), nil
	}

	book, err := e.markets.MarketBook(ctx, market.ID)
	if err != nil || !book.Open() {
		return e.skip(tr, marketPrices{}, "market book unavailable or closed"), nil
	}
	overBook, okOver := book.Runner(overRunner.SelectionID)
	underBook, okUnder := book.Runner(underRunner.SelectionID)
	if !okOver || !okUnder {
		return e.skip(tr, marketPrices{}, "market book missing runner prices"), nil
	}

	prices := marketPrices{
		underBestBack: underBook.BestBackPrice(),
		overBestBack:  overBook.BestBackPrice(),
		overBestLay:   overBook.BestLayPrice(),
	}
	if prices.overBestBack > 0 && prices.overBestLay > 0 {
		prices.spreadTicks = domain.TicksBetween(prices.overBestBack, prices.overBestLay, e.cfg.Ladder)
		prices.spreadKnown = true
	}

	// La hoja manda: cada competición+resultado tiene su propio stake y
	// Min_Odds. Sin fila no hay apuesta.
	entry, ok := e.table.BettingEntry(tr.Competition, tr.CompetitionID, tr.Score())
	if !ok {
		return e.skip(tr, prices, fmt.Sprintf("score %s not in sheet targets for %s", tr.Score(), tr.Competition)), nil
	}
	minOdds := entry.MinOdds
	if minOdds <= 0 {
		minOdds = e.cfg.DefaultMinOdds
	}

	if reason, ok := e.checkMarketConditions(prices, overBook, minOdds); !ok {
		return e.skip(tr, prices, reason), nil
	}

	layPrice := domain.RoundToValidPrice(domain.AddTicks(prices.overBestLay, e.cfg.TicksOffset, e.cfg.Ladder), e.cfg.Ladder)

	balance, err := e.placer.AvailableBalance(ctx)
	if err != nil {
		return e.skip(tr, prices, "account funds unavailable"), nil
	}
	if balance <= 0 {
		return e.skip(tr, prices, fmt.Sprintf("insufficient balance: %.2f", balance)), nil
	}

	stake, liability := domain.StakeAndLiability(balance, entry.StakePercent, layPrice)
	if stake <= 0 {
		return e.skip(tr, prices, "stake calculation produced zero stake"), nil
	}
	if liability > balance {
		return e.skip(tr, prices, fmt.Sprintf("insufficient funds: need %.2f, have %.2f", liability, balance)), nil
	}

	slog.Info("placing lay order",
		"event", tr.EventName,
		"market", market.Name,
		"price", layPrice,
		"stake", stake,
		"liability", liability)

	placed, err := e.placer.PlaceLay(ctx, domain.LayOrder{
		MarketID:    market.ID,
		SelectionID: overRunner.SelectionID,
		Price:       layPrice,
		Size:        stake,
	})
	if err != nil {
		return e.skip(tr, prices, fmt.Sprintf("bet placement failed: %v", err)), nil
	}
	if placed.Status != "SUCCESS" {
		return e.skip(tr, prices, fmt.Sprintf("bet rejected by exchange: %s", placed.Status)), nil
	}

	tr.RecordBet(placed.BetID)
	placedAt := placed.PlacedAt
	if placedAt.IsZero() {
		placedAt = e.now()
	}

	rec := &domain.BetRecord{
		ID:          uuid.NewString(),
		BetID:       placed.BetID,
		EventID:     tr.EventID,
		EventName:   tr.EventName,
		Competition: tr.Competition,

		MarketName: market.Name,
		Selection:  overRunner.Name,

		MinuteOfEntry: tr.Minute(),
		ScoreAtEntry:  tr.Score().String(),
		TargetScore:   entry.Score.String(),

		UnderBestBack: prices.underBestBack,
		OverBestLay:   prices.overBestLay,
		FinalLayPrice: layPrice,
		SpreadTicks:   prices.spreadTicks,

		StakePercent: entry.StakePercent,
		Liability:    liability,
		Stake:        stake,
		Odds:         layPrice,

		BankrollBefore: balance,
		BankrollAfter:  round2(balance - liability),

		Outcome:  domain.OutcomePending,
		PlacedAt: placedAt,
	}

	slog.Info("lay bet placed",
		"event", tr.EventName,
		"bet_id", placed.BetID,
		"price", layPrice,
		"stake", stake,
		"matched", placed.SizeMatched)

	return Result{Placed: true, Bet: rec}, nil
}

// marketPrices agrupa los precios relevantes de la pareja Over/Under en el
// momento del intento, para dejarlos registrados también en los descartes.
type marketPrices struct {
	underBestBack float64
	overBestBack  float64
	overBestLay   float64
	spreadTicks   int
	spreadKnown   bool
}

// checkMarketConditions aplica las cuatro validaciones previas a la orden:
// odds mínimas sobre el best back del Under (solo mínimo, sin tope),
// spread máximo en ticks del mercado Over, y liquidez en el lado lay.
func (e *Executor) checkMarketConditions(p marketPrices, overBook domain.RunnerBook, minOdds float64) (string, bool) {
	if p.underBestBack <= 0 {
		return "no back liquidity on Under selection", false
	}
	if p.underBestBack <= minOdds {
		return fmt.Sprintf("under odds %.2f not above minimum %.2f", p.underBestBack, minOdds), false
	}
	if !p.spreadKnown {
		return "no prices on Over selection", false
	}
	if p.spreadTicks > e.cfg.MaxSpreadTicks {
		return fmt.Sprintf("spread %d ticks above maximum %d", p.spreadTicks, e.cfg.MaxSpreadTicks), false
	}
	if totalLaySize(overBook) <= 0 {
		return "no lay liquidity on Over selection", false
	}
	if overBook.BestLay[0].Size <= 0 {
		return "no size at best lay price", false
	}
	return "", true
}

func totalLaySize(r domain.RunnerBook) float64 {
	var total float64
	for _, ps := range r.BestLay {
		total += ps.Size
	}
	return total
}

func (e *Executor) skip(tr *domain.Tracker, p marketPrices, reason string) Result {
	tr.RecordSkip()
	slog.Warn("bet skipped", "event", tr.EventName, "reason", reason)
	return Result{Skip: &domain.SkippedMatch{
		ID:          uuid.NewString(),
		EventID:     tr.EventID,
		EventName:   tr.EventName,
		Competition: tr.Competition,

		Minute:  tr.Minute(),
		Score:   tr.Score().String(),
		Targets: e.table.Targets(tr.Competition, tr.CompetitionID).Strings(),
		Reason:  reason,

		UnderBestBack: p.underBestBack,
		OverBestLay:   p.overBestLay,
		SpreadTicks:   p.spreadTicks,

		SkippedAt: e.now(),
	}}
}

func marketForLine(mkts []domain.Market, line float64) (domain.Market, bool) {
	for _, m := range mkts {
		if math.Abs(m.Line-line) < 0.01 {
			return m, true
		}
	}
	return domain.Market{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
