package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/executor"
	"github.com/alejandrodnm/laybot/internal/ports"
	"github.com/alejandrodnm/laybot/internal/targets"
	"github.com/alejandrodnm/laybot/internal/tracking"
)

// sleepChunk acota la latencia de parada durante las esperas largas.
const sleepChunk = 250 * time.Millisecond

// Config contiene la configuración del loop principal.
type Config struct {
	Intervals         tracking.Intervals
	KeepAliveInterval time.Duration
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Intervals:         tracking.DefaultIntervals(),
		KeepAliveInterval: 15 * time.Minute,
	}
}

// Bot es el orquestador principal: un único loop de polling que da de alta
// partidos, avanza sus máquinas de estado, ejecuta las apuestas listas,
// liquida las terminadas y notifica.
type Bot struct {
	cfg      Config
	markets  ports.MarketProvider
	feed     ports.LiveFeed
	session  ports.Session // nil en modo test
	store    ports.RecordStore
	notifier ports.Notifier
	table    *targets.Table
	tracker  *tracking.Service
	manager  *tracking.Manager
	executor *executor.Executor

	// Competiciones de la hoja resueltas contra el exchange y el feed.
	exchangeCompetitionIDs []string
	feedCompetitionIDs     []string

	startedAt time.Time
	bets      []domain.BetRecord
	skips     []domain.SkippedMatch
}

// New crea un Bot con todas las dependencias inyectadas.
func New(
	cfg Config,
	markets ports.MarketProvider,
	feed ports.LiveFeed,
	session ports.Session,
	store ports.RecordStore,
	notifier ports.Notifier,
	table *targets.Table,
	tracker *tracking.Service,
	manager *tracking.Manager,
	exec *executor.Executor,
) *Bot {
	return &Bot{
		cfg:      cfg,
		markets:  markets,
		feed:     feed,
		session:  session,
		store:    store,
		notifier: notifier,
		table:    table,
		tracker:  tracker,
		manager:  manager,
		executor: exec,
	}
}

// Run ejecuta el loop de polling hasta que el contexto se cancele. La
// cadencia de cada vuelta depende del estado de los trackers: por defecto
// relajada, intensiva cuando algún partido se acerca a la ventana de
// decisión.
func (b *Bot) Run(ctx context.Context) error {
	b.startedAt = time.Now()

	if b.session != nil {
		if err := b.session.Login(ctx); err != nil {
			return fmt.Errorf("bot.Run: login: %w", err)
		}
		go b.keepAliveLoop(ctx)
	}

	if err := b.resolveCompetitions(ctx); err != nil {
		return fmt.Errorf("bot.Run: %w", err)
	}

	slog.Info("bot starting",
		"competitions", len(b.exchangeCompetitionIDs),
		"default_interval", b.cfg.Intervals.Default,
	)

	for {
		if err := b.runCycle(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
		}

		interval := b.cfg.Intervals.FeedInterval(b.manager.All())
		if !sleepCtx(ctx, interval) {
			slog.Info("bot stopped")
			return nil
		}
	}
}

// RunOnce resuelve competiciones si hace falta y ejecuta exactamente un
// ciclo del loop.
func (b *Bot) RunOnce(ctx context.Context) error {
	if b.startedAt.IsZero() {
		b.startedAt = time.Now()
	}
	if len(b.exchangeCompetitionIDs) == 0 {
		if err := b.resolveCompetitions(ctx); err != nil {
			return fmt.Errorf("bot.RunOnce: %w", err)
		}
	}
	return b.runCycle(ctx)
}

// Summary devuelve lo acumulado en la sesión, para el informe de cierre.
func (b *Bot) Summary() (time.Time, []domain.BetRecord, []domain.SkippedMatch) {
	return b.startedAt, b.bets, b.skips
}

// resolveCompetitions mapea las competiciones de la hoja de targets contra
// las del exchange (por nombre, vía el resolver) y contra el feed (por el
// ID embebido en la columna Competition-Live). Solo se consultan partidos
// de competiciones con targets.
func (b *Bot) resolveCompetitions(ctx context.Context) error {
	comps, err := b.markets.ListCompetitions(ctx)
	if err != nil {
		return fmt.Errorf("list competitions: %w", err)
	}

	candidates := make([]targets.Candidate, 0, len(comps))
	for _, c := range comps {
		candidates = append(candidates, targets.Candidate{ID: c.ID, Name: c.Name})
	}

	for _, sheet := range b.table.Competitions() {
		if sheet.ID != "" {
			b.feedCompetitionIDs = append(b.feedCompetitionIDs, sheet.ID)
		}

		m, ok := targets.Resolve(sheet.Name, candidates)
		if !ok {
			slog.Warn("sheet competition not found on exchange", "competition", sheet.Name)
			continue
		}
		b.exchangeCompetitionIDs = append(b.exchangeCompetitionIDs, m.Candidate.ID)
		slog.Info("competition resolved",
			"sheet", sheet.Name,
			"exchange", m.Candidate.Name,
			"exchange_id", m.Candidate.ID,
			"strategy", m.Strategy,
		)
	}

	if len(b.exchangeCompetitionIDs) == 0 {
		return fmt.Errorf("no sheet competition resolved against the exchange")
	}
	return nil
}

// runCycle ejecuta una vuelta completa del loop.
func (b *Bot) runCycle(ctx context.Context) error {
	start := time.Now()

	live, err := b.feed.LiveMatches(ctx, b.feedCompetitionIDs)
	if err != nil {
		return fmt.Errorf("bot.runCycle: live matches: %w", err)
	}

	// Un fallo del exchange no detiene el refresco de trackers: los
	// partidos ya en seguimiento avanzan solo con el feed.
	events, err := b.markets.ListInPlayEvents(ctx, b.exchangeCompetitionIDs)
	if err != nil {
		slog.Warn("listing in-play events failed", "err", err)
	}

	added := b.tracker.TrackNewEvents(events, live)
	changes := b.tracker.UpdateTrackers(ctx, live)
	for _, ch := range changes {
		slog.Info("state change",
			"event", ch.Tracker.EventName,
			"from", ch.From,
			"to", ch.To,
			"minute", ch.Tracker.Minute(),
			"score", ch.Tracker.Score().String(),
		)
	}

	b.executeReady(ctx)
	b.settleFinished(ctx)
	removed := b.tracker.Cleanup()

	if err := b.notifier.NotifyTracking(ctx, b.manager.Statuses()); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	slog.Debug("cycle complete",
		"live", len(live),
		"tracked", b.manager.Len(),
		"added", added,
		"removed", removed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// executeReady intenta la apuesta de cada tracker en READY_FOR_BET. Un error
// del executor deja el tracker intacto para reintentar en el ciclo
// siguiente; un descarte lo marca y lo persiste.
func (b *Bot) executeReady(ctx context.Context) {
	for _, tr := range b.manager.ReadyForBet() {
		res, err := b.executor.ExecuteBet(ctx, tr)
		if err != nil {
			slog.Warn("bet attempt failed, will retry", "event", tr.EventName, "err", err)
			continue
		}

		if res.Placed {
			b.bets = append(b.bets, *res.Bet)
			if err := b.store.SaveBet(ctx, *res.Bet); err != nil {
				slog.Error("saving bet failed", "bet_id", res.Bet.BetID, "err", err)
			}
			if err := b.notifier.NotifyBetPlaced(ctx, *res.Bet); err != nil {
				slog.Warn("notifier error", "err", err)
			}
			continue
		}

		b.skips = append(b.skips, *res.Skip)
		if err := b.store.SaveSkipped(ctx, *res.Skip); err != nil {
			slog.Error("saving skipped match failed", "event", res.Skip.EventName, "err", err)
		}
		if err := b.notifier.NotifyBetSkipped(ctx, *res.Skip); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
}

// settleFinished liquida las apuestas pendientes cuyos partidos terminaron:
// la lay gana si el total final quedó por debajo de la línea.
func (b *Bot) settleFinished(ctx context.Context) {
	pending, err := b.store.PendingBets(ctx)
	if err != nil {
		slog.Warn("loading pending bets failed", "err", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	byEvent := make(map[string]domain.BetRecord, len(pending))
	for _, rec := range pending {
		byEvent[rec.EventID] = rec
	}

	for _, tr := range b.manager.All() {
		if tr.State() != domain.StateFinished {
			continue
		}
		rec, ok := byEvent[tr.EventID]
		if !ok {
			continue
		}

		final := tr.Score()
		outcome := domain.SettleLay(final, tr.TargetOver())
		profit := domain.LayProfitLoss(outcome, rec.Stake, rec.FinalLayPrice)

		if err := b.store.SettleBet(ctx, rec.ID, outcome, profit, final, time.Now()); err != nil {
			slog.Error("settling bet failed", "bet_id", rec.BetID, "err", err)
			continue
		}
		slog.Info("bet settled",
			"event", tr.EventName,
			"final_score", final.String(),
			"outcome", outcome,
			"profit_loss", profit,
		)
	}
}

// keepAliveLoop refresca el token de sesión en segundo plano. Si el refresco
// falla intenta un login completo; la sesión caducada a mitad de ciclo la
// detectan los adaptadores del exchange.
func (b *Bot) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.session.KeepAlive(ctx); err != nil {
				slog.Warn("keep-alive failed, attempting re-login", "err", err)
				if err := b.session.Login(ctx); err != nil {
					slog.Error("re-login failed", "err", err)
				}
			}
		}
	}
}

// sleepCtx duerme la duración dada en tramos cortos para responder rápido a
// la cancelación. Devuelve false si el contexto se canceló.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		chunk := sleepChunk
		if remaining < chunk {
			chunk = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(chunk):
		}
	}
}
