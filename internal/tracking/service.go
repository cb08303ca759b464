package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/ports"
)

// staleTimeout es cuánto aguanta un tracker sin aparecer en el feed antes
// de darse por terminado.
const staleTimeout = 10 * time.Minute

// Service ejecuta el trabajo de seguimiento de cada ciclo: alta de eventos
// nuevos y refresco de los trackers existentes con el último snapshot del
// feed.
type Service struct {
	manager *Manager
	matcher *Matcher
	feed    ports.LiveFeed
	targets domain.TargetSource
	cfg     domain.TrackerConfig
}

// NewService crea el servicio de seguimiento.
func NewService(manager *Manager, matcher *Matcher, feed ports.LiveFeed, targets domain.TargetSource, cfg domain.TrackerConfig) *Service {
	return &Service{
		manager: manager,
		matcher: matcher,
		feed:    feed,
		targets: targets,
		cfg:     cfg,
	}
}

// StateChange es una transición relevante ocurrida durante un ciclo.
type StateChange struct {
	Tracker *domain.Tracker
	From    domain.MatchState
	To      domain.MatchState
}

// TrackNewEvents da de alta trackers para los eventos del exchange que aún
// no siguen y que se emparejan con algún partido del feed. Devuelve cuántos
// dio de alta.
func (s *Service) TrackNewEvents(events []domain.Event, live []domain.LiveMatch) int {
	added := 0
	for _, ev := range events {
		if s.manager.Get(ev.ID) != nil {
			continue
		}
		lm, ok := s.matcher.Match(ev, live)
		if !ok {
			continue
		}

		competition := ev.CompetitionName
		competitionID := lm.CompetitionID
		if competition == "" {
			competition = lm.Competition
		}

		t := domain.NewTracker(ev.ID, ev.Name, lm.ID, competition, competitionID, s.cfg)
		s.manager.Add(t)
		added++
	}
	return added
}

// UpdateTrackers refresca todos los trackers con los partidos del feed y
// avanza sus máquinas de estado. Para los estados donde el timeline de goles
// decide (monitorización y minuto 75) pide el detalle fresco del partido en
// vez de fiarse del snapshot cacheado del listado.
func (s *Service) UpdateTrackers(ctx context.Context, live []domain.LiveMatch) []StateChange {
	byID := make(map[string]domain.LiveMatch, len(live))
	for _, lm := range live {
		byID[lm.ID] = lm
	}

	var changes []StateChange
	for _, t := range s.manager.All() {
		lm, ok := byID[t.FeedMatchID]
		if !ok {
			// El feed suele dejar de listar el partido justo después del
			// pitido final; sin datos frescos durante el periodo de gracia
			// lo damos por terminado.
			if time.Since(t.LastUpdate()) > staleTimeout {
				slog.Info("match gone from feed, finishing tracker",
					"event", t.EventName, "last_update", t.LastUpdate())
				t.Finish()
			}
			continue
		}

		goals := lm.Goals
		if s.needsFreshGoals(t.State()) {
			if detail, err := s.feed.MatchDetails(ctx, t.FeedMatchID); err != nil {
				slog.Warn("match details unavailable, using cached goals",
					"event", t.EventName, "feed_id", t.FeedMatchID, "err", err)
			} else if len(detail.Goals) > 0 || len(goals) == 0 {
				goals = detail.Goals
			}
		}

		minute := lm.Minute
		if !lm.ScoreKnown {
			// Sin marcador parseable no hay decisión que tomar este ciclo.
			slog.Debug("no parseable score for match", "event", t.EventName, "feed_id", t.FeedMatchID)
			continue
		}

		before := t.State()
		t.UpdateMatchData(lm.Score, minute, goals)
		if lm.Finished {
			t.Finish()
		} else {
			t.UpdateState(s.targets)
		}
		after := t.State()

		if after != before && (after == domain.StateQualified || after == domain.StateReadyForBet) {
			changes = append(changes, StateChange{Tracker: t, From: before, To: after})
		}
	}
	return changes
}

// needsFreshGoals indica los estados en los que un gol de diferencia cambia
// la decisión y el timeline cacheado puede ir por detrás.
func (s *Service) needsFreshGoals(state domain.MatchState) bool {
	switch state {
	case domain.StateMonitoring60_74, domain.StateQualified, domain.StateReadyForBet:
		return true
	}
	return false
}

// Cleanup retira los trackers terminales y limpia sus entradas de caché del
// matcher. Devuelve cuántos retiró.
func (s *Service) Cleanup() int {
	removed := 0
	for _, t := range s.manager.All() {
		if t.State().Terminal() {
			s.manager.Remove(t.EventID)
			s.matcher.Forget(t.EventID)
			removed++
		}
	}
	return removed
}
