package tracking

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/targets"
)

// Pesos y umbrales del emparejamiento evento-partido.
const (
	teamThreshold     = 0.7 // similitud mínima por equipo, ambos lados
	teamsWeight       = 0.6
	competitionWeight = 0.3
	kickoffWeight     = 0.1
	acceptScore       = 0.6
	kickoffTolerance  = 30 * time.Minute
)

// fillerWords son palabras de nombre de club que no discriminan
// ("FC Barcelona" vs "Barcelona").
var fillerWords = map[string]struct{}{
	"fc": {}, "cf": {}, "ac": {}, "sc": {}, "cfr": {}, "club": {},
	"united": {}, "city": {}, "town": {}, "rovers": {},
	"athletic": {}, "sporting": {},
}

// Matcher empareja eventos del exchange con partidos del feed en vivo por
// nombres de equipo, competición y hora de inicio. Cachea el resultado por
// event ID para no repuntuar en cada ciclo.
type Matcher struct {
	mu    sync.Mutex
	cache map[string]string // event ID -> match ID del feed
}

// NewMatcher crea un matcher con caché vacía.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]string)}
}

// normalizeTeam limpia un nombre de equipo para comparación.
func normalizeTeam(name string) string {
	norm := targets.Normalize(name)
	words := strings.Fields(norm)
	kept := words[:0]
	for _, w := range words {
		if _, filler := fillerWords[w]; !filler {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// TeamSimilarity puntúa dos nombres de equipo en [0,1]: igualdad exacta,
// contención ("Atletico MG" dentro de "Atletico Mineiro") y solape de
// palabras Jaccard.
func TeamSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	na, nb := normalizeTeam(a), normalizeTeam(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}
	return targets.Similarity(na, nb)
}

// TeamsMatch comprueba que ambos equipos superan el umbral, probando también
// con local y visitante intercambiados (los dominios no siempre coinciden en
// quién es local).
func TeamsMatch(homeA, awayA, homeB, awayB string) bool {
	if TeamSimilarity(homeA, homeB) >= teamThreshold && TeamSimilarity(awayA, awayB) >= teamThreshold {
		return true
	}
	return TeamSimilarity(homeA, awayB) >= teamThreshold && TeamSimilarity(awayA, homeB) >= teamThreshold
}

// competitionsMatch compara nombres de competición entre dominios con el
// normalizador de la hoja de targets.
func competitionsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	na := targets.Normalize(stripFeedID(a))
	nb := targets.Normalize(stripFeedID(b))
	if na == nb {
		return true
	}
	if len(na) >= 4 && len(nb) >= 4 && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return true
	}
	return targets.Similarity(na, nb) >= 0.6
}

func stripFeedID(name string) string {
	_, bare := targets.ParseComposite(name)
	return bare
}

// kickoffsMatch compara horas de inicio con tolerancia. Sin datos por alguno
// de los dos lados no filtra.
func kickoffsMatch(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= kickoffTolerance
}

// Match busca el partido del feed que corresponde a un evento del exchange.
// Los equipos mandan; competición y hora de inicio desempatan.
func (m *Matcher) Match(event domain.Event, live []domain.LiveMatch) (domain.LiveMatch, bool) {
	m.mu.Lock()
	cached, hasCached := m.cache[event.ID]
	m.mu.Unlock()
	if hasCached {
		for _, lm := range live {
			if lm.ID == cached {
				return lm, true
			}
		}
	}

	home, away, ok := splitEventName(event.Name)
	if !ok {
		slog.Warn("unparseable event name", "event", event.Name)
		return domain.LiveMatch{}, false
	}

	var best domain.LiveMatch
	bestScore := 0.0
	for _, lm := range live {
		if !TeamsMatch(home, away, lm.Home, lm.Away) {
			continue
		}
		score := teamsWeight
		if competitionsMatch(event.CompetitionName, lm.Competition) {
			score += competitionWeight
		}
		if kickoffsMatch(event.OpenDate, lm.Kickoff) {
			score += kickoffWeight
		}
		if score > bestScore {
			bestScore = score
			best = lm
		}
	}

	if bestScore < acceptScore {
		return domain.LiveMatch{}, false
	}

	m.mu.Lock()
	m.cache[event.ID] = best.ID
	m.mu.Unlock()
	slog.Info("event matched to feed",
		"event", event.Name,
		"event_id", event.ID,
		"feed_id", best.ID,
		"score", bestScore,
	)
	return best, true
}

// Forget elimina la entrada de caché de un evento (tracker retirado).
func (m *Matcher) Forget(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, eventID)
}

// splitEventName separa "Team A v Team B" en sus equipos.
func splitEventName(name string) (home, away string, ok bool) {
	parts := strings.SplitN(name, " v ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	home = strings.TrimSpace(parts[0])
	away = strings.TrimSpace(parts[1])
	return home, away, home != "" && away != ""
}
