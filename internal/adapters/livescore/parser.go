package livescore

import (
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// ParseFeedScore normaliza el marcador del feed. El API lo sirve como
// "0 - 1" (con espacios); algunos partidos viejos llegan como "?" o vacío.
// El segundo valor es false cuando no hay marcador parseable.
func ParseFeedScore(raw string) (domain.Scoreline, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" || s == "?" || s == "-" {
		return domain.Scoreline{}, false
	}
	score, err := domain.ParseScore(s)
	if err != nil {
		return domain.Scoreline{}, false
	}
	return score, true
}

// ParseFeedMinute convierte el campo time del feed a minuto de juego.
// Formas conocidas: "43", "45+2", "45+2'", "HT", "FT", "AET", "AP".
// Devuelve -1 cuando el partido no está en juego o el campo no se
// entiende; el descuento se trunca al minuto base ("45+2" → 45).
func ParseFeedMinute(raw, status string) int {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return -1
	}

	switch s {
	case "HT":
		return 45
	case "FT":
		return 90
	case "AET", "AP":
		return 120
	}

	st := strings.ToUpper(status)
	if strings.Contains(st, "NOT STARTED") || strings.Contains(st, "SCHEDULED") || strings.Contains(st, "POSTPONED") {
		return -1
	}

	// "45+2" / "90+4'": el minuto base es el que cuenta para la ventana.
	if base, _, found := strings.Cut(s, "+"); found {
		s = base
	}
	s = strings.TrimSuffix(s, "'")

	minute, err := strconv.Atoi(s)
	if err != nil {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if digits == "" {
			if strings.Contains(st, "IN PLAY") || strings.Contains(st, "LIVE") {
				return 0
			}
			return -1
		}
		minute, _ = strconv.Atoi(digits)
	}

	// Un valor de 4 cifras es la hora de inicio ("2030"), no un minuto.
	if minute > 120 {
		return -1
	}
	return minute
}

// FeedFinished indica si el feed declara el partido terminado, sea por el
// campo status ("FINISHED") o por la forma terminal del campo time.
func FeedFinished(raw, status string) bool {
	st := strings.ToUpper(strings.TrimSpace(status))
	if strings.Contains(st, "FINISHED") || strings.Contains(st, "FULL TIME") {
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FT", "AET", "AP":
		return true
	}
	return false
}

// ParseKickoff combina las columnas date ("2026-03-14") y scheduled
// ("20:45") del feed en un instante UTC. Cero si no hay datos.
func ParseKickoff(date, scheduled string) time.Time {
	date = strings.TrimSpace(date)
	scheduled = strings.TrimSpace(scheduled)
	if date == "" || scheduled == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02 15:04", date+" "+scheduled)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseGoalEvents extrae la línea de goles de la lista de eventos del
// detalle de partido. Los eventos de VAR que anulan un gol llegan como
// "goal cancelled" o con el flag cancelled.
func parseGoalEvents(events []eventDTO) []domain.GoalEvent {
	var goals []domain.GoalEvent
	for _, ev := range events {
		kind := strings.ToLower(strings.TrimSpace(ev.Event))
		if !strings.Contains(kind, "goal") {
			continue
		}
		goal := domain.GoalEvent{
			Minute:    ParseFeedMinute(ev.Minute, "IN PLAY"),
			Team:      goalTeam(ev.HomeAway),
			Player:    ev.Player,
			Cancelled: ev.Cancelled || strings.Contains(kind, "cancel") || strings.Contains(kind, "disallow"),
		}
		if goal.Minute < 0 {
			goal.Minute = 0
		}
		goals = append(goals, goal)
	}
	return goals
}

func goalTeam(homeAway string) domain.Team {
	switch strings.ToLower(strings.TrimSpace(homeAway)) {
	case "h", "home":
		return domain.TeamHome
	default:
		return domain.TeamAway
	}
}
