package domain

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// maxGoalsCap limita el lookahead de goles para acotar la explosión
// combinatoria de PossibleScoresAfter.
const maxGoalsCap = 5

// Scoreline es el marcador de un partido como par (local, visitante).
// La forma canónica en string es "H-A".
type Scoreline struct {
	Home int
	Away int
}

// String devuelve la forma canónica "H-A".
func (s Scoreline) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// Total devuelve el número total de goles del marcador.
func (s Scoreline) Total() int {
	return s.Home + s.Away
}

// CanReach devuelve true si target es alcanzable desde s sumando goles
// (cada componente de target >= el componente actual).
func (s Scoreline) CanReach(target Scoreline) bool {
	return target.Home >= s.Home && target.Away >= s.Away
}

// ParseScore convierte un string de marcador a Scoreline.
// Acepta "1-1", "1:1", "1 - 1" y variantes con espacios.
// Devuelve error para entradas malformadas o con goles negativos.
func ParseScore(raw string) (Scoreline, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ":", "-")

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Scoreline{}, fmt.Errorf("domain.ParseScore: malformed score %q", raw)
	}

	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Scoreline{}, fmt.Errorf("domain.ParseScore: home goals in %q: %w", raw, err)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Scoreline{}, fmt.Errorf("domain.ParseScore: away goals in %q: %w", raw, err)
	}
	if home < 0 || away < 0 {
		return Scoreline{}, fmt.Errorf("domain.ParseScore: negative goals in %q", raw)
	}

	return Scoreline{Home: home, Away: away}, nil
}

// NormalizeScore convierte cualquier forma aceptada ("1 : 1", "1-1") a la
// canónica "H-A". Devuelve "" si el string no es un marcador válido.
func NormalizeScore(raw string) string {
	s, err := ParseScore(raw)
	if err != nil {
		return ""
	}
	return s.String()
}

// ScoreSet es un conjunto de marcadores, indexado por su forma canónica.
type ScoreSet map[Scoreline]struct{}

// NewScoreSet construye un ScoreSet a partir de strings de marcador.
// Las entradas malformadas se descartan con un warning (política
// conservadora: mejor un target menos que un crash).
func NewScoreSet(raw ...string) ScoreSet {
	set := make(ScoreSet, len(raw))
	for _, r := range raw {
		s, err := ParseScore(r)
		if err != nil {
			slog.Warn("ignoring malformed target score", "score", r)
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// Contains devuelve true si el marcador está en el conjunto.
func (ss ScoreSet) Contains(s Scoreline) bool {
	_, ok := ss[s]
	return ok
}

// Strings devuelve las formas canónicas del conjunto (orden no definido).
func (ss ScoreSet) Strings() []string {
	out := make([]string, 0, len(ss))
	for s := range ss {
		out = append(out, s.String())
	}
	return out
}

// PossibleScoresAfter enumera todos los marcadores alcanzables repartiendo
// de 1 a maxGoals goles adicionales entre los dos equipos.
//
// Ejemplo: desde "1-1" con maxGoals=2:
//
//	+1 gol:  {"2-1", "1-2"}
//	+2 goles: {"3-1", "2-2", "1-3"}
func PossibleScoresAfter(score Scoreline, maxGoals int) ScoreSet {
	result := make(ScoreSet)
	for goals := 1; goals <= maxGoals; goals++ {
		for home := 0; home <= goals; home++ {
			result[Scoreline{Home: score.Home + home, Away: score.Away + (goals - home)}] = struct{}{}
		}
	}
	return result
}

// MaxGoalsNeeded calcula, para cada target todavía alcanzable, el mínimo de
// goles que faltan para llegar a él, y devuelve el MÁXIMO de esos mínimos:
// el target alcanzable más lejano marca la ventana de lookahead, así no se
// cierra la ventana antes de tiempo. Targets con algún componente por debajo
// del marcador actual son inalcanzables y se excluyen.
//
// Si ningún target es alcanzable devuelve 1 (fuerza un lookahead mínimo de
// un gol en vez de cero). El resultado se capa a 5.
func MaxGoalsNeeded(score Scoreline, targets ScoreSet) int {
	max := 0
	for target := range targets {
		if !score.CanReach(target) {
			continue
		}
		needed := (target.Home - score.Home) + (target.Away - score.Away)
		if needed > max {
			max = needed
		}
	}
	if max < 1 {
		return 1
	}
	if max > maxGoalsCap {
		return maxGoalsCap
	}
	return max
}

// Reachable devuelve true si algún marcador alcanzable en maxGoals goles
// está en targets. Es el test de "¿todavía podemos llegar a un target?",
// distinto de "¿el marcador actual ya es un target?".
func Reachable(score Scoreline, targets ScoreSet, maxGoals int) bool {
	for possible := range PossibleScoresAfter(score, maxGoals) {
		if targets.Contains(possible) {
			return true
		}
	}
	return false
}
