package domain

// Team identifica el lado que marcó un gol.
type Team string

const (
	TeamHome Team = "home"
	TeamAway Team = "away"
)

// GoalEvent es un gol reportado por el feed en vivo. El feed nunca muta un
// gol ya entregado, pero un snapshot posterior puede marcarlo como anulado
// (VAR) via Cancelled.
type GoalEvent struct {
	Minute    int
	Team      Team
	Player    string
	Cancelled bool
}

// FilterCancelled devuelve los goles válidos (no anulados por VAR).
func FilterCancelled(goals []GoalEvent) []GoalEvent {
	valid := make([]GoalEvent, 0, len(goals))
	for _, g := range goals {
		if !g.Cancelled {
			valid = append(valid, g)
		}
	}
	return valid
}

// GoalInWindow devuelve el primer gol cuyo minuto cae en [start, end],
// ambos inclusive. Los goles deben venir ya filtrados de anulados.
func GoalInWindow(goals []GoalEvent, start, end int) (GoalEvent, bool) {
	for _, g := range goals {
		if g.Minute >= start && g.Minute <= end {
			return g, true
		}
	}
	return GoalEvent{}, false
}
