package domain

import "time"

// LiveMatch es el snapshot de un partido según el feed en vivo.
type LiveMatch struct {
	ID            string
	Home          string
	Away          string
	Competition   string // puede venir en formato "ID_Nombre"
	CompetitionID string
	Score         Scoreline
	ScoreKnown    bool // false cuando el feed no trae marcador parseable
	Minute        int  // -1 cuando el feed no trae minuto parseable
	Finished      bool // el feed declara el partido terminado
	Kickoff       time.Time
	Goals         []GoalEvent
}

// Name devuelve "Home v Away", la forma de nombre de evento del exchange.
func (m LiveMatch) Name() string {
	return m.Home + " v " + m.Away
}

// Competition es una competición del exchange con mercados activos.
type Competition struct {
	ID          string
	Name        string
	MarketCount int
}

// Event es un evento (partido) del exchange.
type Event struct {
	ID              string
	Name            string // "Team A v Team B"
	CompetitionID   string
	CompetitionName string
	OpenDate        time.Time
}
