package domain

import "time"

// BetRecord es el registro persistente de una apuesta colocada.
type BetRecord struct {
	ID          string // id interno (uuid)
	BetID       string // id devuelto por el exchange
	EventID     string
	EventName   string
	Competition string

	MarketName string
	Selection  string

	MinuteOfEntry int
	ScoreAtEntry  string
	TargetScore   string

	UnderBestBack float64
	OverBestLay   float64
	FinalLayPrice float64
	SpreadTicks   int

	StakePercent float64
	Liability    float64
	Stake        float64
	Odds         float64

	BankrollBefore float64
	BankrollAfter  float64

	Outcome    BetOutcome
	ProfitLoss float64

	PlacedAt  time.Time
	SettledAt time.Time
}

// SkippedMatch es el registro persistente de un intento de apuesta
// descartado, con el motivo legible para diagnóstico.
type SkippedMatch struct {
	ID          string
	EventID     string
	EventName   string
	Competition string

	Minute  int
	Score   string
	Targets []string
	Reason  string

	UnderBestBack float64
	OverBestLay   float64
	SpreadTicks   int

	SkippedAt time.Time
}
