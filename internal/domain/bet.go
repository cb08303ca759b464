package domain

import "math"

// StakeAndLiability calcula el stake y la liability de una lay bet a partir
// del porcentaje de liability configurado en la hoja.
//
// Fórmula:
//
//	liability = balance × (stakePercent / 100)
//	stake     = liability / (layPrice − 1)
//
// Devuelve (0, 0) si los inputs no permiten una apuesta válida.
func StakeAndLiability(balance, stakePercent, layPrice float64) (stake, liability float64) {
	if balance <= 0 || stakePercent <= 0 || layPrice <= 1 {
		return 0, 0
	}
	liability = balance * (stakePercent / 100.0)
	stake = liability / (layPrice - 1.0)
	return round2(stake), round2(liability)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BetOutcome es el resultado de liquidación de una lay bet.
type BetOutcome string

const (
	OutcomeWon     BetOutcome = "Won"
	OutcomeLost    BetOutcome = "Lost"
	OutcomeVoid    BetOutcome = "Void"
	OutcomePending BetOutcome = "Pending"
)

// SettleLay determina el resultado de una lay sobre "Over X.5" dado el
// marcador final: la lay gana cuando el total de goles queda por debajo
// del umbral.
func SettleLay(final Scoreline, targetOver float64) BetOutcome {
	if targetOver <= 0 {
		return OutcomeVoid
	}
	if float64(final.Total()) < targetOver {
		return OutcomeWon
	}
	return OutcomeLost
}

// LayProfitLoss calcula el P/L de una lay liquidada.
// Ganada: +stake. Perdida: −stake×(odds−1) (la liability). Void: 0.
func LayProfitLoss(outcome BetOutcome, stake, odds float64) float64 {
	switch outcome {
	case OutcomeWon:
		return stake
	case OutcomeLost:
		return -stake * (odds - 1)
	default:
		return 0
	}
}
