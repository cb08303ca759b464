package domain

import (
	"github.com/shopspring/decimal"
)

// LadderType selecciona el escalado de precios válidos del exchange.
type LadderType string

const (
	// LadderClassic: incrementos por banda de precio (el ladder estándar).
	LadderClassic LadderType = "CLASSIC"
	// LadderFinest: incremento fijo de 0.01 en todo el rango.
	LadderFinest LadderType = "FINEST"
)

// ladderBand es una banda [Min, Max) del ladder CLASSIC con su incremento.
type ladderBand struct {
	Min, Max, Step decimal.Decimal
}

func band(min, max, step string) ladderBand {
	return ladderBand{
		Min:  decimal.RequireFromString(min),
		Max:  decimal.RequireFromString(max),
		Step: decimal.RequireFromString(step),
	}
}

// classicLadder son las bandas del ladder CLASSIC según la documentación
// del exchange. Se trabaja en decimal: caminar ticks a través de bandas con
// float64 acumula error y produce precios inválidos.
var classicLadder = []ladderBand{
	band("1.01", "2", "0.01"),
	band("2", "3", "0.02"),
	band("3", "4", "0.05"),
	band("4", "6", "0.1"),
	band("6", "10", "0.2"),
	band("10", "20", "0.5"),
	band("20", "30", "1"),
	band("30", "50", "2"),
	band("50", "100", "5"),
	band("100", "1000", "10"),
}

var (
	finestStep = decimal.RequireFromString("0.01")
	minPrice   = decimal.RequireFromString("1.01")
	maxBand    = decimal.RequireFromString("1000")
)

func stepFor(price decimal.Decimal, ladder LadderType) decimal.Decimal {
	if ladder == LadderFinest {
		return finestStep
	}
	for _, b := range classicLadder {
		if price.GreaterThanOrEqual(b.Min) && price.LessThan(b.Max) {
			return b.Step
		}
	}
	if price.GreaterThanOrEqual(maxBand) {
		return classicLadder[len(classicLadder)-1].Step
	}
	return classicLadder[0].Step
}

// AddTicks suma (o resta, si ticks es negativo) ticks a un precio,
// respetando los cambios de incremento entre bandas del ladder.
func AddTicks(price float64, ticks int, ladder LadderType) float64 {
	p := decimal.NewFromFloat(price)
	if p.LessThan(minPrice) {
		p = minPrice
	}

	step := func() decimal.Decimal { return stepFor(p, ladder) }
	for i := 0; i < ticks; i++ {
		p = p.Add(step())
	}
	for i := 0; i > ticks; i-- {
		// Al bajar, el incremento es el de la banda inmediatamente debajo
		// del precio actual.
		s := stepFor(p.Sub(finestStep), ladder)
		p = p.Sub(s)
		if p.LessThan(minPrice) {
			p = minPrice
			break
		}
	}
	f, _ := p.Float64()
	return f
}

// TicksBetween cuenta los ticks entre dos precios (lower < upper),
// atravesando bandas de incremento distinto. Devuelve 0 si lower >= upper.
func TicksBetween(lower, upper float64, ladder LadderType) int {
	lo := decimal.NewFromFloat(lower)
	hi := decimal.NewFromFloat(upper)
	if !lo.LessThan(hi) {
		return 0
	}

	if ladder == LadderFinest {
		return int(hi.Sub(lo).Div(finestStep).IntPart())
	}

	ticks := 0
	cur := lo
	for cur.LessThan(hi) {
		step := stepFor(cur, ladder)

		// Límite de la banda actual, para cambiar de incremento al cruzarla.
		boundary := maxBand
		for _, b := range classicLadder {
			if cur.GreaterThanOrEqual(b.Min) && cur.LessThan(b.Max) {
				boundary = b.Max
				break
			}
		}

		segEnd := hi
		if boundary.LessThan(hi) {
			segEnd = boundary
		}
		ticks += int(segEnd.Sub(cur).Div(step).IntPart())
		cur = segEnd
	}
	return ticks
}

// RoundToValidPrice redondea un precio al precio válido más cercano del
// ladder. Precios por debajo de 1.01 se elevan a 1.01.
func RoundToValidPrice(price float64, ladder LadderType) float64 {
	p := decimal.NewFromFloat(price)
	if p.LessThan(minPrice) {
		f, _ := minPrice.Float64()
		return f
	}

	if ladder == LadderFinest {
		f, _ := p.Round(2).Float64()
		return f
	}

	for _, b := range classicLadder {
		if p.GreaterThanOrEqual(b.Min) && p.LessThan(b.Max) {
			ticks := p.Sub(b.Min).Div(b.Step).Round(0)
			f, _ := b.Min.Add(ticks.Mul(b.Step)).Float64()
			return f
		}
	}

	// >= 1000: múltiplos del último incremento.
	last := classicLadder[len(classicLadder)-1].Step
	ticks := p.Sub(maxBand).Div(last).Round(0)
	f, _ := maxBand.Add(ticks.Mul(last)).Float64()
	return f
}

// IsValidPrice devuelve true si el precio cae exactamente en el ladder.
func IsValidPrice(price float64, ladder LadderType) bool {
	return RoundToValidPrice(price, ladder) == price
}
