package domain

import "time"

// PriceSize es un nivel de precio del book con su volumen disponible.
type PriceSize struct {
	Price float64
	Size  float64
}

// RunnerCatalog es una selección del catálogo de un mercado.
type RunnerCatalog struct {
	SelectionID int64
	Name        string // p.ej. "Under 3.5 Goals", "Over 3.5 Goals"
}

// Market es un mercado Over/Under de goles de un evento del exchange.
type Market struct {
	ID           string
	Name         string // p.ej. "Over/Under 3.5 Goals"
	EventID      string
	Line         float64 // 3.5 para "Over/Under 3.5 Goals"
	TotalMatched float64
	Runners      []RunnerCatalog
}

// UnderRunner devuelve la selección Under del mercado.
func (m Market) UnderRunner() (RunnerCatalog, bool) {
	return m.runnerWithPrefix("Under")
}

// OverRunner devuelve la selección Over del mercado.
func (m Market) OverRunner() (RunnerCatalog, bool) {
	return m.runnerWithPrefix("Over")
}

func (m Market) runnerWithPrefix(prefix string) (RunnerCatalog, bool) {
	for _, r := range m.Runners {
		if len(r.Name) >= len(prefix) && r.Name[:len(prefix)] == prefix {
			return r, true
		}
	}
	return RunnerCatalog{}, false
}

// RunnerBook son los mejores precios de una selección.
type RunnerBook struct {
	SelectionID int64
	Status      string
	BestBack    []PriceSize // mejor precio primero
	BestLay     []PriceSize
}

// BestBackPrice devuelve el mejor precio back, 0 si no hay liquidez.
func (r RunnerBook) BestBackPrice() float64 {
	if len(r.BestBack) == 0 {
		return 0
	}
	return r.BestBack[0].Price
}

// BestLayPrice devuelve el mejor precio lay, 0 si no hay liquidez.
func (r RunnerBook) BestLayPrice() float64 {
	if len(r.BestLay) == 0 {
		return 0
	}
	return r.BestLay[0].Price
}

// MarketBook es el estado en vivo de un mercado.
type MarketBook struct {
	MarketID string
	Status   string // "OPEN", "SUSPENDED", "CLOSED"
	InPlay   bool
	Runners  []RunnerBook
}

// Runner busca la selección por ID dentro del book.
func (b MarketBook) Runner(selectionID int64) (RunnerBook, bool) {
	for _, r := range b.Runners {
		if r.SelectionID == selectionID {
			return r, true
		}
	}
	return RunnerBook{}, false
}

// Open devuelve true si el mercado acepta órdenes.
func (b MarketBook) Open() bool {
	return b.Status == "OPEN"
}

// LayOrder es una orden lay lista para enviar al exchange.
type LayOrder struct {
	MarketID    string
	SelectionID int64
	Price       float64
	Size        float64
}

// PlacedBet es la confirmación del exchange de una orden colocada.
type PlacedBet struct {
	BetID               string
	Status              string // "SUCCESS", "FAILURE"
	OrderStatus         string // "EXECUTION_COMPLETE", "EXECUTABLE"
	AveragePriceMatched float64
	SizeMatched         float64
	PlacedAt            time.Time
}

// Matched devuelve true si la orden casó (total o parcialmente).
func (p PlacedBet) Matched() bool {
	return p.Status == "SUCCESS" && p.SizeMatched > 0
}
