package betfair

import "errors"

// ErrSessionExpired señala un 401 del exchange: el caller debe relanzar el
// login antes de reintentar.
var ErrSessionExpired = errors.New("betfair: session expired")

// DTOs raw de la API REST del exchange. Solo se usan dentro de este
// paquete; la conversión a domain entities se hace en markets.go y
// betting.go.

type marketFilter struct {
	EventTypeIDs    []string `json:"eventTypeIds,omitempty"`
	EventIDs        []string `json:"eventIds,omitempty"`
	CompetitionIDs  []string `json:"competitionIds,omitempty"`
	MarketTypeCodes []string `json:"marketTypeCodes,omitempty"`
	InPlayOnly      *bool    `json:"inPlayOnly,omitempty"`
}

type listMarketCatalogueRequest struct {
	Filter           marketFilter `json:"filter"`
	MarketProjection []string     `json:"marketProjection,omitempty"`
	MaxResults       int          `json:"maxResults"`
}

type listCompetitionsRequest struct {
	Filter marketFilter `json:"filter"`
}

type listMarketBookRequest struct {
	MarketIDs       []string        `json:"marketIds"`
	PriceProjection priceProjection `json:"priceProjection"`
}

type priceProjection struct {
	PriceData []string `json:"priceData"`
}

type eventDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OpenDate string `json:"openDate"`
}

type competitionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type competitionResult struct {
	Competition competitionDTO `json:"competition"`
	MarketCount int            `json:"marketCount"`
}

type marketDescription struct {
	MarketType string `json:"marketType"`
}

type runnerCatalogDTO struct {
	SelectionID int64  `json:"selectionId"`
	RunnerName  string `json:"runnerName"`
}

type marketCatalogueDTO struct {
	MarketID     string             `json:"marketId"`
	MarketName   string             `json:"marketName"`
	TotalMatched float64            `json:"totalMatched"`
	Description  marketDescription  `json:"description"`
	Event        eventDTO           `json:"event"`
	Competition  competitionDTO     `json:"competition"`
	Runners      []runnerCatalogDTO `json:"runners"`
}

type priceSizeDTO struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type exchangePrices struct {
	AvailableToBack []priceSizeDTO `json:"availableToBack"`
	AvailableToLay  []priceSizeDTO `json:"availableToLay"`
}

type runnerBookDTO struct {
	SelectionID int64          `json:"selectionId"`
	Status      string         `json:"status"`
	EX          exchangePrices `json:"ex"`
}

type marketBookDTO struct {
	MarketID string          `json:"marketId"`
	Status   string          `json:"status"`
	InPlay   bool            `json:"inplay"`
	Runners  []runnerBookDTO `json:"runners"`
}

type limitOrder struct {
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	PersistenceType string  `json:"persistenceType"`
}

type placeInstruction struct {
	SelectionID int64      `json:"selectionId"`
	Handicap    float64    `json:"handicap"`
	Side        string     `json:"side"`
	OrderType   string     `json:"orderType"`
	LimitOrder  limitOrder `json:"limitOrder"`
}

type placeOrdersRequest struct {
	MarketID     string             `json:"marketId"`
	Instructions []placeInstruction `json:"instructions"`
	CustomerRef  string             `json:"customerRef,omitempty"`
}

type instructionReport struct {
	Status              string  `json:"status"`
	ErrorCode           string  `json:"errorCode"`
	OrderStatus         string  `json:"orderStatus"`
	BetID               string  `json:"betId"`
	PlacedDate          string  `json:"placedDate"`
	AveragePriceMatched float64 `json:"averagePriceMatched"`
	SizeMatched         float64 `json:"sizeMatched"`
}

type placeExecutionReport struct {
	Status             string              `json:"status"`
	ErrorCode          string              `json:"errorCode"`
	MarketID           string              `json:"marketId"`
	InstructionReports []instructionReport `json:"instructionReports"`
}

type accountFundsResponse struct {
	AvailableToBetBalance float64 `json:"availableToBetBalance"`
	Exposure              float64 `json:"exposure"`
}

type identityResponse struct {
	Token   string `json:"token"`
	Product string `json:"product"`
	Status  string `json:"status"`
	Error   string `json:"error"`
}
