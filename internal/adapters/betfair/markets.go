package betfair

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/laybot/internal/domain"
)

const soccerEventTypeID = "1"

// overUnderCodes son los market types Over/Under X.5 Goals del exchange.
var overUnderCodes = []string{
	"OVER_UNDER_05", "OVER_UNDER_15", "OVER_UNDER_25", "OVER_UNDER_35",
	"OVER_UNDER_45", "OVER_UNDER_55", "OVER_UNDER_65", "OVER_UNDER_75",
	"OVER_UNDER_85",
}

// ListInPlayEvents devuelve los eventos de fútbol en juego con mercados
// Over/Under, con su competición. El catálogo devuelve un mercado por
// línea; se deduplica por evento.
func (c *Client) ListInPlayEvents(ctx context.Context, competitionIDs []string) ([]domain.Event, error) {
	inPlay := true
	maxResults := 100
	if len(competitionIDs) > 0 {
		// Con filtro de competiciones el catálogo es más pequeño;
		// bajar maxResults evita el error TOO_MUCH_DATA.
		maxResults = 50
	}
	req := listMarketCatalogueRequest{
		Filter: marketFilter{
			EventTypeIDs:    []string{soccerEventTypeID},
			CompetitionIDs:  competitionIDs,
			MarketTypeCodes: overUnderCodes,
			InPlayOnly:      &inPlay,
		},
		MarketProjection: []string{"COMPETITION", "EVENT"},
		MaxResults:       maxResults,
	}

	var catalogue []marketCatalogueDTO
	if err := c.post(ctx, c.bettingBase, "listMarketCatalogue", req, &catalogue); err != nil {
		return nil, fmt.Errorf("betfair.ListInPlayEvents: %w", err)
	}

	seen := make(map[string]struct{})
	var events []domain.Event
	for _, mc := range catalogue {
		if mc.Event.ID == "" {
			continue
		}
		if _, ok := seen[mc.Event.ID]; ok {
			continue
		}
		seen[mc.Event.ID] = struct{}{}
		events = append(events, domain.Event{
			ID:              mc.Event.ID,
			Name:            mc.Event.Name,
			CompetitionID:   mc.Competition.ID,
			CompetitionName: mc.Competition.Name,
			OpenDate:        parseOpenDate(mc.Event.OpenDate),
		})
	}

	slog.Debug("in-play events listed", "markets", len(catalogue), "events", len(events))
	return events, nil
}

// ListCompetitions devuelve las competiciones de fútbol con mercados
// activos en el exchange.
func (c *Client) ListCompetitions(ctx context.Context) ([]domain.Competition, error) {
	req := listCompetitionsRequest{
		Filter: marketFilter{EventTypeIDs: []string{soccerEventTypeID}},
	}

	var results []competitionResult
	if err := c.post(ctx, c.bettingBase, "listCompetitions", req, &results); err != nil {
		return nil, fmt.Errorf("betfair.ListCompetitions: %w", err)
	}

	comps := make([]domain.Competition, 0, len(results))
	for _, r := range results {
		comps = append(comps, domain.Competition{
			ID:          r.Competition.ID,
			Name:        r.Competition.Name,
			MarketCount: r.MarketCount,
		})
	}
	return comps, nil
}

// OverUnderMarkets devuelve los mercados Over/Under X.5 Goals del evento
// con sus selecciones.
func (c *Client) OverUnderMarkets(ctx context.Context, eventID string) ([]domain.Market, error) {
	req := listMarketCatalogueRequest{
		Filter: marketFilter{
			EventIDs:        []string{eventID},
			MarketTypeCodes: overUnderCodes,
		},
		MarketProjection: []string{"RUNNER_DESCRIPTION", "MARKET_DESCRIPTION"},
		MaxResults:       len(overUnderCodes),
	}

	var catalogue []marketCatalogueDTO
	if err := c.post(ctx, c.bettingBase, "listMarketCatalogue", req, &catalogue); err != nil {
		return nil, fmt.Errorf("betfair.OverUnderMarkets: event %s: %w", eventID, err)
	}

	markets := make([]domain.Market, 0, len(catalogue))
	for _, mc := range catalogue {
		line, ok := goalLine(mc)
		if !ok {
			slog.Warn("skipping market with unknown goal line",
				"market_id", mc.MarketID, "name", mc.MarketName, "type", mc.Description.MarketType)
			continue
		}
		runners := make([]domain.RunnerCatalog, 0, len(mc.Runners))
		for _, r := range mc.Runners {
			runners = append(runners, domain.RunnerCatalog{
				SelectionID: r.SelectionID,
				Name:        r.RunnerName,
			})
		}
		markets = append(markets, domain.Market{
			ID:           mc.MarketID,
			Name:         mc.MarketName,
			EventID:      eventID,
			Line:         line,
			TotalMatched: mc.TotalMatched,
			Runners:      runners,
		})
	}
	return markets, nil
}

// MarketBook devuelve el estado en vivo del mercado con los mejores
// precios por selección.
func (c *Client) MarketBook(ctx context.Context, marketID string) (domain.MarketBook, error) {
	req := listMarketBookRequest{
		MarketIDs:       []string{marketID},
		PriceProjection: priceProjection{PriceData: []string{"EX_BEST_OFFERS"}},
	}

	var books []marketBookDTO
	if err := c.post(ctx, c.bettingBase, "listMarketBook", req, &books); err != nil {
		return domain.MarketBook{}, fmt.Errorf("betfair.MarketBook: market %s: %w", marketID, err)
	}
	if len(books) == 0 {
		return domain.MarketBook{}, fmt.Errorf("betfair.MarketBook: market %s not in response", marketID)
	}

	dto := books[0]
	book := domain.MarketBook{
		MarketID: dto.MarketID,
		Status:   dto.Status,
		InPlay:   dto.InPlay,
		Runners:  make([]domain.RunnerBook, 0, len(dto.Runners)),
	}
	for _, r := range dto.Runners {
		book.Runners = append(book.Runners, domain.RunnerBook{
			SelectionID: r.SelectionID,
			Status:      r.Status,
			BestBack:    toPriceSizes(r.EX.AvailableToBack),
			BestLay:     toPriceSizes(r.EX.AvailableToLay),
		})
	}
	return book, nil
}

func toPriceSizes(dtos []priceSizeDTO) []domain.PriceSize {
	out := make([]domain.PriceSize, len(dtos))
	for i, d := range dtos {
		out[i] = domain.PriceSize{Price: d.Price, Size: d.Size}
	}
	return out
}

// goalLine deduce la línea de goles del mercado: del market type
// ("OVER_UNDER_25" → 2.5) o, si falta, del nombre.
func goalLine(mc marketCatalogueDTO) (float64, bool) {
	if code, ok := strings.CutPrefix(mc.Description.MarketType, "OVER_UNDER_"); ok {
		if n, err := strconv.Atoi(code); err == nil {
			return float64(n) / 10, true
		}
	}
	// "Over/Under 2.5 Goals"
	fields := strings.Fields(mc.MarketName)
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parseOpenDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
