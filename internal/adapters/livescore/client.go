package livescore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/laybot/internal/domain"
)

const (
	defaultBaseURL = "https://livescore-api.com/api-client"

	// Pacing de corto plazo; el cupo diario lo lleva Budget.
	requestsPerSec = 2
)

// Client es el cliente del feed de marcadores en vivo. Implementa
// ports.LiveFeed. La autenticación va por query params (key/secret), no
// por headers.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
	secret  string
	limiter *rate.Limiter
	budget  *Budget
}

// NewClient crea el cliente del feed. Si baseURL está vacío usa el
// endpoint de producción.
func NewClient(key, secret, baseURL string, budget *Budget) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if budget == nil {
		budget = NewBudget(0)
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		limiter: rate.NewLimiter(requestsPerSec, 2),
		budget:  budget,
	}
}

// LiveMatches devuelve los partidos actualmente en juego. El endpoint no
// filtra por competición, así que los IDs se aplican localmente tras la
// respuesta. Los partidos sin empezar o sin minuto parseable se filtran
// aquí; los que llegan sin marcador legible se entregan con ScoreKnown en
// false para que el caller decida.
func (c *Client) LiveMatches(ctx context.Context, competitionIDs []string) ([]domain.LiveMatch, error) {
	var resp liveMatchesResponse
	if err := c.get(ctx, "/matches/live.json", nil, &resp); err != nil {
		return nil, fmt.Errorf("livescore.LiveMatches: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("livescore.LiveMatches: feed reported failure")
	}

	wanted := make(map[string]bool, len(competitionIDs))
	for _, id := range competitionIDs {
		wanted[id] = true
	}

	matches := make([]domain.LiveMatch, 0, len(resp.Data.Match))
	for _, m := range resp.Data.Match {
		if len(wanted) > 0 && !wanted[m.Competition.ID.String()] {
			continue
		}
		minute := ParseFeedMinute(m.Time, m.Status)
		if minute < 0 {
			continue
		}
		score, known := ParseFeedScore(m.Scores.Score)
		matches = append(matches, domain.LiveMatch{
			ID:            m.ID.String(),
			Home:          m.Home.Name,
			Away:          m.Away.Name,
			Competition:   m.Competition.Name,
			CompetitionID: m.Competition.ID.String(),
			Score:         score,
			ScoreKnown:    known,
			Minute:        minute,
			Finished:      FeedFinished(m.Time, m.Status),
			Kickoff:       ParseKickoff(m.Date, m.Scheduled),
		})
	}

	slog.Debug("live matches fetched",
		"total", len(resp.Data.Match),
		"live", len(matches),
		"budget_remaining", c.budget.Remaining(),
	)
	return matches, nil
}

// MatchDetails devuelve el partido con su línea de goles (endpoint de
// eventos, una petición por partido).
func (c *Client) MatchDetails(ctx context.Context, matchID string) (domain.LiveMatch, error) {
	params := url.Values{}
	params.Set("id", matchID)

	var resp matchEventsResponse
	if err := c.get(ctx, "/scores/events.json", params, &resp); err != nil {
		return domain.LiveMatch{}, fmt.Errorf("livescore.MatchDetails: match %s: %w", matchID, err)
	}
	if !resp.Success {
		return domain.LiveMatch{}, fmt.Errorf("livescore.MatchDetails: match %s: feed reported failure", matchID)
	}

	m := resp.Data.Match
	minute := ParseFeedMinute(m.Time, m.Status)
	if minute < 0 {
		minute = 0
	}
	score, known := ParseFeedScore(m.Scores.Score)
	return domain.LiveMatch{
		ID:            matchID,
		Home:          m.Home.Name,
		Away:          m.Away.Name,
		Competition:   m.Competition.Name,
		CompetitionID: m.Competition.ID.String(),
		Score:         score,
		ScoreKnown:    known,
		Minute:        minute,
		Finished:      FeedFinished(m.Time, m.Status),
		Kickoff:       ParseKickoff(m.Date, m.Scheduled),
		Goals:         parseGoalEvents(resp.Data.Event),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if !c.budget.Allow() {
		return fmt.Errorf("daily request budget exhausted")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("feed status %d: %s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode feed response: %w", err)
	}
	return nil
}
