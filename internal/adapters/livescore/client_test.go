package livescore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/internal/adapters/livescore"
	"github.com/alejandrodnm/laybot/internal/domain"
)

func TestLiveMatches_FiltersAndMaps(t *testing.T) {
	payload := `{
		"success": true,
		"data": {"match": [
			{"id": 218401, "status": "IN PLAY", "time": "63",
			 "date": "2026-03-14", "scheduled": "20:00",
			 "home": {"name": "AC Milan"}, "away": {"name": "Inter"},
			 "competition": {"id": 4, "name": "Serie A"},
			 "scores": {"score": "1 - 1"}},
			{"id": 218402, "status": "NOT STARTED", "time": "21:00",
			 "home": {"name": "Getafe"}, "away": {"name": "Sevilla"},
			 "competition": {"id": 7, "name": "La Liga"},
			 "scores": {"score": ""}},
			{"id": 218403, "status": "IN PLAY", "time": "12",
			 "home": {"name": "Ajax"}, "away": {"name": "PSV"},
			 "competition": {"id": 9, "name": "Eredivisie"},
			 "scores": {"score": "?"}}
		]}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/live.json", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "s", r.URL.Query().Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := livescore.NewClient("k", "s", srv.URL, nil)
	matches, err := client.LiveMatches(context.Background(), nil)
	require.NoError(t, err)
	// El partido sin empezar se filtra; el que no trae marcador legible
	// se entrega con ScoreKnown en false.
	require.Len(t, matches, 2)

	m := matches[0]
	assert.Equal(t, "218401", m.ID)
	assert.Equal(t, "AC Milan", m.Home)
	assert.Equal(t, "Inter", m.Away)
	assert.Equal(t, "Serie A", m.Competition)
	assert.Equal(t, "4", m.CompetitionID)
	assert.Equal(t, domain.Scoreline{Home: 1, Away: 1}, m.Score)
	assert.True(t, m.ScoreKnown)
	assert.Equal(t, 63, m.Minute)
	assert.Equal(t, "2026-03-14 20:00", m.Kickoff.Format("2006-01-02 15:04"))
	assert.Equal(t, "AC Milan v Inter", m.Name())

	assert.False(t, matches[1].ScoreKnown)
}

func TestLiveMatches_FiltersByCompetitionID(t *testing.T) {
	payload := `{
		"success": true,
		"data": {"match": [
			{"id": 218401, "status": "IN PLAY", "time": "63",
			 "home": {"name": "AC Milan"}, "away": {"name": "Inter"},
			 "competition": {"id": 4, "name": "Serie A"},
			 "scores": {"score": "1 - 1"}},
			{"id": 218405, "status": "IN PLAY", "time": "30",
			 "home": {"name": "Getafe"}, "away": {"name": "Sevilla"},
			 "competition": {"id": 7, "name": "La Liga"},
			 "scores": {"score": "0 - 0"}}
		]}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := livescore.NewClient("k", "s", srv.URL, nil)

	// El endpoint devuelve todo; el filtrado por competición es local.
	matches, err := client.LiveMatches(context.Background(), []string{"4"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "4", matches[0].CompetitionID)

	// Sin IDs se entregan todos los partidos en juego.
	matches, err = client.LiveMatches(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMatchDetails_ParsesGoalsTimeline(t *testing.T) {
	payload := `{
		"success": true,
		"data": {
			"match": {"id": 218401, "status": "IN PLAY", "time": "66",
			 "home": {"name": "AC Milan"}, "away": {"name": "Inter"},
			 "competition": {"id": 4, "name": "Serie A"},
			 "scores": {"score": "1 - 2"}},
			"event": [
				{"event": "GOAL", "minute": "12", "player": "Leao", "home_away": "h"},
				{"event": "GOAL", "minute": "41", "player": "Lautaro", "home_away": "a"},
				{"event": "GOAL", "minute": "63", "player": "Thuram", "home_away": "a"}
			]
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scores/events.json", r.URL.Path)
		assert.Equal(t, "218401", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := livescore.NewClient("k", "s", srv.URL, nil)
	detail, err := client.MatchDetails(context.Background(), "218401")
	require.NoError(t, err)

	assert.Equal(t, domain.Scoreline{Home: 1, Away: 2}, detail.Score)
	assert.Equal(t, 66, detail.Minute)
	require.Len(t, detail.Goals, 3)
	assert.Equal(t, 63, detail.Goals[2].Minute)
	assert.Equal(t, domain.TeamAway, detail.Goals[2].Team)
}

func TestLiveMatches_FeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	client := livescore.NewClient("k", "s", srv.URL, nil)
	_, err := client.LiveMatches(context.Background(), nil)
	assert.Error(t, err)
}

func TestLiveMatches_BudgetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"match": []}}`))
	}))
	defer srv.Close()

	budget := livescore.NewBudget(24) // 1 por hora
	client := livescore.NewClient("k", "s", srv.URL, budget)

	_, err := client.LiveMatches(context.Background(), nil)
	require.NoError(t, err)

	_, err = client.LiveMatches(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget exhausted")
}

func TestMockFeed(t *testing.T) {
	feed := livescore.NewMockFeed()
	feed.SetSnapshot([]domain.LiveMatch{
		{ID: "m1", Home: "AC Milan", Away: "Inter", CompetitionID: "4", Minute: 60},
		{ID: "m2", Home: "Getafe", Away: "Sevilla", CompetitionID: "7", Minute: 30},
	})

	matches, err := feed.LiveMatches(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = feed.LiveMatches(context.Background(), []string{"4"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)

	detail, err := feed.MatchDetails(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "AC Milan", detail.Home)

	_, err = feed.MatchDetails(context.Background(), "missing")
	assert.Error(t, err)
}
