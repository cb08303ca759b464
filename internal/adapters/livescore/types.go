package livescore

import "encoding/json"

// DTOs raw del feed. Los IDs llegan como número o string según el
// endpoint; json.Number absorbe ambos.

type liveMatchesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Match []matchDTO `json:"match"`
	} `json:"data"`
}

type matchEventsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Match matchDTO   `json:"match"`
		Event []eventDTO `json:"event"`
	} `json:"data"`
}

type matchDTO struct {
	ID          json.Number `json:"id"`
	Status      string      `json:"status"`
	Time        string      `json:"time"`
	Date        string      `json:"date"`
	Scheduled   string      `json:"scheduled"`
	Home        teamDTO     `json:"home"`
	Away        teamDTO     `json:"away"`
	Competition struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"competition"`
	Scores struct {
		Score string `json:"score"`
	} `json:"scores"`
}

type teamDTO struct {
	Name string `json:"name"`
}

type eventDTO struct {
	Event     string `json:"event"`
	Minute    string `json:"minute"`
	Player    string `json:"player"`
	HomeAway  string `json:"home_away"`
	Cancelled bool   `json:"cancelled"`
}
