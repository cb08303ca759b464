package ports

import (
	"context"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// BetPlacer submits real orders to the exchange and reads account funds.
type BetPlacer interface {
	// PlaceLay submits a lay limit order at the given price and size.
	PlaceLay(ctx context.Context, order domain.LayOrder) (domain.PlacedBet, error)

	// AvailableBalance returns the available account balance.
	AvailableBalance(ctx context.Context) (float64, error)
}

// Session manages the authenticated exchange session.
type Session interface {
	// Login performs the interactive login and stores the session token.
	Login(ctx context.Context) error

	// KeepAlive refreshes the session token before it expires.
	KeepAlive(ctx context.Context) error
}
