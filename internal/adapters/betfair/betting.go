package betfair

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// PlaceLay envía una orden lay LIMIT con persistencia LAPSE (la orden
// muere si el mercado se suspende por gol).
func (c *Client) PlaceLay(ctx context.Context, order domain.LayOrder) (domain.PlacedBet, error) {
	req := placeOrdersRequest{
		MarketID: order.MarketID,
		Instructions: []placeInstruction{{
			SelectionID: order.SelectionID,
			Handicap:    0,
			Side:        "LAY",
			OrderType:   "LIMIT",
			LimitOrder: limitOrder{
				Size:            order.Size,
				Price:           order.Price,
				PersistenceType: "LAPSE",
			},
		}},
		CustomerRef: uuid.NewString(),
	}

	var report placeExecutionReport
	if err := c.post(ctx, c.bettingBase, "placeOrders", req, &report); err != nil {
		return domain.PlacedBet{}, fmt.Errorf("betfair.PlaceLay: market %s: %w", order.MarketID, err)
	}

	if report.Status != "SUCCESS" {
		code := report.ErrorCode
		if len(report.InstructionReports) > 0 && report.InstructionReports[0].ErrorCode != "" {
			code = report.InstructionReports[0].ErrorCode
		}
		return domain.PlacedBet{Status: report.Status},
			fmt.Errorf("betfair.PlaceLay: order rejected: %s (%s)", report.Status, code)
	}
	if len(report.InstructionReports) == 0 {
		return domain.PlacedBet{}, fmt.Errorf("betfair.PlaceLay: empty instruction report")
	}

	ir := report.InstructionReports[0]
	placed := domain.PlacedBet{
		BetID:               ir.BetID,
		Status:              report.Status,
		OrderStatus:         ir.OrderStatus,
		AveragePriceMatched: ir.AveragePriceMatched,
		SizeMatched:         ir.SizeMatched,
		PlacedAt:            parsePlacedDate(ir.PlacedDate),
	}

	slog.Info("lay order placed",
		"market_id", order.MarketID,
		"selection_id", order.SelectionID,
		"bet_id", placed.BetID,
		"order_status", placed.OrderStatus,
		"size_matched", placed.SizeMatched,
	)
	return placed, nil
}

// AvailableBalance devuelve el saldo disponible de la cuenta.
func (c *Client) AvailableBalance(ctx context.Context) (float64, error) {
	var funds accountFundsResponse
	if err := c.post(ctx, c.accountBase, "getAccountFunds", struct{}{}, &funds); err != nil {
		return 0, fmt.Errorf("betfair.AvailableBalance: %w", err)
	}
	return funds.AvailableToBetBalance, nil
}

func parsePlacedDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
