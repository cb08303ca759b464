package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out io.Writer
}

// NewConsole crea el notificador de consola.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// NotifyTracking imprime la tabla de partidos en seguimiento.
func (c *Console) NotifyTracking(_ context.Context, statuses []domain.Status) error {
	now := time.Now().Format("15:04:05")
	if len(statuses) == 0 {
		fmt.Fprintf(c.out, "[%s] no matches being tracked\n", now)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] tracking %d match(es)\n", now, len(statuses))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Match", "Competition", "Min", "Score", "State", "Goals", "Bet")

	for i, st := range statuses {
		table.Append(
			fmt.Sprintf("%d", i+1),
			st.EventName,
			st.Competition,
			fmt.Sprintf("%d'", st.Minute),
			st.Score,
			st.State,
			fmt.Sprintf("%d", st.GoalCount),
			betLabel(st),
		)
	}
	table.Render()
	return nil
}

// NotifyBetPlaced imprime los detalles de una apuesta colocada.
func (c *Console) NotifyBetPlaced(_ context.Context, rec domain.BetRecord) error {
	fmt.Fprintf(c.out, "\n*** LAY BET PLACED ***\n")
	fmt.Fprintf(c.out, "  Match:      %s (%s)\n", rec.EventName, rec.Competition)
	fmt.Fprintf(c.out, "  Market:     %s → %s\n", rec.MarketName, rec.Selection)
	fmt.Fprintf(c.out, "  Entry:      minute %d, score %s\n", rec.MinuteOfEntry, rec.ScoreAtEntry)
	fmt.Fprintf(c.out, "  Price:      %.2f (best lay %.2f, spread %d ticks)\n", rec.FinalLayPrice, rec.OverBestLay, rec.SpreadTicks)
	fmt.Fprintf(c.out, "  Stake:      %.2f (liability %.2f, %.1f%% of %.2f)\n", rec.Stake, rec.Liability, rec.StakePercent, rec.BankrollBefore)
	fmt.Fprintf(c.out, "  Bet ID:     %s\n\n", rec.BetID)
	return nil
}

// NotifyBetSkipped imprime el motivo de un descarte.
func (c *Console) NotifyBetSkipped(_ context.Context, skip domain.SkippedMatch) error {
	fmt.Fprintf(c.out, "[%s] bet skipped: %s (%s) at %d' %s: %s\n",
		time.Now().Format("15:04:05"),
		skip.EventName, skip.Competition, skip.Minute, skip.Score, skip.Reason)
	return nil
}

func betLabel(st domain.Status) string {
	switch {
	case st.BetPlaced:
		return "placed"
	case st.BetSkipped:
		return "skipped"
	default:
		return "-"
	}
}
