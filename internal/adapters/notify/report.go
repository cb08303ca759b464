package notify

import (
	"fmt"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// SessionReportInput agrupa los datos del informe de sesión.
type SessionReportInput struct {
	StartedAt time.Time
	Bets      []domain.BetRecord
	Skips     []domain.SkippedMatch
	Bankroll  float64
}

// PrintSessionReport imprime el resumen de la sesión al apagar el bot.
func (c *Console) PrintSessionReport(in SessionReportInput) {
	fmt.Fprintf(c.out, "\n")
	fmt.Fprintf(c.out, "========================================================\n")
	fmt.Fprintf(c.out, "  SESSION REPORT\n")
	fmt.Fprintf(c.out, "  %s to %s\n",
		in.StartedAt.Format("2006-01-02 15:04"),
		time.Now().Format("2006-01-02 15:04"))
	fmt.Fprintf(c.out, "========================================================\n\n")

	if len(in.Bets) == 0 {
		fmt.Fprintln(c.out, "  No bets placed this session.")
	} else {
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Time", "Match", "Score", "Price", "Stake", "Liab", "Outcome", "P/L")

		var net float64
		won, lost, pending := 0, 0, 0
		for _, b := range in.Bets {
			switch b.Outcome {
			case domain.OutcomeWon:
				won++
			case domain.OutcomeLost:
				lost++
			default:
				pending++
			}
			net += b.ProfitLoss
			tbl.Append(
				b.PlacedAt.Format("15:04"),
				b.EventName,
				b.ScoreAtEntry,
				fmt.Sprintf("%.2f", b.FinalLayPrice),
				fmt.Sprintf("%.2f", b.Stake),
				fmt.Sprintf("%.2f", b.Liability),
				string(b.Outcome),
				fmt.Sprintf("%+.2f", b.ProfitLoss),
			)
		}
		tbl.Render()

		fmt.Fprintf(c.out, "\n  %d bet(s): %d won, %d lost, %d pending | net %+.2f\n",
			len(in.Bets), won, lost, pending, net)
	}

	if len(in.Skips) > 0 {
		byReason := make(map[string]int)
		for _, s := range in.Skips {
			byReason[s.Reason]++
		}
		reasons := make([]string, 0, len(byReason))
		for r := range byReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)

		fmt.Fprintf(c.out, "\n  %d skipped:\n", len(in.Skips))
		for _, r := range reasons {
			fmt.Fprintf(c.out, "    %3dx %s\n", byReason[r], r)
		}
	}

	if in.Bankroll > 0 {
		fmt.Fprintf(c.out, "\n  Bankroll: %.2f\n", in.Bankroll)
	}
	fmt.Fprintln(c.out)
}
