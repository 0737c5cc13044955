package backtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/oddsmith/internal/models"
)

// GenerateConsoleReport formats a backtest report for terminal output
func GenerateConsoleReport(report *models.BacktestReport) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Sport: %s\n", report.Sport))
	builder.WriteString(fmt.Sprintf("Sample: %s to %s\n",
		report.SampleStart.Format("2006-01-02"), report.SampleEnd.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Starting Bankroll: %.2f\n", report.StartingBankroll))
	builder.WriteString(fmt.Sprintf("Final Bankroll: %.2f\n", report.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Bets: %d (W %d / L %d / P %d, skipped %d)\n",
		report.TotalBets, report.Wins, report.Losses, report.Pushes, report.Skipped))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", report.WinRate*100))
	builder.WriteString(fmt.Sprintf("Total Staked: %.2f\n", report.TotalStaked))
	builder.WriteString(fmt.Sprintf("Total Profit: %.2f\n", report.TotalProfit))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", report.ROI))
	builder.WriteString(fmt.Sprintf("Avg Odds: %.2f\n", report.AvgOdds))

	if len(report.ConfidenceBands) > 0 {
		builder.WriteString("\nConfidence Bands\n")
		builder.WriteString("----------------\n")
		keys := make([]string, 0, len(report.ConfidenceBands))
		for key := range report.ConfidenceBands {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			band := report.ConfidenceBands[key]
			winRate := 0.0
			if band.Bets > 0 {
				winRate = float64(band.Wins) / float64(band.Bets) * 100
			}
			builder.WriteString(fmt.Sprintf("  %s: %d bets, %.1f%% won, profit %.2f\n",
				key, band.Bets, winRate, band.Profit))
		}
	}

	if len(report.RecentBets) > 0 {
		builder.WriteString("\nRecent Bets\n")
		builder.WriteString("-----------\n")
		for _, bet := range report.RecentBets {
			builder.WriteString(fmt.Sprintf("  %s  %s @ %s  %s %.2f @ %.2f -> %s (%+.2f)\n",
				bet.StartTime.Format("2006-01-02"),
				bet.AwayTeam, bet.HomeTeam,
				bet.Selection, bet.Stake, bet.Odds, bet.Result, bet.Profit))
		}
	}

	return builder.String()
}
