package notifier

import (
	"fmt"
	"strings"

	"github.com/yanivvi/stocksmania/internal/model"
)

const maxListed = 5

// FormatDailyReport renders the report into a Telegram HTML message:
// actionable buy/sell lists, holdings check, top movers, and a summary of
// skipped tickers.
func FormatDailyReport(rep *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>StocksMania - %s</b>\n", rep.GeneratedAt.Format("Jan 02, 2006")))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	b.WriteString("🟢 <b>ACTION: BUY</b>\n")
	b.WriteString("<i>(Above MA, not overbought)</i>\n")
	if len(rep.BuySignals) > 0 {
		for i, rec := range rep.BuySignals {
			if i == maxListed {
				break
			}
			b.WriteString(fmt.Sprintf("  → <b>%s</b> $%.2f (%+.1f%%) score %.0f\n",
				rec.Ticker, rec.Close, rec.PctVsMA*100, rec.Score))
		}
	} else {
		b.WriteString("  <i>No strong buys today</i>\n")
	}
	b.WriteString("\n")

	b.WriteString("🔴 <b>ACTION: SELL/AVOID</b>\n")
	b.WriteString("<i>(Below -10% or overbought >40%)</i>\n")
	if len(rep.SellSignals) > 0 {
		for i, rec := range rep.SellSignals {
			if i == maxListed {
				break
			}
			reason := "downtrend"
			if rec.Signal == model.SignalSellOverbought {
				reason = "overbought"
			}
			b.WriteString(fmt.Sprintf("  → <b>%s</b> $%.2f (%+.1f%%) ⚠️ %s\n",
				rec.Ticker, rec.Close, rec.PctVsMA*100, reason))
		}
	} else {
		b.WriteString("  <i>Nothing to sell today</i>\n")
	}
	b.WriteString("\n")

	if len(rep.HoldingsStatus) > 0 {
		b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
		b.WriteString("💼 <b>YOUR HOLDINGS CHECK:</b>\n")
		for _, h := range rep.HoldingsStatus {
			b.WriteString(fmt.Sprintf("\n<b>%s</b>: $%.2f\n", h.Ticker, h.Close))
			b.WriteString(fmt.Sprintf("  vs MA: %+.1f%%\n", h.PctVsMA*100))
			if h.HasChange {
				b.WriteString(fmt.Sprintf("  Today: %+.1f%%\n", h.DailyChange*100))
			}
			b.WriteString(fmt.Sprintf("  → <b>%s</b>\n", h.Action))
		}
		b.WriteString("\n")
	}

	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	if rep.TopGainer != nil {
		b.WriteString(fmt.Sprintf("🚀 Top Gainer: <b>%s</b> %+.1f%%\n", rep.TopGainer.Ticker, rep.TopGainer.DailyChange*100))
	}
	if rep.TopLoser != nil {
		b.WriteString(fmt.Sprintf("💥 Top Loser: <b>%s</b> %+.1f%%\n", rep.TopLoser.Ticker, rep.TopLoser.DailyChange*100))
	}

	if len(rep.Insufficient) > 0 {
		b.WriteString(fmt.Sprintf("\n⏳ Insufficient history: %s\n", strings.Join(rep.Insufficient, ", ")))
	}
	if len(rep.Failed) > 0 {
		names := make([]string, len(rep.Failed))
		for i, f := range rep.Failed {
			names[i] = f.Ticker
		}
		b.WriteString(fmt.Sprintf("\n⚠️ Skipped tickers: %s\n", strings.Join(names, ", ")))
		for _, f := range rep.Failed {
			b.WriteString(fmt.Sprintf("  %s: %s\n", f.Ticker, f.Reason))
		}
	}

	return b.String()
}

// FormatStatus is the short reply for the /status command.
func FormatStatus(rep *model.Report) string {
	var b strings.Builder
	b.WriteString("📦 <b>Tracker status</b>\n\n")
	b.WriteString(fmt.Sprintf("Buy signals: %d\n", len(rep.BuySignals)))
	b.WriteString(fmt.Sprintf("Sell signals: %d\n", len(rep.SellSignals)))
	b.WriteString(fmt.Sprintf("Insufficient history: %d\n", len(rep.Insufficient)))
	b.WriteString(fmt.Sprintf("Failed: %d\n", len(rep.Failed)))
	b.WriteString(fmt.Sprintf("Generated: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04")))
	return b.String()
}
