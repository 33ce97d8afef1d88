package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/yanivvi/stocksmania/internal/calculator"
	"github.com/yanivvi/stocksmania/internal/collector"
	"github.com/yanivvi/stocksmania/internal/config"
	"github.com/yanivvi/stocksmania/internal/notifier"
	"github.com/yanivvi/stocksmania/internal/recorder"
	"github.com/yanivvi/stocksmania/internal/report"
	"github.com/yanivvi/stocksmania/internal/scheduler"
	"github.com/yanivvi/stocksmania/internal/store"
)

const usage = `StocksMania - stock tracker with rolling averages

Usage:
  bot initial          fetch full history for configured symbols
  bot daily            fetch latest rows and send the daily report
  bot report           build the report from stored data only
  bot show TICKER [n]  print the last n stored rows (default 20)
  bot run              daemon: cron daily task + Telegram commands

Config: configs/config.yaml (override with CONFIG_PATH).`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Println(usage)
		return
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("[FATAL] init store: %v", err)
	}

	fetcher := collector.NewFallbackFetcher(buildProviders(cfg)...)
	builder := report.NewBuilder(st, cfg.Window)

	var tn *notifier.Telegram
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	start, err := cfg.StartDate()
	if err != nil {
		log.Fatalf("[FATAL] historical start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, fetcher, st, builder, tn, rec, cfg.Symbols, cfg.Holdings, start)

	switch cmd {
	case "initial":
		runInitial(ctx, cfg, fetcher, st)
		printReport(builder, cfg)
	case "daily":
		sched.RunDailyNow()
	case "report":
		rep := builder.Build(cfg.Symbols, cfg.Holdings, nil)
		msg := notifier.FormatDailyReport(rep)
		fmt.Println(msg)
		if tn != nil {
			if err := tn.SendWithRetry(ctx, msg, 3); err != nil {
				log.Printf("[ERROR] send report: %v", err)
			}
		}
		if err := rec.RecordRun(rep); err != nil {
			log.Printf("[ERROR] record run: %v", err)
		}
	case "show":
		if len(args) == 0 {
			log.Fatal("[FATAL] show: ticker argument required")
		}
		n := 20
		if len(args) > 1 {
			if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
				n = v
			}
		}
		runShow(st, cfg.Window, args[0], n)
	case "run":
		runDaemon(ctx, cfg, sched, tn)
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
}

func buildProviders(cfg *config.Config) []collector.Provider {
	var providers []collector.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "stooq":
			providers = append(providers, collector.NewStooqProvider(cfg.HTTPTimeout(), cfg.Proxy))
		case "alphavantage":
			if cfg.AlphaVantage.APIKey == "" {
				log.Println("[WARN] alphavantage configured without API key, skipping")
				continue
			}
			providers = append(providers, collector.NewAlphaVantageProvider(cfg.AlphaVantage.APIKey, cfg.HTTPTimeout(), cfg.Proxy))
		case "yahoo":
			providers = append(providers, collector.NewYahooProvider(cfg.HTTPTimeout(), cfg.Proxy))
		}
	}
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	log.Printf("[INFO] provider order: %v", names)
	return providers
}

// runInitial backfills full history for every configured symbol. Per-ticker
// failures are logged and skipped; the batch always completes.
func runInitial(ctx context.Context, cfg *config.Config, fetcher *collector.FallbackFetcher, st *store.Store) {
	start, _ := cfg.StartDate()
	for _, symbol := range cfg.Symbols {
		log.Printf("[INFO] fetching %s history from %s", symbol, cfg.HistoricalStart)
		rows, err := fetcher.FetchHistory(ctx, symbol, start)
		if err != nil {
			log.Printf("[ERROR] initial fetch %s: %v", symbol, err)
			continue
		}
		if err := st.Merge(symbol, rows); err != nil {
			log.Printf("[ERROR] merge %s: %v", symbol, err)
		}
	}
}

func printReport(builder *report.Builder, cfg *config.Config) {
	rep := builder.Build(cfg.Symbols, cfg.Holdings, nil)
	fmt.Println(notifier.FormatDailyReport(rep))
}

// runShow prints the last n stored rows with the moving average where defined.
func runShow(st *store.Store, window int, ticker string, n int) {
	series, err := st.Load(ticker)
	if err != nil {
		log.Fatalf("[FATAL] %v (run 'initial' first)", err)
	}
	points, err := calculator.ComputeIndicators(series, window)
	if err != nil {
		log.Fatalf("[FATAL] indicators: %v", err)
	}

	startIdx := len(points) - n
	if startIdx < 0 {
		startIdx = 0
	}
	fmt.Printf("%s - last %d trading days (window %d)\n", series.Symbol, len(points)-startIdx, window)
	fmt.Printf("%-12s %10s %12s %9s\n", "Date", "Close", "MA", "vs MA")
	for _, pt := range points[startIdx:] {
		if pt.HasMA {
			fmt.Printf("%-12s %10.2f %12.2f %+8.1f%%\n", pt.Date.Format("2006-01-02"), pt.Close, pt.MovingAverage, pt.PctVsMA*100)
		} else {
			fmt.Printf("%-12s %10.2f %12s %9s\n", pt.Date.Format("2006-01-02"), pt.Close, "N/A", "N/A")
		}
	}

	if latest, ok := calculator.LatestDefined(points); ok {
		fmt.Printf("\nLatest close %.2f is %+.1f%% vs the %d-day average %.2f\n",
			latest.Close, latest.PctVsMA*100, window, latest.MovingAverage)
	} else {
		fmt.Printf("\nMoving average requires %d days of history (%d stored)\n", window, len(points))
	}
}

func runDaemon(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler, tn *notifier.Telegram) {
	log.Println("[INFO] StocksMania starting...")

	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	log.Println("[INFO] StocksMania is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Println("[INFO] shutdown signal received, stopping...")
	// give in-flight telegram sends a moment to finish
	time.Sleep(100 * time.Millisecond)
	log.Println("[INFO] StocksMania stopped")
}
