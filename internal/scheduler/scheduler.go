package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanivvi/stocksmania/internal/collector"
	"github.com/yanivvi/stocksmania/internal/notifier"
	"github.com/yanivvi/stocksmania/internal/recorder"
	"github.com/yanivvi/stocksmania/internal/report"
	"github.com/yanivvi/stocksmania/internal/store"
)

// Scheduler runs the daily update-and-report cycle.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  *collector.FallbackFetcher
	Store    *store.Store
	Reports  *report.Builder
	Notifier *notifier.Telegram // nil when Telegram is not configured
	Recorder recorder.Recorder
	Symbols  []string
	Holdings []string
	Backfill time.Time // start date for tickers with no history yet
	Ctx      context.Context
}

// New creates a Scheduler.
func New(ctx context.Context, f *collector.FallbackFetcher, st *store.Store, rb *report.Builder,
	tn *notifier.Telegram, rec recorder.Recorder, symbols, holdings []string, backfill time.Time) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Fetcher:  f,
		Store:    st,
		Reports:  rb,
		Notifier: tn,
		Recorder: rec,
		Symbols:  symbols,
		Holdings: holdings,
		Backfill: backfill,
		Ctx:      ctx,
	}
}

// Register wires the daily task into cron.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

// UpdateAll fetches and merges new rows for every symbol, one at a time.
// Failures are isolated per ticker: the returned map carries the reason for
// each skipped ticker and the batch always runs to completion.
func (s *Scheduler) UpdateAll(ctx context.Context) map[string]string {
	failures := map[string]string{}
	for _, symbol := range s.Symbols {
		if err := s.updateTicker(ctx, symbol); err != nil {
			log.Printf("[ERROR] update %s: %v", symbol, err)
			failures[symbol] = err.Error()
		}
	}
	return failures
}

// incrementalOverlap is how many days before the last stored row each daily
// update re-fetches. On a day with no new bar (market holiday, run before
// close) a fetch starting strictly after the last row would come back empty
// and read as provider exhaustion; the overlap keeps recent bars in the
// response and the first-write-wins merge drops the duplicates.
const incrementalOverlap = 7

// updateTicker fetches rows the store doesn't have yet. A ticker with no
// local history gets a full backfill from the configured start date.
func (s *Scheduler) updateTicker(ctx context.Context, symbol string) error {
	start := s.Backfill
	latest, ok, err := s.Store.Latest(symbol)
	switch {
	case errors.Is(err, store.ErrTickerNotFound):
		log.Printf("[INFO] no history for %s, running full backfill from %s", symbol, start.Format("2006-01-02"))
	case err != nil:
		return err
	case ok:
		start = latest.Date.AddDate(0, 0, -incrementalOverlap)
	}

	rows, err := s.Fetcher.FetchHistory(ctx, symbol, start)
	if err != nil {
		return err
	}
	return s.Store.Merge(symbol, rows)
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily task")
	failures := s.UpdateAll(s.Ctx)

	rep := s.Reports.Build(s.Symbols, s.Holdings, failures)
	msg := notifier.FormatDailyReport(rep)
	s.trySend(msg)

	if err := s.Recorder.RecordRun(rep); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/report":
		rep := s.Reports.Build(s.Symbols, s.Holdings, nil)
		return notifier.FormatDailyReport(rep)
	case "/status":
		rep := s.Reports.Build(s.Symbols, s.Holdings, nil)
		return notifier.FormatStatus(rep)
	case "/update":
		go s.dailyTask()
		return "Running update..."
	default:
		return "Commands:\n• /report\n• /status\n• /update"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Println("[INFO] telegram not configured, report:\n" + text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
