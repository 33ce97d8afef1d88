package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yanivvi/stocksmania/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			buy_count      INTEGER,
			sell_count     INTEGER,
			insufficient   INTEGER,
			failed_count   INTEGER,
			failed_tickers TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS recommendations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       INTEGER NOT NULL,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			signal       TEXT NOT NULL,
			score        REAL,
			close        REAL,
			pct_vs_ma    REAL,
			daily_change REAL,
			rationale    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reco_ticker ON recommendations(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run summary plus one row per buy/sell recommendation.
func (r *SQLiteRecorder) RecordRun(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()

	failed := make([]string, len(rep.Failed))
	for i, f := range rep.Failed {
		failed[i] = f.Ticker
	}

	res, err := r.db.Exec(`INSERT INTO runs
		(timestamp, buy_count, sell_count, insufficient, failed_count, failed_tickers)
		VALUES (?,?,?,?,?,?)`,
		now, len(rep.BuySignals), len(rep.SellSignals),
		len(rep.Insufficient), len(rep.Failed), strings.Join(failed, ","),
	)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	recs := make([]model.ScoredRecommendation, 0, len(rep.BuySignals)+len(rep.SellSignals))
	recs = append(recs, rep.BuySignals...)
	recs = append(recs, rep.SellSignals...)
	for _, rec := range recs {
		if _, err := r.db.Exec(`INSERT INTO recommendations
			(run_id, timestamp, ticker, signal, score, close, pct_vs_ma, daily_change, rationale)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			runID, now, rec.Ticker, string(rec.Signal), rec.Score,
			rec.Close, rec.PctVsMA, rec.DailyChange, rec.Rationale,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
