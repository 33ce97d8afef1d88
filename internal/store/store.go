package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// ErrTickerNotFound means the store has no data file for a ticker. This is
// distinct from a failed fetch: it identifies a ticker that was never
// backfilled.
var ErrTickerNotFound = errors.New("ticker not found")

// Store persists one append-only CSV file per ticker (Date,Close columns,
// ascending by date). History only grows: merges never overwrite or delete
// rows already recorded.
type Store struct {
	Dir string
}

// New creates the data directory if needed and returns a Store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(ticker string) string {
	return filepath.Join(s.Dir, strings.ToUpper(ticker)+"_prices.csv")
}

// Load reads a ticker's full history, sorted ascending by date regardless of
// stored order. Returns ErrTickerNotFound when no file exists yet.
func (s *Store) Load(ticker string) (*model.TimeSeries, error) {
	f, err := os.Open(s.path(ticker))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", strings.ToUpper(ticker), ErrTickerNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", s.path(ticker), err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateIdx, closeIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = i
		case "close":
			closeIdx = i
		}
	}
	if dateIdx < 0 || closeIdx < 0 {
		return nil, fmt.Errorf("%s: missing Date/Close columns", s.path(ticker))
	}

	var rows []model.PriceRow
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	for _, rec := range records {
		if len(rec) <= dateIdx || len(rec) <= closeIdx {
			continue
		}
		d, err := time.Parse(model.DateLayout, rec[dateIdx])
		if err != nil {
			continue
		}
		c, err := strconv.ParseFloat(rec[closeIdx], 64)
		if err != nil || c <= 0 {
			continue
		}
		rows = append(rows, model.PriceRow{Date: d, Close: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return &model.TimeSeries{Symbol: strings.ToUpper(ticker), Rows: rows}, nil
}

// Latest returns the most recent stored row. The bool is false for a ticker
// whose file exists but holds no rows.
func (s *Store) Latest(ticker string) (model.PriceRow, bool, error) {
	series, err := s.Load(ticker)
	if err != nil {
		return model.PriceRow{}, false, err
	}
	row, ok := series.Latest()
	return row, ok, nil
}

// Merge unions newRows into the ticker's history by date. Dates already
// recorded keep their existing close (first-write-wins), so re-running the
// same fetch is idempotent and a provider's later revision of an old date
// never rewrites history. The write is all-or-nothing: the merged file is
// staged to a temp file and renamed over the old one.
func (s *Store) Merge(ticker string, newRows []model.PriceRow) error {
	existing := map[string]float64{}
	var rows []model.PriceRow

	series, err := s.Load(ticker)
	if err != nil && !errors.Is(err, ErrTickerNotFound) {
		return err
	}
	if series != nil {
		rows = series.Rows
		for _, r := range series.Rows {
			existing[r.Date.Format(model.DateLayout)] = r.Close
		}
	}

	added := 0
	for _, r := range newRows {
		key := r.Date.Format(model.DateLayout)
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = r.Close
		rows = append(rows, r)
		added++
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	if err := s.writeAtomic(ticker, rows); err != nil {
		return err
	}
	log.Printf("[INFO] %s: merged %d new rows (%d total)", strings.ToUpper(ticker), added, len(rows))
	return nil
}

func (s *Store) writeAtomic(ticker string, rows []model.PriceRow) error {
	tmp, err := os.CreateTemp(s.Dir, strings.ToUpper(ticker)+"_prices.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"Date", "Close"}); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Date.Format(model.DateLayout), strconv.FormatFloat(r.Close, 'f', -1, 64)}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(ticker)); err != nil {
		return fmt.Errorf("replace %s: %w", s.path(ticker), err)
	}
	return nil
}
