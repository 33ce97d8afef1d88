package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// StooqProvider fetches daily history from the Stooq CSV download endpoint.
// Free, no API key, full history. US tickers need a ".US" suffix.
type StooqProvider struct {
	Client  *http.Client
	BaseURL string
}

// NewStooqProvider creates a Stooq adapter.
func NewStooqProvider(timeout time.Duration, proxyURL string) *StooqProvider {
	return &StooqProvider{
		Client:  newHTTPClient(timeout, proxyURL),
		BaseURL: "https://stooq.com/q/d/l/",
	}
}

func (p *StooqProvider) Name() string { return "stooq" }

func (p *StooqProvider) fail(reason FailReason, err error) error {
	return &ProviderError{Provider: p.Name(), Reason: reason, Err: err}
}

func (p *StooqProvider) Fetch(ctx context.Context, symbol string, start time.Time) ([]model.PriceRow, error) {
	q := url.Values{}
	q.Set("s", strings.ToLower(symbol)+".us")
	q.Set("i", "d")
	if !start.IsZero() {
		q.Set("d1", start.Format("20060102"))
		q.Set("d2", time.Now().Format("20060102"))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, p.fail(ReasonNotFound, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, p.fail(ReasonRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, p.fail(ReasonTransport, fmt.Errorf("status %d", resp.StatusCode))
	}

	return p.parseCSV(resp.Body, start)
}

// parseCSV reads the Stooq daily export. Expected header:
// Date,Open,High,Low,Close,Volume (extra columns tolerated).
func (p *StooqProvider) parseCSV(r io.Reader, start time.Time) ([]model.PriceRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, p.fail(ReasonMalformed, fmt.Errorf("read header: %w", err))
	}
	// An unknown ticker yields a "No data" body instead of a CSV table.
	if len(header) == 1 && strings.Contains(strings.ToLower(header[0]), "no data") {
		return nil, p.fail(ReasonNotFound, fmt.Errorf("stooq: %s", header[0]))
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
		return nil, p.fail(ReasonMalformed, fmt.Errorf("missing Date/Close columns in %v", header))
	}

	var rows []model.PriceRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.fail(ReasonMalformed, fmt.Errorf("read row: %w", err))
		}
		if len(rec) <= dateIdx || len(rec) <= closeIdx {
			continue
		}
		d, err := time.Parse(model.DateLayout, rec[dateIdx])
		if err != nil {
			continue // reject, don't coerce
		}
		c, err := strconv.ParseFloat(rec[closeIdx], 64)
		if err != nil || c <= 0 {
			continue
		}
		if !start.IsZero() && d.Before(start) {
			continue
		}
		rows = append(rows, model.PriceRow{Date: d, Close: c})
	}
	return rows, nil
}
