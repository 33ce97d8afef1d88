package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// YahooProvider fetches daily history from the Yahoo Finance v8 chart API.
// No API key, but the endpoint is picky about the User-Agent and reports
// holidays as null bars.
type YahooProvider struct {
	Client    *http.Client
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo Finance adapter.
func NewYahooProvider(timeout time.Duration, proxyURL string) *YahooProvider {
	return &YahooProvider{
		Client:  newHTTPClient(timeout, proxyURL),
		BaseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) fail(reason FailReason, err error) error {
	return &ProviderError{Provider: p.Name(), Reason: reason, Err: err}
}

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (p *YahooProvider) Fetch(ctx context.Context, symbol string, start time.Time) ([]model.PriceRow, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	if start.IsZero() {
		q.Set("range", "max")
	} else {
		q.Set("period1", fmt.Sprintf("%d", start.Unix()))
		q.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	}
	u := fmt.Sprintf("%s/%s?%s", p.BaseURL, url.PathEscape(p.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, p.fail(ReasonNotFound, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, p.fail(ReasonRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, p.fail(ReasonTransport, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, p.fail(ReasonMalformed, fmt.Errorf("decode: %w", err))
	}
	if chart.Chart.Error != nil {
		return nil, p.fail(ReasonNotFound, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, p.fail(ReasonMalformed, fmt.Errorf("no result in response"))
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	rows := make([]model.PriceRow, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		c := toFloat(quote.Close[i])
		if c <= 0 {
			continue // skip null bars (holidays etc.)
		}
		t := time.Unix(ts, 0).UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if !start.IsZero() && d.Before(start) {
			continue
		}
		rows = append(rows, model.PriceRow{Date: d, Close: c})
	}
	return rows, nil
}
