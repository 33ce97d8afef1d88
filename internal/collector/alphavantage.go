package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// AlphaVantageProvider fetches TIME_SERIES_DAILY data from Alpha Vantage.
// Requires an API key; the free tier is limited to 25 requests per day and
// signals exhaustion via a "Note"/"Information" field in an otherwise 200
// response.
type AlphaVantageProvider struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

// NewAlphaVantageProvider creates an Alpha Vantage adapter.
func NewAlphaVantageProvider(apiKey string, timeout time.Duration, proxyURL string) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		Client:  newHTTPClient(timeout, proxyURL),
		BaseURL: "https://www.alphavantage.co/query",
		APIKey:  apiKey,
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) fail(reason FailReason, err error) error {
	return &ProviderError{Provider: p.Name(), Reason: reason, Err: err}
}

// avDailyResponse models the subset of the TIME_SERIES_DAILY payload the
// adapter reads. Error conditions arrive as sibling string fields.
type avDailyResponse struct {
	TimeSeries  map[string]map[string]string `json:"Time Series (Daily)"`
	Note        string                       `json:"Note"`
	Information string                       `json:"Information"`
	ErrorMsg    string                       `json:"Error Message"`
}

func (p *AlphaVantageProvider) Fetch(ctx context.Context, symbol string, start time.Time) ([]model.PriceRow, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("apikey", p.APIKey)
	q.Set("outputsize", "full")
	q.Set("datatype", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.fail(ReasonTransport, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, p.fail(ReasonRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.fail(ReasonTransport, fmt.Errorf("status %d", resp.StatusCode))
	}

	var data avDailyResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, p.fail(ReasonMalformed, fmt.Errorf("decode: %w", err))
	}
	if len(data.TimeSeries) == 0 {
		msg := data.Note
		if msg == "" {
			msg = data.Information
		}
		if msg != "" {
			lower := strings.ToLower(msg)
			if strings.Contains(lower, "rate limit") || strings.Contains(lower, "requests per day") || strings.Contains(lower, "25 requests") {
				return nil, p.fail(ReasonRateLimited, fmt.Errorf("%s", msg))
			}
			return nil, p.fail(ReasonMalformed, fmt.Errorf("%s", msg))
		}
		if data.ErrorMsg != "" {
			return nil, p.fail(ReasonNotFound, fmt.Errorf("%s", data.ErrorMsg))
		}
		return nil, p.fail(ReasonMalformed, fmt.Errorf("no time series in response"))
	}

	var rows []model.PriceRow
	for dateStr, values := range data.TimeSeries {
		d, err := time.Parse(model.DateLayout, dateStr)
		if err != nil {
			continue
		}
		if !start.IsZero() && d.Before(start) {
			continue
		}
		c, err := strconv.ParseFloat(values["4. close"], 64)
		if err != nil || c <= 0 {
			continue
		}
		rows = append(rows, model.PriceRow{Date: d, Close: c})
	}
	return rows, nil
}
