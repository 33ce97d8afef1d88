package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"
)

func testAV(ts *httptest.Server) *AlphaVantageProvider {
	p := NewAlphaVantageProvider("demo-key", 5*time.Second, "")
	p.BaseURL = ts.URL
	return p
}

func TestAlphaVantage_ParsesDaily(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "demo-key" {
			t.Errorf("apikey = %q, want demo-key", got)
		}
		if got := r.URL.Query().Get("outputsize"); got != "full" {
			t.Errorf("outputsize = %q, want full", got)
		}
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2025-01-02": {"1. open": "98", "4. close": "101.5"},
				"2025-01-03": {"1. open": "101", "4. close": "0"},
				"2025-01-06": {"1. open": "102", "4. close": "104"}
			}
		}`))
	}))
	defer ts.Close()

	rows, err := testAV(ts).Fetch(context.Background(), "NVDA", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows (non-positive close dropped), got %d", len(rows))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	if rows[0].Close != 101.5 || rows[1].Close != 104 {
		t.Errorf("unexpected closes: %v", rows)
	}
}

func TestAlphaVantage_RateLimitNote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer ts.Close()

	_, err := testAV(ts).Fetch(context.Background(), "NVDA", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonRateLimited {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonRateLimited)
	}
}

func TestAlphaVantage_UnknownSymbol(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call. Please retry or visit the documentation."}`))
	}))
	defer ts.Close()

	_, err := testAV(ts).Fetch(context.Background(), "NOPE", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonNotFound {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonNotFound)
	}
}

func TestAlphaVantage_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer ts.Close()

	_, err := testAV(ts).Fetch(context.Background(), "NVDA", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonMalformed {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonMalformed)
	}
}

func TestAlphaVantage_HonorsStartDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2025-01-02": {"4. close": "100"},
				"2025-01-10": {"4. close": "110"}
			}
		}`))
	}))
	defer ts.Close()

	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	rows, err := testAV(ts).Fetch(context.Background(), "NVDA", start)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Close != 110 {
		t.Errorf("expected only the row at/after start, got %v", rows)
	}
}
