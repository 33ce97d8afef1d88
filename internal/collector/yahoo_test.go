package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testYahoo(ts *httptest.Server) *YahooProvider {
	p := NewYahooProvider(5*time.Second, "")
	p.BaseURL = ts.URL
	return p
}

func chartBody(timestamps []int64, closes string) string {
	ts := ""
	for i, v := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, closes)
}

func TestYahoo_ParsesChart(t *testing.T) {
	day1 := time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 3, 15, 30, 0, 0, time.UTC)
	day3 := time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/NVDA" {
			t.Errorf("path = %q, want /NVDA", r.URL.Path)
		}
		// null bar in the middle must be skipped
		w.Write([]byte(chartBody([]int64{day1.Unix(), day2.Unix(), day3.Unix()}, "101.5,null,104")))
	}))
	defer ts.Close()

	rows, err := testYahoo(ts).Fetch(context.Background(), "NVDA", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (null bar skipped), got %d: %v", len(rows), rows)
	}
	want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if !rows[0].Date.Equal(want) {
		t.Errorf("date not truncated to UTC midnight: got %v, want %v", rows[0].Date, want)
	}
	if rows[0].Close != 101.5 || rows[1].Close != 104 {
		t.Errorf("unexpected closes: %v", rows)
	}
}

func TestYahoo_SymbolMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/%5EGSPC" && r.URL.Path != "/^GSPC" {
			t.Errorf("path = %q, want the ^GSPC ticker", r.URL.Path)
		}
		w.Write([]byte(chartBody([]int64{time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).Unix()}, "5900")))
	}))
	defer ts.Close()

	rows, err := testYahoo(ts).Fetch(context.Background(), "SPX500", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Close != 5900 {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestYahoo_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer ts.Close()

	_, err := testYahoo(ts).Fetch(context.Background(), "NOPE", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonNotFound {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonNotFound)
	}
}

func TestYahoo_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := testYahoo(ts).Fetch(context.Background(), "NVDA", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonRateLimited {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonRateLimited)
	}
}
