package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testStooq(ts *httptest.Server) *StooqProvider {
	p := NewStooqProvider(5*time.Second, "")
	p.BaseURL = ts.URL
	return p
}

func TestStooq_ParsesDailyCSV(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "nvda.us" {
			t.Errorf("symbol param = %q, want nvda.us", got)
		}
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2025-01-02,98,102,97,101.5,1000\n" +
			"2025-01-03,101,103,100,bad,1000\n" + // unparsable close rejected
			"2025-01-06,101,103,100,-5,1000\n" + // non-positive close rejected
			"2025-01-07,102,105,101,104,1000\n"))
	}))
	defer ts.Close()

	rows, err := testStooq(ts).Fetch(context.Background(), "NVDA", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d: %v", len(rows), rows)
	}
	if rows[0].Close != 101.5 || rows[1].Close != 104 {
		t.Errorf("unexpected closes: %v", rows)
	}
}

func TestStooq_HonorsStartDate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Close\n2025-01-02,100\n2025-01-10,110\n"))
	}))
	defer ts.Close()

	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	rows, err := testStooq(ts).Fetch(context.Background(), "NVDA", start)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Close != 110 {
		t.Errorf("expected only the row at/after start, got %v", rows)
	}
}

func TestStooq_NoDataIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("No data\n"))
	}))
	defer ts.Close()

	_, err := testStooq(ts).Fetch(context.Background(), "NOPE", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonNotFound {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonNotFound)
	}
}

func TestStooq_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   FailReason
	}{
		{http.StatusNotFound, ReasonNotFound},
		{http.StatusTooManyRequests, ReasonRateLimited},
		{http.StatusInternalServerError, ReasonTransport},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := testStooq(ts).Fetch(context.Background(), "NVDA", time.Time{})
		ts.Close()

		var perr *ProviderError
		if !errors.As(err, &perr) {
			t.Fatalf("status %d: expected ProviderError, got %v", tt.status, err)
		}
		if perr.Reason != tt.want {
			t.Errorf("status %d: reason = %s, want %s", tt.status, perr.Reason, tt.want)
		}
	}
}

func TestStooq_TimeoutIsTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	p := NewStooqProvider(20*time.Millisecond, "")
	p.BaseURL = ts.URL
	_, err := p.Fetch(context.Background(), "NVDA", time.Time{})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Reason != ReasonTransport {
		t.Errorf("reason = %s, want %s", perr.Reason, ReasonTransport)
	}
}
