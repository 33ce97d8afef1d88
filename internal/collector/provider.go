package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// FailReason classifies why a provider call failed.
type FailReason string

const (
	ReasonNotFound    FailReason = "NOT_FOUND"
	ReasonRateLimited FailReason = "RATE_LIMITED"
	ReasonMalformed   FailReason = "MALFORMED_RESPONSE"
	ReasonTransport   FailReason = "TRANSPORT"
)

// ProviderError is a per-adapter failure. It is recoverable: the fallback
// fetcher logs it and moves on to the next provider.
type ProviderError struct {
	Provider string
	Reason   FailReason
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider fetches daily close history for one symbol from one external
// data source. Implementations normalize their native schema into PriceRow,
// reject rows with non-positive or unparsable closes, and honor the start
// lower bound (zero start means full history). Output ordering is not
// guaranteed; callers must sort.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, start time.Time) ([]model.PriceRow, error)
}

// newHTTPClient builds the shared client used by all adapters: bounded
// timeout so one unreachable provider cannot stall the batch, optional proxy.
func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
