package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// ExhaustedError means every configured provider failed or returned no rows
// for one ticker. It is a per-ticker failure: a multi-ticker run skips the
// ticker, reports it, and keeps going.
type ExhaustedError struct {
	Symbol   string
	Attempts []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, err := range e.Attempts {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("all providers exhausted for %s: [%s]", e.Symbol, strings.Join(msgs, "; "))
}

// FallbackFetcher tries providers in a fixed priority order and accepts the
// first non-empty result. Partial results from different providers are never
// merged: providers disagree on adjusted-close conventions, so one ticker's
// history always comes from a single source per fetch.
type FallbackFetcher struct {
	Providers []Provider
}

// NewFallbackFetcher creates a fetcher over the given priority order.
func NewFallbackFetcher(providers ...Provider) *FallbackFetcher {
	return &FallbackFetcher{Providers: providers}
}

// FetchHistory returns the first provider's non-empty row set. Failures are
// logged and swallowed here; only total exhaustion propagates. There are no
// same-provider retries: a transient failure just moves on to the next source.
func (f *FallbackFetcher) FetchHistory(ctx context.Context, symbol string, start time.Time) ([]model.PriceRow, error) {
	var attempts []error
	for _, p := range f.Providers {
		rows, err := p.Fetch(ctx, symbol, start)
		if err != nil {
			log.Printf("[WARN] provider %s failed for %s: %v", p.Name(), symbol, err)
			attempts = append(attempts, err)
			continue
		}
		if len(rows) == 0 {
			log.Printf("[WARN] provider %s returned no rows for %s", p.Name(), symbol)
			attempts = append(attempts, fmt.Errorf("%s: empty result", p.Name()))
			continue
		}
		log.Printf("[INFO] got %d rows for %s from %s", len(rows), symbol, p.Name())
		return rows, nil
	}
	return nil, &ExhaustedError{Symbol: symbol, Attempts: attempts}
}
