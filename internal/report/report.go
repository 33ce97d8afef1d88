package report

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/yanivvi/stocksmania/internal/calculator"
	"github.com/yanivvi/stocksmania/internal/model"
	"github.com/yanivvi/stocksmania/internal/store"
	"github.com/yanivvi/stocksmania/internal/strategy"
)

// Builder assembles the per-run report from stored history. It is pure over
// the store's state: no network calls, everything recomputed on demand.
type Builder struct {
	Store  *store.Store
	Window int
}

// NewBuilder creates a Builder with the given moving-average window.
func NewBuilder(st *store.Store, window int) *Builder {
	return &Builder{Store: st, Window: window}
}

// Build evaluates every ticker and buckets the results. failures carries
// per-ticker fetch errors from the orchestration layer; those tickers are
// still evaluated from whatever history exists, and the failure is surfaced
// in the report instead of aborting the batch. A ticker with no defined
// moving average is reported as insufficient history and excluded from the
// buy/sell rankings, never defaulted to HOLD.
func (b *Builder) Build(tickers, holdings []string, failures map[string]string) *model.Report {
	rep := &model.Report{GeneratedAt: time.Now()}
	recs := map[string]*model.ScoredRecommendation{}

	seen := map[string]bool{}
	for _, t := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(t))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		if reason, ok := failures[ticker]; ok {
			rep.Failed = append(rep.Failed, model.TickerFailure{Ticker: ticker, Reason: reason})
		}

		series, err := b.Store.Load(ticker)
		if err != nil {
			if errors.Is(err, store.ErrTickerNotFound) {
				if _, ok := failures[ticker]; !ok {
					rep.Failed = append(rep.Failed, model.TickerFailure{Ticker: ticker, Reason: "no local history"})
				}
			} else {
				log.Printf("[ERROR] load %s: %v", ticker, err)
				rep.Failed = append(rep.Failed, model.TickerFailure{Ticker: ticker, Reason: err.Error()})
			}
			continue
		}

		points, err := calculator.ComputeIndicators(series, b.Window)
		if err != nil {
			log.Printf("[ERROR] indicators for %s: %v", ticker, err)
			rep.Failed = append(rep.Failed, model.TickerFailure{Ticker: ticker, Reason: err.Error()})
			continue
		}
		latest, ok := calculator.LatestDefined(points)
		if !ok {
			rep.Insufficient = append(rep.Insufficient, ticker)
			continue
		}

		rec := strategy.Evaluate(ticker, latest)
		recs[ticker] = rec

		switch {
		case rec.Signal == model.SignalBuy:
			rep.BuySignals = append(rep.BuySignals, *rec)
		case rec.Signal.IsSell():
			rep.SellSignals = append(rep.SellSignals, *rec)
		}
	}

	// Best entry first, most urgent first.
	sort.SliceStable(rep.BuySignals, func(i, j int) bool {
		return rep.BuySignals[i].Score > rep.BuySignals[j].Score
	})
	sort.SliceStable(rep.SellSignals, func(i, j int) bool {
		return rep.SellSignals[i].Score > rep.SellSignals[j].Score
	})

	for _, h := range holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h))
		rec, ok := recs[ticker]
		if !ok {
			continue
		}
		action := "HOLD"
		switch {
		case rec.Signal.IsSell():
			action = "CONSIDER SELLING"
		case rec.Signal == model.SignalBuy:
			action = "KEEP / ADD MORE"
		}
		rep.HoldingsStatus = append(rep.HoldingsStatus, model.HoldingStatus{
			ScoredRecommendation: *rec,
			Action:               action,
		})
	}

	for ticker, rec := range recs {
		if !rec.HasChange {
			continue
		}
		if rep.TopGainer == nil || rec.DailyChange > rep.TopGainer.DailyChange {
			rep.TopGainer = &model.TickerMove{Ticker: ticker, DailyChange: rec.DailyChange}
		}
		if rep.TopLoser == nil || rec.DailyChange < rep.TopLoser.DailyChange {
			rep.TopLoser = &model.TickerMove{Ticker: ticker, DailyChange: rec.DailyChange}
		}
	}

	return rep
}
