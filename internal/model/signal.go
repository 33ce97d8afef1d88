package model

import "time"

// Signal classifies a ticker's trend state from its deviation vs the
// moving average.
type Signal string

const (
	SignalBuy            Signal = "BUY"
	SignalHold           Signal = "HOLD"
	SignalSellOverbought Signal = "SELL_OVERBOUGHT"
	SignalSellDowntrend  Signal = "SELL_DOWNTREND"
)

// IsSell reports whether the signal is one of the sell variants.
func (s Signal) IsSell() bool {
	return s == SignalSellOverbought || s == SignalSellDowntrend
}

// ScoredRecommendation is the per-ticker output of the strategy engine.
// Recomputed on every run, never persisted as durable state.
type ScoredRecommendation struct {
	Ticker      string
	Signal      Signal
	Score       float64 // 0-100 priority among same-signal tickers
	Rationale   string
	Close       float64
	PctVsMA     float64
	DailyChange float64
	HasChange   bool
}

// HoldingStatus is the report line for a ticker the user currently holds.
type HoldingStatus struct {
	ScoredRecommendation
	Action string // CONSIDER SELLING / KEEP / HOLD
}

// TickerFailure records why a ticker produced no recommendation.
type TickerFailure struct {
	Ticker string
	Reason string
}

// TickerMove is a ticker with its same-day percentage move.
type TickerMove struct {
	Ticker      string
	DailyChange float64
}

// Report is the full outcome of one evaluation run.
type Report struct {
	GeneratedAt    time.Time
	BuySignals     []ScoredRecommendation // best entry first
	SellSignals    []ScoredRecommendation // most urgent first
	HoldingsStatus []HoldingStatus
	Insufficient   []string // tickers with fewer rows than the MA window
	Failed         []TickerFailure
	TopGainer      *TickerMove
	TopLoser       *TickerMove
}
