package strategy

import (
	"github.com/yanivvi/stocksmania/internal/model"
)

// Thresholds on the percentage deviation vs the moving average. Bands are
// half-open, inclusive on the upper edge: -10% exactly is a downtrend sell,
// 0% and +15% exactly are buys, +40% exactly is a hold.
const (
	SellBelow  = -0.10 // at or below: downtrend
	BuyMax     = 0.15  // above zero band up to here: buy zone
	Overbought = 0.40  // above: take-profit sell
	buyIdeal   = 0.05  // empirically the best entry offset above the MA
)

// Classify maps the latest pctVsMA onto the signal set.
func Classify(pctVsMA float64) model.Signal {
	switch {
	case pctVsMA <= SellBelow:
		return model.SignalSellDowntrend
	case pctVsMA <= BuyMax:
		return model.SignalBuy
	case pctVsMA <= Overbought:
		return model.SignalHold
	default:
		return model.SignalSellOverbought
	}
}

// Evaluate classifies and scores the latest defined indicator point for one
// ticker. Stateless: everything derives from the point itself.
func Evaluate(ticker string, pt model.IndicatorPoint) *model.ScoredRecommendation {
	sig := Classify(pt.PctVsMA)

	var score float64
	switch sig {
	case model.SignalBuy:
		score = buyScore(pt)
	case model.SignalHold:
		// No urgency to act; callers ranking across signals get the midpoint.
		score = 50
	default:
		score = sellUrgency(pt)
	}

	return &model.ScoredRecommendation{
		Ticker:      ticker,
		Signal:      sig,
		Score:       score,
		Rationale:   rationale(sig, pt),
		Close:       pt.Close,
		PctVsMA:     pt.PctVsMA,
		DailyChange: pt.PctChange,
		HasChange:   pt.HasChange,
	}
}
