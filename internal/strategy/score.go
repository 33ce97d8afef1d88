package strategy

import (
	"fmt"
	"math"

	"github.com/yanivvi/stocksmania/internal/model"
)

// dayBonusCap limits how much the same-day move can shift a score, so the
// bonus alone can never push a score out of range.
const dayBonusCap = 10.0

func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// buyScore peaks when the price sits near the ideal entry offset above the
// MA and decays linearly toward both edges of the buy band. A positive
// same-day move adds a capped bonus.
func buyScore(pt model.IndicatorPoint) float64 {
	// Widest half of the buy band: from the ideal entry down to the -10% edge.
	span := buyIdeal - SellBelow
	base := (100 - dayBonusCap) * (1 - math.Abs(pt.PctVsMA-buyIdeal)/span)
	if base < 0 {
		base = 0
	}
	if pt.HasChange && pt.PctChange > 0 {
		base += math.Min(pt.PctChange*200, dayBonusCap)
	}
	return clampScore(base)
}

// sellUrgency grows with the distance past the breached threshold, mapped
// through a saturating exponential so any finite deviation stays in range.
// A negative same-day move adds a capped bonus.
func sellUrgency(pt model.IndicatorPoint) float64 {
	var dist float64
	if pt.PctVsMA > Overbought {
		dist = pt.PctVsMA - Overbought
	} else {
		dist = SellBelow - pt.PctVsMA
	}
	if dist < 0 {
		dist = 0
	}
	base := (100 - dayBonusCap) * (1 - math.Exp(-dist/0.15))
	if pt.HasChange && pt.PctChange < 0 {
		base += math.Min(-pt.PctChange*200, dayBonusCap)
	}
	return clampScore(base)
}

// rationale renders the derived explanation: deviation magnitude plus
// today's move, one decimal place.
func rationale(sig model.Signal, pt model.IndicatorPoint) string {
	var state string
	switch sig {
	case model.SignalBuy:
		state = "buy zone"
	case model.SignalHold:
		state = "extended, wait for pullback"
	case model.SignalSellOverbought:
		state = "overbought"
	case model.SignalSellDowntrend:
		state = "downtrend"
	}
	s := fmt.Sprintf("%+.1f%% vs MA (%s)", pt.PctVsMA*100, state)
	if pt.HasChange {
		s += fmt.Sprintf(", today %+.1f%%", pt.PctChange*100)
	}
	return s
}
