package strategy

import (
	"strings"
	"testing"

	"github.com/yanivvi/stocksmania/internal/model"
)

func point(pctVsMA, pctChange float64, hasChange bool) model.IndicatorPoint {
	return model.IndicatorPoint{
		Close:         100 * (1 + pctVsMA),
		MovingAverage: 100,
		PctVsMA:       pctVsMA,
		PctChange:     pctChange,
		HasMA:         true,
		HasChange:     hasChange,
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		pctVsMA float64
		want    model.Signal
	}{
		{-0.50, model.SignalSellDowntrend},
		{-0.10, model.SignalSellDowntrend}, // exactly -10% sells
		{-0.0999, model.SignalBuy},
		{-0.05, model.SignalBuy},
		{0.00, model.SignalBuy}, // exactly 0% buys
		{0.05, model.SignalBuy},
		{0.15, model.SignalBuy}, // exactly +15% buys
		{0.1501, model.SignalHold},
		{0.20, model.SignalHold},
		{0.40, model.SignalHold}, // exactly +40% holds
		{0.41, model.SignalSellOverbought},
		{10.0, model.SignalSellOverbought}, // +1000%
	}
	for _, tt := range tests {
		if got := Classify(tt.pctVsMA); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.pctVsMA, got, tt.want)
		}
	}
}

func TestEvaluate_ScoreAlwaysInRange(t *testing.T) {
	pcts := []float64{-5, -1, -0.5, -0.10, -0.05, 0, 0.05, 0.15, 0.25, 0.40, 0.41, 1, 10, 1000}
	changes := []float64{-0.99, -0.5, -0.01, 0, 0.01, 0.5, 5}
	for _, p := range pcts {
		for _, c := range changes {
			rec := Evaluate("TEST", point(p, c, true))
			if rec.Score < 0 || rec.Score > 100 {
				t.Errorf("Evaluate(pctVsMA=%v, change=%v) score %v out of [0,100]", p, c, rec.Score)
			}
		}
	}
}

func TestBuyScore_PeaksAtIdealEntry(t *testing.T) {
	ideal := buyScore(point(0.05, 0, false))
	for _, p := range []float64{-0.09, -0.05, 0, 0.10, 0.15} {
		if s := buyScore(point(p, 0, false)); s >= ideal {
			t.Errorf("buyScore(%v) = %v, want below ideal-entry score %v", p, s, ideal)
		}
	}
	// Decreasing away from the peak on both sides.
	if buyScore(point(0.0, 0, false)) <= buyScore(point(-0.05, 0, false)) {
		t.Error("expected score to decrease toward the lower band edge")
	}
	if buyScore(point(0.10, 0, false)) <= buyScore(point(0.15, 0, false)) {
		t.Error("expected score to decrease toward the upper band edge")
	}
}

func TestBuyScore_DayBonusCapped(t *testing.T) {
	flat := buyScore(point(0.05, 0, false))
	small := buyScore(point(0.05, 0.01, true))
	huge := buyScore(point(0.05, 5.0, true))

	if small <= flat {
		t.Error("expected positive daily change to add a bonus")
	}
	if huge-flat > dayBonusCap+1e-9 {
		t.Errorf("bonus %v exceeds cap %v", huge-flat, dayBonusCap)
	}
	if huge > 100 {
		t.Errorf("score %v exceeds 100", huge)
	}
}

func TestSellUrgency_MonotonicInDistance(t *testing.T) {
	over := []float64{0.41, 0.50, 0.80, 2.0}
	prev := -1.0
	for _, p := range over {
		s := sellUrgency(point(p, 0, false))
		if s <= prev {
			t.Errorf("sellUrgency(%v) = %v, want > %v", p, s, prev)
		}
		prev = s
	}

	down := []float64{-0.11, -0.20, -0.50, -0.90}
	prev = -1.0
	for _, p := range down {
		s := sellUrgency(point(p, 0, false))
		if s <= prev {
			t.Errorf("sellUrgency(%v) = %v, want > %v", p, s, prev)
		}
		prev = s
	}
}

func TestSellUrgency_NegativeDayBonus(t *testing.T) {
	flat := sellUrgency(point(0.60, 0, false))
	drop := sellUrgency(point(0.60, -0.03, true))
	if drop <= flat {
		t.Error("expected negative daily change to raise urgency")
	}
	if drop-flat > dayBonusCap+1e-9 {
		t.Errorf("bonus %v exceeds cap %v", drop-flat, dayBonusCap)
	}
}

func TestEvaluate_HoldIsNeutralMidpoint(t *testing.T) {
	rec := Evaluate("TEST", point(0.20, 0.01, true))
	if rec.Signal != model.SignalHold {
		t.Fatalf("expected HOLD, got %s", rec.Signal)
	}
	if rec.Score != 50 {
		t.Errorf("expected neutral midpoint 50, got %v", rec.Score)
	}
}

func TestEvaluate_Rationale(t *testing.T) {
	rec := Evaluate("NVDA", point(0.152, 0.021, true))
	if !strings.Contains(rec.Rationale, "+15.2% vs MA") {
		t.Errorf("rationale missing deviation: %q", rec.Rationale)
	}
	if !strings.Contains(rec.Rationale, "today +2.1%") {
		t.Errorf("rationale missing daily move: %q", rec.Rationale)
	}

	sell := Evaluate("NVDA", point(-0.25, 0, false))
	if !strings.Contains(sell.Rationale, "downtrend") {
		t.Errorf("sell rationale missing state: %q", sell.Rationale)
	}
	if strings.Contains(sell.Rationale, "today") {
		t.Errorf("rationale should omit the daily move when undefined: %q", sell.Rationale)
	}
}
