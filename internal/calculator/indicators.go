package calculator

import (
	"errors"

	"github.com/yanivvi/stocksmania/internal/model"
)

// CalculateSMA computes the simple moving average of the trailing period
// prices ending at the last element.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// ComputeIndicators derives the indicator series for one ticker. The moving
// average at row i is the simple average of the window closes preceding i,
// defined only once window rows precede it; earlier points carry HasMA=false
// and must be skipped by signal consumers, never read as zero. Returns an
// error only for a non-positive window; a series too short for the window
// yields zero defined moving averages.
func ComputeIndicators(series *model.TimeSeries, window int) ([]model.IndicatorPoint, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}

	rows := series.Rows
	points := make([]model.IndicatorPoint, len(rows))

	// sum tracks the closes of the window rows preceding i.
	sum := 0.0
	for i, r := range rows {
		pt := model.IndicatorPoint{Date: r.Date, Close: r.Close}

		if i >= window {
			ma := sum / float64(window)
			pt.MovingAverage = ma
			pt.PctVsMA = r.Close/ma - 1
			pt.HasMA = true
		}
		if i > 0 {
			pt.PctChange = r.Close/rows[i-1].Close - 1
			pt.HasChange = true
		}
		points[i] = pt

		sum += r.Close
		if i >= window {
			sum -= rows[i-window].Close
		}
	}
	return points, nil
}

// LatestDefined returns the most recent point with a defined moving average.
// The bool is false when the series never reached the window, i.e. the
// ticker has insufficient history for a signal.
func LatestDefined(points []model.IndicatorPoint) (model.IndicatorPoint, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].HasMA {
			return points[i], true
		}
	}
	return model.IndicatorPoint{}, false
}
