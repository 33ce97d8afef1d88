package model

import "time"

// DateLayout is the calendar date format used by storage and providers.
const DateLayout = "2006-01-02"

// PriceRow is a single daily closing price.
type PriceRow struct {
	Date  time.Time
	Close float64
}

// TimeSeries holds the price history for one ticker. Rows are sorted
// ascending by date with no duplicate dates once loaded from the store.
type TimeSeries struct {
	Symbol string
	Rows   []PriceRow
}

// Len returns the number of rows.
func (s *TimeSeries) Len() int { return len(s.Rows) }

// Closes extracts the close prices in row order.
func (s *TimeSeries) Closes() []float64 {
	closes := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		closes[i] = r.Close
	}
	return closes
}

// Latest returns the most recent row, or false for an empty series.
func (s *TimeSeries) Latest() (PriceRow, bool) {
	if len(s.Rows) == 0 {
		return PriceRow{}, false
	}
	return s.Rows[len(s.Rows)-1], true
}
