package collector

import (
	"context"
	"time"

	"github.com/yanivvi/stocksmania/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Symbol string
	Rows   []model.PriceRow
	Err    error
	Calls  int
}

func (m *MockProvider) Name() string {
	if m.Symbol != "" {
		return "mock-" + m.Symbol
	}
	return "mock"
}

func (m *MockProvider) Fetch(_ context.Context, _ string, start time.Time) ([]model.PriceRow, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if start.IsZero() {
		return m.Rows, nil
	}
	var out []model.PriceRow
	for _, r := range m.Rows {
		if !r.Date.Before(start) {
			out = append(out, r)
		}
	}
	return out, nil
}

// GenerateMockRows builds count consecutive daily rows ending today, with a
// mild linear drift around basePrice.
func GenerateMockRows(basePrice float64, count int) []model.PriceRow {
	rows := make([]model.PriceRow, count)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		rows[i] = model.PriceRow{
			Date:  today.AddDate(0, 0, -(count - i)),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return rows
}
