package model

import "time"

// IndicatorPoint is one row of the derived indicator series. MovingAverage
// and the percentage fields are only meaningful when their Has* flag is set;
// consumers must skip undefined values rather than treat them as zero.
type IndicatorPoint struct {
	Date          time.Time
	Close         float64
	MovingAverage float64
	PctVsMA       float64 // close/movingAverage - 1
	PctChange     float64 // close/priorClose - 1
	HasMA         bool
	HasChange     bool
}
